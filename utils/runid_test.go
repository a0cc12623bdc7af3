package utils

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRunID(t *testing.T) {
	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

	a, err := GenerateRunID(now)
	require.NoError(t, err)
	b, err := GenerateRunID(now)
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^20260304-050607-[a-z0-9]{8}$`), a)
	assert.NotEqual(t, a, b)
}

package utils

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"
)

const runIDCharset = "abcdefghijklmnopqrstuvwxyz0123456789"

// GenerateRunID returns "<yyyymmdd-hhmmss>-<8 random chars>". The timestamp prefix
// keeps ids roughly sortable; the suffix keeps two runs in the same second apart.
func GenerateRunID(now time.Time) (string, error) {
	const suffixLength = 8

	buf := make([]byte, suffixLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(now.UTC().Format("20060102-150405"))
	sb.WriteByte('-')
	for _, b := range buf {
		sb.WriteByte(runIDCharset[int(b)%len(runIDCharset)])
	}
	return sb.String(), nil
}

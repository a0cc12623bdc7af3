package main

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pixbatch/config"
	"pixbatch/job"
	"pixbatch/logger"
)

func writeJPEG(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 30))
	for y := 0; y < 30; y++ {
		for x := 0; x < 40; x++ {
			img.Set(x, y, color.RGBA{uint8(x * 6), uint8(y * 8), 120, 255})
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, jpeg.Encode(f, img, nil))
}

func execute(t *testing.T, cfg config.Config, args ...string) (string, error) {
	t.Helper()
	return executeWithEnvErr(t, cfg, nil, args...)
}

func executeWithEnvErr(t *testing.T, cfg config.Config, envErr error, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(&cfg, envErr)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func baseConfig() config.Config {
	return config.Config{
		OutputSubdir:     config.DefaultOutputSubdir,
		ReportName:       config.DefaultReportName,
		Resolutions:      []int{20, 10},
		Extensions:       append([]string(nil), config.DefaultExtensions...),
		Workers:          2,
		JPEGQuality:      config.DefaultJPEGQuality,
		HistoryRetention: config.DefaultHistoryRetention,
		LogLevel:         "error",
	}
}

func TestRootCommandRunsPipeline(t *testing.T) {
	src := t.TempDir()
	writeJPEG(t, filepath.Join(src, "photo.jpg"))
	history := filepath.Join(t.TempDir(), "history")

	_, err := execute(t, baseConfig(), src, "--workers", "3", "--history-dir", history)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(src, "README.md"))
	assert.FileExists(t, filepath.Join(src, "output", "photo_20p.jpg"))
	assert.FileExists(t, filepath.Join(src, "output", "photo_10p.jpg"))
	assert.Equal(t, logger.ERROR, logger.Level(), "--log-level is applied")

	out, err := execute(t, baseConfig(), "history", "--history-dir", history)
	require.NoError(t, err)
	assert.Contains(t, out, "RUN ID")
	assert.NotContains(t, out, "No runs recorded")
}

func TestRootCommandFlagsOverrideConfig(t *testing.T) {
	src := t.TempDir()
	writeJPEG(t, filepath.Join(src, "photo.jpg"))

	_, err := execute(t, baseConfig(), "--source", src, "--resolutions", "8", "--output-subdir", "small", "--report-name", "TIMINGS.md")
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(src, "TIMINGS.md"))
	assert.FileExists(t, filepath.Join(src, "small", "photo_8p.jpg"))
	assert.NoFileExists(t, filepath.Join(src, "small", "photo_20p.jpg"))
}

func TestRootCommandErrors(t *testing.T) {
	out, err := execute(t, baseConfig())
	require.Error(t, err, "no source directory configured")
	assert.NotContains(t, out, "Error:", "already written by the logger")

	out, err = execute(t, baseConfig(), filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.ErrorIs(t, err, job.ErrDirectoryNotFound)
	assert.NotContains(t, out, "Error:")

	src := t.TempDir()
	writeJPEG(t, filepath.Join(src, "photo.jpg"))
	_, err = execute(t, baseConfig(), src, "--output-subdir", ".")
	var cfgErr *config.Error
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "output-subdir", cfgErr.Field)
	assert.NoFileExists(t, filepath.Join(src, "photo_20p.jpg"))

	_, err = execute(t, baseConfig(), t.TempDir(), "--log-level", "loud")
	require.Error(t, err)

	// invocation errors are not logged, so cobra still reports them
	out, err = execute(t, baseConfig(), "a", "b")
	require.Error(t, err)
	assert.Contains(t, out, "Error:")
}

func TestMalformedEnvironmentOnlyFailsRun(t *testing.T) {
	envErr := &config.Error{Field: "PIXBATCH_WORKERS", Err: errors.New("invalid syntax")}

	out, err := executeWithEnvErr(t, baseConfig(), envErr, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "pixbatch ")

	history := filepath.Join(t.TempDir(), "history")
	out, err = executeWithEnvErr(t, baseConfig(), envErr, "history", "--history-dir", history)
	require.NoError(t, err)
	assert.Contains(t, out, "No runs recorded")

	_, err = executeWithEnvErr(t, baseConfig(), envErr, t.TempDir())
	assert.ErrorIs(t, err, envErr)
}

func TestHistoryCommand(t *testing.T) {
	src := t.TempDir()
	writeJPEG(t, filepath.Join(src, "photo.jpg"))
	require.NoError(t, os.WriteFile(filepath.Join(src, "broken.jpg"), []byte("nope"), 0o644))
	history := filepath.Join(t.TempDir(), "history")

	_, err := execute(t, baseConfig(), src, "--history-dir", history)
	require.NoError(t, err)

	out, err := execute(t, baseConfig(), "history", "--history-dir", history, "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"count": 1`)
	assert.Contains(t, out, `"failed_files": 1`)

	_, err = execute(t, baseConfig(), "history")
	assert.ErrorContains(t, err, "no history directory")

	out, err = execute(t, baseConfig(), "history", "--history-dir", history, "--failures", "no-such-run")
	require.NoError(t, err)
	assert.Contains(t, out, "No failures recorded")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, baseConfig(), "version")
	require.NoError(t, err)
	assert.Contains(t, out, "pixbatch "+Version)
}

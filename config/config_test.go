package config

import (
	"errors"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{
		"PIXBATCH_SOURCE_DIR", "PIXBATCH_OUTPUT_SUBDIR", "PIXBATCH_REPORT_NAME",
		"PIXBATCH_RESOLUTIONS", "PIXBATCH_EXTENSIONS", "PIXBATCH_WORKERS",
		"PIXBATCH_JPEG_QUALITY", "PIXBATCH_HISTORY_DIR", "PIXBATCH_HISTORY_RETENTION",
		"PIXBATCH_MIRROR", "PIXBATCH_LOG_FILE", "PIXBATCH_LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Empty(t, cfg.SourceDir, "there is no default source directory")
	assert.Equal(t, DefaultOutputSubdir, cfg.OutputSubdir)
	assert.Equal(t, DefaultReportName, cfg.ReportName)
	assert.Equal(t, []int{1080, 720, 480}, cfg.Resolutions)
	assert.Equal(t, []string{".jpg", ".jpeg", ".png"}, cfg.Extensions)
	assert.Equal(t, runtime.NumCPU(), cfg.Workers)
	assert.Equal(t, DefaultJPEGQuality, cfg.JPEGQuality)
	assert.Equal(t, DefaultHistoryRetention, cfg.HistoryRetention)
	assert.Equal(t, MirrorNone, cfg.Mirror)
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PIXBATCH_SOURCE_DIR", "/srv/images")
	t.Setenv("PIXBATCH_OUTPUT_SUBDIR", "resized")
	t.Setenv("PIXBATCH_RESOLUTIONS", "2160p, 1440")
	t.Setenv("PIXBATCH_EXTENSIONS", "png, .webp")
	t.Setenv("PIXBATCH_WORKERS", "3")
	t.Setenv("PIXBATCH_JPEG_QUALITY", "90")
	t.Setenv("PIXBATCH_HISTORY_RETENTION", "48h")
	t.Setenv("PIXBATCH_MIRROR", "S3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/srv/images", cfg.SourceDir)
	assert.Equal(t, "resized", cfg.OutputSubdir)
	assert.Equal(t, []int{2160, 1440}, cfg.Resolutions)
	assert.Equal(t, []string{"png", ".webp"}, cfg.Extensions)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, 90, cfg.JPEGQuality)
	assert.Equal(t, 48*time.Hour, cfg.HistoryRetention)
	assert.Equal(t, MirrorS3, cfg.Mirror)
}

func TestLoadRejectsMalformedNumbers(t *testing.T) {
	clearEnv(t)
	t.Setenv("PIXBATCH_WORKERS", "many")

	_, err := Load()
	require.Error(t, err)

	var cfgErr *Error
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "PIXBATCH_WORKERS", cfgErr.Field)
}

func validConfig(t *testing.T) Config {
	clearEnv(t)
	cfg, err := Load()
	require.NoError(t, err)
	cfg.SourceDir = t.TempDir()
	return cfg
}

func TestValidateNormalises(t *testing.T) {
	cfg := validConfig(t)
	cfg.Extensions = []string{"JPG", " .Png ", ""}
	cfg.Mirror = " GCS "

	require.NoError(t, cfg.Validate())
	assert.Equal(t, []string{".jpg", ".png"}, cfg.Extensions)
	assert.Equal(t, MirrorGCS, cfg.Mirror)
	assert.True(t, filepath.IsAbs(cfg.SourceDir))
	assert.Equal(t, filepath.Join(cfg.SourceDir, "output"), cfg.OutputDir())
	assert.Equal(t, filepath.Join(cfg.SourceDir, "README.md"), cfg.ReportPath())
}

func TestValidateErrors(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"missing source", func(c *Config) { c.SourceDir = " " }, "source"},
		{"no resolutions", func(c *Config) { c.Resolutions = nil }, "resolutions"},
		{"zero resolution", func(c *Config) { c.Resolutions = []int{720, 0} }, "resolutions"},
		{"no extensions", func(c *Config) { c.Extensions = []string{" "} }, "extensions"},
		{"no workers", func(c *Config) { c.Workers = 0 }, "workers"},
		{"quality", func(c *Config) { c.JPEGQuality = 101 }, "jpeg-quality"},
		{"mirror", func(c *Config) { c.Mirror = "ftp" }, "mirror"},
		{"log level", func(c *Config) { c.LogLevel = "loud" }, "log-level"},
		{"output subdir", func(c *Config) { c.OutputSubdir = "" }, "output-subdir"},
		{"output subdir is source", func(c *Config) { c.OutputSubdir = "." }, "output-subdir"},
		{"output subdir is parent", func(c *Config) { c.OutputSubdir = ".." }, "output-subdir"},
		{"output subdir absolute", func(c *Config) { c.OutputSubdir = "/tmp/out" }, "output-subdir"},
		{"output subdir nested", func(c *Config) { c.OutputSubdir = "out/small" }, "output-subdir"},
		{"output subdir trailing slash", func(c *Config) { c.OutputSubdir = "out/" }, "output-subdir"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig(t)
			tc.mutate(&cfg)

			err := cfg.Validate()
			require.Error(t, err)
			var cfgErr *Error
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tc.field, cfgErr.Field)
		})
	}
}

func TestParseResolutions(t *testing.T) {
	res, err := ParseResolutions("1080p,720, 480")
	require.NoError(t, err)
	assert.Equal(t, []int{1080, 720, 480}, res)

	_, err = ParseResolutions("")
	assert.Error(t, err)
	_, err = ParseResolutions("hd")
	assert.Error(t, err)
}

func TestMirrorAccessInfo(t *testing.T) {
	t.Setenv("PIXBATCH_S3_BUCKET", "artifacts")
	t.Setenv("PIXBATCH_S3_REGION", "eu-west-1")
	t.Setenv("PIXBATCH_S3_PREFIX", "")

	info := MirrorAccessInfo(MirrorS3)
	assert.Equal(t, "artifacts", info["bucket"])
	assert.Equal(t, "eu-west-1", info["region"])
	_, hasPrefix := info["prefix"]
	assert.False(t, hasPrefix, "unset variables are left out")

	assert.Empty(t, MirrorAccessInfo("ftp"))
}

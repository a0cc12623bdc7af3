package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// Defaults applied when neither an environment variable nor a flag sets a value.
const (
	DefaultOutputSubdir     = "output"
	DefaultReportName       = "README.md"
	DefaultJPEGQuality      = 75
	DefaultHistoryRetention = 30 * 24 * time.Hour
)

var (
	DefaultResolutions = []int{1080, 720, 480}
	DefaultExtensions  = []string{".jpg", ".jpeg", ".png"}
)

// Mirror backends accepted by Config.Mirror.
const (
	MirrorNone = ""
	MirrorS3   = "s3"
	MirrorGCS  = "gcs"
	MirrorSFTP = "sftp"
)

// Config is the full run configuration. Load fills it from PIXBATCH_* environment
// variables; the CLI then overrides fields from flags before calling Validate.
type Config struct {
	SourceDir    string
	OutputSubdir string
	ReportName   string
	Resolutions  []int
	Extensions   []string
	Workers      int
	JPEGQuality  int

	// HistoryDir enables the pebble run history when non-empty.
	HistoryDir       string
	HistoryRetention time.Duration

	// Mirror names a remote backend the concurrent pass's artifacts are copied to.
	Mirror string

	LogFile  string
	LogLevel string
}

// Error is a configuration problem tied to one setting.
type Error struct {
	Field string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid config %s: %v", e.Field, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Load reads the configuration from the environment.
// Priority: PIXBATCH_* environment variable > built-in default.
// Malformed numeric or list values are reported instead of silently ignored.
func Load() (Config, error) {
	cfg := Config{
		SourceDir:        os.Getenv("PIXBATCH_SOURCE_DIR"),
		OutputSubdir:     getenv("PIXBATCH_OUTPUT_SUBDIR", DefaultOutputSubdir),
		ReportName:       getenv("PIXBATCH_REPORT_NAME", DefaultReportName),
		Resolutions:      append([]int(nil), DefaultResolutions...),
		Extensions:       append([]string(nil), DefaultExtensions...),
		Workers:          runtime.NumCPU(),
		JPEGQuality:      DefaultJPEGQuality,
		HistoryDir:       os.Getenv("PIXBATCH_HISTORY_DIR"),
		HistoryRetention: DefaultHistoryRetention,
		Mirror:           strings.ToLower(os.Getenv("PIXBATCH_MIRROR")),
		LogFile:          os.Getenv("PIXBATCH_LOG_FILE"),
		LogLevel:         getenv("PIXBATCH_LOG_LEVEL", "info"),
	}

	if v := os.Getenv("PIXBATCH_RESOLUTIONS"); v != "" {
		res, err := ParseResolutions(v)
		if err != nil {
			return cfg, &Error{Field: "PIXBATCH_RESOLUTIONS", Err: err}
		}
		cfg.Resolutions = res
	}
	if v := os.Getenv("PIXBATCH_EXTENSIONS"); v != "" {
		cfg.Extensions = splitList(v)
	}
	if v := os.Getenv("PIXBATCH_WORKERS"); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return cfg, &Error{Field: "PIXBATCH_WORKERS", Err: err}
		}
		cfg.Workers = n
	}
	if v := os.Getenv("PIXBATCH_JPEG_QUALITY"); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return cfg, &Error{Field: "PIXBATCH_JPEG_QUALITY", Err: err}
		}
		cfg.JPEGQuality = n
	}
	if v := os.Getenv("PIXBATCH_HISTORY_RETENTION"); v != "" {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return cfg, &Error{Field: "PIXBATCH_HISTORY_RETENTION", Err: err}
		}
		cfg.HistoryRetention = d
	}

	return cfg, nil
}

// Validate normalises the configuration in place and reports the first invalid field.
func (c *Config) Validate() error {
	c.SourceDir = strings.TrimSpace(c.SourceDir)
	if c.SourceDir == "" {
		return &Error{Field: "source", Err: errors.New("source directory is required (argument, --source or PIXBATCH_SOURCE_DIR)")}
	}
	abs, err := filepath.Abs(c.SourceDir)
	if err != nil {
		return &Error{Field: "source", Err: err}
	}
	c.SourceDir = abs

	c.OutputSubdir = strings.TrimSpace(c.OutputSubdir)
	if c.OutputSubdir == "" {
		return &Error{Field: "output-subdir", Err: errors.New("must not be empty")}
	}
	// Artifacts must stay out of the scanned directory, or the next run picks them up.
	if c.OutputSubdir == "." || c.OutputSubdir == ".." || filepath.Base(c.OutputSubdir) != c.OutputSubdir {
		return &Error{Field: "output-subdir", Err: fmt.Errorf("must be a single directory name inside the source directory, got %q", c.OutputSubdir)}
	}
	if c.ReportName = strings.TrimSpace(c.ReportName); c.ReportName == "" {
		return &Error{Field: "report-name", Err: errors.New("must not be empty")}
	}

	if len(c.Resolutions) == 0 {
		return &Error{Field: "resolutions", Err: errors.New("at least one target height is required")}
	}
	for _, r := range c.Resolutions {
		if r <= 0 {
			return &Error{Field: "resolutions", Err: fmt.Errorf("target height must be positive, got %d", r)}
		}
	}

	exts := make([]string, 0, len(c.Extensions))
	for _, e := range c.Extensions {
		if e = NormalizeExtension(e); e != "" {
			exts = append(exts, e)
		}
	}
	if len(exts) == 0 {
		return &Error{Field: "extensions", Err: errors.New("at least one extension is required")}
	}
	c.Extensions = exts

	if c.Workers < 1 {
		return &Error{Field: "workers", Err: fmt.Errorf("must be at least 1, got %d", c.Workers)}
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return &Error{Field: "jpeg-quality", Err: fmt.Errorf("must be within [1,100], got %d", c.JPEGQuality)}
	}
	if c.HistoryRetention < 0 {
		return &Error{Field: "history-retention", Err: fmt.Errorf("must not be negative, got %s", c.HistoryRetention)}
	}

	c.Mirror = strings.ToLower(strings.TrimSpace(c.Mirror))
	switch c.Mirror {
	case MirrorNone, MirrorS3, MirrorGCS, MirrorSFTP:
	default:
		return &Error{Field: "mirror", Err: fmt.Errorf("must be one of s3, gcs, sftp, got %q", c.Mirror)}
	}

	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return &Error{Field: "log-level", Err: fmt.Errorf("unknown level %q", c.LogLevel)}
	}
	return nil
}

// OutputDir returns {SourceDir}/{OutputSubdir}.
func (c Config) OutputDir() string {
	return filepath.Join(c.SourceDir, c.OutputSubdir)
}

// ReportPath returns {SourceDir}/{ReportName}.
func (c Config) ReportPath() string {
	return filepath.Join(c.SourceDir, c.ReportName)
}

// ParseResolutions parses a comma separated list of target heights ("1080,720,480").
func ParseResolutions(s string) ([]int, error) {
	parts := splitList(s)
	if len(parts) == 0 {
		return nil, errors.New("empty resolution list")
	}
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSuffix(strings.ToLower(p), "p")
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid resolution %q: %w", p, err)
		}
		out = append(out, n)
	}
	return out, nil
}

// NormalizeExtension lowercases an extension and ensures the leading dot.
func NormalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" || ext == "." {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

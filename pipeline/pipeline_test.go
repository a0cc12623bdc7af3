package pipeline

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"pixbatch/config"
	"pixbatch/failures"
	"pixbatch/job"
	"pixbatch/report"
	"pixbatch/runs"
	"pixbatch/store"
	writerbackends "pixbatch/writerBackends"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, dir, name string, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{uint8(x * 3), uint8(y * 5), 90, 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), buf.Bytes(), 0o644))
}

func testConfig(t *testing.T, src string) config.Config {
	t.Helper()
	cfg := config.Config{
		SourceDir:    src,
		OutputSubdir: "output",
		ReportName:   "README.md",
		Resolutions:  []int{24, 12, 6},
		Extensions:   []string{".jpg", ".jpeg", ".png"},
		Workers:      2,
		JPEGQuality:  75,
	}
	require.NoError(t, cfg.Validate())
	return cfg
}

func sourceDir(t *testing.T, images int) string {
	t.Helper()
	src := t.TempDir()
	for i := 0; i < images; i++ {
		writePNG(t, src, string(rune('a'+i))+".png", 48, 32)
	}
	require.NoError(t, os.WriteFile(filepath.Join(src, "notes.txt"), []byte("not an image"), 0o644))
	return src
}

func outputNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func TestRunProducesArtifactsAndReport(t *testing.T) {
	src := sourceDir(t, 3)
	cfg := testConfig(t, src)

	sum, err := Run(context.Background(), cfg)
	require.NoError(t, err)

	assert.Len(t, sum.Files, 3)
	assert.Len(t, sum.Sequential.Artifacts(), 9)
	assert.Len(t, sum.Parallel.Artifacts(), 9)
	assert.Equal(t, []string{
		"a_12p.png", "a_24p.png", "a_6p.png",
		"b_12p.png", "b_24p.png", "b_6p.png",
		"c_12p.png", "c_24p.png", "c_6p.png",
	}, outputNames(t, cfg.OutputDir()))

	data, err := os.ReadFile(filepath.Join(src, "README.md"))
	require.NoError(t, err)
	assert.Equal(t, sum.Report, string(data))
	assert.Contains(t, sum.Report, "| Sequential | **")
	assert.Contains(t, sum.Report, "| Parallel | **")
	assert.NotEmpty(t, sum.RunID)
	assert.Zero(t, sum.Mirrored)
}

func TestRunTwiceIsIdempotent(t *testing.T) {
	src := sourceDir(t, 2)
	cfg := testConfig(t, src)

	_, err := Run(context.Background(), cfg)
	require.NoError(t, err)
	first := outputNames(t, cfg.OutputDir())

	_, err = Run(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, first, outputNames(t, cfg.OutputDir()))
	assert.Len(t, first, 6)

	// the output directory is never mistaken for a source image
	files, err := job.Discover(src, cfg.Extensions)
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestRunMissingSourceDirectory(t *testing.T) {
	parent := t.TempDir()
	cfg := testConfig(t, filepath.Join(parent, "nowhere"))

	_, err := Run(context.Background(), cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, job.ErrDirectoryNotFound)

	_, statErr := os.Stat(filepath.Join(parent, "nowhere"))
	assert.True(t, os.IsNotExist(statErr), "nothing is created for a missing source")
}

func TestRunReportWriteFailureIsTerminal(t *testing.T) {
	src := sourceDir(t, 1)
	cfg := testConfig(t, src)
	cfg.ReportName = filepath.Join("no-such-dir", "README.md")

	sum, err := Run(context.Background(), cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, report.ErrReportWrite)
	require.NotNil(t, sum)
	assert.Len(t, sum.Parallel.Artifacts(), 3, "passes ran before the report failed")
}

func TestRunRecordsHistory(t *testing.T) {
	src := sourceDir(t, 2)
	require.NoError(t, os.WriteFile(filepath.Join(src, "corrupt.png"), []byte("garbage"), 0o644))
	cfg := testConfig(t, src)
	cfg.HistoryDir = filepath.Join(t.TempDir(), "history")
	cfg.HistoryRetention = 24 * time.Hour

	sum, err := Run(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Sequential.FailedFiles())
	assert.Equal(t, 1, sum.Parallel.FailedFiles())
	assert.Len(t, sum.Parallel.Artifacts(), 6)

	db, err := store.Open(cfg.HistoryDir)
	require.NoError(t, err)
	defer db.Close()

	rec, err := runs.New(db).GetRun(sum.RunID)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, 3, rec.Files)
	assert.Equal(t, 1, rec.FailedFiles)
	assert.Equal(t, []int{24, 12, 6}, rec.Resolutions)

	fails, err := failures.New(db).ListFailures(sum.RunID)
	require.NoError(t, err)
	require.Len(t, fails, 2, "one decode failure per pass")
	for _, f := range fails {
		assert.Equal(t, job.KindDecode, f.Kind)
		assert.True(t, strings.HasSuffix(f.File, "corrupt.png"))
	}
}

func TestRunMirrorsParallelArtifacts(t *testing.T) {
	src := sourceDir(t, 2)
	cfg := testConfig(t, src)
	cfg.Mirror = config.MirrorS3
	mirrorDir := t.TempDir()

	var requested string
	orig := openWriter
	openWriter = func(ctx context.Context, backendType string, accessInfo map[string]string) (writerbackends.Writer, error) {
		if backendType == writerbackends.BackendLocal {
			return orig(ctx, backendType, accessInfo)
		}
		requested = backendType
		return writerbackends.NewLocal(mirrorDir)
	}
	t.Cleanup(func() { openWriter = orig })

	sum, err := Run(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, config.MirrorS3, requested)
	assert.Equal(t, 6, sum.Mirrored)
	assert.Equal(t, outputNames(t, cfg.OutputDir()), outputNames(t, mirrorDir))
}

func TestRunMirrorOpenFailureIsNotFatal(t *testing.T) {
	src := sourceDir(t, 1)
	cfg := testConfig(t, src)
	cfg.Mirror = config.MirrorGCS
	t.Setenv("PIXBATCH_GCS_BUCKET", "")

	sum, err := Run(context.Background(), cfg)
	require.NoError(t, err)
	assert.Zero(t, sum.Mirrored)
}

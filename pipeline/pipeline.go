// Package pipeline runs one full benchmark: discover the source images once, resize
// them in a sequential pass and then in a concurrent pass, and write the timing report.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"pixbatch/config"
	"pixbatch/encoder"
	"pixbatch/failures"
	"pixbatch/job"
	"pixbatch/logger"
	"pixbatch/models"
	"pixbatch/report"
	"pixbatch/runs"
	"pixbatch/store"
	"pixbatch/utils"
	writerbackends "pixbatch/writerBackends"
)

// openWriter is swapped in tests to stand in for remote backends.
var openWriter = writerbackends.Open

// Summary is what a run produced.
type Summary struct {
	RunID      string
	Files      []models.SourceFile
	Sequential models.PassResult
	Parallel   models.PassResult
	Report     string
	ReportPath string
	// Mirrored counts artifacts copied to the mirror backend.
	Mirrored int
}

// Run executes the whole sequence for a validated configuration. Only a missing
// source directory, an uncreatable output directory and a failed report write are
// returned as errors; per-file, mirror and history problems are logged.
func Run(ctx context.Context, cfg config.Config) (*Summary, error) {
	runID, err := utils.GenerateRunID(time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to generate run id: %w", err)
	}
	sum := &Summary{RunID: runID, ReportPath: cfg.ReportPath()}

	logger.Infof("Run %s, source directory: %s", runID, cfg.SourceDir)
	if err := job.CheckSourceDir(cfg.SourceDir); err != nil {
		return nil, err
	}

	outDir := cfg.OutputDir()
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", outDir, err)
	}
	logger.Infof("Output directory created/verified: %s", outDir)

	files, err := job.Discover(cfg.SourceDir, cfg.Extensions)
	if err != nil {
		return nil, err
	}
	sum.Files = files
	logger.Infof("Discovered %d images, target heights %v", len(files), cfg.Resolutions)

	hist := openHistory(cfg)
	defer hist.Close()

	local, err := openWriter(ctx, writerbackends.BackendLocal, map[string]string{"dir": outDir})
	if err != nil {
		return nil, err
	}
	defer local.Close()

	runner := &job.Runner{
		Processing: job.Processing{
			Transformer: encoder.NewTransformer(encoder.EncodeOptions{Quality: cfg.JPEGQuality}),
			Writer:      local,
			OutputDir:   outDir,
			Resolutions: cfg.Resolutions,
		},
		Workers:  cfg.Workers,
		RunID:    runID,
		Failures: hist.failures,
	}

	// Both passes get the very same slice so the timings compare like with like.
	sum.Sequential = runner.RunSequential(ctx, files)
	sum.Parallel = runner.RunConcurrent(ctx, files)

	sum.Report = report.Render(sum.Sequential, sum.Parallel)
	if err := report.Write(sum.ReportPath, sum.Report); err != nil {
		return sum, err
	}
	logger.Infof("Report written to %s", sum.ReportPath)

	if cfg.Mirror != config.MirrorNone {
		sum.Mirrored = mirror(ctx, cfg, sum.Parallel.Artifacts())
	}

	hist.record(runs.RunRecord{
		RunID:        runID,
		SourceDir:    cfg.SourceDir,
		Files:        len(files),
		Workers:      cfg.Workers,
		Resolutions:  cfg.Resolutions,
		SequentialMs: sum.Sequential.Milliseconds(),
		ParallelMs:   sum.Parallel.Milliseconds(),
		Improved:     report.Improved(sum.Sequential, sum.Parallel),
		FailedFiles:  sum.Parallel.FailedFiles(),
		ReportPath:   sum.ReportPath,
	})

	logger.Info("*** Optimisation complete ***")
	return sum, nil
}

// history bundles the optional pebble-backed stores. A zero history is a no-op.
type history struct {
	db       *store.DB
	runs     *runs.Store
	failures *failures.Store
}

func openHistory(cfg config.Config) *history {
	if cfg.HistoryDir == "" {
		return &history{}
	}
	db, err := store.Open(cfg.HistoryDir)
	if err != nil {
		logger.Warnf("Run history disabled: %v", err)
		return &history{}
	}
	h := &history{db: db, runs: runs.New(db), failures: failures.New(db)}
	h.prune(cfg.HistoryRetention)
	return h
}

func (h *history) prune(maxAge time.Duration) {
	if maxAge <= 0 {
		return
	}
	expired, err := h.runs.CleanupOldRecords(maxAge)
	if err != nil {
		logger.Errorf("Failed to cleanup old run records: %v", err)
		return
	}
	for _, id := range expired {
		if err := h.failures.DeleteRun(id); err != nil {
			logger.Errorf("Failed to cleanup failures of run %s: %v", id, err)
		}
	}
	if len(expired) > 0 {
		logger.Infof("Pruned %d runs older than %v from history", len(expired), maxAge)
	}
}

func (h *history) record(rec runs.RunRecord) {
	if h.runs == nil {
		return
	}
	if err := h.runs.StoreRun(rec); err != nil {
		logger.Errorf("Failed to store run record %s: %v", rec.RunID, err)
	}
}

func (h *history) Close() {
	if h.db == nil {
		return
	}
	if err := h.db.Close(); err != nil {
		logger.Errorf("Failed to close run history: %v", err)
	}
}

package job

import (
	"context"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"pixbatch/failures"
	"pixbatch/logger"
	"pixbatch/models"
)

// Runner drives a pass over a fixed file list.
type Runner struct {
	Processing Processing
	// Workers bounds the concurrent pass. Values below 1 mean runtime.NumCPU().
	Workers int

	// RunID and Failures are optional; with both set, every error of a pass is
	// recorded once the timed loop is over.
	RunID    string
	Failures *failures.Store
}

// RunSequential processes files one after another in the given order.
// Cancelling ctx stops before the next file; the current one finishes.
func (r *Runner) RunSequential(ctx context.Context, files []models.SourceFile) models.PassResult {
	pass := models.PassSequential
	logger.Infof("--- Starting %s pass over %d files ---", pass, len(files))

	results := make([]models.FileResult, 0, len(files))
	start := time.Now()
	for _, f := range files {
		if ctx.Err() != nil {
			break
		}
		results = append(results, r.process(ctx, pass, f))
	}
	elapsed := time.Since(start)

	return r.finish(models.PassResult{
		Pass:    pass,
		Elapsed: elapsed,
		Results: results,
		Skipped: len(files) - len(results),
	})
}

// RunConcurrent processes files on a bounded pool of goroutines and returns once
// every submitted file is done. No ordering holds between files. Cancelling ctx
// stops submitting new files; files already started finish.
func (r *Runner) RunConcurrent(ctx context.Context, files []models.SourceFile) models.PassResult {
	pass := models.PassParallel
	workers := r.workers()
	logger.Infof("--- Starting %s pass over %d files with %d workers ---", pass, len(files), workers)

	// Each unit owns exactly one slot, so no lock is needed on results.
	results := make([]models.FileResult, len(files))
	var g errgroup.Group
	g.SetLimit(workers)

	start := time.Now()
	submitted := 0
	for i, f := range files {
		i, f := i, f
		if ctx.Err() != nil {
			break
		}
		// Go blocks while all workers are busy, so indices are submitted in order.
		g.Go(func() error {
			results[i] = r.process(ctx, pass, f)
			return nil
		})
		submitted++
	}
	_ = g.Wait() // units never return errors; failures live in the results
	elapsed := time.Since(start)

	return r.finish(models.PassResult{
		Pass:    pass,
		Elapsed: elapsed,
		Results: results[:submitted],
		Skipped: len(files) - submitted,
	})
}

func (r *Runner) workers() int {
	if r.Workers < 1 {
		return runtime.NumCPU()
	}
	return r.Workers
}

func (r *Runner) process(ctx context.Context, pass models.PassKind, f models.SourceFile) models.FileResult {
	res := ProcessFile(ctx, f, r.Processing)
	for _, err := range res.Errors {
		logger.Errorf("[%s] %s: %v", pass, f.Path, err)
	}
	if !res.Failed() {
		logger.Debugf("[%s] %s -> %d artifacts", pass, f.Name, len(res.Artifacts))
	}
	return res
}

func (r *Runner) finish(res models.PassResult) models.PassResult {
	logger.Infof("[%s] Total duration: %d ms (%d files, %d artifacts, %d failed)",
		res.Pass, res.Milliseconds(), len(res.Results), len(res.Artifacts()), res.FailedFiles())
	if res.Skipped > 0 {
		logger.Warnf("[%s] Cancelled: %d files were not started", res.Pass, res.Skipped)
	}
	r.recordFailures(res)
	return res
}

func (r *Runner) recordFailures(res models.PassResult) {
	if r.Failures == nil || r.RunID == "" {
		return
	}
	for _, fr := range res.Results {
		for _, err := range fr.Errors {
			kind, height := ErrorKind(err)
			rec := failures.FailureRecord{
				RunID:  r.RunID,
				Pass:   string(res.Pass),
				File:   fr.File.Path,
				Height: height,
				Kind:   kind,
				Error:  err.Error(),
			}
			if storeErr := r.Failures.StoreFailure(rec); storeErr != nil {
				logger.Errorf("Failed to store failure for %s: %v", fr.File.Path, storeErr)
			}
		}
	}
}

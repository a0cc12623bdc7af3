package pipeline

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"pixbatch/config"
	"pixbatch/logger"
	"pixbatch/models"
	writerbackends "pixbatch/writerBackends"
)

// mirror copies artifacts to the configured remote backend with at most cfg.Workers
// uploads in flight. Failures are logged per artifact; the count of successful
// copies is returned.
func mirror(ctx context.Context, cfg config.Config, artifacts []models.Artifact) int {
	w, err := openWriter(ctx, cfg.Mirror, config.MirrorAccessInfo(cfg.Mirror))
	if err != nil {
		logger.Errorf("Mirror disabled: %v", err)
		return 0
	}
	defer func() {
		if err := w.Close(); err != nil {
			logger.Errorf("Failed to close %s mirror: %v", cfg.Mirror, err)
		}
	}()

	logger.Infof("Mirroring %d artifacts to %s", len(artifacts), w.Describe())

	var copied atomic.Int64
	var g errgroup.Group
	g.SetLimit(max(cfg.Workers, 1))
	for _, a := range artifacts {
		a := a
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := copyArtifact(ctx, w, a); err != nil {
				logger.Errorf("Mirror failed for %s: %v", a.Path, err)
				return nil
			}
			copied.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	n := int(copied.Load())
	logger.Infof("Mirrored %d/%d artifacts to %s", n, len(artifacts), w.Describe())
	return n
}

func copyArtifact(ctx context.Context, w writerbackends.Writer, a models.Artifact) error {
	f, err := os.Open(a.Path)
	if err != nil {
		return fmt.Errorf("failed to open artifact: %w", err)
	}
	defer f.Close()
	return w.Write(ctx, a.Name, f)
}

package writerbackends

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"pixbatch/logger"
)

// LocalWriter writes artifacts into a directory on the local file system.
// The directory must already exist; it is created once at startup, not per write.
type LocalWriter struct {
	Dir string
}

func NewLocal(dir string) (*LocalWriter, error) {
	if dir == "" {
		return nil, errors.New("missing required accessInfo key: dir")
	}
	return &LocalWriter{Dir: dir}, nil
}

// Write creates or truncates Dir/name and copies r into it.
func (w *LocalWriter) Write(ctx context.Context, name string, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if name == "" || filepath.Base(name) != name {
		return fmt.Errorf("invalid artifact name %q", name)
	}

	fullPath := filepath.Join(w.Dir, name)
	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", fullPath, err)
	}

	if _, err := io.Copy(file, r); err != nil {
		file.Close()
		return fmt.Errorf("failed to write to file %s: %w", fullPath, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close file %s: %w", fullPath, err)
	}

	logger.Debugf("saved '%s'", fullPath)
	return nil
}

func (w *LocalWriter) Describe() string { return w.Dir }

func (w *LocalWriter) Close() error { return nil }

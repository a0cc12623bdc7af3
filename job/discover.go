package job

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"pixbatch/logger"
	"pixbatch/models"
)

// ErrDirectoryNotFound is returned by Discover when the source directory is missing
// or is not a directory. It is fatal for a run.
var ErrDirectoryNotFound = errors.New("source directory not found")

// CheckSourceDir returns ErrDirectoryNotFound unless sourceDir exists and is a directory.
func CheckSourceDir(sourceDir string) error {
	info, err := os.Stat(sourceDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrDirectoryNotFound, sourceDir)
		}
		return fmt.Errorf("failed to stat source directory %s: %w", sourceDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrDirectoryNotFound, sourceDir)
	}
	return nil
}

// Discover lists the files directly inside sourceDir whose lowercased extension is
// one of extensions. Subdirectories are not entered. The order is whatever the
// directory listing yields; callers must not depend on it.
func Discover(sourceDir string, extensions []string) ([]models.SourceFile, error) {
	if err := CheckSourceDir(sourceDir); err != nil {
		return nil, err
	}

	allowed := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		allowed[strings.ToLower(ext)] = true
	}

	entries, err := os.ReadDir(sourceDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list source directory %s: %w", sourceDir, err)
	}

	files := make([]models.SourceFile, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !allowed[strings.ToLower(filepath.Ext(entry.Name()))] {
			logger.Debugf("skipping %s: extension not accepted", entry.Name())
			continue
		}
		files = append(files, models.NewSourceFile(filepath.Join(sourceDir, entry.Name())))
	}
	return files, nil
}

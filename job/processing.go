package job

import (
	"bytes"
	"context"
	"os"
	"path/filepath"

	"pixbatch/encoder"
	"pixbatch/models"
	writerbackends "pixbatch/writerBackends"
)

// Processing is everything one unit of work needs. It is shared read-only by all
// workers of a pass.
type Processing struct {
	Transformer *encoder.Transformer
	Writer      writerbackends.Writer
	OutputDir   string
	Resolutions []int
}

// ProcessFile reads and decodes file once, then renders and writes one artifact per
// configured resolution. A read or decode failure skips the whole file; a failure
// at one resolution is recorded and the remaining resolutions are still attempted.
// The decoded image is only referenced from this call and is released on return.
func ProcessFile(ctx context.Context, file models.SourceFile, p Processing) models.FileResult {
	result := models.FileResult{File: file}

	// A started file always runs to completion, even if the pass is cancelled meanwhile.
	ctx = context.WithoutCancel(ctx)

	data, err := os.ReadFile(file.Path)
	if err != nil {
		result.Errors = append(result.Errors, &IOError{Op: "read", Path: file.Path, Err: err})
		return result
	}

	img, err := p.Transformer.Decode(file.Ext, data)
	if err != nil {
		result.Errors = append(result.Errors, err)
		return result
	}

	for _, height := range p.Resolutions {
		rendered, err := p.Transformer.Render(img, file.Ext, height)
		if err != nil {
			result.Errors = append(result.Errors, err)
			continue
		}

		name := models.ArtifactName(file, height)
		outPath := filepath.Join(p.OutputDir, name)
		if err := p.Writer.Write(ctx, name, bytes.NewReader(rendered.Data)); err != nil {
			result.Errors = append(result.Errors, &IOError{Op: "write", Path: outPath, Height: height, Err: err})
			continue
		}

		result.Artifacts = append(result.Artifacts, models.Artifact{
			Source: file.Path,
			Name:   name,
			Path:   outPath,
			Width:  rendered.Width,
			Height: rendered.Height,
		})
	}
	return result
}

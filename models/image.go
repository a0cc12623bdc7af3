package models

import (
	"fmt"
	"path/filepath"
)

// SourceFile is an input image found by discovery. It is never mutated after discovery.
type SourceFile struct {
	Path string // absolute or source-relative path as discovered
	Name string // file name with extension
	Base string // file name without extension
	Ext  string // extension exactly as found on disk, e.g. ".JPG"
}

// NewSourceFile builds a SourceFile from a path.
func NewSourceFile(path string) SourceFile {
	name := filepath.Base(path)
	ext := filepath.Ext(name)
	return SourceFile{
		Path: path,
		Name: name,
		Base: name[:len(name)-len(ext)],
		Ext:  ext,
	}
}

// Artifact is one output file produced for a (source file, target height) pair.
type Artifact struct {
	Source string // SourceFile.Path
	Name   string // {base}_{height}p{ext}
	Path   string // {outputDir}/{Name}
	Width  int
	Height int
}

// ArtifactName returns the output file name for src at the given target height.
// The source extension is kept as-is so the container format round-trips.
func ArtifactName(src SourceFile, height int) string {
	return fmt.Sprintf("%s_%dp%s", src.Base, height, src.Ext)
}

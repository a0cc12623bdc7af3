package models

import (
	"errors"
	"time"
)

// PassKind names one traversal strategy over the discovered files.
type PassKind string

const (
	PassSequential PassKind = "sequential"
	PassParallel   PassKind = "parallel"
)

// FileResult is what processing a single source file produced.
// A decode failure leaves Artifacts empty with exactly one error; per-resolution
// failures accumulate next to the artifacts that did succeed.
type FileResult struct {
	File      SourceFile
	Artifacts []Artifact
	Errors    []error
}

// Failed reports whether any error was recorded for the file.
func (r FileResult) Failed() bool { return len(r.Errors) > 0 }

// Err joins every recorded error, or returns nil.
func (r FileResult) Err() error { return errors.Join(r.Errors...) }

// PassResult is the outcome of one full pass over the file set.
type PassResult struct {
	Pass    PassKind
	Elapsed time.Duration
	Results []FileResult
	// Skipped counts files never started because the pass was cancelled.
	Skipped int
}

// Milliseconds returns the elapsed wall clock in whole milliseconds.
func (p PassResult) Milliseconds() int64 { return p.Elapsed.Milliseconds() }

// Artifacts flattens the artifacts of every file, in result order.
func (p PassResult) Artifacts() []Artifact {
	var out []Artifact
	for _, r := range p.Results {
		out = append(out, r.Artifacts...)
	}
	return out
}

// FailedFiles counts files with at least one error.
func (p PassResult) FailedFiles() int {
	n := 0
	for _, r := range p.Results {
		if r.Failed() {
			n++
		}
	}
	return n
}

// ErrorCount counts every recorded error across all files.
func (p PassResult) ErrorCount() int {
	n := 0
	for _, r := range p.Results {
		n += len(r.Errors)
	}
	return n
}

package job

import (
	"errors"
	"fmt"

	"pixbatch/encoder"
)

// IOError is a failed read of a source file or a failed write of an artifact.
// Height is set for artifact writes only.
type IOError struct {
	Op     string // "read" or "write"
	Path   string
	Height int
	Err    error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// Error kinds used in logs and failure records.
const (
	KindDecode = "decode"
	KindEncode = "encode"
	KindIO     = "io"
	KindOther  = "other"
)

// ErrorKind classifies a per-file error and returns the target height it concerns,
// or 0 when it concerns the whole file.
func ErrorKind(err error) (kind string, height int) {
	var (
		decErr *encoder.DecodeError
		encErr *encoder.EncodeError
		ioErr  *IOError
	)
	switch {
	case errors.As(err, &decErr):
		return KindDecode, 0
	case errors.As(err, &encErr):
		return KindEncode, encErr.Height
	case errors.As(err, &ioErr):
		return KindIO, ioErr.Height
	default:
		return KindOther, 0
	}
}

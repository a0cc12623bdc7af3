package encoder

import "fmt"

// DecodeError means the source bytes are not a readable image for their extension.
// Nothing can be produced for the file.
type DecodeError struct {
	Format string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Format, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// EncodeError means one target height could not be encoded. Other heights are unaffected.
type EncodeError struct {
	Format string
	Height int
	Err    error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode %s at %dp: %v", e.Format, e.Height, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

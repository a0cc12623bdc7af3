package encoder

import (
	"bytes"
	"errors"
	"fmt"
	"image"
)

// Rendered is one resized, encoded copy of a source image.
type Rendered struct {
	Width, Height int
	Data          []byte
}

// Transformer turns source image bytes into resized copies in the same container format.
// It holds no per-image state and is safe for concurrent use.
type Transformer struct {
	Options EncodeOptions
}

// NewTransformer returns a Transformer with the default codecs registered.
func NewTransformer(opts EncodeOptions) *Transformer {
	RegisterDefaults()
	return &Transformer{Options: opts}
}

// Decode parses data with the codec registered for ext.
func (t *Transformer) Decode(ext string, data []byte) (image.Image, error) {
	c, ok := Get(ext)
	if !ok {
		return nil, &DecodeError{Format: ext, Err: fmt.Errorf("no codec registered for %q", ext)}
	}
	img, err := c.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Format: c.Format, Err: err}
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, &DecodeError{Format: c.Format, Err: errors.New("image has no pixels")}
	}
	return img, nil
}

// Render resizes an already decoded image to height and encodes it with the codec for ext.
func (t *Transformer) Render(img image.Image, ext string, height int) (Rendered, error) {
	c, ok := Get(ext)
	if !ok {
		return Rendered{}, &EncodeError{Format: ext, Height: height, Err: fmt.Errorf("no codec registered for %q", ext)}
	}
	if height <= 0 {
		return Rendered{}, &EncodeError{Format: c.Format, Height: height, Err: errors.New("target height must be positive")}
	}

	b := img.Bounds()
	width := TargetWidth(b.Dx(), b.Dy(), height)
	resized := Resize(img, width, height)

	var buf bytes.Buffer
	if err := c.Encode(&buf, resized, t.Options); err != nil {
		return Rendered{}, &EncodeError{Format: c.Format, Height: height, Err: err}
	}
	return Rendered{Width: width, Height: height, Data: buf.Bytes()}, nil
}

// Transform decodes data once and renders every height independently from the
// decoded source. Heights that fail are reported through the joined error while
// the others are still returned, in input order.
func (t *Transformer) Transform(ext string, data []byte, heights []int) ([]Rendered, error) {
	img, err := t.Decode(ext, data)
	if err != nil {
		return nil, err
	}

	out := make([]Rendered, 0, len(heights))
	var errs []error
	for _, h := range heights {
		r, err := t.Render(img, ext, h)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, r)
	}
	return out, errors.Join(errs...)
}

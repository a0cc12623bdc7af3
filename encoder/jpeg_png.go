package encoder

import (
	"image"
	"image/jpeg"
	"image/png"
	"io"
)

// DefaultJPEGQuality matches the quality most image libraries use when none is given.
const DefaultJPEGQuality = 75

var jpegCodec = Codec{
	Format: "jpeg",
	Decode: jpeg.Decode,
	Encode: func(w io.Writer, img image.Image, o EncodeOptions) error {
		q := o.Quality
		if q <= 0 || q > 100 {
			q = DefaultJPEGQuality
		}
		return jpeg.Encode(w, img, &jpeg.Options{Quality: q})
	},
}

var pngCodec = Codec{
	Format: "png",
	Decode: png.Decode,
	Encode: func(w io.Writer, img image.Image, o EncodeOptions) error {
		enc := png.Encoder{CompressionLevel: o.Compression}
		return enc.Encode(w, img)
	},
}

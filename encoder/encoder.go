package encoder

import (
	"image"
	"image/png"
	"io"
	"strings"
	"sync"

	"pixbatch/logger"
)

// EncodeOptions tunes the encoders. Zero values select the codec defaults.
type EncodeOptions struct {
	Quality     int // JPEG quality, 1–100
	Compression png.CompressionLevel
}

// Codec decodes and encodes one container format.
type Codec struct {
	Format string
	Decode func(r io.Reader) (image.Image, error)
	Encode func(w io.Writer, img image.Image, opts EncodeOptions) error
}

var (
	registryMu sync.RWMutex
	// Registry maps a lowercased file extension (".jpg") to its codec.
	Registry = map[string]Codec{}
)

// Register adds or replaces the codec for each extension.
func Register(c Codec, exts ...string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	for _, ext := range exts {
		Registry[strings.ToLower(ext)] = c
		logger.Debugf("encoder [%s] registered for %s", c.Format, ext)
	}
}

// Get looks up the codec for ext, case-insensitively.
func Get(ext string) (Codec, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	c, ok := Registry[strings.ToLower(ext)]
	return c, ok
}

var defaultsOnce sync.Once

// RegisterDefaults registers the built-in JPEG and PNG codecs. Safe to call repeatedly.
func RegisterDefaults() {
	defaultsOnce.Do(func() {
		Register(jpegCodec, ".jpg", ".jpeg")
		Register(pngCodec, ".png")
	})
}

package encoder

import (
	"bytes"
	"image"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/webp"
)

// WebPEncoder encodes lossy WebP through github.com/gen2brain/webp.
// Unlike JPEG it keeps the alpha channel, so frosted rgba output can use it.
type WebPEncoder struct {
	// Lossless switches to VP8L; quality then controls effort.
	Lossless bool
}

func (WebPEncoder) Format() string    { return "webp" }
func (WebPEncoder) Extension() string { return "webp" }

func (e WebPEncoder) Encode(img image.Image, quality int) ([]byte, error) {
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}

	var buf bytes.Buffer
	buf.Grow(32 * 1024)

	// The encoder wants 8-bit RGBA samples; gray luma planes are widened.
	src := img
	if _, ok := img.(*image.NRGBA); !ok {
		src = imaging.Clone(img)
	}
	if err := webp.Encode(&buf, src, webp.Options{Quality: quality, Lossless: e.Lossless}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

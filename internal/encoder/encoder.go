package encoder

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
)

// DefaultQuality is used when a caller passes a quality outside 1-100.
const DefaultQuality = 82

// Encoder encodes a blurred image to a specific format.
type Encoder interface {
	// Format returns the output format name ("jpeg", "png" or "webp").
	Format() string

	// Extension returns the file extension without dot.
	Extension() string

	// Encode converts the image to bytes at the given quality (1-100).
	// Lossless encoders ignore quality.
	Encode(img image.Image, quality int) ([]byte, error)
}

// JPEGEncoder encodes with image/jpeg. Gray images stay single-channel.
type JPEGEncoder struct{}

func (JPEGEncoder) Format() string    { return "jpeg" }
func (JPEGEncoder) Extension() string { return "jpg" }

func (JPEGEncoder) Encode(img image.Image, quality int) ([]byte, error) {
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}

	var buf bytes.Buffer
	buf.Grow(64 * 1024) // blurred output compresses well

	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// PNGEncoder encodes with image/png. Used for alpha and luma output.
type PNGEncoder struct{}

func (PNGEncoder) Format() string    { return "png" }
func (PNGEncoder) Extension() string { return "png" }

func (PNGEncoder) Encode(img image.Image, _ int) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(128 * 1024)

	enc := &png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Package stackblur implements an in-place stack blur for single-channel
// 8-bit buffers.
//
// Stack blur approximates a Gaussian with a tent-shaped kernel of width
// 2*radius+1. Each line is processed with a sliding window whose weighted
// sum is updated in O(1) per sample, and the per-pixel division is replaced
// by a multiply and shift from MulTable/ShrTable. A full blur is a
// horizontal pass over every row followed by a vertical pass over every
// column of the same buffer.
package stackblur

import (
	"errors"
	"fmt"
)

const (
	// MinRadius and MaxRadius bound the supported blur radius.
	MinRadius = 2
	MaxRadius = 254

	// maxDiv is the largest window size, 2*MaxRadius+1.
	maxDiv = 2*MaxRadius + 1
)

var (
	// ErrRadius is returned when the radius is outside [MinRadius, MaxRadius].
	ErrRadius = errors.New("stackblur: radius out of range")
	// ErrDimensions is returned for a non-positive width or height.
	ErrDimensions = errors.New("stackblur: invalid dimensions")
	// ErrBufferSize is returned when len(buf) != width*height.
	ErrBufferSize = errors.New("stackblur: buffer size mismatch")
)

// ValidateRadius reports whether radius lies in the supported table domain.
func ValidateRadius(radius int) error {
	if radius < MinRadius || radius > MaxRadius {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrRadius, radius, MinRadius, MaxRadius)
	}
	return nil
}

func validate(buf []byte, width, height, radius int) error {
	if err := ValidateRadius(radius); err != nil {
		return err
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrDimensions, width, height)
	}
	if len(buf) != width*height {
		return fmt.Errorf("%w: len %d, want %d (%dx%d)", ErrBufferSize, len(buf), width*height, width, height)
	}
	return nil
}

// Blur blurs buf in place. buf holds width*height samples in row-major
// order. The horizontal pass completes before the vertical pass starts.
//
// Blur never fails for a valid radius and a buffer matching the
// dimensions; anything else is rejected before buf is touched.
func Blur(buf []byte, width, height, radius int) error {
	if err := validate(buf, width, height, radius); err != nil {
		return err
	}
	blurRows(buf, width, 0, height, radius)
	blurColumns(buf, width, height, 0, width, radius)
	return nil
}

// BlurRows runs only the horizontal pass.
func BlurRows(buf []byte, width, height, radius int) error {
	if err := validate(buf, width, height, radius); err != nil {
		return err
	}
	blurRows(buf, width, 0, height, radius)
	return nil
}

// BlurColumns runs only the vertical pass.
func BlurColumns(buf []byte, width, height, radius int) error {
	if err := validate(buf, width, height, radius); err != nil {
		return err
	}
	blurColumns(buf, width, height, 0, width, radius)
	return nil
}

// blurRows blurs rows [y0, y1).
func blurRows(buf []byte, width, y0, y1, radius int) {
	var st ring
	for y := y0; y < y1; y++ {
		sweep(buf, y*width, 1, width, radius, &st)
	}
}

// blurColumns blurs columns [x0, x1).
func blurColumns(buf []byte, width, height, x0, x1, radius int) {
	var st ring
	for x := x0; x < x1; x++ {
		sweep(buf, x, width, height, radius, &st)
	}
}

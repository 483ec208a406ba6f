// Package quality measures how closely stack blur tracks a true
// convolution blur of the same radius.
package quality

import (
	"fmt"
	"image"
	"math"

	"github.com/AnyUserName/stackblur/internal/plane"
	"github.com/AnyUserName/stackblur/internal/stackblur"
	"github.com/anthonynsimon/bild/blur"
)

// Reference names a blur the stack blur is compared against.
type Reference string

const (
	Gaussian Reference = "gaussian"
	Box      Reference = "box"
)

// Metrics compares two planes of equal size.
type Metrics struct {
	MAE     float64 // mean absolute difference
	MaxDiff int     // largest absolute difference
	PSNR    float64 // dB, +Inf when identical
}

// Report is the result of Compare.
type Report struct {
	Reference Reference
	Radius    int
	Width     int
	Height    int
	Metrics   Metrics
}

// Compare blurs the luminance of img with stack blur and with the
// reference blur at the same radius, and measures their difference.
func Compare(img image.Image, radius int, ref Reference) (*Report, error) {
	if err := stackblur.ValidateRadius(radius); err != nil {
		return nil, err
	}

	ours := plane.Luma(img)
	if err := ours.Blur(radius, 1); err != nil {
		return nil, err
	}

	var refImg image.Image
	switch ref {
	case Gaussian:
		refImg = blur.Gaussian(img, float64(radius))
	case Box:
		refImg = blur.Box(img, float64(radius))
	default:
		return nil, fmt.Errorf("unknown reference %q (want gaussian or box)", ref)
	}
	theirs := plane.Luma(refImg)

	m, err := Measure(ours, theirs)
	if err != nil {
		return nil, err
	}
	return &Report{
		Reference: ref,
		Radius:    radius,
		Width:     ours.Width,
		Height:    ours.Height,
		Metrics:   m,
	}, nil
}

// Measure computes difference metrics between two planes.
func Measure(a, b *plane.Plane) (Metrics, error) {
	if a.Width != b.Width || a.Height != b.Height {
		return Metrics{}, fmt.Errorf("size mismatch: %dx%d vs %dx%d", a.Width, a.Height, b.Width, b.Height)
	}
	if len(a.Pix) == 0 {
		return Metrics{}, fmt.Errorf("empty planes")
	}

	var absSum, sqSum float64
	maxDiff := 0
	for i, av := range a.Pix {
		d := int(av) - int(b.Pix[i])
		if d < 0 {
			d = -d
		}
		if d > maxDiff {
			maxDiff = d
		}
		absSum += float64(d)
		sqSum += float64(d * d)
	}

	n := float64(len(a.Pix))
	m := Metrics{MAE: absSum / n, MaxDiff: maxDiff, PSNR: math.Inf(1)}
	if mse := sqSum / n; mse > 0 {
		m.PSNR = 10 * math.Log10(255*255/mse)
	}
	return m, nil
}

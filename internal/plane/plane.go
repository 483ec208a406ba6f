// Package plane converts between images and the single-channel 8-bit
// buffers the stack blur engine works on.
package plane

import (
	"fmt"
	"image"
	"strings"

	"github.com/AnyUserName/stackblur/internal/stackblur"
	"github.com/disintegration/imaging"
)

// Plane is one channel of an image: Width*Height samples, row-major.
type Plane struct {
	Pix    []byte
	Width  int
	Height int
}

// New allocates a zeroed plane.
func New(width, height int) *Plane {
	return &Plane{Pix: make([]byte, width*height), Width: width, Height: height}
}

// Blur blurs the plane in place. workers > 1 splits each pass across
// goroutines; the output is the same either way.
func (p *Plane) Blur(radius, workers int) error {
	if workers > 1 {
		return stackblur.BlurParallel(p.Pix, p.Width, p.Height, radius, workers)
	}
	return stackblur.Blur(p.Pix, p.Width, p.Height, radius)
}

// Mode selects which channels of an image are blurred.
type Mode string

const (
	ModeLuma Mode = "luma" // grayscale output
	ModeRGB  Mode = "rgb"  // colour channels, alpha untouched
	ModeRGBA Mode = "rgba" // all four channels
)

// ParseMode accepts luma, gray, rgb or rgba (case-insensitive).
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "luma", "gray", "grey":
		return ModeLuma, nil
	case "rgb":
		return ModeRGB, nil
	case "rgba":
		return ModeRGBA, nil
	}
	return "", fmt.Errorf("unknown blur mode %q (want luma, rgb or rgba)", s)
}

// Channels is the number of planes blurred in this mode.
func (m Mode) Channels() int {
	switch m {
	case ModeLuma:
		return 1
	case ModeRGB:
		return 3
	default:
		return 4
	}
}

// Luma extracts the luminance of img as a plane.
func Luma(img image.Image) *Plane {
	gray := imaging.Grayscale(img)
	b := gray.Bounds()
	p := New(b.Dx(), b.Dy())
	for y := 0; y < p.Height; y++ {
		row := gray.Pix[y*gray.Stride : y*gray.Stride+p.Width*4]
		for x := 0; x < p.Width; x++ {
			p.Pix[y*p.Width+x] = row[x*4]
		}
	}
	return p
}

// Split copies img into an NRGBA image and extracts its first n channels
// (R, G, B, A order) as planes.
func Split(img image.Image, n int) (*image.NRGBA, []*Plane) {
	if n < 1 || n > 4 {
		n = 4
	}
	nrgba := imaging.Clone(img)
	b := nrgba.Bounds()
	w, h := b.Dx(), b.Dy()

	planes := make([]*Plane, n)
	for c := range planes {
		planes[c] = New(w, h)
	}
	for y := 0; y < h; y++ {
		row := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+w*4]
		for x := 0; x < w; x++ {
			for c, p := range planes {
				p.Pix[y*w+x] = row[x*4+c]
			}
		}
	}
	return nrgba, planes
}

// Merge writes planes back into channels 0..len(planes)-1 of dst.
func Merge(dst *image.NRGBA, planes []*Plane) error {
	b := dst.Bounds()
	w, h := b.Dx(), b.Dy()
	if len(planes) > 4 {
		return fmt.Errorf("merge: %d planes, at most 4", len(planes))
	}
	for c, p := range planes {
		if p.Width != w || p.Height != h {
			return fmt.Errorf("merge: plane %d is %dx%d, image is %dx%d", c, p.Width, p.Height, w, h)
		}
	}
	for y := 0; y < h; y++ {
		row := dst.Pix[y*dst.Stride : y*dst.Stride+w*4]
		for x := 0; x < w; x++ {
			for c, p := range planes {
				row[x*4+c] = p.Pix[y*w+x]
			}
		}
	}
	return nil
}

// ToGray wraps a copy of the plane as an 8-bit grayscale image.
func (p *Plane) ToGray() *image.Gray {
	g := image.NewGray(image.Rect(0, 0, p.Width, p.Height))
	for y := 0; y < p.Height; y++ {
		copy(g.Pix[y*g.Stride:y*g.Stride+p.Width], p.Pix[y*p.Width:(y+1)*p.Width])
	}
	return g
}

// FromGray copies an 8-bit grayscale image into a plane.
func FromGray(g *image.Gray) *Plane {
	b := g.Bounds()
	p := New(b.Dx(), b.Dy())
	for y := 0; y < p.Height; y++ {
		off := g.PixOffset(b.Min.X, b.Min.Y+y)
		copy(p.Pix[y*p.Width:(y+1)*p.Width], g.Pix[off:off+p.Width])
	}
	return p
}

// BlurImage blurs img according to mode and returns a new image: *image.Gray
// for ModeLuma, *image.NRGBA otherwise. img itself is never modified.
func BlurImage(img image.Image, mode Mode, radius, workers int) (image.Image, error) {
	if err := stackblur.ValidateRadius(radius); err != nil {
		return nil, err
	}
	if mode == ModeLuma {
		p := Luma(img)
		if err := p.Blur(radius, workers); err != nil {
			return nil, err
		}
		return p.ToGray(), nil
	}

	nrgba, planes := Split(img, mode.Channels())
	for c, p := range planes {
		if err := p.Blur(radius, workers); err != nil {
			return nil, fmt.Errorf("channel %d: %w", c, err)
		}
	}
	if err := Merge(nrgba, planes); err != nil {
		return nil, err
	}
	return nrgba, nil
}

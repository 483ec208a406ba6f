//go:build ignore

// gen_fixtures writes the inputs for the stackblur smoke test: a few
// images with sharp features that a blur visibly softens, plus a raw
// plane file for the plane subcommands.
// Usage: go run gen_fixtures.go <output_dir>
package main

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"

	"github.com/AnyUserName/stackblur/internal/plane"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: gen_fixtures <output_dir>")
		os.Exit(1)
	}
	dir := os.Args[1]
	must(os.MkdirAll(filepath.Join(dir, "images", "tiles"), 0o755))

	writeJPEG(filepath.Join(dir, "images", "banner.jpg"), gradient(400, 225))
	for i, size := range []int{4, 8, 16} {
		name := fmt.Sprintf("checker-%d.png", i+1)
		writePNG(filepath.Join(dir, "images", "tiles", name), checker(128, 96, size))
	}
	writePNG(filepath.Join(dir, "images", "glass.png"), alphaDisc(120, 120))

	// A single bright dot; blurring it shows the tent kernel directly.
	p := plane.New(64, 64)
	p.Pix[32*64+32] = 255
	f, err := os.Create(filepath.Join(dir, "dot.sbp"))
	must(err)
	must(plane.Encode(f, p, true))
	must(f.Close())

	fmt.Fprintf(os.Stderr, "[gen_fixtures] created 6 fixtures in %s\n", dir)
}

func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: 128, A: 255})
		}
	}
	return img
}

func checker(w, h, size int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBA{R: 20, G: 20, B: 20, A: 255}
			if (x/size+y/size)%2 == 0 {
				c = color.NRGBA{R: 240, G: 240, B: 240, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// alphaDisc is an opaque disc on a transparent field.
func alphaDisc(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	cx, cy, r := w/2, h/2, w/3
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= r*r {
				img.SetNRGBA(x, y, color.NRGBA{R: 40, G: 120, B: 220, A: 255})
			}
		}
	}
	return img
}

func writePNG(path string, img image.Image) {
	f, err := os.Create(path)
	must(err)
	defer f.Close()
	must(png.Encode(f, img))
}

func writeJPEG(path string, img image.Image) {
	f, err := os.Create(path)
	must(err)
	defer f.Close()
	must(jpeg.Encode(f, img, &jpeg.Options{Quality: 85}))
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

package pipeline

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/AnyUserName/stackblur/internal/encoder"
	"github.com/AnyUserName/stackblur/internal/hasher"
	"github.com/AnyUserName/stackblur/internal/logging"
	"github.com/AnyUserName/stackblur/internal/manifest"
	"github.com/AnyUserName/stackblur/internal/plane"
	"github.com/AnyUserName/stackblur/internal/profile"
	"github.com/disintegration/imaging"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// processResult holds the result of processing a single source image.
type processResult struct {
	key   string
	asset manifest.Asset
	err   error
}

// rendered is a blurred, encoded image ready to be written.
type rendered struct {
	data   []byte
	enc    encoder.Encoder
	width  int
	height int
	blur   time.Duration
}

// decodeFile opens and decodes an image from disk.
func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return img, nil
}

// hasAlpha reports whether img has any non-opaque pixel.
func hasAlpha(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return !o.Opaque()
	}
	return true
}

// render scales, blurs and encodes img. enc overrides the profile's
// format choice when non-nil.
func render(img image.Image, prof profile.Profile, planeWorkers int, registry *encoder.Registry, enc encoder.Encoder) (*rendered, error) {
	alpha := hasAlpha(img)

	b := img.Bounds()
	w, h := prof.TargetSize(b.Dx(), b.Dy())
	if w != b.Dx() || h != b.Dy() {
		img = imaging.Resize(img, w, h, imaging.Lanczos)
	}

	start := time.Now()
	blurred, err := plane.BlurImage(img, prof.Mode, prof.Radius, planeWorkers)
	if err != nil {
		return nil, fmt.Errorf("blur: %w", err)
	}
	elapsed := time.Since(start)

	if enc == nil {
		enc = registry.Resolve(prof.Formats, alpha && prof.Mode != plane.ModeLuma)
	}
	data, err := enc.Encode(blurred, prof.Quality)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", enc.Format(), err)
	}

	return &rendered{data: data, enc: enc, width: w, height: h, blur: elapsed}, nil
}

// processImage handles a single source image: decode, scale, blur, encode, write.
func processImage(src Source, cfg Config, registry *encoder.Registry) processResult {
	result := processResult{key: src.Key}
	log := logging.Logger().With("key", src.Key)

	img, err := decodeFile(src.AbsPath)
	if err != nil {
		result.err = fmt.Errorf("%s: %w", src.RelPath, err)
		return result
	}
	b := img.Bounds()

	out, err := render(img, cfg.Profile, cfg.PlaneWorkers, registry, nil)
	if err != nil {
		result.err = fmt.Errorf("%s: %w", src.RelPath, err)
		return result
	}

	contentHash := hasher.ContentHash(out.data, 16)

	// Build filename: key.r<radius>.hash.ext
	keyDir := filepath.Dir(src.Key)
	fileName := fmt.Sprintf("%s.r%d.%s.%s",
		filepath.Base(src.Key), cfg.Profile.Radius, contentHash[:8], out.enc.Extension())
	relPath := filepath.ToSlash(filepath.Join(keyDir, fileName))
	outPath := filepath.Join(cfg.OutputDir, relPath)

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		result.err = fmt.Errorf("mkdir for %s: %w", relPath, err)
		return result
	}
	if err := os.WriteFile(outPath, out.data, 0o644); err != nil {
		result.err = fmt.Errorf("write %s: %w", relPath, err)
		return result
	}

	log.Debug("blurred",
		"size", fmt.Sprintf("%dx%d", out.width, out.height),
		"format", out.enc.Format(),
		"bytes", len(out.data),
		"blur", out.blur)

	result.asset = manifest.Asset{
		Original: manifest.OriginalInfo{
			Width:    b.Dx(),
			Height:   b.Dy(),
			Format:   src.Format,
			Size:     src.Size,
			HasAlpha: hasAlpha(img),
		},
		Output: manifest.Output{
			Format: out.enc.Format(),
			Width:  out.width,
			Height: out.height,
			Size:   int64(len(out.data)),
			Hash:   contentHash,
			Path:   relPath,
		},
		BlurMS: float64(out.blur.Microseconds()) / 1000,
	}
	return result
}

// FileResult describes one image blurred by ProcessFile.
type FileResult struct {
	Output string        `json:"output"`
	Format string        `json:"format"`
	Width  int           `json:"width"`
	Height int           `json:"height"`
	Size   int64         `json:"size"`
	Hash   string        `json:"hash"`
	Blur   time.Duration `json:"blur_ns"`
}

// ProcessFile blurs a single image from inPath to outPath. The output
// format follows outPath's extension (.jpg/.jpeg/.png/.webp); other extensions
// use the profile's formats.
func ProcessFile(inPath, outPath string, prof profile.Profile, planeWorkers int) (*FileResult, error) {
	if err := prof.Validate(); err != nil {
		return nil, err
	}
	registry := encoder.NewRegistry()

	img, err := decodeFile(inPath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", inPath, err)
	}

	enc := registry.Get(FormatOf(outPath))
	if enc != nil && enc.Format() == "jpeg" && prof.Mode == plane.ModeRGBA && hasAlpha(img) {
		logging.Logger().Warn("jpeg output drops blurred alpha", "output", outPath)
	}

	out, err := render(img, prof, planeWorkers, registry, enc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", inPath, err)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir: %w", err)
	}
	if err := os.WriteFile(outPath, out.data, 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", outPath, err)
	}

	return &FileResult{
		Output: outPath,
		Format: out.enc.Format(),
		Width:  out.width,
		Height: out.height,
		Size:   int64(len(out.data)),
		Hash:   hasher.ContentHash(out.data, 16),
		Blur:   out.blur,
	}, nil
}

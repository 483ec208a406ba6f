package encoder

import (
	"fmt"
	"strings"
)

// Registry maps format names to encoders.
type Registry struct {
	encoders map[string]Encoder
}

// NewRegistry creates a registry with the JPEG, PNG and WebP encoders.
func NewRegistry() *Registry {
	r := &Registry{encoders: make(map[string]Encoder)}
	for _, enc := range []Encoder{JPEGEncoder{}, PNGEncoder{}, WebPEncoder{}} {
		r.encoders[enc.Format()] = enc
	}
	return r
}

// Get returns an encoder for the given format, or nil if unknown.
// "jpg" is accepted as an alias for "jpeg".
func (r *Registry) Get(format string) Encoder {
	return r.encoders[normalize(format)]
}

// Available returns all format names in priority order.
func (r *Registry) Available() []string {
	var result []string
	for _, f := range []string{"jpeg", "png", "webp"} {
		if _, ok := r.encoders[f]; ok {
			result = append(result, f)
		}
	}
	return result
}

// Resolve picks the output format for one image: the first requested
// format that is known and can carry the image. JPEG cannot carry alpha,
// so alpha images fall through to PNG.
func (r *Registry) Resolve(requested []string, hasAlpha bool) Encoder {
	for _, f := range requested {
		f = normalize(f)
		if hasAlpha && f == "jpeg" {
			continue
		}
		if enc, ok := r.encoders[f]; ok {
			return enc
		}
	}
	if hasAlpha {
		return r.encoders["png"]
	}
	return r.encoders["jpeg"]
}

// String returns a summary of available encoders.
func (r *Registry) String() string {
	return fmt.Sprintf("encoders: %s", strings.Join(r.Available(), ", "))
}

func normalize(format string) string {
	f := strings.ToLower(format)
	if f == "jpg" {
		return "jpeg"
	}
	return f
}

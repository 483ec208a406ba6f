package profile

import (
	"fmt"

	"github.com/AnyUserName/stackblur/internal/plane"
	"github.com/AnyUserName/stackblur/internal/stackblur"
)

// Profile defines blur parameters for a use case.
type Profile struct {
	Name     string
	Radius   int        // stack blur radius, 2-254
	Mode     plane.Mode // channels to blur
	MaxWidth int        // downscale wider sources before blurring (0 = keep size)
	Formats  []string   // output formats in priority order
	Quality  int        // encoding quality 1-100
}

// Built-in profiles.
var profiles = map[string]Profile{
	"preview": {
		Name:     "preview",
		Radius:   12,
		Mode:     plane.ModeRGB,
		MaxWidth: 640,
		Formats:  []string{"jpeg"},
		Quality:  80,
	},
	"frosted": {
		Name:     "frosted",
		Radius:   32,
		Mode:     plane.ModeRGBA,
		MaxWidth: 1280,
		Formats:  []string{"webp", "png"},
		Quality:  90,
	},
	"thumbnail": {
		Name:     "thumbnail",
		Radius:   4,
		Mode:     plane.ModeRGB,
		MaxWidth: 320,
		Formats:  []string{"jpeg"},
		Quality:  75,
	},
	"luma": {
		Name:    "luma",
		Radius:  8,
		Mode:    plane.ModeLuma,
		Formats: []string{"png"},
		Quality: 90,
	},
}

// Default is the profile used when none is named.
const Default = "preview"

// Get returns a profile by name. Falls back to preview if unknown.
func Get(name string) Profile {
	if p, ok := profiles[name]; ok {
		return p
	}
	p := profiles[Default]
	p.Name = name // preserve requested name
	return p
}

// Names lists the built-in profiles.
func Names() []string {
	return []string{"preview", "frosted", "thumbnail", "luma"}
}

// Validate checks that the profile can be run.
func (p Profile) Validate() error {
	if err := stackblur.ValidateRadius(p.Radius); err != nil {
		return fmt.Errorf("profile %s: %w", p.Name, err)
	}
	if _, err := plane.ParseMode(string(p.Mode)); err != nil {
		return fmt.Errorf("profile %s: %w", p.Name, err)
	}
	if p.MaxWidth < 0 {
		return fmt.Errorf("profile %s: negative max width %d", p.Name, p.MaxWidth)
	}
	if p.Quality < 0 || p.Quality > 100 {
		return fmt.Errorf("profile %s: quality %d not in 0-100", p.Name, p.Quality)
	}
	return nil
}

// TargetSize returns the size the source is scaled to before blurring.
// Sources are never upscaled.
func (p Profile) TargetSize(width, height int) (int, int) {
	if p.MaxWidth <= 0 || width <= p.MaxWidth {
		return width, height
	}
	h := int(float64(height) * float64(p.MaxWidth) / float64(width))
	if h < 1 {
		h = 1
	}
	return p.MaxWidth, h
}

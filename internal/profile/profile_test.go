package profile

import (
	"errors"
	"testing"

	"github.com/AnyUserName/stackblur/internal/stackblur"
)

func TestGet_BuiltIns(t *testing.T) {
	for _, name := range Names() {
		p := Get(name)
		if p.Name != name {
			t.Errorf("%s: name %q", name, p.Name)
		}
		if err := p.Validate(); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
}

func TestGet_UnknownFallsBack(t *testing.T) {
	p := Get("custom")
	if p.Name != "custom" {
		t.Errorf("name: got %q", p.Name)
	}
	if p.Radius != Get(Default).Radius {
		t.Errorf("radius: got %d, want default %d", p.Radius, Get(Default).Radius)
	}
}

func TestValidate(t *testing.T) {
	p := Get("preview")
	p.Radius = 300
	if err := p.Validate(); !errors.Is(err, stackblur.ErrRadius) {
		t.Errorf("radius 300: got %v", err)
	}

	p = Get("preview")
	p.Mode = "cmyk"
	if err := p.Validate(); err == nil {
		t.Error("mode cmyk: expected error")
	}

	p = Get("preview")
	p.Quality = 101
	if err := p.Validate(); err == nil {
		t.Error("quality 101: expected error")
	}
}

func TestTargetSize(t *testing.T) {
	tests := []struct {
		name         string
		maxWidth     int
		w, h         int
		wantW, wantH int
	}{
		{"no_limit", 0, 4000, 3000, 4000, 3000},
		{"smaller", 640, 320, 200, 320, 200},
		{"downscale", 640, 1280, 720, 640, 360},
		{"very_wide", 100, 10000, 5, 100, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Profile{MaxWidth: tt.maxWidth}
			w, h := p.TargetSize(tt.w, tt.h)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("got %dx%d, want %dx%d", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/AnyUserName/stackblur/internal/encoder"
	"github.com/AnyUserName/stackblur/internal/logging"
	"github.com/AnyUserName/stackblur/internal/manifest"
	"github.com/AnyUserName/stackblur/internal/profile"
)

// ErrNoImages is returned when the input directory holds no images.
var ErrNoImages = errors.New("no images found")

// Config holds all parameters for a blur run.
type Config struct {
	InputDir     string
	OutputDir    string
	Profile      profile.Profile
	Workers      int // images processed concurrently (0 = NumCPU)
	PlaneWorkers int // goroutines per blur pass (<= 1 = sequential)
}

// Pipeline orchestrates image processing.
type Pipeline struct {
	cfg      Config
	registry *encoder.Registry
}

// New creates a configured pipeline.
func New(cfg Config) *Pipeline {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	return &Pipeline{
		cfg:      cfg,
		registry: encoder.NewRegistry(),
	}
}

// Run blurs every image under InputDir and returns the manifest.
// Individual failures are logged and counted; Run only fails when no
// image could be processed or ctx is cancelled.
func (p *Pipeline) Run(ctx context.Context) (*manifest.Manifest, error) {
	log := logging.Logger()

	if err := p.cfg.Profile.Validate(); err != nil {
		return nil, err
	}
	log.Debug("encoders", "available", p.registry.Available())

	// Step 1: Scan for images.
	sources, err := ScanImages(p.cfg.InputDir, p.cfg.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoImages, p.cfg.InputDir)
	}
	log.Info("scan complete", "images", len(sources))

	// Step 2: Process images in parallel.
	results := make([]processResult, len(sources))
	var wg sync.WaitGroup
	sem := make(chan struct{}, p.cfg.Workers)

	for i, src := range sources {
		wg.Add(1)
		go func(idx int, s Source) {
			defer wg.Done()
			select {
			case sem <- struct{}{}: // acquire
			case <-ctx.Done():
				results[idx] = processResult{key: s.Key, err: ctx.Err()}
				return
			}
			defer func() { <-sem }() // release

			if err := ctx.Err(); err != nil {
				results[idx] = processResult{key: s.Key, err: err}
				return
			}
			log.Debug("processing", "key", s.Key)
			results[idx] = processImage(s, p.cfg, p.registry)
		}(i, src)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Step 3: Collect results into manifest.
	prof := p.cfg.Profile
	m := manifest.New(prof.Name, prof.Radius, string(prof.Mode))

	var failed int
	for _, r := range results {
		if r.err != nil {
			log.Error("process failed", "key", r.key, "err", r.err)
			failed++
			continue
		}
		m.Assets[r.key] = r.asset
	}

	if failed == len(sources) {
		return nil, fmt.Errorf("all %d images failed to process", failed)
	}
	if failed > 0 {
		log.Warn("partial failure", "failed", failed, "total", len(sources))
	}

	m.BuildInfo = &manifest.BuildInfo{
		Workers:      p.cfg.Workers,
		PlaneWorkers: p.cfg.PlaneWorkers,
	}
	m.Stats.Failed = failed
	m.ComputeStats()
	return m, nil
}

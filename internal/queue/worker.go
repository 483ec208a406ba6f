package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AnyUserName/stackblur/internal/logging"
	"github.com/AnyUserName/stackblur/internal/pipeline"
	"github.com/AnyUserName/stackblur/internal/plane"
	"github.com/AnyUserName/stackblur/internal/profile"
)

// Source is the side of a queue a worker consumes. *RedisQueue satisfies it.
type Source interface {
	PopJob(ctx context.Context, timeout time.Duration) (*Job, error)
	PushResult(ctx context.Context, res *Result) error
}

// ProcessFunc blurs one file. pipeline.ProcessFile is the default.
type ProcessFunc func(in, out string, prof profile.Profile, planeWorkers int) (*pipeline.FileResult, error)

// Worker pulls jobs from a Source until its context is cancelled.
type Worker struct {
	ID           string
	Source       Source
	PlaneWorkers int
	PollTimeout  time.Duration
	Process      ProcessFunc
}

// Run processes jobs until ctx is done. Job failures are reported as
// results; only queue errors stop the loop.
func (w *Worker) Run(ctx context.Context) error {
	log := logging.Logger().With("worker", w.ID)
	timeout := w.PollTimeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}

	log.Info("worker started")
	for {
		if err := ctx.Err(); err != nil {
			log.Info("worker stopped")
			return nil
		}

		job, err := w.Source.PopJob(ctx, timeout)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			return fmt.Errorf("worker %s: %w", w.ID, err)
		}
		if job == nil {
			continue // poll timeout
		}

		res := w.Handle(job)
		if res.Error != "" {
			log.Warn("job failed", "job", job.ID, "err", res.Error)
		} else {
			log.Debug("job done", "job", job.ID, "output", res.Output, "blur_ms", res.BlurMS)
		}
		if err := w.Source.PushResult(ctx, res); err != nil {
			return fmt.Errorf("worker %s: push result: %w", w.ID, err)
		}
	}
}

// Handle runs a single job and returns its result.
func (w *Worker) Handle(job *Job) *Result {
	res := &Result{JobID: job.ID, WorkerID: w.ID}

	prof, err := job.resolveProfile()
	if err != nil {
		res.Error = err.Error()
		return res
	}

	process := w.Process
	if process == nil {
		process = pipeline.ProcessFile
	}
	out, err := process(job.Input, job.Output, prof, w.PlaneWorkers)
	if err != nil {
		res.Error = err.Error()
		return res
	}

	res.Output = out.Output
	res.Hash = out.Hash
	res.Size = out.Size
	res.BlurMS = float64(out.Blur.Microseconds()) / 1000
	return res
}

func (j *Job) resolveProfile() (profile.Profile, error) {
	name := j.Profile
	if name == "" {
		name = profile.Default
	}
	prof := profile.Get(name)
	if j.Radius > 0 {
		prof.Radius = j.Radius
	}
	if j.Mode != "" {
		mode, err := plane.ParseMode(j.Mode)
		if err != nil {
			return prof, err
		}
		prof.Mode = mode
	}
	return prof, prof.Validate()
}

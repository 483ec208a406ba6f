package queue

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/AnyUserName/stackblur/internal/pipeline"
	"github.com/AnyUserName/stackblur/internal/plane"
	"github.com/AnyUserName/stackblur/internal/profile"
)

// fakeSource serves a fixed list of jobs and cancels the run once drained.
type fakeSource struct {
	mu      sync.Mutex
	jobs    []*Job
	results []*Result
	cancel  context.CancelFunc
	popErr  error
}

func (f *fakeSource) PopJob(ctx context.Context, _ time.Duration) (*Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.popErr != nil {
		return nil, f.popErr
	}
	if len(f.jobs) == 0 {
		f.cancel()
		return nil, nil
	}
	job := f.jobs[0]
	f.jobs = f.jobs[1:]
	return job, nil
}

func (f *fakeSource) PushResult(_ context.Context, res *Result) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results = append(f.results, res)
	return nil
}

func writeGradient(t *testing.T, path string) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 24, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 24; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 10), G: uint8(y * 15), B: 90, A: 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestWorker_Run(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.png")
	writeGradient(t, in)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	src := &fakeSource{
		cancel: cancel,
		jobs: []*Job{
			{ID: "ok", Input: in, Output: filepath.Join(dir, "out.png"), Profile: "luma"},
			{ID: "missing", Input: filepath.Join(dir, "nope.png"), Output: filepath.Join(dir, "x.png")},
			{ID: "bad-radius", Input: in, Output: filepath.Join(dir, "y.png"), Radius: 999},
		},
	}

	w := &Worker{ID: "w1", Source: src, PollTimeout: time.Millisecond}
	if err := w.Run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(src.results) != 3 {
		t.Fatalf("results: got %d, want 3", len(src.results))
	}
	ok := src.results[0]
	if ok.Error != "" || ok.JobID != "ok" || ok.WorkerID != "w1" {
		t.Errorf("ok job: %+v", ok)
	}
	if ok.Hash == "" || ok.Size == 0 {
		t.Errorf("ok job missing output info: %+v", ok)
	}
	if _, err := os.Stat(filepath.Join(dir, "out.png")); err != nil {
		t.Errorf("output not written: %v", err)
	}
	if src.results[1].Error == "" {
		t.Error("missing input should fail")
	}
	if src.results[2].Error == "" {
		t.Error("radius 999 should fail")
	}
}

func TestWorker_QueueErrorStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	boom := errors.New("connection reset")
	w := &Worker{ID: "w2", Source: &fakeSource{cancel: cancel, popErr: boom}}
	if err := w.Run(ctx); !errors.Is(err, boom) {
		t.Errorf("got %v, want %v", err, boom)
	}
}

func TestWorker_HandleOverrides(t *testing.T) {
	var got profile.Profile
	w := &Worker{
		ID:           "w3",
		PlaneWorkers: 3,
		Process: func(in, out string, prof profile.Profile, planeWorkers int) (*pipeline.FileResult, error) {
			got = prof
			if planeWorkers != 3 {
				t.Errorf("plane workers: got %d", planeWorkers)
			}
			return &pipeline.FileResult{Output: out, Hash: "h", Size: 1, Blur: 1500 * time.Microsecond}, nil
		},
	}

	res := w.Handle(&Job{ID: "j", Input: "a.png", Output: "b.png", Profile: "frosted", Radius: 7, Mode: "luma"})
	if res.Error != "" {
		t.Fatalf("handle: %s", res.Error)
	}
	if got.Name != "frosted" || got.Radius != 7 || got.Mode != plane.ModeLuma {
		t.Errorf("profile: %+v", got)
	}
	if res.BlurMS != 1.5 {
		t.Errorf("blur ms: got %v", res.BlurMS)
	}

	res = w.Handle(&Job{ID: "k", Mode: "cmyk"})
	if res.Error == "" {
		t.Error("bad mode should fail")
	}
}

func TestJobJSON(t *testing.T) {
	raw := `{"id":"1","input":"a.jpg","output":"b.jpg","radius":9}`
	var j Job
	if err := json.Unmarshal([]byte(raw), &j); err != nil {
		t.Fatal(err)
	}
	prof, err := j.resolveProfile()
	if err != nil {
		t.Fatal(err)
	}
	if prof.Name != profile.Default || prof.Radius != 9 {
		t.Errorf("got %s r=%d", prof.Name, prof.Radius)
	}
}

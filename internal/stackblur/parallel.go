package stackblur

import (
	"runtime"
	"sync"
)

// BlurParallel is Blur with each pass split into contiguous bands of rows
// (then columns) processed concurrently. Lines within a pass are
// independent, so the result is byte-identical to Blur.
//
// workers <= 0 means GOMAXPROCS.
func BlurParallel(buf []byte, width, height, radius, workers int) error {
	if err := validate(buf, width, height, radius); err != nil {
		return err
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	forBands(height, workers, func(y0, y1 int) {
		blurRows(buf, width, y0, y1, radius)
	})
	forBands(width, workers, func(x0, x1 int) {
		blurColumns(buf, width, height, x0, x1, radius)
	})
	return nil
}

// forBands splits [0, n) into at most workers bands and waits for fn to
// finish on all of them.
func forBands(n, workers int, fn func(lo, hi int)) {
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		fn(0, n)
		return
	}

	band := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for lo := 0; lo < n; lo += band {
		hi := lo + band
		if hi > n {
			hi = n
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			fn(lo, hi)
		}(lo, hi)
	}
	wg.Wait()
}

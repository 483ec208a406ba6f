package stackblur

import (
	"fmt"
	"runtime"
	"testing"
)

// ─── benchmarks ──────────────────────────────────────────────

func makePlane(w, h int) []byte {
	buf := make([]byte, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			buf[y*w+x] = uint8((x*251 + y*179) % 256)
		}
	}
	return buf
}

func BenchmarkBlur(b *testing.B) {
	for _, sz := range []struct{ w, h int }{{320, 240}, {1280, 720}, {1920, 1080}} {
		for _, r := range []int{2, 16, 64, 254} {
			b.Run(fmt.Sprintf("%dx%d_r%d", sz.w, sz.h, r), func(b *testing.B) {
				src := makePlane(sz.w, sz.h)
				buf := make([]byte, len(src))
				b.SetBytes(int64(len(src)))
				b.ReportAllocs()
				b.ResetTimer()
				for i := 0; i < b.N; i++ {
					copy(buf, src)
					_ = Blur(buf, sz.w, sz.h, r)
				}
			})
		}
	}
}

func BenchmarkBlurParallel(b *testing.B) {
	const w, h, r = 1920, 1080, 16
	src := makePlane(w, h)
	buf := make([]byte, len(src))
	for _, workers := range []int{1, 2, 4, runtime.NumCPU()} {
		b.Run(fmt.Sprintf("workers_%d", workers), func(b *testing.B) {
			b.SetBytes(int64(len(src)))
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				copy(buf, src)
				_ = BlurParallel(buf, w, h, r, workers)
			}
		})
	}
}

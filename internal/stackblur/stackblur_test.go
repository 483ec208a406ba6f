package stackblur

import (
	"bytes"
	"errors"
	"testing"
)

func TestBlur_ImpulseRow(t *testing.T) {
	buf := []byte{0, 0, 255, 0, 0}
	if err := Blur(buf, 5, 1, 2); err != nil {
		t.Fatalf("blur: %v", err)
	}
	// Tent weights 1,2,3,2,1 over 255: 255*3*456 >> 12 = 85.
	want := []byte{28, 56, 85, 56, 28}
	if !bytes.Equal(buf, want) {
		t.Errorf("got %v, want %v", buf, want)
	}
}

func TestMulShrRadius2(t *testing.T) {
	if MulTable[2] != 456 || ShrTable[2] != 12 {
		t.Errorf("radius 2: got (%d, %d), want (456, 12)", MulTable[2], ShrTable[2])
	}
}

func TestBlur_Uniform(t *testing.T) {
	for _, v := range []byte{0, 1, 77, 128, 254, 255} {
		for r := MinRadius; r <= MaxRadius; r++ {
			buf := bytes.Repeat([]byte{v}, 7*5)
			if err := Blur(buf, 7, 5, r); err != nil {
				t.Fatalf("blur r=%d: %v", r, err)
			}
			for i, got := range buf {
				if got != v {
					t.Fatalf("value %d radius %d: sample %d = %d", v, r, i, got)
				}
			}
		}
	}
}

func TestBlurRows_Symmetry(t *testing.T) {
	tests := []struct {
		name   string
		n      int
		pos    int
		radius int
		want   []byte
	}{
		{
			name: "centered", n: 11, pos: 5, radius: 2,
			want: []byte{0, 0, 0, 28, 56, 85, 56, 28, 0, 0, 0},
		},
		{
			name: "centered_r4", n: 9, pos: 4, radius: 4,
			want: []byte{10, 20, 30, 40, 51, 40, 30, 20, 10},
		},
		{
			name: "leading_edge", n: 11, pos: 0, radius: 3,
			want: []byte{159, 95, 47, 15, 0, 0, 0, 0, 0, 0, 0},
		},
		{
			name: "trailing_edge", n: 11, pos: 10, radius: 3,
			want: []byte{0, 0, 0, 0, 0, 0, 0, 15, 47, 95, 159},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := make([]byte, tt.n)
			buf[tt.pos] = 255
			if err := BlurRows(buf, tt.n, 1, tt.radius); err != nil {
				t.Fatalf("blur rows: %v", err)
			}
			if !bytes.Equal(buf, tt.want) {
				t.Errorf("got %v, want %v", buf, tt.want)
			}
		})
	}
}

func TestBlurRows_ImpulseAwayFromEdgesIsSymmetric(t *testing.T) {
	for r := MinRadius; r <= 20; r++ {
		n := 4*r + 1
		pos := n / 2
		buf := make([]byte, n)
		buf[pos] = 255
		if err := BlurRows(buf, n, 1, r); err != nil {
			t.Fatalf("r=%d: %v", r, err)
		}
		for d := 1; d <= pos; d++ {
			if buf[pos-d] != buf[pos+d] {
				t.Fatalf("r=%d: asymmetric at distance %d: %d vs %d", r, d, buf[pos-d], buf[pos+d])
			}
		}
	}
}

func TestBlur_TwoDimensional(t *testing.T) {
	const w, h = 6, 4
	src := make([]byte, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			src[y*w+x] = byte((x*40 + y*17) % 256)
		}
	}

	rows := append([]byte(nil), src...)
	if err := BlurRows(rows, w, h, 2); err != nil {
		t.Fatal(err)
	}
	wantRows := []byte{
		17, 44, 80, 120, 155, 182,
		34, 61, 97, 137, 172, 199,
		51, 78, 114, 154, 189, 216,
		68, 95, 131, 171, 206, 233,
	}
	if !bytes.Equal(rows, wantRows) {
		t.Errorf("rows:\n got %v\nwant %v", rows, wantRows)
	}

	full := append([]byte(nil), src...)
	if err := Blur(full, w, h, 2); err != nil {
		t.Fatal(err)
	}
	wantFull := []byte{
		24, 51, 87, 127, 162, 189,
		35, 63, 99, 139, 174, 201,
		49, 76, 112, 152, 187, 214,
		60, 87, 123, 163, 198, 225,
	}
	if !bytes.Equal(full, wantFull) {
		t.Errorf("full:\n got %v\nwant %v", full, wantFull)
	}
}

func TestBlur_VerticalPassRuns(t *testing.T) {
	const n = 4
	checker := make([]byte, n*n)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			if (x+y)%2 == 1 {
				checker[y*n+x] = 255
			}
		}
	}

	rows := append([]byte(nil), checker...)
	full := append([]byte(nil), checker...)
	if err := BlurRows(rows, n, n, 2); err != nil {
		t.Fatal(err)
	}
	if err := Blur(full, n, n, 2); err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(rows, full) {
		t.Fatal("horizontal-only and two-pass results are identical")
	}

	want := []byte{
		87, 119, 135, 166,
		119, 125, 128, 135,
		135, 128, 125, 119,
		166, 135, 119, 87,
	}
	if !bytes.Equal(full, want) {
		t.Errorf("got %v, want %v", full, want)
	}
}

func TestBlurColumns_MatchesTransposedRows(t *testing.T) {
	const w, h = 9, 13
	src := pseudoRandom(w*h, 7)

	cols := append([]byte(nil), src...)
	if err := BlurColumns(cols, w, h, 3); err != nil {
		t.Fatal(err)
	}

	tr := make([]byte, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			tr[x*h+y] = src[y*w+x]
		}
	}
	if err := BlurRows(tr, h, w, 3); err != nil {
		t.Fatal(err)
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if cols[y*w+x] != tr[x*h+y] {
				t.Fatalf("(%d,%d): columns %d, transposed rows %d", x, y, cols[y*w+x], tr[x*h+y])
			}
		}
	}
}

func TestBlurRows_ReducesVariance(t *testing.T) {
	const n = 512
	for _, r := range []int{2, 5, 16, 60} {
		buf := pseudoRandom(n, uint32(r))
		before := variance(buf)
		if err := BlurRows(buf, n, 1, r); err != nil {
			t.Fatal(err)
		}
		after := variance(buf)
		if after > before {
			t.Errorf("r=%d: variance grew from %.1f to %.1f", r, before, after)
		}
	}
}

func TestBlur_LineShorterThanRadius(t *testing.T) {
	buf := []byte{0, 0, 255, 0, 0}
	if err := BlurRows(buf, 5, 1, MaxRadius); err != nil {
		t.Fatal(err)
	}
	want := []byte{0, 0, 1, 0, 0}
	if !bytes.Equal(buf, want) {
		t.Errorf("got %v, want %v", buf, want)
	}

	one := []byte{7}
	if err := Blur(one, 1, 1, 5); err != nil {
		t.Fatal(err)
	}
	if one[0] != 7 {
		t.Errorf("1x1: got %d, want 7", one[0])
	}
}

func TestBlur_Validation(t *testing.T) {
	tests := []struct {
		name          string
		buf           []byte
		width, height int
		radius        int
		want          error
	}{
		{"radius_zero", make([]byte, 4), 2, 2, 0, ErrRadius},
		{"radius_one", make([]byte, 4), 2, 2, 1, ErrRadius},
		{"radius_255", make([]byte, 4), 2, 2, 255, ErrRadius},
		{"zero_width", nil, 0, 3, 4, ErrDimensions},
		{"negative_height", nil, 3, -1, 4, ErrDimensions},
		{"short_buffer", make([]byte, 5), 2, 3, 4, ErrBufferSize},
		{"long_buffer", make([]byte, 7), 2, 3, 4, ErrBufferSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Blur(tt.buf, tt.width, tt.height, tt.radius); !errors.Is(err, tt.want) {
				t.Errorf("Blur: got %v, want %v", err, tt.want)
			}
			if err := BlurParallel(tt.buf, tt.width, tt.height, tt.radius, 4); !errors.Is(err, tt.want) {
				t.Errorf("BlurParallel: got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestBlur_RejectsBeforeMutating(t *testing.T) {
	buf := []byte{1, 2, 3, 4, 5}
	_ = Blur(buf, 2, 2, 3)
	if !bytes.Equal(buf, []byte{1, 2, 3, 4, 5}) {
		t.Errorf("buffer mutated on rejected call: %v", buf)
	}
}

// Buffers whose length differs from width*height are outside the
// contract of the core sweep; Blur rejects them up front so the sweep
// never sees one. No behaviour is promised beyond the returned error.
func TestBlur_DimensionMismatchIsRejected(t *testing.T) {
	err := Blur(make([]byte, 10), 4, 4, 2)
	if !errors.Is(err, ErrBufferSize) {
		t.Errorf("got %v, want ErrBufferSize", err)
	}
}

func TestBlurParallel_MatchesSequential(t *testing.T) {
	sizes := []struct{ w, h int }{
		{1, 1}, {3, 17}, {64, 48}, {101, 7}, {33, 200},
	}
	for _, sz := range sizes {
		for _, r := range []int{2, 9, 40} {
			for _, workers := range []int{0, 1, 3, 8, 500} {
				src := pseudoRandom(sz.w*sz.h, uint32(sz.w*31+sz.h))
				seq := append([]byte(nil), src...)
				par := append([]byte(nil), src...)
				if err := Blur(seq, sz.w, sz.h, r); err != nil {
					t.Fatal(err)
				}
				if err := BlurParallel(par, sz.w, sz.h, r, workers); err != nil {
					t.Fatal(err)
				}
				if !bytes.Equal(seq, par) {
					t.Fatalf("%dx%d r=%d workers=%d: parallel result differs", sz.w, sz.h, r, workers)
				}
			}
		}
	}
}

func TestTables_FullScale(t *testing.T) {
	for r := MinRadius; r <= MaxRadius; r++ {
		sum := uint64(255 * (r + 1) * (r + 1))
		prod := sum * uint64(MulTable[r])
		if prod >= 1<<32 {
			t.Errorf("r=%d: product %d overflows 32 bits", r, prod)
		}
		if got := prod >> ShrTable[r]; got != 255 {
			t.Errorf("r=%d: full-scale sum maps to %d, want 255", r, got)
		}
	}
}

func TestTables_ErrorWithinOne(t *testing.T) {
	for r := MinRadius; r <= MaxRadius; r++ {
		d := uint64((r + 1) * (r + 1))
		top := 255 * d
		step := top / 2000
		if step == 0 {
			step = 1
		}
		for s := uint64(0); s <= top; s += step {
			approx := (s * uint64(MulTable[r])) >> ShrTable[r]
			exact := s / d
			diff := int64(approx) - int64(exact)
			if diff < -1 || diff > 1 {
				t.Fatalf("r=%d sum=%d: approx %d, exact %d", r, s, approx, exact)
			}
		}
	}
}

// pseudoRandom returns n deterministic bytes from a 32-bit LCG.
func pseudoRandom(n int, seed uint32) []byte {
	buf := make([]byte, n)
	s := seed*2654435761 + 1
	for i := range buf {
		s = s*1664525 + 1013904223
		buf[i] = byte(s >> 24)
	}
	return buf
}

func variance(buf []byte) float64 {
	var sum, sq float64
	for _, v := range buf {
		f := float64(v)
		sum += f
		sq += f * f
	}
	n := float64(len(buf))
	mean := sum / n
	return sq/n - mean*mean
}

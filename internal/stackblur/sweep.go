package stackblur

// ring is the circular stack of the samples currently inside the window.
// Only the first 2*radius+1 slots are used.
type ring [maxDiv]byte

// sweep blurs one line of n samples in place. The line starts at
// buf[start] and successive samples are stride apart, so the same routine
// serves rows (stride 1) and columns (stride width).
//
// The window is seeded with radius+1 copies of the first sample on the
// leading side and the next radius samples, clamped to the last one, on
// the trailing side. While sliding, the read cursor stops at the last
// sample, which replicates it past the end of the line.
func sweep(buf []byte, start, stride, n, radius int, st *ring) {
	div := 2*radius + 1
	mul := uint64(MulTable[radius])
	shr := ShrTable[radius]
	last := n - 1

	var sum, sumIn, sumOut uint64

	first := buf[start]
	for i := 0; i <= radius; i++ {
		st[i] = first
		sum += uint64(first) * uint64(i+1)
		sumOut += uint64(first)
	}

	src := start
	for i := 1; i <= radius; i++ {
		if i <= last {
			src += stride
		}
		v := buf[src]
		st[i+radius] = v
		sum += uint64(v) * uint64(radius+1-i)
		sumIn += uint64(v)
	}

	sp := radius
	xp := radius
	if xp > last {
		xp = last
	}
	src = start + xp*stride
	dst := start

	for x := 0; x < n; x++ {
		buf[dst] = clampByte((sum * mul) >> shr)
		dst += stride

		sum -= sumOut

		out := sp + div - radius
		if out >= div {
			out -= div
		}
		sumOut -= uint64(st[out])

		if xp < last {
			src += stride
			xp++
		}

		v := buf[src]
		st[out] = v
		sumIn += uint64(v)
		sum += sumIn

		sp++
		if sp >= div {
			sp = 0
		}
		v = st[sp]
		sumOut += uint64(v)
		sumIn -= uint64(v)
	}
}

func clampByte(v uint64) byte {
	if v > 255 {
		return 255
	}
	return byte(v)
}

package plane

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// Raw plane files (.sbp) carry one channel between tools:
//
//	magic   [4]byte  "SBP1"
//	width   uint32   big endian
//	height  uint32   big endian
//	codec   uint8    0 = raw, 1 = zstd
//	payload          width*height samples, compressed when codec = 1
const (
	headerSize = 13
	codecRaw   = 0
	codecZstd  = 1

	// MaxSide bounds each dimension read from a file.
	MaxSide = 1 << 16
)

var magic = [4]byte{'S', 'B', 'P', '1'}

var (
	ErrBadMagic  = errors.New("plane: not a stackblur plane file")
	ErrTruncated = errors.New("plane: truncated payload")
)

var zstdEncPool = sync.Pool{
	New: func() any {
		enc, _ := zstd.NewWriter(nil)
		return enc
	},
}

var zstdDecPool = sync.Pool{
	New: func() any {
		dec, _ := zstd.NewReader(nil)
		return dec
	},
}

// Encode writes p to w, zstd-compressing the samples when compress is set.
func Encode(w io.Writer, p *Plane, compress bool) error {
	if len(p.Pix) != p.Width*p.Height {
		return fmt.Errorf("plane: %d samples for %dx%d", len(p.Pix), p.Width, p.Height)
	}

	var hdr [headerSize]byte
	copy(hdr[:4], magic[:])
	binary.BigEndian.PutUint32(hdr[4:8], uint32(p.Width))
	binary.BigEndian.PutUint32(hdr[8:12], uint32(p.Height))

	payload := p.Pix
	if compress {
		hdr[12] = codecZstd
		enc := zstdEncPool.Get().(*zstd.Encoder)
		payload = enc.EncodeAll(p.Pix, make([]byte, 0, len(p.Pix)/2))
		zstdEncPool.Put(enc)
	}

	if _, err := w.Write(hdr[:]); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("write payload: %w", err)
	}
	return nil
}

// Decode reads a plane written by Encode.
func Decode(r io.Reader) (*Plane, error) {
	br := bufio.NewReader(r)

	var hdr [headerSize]byte
	if _, err := io.ReadFull(br, hdr[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrBadMagic
		}
		return nil, err
	}
	if !bytes.Equal(hdr[:4], magic[:]) {
		return nil, ErrBadMagic
	}

	w := int(binary.BigEndian.Uint32(hdr[4:8]))
	h := int(binary.BigEndian.Uint32(hdr[8:12]))
	if w <= 0 || h <= 0 || w > MaxSide || h > MaxSide {
		return nil, fmt.Errorf("plane: invalid dimensions %dx%d", w, h)
	}
	n := w * h

	var pix []byte
	switch hdr[12] {
	case codecRaw:
		pix = make([]byte, n)
		if _, err := io.ReadFull(br, pix); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTruncated, err)
		}
	case codecZstd:
		compressed, err := io.ReadAll(br)
		if err != nil {
			return nil, fmt.Errorf("read payload: %w", err)
		}
		dec := zstdDecPool.Get().(*zstd.Decoder)
		pix, err = dec.DecodeAll(compressed, make([]byte, 0, n))
		zstdDecPool.Put(dec)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		if len(pix) != n {
			return nil, fmt.Errorf("%w: got %d samples, want %d", ErrTruncated, len(pix), n)
		}
	default:
		return nil, fmt.Errorf("plane: unknown codec %d", hdr[12])
	}

	return &Plane{Pix: pix, Width: w, Height: h}, nil
}

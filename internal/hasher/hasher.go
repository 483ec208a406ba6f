package hasher

import (
	"encoding/binary"
	"encoding/hex"
	"io"

	"github.com/cespare/xxhash/v2"
)

// ContentHash computes the xxHash64 of data and returns a hex string
// truncated to hexLen (0 = all 16 chars). Output filenames use the
// first 8 chars; the manifest records 16.
func ContentHash(data []byte, hexLen int) string {
	return truncate(xxhash.Sum64(data), hexLen)
}

// ContentHashReader computes xxHash64 from a reader, streaming.
func ContentHashReader(r io.Reader, hexLen int) (string, error) {
	h := xxhash.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return truncate(h.Sum64(), hexLen), nil
}

// PlaneDigest hashes a sample buffer together with its dimensions, so
// that equal samples laid out differently get different digests.
func PlaneDigest(pix []byte, width, height int) uint64 {
	var dims [16]byte
	binary.BigEndian.PutUint64(dims[:8], uint64(width))
	binary.BigEndian.PutUint64(dims[8:], uint64(height))

	h := xxhash.New()
	_, _ = h.Write(dims[:])
	_, _ = h.Write(pix)
	return h.Sum64()
}

func truncate(sum uint64, hexLen int) string {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], sum)
	full := hex.EncodeToString(b[:])
	if hexLen > 0 && hexLen < len(full) {
		return full[:hexLen]
	}
	return full
}

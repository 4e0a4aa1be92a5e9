package core

import (
	"fmt"
	"io"

	"github.com/go-crypt/x/blake2b"
)

// hashBlockSize is the read granularity for streaming digests. Inputs of any
// size are hashed without buffering the whole content.
const hashBlockSize = 64 * 1024

// DigestOf computes the BLAKE2b-256 digest of data held in memory.
func DigestOf(data []byte) Digest {
	h, _ := blake2b.New(DigestSize, nil)
	h.Write(data)
	var d Digest
	copy(d[:], h.Sum(nil))
	return d
}

// DigestOfString computes the digest of a string.
func DigestOfString(s string) Digest {
	return DigestOf([]byte(s))
}

// DigestReader computes the digest of a stream in fixed-size blocks.
// If the source cannot be fully read the error is surfaced and no partial
// digest is returned.
func DigestReader(r io.Reader) (Digest, error) {
	h, err := blake2b.New(DigestSize, nil)
	if err != nil {
		return Digest{}, fmt.Errorf("%w: %v", ErrHashCompute, err)
	}

	buf := make([]byte, hashBlockSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return Digest{}, fmt.Errorf("%w: %v", ErrHashCompute, err)
		}
	}

	var d Digest
	copy(d[:], h.Sum(nil))
	return d, nil
}

package project

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
)

// Digest is a fixed 256-bit content hash.
type Digest [32]byte

func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// MarshalText renders the digest as lowercase hex.
func (d Digest) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText parses a digest written by MarshalText.
func (d *Digest) UnmarshalText(text []byte) error {
	if hex.DecodedLen(len(text)) != len(d) {
		return fmt.Errorf("digest must be %d hex characters, got %d", 2*len(d), len(text))
	}
	_, err := hex.Decode(d[:], text)
	return err
}

// Sum hashes one blob.
func Sum(data []byte) Digest {
	return sha256.Sum256(data)
}

// Combine builds a composite hash H(content || dep1 || dep2 ...). The order
// of deps is significant.
func Combine(content Digest, deps ...Digest) Digest {
	h := sha256.New()
	_, _ = h.Write(content[:])
	for _, d := range deps {
		_, _ = h.Write(d[:])
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// HashFiles combines the content hashes of paths in the given order.
func HashFiles(paths ...string) (Digest, error) {
	parts := make([]Digest, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return Digest{}, fmt.Errorf("hashing %s: %w", p, err)
		}
		parts = append(parts, Sum(data))
	}
	return Combine(Sum([]byte(fmt.Sprint(len(paths)))), parts...), nil
}

// Package hasher provides the 256-bit digests used to link and mine blocks.
package hasher

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"maps"
	"slices"
	"strings"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

const (
	SHA256     = "sha256"
	SHA3256    = "sha3-256"
	BLAKE2b256 = "blake2b-256"

	// digestSize is the digest length in bytes shared by every algorithm.
	digestSize = 32
)

var (
	algorithms = map[string]func([]byte) [digestSize]byte{
		SHA256:     sha256.Sum256,
		SHA3256:    sha3.Sum256,
		BLAKE2b256: blake2b.Sum256,
	}
	ValidAlgorithmsStr = strings.Join(slices.Sorted(maps.Keys(algorithms)), "|")
)

// Hasher produces hex-encoded digests with a fixed algorithm.
type Hasher struct {
	name string
	sum  func([]byte) [digestSize]byte
}

// New returns the Hasher for the named algorithm.
func New(name string) (Hasher, error) {
	sum, ok := algorithms[name]
	if !ok {
		return Hasher{}, fmt.Errorf("unknown hash algorithm: %s. Valid algorithms are: %s", name, ValidAlgorithmsStr)
	}
	return Hasher{name: name, sum: sum}, nil
}

// Default returns the SHA-256 hasher.
func Default() Hasher {
	return Hasher{name: SHA256, sum: sha256.Sum256}
}

func (h Hasher) Name() string {
	if h.sum == nil {
		return SHA256
	}
	return h.name
}

// Digest hashes data and returns the lowercase hex encoding.
func (h Hasher) Digest(data []byte) string {
	sum := h.sum
	if sum == nil {
		sum = sha256.Sum256
	}
	d := sum(data)
	return hex.EncodeToString(d[:])
}

// DigestString is Digest over the bytes of s.
func (h Hasher) DigestString(s string) string {
	return h.Digest([]byte(s))
}

// Empty is the digest of the empty byte string.
func (h Hasher) Empty() string {
	return h.Digest(nil)
}

// HexLen is the length of every digest returned by Digest.
func (h Hasher) HexLen() int {
	return hex.EncodedLen(digestSize)
}

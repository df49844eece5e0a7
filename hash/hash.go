// This is free and unencumbered software released into the public domain.
//
// Anyone is free to copy, modify, publish, use, compile, sell, or
// distribute this software, either in source code form or as a compiled
// binary, for any purpose, commercial or non-commercial, and by any
// means.
//
// In jurisdictions that recognize copyright laws, the author or authors
// of this software dedicate any and all copyright interest in the
// software to the public domain. We make this dedication for the benefit
// of the public at large and to the detriment of our heirs and
// successors. We intend this dedication to be an overt act of
// relinquishment in perpetuity of all present and future rights to this
// software under copyright law.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
// EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF
// MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.
// IN NO EVENT SHALL THE AUTHORS BE LIABLE FOR ANY CLAIM, DAMAGES OR
// OTHER LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE,
// ARISING FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR
// OTHER DEALINGS IN THE SOFTWARE.
//
// For more information, please refer to <https://unlicense.org>

// Package hash supplies the 32-byte hash primitive shared by package merkle,
// package dag and package pow: Keccak-256, the hash OpenZKP calls H.
package hash

import (
	"golang.org/x/crypto/sha3"
)

// Size is the digest length in bytes.
const Size = 32

// Digest is a 32-byte Keccak-256 output.
type Digest [Size]byte

// Keccak256 hashes the concatenation of parts with Keccak-256. No framing
// or length-prefix bytes are inserted between parts; callers that need
// domain separation between, say, leaf hashing and node hashing must bake
// it into the bytes they pass in (per the external interface contract: internal
// node hashing is exactly H(left ∥ right), nothing more).
func Keccak256(parts ...[]byte) Digest {
	h := sha3.NewLegacyKeccak256()
	for _, p := range parts {
		h.Write(p)
	}
	var d Digest
	h.Sum(d[:0])
	return d
}

// Hasher is an incremental Keccak-256 instance, for callers that want to
// feed input over multiple calls rather than assembling a single byte
// slice up front.
type Hasher struct {
	h interface {
		Write(p []byte) (int, error)
		Sum(b []byte) []byte
		Reset()
	}
}

// NewHasher returns a fresh incremental Keccak-256 hasher.
func NewHasher() *Hasher {
	return &Hasher{h: sha3.NewLegacyKeccak256()}
}

// Write appends p to the hash state.
func (h *Hasher) Write(p []byte) {
	h.h.Write(p)
}

// Sum finalizes and returns the digest without mutating further state.
func (h *Hasher) Sum() Digest {
	var d Digest
	h.h.Sum(d[:0])
	return d
}

// Reset clears the hasher back to its initial state.
func (h *Hasher) Reset() {
	h.h.Reset()
}

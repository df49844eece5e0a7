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

// Package transcript implements a Fiat-Shamir transcript: a caller
// appends the public values a proof commits to (labels, field elements,
// digests) in a fixed order, then draws challenges: field elements or
// proof-of-work seeds, derived from everything appended so far. Each
// draw both returns the challenge and resets the accumulated state, so
// a later draw depends only on values appended after the previous one.
package transcript

import (
	"encoding/binary"

	"github.com/starkcore/stcore/field"
	"github.com/starkcore/stcore/hash"
	"github.com/starkcore/stcore/pow"
	"github.com/starkcore/stcore/u256"
)

// Transcript accumulates bytes to be hashed into a challenge. The zero
// value is ready to use.
type Transcript struct {
	state []byte
}

// New returns an empty transcript.
func New() *Transcript { return &Transcript{} }

// AppendLabel appends a length-prefixed label, domain-separating the
// values that follow from whatever came before. Unlike a bare
// concatenation of values, this keeps ("ab", "c") and ("a", "bc") from
// hashing identically.
func (t *Transcript) AppendLabel(label string) {
	var length [8]byte
	binary.BigEndian.PutUint64(length[:], uint64(len(label)))
	t.state = append(t.state, length[:]...)
	t.state = append(t.state, label...)
}

// AppendElement appends a field element's big-endian encoding.
func (t *Transcript) AppendElement(e field.Element) {
	b := e.Bytes()
	t.state = append(t.state, b[:]...)
}

// AppendElements appends each element in order.
func (t *Transcript) AppendElements(es ...field.Element) {
	for _, e := range es {
		t.AppendElement(e)
	}
}

// AppendDigest appends a 32-byte hash digest, e.g. a Merkle commitment
// root.
func (t *Transcript) AppendDigest(d hash.Digest) {
	t.state = append(t.state, d[:]...)
}

// ChallengeElement hashes the accumulated state with Keccak-256, clears
// the digest's top five bits so it is below p, reinterprets it as a
// Montgomery-form field element (the same seed-derivation step
// dag.NewGraph uses), clears the state, and returns the result.
func (t *Transcript) ChallengeElement() field.Element {
	digest := hash.Keccak256(t.state)
	digest[0] &= 0x07
	t.state = t.state[:0]
	return field.FromMontgomeryRaw(u256.FromBytesBE(digest[:]))
}

// ChallengeSeed hashes the accumulated state with Keccak-256, clears
// the state, and returns the digest as a proof-of-work challenge seed.
func (t *Transcript) ChallengeSeed() pow.ChallengeSeed {
	digest := hash.Keccak256(t.state)
	t.state = t.state[:0]
	var seed pow.ChallengeSeed
	copy(seed[:], digest[:])
	return seed
}

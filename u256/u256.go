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

// Package u256 implements fixed-width 256-bit unsigned integer arithmetic:
// addition, subtraction, widening multiplication, shifts and modular
// inversion. It underlies the Montgomery field arithmetic in package
// montgomery and has no notion of any particular modulus itself.
package u256

import (
	"encoding/binary"
	"math/bits"

	"github.com/holiman/uint256"
)

// U256 is an unsigned 256-bit integer stored as four 64-bit limbs in
// little-endian word order: Limbs[0] is the least significant word.
// Every bit pattern is a valid value; there is no canonical form to
// maintain.
type U256 struct {
	Limbs [4]uint64
}

// Zero is the additive identity.
var Zero = U256{}

// One is the multiplicative identity.
var One = U256{Limbs: [4]uint64{1, 0, 0, 0}}

// FromLimbs builds a U256 from little-endian limbs.
func FromLimbs(l0, l1, l2, l3 uint64) U256 {
	return U256{Limbs: [4]uint64{l0, l1, l2, l3}}
}

// FromUint64 builds a U256 equal to a small value.
func FromUint64(v uint64) U256 {
	return U256{Limbs: [4]uint64{v, 0, 0, 0}}
}

// FromBytesBE decodes 32 big-endian bytes into a U256. Panics if b is not
// exactly 32 bytes long; callers at protocol boundaries should check length
// themselves before calling in.
func FromBytesBE(b []byte) U256 {
	if len(b) != 32 {
		panic("u256: FromBytesBE requires exactly 32 bytes")
	}
	var z U256
	z.Limbs[3] = binary.BigEndian.Uint64(b[0:8])
	z.Limbs[2] = binary.BigEndian.Uint64(b[8:16])
	z.Limbs[1] = binary.BigEndian.Uint64(b[16:24])
	z.Limbs[0] = binary.BigEndian.Uint64(b[24:32])
	return z
}

// ToBytesBE encodes z as 32 big-endian bytes, the canonical on-wire form.
func (z U256) ToBytesBE() [32]byte {
	var b [32]byte
	binary.BigEndian.PutUint64(b[0:8], z.Limbs[3])
	binary.BigEndian.PutUint64(b[8:16], z.Limbs[2])
	binary.BigEndian.PutUint64(b[16:24], z.Limbs[1])
	binary.BigEndian.PutUint64(b[24:32], z.Limbs[0])
	return b
}

// FromDecimalString parses a base-10 literal into a U256. Used only at
// configuration time (deriving the compile-time modulus and friends), not
// in any arithmetic hot path, so delegating the parser to holiman/uint256
// rather than hand-rolling base conversion is in scope.
func FromDecimalString(s string) (U256, error) {
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return U256{}, err
	}
	return fromUint256(v), nil
}

// FromHex parses a "0x"-prefixed base-16 literal into a U256. Same
// configuration-time-only scope as FromDecimalString.
func FromHex(s string) (U256, error) {
	v, err := uint256.FromHex(s)
	if err != nil {
		return U256{}, err
	}
	return fromUint256(v), nil
}

func fromUint256(v *uint256.Int) U256 {
	var z U256
	copy(z.Limbs[:], v[:])
	return z
}

// IsZero reports whether z is zero.
func (z U256) IsZero() bool {
	return z.Limbs[0] == 0 && z.Limbs[1] == 0 && z.Limbs[2] == 0 && z.Limbs[3] == 0
}

// IsOdd reports whether z is odd.
func (z U256) IsOdd() bool {
	return z.Limbs[0]&1 == 1
}

// Cmp returns -1, 0 or +1 as z is unsigned-less-than, equal to, or
// greater than x, comparing lexicographically from the most significant
// limb down.
func (z U256) Cmp(x U256) int {
	for i := 3; i >= 0; i-- {
		if z.Limbs[i] != x.Limbs[i] {
			if z.Limbs[i] < x.Limbs[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// Equal reports whether z == x.
func (z U256) Equal(x U256) bool {
	return z.Cmp(x) == 0
}

// Lt reports whether z < x.
func (z U256) Lt(x U256) bool {
	return z.Cmp(x) < 0
}

// Add returns z+x and the carry-out bit.
func (z U256) Add(x U256) (U256, uint64) {
	var r U256
	var c uint64
	r.Limbs[0], c = bits.Add64(z.Limbs[0], x.Limbs[0], 0)
	r.Limbs[1], c = bits.Add64(z.Limbs[1], x.Limbs[1], c)
	r.Limbs[2], c = bits.Add64(z.Limbs[2], x.Limbs[2], c)
	r.Limbs[3], c = bits.Add64(z.Limbs[3], x.Limbs[3], c)
	return r, c
}

// Sub returns z-x and the borrow-out bit.
func (z U256) Sub(x U256) (U256, uint64) {
	var r U256
	var b uint64
	r.Limbs[0], b = bits.Sub64(z.Limbs[0], x.Limbs[0], 0)
	r.Limbs[1], b = bits.Sub64(z.Limbs[1], x.Limbs[1], b)
	r.Limbs[2], b = bits.Sub64(z.Limbs[2], x.Limbs[2], b)
	r.Limbs[3], b = bits.Sub64(z.Limbs[3], x.Limbs[3], b)
	return r, b
}

// Mul returns the widening product z*x as a (low, high) pair of U256,
// each a 256-bit half of the full 512-bit result.
func (z U256) Mul(x U256) (low, high U256) {
	var t [8]uint64
	for i := 0; i < 4; i++ {
		var carry uint64
		for j := 0; j < 4; j++ {
			hi, lo := bits.Mul64(z.Limbs[i], x.Limbs[j])
			var c1, c2 uint64
			lo, c1 = bits.Add64(lo, t[i+j], 0)
			lo, c2 = bits.Add64(lo, carry, 0)
			t[i+j] = lo
			carry = hi + c1 + c2
		}
		t[i+4] += carry
	}
	copy(low.Limbs[:], t[0:4])
	copy(high.Limbs[:], t[4:8])
	return
}

// Sqr returns the widening square z*z as a (low, high) pair. Delegates to
// Mul(z, z) rather than a dedicated cross-term-doubling loop, so squares
// go through the same multiplication routine as every other product.
func (z U256) Sqr() (low, high U256) {
	return z.Mul(z)
}

// Shl returns z shifted left by n bits (0 <= n <= 255); bits shifted out
// of the top are discarded.
func (z U256) Shl(n uint) U256 {
	if n == 0 {
		return z
	}
	if n >= 256 {
		return U256{}
	}
	var r U256
	limbShift := n / 64
	bitShift := n % 64
	for i := 3; i >= 0; i-- {
		srcIdx := i - int(limbShift)
		if srcIdx < 0 {
			continue
		}
		v := z.Limbs[srcIdx] << bitShift
		if bitShift > 0 && srcIdx > 0 {
			v |= z.Limbs[srcIdx-1] >> (64 - bitShift)
		}
		r.Limbs[i] = v
	}
	return r
}

// Shr returns z shifted right by n bits (0 <= n <= 255).
func (z U256) Shr(n uint) U256 {
	if n == 0 {
		return z
	}
	if n >= 256 {
		return U256{}
	}
	var r U256
	limbShift := n / 64
	bitShift := n % 64
	for i := 0; i < 4; i++ {
		srcIdx := i + int(limbShift)
		if srcIdx > 3 {
			continue
		}
		v := z.Limbs[srcIdx] >> bitShift
		if bitShift > 0 && srcIdx < 3 {
			v |= z.Limbs[srcIdx+1] << (64 - bitShift)
		}
		r.Limbs[i] = v
	}
	return r
}

// LeadingZeros returns the number of leading zero bits in the 256-bit
// representation of z, used by proof-of-work's difficulty check.
func (z U256) LeadingZeros() int {
	for i := 3; i >= 0; i-- {
		if z.Limbs[i] != 0 {
			return (3-i)*64 + bits.LeadingZeros64(z.Limbs[i])
		}
	}
	return 256
}

// InvMod returns the unique v such that v*z ≡ 1 (mod m), or false if
// gcd(z, m) != 1. m must be odd. Implemented via binary extended GCD,
// repeatedly halving even operands and subtracting operands of matching
// parity until one side reaches zero.
func (z U256) InvMod(m U256) (U256, bool) {
	if m.IsZero() || !m.IsOdd() {
		panic("u256: InvMod requires an odd, nonzero modulus")
	}
	if z.IsZero() {
		return U256{}, false
	}

	// Binary extended GCD (a variant of the plain Euclidean binary GCD,
	// carrying along Bezout coefficients u, v reduced mod m at each step).
	u, v := z, m
	A, C := One, U256{}

	for !u.IsZero() {
		for u.Limbs[0]&1 == 0 {
			u = u.Shr(1)
			if A.Limbs[0]&1 == 0 {
				A = A.Shr(1)
			} else {
				s, carry := A.Add(m)
				A = s.Shr(1)
				A.Limbs[3] |= carry << 63
			}
		}
		for v.Limbs[0]&1 == 0 {
			v = v.Shr(1)
			if C.Limbs[0]&1 == 0 {
				C = C.Shr(1)
			} else {
				s, carry := C.Add(m)
				C = s.Shr(1)
				C.Limbs[3] |= carry << 63
			}
		}
		if u.Cmp(v) >= 0 {
			u, _ = u.Sub(v)
			A = subMod(A, C, m)
		} else {
			v, _ = v.Sub(u)
			C = subMod(C, A, m)
		}
	}
	if !v.Equal(One) {
		return U256{}, false
	}
	return modReduce(C, m), true
}

// addMod returns (a+b) mod m for a, b < m, guarding against overflow by
// subtracting m when the raw sum overflows or exceeds it.
func addMod(a, b, m U256) U256 {
	s, carry := a.Add(b)
	if carry != 0 || s.Cmp(m) >= 0 {
		s, _ = s.Sub(m)
	}
	return s
}

// subMod returns (a-b) mod m for a, b < m.
func subMod(a, b, m U256) U256 {
	d, borrow := a.Sub(b)
	if borrow != 0 {
		d, _ = d.Add(m)
	}
	return d
}

// modReduce reduces a value that may be one modulus too large (as can
// happen after the extended-GCD loop above) back into [0, m).
func modReduce(a, m U256) U256 {
	for a.Cmp(m) >= 0 {
		a, _ = a.Sub(m)
	}
	return a
}

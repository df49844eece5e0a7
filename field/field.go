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

// Package field wraps package montgomery's raw reduction primitives in a
// Element type with the arithmetic a STARK prover actually calls:
// +, -, *, /, pow, batch inversion and roots of unity.
package field

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/starkcore/stcore/montgomery"
	"github.com/starkcore/stcore/u256"
)

// Element is a field element held in Montgomery form. The zero value is
// the field's zero.
type Element struct {
	m u256.U256
}

// Zero is the additive identity.
var Zero = Element{}

// One is the multiplicative identity (Montgomery-encoded).
var One = Element{m: montgomery.R1}

// ErrUnsupportedSize is returned by Root when asked for a root of unity of
// a non-power-of-two size, or a power of two beyond the table's 2-adicity.
var ErrUnsupportedSize = errors.New("field: unsupported root-of-unity size")

// New builds a field element from an ordinary (non-Montgomery) U256
// residue, reducing it into Montgomery form.
func New(x u256.U256) Element {
	return Element{m: montgomery.ToMontgomery(x)}
}

// NewFromUint64 builds a field element from a small unsigned integer.
func NewFromUint64(v uint64) Element {
	return New(u256.FromUint64(v))
}

// FromMontgomeryRaw builds an Element directly from an already-reduced
// Montgomery-form U256, skipping the conversion. Used internally and by
// code (such as the DAG's algebraic hashing) that computes directly in
// Montgomery space.
func FromMontgomeryRaw(raw u256.U256) Element {
	return Element{m: raw}
}

// AsMontgomery exposes the raw Montgomery-form U256, e.g. to feed a hash
// function (the DAG's algebraic hash needs the raw bytes).
func (e Element) AsMontgomery() u256.U256 {
	return e.m
}

// Uint256 converts e back to its ordinary (non-Montgomery) residue.
func (e Element) Uint256() u256.U256 {
	return montgomery.FromMontgomery(e.m)
}

// Bytes returns the big-endian encoding of e's ordinary residue.
func (e Element) Bytes() [32]byte {
	return e.Uint256().ToBytesBE()
}

// IsZero reports whether e is the field's zero.
func (e Element) IsZero() bool {
	return e.m.IsZero()
}

// Equal reports whether e == other.
func (e Element) Equal(other Element) bool {
	return e.m.Equal(other.m)
}

// Add returns e+other.
func (e Element) Add(other Element) Element {
	s, carry := e.m.Add(other.m)
	if carry != 0 || s.Cmp(montgomery.Modulus) >= 0 {
		s, _ = s.Sub(montgomery.Modulus)
	}
	return Element{m: s}
}

// Sub returns e-other.
func (e Element) Sub(other Element) Element {
	d, borrow := e.m.Sub(other.m)
	if borrow != 0 {
		d, _ = d.Add(montgomery.Modulus)
	}
	return Element{m: d}
}

// Neg returns -e.
func (e Element) Neg() Element {
	if e.IsZero() {
		return Zero
	}
	d, _ := montgomery.Modulus.Sub(e.m)
	return Element{m: d}
}

// Mul returns e*other.
func (e Element) Mul(other Element) Element {
	return Element{m: montgomery.MulRedc(e.m, other.m)}
}

// Square returns e*e.
func (e Element) Square() Element {
	return Element{m: montgomery.SqrRedc(e.m)}
}

// Inv returns e^-1, or an error if e is zero.
func (e Element) Inv() (Element, error) {
	r, err := montgomery.InvRedc(e.m)
	if err != nil {
		return Element{}, fmt.Errorf("field: inverse of zero: %w", err)
	}
	return Element{m: r}, nil
}

// Div returns e/other, or an error if other is zero.
func (e Element) Div(other Element) (Element, error) {
	inv, err := other.Inv()
	if err != nil {
		return Element{}, err
	}
	return e.Mul(inv), nil
}

// Pow returns e^n using right-to-left (least significant bit first)
// binary exponentiation.
func (e Element) Pow(n uint64) Element {
	result := One
	base := e
	for n > 0 {
		if n&1 == 1 {
			result = result.Mul(base)
		}
		base = base.Square()
		n >>= 1
	}
	return result
}

// BatchInvert inverts every element of vs in place using Montgomery's
// trick: one running product, a single inversion, then an unwind pass,
// O(n) multiplications plus one inversion instead of n inversions. Panics
// if any element is zero (callers streaming DAG chunks are expected to
// never hit this; see package dag).
func BatchInvert(vs []Element) {
	BatchInvertSrcDst(vs, vs)
}

// BatchInvertSrcDst computes the element-wise inverse of src into dst
// (which may alias src) using Montgomery's trick.
func BatchInvertSrcDst(src, dst []Element) {
	n := len(src)
	if n == 0 {
		return
	}
	if len(dst) != n {
		panic("field: BatchInvertSrcDst requires len(src) == len(dst)")
	}

	running := make([]Element, n)
	acc := One
	for i, v := range src {
		if v.IsZero() {
			panic("field: BatchInvertSrcDst: zero element has no inverse")
		}
		running[i] = acc
		acc = acc.Mul(v)
	}
	accInv, err := acc.Inv()
	if err != nil {
		panic("field: BatchInvertSrcDst: " + err.Error())
	}
	for i := n - 1; i >= 0; i-- {
		v := src[i]
		dst[i] = running[i].Mul(accInv)
		accInv = accInv.Mul(v)
	}
}

// maxTwoAdicity is the table's supported exponent range: Root(2^k) is
// defined for 0 <= k <= maxTwoAdicity. The compile-time prime's actual
// two-adicity is 192, but only roots up to 2^48 need to be materialized
// to cover practical FFT sizes, so the table stops there.
const maxTwoAdicity = 48

// rootTable[k] holds a primitive 2^k-th root of unity, for k in
// [0, maxTwoAdicity]. Populated in init from rootTable[maxTwoAdicity] (a
// primitive 2^48-th root derived from the field's generator) by repeated
// squaring.
var rootTable [maxTwoAdicity + 1]Element

func init() {
	// generator = 3 is a primitive root of the multiplicative group for
	// the StarkWare/OpenZKP prime 2^251 + 17*2^192 + 1 (order p-1 =
	// 2^192 * (2^59+17)); raising it to the (p-1)/2^48 power yields a
	// primitive 2^48-th root of unity.
	generator := NewFromUint64(3)
	root := powBig(generator, twoAdicExponent(maxTwoAdicity))
	rootTable[maxTwoAdicity] = root
	for k := maxTwoAdicity - 1; k >= 0; k-- {
		rootTable[k] = rootTable[k+1].Square()
	}
}

// twoAdicExponent returns (p-1)/2^k as a big.Int, the exponent that takes a
// generator of the full multiplicative group down to an element of the
// order-2^k subgroup.
func twoAdicExponent(k int) *big.Int {
	pMinusOne := new(big.Int).Sub(montgomeryBigModulus(), big.NewInt(1))
	divisor := new(big.Int).Lsh(big.NewInt(1), uint(k))
	exp := new(big.Int).Div(pMinusOne, divisor)
	return exp
}

// montgomeryBigModulus reconstructs the field's modulus as a big.Int from
// the package-level U256 constant, so the two-adic exponent above can be
// computed without package montgomery exporting its internal big.Int.
func montgomeryBigModulus() *big.Int {
	b := montgomery.Modulus.ToBytesBE()
	return new(big.Int).SetBytes(b[:])
}

// powBig raises base to a (potentially large, up to ~251-bit) exponent
// given as a big.Int, via square-and-multiply over the exponent's bits.
func powBig(base Element, exp *big.Int) Element {
	result := One
	b := base
	bits := exp.BitLen()
	for i := 0; i < bits; i++ {
		if exp.Bit(i) == 1 {
			result = result.Mul(b)
		}
		b = b.Square()
	}
	return result
}

// Root returns ROOT[k], a primitive n-th root of unity, where n = 2^k.
// Fails with ErrUnsupportedSize if n is not a power of two or exceeds
// 2^48.
func Root(n uint64) (Element, error) {
	if n == 0 || n&(n-1) != 0 {
		return Element{}, fmt.Errorf("%w: %d is not a power of two", ErrUnsupportedSize, n)
	}
	k := 0
	for v := n; v > 1; v >>= 1 {
		k++
	}
	if k > maxTwoAdicity {
		return Element{}, fmt.Errorf("%w: 2^%d exceeds maximum supported size 2^%d", ErrUnsupportedSize, k, maxTwoAdicity)
	}
	return rootTable[k], nil
}

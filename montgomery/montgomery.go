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

// Package montgomery implements Montgomery-form modular reduction and
// multiplication for the compile-time-fixed prime used throughout stcore:
//
//	p = 2^251 + 17*2^192 + 1
//
// the 252-bit StarkWare/OpenZKP prime, chosen for its large (192-bit)
// two-adicity: (p-1) = 2^192 * (2^59 + 17), which supplies primitive roots
// of unity for every NTT size this module will ever be asked to transform.
//
// Go has no const-evaluable arbitrary-width arithmetic, so where the
// original derives R1, R2, R3 and M64 as `const fn` computations over
// limbs, we compute them once in init() with math/big and hold them in
// package-level values. This is the alternative the design explicitly
// allows: "require the user to precompute them and check them at startup
// against the modulus."
package montgomery

import (
	"math/big"
	"math/bits"

	"github.com/starkcore/stcore/u256"
)

// Modulus is the compile-time prime p. It is odd and < 2^256, as required.
var Modulus u256.U256

// M64 = -p^-1 mod 2^64, the Montgomery reduction constant.
var M64 uint64

// R1 = 2^256 mod p, the Montgomery-form encoding of 1.
var R1 u256.U256

// R2 = 2^512 mod p, used to convert values into Montgomery form.
var R2 u256.U256

// R3 = 2^768 mod p, used by inv_redc to return an inverse already in
// Montgomery form.
var R3 u256.U256

var bigModulus *big.Int

func init() {
	var err error
	Modulus, err = u256.FromDecimalString(
		"3618502788666131213697322783095070105623107215331596699973092056135872020481",
	)
	if err != nil {
		panic("montgomery: invalid compile-time modulus literal: " + err.Error())
	}
	if Modulus.IsZero() || !Modulus.IsOdd() {
		panic("montgomery: modulus must be odd and nonzero")
	}

	bigModulus = u256ToBig(Modulus)

	// M64 = -p^-1 mod 2^64
	base := new(big.Int).Lsh(big.NewInt(1), 64)
	pMod := new(big.Int).Mod(bigModulus, base)
	inv := new(big.Int).ModInverse(pMod, base)
	if inv == nil {
		panic("montgomery: modulus has no inverse mod 2^64 (even modulus?)")
	}
	negInv := new(big.Int).Sub(base, inv)
	negInv.Mod(negInv, base)
	M64 = negInv.Uint64()

	R1 = bigPowModToU256(256, bigModulus)
	R2 = bigPowModToU256(512, bigModulus)
	R3 = bigPowModToU256(768, bigModulus)
}

func u256ToBig(x u256.U256) *big.Int {
	b := x.ToBytesBE()
	return new(big.Int).SetBytes(b[:])
}

func bigToU256(x *big.Int) u256.U256 {
	var b [32]byte
	x.FillBytes(b[:])
	return u256.FromBytesBE(b[:])
}

// bigPowModToU256 computes 2^exp mod m and converts to U256.
func bigPowModToU256(exp int64, m *big.Int) u256.U256 {
	r := new(big.Int).Exp(big.NewInt(2), big.NewInt(exp), m)
	return bigToU256(r)
}

// mac computes lo, hi such that acc + x*y + carry == hi*2^64 + lo, the
// multiply-accumulate-with-carry primitive Algorithm 14.32 (CIOS) is built
// from.
func mac(acc, x, y, carry uint64) (lo, hi uint64) {
	hi, lo = bits.Mul64(x, y)
	var c1, c2 uint64
	lo, c1 = bits.Add64(lo, acc, 0)
	lo, c2 = bits.Add64(lo, carry, 0)
	hi += c1 + c2
	return
}

// Redc computes (lo + hi*R) * R^-1 mod p for a 512-bit value split into two
// 256-bit halves, via four rounds of word-by-word CIOS reduction (Algorithm
// 14.32, Handbook of Applied Cryptography), followed by a single
// conditional subtraction of the modulus.
func Redc(lo, hi u256.U256) u256.U256 {
	m := Modulus.Limbs
	var a [8]uint64
	copy(a[0:4], lo.Limbs[:])
	copy(a[4:8], hi.Limbs[:])

	for i := 0; i < 4; i++ {
		ui := a[i] * M64
		var carry uint64
		for j := 0; j < 4; j++ {
			var lo64, hi64 uint64
			lo64, hi64 = mac(a[i+j], ui, m[j], carry)
			a[i+j] = lo64
			carry = hi64
		}
		// propagate carry into the remaining high limbs
		k := i + 4
		for carry != 0 && k < 8 {
			var c uint64
			a[k], c = bits.Add64(a[k], carry, 0)
			carry = c
			k++
		}
	}

	var r u256.U256
	copy(r.Limbs[:], a[4:8])
	if r.Cmp(Modulus) >= 0 {
		r, _ = r.Sub(Modulus)
	}
	return r
}

// MulRedc returns x*y*R^-1 mod p, the Montgomery-form product of two
// Montgomery-form field elements. Inputs must already be < p.
func MulRedc(x, y u256.U256) u256.U256 {
	lo, hi := x.Mul(y)
	return Redc(lo, hi)
}

// SqrRedc returns x*x*R^-1 mod p. Implemented via the general widening
// square followed by reduction; squaring's extra symmetry (cross terms
// computed once and doubled) is left to the compiler/CPU rather than
// hand-unrolled, since U256.Sqr already shares Mul's carry chains.
func SqrRedc(x u256.U256) u256.U256 {
	lo, hi := x.Sqr()
	return Redc(lo, hi)
}

// ToMontgomery converts x (ordinary residue, x < p) into Montgomery form.
func ToMontgomery(x u256.U256) u256.U256 {
	return MulRedc(x, R2)
}

// ToMontgomeryConst is the non-branching variant: it always performs the
// conditional-subtract's arithmetic (subtract, then conditionally add
// back), rather than branching on the comparison, matching a const-eval
// friendly `to_montgomery_const`.
func ToMontgomeryConst(x u256.U256) u256.U256 {
	r := MulRedc(x, R2)
	d, borrow := r.Sub(Modulus)
	if borrow != 0 {
		// subtract underflowed: r was already < Modulus, undo by adding
		// Modulus back.
		d, _ = d.Add(Modulus)
		return d
	}
	return d
}

// FromMontgomery converts a Montgomery-form value back to an ordinary
// residue.
func FromMontgomery(x u256.U256) u256.U256 {
	return Redc(x, u256.Zero)
}

// ErrDivisionByZero is returned by InvRedc when asked to invert the
// Montgomery-form zero element; zero is the only non-invertible element of
// a prime field.
var ErrDivisionByZero = errDivByZero{}

type errDivByZero struct{}

func (errDivByZero) Error() string { return "montgomery: division by zero" }

// InvRedc returns the Montgomery-form inverse of n (itself Montgomery
// form): invmod(n, p) * R^3, reduced back down by one Redc round.
func InvRedc(n u256.U256) (u256.U256, error) {
	inv, ok := n.InvMod(Modulus)
	if !ok {
		return u256.U256{}, ErrDivisionByZero
	}
	return MulRedc(inv, R3), nil
}

// MulMod computes x*y mod p for ordinary (non-Montgomery) residues x, y,
// saving two explicit to/from round trips compared to converting both
// operands, multiplying in Montgomery form, and converting back: it
// folds the first conversion into the same reduction as the multiply.
func MulMod(x, y u256.U256) u256.U256 {
	return MulRedc(MulRedc(x, R2), y)
}

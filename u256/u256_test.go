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

package u256

import (
	"math/big"
	"testing"
	"testing/quick"
)

func toBig(x U256) *big.Int {
	b := x.ToBytesBE()
	return new(big.Int).SetBytes(b[:])
}

func TestAddMatchesBigInt(t *testing.T) {
	run := func(a1, a2, a3, a4, b1, b2, b3, b4 uint64) bool {
		a := FromLimbs(a1, a2, a3, a4)
		b := FromLimbs(b1, b2, b3, b4)
		sum, carry := a.Add(b)

		want := new(big.Int).Add(toBig(a), toBig(b))
		wantCarry := uint64(0)
		mod := new(big.Int).Lsh(big.NewInt(1), 256)
		if want.Cmp(mod) >= 0 {
			want.Sub(want, mod)
			wantCarry = 1
		}
		return carry == wantCarry && toBig(sum).Cmp(want) == 0
	}
	if err := quick.Check(run, nil); err != nil {
		t.Fatal(err)
	}
}

func TestSubMatchesBigInt(t *testing.T) {
	run := func(a1, a2, a3, a4, b1, b2, b3, b4 uint64) bool {
		a := FromLimbs(a1, a2, a3, a4)
		b := FromLimbs(b1, b2, b3, b4)
		diff, borrow := a.Sub(b)

		want := new(big.Int).Sub(toBig(a), toBig(b))
		wantBorrow := uint64(0)
		if want.Sign() < 0 {
			mod := new(big.Int).Lsh(big.NewInt(1), 256)
			want.Add(want, mod)
			wantBorrow = 1
		}
		return borrow == wantBorrow && toBig(diff).Cmp(want) == 0
	}
	if err := quick.Check(run, nil); err != nil {
		t.Fatal(err)
	}
}

func TestMulMatchesBigInt(t *testing.T) {
	run := func(a1, a2, a3, a4, b1, b2, b3, b4 uint64) bool {
		a := FromLimbs(a1, a2, a3, a4)
		b := FromLimbs(b1, b2, b3, b4)
		lo, hi := a.Mul(b)

		want := new(big.Int).Mul(toBig(a), toBig(b))
		wantHi := new(big.Int)
		wantLo := new(big.Int)
		mod := new(big.Int).Lsh(big.NewInt(1), 256)
		wantHi.DivMod(want, mod, wantLo)

		return toBig(lo).Cmp(wantLo) == 0 && toBig(hi).Cmp(wantHi) == 0
	}
	if err := quick.Check(run, nil); err != nil {
		t.Fatal(err)
	}
}

func TestSqrMatchesMul(t *testing.T) {
	run := func(a1, a2, a3, a4 uint64) bool {
		a := FromLimbs(a1, a2, a3, a4)
		loS, hiS := a.Sqr()
		loM, hiM := a.Mul(a)
		return loS.Equal(loM) && hiS.Equal(hiM)
	}
	if err := quick.Check(run, nil); err != nil {
		t.Fatal(err)
	}
}

func TestShlShrMatchBigInt(t *testing.T) {
	run := func(a1, a2, a3, a4 uint64, nSmall uint8) bool {
		a := FromLimbs(a1, a2, a3, a4)
		n := uint(nSmall % 255)

		mod := new(big.Int).Lsh(big.NewInt(1), 256)
		wantShl := new(big.Int).Lsh(toBig(a), n)
		wantShl.Mod(wantShl, mod)
		wantShr := new(big.Int).Rsh(toBig(a), n)

		return toBig(a.Shl(n)).Cmp(wantShl) == 0 && toBig(a.Shr(n)).Cmp(wantShr) == 0
	}
	if err := quick.Check(run, nil); err != nil {
		t.Fatal(err)
	}
}

func TestLeadingZeros(t *testing.T) {
	if Zero.LeadingZeros() != 256 {
		t.Fatalf("LeadingZeros(0) = %d, want 256", Zero.LeadingZeros())
	}
	if One.LeadingZeros() != 255 {
		t.Fatalf("LeadingZeros(1) = %d, want 255", One.LeadingZeros())
	}
	allOnes := U256{Limbs: [4]uint64{^uint64(0), ^uint64(0), ^uint64(0), ^uint64(0)}}
	if allOnes.LeadingZeros() != 0 {
		t.Fatalf("LeadingZeros(all-ones) = %d, want 0", allOnes.LeadingZeros())
	}
}

func TestInvModIsMultiplicativeInverse(t *testing.T) {
	m := FromUint64(97)
	for v := uint64(1); v < 97; v++ {
		z := FromUint64(v)
		inv, ok := z.InvMod(m)
		if !ok {
			t.Fatalf("InvMod(%d, 97): expected an inverse", v)
		}
		lo, _ := z.Mul(inv)
		got := new(big.Int).Mod(toBig(lo), big.NewInt(97))
		if got.Cmp(big.NewInt(1)) != 0 {
			t.Fatalf("InvMod(%d, 97) = %v: %d*%v mod 97 = %v, want 1", v, inv, v, inv, got)
		}
	}
}

func TestInvModNoInverseWhenNotCoprime(t *testing.T) {
	m := FromUint64(9)
	z := FromUint64(3)
	if _, ok := z.InvMod(m); ok {
		t.Fatal("InvMod(3, 9): gcd(3,9) = 3 != 1, expected no inverse")
	}
}

func TestCmpAndEqual(t *testing.T) {
	a := FromUint64(5)
	b := FromUint64(7)
	if !a.Lt(b) {
		t.Fatal("5 should be less than 7")
	}
	if a.Equal(b) {
		t.Fatal("5 should not equal 7")
	}
	if !a.Equal(FromUint64(5)) {
		t.Fatal("5 should equal 5")
	}
}

func TestBytesBERoundTrip(t *testing.T) {
	run := func(a1, a2, a3, a4 uint64) bool {
		a := FromLimbs(a1, a2, a3, a4)
		b := a.ToBytesBE()
		return FromBytesBE(b[:]).Equal(a)
	}
	if err := quick.Check(run, nil); err != nil {
		t.Fatal(err)
	}
}

func TestFromDecimalAndHex(t *testing.T) {
	dec, err := FromDecimalString("91")
	if err != nil {
		t.Fatalf("FromDecimalString(91): %v", err)
	}
	if !dec.Equal(FromUint64(91)) {
		t.Fatalf("FromDecimalString(91) = %v, want 91", dec)
	}

	hex, err := FromHex("0x5b")
	if err != nil {
		t.Fatalf("FromHex(0x5b): %v", err)
	}
	if !hex.Equal(FromUint64(91)) {
		t.Fatalf("FromHex(0x5b) = %v, want 91", hex)
	}
}

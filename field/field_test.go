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

package field

import (
	"errors"
	"testing"
	"testing/quick"
)

func TestToFromMontgomeryRoundTrip(t *testing.T) {
	run := func(v uint64) bool {
		e := NewFromUint64(v)
		return FromMontgomeryRaw(e.AsMontgomery()).Equal(e)
	}
	if err := quick.Check(run, nil); err != nil {
		t.Fatal(err)
	}
}

func TestMulMatchesReduction(t *testing.T) {
	run := func(a, b uint64) bool {
		x := NewFromUint64(a)
		y := NewFromUint64(b)
		return x.Mul(y).Equal(doubleAndAddMul(a, b))
	}
	if err := quick.Check(run, nil); err != nil {
		t.Fatal(err)
	}
}

// doubleAndAddMul computes a*b in the field using only Add, as a schoolbook
// double-and-add multiply independent of Mul/Pow, so TestMulMatchesReduction
// isn't just checking Mul against itself.
func doubleAndAddMul(a, b uint64) Element {
	acc := Zero
	base := NewFromUint64(a)
	n := b
	for n > 0 {
		if n&1 == 1 {
			acc = acc.Add(base)
		}
		base = base.Add(base)
		n >>= 1
	}
	return acc
}

func TestInvIsMultiplicativeInverse(t *testing.T) {
	run := func(v uint64) bool {
		if v == 0 {
			v = 1
		}
		e := NewFromUint64(v)
		inv, err := e.Inv()
		if err != nil {
			return false
		}
		return e.Mul(inv).Equal(One)
	}
	if err := quick.Check(run, nil); err != nil {
		t.Fatal(err)
	}
}

func TestInvOfZeroFails(t *testing.T) {
	if _, err := Zero.Inv(); err == nil {
		t.Fatal("Inv(0): expected an error")
	}
}

func TestBatchInvertMatchesElementwiseInvert(t *testing.T) {
	vs := []Element{
		NewFromUint64(1),
		NewFromUint64(2),
		NewFromUint64(3),
		NewFromUint64(97),
		NewFromUint64(123456789),
	}

	want := make([]Element, len(vs))
	for i, v := range vs {
		inv, err := v.Inv()
		if err != nil {
			t.Fatalf("Inv(%v): %v", v, err)
		}
		want[i] = inv
	}

	got := append([]Element(nil), vs...)
	BatchInvert(got)

	for i := range got {
		if !got[i].Equal(want[i]) {
			t.Fatalf("BatchInvert[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

// TestScenario1 is spec scenario 1: a = 7, b = 13 over
// p = 2^251 + 17*2^192 + 1 reduces to 91.
func TestScenario1(t *testing.T) {
	a := NewFromUint64(7)
	b := NewFromUint64(13)
	got := a.Mul(b)
	want := NewFromUint64(91)
	if !got.Equal(want) {
		t.Fatalf("7*13 in the field = %v, want 91", got)
	}
}

func TestPowMatchesRepeatedMultiplication(t *testing.T) {
	run := func(base uint64, expSmall uint8) bool {
		e := NewFromUint64(base)
		n := uint64(expSmall)

		want := One
		for i := uint64(0); i < n; i++ {
			want = want.Mul(e)
		}
		return e.Pow(n).Equal(want)
	}
	if err := quick.Check(run, nil); err != nil {
		t.Fatal(err)
	}
}

func TestRootIsPrimitive(t *testing.T) {
	for _, n := range []uint64{2, 4, 8, 16, 32} {
		root, err := Root(n)
		if err != nil {
			t.Fatalf("Root(%d): %v", n, err)
		}
		if !root.Pow(n).Equal(One) {
			t.Fatalf("Root(%d)^%d != 1", n, n)
		}
		if root.Pow(n / 2).Equal(One) {
			t.Fatalf("Root(%d)^%d == 1, root is not primitive", n, n/2)
		}
	}
}

func TestRootRejectsNonPowerOfTwo(t *testing.T) {
	if _, err := Root(3); !errors.Is(err, ErrUnsupportedSize) {
		t.Fatalf("Root(3): got %v, want ErrUnsupportedSize", err)
	}
}

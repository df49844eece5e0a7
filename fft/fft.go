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

// Package fft implements an in-place number-theoretic transform over
// package field's prime field, producing bit-reversed output: the
// transform's value at frequency i ends up at position bitReverse(i, k)
// for an N = 2^k point transform.
//
// The transform is organized as a radix-√N ("six-step") decomposition:
// split the N-point problem into an outer x inner grid (inner =
// 2^⌊k/2⌋, outer = N/inner), transpose, run independent row transforms,
// apply a between-stage twiddle, transpose again, and run the
// complementary row transforms. Each pass's rows are independent and run
// concurrently via errgroup. Unlike a fully in-place cache-oblivious
// implementation, the two transpose steps here go through a scratch
// buffer rather than an in-place permutation: same asymptotic
// complexity and identical parallel decomposition, traded for a
// guaranteed-correct transpose instead of the in-place block-swap trick.
package fft

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/starkcore/stcore/field"
)

// ErrUnsupportedSize is returned for input whose length is not a power of
// two; empty input is a no-op, not an error.
var ErrUnsupportedSize = errors.New("fft: length must be a power of two >= 1")

var twiddleCache sync.Map // size (int) -> []field.Element

// twiddles returns the cached length-size/2 table of powers of a
// primitive size-th root of unity, computing it on first request. Races
// between concurrent first requests for the same size are resolved by
// sync.Map.LoadOrStore: both may compute the table, only one is kept,
// and all callers observe a consistent result either way.
func twiddles(size int) ([]field.Element, error) {
	if v, ok := twiddleCache.Load(size); ok {
		return v.([]field.Element), nil
	}
	g, err := field.Root(uint64(size))
	if err != nil {
		return nil, err
	}
	table := make([]field.Element, size/2)
	acc := field.One
	for i := range table {
		table[i] = acc
		acc = acc.Mul(g)
	}
	actual, _ := twiddleCache.LoadOrStore(size, table)
	return actual.([]field.Element), nil
}

// fftVecRecursive runs a decimation-in-frequency radix-2 transform over
// data[offset : offset+count], producing bit-reversed output from
// natural input. twiddles must hold at least stride*count/2 entries
// (i.e. be a table for a root of unity whose order is a multiple of
// count, sampled every stride-th entry to reach the needed resolution).
func fftVecRecursive(data []field.Element, twiddles []field.Element, offset, stride, count int) {
	if count <= 1 {
		return
	}
	half := count / 2
	for j := 0; j < half; j++ {
		idx1 := offset + j
		idx2 := offset + half + j
		u := data[idx1]
		v := data[idx2]
		data[idx1] = u.Add(v)
		data[idx2] = u.Sub(v).Mul(twiddles[stride*j])
	}
	fftVecRecursive(data, twiddles, offset, stride*2, half)
	fftVecRecursive(data, twiddles, offset+half, stride*2, half)
}

// bitReverse reverses the low `bits` bits of x.
func bitReverse(x uint64, bits int) uint64 {
	var r uint64
	for i := 0; i < bits; i++ {
		r = (r << 1) | (x & 1)
		x >>= 1
	}
	return r
}

func log2(n int) int {
	k := 0
	for (1 << k) < n {
		k++
	}
	return k
}

// Transform computes the forward NTT of data in place, using ω =
// field.Root(len(data)) as the primitive root of unity. len(data) must
// be a power of two; the empty slice is a no-op.
func Transform(data []field.Element) error {
	return transform(data, func(n int) (field.Element, error) { return field.Root(uint64(n)) })
}

// InverseTransform computes the inverse NTT of data in place, taking its
// input in the bit-reversed order Transform produces: it permutes data
// into natural order, runs the transform with ω⁻¹ in place of ω, permutes
// the bit-reversed result back into natural order, then scales every
// element by N⁻¹. Composing Transform and InverseTransform is the identity.
func InverseTransform(data []field.Element) error {
	n := len(data)
	if n == 0 {
		return nil
	}
	if n&(n-1) != 0 {
		return fmt.Errorf("%w: got %d", ErrUnsupportedSize, n)
	}
	bits := log2(n)
	permute := func() {
		for i := 0; i < n; i++ {
			if r := int(bitReverse(uint64(i), bits)); i < r {
				data[i], data[r] = data[r], data[i]
			}
		}
	}
	permute()
	if err := transform(data, func(n int) (field.Element, error) {
		root, err := field.Root(uint64(n))
		if err != nil {
			return field.Element{}, err
		}
		return root.Inv()
	}); err != nil {
		return err
	}
	permute()
	nInv, err := field.NewFromUint64(uint64(n)).Inv()
	if err != nil {
		return fmt.Errorf("fft: inverse transform: %w", err)
	}
	for i := range data {
		data[i] = data[i].Mul(nInv)
	}
	return nil
}

func transform(data []field.Element, rootOf func(int) (field.Element, error)) error {
	n := len(data)
	if n == 0 {
		return nil
	}
	if n&(n-1) != 0 {
		return fmt.Errorf("%w: got %d", ErrUnsupportedSize, n)
	}
	if n == 1 {
		return nil
	}
	k := log2(n)
	innerBits := k / 2
	inner := 1 << innerBits
	outer := n / inner
	stretch := outer / inner

	rowTwiddles, err := twiddles(outer)
	if err != nil {
		return err
	}
	// The cached table holds powers of the forward root; when rootOf gives
	// another order-outer root (the inverse transform), use its powers.
	rowRoot, err := rootOf(outer)
	if err != nil {
		return err
	}
	if len(rowTwiddles) > 1 && !rowTwiddles[1].Equal(rowRoot) {
		table := make([]field.Element, len(rowTwiddles))
		acc := field.One
		for i := range table {
			table[i] = acc
			acc = acc.Mul(rowRoot)
		}
		rowTwiddles = table
	}
	omega, err := rootOf(n)
	if err != nil {
		return err
	}

	// Step 1: transpose the natural (inner rows x outer cols) layout
	// into (outer rows x inner cols).
	m2 := make([]field.Element, n)
	for k2 := 0; k2 < inner; k2++ {
		for k1 := 0; k1 < outer; k1++ {
			m2[k1*inner+k2] = data[k2*outer+k1]
		}
	}

	// Step 2: outer independent length-inner row transforms, each
	// followed by its between-stage twiddle multiply.
	innerLog := log2(inner)
	var g errgroup.Group
	for k1 := 0; k1 < outer; k1++ {
		k1 := k1
		g.Go(func() error {
			rowOffset := k1 * inner
			fftVecRecursive(m2, rowTwiddles, rowOffset, stretch, inner)
			if k1 > 0 {
				for i := 1; i < inner; i++ {
					j2 := bitReverse(uint64(i), innerLog)
					tw := omega.Pow(uint64(k1) * j2)
					m2[rowOffset+i] = m2[rowOffset+i].Mul(tw)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	// Step 3: transpose back to (inner rows x outer cols), indexed by
	// the bit-reversed inner frequency.
	m3 := make([]field.Element, n)
	for k1 := 0; k1 < outer; k1++ {
		for i := 0; i < inner; i++ {
			m3[i*outer+k1] = m2[k1*inner+i]
		}
	}

	// Step 4: inner independent length-outer row transforms.
	var g2 errgroup.Group
	for i := 0; i < inner; i++ {
		i := i
		g2.Go(func() error {
			fftVecRecursive(m3, rowTwiddles, i*outer, 1, outer)
			return nil
		})
	}
	if err := g2.Wait(); err != nil {
		return err
	}

	copy(data, m3)
	return nil
}

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

package dag

import (
	"testing"

	"github.com/starkcore/stcore/field"
)

// fakeTrace is a minimal TraceTable backed by in-memory rows.
type fakeTrace struct {
	rows [][]field.Element
}

func (f fakeTrace) NumRows() int { return len(f.rows) }
func (f fakeTrace) At(row, col int) field.Element { return f.rows[row][col] }

// evalDirect computes cofactor*root^row raised through X^5+5 directly,
// independent of the graph machinery, as the oracle for TestXPow5Plus5.
func evalDirect(cofactor field.Element, root field.Element, row int) field.Element {
	x := cofactor.Mul(root.Pow(uint64(row)))
	return x.Pow(5).Add(field.NewFromUint64(5))
}

func TestXPow5Plus5(t *testing.T) {
	const cosetSize = 16
	cofactor := field.NewFromUint64(3)
	root, err := field.Root(cosetSize)
	if err != nil {
		t.Fatalf("Root(%d): %v", cosetSize, err)
	}

	expr := Add(Exp(X(), 5), Constant(field.NewFromUint64(5)))

	g := NewGraph(cofactor, cosetSize, 1)
	g.Insert(expr)
	g.Init(0)

	trace := fakeTrace{}
	for row := 0; row < cosetSize; row++ {
		got := g.Next(trace)
		want := evalDirect(cofactor, root, row)
		if !got.Equal(want) {
			t.Fatalf("row %d: got %v, want %v", row, got, want)
		}
	}
}

func TestXPow5Plus5WithLookupTables(t *testing.T) {
	const cosetSize = 16
	cofactor := field.NewFromUint64(3)
	root, err := field.Root(cosetSize)
	if err != nil {
		t.Fatalf("Root(%d): %v", cosetSize, err)
	}

	expr := Add(Exp(X(), 5), Constant(field.NewFromUint64(5)))

	g := NewGraph(cofactor, cosetSize, 1)
	g.Insert(expr)
	g.LookupTables()
	g.Init(0)

	trace := fakeTrace{}
	for row := 0; row < cosetSize; row++ {
		got := g.Next(trace)
		want := evalDirect(cofactor, root, row)
		if !got.Equal(want) {
			t.Fatalf("row %d: got %v, want %v", row, got, want)
		}
	}
}

func TestTraceReference(t *testing.T) {
	const cosetSize = 4
	cofactor := field.One

	rows := make([][]field.Element, cosetSize)
	for i := range rows {
		rows[i] = []field.Element{field.NewFromUint64(uint64(100 + i))}
	}
	trace := fakeTrace{rows: rows}

	expr := Add(Trace(0, 0), Trace(0, 1))

	g := NewGraph(cofactor, cosetSize, 1)
	g.Insert(expr)
	g.Init(0)

	for row := 0; row < cosetSize; row++ {
		got := g.Next(trace)
		want := rows[row][0].Add(rows[(row+1)%cosetSize][0])
		if !got.Equal(want) {
			t.Fatalf("row %d: got %v, want %v", row, got, want)
		}
	}
}

func TestDedupByHash(t *testing.T) {
	g := NewGraph(field.NewFromUint64(3), 16, 1)
	a := g.Insert(Add(Constant(field.NewFromUint64(2)), Constant(field.NewFromUint64(3))))
	b := g.Insert(Constant(field.NewFromUint64(5)))
	if a != b {
		t.Fatalf("2+3 and the constant 5 should collapse to the same node: got %d and %d", a, b)
	}
}

func TestTreeShakeDropsUnreachable(t *testing.T) {
	g := NewGraph(field.NewFromUint64(3), 16, 1)
	g.Insert(Constant(field.NewFromUint64(42))) // unreachable from tip
	tip := g.Insert(Add(Exp(X(), 5), Constant(field.NewFromUint64(5))))

	before := g.Len()
	newTip := g.TreeShake(tip)
	after := g.Len()

	if after >= before {
		t.Fatalf("tree-shake did not shrink the graph: before=%d after=%d", before, after)
	}
	if int(newTip) != after-1 {
		t.Fatalf("tip should renumber to the last surviving index: got %d, want %d", newTip, after-1)
	}

	g.Init(0)
	got := g.Next(fakeTrace{})
	root, err := field.Root(16)
	if err != nil {
		t.Fatalf("Root(16): %v", err)
	}
	want := evalDirect(field.NewFromUint64(3), root, 0)
	if !got.Equal(want) {
		t.Fatalf("tree-shaken graph evaluates row 0 to %v, want %v", got, want)
	}
}

func TestNonMultipleOfChunkSizeStartPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("Init(1) should panic: 1 is not a multiple of ChunkSize")
		}
	}()
	g := NewGraph(field.One, 16, 1)
	g.Insert(X())
	g.Init(1)
}

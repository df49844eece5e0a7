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

// Package dag implements the evaluation graph for algebraic expressions
// over a coset of the trace domain: build a graph from a rational
// expression, materialize periodic sub-expressions into lookup tables,
// tree-shake unreachable nodes, and stream evaluations 16 rows at a
// time.
//
// Nodes are deduplicated by an algebraic hash: each operation is
// evaluated in the field at a random seed point, and two nodes that
// agree there are treated as identical rational functions (Schwartz-
// Zippel). Hash equality is a probabilistic argument, not a proof of
// byte-identical structure; it is sound enough to dedupe and simplify
// but should never be read as more than that.
package dag

import (
	"encoding/binary"
	"fmt"

	"github.com/starkcore/stcore/field"
	"github.com/starkcore/stcore/hash"
	"github.com/starkcore/stcore/polynomial"
	"github.com/starkcore/stcore/u256"
)

// ChunkSize is the width of the streaming evaluator's buffer: Next
// refreshes every node's values in batches of this many rows.
const ChunkSize = 16

// LookupSize is the largest period LookupTables will materialize into a
// table; larger periodic sub-expressions are left as-is to bound lookup
// memory use for large proofs.
const LookupSize = 1024

// Index references a node in a Graph's arena by position. Indices are
// causal: an operation's operands always have a strictly smaller index
// than the operation itself, so no back-pointers or cycles are possible.
type Index int

type opKind int

const (
	opCoset opKind = iota
	opTrace
	opAdd
	opNeg
	opMul
	opInv
	opExp
	opPoly
	opLookup
)

// operation is the tagged union of algebraic operations a Node can
// hold, Go's stand-in for the source's Operation enum. Only the
// fields relevant to kind are meaningful.
type operation struct {
	kind opKind

	cosetC field.Element
	cosetS int

	traceCol int
	traceOff int

	a, b Index
	exp  uint64
	poly polynomial.Dense

	lookup []field.Element
}

func opCosetOf(c field.Element, s int) operation { return operation{kind: opCoset, cosetC: c, cosetS: s} }
func opTraceOf(col, off int) operation           { return operation{kind: opTrace, traceCol: col, traceOff: off} }
func opAddOf(a, b Index) operation               { return operation{kind: opAdd, a: a, b: b} }
func opNegOf(a Index) operation                  { return operation{kind: opNeg, a: a} }
func opMulOf(a, b Index) operation               { return operation{kind: opMul, a: a, b: b} }
func opInvOf(a Index) operation                  { return operation{kind: opInv, a: a} }
func opExpOf(a Index, e uint64) operation        { return operation{kind: opExp, a: a, exp: e} }
func opPolyOf(p polynomial.Dense, a Index) operation {
	return operation{kind: opPoly, poly: p, a: a}
}
func opLookupOf(table []field.Element) operation { return operation{kind: opLookup, lookup: table} }

// Node is one entry in a Graph's arena: the operation it computes, the
// algebraic hash used for deduplication, the period after which its
// values repeat, and the streaming evaluator's per-node scratch space
// (note and a chunk of buffered values).
type Node struct {
	op     operation
	hash   field.Element
	period int
	note   field.Element
	values [ChunkSize]field.Element
}

// Period returns the node's period.
func (n Node) Period() int { return n.period }

// TraceTable is the external collaborator a Trace operation reads from.
// Row indices are taken modulo NumRows before indexing; callers supply
// a table whose row/column semantics match the expressions built
// against it.
type TraceTable interface {
	NumRows() int
	At(row, col int) field.Element
}

// Graph is an evaluation graph for algebraic expressions over a coset
// of size cosetSize with cofactor cofactor, derived from a trace
// blown up by traceBlowup relative to the coset.
type Graph struct {
	cofactor    field.Element
	cosetSize   int
	traceBlowup int
	seed        field.Element

	nodes     []Node
	hashIndex map[field.Element]Index

	row int
}

// NewGraph builds an empty graph over the given coset. cosetSize must
// be a power of two; this is a construction precondition, not
// untrusted input, so violating it panics rather than returning an
// error (matching the field/FFT/DAG layers' error policy).
func NewGraph(cofactor field.Element, cosetSize, traceBlowup int) *Graph {
	if cosetSize <= 0 || cosetSize&(cosetSize-1) != 0 {
		panic(fmt.Sprintf("dag: coset size must be a power of two, got %d", cosetSize))
	}
	cofactorBytes := cofactor.AsMontgomery().ToBytesBE()
	var sizeBytes [8]byte
	binary.BigEndian.PutUint64(sizeBytes[:], uint64(cosetSize))
	digest := hash.Keccak256(cofactorBytes[:], sizeBytes[:])
	digest[0] &= 0x07 // clear the top five bits so the value is below p (p > 2^251)
	seed := field.FromMontgomeryRaw(u256.FromBytesBE(digest[:]))

	return &Graph{
		cofactor:    cofactor,
		cosetSize:   cosetSize,
		traceBlowup: traceBlowup,
		seed:        seed,
		hashIndex:   make(map[field.Element]Index),
	}
}

// Len returns the number of nodes currently in the graph.
func (g *Graph) Len() int { return len(g.nodes) }

// Node returns the node at index i, for inspection (tests, debug
// dumps).
func (g *Graph) Node(i Index) Node { return g.nodes[i] }

// hash computes operation's algebraic hash: its value when every
// operand is replaced by that operand's own hash, i.e. a symbolic
// evaluation at the graph's random seed point.
func (g *Graph) hash(op operation) field.Element {
	switch op.kind {
	case opTrace:
		var colBytes, offBytes [8]byte
		binary.BigEndian.PutUint64(colBytes[:], uint64(op.traceCol))
		binary.BigEndian.PutUint64(offBytes[:], uint64(int64(op.traceOff)))
		seedBytes := g.seed.AsMontgomery().ToBytesBE()
		digest := hash.Keccak256(seedBytes[:], colBytes[:], offBytes[:])
		digest[0] &= 0x07 // clear the top five bits so the value is below p
		return field.FromMontgomeryRaw(u256.FromBytesBE(digest[:]))
	case opAdd:
		return g.nodes[op.a].hash.Add(g.nodes[op.b].hash)
	case opNeg:
		return g.nodes[op.a].hash.Neg()
	case opMul:
		return g.nodes[op.a].hash.Mul(g.nodes[op.b].hash)
	case opInv:
		v, err := g.nodes[op.a].hash.Inv()
		if err != nil {
			panic("dag: division by zero while algebraically hashing Inv")
		}
		return v
	case opExp:
		return g.nodes[op.a].hash.Pow(op.exp)
	case opPoly:
		return op.poly.Evaluate(g.nodes[op.a].hash)
	case opCoset:
		if g.cosetSize%op.cosetS != 0 {
			panic("dag: coset period does not divide the evaluation domain size")
		}
		exponent := uint64(g.cosetSize / op.cosetS)
		t, err := g.seed.Div(g.cofactor)
		if err != nil {
			panic("dag: zero cofactor")
		}
		t = t.Pow(exponent)
		return t.Mul(op.cosetC)
	case opLookup:
		panic("dag: hash(Lookup) is not implemented, Lookup replaces an already-hashed node")
	default:
		panic("dag: unknown operation kind")
	}
}

// simplify rewrites operation into an equivalent, smaller operation
// when its operands are Coset nodes whose combination is itself a
// Coset. The hash check in insert already proves these rewrites sound
// (0+a=a, a-a=0, and so on fall out of hash equality, not of these
// rules); simplify only catches the cases hash equality alone can't
// collapse to an existing node.
func (g *Graph) simplify(op operation) operation {
	switch op.kind {
	case opAdd:
		na, nb := g.nodes[op.a].op, g.nodes[op.b].op
		if na.kind == opCoset && nb.kind == opCoset && na.cosetS == nb.cosetS {
			return opCosetOf(na.cosetC.Add(nb.cosetC), na.cosetS)
		}
		return op
	case opNeg:
		na := g.nodes[op.a].op
		if na.kind == opCoset {
			return opCosetOf(na.cosetC.Neg(), na.cosetS)
		}
		return op
	case opMul:
		na, nb := g.nodes[op.a].op, g.nodes[op.b].op
		if na.kind == opCoset && na.cosetS == 1 && nb.kind == opCoset {
			return opCosetOf(na.cosetC.Mul(nb.cosetC), nb.cosetS)
		}
		if nb.kind == opCoset && nb.cosetS == 1 && na.kind == opCoset {
			return opCosetOf(nb.cosetC.Mul(na.cosetC), na.cosetS)
		}
		if na.kind == opCoset && nb.kind == opCoset && na.cosetS == nb.cosetS {
			return opCosetOf(na.cosetC.Mul(nb.cosetC), na.cosetS/2)
		}
		return op
	case opExp:
		na := g.nodes[op.a].op
		if na.kind == opCoset {
			if na.cosetS == 1 {
				return opCosetOf(na.cosetC.Pow(op.exp), 1)
			}
			if op.exp != 0 && na.cosetS%int(op.exp) == 0 {
				return opCosetOf(na.cosetC.Pow(op.exp), na.cosetS/int(op.exp))
			}
		}
		return op
	case opInv:
		na := g.nodes[op.a].op
		if na.kind == opCoset && na.cosetS == 1 {
			inv, err := na.cosetC.Inv()
			if err != nil {
				panic("dag: division by zero while simplifying Inv")
			}
			return opCosetOf(inv, 1)
		}
		return op
	case opPoly:
		na := g.nodes[op.a].op
		if na.kind == opCoset && na.cosetS == 1 {
			return opCosetOf(op.poly.Evaluate(na.cosetC), 1)
		}
		return op
	default:
		return op
	}
}

// lcmAsMax stands in for lcm, valid only when every period in play is a
// power of two (true throughout this package's own construction, since
// every period traces back to a power-of-two coset size). See the
// open-question note in DESIGN.md: a non-power-of-two period would
// silently miscompute here.
func lcmAsMax(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func (g *Graph) period(op operation) int {
	switch op.kind {
	case opCoset:
		return op.cosetS
	case opTrace:
		return g.cosetSize
	case opAdd, opMul:
		return lcmAsMax(g.nodes[op.a].period, g.nodes[op.b].period)
	case opNeg, opInv, opExp, opPoly:
		return g.nodes[op.a].period
	case opLookup:
		return len(op.lookup)
	default:
		panic("dag: unknown operation kind")
	}
}

// insert computes operation's hash, returns the existing node's index
// if an algebraically identical node is already present, and otherwise
// simplifies, appends, and returns the new node's index.
func (g *Graph) insert(op operation) Index {
	h := g.hash(op)
	if idx, ok := g.hashIndex[h]; ok {
		return idx
	}

	final := op
	switch {
	case h.Equal(field.Zero):
		final = opCosetOf(field.Zero, 1)
	case h.Equal(field.One):
		final = opCosetOf(field.One, 1)
	default:
		final = g.simplify(op)
	}

	idx := Index(len(g.nodes))
	g.nodes = append(g.nodes, Node{op: final, hash: h, period: g.period(final)})
	g.hashIndex[h] = idx
	return idx
}

// Insert recursively translates expr into graph operations, returning
// the result node's index.
func (g *Graph) Insert(expr *Expression) Index {
	switch expr.Kind {
	case ExprX:
		return g.insert(opCosetOf(g.cofactor, g.cosetSize))
	case ExprConstant:
		return g.insert(opCosetOf(expr.Constant, 1))
	case ExprTrace:
		return g.insert(opTraceOf(expr.Col, expr.Off))
	case ExprPoly:
		a := g.Insert(expr.A)
		return g.insert(opPolyOf(expr.Poly, a))
	case ExprAdd:
		a := g.Insert(expr.A)
		b := g.Insert(expr.B)
		return g.insert(opAddOf(a, b))
	case ExprNeg:
		a := g.Insert(expr.A)
		return g.insert(opNegOf(a))
	case ExprMul:
		a := g.Insert(expr.A)
		b := g.Insert(expr.B)
		return g.insert(opMulOf(a, b))
	case ExprInv:
		a := g.Insert(expr.A)
		return g.insert(opInvOf(a))
	case ExprExp:
		a := g.Insert(expr.A)
		return g.insert(opExpOf(a, expr.Exponent))
	default:
		panic("dag: unknown expression kind")
	}
}

// clone makes an independent copy of g, suitable for a sub-evaluator
// (makeLookup) that tree-shakes and streams without disturbing g's own
// state.
func (g *Graph) clone() *Graph {
	nodes := make([]Node, len(g.nodes))
	copy(nodes, g.nodes)
	hashIndex := make(map[field.Element]Index, len(g.hashIndex))
	for k, v := range g.hashIndex {
		hashIndex[k] = v
	}
	return &Graph{
		cofactor:    g.cofactor,
		cosetSize:   g.cosetSize,
		traceBlowup: g.traceBlowup,
		seed:        g.seed,
		nodes:       nodes,
		hashIndex:   hashIndex,
	}
}

// emptyTraceTable stands in for the trace table when evaluating a
// lookup table's subgraph, which must not reference Trace; the
// heuristic in LookupTables only skips Coset nodes, not nodes that
// happen to depend on the trace, so a subgraph that does reach a Trace
// node panics here with a clear message instead of silently reading
// nonsense.
type emptyTraceTable struct{}

func (emptyTraceTable) NumRows() int { return 1 }
func (emptyTraceTable) At(int, int) field.Element {
	panic("dag: lookup table subgraph must not depend on Trace")
}

// makeLookup evaluates the subgraph rooted at index over its full
// period, on an independent tree-shaken clone, and returns the
// resulting period-length table.
func (g *Graph) makeLookup(index Index) []field.Element {
	node := g.nodes[index]
	if node.period > LookupSize {
		panic("dag: lookup table exceeds LookupSize")
	}
	sub := g.clone()
	sub.TreeShake(index)
	sub.Init(0)
	table := make([]field.Element, node.period)
	for i := range table {
		table[i] = sub.Next(emptyTraceTable{})
	}
	return table
}

// LookupTables materializes every node whose period is at most
// min(LookupSize, cosetSize/4), and which is not already a Coset,
// whose values are computed directly with no benefit from a table,
// into a Lookup node holding its period-length value table. Call once
// after the graph is fully built.
func (g *Graph) LookupTables() {
	threshold := LookupSize
	if quarter := g.cosetSize / 4; quarter < threshold {
		threshold = quarter
	}
	for i := range g.nodes {
		node := g.nodes[i]
		if node.period > threshold {
			continue
		}
		if node.op.kind == opCoset {
			continue
		}
		table := g.makeLookup(Index(i))
		g.nodes[i].op = opLookupOf(table)
	}
}

// TreeShake drops every node not reachable from tip by following
// operand references, renumbers the survivors densely while preserving
// their relative order (so causal order is preserved), rewrites every
// remaining operand reference through the renumbering, and returns
// tip's new index.
func (g *Graph) TreeShake(tip Index) Index {
	used := make([]bool, len(g.nodes))
	var mark func(i int)
	mark = func(i int) {
		if used[i] {
			return
		}
		used[i] = true
		switch op := g.nodes[i].op; op.kind {
		case opAdd, opMul:
			mark(int(op.a))
			mark(int(op.b))
		case opNeg, opInv, opExp, opPoly:
			mark(int(op.a))
		}
	}
	mark(int(tip))

	numbers := make([]Index, len(g.nodes))
	counter := 0
	for i := range g.nodes {
		if used[i] {
			numbers[i] = Index(counter)
			counter++
		}
	}
	for i := range g.nodes {
		switch g.nodes[i].op.kind {
		case opAdd, opMul:
			g.nodes[i].op.a = numbers[g.nodes[i].op.a]
			g.nodes[i].op.b = numbers[g.nodes[i].op.b]
		case opNeg, opInv, opExp, opPoly:
			g.nodes[i].op.a = numbers[g.nodes[i].op.a]
		}
	}

	newNodes := make([]Node, 0, counter)
	for i := range g.nodes {
		if used[i] {
			newNodes = append(newNodes, g.nodes[i])
		}
	}
	g.nodes = newNodes

	g.hashIndex = make(map[field.Element]Index, len(g.nodes))
	for i, n := range g.nodes {
		g.hashIndex[n.hash] = Index(i)
	}

	return numbers[tip]
}

// Init seeds every node's value buffer for the chunk starting at
// start, which must be a multiple of ChunkSize.
func (g *Graph) Init(start int) {
	if start%ChunkSize != 0 {
		panic("dag: start row must be a multiple of ChunkSize")
	}
	g.row = start
	for i := range g.nodes {
		node := &g.nodes[i]
		switch node.op.kind {
		case opCoset:
			root, err := field.Root(uint64(node.op.cosetS))
			if err != nil {
				panic(err)
			}
			acc := node.op.cosetC.Mul(root.Pow(uint64(g.row)))
			for j := 0; j < ChunkSize; j++ {
				node.values[j] = acc
				acc = acc.Mul(root)
			}
			if node.op.cosetS > ChunkSize {
				note := root.Pow(uint64(ChunkSize))
				node.note = note
				inv, err := note.Inv()
				if err != nil {
					panic(err)
				}
				for j := 0; j < ChunkSize; j++ {
					node.values[j] = node.values[j].Mul(inv)
				}
			}
		case opLookup:
			if len(node.op.lookup) <= ChunkSize {
				if ChunkSize%len(node.op.lookup) != 0 {
					panic("dag: lookup table length must divide ChunkSize")
				}
				for j := 0; j < ChunkSize; j++ {
					node.values[j] = node.op.lookup[(g.row+j)%len(node.op.lookup)]
				}
			}
		}
	}
}

// Next returns the tip (last) node's value for the current row and
// advances row by one, refreshing every node's chunk buffer whenever
// row crosses a ChunkSize boundary.
func (g *Graph) Next(trace TraceTable) field.Element {
	if g.row%ChunkSize != 0 {
		result := g.nodes[len(g.nodes)-1].values[g.row%ChunkSize]
		g.row++
		return result
	}

	numRows := trace.NumRows()
	for i := range g.nodes {
		node := &g.nodes[i]
		switch node.op.kind {
		case opTrace:
			for j := 0; j < ChunkSize; j++ {
				row := g.row + j
				rowIdx := (numRows + row + g.traceBlowup*node.op.traceOff) % numRows
				node.values[j] = trace.At(rowIdx, node.op.traceCol)
			}
		case opAdd:
			a := g.nodes[node.op.a].values
			b := g.nodes[node.op.b].values
			for j := 0; j < ChunkSize; j++ {
				node.values[j] = a[j].Add(b[j])
			}
		case opNeg:
			a := g.nodes[node.op.a].values
			for j := 0; j < ChunkSize; j++ {
				node.values[j] = a[j].Neg()
			}
		case opMul:
			a := g.nodes[node.op.a].values
			b := g.nodes[node.op.b].values
			for j := 0; j < ChunkSize; j++ {
				node.values[j] = a[j].Mul(b[j])
			}
		case opInv:
			a := g.nodes[node.op.a].values
			field.BatchInvertSrcDst(a[:], node.values[:])
		case opExp:
			a := g.nodes[node.op.a].values
			for j := 0; j < ChunkSize; j++ {
				node.values[j] = a[j].Pow(node.op.exp)
			}
		case opPoly:
			a := g.nodes[node.op.a].values
			for j := 0; j < ChunkSize; j++ {
				node.values[j] = node.op.poly.Evaluate(a[j])
			}
		case opCoset:
			if node.op.cosetS > ChunkSize {
				for j := 0; j < ChunkSize; j++ {
					node.values[j] = node.values[j].Mul(node.note)
				}
			}
		case opLookup:
			if len(node.op.lookup) > ChunkSize {
				for j := 0; j < ChunkSize; j++ {
					node.values[j] = node.op.lookup[(g.row+j)%len(node.op.lookup)]
				}
			}
		}
	}
	g.row++
	return g.nodes[len(g.nodes)-1].values[0]
}

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
	"github.com/starkcore/stcore/field"
	"github.com/starkcore/stcore/polynomial"
)

// ExpressionKind distinguishes the variants of Expression, a tagged-union
// stand-in for an AST the source represents as a Rust enum.
type ExpressionKind int

const (
	ExprX ExpressionKind = iota
	ExprConstant
	ExprTrace
	ExprPoly
	ExprAdd
	ExprNeg
	ExprMul
	ExprInv
	ExprExp
)

// Expression is a rational-function AST over the trace: the DAG's
// front end. Graph.Insert translates an Expression tree into graph
// nodes, deduplicating and simplifying algebraically equal
// subexpressions along the way.
type Expression struct {
	Kind ExpressionKind

	Constant field.Element // ExprConstant
	Col, Off int           // ExprTrace
	Poly     polynomial.Dense
	A, B     *Expression // operands; B unused for unary kinds
	Exponent uint64       // ExprExp
}

// X is the trace's evaluation variable.
func X() *Expression { return &Expression{Kind: ExprX} }

// Constant wraps a fixed field value.
func Constant(c field.Element) *Expression { return &Expression{Kind: ExprConstant, Constant: c} }

// Trace references column col at row offset off relative to the current
// row.
func Trace(col, off int) *Expression { return &Expression{Kind: ExprTrace, Col: col, Off: off} }

// Poly evaluates p at a.
func Poly(p polynomial.Dense, a *Expression) *Expression {
	return &Expression{Kind: ExprPoly, Poly: p, A: a}
}

// Add returns a+b.
func Add(a, b *Expression) *Expression { return &Expression{Kind: ExprAdd, A: a, B: b} }

// Neg returns -a.
func Neg(a *Expression) *Expression { return &Expression{Kind: ExprNeg, A: a} }

// Mul returns a*b.
func Mul(a, b *Expression) *Expression { return &Expression{Kind: ExprMul, A: a, B: b} }

// Inv returns 1/a.
func Inv(a *Expression) *Expression { return &Expression{Kind: ExprInv, A: a} }

// Exp returns a^e.
func Exp(a *Expression, e uint64) *Expression { return &Expression{Kind: ExprExp, A: a, Exponent: e} }

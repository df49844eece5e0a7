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

// Package constraint describes the polynomial constraints a proof must
// satisfy: each one names a rational expression over the trace, a
// numerator/denominator pair of vanishing polynomials, and the shape of
// the polynomial its base evaluates to once trace columns are plugged
// in. The shapes are enumerated as a closed set rather than stored as
// an opaque evaluator function, since the set of constraint kinds a
// prover supports is fixed at compile time.
package constraint

import (
	"fmt"

	"github.com/starkcore/stcore/dag"
	"github.com/starkcore/stcore/field"
	"github.com/starkcore/stcore/polynomial"
)

// Kind enumerates the constraint shapes this package knows how to turn
// into a base polynomial.
type Kind int

const (
	// Boundary asserts that a trace column takes a fixed value; its
	// base polynomial is the column itself (the rational expression's
	// denominator supplies the (x - point) vanishing factor).
	Boundary Kind = iota
	// Transition asserts a relation between a trace column at the
	// current row and the same column shifted by Shift rows; its base
	// polynomial is column(x) - column(shifted x).
	Transition
	// Periodic asserts a relation against a fixed period-length table
	// of expected values, used for repeating constants baked into the
	// trace (round constants, selector columns); its base polynomial
	// is column(x) minus the interpolation of Values over the column's
	// domain.
	Periodic
)

func (k Kind) String() string {
	switch k {
	case Boundary:
		return "Boundary"
	case Transition:
		return "Transition"
	case Periodic:
		return "Periodic"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Constraint names one condition a valid trace must satisfy: a
// rational expression over the trace (the condition, used to build a
// dag.Graph node for out-of-domain evaluation), a numerator/denominator
// pair of vanishing polynomials bounding where the condition must hold,
// and enough per-kind metadata (Column, Shift, Point, Values) to derive
// the base polynomial from a trace's interpolated columns.
//
// Denominator and Numerator stand in for the source's sparse
// polynomials: both vanishing factors used here are a handful of
// monomials (x^n - 1, x - point), so a Dense polynomial is as compact
// and does not need a separate sparse representation.
type Constraint struct {
	Kind Kind
	Expr *dag.Expression

	Column    int
	Shift     int
	Point     field.Element
	Boundary  field.Element
	Generator field.Element // Transition: the domain's row-to-row step
	Values    []field.Element

	Denominator polynomial.Dense
	Numerator   polynomial.Dense
}

// NewBoundary builds a constraint asserting trace column col equals
// value at the row whose trace-domain x-coordinate is point.
func NewBoundary(col int, point, value field.Element, denominator, numerator polynomial.Dense) Constraint {
	return Constraint{
		Kind:        Boundary,
		Expr:        dag.Add(dag.Trace(col, 0), dag.Neg(dag.Constant(value))),
		Column:      col,
		Point:       point,
		Boundary:    value,
		Denominator: denominator,
		Numerator:   numerator,
	}
}

// NewTransition builds a constraint asserting trace column col equals
// its own value shift rows later, where generator is the multiplicative
// step from one row's x-coordinate to the next.
func NewTransition(col, shift int, generator field.Element, denominator, numerator polynomial.Dense) Constraint {
	return Constraint{
		Kind:        Transition,
		Expr:        dag.Add(dag.Trace(col, 0), dag.Neg(dag.Trace(col, shift))),
		Column:      col,
		Shift:       shift,
		Generator:   generator,
		Denominator: denominator,
		Numerator:   numerator,
	}
}

// NewPeriodic builds a constraint asserting trace column col equals a
// repeating table of values, one per row of the column's period.
func NewPeriodic(col int, values []field.Element, denominator, numerator polynomial.Dense) Constraint {
	return Constraint{
		Kind:        Periodic,
		Expr:        dag.Trace(col, 0),
		Column:      col,
		Values:      append([]field.Element(nil), values...),
		Denominator: denominator,
		Numerator:   numerator,
	}
}

// Base evaluates the constraint's base polynomial, the numerator of
// the constraint's rational function before the Numerator/Denominator
// vanishing factors are applied, against a trace's interpolated
// column polynomials.
func (c Constraint) Base(trace []polynomial.Dense) polynomial.Dense {
	switch c.Kind {
	case Boundary:
		return trace[c.Column].Add(polynomial.NewDense([]field.Element{c.Boundary.Neg()}))
	case Transition:
		shifted := shiftPoly(trace[c.Column], c.Generator.Pow(uint64(c.Shift)))
		return trace[c.Column].Add(shifted.Scale(field.NewFromUint64(1).Neg()))
	case Periodic:
		return trace[c.Column].Add(interpolatePeriodic(c.Values).Scale(field.NewFromUint64(1).Neg()))
	default:
		panic("constraint: unknown kind")
	}
}

// shiftPoly returns the polynomial q with q(x) = p(generator*x): each
// coefficient p.Coefficients[k] is scaled by generator^k. Transition
// passes generator already raised to the constraint's row Shift, so a
// shift of s rows corresponds to sampling p at (domain generator)^s * x.
func shiftPoly(p polynomial.Dense, generator field.Element) polynomial.Dense {
	out := make([]field.Element, len(p.Coefficients))
	power := field.One
	for k, c := range p.Coefficients {
		out[k] = c.Mul(power)
		power = power.Mul(generator)
	}
	return polynomial.NewDense(out)
}

// interpolatePeriodic returns the unique polynomial of degree < len(values)
// that takes values[i] at the i-th len(values)-th root of unity, via the
// direct inverse-DFT sum. len(values) must be a power of two (Periodic
// constraints are built from period-length tables, and periods are
// themselves powers of two per the DAG's period invariant).
func interpolatePeriodic(values []field.Element) polynomial.Dense {
	n := len(values)
	if n == 0 {
		return polynomial.Dense{}
	}
	root, err := field.Root(uint64(n))
	if err != nil {
		panic("constraint: interpolatePeriodic: " + err.Error())
	}
	rootInv, err := root.Inv()
	if err != nil {
		panic("constraint: interpolatePeriodic: " + err.Error())
	}
	nInv, err := field.NewFromUint64(uint64(n)).Inv()
	if err != nil {
		panic("constraint: interpolatePeriodic: " + err.Error())
	}

	coeffs := make([]field.Element, n)
	for k := 0; k < n; k++ {
		acc := field.Zero
		power := field.One
		step := rootInv.Pow(uint64(k))
		for i := 0; i < n; i++ {
			acc = acc.Add(values[i].Mul(power))
			power = power.Mul(step)
		}
		coeffs[k] = acc.Mul(nInv)
	}
	return polynomial.NewDense(coeffs)
}

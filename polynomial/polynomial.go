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

// Package polynomial implements dense univariate polynomials over package
// field's prime field, the small piece the algebraic DAG's Poly node and
// the constraint package's constraint polynomials are built on.
package polynomial

import "github.com/starkcore/stcore/field"

// Dense is a polynomial stored as its coefficients in ascending order of
// degree: Coefficients[0] is the constant term.
type Dense struct {
	Coefficients []field.Element
}

// NewDense builds a Dense polynomial from coefficients, lowest degree
// first. The slice is not copied; callers should not mutate it afterward.
func NewDense(coefficients []field.Element) Dense {
	return Dense{Coefficients: coefficients}
}

// Degree returns the polynomial's degree, or -1 for the zero polynomial.
func (p Dense) Degree() int {
	for i := len(p.Coefficients) - 1; i >= 0; i-- {
		if !p.Coefficients[i].IsZero() {
			return i
		}
	}
	return -1
}

// Evaluate computes p(x) via Horner's method.
func (p Dense) Evaluate(x field.Element) field.Element {
	if len(p.Coefficients) == 0 {
		return field.Zero
	}
	result := p.Coefficients[len(p.Coefficients)-1]
	for i := len(p.Coefficients) - 2; i >= 0; i-- {
		result = result.Mul(x).Add(p.Coefficients[i])
	}
	return result
}

// Add returns p+q, coefficient-wise, padding the shorter operand with
// zeros.
func (p Dense) Add(q Dense) Dense {
	n := len(p.Coefficients)
	if len(q.Coefficients) > n {
		n = len(q.Coefficients)
	}
	out := make([]field.Element, n)
	for i := 0; i < n; i++ {
		var a, b field.Element
		if i < len(p.Coefficients) {
			a = p.Coefficients[i]
		}
		if i < len(q.Coefficients) {
			b = q.Coefficients[i]
		}
		out[i] = a.Add(b)
	}
	return Dense{Coefficients: out}
}

// Mul returns the schoolbook product p*q.
func (p Dense) Mul(q Dense) Dense {
	if len(p.Coefficients) == 0 || len(q.Coefficients) == 0 {
		return Dense{}
	}
	out := make([]field.Element, len(p.Coefficients)+len(q.Coefficients)-1)
	for i, a := range p.Coefficients {
		if a.IsZero() {
			continue
		}
		for j, b := range q.Coefficients {
			out[i+j] = out[i+j].Add(a.Mul(b))
		}
	}
	return Dense{Coefficients: out}
}

// Scale returns p with every coefficient multiplied by c.
func (p Dense) Scale(c field.Element) Dense {
	out := make([]field.Element, len(p.Coefficients))
	for i, a := range p.Coefficients {
		out[i] = a.Mul(c)
	}
	return Dense{Coefficients: out}
}

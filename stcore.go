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

// Package stcore is top-level glue over the prover/verifier core: field
// arithmetic (u256, montgomery, field), transform (fft), commitment
// (merkle), expression evaluation (dag, constraint), challenge (pow) and
// transcript. It holds no logic of its own, only re-exports of the types
// a caller assembling a prover needs most often, so that simple callers
// can depend on package stcore alone instead of reaching into every leaf
// package by hand.
package stcore

import (
	"github.com/starkcore/stcore/dag"
	"github.com/starkcore/stcore/field"
	"github.com/starkcore/stcore/merkle"
	"github.com/starkcore/stcore/pow"
	"github.com/starkcore/stcore/transcript"
	"github.com/starkcore/stcore/u256"
)

// Re-exported core types. See the named package for documentation.
type (
	U256       = u256.U256
	Element    = field.Element
	Graph      = dag.Graph
	Hash       = merkle.Hash
	Commitment = merkle.Commitment
	Challenge  = pow.Challenge
	Transcript = transcript.Transcript
)

// NewTranscript returns an empty Fiat-Shamir transcript.
func NewTranscript() *Transcript { return transcript.New() }

// NewGraph returns an empty algebraic DAG over the given coset.
func NewGraph(cofactor Element, cosetSize, traceBlowup int) *Graph {
	return dag.NewGraph(cofactor, cosetSize, traceBlowup)
}

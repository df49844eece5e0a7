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

package main

import (
	"crypto/rand"
	"fmt"
	"os"
	"runtime/pprof"
	"time"

	"github.com/starkcore/stcore/dag"
	"github.com/starkcore/stcore/fft"
	"github.com/starkcore/stcore/field"
	"github.com/starkcore/stcore/hash"
	"github.com/starkcore/stcore/merkle"
	"github.com/starkcore/stcore/pow"
)

func main() {
	f, _ := os.Create("cpu.prof")
	g, _ := os.Create("mem.prof")
	_ = pprof.StartCPUProfile(f)
	defer pprof.StopCPUProfile()
	defer func() { _ = pprof.WriteHeapProfile(g) }()

	benchmarkFFT()
	benchmarkMerkle()
	benchmarkDAG()
	benchmarkProofOfWork()
}

func benchmarkFFT() {
	const logSize = 16
	size := 1 << logSize

	values := make([]field.Element, size)
	for i := range values {
		values[i] = field.NewFromUint64(uint64(i))
	}

	for round := 0; round < 5; round++ {
		buf := append([]field.Element(nil), values...)
		start := time.Now()
		if err := fft.Transform(buf); err != nil {
			panic(err)
		}
		elapsed := time.Since(start)
		fmt.Printf("Took %v to transform %d points\n", elapsed, size)
	}
}

// rawLeaves is a LeafContainer over raw 32-byte values, used only to
// exercise Build/Open at benchmark scale; LeafHash hashes the raw value
// on every call, since the leaf value itself already is its hash input.
type rawLeaves [][32]byte

func (r rawLeaves) Len() int                    { return len(r) }
func (r rawLeaves) Leaf(offset int) [32]byte    { return r[offset] }
func (r rawLeaves) LeafHash(offset int) merkle.Hash {
	return hash.Keccak256(r[offset][:])
}

func benchmarkMerkle() {
	const n = 1 << 16
	leaves := make(rawLeaves, n)
	for i := range leaves {
		if _, err := rand.Read(leaves[i][:]); err != nil {
			panic(err)
		}
	}

	for round := 0; round < 5; round++ {
		start := time.Now()
		tree, err := merkle.Build[[32]byte](leaves, nil)
		if err != nil {
			panic(err)
		}
		elapsed := time.Since(start)
		fmt.Printf("Took %v to build a %d-leaf Merkle tree (root %x)\n", elapsed, n, tree.Commitment().Root)
	}
}

func benchmarkDAG() {
	const cosetSize = 1 << 10
	cofactor := field.NewFromUint64(3)
	expr := dag.Add(dag.Exp(dag.X(), 5), dag.Constant(field.NewFromUint64(5)))

	start := time.Now()
	g := dag.NewGraph(cofactor, cosetSize, 1)
	g.Insert(expr)
	g.LookupTables()
	g.Init(0)
	var sum field.Element
	for row := 0; row < cosetSize; row++ {
		sum = sum.Add(g.Next(emptyTrace{}))
	}
	elapsed := time.Since(start)
	fmt.Printf("Took %v to evaluate a %d-row DAG (checksum %v)\n", elapsed, cosetSize, sum)
}

type emptyTrace struct{}

func (emptyTrace) NumRows() int { return 0 }
func (emptyTrace) At(int, int) field.Element {
	panic("stcorebench: benchmarkDAG's expression must not reference Trace")
}

func benchmarkProofOfWork() {
	var seed pow.ChallengeSeed
	if _, err := rand.Read(seed[:]); err != nil {
		panic(err)
	}
	for _, difficulty := range []int{8, 16, 20} {
		challenge := seed.WithDifficulty(difficulty)
		start := time.Now()
		response := challenge.Solve()
		elapsed := time.Since(start)
		if err := challenge.Verify(response); err != nil {
			panic(err)
		}
		fmt.Printf("Took %v to solve difficulty %d (nonce %d)\n", elapsed, difficulty, response.Nonce)
	}
}

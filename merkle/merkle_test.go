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

package merkle

import (
	"math/big"
	"testing"
	"testing/quick"

	"github.com/davecgh/go-spew/spew"

	"github.com/starkcore/stcore/hash"
	"github.com/starkcore/stcore/u256"
)

// cubedLeaves is a LeafContainer of size leaves, leaf i = (i+10)^3 encoded
// as a big-endian U256, hashed by Keccak-256 truncated to the first 20
// bytes and zero-padded back to 32.
type cubedLeaves struct {
	size int
}

func (c cubedLeaves) Len() int { return c.size }

func (c cubedLeaves) Leaf(offset int) u256.U256 {
	v := new(big.Int).Exp(big.NewInt(int64(offset+10)), big.NewInt(3), nil)
	var b [32]byte
	v.FillBytes(b[:])
	return u256.FromBytesBE(b[:])
}

func (c cubedLeaves) LeafHash(offset int) hash.Digest {
	bytesBE := c.Leaf(offset).ToBytesBE()
	full := hash.Keccak256(bytesBE[:])
	var d hash.Digest
	copy(d[:20], full[:20])
	return d
}

func TestExplicitValues(t *testing.T) {
	const depth = 6
	leaves := cubedLeaves{size: 1 << depth}

	tree, err := Build[u256.U256](leaves, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	indices := []int{1, 11, 14}
	size, err := ProofSize(tree.Commitment().Size, indices)
	if err != nil {
		t.Fatalf("ProofSize: %v", err)
	}
	if size != 9 {
		t.Fatalf("proof_size = %d, want 9", size)
	}

	proof, err := tree.Open(indices)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if len(proof.Hashes) != 9 {
		t.Fatalf("len(proof.Hashes) = %d, want 9: %s", len(proof.Hashes), spew.Sdump(proof))
	}

	claims := make([]struct {
		Index int
		Hash  hash.Digest
	}, len(indices))
	for i, idx := range indices {
		claims[i] = struct {
			Index int
			Hash  hash.Digest
		}{Index: idx, Hash: leaves.LeafHash(idx)}
	}

	if err := Verify(proof, claims, nil); err != nil {
		t.Fatalf("Verify: %v", err)
	}

	badProof := &Proof{
		Commitment: Commitment{Size: tree.Commitment().Size, Root: hash.Digest{0xed}},
		Indices:    proof.Indices,
		Hashes:     proof.Hashes,
	}
	if err := Verify(badProof, claims, nil); err != ErrRootHashMismatch {
		t.Fatalf("Verify against wrong root: got %v, want ErrRootHashMismatch", err)
	}
}

func TestEmptyTree(t *testing.T) {
	leaves := cubedLeaves{size: 0}
	tree, err := Build[u256.U256](leaves, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	proof, err := tree.Open(nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	size, err := ProofSize(0, nil)
	if err != nil {
		t.Fatalf("ProofSize: %v", err)
	}
	if size != len(proof.Hashes) {
		t.Fatalf("proof_size = %d, want %d", size, len(proof.Hashes))
	}
	if err := Verify(proof, nil, nil); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

// TestSiblingMerge checks that requesting two sibling leaves together
// costs exactly one fewer proof hash than requesting either alone, and
// that the pair's proof verifies.
func TestSiblingMerge(t *testing.T) {
	const depth = 4
	leaves := cubedLeaves{size: 1 << depth}
	tree, err := Build[u256.U256](leaves, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	aloneSize, _ := ProofSize(tree.Commitment().Size, []int{2})
	siblingSize, _ := ProofSize(tree.Commitment().Size, []int{2, 3})

	if siblingSize != aloneSize-1 {
		t.Fatalf("sibling proof size = %d, want %d", siblingSize, aloneSize-1)
	}

	proof, err := tree.Open([]int{2, 3})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	claims := []struct {
		Index int
		Hash  hash.Digest
	}{
		{Index: 2, Hash: leaves.LeafHash(2)},
		{Index: 3, Hash: leaves.LeafHash(3)},
	}
	if err := Verify(proof, claims, nil); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

// TestMerkleRandom builds trees of every depth up to 8 with random index
// subsets and checks Build -> Open -> Verify succeeds, and that
// ProofSize always matches the length of the emitted proof.
func TestMerkleRandom(t *testing.T) {
	t.Parallel()

	run := func(depthSeed uint8, rawIndices []uint16) bool {
		depth := uint(depthSeed % 9)
		size := 1 << depth
		leaves := cubedLeaves{size: size}

		indices := make([]int, len(rawIndices))
		for i, v := range rawIndices {
			indices[i] = int(v) % size
		}

		tree, err := Build[u256.U256](leaves, nil)
		if err != nil {
			return false
		}

		proof, err := tree.Open(indices)
		if err != nil {
			return false
		}
		size2, err := ProofSize(tree.Commitment().Size, indices)
		if err != nil || size2 != len(proof.Hashes) {
			return false
		}

		claims := make([]struct {
			Index int
			Hash  hash.Digest
		}, len(indices))
		for i, idx := range indices {
			claims[i] = struct {
				Index int
				Hash  hash.Digest
			}{Index: idx, Hash: leaves.LeafHash(idx)}
		}
		return Verify(proof, claims, nil) == nil
	}

	if err := quick.Check(run, nil); err != nil {
		if cerr, ok := err.(*quick.CheckError); ok {
			t.Fatalf("random test iteration %d failed: %s", cerr.Count, spew.Sdump(cerr.In))
		}
		t.Fatal(err)
	}
}

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

// Package merkle implements a Merkle commitment over an abstract leaf
// container: building a tree, producing multi-index opening proofs, and
// verifying them. Layer hashing is parameterized by a Hasher; the
// package ships Keccak-256 (package hash) as the default.
package merkle

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/starkcore/stcore/hash"
)

// Hash is a 32-byte node digest.
type Hash = hash.Digest

// Hasher hashes the concatenation of two child digests into a parent
// digest: H(left ∥ right). No framing bytes are added; domain separation
// between leaf and internal hashing is the leaf container's concern.
type Hasher func(left, right Hash) Hash

// DefaultHasher is Keccak-256, the hash the reference implementation uses.
func DefaultHasher(left, right Hash) Hash {
	return hash.Keccak256(left[:], right[:])
}

// Structured errors for untrusted-input paths (construction and
// verification).
var (
	ErrNumLeavesNotPowerOfTwo = errors.New("merkle: number of leaves is not a power of two")
	ErrTreeTooLarge           = errors.New("merkle: tree exceeds maximum supported depth")
	ErrIndexOutOfRange        = errors.New("merkle: leaf index out of range")
	ErrNotEnoughHashes        = errors.New("merkle: proof does not supply enough hashes")
	ErrRootHashMismatch       = errors.New("merkle: reconstructed root does not match commitment")
	ErrDuplicateLeafMismatch  = errors.New("merkle: same index claimed with two different leaf hashes")
)

// LeafContainer is the abstract collection of leaves a tree is built over:
// anything with a length and a per-offset hash. L is the leaf's own value
// type, returned by Leaf for callers (e.g. proof verification) that need
// the actual leaf value alongside its hash.
type LeafContainer[L any] interface {
	Len() int
	Leaf(offset int) L
	LeafHash(offset int) Hash
}

// Commitment is the public, compact summary of a tree: its leaf count and
// root hash. Two trees with equal commitments are assumed (with
// negligible error probability, per H's collision resistance) to hold
// identical leaves.
type Commitment struct {
	Size int
	Root Hash
}

// Depth returns ⌈log2(Size)⌉, or 0 for the empty/size-1 commitment.
func (c Commitment) Depth() uint64 {
	d := uint64(0)
	for (1 << d) < c.Size {
		d++
	}
	return d
}

// Tree owns a built Merkle tree: its commitment, the full BFS node array,
// and the leaf container it was built from.
type Tree[L any] struct {
	commitment Commitment
	nodes      []Hash
	leaves     LeafContainer[L]
	hasher     Hasher
}

// Build constructs a Tree over leaves, hashing layer by layer from the
// leaves up to the root. leaves.Len() must be zero or a power of two, and
// no larger than 2^maxDepth; otherwise Build returns a structured error,
// since a mis-sized container comes from the untrusted caller rather than
// from a violated internal invariant.
//
// Layers are hashed one at a time; within a layer, every node depends
// only on two already-computed children, so each layer's nodes are built
// concurrently via errgroup.
func Build[L any](leaves LeafContainer[L], hasher Hasher) (*Tree[L], error) {
	if hasher == nil {
		hasher = DefaultHasher
	}
	size := leaves.Len()
	if size == 0 {
		return &Tree[L]{
			commitment: Commitment{Size: 0, Root: Hash{}},
			nodes:      nil,
			leaves:     leaves,
			hasher:     hasher,
		}, nil
	}
	if size&(size-1) != 0 {
		return nil, fmt.Errorf("%w: size %d", ErrNumLeavesNotPowerOfTwo, size)
	}
	depth := uint64(0)
	for (1 << depth) < size {
		depth++
	}
	if depth > maxDepth {
		return nil, fmt.Errorf("%w: depth %d", ErrTreeTooLarge, depth)
	}

	nodes := make([]Hash, 2*size-1)

	leafLayer := layerIndices(depth)
	if err := parallelFill(leafLayer, func(idx Index) Hash {
		return leaves.LeafHash(int(idx.Offset()))
	}, nodes); err != nil {
		return nil, err
	}

	for d := int(depth) - 1; d >= 0; d-- {
		layer := layerIndices(uint64(d))
		if err := parallelFill(layer, func(idx Index) Hash {
			left := nodes[idx.LeftChild()]
			right := nodes[idx.RightChild()]
			return hasher(left, right)
		}, nodes); err != nil {
			return nil, err
		}
	}

	return &Tree[L]{
		commitment: Commitment{Size: size, Root: nodes[0]},
		nodes:      nodes,
		leaves:     leaves,
		hasher:     hasher,
	}, nil
}

// parallelFill computes f(idx) for every idx in layer and writes the
// result into dst[idx], fanning the layer's independent work out across
// goroutines.
func parallelFill(layer []Index, f func(Index) Hash, dst []Hash) error {
	var g errgroup.Group
	for _, idx := range layer {
		idx := idx
		g.Go(func() error {
			dst[idx] = f(idx)
			return nil
		})
	}
	return g.Wait()
}

// Commitment returns the tree's public commitment.
func (t *Tree[L]) Commitment() Commitment {
	return t.commitment
}

// Leaf returns the leaf value at offset.
func (t *Tree[L]) Leaf(offset int) L {
	return t.leaves.Leaf(offset)
}

// sortIndices validates and sorts/dedups a requested index list.
func sortIndices(size int, indices []int) ([]Index, error) {
	seen := make(map[int]bool, len(indices))
	out := make([]Index, 0, len(indices))
	for _, i := range indices {
		if i < 0 || i >= size {
			return nil, fmt.Errorf("%w: %d (size %d)", ErrIndexOutOfRange, i, size)
		}
		if seen[i] {
			continue
		}
		seen[i] = true
		depth := uint64(0)
		for (1 << depth) < size {
			depth++
		}
		out = append(out, IndexFromDepthOffset(depth, uint64(i)))
	}
	sort.Slice(out, func(a, b int) bool { return out[a] < out[b] })
	return out, nil
}

// Proof is a multi-index opening: the commitment it was opened against,
// the sorted leaf indices, and the ordered co-path hashes Open emits.
type Proof struct {
	Commitment Commitment
	Indices    []int
	Hashes     []Hash
}

// ProofSize simulates the queue-walk Open performs, without touching any
// hash data, to compute the authoritative number of co-path hashes a
// proof over these indices must carry. Open and Verify must agree with
// this count.
func ProofSize(size int, indices []int) (int, error) {
	sorted, err := sortIndices(size, indices)
	if err != nil {
		return 0, err
	}
	return walkCount(sorted), nil
}

func walkCount(sorted []Index) int {
	queue := append([]Index(nil), sorted...)
	count := 0
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if current.IsRoot() {
			continue
		}
		sibling := current.Sibling()
		if len(queue) > 0 && queue[0] == sibling {
			queue = queue[1:]
		} else {
			count++
		}
		queue = append(queue, current.Parent())
	}
	return count
}

// Open produces a Proof for the given (possibly unsorted, possibly
// duplicated) leaf indices: sort and dedup, then walk the BFS queue from
// the leaves to the root, emitting a co-path hash for every node whose
// sibling was not already supplied by an adjacent requested index.
func (t *Tree[L]) Open(indices []int) (*Proof, error) {
	sorted, err := sortIndices(t.commitment.Size, indices)
	if err != nil {
		return nil, err
	}
	proofIndices := make([]int, len(sorted))
	for i, idx := range sorted {
		proofIndices[i] = int(idx.Offset())
	}

	queue := append([]Index(nil), sorted...)
	var hashes []Hash
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if current.IsRoot() {
			continue
		}
		sibling := current.Sibling()
		if len(queue) > 0 && queue[0] == sibling {
			queue = queue[1:]
		} else {
			hashes = append(hashes, t.nodes[sibling])
		}
		queue = append(queue, current.Parent())
	}

	return &Proof{Commitment: t.commitment, Indices: proofIndices, Hashes: hashes}, nil
}

// indexedLeaf pairs a leaf offset with its claimed hash, for Verify's
// input.
type indexedLeaf struct {
	index Index
	hash  Hash
}

// Verify checks a proof against a set of (offset, leafHash) claims using
// hasher (DefaultHasher if nil) to recompute internal node hashes along
// the same queue walk Open performs, consuming co-path hashes from the
// proof in order instead of reading them from a built tree. A proof with
// no hashes checked against no claims (what Open returns for an empty
// index list) verifies, since it commits to nothing.
func Verify(proof *Proof, leaves []struct {
	Index int
	Hash  Hash
}, hasher Hasher) error {
	if hasher == nil {
		hasher = DefaultHasher
	}
	depth := proof.Commitment.Depth()

	nodes := make([]indexedLeaf, 0, len(leaves))
	for _, l := range leaves {
		if l.Index < 0 || l.Index >= proof.Commitment.Size {
			return fmt.Errorf("%w: %d", ErrIndexOutOfRange, l.Index)
		}
		nodes = append(nodes, indexedLeaf{
			index: IndexFromDepthOffset(depth, uint64(l.Index)),
			hash:  l.Hash,
		})
	}
	sort.Slice(nodes, func(a, b int) bool { return nodes[a].index < nodes[b].index })

	deduped := nodes[:0]
	for i, n := range nodes {
		if i > 0 && n.index == nodes[i-1].index {
			if !bytes.Equal(n.hash[:], nodes[i-1].hash[:]) {
				return ErrDuplicateLeafMismatch
			}
			continue
		}
		deduped = append(deduped, n)
	}
	nodes = deduped
	if len(nodes) == 0 && len(proof.Hashes) == 0 {
		return nil
	}

	queue := append([]indexedLeaf(nil), nodes...)
	hashIdx := 0
	popHash := func() (Hash, error) {
		if hashIdx >= len(proof.Hashes) {
			return Hash{}, ErrNotEnoughHashes
		}
		h := proof.Hashes[hashIdx]
		hashIdx++
		return h, nil
	}

	var lastHash Hash
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if current.index.IsRoot() {
			lastHash = current.hash
			continue
		}
		var parentHash Hash
		if current.index.IsLeft() {
			if len(queue) > 0 && queue[0].index == current.index.Sibling() {
				next := queue[0]
				queue = queue[1:]
				parentHash = hasher(current.hash, next.hash)
			} else {
				siblingHash, err := popHash()
				if err != nil {
					return err
				}
				parentHash = hasher(current.hash, siblingHash)
			}
		} else {
			siblingHash, err := popHash()
			if err != nil {
				return err
			}
			parentHash = hasher(siblingHash, current.hash)
		}
		queue = append(queue, indexedLeaf{index: current.index.Parent(), hash: parentHash})
	}

	if !bytes.Equal(lastHash[:], proof.Commitment.Root[:]) {
		return ErrRootHashMismatch
	}
	return nil
}

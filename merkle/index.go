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

// Index is a node's position in a Merkle tree, stored as its BFS ordinal:
// the root is 0, and within each depth nodes are numbered left to right.
// Index arithmetic (parent/sibling/children) is pure integer math over
// this ordinal, independent of any particular tree instance.
type Index uint64

// maxDepth bounds tree depth well under any concern for ordinal overflow
// of a uint64 BFS numbering.
const maxDepth = 56

// IndexFromDepthOffset builds the BFS ordinal for the node at the given
// depth (root = depth 0) and offset within that depth (0-based,
// left to right).
func IndexFromDepthOffset(depth, offset uint64) Index {
	return Index((uint64(1) << depth) - 1 + offset)
}

// depth returns the tree depth this index lives at (root = 0).
func (i Index) depth() uint64 {
	// (1<<d)-1 <= i < (1<<(d+1))-1  =>  d = floor(log2(i+1))
	v := uint64(i) + 1
	d := uint64(0)
	for v > 1 {
		v >>= 1
		d++
	}
	return d
}

// Offset returns the node's 0-based position within its own depth.
func (i Index) Offset() uint64 {
	d := i.depth()
	return uint64(i) - ((uint64(1) << d) - 1)
}

// IsRoot reports whether i is the tree root (BFS ordinal 0).
func (i Index) IsRoot() bool {
	return i == 0
}

// Parent returns i's parent index. Panics if i is the root, which has
// none; callers must check IsRoot first (mirrors the queue-walk
// algorithm's root-terminates-the-loop structure).
func (i Index) Parent() Index {
	if i.IsRoot() {
		panic("merkle: root index has no parent")
	}
	return Index((uint64(i) - 1) / 2)
}

// IsLeft reports whether i is its parent's left child.
func (i Index) IsLeft() bool {
	if i.IsRoot() {
		return false
	}
	return (uint64(i)-1)%2 == 0
}

// Sibling returns the other child of i's parent. Panics on the root.
func (i Index) Sibling() Index {
	if i.IsRoot() {
		panic("merkle: root index has no sibling")
	}
	if i.IsLeft() {
		return i + 1
	}
	return i - 1
}

// LeftChild returns i's left child index.
func (i Index) LeftChild() Index {
	return Index(2*uint64(i) + 1)
}

// RightChild returns i's right child index.
func (i Index) RightChild() Index {
	return Index(2*uint64(i) + 2)
}

// layerIndices returns the BFS ordinals of every node at the given depth.
func layerIndices(depth uint64) []Index {
	count := uint64(1) << depth
	out := make([]Index, count)
	base := IndexFromDepthOffset(depth, 0)
	for i := uint64(0); i < count; i++ {
		out[i] = base + Index(i)
	}
	return out
}

package linetree

import "math/bits"

// BuildItem is one line of input to Build: an opaque payload, the line's
// length in bytes, and an optional measured height (0 means "use the
// estimated line height").
type BuildItem[D any] struct {
	Data   D
	Length int
	Height float64
}

// Build constructs a balanced tree from an ordered flat list of lines in
// O(n), avoiding n sequential inserts. It is used for initial document
// load and for a single line's internal fragment storage.
func Build[D any](items []BuildItem[D], estimatedHeight float64) *Tree[D] {
	t := New[D](estimatedHeight)
	if len(items) == 0 {
		return t
	}

	t.nodes = make([]node[D], 1, len(items)+1)

	// A midpoint-split tree of n nodes has bits.Len(n) levels. Coloring
	// the deepest level red and everything above black yields a valid
	// red-black coloring with uniform black height.
	maxDepth := bits.Len(uint(len(items)))
	t.root, t.length, t.count, t.totalHeight = t.buildRange(items, nilH, 1, maxDepth)
	t.nodes[t.root].color = black
	return t
}

// buildRange builds the subtree for items, returning its root handle and
// the subtree's total length, line count, and height. The left child's
// totals become the parent's cached left-side metadata, so each node is
// visited exactly once.
func (t *Tree[D]) buildRange(items []BuildItem[D], parent Handle, depth, maxDepth int) (Handle, int, int, float64) {
	if len(items) == 0 {
		return nilH, 0, 0, 0
	}

	mid := len(items) / 2
	item := items[mid]
	height := item.Height
	if height <= 0 {
		height = t.estimatedHeight
	}

	t.nodes = append(t.nodes, node[D]{
		parent: parent,
		color:  black,
		data:   item.Data,
		length: item.Length,
		height: height,
	})
	h := Handle(len(t.nodes) - 1)
	if depth == maxDepth {
		t.nodes[h].color = red
	}

	left, leftLength, leftCount, leftHeight := t.buildRange(items[:mid], h, depth+1, maxDepth)
	right, rightLength, rightCount, rightHeight := t.buildRange(items[mid+1:], h, depth+1, maxDepth)
	t.nodes[h].left = left
	t.nodes[h].right = right
	t.nodes[h].leftLength = leftLength
	t.nodes[h].leftCount = leftCount
	t.nodes[h].leftHeight = leftHeight
	return h, leftLength + item.Length + rightLength, leftCount + 1 + rightCount, leftHeight + height + rightHeight
}

// Flatten returns the tree's lines in document order as build items, so
// Build(Flatten(t)) reproduces a tree with identical length, count, and
// height.
func (t *Tree[D]) Flatten() []BuildItem[D] {
	items := make([]BuildItem[D], 0, t.count)
	t.inOrder(t.root, func(h Handle) bool {
		n := &t.nodes[h]
		items = append(items, BuildItem[D]{Data: n.data, Length: n.length, Height: n.height})
		return true
	})
	return items
}

// inOrder walks the subtree at h in document order, stopping early if fn
// returns false.
func (t *Tree[D]) inOrder(h Handle, fn func(Handle) bool) bool {
	if h == nilH {
		return true
	}
	if !t.inOrder(t.nodes[h].left, fn) {
		return false
	}
	if !fn(h) {
		return false
	}
	return t.inOrder(t.nodes[h].right, fn)
}

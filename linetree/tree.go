package linetree

import (
	"fmt"

	"github.com/dshills/textweave/core"
)

// Tree is an order-statistics red-black tree holding one node per logical
// line. Every node is augmented with cumulative left-subtree length, count,
// and height, so lines can be resolved by document offset, line index, or
// vertical position in O(log n).
//
// The zero value is not usable; create trees with New or Build.
type Tree[D any] struct {
	nodes []node[D]
	free  []Handle
	root  Handle

	length      int
	count       int
	totalHeight float64

	estimatedHeight float64
}

// New creates an empty tree. estimatedHeight seeds the height of lines that
// have not been laid out yet.
func New[D any](estimatedHeight float64) *Tree[D] {
	t := &Tree[D]{
		nodes:           make([]node[D], 1, 64), // slot 0 is the sentinel
		estimatedHeight: estimatedHeight,
	}
	return t
}

// Length returns the total document length covered by the tree.
func (t *Tree[D]) Length() int {
	return t.length
}

// Count returns the number of lines in the tree.
func (t *Tree[D]) Count() int {
	return t.count
}

// TotalHeight returns the summed height of all lines.
func (t *Tree[D]) TotalHeight() float64 {
	return t.totalHeight
}

// IsEmpty returns true if the tree holds no lines.
func (t *Tree[D]) IsEmpty() bool {
	return t.count == 0
}

// EstimatedLineHeight returns the height used for lines that have not been
// measured yet.
func (t *Tree[D]) EstimatedLineHeight() float64 {
	return t.estimatedHeight
}

// LinePosition is a value snapshot of one line's place in the document.
// Snapshots are invalidated by any subsequent tree mutation; callers must
// re-resolve by offset or index rather than cache them across an edit.
type LinePosition[D any] struct {
	// Data is the line's opaque payload.
	Data D

	// Range is the absolute document span of the line, including its
	// line-ending terminator.
	Range core.Range

	// YPos is the absolute vertical origin of the line.
	YPos float64

	// Height is the line's current laid-out (or estimated) height.
	Height float64

	// Index is the 0-based line number.
	Index int
}

// LineAt resolves the line containing the given document offset.
// An offset exactly at document end resolves to the last line. Returns
// ok == false for offsets outside [0, Length()].
func (t *Tree[D]) LineAt(offset int) (LinePosition[D], bool) {
	if t.root == nilH || offset < 0 || offset > t.length {
		return LinePosition[D]{}, false
	}
	if offset == t.length {
		return t.LineAtIndex(t.count - 1)
	}

	cur := t.root
	rel := offset
	base := 0
	index := 0
	y := 0.0
	for cur != nilH {
		n := &t.nodes[cur]
		switch {
		case rel < n.leftLength:
			cur = n.left
		case rel < n.leftLength+n.length:
			return t.position(cur, base+n.leftLength, index+n.leftCount, y+n.leftHeight), true
		default:
			base += n.leftLength + n.length
			rel -= n.leftLength + n.length
			index += n.leftCount + 1
			y += n.leftHeight + n.height
			cur = n.right
		}
	}
	return LinePosition[D]{}, false
}

// LineAtIndex resolves the line with the given 0-based index.
func (t *Tree[D]) LineAtIndex(index int) (LinePosition[D], bool) {
	if t.root == nilH || index < 0 || index >= t.count {
		return LinePosition[D]{}, false
	}

	cur := t.root
	rel := index
	base := 0
	idx := 0
	y := 0.0
	for cur != nilH {
		n := &t.nodes[cur]
		switch {
		case rel < n.leftCount:
			cur = n.left
		case rel == n.leftCount:
			return t.position(cur, base+n.leftLength, idx+n.leftCount, y+n.leftHeight), true
		default:
			base += n.leftLength + n.length
			rel -= n.leftCount + 1
			idx += n.leftCount + 1
			y += n.leftHeight + n.height
			cur = n.right
		}
	}
	return LinePosition[D]{}, false
}

// LineAtPosition resolves the line containing the given vertical position.
// Positions past the bottom of the document return ok == false; callers
// decide whether that means "past end" or "last line".
func (t *Tree[D]) LineAtPosition(y float64) (LinePosition[D], bool) {
	if t.root == nilH || y < 0 || y >= t.totalHeight {
		return LinePosition[D]{}, false
	}

	cur := t.root
	rel := y
	base := 0
	index := 0
	yBase := 0.0
	for cur != nilH {
		n := &t.nodes[cur]
		switch {
		case rel < n.leftHeight:
			cur = n.left
		case rel < n.leftHeight+n.height:
			return t.position(cur, base+n.leftLength, index+n.leftCount, yBase+n.leftHeight), true
		default:
			base += n.leftLength + n.length
			rel -= n.leftHeight + n.height
			index += n.leftCount + 1
			yBase += n.leftHeight + n.height
			cur = n.right
		}
	}
	return LinePosition[D]{}, false
}

// position builds a snapshot for the node at h whose line starts at the
// given absolute offset, index, and y position.
func (t *Tree[D]) position(h Handle, start, index int, y float64) LinePosition[D] {
	n := &t.nodes[h]
	return LinePosition[D]{
		Data:   n.data,
		Range:  core.NewRange(start, n.length),
		YPos:   y,
		Height: n.height,
		Index:  index,
	}
}

// Update adjusts the length and height of the line containing offset and
// propagates the deltas through every ancestor's cumulative metrics. It
// never rebalances; only Insert and Delete change the tree's shape.
//
// Updating at an offset outside the document is a caller contract
// violation and panics.
func (t *Tree[D]) Update(atOffset, delta int, deltaHeight float64) {
	h := t.mustFind(atOffset)
	n := &t.nodes[h]
	n.length += delta
	n.height += deltaHeight
	t.propagate(h, nilH, delta, 0, deltaHeight)
	t.length += delta
	t.totalHeight += deltaHeight
}

// mustFind locates the node containing offset, treating document end as
// the last line. It panics on an empty tree or out-of-range offset.
func (t *Tree[D]) mustFind(offset int) Handle {
	if t.root == nilH {
		panic("linetree: operation on empty tree")
	}
	if offset < 0 || offset > t.length {
		panic(fmt.Sprintf("linetree: offset %d out of range [0, %d]", offset, t.length))
	}

	cur := t.root
	rel := offset
	for cur != nilH {
		n := &t.nodes[cur]
		switch {
		case rel < n.leftLength:
			cur = n.left
		case rel < n.leftLength+n.length || (t.nodes[cur].right == nilH && rel == n.leftLength+n.length):
			return cur
		default:
			rel -= n.leftLength + n.length
			cur = n.right
		}
	}
	panic(fmt.Sprintf("linetree: no line at offset %d", offset))
}

package linetree

// Handle addresses a node inside the tree's arena.
// Handle 0 is the shared nil sentinel; real nodes start at 1.
type Handle int32

// nilH is the sentinel handle. The sentinel is always black and carries
// zero metrics, which lets rotations and delete fixups treat it as an
// ordinary node.
const nilH Handle = 0

type nodeColor uint8

const (
	black nodeColor = iota
	red
)

// node is one logical line in the tree. Nodes are stored in a flat arena
// and reference each other by handle rather than pointer, so there are no
// parent/child reference cycles to manage.
type node[D any] struct {
	parent Handle
	left   Handle
	right  Handle
	color  nodeColor

	// length is this node's own span in bytes, including its terminator.
	length int

	// height is this node's own laid-out height.
	height float64

	// Cumulative metrics over the entire left subtree. These are the
	// invariants every structural or value change must preserve:
	// leftLength == sum of length over the left subtree, and likewise
	// for leftCount and leftHeight.
	leftLength int
	leftCount  int
	leftHeight float64

	data D
}

// alloc returns a handle to a fresh node, reusing freed slots when possible.
func (t *Tree[D]) alloc(data D, length int, height float64) Handle {
	n := node[D]{
		data:   data,
		length: length,
		height: height,
		color:  red,
	}
	if len(t.free) > 0 {
		h := t.free[len(t.free)-1]
		t.free = t.free[:len(t.free)-1]
		t.nodes[h] = n
		return h
	}
	t.nodes = append(t.nodes, n)
	return Handle(len(t.nodes) - 1)
}

// release returns a node's slot to the free list.
func (t *Tree[D]) release(h Handle) {
	var zero node[D]
	t.nodes[h] = zero
	t.free = append(t.free, h)
}

// rotateLeft rotates the subtree rooted at x to the left. x's right child
// takes x's place and x becomes its left child. Cumulative metrics are
// adjusted so the left-subtree invariants hold afterwards.
func (t *Tree[D]) rotateLeft(x Handle) {
	y := t.nodes[x].right

	t.nodes[x].right = t.nodes[y].left
	if t.nodes[y].left != nilH {
		t.nodes[t.nodes[y].left].parent = x
	}

	p := t.nodes[x].parent
	t.nodes[y].parent = p
	switch {
	case p == nilH:
		t.root = y
	case t.nodes[p].left == x:
		t.nodes[p].left = y
	default:
		t.nodes[p].right = y
	}

	t.nodes[y].left = x
	t.nodes[x].parent = y

	// x and its old left subtree join y's left subtree.
	t.nodes[y].leftLength += t.nodes[x].leftLength + t.nodes[x].length
	t.nodes[y].leftCount += t.nodes[x].leftCount + 1
	t.nodes[y].leftHeight += t.nodes[x].leftHeight + t.nodes[x].height
}

// rotateRight is the mirror of rotateLeft.
func (t *Tree[D]) rotateRight(x Handle) {
	y := t.nodes[x].left

	t.nodes[x].left = t.nodes[y].right
	if t.nodes[y].right != nilH {
		t.nodes[t.nodes[y].right].parent = x
	}

	p := t.nodes[x].parent
	t.nodes[y].parent = p
	switch {
	case p == nilH:
		t.root = y
	case t.nodes[p].left == x:
		t.nodes[p].left = y
	default:
		t.nodes[p].right = y
	}

	t.nodes[y].right = x
	t.nodes[x].parent = y

	// y and its left subtree leave x's left subtree.
	t.nodes[x].leftLength -= t.nodes[y].leftLength + t.nodes[y].length
	t.nodes[x].leftCount -= t.nodes[y].leftCount + 1
	t.nodes[x].leftHeight -= t.nodes[y].leftHeight + t.nodes[y].height
}

// transplant replaces the subtree rooted at u with the subtree rooted at v.
// The sentinel's parent may be written; delete fixup relies on that.
func (t *Tree[D]) transplant(u, v Handle) {
	p := t.nodes[u].parent
	switch {
	case p == nilH:
		t.root = v
	case t.nodes[p].left == u:
		t.nodes[p].left = v
	default:
		t.nodes[p].right = v
	}
	t.nodes[v].parent = p
}

// minimum returns the leftmost node of the subtree rooted at h.
func (t *Tree[D]) minimum(h Handle) Handle {
	for t.nodes[h].left != nilH {
		h = t.nodes[h].left
	}
	return h
}

// propagate adds the given deltas to every ancestor of h whose left
// subtree contains h, stopping below stop (pass nilH to walk to the root).
func (t *Tree[D]) propagate(h, stop Handle, dLength, dCount int, dHeight float64) {
	child := h
	for p := t.nodes[h].parent; p != stop && p != nilH; p = t.nodes[p].parent {
		if t.nodes[p].left == child {
			t.nodes[p].leftLength += dLength
			t.nodes[p].leftCount += dCount
			t.nodes[p].leftHeight += dHeight
		}
		child = p
	}
}

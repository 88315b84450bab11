package linetree

// Delete removes the line containing the given offset. The tree only
// unlinks the node; merging the deleted line's text into a neighbor is the
// caller's job and must happen before the delete.
//
// Deleting from an empty tree or at an out-of-range offset panics.
func (t *Tree[D]) Delete(atOffset int) {
	z := t.mustFind(atOffset)
	removedLength := t.nodes[z].length
	removedHeight := t.nodes[z].height

	// z leaves every ancestor's subtree.
	t.propagate(z, nilH, -removedLength, -1, -removedHeight)

	y := z
	yColor := t.nodes[y].color
	var x Handle

	switch {
	case t.nodes[z].left == nilH:
		x = t.nodes[z].right
		t.transplant(z, x)
	case t.nodes[z].right == nilH:
		x = t.nodes[z].left
		t.transplant(z, x)
	default:
		// z's in-order successor y takes its place. y is the leftmost
		// node of z's right subtree, so it sits in the left subtree of
		// every node strictly between z and itself; those ancestors
		// lose y's contribution when it moves up.
		y = t.minimum(t.nodes[z].right)
		yColor = t.nodes[y].color
		t.propagate(y, z, -t.nodes[y].length, -1, -t.nodes[y].height)

		x = t.nodes[y].right
		if t.nodes[y].parent == z {
			t.nodes[x].parent = y
		} else {
			t.transplant(y, x)
			t.nodes[y].right = t.nodes[z].right
			t.nodes[t.nodes[y].right].parent = y
		}
		t.transplant(z, y)
		t.nodes[y].left = t.nodes[z].left
		t.nodes[t.nodes[y].left].parent = y
		t.nodes[y].color = t.nodes[z].color

		// y inherits z's left subtree wholesale.
		t.nodes[y].leftLength = t.nodes[z].leftLength
		t.nodes[y].leftCount = t.nodes[z].leftCount
		t.nodes[y].leftHeight = t.nodes[z].leftHeight
	}

	t.length -= removedLength
	t.count--
	t.totalHeight -= removedHeight

	if yColor == black {
		t.deleteFixup(x)
	}
	t.nodes[nilH] = node[D]{} // clear any sentinel scribbles
	t.release(z)
}

// deleteFixup restores red-black balance after removing a black node.
// x may be the sentinel; its parent link is valid either way.
func (t *Tree[D]) deleteFixup(x Handle) {
	for x != t.root && t.nodes[x].color == black {
		parent := t.nodes[x].parent
		if x == t.nodes[parent].left {
			sib := t.nodes[parent].right
			if t.nodes[sib].color == red {
				t.nodes[sib].color = black
				t.nodes[parent].color = red
				t.rotateLeft(parent)
				sib = t.nodes[parent].right
			}
			if t.nodes[t.nodes[sib].left].color == black && t.nodes[t.nodes[sib].right].color == black {
				t.nodes[sib].color = red
				x = parent
				continue
			}
			if t.nodes[t.nodes[sib].right].color == black {
				t.nodes[t.nodes[sib].left].color = black
				t.nodes[sib].color = red
				t.rotateRight(sib)
				sib = t.nodes[parent].right
			}
			t.nodes[sib].color = t.nodes[parent].color
			t.nodes[parent].color = black
			t.nodes[t.nodes[sib].right].color = black
			t.rotateLeft(parent)
			x = t.root
		} else {
			sib := t.nodes[parent].left
			if t.nodes[sib].color == red {
				t.nodes[sib].color = black
				t.nodes[parent].color = red
				t.rotateRight(parent)
				sib = t.nodes[parent].left
			}
			if t.nodes[t.nodes[sib].left].color == black && t.nodes[t.nodes[sib].right].color == black {
				t.nodes[sib].color = red
				x = parent
				continue
			}
			if t.nodes[t.nodes[sib].left].color == black {
				t.nodes[t.nodes[sib].right].color = black
				t.nodes[sib].color = red
				t.rotateLeft(sib)
				sib = t.nodes[parent].left
			}
			t.nodes[sib].color = t.nodes[parent].color
			t.nodes[parent].color = black
			t.nodes[t.nodes[sib].left].color = black
			t.rotateRight(parent)
			x = t.root
		}
	}
	t.nodes[x].color = black
}

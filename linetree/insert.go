package linetree

import "fmt"

// Insert adds a new line node at the given document offset. An offset on a
// line boundary inserts the node between the neighboring lines; an offset
// strictly inside an existing line inserts the node immediately after that
// line. Callers splitting a line first shrink it with Update so the
// insertion point lands on the new boundary, then Insert the remainder.
//
// Inserting outside [0, Length()] panics.
func (t *Tree[D]) Insert(data D, atOffset, length int, height float64) {
	if atOffset < 0 || atOffset > t.length {
		panic(fmt.Sprintf("linetree: insert at %d out of range [0, %d]", atOffset, t.length))
	}
	if height <= 0 {
		height = t.estimatedHeight
	}

	h := t.alloc(data, length, height)

	if t.root == nilH {
		t.root = h
		t.nodes[h].color = black
		t.length += length
		t.count++
		t.totalHeight += height
		return
	}

	// Descend to the attachment point. rel is the offset relative to the
	// current subtree; an offset strictly inside a node clamps to "just
	// after", which lands the new node at the node's successor position.
	cur := t.root
	rel := atOffset
	for {
		n := &t.nodes[cur]
		if rel <= n.leftLength {
			if n.left == nilH {
				n.left = h
				t.nodes[h].parent = cur
				break
			}
			cur = n.left
			continue
		}
		rel -= n.leftLength + n.length
		if rel < 0 {
			rel = 0
		}
		if t.nodes[cur].right == nilH {
			t.nodes[cur].right = h
			t.nodes[h].parent = cur
			break
		}
		cur = t.nodes[cur].right
	}

	t.propagate(h, nilH, length, 1, height)
	t.length += length
	t.count++
	t.totalHeight += height

	t.insertFixup(h)
}

// insertFixup restores red-black balance after an insertion.
func (t *Tree[D]) insertFixup(z Handle) {
	for t.nodes[t.nodes[z].parent].color == red {
		parent := t.nodes[z].parent
		grand := t.nodes[parent].parent
		if parent == t.nodes[grand].left {
			uncle := t.nodes[grand].right
			if t.nodes[uncle].color == red {
				t.nodes[parent].color = black
				t.nodes[uncle].color = black
				t.nodes[grand].color = red
				z = grand
				continue
			}
			if z == t.nodes[parent].right {
				z = parent
				t.rotateLeft(z)
				parent = t.nodes[z].parent
				grand = t.nodes[parent].parent
			}
			t.nodes[parent].color = black
			t.nodes[grand].color = red
			t.rotateRight(grand)
		} else {
			uncle := t.nodes[grand].left
			if t.nodes[uncle].color == red {
				t.nodes[parent].color = black
				t.nodes[uncle].color = black
				t.nodes[grand].color = red
				z = grand
				continue
			}
			if z == t.nodes[parent].left {
				z = parent
				t.rotateRight(z)
				parent = t.nodes[z].parent
				grand = t.nodes[parent].parent
			}
			t.nodes[parent].color = black
			t.nodes[grand].color = red
			t.rotateLeft(grand)
		}
	}
	t.nodes[t.root].color = black
}

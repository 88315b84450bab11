package linetree

import (
	"math"
	"testing"

	"github.com/dshills/textweave/core"
)

const testLineHeight = 16.0

// validateTree checks every invariant the tree promises: cumulative
// left-subtree metrics, red-black balance, and contiguous in-order ranges.
func validateTree[D any](t *testing.T, tr *Tree[D]) {
	t.Helper()

	if tr.root == nilH {
		if tr.count != 0 || tr.length != 0 {
			t.Fatalf("empty root but count=%d length=%d", tr.count, tr.length)
		}
		return
	}
	if tr.nodes[tr.root].color != black {
		t.Fatal("root is not black")
	}

	length, count, height, _ := validateNode(t, tr, tr.root)
	if length != tr.length {
		t.Errorf("tree length = %d, nodes sum to %d", tr.length, length)
	}
	if count != tr.count {
		t.Errorf("tree count = %d, nodes sum to %d", tr.count, count)
	}
	if math.Abs(height-tr.totalHeight) > 1e-6 {
		t.Errorf("tree height = %f, nodes sum to %f", tr.totalHeight, height)
	}

	// In-order walk must yield contiguous, non-overlapping ranges spanning
	// [0, length) with strictly increasing indexes.
	offset := 0
	index := 0
	y := 0.0
	tr.inOrder(tr.root, func(h Handle) bool {
		pos, ok := tr.LineAtIndex(index)
		if !ok {
			t.Fatalf("no line at index %d of %d", index, tr.count)
		}
		if pos.Range.Location != offset {
			t.Errorf("line %d starts at %d, want %d", index, pos.Range.Location, offset)
		}
		if pos.Index != index {
			t.Errorf("line at index %d reports index %d", index, pos.Index)
		}
		if math.Abs(pos.YPos-y) > 1e-6 {
			t.Errorf("line %d yPos = %f, want %f", index, pos.YPos, y)
		}
		offset += tr.nodes[h].length
		y += tr.nodes[h].height
		index++
		return true
	})
	if offset != tr.length {
		t.Errorf("ranges span [0, %d), tree length %d", offset, tr.length)
	}
}

// validateNode recursively checks one subtree and returns its aggregates
// and black height.
func validateNode[D any](t *testing.T, tr *Tree[D], h Handle) (int, int, float64, int) {
	t.Helper()
	if h == nilH {
		return 0, 0, 0, 1
	}
	n := &tr.nodes[h]

	if n.color == red {
		if tr.nodes[n.left].color == red || tr.nodes[n.right].color == red {
			t.Errorf("red node %d has a red child", h)
		}
	}
	if n.left != nilH && tr.nodes[n.left].parent != h {
		t.Errorf("node %d left child has wrong parent", h)
	}
	if n.right != nilH && tr.nodes[n.right].parent != h {
		t.Errorf("node %d right child has wrong parent", h)
	}

	lLen, lCount, lHeight, lBlack := validateNode(t, tr, n.left)
	rLen, rCount, rHeight, rBlack := validateNode(t, tr, n.right)

	if n.leftLength != lLen {
		t.Errorf("node %d leftLength = %d, left subtree sums to %d", h, n.leftLength, lLen)
	}
	if n.leftCount != lCount {
		t.Errorf("node %d leftCount = %d, left subtree has %d nodes", h, n.leftCount, lCount)
	}
	if math.Abs(n.leftHeight-lHeight) > 1e-6 {
		t.Errorf("node %d leftHeight = %f, left subtree sums to %f", h, n.leftHeight, lHeight)
	}
	if lBlack != rBlack {
		t.Errorf("node %d has uneven black height: %d vs %d", h, lBlack, rBlack)
	}

	black := lBlack
	if n.color != red {
		black++
	}
	return lLen + n.length + rLen, lCount + 1 + rCount, lHeight + n.height + rHeight, black
}

// buildLines creates a tree with one node per length, all at the test height.
func buildLines(lengths ...int) *Tree[int] {
	items := make([]BuildItem[int], len(lengths))
	for i, l := range lengths {
		items[i] = BuildItem[int]{Data: i, Length: l, Height: testLineHeight}
	}
	return Build(items, testLineHeight)
}

func TestEmptyTree(t *testing.T) {
	tr := New[int](testLineHeight)
	if !tr.IsEmpty() {
		t.Error("new tree should be empty")
	}
	if _, ok := tr.LineAt(0); ok {
		t.Error("LineAt on empty tree should not resolve")
	}
	if _, ok := tr.LineAtIndex(0); ok {
		t.Error("LineAtIndex on empty tree should not resolve")
	}
	if _, ok := tr.LineAtPosition(0); ok {
		t.Error("LineAtPosition on empty tree should not resolve")
	}
	validateTree(t, tr)
}

func TestLineAt(t *testing.T) {
	// "A\nB\nC\nD" -> lines of length 2, 2, 2, 1
	tr := buildLines(2, 2, 2, 1)
	validateTree(t, tr)

	tests := []struct {
		offset    int
		wantIndex int
		wantStart int
	}{
		{0, 0, 0},
		{1, 0, 0},
		{2, 1, 2},
		{3, 1, 2},
		{4, 2, 4},
		{5, 2, 4},
		{6, 3, 6},
		{7, 3, 6}, // document end resolves to the last line
	}
	for _, tt := range tests {
		pos, ok := tr.LineAt(tt.offset)
		if !ok {
			t.Fatalf("LineAt(%d) did not resolve", tt.offset)
		}
		if pos.Index != tt.wantIndex {
			t.Errorf("LineAt(%d) index = %d, want %d", tt.offset, pos.Index, tt.wantIndex)
		}
		if pos.Range.Location != tt.wantStart {
			t.Errorf("LineAt(%d) start = %d, want %d", tt.offset, pos.Range.Location, tt.wantStart)
		}
	}

	if _, ok := tr.LineAt(8); ok {
		t.Error("LineAt past document end should not resolve")
	}
	if _, ok := tr.LineAt(-1); ok {
		t.Error("LineAt(-1) should not resolve")
	}
}

func TestLineAtPosition(t *testing.T) {
	tr := buildLines(2, 2, 2, 1)

	tests := []struct {
		y         float64
		wantIndex int
	}{
		{0, 0},
		{15.9, 0},
		{16, 1},
		{47.5, 2},
		{48, 3},
		{63.9, 3},
	}
	for _, tt := range tests {
		pos, ok := tr.LineAtPosition(tt.y)
		if !ok {
			t.Fatalf("LineAtPosition(%f) did not resolve", tt.y)
		}
		if pos.Index != tt.wantIndex {
			t.Errorf("LineAtPosition(%f) index = %d, want %d", tt.y, pos.Index, tt.wantIndex)
		}
	}

	if _, ok := tr.LineAtPosition(64); ok {
		t.Error("position past total height should not resolve")
	}
}

func TestInsert(t *testing.T) {
	tr := New[int](testLineHeight)
	// Sequential inserts at the end.
	for i := 0; i < 100; i++ {
		tr.Insert(i, tr.Length(), 3, testLineHeight)
		validateTree(t, tr)
	}
	if tr.Count() != 100 {
		t.Fatalf("count = %d, want 100", tr.Count())
	}
	if tr.Length() != 300 {
		t.Fatalf("length = %d, want 300", tr.Length())
	}

	// Inserts at the front.
	tr2 := New[int](testLineHeight)
	for i := 0; i < 100; i++ {
		tr2.Insert(i, 0, 2, testLineHeight)
		validateTree(t, tr2)
	}
	pos, _ := tr2.LineAtIndex(0)
	if pos.Data != 99 {
		t.Errorf("first line data = %d, want 99", pos.Data)
	}
}

func TestInsertAtBoundaryPlacesLineBefore(t *testing.T) {
	tr := buildLines(2, 2, 2, 1)
	// Insert at offset 2, the boundary where line "B\n" starts. The new
	// line takes index 1.
	tr.Insert(99, 2, 4, testLineHeight)
	validateTree(t, tr)

	pos, _ := tr.LineAtIndex(1)
	if pos.Data != 99 {
		t.Errorf("line 1 data = %d, want 99", pos.Data)
	}
	if pos.Range != core.NewRange(2, 4) {
		t.Errorf("line 1 range = %v, want {2, 4}", pos.Range)
	}
	if tr.Count() != 5 || tr.Length() != 11 {
		t.Errorf("count=%d length=%d, want 5 and 11", tr.Count(), tr.Length())
	}
}

func TestUpdate(t *testing.T) {
	tr := buildLines(2, 2, 2, 1)
	tr.Update(2, 3, 16) // line 1 grows by 3 bytes and one wrapped row
	validateTree(t, tr)

	pos, _ := tr.LineAtIndex(1)
	if pos.Range.Length != 5 {
		t.Errorf("line 1 length = %d, want 5", pos.Range.Length)
	}
	if pos.Height != 32 {
		t.Errorf("line 1 height = %f, want 32", pos.Height)
	}
	if tr.Length() != 10 {
		t.Errorf("tree length = %d, want 10", tr.Length())
	}

	// Lines after the update shift.
	pos, _ = tr.LineAtIndex(2)
	if pos.Range.Location != 7 {
		t.Errorf("line 2 start = %d, want 7", pos.Range.Location)
	}
	if pos.YPos != 48 {
		t.Errorf("line 2 yPos = %f, want 48", pos.YPos)
	}
}

func TestUpdateAtDocumentEnd(t *testing.T) {
	tr := buildLines(2, 2, 2, 1)
	tr.Update(tr.Length(), 2, 0) // grows the last line
	validateTree(t, tr)

	pos, _ := tr.LineAtIndex(3)
	if pos.Range.Length != 3 {
		t.Errorf("last line length = %d, want 3", pos.Range.Length)
	}
}

func TestDelete(t *testing.T) {
	tr := buildLines(2, 2, 2, 1)
	tr.Delete(2) // removes line 1
	validateTree(t, tr)

	if tr.Count() != 3 || tr.Length() != 5 {
		t.Fatalf("count=%d length=%d, want 3 and 5", tr.Count(), tr.Length())
	}
	pos, _ := tr.LineAtIndex(1)
	if pos.Data != 2 {
		t.Errorf("line 1 data = %d, want 2", pos.Data)
	}
	if pos.Range.Location != 2 {
		t.Errorf("line 1 start = %d, want 2", pos.Range.Location)
	}
}

func TestDeleteAll(t *testing.T) {
	tr := buildLines(3, 3, 3, 3, 3, 3, 3, 3)
	for tr.Count() > 0 {
		tr.Delete(0)
		validateTree(t, tr)
	}
	if !tr.IsEmpty() {
		t.Error("tree should be empty after deleting every line")
	}
}

func TestDeleteFromEnd(t *testing.T) {
	tr := buildLines(3, 3, 3, 3, 3, 3, 3, 3)
	for tr.Count() > 0 {
		last, _ := tr.LineAtIndex(tr.Count() - 1)
		tr.Delete(last.Range.Location)
		validateTree(t, tr)
	}
}

func TestDeletePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("delete from empty tree should panic")
		}
	}()
	New[int](testLineHeight).Delete(0)
}

func TestUpdateOutOfRangePanics(t *testing.T) {
	tr := buildLines(2, 2)
	defer func() {
		if recover() == nil {
			t.Error("update past document end should panic")
		}
	}()
	tr.Update(100, 1, 0)
}

func TestInterleavedOps(t *testing.T) {
	tr := New[int](testLineHeight)
	for i := 0; i < 50; i++ {
		tr.Insert(i, tr.Length()/2, 4, testLineHeight)
		validateTree(t, tr)
	}
	for i := 0; i < 20; i++ {
		tr.Delete(tr.Length() / 3)
		validateTree(t, tr)
		tr.Update(tr.Length()/2, 1, 2)
		validateTree(t, tr)
	}
	if tr.Count() != 30 {
		t.Errorf("count = %d, want 30", tr.Count())
	}
}

func TestZeroLengthLastLine(t *testing.T) {
	// A trailing newline leaves an empty final line, the only place a
	// zero-length node occurs.
	tr := buildLines(2, 0)
	validateTree(t, tr)

	pos, ok := tr.LineAt(2)
	if !ok {
		t.Fatal("document end did not resolve")
	}
	if pos.Index != 1 {
		t.Errorf("document end resolves to line %d, want 1", pos.Index)
	}
	if pos.Range.Length != 0 {
		t.Errorf("last line length = %d, want 0", pos.Range.Length)
	}
}

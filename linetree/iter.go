package linetree

import "github.com/dshills/textweave/core"

// LineIterator walks lines in document order. Each step re-resolves the
// next line from the root by index, so the tree may be structurally
// mutated between steps (layout resizes lines mid-walk by design); the
// iterator never holds node references across a step.
type LineIterator[D any] struct {
	tree      *Tree[D]
	nextIndex int
	stop      func(LinePosition[D]) bool
	pos       LinePosition[D]
	valid     bool
}

// Next advances to the next line. It returns false when the sequence is
// exhausted or the stop condition is reached.
func (it *LineIterator[D]) Next() bool {
	pos, ok := it.tree.LineAtIndex(it.nextIndex)
	if !ok || (it.stop != nil && it.stop(pos)) {
		it.valid = false
		return false
	}
	it.pos = pos
	it.valid = true
	it.nextIndex++
	return true
}

// Line returns the current line snapshot. Valid only after a true Next.
func (it *LineIterator[D]) Line() LinePosition[D] {
	return it.pos
}

// Lines returns an iterator over every line in the tree.
func (t *Tree[D]) Lines() *LineIterator[D] {
	return &LineIterator[D]{tree: t}
}

// LinesInRange returns an iterator over the lines overlapping the given
// document range. A zero-length range yields the line containing its
// location.
func (t *Tree[D]) LinesInRange(r core.Range) *LineIterator[D] {
	it := &LineIterator[D]{tree: t}
	if first, ok := t.LineAt(r.Location); ok {
		it.nextIndex = first.Index
	} else {
		it.nextIndex = t.count // nothing to yield
	}
	end := r.Max()
	it.stop = func(pos LinePosition[D]) bool {
		if pos.Range.Location == r.Location {
			return false // always yield the first line, even for empty ranges
		}
		return pos.Range.Location >= end
	}
	return it
}

// LinesStartingAt returns an iterator over the lines whose vertical span
// overlaps [minY, maxY).
func (t *Tree[D]) LinesStartingAt(minY, maxY float64) *LineIterator[D] {
	it := &LineIterator[D]{tree: t}
	switch {
	case minY <= 0:
		it.nextIndex = 0
	default:
		if first, ok := t.LineAtPosition(minY); ok {
			it.nextIndex = first.Index
		} else {
			it.nextIndex = t.count
		}
	}
	it.stop = func(pos LinePosition[D]) bool {
		return pos.YPos >= maxY
	}
	return it
}

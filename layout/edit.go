package layout

import (
	"github.com/dshills/textweave/core"
	"github.com/dshills/textweave/typeset"
)

// TextEdited synchronizes line structure after the text source has applied
// an edit. editedRange is the span of the newly inserted text in post-edit
// coordinates (empty for pure deletions) and delta is the length change,
// so the replaced pre-edit span is editedRange.Length - delta long.
// attributeOnly notifications carry no byte change; they invalidate the
// touched lines and skip restructuring entirely.
//
// For content edits the affected lines are resolved against the pre-edit
// tree, every affected line after the first is deleted, the post-edit
// region is rescanned for terminators, and the first line plus any fresh
// lines are resized to the new segments. The first affected line keeps
// its payload; new lines start dirty.
func (m *Manager) TextEdited(editedRange core.Range, delta int, attributeOnly bool) {
	if m.inLayout {
		m.contractViolation("TextEdited during layout pass")
		return
	}
	if attributeOnly {
		if delta != 0 {
			m.contractViolation("attribute-only edit %v with delta %d", editedRange, delta)
			return
		}
		m.InvalidateRange(editedRange)
		m.scheduleLayout()
		return
	}
	old := core.NewRange(editedRange.Location, editedRange.Length-delta)
	if old.Length < 0 || old.Max() > m.tree.Length() {
		m.contractViolation("TextEdited range %v delta %d out of bounds", editedRange, delta)
		return
	}

	// The attachment index works in pre-edit offsets and must run before
	// the tree is restructured.
	m.attachments.TextUpdated(old.Location, delta)

	first, ok := m.tree.LineAt(old.Location)
	if !ok {
		m.Reload()
		m.scheduleLayout()
		return
	}
	last := first
	if old.Max() > old.Location {
		if lp, ok := m.tree.LineAt(old.Max()); ok {
			last = lp
		}
	}

	regionStart := first.Range.Location

	// If the byte before the region is a CR and the region now begins
	// with a LF, the edit created a CRLF straddling the line boundary.
	// Pull the previous line into the region so the pair lands on one
	// line.
	if regionStart > 0 && first.Index > 0 && regionStart < m.text.Len() &&
		m.text.Slice(core.NewRange(regionStart-1, 2)) == "\r\n" {
		if lp, ok := m.tree.LineAtIndex(first.Index - 1); ok {
			first = lp
			regionStart = first.Range.Location
		}
	}

	// Offsets cannot tell whether a line follows the region: a trailing
	// zero-length line occupies none. Compare indexes before deleting.
	hasSuccessor := last.Index < m.tree.Count()-1

	// Drop every affected line after the first, back to front so indexes
	// stay stable.
	for idx := last.Index; idx > first.Index; idx-- {
		lp, ok := m.tree.LineAtIndex(idx)
		if !ok {
			break
		}
		m.tree.Delete(lp.Range.Location)
	}

	regionEnd := last.Range.Max() + delta
	segs := scanLineSegments(m.text.Slice(core.RangeFromBounds(regionStart, regionEnd)))
	if hasSuccessor {
		// The region ends at a surviving line boundary, so the scanner's
		// final segment is the empty run after the last terminator.
		if tail := segs[len(segs)-1]; tail != 0 {
			m.contractViolation("edit region not terminator aligned, tail %d", tail)
		}
		segs = segs[:len(segs)-1]
		if len(segs) == 0 {
			segs = []int{0}
		}
	}

	if d := segs[0] - first.Range.Length; d != 0 {
		m.tree.Update(first.Range.Location, d, 0)
	}
	first.Data.SetNeedsLayout()

	at := regionStart + segs[0]
	for _, l := range segs[1:] {
		m.tree.Insert(typeset.NewLine(), at, l, 0)
		at += l
	}

	m.scheduleLayout()
}

// scheduleLayout runs a layout pass over the last requested window, or
// defers it to the end of the current transaction.
func (m *Manager) scheduleLayout() {
	if m.txDepth > 0 || m.inLayout {
		m.pendingPass = true
		return
	}
	m.LayoutFor(m.lastMinY, m.lastMaxY)
}

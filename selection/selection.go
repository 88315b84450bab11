// Package selection provides selection value objects and resolves them to
// highlight rectangles through the layout query API. Selections are
// peripheral state: they read layout results and never participate in
// line-tree mutation.
package selection

import (
	"sort"

	"github.com/dshills/textweave/core"
	"github.com/dshills/textweave/layout"
)

// Affinity distinguishes which side of a wrap boundary a caret at that
// offset belongs to.
type Affinity uint8

const (
	// AffinityDownstream places the caret at the start of the following
	// fragment.
	AffinityDownstream Affinity = iota
	// AffinityUpstream places the caret at the end of the preceding
	// fragment.
	AffinityUpstream
)

// String returns a readable affinity name.
func (a Affinity) String() string {
	if a == AffinityUpstream {
		return "upstream"
	}
	return "downstream"
}

// Selection is one contiguous selected span. A zero-length selection is a
// caret.
type Selection struct {
	Range    core.Range
	Affinity Affinity
}

// IsCaret reports whether the selection is a bare insertion point.
func (s Selection) IsCaret() bool {
	return s.Range.Length == 0
}

// Manager holds an ordered set of selections over one layout manager.
type Manager struct {
	layout     *layout.Manager
	selections []Selection
}

// NewManager creates a selection manager bound to a layout manager.
func NewManager(lm *layout.Manager) *Manager {
	return &Manager{layout: lm}
}

// Set replaces all selections, normalizing them into document order and
// merging overlaps.
func (m *Manager) Set(sels ...Selection) {
	m.selections = append(m.selections[:0], sels...)
	sort.Slice(m.selections, func(i, j int) bool {
		return m.selections[i].Range.Location < m.selections[j].Range.Location
	})

	merged := m.selections[:0]
	for _, s := range m.selections {
		if n := len(merged); n > 0 && merged[n-1].Range.Touches(s.Range) {
			merged[n-1].Range = merged[n-1].Range.Union(s.Range)
			continue
		}
		merged = append(merged, s)
	}
	m.selections = merged
}

// All returns the current selections in document order.
func (m *Manager) All() []Selection {
	return m.selections
}

// Primary returns the first selection, or a caret at the document start
// when there is none.
func (m *Manager) Primary() Selection {
	if len(m.selections) == 0 {
		return Selection{}
	}
	return m.selections[0]
}

// TextEdited shifts selections after an edit, clamping selections that
// intersected the replaced span to a caret at the edit's end.
// Attribute-only notifications move no bytes and leave selections alone.
func (m *Manager) TextEdited(editedRange core.Range, delta int, attributeOnly bool) {
	if attributeOnly {
		return
	}
	old := core.NewRange(editedRange.Location, editedRange.Length-delta)
	for i := range m.selections {
		r := &m.selections[i].Range
		switch {
		case r.Location >= old.Max():
			*r = r.Shifted(delta)
		case r.Max() <= old.Location:
			// Before the edit, untouched.
		default:
			*r = core.NewRange(editedRange.Max(), 0)
		}
	}
}

// Rects resolves every selection into highlight rectangles. Carets yield
// a single zero-width rectangle.
func (m *Manager) Rects() []core.Rect {
	var rects []core.Rect
	for _, s := range m.selections {
		if s.IsCaret() {
			if r, ok := m.CaretRect(s); ok {
				rects = append(rects, r)
			}
			continue
		}
		rects = append(rects, m.layout.RectsForRange(s.Range)...)
	}
	return rects
}

// CaretRect resolves a caret selection to a zero-width rectangle,
// honoring upstream affinity at wrap boundaries.
func (m *Manager) CaretRect(s Selection) (core.Rect, bool) {
	r, ok := m.layout.RectForOffset(s.Range.Location)
	if !ok {
		return core.Rect{}, false
	}
	if s.Affinity == AffinityUpstream && r.X == 0 && s.Range.Location > 0 {
		// An upstream caret at a fragment start renders at the end of
		// the previous cluster instead.
		if prev, ok := m.layout.RectForOffset(s.Range.Location - 1); ok && prev.Y < r.Y {
			return core.Rect{X: prev.MaxX(), Y: prev.Y, Height: prev.Height}, true
		}
	}
	return core.Rect{X: r.X, Y: r.Y, Height: r.Height}, true
}

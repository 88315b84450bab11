// Package emphasis manages transient range decorations: search-match
// outlines, bracket-pair flashes, and similar short-lived highlights.
// Emphases are drawn from layout query results and never affect line
// breaking or tree structure.
package emphasis

import (
	"time"

	"github.com/google/uuid"

	"github.com/dshills/textweave/core"
	"github.com/dshills/textweave/layout"
)

// Style selects how an emphasis is drawn.
type Style uint8

const (
	// StyleUnderline draws a line under the range.
	StyleUnderline Style = iota
	// StyleOutline draws a border around the range's rectangles.
	StyleOutline
	// StyleFill fills the range's rectangles.
	StyleFill
)

// String returns a readable style name.
func (s Style) String() string {
	switch s {
	case StyleOutline:
		return "outline"
	case StyleFill:
		return "fill"
	default:
		return "underline"
	}
}

// flashDuration is how long a flash emphasis stays visible.
const flashDuration = 300 * time.Millisecond

// Emphasis is one active decoration.
type Emphasis struct {
	ID    uuid.UUID
	Range core.Range
	Style Style

	// Flash marks the emphasis for automatic expiry.
	Flash bool

	expiresAt time.Time
}

// Decoration pairs an emphasis with its resolved rectangles for drawing.
type Decoration struct {
	Emphasis Emphasis
	Rects    []core.Rect
}

// Manager holds the active emphases for one layout manager.
type Manager struct {
	layout *layout.Manager
	items  []Emphasis
	now    func() time.Time
}

// NewManager creates an emphasis manager bound to a layout manager.
func NewManager(lm *layout.Manager) *Manager {
	return &Manager{layout: lm, now: time.Now}
}

// Add registers an emphasis and returns its id. Flash emphases expire
// automatically on the next Expire call after their deadline.
func (m *Manager) Add(r core.Range, style Style, flash bool) uuid.UUID {
	e := Emphasis{
		ID:    uuid.New(),
		Range: r,
		Style: style,
		Flash: flash,
	}
	if flash {
		e.expiresAt = m.now().Add(flashDuration)
	}
	m.items = append(m.items, e)
	return e.ID
}

// Remove drops the emphasis with the given id.
func (m *Manager) Remove(id uuid.UUID) bool {
	for i, e := range m.items {
		if e.ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveAll drops every emphasis.
func (m *Manager) RemoveAll() {
	m.items = m.items[:0]
}

// Expire drops flash emphases whose deadline has passed and reports how
// many were removed. Hosts call this from their frame or timer loop.
func (m *Manager) Expire() int {
	now := m.now()
	kept := m.items[:0]
	removed := 0
	for _, e := range m.items {
		if e.Flash && !now.Before(e.expiresAt) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	m.items = kept
	return removed
}

// TextEdited shifts emphases after an edit and drops any that intersected
// the replaced span. Attribute-only notifications leave emphases alone.
func (m *Manager) TextEdited(editedRange core.Range, delta int, attributeOnly bool) {
	if attributeOnly {
		return
	}
	old := core.NewRange(editedRange.Location, editedRange.Length-delta)
	kept := m.items[:0]
	for _, e := range m.items {
		switch {
		case e.Range.Location >= old.Max():
			e.Range = e.Range.Shifted(delta)
		case e.Range.Max() <= old.Location:
			// Before the edit, untouched.
		default:
			continue
		}
		kept = append(kept, e)
	}
	m.items = kept
}

// All returns the active emphases.
func (m *Manager) All() []Emphasis {
	return m.items
}

// Decorations resolves every active emphasis to its draw rectangles.
func (m *Manager) Decorations() []Decoration {
	decs := make([]Decoration, 0, len(m.items))
	for _, e := range m.items {
		decs = append(decs, Decoration{
			Emphasis: e,
			Rects:    m.layout.RectsForRange(e.Range),
		})
	}
	return decs
}

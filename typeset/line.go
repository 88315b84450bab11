package typeset

import (
	"github.com/dshills/textweave/linetree"
)

// Line is the lazy layout state of one logical line: the opaque payload
// the line tree carries per node. Fragments are computed on demand and
// dropped whenever the line is invalidated.
type Line struct {
	needsLayout bool
	lastWidth   float64

	// fragments stores the line's visual fragments in their own small
	// order-statistics tree, keyed by fragment length and scaled height,
	// so a y offset within the line resolves in O(log n).
	fragments *linetree.Tree[*Fragment]
}

// NewLine creates a line that has never been laid out.
func NewLine() *Line {
	return &Line{needsLayout: true}
}

// NeedsLayout reports whether the line must be re-typeset for the given
// wrap width. A line needs layout if explicitly marked, never laid out,
// or laid out against a different width while wrapping is width-sensitive.
func (l *Line) NeedsLayout(forWidth float64, widthSensitive bool) bool {
	if l.needsLayout || l.fragments == nil {
		return true
	}
	return widthSensitive && l.lastWidth != forWidth
}

// SetNeedsLayout clears the line's fragments and marks it dirty.
func (l *Line) SetNeedsLayout() {
	l.needsLayout = true
	l.fragments = nil
}

// SetFragments installs freshly typeset fragments measured against the
// given wrap width and clears the dirty flag.
func (l *Line) SetFragments(frags []*Fragment, forWidth float64) {
	items := make([]linetree.BuildItem[*Fragment], len(frags))
	for i, f := range frags {
		items[i] = linetree.BuildItem[*Fragment]{
			Data:   f,
			Length: f.DocumentRange.Length,
			Height: f.ScaledHeight,
		}
	}
	estimate := 0.0
	if len(frags) > 0 {
		estimate = frags[0].ScaledHeight
	}
	l.fragments = linetree.Build(items, estimate)
	l.lastWidth = forWidth
	l.needsLayout = false
}

// Height returns the summed scaled height of the line's fragments, or 0
// if the line has not been laid out.
func (l *Line) Height() float64 {
	if l.fragments == nil {
		return 0
	}
	return l.fragments.TotalHeight()
}

// MaxFragmentWidth returns the widest fragment's width, for horizontal
// scroll-extent reporting.
func (l *Line) MaxFragmentWidth() float64 {
	widest := 0.0
	l.EachFragment(func(f *Fragment, _ float64) bool {
		if f.Width > widest {
			widest = f.Width
		}
		return true
	})
	return widest
}

// FragmentCount returns the number of fragments, or 0 before layout.
func (l *Line) FragmentCount() int {
	if l.fragments == nil {
		return 0
	}
	return l.fragments.Count()
}

// FragmentAtPosition resolves the fragment containing the given y offset
// within the line.
func (l *Line) FragmentAtPosition(y float64) (*Fragment, bool) {
	if l.fragments == nil {
		return nil, false
	}
	pos, ok := l.fragments.LineAtPosition(y)
	if !ok {
		return nil, false
	}
	return pos.Data, true
}

// FragmentAtOffset resolves the fragment containing the given offset
// relative to the line start.
func (l *Line) FragmentAtOffset(rel int) (*Fragment, float64, bool) {
	if l.fragments == nil {
		return nil, 0, false
	}
	pos, ok := l.fragments.LineAt(rel)
	if !ok {
		return nil, 0, false
	}
	return pos.Data, pos.YPos, true
}

// EachFragment walks the fragments in visual order with each fragment's y
// offset within the line, stopping early if fn returns false.
func (l *Line) EachFragment(fn func(f *Fragment, y float64) bool) {
	if l.fragments == nil {
		return
	}
	it := l.fragments.Lines()
	for it.Next() {
		pos := it.Line()
		if !fn(pos.Data, pos.YPos) {
			return
		}
	}
}

// CoversLength reports whether the laid-out fragments span the given line
// length with no gap, meaning every fragment has been placed.
func (l *Line) CoversLength(length int) bool {
	if l.fragments == nil {
		return false
	}
	return l.fragments.Length() == length
}

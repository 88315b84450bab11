package layout

import (
	"github.com/dshills/textweave/core"
	"github.com/dshills/textweave/linetree"
	"github.com/dshills/textweave/typeset"
)

// LineForOffset resolves the line containing the given document offset.
func (m *Manager) LineForOffset(offset int) (linetree.LinePosition[*typeset.Line], bool) {
	return m.tree.LineAt(offset)
}

// LineForIndex resolves the line at the given zero-based index.
func (m *Manager) LineForIndex(index int) (linetree.LinePosition[*typeset.Line], bool) {
	return m.tree.LineAtIndex(index)
}

// LineForPosition resolves the line containing the given y offset.
func (m *Manager) LineForPosition(y float64) (linetree.LinePosition[*typeset.Line], bool) {
	return m.tree.LineAtPosition(y)
}

// OffsetAtPoint maps a layout-space point to the nearest document offset,
// snapping to grapheme cluster starts. Points below the last line resolve
// to the end of the document; points past a fragment's right edge resolve
// to the end of its content, before any line terminator.
func (m *Manager) OffsetAtPoint(p core.Point) (int, bool) {
	line, ok := m.tree.LineAtPosition(p.Y)
	if !ok {
		if p.Y < 0 || m.tree.Count() == 0 {
			return 0, false
		}
		return m.tree.Length(), true
	}

	frag, ok := line.Data.FragmentAtPosition(p.Y - line.YPos)
	if !ok {
		return line.Range.Location, true
	}

	x := 0.0
	for _, run := range frag.Runs {
		if p.X >= x+run.Width {
			x += run.Width
			continue
		}
		if run.IsAttachment {
			return run.Range.Location, true
		}
		text := m.text.Slice(run.Range)
		n := m.ts.Shaper().ClusterBreak(text, p.X-x)
		// ClusterBreak always consumes at least one cluster; a point
		// inside the first cluster still maps to its start.
		if n > 0 && m.ts.Shaper().Shape(text[:n], false).Width > p.X-x {
			n = 0
		}
		return run.Range.Location + n, true
	}
	return fragmentContentEnd(m.text, frag), true
}

// RectForOffset returns the bounding rectangle of the grapheme cluster at
// the given offset. At a line or document end the rectangle has zero
// width, marking the caret position.
func (m *Manager) RectForOffset(offset int) (core.Rect, bool) {
	line, ok := m.tree.LineAt(offset)
	if !ok {
		return core.Rect{}, false
	}
	frag, fragY, ok := line.Data.FragmentAtOffset(offset - line.Range.Location)
	if !ok {
		return core.Rect{
			Y:      line.YPos,
			Height: line.Height,
		}, true
	}

	x := m.fragmentX(frag, offset)
	return core.Rect{
		X:      x,
		Y:      line.YPos + fragY,
		Width:  m.clusterWidthAt(frag, offset),
		Height: frag.ScaledHeight,
	}, true
}

// RectsForRange returns one rectangle per visual fragment row the range
// touches, clipped horizontally to the range's extent.
func (m *Manager) RectsForRange(r core.Range) []core.Rect {
	var rects []core.Rect
	it := m.tree.LinesInRange(r)
	for it.Next() {
		line := it.Line()
		line.Data.EachFragment(func(f *typeset.Fragment, y float64) bool {
			if f.DocumentRange.Location >= r.Max() {
				return false
			}
			clip, ok := f.DocumentRange.Intersection(r)
			if !ok {
				return true
			}
			x0 := m.fragmentX(f, clip.Location)
			x1 := m.fragmentX(f, clip.Max())
			rects = append(rects, core.Rect{
				X:      x0,
				Y:      line.YPos + y,
				Width:  x1 - x0,
				Height: f.ScaledHeight,
			})
			return true
		})
	}
	return rects
}

// fragmentX computes the x position of an offset inside a fragment by
// summing run widths before it and measuring the partial run it lands in.
func (m *Manager) fragmentX(frag *typeset.Fragment, offset int) float64 {
	x := 0.0
	for _, run := range frag.Runs {
		if offset >= run.Range.Max() {
			x += run.Width
			continue
		}
		if offset <= run.Range.Location || run.IsAttachment {
			return x
		}
		prefix := m.text.Slice(core.RangeFromBounds(run.Range.Location, offset))
		return x + m.ts.Shaper().Shape(prefix, false).Width
	}
	return x
}

// clusterWidthAt measures the grapheme cluster starting at offset, or 0
// when offset is not inside the fragment's content.
func (m *Manager) clusterWidthAt(frag *typeset.Fragment, offset int) float64 {
	for _, run := range frag.Runs {
		if offset < run.Range.Location || offset >= run.Range.Max() {
			continue
		}
		if run.IsAttachment {
			return run.Width
		}
		rest := m.text.Slice(core.RangeFromBounds(offset, run.Range.Max()))
		n := m.ts.Shaper().ClusterBreak(rest, 0)
		if n == 0 {
			return 0
		}
		return m.ts.Shaper().Shape(rest[:n], false).Width
	}
	return 0
}

// fragmentContentEnd returns the offset after the fragment's visible
// content, stepping back over a trailing line terminator.
func fragmentContentEnd(text core.TextSource, frag *typeset.Fragment) int {
	end := frag.DocumentRange.Max()
	if frag.DocumentRange.Length == 0 {
		return end
	}
	s := text.Slice(frag.DocumentRange)
	if len(s) >= 2 && s[len(s)-2:] == "\r\n" {
		return end - 2
	}
	if len(s) >= 1 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		return end - 1
	}
	return end
}

package layout

import (
	"github.com/dshills/textweave/core"
	"github.com/dshills/textweave/linetree"
	"github.com/dshills/textweave/typeset"
)

// LayoutFor typesets every dirty line whose vertical extent falls in
// [minY, maxY], padded by the configured overscan. Height changes are
// folded back into the line tree as they are discovered, so line y
// positions stay consistent throughout the pass. Delegate callbacks fire
// once at the end and must not trigger another pass or an edit.
func (m *Manager) LayoutFor(minY, maxY float64) {
	if m.inLayout {
		m.contractViolation("re-entrant LayoutFor")
		return
	}
	if m.txDepth > 0 {
		m.pendingPass = true
		m.lastMinY, m.lastMaxY = minY, maxY
		return
	}
	m.inLayout = true
	defer func() { m.inLayout = false }()
	m.lastMinY, m.lastMaxY = minY, maxY

	top := minY - m.overscan
	if top < 0 {
		top = 0
	}
	bottom := maxY + m.overscan

	count := m.tree.Count()
	if count == 0 {
		return
	}

	start, ok := m.tree.LineAtPosition(top)
	if !ok {
		start, _ = m.tree.LineAtIndex(count - 1)
	}
	end, ok := m.tree.LineAtPosition(bottom)
	if !ok {
		end, _ = m.tree.LineAtIndex(count - 1)
	}

	firstIdx, lastIdx := m.mergeAttachmentSpans(start.Index, end.Index)

	width := m.typesetWidth()
	heightBefore := m.tree.TotalHeight()
	scrollDelta := 0.0
	maxWidth := m.contentWidth

	for idx := firstIdx; idx < m.tree.Count(); idx++ {
		pos, ok := m.tree.LineAtIndex(idx)
		if !ok {
			break
		}
		if idx > lastIdx && pos.YPos > bottom {
			break
		}
		if pos.Data.NeedsLayout(width, m.wrapEnabled) || !pos.Data.CoversLength(pos.Range.Length) {
			m.typesetLine(pos, width)
			newHeight := pos.Data.Height()
			if d := newHeight - pos.Height; d != 0 {
				m.tree.Update(pos.Range.Location, 0, d)
				if pos.YPos+pos.Height <= minY {
					scrollDelta += d
				}
			}
		}
		if w := pos.Data.MaxFragmentWidth(); w > maxWidth {
			maxWidth = w
		}
	}

	if h := m.tree.TotalHeight(); h != heightBefore {
		m.delegate.LayoutHeightChanged(h)
	}
	if maxWidth > m.contentWidth {
		m.contentWidth = maxWidth
		m.delegate.LayoutMaxWidthChanged(maxWidth)
	}
	if scrollDelta != 0 {
		m.delegate.LayoutAdjustScroll(scrollDelta)
	}
}

// mergeAttachmentSpans widens an index window until every attachment
// overlapping it lies entirely inside, so an attachment spanning several
// lines is always typeset with all of its lines in one pass. The search
// is bounded; a pathological chain is cut off with a warning.
func (m *Manager) mergeAttachmentSpans(firstIdx, lastIdx int) (int, int) {
	for i := 0; ; i++ {
		fp, ok := m.tree.LineAtIndex(firstIdx)
		if !ok {
			break
		}
		lp, ok := m.tree.LineAtIndex(lastIdx)
		if !ok {
			break
		}
		window := core.RangeFromBounds(fp.Range.Location, lp.Range.Max())

		grew := false
		for _, a := range m.attachments.Overlapping(window) {
			if a.Range.Location < window.Location {
				if p, ok := m.tree.LineAt(a.Range.Location); ok && p.Index < firstIdx {
					firstIdx = p.Index
					grew = true
				}
			}
			if over := a.Range.Max(); over > window.Max() {
				if over > m.tree.Length() {
					over = m.tree.Length()
				}
				if p, ok := m.tree.LineAt(over); ok && p.Index > lastIdx {
					lastIdx = p.Index
					grew = true
				}
			}
		}
		if !grew {
			break
		}
		if i+1 >= mergeRecursionLimit {
			m.log.Warn().
				Int("limit", mergeRecursionLimit).
				Msg("attachment span merging did not converge")
			break
		}
	}
	return firstIdx, lastIdx
}

// typesetLine runs the typesetter over one line and installs the result.
func (m *Manager) typesetLine(pos linetree.LinePosition[*typeset.Line], width float64) {
	pos.Data.SetFragments(m.ts.Typeset(typeset.Context{
		Text:                 m.text.Slice(pos.Range),
		DocumentRange:        pos.Range,
		MaxWidth:             width,
		LineHeightMultiplier: m.multiplier,
		Strategy:             m.strategy,
		MarkedRanges:         m.marked,
		Attachments:          m.attachments.Overlapping(pos.Range),
	}), width)
}

// SetLineHeightMultiplier changes the vertical scale and invalidates the
// whole document.
func (m *Manager) SetLineHeightMultiplier(mult float64) {
	if mult <= 0 || mult == m.multiplier {
		return
	}
	m.multiplier = mult
	it := m.tree.Lines()
	for it.Next() {
		it.Line().Data.SetNeedsLayout()
	}
}

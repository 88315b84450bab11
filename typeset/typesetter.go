// Package typeset turns a logical line's text and attachments into wrapped
// visual fragments.
//
// The typesetter partitions a line into alternating text and attachment
// content runs, then walks each text run suggesting break points on
// grapheme cluster boundaries within the remaining width budget.
// Attachments are atomic: one never splits across fragments, and one wider
// than the whole budget still gets a fragment of its own.
package typeset

import (
	"unicode"
	"unicode/utf8"

	"github.com/dshills/textweave/attachment"
	"github.com/dshills/textweave/core"
	"github.com/dshills/textweave/shaping"
)

// BreakStrategy selects how line breaks are chosen.
type BreakStrategy uint8

const (
	// BreakWord breaks at the nearest whitespace or punctuation boundary
	// within reach of the overflow point, falling back to a character
	// break when none is found.
	BreakWord BreakStrategy = iota

	// BreakCharacter breaks at the first grapheme cluster boundary that
	// exceeds the width.
	BreakCharacter
)

// wordBreakSearchLimit bounds the backward walk from an overflow point to
// a whitespace/punctuation boundary.
const wordBreakSearchLimit = 100

// Context carries everything needed to typeset one logical line.
type Context struct {
	// Text is the line's full text, including its line-ending terminator.
	Text string

	// DocumentRange is the line's absolute document span.
	DocumentRange core.Range

	// MaxWidth is the wrap width budget; zero or negative means
	// unlimited.
	MaxWidth float64

	// LineHeightMultiplier scales fragment heights; zero means 1.
	LineHeightMultiplier float64

	// Strategy selects the break algorithm.
	Strategy BreakStrategy

	// MarkedRanges are IME composition spans in absolute offsets. They
	// style the shaped runs but never affect break decisions.
	MarkedRanges []core.Range

	// Attachments are the attachments overlapping this line, in document
	// order. Spans are clipped to the line's range during layout.
	Attachments []attachment.Anchored
}

// Typesetter computes visual fragments using a shaping strategy.
type Typesetter struct {
	shaper shaping.Shaper
}

// New creates a typesetter over the given shaper.
func New(shaper shaping.Shaper) *Typesetter {
	return &Typesetter{shaper: shaper}
}

// Shaper returns the measurement strategy in use.
func (ts *Typesetter) Shaper() shaping.Shaper {
	return ts.shaper
}

// Typeset lays out one logical line into ordered fragments. Every line
// produces at least one fragment; an empty line yields a single zero-width
// fragment at the estimated line height.
func (ts *Typesetter) Typeset(lctx Context) []*Fragment {
	mult := lctx.LineHeightMultiplier
	if mult <= 0 {
		mult = 1
	}

	if len(lctx.Text) == 0 {
		h := ts.shaper.LineHeight()
		return []*Fragment{{
			DocumentRange: core.NewRange(lctx.DocumentRange.Location, 0),
			Height:        h,
			ScaledHeight:  h * mult,
		}}
	}

	st := &setterState{
		ts:    ts,
		lctx:  lctx,
		mult:  mult,
		pos:   lctx.DocumentRange.Location,
		start: lctx.DocumentRange.Location,
	}

	for _, run := range partition(lctx) {
		if run.att != nil {
			st.placeAttachment(run)
		} else {
			st.placeText(run)
		}
	}
	st.flush(false)
	return st.fragments
}

// contentRun is one partition of the line: a text span or an attachment
// span clipped to the line's range.
type contentRun struct {
	r   core.Range
	att attachment.Attachment // nil for text runs
}

// partition splits the line's range into alternating text and attachment
// runs. When attachments overlap, the earliest-starting one is active and
// the later one is ignored for layout.
func partition(lctx Context) []contentRun {
	var runs []contentRun
	pos := lctx.DocumentRange.Location
	end := lctx.DocumentRange.Max()

	for _, a := range lctx.Attachments {
		clipped, ok := a.Range.Intersection(lctx.DocumentRange)
		if !ok || clipped.Location < pos {
			continue // outside the line, or overlapped by a previous attachment
		}
		if clipped.Location > pos {
			runs = append(runs, contentRun{r: core.RangeFromBounds(pos, clipped.Location)})
		}
		runs = append(runs, contentRun{r: clipped, att: a.Attachment})
		pos = clipped.Max()
	}
	if pos < end {
		runs = append(runs, contentRun{r: core.RangeFromBounds(pos, end)})
	}
	return runs
}

// setterState accumulates runs into the fragment under construction.
type setterState struct {
	ts   *Typesetter
	lctx Context
	mult float64

	fragments []*Fragment
	current   []Run

	start int // absolute offset where the current fragment begins
	pos   int // absolute offset consumed so far
	used  float64
}

func (st *setterState) limited() bool {
	return st.lctx.MaxWidth > 0
}

func (st *setterState) budget() float64 {
	if !st.limited() {
		return 0
	}
	b := st.lctx.MaxWidth - st.used
	if b < 0 {
		b = 0
	}
	return b
}

// placeAttachment appends an atomic attachment run, flushing first when it
// would overflow the remaining width.
func (st *setterState) placeAttachment(run contentRun) {
	w := run.att.Width()
	if st.limited() && len(st.current) > 0 && st.used+w > st.lctx.MaxWidth {
		st.flush(true)
	}
	st.current = append(st.current, Run{
		Range:        run.r,
		Width:        w,
		Attachment:   run.att,
		IsAttachment: true,
	})
	st.pos = run.r.Max()
	st.used += w
	if st.limited() && st.used >= st.lctx.MaxWidth {
		st.flush(true)
	}
}

// placeText consumes a text run, emitting fragments at each break point.
func (st *setterState) placeText(run contentRun) {
	text := st.lctx.Text[run.r.Location-st.lctx.DocumentRange.Location : run.r.Max()-st.lctx.DocumentRange.Location]

	for len(text) > 0 {
		if !st.limited() {
			st.appendText(text)
			return
		}

		n := st.ts.shaper.ClusterBreak(text, st.budget())
		if n >= len(text) {
			st.appendText(text)
			return
		}

		n = st.adjustBreak(text, n)
		st.appendText(text[:n])
		text = text[n:]
		st.flush(true)
	}
}

// adjustBreak applies the break strategy's refinements to a raw cluster
// break at byte offset n inside text.
func (st *setterState) adjustBreak(text string, n int) int {
	// Never split a CRLF pair; if the break lands between \r and \n,
	// advance one more position.
	if n > 0 && n < len(text) && text[n-1] == '\r' && text[n] == '\n' {
		n++
	}
	if st.lctx.Strategy != BreakWord || n >= len(text) {
		return n
	}
	if isBreakBoundary(text, n) {
		return n
	}

	// Walk backward, bounded, to the nearest whitespace/punctuation
	// boundary; keep the raw break when none is close enough.
	walked := 0
	for j := n; j > 0 && walked < wordBreakSearchLimit; walked++ {
		r, size := utf8.DecodeLastRuneInString(text[:j])
		if r == utf8.RuneError && size <= 1 {
			j--
			continue
		}
		j -= size
		if j > 0 && isBreakBoundary(text, j) {
			return j
		}
	}
	return n
}

// isBreakBoundary reports whether position n in text sits just after a
// whitespace or punctuation rune.
func isBreakBoundary(text string, n int) bool {
	r, size := utf8.DecodeLastRuneInString(text[:n])
	if size == 0 {
		return false
	}
	return unicode.IsSpace(r) || unicode.IsPunct(r)
}

// appendText shapes a text span and appends it to the current fragment,
// splitting it at marked-range boundaries so IME spans carry their
// attribute.
func (st *setterState) appendText(text string) {
	spanStart := st.pos
	for _, piece := range splitMarked(core.NewRange(spanStart, len(text)), st.lctx.MarkedRanges) {
		sub := text[piece.r.Location-spanStart : piece.r.Max()-spanStart]
		shaped := st.ts.shaper.Shape(sub, piece.marked)
		st.current = append(st.current, Run{
			Range:  piece.r,
			Width:  shaped.Width,
			Shaped: shaped,
		})
		st.used += shaped.Width
	}
	st.pos += len(text)
}

// markedPiece is a sub-span of a text run with its IME attribute resolved.
type markedPiece struct {
	r      core.Range
	marked bool
}

// splitMarked cuts a span at marked-range boundaries.
func splitMarked(span core.Range, marked []core.Range) []markedPiece {
	pieces := []markedPiece{{r: span}}
	for _, m := range marked {
		var next []markedPiece
		for _, p := range pieces {
			if p.marked {
				next = append(next, p)
				continue
			}
			overlap, ok := p.r.Intersection(m)
			if !ok {
				next = append(next, p)
				continue
			}
			if overlap.Location > p.r.Location {
				next = append(next, markedPiece{r: core.RangeFromBounds(p.r.Location, overlap.Location)})
			}
			next = append(next, markedPiece{r: overlap, marked: true})
			if overlap.Max() < p.r.Max() {
				next = append(next, markedPiece{r: core.RangeFromBounds(overlap.Max(), p.r.Max())})
			}
		}
		pieces = next
	}
	return pieces
}

// flush emits the fragment covering [start, pos) and resets the
// accumulator. A mid-line flush with nothing accumulated is a no-op; the
// final flush always emits so every line has at least one fragment.
func (st *setterState) flush(midLine bool) {
	if midLine && st.pos == st.start {
		return
	}
	if !midLine && len(st.fragments) > 0 && st.pos == st.start {
		return
	}

	frag := &Fragment{
		DocumentRange: core.RangeFromBounds(st.start, st.pos),
		Runs:          st.current,
	}
	height := 0.0
	descent := 0.0
	hasText := false
	for _, r := range frag.Runs {
		frag.Width += r.Width
		if !r.IsAttachment {
			hasText = true
			if h := r.Shaped.Metrics.Height(); h > height {
				height = h
			}
			if r.Shaped.Metrics.Descent > descent {
				descent = r.Shaped.Metrics.Descent
			}
		}
	}
	if !hasText && height == 0 {
		height = st.ts.shaper.LineHeight()
	}
	frag.Height = height
	frag.Descent = descent
	frag.ScaledHeight = height * st.mult

	st.fragments = append(st.fragments, frag)
	st.start = st.pos
	st.current = nil
	st.used = 0
}

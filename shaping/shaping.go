// Package shaping defines the measurement strategy the typesetter uses to
// turn text into sized runs.
//
// Real glyph shaping belongs to the embedding shell's font stack; the
// layout core only needs widths and vertical metrics. Shaper is the
// swappable boundary for that, with a monospace implementation as the
// always-working default.
package shaping

import (
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// Metrics are the vertical measurements of a shaped run.
type Metrics struct {
	Ascent  float64
	Descent float64
	Leading float64
}

// Height returns the run's total line height: ascent + descent + leading.
func (m Metrics) Height() float64 {
	return m.Ascent + m.Descent + m.Leading
}

// Run is a measured span of text ready for drawing. The layout core never
// draws; it hands runs to the rendering collaborator.
type Run struct {
	Text    string
	Width   float64
	Metrics Metrics

	// Marked is set for IME composition spans, which receive an
	// underline attribute but do not affect line breaking.
	Marked bool
}

// Shaper measures text for the typesetter. Implementations must be
// deterministic: shaping the same text twice yields identical runs.
type Shaper interface {
	// Shape measures a text span into a run.
	Shape(text string, marked bool) Run

	// ClusterBreak returns the byte length of the longest prefix of text
	// that fits in the width budget without splitting a grapheme
	// cluster. Non-empty text always consumes at least one cluster, so
	// layout makes progress even with a zero budget.
	ClusterBreak(text string, budget float64) int

	// LineHeight returns the height of a line with no measurable text,
	// used for empty lines and initial estimates.
	LineHeight() float64
}

// Monospace is the default shaper: every terminal cell is CellWidth wide,
// with fixed vertical metrics. Grapheme segmentation follows Unicode
// cluster boundaries; cell counts follow East Asian width rules.
type Monospace struct {
	CellWidth float64
	Metrics   Metrics
}

// NewMonospace creates a monospace shaper with typical terminal-font
// proportions for the given cell width.
func NewMonospace(cellWidth float64) *Monospace {
	return &Monospace{
		CellWidth: cellWidth,
		Metrics: Metrics{
			Ascent:  cellWidth * 1.6,
			Descent: cellWidth * 0.4,
		},
	}
}

// Shape measures text as grapheme clusters of whole cells.
func (m *Monospace) Shape(text string, marked bool) Run {
	return Run{
		Text:    text,
		Width:   m.measure(text),
		Metrics: m.Metrics,
		Marked:  marked,
	}
}

// ClusterBreak walks grapheme clusters until the next cluster would exceed
// the budget.
func (m *Monospace) ClusterBreak(text string, budget float64) int {
	consumed := 0
	used := 0.0
	state := -1
	rest := text
	for len(rest) > 0 {
		cluster, tail, _, newState := uniseg.StepString(rest, state)
		w := m.clusterWidth(cluster)
		// Zero-width clusters (line terminators, combining marks folded
		// into the previous cluster) can never overflow the budget.
		if consumed > 0 && w > 0 && used+w > budget {
			break
		}
		consumed += len(cluster)
		used += w
		rest = tail
		state = newState
	}
	return consumed
}

// LineHeight returns the fixed cell height.
func (m *Monospace) LineHeight() float64 {
	return m.Metrics.Height()
}

func (m *Monospace) measure(text string) float64 {
	total := 0.0
	state := -1
	for len(text) > 0 {
		cluster, rest, _, newState := uniseg.StepString(text, state)
		total += m.clusterWidth(cluster)
		text = rest
		state = newState
	}
	return total
}

// clusterWidth returns the pixel width of one grapheme cluster. Line
// terminators and other zero-width content take no space.
func (m *Monospace) clusterWidth(cluster string) float64 {
	return float64(runewidth.StringWidth(cluster)) * m.CellWidth
}

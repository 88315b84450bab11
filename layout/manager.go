// Package layout coordinates the line tree, attachment index, and
// typesetter into an incrementally invalidated document layout.
//
// The Manager receives raw text-edit notifications from the text storage,
// keeps the line tree's structure in sync (splitting, merging, and
// deleting lines), and lazily re-typesets only the dirty lines inside a
// requested vertical window. Everything runs on one logical thread; the
// package does no locking of its own.
package layout

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/dshills/textweave/attachment"
	"github.com/dshills/textweave/core"
	"github.com/dshills/textweave/linetree"
	"github.com/dshills/textweave/shaping"
	"github.com/dshills/textweave/typeset"
)

// Delegate receives layout side effects, batched to one call set per
// layout pass. Implementations must not trigger another layout pass from
// inside a callback.
type Delegate interface {
	// LayoutHeightChanged reports the document's new total height.
	LayoutHeightChanged(totalHeight float64)

	// LayoutMaxWidthChanged reports a new widest discovered line.
	LayoutMaxWidthChanged(width float64)

	// LayoutAdjustScroll asks the viewport to compensate for height
	// changes above the visible window, avoiding a visual jump.
	LayoutAdjustScroll(deltaY float64)
}

// nopDelegate keeps the delegate optional.
type nopDelegate struct{}

func (nopDelegate) LayoutHeightChanged(float64)   {}
func (nopDelegate) LayoutMaxWidthChanged(float64) {}
func (nopDelegate) LayoutAdjustScroll(float64)    {}

// mergeRecursionLimit bounds the visible-span merging fixed-point search.
// Pathological attachment chains can exceed it; the merge then returns
// its best effort and logs a warning.
const mergeRecursionLimit = 10

// Manager owns the document layout state.
type Manager struct {
	tree        *linetree.Tree[*typeset.Line]
	attachments attachment.Index
	ts          *typeset.Typesetter
	text        core.TextSource
	delegate    Delegate
	log         zerolog.Logger

	wrapEnabled bool
	wrapWidth   float64
	multiplier  float64
	strategy    typeset.BreakStrategy
	overscan    float64
	marked      []core.Range

	detectedEnding LineEnding

	inLayout     bool
	txDepth      int
	pendingPass  bool
	lastMinY     float64
	lastMaxY     float64
	contentWidth float64

	debugChecks bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithWrapWidth enables wrapping at the given width.
func WithWrapWidth(width float64) Option {
	return func(m *Manager) {
		m.wrapEnabled = width > 0
		m.wrapWidth = width
	}
}

// WithBreakStrategy selects word or character breaking.
func WithBreakStrategy(s typeset.BreakStrategy) Option {
	return func(m *Manager) {
		m.strategy = s
	}
}

// WithLineHeightMultiplier scales every fragment's layout height.
func WithLineHeightMultiplier(mult float64) Option {
	return func(m *Manager) {
		if mult > 0 {
			m.multiplier = mult
		}
	}
}

// WithOverscan pads layout windows vertically so neighboring lines are
// typeset before they scroll into view.
func WithOverscan(pad float64) Option {
	return func(m *Manager) {
		if pad >= 0 {
			m.overscan = pad
		}
	}
}

// WithDelegate registers the viewport callback receiver.
func WithDelegate(d Delegate) Option {
	return func(m *Manager) {
		if d != nil {
			m.delegate = d
		}
	}
}

// WithLogger sets the logger used for degenerate-input warnings.
func WithLogger(log zerolog.Logger) Option {
	return func(m *Manager) {
		m.log = log
	}
}

// WithDebugChecks makes contract violations (re-entrant layout,
// unbalanced transactions) panic instead of being ignored.
func WithDebugChecks() Option {
	return func(m *Manager) {
		m.debugChecks = true
	}
}

// NewManager creates a layout manager over the given text source and
// shaper and builds the initial line structure from the source's current
// content.
func NewManager(text core.TextSource, shaper shaping.Shaper, opts ...Option) *Manager {
	m := &Manager{
		ts:         typeset.New(shaper),
		text:       text,
		delegate:   nopDelegate{},
		multiplier: 1,
		overscan:   100,
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.Reload()
	return m
}

// Reload rebuilds the entire line structure from the text source,
// discarding all layout state including attachments and marked ranges;
// their anchors are meaningless against the new content. Used for
// initial load and for wholesale document replacement.
func (m *Manager) Reload() {
	content := m.text.Slice(core.NewRange(0, m.text.Len()))
	m.detectedEnding = DetectLineEnding(content)

	lengths := scanLineSegments(content)
	items := make([]linetree.BuildItem[*typeset.Line], len(lengths))
	for i, l := range lengths {
		items[i] = linetree.BuildItem[*typeset.Line]{Data: typeset.NewLine(), Length: l}
	}
	m.tree = linetree.Build(items, m.estimatedLineHeight())
	m.attachments = attachment.Index{}
	m.marked = m.marked[:0]
	m.contentWidth = 0
}

// DetectedLineEnding returns the dominant line ending found at load time.
func (m *Manager) DetectedLineEnding() LineEnding {
	return m.detectedEnding
}

// LineCount returns the number of logical lines.
func (m *Manager) LineCount() int {
	return m.tree.Count()
}

// DocumentLength returns the document length the tree covers.
func (m *Manager) DocumentLength() int {
	return m.tree.Length()
}

// TotalHeight returns the summed height of all lines, estimated for lines
// not yet laid out.
func (m *Manager) TotalHeight() float64 {
	return m.tree.TotalHeight()
}

// ContentWidth returns the widest line width discovered so far.
func (m *Manager) ContentWidth() float64 {
	return m.contentWidth
}

// SetWrapWidth changes the wrap width. Lines detect the change lazily
// through their needs-layout check; nothing is re-typeset until a layout
// pass covers it.
func (m *Manager) SetWrapWidth(width float64) {
	m.wrapEnabled = width > 0
	m.wrapWidth = width
}

// SetMarkedRanges replaces the IME composition ranges and invalidates the
// lines they touch.
func (m *Manager) SetMarkedRanges(ranges []core.Range) {
	for _, r := range m.marked {
		m.InvalidateRange(r)
	}
	m.marked = append(m.marked[:0], ranges...)
	for _, r := range m.marked {
		m.InvalidateRange(r)
	}
}

// AddAttachment indexes an inline attachment and invalidates the lines
// its range touches.
func (m *Manager) AddAttachment(a attachment.Attachment, r core.Range) {
	m.attachments.Add(a, r)
	m.InvalidateRange(r)
}

// RemoveAttachment removes the attachment starting at the given offset.
func (m *Manager) RemoveAttachment(atOffset int) bool {
	for _, a := range m.attachments.All() {
		if a.Range.Location == atOffset {
			m.InvalidateRange(a.Range)
			break
		}
	}
	return m.attachments.Remove(atOffset)
}

// Attachments exposes the index read-only for collaborators.
func (m *Manager) Attachments() []attachment.Anchored {
	return m.attachments.All()
}

// InvalidateRange marks every line overlapping the range as needing
// layout without touching tree structure.
func (m *Manager) InvalidateRange(r core.Range) {
	it := m.tree.LinesInRange(r)
	for it.Next() {
		it.Line().Data.SetNeedsLayout()
	}
}

// BeginTransaction suppresses layout passes until the outermost matching
// EndTransaction, which flushes exactly one pass over the last requested
// window. Transactions nest.
func (m *Manager) BeginTransaction() {
	m.txDepth++
}

// EndTransaction closes one transaction level.
func (m *Manager) EndTransaction() {
	if m.txDepth == 0 {
		if m.debugChecks {
			panic("layout: EndTransaction without BeginTransaction")
		}
		return
	}
	m.txDepth--
	if m.txDepth == 0 && m.pendingPass {
		m.pendingPass = false
		m.LayoutFor(m.lastMinY, m.lastMaxY)
	}
}

// InTransaction reports whether edits are currently being grouped.
func (m *Manager) InTransaction() bool {
	return m.txDepth > 0
}

// estimatedLineHeight is the height assumed for lines that have not been
// measured yet.
func (m *Manager) estimatedLineHeight() float64 {
	return m.ts.Shaper().LineHeight() * m.multiplier
}

// typesetWidth returns the wrap budget handed to the typesetter.
func (m *Manager) typesetWidth() float64 {
	if !m.wrapEnabled {
		return 0
	}
	return m.wrapWidth
}

// contractViolation panics under debug checks and is otherwise ignored;
// these are caller bugs, not runtime conditions.
func (m *Manager) contractViolation(format string, args ...any) {
	if m.debugChecks {
		panic("layout: " + fmt.Sprintf(format, args...))
	}
	m.log.Error().Msgf(format, args...)
}

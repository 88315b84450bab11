package typeset

import (
	"github.com/dshills/textweave/attachment"
	"github.com/dshills/textweave/core"
	"github.com/dshills/textweave/shaping"
)

// Run is one drawable element inside a fragment: either a shaped text run
// or an inline attachment reference. Exactly one of Shaped/Attachment is
// meaningful, discriminated by IsAttachment.
type Run struct {
	// Range is the absolute document span this run covers.
	Range core.Range

	// Width is the run's horizontal extent.
	Width float64

	// Shaped holds the measured text for text runs.
	Shaped shaping.Run

	// Attachment backs attachment runs.
	Attachment attachment.Attachment

	// IsAttachment distinguishes attachment runs from text runs.
	IsAttachment bool
}

// Fragment is a single visually wrapped sub-range of a logical line: the
// unit of actual on-screen layout. The fragments of a line concatenate to
// the line's full range with no gaps or overlaps.
type Fragment struct {
	// DocumentRange is the absolute offset span the fragment covers.
	DocumentRange core.Range

	// Runs are the fragment's contents in visual order.
	Runs []Run

	// Width is the sum of the constituent run widths.
	Width float64

	// Height is ascent + descent + leading from the shaping measurement.
	Height float64

	// Descent is the portion of Height below the baseline.
	Descent float64

	// ScaledHeight is Height multiplied by the line-height multiplier;
	// the height the fragment actually occupies in layout.
	ScaledHeight float64
}

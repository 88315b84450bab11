// Package attachment maintains the index of inline attachments: non-text
// objects that occupy a document range and a fixed pixel width.
//
// Attachments are kept in an array sorted by start offset and resolved by
// binary search. The index is consulted by the typesetter when it
// partitions a line into content runs, and by the layout driver when it
// merges line ranges across attachments that span line boundaries.
package attachment

import (
	"sort"

	"github.com/google/uuid"

	"github.com/dshills/textweave/core"
)

// Attachment is an inline object occupying a document range at a fixed
// width. Concrete attachment content (images, widgets) lives in the
// embedding shell; the layout core only needs geometry and identity.
type Attachment interface {
	// Width returns the fixed horizontal space the attachment occupies.
	Width() float64

	// ID returns the attachment's stable identity.
	ID() uuid.UUID
}

// Anchored pairs an attachment with its current document range.
type Anchored struct {
	Attachment Attachment
	Range      core.Range
}

// Index is the position-sorted attachment store. The zero value is ready
// to use. It is not safe for concurrent use; all access happens on the
// layout thread.
type Index struct {
	attachments []Anchored
}

// Count returns the number of indexed attachments.
func (ix *Index) Count() int {
	return len(ix.attachments)
}

// All returns the attachments in document order. The returned slice is
// the index's backing store; callers must not mutate it.
func (ix *Index) All() []Anchored {
	return ix.attachments
}

// Add inserts an attachment for the given range, keeping the array sorted
// by start offset.
func (ix *Index) Add(a Attachment, r core.Range) {
	// Strict comparison keeps equal starts in insertion order, so the
	// earliest-added attachment at an offset stays first and wins layout.
	at := sort.Search(len(ix.attachments), func(i int) bool {
		return ix.attachments[i].Range.Location > r.Location
	})
	ix.attachments = append(ix.attachments, Anchored{})
	copy(ix.attachments[at+1:], ix.attachments[at:])
	ix.attachments[at] = Anchored{Attachment: a, Range: r}
}

// Remove deletes the attachment starting exactly at the given offset.
// It returns false if no attachment starts there.
func (ix *Index) Remove(atOffset int) bool {
	at := sort.Search(len(ix.attachments), func(i int) bool {
		return ix.attachments[i].Range.Location >= atOffset
	})
	if at == len(ix.attachments) || ix.attachments[at].Range.Location != atOffset {
		return false
	}
	ix.attachments = append(ix.attachments[:at], ix.attachments[at+1:]...)
	return true
}

// StartingIn returns the attachments whose start offset lies inside the
// range. When two attachments start at the same offset only the first is
// reported; overlapping attachments never count twice for layout.
func (ix *Index) StartingIn(r core.Range) []Anchored {
	var found []Anchored
	lastStart := -1
	for i := ix.lowerBound(r.Location); i < len(ix.attachments); i++ {
		a := ix.attachments[i]
		if a.Range.Location >= r.Max() {
			break
		}
		if a.Range.Location == lastStart {
			continue
		}
		lastStart = a.Range.Location
		found = append(found, a)
	}
	return found
}

// Overlapping returns the attachments whose span intersects the range.
// An attachment ending exactly at the range's start still counts; touching
// boundaries merge for layout purposes.
func (ix *Index) Overlapping(r core.Range) []Anchored {
	var found []Anchored
	for _, a := range ix.attachments {
		if a.Range.Location > r.Max() {
			break
		}
		if a.Range.Touches(r) {
			found = append(found, a)
		}
	}
	return found
}

// TextUpdated adjusts the index for a text edit at the given offset.
// Attachments fully contained in the edited span are removed; attachments
// starting after the edit point shift by delta. This runs before the line
// tree re-derives line structure, since splitting depends on which offsets
// attachments still claim.
func (ix *Index) TextUpdated(atOffset, delta int) {
	edited := core.Range{Location: atOffset, Length: 0}
	if delta < 0 {
		edited.Length = -delta
	}

	kept := ix.attachments[:0]
	for _, a := range ix.attachments {
		if edited.Length > 0 && a.Range.Intersects(edited) {
			continue // consumed by the edit
		}
		if a.Range.Location >= atOffset {
			a.Range = a.Range.Shifted(delta)
		}
		kept = append(kept, a)
	}
	ix.attachments = kept
}

// lowerBound returns the index of the first attachment starting at or
// after the offset.
func (ix *Index) lowerBound(offset int) int {
	return sort.Search(len(ix.attachments), func(i int) bool {
		return ix.attachments[i].Range.Location >= offset
	})
}

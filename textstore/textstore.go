// Package textstore provides an in-memory text source with edit
// notifications. It is deliberately simple: a contiguous byte buffer with
// copy-on-replace semantics, sufficient for documents in the megabyte
// range. Observers receive every edit after it has been applied, in
// registration order.
package textstore

import (
	"fmt"

	"github.com/dshills/textweave/core"
)

// EditObserver is notified after each applied edit. editedRange is the
// span of newly inserted text in post-edit coordinates and delta is the
// document length change. attributeOnly marks notifications where the
// bytes did not change, only their presentation; delta is 0 for those.
type EditObserver func(editedRange core.Range, delta int, attributeOnly bool)

// Store is an in-memory document.
type Store struct {
	content   []byte
	observers []EditObserver
}

// New creates a store with the given initial content.
func New(content string) *Store {
	return &Store{content: []byte(content)}
}

// Len returns the document length in bytes.
func (s *Store) Len() int {
	return len(s.content)
}

// Slice returns the text in the given range. Ranges outside the document
// panic; callers derive ranges from layout state that must already be in
// sync.
func (s *Store) Slice(r core.Range) string {
	if r.Location < 0 || r.Length < 0 || r.Max() > len(s.content) {
		panic(fmt.Sprintf("textstore: slice %v outside document of length %d", r, len(s.content)))
	}
	return string(s.content[r.Location:r.Max()])
}

// String returns the whole document.
func (s *Store) String() string {
	return string(s.content)
}

// Subscribe registers an edit observer.
func (s *Store) Subscribe(fn EditObserver) {
	s.observers = append(s.observers, fn)
}

// Replace substitutes the text in r with repl and notifies observers.
// It returns the document length change.
func (s *Store) Replace(r core.Range, repl string) int {
	if r.Location < 0 || r.Length < 0 || r.Max() > len(s.content) {
		panic(fmt.Sprintf("textstore: replace %v outside document of length %d", r, len(s.content)))
	}

	next := make([]byte, 0, len(s.content)-r.Length+len(repl))
	next = append(next, s.content[:r.Location]...)
	next = append(next, repl...)
	next = append(next, s.content[r.Max():]...)
	s.content = next

	delta := len(repl) - r.Length
	edited := core.NewRange(r.Location, len(repl))
	for _, fn := range s.observers {
		fn(edited, delta, false)
	}
	return delta
}

// AttributesChanged notifies observers that the presentation of the text
// in r changed without any byte change, so attributed hosts can trigger
// re-layout through the same notification channel as edits.
func (s *Store) AttributesChanged(r core.Range) {
	if r.Location < 0 || r.Length < 0 || r.Max() > len(s.content) {
		panic(fmt.Sprintf("textstore: attribute change %v outside document of length %d", r, len(s.content)))
	}
	for _, fn := range s.observers {
		fn(r, 0, true)
	}
}

// Insert places text at an offset.
func (s *Store) Insert(at int, text string) int {
	return s.Replace(core.NewRange(at, 0), text)
}

// Delete removes the text in r.
func (s *Store) Delete(r core.Range) int {
	return s.Replace(r, "")
}

// Package killring implements a size-bounded ring of killed (cut) text.
// The ring is an explicitly constructed object owned by the embedding
// application; there is no process-global instance.
package killring

// DefaultCapacity matches the traditional Emacs kill-ring size.
const DefaultCapacity = 60

// Ring is a circular buffer of killed strings. The most recent kill is
// the yank target; YankPop rotates through older kills.
type Ring struct {
	entries  []string
	head     int
	rotation int
}

// New creates a ring holding at most capacity entries. A capacity of zero
// or less uses DefaultCapacity.
func New(capacity int) *Ring {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Ring{entries: make([]string, 0, capacity)}
}

// Len returns the number of stored kills.
func (r *Ring) Len() int {
	return len(r.entries)
}

// Kill stores text as the newest entry, evicting the oldest when the ring
// is full. Empty text is ignored. Killing resets the yank rotation.
func (r *Ring) Kill(text string) {
	if text == "" {
		return
	}
	if len(r.entries) < cap(r.entries) {
		r.entries = append(r.entries, "")
		r.head = len(r.entries) - 1
	} else {
		r.head = (r.head + 1) % len(r.entries)
	}
	r.entries[r.head] = text
	r.rotation = 0
}

// KillAppend extends the newest entry, for consecutive kill commands that
// accumulate into one yankable unit. With an empty ring it behaves like
// Kill.
func (r *Ring) KillAppend(text string) {
	if len(r.entries) == 0 {
		r.Kill(text)
		return
	}
	r.entries[r.head] += text
	r.rotation = 0
}

// KillPrepend extends the newest entry at the front, for backward kills.
func (r *Ring) KillPrepend(text string) {
	if len(r.entries) == 0 {
		r.Kill(text)
		return
	}
	r.entries[r.head] = text + r.entries[r.head]
	r.rotation = 0
}

// Yank returns the entry at the current rotation, newest first.
func (r *Ring) Yank() (string, bool) {
	if len(r.entries) == 0 {
		return "", false
	}
	idx := (r.head - r.rotation + len(r.entries)*2) % len(r.entries)
	return r.entries[idx], true
}

// YankPop rotates to the next older entry and returns it, wrapping to the
// newest after the oldest. Callers replace the previously yanked text
// with the result.
func (r *Ring) YankPop() (string, bool) {
	if len(r.entries) == 0 {
		return "", false
	}
	r.rotation = (r.rotation + 1) % len(r.entries)
	return r.Yank()
}

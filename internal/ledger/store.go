// Package ledger holds the in-memory entry collection and identifier
// sequence used during a session.
package ledger

import (
	"sort"
	"sync/atomic"

	"kakeibo/internal/core"
)

// Store is the ordered entry collection. It is not safe for concurrent use;
// the service owning it serializes access.
type Store struct {
	entries []core.Entry
}

// NewStore wraps entries in their current order. Loaded collections are not
// re-sorted.
func NewStore(entries []core.Entry) *Store {
	return &Store{entries: append([]core.Entry(nil), entries...)}
}

// Add appends e and re-sorts the collection descending by date.
// Equal dates keep their previous relative order.
func (s *Store) Add(e core.Entry) {
	s.entries = append(s.entries, e)
	sort.SliceStable(s.entries, func(i, j int) bool {
		return s.entries[i].Date > s.entries[j].Date
	})
}

// Remove drops every entry whose id equals id and returns how many were
// removed.
func (s *Store) Remove(id int64) int {
	kept := s.entries[:0]
	for _, e := range s.entries {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	removed := len(s.entries) - len(kept)
	// clear the tail so removed entries are not retained
	for i := len(kept); i < len(s.entries); i++ {
		s.entries[i] = core.Entry{}
	}
	s.entries = kept
	return removed
}

// Find returns the first entry with the given id.
func (s *Store) Find(id int64) (core.Entry, bool) {
	for _, e := range s.entries {
		if e.ID == id {
			return e, true
		}
	}
	return core.Entry{}, false
}

// Entries returns a copy of the collection in display order.
func (s *Store) Entries() []core.Entry {
	return append([]core.Entry(nil), s.entries...)
}

func (s *Store) Len() int {
	return len(s.entries)
}

// MaxID returns the largest id in the collection, or 0 when empty.
func (s *Store) MaxID() int64 {
	var max int64
	for _, e := range s.entries {
		if e.ID > max {
			max = e.ID
		}
	}
	return max
}

// Sequence hands out strictly increasing identifiers.
type Sequence struct {
	last atomic.Int64
}

// NewSequence starts after floor; pass the largest id already in use.
func NewSequence(floor int64) *Sequence {
	s := &Sequence{}
	s.last.Store(floor)
	return s
}

// Next returns the next identifier.
func (s *Sequence) Next() int64 {
	return s.last.Add(1)
}

package memory

import (
	"context"
	"os"
	"sync"
)

// Slot keeps the value for the lifetime of the process.
type Slot struct {
	mu    sync.Mutex
	value []byte
	set   bool
}

func New() *Slot {
	return &Slot{}
}

// NewFromFile seeds the slot with the contents of path. A missing or
// unreadable file leaves the slot empty.
func NewFromFile(path string) *Slot {
	s := New()
	if path == "" {
		return s
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return s
	}
	s.value, s.set = data, true
	return s
}

// Get returns a copy of the stored value.
func (s *Slot) Get(_ context.Context) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.set {
		return nil, false, nil
	}
	return append([]byte(nil), s.value...), true, nil
}

// Set replaces the stored value.
func (s *Slot) Set(_ context.Context, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = append([]byte(nil), value...)
	s.set = true
	return nil
}

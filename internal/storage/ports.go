package storage

import (
	"context"

	"kakeibo/internal/core"
)

// DefaultSlotKey names the slot holding the entry collection.
const DefaultSlotKey = "transactions"

// Ports for slot backends and their consumers.
type (
	// Slot is one named key-value location holding a serialized value.
	Slot interface {
		// Get returns the stored value; ok is false when nothing was stored yet.
		Get(ctx context.Context) (value []byte, ok bool, err error)
		// Set overwrites the stored value.
		Set(ctx context.Context, value []byte) error
	}

	// Persister loads and saves the whole entry collection.
	Persister interface {
		Load(ctx context.Context) ([]core.Entry, error)
		Save(ctx context.Context, entries []core.Entry) error
	}
)

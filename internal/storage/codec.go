// Package storage persists the entry collection as one JSON value in a
// named slot.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"kakeibo/internal/core"
)

// ErrMalformedSlot reports a stored value that is not a valid entry list.
var ErrMalformedSlot = errors.New("malformed slot value")

// record mirrors the persisted layout with pointers so missing fields can be
// told apart from zero values.
type record struct {
	ID          *int64       `json:"id"`
	Date        *string      `json:"date"`
	Member      *string      `json:"member"`
	Type        *string      `json:"type"`
	Category    *string      `json:"category"`
	Description *string      `json:"description"`
	Amount      *core.Amount `json:"amount"`
}

// Encode serializes entries in collection order. A nil collection is
// written as an empty array.
func Encode(entries []core.Entry) ([]byte, error) {
	if entries == nil {
		entries = []core.Entry{}
	}
	b, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("encode entries: %w", err)
	}
	return b, nil
}

// Decode parses a stored value. A JSON null decodes to an empty collection;
// anything else that is not an array of well-formed records yields an error
// wrapping ErrMalformedSlot.
func Decode(data []byte) ([]core.Entry, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty value", ErrMalformedSlot)
	}
	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedSlot, err)
	}
	entries := make([]core.Entry, 0, len(records))
	for i, r := range records {
		e, err := r.entry()
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %w", ErrMalformedSlot, i, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (r record) entry() (core.Entry, error) {
	switch {
	case r.ID == nil:
		return core.Entry{}, errors.New("missing id")
	case r.Date == nil:
		return core.Entry{}, errors.New("missing date")
	case r.Type == nil:
		return core.Entry{}, errors.New("missing type")
	case r.Amount == nil:
		return core.Entry{}, errors.New("missing amount")
	}
	t := core.EntryType(*r.Type)
	if !t.Valid() {
		return core.Entry{}, fmt.Errorf("%w: %q", core.ErrInvalidType, *r.Type)
	}
	return core.Entry{
		ID:          *r.ID,
		Date:        *r.Date,
		Member:      deref(r.Member),
		Type:        t,
		Category:    deref(r.Category),
		Description: deref(r.Description),
		Amount:      *r.Amount,
	}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// SlotPersister stores the collection in a Slot.
type SlotPersister struct {
	slot Slot
}

// NewSlotPersister wraps slot with the JSON codec.
func NewSlotPersister(slot Slot) *SlotPersister {
	return &SlotPersister{slot: slot}
}

// Load reads the slot. An absent value is an empty collection.
func (p *SlotPersister) Load(ctx context.Context) ([]core.Entry, error) {
	value, ok, err := p.slot.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("read slot: %w", err)
	}
	if !ok {
		return nil, nil
	}
	return Decode(value)
}

// Save overwrites the slot with the full collection.
func (p *SlotPersister) Save(ctx context.Context, entries []core.Entry) error {
	value, err := Encode(entries)
	if err != nil {
		return err
	}
	if err := p.slot.Set(ctx, value); err != nil {
		return fmt.Errorf("write slot: %w", err)
	}
	return nil
}

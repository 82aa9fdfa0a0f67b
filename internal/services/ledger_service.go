package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"kakeibo/internal/core"
	"kakeibo/internal/ledger"
	"kakeibo/internal/log"
	"kakeibo/internal/storage"
)

// Decision is the answer to a delete confirmation.
type Decision int

const (
	Cancelled Decision = iota
	Confirmed
)

func (d Decision) String() string {
	if d == Confirmed {
		return "confirmed"
	}
	return "cancelled"
}

// ParseDecision maps a form value to a Decision. Only "yes" confirms.
func ParseDecision(s string) Decision {
	if s == "yes" {
		return Confirmed
	}
	return Cancelled
}

// DeleteRequest is a pending deletion waiting for a decision.
type DeleteRequest struct {
	ID    int64
	Entry core.Entry
}

// Confirmer asks the user whether an entry should really be deleted.
type Confirmer interface {
	Confirm(ctx context.Context, e core.Entry) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, e core.Entry) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, e core.Entry) (bool, error) { return f(ctx, e) }

// Snapshot is a consistent view of the ledger for rendering.
type Snapshot struct {
	Entries []core.Entry `json:"entries"`
	Summary core.Summary `json:"summary"`
	Today   string       `json:"-"`
}

// ErrSaveFailed wraps persistence failures after a validated change.
var ErrSaveFailed = errors.New("save ledger")

// Options configures a LedgerService.
type Options struct {
	// Clock defaults to time.Now.
	Clock func() time.Time
	// Location for the default form date; nil means time.Local.
	Location *time.Location
	Logger   *log.Logger
	// StrictSlot makes a malformed stored value fail Load instead of
	// starting with an empty ledger.
	StrictSlot bool
}

// LedgerService owns the entry store and its persistence. All operations
// are serialized.
type LedgerService struct {
	mu        sync.Mutex
	store     *ledger.Store
	seq       *ledger.Sequence
	persister storage.Persister

	clock  func() time.Time
	loc    *time.Location
	logger *log.Logger
	events *log.StructuredLogger
	strict bool
}

func NewLedgerService(p storage.Persister, opts Options) *LedgerService {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Logger == nil {
		opts.Logger = log.New(log.DefaultConfig())
	}
	logger := opts.Logger.WithComponent(log.ComponentLedger)
	return &LedgerService{
		store:     ledger.NewStore(nil),
		seq:       ledger.NewSequence(0),
		persister: p,
		clock:     opts.Clock,
		loc:       opts.Location,
		logger:    logger,
		events:    log.NewStructuredLogger(logger),
		strict:    opts.StrictSlot,
	}
}

// OpenLedger builds the service and loads the stored collection.
func OpenLedger(ctx context.Context, p storage.Persister, opts Options) (*LedgerService, error) {
	s := NewLedgerService(p, opts)
	if err := s.Load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Load replaces the in-memory collection with the stored one. A malformed
// value is logged and treated as empty unless the service is strict.
func (s *LedgerService) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.persister.Load(ctx)
	switch {
	case errors.Is(err, storage.ErrMalformedSlot) && !s.strict:
		s.logger.WarnContext(ctx, "Stored ledger is malformed, starting empty",
			log.FieldError, err, log.FieldOperation, log.OpLoad)
		entries = nil
	case err != nil:
		return fmt.Errorf("load ledger: %w", err)
	}

	s.store = ledger.NewStore(entries)
	s.seq = ledger.NewSequence(s.store.MaxID())
	s.logger.InfoContext(ctx, "Ledger loaded", log.FieldEntryCount, s.store.Len())
	return nil
}

// Submit validates d, records it and persists the collection. Validation
// failures wrap core.ErrInvalidSubmission and change nothing. A failed save
// is rolled back and wraps ErrSaveFailed.
func (s *LedgerService) Submit(ctx context.Context, d core.Draft) (core.Entry, error) {
	e, err := d.Entry()
	if err != nil {
		s.logger.DebugContext(ctx, "Submission rejected", log.FieldError, err, log.FieldOperation, log.OpValidate)
		return core.Entry{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e.ID = s.seq.Next()
	prev := s.store.Entries()
	s.store.Add(e)
	if err := s.persister.Save(ctx, s.store.Entries()); err != nil {
		s.store = ledger.NewStore(prev)
		s.events.LogError(ctx, "Failed to save new entry", err, log.ComponentLedger, log.OpSave, nil)
		return core.Entry{}, fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}

	s.events.LogEntryAdded(ctx, e.ID, e.Date, e.Member, e.Type.String(), e.Category, e.Amount.String())
	return e, nil
}

// PrepareDelete looks up id for a confirmation prompt.
func (s *LedgerService) PrepareDelete(id int64) (DeleteRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.store.Find(id)
	if !ok {
		return DeleteRequest{}, false
	}
	return DeleteRequest{ID: id, Entry: e}, true
}

// ResolveDelete applies the decision for req. Cancelled changes nothing.
// It returns the number of entries removed.
func (s *LedgerService) ResolveDelete(ctx context.Context, req DeleteRequest, decision Decision) (int, error) {
	if decision != Confirmed {
		s.events.LogEntryDeleted(ctx, req.ID, decision.String(), 0)
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.store.Entries()
	removed := s.store.Remove(req.ID)
	if removed > 0 {
		if err := s.persister.Save(ctx, s.store.Entries()); err != nil {
			s.store = ledger.NewStore(prev)
			s.events.LogError(ctx, "Failed to save after delete", err, log.ComponentLedger, log.OpSave, nil)
			return 0, fmt.Errorf("%w: %w", ErrSaveFailed, err)
		}
	}

	s.events.LogEntryDeleted(ctx, req.ID, decision.String(), removed)
	return removed, nil
}

// DeleteWithConfirmation asks c before deleting id. It reports whether
// anything was removed.
func (s *LedgerService) DeleteWithConfirmation(ctx context.Context, id int64, c Confirmer) (bool, error) {
	req, ok := s.PrepareDelete(id)
	if !ok {
		return false, nil
	}
	yes, err := c.Confirm(ctx, req.Entry)
	if err != nil {
		return false, fmt.Errorf("confirm delete: %w", err)
	}
	decision := Cancelled
	if yes {
		decision = Confirmed
	}
	removed, err := s.ResolveDelete(ctx, req, decision)
	return removed > 0, err
}

// Snapshot returns the entries in display order with their totals.
func (s *LedgerService) Snapshot() Snapshot {
	s.mu.Lock()
	entries := s.store.Entries()
	s.mu.Unlock()

	return Snapshot{
		Entries: entries,
		Summary: core.Summarize(entries),
		Today:   s.Today(),
	}
}

// Today is the current date in the configured location.
func (s *LedgerService) Today() string {
	return core.Today(s.clock(), s.loc)
}

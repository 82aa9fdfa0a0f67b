package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Income  EntryType = "income"
	Expense EntryType = "expense"
)

// DateLayout is the calendar date format stored in every entry.
const DateLayout = "2006-01-02"

type (
	EntryType string

	// Entry is one recorded income or expense transaction. The JSON tags
	// match the persisted slot layout.
	Entry struct {
		ID          int64     `json:"id"`
		Date        string    `json:"date"`
		Member      string    `json:"member"`
		Type        EntryType `json:"type"`
		Category    string    `json:"category"`
		Description string    `json:"description"`
		Amount      Amount    `json:"amount"`
	}

	// Draft holds the raw values of a submitted entry form.
	Draft struct {
		Date        string
		Member      string
		Type        string
		Category    string
		Description string
		Amount      string
	}
)

var (
	// ErrInvalidSubmission is returned for every rejected draft. The wrapped
	// reason is for logs; users only ever see one message.
	ErrInvalidSubmission = errors.New("invalid submission")

	ErrEmptyDate        = errors.New("empty date")
	ErrEmptyMember      = errors.New("empty member")
	ErrEmptyCategory    = errors.New("empty category")
	ErrEmptyDescription = errors.New("empty description")
	ErrInvalidType      = errors.New("invalid entry type")
	ErrInvalidAmount    = errors.New("invalid amount")
)

// Valid reports whether t is one of the two entry types.
func (t EntryType) Valid() bool {
	return t == Income || t == Expense
}

// Label returns the localized label shown in the ledger table.
func (t EntryType) Label() string {
	if t == Income {
		return "収入"
	}
	return "支出"
}

func (t EntryType) String() string {
	return string(t)
}

// ParseEntryType maps a form value to an EntryType.
func ParseEntryType(s string) (EntryType, error) {
	t := EntryType(strings.TrimSpace(s))
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidType, s)
	}
	return t, nil
}

// Entry validates the draft and builds an entry without an identifier.
// Text fields are stored as submitted; only blankness is checked.
func (d Draft) Entry() (Entry, error) {
	if err := d.Validate(); err != nil {
		return Entry{}, err
	}
	t, _ := ParseEntryType(d.Type)
	amount, _ := ParseAmount(d.Amount)
	return Entry{
		Date:        d.Date,
		Member:      d.Member,
		Type:        t,
		Category:    d.Category,
		Description: d.Description,
		Amount:      amount,
	}, nil
}

// Validate checks the draft. Every failure wraps ErrInvalidSubmission.
func (d Draft) Validate() error {
	reject := func(reason error) error {
		return fmt.Errorf("%w: %w", ErrInvalidSubmission, reason)
	}
	if strings.TrimSpace(d.Date) == "" {
		return reject(ErrEmptyDate)
	}
	if strings.TrimSpace(d.Member) == "" {
		return reject(ErrEmptyMember)
	}
	if strings.TrimSpace(d.Category) == "" {
		return reject(ErrEmptyCategory)
	}
	if strings.TrimSpace(d.Description) == "" {
		return reject(ErrEmptyDescription)
	}
	if _, err := ParseEntryType(d.Type); err != nil {
		return reject(err)
	}
	amount, err := ParseAmount(d.Amount)
	if err != nil {
		return reject(err)
	}
	if !amount.IsPositive() {
		return reject(ErrInvalidAmount)
	}
	return nil
}

// Today formats the current calendar day of now in loc.
func Today(now time.Time, loc *time.Location) string {
	if loc != nil {
		now = now.In(loc)
	}
	return now.Format(DateLayout)
}

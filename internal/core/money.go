// Package core holds the ledger domain: entries, amounts and the summary.
//
// This file contains the Amount type. Amounts are kept as decimals so sums
// stay exact; the unit is the yen and fractions are accepted but never
// required.
package core

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxAmount is the largest magnitude an amount may have.
var MaxAmount = decimal.New(1, 15)

// maxExponent bounds the decimal exponent before any arithmetic, so that
// inputs like "1e400000000" are rejected without being expanded.
const maxExponent = 32

// Amount is a yen value. It serializes as a bare JSON number.
type Amount struct {
	decimal.Decimal
}

// Yen returns an Amount of v yen.
func Yen(v int64) Amount {
	return Amount{decimal.NewFromInt(v)}
}

// ParseAmount coerces raw form input to a number. Surrounding whitespace is
// ignored and exponents are accepted ("1e3"). Blank or non-numeric input is
// ErrInvalidAmount; the sign is not checked here.
//
// Examples:
//
//	ParseAmount("300000") -> 300000, nil
//	ParseAmount(" 12.5 ") -> 12.5, nil
//	ParseAmount("abc")    -> 0, ErrInvalidAmount
//	ParseAmount("1e400")  -> 0, ErrInvalidAmount
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Amount{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if err := checkRange(d); err != nil {
		return Amount{}, err
	}
	return Amount{d}, nil
}

func checkRange(d decimal.Decimal) error {
	if exp := d.Exponent(); exp > maxExponent || exp < -maxExponent {
		return fmt.Errorf("%w: exponent %d out of range", ErrInvalidAmount, exp)
	}
	if d.Abs().GreaterThan(MaxAmount) {
		return fmt.Errorf("%w: magnitude above %s", ErrInvalidAmount, MaxAmount)
	}
	return nil
}

func (a Amount) Add(b Amount) Amount { return Amount{a.Decimal.Add(b.Decimal)} }
func (a Amount) Sub(b Amount) Amount { return Amount{a.Decimal.Sub(b.Decimal)} }

// Equal compares values, ignoring representation ("1.0" equals "1").
func (a Amount) Equal(b Amount) bool { return a.Decimal.Equal(b.Decimal) }

// MarshalJSON writes the amount as a JSON number.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal.String()), nil
}

// UnmarshalJSON accepts JSON numbers only; strings and null are rejected so
// that a malformed slot is detected instead of silently read as zero.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] == '"' || bytes.Equal(data, []byte("null")) {
		return fmt.Errorf("%w: amount must be a number, got %s", ErrInvalidAmount, data)
	}
	d, err := decimal.NewFromString(string(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	if err := checkRange(d); err != nil {
		return err
	}
	a.Decimal = d
	return nil
}

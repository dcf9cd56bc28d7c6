// Package money provides an exact fixed-point representation for currency
// amounts. Amounts are stored as int64 centavos (two decimal places), so
// arithmetic and comparison are exact and never go through binary floating
// point.
package money

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const decimals = 2

var (
	// ErrInvalidAmountFormat is returned when a string cannot be parsed as a
	// monetary amount.
	ErrInvalidAmountFormat = errors.New("invalid amount format")
	// ErrTooManyDecimalPlaces is returned when an amount carries more than
	// two decimal places.
	ErrTooManyDecimalPlaces = errors.New("amount has more than two decimal places")
	// ErrAmountOverflow is returned when an operation would overflow the
	// safe integer range.
	ErrAmountOverflow = errors.New("amount exceeds maximum safe value")
)

// Money is a monetary value in the smallest currency unit.
// The zero value is a valid zero amount.
type Money struct {
	cents int64
}

// Zero is the zero amount.
var Zero = Money{}

// FromCents builds a Money from an amount already expressed in centavos.
// Used for repository hydration and test fixtures.
func FromCents(cents int64) Money {
	return Money{cents: cents}
}

// Parse converts a decimal string such as "500.00", "0.5" or "-3" into Money.
// Equality is representation independent: "5", "5.0" and "5.00" parse to the
// same value.
func Parse(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Zero, ErrInvalidAmountFormat
	}
	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}
	intPart, fracPart, hasFrac := strings.Cut(s, ".")
	if intPart == "" && fracPart == "" {
		return Zero, ErrInvalidAmountFormat
	}
	if intPart == "" {
		intPart = "0"
	}
	if hasFrac && fracPart == "" {
		return Zero, ErrInvalidAmountFormat
	}
	// Only digits may appear after the dot; a second dot or a sign in the
	// fraction is a malformed amount, not a precision problem.
	for i := 0; i < len(fracPart); i++ {
		if fracPart[i] < '0' || fracPart[i] > '9' {
			return Zero, ErrInvalidAmountFormat
		}
	}
	if len(fracPart) > decimals {
		return Zero, ErrTooManyDecimalPlaces
	}
	for len(fracPart) < decimals {
		fracPart += "0"
	}
	whole, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil || whole < 0 {
		return Zero, ErrInvalidAmountFormat
	}
	frac, err := strconv.ParseInt(fracPart, 10, 64)
	if err != nil || frac < 0 {
		return Zero, ErrInvalidAmountFormat
	}
	if whole > (math.MaxInt64-frac)/100 {
		return Zero, ErrAmountOverflow
	}
	cents := whole*100 + frac
	if neg {
		cents = -cents
	}
	return Money{cents: cents}, nil
}

// MustParse is Parse for constant inputs; it panics on malformed amounts.
func MustParse(s string) Money {
	m, err := Parse(s)
	if err != nil {
		panic(fmt.Sprintf("money: cannot parse %q: %v", s, err))
	}
	return m
}

// Cents returns the amount in centavos.
func (m Money) Cents() int64 {
	return m.cents
}

// Add returns m + other, failing on int64 overflow.
func (m Money) Add(other Money) (Money, error) {
	sum := m.cents + other.cents
	if (other.cents > 0 && sum < m.cents) || (other.cents < 0 && sum > m.cents) {
		return Zero, ErrAmountOverflow
	}
	return Money{cents: sum}, nil
}

// Subtract returns m - other, failing on int64 overflow.
func (m Money) Subtract(other Money) (Money, error) {
	diff := m.cents - other.cents
	if (other.cents < 0 && diff < m.cents) || (other.cents > 0 && diff > m.cents) {
		return Zero, ErrAmountOverflow
	}
	return Money{cents: diff}, nil
}

// Cmp compares two amounts: -1 if m < other, 0 if equal, 1 if m > other.
func (m Money) Cmp(other Money) int {
	switch {
	case m.cents < other.cents:
		return -1
	case m.cents > other.cents:
		return 1
	default:
		return 0
	}
}

// Equals reports whether two amounts have the same value.
func (m Money) Equals(other Money) bool {
	return m.cents == other.cents
}

// GreaterThanOrEqual reports whether m >= other.
func (m Money) GreaterThanOrEqual(other Money) bool {
	return m.cents >= other.cents
}

// IsPositive reports whether the amount is strictly greater than zero.
func (m Money) IsPositive() bool {
	return m.cents > 0
}

// IsNegative reports whether the amount is strictly less than zero.
func (m Money) IsNegative() bool {
	return m.cents < 0
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool {
	return m.cents == 0
}

// String renders the amount with two decimal places, e.g. "500.00".
func (m Money) String() string {
	cents := m.cents
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// DefaultCurrency is used when a colocation does not specify one.
// A colocation holds exactly one currency; conversion is out of scope.
const DefaultCurrency = "EUR"

var ErrInvalidAmount = errors.New("invalid amount")

// Money is a fixed-point amount expressed in minor currency units.
// All ledger arithmetic happens on Cents; float64 is only ever produced
// at the display edge and never read back.
type Money struct {
	Cents    int64  `json:"cents"`
	Currency string `json:"currency"`
}

// NewMoney builds a Money value. An empty currency falls back to DefaultCurrency.
func NewMoney(cents int64, currency string) Money {
	if currency == "" {
		currency = DefaultCurrency
	}
	return Money{Cents: cents, Currency: currency}
}

// Add returns m + o. Amounts within one colocation share a single currency;
// the receiver's currency is kept (or adopted from o when the receiver is the
// zero value, so sums can start from Money{}).
func (m Money) Add(o Money) Money {
	cur := m.Currency
	if cur == "" {
		cur = o.Currency
	}
	return Money{Cents: m.Cents + o.Cents, Currency: cur}
}

// Sub returns m - o.
func (m Money) Sub(o Money) Money {
	cur := m.Currency
	if cur == "" {
		cur = o.Currency
	}
	return Money{Cents: m.Cents - o.Cents, Currency: cur}
}

// Neg returns -m.
func (m Money) Neg() Money {
	return Money{Cents: -m.Cents, Currency: m.Currency}
}

func (m Money) IsZero() bool     { return m.Cents == 0 }
func (m Money) IsPositive() bool { return m.Cents > 0 }
func (m Money) IsNegative() bool { return m.Cents < 0 }

// Validate checks that the amount is strictly positive, as required for
// expense totals and payment amounts.
func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// SameCurrency reports whether the two amounts share a currency. Zero-value
// currencies compare equal to anything so that unset inputs do not trip the
// single-currency invariant.
func (m Money) SameCurrency(o Money) bool {
	return m.Currency == "" || o.Currency == "" || m.Currency == o.Currency
}

// String formats the amount as a decimal with two fractional digits, e.g.
// "12.34 EUR". Used for logs and error messages only.
func (m Money) String() string {
	sign := ""
	cents := m.Cents
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d %s", sign, cents/100, cents%100, m.Currency)
}

// ParseDecimalToCents converts a decimal string to cents with half-up rounding
// on the third decimal place. It accepts both dot (12.34) and comma (12,34)
// separators. Only strictly positive amounts are accepted.
//
// Examples:
//
//	ParseDecimalToCents("12.34") -> 1234, nil
//	ParseDecimalToCents("12,34") -> 1234, nil
//	ParseDecimalToCents("12.344") -> 1234, nil (rounds down)
//	ParseDecimalToCents("12.345") -> 1235, nil (rounds up)
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	// Prevent overflow when multiplying by 100
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}
	// Take the first two fractional digits, then half-up on the third.
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	cents := iv*100 + fracCents
	if cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}

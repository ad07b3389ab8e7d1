package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidMoney is returned when a decimal amount cannot be parsed into
// Money: more than two fractional digits, stray characters, or overflow.
var ErrInvalidMoney = errors.New("invalid decimal amount")

// Money is a currency-safe decimal amount with two fractional digits, held as
// an integer number of cents. The database column is NUMERIC(10,2); the wire
// representation is a JSON string such as "250.00".
type Money int64

// MaxMoney is the largest amount a NUMERIC(10,2) column can hold.
const MaxMoney Money = 99999999_99

// ParseMoney parses "250", "250.5", or "250.50" into Money.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidMoney
	}
	neg := false
	if s[0] == '-' || s[0] == '+' {
		neg = s[0] == '-'
		s = s[1:]
	}
	whole, frac, hasFrac := strings.Cut(s, ".")
	if whole == "" || (hasFrac && (frac == "" || len(frac) > 2)) {
		return 0, ErrInvalidMoney
	}
	for len(frac) < 2 {
		frac += "0"
	}
	if !isDigits(whole) || !isDigits(frac) {
		return 0, ErrInvalidMoney
	}
	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || w > int64(MaxMoney/100) {
		return 0, ErrInvalidMoney
	}
	f, _ := strconv.ParseInt(frac, 10, 64)
	cents := w*100 + f
	if neg {
		cents = -cents
	}
	return Money(cents), nil
}

// Cents returns the amount as an integer number of cents.
func (m Money) Cents() int64 { return int64(m) }

// Mul multiplies the amount by a whole quantity, e.g. a number of nights.
func (m Money) Mul(n int) Money { return m * Money(n) }

// String formats the amount with exactly two fractional digits.
func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// MarshalJSON encodes the amount as a decimal string.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON accepts both a decimal string ("250.00") and a bare JSON
// number (250.5).
func (m *Money) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	raw := string(b)
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
	}
	v, err := ParseMoney(raw)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidMoney, raw)
	}
	*m = v
	return nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Money is an amount in minor currency units (cents). All arithmetic stays in
// integers; fractional results are rounded half-up to the cent.
type Money int64

const centsPerUnit = 100

// ErrMoneyOverflow reports an amount that does not fit in int64 cents.
var ErrMoneyOverflow = errors.New("amount out of range")

// NewMoney builds an amount from whole units and cents, e.g. NewMoney(300, 0).
func NewMoney(units, cents int64) Money {
	return Money(units*centsPerUnit + cents)
}

// ParseMoney parses a decimal string such as "120", "99.5" or "10.005".
// More than two fractional digits are rounded half-up.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}

	negative := false
	if s[0] == '-' || s[0] == '+' {
		negative = s[0] == '-'
		s = s[1:]
	}

	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	if units > (math.MaxInt64-centsPerUnit)/centsPerUnit {
		return 0, fmt.Errorf("%w: %q", ErrMoneyOverflow, s)
	}
	for _, r := range frac {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("invalid amount %q", s)
		}
	}

	cents := int64(0)
	switch {
	case len(frac) == 0:
	case len(frac) == 1:
		cents = int64(frac[0]-'0') * 10
	default:
		cents = int64(frac[0]-'0')*10 + int64(frac[1]-'0')
		if len(frac) > 2 && frac[2] >= '5' {
			cents++
		}
	}

	total := units*centsPerUnit + cents
	if negative {
		total = -total
	}
	return Money(total), nil
}

// Mul multiplies by a factor (weekend multiplier) rounding half-up.
func (m Money) Mul(factor float64) (Money, error) {
	v := float64(m) * factor
	if math.IsNaN(v) || math.Abs(v) >= math.MaxInt64 {
		return 0, fmt.Errorf("%w: %s x %v", ErrMoneyOverflow, m, factor)
	}
	return Money(roundHalfUp(v)), nil
}

// Times multiplies by an integer quantity (nights, hours, days).
func (m Money) Times(n int) (Money, error) {
	if m == 0 || n == 0 {
		return 0, nil
	}
	p := m * Money(n)
	if p/Money(n) != m || (n == -1 && m == math.MinInt64) {
		return 0, fmt.Errorf("%w: %s x %d", ErrMoneyOverflow, m, n)
	}
	return p, nil
}

// Plus adds o, failing instead of wrapping around.
func (m Money) Plus(o Money) (Money, error) {
	sum := m + o
	if (o > 0 && sum < m) || (o < 0 && sum > m) {
		return 0, fmt.Errorf("%w: %s + %s", ErrMoneyOverflow, m, o)
	}
	return sum, nil
}

func (m Money) IsPositive() bool {
	return m > 0
}

func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/centsPerUnit, v%centsPerUnit)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(s)
	}
	parsed, err := ParseMoney(string(data))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// roundHalfUp rounds to the nearest integer, halves away from zero. The
// epsilon absorbs binary representation error such as 1.005*100=100.49999.
func roundHalfUp(v float64) int64 {
	const epsilon = 1e-9
	if v < 0 {
		return -int64(math.Floor(-v + 0.5 + epsilon))
	}
	return int64(math.Floor(v + 0.5 + epsilon))
}

// Package money holds the fixed-point rounding policy shared by pricing and the cashback ledger.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type RoundingMode string

const (
	RoundHalfUp   RoundingMode = "half_up"
	RoundHalfEven RoundingMode = "half_even"
	RoundDown     RoundingMode = "down"
)

var hundred = decimal.NewFromInt(100)

// Policy fixes currency precision and rounding for every monetary result.
type Policy struct {
	Places int32
	Mode   RoundingMode
}

// DefaultPolicy is two decimal places, round half up.
func DefaultPolicy() Policy {
	return Policy{Places: 2, Mode: RoundHalfUp}
}

func NewPolicy(places int32, mode string) (Policy, error) {
	if places < 0 {
		return Policy{}, fmt.Errorf("currency places must be >= 0, got %d", places)
	}
	m, err := ParseRoundingMode(mode)
	if err != nil {
		return Policy{}, err
	}
	return Policy{Places: places, Mode: m}, nil
}

func ParseRoundingMode(value string) (RoundingMode, error) {
	switch RoundingMode(strings.ToLower(strings.TrimSpace(value))) {
	case RoundHalfUp, "":
		return RoundHalfUp, nil
	case RoundHalfEven:
		return RoundHalfEven, nil
	case RoundDown:
		return RoundDown, nil
	default:
		return "", fmt.Errorf("invalid rounding mode %q", value)
	}
}

// Round applies the policy. decimal.Round rounds half away from zero, which is
// half-up for the non-negative amounts this service handles.
func (p Policy) Round(d decimal.Decimal) decimal.Decimal {
	switch p.Mode {
	case RoundHalfEven:
		return d.RoundBank(p.Places)
	case RoundDown:
		return d.Truncate(p.Places)
	default:
		return d.Round(p.Places)
	}
}

// Mul multiplies and rounds.
func (p Policy) Mul(a, b decimal.Decimal) decimal.Decimal {
	return p.Round(a.Mul(b))
}

// Percent returns round(amount * rate / 100).
func (p Policy) Percent(amount, rate decimal.Decimal) decimal.Decimal {
	return p.Round(amount.Mul(rate).Div(hundred))
}

// Hundred is the upper bound of a percentage.
func Hundred() decimal.Decimal {
	return hundred
}

// Max returns the larger value.
func Max(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// Sum adds values without rounding.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

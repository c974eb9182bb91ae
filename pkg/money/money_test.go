package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicyRoundModes(t *testing.T) {
	cases := []struct {
		mode RoundingMode
		in   string
		want string
	}{
		{RoundHalfUp, "2.345", "2.35"},
		{RoundHalfUp, "2.344", "2.34"},
		{RoundHalfEven, "2.345", "2.34"},
		{RoundHalfEven, "2.355", "2.36"},
		{RoundDown, "2.349", "2.34"},
	}
	for _, tc := range cases {
		p := Policy{Places: 2, Mode: tc.mode}
		got := p.Round(decimal.RequireFromString(tc.in))
		assert.Equal(t, tc.want, got.StringFixed(2), "mode %s input %s", tc.mode, tc.in)
	}
}

func TestPolicyPercent(t *testing.T) {
	p := DefaultPolicy()
	got := p.Percent(decimal.RequireFromString("180.00"), decimal.RequireFromString("5"))
	assert.True(t, got.Equal(decimal.RequireFromString("9.00")), "got %s", got)

	got = p.Percent(decimal.RequireFromString("33.33"), decimal.RequireFromString("2.5"))
	assert.True(t, got.Equal(decimal.RequireFromString("0.83")), "got %s", got)
}

func TestNewPolicy(t *testing.T) {
	p, err := NewPolicy(2, "HALF_EVEN")
	require.NoError(t, err)
	assert.Equal(t, RoundHalfEven, p.Mode)

	_, err = NewPolicy(2, "ceiling")
	require.Error(t, err)

	_, err = NewPolicy(-1, "half_up")
	require.Error(t, err)
}

func TestSumAndMax(t *testing.T) {
	total := Sum(decimal.NewFromInt(1), decimal.RequireFromString("2.50"), decimal.RequireFromString("-0.50"))
	assert.True(t, total.Equal(decimal.NewFromInt(3)))
	assert.True(t, Max(decimal.Zero, decimal.NewFromInt(-4)).IsZero())
}

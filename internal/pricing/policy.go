package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/atacado-backend/pkg/config"
	"github.com/angelmondragon/atacado-backend/pkg/money"
)

// StackingPolicy decides how several eligible cashback rates combine on one line.
type StackingPolicy string

const (
	StackAdditive StackingPolicy = "additive"
	StackBest     StackingPolicy = "best"
)

func ParseStackingPolicy(value string) (StackingPolicy, error) {
	switch StackingPolicy(strings.ToLower(strings.TrimSpace(value))) {
	case StackAdditive, "":
		return StackAdditive, nil
	case StackBest:
		return StackBest, nil
	default:
		return "", fmt.Errorf("invalid campaign stacking policy %q", value)
	}
}

// Policy carries every tunable of the pricing engine.
type Policy struct {
	Money              money.Policy
	Stacking           StackingPolicy
	MaxCashbackPercent decimal.Decimal
}

// DefaultPolicy is two decimals half-up, additive stacking capped at 100%.
func DefaultPolicy() Policy {
	return Policy{
		Money:              money.DefaultPolicy(),
		Stacking:           StackAdditive,
		MaxCashbackPercent: money.Hundred(),
	}
}

// PolicyFromConfig builds the policy from the pricing config section.
func PolicyFromConfig(cfg config.PricingConfig) (Policy, error) {
	mp, err := money.NewPolicy(cfg.CurrencyPlaces, cfg.Rounding)
	if err != nil {
		return Policy{}, err
	}
	stacking, err := ParseStackingPolicy(cfg.CampaignStacking)
	if err != nil {
		return Policy{}, err
	}
	maxPct := decimal.NewFromFloat(cfg.MaxCashbackPercent)
	if maxPct.LessThanOrEqual(decimal.Zero) || maxPct.GreaterThan(money.Hundred()) {
		return Policy{}, fmt.Errorf("max cashback percent must be in (0, 100], got %s", maxPct)
	}
	return Policy{Money: mp, Stacking: stacking, MaxCashbackPercent: maxPct}, nil
}

// StackCashbackRates folds the eligible campaign rates of one line into a single
// effective rate. It is the only place stacking semantics live.
func StackCashbackRates(policy StackingPolicy, rates []decimal.Decimal, maxPercent decimal.Decimal) decimal.Decimal {
	effective := decimal.Zero
	switch policy {
	case StackBest:
		for _, rate := range rates {
			effective = money.Max(effective, rate)
		}
	default:
		effective = money.Sum(rates...)
	}
	if maxPercent.GreaterThan(decimal.Zero) && effective.GreaterThan(maxPercent) {
		return maxPercent
	}
	return effective
}

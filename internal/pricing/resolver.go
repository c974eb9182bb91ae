package pricing

import (
	"bytes"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/atacado-backend/pkg/db/models"
	"github.com/angelmondragon/atacado-backend/pkg/enums"
)

// Line is one requested product line with its catalog snapshot.
type Line struct {
	ProductID     uuid.UUID
	ProductName   string
	CategoryID    *uuid.UUID
	BaseUnitPrice decimal.Decimal
	Quantity      int
}

// ResolvedLine is a priced line. Gift lines carry zero prices and no cashback.
type ResolvedLine struct {
	Line
	AdjustedUnitPrice     decimal.Decimal
	LineTotal             decimal.Decimal
	CashbackRate          decimal.Decimal
	AppliedCashbackAmount decimal.Decimal
	PriceClamped          bool
	CampaignIDs           []uuid.UUID
	IsGift                bool
	GiftCampaignID        *uuid.UUID
}

// Resolver prices single lines. It holds no state besides its policy.
type Resolver struct {
	policy Policy
}

func NewResolver(policy Policy) *Resolver {
	return &Resolver{policy: policy}
}

func (r *Resolver) Policy() Policy {
	return r.policy
}

// ResolveLine applies the state condition to the base price and the cashback
// campaigns to the rate. campaigns must already be eligible at order level;
// scope matching against the line happens here and non-CASHBACK entries are ignored.
func (r *Resolver) ResolveLine(line Line, condition *models.SupplierStateCondition, campaigns []models.Campaign) ResolvedLine {
	mp := r.policy.Money

	adjusted := line.BaseUnitPrice
	if condition != nil {
		adjusted = adjusted.Add(condition.UnitPriceAdjustment)
	}
	adjusted = mp.Round(adjusted)
	clamped := false
	if adjusted.IsNegative() {
		adjusted = decimal.Zero
		clamped = true
	}

	var rates []decimal.Decimal
	var applied []uuid.UUID
	for _, campaign := range campaigns {
		if campaign.Type != enums.CampaignTypeCashback || campaign.CashbackPercent == nil {
			continue
		}
		if !AppliesToLine(campaign, line) {
			continue
		}
		rates = append(rates, *campaign.CashbackPercent)
		applied = append(applied, campaign.ID)
	}
	sortIDs(applied)

	rate := StackCashbackRates(r.policy.Stacking, rates, r.policy.MaxCashbackPercent)
	lineTotal := mp.Mul(adjusted, decimal.NewFromInt(int64(line.Quantity)))

	return ResolvedLine{
		Line:                  line,
		AdjustedUnitPrice:     adjusted,
		LineTotal:             lineTotal,
		CashbackRate:          rate,
		AppliedCashbackAmount: mp.Percent(lineTotal, rate),
		PriceClamped:          clamped,
		CampaignIDs:           applied,
	}
}

// AppliesToLine reports whether the campaign's scope targets the line.
func AppliesToLine(campaign models.Campaign, line Line) bool {
	switch campaign.Scope {
	case enums.CampaignScopeAll:
		return true
	case enums.CampaignScopeCategory:
		return campaign.CategoryID != nil && line.CategoryID != nil && *campaign.CategoryID == *line.CategoryID
	case enums.CampaignScopeProduct:
		return campaign.ProductIDs.Contains(line.ProductID)
	default:
		return false
	}
}

func sortIDs(ids []uuid.UUID) {
	sort.Slice(ids, func(i, j int) bool {
		return bytes.Compare(ids[i][:], ids[j][:]) < 0
	})
}

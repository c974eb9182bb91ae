package pricing

import (
	"bytes"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/atacado-backend/pkg/db/models"
	"github.com/angelmondragon/atacado-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/atacado-backend/pkg/errors"
	"github.com/angelmondragon/atacado-backend/pkg/money"
)

// GiftProduct is the snapshot needed to materialize a gift line.
type GiftProduct struct {
	Name       string
	CategoryID *uuid.UUID
}

// Input is everything a calculation depends on. The same Input always yields
// the same Result.
type Input struct {
	Lines             []Line
	ShippingCost      decimal.Decimal
	CashbackToUse     decimal.Decimal
	AvailableCashback decimal.Decimal
	StateCondition    *models.SupplierStateCondition
	PaymentCondition  *models.PaymentCondition
	Campaigns         []models.Campaign
	GiftProducts      map[uuid.UUID]GiftProduct
	At                time.Time
}

// Result is the authoritative monetary outcome of an order.
type Result struct {
	Items                    []ResolvedLine
	SubtotalAmount           decimal.Decimal
	ShippingCost             decimal.Decimal
	Adjustments              decimal.Decimal
	TotalAmount              decimal.Decimal
	TotalCashback            decimal.Decimal
	CashbackUsed             decimal.Decimal
	SupplierStateConditionID *uuid.UUID
	PaymentConditionID       *uuid.UUID
	AppliedCampaignIDs       []uuid.UUID
}

// Calculator runs the two-pass order calculation.
type Calculator struct {
	resolver *Resolver
}

func NewCalculator(resolver *Resolver) *Calculator {
	if resolver == nil {
		resolver = NewResolver(DefaultPolicy())
	}
	return &Calculator{resolver: resolver}
}

func (c *Calculator) Calculate(in Input) (*Result, error) {
	mp := c.resolver.policy.Money
	if err := validateInput(in, mp); err != nil {
		return nil, err
	}

	// Pass 1: baseline without campaigns, used only for threshold checks.
	baselineSubtotal := decimal.Zero
	totalQuantity := 0
	for _, line := range in.Lines {
		resolved := c.resolver.ResolveLine(line, in.StateCondition, nil)
		baselineSubtotal = baselineSubtotal.Add(resolved.LineTotal)
		totalQuantity += line.Quantity
	}

	eligible := eligibleCampaigns(in.Campaigns, in.At, baselineSubtotal, totalQuantity)

	// Pass 2: final pricing with the eligible cashback campaigns.
	result := &Result{
		Items:          make([]ResolvedLine, 0, len(in.Lines)),
		SubtotalAmount: decimal.Zero,
		Adjustments:    decimal.Zero,
		TotalCashback:  decimal.Zero,
	}
	applied := map[uuid.UUID]struct{}{}
	for _, line := range in.Lines {
		resolved := c.resolver.ResolveLine(line, in.StateCondition, eligible)
		result.Items = append(result.Items, resolved)
		result.SubtotalAmount = result.SubtotalAmount.Add(resolved.LineTotal)
		result.Adjustments = result.Adjustments.Add(
			mp.Mul(resolved.AdjustedUnitPrice.Sub(line.BaseUnitPrice), decimal.NewFromInt(int64(line.Quantity))),
		)
		result.TotalCashback = result.TotalCashback.Add(resolved.AppliedCashbackAmount)
		for _, id := range resolved.CampaignIDs {
			applied[id] = struct{}{}
		}
	}

	for _, gift := range giftLines(eligible, in.Lines, in.GiftProducts) {
		result.Items = append(result.Items, gift)
		applied[*gift.GiftCampaignID] = struct{}{}
	}

	result.AppliedCampaignIDs = make([]uuid.UUID, 0, len(applied))
	for id := range applied {
		result.AppliedCampaignIDs = append(result.AppliedCampaignIDs, id)
	}
	sortIDs(result.AppliedCampaignIDs)

	result.ShippingCost = in.ShippingCost
	result.CashbackUsed = in.CashbackToUse
	if err := checkCashback(in.CashbackToUse, in.AvailableCashback, result.SubtotalAmount.Add(in.ShippingCost), mp); err != nil {
		return nil, err
	}
	result.TotalAmount = result.SubtotalAmount.Add(in.ShippingCost).Sub(in.CashbackToUse)

	if in.StateCondition != nil {
		id := in.StateCondition.ID
		result.SupplierStateConditionID = &id
	}
	if in.PaymentCondition != nil {
		id := in.PaymentCondition.ID
		result.PaymentConditionID = &id
	}
	return result, nil
}

func validateInput(in Input, mp money.Policy) error {
	if len(in.Lines) == 0 {
		return validationError("items", "at least one item is required")
	}
	for i, line := range in.Lines {
		if line.ProductID == uuid.Nil {
			return validationError("items", "product id is required").WithDetails(map[string]any{"field": "items", "index": i})
		}
		if line.Quantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive").
				WithDetails(map[string]any{"field": "quantity", "index": i, "value": line.Quantity})
		}
		if line.BaseUnitPrice.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "base price must not be negative").
				WithDetails(map[string]any{"field": "base_price", "index": i, "value": line.BaseUnitPrice.String()})
		}
	}
	if err := validateAmount("shipping_cost", in.ShippingCost, mp); err != nil {
		return err
	}
	return validateAmount("cashback_to_use", in.CashbackToUse, mp)
}

func validateAmount(field string, value decimal.Decimal, mp money.Policy) error {
	if value.IsNegative() {
		return validationError(field, "must not be negative")
	}
	if !value.Equal(mp.Round(value)) {
		return validationError(field, "has more decimal places than the currency allows")
	}
	return nil
}

func validationError(field, msg string) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeValidation, field+" "+msg).
		WithDetails(map[string]any{"field": field})
}

// eligibleCampaigns keeps running campaigns whose order-level thresholds the
// baseline meets, ordered by id.
func eligibleCampaigns(campaigns []models.Campaign, at time.Time, subtotal decimal.Decimal, quantity int) []models.Campaign {
	out := make([]models.Campaign, 0, len(campaigns))
	for _, campaign := range campaigns {
		if !campaign.RunningAt(at) {
			continue
		}
		if campaign.MinOrderTotal != nil && subtotal.LessThan(*campaign.MinOrderTotal) {
			continue
		}
		if campaign.MinQuantity != nil && quantity < *campaign.MinQuantity {
			continue
		}
		out = append(out, campaign)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return bytes.Compare(out[i].ID[:], out[j].ID[:]) < 0
	})
	return out
}

// giftLines appends one zero-priced line per distinct gift product, first
// campaign by id wins. Gift campaigns scoped to a category or product need at
// least one matching line; gifts whose product is unknown are skipped.
func giftLines(eligible []models.Campaign, lines []Line, products map[uuid.UUID]GiftProduct) []ResolvedLine {
	var out []ResolvedLine
	granted := map[uuid.UUID]struct{}{}
	for _, campaign := range eligible {
		if campaign.Type != enums.CampaignTypeGift || campaign.GiftProductID == nil {
			continue
		}
		productID := *campaign.GiftProductID
		if _, dup := granted[productID]; dup {
			continue
		}
		product, ok := products[productID]
		if !ok || !anyLineMatches(campaign, lines) {
			continue
		}
		granted[productID] = struct{}{}
		campaignID := campaign.ID
		out = append(out, ResolvedLine{
			Line: Line{
				ProductID:     productID,
				ProductName:   product.Name,
				CategoryID:    product.CategoryID,
				BaseUnitPrice: decimal.Zero,
				Quantity:      1,
			},
			AdjustedUnitPrice:     decimal.Zero,
			LineTotal:             decimal.Zero,
			CashbackRate:          decimal.Zero,
			AppliedCashbackAmount: decimal.Zero,
			IsGift:                true,
			GiftCampaignID:        &campaignID,
		})
	}
	return out
}

func anyLineMatches(campaign models.Campaign, lines []Line) bool {
	for _, line := range lines {
		if AppliesToLine(campaign, line) {
			return true
		}
	}
	return false
}

func checkCashback(requested, available, orderTotal decimal.Decimal, mp money.Policy) error {
	if !requested.IsPositive() {
		return nil
	}
	if requested.GreaterThan(available) {
		return pkgerrors.New(pkgerrors.CodeInsufficientCashback, "requested cashback exceeds wallet balance").
			WithDetails(map[string]any{
				"requested": requested.StringFixed(mp.Places),
				"available": available.StringFixed(mp.Places),
				"shortfall": requested.Sub(available).StringFixed(mp.Places),
			})
	}
	if requested.GreaterThan(orderTotal) {
		return pkgerrors.New(pkgerrors.CodeCashbackExceedsOrderTotal, "requested cashback exceeds order total").
			WithDetails(map[string]any{
				"requested":   requested.StringFixed(mp.Places),
				"order_total": orderTotal.StringFixed(mp.Places),
				"excess":      requested.Sub(orderTotal).StringFixed(mp.Places),
			})
	}
	return nil
}

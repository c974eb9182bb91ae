package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/atacado-backend/internal/pricing"
	"github.com/angelmondragon/atacado-backend/pkg/db/models"
)

type lineRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

// calculateRequest is shared by the preview and placement endpoints. The
// buyer is always the caller's organization.
type calculateRequest struct {
	SupplierOrgID      string           `json:"supplier_org_id" validate:"required,uuid"`
	ShippingAddressID  string           `json:"shipping_address_id" validate:"required,uuid"`
	BuyerState         string           `json:"buyer_state" validate:"required,uf"`
	PaymentConditionID *string          `json:"payment_condition_id,omitempty" validate:"omitempty,uuid"`
	PaymentMethod      *string          `json:"payment_method,omitempty" validate:"omitempty,payment_method"`
	ShippingCost       *decimal.Decimal `json:"shipping_cost,omitempty"`
	CashbackToUse      *decimal.Decimal `json:"cashback_to_use,omitempty"`
	Items              []lineRequest    `json:"items" validate:"required,min=1,max=200,dive"`
}

type transitionRequest struct {
	Status string  `json:"status" validate:"required,order_status"`
	Note   *string `json:"note,omitempty" validate:"omitempty,max=1000"`
}

type lineResponse struct {
	ProductID             string   `json:"product_id"`
	ProductName           string   `json:"product_name"`
	CategoryID            *string  `json:"category_id,omitempty"`
	Quantity              int      `json:"quantity"`
	UnitPrice             string   `json:"unit_price"`
	AdjustedUnitPrice     string   `json:"adjusted_unit_price"`
	LineTotal             string   `json:"line_total"`
	CashbackRate          string   `json:"cashback_rate"`
	AppliedCashbackAmount string   `json:"applied_cashback_amount"`
	PriceClamped          bool     `json:"price_clamped"`
	IsGift                bool     `json:"is_gift"`
	GiftCampaignID        *string  `json:"gift_campaign_id,omitempty"`
	CampaignIDs           []string `json:"campaign_ids,omitempty"`
}

type calculationResponse struct {
	Items                    []lineResponse `json:"items"`
	SubtotalAmount           string         `json:"subtotal_amount"`
	ShippingCost             string         `json:"shipping_cost"`
	Adjustments              string         `json:"adjustments"`
	TotalAmount              string         `json:"total_amount"`
	TotalCashback            string         `json:"total_cashback"`
	CashbackUsed             string         `json:"cashback_used"`
	SupplierStateConditionID *string        `json:"supplier_state_condition_id,omitempty"`
	PaymentConditionID       *string        `json:"payment_condition_id,omitempty"`
	AppliedCampaignIDs       []string       `json:"applied_campaign_ids"`
}

type historyResponse struct {
	ID             string    `json:"id"`
	OrderID        string    `json:"order_id"`
	PreviousStatus *string   `json:"previous_status,omitempty"`
	NewStatus      string    `json:"new_status"`
	ActorUserID    string    `json:"actor_user_id"`
	ActorOrgID     string    `json:"actor_org_id"`
	ActorOrgType   string    `json:"actor_org_type"`
	Note           *string   `json:"note,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type orderResponse struct {
	ID                       string            `json:"id"`
	BuyerOrgID               string            `json:"buyer_org_id"`
	SupplierOrgID            string            `json:"supplier_org_id"`
	Status                   string            `json:"status"`
	PlacedAt                 *time.Time        `json:"placed_at,omitempty"`
	ShippingAddressID        string            `json:"shipping_address_id"`
	BuyerState               string            `json:"buyer_state"`
	PaymentMethod            *string           `json:"payment_method,omitempty"`
	SubtotalAmount           string            `json:"subtotal_amount"`
	ShippingCost             string            `json:"shipping_cost"`
	Adjustments              string            `json:"adjustments"`
	TotalAmount              string            `json:"total_amount"`
	TotalCashback            string            `json:"total_cashback"`
	CashbackUsed             string            `json:"cashback_used"`
	SupplierStateConditionID *string           `json:"supplier_state_condition_id,omitempty"`
	PaymentConditionID       *string           `json:"payment_condition_id,omitempty"`
	Version                  int               `json:"version"`
	CreatedBy                string            `json:"created_by"`
	CreatedAt                time.Time         `json:"created_at"`
	UpdatedAt                time.Time         `json:"updated_at"`
	Items                    []lineResponse    `json:"items,omitempty"`
	History                  []historyResponse `json:"history,omitempty"`
}

type orderListResponse struct {
	Orders     []orderResponse `json:"orders"`
	NextCursor string          `json:"next_cursor,omitempty"`
}

// presenter renders money at the configured currency scale.
type presenter struct {
	places int32
}

func (p presenter) money(d decimal.Decimal) string {
	return d.StringFixed(p.places)
}

func (p presenter) calculation(result *pricing.Result) calculationResponse {
	items := make([]lineResponse, 0, len(result.Items))
	for _, line := range result.Items {
		items = append(items, lineResponse{
			ProductID:             line.ProductID.String(),
			ProductName:           line.ProductName,
			CategoryID:            optionalID(line.CategoryID),
			Quantity:              line.Quantity,
			UnitPrice:             p.money(line.BaseUnitPrice),
			AdjustedUnitPrice:     p.money(line.AdjustedUnitPrice),
			LineTotal:             p.money(line.LineTotal),
			CashbackRate:          line.CashbackRate.StringFixed(2),
			AppliedCashbackAmount: p.money(line.AppliedCashbackAmount),
			PriceClamped:          line.PriceClamped,
			IsGift:                line.IsGift,
			GiftCampaignID:        optionalID(line.GiftCampaignID),
			CampaignIDs:           idStrings(line.CampaignIDs),
		})
	}
	applied := idStrings(result.AppliedCampaignIDs)
	if applied == nil {
		applied = []string{}
	}
	return calculationResponse{
		Items:                    items,
		SubtotalAmount:           p.money(result.SubtotalAmount),
		ShippingCost:             p.money(result.ShippingCost),
		Adjustments:              p.money(result.Adjustments),
		TotalAmount:              p.money(result.TotalAmount),
		TotalCashback:            p.money(result.TotalCashback),
		CashbackUsed:             p.money(result.CashbackUsed),
		SupplierStateConditionID: optionalID(result.SupplierStateConditionID),
		PaymentConditionID:       optionalID(result.PaymentConditionID),
		AppliedCampaignIDs:       applied,
	}
}

func (p presenter) order(o *models.Order) orderResponse {
	resp := orderResponse{
		ID:                       o.ID.String(),
		BuyerOrgID:               o.BuyerOrgID.String(),
		SupplierOrgID:            o.SupplierOrgID.String(),
		Status:                   o.Status.String(),
		PlacedAt:                 o.PlacedAt,
		ShippingAddressID:        o.ShippingAddressID.String(),
		BuyerState:               string(o.BuyerState),
		SubtotalAmount:           p.money(o.SubtotalAmount),
		ShippingCost:             p.money(o.ShippingCost),
		Adjustments:              p.money(o.Adjustments),
		TotalAmount:              p.money(o.TotalAmount),
		TotalCashback:            p.money(o.TotalCashback),
		CashbackUsed:             p.money(o.CashbackUsed),
		SupplierStateConditionID: optionalID(o.SupplierStateConditionID),
		PaymentConditionID:       optionalID(o.PaymentConditionID),
		Version:                  o.Version,
		CreatedBy:                o.CreatedBy.String(),
		CreatedAt:                o.CreatedAt,
		UpdatedAt:                o.UpdatedAt,
	}
	if o.PaymentMethod != nil {
		method := string(*o.PaymentMethod)
		resp.PaymentMethod = &method
	}
	for _, item := range o.Items {
		resp.Items = append(resp.Items, lineResponse{
			ProductID:             item.ProductID.String(),
			ProductName:           item.ProductName,
			CategoryID:            optionalID(item.CategoryID),
			Quantity:              item.Quantity,
			UnitPrice:             p.money(item.UnitPrice),
			AdjustedUnitPrice:     p.money(item.AdjustedUnitPrice),
			LineTotal:             p.money(item.LineTotal),
			CashbackRate:          item.CashbackRate.StringFixed(2),
			AppliedCashbackAmount: p.money(item.AppliedCashbackAmount),
			PriceClamped:          item.PriceClamped,
			IsGift:                item.IsGift,
			GiftCampaignID:        optionalID(item.GiftCampaignID),
		})
	}
	for i := range o.History {
		resp.History = append(resp.History, history(&o.History[i]))
	}
	return resp
}

func history(h *models.OrderStatusHistory) historyResponse {
	resp := historyResponse{
		ID:           h.ID.String(),
		OrderID:      h.OrderID.String(),
		NewStatus:    h.NewStatus.String(),
		ActorUserID:  h.ActorUserID.String(),
		ActorOrgID:   h.ActorOrgID.String(),
		ActorOrgType: h.ActorOrgType.String(),
		Note:         h.Note,
		CreatedAt:    h.CreatedAt,
	}
	if h.PreviousStatus != nil {
		prev := h.PreviousStatus.String()
		resp.PreviousStatus = &prev
	}
	return resp
}

func optionalID(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func idStrings(ids []uuid.UUID) []string {
	if len(ids) == 0 {
		return nil
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}

package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/atacado-backend/pkg/enums"
)

// OrderPlacedEvent is emitted once an order is committed in PLACED.
type OrderPlacedEvent struct {
	OrderID       uuid.UUID            `json:"order_id"`
	BuyerOrgID    uuid.UUID            `json:"buyer_org_id"`
	SupplierOrgID uuid.UUID            `json:"supplier_org_id"`
	BuyerState    enums.BrazilianState `json:"buyer_state"`
	ItemCount     int                  `json:"item_count"`
	Subtotal      decimal.Decimal      `json:"subtotal_amount"`
	Total         decimal.Decimal      `json:"total_amount"`
	TotalCashback decimal.Decimal      `json:"total_cashback"`
	CashbackUsed  decimal.Decimal      `json:"cashback_used"`
	PlacedAt      time.Time            `json:"placed_at"`
}

// OrderStatusChangedEvent records one applied transition.
type OrderStatusChangedEvent struct {
	OrderID        uuid.UUID              `json:"order_id"`
	BuyerOrgID     uuid.UUID              `json:"buyer_org_id"`
	SupplierOrgID  uuid.UUID              `json:"supplier_org_id"`
	PreviousStatus enums.OrderStatus      `json:"previous_status"`
	NewStatus      enums.OrderStatus      `json:"new_status"`
	ActorOrgType   enums.OrganizationType `json:"actor_org_type"`
	Note           *string                `json:"note,omitempty"`
	ChangedAt      time.Time              `json:"changed_at"`
}

// CashbackPostedEvent is shared by cashback_earned and cashback_used.
type CashbackPostedEvent struct {
	WalletID         uuid.UUID                     `json:"wallet_id"`
	OrganizationID   uuid.UUID                     `json:"organization_id"`
	TransactionID    uuid.UUID                     `json:"transaction_id"`
	OrderID          *uuid.UUID                    `json:"order_id,omitempty"`
	Type             enums.CashbackTransactionType `json:"type"`
	Amount           decimal.Decimal               `json:"amount"`
	AvailableBalance decimal.Decimal               `json:"available_balance"`
}

package orders

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/atacado-backend/pkg/db/models"
	"github.com/angelmondragon/atacado-backend/pkg/enums"
	"github.com/angelmondragon/atacado-backend/pkg/outbox"
	"github.com/angelmondragon/atacado-backend/pkg/pagination"
)

// Actor is the authenticated caller: a user acting for one organization.
type Actor struct {
	UserID  uuid.UUID
	OrgID   uuid.UUID
	OrgType enums.OrganizationType
}

func (a Actor) ref() *outbox.ActorRef {
	return &outbox.ActorRef{UserID: a.UserID, OrgID: a.OrgID, OrgType: a.OrgType.String()}
}

// LineInput is one requested product line.
type LineInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// CalculateInput carries everything a preview needs. PaymentConditionID wins
// over PaymentMethod when both are set.
type CalculateInput struct {
	BuyerOrgID         uuid.UUID
	SupplierOrgID      uuid.UUID
	ShippingAddressID  uuid.UUID
	BuyerState         enums.BrazilianState
	PaymentConditionID *uuid.UUID
	PaymentMethod      *enums.PaymentMethod
	ShippingCost       decimal.Decimal
	CashbackToUse      decimal.Decimal
	Items              []LineInput
}

// PlaceOrderInput commits a calculation. Repeating IdempotencyKey with the
// same request returns the order created first; reusing it for a different
// request or user fails with IDEMPOTENCY_KEY_REUSED.
type PlaceOrderInput struct {
	CalculateInput
	Actor          Actor
	IdempotencyKey string
}

// TransitionInput moves an order to Target.
type TransitionInput struct {
	OrderID        uuid.UUID
	Actor          Actor
	Target         enums.OrderStatus
	Note           *string
	IdempotencyKey string
}

// ListOrdersInput pages through the orders the actor is a party to.
type ListOrdersInput struct {
	Actor  Actor
	Status *enums.OrderStatus
	Params pagination.Params
}

// OrderList is one page of orders, newest first.
type OrderList struct {
	Orders     []models.Order
	NextCursor string
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/atacado-backend/pkg/enums"
)

// Order is a committed wholesale order between a buying store and a supplier.
type Order struct {
	ID                       uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	BuyerOrgID               uuid.UUID            `gorm:"column:buyer_org_id;type:uuid;not null"`
	SupplierOrgID            uuid.UUID            `gorm:"column:supplier_org_id;type:uuid;not null"`
	Status                   enums.OrderStatus    `gorm:"column:status;type:text;not null"`
	PlacedAt                 *time.Time           `gorm:"column:placed_at"`
	ShippingAddressID        uuid.UUID            `gorm:"column:shipping_address_id;type:uuid;not null"`
	BuyerState               enums.BrazilianState `gorm:"column:buyer_state;type:text;not null"`
	PaymentMethod            *enums.PaymentMethod `gorm:"column:payment_method;type:text"`
	SubtotalAmount           decimal.Decimal      `gorm:"column:subtotal_amount;type:numeric(12,2);not null"`
	ShippingCost             decimal.Decimal      `gorm:"column:shipping_cost;type:numeric(12,2);not null"`
	Adjustments              decimal.Decimal      `gorm:"column:adjustments;type:numeric(12,2);not null"`
	TotalAmount              decimal.Decimal      `gorm:"column:total_amount;type:numeric(12,2);not null"`
	TotalCashback            decimal.Decimal      `gorm:"column:total_cashback;type:numeric(12,2);not null"`
	CashbackUsed             decimal.Decimal      `gorm:"column:cashback_used;type:numeric(12,2);not null"`
	SupplierStateConditionID *uuid.UUID           `gorm:"column:supplier_state_condition_id;type:uuid"`
	PaymentConditionID       *uuid.UUID           `gorm:"column:payment_condition_id;type:uuid"`
	Version                  int                  `gorm:"column:version;not null"`
	IdempotencyKey           *string              `gorm:"column:idempotency_key"`
	RequestHash              *string              `gorm:"column:request_hash"`
	CreatedBy                uuid.UUID            `gorm:"column:created_by;type:uuid;not null"`
	Items                    []OrderItem          `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	History                  []OrderStatusHistory `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt                time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt                time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

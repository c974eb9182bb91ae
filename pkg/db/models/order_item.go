package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderItem snapshots one product line at placement. Only the cashback
// annotation may change afterwards.
type OrderItem struct {
	ID                    uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	OrderID               uuid.UUID       `gorm:"column:order_id;type:uuid;not null"`
	Position              int             `gorm:"column:position;not null"`
	ProductID             uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	ProductName           string          `gorm:"column:product_name;not null"`
	CategoryID            *uuid.UUID      `gorm:"column:category_id;type:uuid"`
	Quantity              int             `gorm:"column:quantity;not null"`
	UnitPrice             decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	AdjustedUnitPrice     decimal.Decimal `gorm:"column:adjusted_unit_price;type:numeric(12,2);not null"`
	LineTotal             decimal.Decimal `gorm:"column:line_total;type:numeric(12,2);not null"`
	CashbackRate          decimal.Decimal `gorm:"column:cashback_rate;type:numeric(5,2);not null"`
	AppliedCashbackAmount decimal.Decimal `gorm:"column:applied_cashback_amount;type:numeric(12,2);not null"`
	PriceClamped          bool            `gorm:"column:price_clamped;not null"`
	IsGift                bool            `gorm:"column:is_gift;not null"`
	GiftCampaignID        *uuid.UUID      `gorm:"column:gift_campaign_id;type:uuid"`
}

func (i *OrderItem) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

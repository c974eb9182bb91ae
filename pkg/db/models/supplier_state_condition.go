package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/atacado-backend/pkg/enums"
)

// SupplierStateCondition holds a supplier's commercial terms for buyers in one state.
type SupplierStateCondition struct {
	ID                  uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	SupplierOrgID       uuid.UUID            `gorm:"column:supplier_org_id;type:uuid;not null"`
	State               enums.BrazilianState `gorm:"column:state;type:text;not null"`
	CashbackPercent     decimal.Decimal      `gorm:"column:cashback_percent;type:numeric(5,2);not null"`
	PaymentTermDays     int                  `gorm:"column:payment_term_days;not null"`
	UnitPriceAdjustment decimal.Decimal      `gorm:"column:unit_price_adjustment;type:numeric(12,2);not null"`
	EffectiveFrom       time.Time            `gorm:"column:effective_from;not null"`
	EffectiveUntil      *time.Time           `gorm:"column:effective_until"`
	CreatedAt           time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// EffectiveAt reports whether the condition's date range contains at.
func (c SupplierStateCondition) EffectiveAt(at time.Time) bool {
	if at.Before(c.EffectiveFrom) {
		return false
	}
	return c.EffectiveUntil == nil || !at.After(*c.EffectiveUntil)
}

func (c *SupplierStateCondition) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

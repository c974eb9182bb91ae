package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/atacado-backend/pkg/enums"
)

// PaymentCondition holds a supplier's terms for one payment method.
type PaymentCondition struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	SupplierOrgID   uuid.UUID           `gorm:"column:supplier_org_id;type:uuid;not null"`
	Name            string              `gorm:"column:name;not null"`
	PaymentMethod   enums.PaymentMethod `gorm:"column:payment_method;type:text;not null"`
	PaymentTermDays int                 `gorm:"column:payment_term_days;not null"`
	Notes           *string             `gorm:"column:notes"`
	Active          bool                `gorm:"column:active;not null"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *PaymentCondition) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

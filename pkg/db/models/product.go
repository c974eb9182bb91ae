package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is the read model of the supplier catalog the engine prices from.
type Product struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	SupplierOrgID uuid.UUID       `gorm:"column:supplier_org_id;type:uuid;not null"`
	Name          string          `gorm:"column:name;not null"`
	CategoryID    *uuid.UUID      `gorm:"column:category_id;type:uuid"`
	BasePrice     decimal.Decimal `gorm:"column:base_price;type:numeric(12,2);not null"`
	Active        bool            `gorm:"column:active;not null"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

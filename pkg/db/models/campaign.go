package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	dbtypes "github.com/angelmondragon/atacado-backend/pkg/db/types"
	"github.com/angelmondragon/atacado-backend/pkg/enums"
)

// Campaign is a supplier promotion granting cashback or a gift line.
type Campaign struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	SupplierOrgID   uuid.UUID           `gorm:"column:supplier_org_id;type:uuid;not null"`
	Name            string              `gorm:"column:name;not null"`
	Type            enums.CampaignType  `gorm:"column:type;type:text;not null"`
	Scope           enums.CampaignScope `gorm:"column:scope;type:text;not null"`
	CategoryID      *uuid.UUID          `gorm:"column:category_id;type:uuid"`
	ProductIDs      dbtypes.UUIDArray   `gorm:"column:product_ids;type:uuid[]"`
	MinOrderTotal   *decimal.Decimal    `gorm:"column:min_order_total;type:numeric(12,2)"`
	MinQuantity     *int                `gorm:"column:min_quantity"`
	CashbackPercent *decimal.Decimal    `gorm:"column:cashback_percent;type:numeric(5,2)"`
	GiftProductID   *uuid.UUID          `gorm:"column:gift_product_id;type:uuid"`
	StartsAt        time.Time           `gorm:"column:starts_at;not null"`
	EndsAt          *time.Time          `gorm:"column:ends_at"`
	Active          bool                `gorm:"column:active;not null"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// RunningAt reports whether the campaign is active and its window contains at.
func (c Campaign) RunningAt(at time.Time) bool {
	if !c.Active || at.Before(c.StartsAt) {
		return false
	}
	return c.EndsAt == nil || !at.After(*c.EndsAt)
}

func (c *Campaign) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CashbackWallet is the cached balance projection of an organization's ledger.
type CashbackWallet struct {
	ID               uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	OrganizationID   uuid.UUID       `gorm:"column:organization_id;type:uuid;not null;uniqueIndex"`
	AvailableBalance decimal.Decimal `gorm:"column:available_balance;type:numeric(12,2);not null"`
	TotalEarned      decimal.Decimal `gorm:"column:total_earned;type:numeric(12,2);not null"`
	TotalUsed        decimal.Decimal `gorm:"column:total_used;type:numeric(12,2);not null"`
	Version          int             `gorm:"column:version;not null"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (w *CashbackWallet) BeforeCreate(*gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

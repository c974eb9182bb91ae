package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/atacado-backend/pkg/enums"
)

// CashbackTransaction is an immutable wallet ledger entry. Amount is always
// positive; Type carries the sign.
type CashbackTransaction struct {
	ID            uuid.UUID                     `gorm:"column:id;type:uuid;primaryKey"`
	WalletID      uuid.UUID                     `gorm:"column:wallet_id;type:uuid;not null"`
	OrderID       *uuid.UUID                    `gorm:"column:order_id;type:uuid"`
	Type          enums.CashbackTransactionType `gorm:"column:type;type:text;not null"`
	Amount        decimal.Decimal               `gorm:"column:amount;type:numeric(12,2);not null"`
	ReferenceID   *uuid.UUID                    `gorm:"column:reference_id;type:uuid"`
	ReferenceType *string                       `gorm:"column:reference_type"`
	Description   string                        `gorm:"column:description;not null"`
	CreatedAt     time.Time                     `gorm:"column:created_at;autoCreateTime"`
}

func (t *CashbackTransaction) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

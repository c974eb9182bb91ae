package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/atacado-backend/pkg/enums"
)

// OrderStatusHistory is an append-only record of one status change.
type OrderStatusHistory struct {
	ID             uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	OrderID        uuid.UUID              `gorm:"column:order_id;type:uuid;not null"`
	PreviousStatus *enums.OrderStatus     `gorm:"column:previous_status;type:text"`
	NewStatus      enums.OrderStatus      `gorm:"column:new_status;type:text;not null"`
	ActorUserID    uuid.UUID              `gorm:"column:actor_user_id;type:uuid;not null"`
	ActorOrgID     uuid.UUID              `gorm:"column:actor_org_id;type:uuid;not null"`
	ActorOrgType   enums.OrganizationType `gorm:"column:actor_org_type;type:text;not null"`
	Note           *string                `gorm:"column:note"`
	IdempotencyKey *string                `gorm:"column:idempotency_key"`
	CreatedAt      time.Time              `gorm:"column:created_at;autoCreateTime"`
}

func (OrderStatusHistory) TableName() string {
	return "order_status_history"
}

func (h *OrderStatusHistory) BeforeCreate(*gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}

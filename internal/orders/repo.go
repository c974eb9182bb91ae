package orders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/atacado-backend/pkg/db/models"
	"github.com/angelmondragon/atacado-backend/pkg/enums"
	"github.com/angelmondragon/atacado-backend/pkg/pagination"
)

// ErrVersionConflict means the order changed between read and write.
var ErrVersionConflict = errors.New("order version conflict")

// Repository defines persistence operations for orders, items and history.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) error
	FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	LockOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	FindByIdempotencyKey(ctx context.Context, buyerOrgID uuid.UUID, key string) (*models.Order, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, expectedVersion int, status enums.OrderStatus) error
	AppendHistory(ctx context.Context, entry *models.OrderStatusHistory) error
	FindHistoryByKey(ctx context.Context, orderID uuid.UUID, key string) (*models.OrderStatusHistory, error)
	ListOrders(ctx context.Context, filter ListFilter) ([]models.Order, error)
}

// ListFilter selects the orders of one party. Limit already includes the
// look-ahead row.
type ListFilter struct {
	OrgID   uuid.UUID
	OrgType enums.OrganizationType
	Status  *enums.OrderStatus
	Cursor  *pagination.Cursor
	Limit   int
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// CreateOrder inserts the order followed by its items and history rows.
func (r *repository) CreateOrder(ctx context.Context, order *models.Order) error {
	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(order).Error; err != nil {
		return err
	}
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
	}
	if len(order.Items) > 0 {
		if err := db.Create(&order.Items).Error; err != nil {
			return err
		}
	}
	for i := range order.History {
		order.History[i].OrderID = order.ID
	}
	if len(order.History) > 0 {
		if err := db.Create(&order.History).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *repository) FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("History", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC").Order("id ASC")
		}).
		Where("id = ?", orderID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// LockOrder reads the order row under a row lock on Postgres. sqlite write
// transactions are serialized already.
func (r *repository) LockOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	query := r.db.WithContext(ctx)
	if query.Dialector.Name() != "sqlite" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var order models.Order
	if err := query.Where("id = ?", orderID).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindByIdempotencyKey(ctx context.Context, buyerOrgID uuid.UUID, key string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Where("buyer_org_id = ? AND idempotency_key = ?", buyerOrgID, key).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateStatus is a compare-and-swap on the order version.
func (r *repository) UpdateStatus(ctx context.Context, orderID uuid.UUID, expectedVersion int, status enums.OrderStatus) error {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND version = ?", orderID, expectedVersion).
		Updates(map[string]any{
			"status":     status,
			"version":    expectedVersion + 1,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVersionConflict
	}
	return nil
}

func (r *repository) AppendHistory(ctx context.Context, entry *models.OrderStatusHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) FindHistoryByKey(ctx context.Context, orderID uuid.UUID, key string) (*models.OrderStatusHistory, error) {
	var entry models.OrderStatusHistory
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND idempotency_key = ?", orderID, key).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *repository) ListOrders(ctx context.Context, filter ListFilter) ([]models.Order, error) {
	query := r.db.WithContext(ctx).Model(&models.Order{})
	switch filter.OrgType {
	case enums.OrganizationTypeSupplier:
		query = query.Where("supplier_org_id = ?", filter.OrgID)
	default:
		query = query.Where("buyer_org_id = ?", filter.OrgID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Cursor != nil {
		query = query.Where("((created_at < ?) OR (created_at = ? AND id < ?))",
			filter.Cursor.CreatedAt, filter.Cursor.CreatedAt, filter.Cursor.ID)
	}
	var orders []models.Order
	if err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(filter.Limit).
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

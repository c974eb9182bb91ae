package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/atacado-backend/pkg/db/models"
	"github.com/angelmondragon/atacado-backend/pkg/enums"
)

// Repository reads the supplier-managed adjustment sources and product snapshots.
// It exposes no write methods.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListStateConditions(ctx context.Context, supplierOrgID uuid.UUID, state enums.BrazilianState) ([]models.SupplierStateCondition, error)
	FindPaymentCondition(ctx context.Context, id uuid.UUID) (*models.PaymentCondition, error)
	ListPaymentConditionsByMethod(ctx context.Context, supplierOrgID uuid.UUID, method enums.PaymentMethod) ([]models.PaymentCondition, error)
	ListActiveCampaigns(ctx context.Context, supplierOrgID uuid.UUID) ([]models.Campaign, error)
	ListProducts(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a catalog repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) ListStateConditions(ctx context.Context, supplierOrgID uuid.UUID, state enums.BrazilianState) ([]models.SupplierStateCondition, error) {
	var rows []models.SupplierStateCondition
	err := r.db.WithContext(ctx).
		Where("supplier_org_id = ? AND state = ?", supplierOrgID, state).
		Order("effective_from ASC").
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindPaymentCondition(ctx context.Context, id uuid.UUID) (*models.PaymentCondition, error) {
	var row models.PaymentCondition
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) ListPaymentConditionsByMethod(ctx context.Context, supplierOrgID uuid.UUID, method enums.PaymentMethod) ([]models.PaymentCondition, error) {
	var rows []models.PaymentCondition
	err := r.db.WithContext(ctx).
		Where("supplier_org_id = ? AND payment_method = ? AND active = ?", supplierOrgID, method, true).
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) ListActiveCampaigns(ctx context.Context, supplierOrgID uuid.UUID) ([]models.Campaign, error) {
	var rows []models.Campaign
	err := r.db.WithContext(ctx).
		Where("supplier_org_id = ? AND active = ?", supplierOrgID, true).
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) ListProducts(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&rows).Error
	return rows, err
}

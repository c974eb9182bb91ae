package cashback

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/atacado-backend/pkg/db/models"
	"github.com/angelmondragon/atacado-backend/pkg/enums"
)

// ErrVersionConflict means the wallet row changed between read and write.
var ErrVersionConflict = errors.New("cashback wallet version conflict")

// Repository manages persistence for wallets and their ledger entries.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindWallet(ctx context.Context, orgID uuid.UUID) (*models.CashbackWallet, error)
	ShareLockWallet(ctx context.Context, walletID uuid.UUID) (*models.CashbackWallet, error)
	LockWallet(ctx context.Context, orgID uuid.UUID) (*models.CashbackWallet, error)
	EnsureWallet(ctx context.Context, orgID uuid.UUID) error
	UpdateWallet(ctx context.Context, wallet *models.CashbackWallet, expectedVersion int) error
	CreateTransaction(ctx context.Context, entry *models.CashbackTransaction) error
	ListTransactions(ctx context.Context, walletID uuid.UUID, limit int) ([]models.CashbackTransaction, error)
	SumByType(ctx context.Context, walletID uuid.UUID) (map[enums.CashbackTransactionType]decimal.Decimal, error)
	ListWalletIDs(ctx context.Context) ([]uuid.UUID, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a cashback repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindWallet(ctx context.Context, orgID uuid.UUID) (*models.CashbackWallet, error) {
	var wallet models.CashbackWallet
	if err := r.db.WithContext(ctx).Where("organization_id = ?", orgID).First(&wallet).Error; err != nil {
		return nil, err
	}
	return &wallet, nil
}

// ShareLockWallet reads the wallet by id and holds a share lock on the row, so
// no post can commit against it until the caller's transaction ends.
func (r *repository) ShareLockWallet(ctx context.Context, walletID uuid.UUID) (*models.CashbackWallet, error) {
	query := r.db.WithContext(ctx)
	if query.Dialector.Name() != "sqlite" {
		query = query.Clauses(clause.Locking{Strength: "SHARE"})
	}
	var wallet models.CashbackWallet
	if err := query.Where("id = ?", walletID).First(&wallet).Error; err != nil {
		return nil, err
	}
	return &wallet, nil
}

// LockWallet reads the wallet with a row lock. sqlite has no row locks; its
// write transactions are already serialized.
func (r *repository) LockWallet(ctx context.Context, orgID uuid.UUID) (*models.CashbackWallet, error) {
	query := r.db.WithContext(ctx)
	if query.Dialector.Name() != "sqlite" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var wallet models.CashbackWallet
	if err := query.Where("organization_id = ?", orgID).First(&wallet).Error; err != nil {
		return nil, err
	}
	return &wallet, nil
}

// EnsureWallet inserts an empty wallet unless one exists for the organization.
func (r *repository) EnsureWallet(ctx context.Context, orgID uuid.UUID) error {
	wallet := &models.CashbackWallet{
		OrganizationID:   orgID,
		AvailableBalance: decimal.Zero,
		TotalEarned:      decimal.Zero,
		TotalUsed:        decimal.Zero,
		Version:          1,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "organization_id"}}, DoNothing: true}).
		Create(wallet).Error
}

// UpdateWallet writes the balance projection when the stored version still
// matches expectedVersion, bumping it by one.
func (r *repository) UpdateWallet(ctx context.Context, wallet *models.CashbackWallet, expectedVersion int) error {
	now := time.Now().UTC()
	res := r.db.WithContext(ctx).
		Model(&models.CashbackWallet{}).
		Where("id = ? AND version = ?", wallet.ID, expectedVersion).
		Updates(map[string]any{
			"available_balance": wallet.AvailableBalance,
			"total_earned":      wallet.TotalEarned,
			"total_used":        wallet.TotalUsed,
			"version":           expectedVersion + 1,
			"updated_at":        now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVersionConflict
	}
	wallet.Version = expectedVersion + 1
	wallet.UpdatedAt = now
	return nil
}

func (r *repository) CreateTransaction(ctx context.Context, entry *models.CashbackTransaction) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListTransactions(ctx context.Context, walletID uuid.UUID, limit int) ([]models.CashbackTransaction, error) {
	var entries []models.CashbackTransaction
	query := r.db.WithContext(ctx).
		Where("wallet_id = ?", walletID).
		Order("created_at DESC").
		Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// SumByType totals the ledger per entry type. Amounts are summed in Go so the
// result is exact on every driver.
func (r *repository) SumByType(ctx context.Context, walletID uuid.UUID) (map[enums.CashbackTransactionType]decimal.Decimal, error) {
	var entries []models.CashbackTransaction
	if err := r.db.WithContext(ctx).
		Select("type", "amount").
		Where("wallet_id = ?", walletID).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	sums := map[enums.CashbackTransactionType]decimal.Decimal{
		enums.CashbackTransactionEarned: decimal.Zero,
		enums.CashbackTransactionUsed:   decimal.Zero,
	}
	for _, entry := range entries {
		sums[entry.Type] = sums[entry.Type].Add(entry.Amount)
	}
	return sums, nil
}

func (r *repository) ListWalletIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&models.CashbackWallet{}).
		Order("id ASC").
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/atacado-backend/pkg/db/models"
	"github.com/angelmondragon/atacado-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/atacado-backend/pkg/errors"
	"github.com/angelmondragon/atacado-backend/pkg/logger"
)

// ProductSnapshot is the slice of the product catalog pricing needs.
type ProductSnapshot struct {
	ID         uuid.UUID
	Name       string
	CategoryID *uuid.UUID
	BasePrice  decimal.Decimal
	Active     bool
}

// Service looks up the adjustment sources applicable to an order.
type Service interface {
	WithTx(tx *gorm.DB) Service
	ActiveStateCondition(ctx context.Context, supplierOrgID uuid.UUID, state enums.BrazilianState, at time.Time) (*models.SupplierStateCondition, error)
	PaymentConditionByID(ctx context.Context, supplierOrgID, id uuid.UUID) (*models.PaymentCondition, error)
	PaymentConditionForMethod(ctx context.Context, supplierOrgID uuid.UUID, method enums.PaymentMethod) (*models.PaymentCondition, error)
	ActiveCampaigns(ctx context.Context, supplierOrgID uuid.UUID, at time.Time) ([]models.Campaign, error)
	Products(ctx context.Context, supplierOrgID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]ProductSnapshot, error)
	GiftProducts(ctx context.Context, supplierOrgID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]ProductSnapshot, error)
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService wires the catalog accessor.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) WithTx(tx *gorm.DB) Service {
	if tx == nil {
		return s
	}
	return &service{repo: s.repo.WithTx(tx), logg: s.logg}
}

// ActiveStateCondition returns the single condition effective at the instant, or
// nil when none is. More than one effective condition is a catalog integrity
// fault: the ids are logged and a generic error is returned.
func (s *service) ActiveStateCondition(ctx context.Context, supplierOrgID uuid.UUID, state enums.BrazilianState, at time.Time) (*models.SupplierStateCondition, error) {
	rows, err := s.repo.ListStateConditions(ctx, supplierOrgID, state)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load supplier state conditions")
	}

	var effective []models.SupplierStateCondition
	for _, row := range rows {
		if row.EffectiveAt(at) {
			effective = append(effective, row)
		}
	}

	switch len(effective) {
	case 0:
		return nil, nil
	case 1:
		return &effective[0], nil
	}

	ids := make([]string, 0, len(effective))
	for _, row := range effective {
		ids = append(ids, row.ID.String())
	}
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"supplier_org_id": supplierOrgID.String(),
		"state":           state.String(),
		"condition_ids":   ids,
		"at":              at.UTC().Format(time.RFC3339),
	})
	err = pkgerrors.New(pkgerrors.CodeAmbiguousStateCondition, "more than one supplier state condition is effective")
	s.logg.Error(logCtx, "catalog.ambiguous_state_condition", err)
	return nil, err
}

func (s *service) PaymentConditionByID(ctx context.Context, supplierOrgID, id uuid.UUID) (*models.PaymentCondition, error) {
	row, err := s.repo.FindPaymentCondition(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalidPaymentCondition(id)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment condition")
	}
	if row.SupplierOrgID != supplierOrgID || !row.Active {
		return nil, invalidPaymentCondition(id)
	}
	return row, nil
}

// PaymentConditionForMethod returns the oldest active condition for the method, or nil.
func (s *service) PaymentConditionForMethod(ctx context.Context, supplierOrgID uuid.UUID, method enums.PaymentMethod) (*models.PaymentCondition, error) {
	rows, err := s.repo.ListPaymentConditionsByMethod(ctx, supplierOrgID, method)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment conditions")
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (s *service) ActiveCampaigns(ctx context.Context, supplierOrgID uuid.UUID, at time.Time) ([]models.Campaign, error) {
	rows, err := s.repo.ListActiveCampaigns(ctx, supplierOrgID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load campaigns")
	}
	running := make([]models.Campaign, 0, len(rows))
	for _, row := range rows {
		if row.RunningAt(at) {
			running = append(running, row)
		}
	}
	sort.SliceStable(running, func(i, j int) bool {
		return bytes.Compare(running[i].ID[:], running[j].ID[:]) < 0
	})
	return running, nil
}

// Products returns snapshots for every id. Unknown, inactive and foreign
// products fail with NOT_FOUND listing the offending ids.
func (s *service) Products(ctx context.Context, supplierOrgID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]ProductSnapshot, error) {
	found, err := s.load(ctx, supplierOrgID, ids)
	if err != nil {
		return nil, err
	}
	var missing []string
	for _, id := range ids {
		snap, ok := found[id]
		if !ok || !snap.Active {
			missing = append(missing, id.String())
		}
	}
	if len(missing) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found for supplier").
			WithDetails(map[string]any{"product_ids": missing})
	}
	return found, nil
}

// GiftProducts returns whatever gift products exist for the supplier, active or not.
func (s *service) GiftProducts(ctx context.Context, supplierOrgID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]ProductSnapshot, error) {
	return s.load(ctx, supplierOrgID, ids)
}

func (s *service) load(ctx context.Context, supplierOrgID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]ProductSnapshot, error) {
	rows, err := s.repo.ListProducts(ctx, uniqueIDs(ids))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}
	out := make(map[uuid.UUID]ProductSnapshot, len(rows))
	for _, row := range rows {
		if row.SupplierOrgID != supplierOrgID {
			continue
		}
		out[row.ID] = ProductSnapshot{
			ID:         row.ID,
			Name:       row.Name,
			CategoryID: row.CategoryID,
			BasePrice:  row.BasePrice,
			Active:     row.Active,
		}
	}
	return out, nil
}

func invalidPaymentCondition(id uuid.UUID) error {
	return pkgerrors.New(pkgerrors.CodeValidation, "payment condition not available for supplier").
		WithDetails(map[string]any{"field": "payment_condition_id", "value": id.String()})
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

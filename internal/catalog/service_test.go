package catalog

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/atacado-backend/pkg/db/models"
	"github.com/angelmondragon/atacado-backend/pkg/db/sqlitetest"
	"github.com/angelmondragon/atacado-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/atacado-backend/pkg/errors"
	"github.com/angelmondragon/atacado-backend/pkg/logger"
)

func newTestService(t *testing.T) (Service, *gorm.DB, *bytes.Buffer) {
	t.Helper()
	client := sqlitetest.Open(t)
	var buf bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "catalog-test", Output: &buf})
	svc, err := NewService(NewRepository(client.DB()), logg)
	require.NoError(t, err)
	return svc, client.DB(), &buf
}

func TestActiveStateConditionSelectsEffectiveRow(t *testing.T) {
	svc, db, _ := newTestService(t)
	supplier := uuid.New()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	expired := now.Add(-24 * time.Hour)

	require.NoError(t, db.Create(&models.SupplierStateCondition{
		SupplierOrgID:       supplier,
		State:               enums.StateSP,
		UnitPriceAdjustment: decimal.RequireFromString("-5.00"),
		EffectiveFrom:       now.Add(-30 * 24 * time.Hour),
		EffectiveUntil:      &expired,
	}).Error)
	current := &models.SupplierStateCondition{
		SupplierOrgID:       supplier,
		State:               enums.StateSP,
		UnitPriceAdjustment: decimal.RequireFromString("-10.00"),
		EffectiveFrom:       now.Add(-time.Hour),
	}
	require.NoError(t, db.Create(current).Error)
	require.NoError(t, db.Create(&models.SupplierStateCondition{
		SupplierOrgID:       supplier,
		State:               enums.StateRJ,
		UnitPriceAdjustment: decimal.RequireFromString("3.00"),
		EffectiveFrom:       now.Add(-time.Hour),
	}).Error)

	got, err := svc.ActiveStateCondition(context.Background(), supplier, enums.StateSP, now)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, current.ID, got.ID)
	assert.True(t, got.UnitPriceAdjustment.Equal(decimal.RequireFromString("-10")))

	none, err := svc.ActiveStateCondition(context.Background(), supplier, enums.StateMG, now)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestActiveStateConditionRejectsOverlap(t *testing.T) {
	svc, db, buf := newTestService(t)
	supplier := uuid.New()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 2; i++ {
		require.NoError(t, db.Create(&models.SupplierStateCondition{
			SupplierOrgID:       supplier,
			State:               enums.StatePR,
			UnitPriceAdjustment: decimal.NewFromInt(int64(-i)),
			EffectiveFrom:       now.Add(-time.Duration(i+1) * time.Hour),
		}).Error)
	}

	_, err := svc.ActiveStateCondition(context.Background(), supplier, enums.StatePR, now)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeAmbiguousStateCondition))
	assert.Contains(t, buf.String(), "catalog.ambiguous_state_condition")
	assert.Contains(t, buf.String(), "condition_ids")
}

func TestPaymentConditionOwnershipAndActivity(t *testing.T) {
	svc, db, _ := newTestService(t)
	supplier := uuid.New()

	active := &models.PaymentCondition{SupplierOrgID: supplier, Name: "PIX a vista", PaymentMethod: enums.PaymentMethodPix, Active: true}
	require.NoError(t, db.Create(active).Error)
	foreign := &models.PaymentCondition{SupplierOrgID: uuid.New(), Name: "Boleto 30d", PaymentMethod: enums.PaymentMethodBoleto, PaymentTermDays: 30, Active: true}
	require.NoError(t, db.Create(foreign).Error)

	got, err := svc.PaymentConditionByID(context.Background(), supplier, active.ID)
	require.NoError(t, err)
	assert.Equal(t, active.ID, got.ID)

	_, err = svc.PaymentConditionByID(context.Background(), supplier, foreign.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.PaymentConditionByID(context.Background(), supplier, uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	byMethod, err := svc.PaymentConditionForMethod(context.Background(), supplier, enums.PaymentMethodPix)
	require.NoError(t, err)
	require.NotNil(t, byMethod)
	assert.Equal(t, active.ID, byMethod.ID)

	none, err := svc.PaymentConditionForMethod(context.Background(), supplier, enums.PaymentMethodCreditCard)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestActiveCampaignsFiltersWindowAndSortsByID(t *testing.T) {
	svc, db, _ := newTestService(t)
	supplier := uuid.New()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	ended := now.Add(-time.Minute)
	pct := decimal.NewFromInt(5)

	running := []*models.Campaign{
		{ID: uuid.MustParse("ffffffff-0000-0000-0000-000000000001"), SupplierOrgID: supplier, Name: "late id", Type: enums.CampaignTypeCashback, Scope: enums.CampaignScopeAll, CashbackPercent: &pct, StartsAt: now.Add(-time.Hour), Active: true},
		{ID: uuid.MustParse("00000000-0000-0000-0000-000000000002"), SupplierOrgID: supplier, Name: "early id", Type: enums.CampaignTypeCashback, Scope: enums.CampaignScopeAll, CashbackPercent: &pct, StartsAt: now.Add(-time.Hour), Active: true},
	}
	for _, c := range running {
		require.NoError(t, db.Create(c).Error)
	}
	require.NoError(t, db.Create(&models.Campaign{SupplierOrgID: supplier, Name: "ended", Type: enums.CampaignTypeCashback, Scope: enums.CampaignScopeAll, CashbackPercent: &pct, StartsAt: now.Add(-48 * time.Hour), EndsAt: &ended, Active: true}).Error)
	require.NoError(t, db.Create(&models.Campaign{SupplierOrgID: supplier, Name: "future", Type: enums.CampaignTypeCashback, Scope: enums.CampaignScopeAll, CashbackPercent: &pct, StartsAt: now.Add(time.Hour), Active: true}).Error)

	got, err := svc.ActiveCampaigns(context.Background(), supplier, now)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "early id", got[0].Name)
	assert.Equal(t, "late id", got[1].Name)
}

func TestCampaignProductTargetsRoundTrip(t *testing.T) {
	_, db, _ := newTestService(t)
	supplier := uuid.New()
	targets := []uuid.UUID{uuid.New(), uuid.New()}
	campaign := &models.Campaign{SupplierOrgID: supplier, Name: "targets", Type: enums.CampaignTypeCashback, Scope: enums.CampaignScopeProduct, ProductIDs: targets, StartsAt: time.Now().UTC(), Active: true}
	require.NoError(t, db.Create(campaign).Error)

	var loaded models.Campaign
	require.NoError(t, db.Where("id = ?", campaign.ID).First(&loaded).Error)
	assert.Equal(t, targets, []uuid.UUID(loaded.ProductIDs))
}

func TestProductsRequiresSupplierOwnership(t *testing.T) {
	svc, db, _ := newTestService(t)
	supplier := uuid.New()

	own := &models.Product{SupplierOrgID: supplier, Name: "Arroz 5kg", BasePrice: decimal.RequireFromString("100.00"), Active: true}
	inactive := &models.Product{SupplierOrgID: supplier, Name: "Feijao 1kg", BasePrice: decimal.RequireFromString("8.50"), Active: false}
	other := &models.Product{SupplierOrgID: uuid.New(), Name: "Cafe 500g", BasePrice: decimal.RequireFromString("20.00"), Active: true}
	for _, p := range []*models.Product{own, inactive, other} {
		require.NoError(t, db.Create(p).Error)
	}

	got, err := svc.Products(context.Background(), supplier, []uuid.UUID{own.ID, own.ID})
	require.NoError(t, err)
	require.Contains(t, got, own.ID)
	assert.Equal(t, "Arroz 5kg", got[own.ID].Name)
	assert.True(t, got[own.ID].BasePrice.Equal(decimal.NewFromInt(100)))

	_, err = svc.Products(context.Background(), supplier, []uuid.UUID{own.ID, other.ID})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
	assert.Equal(t, []string{other.ID.String()}, typed.Details().(map[string]any)["product_ids"])

	_, err = svc.Products(context.Background(), supplier, []uuid.UUID{inactive.ID})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	gifts, err := svc.GiftProducts(context.Background(), supplier, []uuid.UUID{inactive.ID, other.ID})
	require.NoError(t, err)
	assert.Len(t, gifts, 1)
	assert.Contains(t, gifts, inactive.ID)
}

func TestNewServiceRequiresCollaborators(t *testing.T) {
	_, err := NewService(nil, logger.New(logger.Options{}))
	require.Error(t, err)
	_, err = NewService(NewRepository(nil), nil)
	require.Error(t, err)
}

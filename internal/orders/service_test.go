package orders

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/atacado-backend/internal/cashback"
	"github.com/angelmondragon/atacado-backend/internal/catalog"
	"github.com/angelmondragon/atacado-backend/internal/pricing"
	"github.com/angelmondragon/atacado-backend/pkg/db"
	"github.com/angelmondragon/atacado-backend/pkg/db/models"
	"github.com/angelmondragon/atacado-backend/pkg/db/sqlitetest"
	"github.com/angelmondragon/atacado-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/atacado-backend/pkg/errors"
	"github.com/angelmondragon/atacado-backend/pkg/logger"
	"github.com/angelmondragon/atacado-backend/pkg/money"
	"github.com/angelmondragon/atacado-backend/pkg/outbox"
	"github.com/angelmondragon/atacado-backend/pkg/pagination"
)

type steppingClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *steppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type fixture struct {
	svc       Service
	params    ServiceParams
	client    *db.Client
	cashback  cashback.Service
	logs      *lockedBuffer
	store     Actor
	supplier  Actor
	product   models.Product
	condition models.SupplierStateCondition
	campaign  models.Campaign
}

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	client := sqlitetest.Open(t)
	logs := &lockedBuffer{}
	logg := logger.New(logger.Options{ServiceName: "orders-test", Output: logs})
	clock := &steppingClock{now: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)}

	catalogSvc, err := catalog.NewService(catalog.NewRepository(client.DB()), logg)
	require.NoError(t, err)
	publisher := outbox.NewService(outbox.NewRepository(client.DB()), logg)
	cashbackSvc, err := cashback.NewService(cashback.NewRepository(client.DB()), client, publisher, nil, money.DefaultPolicy(), logg)
	require.NoError(t, err)

	params := ServiceParams{
		Repo:              NewRepository(client.DB()),
		TransactionRunner: client,
		Catalog:           catalogSvc,
		Cashback:          cashbackSvc,
		Outbox:            publisher,
		Calculator:        pricing.NewCalculator(nil),
		Logger:            logg,
		Clock:             clock.Now,
	}
	svc, err := NewService(params)
	require.NoError(t, err)

	f := &fixture{
		svc:      svc,
		params:   params,
		client:   client,
		cashback: cashbackSvc,
		logs:     logs,
		store:    Actor{UserID: uuid.New(), OrgID: uuid.New(), OrgType: enums.OrganizationTypeStore},
		supplier: Actor{UserID: uuid.New(), OrgID: uuid.New(), OrgType: enums.OrganizationTypeSupplier},
	}
	f.product = models.Product{SupplierOrgID: f.supplier.OrgID, Name: "Arroz 5kg", BasePrice: dec("100.00"), Active: true}
	require.NoError(t, client.DB().Create(&f.product).Error)
	f.condition = models.SupplierStateCondition{
		SupplierOrgID:       f.supplier.OrgID,
		State:               enums.StateSP,
		CashbackPercent:     dec("0"),
		UnitPriceAdjustment: dec("-10.00"),
		EffectiveFrom:       clock.now.Add(-24 * time.Hour),
	}
	require.NoError(t, client.DB().Create(&f.condition).Error)
	rate := dec("5")
	minTotal := dec("100")
	f.campaign = models.Campaign{
		SupplierOrgID:   f.supplier.OrgID,
		Name:            "5% acima de 100",
		Type:            enums.CampaignTypeCashback,
		Scope:           enums.CampaignScopeAll,
		MinOrderTotal:   &minTotal,
		CashbackPercent: &rate,
		StartsAt:        clock.now.Add(-24 * time.Hour),
		Active:          true,
	}
	require.NoError(t, client.DB().Create(&f.campaign).Error)
	return f
}

func (f *fixture) calcInput(qty int) CalculateInput {
	return CalculateInput{
		BuyerOrgID:        f.store.OrgID,
		SupplierOrgID:     f.supplier.OrgID,
		ShippingAddressID: uuid.New(),
		BuyerState:        enums.StateSP,
		Items:             []LineInput{{ProductID: f.product.ID, Quantity: qty}},
	}
}

func (f *fixture) place(t *testing.T, input CalculateInput, key string) *models.Order {
	t.Helper()
	order, err := f.svc.PlaceOrder(context.Background(), PlaceOrderInput{CalculateInput: input, Actor: f.store, IdempotencyKey: key})
	require.NoError(t, err)
	return order
}

func (f *fixture) transition(orderID uuid.UUID, actor Actor, target enums.OrderStatus) (*models.OrderStatusHistory, error) {
	return f.svc.TransitionStatus(context.Background(), TransitionInput{OrderID: orderID, Actor: actor, Target: target})
}

func (f *fixture) count(t *testing.T, model any, query string, args ...any) int64 {
	t.Helper()
	var n int64
	q := f.client.DB().Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}

// failingOutbox refuses one event type and forwards the rest, so the refusal
// lands after every other write of the transaction.
type failingOutbox struct {
	next   outboxPublisher
	failOn enums.OutboxEventType
}

func (o failingOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	if event.EventType == o.failOn {
		return errors.New("outbox unavailable")
	}
	return o.next.Emit(ctx, tx, event)
}

func (f *fixture) serviceFailingOn(t *testing.T, eventType enums.OutboxEventType) Service {
	t.Helper()
	params := f.params
	params.Outbox = failingOutbox{next: f.params.Outbox, failOn: eventType}
	svc, err := NewService(params)
	require.NoError(t, err)
	return svc
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{})
	require.Error(t, err)
}

func TestCalculatePreviewWritesNothing(t *testing.T) {
	f := newFixture(t)

	result, err := f.svc.Calculate(context.Background(), f.store, f.calcInput(2))
	require.NoError(t, err)
	assert.Equal(t, "180.00", result.SubtotalAmount.StringFixed(2))
	assert.Equal(t, "9.00", result.TotalCashback.StringFixed(2))
	assert.Equal(t, "180.00", result.TotalAmount.StringFixed(2))
	require.NotNil(t, result.SupplierStateConditionID)
	assert.Equal(t, f.condition.ID, *result.SupplierStateConditionID)
	assert.Equal(t, []uuid.UUID{f.campaign.ID}, result.AppliedCampaignIDs)

	assert.Zero(t, f.count(t, &models.Order{}, ""))
	assert.Zero(t, f.count(t, &models.OutboxEvent{}, ""))
}

func TestCalculateRequiresBuyingStore(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Calculate(context.Background(), f.supplier, f.calcInput(1))
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	other := f.store
	other.OrgID = uuid.New()
	_, err = f.svc.Calculate(context.Background(), other, f.calcInput(1))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
}

func TestCalculateValidatesInput(t *testing.T) {
	f := newFixture(t)
	in := f.calcInput(1)
	in.BuyerState = "XX"
	_, err := f.svc.Calculate(context.Background(), f.store, in)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	in = f.calcInput(0)
	_, err = f.svc.Calculate(context.Background(), f.store, in)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	in = f.calcInput(1)
	in.Items[0].ProductID = uuid.New()
	_, err = f.svc.Calculate(context.Background(), f.store, in)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestCalculateFailsOnAmbiguousStateCondition(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.client.DB().Create(&models.SupplierStateCondition{
		SupplierOrgID:       f.supplier.OrgID,
		State:               enums.StateSP,
		CashbackPercent:     dec("0"),
		UnitPriceAdjustment: dec("-3.00"),
		EffectiveFrom:       f.condition.EffectiveFrom,
	}).Error)

	_, err := f.svc.Calculate(context.Background(), f.store, f.calcInput(1))
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeAmbiguousStateCondition))
	assert.Contains(t, f.logs.String(), "catalog.ambiguous_state_condition")
}

func TestPlaceOrderPersistsSnapshot(t *testing.T) {
	f := newFixture(t)

	order := f.place(t, f.calcInput(2), "")
	assert.Equal(t, enums.OrderStatusPlaced, order.Status)
	assert.Equal(t, 1, order.Version)
	require.NotNil(t, order.PlacedAt)
	assert.Equal(t, "180.00", order.TotalAmount.StringFixed(2))
	assert.Equal(t, "9.00", order.TotalCashback.StringFixed(2))
	assert.Equal(t, "-20.00", order.Adjustments.StringFixed(2))
	assert.Equal(t, f.store.UserID, order.CreatedBy)

	require.Len(t, order.Items, 1)
	item := order.Items[0]
	assert.Equal(t, "100.00", item.UnitPrice.StringFixed(2))
	assert.Equal(t, "90.00", item.AdjustedUnitPrice.StringFixed(2))
	assert.Equal(t, "9.00", item.AppliedCashbackAmount.StringFixed(2))

	require.Len(t, order.History, 1)
	assert.Nil(t, order.History[0].PreviousStatus)
	assert.Equal(t, enums.OrderStatusPlaced, order.History[0].NewStatus)

	assert.Equal(t, int64(1), f.count(t, &models.OutboxEvent{}, "event_type = ?", enums.EventOrderPlaced))
	assert.Contains(t, f.logs.String(), "order.placed")
}

func TestPlaceOrderAddsGiftLine(t *testing.T) {
	f := newFixture(t)
	gift := models.Product{SupplierOrgID: f.supplier.OrgID, Name: "Caneca", BasePrice: dec("25.00"), Active: true}
	require.NoError(t, f.client.DB().Create(&gift).Error)
	campaign := models.Campaign{
		SupplierOrgID: f.supplier.OrgID,
		Name:          "brinde",
		Type:          enums.CampaignTypeGift,
		Scope:         enums.CampaignScopeAll,
		GiftProductID: &gift.ID,
		StartsAt:      f.campaign.StartsAt,
		Active:        true,
	}
	require.NoError(t, f.client.DB().Create(&campaign).Error)

	order := f.place(t, f.calcInput(1), "")
	require.Len(t, order.Items, 2)
	assert.False(t, order.Items[0].IsGift)
	assert.True(t, order.Items[1].IsGift)
	assert.Equal(t, gift.ID, order.Items[1].ProductID)
	assert.True(t, order.Items[1].LineTotal.IsZero())
	assert.Equal(t, "90.00", order.SubtotalAmount.StringFixed(2))
}

func TestPlaceOrderRedeemsCashback(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.cashback.PostEarn(ctx, nil, cashback.PostInput{OrganizationID: f.store.OrgID, Amount: dec("50.00")})
	require.NoError(t, err)

	in := f.calcInput(2)
	in.CashbackToUse = dec("20.00")
	order := f.place(t, in, "")
	assert.Equal(t, "160.00", order.TotalAmount.StringFixed(2))
	assert.Equal(t, "20.00", order.CashbackUsed.StringFixed(2))

	wallet, err := f.cashback.Wallet(ctx, f.store.OrgID)
	require.NoError(t, err)
	assert.Equal(t, "30.00", wallet.AvailableBalance.StringFixed(2))
	assert.Equal(t, int64(1), f.count(t, &models.CashbackTransaction{}, "order_id = ? AND type = ?", order.ID, enums.CashbackTransactionUsed))
}

func TestPlaceOrderRejectsCashbackAboveBalance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.cashback.PostEarn(ctx, nil, cashback.PostInput{OrganizationID: f.store.OrgID, Amount: dec("50.00")})
	require.NoError(t, err)

	in := f.calcInput(2)
	in.CashbackToUse = dec("70.00")
	_, err = f.svc.PlaceOrder(ctx, PlaceOrderInput{CalculateInput: in, Actor: f.store})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeInsufficientCashback, typed.Code())
	assert.Equal(t, "20.00", typed.Details().(map[string]any)["shortfall"])

	assert.Zero(t, f.count(t, &models.Order{}, ""))
	wallet, err := f.cashback.Wallet(ctx, f.store.OrgID)
	require.NoError(t, err)
	assert.Equal(t, "50.00", wallet.AvailableBalance.StringFixed(2))
}

func TestPlaceOrderReplaysIdempotencyKey(t *testing.T) {
	f := newFixture(t)
	first := f.place(t, f.calcInput(2), "checkout-1")

	retry := f.calcInput(2)
	retry.ShippingAddressID = first.ShippingAddressID
	retry.ShippingCost = dec("0.00")
	second := f.place(t, retry, "checkout-1")

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.TotalAmount.String(), second.TotalAmount.String())
	assert.Equal(t, int64(1), f.count(t, &models.Order{}, ""))
}

func TestPlaceOrderRejectsReusedKeyForDifferentRequest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.place(t, f.calcInput(2), "checkout-1")

	bigger := f.calcInput(5)
	bigger.ShippingAddressID = first.ShippingAddressID
	_, err := f.svc.PlaceOrder(ctx, PlaceOrderInput{CalculateInput: bigger, Actor: f.store, IdempotencyKey: "checkout-1"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeIdempotency))

	same := f.calcInput(2)
	same.ShippingAddressID = first.ShippingAddressID
	colleague := f.store
	colleague.UserID = uuid.New()
	_, err = f.svc.PlaceOrder(ctx, PlaceOrderInput{CalculateInput: same, Actor: colleague, IdempotencyKey: "checkout-1"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeIdempotency))

	assert.Equal(t, int64(1), f.count(t, &models.Order{}, ""))
	assert.Equal(t, int64(1), f.count(t, &models.OrderItem{}, "quantity = ?", 2))
}

func TestTransitionScenarioConfirmedToShipped(t *testing.T) {
	f := newFixture(t)
	order := f.place(t, f.calcInput(2), "")
	_, err := f.transition(order.ID, f.supplier, enums.OrderStatusConfirmed)
	require.NoError(t, err)

	_, err = f.transition(order.ID, f.store, enums.OrderStatusShipped)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeInvalidTransition, typed.Code())
	details := typed.Details().(map[string]any)
	assert.Equal(t, "CONFIRMED", details["current_status"])
	assert.Equal(t, "SHIPPED", details["target_status"])

	unchanged, err := f.svc.GetOrder(context.Background(), order.ID, f.store)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusConfirmed, unchanged.Status)
	assert.Len(t, unchanged.History, 2)

	entry, err := f.transition(order.ID, f.supplier, enums.OrderStatusShipped)
	require.NoError(t, err)
	require.NotNil(t, entry.PreviousStatus)
	assert.Equal(t, enums.OrderStatusConfirmed, *entry.PreviousStatus)
	assert.Equal(t, enums.OrderStatusShipped, entry.NewStatus)
	assert.Equal(t, enums.OrganizationTypeSupplier, entry.ActorOrgType)

	shipped, err := f.svc.GetOrder(context.Background(), order.ID, f.supplier)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusShipped, shipped.Status)
	assert.Equal(t, 3, shipped.Version)
	assert.Len(t, shipped.History, 3)
	assert.Contains(t, f.logs.String(), "order.transitioned")
}

func TestTransitionToDeliveredEarnsCashbackOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.place(t, f.calcInput(2), "")

	_, err := f.transition(order.ID, f.supplier, enums.OrderStatusDelivered)
	require.NoError(t, err)
	_, err = f.transition(order.ID, f.supplier, enums.OrderStatusDelivered)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidTransition))

	wallet, err := f.cashback.Wallet(ctx, f.store.OrgID)
	require.NoError(t, err)
	assert.Equal(t, "9.00", wallet.TotalEarned.StringFixed(2))
	assert.Equal(t, int64(1), f.count(t, &models.CashbackTransaction{}, "order_id = ? AND type = ?", order.ID, enums.CashbackTransactionEarned))

	entries, err := f.cashback.Transactions(ctx, f.store.OrgID, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].OrderID)
	assert.Equal(t, order.ID, *entries[0].OrderID)
}

func TestDeliveryRollsBackWhenEventCannotBeQueued(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.place(t, f.calcInput(2), "")
	_, err := f.transition(order.ID, f.supplier, enums.OrderStatusShipped)
	require.NoError(t, err)
	before, err := f.svc.GetOrder(ctx, order.ID, f.supplier)
	require.NoError(t, err)

	svc := f.serviceFailingOn(t, enums.EventOrderStatusChanged)
	_, err = svc.TransitionStatus(ctx, TransitionInput{OrderID: order.ID, Actor: f.supplier, Target: enums.OrderStatusDelivered})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))

	after, err := f.svc.GetOrder(ctx, order.ID, f.supplier)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusShipped, after.Status)
	assert.Equal(t, before.Version, after.Version)
	assert.Len(t, after.History, len(before.History))
	assert.Zero(t, f.count(t, &models.OrderStatusHistory{}, "order_id = ? AND new_status = ?", order.ID, enums.OrderStatusDelivered))
	assert.Zero(t, f.count(t, &models.CashbackTransaction{}, ""))
	assert.Zero(t, f.count(t, &models.CashbackWallet{}, ""))

	// The same delivery goes through once events can be queued again.
	_, err = f.transition(order.ID, f.supplier, enums.OrderStatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, int64(1), f.count(t, &models.CashbackTransaction{}, "order_id = ? AND type = ?", order.ID, enums.CashbackTransactionEarned))
}

func TestPlacementRollsBackRedemptionWhenEventCannotBeQueued(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.cashback.PostEarn(ctx, nil, cashback.PostInput{OrganizationID: f.store.OrgID, Amount: dec("50.00")})
	require.NoError(t, err)
	eventsBefore := f.count(t, &models.OutboxEvent{}, "")

	in := f.calcInput(2)
	in.CashbackToUse = dec("20.00")
	svc := f.serviceFailingOn(t, enums.EventOrderPlaced)
	_, err = svc.PlaceOrder(ctx, PlaceOrderInput{CalculateInput: in, Actor: f.store, IdempotencyKey: "checkout-1"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))

	assert.Zero(t, f.count(t, &models.Order{}, ""))
	assert.Zero(t, f.count(t, &models.OrderItem{}, ""))
	assert.Zero(t, f.count(t, &models.OrderStatusHistory{}, ""))
	assert.Zero(t, f.count(t, &models.CashbackTransaction{}, "type = ?", enums.CashbackTransactionUsed))
	assert.Equal(t, eventsBefore, f.count(t, &models.OutboxEvent{}, ""))

	wallet, err := f.cashback.Wallet(ctx, f.store.OrgID)
	require.NoError(t, err)
	assert.Equal(t, "50.00", wallet.AvailableBalance.StringFixed(2))
	assert.Equal(t, "0.00", wallet.TotalUsed.StringFixed(2))

	// The key was never stored, so a retry places the order.
	order, err := f.svc.PlaceOrder(ctx, PlaceOrderInput{CalculateInput: in, Actor: f.store, IdempotencyKey: "checkout-1"})
	require.NoError(t, err)
	assert.Equal(t, "20.00", order.CashbackUsed.StringFixed(2))
}

func TestConcurrentDeliveriesPostOneEarn(t *testing.T) {
	f := newFixture(t)
	order := f.place(t, f.calcInput(2), "")

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.transition(order.ID, f.supplier, enums.OrderStatusDelivered)
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, int64(1), f.count(t, &models.CashbackTransaction{}, "order_id = ? AND type = ?", order.ID, enums.CashbackTransactionEarned))
	assert.Equal(t, int64(2), f.count(t, &models.OrderStatusHistory{}, "order_id = ?", order.ID))
}

func TestTransitionReplaysIdempotencyKey(t *testing.T) {
	f := newFixture(t)
	order := f.place(t, f.calcInput(2), "")
	input := TransitionInput{OrderID: order.ID, Actor: f.supplier, Target: enums.OrderStatusDelivered, IdempotencyKey: "deliver-1"}

	first, err := f.svc.TransitionStatus(context.Background(), input)
	require.NoError(t, err)
	second, err := f.svc.TransitionStatus(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, int64(1), f.count(t, &models.CashbackTransaction{}, "order_id = ?", order.ID))
}

func TestTransitionRejectsKeyReusedByOtherPartyOrTarget(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.place(t, f.calcInput(2), "")

	_, err := f.svc.TransitionStatus(ctx, TransitionInput{OrderID: order.ID, Actor: f.supplier, Target: enums.OrderStatusConfirmed, IdempotencyKey: "step-1"})
	require.NoError(t, err)

	_, err = f.svc.TransitionStatus(ctx, TransitionInput{OrderID: order.ID, Actor: f.store, Target: enums.OrderStatusCancelled, IdempotencyKey: "step-1"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeIdempotency))

	_, err = f.svc.TransitionStatus(ctx, TransitionInput{OrderID: order.ID, Actor: f.supplier, Target: enums.OrderStatusRejected, IdempotencyKey: "step-1"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeIdempotency))

	current, err := f.svc.GetOrder(ctx, order.ID, f.store)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusConfirmed, current.Status)
	assert.Len(t, current.History, 2)

	// A fresh key still lets the store cancel.
	_, err = f.svc.TransitionStatus(ctx, TransitionInput{OrderID: order.ID, Actor: f.store, Target: enums.OrderStatusCancelled, IdempotencyKey: "cancel-1"})
	require.NoError(t, err)
}

func TestTransitionRejectsStrangers(t *testing.T) {
	f := newFixture(t)
	order := f.place(t, f.calcInput(1), "")

	stranger := Actor{UserID: uuid.New(), OrgID: uuid.New(), OrgType: enums.OrganizationTypeSupplier}
	_, err := f.transition(order.ID, stranger, enums.OrderStatusConfirmed)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	carrier := Actor{UserID: uuid.New(), OrgID: uuid.New(), OrgType: "CARRIER"}
	_, err = f.transition(order.ID, carrier, enums.OrderStatusConfirmed)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidTransition))

	_, err = f.transition(uuid.New(), f.supplier, enums.OrderStatusConfirmed)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = f.transition(order.ID, f.supplier, "LOST")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.GetOrder(context.Background(), order.ID, stranger)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
}

func TestStoreMayCancelBeforeShipping(t *testing.T) {
	f := newFixture(t)
	order := f.place(t, f.calcInput(1), "")
	note := "pedido duplicado"
	entry, err := f.svc.TransitionStatus(context.Background(), TransitionInput{
		OrderID: order.ID,
		Actor:   f.store,
		Target:  enums.OrderStatusCancelled,
		Note:    &note,
	})
	require.NoError(t, err)
	require.NotNil(t, entry.Note)
	assert.Equal(t, note, *entry.Note)
	assert.Equal(t, int64(1), f.count(t, &models.OutboxEvent{}, "event_type = ?", enums.EventOrderStatusChanged))
}

func TestListOrdersPagesByParty(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	var placed []uuid.UUID
	for i := 0; i < 3; i++ {
		placed = append(placed, f.place(t, f.calcInput(i+1), "").ID)
	}

	page, err := f.svc.ListOrders(ctx, ListOrdersInput{Actor: f.store, Params: pagination.Params{Limit: 2}})
	require.NoError(t, err)
	require.Len(t, page.Orders, 2)
	assert.Equal(t, placed[2], page.Orders[0].ID)
	assert.Equal(t, placed[1], page.Orders[1].ID)
	require.NotEmpty(t, page.NextCursor)

	next, err := f.svc.ListOrders(ctx, ListOrdersInput{Actor: f.store, Params: pagination.Params{Limit: 2, Cursor: page.NextCursor}})
	require.NoError(t, err)
	require.Len(t, next.Orders, 1)
	assert.Equal(t, placed[0], next.Orders[0].ID)
	assert.Empty(t, next.NextCursor)

	all, err := f.svc.ListOrders(ctx, ListOrdersInput{Actor: f.supplier})
	require.NoError(t, err)
	assert.Len(t, all.Orders, 3)

	status := enums.OrderStatusDelivered
	none, err := f.svc.ListOrders(ctx, ListOrdersInput{Actor: f.supplier, Status: &status})
	require.NoError(t, err)
	assert.Empty(t, none.Orders)

	other := Actor{UserID: uuid.New(), OrgID: uuid.New(), OrgType: enums.OrganizationTypeStore}
	empty, err := f.svc.ListOrders(ctx, ListOrdersInput{Actor: other})
	require.NoError(t, err)
	assert.Empty(t, empty.Orders)

	_, err = f.svc.ListOrders(ctx, ListOrdersInput{Actor: f.store, Params: pagination.Params{Cursor: "%%"}})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

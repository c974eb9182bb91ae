package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/atacado-backend/internal/cashback"
	"github.com/angelmondragon/atacado-backend/internal/catalog"
	"github.com/angelmondragon/atacado-backend/internal/pricing"
	"github.com/angelmondragon/atacado-backend/pkg/db"
	"github.com/angelmondragon/atacado-backend/pkg/db/models"
	"github.com/angelmondragon/atacado-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/atacado-backend/pkg/errors"
	"github.com/angelmondragon/atacado-backend/pkg/logger"
	"github.com/angelmondragon/atacado-backend/pkg/metrics"
	"github.com/angelmondragon/atacado-backend/pkg/outbox"
	"github.com/angelmondragon/atacado-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/atacado-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service exposes the order lifecycle.
type Service interface {
	Calculate(ctx context.Context, actor Actor, input CalculateInput) (*pricing.Result, error)
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*models.Order, error)
	TransitionStatus(ctx context.Context, input TransitionInput) (*models.OrderStatusHistory, error)
	GetOrder(ctx context.Context, orderID uuid.UUID, actor Actor) (*models.Order, error)
	ListOrders(ctx context.Context, input ListOrdersInput) (*OrderList, error)
}

// ServiceParams groups dependencies for the order service.
type ServiceParams struct {
	Repo              Repository
	TransactionRunner txRunner
	Catalog           catalog.Service
	Cashback          cashback.Service
	Outbox            outboxPublisher
	Calculator        *pricing.Calculator
	Metrics           *metrics.EngineMetrics
	Logger            *logger.Logger
	Clock             func() time.Time
}

type service struct {
	repo       Repository
	tx         txRunner
	catalog    catalog.Service
	cashback   cashback.Service
	outbox     outboxPublisher
	calculator *pricing.Calculator
	metrics    *metrics.EngineMetrics
	logg       *logger.Logger
	now        func() time.Time
}

// NewService builds the order service. Metrics and Clock are optional.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.TransactionRunner == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog service required")
	}
	if params.Cashback == nil {
		return nil, fmt.Errorf("cashback service required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if params.Calculator == nil {
		return nil, fmt.Errorf("calculator required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}
	return &service{
		repo:       params.Repo,
		tx:         params.TransactionRunner,
		catalog:    params.Catalog,
		cashback:   params.Cashback,
		outbox:     params.Outbox,
		calculator: params.Calculator,
		metrics:    params.Metrics,
		logg:       params.Logger,
		now:        clock,
	}, nil
}

// Calculate previews an order for the buying store. Nothing is written.
func (s *service) Calculate(ctx context.Context, actor Actor, input CalculateInput) (*pricing.Result, error) {
	if err := requireBuyer(actor, input.BuyerOrgID); err != nil {
		return nil, err
	}
	wallet, err := s.cashback.Wallet(ctx, input.BuyerOrgID)
	if err != nil {
		s.metrics.IncCalculation(metrics.ResultError)
		return nil, err
	}
	result, err := s.price(ctx, s.catalog, input, wallet.AvailableBalance, s.now().UTC())
	s.metrics.IncCalculation(resultLabel(err))
	if err != nil {
		return nil, err
	}
	return result, nil
}

// PlaceOrder recalculates against a locked wallet and commits the order, its
// items, the initial history entry, the optional cashback redemption and the
// order_placed event in one transaction.
func (s *service) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*models.Order, error) {
	if err := requireBuyer(input.Actor, input.BuyerOrgID); err != nil {
		return nil, err
	}
	key := strings.TrimSpace(input.IdempotencyKey)
	var hash string
	if key != "" {
		var err error
		if hash, err = requestHash(input.CalculateInput); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "fingerprint order request")
		}
		if existing, err := s.orderByKey(ctx, input, key, hash); err != nil || existing != nil {
			return existing, err
		}
	}

	now := s.now().UTC()
	var created *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		available, err := s.cashback.LockedBalance(ctx, tx, input.BuyerOrgID)
		if err != nil {
			return err
		}
		result, err := s.price(ctx, s.catalog.WithTx(tx), input.CalculateInput, available, now)
		if err != nil {
			return err
		}

		order := buildOrder(input, result, now)
		if key != "" {
			order.IdempotencyKey = &key
			order.RequestHash = &hash
		}
		order.History = []models.OrderStatusHistory{{
			NewStatus:    enums.OrderStatusPlaced,
			ActorUserID:  input.Actor.UserID,
			ActorOrgID:   input.Actor.OrgID,
			ActorOrgType: input.Actor.OrgType,
			CreatedAt:    now,
		}}
		if err := s.repo.WithTx(tx).CreateOrder(ctx, order); err != nil {
			if key != "" && db.IsUniqueViolation(err, "") {
				return errDuplicatePlacement
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}

		if result.CashbackUsed.IsPositive() {
			orderID := order.ID
			if _, err := s.cashback.PostUse(ctx, tx, cashback.PostInput{
				OrganizationID: order.BuyerOrgID,
				Amount:         result.CashbackUsed,
				OrderID:        &orderID,
				ReferenceID:    &orderID,
				ReferenceType:  cashback.ReferenceTypeOrder,
				Description:    "cashback redeemed on order",
				Actor:          input.Actor.ref(),
			}); err != nil {
				return err
			}
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventOrderPlaced,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         input.Actor.ref(),
			OccurredAt:    now,
			Data: payloads.OrderPlacedEvent{
				OrderID:       order.ID,
				BuyerOrgID:    order.BuyerOrgID,
				SupplierOrgID: order.SupplierOrgID,
				BuyerState:    order.BuyerState,
				ItemCount:     len(order.Items),
				Subtotal:      order.SubtotalAmount,
				Total:         order.TotalAmount,
				TotalCashback: order.TotalCashback,
				CashbackUsed:  order.CashbackUsed,
				PlacedAt:      now,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit order placed event")
		}
		created = order
		return nil
	})
	if errors.Is(err, errDuplicatePlacement) {
		return s.orderByKey(ctx, input, key, hash)
	}
	s.metrics.IncPlacement(resultLabel(err))
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithOrderID(ctx, created.ID.String())
	logCtx = s.logg.WithOrgID(logCtx, created.BuyerOrgID.String())
	logCtx = s.logg.WithFields(logCtx, map[string]any{
		"supplier_org_id": created.SupplierOrgID.String(),
		"total_amount":    created.TotalAmount.String(),
		"total_cashback":  created.TotalCashback.String(),
		"cashback_used":   created.CashbackUsed.String(),
		"item_count":      len(created.Items),
	})
	s.logg.Info(logCtx, "order.placed")

	return s.loadOrder(ctx, created.ID)
}

var errDuplicatePlacement = errors.New("order already placed with idempotency key")

// TransitionStatus applies one status change. The order row is locked and
// version-checked, so concurrent requests against a stale status cannot both
// win, and the EARNED post for DELIVERED commits with the status change.
func (s *service) TransitionStatus(ctx context.Context, input TransitionInput) (*models.OrderStatusHistory, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !input.Target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid target status").
			WithDetails(map[string]any{"field": "status", "value": input.Target.String()})
	}
	if input.Actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.Actor.OrgID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "organization context missing")
	}
	key := strings.TrimSpace(input.IdempotencyKey)
	now := s.now().UTC()

	var (
		entry    *models.OrderStatusHistory
		previous enums.OrderStatus
		replayed bool
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.LockOrder(ctx, input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		// Unknown organization types fall through to the transition table,
		// which grants them nothing.
		if input.Actor.OrgType.IsValid() {
			if err := requireParty(input.Actor, order); err != nil {
				return err
			}
		}

		if key != "" {
			existing, err := repo.FindHistoryByKey(ctx, order.ID, key)
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load status history")
			}
			if existing != nil {
				if !sameTransition(existing, input) {
					return keyReused(key)
				}
				entry, replayed = existing, true
				return nil
			}
		}

		previous = order.Status
		if err := ValidateTransition(input.Actor.OrgType, order.Status, input.Target); err != nil {
			return err
		}

		if err := repo.UpdateStatus(ctx, order.ID, order.Version, input.Target); err != nil {
			if errors.Is(err, ErrVersionConflict) {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "order changed concurrently")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}

		prev := order.Status
		entry = &models.OrderStatusHistory{
			OrderID:        order.ID,
			PreviousStatus: &prev,
			NewStatus:      input.Target,
			ActorUserID:    input.Actor.UserID,
			ActorOrgID:     input.Actor.OrgID,
			ActorOrgType:   input.Actor.OrgType,
			Note:           input.Note,
			CreatedAt:      now,
		}
		if key != "" {
			entry.IdempotencyKey = &key
		}
		if err := repo.AppendHistory(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append status history")
		}

		if input.Target == enums.OrderStatusDelivered && order.TotalCashback.IsPositive() {
			orderID := order.ID
			if _, err := s.cashback.PostEarn(ctx, tx, cashback.PostInput{
				OrganizationID: order.BuyerOrgID,
				Amount:         order.TotalCashback,
				OrderID:        &orderID,
				ReferenceID:    &orderID,
				ReferenceType:  cashback.ReferenceTypeOrder,
				Description:    "cashback earned on delivered order",
				Actor:          input.Actor.ref(),
			}); err != nil {
				return err
			}
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventOrderStatusChanged,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         input.Actor.ref(),
			OccurredAt:    now,
			Data: payloads.OrderStatusChangedEvent{
				OrderID:        order.ID,
				BuyerOrgID:     order.BuyerOrgID,
				SupplierOrgID:  order.SupplierOrgID,
				PreviousStatus: prev,
				NewStatus:      input.Target,
				ActorOrgType:   input.Actor.OrgType,
				Note:           input.Note,
				ChangedAt:      now,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit status changed event")
		}
		return nil
	})
	if err != nil && key != "" && db.IsUniqueViolation(err, "") {
		if existing, lookupErr := s.repo.FindHistoryByKey(ctx, input.OrderID, key); lookupErr == nil {
			if !sameTransition(existing, input) {
				return nil, keyReused(key)
			}
			return existing, nil
		}
	}
	if replayed {
		return entry, nil
	}
	s.metrics.IncTransition(previous.String(), input.Target.String(), resultLabel(err))
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithOrderID(ctx, input.OrderID.String())
	logCtx = s.logg.WithActorRole(logCtx, input.Actor.OrgType.String())
	logCtx = s.logg.WithFields(logCtx, map[string]any{
		"previous_status": previous.String(),
		"new_status":      input.Target.String(),
	})
	s.logg.Info(logCtx, "order.transitioned")
	return entry, nil
}

// GetOrder returns the order with items and history to either party.
func (s *service) GetOrder(ctx context.Context, orderID uuid.UUID, actor Actor) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := requireParty(actor, order); err != nil {
		return nil, err
	}
	return order, nil
}

// ListOrders pages through the orders where the actor's organization is the
// buyer (stores) or the supplier (suppliers).
func (s *service) ListOrders(ctx context.Context, input ListOrdersInput) (*OrderList, error) {
	if input.Actor.OrgID == uuid.Nil || !input.Actor.OrgType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "organization context missing")
	}
	if input.Status != nil && !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter").
			WithDetails(map[string]any{"field": "status", "value": input.Status.String()})
	}
	cursor, err := pagination.ParseCursor(input.Params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor").
			WithDetails(map[string]any{"field": "cursor"})
	}
	rows, err := s.repo.ListOrders(ctx, ListFilter{
		OrgID:   input.Actor.OrgID,
		OrgType: input.Actor.OrgType,
		Status:  input.Status,
		Cursor:  cursor,
		Limit:   pagination.LimitWithBuffer(input.Params.Limit),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	page, next := pagination.Trim(rows, input.Params.Limit, func(o models.Order) pagination.Cursor {
		return pagination.Cursor{CreatedAt: o.CreatedAt, ID: o.ID}
	})
	return &OrderList{Orders: page, NextCursor: next}, nil
}

// price resolves every adjustment source through cat and runs the calculator.
func (s *service) price(ctx context.Context, cat catalog.Service, input CalculateInput, available decimal.Decimal, at time.Time) (*pricing.Result, error) {
	if err := validateCalculateInput(input); err != nil {
		return nil, err
	}

	condition, err := cat.ActiveStateCondition(ctx, input.SupplierOrgID, input.BuyerState, at)
	if err != nil {
		return nil, err
	}

	var payment *models.PaymentCondition
	switch {
	case input.PaymentConditionID != nil:
		payment, err = cat.PaymentConditionByID(ctx, input.SupplierOrgID, *input.PaymentConditionID)
	case input.PaymentMethod != nil:
		payment, err = cat.PaymentConditionForMethod(ctx, input.SupplierOrgID, *input.PaymentMethod)
	}
	if err != nil {
		return nil, err
	}

	campaigns, err := cat.ActiveCampaigns(ctx, input.SupplierOrgID, at)
	if err != nil {
		return nil, err
	}

	productIDs := make([]uuid.UUID, 0, len(input.Items))
	for _, item := range input.Items {
		productIDs = append(productIDs, item.ProductID)
	}
	products, err := cat.Products(ctx, input.SupplierOrgID, productIDs)
	if err != nil {
		return nil, err
	}

	gifts, err := s.giftProducts(ctx, cat, input.SupplierOrgID, campaigns)
	if err != nil {
		return nil, err
	}

	lines := make([]pricing.Line, 0, len(input.Items))
	for _, item := range input.Items {
		product := products[item.ProductID]
		lines = append(lines, pricing.Line{
			ProductID:     item.ProductID,
			ProductName:   product.Name,
			CategoryID:    product.CategoryID,
			BaseUnitPrice: product.BasePrice,
			Quantity:      item.Quantity,
		})
	}

	return s.calculator.Calculate(pricing.Input{
		Lines:             lines,
		ShippingCost:      input.ShippingCost,
		CashbackToUse:     input.CashbackToUse,
		AvailableCashback: available,
		StateCondition:    condition,
		PaymentCondition:  payment,
		Campaigns:         campaigns,
		GiftProducts:      gifts,
		At:                at,
	})
}

func (s *service) giftProducts(ctx context.Context, cat catalog.Service, supplierOrgID uuid.UUID, campaigns []models.Campaign) (map[uuid.UUID]pricing.GiftProduct, error) {
	var ids []uuid.UUID
	for _, campaign := range campaigns {
		if campaign.Type == enums.CampaignTypeGift && campaign.GiftProductID != nil {
			ids = append(ids, *campaign.GiftProductID)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}
	snapshots, err := cat.GiftProducts(ctx, supplierOrgID, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]pricing.GiftProduct, len(snapshots))
	for id, snap := range snapshots {
		out[id] = pricing.GiftProduct{Name: snap.Name, CategoryID: snap.CategoryID}
	}
	for _, id := range ids {
		if _, ok := out[id]; !ok {
			logCtx := s.logg.WithFields(ctx, map[string]any{
				"supplier_org_id": supplierOrgID.String(),
				"gift_product_id": id.String(),
			})
			s.logg.Warn(logCtx, "pricing.gift_product_missing")
		}
	}
	return out, nil
}

// orderByKey returns the order an earlier placement created with key, provided
// the same user sent the same request. Rows without a hash predate it.
func (s *service) orderByKey(ctx context.Context, input PlaceOrderInput, key, hash string) (*models.Order, error) {
	existing, err := s.repo.FindByIdempotencyKey(ctx, input.BuyerOrgID, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order by idempotency key")
	}
	if existing.CreatedBy != input.Actor.UserID || (existing.RequestHash != nil && *existing.RequestHash != hash) {
		return nil, keyReused(key)
	}
	return s.loadOrder(ctx, existing.ID)
}

// sameTransition reports whether a stored history entry answers input: the
// same organization asking for the same target.
func sameTransition(existing *models.OrderStatusHistory, input TransitionInput) bool {
	return existing.ActorOrgID == input.Actor.OrgID && existing.NewStatus == input.Target
}

func keyReused(key string) error {
	return pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with a different request").
		WithDetails(map[string]any{"idempotency_key": key})
}

func (s *service) loadOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func validateCalculateInput(input CalculateInput) error {
	switch {
	case input.BuyerOrgID == uuid.Nil:
		return fieldError("buyer_org_id", "buyer organization required")
	case input.SupplierOrgID == uuid.Nil:
		return fieldError("supplier_org_id", "supplier organization required")
	case input.ShippingAddressID == uuid.Nil:
		return fieldError("shipping_address_id", "shipping address required")
	case !input.BuyerState.IsValid():
		return fieldError("buyer_state", "invalid buyer state")
	case len(input.Items) == 0:
		return fieldError("items", "at least one item is required")
	}
	if input.PaymentMethod != nil && !input.PaymentMethod.IsValid() {
		return fieldError("payment_method", "invalid payment method")
	}
	for i, item := range input.Items {
		if item.ProductID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "product id required").
				WithDetails(map[string]any{"field": "product_id", "index": i})
		}
		if item.Quantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive").
				WithDetails(map[string]any{"field": "quantity", "index": i, "value": item.Quantity})
		}
	}
	return nil
}

func fieldError(field, msg string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, msg).WithDetails(map[string]any{"field": field})
}

func buildOrder(input PlaceOrderInput, result *pricing.Result, now time.Time) *models.Order {
	placedAt := now
	order := &models.Order{
		BuyerOrgID:               input.BuyerOrgID,
		SupplierOrgID:            input.SupplierOrgID,
		Status:                   enums.OrderStatusPlaced,
		PlacedAt:                 &placedAt,
		ShippingAddressID:        input.ShippingAddressID,
		BuyerState:               input.BuyerState,
		PaymentMethod:            input.PaymentMethod,
		SubtotalAmount:           result.SubtotalAmount,
		ShippingCost:             result.ShippingCost,
		Adjustments:              result.Adjustments,
		TotalAmount:              result.TotalAmount,
		TotalCashback:            result.TotalCashback,
		CashbackUsed:             result.CashbackUsed,
		SupplierStateConditionID: result.SupplierStateConditionID,
		PaymentConditionID:       result.PaymentConditionID,
		Version:                  1,
		CreatedBy:                input.Actor.UserID,
		CreatedAt:                now,
		UpdatedAt:                now,
	}
	order.Items = make([]models.OrderItem, 0, len(result.Items))
	for i, line := range result.Items {
		order.Items = append(order.Items, models.OrderItem{
			Position:              i + 1,
			ProductID:             line.ProductID,
			ProductName:           line.ProductName,
			CategoryID:            line.CategoryID,
			Quantity:              line.Quantity,
			UnitPrice:             line.BaseUnitPrice,
			AdjustedUnitPrice:     line.AdjustedUnitPrice,
			LineTotal:             line.LineTotal,
			CashbackRate:          line.CashbackRate,
			AppliedCashbackAmount: line.AppliedCashbackAmount,
			PriceClamped:          line.PriceClamped,
			IsGift:                line.IsGift,
			GiftCampaignID:        line.GiftCampaignID,
		})
	}
	return order
}

func requireBuyer(actor Actor, buyerOrgID uuid.UUID) error {
	if actor.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if actor.OrgType != enums.OrganizationTypeStore || actor.OrgID == uuid.Nil || actor.OrgID != buyerOrgID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only the buying store may order")
	}
	return nil
}

func isParty(actor Actor, order *models.Order) bool {
	switch actor.OrgType {
	case enums.OrganizationTypeStore:
		return actor.OrgID == order.BuyerOrgID
	case enums.OrganizationTypeSupplier:
		return actor.OrgID == order.SupplierOrgID
	default:
		return false
	}
}

func requireParty(actor Actor, order *models.Order) error {
	if !isParty(actor, order) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "organization is not a party to the order")
	}
	return nil
}

func resultLabel(err error) string {
	if err == nil {
		return metrics.ResultOK
	}
	typed := pkgerrors.As(err)
	if typed == nil {
		return metrics.ResultError
	}
	switch typed.Code() {
	case pkgerrors.CodeInternal, pkgerrors.CodeDependency, pkgerrors.CodeAmbiguousStateCondition:
		return metrics.ResultError
	default:
		return metrics.ResultRejected
	}
}

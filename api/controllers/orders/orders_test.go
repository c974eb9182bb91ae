package orders

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/atacado-backend/api/middleware"
	internalorders "github.com/angelmondragon/atacado-backend/internal/orders"
	"github.com/angelmondragon/atacado-backend/internal/pricing"
	"github.com/angelmondragon/atacado-backend/pkg/db/models"
	"github.com/angelmondragon/atacado-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/atacado-backend/pkg/errors"
	"github.com/angelmondragon/atacado-backend/pkg/logger"
	"github.com/angelmondragon/atacado-backend/pkg/types"
)

type stubOrderService struct {
	calculate  func(ctx context.Context, actor internalorders.Actor, input internalorders.CalculateInput) (*pricing.Result, error)
	place      func(ctx context.Context, input internalorders.PlaceOrderInput) (*models.Order, error)
	transition func(ctx context.Context, input internalorders.TransitionInput) (*models.OrderStatusHistory, error)
	get        func(ctx context.Context, orderID uuid.UUID, actor internalorders.Actor) (*models.Order, error)
	list       func(ctx context.Context, input internalorders.ListOrdersInput) (*internalorders.OrderList, error)
}

func (s *stubOrderService) Calculate(ctx context.Context, actor internalorders.Actor, input internalorders.CalculateInput) (*pricing.Result, error) {
	return s.calculate(ctx, actor, input)
}

func (s *stubOrderService) PlaceOrder(ctx context.Context, input internalorders.PlaceOrderInput) (*models.Order, error) {
	return s.place(ctx, input)
}

func (s *stubOrderService) TransitionStatus(ctx context.Context, input internalorders.TransitionInput) (*models.OrderStatusHistory, error) {
	return s.transition(ctx, input)
}

func (s *stubOrderService) GetOrder(ctx context.Context, orderID uuid.UUID, actor internalorders.Actor) (*models.Order, error) {
	return s.get(ctx, orderID, actor)
}

func (s *stubOrderService) ListOrders(ctx context.Context, input internalorders.ListOrdersInput) (*internalorders.OrderList, error) {
	return s.list(ctx, input)
}

var (
	testUserID     = uuid.MustParse("6f0b2a8e-1d4c-4f3a-9b7e-2c5d8e1f0a11")
	testStoreOrgID = uuid.MustParse("9a1c3e5f-7b2d-4e6f-8a0c-1b3d5f7a9c22")
	testSupplierID = uuid.MustParse("3c5e7a9b-1d2f-4a6c-8e0b-2d4f6a8c0e33")
	testAddressID  = uuid.MustParse("5e7a9c1b-3d5f-4c8e-9a2b-4f6a8c0e2a44")
	testProductID  = uuid.MustParse("7a9c1e3d-5f7b-4e0a-8c4d-6a8c0e2a4c55")
)

func newTestRouter(svc internalorders.Service) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "orders-controller-test", Output: &strings.Builder{}})
	h := NewHandlers(svc, 2, logg)
	r := chi.NewRouter()
	r.Post("/orders/calculate", h.Calculate())
	r.Post("/orders", h.Place())
	r.Get("/orders", h.List())
	r.Get("/orders/{orderId}", h.Detail())
	r.Post("/orders/{orderId}/status", h.Transition())
	return r
}

func withStoreActor(req *http.Request) *http.Request {
	ctx := middleware.WithActor(req.Context(), testUserID, testStoreOrgID, string(enums.OrganizationTypeStore))
	return req.WithContext(ctx)
}

func calculateBody() string {
	return `{"supplier_org_id":"` + testSupplierID.String() + `","shipping_address_id":"` + testAddressID.String() +
		`","buyer_state":"SP","payment_method":"pix","shipping_cost":"15","items":[{"product_id":"` + testProductID.String() + `","quantity":3}]}`
}

func TestCalculateRendersMoneyAtCurrencyScale(t *testing.T) {
	var captured internalorders.CalculateInput
	svc := &stubOrderService{
		calculate: func(_ context.Context, actor internalorders.Actor, input internalorders.CalculateInput) (*pricing.Result, error) {
			captured = input
			if actor.OrgType != enums.OrganizationTypeStore {
				t.Fatalf("unexpected actor type %s", actor.OrgType)
			}
			return &pricing.Result{
				Items: []pricing.ResolvedLine{{
					Line: pricing.Line{
						ProductID:     testProductID,
						ProductName:   "Arroz 5kg",
						BaseUnitPrice: decimal.RequireFromString("100"),
						Quantity:      3,
					},
					AdjustedUnitPrice:     decimal.RequireFromString("90"),
					LineTotal:             decimal.RequireFromString("270"),
					CashbackRate:          decimal.RequireFromString("5"),
					AppliedCashbackAmount: decimal.RequireFromString("13.5"),
				}},
				SubtotalAmount: decimal.RequireFromString("270"),
				ShippingCost:   decimal.RequireFromString("15"),
				Adjustments:    decimal.RequireFromString("-30"),
				TotalAmount:    decimal.RequireFromString("285"),
				TotalCashback:  decimal.RequireFromString("13.5"),
				CashbackUsed:   decimal.Zero,
			}, nil
		},
	}
	req := withStoreActor(httptest.NewRequest(http.MethodPost, "/orders/calculate", strings.NewReader(calculateBody())))
	w := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if captured.BuyerOrgID != testStoreOrgID {
		t.Fatalf("buyer must be the caller's org, got %s", captured.BuyerOrgID)
	}
	if captured.PaymentMethod == nil || *captured.PaymentMethod != enums.PaymentMethodPix {
		t.Fatalf("payment method not forwarded: %v", captured.PaymentMethod)
	}
	if !captured.ShippingCost.Equal(decimal.RequireFromString("15")) || !captured.CashbackToUse.IsZero() {
		t.Fatalf("unexpected amounts shipping=%s cashback=%s", captured.ShippingCost, captured.CashbackToUse)
	}

	var body types.SuccessEnvelope[calculationResponse]
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.TotalAmount != "285.00" || body.Data.Adjustments != "-30.00" {
		t.Fatalf("unexpected totals %+v", body.Data)
	}
	if body.Data.Items[0].AppliedCashbackAmount != "13.50" || body.Data.Items[0].UnitPrice != "100.00" {
		t.Fatalf("unexpected line %+v", body.Data.Items[0])
	}
	if body.Data.AppliedCampaignIDs == nil {
		t.Fatalf("applied campaign ids should render as an empty list")
	}
}

func TestCalculateRejectsInvalidBody(t *testing.T) {
	svc := &stubOrderService{
		calculate: func(context.Context, internalorders.Actor, internalorders.CalculateInput) (*pricing.Result, error) {
			t.Fatal("service must not be called")
			return nil, nil
		},
	}
	body := `{"supplier_org_id":"` + testSupplierID.String() + `","shipping_address_id":"` + testAddressID.String() + `","buyer_state":"ZZ","items":[]}`
	req := withStoreActor(httptest.NewRequest(http.MethodPost, "/orders/calculate", strings.NewReader(body)))
	w := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestPlaceForwardsIdempotencyKeyAndReturnsCreated(t *testing.T) {
	orderID := uuid.New()
	svc := &stubOrderService{
		place: func(_ context.Context, input internalorders.PlaceOrderInput) (*models.Order, error) {
			if input.IdempotencyKey != "order-key-1" {
				t.Fatalf("unexpected idempotency key %q", input.IdempotencyKey)
			}
			if input.Actor.UserID != testUserID || input.BuyerOrgID != testStoreOrgID {
				t.Fatalf("unexpected actor %+v", input.Actor)
			}
			placed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
			return &models.Order{
				ID:             orderID,
				BuyerOrgID:     testStoreOrgID,
				SupplierOrgID:  testSupplierID,
				Status:         enums.OrderStatusPlaced,
				PlacedAt:       &placed,
				BuyerState:     enums.BrazilianState("SP"),
				SubtotalAmount: decimal.RequireFromString("300"),
				TotalAmount:    decimal.RequireFromString("315"),
				Version:        1,
				CreatedBy:      testUserID,
			}, nil
		},
	}
	req := withStoreActor(httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(calculateBody())))
	req.Header.Set(middleware.HeaderIdempotencyKey, " order-key-1 ")
	w := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var body types.SuccessEnvelope[orderResponse]
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.ID != orderID.String() || body.Data.Status != "PLACED" || body.Data.TotalAmount != "315.00" {
		t.Fatalf("unexpected order %+v", body.Data)
	}
}

func TestPlaceSurfacesCashbackErrors(t *testing.T) {
	svc := &stubOrderService{
		place: func(context.Context, internalorders.PlaceOrderInput) (*models.Order, error) {
			return nil, pkgerrors.New(pkgerrors.CodeInsufficientCashback, "requested cashback exceeds available balance").
				WithDetails(map[string]any{"requested": "50.00", "available": "10.00"})
		},
	}
	req := withStoreActor(httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(calculateBody())))
	w := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
	var body types.ErrorEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != string(pkgerrors.CodeInsufficientCashback) {
		t.Fatalf("unexpected code %s", body.Error.Code)
	}
}

func TestTransitionPassesTargetAndNote(t *testing.T) {
	orderID := uuid.New()
	svc := &stubOrderService{
		transition: func(_ context.Context, input internalorders.TransitionInput) (*models.OrderStatusHistory, error) {
			if input.OrderID != orderID || input.Target != enums.OrderStatusCancelled {
				t.Fatalf("unexpected input %+v", input)
			}
			if input.Note == nil || *input.Note != "changed my mind" {
				t.Fatalf("note not trimmed and forwarded: %v", input.Note)
			}
			prev := enums.OrderStatusPlaced
			return &models.OrderStatusHistory{
				ID:             uuid.New(),
				OrderID:        orderID,
				PreviousStatus: &prev,
				NewStatus:      enums.OrderStatusCancelled,
				ActorUserID:    testUserID,
				ActorOrgID:     testStoreOrgID,
				ActorOrgType:   enums.OrganizationTypeStore,
				Note:           input.Note,
			}, nil
		},
	}
	req := withStoreActor(httptest.NewRequest(http.MethodPost, "/orders/"+orderID.String()+"/status",
		strings.NewReader(`{"status":"CANCELLED","note":"  changed my mind "}`)))
	w := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var body types.SuccessEnvelope[historyResponse]
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.PreviousStatus == nil || *body.Data.PreviousStatus != "PLACED" || body.Data.NewStatus != "CANCELLED" {
		t.Fatalf("unexpected history %+v", body.Data)
	}
}

func TestTransitionRejectsUnknownStatus(t *testing.T) {
	svc := &stubOrderService{}
	req := withStoreActor(httptest.NewRequest(http.MethodPost, "/orders/"+uuid.NewString()+"/status",
		strings.NewReader(`{"status":"LOST"}`)))
	w := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestDetailRejectsMalformedOrderID(t *testing.T) {
	req := withStoreActor(httptest.NewRequest(http.MethodGet, "/orders/not-a-uuid", nil))
	w := httptest.NewRecorder()
	newTestRouter(&stubOrderService{}).ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestListParsesFilters(t *testing.T) {
	svc := &stubOrderService{
		list: func(_ context.Context, input internalorders.ListOrdersInput) (*internalorders.OrderList, error) {
			if input.Params.Limit != 10 || input.Params.Cursor != "abc" {
				t.Fatalf("unexpected params %+v", input.Params)
			}
			if input.Status == nil || *input.Status != enums.OrderStatusShipped {
				t.Fatalf("unexpected status filter %v", input.Status)
			}
			return &internalorders.OrderList{
				Orders:     []models.Order{{ID: uuid.New(), Status: enums.OrderStatusShipped}},
				NextCursor: "next",
			}, nil
		},
	}
	req := withStoreActor(httptest.NewRequest(http.MethodGet, "/orders?limit=10&cursor=abc&status=shipped", nil))
	w := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var body types.SuccessEnvelope[orderListResponse]
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Data.Orders) != 1 || body.Data.NextCursor != "next" {
		t.Fatalf("unexpected page %+v", body.Data)
	}
}

func TestListRejectsUnknownStatus(t *testing.T) {
	req := withStoreActor(httptest.NewRequest(http.MethodGet, "/orders?status=lost", nil))
	w := httptest.NewRecorder()
	newTestRouter(&stubOrderService{}).ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestHandlersRequireActor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	w := httptest.NewRecorder()
	newTestRouter(&stubOrderService{}).ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

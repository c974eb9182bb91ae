package orders

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/atacado-backend/api/middleware"
	"github.com/angelmondragon/atacado-backend/api/responses"
	"github.com/angelmondragon/atacado-backend/api/validators"
	internalorders "github.com/angelmondragon/atacado-backend/internal/orders"
	"github.com/angelmondragon/atacado-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/atacado-backend/pkg/errors"
	"github.com/angelmondragon/atacado-backend/pkg/logger"
	"github.com/angelmondragon/atacado-backend/pkg/pagination"
)

// Handlers serves the order lifecycle endpoints.
type Handlers struct {
	svc  internalorders.Service
	logg *logger.Logger
	view presenter
}

func NewHandlers(svc internalorders.Service, currencyPlaces int32, logg *logger.Logger) *Handlers {
	return &Handlers{svc: svc, logg: logg, view: presenter{places: currencyPlaces}}
}

// Calculate previews totals for the caller's store without writing anything.
func (h *Handlers) Calculate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), h.logg, w, err)
			return
		}
		input, err := decodeCalculate(r, actor)
		if err != nil {
			responses.WriteError(r.Context(), h.logg, w, err)
			return
		}
		result, err := h.svc.Calculate(r.Context(), actor, input)
		if err != nil {
			responses.WriteError(r.Context(), h.logg, w, err)
			return
		}
		responses.WriteSuccess(w, h.view.calculation(result))
	}
}

// Place commits an order. The Idempotency-Key header doubles as the order's
// deduplication key.
func (h *Handlers) Place() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), h.logg, w, err)
			return
		}
		input, err := decodeCalculate(r, actor)
		if err != nil {
			responses.WriteError(r.Context(), h.logg, w, err)
			return
		}
		order, err := h.svc.PlaceOrder(r.Context(), internalorders.PlaceOrderInput{
			CalculateInput: input,
			Actor:          actor,
			IdempotencyKey: strings.TrimSpace(r.Header.Get(middleware.HeaderIdempotencyKey)),
		})
		if err != nil {
			responses.WriteError(r.Context(), h.logg, w, err)
			return
		}
		ctx := h.logg.WithOrderID(r.Context(), order.ID.String())
		h.logg.Info(ctx, "order placed")
		responses.WriteSuccessStatus(w, http.StatusCreated, h.view.order(order))
	}
}

// Detail returns one order with its items and history to either party.
func (h *Handlers) Detail() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), h.logg, w, err)
			return
		}
		orderID, err := validators.ParseURLUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), h.logg, w, err)
			return
		}
		order, err := h.svc.GetOrder(r.Context(), orderID, actor)
		if err != nil {
			responses.WriteError(r.Context(), h.logg, w, err)
			return
		}
		responses.WriteSuccess(w, h.view.order(order))
	}
}

// List pages through the caller's orders, newest first.
func (h *Handlers) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), h.logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), h.logg, w, err)
			return
		}
		input := internalorders.ListOrdersInput{
			Actor: actor,
			Params: pagination.Params{
				Limit:  limit,
				Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
			},
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseOrderStatus(strings.ToUpper(raw))
			if err != nil {
				responses.WriteError(r.Context(), h.logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter").
					WithDetails(map[string]any{"field": "status", "value": raw}))
				return
			}
			input.Status = &status
		}

		list, err := h.svc.ListOrders(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), h.logg, w, err)
			return
		}
		resp := orderListResponse{Orders: make([]orderResponse, 0, len(list.Orders)), NextCursor: list.NextCursor}
		for i := range list.Orders {
			resp.Orders = append(resp.Orders, h.view.order(&list.Orders[i]))
		}
		responses.WriteSuccess(w, resp)
	}
}

// Transition moves an order to the requested status and returns the history
// entry that records the change.
func (h *Handlers) Transition() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), h.logg, w, err)
			return
		}
		orderID, err := validators.ParseURLUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), h.logg, w, err)
			return
		}
		var req transitionRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), h.logg, w, err)
			return
		}
		var note *string
		if req.Note != nil {
			if trimmed := validators.SanitizeString(*req.Note, 1000); trimmed != "" {
				note = &trimmed
			}
		}

		entry, err := h.svc.TransitionStatus(r.Context(), internalorders.TransitionInput{
			OrderID:        orderID,
			Actor:          actor,
			Target:         enums.OrderStatus(req.Status),
			Note:           note,
			IdempotencyKey: strings.TrimSpace(r.Header.Get(middleware.HeaderIdempotencyKey)),
		})
		if err != nil {
			responses.WriteError(r.Context(), h.logg, w, err)
			return
		}
		responses.WriteSuccess(w, history(entry))
	}
}

// actorFromRequest rebuilds the caller from the identity middleware. An org
// type the engine does not know is passed through; the state machine refuses
// it on transitions and the party checks refuse it elsewhere.
func actorFromRequest(r *http.Request) (internalorders.Actor, error) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		return internalorders.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	orgID, ok := middleware.OrgIDFromContext(r.Context())
	if !ok {
		return internalorders.Actor{}, pkgerrors.New(pkgerrors.CodeForbidden, "organization context missing")
	}
	return internalorders.Actor{
		UserID:  userID,
		OrgID:   orgID,
		OrgType: enums.OrganizationType(middleware.OrgTypeFromContext(r.Context())),
	}, nil
}

func decodeCalculate(r *http.Request, actor internalorders.Actor) (internalorders.CalculateInput, error) {
	var req calculateRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		return internalorders.CalculateInput{}, err
	}

	input := internalorders.CalculateInput{
		BuyerOrgID:        actor.OrgID,
		SupplierOrgID:     uuid.MustParse(req.SupplierOrgID),
		ShippingAddressID: uuid.MustParse(req.ShippingAddressID),
		BuyerState:        enums.BrazilianState(req.BuyerState),
		ShippingCost:      decimal.Zero,
		CashbackToUse:     decimal.Zero,
		Items:             make([]internalorders.LineInput, 0, len(req.Items)),
	}
	if req.PaymentConditionID != nil {
		id := uuid.MustParse(*req.PaymentConditionID)
		input.PaymentConditionID = &id
	}
	if req.PaymentMethod != nil {
		// Already checked by the payment_method tag.
		method, _ := enums.ParsePaymentMethod(*req.PaymentMethod)
		input.PaymentMethod = &method
	}
	if req.ShippingCost != nil {
		input.ShippingCost = *req.ShippingCost
	}
	if req.CashbackToUse != nil {
		input.CashbackToUse = *req.CashbackToUse
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, internalorders.LineInput{
			ProductID: uuid.MustParse(item.ProductID),
			Quantity:  item.Quantity,
		})
	}
	return input, nil
}

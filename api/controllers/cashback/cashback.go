package cashback

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/atacado-backend/api/middleware"
	"github.com/angelmondragon/atacado-backend/api/responses"
	"github.com/angelmondragon/atacado-backend/api/validators"
	internalcashback "github.com/angelmondragon/atacado-backend/internal/cashback"
	"github.com/angelmondragon/atacado-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/atacado-backend/pkg/errors"
	"github.com/angelmondragon/atacado-backend/pkg/logger"
	"github.com/angelmondragon/atacado-backend/pkg/pagination"
)

type walletResponse struct {
	OrganizationID   string `json:"organization_id"`
	AvailableBalance string `json:"available_balance"`
	TotalEarned      string `json:"total_earned"`
	TotalUsed        string `json:"total_used"`
}

type transactionResponse struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	Amount        string    `json:"amount"`
	OrderID       *string   `json:"order_id,omitempty"`
	ReferenceType *string   `json:"reference_type,omitempty"`
	Description   string    `json:"description"`
	CreatedAt     time.Time `json:"created_at"`
}

// Wallet returns the caller organization's cached balance. Organizations that
// never earned cashback see a zero wallet.
func Wallet(svc internalcashback.Service, currencyPlaces int32, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID, ok := middleware.OrgIDFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "organization context missing"))
			return
		}
		wallet, err := svc.Wallet(r.Context(), orgID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, walletResponse{
			OrganizationID:   orgID.String(),
			AvailableBalance: fixed(wallet.AvailableBalance, currencyPlaces),
			TotalEarned:      fixed(wallet.TotalEarned, currencyPlaces),
			TotalUsed:        fixed(wallet.TotalUsed, currencyPlaces),
		})
	}
}

// Transactions lists the most recent ledger entries, newest first.
func Transactions(svc internalcashback.Service, currencyPlaces int32, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID, ok := middleware.OrgIDFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "organization context missing"))
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		entries, err := svc.Transactions(r.Context(), orgID, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := make([]transactionResponse, 0, len(entries))
		for _, entry := range entries {
			out = append(out, transaction(entry, currencyPlaces))
		}
		responses.WriteSuccess(w, out)
	}
}

func transaction(entry models.CashbackTransaction, places int32) transactionResponse {
	resp := transactionResponse{
		ID:            entry.ID.String(),
		Type:          entry.Type.String(),
		Amount:        fixed(entry.Amount, places),
		ReferenceType: entry.ReferenceType,
		Description:   entry.Description,
		CreatedAt:     entry.CreatedAt,
	}
	if entry.OrderID != nil {
		id := entry.OrderID.String()
		resp.OrderID = &id
	}
	return resp
}

func fixed(d decimal.Decimal, places int32) string {
	return d.StringFixed(places)
}

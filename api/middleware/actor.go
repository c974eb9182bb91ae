package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/atacado-backend/api/responses"
	pkgerrors "github.com/angelmondragon/atacado-backend/pkg/errors"
	"github.com/angelmondragon/atacado-backend/pkg/logger"
)

const (
	HeaderUserID  = "X-User-Id"
	HeaderOrgID   = "X-Org-Id"
	HeaderOrgType = "X-Org-Type"
)

// Actor reads the caller identity set by the upstream gateway. Requests
// without a user and organization are rejected before reaching a handler.
func Actor(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := parseIdentity(r, HeaderUserID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			orgID, err := parseIdentity(r, HeaderOrgID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			orgType := strings.ToUpper(strings.TrimSpace(r.Header.Get(HeaderOrgType)))
			if orgType == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "organization type missing"))
				return
			}

			ctx := WithActor(r.Context(), userID, orgID, orgType)
			if logg != nil {
				ctx = logg.WithUserID(ctx, userID.String())
				ctx = logg.WithOrgID(ctx, orgID.String())
				ctx = logg.WithActorRole(ctx, orgType)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func parseIdentity(r *http.Request, header string) (uuid.UUID, error) {
	raw := strings.TrimSpace(r.Header.Get(header))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "caller identity missing").WithDetails(map[string]any{"header": header})
	}
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "caller identity invalid").WithDetails(map[string]any{"header": header})
	}
	return id, nil
}

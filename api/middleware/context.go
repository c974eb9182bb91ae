package middleware

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	ctxUserID  contextKey = "user_id"
	ctxOrgID   contextKey = "org_id"
	ctxOrgType contextKey = "org_type"
)

func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	return uuidFromContext(ctx, ctxUserID)
}

func OrgIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	return uuidFromContext(ctx, ctxOrgID)
}

// OrgTypeFromContext returns the organization type exactly as the gateway sent
// it, upper-cased. It is not checked against the known types here.
func OrgTypeFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxOrgType).(string); ok {
		return v
	}
	return ""
}

// WithActor injects the caller identity into the context.
func WithActor(ctx context.Context, userID, orgID uuid.UUID, orgType string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxUserID, userID)
	ctx = context.WithValue(ctx, ctxOrgID, orgID)
	return context.WithValue(ctx, ctxOrgType, orgType)
}

func uuidFromContext(ctx context.Context, key contextKey) (uuid.UUID, bool) {
	if ctx == nil {
		return uuid.Nil, false
	}
	v, ok := ctx.Value(key).(uuid.UUID)
	if !ok || v == uuid.Nil {
		return uuid.Nil, false
	}
	return v, true
}

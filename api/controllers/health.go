package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/atacado-backend/api/responses"
	"github.com/angelmondragon/atacado-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/atacado-backend/pkg/errors"
	"github.com/angelmondragon/atacado-backend/pkg/logger"
)

const (
	envHeader         = "X-Atacado-Env"
	readinessDeadline = 2 * time.Second
)

// Pinger is any dependency that can report its own health.
type Pinger interface {
	Ping(context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every named dependency and fails on the first one that
// does not answer within the readiness deadline.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessDeadline)
		defer cancel()

		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, name+" unavailable").
					WithDetails(map[string]any{"dependency": name}))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}

package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/atacado-backend/api/controllers"
	cashbackcontrollers "github.com/angelmondragon/atacado-backend/api/controllers/cashback"
	ordercontrollers "github.com/angelmondragon/atacado-backend/api/controllers/orders"
	"github.com/angelmondragon/atacado-backend/api/middleware"
	"github.com/angelmondragon/atacado-backend/internal/cashback"
	"github.com/angelmondragon/atacado-backend/internal/orders"
	"github.com/angelmondragon/atacado-backend/pkg/config"
	"github.com/angelmondragon/atacado-backend/pkg/db"
	"github.com/angelmondragon/atacado-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/atacado-backend/pkg/redis"
)

type redisClient interface {
	pkgredis.IdempotencyStore
	Ping(context.Context) error
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redis redisClient,
	ordersSvc orders.Service,
	cashbackSvc cashback.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"database": dbP,
			"redis":    redis,
		}))
	})
	r.Handle("/metrics", promhttp.Handler())

	places := cfg.Pricing.CurrencyPlaces
	orderHandlers := ordercontrollers.NewHandlers(ordersSvc, places, logg)
	idempotent := middleware.Idempotency(redis, cfg.Idempotency.TTL, logg)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Actor(logg))

		r.Post("/orders/calculate", orderHandlers.Calculate())
		r.With(idempotent).Post("/orders", orderHandlers.Place())
		r.Get("/orders", orderHandlers.List())
		r.Get("/orders/{orderId}", orderHandlers.Detail())
		r.With(idempotent).Post("/orders/{orderId}/status", orderHandlers.Transition())

		r.Get("/cashback/wallet", cashbackcontrollers.Wallet(cashbackSvc, places, logg))
		r.Get("/cashback/transactions", cashbackcontrollers.Transactions(cashbackSvc, places, logg))
	})

	return r
}

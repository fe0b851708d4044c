// Package hotspotbilling предоставляет маршруты приложения.
package hotspotbilling

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/hotspot-billing/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/hotspot-billing/internal/http/handlers/connections"
	"github.com/magabrotheeeer/hotspot-billing/internal/http/handlers/events"
	"github.com/magabrotheeeer/hotspot-billing/internal/http/handlers/health"
	"github.com/magabrotheeeer/hotspot-billing/internal/http/handlers/payment/paymentcreate"
	"github.com/magabrotheeeer/hotspot-billing/internal/http/handlers/payment/paymentlist"
	"github.com/magabrotheeeer/hotspot-billing/internal/http/handlers/plansview"
	"github.com/magabrotheeeer/hotspot-billing/internal/http/handlers/stats"
	"github.com/magabrotheeeer/hotspot-billing/internal/http/handlers/syncusers"
	"github.com/magabrotheeeer/hotspot-billing/internal/http/handlers/user/create"
	"github.com/magabrotheeeer/hotspot-billing/internal/http/handlers/user/expired"
	"github.com/magabrotheeeer/hotspot-billing/internal/http/handlers/user/extend"
	"github.com/magabrotheeeer/hotspot-billing/internal/http/handlers/user/list"
	"github.com/magabrotheeeer/hotspot-billing/internal/http/handlers/user/remove"
	"github.com/magabrotheeeer/hotspot-billing/internal/http/handlers/user/toggle"
	"github.com/magabrotheeeer/hotspot-billing/internal/http/middlewarectx"
	"github.com/magabrotheeeer/hotspot-billing/internal/lib/jwt"
	authservice "github.com/magabrotheeeer/hotspot-billing/internal/services/auth"
	billingservice "github.com/magabrotheeeer/hotspot-billing/internal/services/billing"
	syncservice "github.com/magabrotheeeer/hotspot-billing/internal/services/sync"
	"github.com/magabrotheeeer/hotspot-billing/internal/storage/repository"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger,
	db *repository.Storage, jwtMaker jwt.Maker,
	authService *authservice.Service,
	billingService *billingservice.Service,
	syncService *syncservice.Service,
) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/login", login.New(logger, authService).ServeHTTP)
		r.Get("/health", health.New(logger, db).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(jwtMaker, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))

			r.Post("/users", create.New(logger, billingService).ServeHTTP)
			r.Get("/users", list.New(logger, billingService).ServeHTTP)
			r.Post("/users/{id}/toggle", toggle.New(logger, billingService).ServeHTTP)
			r.Post("/users/{id}/extend", extend.New(logger, billingService).ServeHTTP)
			r.Delete("/users/{id}", remove.New(logger, billingService).ServeHTTP)
			r.Get("/expired", expired.New(logger, billingService).ServeHTTP)

			r.Post("/payments", paymentcreate.New(logger, billingService).ServeHTTP)
			r.Get("/payments", paymentlist.New(logger, billingService).ServeHTTP)

			r.Get("/active-connections", connections.New(logger, billingService).ServeHTTP)
			r.Post("/sync-users", syncusers.New(logger, syncService).ServeHTTP)
			r.Get("/stats", stats.New(logger, billingService).ServeHTTP)
			r.Get("/plans", plansview.New(logger, billingService).ServeHTTP)
			r.Get("/events", events.New(logger, billingService).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}

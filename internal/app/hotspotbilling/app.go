// Package hotspotbilling собирает приложение биллинга хотспота:
// хранилище, кэш, клиент роутера, сервисы, HTTP-сервер и фоновые задачи.
package hotspotbilling

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/hotspot-billing/internal/cache"
	"github.com/magabrotheeeer/hotspot-billing/internal/config"
	"github.com/magabrotheeeer/hotspot-billing/internal/lib/jwt"
	"github.com/magabrotheeeer/hotspot-billing/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/hotspot-billing/internal/lib/sl"
	"github.com/magabrotheeeer/hotspot-billing/internal/migrations"
	"github.com/magabrotheeeer/hotspot-billing/internal/plans"
	"github.com/magabrotheeeer/hotspot-billing/internal/routeros"
	authservice "github.com/magabrotheeeer/hotspot-billing/internal/services/auth"
	billingservice "github.com/magabrotheeeer/hotspot-billing/internal/services/billing"
	expiryservice "github.com/magabrotheeeer/hotspot-billing/internal/services/expiry"
	syncservice "github.com/magabrotheeeer/hotspot-billing/internal/services/sync"
	"github.com/magabrotheeeer/hotspot-billing/internal/storage/repository"
)

// App — собранное приложение с HTTP-сервером и фоновыми задачами.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage

	expiry *expiryservice.Service
	sync   *syncservice.Service
	jobs   config.Jobs
}

// New создаёт приложение: подключает зависимости, накатывает миграции
// и регистрирует маршруты. Отсутствие RabbitMQ в конфигурации не
// считается ошибкой: уведомления просто отключаются.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	router := routeros.NewClient(
		cfg.AddressRouter, cfg.UserRouter, cfg.PasswordRouter, cfg.TimeoutRouter)

	var notifier expiryservice.Notifier
	if cfg.RabbitMQURL != "" {
		conn, err := rabbitmq.Connect(cfg.RabbitMQURL, 5, 2*time.Second)
		if err != nil {
			return nil, err
		}
		ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
		if err != nil {
			return nil, err
		}
		notifier = rabbitmq.NewNotifier(ch)
	} else {
		logger.Warn("rabbitmq url is empty, expiry notifications disabled")
	}

	catalog := plans.Default()
	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	billingService := billingservice.New(db, router, catalog, cacheRedis, logger)
	syncService := syncservice.New(db, router, logger)
	expiryService := expiryservice.New(db, router, notifier, logger)
	authService := authservice.New(cfg.AdminUsername, cfg.AdminPasswordHash, jwtMaker, logger)

	r := chi.NewRouter()
	RegisterRoutes(r, logger, db, jwtMaker, authService, billingService, syncService)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      r,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		expiry: expiryService,
		sync:   syncService,
		jobs:   cfg.Jobs,
	}, nil
}

// Run запускает HTTP-сервер и фоновые задачи и блокируется до отмены
// контекста или ошибки сервера.
func (a *App) Run(ctx context.Context) error {
	go a.expiry.RunPeriodic(ctx, a.jobs.SweepInterval)
	go a.sync.RunPeriodic(ctx, a.jobs.SyncInterval)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if closeErr := a.db.DB.Close(); closeErr != nil {
			a.logger.Error("failed to close database", sl.Err(closeErr))
		}
		return err
	}
}

// Package syncusers реализует HTTP-обработчик ручного запуска сверки
// базы абонентов с роутером.
package syncusers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/hotspot-billing/internal/http/response"
	"github.com/magabrotheeeer/hotspot-billing/internal/lib/sl"
	"github.com/magabrotheeeer/hotspot-billing/internal/models"
	syncsvc "github.com/magabrotheeeer/hotspot-billing/internal/services/sync"
)

// Handler управляет HTTP-запросами на запуск сверки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс запуска прохода сверки.
type Service interface {
	Run(ctx context.Context) (*models.SyncReport, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Запустить сверку с роутером
// @Description Удаляет из базы активных абонентов, отсутствующих на роутере, и возвращает отчёт.
// @Tags Router
// @Produce  json
// @Success 200 {object} map[string]any "Отчёт о сверке"
// @Failure 409 {object} response.ErrorResponse "Сверка уже выполняется"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Failure 503 {object} response.ErrorResponse "Роутер недоступен, сверка отложена"
// @Security BearerAuth
// @Router /sync-users [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.syncusers"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	report, err := h.service.Run(r.Context())
	if err != nil {
		switch {
		case errors.Is(err, syncsvc.ErrDeferred):
			log.Warn("reconciliation deferred", sl.Err(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			render.JSON(w, r, response.Error("router unavailable, reconciliation deferred"))
		case errors.Is(err, syncsvc.ErrPassInProgress):
			log.Warn("reconciliation already running")
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("reconciliation already in progress"))
		default:
			log.Error("reconciliation failed", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not run reconciliation"))
		}
		return
	}

	log.Info("reconciliation finished",
		slog.Int("removed", len(report.Removed)),
		slog.Int("unmatched_router", len(report.UnmatchedRouter)))
	render.JSON(w, r, response.OKWithData(report))
}

// Package expired реализует HTTP-обработчик для получения списка
// абонентов с истёкшим периодом.
package expired

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/hotspot-billing/internal/http/response"
	"github.com/magabrotheeeer/hotspot-billing/internal/lib/sl"
	"github.com/magabrotheeeer/hotspot-billing/internal/models"
)

// Handler управляет HTTP-запросами на получение списка истёкших абонентов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики получения истёкших абонентов.
type Service interface {
	ExpiredUsers(ctx context.Context) ([]*models.User, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Абоненты с истёкшим периодом
// @Description Возвращает абонентов, чья дата окончания периода уже прошла, включая отключённых.
// @Tags Users
// @Produce  json
// @Success 200 {object} map[string]any "Список истёкших абонентов"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /expired [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.expired"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	users, err := h.service.ExpiredUsers(r.Context())
	if err != nil {
		log.Error("failed to list expired users", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list expired users"))
		return
	}

	log.Info("expired users listed", slog.Int("count", len(users)))
	render.JSON(w, r, response.OKWithData(users))
}

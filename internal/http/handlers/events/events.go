// Package events реализует HTTP-обработчик журнала операций биллинга.
package events

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/hotspot-billing/internal/http/response"
	"github.com/magabrotheeeer/hotspot-billing/internal/lib/sl"
	"github.com/magabrotheeeer/hotspot-billing/internal/models"
)

// Handler управляет HTTP-запросами на просмотр журнала операций.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс получения журнала операций.
type Service interface {
	Events(ctx context.Context, limit int) ([]*models.Event, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Журнал операций
// @Description Возвращает последние записи журнала: создания, отключения, платежи, сверки.
// @Tags Events
// @Produce  json
// @Param limit query int false "Максимум записей (по умолчанию 100)"
// @Success 200 {object} map[string]any "Записи журнала"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /events [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.events"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := h.service.Events(r.Context(), limit)
	if err != nil {
		log.Error("failed to list events", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list events"))
		return
	}

	render.JSON(w, r, response.OKWithData(entries))
}

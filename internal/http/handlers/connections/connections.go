// Package connections реализует HTTP-обработчик для просмотра активных
// сессий хотспота на роутере.
package connections

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
	"github.com/magabrotheeeer/hotspot-billing/internal/routeros"
)

// Handler управляет HTTP-запросами на просмотр активных сессий.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс получения активных сессий роутера.
type Service interface {
	ActiveConnections(ctx context.Context) ([]models.LiveSession, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Активные подключения
// @Description Возвращает снимок активных сессий хотспота с адресами и длительностью.
// @Tags Router
// @Produce  json
// @Success 200 {object} map[string]any "Список активных сессий"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Failure 503 {object} response.ErrorResponse "Роутер недоступен"
// @Security BearerAuth
// @Router /active-connections [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.connections"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	sessions, err := h.service.ActiveConnections(r.Context())
	if err != nil {
		if errors.Is(err, routeros.ErrUnavailable) {
			log.Error("router unavailable", sl.Err(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			render.JSON(w, r, response.Error("router unavailable"))
			return
		}
		log.Error("failed to list active connections", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list active connections"))
		return
	}

	log.Info("active connections listed", slog.Int("count", len(sessions)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"users": sessions,
		"count": len(sessions),
	}))
}

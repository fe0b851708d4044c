// Package toggle реализует HTTP-обработчик для переключения доступа абонента.
package toggle

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/hotspot-billing/internal/http/response"
	"github.com/magabrotheeeer/hotspot-billing/internal/lib/sl"
	"github.com/magabrotheeeer/hotspot-billing/internal/models"
	"github.com/magabrotheeeer/hotspot-billing/internal/routeros"
	"github.com/magabrotheeeer/hotspot-billing/internal/storage/repository"
)

// Handler управляет HTTP-запросами на переключение доступа.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики переключения доступа.
type Service interface {
	Toggle(ctx context.Context, id int64) (*models.User, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Переключить доступ абонента
// @Description Включает или отключает доступ абонента и его учётную запись на роутере.
// @Tags Users
// @Produce  json
// @Param id path int true "ID абонента"
// @Success 200 {object} map[string]any "Абонент после переключения"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 404 {object} response.ErrorResponse "Абонент не найден"
// @Failure 409 {object} response.ErrorResponse "Учётная запись отсутствует на роутере"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Failure 503 {object} response.ErrorResponse "Роутер недоступен"
// @Security BearerAuth
// @Router /users/{id}/toggle [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.toggle"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		log.Error("invalid id format", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid id"))
		return
	}

	user, err := h.service.Toggle(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrUserNotFound):
			log.Error("user not found", slog.Int64("id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
		case errors.Is(err, routeros.ErrCredentialMissing):
			log.Error("user is not bound on router", slog.Int64("id", id))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("user is not bound on router"))
		case errors.Is(err, routeros.ErrUnavailable):
			log.Error("router unavailable", sl.Err(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			render.JSON(w, r, response.Error("router unavailable"))
		default:
			log.Error("failed to toggle user", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not toggle user"))
		}
		return
	}

	log.Info("user toggled", slog.Int64("id", id), slog.Bool("is_active", user.IsActive))
	render.JSON(w, r, response.OKWithData(user))
}

// Package health реализует HTTP-обработчик проверки живости сервиса.
package health

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/hotspot-billing/internal/http/response"
	"github.com/magabrotheeeer/hotspot-billing/internal/lib/sl"
)

// Handler отвечает на запросы проверки живости.
type Handler struct {
	log     *slog.Logger
	storage Pinger
}

// Pinger проверяет готовность хранилища.
type Pinger interface {
	CheckDatabaseReady(ctx context.Context) error
}

// New создает новый Handler.
func New(log *slog.Logger, storage Pinger) *Handler {
	return &Handler{log: log, storage: storage}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.health"

	if err := h.storage.CheckDatabaseReady(r.Context()); err != nil {
		h.log.Error("database not ready", slog.String("op", op), sl.Err(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		render.JSON(w, r, response.Error("database not ready"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"status": "ok",
	}))
}

// Package paymentcreate реализует HTTP-обработчик для регистрации платежей.
package paymentcreate

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/hotspot-billing/internal/http/response"
	"github.com/magabrotheeeer/hotspot-billing/internal/lib/sl"
	"github.com/magabrotheeeer/hotspot-billing/internal/models"
	"github.com/magabrotheeeer/hotspot-billing/internal/services/billing"
	"github.com/magabrotheeeer/hotspot-billing/internal/storage/repository"
)

// Handler управляет HTTP-запросами на регистрацию платежей.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики регистрации платежа.
type Service interface {
	RecordPayment(ctx context.Context, req models.DummyPayment) (*models.Payment, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Зарегистрировать платёж
// @Description Записывает платёж абонента. Доступ и дата окончания периода не меняются.
// @Tags Payments
// @Accept  json
// @Produce  json
// @Param request body models.DummyPayment true "Данные платежа"
// @Success 200 {object} map[string]any "Созданный платёж"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 404 {object} response.ErrorResponse "Абонент не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации или некорректная сумма"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /payments [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.paymentcreate"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyPayment
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	payment, err := h.service.RecordPayment(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, billing.ErrInvalidAmount):
			log.Error("invalid payment amount", slog.Float64("amount", req.Amount))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error("payment amount must be positive"))
		case errors.Is(err, repository.ErrUserNotFound):
			log.Error("user not found", slog.Int64("user_id", req.UserID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
		default:
			log.Error("failed to record payment", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not record payment"))
		}
		return
	}

	log.Info("payment recorded",
		slog.Int64("id", payment.ID),
		slog.Int64("user_id", payment.UserID))
	render.JSON(w, r, response.OKWithData(payment))
}

// Package create реализует HTTP-обработчик для создания абонентов хотспота.
//
// Handler принимает JSON-запрос с данными абонента, валидирует их, вызывает
// бизнес-логику создания через сервис и возвращает созданную запись в JSON-формате.
// Если запись сохранена, но привязка на роутере не удалась, ответ успешный,
// с предупреждением.
//
// В случае ошибок формируются соответствующие HTTP-ответы с описанием проблемы.
package create

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
	"github.com/magabrotheeeer/hotspot-billing/internal/plans"
	"github.com/magabrotheeeer/hotspot-billing/internal/services/billing"
	"github.com/magabrotheeeer/hotspot-billing/internal/storage/repository"
)

// Handler управляет HTTP-запросами на создание абонентов.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис бизнес-логики для создания абонентов
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики создания абонента.
type Service interface {
	Create(ctx context.Context, req models.DummyUser) (*billing.CreateResult, error)
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
// @Summary Создать абонента
// @Description Создает абонента хотспота с выбранным тарифом и привязывает его на роутере.
// @Tags Users
// @Accept  json
// @Produce  json
// @Param request body models.DummyUser true "Данные нового абонента"
// @Success 200 {object} map[string]any "Созданный абонент"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 409 {object} response.ErrorResponse "Имя уже занято"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации или неизвестный тариф"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при создании абонента"
// @Security BearerAuth
// @Router /users [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyUser
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

	result, err := h.service.Create(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, plans.ErrUnknownPlan):
			log.Error("unknown plan", slog.String("plan_id", req.PlanID))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error("unknown plan"))
		case errors.Is(err, repository.ErrUsernameTaken):
			log.Error("username already taken", slog.String("username", req.Username))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("username already taken"))
		default:
			log.Error("failed to create user", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not create user"))
		}
		return
	}

	log.Info("user created",
		slog.Int64("id", result.User.ID),
		slog.Bool("router_bound", result.RouterBound))
	if !result.RouterBound {
		render.JSON(w, r, response.OKWithWarning(result.User, result.Warning))
		return
	}
	render.JSON(w, r, response.OKWithData(result.User))
}

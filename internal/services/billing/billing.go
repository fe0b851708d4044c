// Package billing содержит бизнес-логику операций биллинга хотспота.
//
// Каждая операция, затрагивающая и базу, и роутер, выполняется как
// упорядоченная двухшаговая последовательность без распределённой
// транзакции: какой шаг идёт первым, определяют правила ниже, а
// идемпотентность шагов делает повтор и периодическую синхронизацию
// безопасными. Частичный отказ отражается отдельным "деградированным"
// исходом, а не выдаётся за успех или полный провал.
package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/hotspot-billing/internal/lib/password"
	"github.com/magabrotheeeer/hotspot-billing/internal/lib/sl"
	"github.com/magabrotheeeer/hotspot-billing/internal/models"
)

// ErrInvalidAmount — сумма платежа должна быть положительной.
var ErrInvalidAmount = errors.New("payment amount must be positive")

// Repository определяет методы хранилища, нужные биллингу.
type Repository interface {
	CreateUser(ctx context.Context, user models.User) (*models.User, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	SetActive(ctx context.Context, id int64, active bool) error
	Extend(ctx context.Context, id int64, add time.Duration) (*models.User, error)
	DeleteUser(ctx context.Context, id int64) error
	CreatePayment(ctx context.Context, payment models.Payment) (*models.Payment, error)
	ListPayments(ctx context.Context) ([]*models.Payment, error)
	Stats(ctx context.Context) (*models.Stats, error)
	RecordEvent(ctx context.Context, event string) error
	ListEvents(ctx context.Context, limit int) ([]*models.Event, error)
}

// Router определяет операции над учётными записями хотспота на роутере.
// Все вызовы сетевые, с ограниченным таймаутом; ошибка
// routeros.ErrUnavailable означает "состояние неизвестно".
type Router interface {
	ListActive(ctx context.Context) ([]models.LiveSession, error)
	Bind(ctx context.Context, username, password, profile, uptimeLimit string) error
	Enable(ctx context.Context, username string) error
	Disable(ctx context.Context, username string) error
	Remove(ctx context.Context, username string) error
}

// Catalog описывает каталог тарифов.
type Catalog interface {
	Resolve(planID string) (models.Plan, error)
	All() []models.Plan
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

const (
	statsCacheKey  = "billing:stats"
	activeCacheKey = "router:active"

	statsCacheTTL  = 30 * time.Second
	activeCacheTTL = 5 * time.Second
)

// CreateResult — итог создания абонента. RouterBound=false означает
// деградированный исход: запись в базе есть, но привязка на роутере
// не удалась и будет восстановлена вручную или синхронизацией.
type CreateResult struct {
	User        *models.User
	RouterBound bool
	Warning     string
}

// Service реализует операции биллинга поверх хранилища и роутера.
type Service struct {
	repo    Repository
	router  Router
	catalog Catalog
	cache   Cache
	log     *slog.Logger

	// Мьютекс на абонента: toggle/extend/delete по одному id
	// выполняются последовательно, разные абоненты — параллельно.
	userLocks sync.Map
}

// New создает новый Service.
func New(repo Repository, router Router, catalog Catalog, cache Cache, log *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		router:  router,
		catalog: catalog,
		cache:   cache,
		log:     log,
	}
}

func (s *Service) lockUser(id int64) func() {
	v, _ := s.userLocks.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (s *Service) recordEvent(ctx context.Context, format string, args ...any) {
	if err := s.repo.RecordEvent(ctx, fmt.Sprintf(format, args...)); err != nil {
		s.log.Warn("failed to record event", sl.Err(err))
	}
}

func (s *Service) invalidateStats() {
	if err := s.cache.Invalidate(statsCacheKey); err != nil {
		s.log.Warn("failed to invalidate stats cache", sl.Err(err))
	}
}

// Create создает абонента: сначала запись в базе (долговременная запись
// должна существовать до выдачи доступа), затем привязка на роутере.
// Отказ привязки не откатывает запись: потеря платёжной записи из-за
// временной недоступности роутера хуже временно несогласованного доступа.
func (s *Service) Create(ctx context.Context, req models.DummyUser) (*CreateResult, error) {
	plan, err := s.catalog.Resolve(req.PlanID)
	if err != nil {
		return nil, err
	}

	hash, err := password.GetHash(req.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.CreateUser(ctx, models.User{
		Username:     req.Username,
		PasswordHash: hash,
		PlanID:       plan.ID,
		Expiry:       time.Now().UTC().Add(plan.Duration),
		IsActive:     true,
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("created user", slog.Int64("id", user.ID), slog.String("username", user.Username))
	s.recordEvent(ctx, "created user %s on plan %s", user.Username, plan.ID)
	s.invalidateStats()

	if err := s.router.Bind(ctx, user.Username, req.Password, plan.ID, plan.UptimeLimit); err != nil {
		s.log.Error("failed to bind user on router", slog.String("username", user.Username), sl.Err(err))
		s.recordEvent(ctx, "router bind failed for %s", user.Username)
		return &CreateResult{
			User:    user,
			Warning: "user stored but not bound on router; retry or wait for sync",
		}, nil
	}

	return &CreateResult{User: user, RouterBound: true}, nil
}

// Toggle переключает доступ абонента.
//
// Отключение — операция безопасности: сначала запись выключается на
// роутере, и только после подтверждения флаг снимается в базе.
// Включение — наоборот: сначала флаг, затем роутер; при отказе роутера
// флаг откатывается, "активен без привязки" не фиксируется никогда.
func (s *Service) Toggle(ctx context.Context, id int64) (*models.User, error) {
	unlock := s.lockUser(id)
	defer unlock()

	user, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if user.IsActive {
		if err := s.router.Disable(ctx, user.Username); err != nil {
			return nil, err
		}
		if err := s.repo.SetActive(ctx, id, false); err != nil {
			return nil, err
		}
		user.IsActive = false
	} else {
		if err := s.repo.SetActive(ctx, id, true); err != nil {
			return nil, err
		}
		if err := s.router.Enable(ctx, user.Username); err != nil {
			// Откат не привязан к исходному контексту: отменённый запрос
			// не должен оставить флаг поднятым без включения на роутере.
			if revertErr := s.repo.SetActive(context.WithoutCancel(ctx), id, false); revertErr != nil {
				s.log.Error("failed to revert active flag", slog.Int64("id", id), sl.Err(revertErr))
			}
			return nil, err
		}
		user.IsActive = true
	}

	s.recordEvent(ctx, "toggled user %s to %s", user.Username, activeLabel(user.IsActive))
	s.invalidateStats()
	return user, nil
}

func activeLabel(active bool) string {
	if active {
		return "active"
	}
	return "inactive"
}

// Extend продлевает подписку на days суток. Роутер не затрагивается:
// продление меняет будущий expiry, а не текущую привязку.
func (s *Service) Extend(ctx context.Context, id int64, days int) (*models.User, error) {
	unlock := s.lockUser(id)
	defer unlock()

	user, err := s.repo.Extend(ctx, id, time.Duration(days)*24*time.Hour)
	if err != nil {
		return nil, err
	}

	s.recordEvent(ctx, "extended user %s by %d days", user.Username, days)
	s.invalidateStats()
	return user, nil
}

// Delete удаляет абонента: сначала учётная запись снимается с роутера,
// и только после подтверждения удаляется строка базы. При недоступном
// роутере запись сохраняется и ошибка отдаётся вызывающему — иначе на
// роутере осталась бы привязка без платёжной записи.
func (s *Service) Delete(ctx context.Context, id int64) error {
	unlock := s.lockUser(id)
	defer unlock()

	user, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return err
	}

	if err := s.router.Remove(ctx, user.Username); err != nil {
		s.recordEvent(ctx, "delete of %s aborted: router unavailable", user.Username)
		return err
	}

	if err := s.repo.DeleteUser(ctx, id); err != nil {
		return err
	}

	s.recordEvent(ctx, "deleted user %s", user.Username)
	s.invalidateStats()
	return nil
}

// RecordPayment регистрирует платёж. Доступ не затрагивается.
func (s *Service) RecordPayment(ctx context.Context, req models.DummyPayment) (*models.Payment, error) {
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	payment, err := s.repo.CreatePayment(ctx, models.Payment{
		UserID:    req.UserID,
		Amount:    req.Amount,
		Reference: uuid.NewString(),
		Verified:  true,
	})
	if err != nil {
		return nil, err
	}

	s.recordEvent(ctx, "payment of %.2f recorded for user id %d", payment.Amount, payment.UserID)
	s.invalidateStats()
	return payment, nil
}

// ListUsers возвращает всех абонентов.
func (s *Service) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.repo.ListUsers(ctx)
}

// ListPayments возвращает все платежи.
// ExpiredUsers возвращает абонентов с истёкшим оплаченным периодом,
// включая уже отключённых. Статус считается по времени на момент вызова,
// а не по флагу is_active.
func (s *Service) ExpiredUsers(ctx context.Context) ([]*models.User, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	result := make([]*models.User, 0, len(users))
	for _, u := range users {
		if u.Expired(now) {
			result = append(result, u)
		}
	}
	return result, nil
}

func (s *Service) ListPayments(ctx context.Context) ([]*models.Payment, error) {
	return s.repo.ListPayments(ctx)
}

// Plans возвращает тарифы каталога.
func (s *Service) Plans() []models.Plan {
	return s.catalog.All()
}

// Stats возвращает агрегированную статистику, используя кеш.
func (s *Service) Stats(ctx context.Context) (*models.Stats, error) {
	var cached models.Stats
	found, err := s.cache.Get(statsCacheKey, &cached)
	if err != nil {
		s.log.Warn("stats cache lookup failed", sl.Err(err))
	}
	if found {
		return &cached, nil
	}

	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(statsCacheKey, stats, statsCacheTTL); err != nil {
		s.log.Warn("failed to cache stats", sl.Err(err))
	}
	return stats, nil
}

// ActiveConnections возвращает снимок активных сессий роутера.
// Снимок недолго кешируется, чтобы частые запросы панели не
// превращались в шторм запросов к роутеру.
func (s *Service) ActiveConnections(ctx context.Context) ([]models.LiveSession, error) {
	var cached []models.LiveSession
	found, err := s.cache.Get(activeCacheKey, &cached)
	if err != nil {
		s.log.Warn("active connections cache lookup failed", sl.Err(err))
	}
	if found {
		return cached, nil
	}

	sessions, err := s.router.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(activeCacheKey, sessions, activeCacheTTL); err != nil {
		s.log.Warn("failed to cache active connections", sl.Err(err))
	}
	return sessions, nil
}

// Events возвращает последние записи журнала операций.
func (s *Service) Events(ctx context.Context, limit int) ([]*models.Event, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.repo.ListEvents(ctx, limit)
}

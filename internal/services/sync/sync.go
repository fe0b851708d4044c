// Package sync реализует сверку базы абонентов с таблицей учётных
// записей хотспота на роутере.
//
// База — источник истины для денег, роутер — источник истины для
// доступа. Проход сверки удаляет из базы активных абонентов, чьей
// учётной записи на роутере больше нет (администратор убрал её с
// роутера напрямую), и перечисляет учётные записи роутера, которых
// нет в базе. Пассивная сторона: сам роутер проход не изменяет.
package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/magabrotheeeer/hotspot-billing/internal/lib/sl"
	"github.com/magabrotheeeer/hotspot-billing/internal/models"
	"github.com/magabrotheeeer/hotspot-billing/internal/routeros"
)

// ErrDeferred — роутер недоступен, проход отложен; база не изменена.
var ErrDeferred = errors.New("reconciliation deferred: router unavailable")

// ErrPassInProgress — проход сверки уже выполняется.
var ErrPassInProgress = errors.New("reconciliation pass already in progress")

// Repository определяет методы хранилища, нужные сверке.
type Repository interface {
	ListUsers(ctx context.Context) ([]*models.User, error)
	DeleteUserByUsername(ctx context.Context, username string) (int64, error)
	RecordEvent(ctx context.Context, event string) error
}

// Router отдаёт список имён учётных записей хотспота на роутере.
type Router interface {
	ListUsernames(ctx context.Context) ([]string, error)
}

// Service выполняет проходы сверки.
type Service struct {
	repo   Repository
	router Router
	log    *slog.Logger

	// Одновременно выполняется не больше одного прохода.
	mu sync.Mutex
}

// New создает новый Service.
func New(repo Repository, router Router, log *slog.Logger) *Service {
	return &Service{repo: repo, router: router, log: log}
}

// Run выполняет один проход сверки и возвращает отчёт.
//
// Снимок роутера берётся до чтения базы: если его не получить, проход
// завершается ErrDeferred без каких-либо изменений. Удаляются только
// активные абоненты, отсутствующие на роутере; отключённые абоненты
// на роутере и не должны присутствовать. Ошибка удаления одного
// абонента не прерывает проход.
func (s *Service) Run(ctx context.Context) (*models.SyncReport, error) {
	const op = "services.sync.Run"

	if !s.mu.TryLock() {
		return nil, ErrPassInProgress
	}
	defer s.mu.Unlock()

	routerNames, err := s.router.ListUsernames(ctx)
	if err != nil {
		if errors.Is(err, routeros.ErrUnavailable) {
			s.log.Warn("reconciliation deferred", sl.Err(err))
			return nil, fmt.Errorf("%s: %w", op, ErrDeferred)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	onRouter := make(map[string]struct{}, len(routerNames))
	for _, name := range routerNames {
		onRouter[name] = struct{}{}
	}
	inDatabase := make(map[string]struct{}, len(users))
	for _, u := range users {
		inDatabase[u.Username] = struct{}{}
	}

	report := &models.SyncReport{
		Removed:         []string{},
		UnmatchedRouter: []string{},
		DatabaseTotal:   len(users),
		RouterTotal:     len(routerNames),
	}

	for _, u := range users {
		if !u.IsActive {
			continue
		}
		if _, ok := onRouter[u.Username]; ok {
			continue
		}
		affected, err := s.repo.DeleteUserByUsername(ctx, u.Username)
		if err != nil {
			s.log.Error("failed to remove orphaned user",
				slog.String("username", u.Username), sl.Err(err))
			continue
		}
		if affected > 0 {
			report.Removed = append(report.Removed, u.Username)
		}
	}
	report.DatabaseTotal -= len(report.Removed)

	for _, name := range routerNames {
		if _, ok := inDatabase[name]; !ok {
			report.UnmatchedRouter = append(report.UnmatchedRouter, name)
		}
	}

	if len(report.Removed) > 0 || len(report.UnmatchedRouter) > 0 {
		if err := s.repo.RecordEvent(ctx, fmt.Sprintf(
			"sync pass: removed %d orphaned users, %d router entries unmatched",
			len(report.Removed), len(report.UnmatchedRouter))); err != nil {
			s.log.Warn("failed to record sync event", sl.Err(err))
		}
	}

	s.log.Info("reconciliation pass finished",
		slog.Int("removed", len(report.Removed)),
		slog.Int("unmatched_router", len(report.UnmatchedRouter)),
		slog.Int("database_total", report.DatabaseTotal),
		slog.Int("router_total", report.RouterTotal))
	return report, nil
}

// RunPeriodic запускает проходы сверки с заданным интервалом до отмены
// контекста. Отложенный или совпавший с ручным запуском проход — не
// сбой: следующий тик попробует снова.
func (s *Service) RunPeriodic(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Run(ctx); err != nil &&
				!errors.Is(err, ErrDeferred) && !errors.Is(err, ErrPassInProgress) {
				s.log.Error("periodic reconciliation failed", sl.Err(err))
			}
		}
	}
}

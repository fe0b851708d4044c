// Package expiry отключает абонентов с истёкшим оплаченным периодом.
package expiry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/hotspot-billing/internal/lib/sl"
	"github.com/magabrotheeeer/hotspot-billing/internal/models"
)

// Repository определяет методы хранилища, нужные свиперу.
type Repository interface {
	FindExpiredActive(ctx context.Context) ([]*models.User, error)
	SetActive(ctx context.Context, id int64, active bool) error
	RecordEvent(ctx context.Context, event string) error
}

// Router выключает учётную запись хотспота на роутере.
type Router interface {
	Disable(ctx context.Context, username string) error
}

// Notifier публикует уведомления об отключённых абонентах.
type Notifier interface {
	NotifyExpired(notice models.ExpiryNotice) error
}

// Service периодически находит активных абонентов с истёкшим периодом
// и отключает их.
type Service struct {
	repo     Repository
	router   Router
	notifier Notifier // nil — уведомления отключены
	log      *slog.Logger
}

// New создает новый Service.
func New(repo Repository, router Router, notifier Notifier, log *slog.Logger) *Service {
	return &Service{repo: repo, router: router, notifier: notifier, log: log}
}

// Sweep выполняет один проход: для каждого истёкшего активного абонента
// запись сперва выключается на роутере, затем снимается флаг в базе.
// Тот же порядок, что и у ручного отключения: флаг не снимается, пока
// доступ фактически не перекрыт. Отказ по одному абоненту не прерывает
// проход; он будет повторён следующим тиком.
func (s *Service) Sweep(ctx context.Context) (int, error) {
	const op = "services.expiry.Sweep"

	expired, err := s.repo.FindExpiredActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	var disabled int
	for _, u := range expired {
		if err := s.router.Disable(ctx, u.Username); err != nil {
			s.log.Error("failed to disable expired user on router",
				slog.String("username", u.Username), sl.Err(err))
			continue
		}
		if err := s.repo.SetActive(ctx, u.ID, false); err != nil {
			s.log.Error("failed to clear active flag",
				slog.String("username", u.Username), sl.Err(err))
			continue
		}
		disabled++

		if err := s.repo.RecordEvent(ctx,
			fmt.Sprintf("disabled expired user %s", u.Username)); err != nil {
			s.log.Warn("failed to record expiry event", sl.Err(err))
		}
		if s.notifier != nil {
			notice := models.ExpiryNotice{
				Username: u.Username,
				PlanID:   u.PlanID,
				Expiry:   u.Expiry,
			}
			if err := s.notifier.NotifyExpired(notice); err != nil {
				s.log.Warn("failed to publish expiry notification",
					slog.String("username", u.Username), sl.Err(err))
			}
		}
	}

	if disabled > 0 {
		s.log.Info("expiry sweep finished", slog.Int("disabled", disabled))
	}
	return disabled, nil
}

// RunPeriodic запускает проходы свипера с заданным интервалом до отмены
// контекста.
func (s *Service) RunPeriodic(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				s.log.Error("expiry sweep failed", sl.Err(err))
			}
		}
	}
}

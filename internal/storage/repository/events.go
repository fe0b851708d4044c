package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/hotspot-billing/internal/models"
)

// RecordEvent добавляет запись в журнал операций биллинга.
func (s *Storage) RecordEvent(ctx context.Context, event string) error {
	const op = "storage.RecordEvent"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	if _, err := s.DB.ExecContext(ctx,
		`INSERT INTO events (event) VALUES ($1)`, event); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListEvents возвращает последние записи журнала, новые первыми.
func (s *Storage) ListEvents(ctx context.Context, limit int) ([]*models.Event, error) {
	const op = "storage.ListEvents"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, event, timestamp
			  FROM events
			  ORDER BY id DESC
			  LIMIT $1`
	rows, err := s.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	var result []*models.Event
	for rows.Next() {
		var e models.Event
		if err = rows.Scan(&e.ID, &e.Event, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/hotspot-billing/internal/models"
)

// CreatePayment сохраняет платёж и возвращает запись с id и датой.
// Возвращает ErrUserNotFound, если абонента с указанным id нет.
// Платежи не связаны внешним ключом с users: записи о деньгах
// переживают удаление абонента.
func (s *Storage) CreatePayment(ctx context.Context, payment models.Payment) (*models.Payment, error) {
	const op = "storage.CreatePayment"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var exists bool
	if err := s.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, payment.UserID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !exists {
		return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}

	query := `INSERT INTO payments (user_id, amount, reference, verified)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id, date;`
	if err := s.DB.QueryRowContext(ctx, query,
		payment.UserID, payment.Amount, payment.Reference,
		payment.Verified).Scan(&payment.ID, &payment.Date); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &payment, nil
}

// ListPayments возвращает все платежи, новые первыми.
func (s *Storage) ListPayments(ctx context.Context) ([]*models.Payment, error) {
	const op = "storage.ListPayments"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_id, amount, reference, date, verified
			  FROM payments
			  ORDER BY date DESC`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	var result []*models.Payment
	for rows.Next() {
		var p models.Payment
		if err = rows.Scan(&p.ID, &p.UserID, &p.Amount, &p.Reference,
			&p.Date, &p.Verified); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// Stats считает агрегированную статистику одним запросом.
// Истёкшие считаются по expiry < NOW() независимо от is_active.
func (s *Storage) Stats(ctx context.Context) (*models.Stats, error) {
	const op = "storage.Stats"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT
				  (SELECT COUNT(*) FROM users),
				  (SELECT COUNT(*) FROM users WHERE is_active),
				  (SELECT COUNT(*) FROM users WHERE expiry < NOW()),
				  (SELECT COUNT(*) FROM payments)`
	st := &models.Stats{}
	if err := s.DB.QueryRowContext(ctx, query).Scan(&st.TotalUsers,
		&st.ActiveUsers, &st.ExpiredUsers, &st.TotalPayments); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return st, nil
}

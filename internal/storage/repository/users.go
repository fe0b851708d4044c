package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/magabrotheeeer/hotspot-billing/internal/models"
)

// Код ошибки PostgreSQL для нарушения уникальности.
const pgUniqueViolation = "23505"

// CreateUser сохраняет нового абонента и возвращает запись с id и created_at.
// Возвращает ErrUsernameTaken, если логин уже занят.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (*models.User, error) {
	const op = "storage.CreateUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO users (username, password_hash, plan_id, expiry, is_active)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING id, created_at;`
	if err := s.DB.QueryRowContext(ctx, query,
		user.Username, user.PasswordHash, user.PlanID, user.Expiry,
		user.IsActive).Scan(&user.ID, &user.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, fmt.Errorf("%s: %w", op, ErrUsernameTaken)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &user, nil
}

// GetUser возвращает абонента по его id.
func (s *Storage) GetUser(ctx context.Context, id int64) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, username, password_hash, plan_id, expiry, is_active, created_at
			  FROM users
			  WHERE id = $1`
	u := &models.User{}
	row := s.DB.QueryRowContext(ctx, query, id)
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.PlanID,
		&u.Expiry, &u.IsActive, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// ListUsers возвращает всех абонентов в порядке создания.
func (s *Storage) ListUsers(ctx context.Context) ([]*models.User, error) {
	const op = "storage.ListUsers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, username, password_hash, plan_id, expiry, is_active, created_at
			  FROM users
			  ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	var result []*models.User
	for rows.Next() {
		var u models.User
		if err = rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.PlanID,
			&u.Expiry, &u.IsActive, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// SetActive выставляет флаг is_active. Повторная установка того же значения
// не является ошибкой. Возвращает ErrUserNotFound, если абонента нет.
func (s *Storage) SetActive(ctx context.Context, id int64, active bool) error {
	const op = "storage.SetActive"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET is_active = $1
			  WHERE id = $2`
	res, err := s.DB.ExecContext(ctx, query, active, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	return nil
}

// Extend продлевает оплаченный период: до истечения срок добавляется
// к текущему expiry (остаток не теряется), после истечения — к текущему
// времени. Возвращает обновлённую запись.
func (s *Storage) Extend(ctx context.Context, id int64, add time.Duration) (*models.User, error) {
	const op = "storage.Extend"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET expiry = GREATEST(expiry, NOW()) + make_interval(secs => $1)
			  WHERE id = $2
			  RETURNING id, username, password_hash, plan_id, expiry, is_active, created_at`
	u := &models.User{}
	row := s.DB.QueryRowContext(ctx, query, add.Seconds(), id)
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.PlanID,
		&u.Expiry, &u.IsActive, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// DeleteUser удаляет абонента по id. Возвращает ErrUserNotFound, если записи нет.
func (s *Storage) DeleteUser(ctx context.Context, id int64) error {
	const op = "storage.DeleteUser"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	return nil
}

// DeleteUserByUsername удаляет абонента по логину и возвращает число
// удалённых строк. Удаление отсутствующей записи — не ошибка: метод
// используется синхронизацией и должен быть идемпотентным.
func (s *Storage) DeleteUserByUsername(ctx context.Context, username string) (int64, error) {
	const op = "storage.DeleteUserByUsername"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM users WHERE username = $1`, username)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return affected, nil
}

// FindExpiredActive возвращает абонентов с истёкшим периодом,
// у которых доступ ещё включён. Используется фоновой задачей отключения.
func (s *Storage) FindExpiredActive(ctx context.Context) ([]*models.User, error) {
	const op = "storage.FindExpiredActive"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, username, password_hash, plan_id, expiry, is_active, created_at
			  FROM users
			  WHERE expiry < NOW() AND is_active`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	var result []*models.User
	for rows.Next() {
		var u models.User
		if err = rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.PlanID,
			&u.Expiry, &u.IsActive, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

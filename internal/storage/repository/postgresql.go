// Package repository реализует хранилище данных биллинга на основе PostgreSQL:
// абоненты хотспота, платежи и журнал операций. Предоставляет методы
// создания, чтения, обновления, удаления и агрегирования записей.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Ошибки хранилища, по которым вызывающий код различает исходы операций.
var (
	// ErrUserNotFound — абонент с указанным id или username отсутствует.
	ErrUserNotFound = errors.New("user not found")
	// ErrUsernameTaken — логин уже занят другим абонентом.
	ErrUsernameTaken = errors.New("username already taken")
)

// Storage инкапсулирует соединение с базой данных PostgreSQL
// и реализует методы работы с абонентами, платежами и журналом.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// CheckDatabaseReady проверяет готовность базы данных.
func (s *Storage) CheckDatabaseReady(ctx context.Context) error {
	var exists bool
	err := s.DB.QueryRowContext(ctx, `SELECT EXISTS (
        SELECT FROM information_schema.tables
        WHERE table_name = 'users'
    )`).Scan(&exists)
	if err != nil || !exists {
		return fmt.Errorf("required table users missing or query error: %w", err)
	}
	return nil
}

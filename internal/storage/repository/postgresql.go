// Package repository реализует хранилище данных на основе PostgreSQL
// для управления пользователями, событиями и билетами. Предоставляет
// методы создания, чтения и обновления записей, включая атомарные
// операции резервирования мест и отметки прохода на событие.
package repository

import (
	"context"
	"errors"
	"fmt"

	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"

	"database/sql"
)

// ErrNotFound возвращается, когда запрошенная запись отсутствует в базе.
var ErrNotFound = errors.New("not found")

// ErrDuplicate возвращается при нарушении ограничения уникальности,
// например при повторной записи билета на пару (событие, посетитель).
var ErrDuplicate = errors.New("duplicate record")

// Storage инкапсулирует соединение с базой данных PostgreSQL
// и реализует методы работы с пользователями, событиями и билетами.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL и проверяет его доступность.
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
        WHERE table_name = 'tickets'
    )`).Scan(&exists)
	if err != nil || !exists {
		return fmt.Errorf("required table tickets missing or query error: %w", err)
	}
	return nil
}

package base

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// Querier общий интерфейс *pgxpool.Pool и pgx.Tx.
// Репозитории работают через него, поэтому одинаково используются
// и вне транзакции, и внутри неё.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository базовый репозиторий с общими методами
type Repository struct {
	db Querier
}

// NewRepository создаёт новый базовый репозиторий
func NewRepository(db Querier) *Repository {
	return &Repository{db: db}
}

// DB возвращает соединение (пул или транзакцию)
func (r *Repository) DB() Querier {
	return r.db
}

// QueryRow выполняет запрос и возвращает одну строку
func (r *Repository) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	return r.db.QueryRow(ctx, query, args...)
}

// Query выполняет запрос и возвращает множество строк
func (r *Repository) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	return r.db.Query(ctx, query, args...)
}

// ExecAffected выполняет команду и возвращает количество затронутых строк
func (r *Repository) ExecAffected(ctx context.Context, query string, args ...any) (int64, error) {
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// IsNotFound проверяет является ли ошибка "строка не найдена"
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

const microsPerMinute = int64(time.Minute / time.Microsecond)

// TimeParam переводит минуты от полуночи в значение для колонки TIME
func TimeParam(minutes int) pgtype.Time {
	return pgtype.Time{Microseconds: int64(minutes) * microsPerMinute, Valid: true}
}

// MinutesOf переводит значение колонки TIME в минуты от полуночи
func MinutesOf(t pgtype.Time) int {
	return int(t.Microseconds / microsPerMinute)
}

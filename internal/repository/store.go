package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/trainer_scheduler/internal/repository/base"
	"github.com/Freeeeeet/trainer_scheduler/internal/storage"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store хранилище поверх PostgreSQL
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// NewRepositories собирает репозитории поверх пула или транзакции
func NewRepositories(db base.Querier) storage.Repositories {
	return storage.Repositories{
		Users:         NewUserRepository(db),
		Courses:       NewCourseRepository(db),
		Assignments:   NewAssignmentRepository(db),
		PersonalSlots: NewPersonalSlotRepository(db),
		Holds:         NewHoldRepository(db),
	}
}

// Repos репозитории вне транзакции
func (s *Store) Repos() storage.Repositories {
	return NewRepositories(s.pool)
}

// WithinTx выполняет fn в транзакции READ COMMITTED.
// Блокировки строк (FOR UPDATE) и advisory-блокировки живут до коммита.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repos storage.Repositories) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, NewRepositories(tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

var _ storage.Store = (*Store)(nil)

// Package storage описывает репозитории, через которые сервисы читают и
// меняют данные. Реализации: repository (PostgreSQL) и repository/memory.
//
// Get-методы возвращают nil, nil если запись не найдена.
// Диапазонные List-методы возвращают записи, чей диапазон дат
// пересекается с [from, to] включительно.
package storage

import (
	"context"
	"time"

	"github.com/Freeeeeet/trainer_scheduler/internal/model"
)

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
	ListByRoles(ctx context.Context, roles ...model.Role) ([]*model.User, error)
	ListTrainers(ctx context.Context) ([]*model.Trainer, error)
	GetTrainer(ctx context.Context, userID int64) (*model.Trainer, error)
}

type CourseRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Course, error)
	AddTrainer(ctx context.Context, courseID, trainerID int64) error
	SetTrainers(ctx context.Context, courseID int64, trainerIDs []int64) error
	ListTrainerIDs(ctx context.Context, courseID int64) ([]int64, error)
}

type AssignmentRepository interface {
	Create(ctx context.Context, slot *model.AssignmentSlot) error
	GetByID(ctx context.Context, id int64) (*model.AssignmentSlot, error)
	UpdateTimes(ctx context.Context, slot *model.AssignmentSlot) error
	DeleteByCourse(ctx context.Context, courseID int64) (int64, error)
	ListByTrainer(ctx context.Context, trainerID int64, from, to time.Time) ([]*model.AssignmentSlot, error)
	ListByCourse(ctx context.Context, courseID int64, from, to time.Time) ([]*model.AssignmentSlot, error)
	// LockTrainer сериализует запись назначений одного тренера до конца транзакции
	LockTrainer(ctx context.Context, trainerID int64) error
}

type PersonalSlotRepository interface {
	Create(ctx context.Context, slot *model.PersonalSlot) error
	GetByID(ctx context.Context, id int64) (*model.PersonalSlot, error)
	ListByTrainer(ctx context.Context, trainerID int64, from, to time.Time) ([]*model.PersonalSlot, error)
	ListByCourse(ctx context.Context, courseID int64, from, to time.Time) ([]*model.PersonalSlot, error)
	ListEndingBetween(ctx context.Context, from, to time.Time) ([]*model.PersonalSlot, error)
	UpdateSchedule(ctx context.Context, id int64, endDate time.Time, trainerID *int64) error
}

type HoldRepository interface {
	Create(ctx context.Context, hold *model.CourseHold) error
	GetByID(ctx context.Context, id int64) (*model.CourseHold, error)
	// GetForUpdate читает заявку с блокировкой строки до конца транзакции
	GetForUpdate(ctx context.Context, id int64) (*model.CourseHold, error)
	ListPending(ctx context.Context) ([]*model.CourseHold, error)
	UpdateStatus(ctx context.Context, hold *model.CourseHold) error
	Delete(ctx context.Context, id int64) error

	CreateHistory(ctx context.Context, h *model.CourseHoldHistory) error
	GetHistoryByHoldID(ctx context.Context, holdID int64) (*model.CourseHoldHistory, error)
	ListHistory(ctx context.Context, studentID *int64) ([]*model.CourseHoldHistory, error)
	ListApprovedOn(ctx context.Context, date time.Time) ([]*model.CourseHoldHistory, error)
	DeleteHistoryBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Repositories набор репозиториев поверх одного соединения или транзакции
type Repositories struct {
	Users         UserRepository
	Courses       CourseRepository
	Assignments   AssignmentRepository
	PersonalSlots PersonalSlotRepository
	Holds         HoldRepository
}

// Store точка входа в хранилище
type Store interface {
	Repos() Repositories
	// WithinTx выполняет fn в одной транзакции. Ошибка fn откатывает все изменения.
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}

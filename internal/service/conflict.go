package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/trainer_scheduler/internal/model"
	"github.com/Freeeeeet/trainer_scheduler/internal/storage"
)

// ConflictChecker проверяет, занят ли тренер в заданный интервал
type ConflictChecker struct {
	store storage.Store
}

func NewConflictChecker(store storage.Store) *ConflictChecker {
	return &ConflictChecker{store: store}
}

// HasConflict true если у тренера в date есть назначение или индивидуальное
// занятие, пересекающее [start, end)
func (c *ConflictChecker) HasConflict(ctx context.Context, trainerID int64, date time.Time, start, end model.TimeOfDay) (bool, error) {
	rng := model.TimeRange{Start: start, End: end}
	if rng.Empty() {
		return false, ErrInvalidInterval
	}

	date = model.DateOf(date)
	commitments, err := loadCommitments(ctx, c.store.Repos(), trainerID, model.DateRange{Start: date, End: date})
	if err != nil {
		return false, err
	}

	return commitments.conflictOn(date, rng), nil
}

// HasConflictInRange проверка перед записью: пересечение с любым занятием
// тренера, чей диапазон дат пересекает [startDate, endDate].
// excludeAssignmentID исключает изменяемое назначение (0 - ничего не исключать).
func (c *ConflictChecker) HasConflictInRange(ctx context.Context, trainerID int64, startDate, endDate time.Time, rng model.TimeRange, excludeAssignmentID int64) (bool, error) {
	if rng.Empty() {
		return false, ErrInvalidInterval
	}
	dates := model.DateRange{Start: model.DateOf(startDate), End: model.DateOf(endDate)}
	if !dates.Valid() {
		return false, fmt.Errorf("%w: end date is before start date", ErrInvalidInput)
	}

	commitments, err := loadCommitments(ctx, c.store.Repos(), trainerID, dates)
	if err != nil {
		return false, err
	}

	return commitments.conflictInRange(dates, rng, excludeAssignmentID, 0), nil
}

// commitments занятия одного тренера, загруженные на диапазон дат
type commitments struct {
	assignments []*model.AssignmentSlot
	personal    []*model.PersonalSlot
}

func loadCommitments(ctx context.Context, repos storage.Repositories, trainerID int64, dates model.DateRange) (commitments, error) {
	assignments, err := repos.Assignments.ListByTrainer(ctx, trainerID, dates.Start, dates.End)
	if err != nil {
		return commitments{}, fmt.Errorf("get trainer assignments: %w", err)
	}

	personal, err := repos.PersonalSlots.ListByTrainer(ctx, trainerID, dates.Start, dates.End)
	if err != nil {
		return commitments{}, fmt.Errorf("get trainer personal slots: %w", err)
	}

	return commitments{assignments: assignments, personal: personal}, nil
}

// conflictOn проверка одного дня. Назначения и индивидуальные занятия
// проверяются одним и тем же полуоткрытым условием.
func (c commitments) conflictOn(date time.Time, rng model.TimeRange) bool {
	for _, a := range c.assignments {
		if a.ActiveOn(date) && a.Times().Overlaps(rng) {
			return true
		}
	}
	for _, p := range c.personal {
		if p.ActiveOn(date) && p.Window().Overlaps(rng) {
			return true
		}
	}
	return false
}

// conflictInRange проверка для записи: пересечение и по датам, и по времени.
// excludeAssignment и excludePersonal исключают саму изменяемую запись.
func (c commitments) conflictInRange(dates model.DateRange, rng model.TimeRange, excludeAssignment, excludePersonal int64) bool {
	for _, a := range c.assignments {
		if a.ID == excludeAssignment {
			continue
		}
		if a.Dates().Intersects(dates) && a.Times().Overlaps(rng) {
			return true
		}
	}
	for _, p := range c.personal {
		if p.ID == excludePersonal {
			continue
		}
		if p.Dates().Intersects(dates) && p.Window().Overlaps(rng) {
			return true
		}
	}
	return false
}

// requireNoConflict загружает занятия тренера на диапазон и возвращает
// ErrOverlapConflict при пересечении
func requireNoConflict(ctx context.Context, repos storage.Repositories, trainerID int64, dates model.DateRange, rng model.TimeRange, excludeAssignment, excludePersonal int64) error {
	existing, err := loadCommitments(ctx, repos, trainerID, dates)
	if err != nil {
		return err
	}

	if existing.conflictInRange(dates, rng, excludeAssignment, excludePersonal) {
		return fmt.Errorf("%w: trainer %d is busy at %s between %s and %s",
			ErrOverlapConflict, trainerID, rng,
			dates.Start.Format(model.DateLayout), dates.End.Format(model.DateLayout))
	}

	return nil
}

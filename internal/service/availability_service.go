package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Freeeeeet/trainer_scheduler/internal/model"
	"github.com/Freeeeeet/trainer_scheduler/internal/storage"
	"go.uber.org/zap"
)

// TrainerRoster источник списка тренеров для поиска
type TrainerRoster interface {
	ListTrainers(ctx context.Context) ([]*model.Trainer, error)
	GetTrainer(ctx context.Context, userID int64) (*model.Trainer, error)
}

// MaxSlotMinutes верхняя граница длительности запрашиваемого занятия
const MaxSlotMinutes = model.MinutesPerDay

// AvailabilityService ищет свободных тренеров.
// Каждый вызов читает текущее состояние хранилища, кэша нет.
type AvailabilityService struct {
	store  storage.Store
	roster TrainerRoster
	logger *zap.Logger
}

func NewAvailabilityService(store storage.Store, roster TrainerRoster, logger *zap.Logger) *AvailabilityService {
	return &AvailabilityService{
		store:  store,
		roster: roster,
		logger: logger,
	}
}

// SlotRange строит интервал [start, start+duration) и проверяет, что он
// укладывается в сутки
func SlotRange(start model.TimeOfDay, durationMinutes int) (model.TimeRange, error) {
	if start < model.Midnight || start >= model.DayLength {
		return model.TimeRange{}, fmt.Errorf("%w: start time %s out of range", ErrInvalidInput, start)
	}
	if durationMinutes <= 0 || durationMinutes > MaxSlotMinutes {
		return model.TimeRange{}, fmt.Errorf("%w: duration must be between 1 and %d minutes", ErrInvalidInput, MaxSlotMinutes)
	}

	rng := model.TimeRange{Start: start, End: start.Add(time.Duration(durationMinutes) * time.Minute)}
	if rng.End > model.DayLength {
		return model.TimeRange{}, fmt.Errorf("%w: slot %s crosses midnight", ErrInvalidInput, rng)
	}

	return rng, nil
}

// QuerySingleDay тренеры, свободные в date на [start, start+duration).
// Результат отсортирован по свободным часам по убыванию.
func (s *AvailabilityService) QuerySingleDay(ctx context.Context, start model.TimeOfDay, durationMinutes int, date time.Time) ([]model.TrainerAvailability, error) {
	rng, err := SlotRange(start, durationMinutes)
	if err != nil {
		return nil, err
	}
	date = model.DateOf(date)

	trainers, err := s.roster.ListTrainers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list trainers: %w", err)
	}

	repos := s.store.Repos()
	day := model.DateRange{Start: date, End: date}

	result := make([]model.TrainerAvailability, 0, len(trainers))
	for _, trainer := range trainers {
		existing, err := loadCommitments(ctx, repos, trainer.UserID, day)
		if err != nil {
			return nil, err
		}

		if existing.conflictOn(date, rng) {
			continue
		}

		occupied := existing.occupiedHours(date)
		approved := trainer.ApprovedHoursOrZero()

		result = append(result, model.TrainerAvailability{
			Trainer:        trainer,
			OccupiedHours:  occupied,
			ApprovedHours:  approved,
			AvailableHours: max(approved-occupied, 0),
		})
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].AvailableHours != result[j].AvailableHours {
			return result[i].AvailableHours > result[j].AvailableHours
		}
		return result[i].Trainer.UserID < result[j].Trainer.UserID
	})

	s.logger.Info("Single-day availability resolved",
		zap.String("date", date.Format(model.DateLayout)),
		zap.String("slot", rng.String()),
		zap.Int("trainers_total", len(trainers)),
		zap.Int("trainers_available", len(result)),
	)

	return result, nil
}

// QueryWeek проверяет тренеров на [start, start+duration) в startDate и
// следующие 7 дней
func (s *AvailabilityService) QueryWeek(ctx context.Context, start model.TimeOfDay, durationMinutes int, startDate time.Time) ([]model.TrainerWeekAvailability, error) {
	rng, err := SlotRange(start, durationMinutes)
	if err != nil {
		return nil, err
	}
	startDate = model.DateOf(startDate)

	trainers, err := s.roster.ListTrainers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list trainers: %w", err)
	}

	repos := s.store.Repos()
	window := model.DateRange{Start: startDate, End: model.AddDays(startDate, model.WeekAheadDays-1)}

	result := make([]model.TrainerWeekAvailability, 0, len(trainers))
	for _, trainer := range trainers {
		// Одна выборка на всё окно, дни проверяются в памяти
		existing, err := loadCommitments(ctx, repos, trainer.UserID, window)
		if err != nil {
			return nil, err
		}

		days := make([]model.DayAvailability, model.WeekAheadDays)
		withinWeek := false
		for offset := range days {
			date := model.AddDays(startDate, offset)
			free := !existing.conflictOn(date, rng)
			days[offset] = model.DayAvailability{Date: date, IsAvailable: free}
			if offset > 0 && free {
				withinWeek = true
			}
		}

		result = append(result, model.TrainerWeekAvailability{
			Trainer:             trainer,
			AvailableToday:      days[0].IsAvailable,
			AvailableWithinWeek: withinWeek,
			Availability:        days,
		})
	}

	s.logger.Info("Week-ahead availability resolved",
		zap.String("start_date", startDate.Format(model.DateLayout)),
		zap.String("slot", rng.String()),
		zap.Int("trainers", len(result)),
	)

	return result, nil
}

// DayTimeline шкала дня тренера 00:00-23:59: свободные промежутки между
// назначениями и сами назначения
func (s *AvailabilityService) DayTimeline(ctx context.Context, trainerID int64, date time.Time) ([]model.TimelineEntry, error) {
	if err := requireTrainer(ctx, s.roster, trainerID); err != nil {
		return nil, err
	}
	date = model.DateOf(date)

	assignments, err := s.store.Repos().Assignments.ListByTrainer(ctx, trainerID, date, date)
	if err != nil {
		return nil, fmt.Errorf("get trainer assignments: %w", err)
	}

	active := make([]*model.AssignmentSlot, 0, len(assignments))
	for _, a := range assignments {
		if a.ActiveOn(date) {
			active = append(active, a)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].StartTime < active[j].StartTime
	})

	return buildTimeline(active), nil
}

func buildTimeline(assignments []*model.AssignmentSlot) []model.TimelineEntry {
	var timeline []model.TimelineEntry
	cursor := model.Midnight

	for _, a := range assignments {
		if cursor < a.StartTime {
			timeline = append(timeline, model.TimelineEntry{
				Start:     cursor,
				End:       a.StartTime,
				Available: true,
			})
		}
		timeline = append(timeline, model.TimelineEntry{
			Start:     a.StartTime,
			End:       a.EndTime,
			Available: false,
			Course:    a.CourseName,
		})
		if a.EndTime > cursor {
			cursor = a.EndTime
		}
	}

	if cursor < model.EndOfDay {
		timeline = append(timeline, model.TimelineEntry{
			Start:     cursor,
			End:       model.EndOfDay,
			Available: true,
		})
	}

	return timeline
}

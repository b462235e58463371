package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Freeeeeet/trainer_scheduler/internal/model"
	"github.com/Freeeeeet/trainer_scheduler/internal/storage"
)

// ScheduleService расписание тренеров и курсов за период
type ScheduleService struct {
	store storage.Store
}

func NewScheduleService(store storage.Store) *ScheduleService {
	return &ScheduleService{store: store}
}

// TrainerSchedule назначения тренера, пересекающие [from, to],
// по дате начала и времени
func (s *ScheduleService) TrainerSchedule(ctx context.Context, trainerID int64, from, to time.Time) ([]model.ScheduleEntry, error) {
	dates, err := dateRange(from, to)
	if err != nil {
		return nil, err
	}

	repos := s.store.Repos()
	if err := requireTrainer(ctx, repos.Users, trainerID); err != nil {
		return nil, err
	}

	assignments, err := repos.Assignments.ListByTrainer(ctx, trainerID, dates.Start, dates.End)
	if err != nil {
		return nil, fmt.Errorf("get trainer assignments: %w", err)
	}
	sortByStart(assignments)

	schedule := make([]model.ScheduleEntry, 0, len(assignments))
	for _, a := range assignments {
		entry := scheduleEntry(a)
		entry.Course = a.CourseName
		schedule = append(schedule, entry)
	}

	return schedule, nil
}

// CourseSchedule назначения курса, пересекающие [from, to]
func (s *ScheduleService) CourseSchedule(ctx context.Context, courseID int64, from, to time.Time) ([]model.ScheduleEntry, error) {
	assignments, err := s.courseAssignments(ctx, courseID, from, to)
	if err != nil {
		return nil, err
	}

	schedule := make([]model.ScheduleEntry, 0, len(assignments))
	for _, a := range assignments {
		entry := scheduleEntry(a)
		entry.Trainer = a.TrainerName
		schedule = append(schedule, entry)
	}

	return schedule, nil
}

// CourseHours суммарная дневная длительность назначений курса, пересекающих [from, to]
func (s *ScheduleService) CourseHours(ctx context.Context, courseID int64, from, to time.Time) (float64, error) {
	assignments, err := s.courseAssignments(ctx, courseID, from, to)
	if err != nil {
		return 0, err
	}

	var total time.Duration
	for _, a := range assignments {
		total += a.Duration
	}

	return total.Hours(), nil
}

// HasCourseConflict true если у курса в date уже есть назначение,
// пересекающее [start, end)
func (s *ScheduleService) HasCourseConflict(ctx context.Context, courseID int64, date time.Time, start, end model.TimeOfDay) (bool, error) {
	rng := model.TimeRange{Start: start, End: end}
	if rng.Empty() {
		return false, ErrInvalidInterval
	}
	date = model.DateOf(date)

	assignments, err := s.courseAssignments(ctx, courseID, date, date)
	if err != nil {
		return false, err
	}

	for _, a := range assignments {
		if a.ActiveOn(date) && a.Times().Overlaps(rng) {
			return true, nil
		}
	}

	return false, nil
}

func (s *ScheduleService) courseAssignments(ctx context.Context, courseID int64, from, to time.Time) ([]*model.AssignmentSlot, error) {
	dates, err := dateRange(from, to)
	if err != nil {
		return nil, err
	}

	repos := s.store.Repos()
	if _, err := getCourse(ctx, repos, courseID); err != nil {
		return nil, err
	}

	assignments, err := repos.Assignments.ListByCourse(ctx, courseID, dates.Start, dates.End)
	if err != nil {
		return nil, fmt.Errorf("get course assignments: %w", err)
	}
	sortByStart(assignments)

	return assignments, nil
}

func sortByStart(assignments []*model.AssignmentSlot) {
	sort.SliceStable(assignments, func(i, j int) bool {
		a, b := assignments[i], assignments[j]
		if !a.StartDate.Equal(b.StartDate) {
			return a.StartDate.Before(b.StartDate)
		}
		if a.StartTime != b.StartTime {
			return a.StartTime < b.StartTime
		}
		return a.ID < b.ID
	})
}

func scheduleEntry(a *model.AssignmentSlot) model.ScheduleEntry {
	return model.ScheduleEntry{
		AssignmentID: a.ID,
		StartDate:    a.StartDate,
		EndDate:      a.EndDate,
		StartTime:    a.StartTime,
		EndTime:      a.EndTime,
		IsGroup:      a.IsGroup,
	}
}

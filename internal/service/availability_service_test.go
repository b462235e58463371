package service

import (
	"context"
	"testing"

	"github.com/Freeeeeet/trainer_scheduler/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newAvailability(f *fixture) *AvailabilityService {
	return NewAvailabilityService(f.store, f.store.Repos().Users, zap.NewNop())
}

func trainerIDs(result []model.TrainerAvailability) []int64 {
	ids := make([]int64, 0, len(result))
	for _, r := range result {
		ids = append(ids, r.Trainer.UserID)
	}
	return ids
}

func TestQuerySingleDay_ScenarioA(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	x := f.trainer(t, "x", hours(8))
	f.assignment(t, x.ID, f.courseA.ID, june10, june10, "09:00", "10:00")

	svc := newAvailability(f)

	busy, err := svc.QuerySingleDay(ctx, tod("09:30"), 30, june10)
	require.NoError(t, err)
	assert.NotContains(t, trainerIDs(busy), x.ID)

	free, err := svc.QuerySingleDay(ctx, tod("10:00"), 30, june10)
	require.NoError(t, err)
	require.Equal(t, []int64{x.ID}, trainerIDs(free))

	assert.InDelta(t, 1.0, free[0].OccupiedHours, 1e-9)
	assert.InDelta(t, 8.0, free[0].ApprovedHours, 1e-9)
	assert.InDelta(t, 7.0, free[0].AvailableHours, 1e-9)
}

func TestQuerySingleDay_HoursAndOrdering(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	uncapped := f.trainer(t, "uncapped", nil)
	over := f.trainer(t, "over", hours(1))
	roomy := f.trainer(t, "roomy", hours(10))
	tied := f.trainer(t, "tied", hours(10))

	f.assignment(t, over.ID, f.courseA.ID, june10, june10, "06:00", "08:00")
	f.personal(t, &roomy.ID, june10, june10, "20:00")
	f.personal(t, &tied.ID, june10, june10, "21:00")

	result, err := newAvailability(f).QuerySingleDay(ctx, tod("12:00"), 60, june10)
	require.NoError(t, err)

	assert.Equal(t, []int64{roomy.ID, tied.ID, uncapped.ID, over.ID}, trainerIDs(result))

	byID := make(map[int64]model.TrainerAvailability)
	for _, r := range result {
		byID[r.Trainer.UserID] = r
	}

	// Лимит не задан: считается нулевым
	assert.InDelta(t, 0.0, byID[uncapped.ID].ApprovedHours, 1e-9)
	assert.InDelta(t, 0.0, byID[uncapped.ID].AvailableHours, 1e-9)

	// Занятость больше лимита: свободных часов 0, а не отрицательное значение
	assert.InDelta(t, 2.0, byID[over.ID].OccupiedHours, 1e-9)
	assert.InDelta(t, 0.0, byID[over.ID].AvailableHours, 1e-9)

	assert.InDelta(t, 9.0, byID[roomy.ID].AvailableHours, 1e-9)
}

func TestQuerySingleDay_PersonalSlotBlocks(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	y := f.trainer(t, "y", hours(4))
	f.personal(t, &y.ID, day("2024-06-01"), day("2024-06-30"), "14:00")

	svc := newAvailability(f)

	result, err := svc.QuerySingleDay(ctx, tod("14:30"), 15, june10)
	require.NoError(t, err)
	assert.Empty(t, result)

	result, err = svc.QuerySingleDay(ctx, tod("15:00"), 60, june10)
	require.NoError(t, err)
	assert.Equal(t, []int64{y.ID}, trainerIDs(result))
}

func TestQuerySingleDay_InvalidInput(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.trainer(t, "x", nil)
	svc := newAvailability(f)

	tests := []struct {
		name     string
		start    model.TimeOfDay
		duration int
	}{
		{"zero duration", tod("10:00"), 0},
		{"negative duration", tod("10:00"), -30},
		{"longer than a day", tod("00:00"), 1441},
		{"crosses midnight", tod("23:30"), 60},
		{"start out of range", model.TimeOfDay(1500), 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.QuerySingleDay(ctx, tt.start, tt.duration, june10)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Nil(t, result)
		})
	}

	result, err := svc.QuerySingleDay(ctx, tod("23:00"), 60, june10)
	require.NoError(t, err, "slot ending exactly at midnight is valid")
	assert.Len(t, result, 1)
}

func TestQueryWeek_ScenarioD(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	z := f.trainer(t, "z", nil)
	f.assignment(t, z.ID, f.courseA.ID, day("2024-06-01"), day("2024-06-30"), "09:00", "12:00")

	result, err := newAvailability(f).QueryWeek(ctx, tod("10:00"), 60, june10)
	require.NoError(t, err)
	require.Len(t, result, 1)

	week := result[0]
	assert.Equal(t, z.ID, week.Trainer.UserID)
	assert.False(t, week.AvailableToday)
	assert.False(t, week.AvailableWithinWeek)
	require.Len(t, week.Availability, model.WeekAheadDays)
	for i, d := range week.Availability {
		assert.False(t, d.IsAvailable)
		assert.Equal(t, model.AddDays(june10, i), d.Date)
	}
}

func TestQueryWeek_PartialAvailability(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	busyToday := f.trainer(t, "busy-today", nil)
	freeToday := f.trainer(t, "free-today", nil)

	f.assignment(t, busyToday.ID, f.courseA.ID, june10, june10, "10:00", "11:00")
	// Индивидуальное занятие заканчивается ровно к началу запроса: не мешает
	f.personal(t, &freeToday.ID, june10, model.AddDays(june10, 7), "09:00")
	// Последний день окна занят
	f.assignment(t, freeToday.ID, f.courseA.ID, model.AddDays(june10, 7), model.AddDays(june10, 7), "10:30", "11:30")

	result, err := newAvailability(f).QueryWeek(ctx, tod("10:00"), 60, june10)
	require.NoError(t, err)
	require.Len(t, result, 2)

	first := result[0]
	assert.Equal(t, busyToday.ID, first.Trainer.UserID)
	assert.False(t, first.AvailableToday)
	assert.True(t, first.AvailableWithinWeek)
	assert.False(t, first.Availability[0].IsAvailable)
	assert.True(t, first.Availability[1].IsAvailable)

	second := result[1]
	assert.True(t, second.AvailableToday)
	assert.True(t, second.AvailableWithinWeek)
	assert.False(t, second.Availability[7].IsAvailable)
}

func TestQueryWeek_InvalidInput(t *testing.T) {
	f := newFixture(t)
	f.trainer(t, "x", nil)

	_, err := newAvailability(f).QueryWeek(context.Background(), tod("23:45"), 30, june10)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDayTimeline_ScenarioC(t *testing.T) {
	f := newFixture(t)
	x := f.trainer(t, "x", nil)
	f.assignment(t, x.ID, f.courseA.ID, june10, june10, "09:00", "10:00")

	timeline, err := newAvailability(f).DayTimeline(context.Background(), x.ID, june10)
	require.NoError(t, err)

	assert.Equal(t, []model.TimelineEntry{
		{Start: tod("00:00"), End: tod("09:00"), Available: true},
		{Start: tod("09:00"), End: tod("10:00"), Available: false, Course: "Course A"},
		{Start: tod("10:00"), End: tod("23:59"), Available: true},
	}, timeline)
}

func TestDayTimeline_Edges(t *testing.T) {
	ctx := context.Background()

	t.Run("empty day is one free entry", func(t *testing.T) {
		f := newFixture(t)
		x := f.trainer(t, "x", nil)

		timeline, err := newAvailability(f).DayTimeline(ctx, x.ID, june10)
		require.NoError(t, err)
		assert.Equal(t, []model.TimelineEntry{
			{Start: tod("00:00"), End: tod("23:59"), Available: true},
		}, timeline)
	})

	t.Run("back to back and late assignments", func(t *testing.T) {
		f := newFixture(t)
		x := f.trainer(t, "x", nil)
		f.assignment(t, x.ID, f.courseA.ID, june10, june10, "00:00", "01:00")
		f.assignment(t, x.ID, f.group.ID, june10, june10, "01:00", "02:00")
		f.assignment(t, x.ID, f.courseA.ID, june10, june10, "23:00", "24:00")

		timeline, err := newAvailability(f).DayTimeline(ctx, x.ID, june10)
		require.NoError(t, err)
		assert.Equal(t, []model.TimelineEntry{
			{Start: tod("00:00"), End: tod("01:00"), Course: "Course A"},
			{Start: tod("01:00"), End: tod("02:00"), Course: "Group English"},
			{Start: tod("02:00"), End: tod("23:00"), Available: true},
			{Start: tod("23:00"), End: tod("24:00"), Course: "Course A"},
		}, timeline)
	})

	t.Run("unknown trainer", func(t *testing.T) {
		f := newFixture(t)
		_, err := newAvailability(f).DayTimeline(ctx, 404, june10)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/Freeeeeet/trainer_scheduler/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestOccupancyCalculator(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	trainer := f.trainer(t, "x", hours(6))

	f.assignment(t, trainer.ID, f.courseA.ID, june10, june10, "09:00", "10:30")
	f.assignment(t, trainer.ID, f.group.ID, day("2024-06-01"), day("2024-06-30"), "18:00", "19:00")
	f.assignment(t, trainer.ID, f.courseA.ID, day("2024-06-11"), day("2024-06-12"), "07:00", "08:00")
	f.personal(t, &trainer.ID, day("2024-06-05"), day("2024-06-15"), "12:00")

	calc := NewOccupancyCalculator(f.store, f.store.Repos().Users, zap.NewNop())

	hoursOn, err := calc.OccupiedHours(ctx, trainer.ID, june10)
	require.NoError(t, err)
	assert.InDelta(t, 3.5, hoursOn, 1e-9)

	slots, err := calc.OccupiedSlots(ctx, trainer.ID, june10)
	require.NoError(t, err)
	require.Len(t, slots, 3)

	assert.Equal(t, model.OccupiedSlot{Start: tod("09:00"), End: tod("10:30"), CourseName: "Course A"}, slots[0])
	assert.Equal(t, model.OccupiedSlot{Start: tod("12:00"), End: tod("13:00"), CourseName: "Course A"}, slots[1])
	assert.Equal(t, model.OccupiedSlot{Start: tod("18:00"), End: tod("19:00"), CourseName: "Group English", IsGroup: true}, slots[2])
}

func TestOccupancyCalculator_HoursMatchSlots(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	trainer := f.trainer(t, "x", nil)

	f.assignment(t, trainer.ID, f.courseA.ID, day("2024-06-01"), day("2024-06-09"), "08:00", "09:15")
	f.assignment(t, trainer.ID, f.courseA.ID, day("2024-06-05"), day("2024-06-20"), "10:00", "10:45")
	f.assignment(t, trainer.ID, f.group.ID, day("2024-06-08"), day("2024-06-08"), "20:00", "22:00")
	f.personal(t, &trainer.ID, day("2024-06-03"), day("2024-06-07"), "15:00")
	f.personal(t, &trainer.ID, day("2024-06-07"), day("2024-06-12"), "16:00")

	calc := NewOccupancyCalculator(f.store, f.store.Repos().Users, zap.NewNop())

	for d := day("2024-05-30"); !d.After(day("2024-06-22")); d = model.AddDays(d, 1) {
		total, err := calc.OccupiedHours(ctx, trainer.ID, d)
		require.NoError(t, err)

		slots, err := calc.OccupiedSlots(ctx, trainer.ID, d)
		require.NoError(t, err)

		var sum time.Duration
		for _, s := range slots {
			sum += s.Duration()
		}
		assert.InDelta(t, sum.Hours(), total, 1e-9, "date %s", d.Format(model.DateLayout))
	}
}

func TestOccupancyCalculator_UnknownTrainer(t *testing.T) {
	f := newFixture(t)
	calc := NewOccupancyCalculator(f.store, f.store.Repos().Users, zap.NewNop())

	_, err := calc.OccupiedHours(context.Background(), 999, june10)
	assert.ErrorIs(t, err, ErrNotFound)

	// Студент не тренер
	_, err = calc.OccupiedSlots(context.Background(), f.student.ID, june10)
	assert.ErrorIs(t, err, ErrNotFound)
}

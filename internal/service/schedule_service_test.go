package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduleService(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	x := f.trainer(t, "Xena", nil)
	y := f.trainer(t, "Yuri", nil)

	late := f.assignment(t, x.ID, f.group.ID, day("2024-06-05"), day("2024-06-30"), "18:00", "19:30")
	early := f.assignment(t, y.ID, f.group.ID, day("2024-06-01"), day("2024-06-30"), "09:00", "10:00")
	other := f.assignment(t, x.ID, f.courseA.ID, day("2024-06-01"), day("2024-06-03"), "12:00", "13:00")
	f.assignment(t, x.ID, f.courseA.ID, day("2024-07-01"), day("2024-07-31"), "12:00", "13:00")

	svc := NewScheduleService(f.store)

	t.Run("trainer schedule", func(t *testing.T) {
		schedule, err := svc.TrainerSchedule(ctx, x.ID, day("2024-06-01"), day("2024-06-30"))
		require.NoError(t, err)
		require.Len(t, schedule, 2)

		assert.Equal(t, other.ID, schedule[0].AssignmentID)
		assert.Equal(t, "Course A", schedule[0].Course)
		assert.False(t, schedule[0].IsGroup)

		assert.Equal(t, late.ID, schedule[1].AssignmentID)
		assert.Equal(t, "Group English", schedule[1].Course)
		assert.True(t, schedule[1].IsGroup)
	})

	t.Run("course schedule", func(t *testing.T) {
		schedule, err := svc.CourseSchedule(ctx, f.group.ID, day("2024-06-10"), day("2024-06-10"))
		require.NoError(t, err)
		require.Len(t, schedule, 2)

		assert.Equal(t, early.ID, schedule[0].AssignmentID)
		assert.Equal(t, "Yuri", schedule[0].Trainer)
		assert.Equal(t, late.ID, schedule[1].AssignmentID)
		assert.Equal(t, "Xena", schedule[1].Trainer)
	})

	t.Run("course hours", func(t *testing.T) {
		total, err := svc.CourseHours(ctx, f.group.ID, day("2024-06-01"), day("2024-06-30"))
		require.NoError(t, err)
		assert.InDelta(t, 2.5, total, 1e-9)

		total, err = svc.CourseHours(ctx, f.group.ID, day("2024-06-01"), day("2024-06-04"))
		require.NoError(t, err)
		assert.InDelta(t, 1.0, total, 1e-9)
	})

	t.Run("course conflict", func(t *testing.T) {
		busy, err := svc.HasCourseConflict(ctx, f.group.ID, day("2024-06-10"), tod("09:30"), tod("11:00"))
		require.NoError(t, err)
		assert.True(t, busy)

		busy, err = svc.HasCourseConflict(ctx, f.group.ID, day("2024-06-10"), tod("10:00"), tod("18:00"))
		require.NoError(t, err)
		assert.False(t, busy)

		_, err = svc.HasCourseConflict(ctx, f.group.ID, day("2024-06-10"), tod("10:00"), tod("10:00"))
		assert.ErrorIs(t, err, ErrInvalidInterval)
	})

	t.Run("errors", func(t *testing.T) {
		_, err := svc.TrainerSchedule(ctx, f.student.ID, day("2024-06-01"), day("2024-06-30"))
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = svc.CourseSchedule(ctx, 9999, day("2024-06-01"), day("2024-06-30"))
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = svc.CourseHours(ctx, f.group.ID, day("2024-06-30"), day("2024-06-01"))
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

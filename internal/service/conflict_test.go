package service

import (
	"context"
	"testing"

	"github.com/Freeeeeet/trainer_scheduler/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConflictChecker_HasConflict(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	trainer := f.trainer(t, "x", nil)
	f.assignment(t, trainer.ID, f.courseA.ID, june10, june10, "09:00", "10:00")
	f.personal(t, &trainer.ID, june10, model.AddDays(june10, 5), "14:00")

	checker := NewConflictChecker(f.store)

	tests := []struct {
		name       string
		date       string
		start, end string
		want       bool
	}{
		{"inside assignment", "2024-06-10", "09:15", "09:45", true},
		{"contains assignment", "2024-06-10", "08:00", "11:00", true},
		{"partial overlap start", "2024-06-10", "08:30", "09:01", true},
		{"ends exactly at assignment start", "2024-06-10", "08:00", "09:00", false},
		{"starts exactly at assignment end", "2024-06-10", "10:00", "10:30", false},
		{"inside personal window", "2024-06-12", "14:30", "15:30", true},
		{"ends at personal window start", "2024-06-12", "13:00", "14:00", false},
		{"starts at personal window end", "2024-06-12", "15:00", "16:00", false},
		{"assignment inactive next day", "2024-06-11", "09:00", "10:00", false},
		{"personal slot ended", "2024-06-16", "14:00", "15:00", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := checker.HasConflict(ctx, trainer.ID, day(tt.date), tod(tt.start), tod(tt.end))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConflictChecker_ContainmentAlwaysConflicts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	trainer := f.trainer(t, "x", nil)
	f.assignment(t, trainer.ID, f.courseA.ID, june10, june10, "12:00", "12:30")

	checker := NewConflictChecker(f.store)

	// Любой интервал, содержащий 12:00-12:30, пересекается с назначением
	for start := model.TimeOfDay(0); start <= tod("12:00"); start += 15 {
		for end := tod("12:30"); end <= model.DayLength; end += 15 {
			got, err := checker.HasConflict(ctx, trainer.ID, june10, start, end)
			require.NoError(t, err)
			assert.True(t, got, "interval %s-%s", start, end)
		}
	}
}

func TestConflictChecker_EmptyInterval(t *testing.T) {
	f := newFixture(t)
	trainer := f.trainer(t, "x", nil)

	_, err := NewConflictChecker(f.store).HasConflict(context.Background(), trainer.ID, june10, tod("10:00"), tod("10:00"))

	require.ErrorIs(t, err, ErrInvalidInterval)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestConflictChecker_HasConflictInRange(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	trainer := f.trainer(t, "x", nil)
	existing := f.assignment(t, trainer.ID, f.courseA.ID, day("2024-06-10"), day("2024-06-20"), "09:00", "10:00")

	checker := NewConflictChecker(f.store)
	rng := model.TimeRange{Start: tod("09:30"), End: tod("10:30")}

	got, err := checker.HasConflictInRange(ctx, trainer.ID, day("2024-06-20"), day("2024-06-25"), rng, 0)
	require.NoError(t, err)
	assert.True(t, got)

	got, err = checker.HasConflictInRange(ctx, trainer.ID, day("2024-06-21"), day("2024-06-25"), rng, 0)
	require.NoError(t, err)
	assert.False(t, got)

	got, err = checker.HasConflictInRange(ctx, trainer.ID, day("2024-06-10"), day("2024-06-20"), rng, existing.ID)
	require.NoError(t, err)
	assert.False(t, got, "the assignment being edited is excluded")

	_, err = checker.HasConflictInRange(ctx, trainer.ID, day("2024-06-25"), day("2024-06-20"), rng, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/Freeeeeet/trainer_scheduler/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newCommitments(f *fixture, today time.Time) *CommitmentService {
	svc := NewCommitmentService(f.store, zap.NewNop())
	svc.now = fixedClock(today)
	return svc
}

func TestCreateAssignment(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	x := f.trainer(t, "x", nil)
	svc := newCommitments(f, june10)

	slot, err := svc.CreateAssignment(ctx, CreateAssignmentInput{
		TrainerID: x.ID,
		CourseID:  f.courseA.ID,
		StartDate: day("2024-06-10"),
		EndDate:   day("2024-06-20"),
		StartTime: tod("09:00"),
		EndTime:   tod("10:30"),
	})
	require.NoError(t, err)

	assert.NotZero(t, slot.ID)
	assert.NotEqual(t, uuid.Nil, slot.GroupID)
	assert.Equal(t, 90*time.Minute, slot.Duration, "derived from times")

	explicit, err := svc.CreateAssignment(ctx, CreateAssignmentInput{
		TrainerID: x.ID,
		CourseID:  f.courseA.ID,
		StartDate: day("2024-06-10"),
		EndDate:   day("2024-06-20"),
		StartTime: tod("11:00"),
		EndTime:   tod("13:00"),
		Duration:  45 * time.Minute,
	})
	require.NoError(t, err)
	assert.Equal(t, 45*time.Minute, explicit.Duration, "explicit duration is kept")
}

func TestCreateAssignment_Overlap(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	x := f.trainer(t, "x", nil)
	f.assignment(t, x.ID, f.courseA.ID, day("2024-06-10"), day("2024-06-20"), "09:00", "10:00")
	f.personal(t, &x.ID, day("2024-06-01"), day("2024-06-30"), "15:00")
	svc := newCommitments(f, june10)

	tests := []struct {
		name       string
		from, to   string
		start, end string
		wantErr    error
	}{
		{"overlaps assignment", "2024-06-20", "2024-06-25", "09:30", "10:30", ErrOverlapConflict},
		{"overlaps personal slot", "2024-06-05", "2024-06-05", "14:30", "15:30", ErrOverlapConflict},
		{"adjacent to assignment", "2024-06-10", "2024-06-20", "10:00", "11:00", nil},
		{"after assignment dates", "2024-06-21", "2024-06-25", "09:00", "10:00", nil},
		{"empty interval", "2024-06-10", "2024-06-10", "12:00", "12:00", ErrInvalidInterval},
		{"reversed dates", "2024-06-12", "2024-06-10", "12:00", "13:00", ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateAssignment(ctx, CreateAssignmentInput{
				TrainerID: x.ID,
				CourseID:  f.courseA.ID,
				StartDate: day(tt.from),
				EndDate:   day(tt.to),
				StartTime: tod(tt.start),
				EndTime:   tod(tt.end),
			})
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCreateAssignment_LinkedPersonalSlotIsNotAConflict(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	x := f.trainer(t, "x", nil)
	personal := f.personal(t, &x.ID, day("2024-06-01"), day("2024-06-30"), "15:00")
	svc := newCommitments(f, june10)

	slot, err := svc.CreateAssignment(ctx, CreateAssignmentInput{
		TrainerID:      x.ID,
		CourseID:       f.courseA.ID,
		PersonalSlotID: &personal.ID,
		StartDate:      personal.StartDate,
		EndDate:        personal.EndDate,
		StartTime:      tod("15:00"),
		EndTime:        tod("16:00"),
	})
	require.NoError(t, err)
	require.NotNil(t, slot.PersonalSlotID)
	assert.Equal(t, personal.ID, *slot.PersonalSlotID)
}

func TestCreateAssignment_GroupCourse(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	x := f.trainer(t, "x", nil)
	personal := f.personal(t, nil, day("2024-06-01"), day("2024-06-30"), "15:00")
	svc := newCommitments(f, june10)

	slot, err := svc.CreateAssignment(ctx, CreateAssignmentInput{
		TrainerID:      x.ID,
		CourseID:       f.group.ID,
		PersonalSlotID: &personal.ID,
		StartDate:      day("2024-06-10"),
		EndDate:        day("2024-06-10"),
		StartTime:      tod("18:00"),
		EndTime:        tod("19:00"),
	})
	require.NoError(t, err)
	assert.Nil(t, slot.PersonalSlotID, "group assignments are not linked to a student")

	ids, err := f.store.Repos().Courses.ListTrainerIDs(ctx, f.group.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{x.ID}, ids)
}

func TestCreateAssignment_NotFound(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	x := f.trainer(t, "x", nil)
	svc := newCommitments(f, june10)

	base := CreateAssignmentInput{
		TrainerID: x.ID,
		CourseID:  f.courseA.ID,
		StartDate: june10,
		EndDate:   june10,
		StartTime: tod("09:00"),
		EndTime:   tod("10:00"),
	}

	in := base
	in.TrainerID = f.student.ID
	_, err := svc.CreateAssignment(ctx, in)
	assert.ErrorIs(t, err, ErrNotFound)

	in = base
	in.CourseID = 9999
	_, err = svc.CreateAssignment(ctx, in)
	assert.ErrorIs(t, err, ErrNotFound)

	missing := int64(9999)
	in = base
	in.PersonalSlotID = &missing
	_, err = svc.CreateAssignment(ctx, in)
	assert.ErrorIs(t, err, ErrNotFound)

	assignments, err := f.store.Repos().Assignments.ListByTrainer(ctx, x.ID, june10, june10)
	require.NoError(t, err)
	assert.Empty(t, assignments, "failed writes leave nothing behind")
}

func TestUpdateAssignmentTimes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	x := f.trainer(t, "x", nil)
	slot := f.assignment(t, x.ID, f.courseA.ID, day("2024-06-10"), day("2024-06-20"), "09:00", "10:00")
	f.assignment(t, x.ID, f.courseA.ID, day("2024-06-15"), day("2024-06-15"), "12:00", "13:00")
	svc := newCommitments(f, june10)

	updated, err := svc.UpdateAssignmentTimes(ctx, slot.ID, tod("09:30"), tod("11:30"))
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, updated.Duration, "duration re-derived")

	stored, err := f.store.Repos().Assignments.GetByID(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, tod("09:30"), stored.StartTime)
	assert.Equal(t, tod("11:30"), stored.EndTime)
	assert.Equal(t, 2*time.Hour, stored.Duration)

	_, err = svc.UpdateAssignmentTimes(ctx, slot.ID, tod("11:00"), tod("12:30"))
	assert.ErrorIs(t, err, ErrOverlapConflict)

	_, err = svc.UpdateAssignmentTimes(ctx, slot.ID, tod("11:00"), tod("10:00"))
	assert.ErrorIs(t, err, ErrInvalidInterval)

	_, err = svc.UpdateAssignmentTimes(ctx, 9999, tod("08:00"), tod("09:00"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAssignGroupTrainers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	x := f.trainer(t, "x", nil)
	y := f.trainer(t, "y", nil)
	stale := f.assignment(t, y.ID, f.group.ID, day("2024-01-01"), day("2024-12-31"), "18:00", "19:00")
	svc := newCommitments(f, june10)

	created, err := svc.AssignGroupTrainers(ctx, f.group.ID, []GroupTrainerInput{
		{TrainerID: x.ID, StartTime: tod("18:00"), EndTime: tod("19:00")},
		{TrainerID: y.ID, StartTime: tod("19:00"), EndTime: tod("20:30")},
	})
	require.NoError(t, err)
	require.Len(t, created, 2)

	assert.Equal(t, created[0].GroupID, created[1].GroupID)
	for _, a := range created {
		assert.Equal(t, june10, a.StartDate)
		assert.Equal(t, model.AddDays(june10, GroupAssignmentDays), a.EndDate)
	}
	assert.Equal(t, 90*time.Minute, created[1].Duration)

	old, err := f.store.Repos().Assignments.GetByID(ctx, stale.ID)
	require.NoError(t, err)
	assert.Nil(t, old, "previous assignments replaced")

	ids, err := f.store.Repos().Courses.ListTrainerIDs(ctx, f.group.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{x.ID, y.ID}, ids)
}

func TestAssignGroupTrainers_IsAtomic(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	x := f.trainer(t, "x", nil)
	y := f.trainer(t, "y", nil)
	keep := f.assignment(t, x.ID, f.group.ID, june10, model.AddDays(june10, 30), "18:00", "19:00")
	// y занят в другом курсе
	f.assignment(t, y.ID, f.courseA.ID, june10, model.AddDays(june10, 30), "19:30", "20:00")
	svc := newCommitments(f, june10)

	_, err := svc.AssignGroupTrainers(ctx, f.group.ID, []GroupTrainerInput{
		{TrainerID: x.ID, StartTime: tod("08:00"), EndTime: tod("09:00")},
		{TrainerID: y.ID, StartTime: tod("19:00"), EndTime: tod("20:30")},
	})
	require.ErrorIs(t, err, ErrOverlapConflict)

	stored, err := f.store.Repos().Assignments.ListByCourse(ctx, f.group.ID, june10, model.AddDays(june10, 365))
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, keep.ID, stored[0].ID)

	t.Run("rejects personal courses", func(t *testing.T) {
		_, err := svc.AssignGroupTrainers(ctx, f.courseA.ID, []GroupTrainerInput{
			{TrainerID: x.ID, StartTime: tod("08:00"), EndTime: tod("09:00")},
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("requires trainers", func(t *testing.T) {
		_, err := svc.AssignGroupTrainers(ctx, f.group.ID, nil)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestEnrollPersonalSlot(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	x := f.trainer(t, "x", nil)
	f.assignment(t, x.ID, f.courseA.ID, june10, june10, "09:00", "10:00")
	svc := newCommitments(f, june10)

	slot, err := svc.EnrollPersonalSlot(ctx, EnrollInput{
		StudentID: f.student.ID,
		CourseID:  f.courseA.ID,
		TrainerID: &x.ID,
		StartDate: june10,
		EndDate:   model.AddDays(june10, 29),
		ClassTime: tod("10:00"),
	})
	require.NoError(t, err)
	require.NotNil(t, slot.TrainerID)
	assert.Equal(t, x.ID, *slot.TrainerID)
	assert.Equal(t, "Course A", slot.CourseName)

	_, err = svc.EnrollPersonalSlot(ctx, EnrollInput{
		StudentID: f.student.ID,
		CourseID:  f.courseA.ID,
		TrainerID: &x.ID,
		StartDate: june10,
		EndDate:   june10,
		ClassTime: tod("09:30"),
	})
	assert.ErrorIs(t, err, ErrOverlapConflict)

	group, err := svc.EnrollPersonalSlot(ctx, EnrollInput{
		StudentID: f.student.ID,
		CourseID:  f.group.ID,
		TrainerID: &x.ID,
		StartDate: june10,
		EndDate:   june10,
		ClassTime: tod("09:30"),
	})
	require.NoError(t, err)
	assert.Nil(t, group.TrainerID, "trainer cleared for group courses")

	_, err = svc.EnrollPersonalSlot(ctx, EnrollInput{
		StudentID: f.student.ID,
		CourseID:  f.courseA.ID,
		StartDate: june10,
		EndDate:   june10,
		ClassTime: tod("23:30"),
	})
	assert.ErrorIs(t, err, ErrInvalidInput, "class must end by midnight")
}

func TestReassignTrainer(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	x := f.trainer(t, "x", nil)
	y := f.trainer(t, "y", nil)
	slot := f.personal(t, &x.ID, june10, model.AddDays(june10, 10), "14:00")
	svc := newCommitments(f, june10)

	updated, err := svc.ReassignTrainer(ctx, slot.ID, y.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.TrainerID)
	assert.Equal(t, y.ID, *updated.TrainerID)

	// Переназначение на того же тренера не конфликтует само с собой
	_, err = svc.ReassignTrainer(ctx, slot.ID, y.ID)
	require.NoError(t, err)

	f.assignment(t, x.ID, f.courseA.ID, model.AddDays(june10, 5), model.AddDays(june10, 5), "14:30", "15:00")
	_, err = svc.ReassignTrainer(ctx, slot.ID, x.ID)
	assert.ErrorIs(t, err, ErrOverlapConflict)

	_, err = svc.ReassignTrainer(ctx, slot.ID, f.student.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	groupSlot, err := svc.EnrollPersonalSlot(ctx, EnrollInput{
		StudentID: f.student.ID,
		CourseID:  f.group.ID,
		StartDate: june10,
		EndDate:   june10,
		ClassTime: tod("08:00"),
	})
	require.NoError(t, err)
	_, err = svc.ReassignTrainer(ctx, groupSlot.ID, y.ID)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestExtendCourse(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	x := f.trainer(t, "x", nil)
	slot := f.personal(t, &x.ID, day("2024-06-01"), day("2024-06-20"), "14:00")
	f.assignment(t, x.ID, f.courseA.ID, day("2024-06-25"), day("2024-06-25"), "14:00", "15:00")
	svc := newCommitments(f, june10)

	extended, err := svc.ExtendCourse(ctx, slot.ID, day("2024-06-24"))
	require.NoError(t, err)
	assert.Equal(t, day("2024-06-24"), extended.EndDate)

	_, err = svc.ExtendCourse(ctx, slot.ID, day("2024-06-26"))
	assert.ErrorIs(t, err, ErrOverlapConflict)

	_, err = svc.ExtendCourse(ctx, slot.ID, day("2024-06-24"))
	assert.ErrorIs(t, err, ErrInvalidInput, "not after current end")

	_, err = svc.ExtendCourse(ctx, slot.ID, day("2024-06-09"))
	assert.ErrorIs(t, err, ErrInvalidInput, "in the past")

	_, err = svc.ExtendCourse(ctx, 9999, day("2024-07-01"))
	assert.ErrorIs(t, err, ErrNotFound)
}

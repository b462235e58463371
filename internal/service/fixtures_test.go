package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Freeeeeet/trainer_scheduler/internal/model"
	"github.com/Freeeeeet/trainer_scheduler/internal/notify"
	"github.com/Freeeeeet/trainer_scheduler/internal/repository/memory"
	"github.com/stretchr/testify/require"
)

var june10 = time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

func tod(s string) model.TimeOfDay {
	return model.MustParseTimeOfDay(s)
}

func day(s string) time.Time {
	d, err := model.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// fixture хранилище в памяти с несколькими пользователями и курсами
type fixture struct {
	store   *memory.Store
	admin   *model.User
	manager *model.User
	student *model.User
	courseA *model.Course
	group   *model.Course
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewStore()
	f := &fixture{store: store}

	f.admin = store.AddUser(&model.User{Username: "admin", Role: model.RoleAdmin})
	f.manager = store.AddUser(&model.User{Username: "manager", Role: model.RoleManager})
	f.student = store.AddUser(&model.User{Username: "student", FirstName: "Ivan", Role: model.RoleStudent})
	f.courseA = store.AddCourse(&model.Course{Name: "Course A", ClassDuration: time.Hour})
	f.group = store.AddCourse(&model.Course{Name: "Group English", ClassDuration: time.Hour, IsGroupClass: true})

	return f
}

func (f *fixture) trainer(t *testing.T, name string, approvedHours *int) *model.User {
	t.Helper()

	u := f.store.AddUser(&model.User{Username: name, FirstName: name, Role: model.RoleTrainer})
	f.store.SetApprovedHours(u.ID, approvedHours)
	return u
}

// assignment сохраняет назначение напрямую, минуя проверку пересечений
func (f *fixture) assignment(t *testing.T, trainerID, courseID int64, from, to time.Time, start, end string) *model.AssignmentSlot {
	t.Helper()

	slot := &model.AssignmentSlot{
		TrainerID: trainerID,
		CourseID:  courseID,
		StartDate: from,
		EndDate:   to,
		StartTime: tod(start),
		EndTime:   tod(end),
	}
	slot.DeriveDuration()
	require.NoError(t, f.store.Repos().Assignments.Create(context.Background(), slot))
	return slot
}

func (f *fixture) personal(t *testing.T, trainerID *int64, from, to time.Time, classTime string) *model.PersonalSlot {
	t.Helper()

	slot := &model.PersonalSlot{
		StudentID: f.student.ID,
		CourseID:  f.courseA.ID,
		TrainerID: trainerID,
		StartDate: from,
		EndDate:   to,
		ClassTime: tod(classTime),
	}
	require.NoError(t, f.store.Repos().PersonalSlots.Create(context.Background(), slot))
	return slot
}

func hours(n int) *int { return &n }

func fixedClock(date time.Time) func() time.Time {
	return func() time.Time { return date.Add(10 * time.Hour) }
}

// recordingNotifier запоминает отправленные уведомления
type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
	err  error
}

type sentNotification struct {
	UserID int64
	Kind   notify.Kind
	Text   string
}

func (n *recordingNotifier) Notify(_ context.Context, recipient *model.User, kind notify.Kind, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, sentNotification{UserID: recipient.ID, Kind: kind, Text: text})
	return nil
}

func (n *recordingNotifier) recipients() []int64 {
	n.mu.Lock()
	defer n.mu.Unlock()

	ids := make([]int64, 0, len(n.sent))
	for _, s := range n.sent {
		ids = append(ids, s.UserID)
	}
	return ids
}

package service

import (
	"context"
	"testing"

	"github.com/Freeeeeet/trainer_scheduler/internal/model"
	"github.com/Freeeeeet/trainer_scheduler/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestReminderService_SendCourseEndingReminders(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	x := f.trainer(t, "x", nil)

	f.personal(t, &x.ID, day("2024-05-01"), day("2024-06-15"), "10:00") // 5 дней
	f.personal(t, nil, day("2024-05-01"), day("2024-06-13"), "11:00")   // 3 дня, без тренера
	f.personal(t, &x.ID, day("2024-05-01"), day("2024-06-14"), "12:00") // 4 дня, без напоминания
	f.personal(t, &x.ID, day("2024-05-01"), day("2024-06-30"), "13:00") // далеко

	notifier := &recordingNotifier{}
	svc := NewReminderService(f.store, notifier, nil, zap.NewNop())
	svc.now = fixedClock(june10)

	sent, err := svc.SendCourseEndingReminders(ctx)
	require.NoError(t, err)

	// 5 дней: admin, manager, student, trainer; 3 дня: admin, manager, student
	assert.Equal(t, 7, sent)
	assert.Equal(t, []int64{
		f.admin.ID, f.manager.ID, f.student.ID, x.ID,
		f.admin.ID, f.manager.ID, f.student.ID,
	}, notifier.recipients())

	for _, n := range notifier.sent {
		assert.Equal(t, notify.KindCourseEnding, n.Kind)
	}
}

func TestReminderService_EndsToday(t *testing.T) {
	f := newFixture(t)
	f.personal(t, nil, day("2024-05-01"), june10, "10:00")

	notifier := &recordingNotifier{}
	svc := NewReminderService(f.store, notifier, []int{0}, zap.NewNop())
	svc.now = fixedClock(june10)

	sent, err := svc.SendCourseEndingReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, sent)
	assert.Contains(t, notifier.sent[2].Text, "0 дн.")
}

func TestReminderService_NothingEnding(t *testing.T) {
	f := newFixture(t)
	f.personal(t, nil, day("2024-05-01"), model.AddDays(june10, 30), "10:00")

	notifier := &recordingNotifier{}
	svc := NewReminderService(f.store, notifier, nil, zap.NewNop())
	svc.now = fixedClock(june10)

	sent, err := svc.SendCourseEndingReminders(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Empty(t, notifier.sent)
}

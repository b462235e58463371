package service

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/Freeeeeet/trainer_scheduler/internal/model"
	"github.com/Freeeeeet/trainer_scheduler/internal/notify"
	"github.com/Freeeeeet/trainer_scheduler/internal/storage"
	"go.uber.org/zap"
)

// DefaultReminderDays за сколько дней до окончания курса отправляются напоминания
var DefaultReminderDays = []int{5, 3, 0}

// ReminderService напоминания об окончании курсов
type ReminderService struct {
	store    storage.Store
	notifier notify.Notifier
	days     []int
	logger   *zap.Logger
	now      func() time.Time
}

func NewReminderService(store storage.Store, notifier notify.Notifier, days []int, logger *zap.Logger) *ReminderService {
	if len(days) == 0 {
		days = DefaultReminderDays
	}
	return &ReminderService{
		store:    store,
		notifier: notifier,
		days:     days,
		logger:   logger,
		now:      time.Now,
	}
}

// SendCourseEndingReminders уведомляет студента, администраторов и менеджеров,
// а также персонального тренера о курсах, которые заканчиваются через
// одно из настроенных количеств дней. Возвращает число отправленных уведомлений.
func (s *ReminderService) SendCourseEndingReminders(ctx context.Context) (int, error) {
	today := model.DateOf(s.now())
	horizon := model.AddDays(today, slices.Max(s.days))

	repos := s.store.Repos()

	ending, err := repos.PersonalSlots.ListEndingBetween(ctx, today, horizon)
	if err != nil {
		return 0, fmt.Errorf("list ending courses: %w", err)
	}
	if len(ending) == 0 {
		return 0, nil
	}

	staff, err := repos.Users.ListByRoles(ctx, model.RoleAdmin, model.RoleManager)
	if err != nil {
		return 0, fmt.Errorf("list staff: %w", err)
	}

	sent := 0
	for _, slot := range ending {
		daysLeft := model.DaysInclusive(today, slot.EndDate) - 1
		if !slices.Contains(s.days, daysLeft) {
			continue
		}

		student, err := repos.Users.GetByID(ctx, slot.StudentID)
		if err != nil {
			return sent, fmt.Errorf("get student: %w", err)
		}
		if student == nil {
			s.logger.Warn("Student not found for personal slot", zap.Int64("personal_slot_id", slot.ID))
			continue
		}

		staffText := fmt.Sprintf("Курс студента %s (ID: %d) заканчивается через %d дн.", student.Username, student.ID, daysLeft)
		for _, u := range staff {
			sent += s.send(ctx, u, staffText)
		}

		sent += s.send(ctx, student, fmt.Sprintf("Ваш курс %s заканчивается через %d дн.", slot.CourseName, daysLeft))

		if !slot.IsGroup && slot.TrainerID != nil {
			trainer, err := repos.Users.GetByID(ctx, *slot.TrainerID)
			if err != nil {
				return sent, fmt.Errorf("get trainer: %w", err)
			}
			if trainer != nil {
				sent += s.send(ctx, trainer, fmt.Sprintf(
					"Индивидуальные занятия со студентом %s (ID: %d) заканчиваются через %d дн.",
					student.Username, student.ID, daysLeft))
			}
		}
	}

	s.logger.Info("Course ending reminders sent",
		zap.String("date", today.Format(model.DateLayout)),
		zap.Int("courses", len(ending)),
		zap.Int("notifications", sent),
	)

	return sent, nil
}

func (s *ReminderService) send(ctx context.Context, recipient *model.User, text string) int {
	if err := s.notifier.Notify(ctx, recipient, notify.KindCourseEnding, text); err != nil {
		s.logger.Error("Failed to send course ending reminder",
			zap.Int64("user_id", recipient.ID),
			zap.Error(err),
		)
		return 0
	}
	return 1
}

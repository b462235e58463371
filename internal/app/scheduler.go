package app

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// HistoryPurger удаляет устаревшую историю заявок на заморозку
type HistoryPurger interface {
	PurgeHistory(ctx context.Context, retention time.Duration) (int64, error)
}

// CourseReminder рассылает напоминания об окончании курсов
type CourseReminder interface {
	SendCourseEndingReminders(ctx context.Context) (int, error)
}

// Scheduler управляет фоновыми задачами
type Scheduler struct {
	purger    HistoryPurger
	reminder  CourseReminder
	retention time.Duration
	interval  time.Duration
	logger    *zap.Logger
	stopChan  chan struct{}
	done      chan struct{}
}

// NewScheduler создаёт новый планировщик
func NewScheduler(purger HistoryPurger, reminder CourseReminder, retention time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		purger:    purger,
		reminder:  reminder,
		retention: retention,
		interval:  24 * time.Hour,
		logger:    logger,
		stopChan:  make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start запускает фоновые задачи
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting background scheduler",
		zap.Duration("interval", s.interval),
		zap.Duration("hold_history_retention", s.retention),
	)

	go s.runDailyTasks(ctx)
}

// Stop останавливает фоновые задачи и ждёт завершения текущего прохода
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background scheduler")
	close(s.stopChan)
	<-s.done
}

// runDailyTasks раз в сутки чистит историю заявок и рассылает напоминания
func (s *Scheduler) runDailyTasks(ctx context.Context) {
	defer close(s.done)

	// Первый запуск сразу при старте
	s.runOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.runOnce(ctx)
		case <-s.stopChan:
			s.logger.Info("Daily tasks stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Daily tasks cancelled")
			return
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	deleted, err := s.purger.PurgeHistory(ctx, s.retention)
	if err != nil {
		s.logger.Error("Failed to purge hold history", zap.Error(err))
	} else {
		s.logger.Info("Hold history retention sweep completed", zap.Int64("deleted", deleted))
	}

	sent, err := s.reminder.SendCourseEndingReminders(ctx)
	if err != nil {
		s.logger.Error("Failed to send course ending reminders", zap.Error(err))
		return
	}

	s.logger.Info("Course ending reminders completed", zap.Int("sent", sent))
}

// Package notify доставка уведомлений пользователям
package notify

import (
	"context"

	"github.com/Freeeeeet/trainer_scheduler/internal/model"
	"go.uber.org/zap"
)

// Kind тип уведомления
type Kind string

const (
	KindHoldApproved Kind = "HOLD_APPROVED"
	KindHoldRejected Kind = "HOLD_REJECTED"
	KindCourseEnding Kind = "COURSE_ENDING"
)

// Notifier отправляет уведомление пользователю
type Notifier interface {
	Notify(ctx context.Context, recipient *model.User, kind Kind, text string) error
}

// LogNotifier пишет уведомления в лог. Используется, когда Telegram не настроен.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, recipient *model.User, kind Kind, text string) error {
	n.logger.Info("Notification",
		zap.Int64("user_id", recipient.ID),
		zap.String("kind", string(kind)),
		zap.String("text", text),
	)
	return nil
}

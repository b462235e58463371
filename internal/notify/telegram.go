package notify

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/trainer_scheduler/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// MessageSender часть API *bot.Bot, нужная для отправки
type MessageSender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// TelegramNotifier отправляет уведомления в личный чат пользователя.
// Пользователи без привязанного Telegram пропускаются.
type TelegramNotifier struct {
	sender MessageSender
	logger *zap.Logger
}

func NewTelegramNotifier(sender MessageSender, logger *zap.Logger) *TelegramNotifier {
	return &TelegramNotifier{sender: sender, logger: logger}
}

func (n *TelegramNotifier) Notify(ctx context.Context, recipient *model.User, kind Kind, text string) error {
	if recipient.TelegramID == nil {
		n.logger.Debug("Recipient has no telegram chat, skipping",
			zap.Int64("user_id", recipient.ID),
			zap.String("kind", string(kind)),
		)
		return nil
	}

	_, err := n.sender.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: *recipient.TelegramID,
		Text:   prefix(kind) + text,
	})
	if err != nil {
		return fmt.Errorf("send telegram notification: %w", err)
	}

	return nil
}

func prefix(kind Kind) string {
	switch kind {
	case KindHoldApproved:
		return "✅ "
	case KindHoldRejected:
		return "❌ "
	case KindCourseEnding:
		return "⏳ "
	}
	return ""
}

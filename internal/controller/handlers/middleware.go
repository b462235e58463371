package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/Freeeeeet/trainer_scheduler/internal/model"
	"github.com/Freeeeeet/trainer_scheduler/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// RequireStaff пропускает команду только администраторам и менеджерам
func (h *Handlers) RequireStaff(next func(ctx context.Context, s Sender, msg *models.Message, staff *model.User)) Command {
	return func(ctx context.Context, s Sender, msg *models.Message) {
		if msg.From == nil {
			return
		}

		telegramID := msg.From.ID
		user, ok, err := h.userService.Staff(ctx, telegramID)
		switch {
		case errors.Is(err, service.ErrNotFound):
			h.sendError(ctx, s, msg.Chat.ID, fmt.Sprintf(
				"❌ Аккаунт не привязан.\n\nПередайте администратору ваш Telegram ID: %d", telegramID))
			return
		case err != nil:
			h.logger.Error("Failed to get user", zap.Int64("telegram_id", telegramID), zap.Error(err))
			h.sendError(ctx, s, msg.Chat.ID, "❌ Произошла ошибка. Попробуйте позже.")
			return
		case !ok:
			h.sendError(ctx, s, msg.Chat.ID, "❌ Эта команда доступна только администраторам и менеджерам.")
			return
		}

		next(ctx, s, msg, user)
	}
}

// replyServiceError переводит ошибку сервиса в ответ пользователю
func (h *Handlers) replyServiceError(ctx context.Context, s Sender, chatID int64, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		h.sendError(ctx, s, chatID, "❌ Неверные параметры: "+err.Error())
	case errors.Is(err, service.ErrNotFound):
		h.sendError(ctx, s, chatID, "❌ Не найдено: "+err.Error())
	default:
		h.logger.Error("Bot command failed", zap.Int64("chat_id", chatID), zap.Error(err))
		h.sendError(ctx, s, chatID, "❌ Произошла ошибка. Попробуйте позже.")
	}
}

// sendError отправляет сообщение об ошибке и логирует если не удалось
func (h *Handlers) sendError(ctx context.Context, s Sender, chatID int64, text string) {
	_, err := s.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		h.logger.Error("Failed to send error message",
			zap.Int64("chat_id", chatID),
			zap.String("text", text),
			zap.Error(err),
		)
	}
}

// sendMessage отправляет сообщение и логирует если не удалось
func (h *Handlers) sendMessage(ctx context.Context, s Sender, chatID int64, text string) {
	_, err := s.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		h.logger.Error("Failed to send message",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
	}
}

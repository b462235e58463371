package handlers

import (
	"context"
	"time"

	"github.com/Freeeeeet/trainer_scheduler/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// Sender часть API *bot.Bot, которой пользуются обработчики
type Sender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// Command обработчик текстовой команды
type Command func(ctx context.Context, s Sender, msg *models.Message)

// Handlers содержит все зависимости для обработки команд
type Handlers struct {
	userService         *service.UserService
	availabilityService *service.AvailabilityService
	holdService         *service.HoldService
	logger              *zap.Logger
	now                 func() time.Time
}

// NewHandlers создаёт новый обработчик команд
func NewHandlers(
	userService *service.UserService,
	availabilityService *service.AvailabilityService,
	holdService *service.HoldService,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		userService:         userService,
		availabilityService: availabilityService,
		holdService:         holdService,
		logger:              logger,
		now:                 time.Now,
	}
}

// Wrap адаптирует команду к сигнатуре обработчика go-telegram/bot
func Wrap(cmd Command) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		if update.Message == nil {
			return
		}
		cmd(ctx, b, update.Message)
	}
}

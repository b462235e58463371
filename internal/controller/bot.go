package controller

import (
	"context"

	"github.com/Freeeeeet/trainer_scheduler/internal/controller/handlers"
	"github.com/Freeeeeet/trainer_scheduler/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// BotController Telegram-бот для администраторов и менеджеров
type BotController struct {
	bot      *bot.Bot
	handlers *handlers.Handlers
	logger   *zap.Logger
}

func NewBotController(
	botInstance *bot.Bot,
	userService *service.UserService,
	availabilityService *service.AvailabilityService,
	holdService *service.HoldService,
	logger *zap.Logger,
) *BotController {
	return &BotController{
		bot:      botInstance,
		handlers: handlers.NewHandlers(userService, availabilityService, holdService, logger),
		logger:   logger,
	}
}

// RegisterHandlers регистрирует все обработчики команд
func (c *BotController) RegisterHandlers(ctx context.Context) error {
	h := c.handlers

	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, handlers.Wrap(h.HandleStart))
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypeExact, handlers.Wrap(h.HandleHelp))

	// Команды для персонала, аргументы идут после команды
	staff := map[string]handlers.Command{
		"/free":     h.RequireStaff(h.HandleFree),
		"/week":     h.RequireStaff(h.HandleWeek),
		"/timeline": h.RequireStaff(h.HandleTimeline),
		"/holds":    h.RequireStaff(h.HandleHolds),
		"/active":   h.RequireStaff(h.HandleActive),
		"/approve":  h.RequireStaff(h.HandleApprove),
		"/reject":   h.RequireStaff(h.HandleReject),
	}
	for command, cmd := range staff {
		c.bot.RegisterHandler(bot.HandlerTypeMessageText, command, bot.MatchTypePrefix, handlers.Wrap(cmd))
	}

	// Устанавливаем меню команд
	return c.setCommands(ctx)
}

// setCommands устанавливает список команд в меню бота
func (c *BotController) setCommands(ctx context.Context) error {
	commands := []models.BotCommand{
		{Command: "start", Description: "🚀 Начать работу с ботом"},
		{Command: "help", Description: "❓ Справка по командам"},
		{Command: "free", Description: "🔎 Свободные тренеры на день"},
		{Command: "week", Description: "📅 Свободные тренеры на неделю"},
		{Command: "timeline", Description: "🗓 Расписание тренера на день"},
		{Command: "holds", Description: "📋 Заявки на заморозку"},
		{Command: "active", Description: "❄️ Действующие заморозки"},
	}

	_, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: commands,
	})

	if err != nil {
		c.logger.Error("Failed to set bot commands", zap.Error(err))
		return err
	}

	c.logger.Info("✅ Bot commands menu set")
	return nil
}

// Start запускает бота и блокируется до отмены контекста
func (c *BotController) Start(ctx context.Context) {
	c.logger.Info("Starting bot...")
	c.bot.Start(ctx)
}

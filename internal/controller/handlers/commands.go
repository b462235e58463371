package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Freeeeeet/trainer_scheduler/internal/controller/formatting"
	"github.com/Freeeeeet/trainer_scheduler/internal/model"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

const (
	usageFree     = "Использование: /free ЧЧ:ММ МИНУТЫ [ДД.ММ.ГГГГ]\nПример: /free 10:00 60"
	usageWeek     = "Использование: /week ЧЧ:ММ МИНУТЫ [ДД.ММ.ГГГГ]\nПример: /week 18:30 90 01.09.2024"
	usageTimeline = "Использование: /timeline ID_ТРЕНЕРА [ДД.ММ.ГГГГ]"
	usageApprove  = "Использование: /approve ID_ЗАЯВКИ"
	usageReject   = "Использование: /reject ID_ЗАЯВКИ"
)

// HandleStart обрабатывает команду /start
func (h *Handlers) HandleStart(ctx context.Context, s Sender, msg *models.Message) {
	if msg.From == nil {
		return
	}

	user, err := h.userService.GetByTelegramID(ctx, msg.From.ID)
	if err != nil {
		h.logger.Error("Failed to get user", zap.Int64("telegram_id", msg.From.ID), zap.Error(err))
		h.sendError(ctx, s, msg.Chat.ID, "❌ Произошла ошибка. Попробуйте позже.")
		return
	}

	if user == nil {
		h.sendMessage(ctx, s, msg.Chat.ID, fmt.Sprintf(
			"👋 Привет, %s!\n\n"+
				"Ваш аккаунт пока не привязан к учебному центру.\n"+
				"Передайте администратору ваш Telegram ID: %d",
			msg.From.FirstName, msg.From.ID,
		))
		return
	}

	text := fmt.Sprintf("👋 Привет, %s!\n\n", user.FullName())
	if user.Role.IsStaff() {
		text += "Вы будете получать уведомления об окончании курсов.\n\n" + helpText
	} else {
		text += "Сюда будут приходить уведомления о ваших курсах и заявках на заморозку."
	}
	h.sendMessage(ctx, s, msg.Chat.ID, text)
}

const helpText = "📚 Справка по командам:\n\n" +
	"/free ЧЧ:ММ МИНУТЫ [ДАТА] - Свободные тренеры на день\n" +
	"/week ЧЧ:ММ МИНУТЫ [ДАТА] - Свободные тренеры на неделю вперёд\n" +
	"/timeline ID [ДАТА] - Расписание тренера на день\n" +
	"/holds - Заявки на заморозку\n" +
	"/active [ДАТА] - Действующие заморозки\n" +
	"/approve ID - Одобрить заявку\n" +
	"/reject ID - Отклонить заявку\n" +
	"/help - Показать эту справку\n\n" +
	"Дата в формате ДД.ММ.ГГГГ, по умолчанию сегодня."

// HandleHelp обрабатывает команду /help
func (h *Handlers) HandleHelp(ctx context.Context, s Sender, msg *models.Message) {
	h.sendMessage(ctx, s, msg.Chat.ID, helpText)
}

// HandleFree обрабатывает команду /free - свободные тренеры на один день
func (h *Handlers) HandleFree(ctx context.Context, s Sender, msg *models.Message, _ *model.User) {
	start, minutes, date, err := h.parseSlotArgs(commandArgs(msg.Text))
	if err != nil {
		h.sendError(ctx, s, msg.Chat.ID, "❌ "+err.Error()+"\n\n"+usageFree)
		return
	}

	available, err := h.availabilityService.QuerySingleDay(ctx, start, minutes, date)
	if err != nil {
		h.replyServiceError(ctx, s, msg.Chat.ID, err)
		return
	}

	h.sendMessage(ctx, s, msg.Chat.ID, FormatSingleDay(start, minutes, date, available))
}

// HandleWeek обрабатывает команду /week - свободные тренеры на неделю вперёд
func (h *Handlers) HandleWeek(ctx context.Context, s Sender, msg *models.Message, _ *model.User) {
	start, minutes, date, err := h.parseSlotArgs(commandArgs(msg.Text))
	if err != nil {
		h.sendError(ctx, s, msg.Chat.ID, "❌ "+err.Error()+"\n\n"+usageWeek)
		return
	}

	week, err := h.availabilityService.QueryWeek(ctx, start, minutes, date)
	if err != nil {
		h.replyServiceError(ctx, s, msg.Chat.ID, err)
		return
	}

	h.sendMessage(ctx, s, msg.Chat.ID, FormatWeek(start, minutes, date, week))
}

// HandleTimeline обрабатывает команду /timeline - шкала занятости тренера
func (h *Handlers) HandleTimeline(ctx context.Context, s Sender, msg *models.Message, _ *model.User) {
	args := commandArgs(msg.Text)
	if len(args) < 1 || len(args) > 2 {
		h.sendError(ctx, s, msg.Chat.ID, usageTimeline)
		return
	}

	trainerID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || trainerID <= 0 {
		h.sendError(ctx, s, msg.Chat.ID, "❌ Неверный ID тренера\n\n"+usageTimeline)
		return
	}
	date, err := h.dateArg(args[1:])
	if err != nil {
		h.sendError(ctx, s, msg.Chat.ID, "❌ "+err.Error()+"\n\n"+usageTimeline)
		return
	}

	timeline, err := h.availabilityService.DayTimeline(ctx, trainerID, date)
	if err != nil {
		h.replyServiceError(ctx, s, msg.Chat.ID, err)
		return
	}

	h.sendMessage(ctx, s, msg.Chat.ID, FormatTimeline(trainerID, date, timeline))
}

// HandleHolds обрабатывает команду /holds - необработанные заявки на заморозку
func (h *Handlers) HandleHolds(ctx context.Context, s Sender, msg *models.Message, _ *model.User) {
	holds, err := h.holdService.ListPending(ctx)
	if err != nil {
		h.replyServiceError(ctx, s, msg.Chat.ID, err)
		return
	}

	h.sendMessage(ctx, s, msg.Chat.ID, FormatPendingHolds(holds))
}

// HandleActive обрабатывает команду /active - заморозки, действующие на дату
func (h *Handlers) HandleActive(ctx context.Context, s Sender, msg *models.Message, _ *model.User) {
	date, err := h.dateArg(commandArgs(msg.Text))
	if err != nil {
		h.sendError(ctx, s, msg.Chat.ID, "❌ "+err.Error())
		return
	}

	active, err := h.holdService.ListActive(ctx, date)
	if err != nil {
		h.replyServiceError(ctx, s, msg.Chat.ID, err)
		return
	}

	h.sendMessage(ctx, s, msg.Chat.ID, FormatActiveHolds(date, active))
}

// HandleApprove обрабатывает команду /approve
func (h *Handlers) HandleApprove(ctx context.Context, s Sender, msg *models.Message, staff *model.User) {
	h.decideHold(ctx, s, msg, staff, model.HoldStatusApproved)
}

// HandleReject обрабатывает команду /reject
func (h *Handlers) HandleReject(ctx context.Context, s Sender, msg *models.Message, staff *model.User) {
	h.decideHold(ctx, s, msg, staff, model.HoldStatusRejected)
}

func (h *Handlers) decideHold(ctx context.Context, s Sender, msg *models.Message, staff *model.User, status model.HoldStatus) {
	usage := usageApprove
	if status == model.HoldStatusRejected {
		usage = usageReject
	}

	args := commandArgs(msg.Text)
	if len(args) != 1 {
		h.sendError(ctx, s, msg.Chat.ID, usage)
		return
	}
	holdID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || holdID <= 0 {
		h.sendError(ctx, s, msg.Chat.ID, "❌ Неверный ID заявки\n\n"+usage)
		return
	}

	var applied bool
	if status == model.HoldStatusApproved {
		applied, err = h.holdService.Approve(ctx, holdID, staff.ID)
	} else {
		applied, err = h.holdService.Reject(ctx, holdID, staff.ID)
	}
	if err != nil {
		h.replyServiceError(ctx, s, msg.Chat.ID, err)
		return
	}

	switch {
	case !applied:
		h.sendMessage(ctx, s, msg.Chat.ID, fmt.Sprintf("ℹ️ Заявка #%d уже обработана.", holdID))
	case status == model.HoldStatusApproved:
		h.sendMessage(ctx, s, msg.Chat.ID, fmt.Sprintf("✅ Заявка #%d одобрена. Курс продлён, студент уведомлён.", holdID))
	default:
		h.sendMessage(ctx, s, msg.Chat.ID, fmt.Sprintf("❌ Заявка #%d отклонена. Студент уведомлён.", holdID))
	}
}

// replyError текст ошибки разбора, показывается пользователю как есть
type replyError string

func (e replyError) Error() string { return string(e) }

// commandArgs аргументы команды без самой команды
func commandArgs(text string) []string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil
	}
	return fields[1:]
}

// parseSlotArgs разбирает "ЧЧ:ММ МИНУТЫ [ДАТА]"
func (h *Handlers) parseSlotArgs(args []string) (model.TimeOfDay, int, time.Time, error) {
	if len(args) < 2 || len(args) > 3 {
		return 0, 0, time.Time{}, replyError("Укажите время начала и длительность")
	}

	start, err := model.ParseTimeOfDay(args[0])
	if err != nil {
		return 0, 0, time.Time{}, replyError(fmt.Sprintf("Неверное время %q", args[0]))
	}
	minutes, err := strconv.Atoi(args[1])
	if err != nil {
		return 0, 0, time.Time{}, replyError(fmt.Sprintf("Неверная длительность %q", args[1]))
	}

	date, err := h.dateArg(args[2:])
	if err != nil {
		return 0, 0, time.Time{}, err
	}

	return start, minutes, date, nil
}

// dateArg дата из необязательного аргумента, по умолчанию сегодня
func (h *Handlers) dateArg(args []string) (time.Time, error) {
	switch len(args) {
	case 0:
		return model.DateOf(h.now()), nil
	case 1:
		date, err := formatting.ParseDate(args[0])
		if err != nil {
			return time.Time{}, replyError(fmt.Sprintf("Неверная дата %q, ожидается ДД.ММ.ГГГГ", args[0]))
		}
		return date, nil
	}
	return time.Time{}, replyError("Слишком много аргументов")
}

package handlers

import (
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/trainer_scheduler/internal/controller/formatting"
	"github.com/Freeeeeet/trainer_scheduler/internal/model"
)

// FormatSingleDay форматирует свободных тренеров на день
func FormatSingleDay(start model.TimeOfDay, minutes int, date time.Time, available []model.TrainerAvailability) string {
	end := start.Add(time.Duration(minutes) * time.Minute)
	header := fmt.Sprintf("🔎 %s, %s (%s)\n\n",
		formatting.FormatDateWithWeekday(date),
		formatting.FormatTimeRange(start, end),
		formatting.FormatDuration(minutes),
	)

	if len(available) == 0 {
		return header + "😔 Свободных тренеров нет."
	}

	var sb strings.Builder
	sb.WriteString(header)
	sb.WriteString(fmt.Sprintf("Свободно %d %s:\n\n", len(available), formatting.PluralizeTrainers(len(available))))
	for _, a := range available {
		sb.WriteString(fmt.Sprintf("👤 %s (ID %d)\n   занято %s ч из %s, доступно %s ч\n",
			a.Trainer.Name,
			a.Trainer.UserID,
			formatting.FormatHours(a.OccupiedHours),
			formatting.FormatHours(a.ApprovedHours),
			formatting.FormatHours(a.AvailableHours),
		))
	}
	return sb.String()
}

// FormatWeek форматирует доступность тренеров на неделю вперёд: ✅ свободен, ❌ занят
func FormatWeek(start model.TimeOfDay, minutes int, startDate time.Time, week []model.TrainerWeekAvailability) string {
	end := start.Add(time.Duration(minutes) * time.Minute)
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📅 С %s, %s\n\n",
		formatting.FormatDateWithWeekday(startDate),
		formatting.FormatTimeRange(start, end),
	))

	if len(week) == 0 {
		sb.WriteString("Тренеров нет.")
		return sb.String()
	}

	for _, t := range week {
		marks := make([]string, 0, len(t.Availability))
		for _, d := range t.Availability {
			mark := "❌"
			if d.IsAvailable {
				mark = "✅"
			}
			marks = append(marks, formatting.GetWeekdayShortName(int(d.Date.Weekday()))+mark)
		}

		summary := "занят всю неделю"
		switch {
		case t.AvailableToday:
			summary = "свободен сегодня"
		case t.AvailableWithinWeek:
			summary = "свободен в течение недели"
		}

		sb.WriteString(fmt.Sprintf("👤 %s (ID %d): %s\n   %s\n", t.Trainer.Name, t.Trainer.UserID, summary, strings.Join(marks, " ")))
	}
	return sb.String()
}

// FormatTimeline форматирует дневную шкалу тренера
func FormatTimeline(trainerID int64, date time.Time, timeline []model.TimelineEntry) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🗓 Тренер ID %d, %s\n\n", trainerID, formatting.FormatDateWithWeekday(date)))
	for _, e := range timeline {
		if e.Available {
			sb.WriteString(fmt.Sprintf("🟢 %s свободно\n", formatting.FormatTimeRange(e.Start, e.End)))
			continue
		}
		sb.WriteString(fmt.Sprintf("🔴 %s %s\n", formatting.FormatTimeRange(e.Start, e.End), e.Course))
	}
	return sb.String()
}

// FormatPendingHolds форматирует необработанные заявки на заморозку
func FormatPendingHolds(holds []*model.CourseHold) string {
	if len(holds) == 0 {
		return "📭 Необработанных заявок нет."
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📋 %d %s на заморозку:\n\n", len(holds), formatting.PluralizeHolds(len(holds))))
	for _, hold := range holds {
		days := hold.ExtensionDays()
		sb.WriteString(fmt.Sprintf("#%d запись %d: %s - %s (%d %s)\n   %s\n",
			hold.ID,
			hold.PersonalSlotID,
			formatting.FormatDate(hold.StartDate),
			formatting.FormatDate(hold.EndDate),
			days, formatting.PluralizeDays(days),
			hold.Reason,
		))
	}
	sb.WriteString("\n/approve ID или /reject ID")
	return sb.String()
}

// FormatActiveHolds форматирует заморозки, действующие на дату
func FormatActiveHolds(date time.Time, active []*model.CourseHoldHistory) string {
	if len(active) == 0 {
		return fmt.Sprintf("На %s заморозок нет.", formatting.FormatDate(date))
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("❄️ Заморозки на %s:\n\n", formatting.FormatDate(date)))
	for _, h := range active {
		sb.WriteString(fmt.Sprintf("#%d студент %d, запись %d: %s - %s\n",
			h.HoldID,
			h.StudentID,
			h.PersonalSlotID,
			formatting.FormatDate(h.StartDate),
			formatting.FormatDate(h.EndDate),
		))
	}
	return sb.String()
}

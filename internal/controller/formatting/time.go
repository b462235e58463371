package formatting

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Freeeeeet/trainer_scheduler/internal/model"
)

// DateLayout формат дат в сообщениях бота
const DateLayout = "02.01.2006"

// FormatDate форматирует только дату
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// FormatDateWithWeekday форматирует дату с коротким днём недели
func FormatDateWithWeekday(t time.Time) string {
	return fmt.Sprintf("%s %s", GetWeekdayShortName(int(t.Weekday())), t.Format(DateLayout))
}

// ParseDate разбирает дату в формате ДД.ММ.ГГГГ или ГГГГ-ММ-ДД
func ParseDate(s string) (time.Time, error) {
	if d, err := time.Parse(DateLayout, s); err == nil {
		return d, nil
	}
	return model.ParseDate(s)
}

// FormatTimeRange форматирует диапазон времени
func FormatTimeRange(start, end model.TimeOfDay) string {
	return fmt.Sprintf("%s-%s", start, end)
}

// FormatDuration форматирует длительность в минутах
func FormatDuration(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%d мин", minutes)
	}
	hours := minutes / 60
	mins := minutes % 60
	if mins == 0 {
		return fmt.Sprintf("%d ч", hours)
	}
	return fmt.Sprintf("%d ч %d мин", hours, mins)
}

// FormatHours форматирует дробное число часов: 1.5 -> "1,5"
func FormatHours(hours float64) string {
	return strings.Replace(strconv.FormatFloat(hours, 'f', -1, 64), ".", ",", 1)
}

// GetWeekdayShortName возвращает краткое название дня недели на русском
func GetWeekdayShortName(weekday int) string {
	names := []string{"Вс", "Пн", "Вт", "Ср", "Чт", "Пт", "Сб"}
	if weekday >= 0 && weekday < len(names) {
		return names[weekday]
	}
	return "?"
}

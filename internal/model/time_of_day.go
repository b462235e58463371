package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeOfDay время суток в минутах от полуночи (00:00 = 0, 24:00 = 1440)
type TimeOfDay int

const (
	MinutesPerDay = 24 * 60

	Midnight  TimeOfDay = 0
	EndOfDay  TimeOfDay = MinutesPerDay - 1 // 23:59, конец дневной шкалы
	DayLength TimeOfDay = MinutesPerDay
)

// NewTimeOfDay создаёт время из часов и минут
func NewTimeOfDay(hour, minute int) TimeOfDay {
	return TimeOfDay(hour*60 + minute)
}

// ParseTimeOfDay разбирает строки вида "HH:MM" и "HH:MM:SS".
// Секунды допускаются только нулевые.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", s)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || len(parts[0]) > 2 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || len(parts[1]) != 2 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	if len(parts) == 3 {
		sec, err := strconv.Atoi(parts[2])
		if err != nil || sec != 0 {
			return 0, fmt.Errorf("invalid seconds in %q", s)
		}
	}

	if hour < 0 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("time %q out of range", s)
	}
	t := NewTimeOfDay(hour, minute)
	if t > DayLength {
		return 0, fmt.Errorf("time %q out of range", s)
	}

	return t, nil
}

// MustParseTimeOfDay как ParseTimeOfDay, но паникует на ошибке (для тестов и констант)
func MustParseTimeOfDay(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

func (t TimeOfDay) Hour() int   { return int(t) / 60 }
func (t TimeOfDay) Minute() int { return int(t) % 60 }

// Add сдвигает время на duration. Результат может выйти за 24:00,
// проверку диапазона делает вызывающий код.
func (t TimeOfDay) Add(d time.Duration) TimeOfDay {
	return t + TimeOfDay(d/time.Minute)
}

// Sub возвращает разницу t - other
func (t TimeOfDay) Sub(other TimeOfDay) time.Duration {
	return time.Duration(t-other) * time.Minute
}

// Valid проверяет что время в пределах суток
func (t TimeOfDay) Valid() bool {
	return t >= Midnight && t <= DayLength
}

// On возвращает момент времени в указанную дату
func (t TimeOfDay) On(date time.Time) time.Time {
	d := DateOf(date)
	return d.Add(time.Duration(t) * time.Minute)
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TimeOfDay) UnmarshalText(b []byte) error {
	parsed, err := ParseTimeOfDay(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// TimeRange полуоткрытый интервал [Start, End) внутри суток
type TimeRange struct {
	Start TimeOfDay `json:"start"`
	End   TimeOfDay `json:"end"`
}

// Overlaps проверяет пересечение полуоткрытых интервалов.
// Смежные интервалы (a.End == b.Start) не пересекаются.
func (r TimeRange) Overlaps(other TimeRange) bool {
	return r.Start < other.End && r.End > other.Start
}

// Empty true для интервалов нулевой или отрицательной длины
func (r TimeRange) Empty() bool {
	return r.End <= r.Start
}

func (r TimeRange) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

func (r TimeRange) String() string {
	return r.Start.String() + "-" + r.End.String()
}

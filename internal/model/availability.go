package model

import "time"

// OccupiedSlot занятый интервал тренера в конкретный день
type OccupiedSlot struct {
	Start      TimeOfDay `json:"start"`
	End        TimeOfDay `json:"end"`
	CourseName string    `json:"course_name"`
	IsGroup    bool      `json:"is_group"`
}

// Duration длительность занятого интервала
func (s OccupiedSlot) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// TimelineEntry элемент дневной шкалы тренера
type TimelineEntry struct {
	Start     TimeOfDay `json:"start"`
	End       TimeOfDay `json:"end"`
	Available bool      `json:"available"`
	Course    string    `json:"course,omitempty"`
}

// TrainerAvailability результат поиска свободных тренеров на один день
type TrainerAvailability struct {
	Trainer        *Trainer `json:"trainer"`
	OccupiedHours  float64  `json:"occupied_hours"`
	ApprovedHours  float64  `json:"approved_hours"`
	AvailableHours float64  `json:"available_hours"`
}

// DayAvailability вердикт по одному дню
type DayAvailability struct {
	Date        time.Time `json:"date"`
	IsAvailable bool      `json:"is_available"`
}

// WeekAheadDays количество проверяемых дней: сегодня + 7
const WeekAheadDays = 8

// TrainerWeekAvailability результат расширенного поиска на неделю вперёд
type TrainerWeekAvailability struct {
	Trainer             *Trainer          `json:"trainer"`
	AvailableToday      bool              `json:"available_today"`
	AvailableWithinWeek bool              `json:"available_within_week"`
	Availability        []DayAvailability `json:"availability"`
}

// ScheduleEntry строка расписания тренера или курса
type ScheduleEntry struct {
	AssignmentID int64     `json:"assignment_id"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	StartTime    TimeOfDay `json:"start_time"`
	EndTime      TimeOfDay `json:"end_time"`
	Course       string    `json:"course,omitempty"`
	Trainer      string    `json:"trainer,omitempty"`
	IsGroup      bool      `json:"is_group"`
}

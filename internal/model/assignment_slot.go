package model

import (
	"time"

	"github.com/google/uuid"
)

// AssignmentSlot регулярное занятие тренера: каждый день диапазона дат
// в интервале [StartTime, EndTime)
type AssignmentSlot struct {
	ID             int64         `json:"id"`
	GroupID        uuid.UUID     `json:"group_id"` // пачка назначений, созданных одной операцией
	TrainerID      int64         `json:"trainer_id"`
	CourseID       int64         `json:"course_id"`
	PersonalSlotID *int64        `json:"personal_slot_id"` // nil для групповых курсов
	StartDate      time.Time     `json:"start_date"`
	EndDate        time.Time     `json:"end_date"`
	StartTime      TimeOfDay     `json:"start_time"`
	EndTime        TimeOfDay     `json:"end_time"`
	Duration       time.Duration `json:"duration"`
	CreatedAt      time.Time     `json:"created_at"`

	// Дополнительные поля для удобства (не из таблицы назначений)
	CourseName  string `json:"course_name,omitempty"`
	IsGroup     bool   `json:"is_group"`
	TrainerName string `json:"trainer_name,omitempty"`
}

// Dates диапазон дат назначения
func (a *AssignmentSlot) Dates() DateRange {
	return DateRange{Start: a.StartDate, End: a.EndDate}
}

// Times дневной интервал назначения
func (a *AssignmentSlot) Times() TimeRange {
	return TimeRange{Start: a.StartTime, End: a.EndTime}
}

// ActiveOn проверяет что назначение действует в указанную дату
func (a *AssignmentSlot) ActiveOn(date time.Time) bool {
	return a.Dates().Contains(date)
}

// DeriveDuration пересчитывает длительность из времени начала и конца
func (a *AssignmentSlot) DeriveDuration() {
	a.Duration = a.EndTime.Sub(a.StartTime)
}

package model

import "time"

// PersonalSlotDuration фиксированная длительность индивидуального занятия
const PersonalSlotDuration = time.Hour

// PersonalSlot запись студента на индивидуальный курс
type PersonalSlot struct {
	ID        int64     `json:"id"`
	StudentID int64     `json:"student_id"`
	CourseID  int64     `json:"course_id"`
	TrainerID *int64    `json:"trainer_id"` // nil - студент ждёт назначения тренера
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	ClassTime TimeOfDay `json:"class_time"`
	CreatedAt time.Time `json:"created_at"`

	// Дополнительные поля для удобства (не из таблицы записей)
	CourseName string `json:"course_name,omitempty"`
	IsGroup    bool   `json:"is_group"`
}

// Dates диапазон дат курса
func (p *PersonalSlot) Dates() DateRange {
	return DateRange{Start: p.StartDate, End: p.EndDate}
}

// Window дневное окно занятия [ClassTime, ClassTime+1h)
func (p *PersonalSlot) Window() TimeRange {
	return TimeRange{Start: p.ClassTime, End: p.ClassTime.Add(PersonalSlotDuration)}
}

// ActiveOn проверяет что курс идёт в указанную дату
func (p *PersonalSlot) ActiveOn(date time.Time) bool {
	return p.Dates().Contains(date)
}

// HasTrainer true если у записи есть тренер
func (p *PersonalSlot) HasTrainer() bool {
	return p.TrainerID != nil
}

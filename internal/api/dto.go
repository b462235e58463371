package api

import (
	"time"

	"github.com/Freeeeeet/trainer_scheduler/internal/model"
)

// Времена передаются строками "HH:MM", даты "YYYY-MM-DD"

type CreateAssignmentRequest struct {
	TrainerID       int64  `json:"trainer_id" validate:"required,gt=0"`
	CourseID        int64  `json:"course_id" validate:"required,gt=0"`
	PersonalSlotID  *int64 `json:"personal_slot_id" validate:"omitempty,gt=0"`
	StartDate       string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate         string `json:"end_date" validate:"required,datetime=2006-01-02"`
	StartTime       string `json:"start_time" validate:"required"`
	EndTime         string `json:"end_time" validate:"required"`
	DurationMinutes *int   `json:"duration_minutes" validate:"omitempty,gt=0,lte=1440"`
}

type UpdateAssignmentRequest struct {
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
}

type GroupTrainerRequest struct {
	TrainerID int64  `json:"trainer_id" validate:"required,gt=0"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
}

type AssignGroupTrainersRequest struct {
	Trainers []GroupTrainerRequest `json:"trainers" validate:"required,min=1,dive"`
}

type EnrollRequest struct {
	StudentID int64  `json:"student_id" validate:"required,gt=0"`
	CourseID  int64  `json:"course_id" validate:"required,gt=0"`
	TrainerID *int64 `json:"trainer_id" validate:"omitempty,gt=0"`
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
	ClassTime string `json:"class_time" validate:"required"`
}

type ReassignRequest struct {
	TrainerID int64 `json:"trainer_id" validate:"required,gt=0"`
}

type ExtendRequest struct {
	EndDate string `json:"end_date" validate:"required,datetime=2006-01-02"`
}

type CreateHoldRequest struct {
	PersonalSlotID int64  `json:"personal_slot_id" validate:"required,gt=0"`
	StartDate      string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate        string `json:"end_date" validate:"required,datetime=2006-01-02"`
	Reason         string `json:"reason" validate:"required,max=1000"`
}

type OccupationResponse struct {
	TrainerID     int64                `json:"trainer_id"`
	Date          string               `json:"date"`
	OccupiedHours float64              `json:"occupied_hours"`
	Slots         []model.OccupiedSlot `json:"slots"`
}

type CourseScheduleResponse struct {
	CourseID   int64                 `json:"course_id"`
	From       string                `json:"from"`
	To         string                `json:"to"`
	TotalHours float64               `json:"total_hours"`
	Schedule   []model.ScheduleEntry `json:"schedule"`
}

type HoldDecisionResponse struct {
	HoldID  int64            `json:"hold_id"`
	Status  model.HoldStatus `json:"status"`
	Applied bool             `json:"applied"` // false - заявка уже была обработана
}

type ErrorResponse struct {
	Error   string            `json:"error"`
	Details string            `json:"details,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func formatDate(t time.Time) string {
	return t.Format(model.DateLayout)
}

package model

import (
	"time"

	"github.com/google/uuid"
)

type HoldStatus string

const (
	HoldStatusPending  HoldStatus = "PENDING"
	HoldStatusApproved HoldStatus = "APPROVED"
	HoldStatusRejected HoldStatus = "REJECTED"
)

// CourseHold заявка на заморозку индивидуального курса.
// В таблице живут только необработанные заявки: после решения
// запись переносится в CourseHoldHistory.
type CourseHold struct {
	ID             int64      `json:"id"`
	PersonalSlotID int64      `json:"personal_slot_id"`
	StartDate      time.Time  `json:"start_date"`
	EndDate        time.Time  `json:"end_date"`
	Reason         string     `json:"reason"`
	Status         HoldStatus `json:"status"`
	RequestedBy    *int64     `json:"requested_by"`
	ApprovedBy     *int64     `json:"approved_by"`
	Processed      bool       `json:"processed"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// IsPending checks if hold is still waiting for a decision
func (h *CourseHold) IsPending() bool {
	return h.Status == HoldStatusPending
}

// Dates диапазон заморозки
func (h *CourseHold) Dates() DateRange {
	return DateRange{Start: h.StartDate, End: h.EndDate}
}

// ExtensionDays на сколько дней продлевается курс при одобрении
func (h *CourseHold) ExtensionDays() int {
	return DaysInclusive(h.StartDate, h.EndDate)
}

// CourseHoldHistory след обработанной заявки
type CourseHoldHistory struct {
	ID             uuid.UUID  `json:"id"`
	HoldID         int64      `json:"hold_id"`
	PersonalSlotID int64      `json:"personal_slot_id"`
	StudentID      int64      `json:"student_id"`
	StartDate      time.Time  `json:"start_date"`
	EndDate        time.Time  `json:"end_date"`
	Reason         string     `json:"reason"`
	Status         HoldStatus `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Dates диапазон заморозки
func (h *CourseHoldHistory) Dates() DateRange {
	return DateRange{Start: h.StartDate, End: h.EndDate}
}

package model

import "time"

// Role роль пользователя в учебном центре
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleManager Role = "MANAGER"
	RoleTrainer Role = "TRAINER"
	RoleStudent Role = "STUDENT"
)

// Valid проверяет что роль из известного набора
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleTrainer, RoleStudent:
		return true
	}
	return false
}

// IsStaff true для администраторов и менеджеров
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleManager
}

type User struct {
	ID         int64     `json:"id"`
	Username   string    `json:"username"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Role       Role      `json:"role"`
	TelegramID *int64    `json:"telegram_id,omitempty"` // nil - уведомления в Telegram не отправляются
	CreatedAt  time.Time `json:"created_at"`
}

// FullName имя для отображения
func (u *User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	}
	return u.Username
}

// Trainer профиль тренера
type Trainer struct {
	UserID        int64  `json:"user_id"`
	Name          string `json:"name"`
	ApprovedHours *int   `json:"approved_hours"` // nil - лимит не задан
}

// ApprovedHoursOrZero лимит часов, 0 если не задан
func (t *Trainer) ApprovedHoursOrZero() float64 {
	if t.ApprovedHours == nil {
		return 0
	}
	return float64(*t.ApprovedHours)
}

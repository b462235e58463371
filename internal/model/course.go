package model

import "time"

type Course struct {
	ID            int64         `json:"id"`
	Name          string        `json:"name"`
	Description   string        `json:"description"`
	ClassDuration time.Duration `json:"class_duration"`
	IsGroupClass  bool          `json:"is_group_class"`
	CreatedAt     time.Time     `json:"created_at"`
}

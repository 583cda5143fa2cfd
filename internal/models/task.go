package models

import (
	"time"
)

type TaskPriority int

const (
	PriorityLow    TaskPriority = 1
	PriorityMedium TaskPriority = 2
	PriorityHigh   TaskPriority = 3
)

// Valid reports whether p is one of the known priorities.
func (p TaskPriority) Valid() bool {
	return p >= PriorityLow && p <= PriorityHigh
}

func (p TaskPriority) String() string {
	switch p {
	case PriorityLow:
		return "Low"
	case PriorityMedium:
		return "Medium"
	case PriorityHigh:
		return "High"
	default:
		return "Unknown"
	}
}

type Task struct {
	ID          uint64       `gorm:"primarykey" json:"id"`
	Name        string       `gorm:"type:varchar(255);not null" json:"name"`
	Description string       `gorm:"type:text" json:"description"`
	Priority    TaskPriority `gorm:"not null;default:2" json:"priority"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`

	// Relations
	Assignments []TaskAssignment `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"assignments,omitempty"`
}

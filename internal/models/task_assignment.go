package models

import (
	"time"
)

type AssignmentStatus string

const (
	AssignmentStatusPending    AssignmentStatus = "pending"
	AssignmentStatusInProgress AssignmentStatus = "in_progress"
	AssignmentStatusReview     AssignmentStatus = "review"
	AssignmentStatusCompleted  AssignmentStatus = "completed"
	AssignmentStatusBlocked    AssignmentStatus = "blocked"
)

// assignmentTransitions whitelists the legal status moves.
var assignmentTransitions = map[AssignmentStatus][]AssignmentStatus{
	AssignmentStatusPending:    {AssignmentStatusInProgress, AssignmentStatusBlocked},
	AssignmentStatusInProgress: {AssignmentStatusReview, AssignmentStatusBlocked},
	AssignmentStatusReview:     {AssignmentStatusCompleted, AssignmentStatusInProgress, AssignmentStatusBlocked},
	AssignmentStatusBlocked:    {AssignmentStatusPending, AssignmentStatusInProgress},
	AssignmentStatusCompleted:  {},
}

// ParseAssignmentStatus converts a raw value into an AssignmentStatus.
func ParseAssignmentStatus(raw string) (AssignmentStatus, bool) {
	status := AssignmentStatus(raw)
	if !status.Valid() {
		return "", false
	}
	return status, true
}

func (s AssignmentStatus) Valid() bool {
	_, ok := assignmentTransitions[s]
	return ok
}

// Label returns the human readable status name.
func (s AssignmentStatus) Label() string {
	switch s {
	case AssignmentStatusPending:
		return "Pending"
	case AssignmentStatusInProgress:
		return "In Progress"
	case AssignmentStatusReview:
		return "Under Review"
	case AssignmentStatusCompleted:
		return "Completed"
	case AssignmentStatusBlocked:
		return "Blocked"
	default:
		return string(s)
	}
}

// IsTerminal reports whether no transition leaves s.
func (s AssignmentStatus) IsTerminal() bool {
	return s.Valid() && len(assignmentTransitions[s]) == 0
}

// CanTransitionTo reports whether moving from s to next is allowed.
func (s AssignmentStatus) CanTransitionTo(next AssignmentStatus) bool {
	for _, allowed := range assignmentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type TaskAssignment struct {
	ID                uint64           `gorm:"primarykey" json:"id"`
	UserID            uint64           `gorm:"not null;uniqueIndex:idx_task_assignments_user_task,priority:1" json:"user_id"`
	TaskID            uint64           `gorm:"not null;uniqueIndex:idx_task_assignments_user_task,priority:2;index:idx_task_assignments_task_id" json:"task_id"`
	AssignedByID      *uint64          `gorm:"index:idx_task_assignments_assigned_by" json:"assigned_by"`
	Status            AssignmentStatus `gorm:"type:varchar(20);not null;default:'pending';index:idx_task_assignments_status" json:"status"`
	IsPrimaryAssignee bool             `gorm:"not null;default:false" json:"is_primary_assignee"`
	CompletedAt       *time.Time       `json:"completed_at"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`

	// Relations
	User       *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Task       *Task `gorm:"foreignKey:TaskID" json:"task,omitempty"`
	AssignedBy *User `gorm:"foreignKey:AssignedByID;constraint:OnDelete:SET NULL" json:"-"`
}

// TransitionTo moves the assignment to next, stamping CompletedAt when the
// assignment is completed and clearing it otherwise.
func (a *TaskAssignment) TransitionTo(next AssignmentStatus, now time.Time) bool {
	if !a.Status.CanTransitionTo(next) {
		return false
	}

	a.Status = next
	if next == AssignmentStatusCompleted {
		a.CompletedAt = &now
	} else {
		a.CompletedAt = nil
	}
	return true
}

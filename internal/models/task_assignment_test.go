package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignmentStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from AssignmentStatus
		to   AssignmentStatus
		want bool
	}{
		{AssignmentStatusPending, AssignmentStatusInProgress, true},
		{AssignmentStatusPending, AssignmentStatusBlocked, true},
		{AssignmentStatusPending, AssignmentStatusCompleted, false},
		{AssignmentStatusPending, AssignmentStatusPending, false},
		{AssignmentStatusInProgress, AssignmentStatusReview, true},
		{AssignmentStatusInProgress, AssignmentStatusPending, false},
		{AssignmentStatusReview, AssignmentStatusCompleted, true},
		{AssignmentStatusReview, AssignmentStatusInProgress, true},
		{AssignmentStatusBlocked, AssignmentStatusInProgress, true},
		{AssignmentStatusBlocked, AssignmentStatusCompleted, false},
		{AssignmentStatusCompleted, AssignmentStatusPending, false},
		{AssignmentStatusCompleted, AssignmentStatusBlocked, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestAssignmentStatus_Parse(t *testing.T) {
	status, ok := ParseAssignmentStatus("in_progress")
	require.True(t, ok)
	assert.Equal(t, AssignmentStatusInProgress, status)
	assert.Equal(t, "In Progress", status.Label())

	_, ok = ParseAssignmentStatus("done")
	assert.False(t, ok)

	assert.True(t, AssignmentStatusCompleted.IsTerminal())
	assert.False(t, AssignmentStatusBlocked.IsTerminal())
}

func TestTaskAssignment_TransitionTo(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	assignment := TaskAssignment{Status: AssignmentStatusReview}

	require.True(t, assignment.TransitionTo(AssignmentStatusCompleted, now))
	require.NotNil(t, assignment.CompletedAt)
	assert.Equal(t, now, *assignment.CompletedAt)

	assert.False(t, assignment.TransitionTo(AssignmentStatusInProgress, now))
	assert.Equal(t, AssignmentStatusCompleted, assignment.Status)

	blocked := TaskAssignment{Status: AssignmentStatusInProgress}
	require.True(t, blocked.TransitionTo(AssignmentStatusBlocked, now))
	assert.Nil(t, blocked.CompletedAt)
}

func TestTaskPriority(t *testing.T) {
	assert.True(t, PriorityMedium.Valid())
	assert.False(t, TaskPriority(0).Valid())
	assert.False(t, TaskPriority(4).Valid())
	assert.Equal(t, "High", PriorityHigh.String())
}

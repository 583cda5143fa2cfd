package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/yukikurage/task-tracker-api/internal/constants"
	"github.com/yukikurage/task-tracker-api/internal/models"
	"github.com/yukikurage/task-tracker-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound            = errors.New("task not found")
	ErrTaskNameRequired        = errors.New("task name is required")
	ErrTaskNameTooLong         = errors.New("task name is too long")
	ErrInvalidPriority         = errors.New("invalid task priority")
	ErrAssigneeNotFound        = errors.New("one or more assigned users do not exist")
	ErrAssignerNotFound        = errors.New("assigning user does not exist")
	ErrDuplicateAssignee       = errors.New("user listed more than once")
	ErrAlreadyAssigned         = errors.New("user is already assigned to this task")
	ErrPrimaryNotInBatch       = errors.New("primary user is not among the assigned users")
	ErrAssignmentNotFound      = errors.New("user is not assigned to this task")
	ErrInvalidStatus           = errors.New("invalid assignment status")
	ErrInvalidStatusTransition = errors.New("assignment status transition not allowed")
)

// taskDetailPreloads are the relations returned with a single task.
var taskDetailPreloads = []string{"Assignments", "Assignments.User"}

// TaskService handles task business logic
type TaskService struct {
	taskRepo repository.TaskRepository
	userRepo repository.UserRepository
	now      func() time.Time
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository, userRepo repository.UserRepository) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
		userRepo: userRepo,
		now:      time.Now,
	}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Name            string
	Description     string
	Priority        models.TaskPriority
	AssignedUserIDs []uint64
	// PrimaryUserID picks the primary assignee. When nil the first entry of
	// AssignedUserIDs is primary.
	PrimaryUserID *uint64
	AssignedByID  *uint64
}

// AssignTaskInput represents input for assigning users to a task
type AssignTaskInput struct {
	TaskID        uint64
	UserIDs       []uint64
	PrimaryUserID *uint64
	AssignedByID  *uint64
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	Priority *models.TaskPriority
	Page     int
	PageSize int
}

// UpdateAssignmentStatusInput represents a status change on one assignment
type UpdateAssignmentStatusInput struct {
	TaskID uint64
	UserID uint64
	Status models.AssignmentStatus
}

// CreateTask creates a task and, when users are given, its assignments in
// the same transaction.
func (s *TaskService) CreateTask(ctx context.Context, input CreateTaskInput) (*models.Task, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTaskNameRequired
	}
	if utf8.RuneCountInString(name) > constants.MaxNameLength {
		return nil, ErrTaskNameTooLong
	}

	priority := input.Priority
	if priority == 0 {
		priority = models.PriorityMedium
	}
	if !priority.Valid() {
		return nil, ErrInvalidPriority
	}

	if len(input.AssignedUserIDs) > 0 {
		if err := s.validateAssignees(ctx, 0, input.AssignedUserIDs, input.PrimaryUserID, input.AssignedByID); err != nil {
			return nil, err
		}
	}

	task := &models.Task{
		Name:        name,
		Description: input.Description,
		Priority:    priority,
	}

	err := s.taskRepo.Transaction(ctx, func(tx repository.TaskRepository) error {
		if err := tx.Create(ctx, task); err != nil {
			return err
		}
		if len(input.AssignedUserIDs) == 0 {
			return nil
		}
		_, err := s.assign(ctx, tx, task.ID, input.AssignedUserIDs, input.PrimaryUserID, input.AssignedByID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return s.GetTask(ctx, task.ID)
}

// AssignTaskToUsers assigns a task to each user in order inside a single
// transaction. An empty user list is a no-op.
func (s *TaskService) AssignTaskToUsers(ctx context.Context, input AssignTaskInput) ([]models.TaskAssignment, error) {
	if len(input.UserIDs) == 0 {
		return []models.TaskAssignment{}, nil
	}

	if _, err := s.taskRepo.FindByID(ctx, input.TaskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if err := s.validateAssignees(ctx, input.TaskID, input.UserIDs, input.PrimaryUserID, input.AssignedByID); err != nil {
		return nil, err
	}

	var assignments []models.TaskAssignment
	err := s.taskRepo.Transaction(ctx, func(tx repository.TaskRepository) error {
		var err error
		assignments, err = s.assign(ctx, tx, input.TaskID, input.UserIDs, input.PrimaryUserID, input.AssignedByID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to assign users: %w", err)
	}

	return assignments, nil
}

// GetUserTasks returns the tasks assigned to a user, optionally only those
// whose assignment to that user has the given status. Each task carries
// the user's own assignment.
func (s *TaskService) GetUserTasks(ctx context.Context, userID uint64, status *models.AssignmentStatus) ([]models.Task, error) {
	if status != nil && !status.Valid() {
		return nil, ErrInvalidStatus
	}

	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	tasks, err := s.taskRepo.ListByUser(ctx, userID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user tasks: %w", err)
	}

	return tasks, nil
}

// GetUserTaskAssignment returns the assignment linking a user to a task.
func (s *TaskService) GetUserTaskAssignment(ctx context.Context, taskID, userID uint64) (*models.TaskAssignment, error) {
	assignment, err := s.taskRepo.FindAssignment(ctx, taskID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("failed to find assignment: %w", err)
	}
	return assignment, nil
}

// UpdateAssignmentStatus moves one assignment through the status state machine.
func (s *TaskService) UpdateAssignmentStatus(ctx context.Context, input UpdateAssignmentStatusInput) (*models.TaskAssignment, error) {
	if !input.Status.Valid() {
		return nil, ErrInvalidStatus
	}

	assignment, err := s.GetUserTaskAssignment(ctx, input.TaskID, input.UserID)
	if err != nil {
		return nil, err
	}

	if !assignment.TransitionTo(input.Status, s.now()) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, assignment.Status, input.Status)
	}

	if err := s.taskRepo.UpdateAssignment(ctx, assignment); err != nil {
		return nil, fmt.Errorf("failed to update assignment status: %w", err)
	}

	return assignment, nil
}

// GetTask returns a task with its assignments
func (s *TaskService) GetTask(ctx context.Context, taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID, taskDetailPreloads...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	return task, nil
}

// ListTasks returns a page of tasks
func (s *TaskService) ListTasks(ctx context.Context, input ListTasksInput) ([]models.Task, int64, error) {
	if input.Priority != nil && !input.Priority.Valid() {
		return nil, 0, ErrInvalidPriority
	}

	tasks, total, err := s.taskRepo.List(ctx, repository.TaskFilter{
		Priority: input.Priority,
		Page:     input.Page,
		PageSize: input.PageSize,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

// validateAssignees checks a batch before any row is written: no repeated
// users, the primary user is part of the batch, and every referenced user
// exists.
func (s *TaskService) validateAssignees(ctx context.Context, taskID uint64, userIDs []uint64, primaryUserID, assignedByID *uint64) error {
	if dups := duplicateUint64(userIDs); len(dups) > 0 {
		return &AssignmentError{Err: ErrDuplicateAssignee, TaskID: taskID, UserIDs: dups}
	}

	if primaryUserID != nil && !containsUint64(userIDs, *primaryUserID) {
		return ErrPrimaryNotInBatch
	}

	lookup := userIDs
	if assignedByID != nil && !containsUint64(userIDs, *assignedByID) {
		lookup = append(append([]uint64{}, userIDs...), *assignedByID)
	}

	existing, err := s.userRepo.FindExistingIDs(ctx, lookup)
	if err != nil {
		return fmt.Errorf("failed to verify users: %w", err)
	}

	if assignedByID != nil && !containsUint64(existing, *assignedByID) {
		return ErrAssignerNotFound
	}

	var missing []uint64
	for _, id := range userIDs {
		if !containsUint64(existing, id) {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return &AssignmentError{Err: ErrAssigneeNotFound, TaskID: taskID, UserIDs: missing}
	}

	return nil
}

// assign writes one assignment per user, in input order, through tx.
// userIDs must already be free of duplicates.
func (s *TaskService) assign(ctx context.Context, tx repository.TaskRepository, taskID uint64, userIDs []uint64, primaryUserID, assignedByID *uint64) ([]models.TaskAssignment, error) {
	assigned, err := tx.FindAssignedUserIDs(ctx, taskID, userIDs)
	if err != nil {
		return nil, err
	}
	if len(assigned) > 0 {
		return nil, &AssignmentError{Err: ErrAlreadyAssigned, TaskID: taskID, UserIDs: assigned}
	}

	primaryID := userIDs[0]
	if primaryUserID != nil {
		primaryID = *primaryUserID
	}

	assignments := make([]models.TaskAssignment, 0, len(userIDs))
	for _, userID := range userIDs {
		assignment := models.TaskAssignment{
			TaskID:            taskID,
			UserID:            userID,
			AssignedByID:      assignedByID,
			Status:            models.AssignmentStatusPending,
			IsPrimaryAssignee: userID == primaryID,
		}

		if err := tx.CreateAssignment(ctx, &assignment); err != nil {
			switch {
			case errors.Is(err, repository.ErrDuplicateAssignment):
				return nil, &AssignmentError{Err: ErrAlreadyAssigned, TaskID: taskID, UserIDs: []uint64{userID}}
			case errors.Is(err, repository.ErrMissingReference):
				return nil, &AssignmentError{Err: ErrAssigneeNotFound, TaskID: taskID, UserIDs: []uint64{userID}}
			default:
				return nil, err
			}
		}

		assignments = append(assignments, assignment)
	}

	return assignments, nil
}

// duplicateUint64 returns each value that occurs more than once, in first-seen order
func duplicateUint64(values []uint64) []uint64 {
	seen := make(map[uint64]int, len(values))
	var dups []uint64

	for _, v := range values {
		seen[v]++
		if seen[v] == 2 {
			dups = append(dups, v)
		}
	}

	return dups
}

func containsUint64(values []uint64, target uint64) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

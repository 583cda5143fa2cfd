package dto

import (
	"time"

	"github.com/yukikurage/task-tracker-api/internal/models"
	"github.com/yukikurage/task-tracker-api/internal/utils"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID     uint64  `json:"id"`
	Email  string  `json:"email"`
	Name   string  `json:"name"`
	Mobile *string `json:"mobile"`
}

// TaskAssignmentDTO represents an assignment nested in a task
type TaskAssignmentDTO struct {
	User              uint64                  `json:"user"`
	UserName          string                  `json:"user_name"`
	IsPrimaryAssignee bool                    `json:"is_primary_assignee"`
	Status            models.AssignmentStatus `json:"status"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          uint64              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Priority    models.TaskPriority `json:"priority"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
	Assignments []TaskAssignmentDTO `json:"assignments"`
}

// AssignmentDTO represents a single assignment in API responses
type AssignmentDTO struct {
	ID                uint64                  `json:"id"`
	Task              uint64                  `json:"task"`
	User              uint64                  `json:"user"`
	AssignedBy        *uint64                 `json:"assigned_by"`
	Status            models.AssignmentStatus `json:"status"`
	IsPrimaryAssignee bool                    `json:"is_primary_assignee"`
	CompletedAt       *time.Time              `json:"completed_at"`
	CreatedAt         time.Time               `json:"created_at"`
	UpdatedAt         time.Time               `json:"updated_at"`
}

// UserTaskAssignmentDTO is the user's own assignment inside a user task
type UserTaskAssignmentDTO struct {
	ID                uint64                  `json:"id"`
	Status            models.AssignmentStatus `json:"status"`
	CompletedAt       *time.Time              `json:"completed_at"`
	IsPrimaryAssignee bool                    `json:"is_primary_assignee"`
}

// UserTaskDTO represents a task seen from one assignee
type UserTaskDTO struct {
	ID          uint64                  `json:"id"`
	Name        string                  `json:"name"`
	Description string                  `json:"description"`
	Priority    models.TaskPriority     `json:"priority"`
	UserDetails *UserDTO                `json:"user_details"`
	TaskDetails []UserTaskAssignmentDTO `json:"task_details"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO                `json:"tasks"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// Conversion functions

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:     user.ID,
		Email:  user.Email,
		Name:   user.Name,
		Mobile: user.Mobile,
	}
}

// ToTaskAssignmentDTO converts an assignment to its nested form
func ToTaskAssignmentDTO(assignment models.TaskAssignment) TaskAssignmentDTO {
	dto := TaskAssignmentDTO{
		User:              assignment.UserID,
		IsPrimaryAssignee: assignment.IsPrimaryAssignee,
		Status:            assignment.Status,
	}

	// Include user name if preloaded
	if assignment.User != nil {
		dto.UserName = assignment.User.Name
	}

	return dto
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:          task.ID,
		Name:        task.Name,
		Description: task.Description,
		Priority:    task.Priority,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
		Assignments: make([]TaskAssignmentDTO, len(task.Assignments)),
	}

	for i, assignment := range task.Assignments {
		dto.Assignments[i] = ToTaskAssignmentDTO(assignment)
	}

	return dto
}

// ToAssignmentDTO converts a TaskAssignment model to AssignmentDTO
func ToAssignmentDTO(assignment models.TaskAssignment) AssignmentDTO {
	return AssignmentDTO{
		ID:                assignment.ID,
		Task:              assignment.TaskID,
		User:              assignment.UserID,
		AssignedBy:        assignment.AssignedByID,
		Status:            assignment.Status,
		IsPrimaryAssignee: assignment.IsPrimaryAssignee,
		CompletedAt:       assignment.CompletedAt,
		CreatedAt:         assignment.CreatedAt,
		UpdatedAt:         assignment.UpdatedAt,
	}
}

// ToUserTaskDTO converts a task loaded for one user. Only assignments
// belonging to userID are reported; UserDetails is nil when there are none.
func ToUserTaskDTO(task models.Task, userID uint64) UserTaskDTO {
	dto := UserTaskDTO{
		ID:          task.ID,
		Name:        task.Name,
		Description: task.Description,
		Priority:    task.Priority,
		TaskDetails: []UserTaskAssignmentDTO{},
	}

	for _, assignment := range task.Assignments {
		if assignment.UserID != userID {
			continue
		}
		if dto.UserDetails == nil && assignment.User != nil {
			user := ToUserDTO(*assignment.User)
			dto.UserDetails = &user
		}
		dto.TaskDetails = append(dto.TaskDetails, UserTaskAssignmentDTO{
			ID:                assignment.ID,
			Status:            assignment.Status,
			CompletedAt:       assignment.CompletedAt,
			IsPrimaryAssignee: assignment.IsPrimaryAssignee,
		})
	}

	return dto
}

// ToUserTaskDTOs converts the tasks of one user
func ToUserTaskDTOs(tasks []models.Task, userID uint64) []UserTaskDTO {
	items := make([]UserTaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToUserTaskDTO(task, userID)
	}
	return items
}

// ToTaskListResponse converts a page of tasks to TaskListResponse
func ToTaskListResponse(tasks []models.Task, params utils.PaginationParams, totalCount int64) TaskListResponse {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task)
	}

	return TaskListResponse{
		Tasks:      items,
		Pagination: utils.NewPaginationResponse(params, totalCount),
	}
}

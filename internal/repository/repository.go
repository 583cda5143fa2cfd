package repository

import (
	"context"
	"errors"

	"github.com/yukikurage/task-tracker-api/internal/models"
)

var (
	// ErrDuplicateEmail is returned when the unique email index rejects an insert.
	ErrDuplicateEmail = errors.New("user repository: email already exists")
	// ErrDuplicateAssignment is returned when the (user, task) unique index rejects an insert.
	ErrDuplicateAssignment = errors.New("task repository: user already assigned to task")
	// ErrMissingReference is returned when a foreign key points at a missing row.
	ErrMissingReference = errors.New("task repository: referenced row does not exist")
)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Transaction runs fn against a repository bound to a single transaction.
	// Returning an error from fn rolls back everything fn wrote.
	Transaction(ctx context.Context, fn func(repo TaskRepository) error) error

	// Create creates a new task
	Create(ctx context.Context, task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(ctx context.Context, id uint64, preload ...string) (*models.Task, error)

	// List retrieves tasks with filtering and pagination
	List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error)

	// ListByUser retrieves the tasks assigned to a user. Each task carries
	// only that user's assignment.
	ListByUser(ctx context.Context, userID uint64, status *models.AssignmentStatus) ([]models.Task, error)

	// CreateAssignment inserts a single assignment row
	CreateAssignment(ctx context.Context, assignment *models.TaskAssignment) error

	// FindAssignedUserIDs returns which of userIDs are already assigned to the task
	FindAssignedUserIDs(ctx context.Context, taskID uint64, userIDs []uint64) ([]uint64, error)

	// FindAssignment finds a specific task assignment
	FindAssignment(ctx context.Context, taskID, userID uint64) (*models.TaskAssignment, error)

	// UpdateAssignment saves an assignment
	UpdateAssignment(ctx context.Context, assignment *models.TaskAssignment) error
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	Priority *models.TaskPriority
	Page     int
	PageSize int
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uint64) (*models.User, error)

	// FindByEmail finds a user by email, ignoring case
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// FindExistingIDs returns the subset of ids that belong to stored users
	FindExistingIDs(ctx context.Context, ids []uint64) ([]uint64, error)
}

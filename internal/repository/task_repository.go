package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/task-tracker-api/internal/database"
	"github.com/yukikurage/task-tracker-api/internal/models"
	"github.com/yukikurage/task-tracker-api/internal/utils"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Transaction runs fn inside a database transaction
func (r *GormTaskRepository) Transaction(ctx context.Context, fn func(repo TaskRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormTaskRepository{db: tx})
	})
}

// Create creates a new task
func (r *GormTaskRepository) Create(ctx context.Context, task *models.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(ctx context.Context, id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db.WithContext(ctx)

	// Apply preloading if specified
	for _, p := range preload {
		if p == "Assignments" {
			query = query.Preload(p, database.AssignmentOrder)
			continue
		}
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, fmt.Errorf("failed to find task by id %d: %w", id, err)
	}

	return &task, nil
}

// List retrieves tasks with filtering and pagination
func (r *GormTaskRepository) List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error) {
	var tasks []models.Task

	query := r.db.WithContext(ctx).Model(&models.Task{})
	if filter.Priority != nil {
		query = query.Where("tasks.priority = ?", *filter.Priority)
	}

	// Count and Find each get their own copy of the conditions.
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count tasks: %w", err)
	}

	listQuery := query.Order("tasks.created_at DESC").Order("tasks.id DESC")
	if filter.Page > 0 && filter.PageSize > 0 {
		listQuery = listQuery.Scopes(database.Paginate(utils.NewPaginationParams(filter.Page, filter.PageSize)))
	}

	if err := listQuery.Preload("Assignments", database.AssignmentOrder).Preload("Assignments.User").Find(&tasks).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

// ListByUser retrieves the tasks assigned to a user
func (r *GormTaskRepository) ListByUser(ctx context.Context, userID uint64, status *models.AssignmentStatus) ([]models.Task, error) {
	tasks := []models.Task{}

	err := r.db.WithContext(ctx).
		Model(&models.Task{}).
		Scopes(database.AssignedTo(userID, status)).
		Preload("Assignments", database.AssignmentOrder, "user_id = ?", userID).
		Preload("Assignments.User").
		Order("tasks.id").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks for user %d: %w", userID, err)
	}

	return tasks, nil
}

// CreateAssignment inserts a single assignment row
func (r *GormTaskRepository) CreateAssignment(ctx context.Context, assignment *models.TaskAssignment) error {
	err := r.db.WithContext(ctx).Create(assignment).Error
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: user %d, task %d", ErrDuplicateAssignment, assignment.UserID, assignment.TaskID)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %v", ErrMissingReference, err)
	default:
		return fmt.Errorf("failed to create assignment: %w", err)
	}
}

// FindAssignedUserIDs returns which of userIDs are already assigned to the task
func (r *GormTaskRepository) FindAssignedUserIDs(ctx context.Context, taskID uint64, userIDs []uint64) ([]uint64, error) {
	assigned := []uint64{}
	if len(userIDs) == 0 {
		return assigned, nil
	}

	err := r.db.WithContext(ctx).
		Model(&models.TaskAssignment{}).
		Where("task_id = ? AND user_id IN ?", taskID, userIDs).
		Order("user_id").
		Pluck("user_id", &assigned).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check existing assignments: %w", err)
	}
	return assigned, nil
}

// FindAssignment finds a specific task assignment
func (r *GormTaskRepository) FindAssignment(ctx context.Context, taskID, userID uint64) (*models.TaskAssignment, error) {
	var assignment models.TaskAssignment
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("task_id = ? AND user_id = ?", taskID, userID).
		First(&assignment).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find assignment of user %d on task %d: %w", userID, taskID, err)
	}
	return &assignment, nil
}

// UpdateAssignment saves an assignment
func (r *GormTaskRepository) UpdateAssignment(ctx context.Context, assignment *models.TaskAssignment) error {
	err := r.db.WithContext(ctx).
		Model(assignment).
		Select("Status", "CompletedAt", "UpdatedAt").
		Updates(assignment).Error
	if err != nil {
		return fmt.Errorf("failed to update assignment %d: %w", assignment.ID, err)
	}
	return nil
}

package database

import (
	"gorm.io/gorm"

	"github.com/yukikurage/task-tracker-api/internal/models"
	"github.com/yukikurage/task-tracker-api/internal/utils"
)

// Paginate applies pagination to a GORM query
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(params.Offset).Limit(params.Limit)
	}
}

// AssignmentOrder sorts preloaded assignments in the order they were created
func AssignmentOrder(db *gorm.DB) *gorm.DB {
	return db.Order("task_assignments.id")
}

// AssignedTo restricts a task query to tasks linked to userID, optionally
// only through assignments in the given status.
func AssignedTo(userID uint64, status *models.AssignmentStatus) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Joins("JOIN task_assignments ON task_assignments.task_id = tasks.id").
			Where("task_assignments.user_id = ?", userID)
		if status != nil {
			db = db.Where("task_assignments.status = ?", *status)
		}
		return db
	}
}

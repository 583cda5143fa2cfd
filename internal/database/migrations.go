package database

import (
	"fmt"
	"log"

	"github.com/yukikurage/task-tracker-api/internal/models"
	"gorm.io/gorm"
)

// requiredIndexes lists indexes the task queries depend on. Each one is
// declared in the model tags so the migrator can build it on any dialect.
var requiredIndexes = []struct {
	model any
	name  string
}{
	{&models.TaskAssignment{}, "idx_task_assignments_user_task"},
	{&models.TaskAssignment{}, "idx_task_assignments_task_id"},
	{&models.TaskAssignment{}, "idx_task_assignments_status"},
	{&models.TaskAssignment{}, "idx_task_assignments_assigned_by"},
}

// EnsureIndexes creates any of the required indexes that are missing.
func EnsureIndexes(db *gorm.DB) error {
	migrator := db.Migrator()

	for _, idx := range requiredIndexes {
		if migrator.HasIndex(idx.model, idx.name) {
			continue
		}

		if err := migrator.CreateIndex(idx.model, idx.name); err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Printf("Created index %s", idx.name)
	}

	return nil
}

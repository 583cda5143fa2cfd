package middleware

import (
	"context"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-tracker-api/internal/constants"
	apierrors "github.com/yukikurage/task-tracker-api/internal/errors"
	"github.com/yukikurage/task-tracker-api/internal/models"
	"github.com/yukikurage/task-tracker-api/internal/services"
)

// ContextKeyTask is where LoadTask stores the loaded task.
const ContextKeyTask = "task"

type taskFinder interface {
	GetTask(ctx context.Context, taskID uint64) (*models.Task, error)
}

// LoadTask resolves the :id path parameter to a task with its assignments.
func LoadTask(tasks taskFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get task ID from URL parameter
		taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil || taskID == 0 {
			apierrors.BadRequest(c, constants.MsgInvalidTaskID)
			return
		}

		task, err := tasks.GetTask(c.Request.Context(), taskID)
		if err != nil {
			if errors.Is(err, services.ErrTaskNotFound) {
				apierrors.NotFound(c, constants.MsgTaskNotFound)
				return
			}
			apierrors.InternalError(c, err)
			return
		}

		c.Set(ContextKeyTask, task)
		c.Next()
	}
}

// GetTask retrieves the task stored by LoadTask
func GetTask(c *gin.Context) (*models.Task, bool) {
	value, exists := c.Get(ContextKeyTask)
	if !exists {
		return nil, false
	}
	task, ok := value.(*models.Task)
	return task, ok
}

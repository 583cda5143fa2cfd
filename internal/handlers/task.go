package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-tracker-api/internal/constants"
	"github.com/yukikurage/task-tracker-api/internal/dto"
	apierrors "github.com/yukikurage/task-tracker-api/internal/errors"
	"github.com/yukikurage/task-tracker-api/internal/middleware"
	"github.com/yukikurage/task-tracker-api/internal/models"
	"github.com/yukikurage/task-tracker-api/internal/services"
	"github.com/yukikurage/task-tracker-api/internal/utils"
)

type TaskHandler struct {
	taskService       *services.TaskService
	suggestionService *services.SuggestionService
}

// NewTaskHandler creates a TaskHandler. suggestionService may be nil, in
// which case the suggest endpoint answers 503.
func NewTaskHandler(taskService *services.TaskService, suggestionService *services.SuggestionService) *TaskHandler {
	return &TaskHandler{
		taskService:       taskService,
		suggestionService: suggestionService,
	}
}

var taskMessages = fieldMessages{
	"name": {
		"required": constants.MsgNameRequired,
	},
	"priority": {
		"min": constants.MsgInvalidPriority,
		"max": constants.MsgInvalidPriority,
	},
	"text": {
		"required": constants.MsgBlankField,
	},
}

// CreateTask creates a task, optionally assigning it to users right away
func (h *TaskHandler) CreateTask(c *gin.Context) {
	type CreateTaskRequest struct {
		Name          string              `json:"name" binding:"required,max=255"`
		Description   string              `json:"description"`
		Priority      models.TaskPriority `json:"priority" binding:"omitempty,min=1,max=3"`
		AssignedUsers []uint64            `json:"assigned_users"`
		PrimaryUser   *uint64             `json:"primary_user"`
	}

	var req CreateTaskRequest
	if !bindJSON(c, &req, taskMessages) {
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), services.CreateTaskInput{
		Name:            req.Name,
		Description:     req.Description,
		Priority:        req.Priority,
		AssignedUserIDs: req.AssignedUsers,
		PrimaryUserID:   req.PrimaryUser,
		AssignedByID:    middleware.GetOptionalUserID(c),
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	apierrors.Success(c, http.StatusCreated, dto.ToTaskDTO(*task))
}

// ListTasks returns a page of tasks, newest first
func (h *TaskHandler) ListTasks(c *gin.Context) {
	var priority *models.TaskPriority
	if raw := c.Query("priority"); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil || !models.TaskPriority(value).Valid() {
			apierrors.ValidationFailed(c, apierrors.NewFieldError("priority", constants.MsgInvalidPriority))
			return
		}
		p := models.TaskPriority(value)
		priority = &p
	}

	// Get pagination parameters
	params := utils.GetPaginationParams(c)

	tasks, total, err := h.taskService.ListTasks(c.Request.Context(), services.ListTasksInput{
		Priority: priority,
		Page:     params.Page,
		PageSize: params.Limit,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	apierrors.Success(c, http.StatusOK, dto.ToTaskListResponse(tasks, params, total))
}

// GetTask returns a specific task by ID
// Task is already loaded with its assignments by the LoadTask middleware
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, errors.New("task missing from context"))
		return
	}

	apierrors.Success(c, http.StatusOK, dto.ToTaskDTO(*task))
}

// AssignTask assigns a task to a batch of users. The first user, or
// primary_user when given, becomes the primary assignee.
func (h *TaskHandler) AssignTask(c *gin.Context) {
	type AssignTaskRequest struct {
		Task          uint64   `json:"task" binding:"required"`
		AssignedUsers []uint64 `json:"assigned_users"`
		PrimaryUser   *uint64  `json:"primary_user"`
	}

	var req AssignTaskRequest
	if !bindJSON(c, &req, taskMessages) {
		return
	}

	ctx := c.Request.Context()
	_, err := h.taskService.AssignTaskToUsers(ctx, services.AssignTaskInput{
		TaskID:        req.Task,
		UserIDs:       req.AssignedUsers,
		PrimaryUserID: req.PrimaryUser,
		AssignedByID:  middleware.GetOptionalUserID(c),
	})
	if err == nil {
		var task *models.Task
		task, err = h.taskService.GetTask(ctx, req.Task)
		if err == nil {
			apierrors.Success(c, http.StatusCreated, dto.ToTaskDTO(*task))
			return
		}
	}

	// The task is referenced from the body, so a missing one is a field error.
	if errors.Is(err, services.ErrTaskNotFound) {
		apierrors.ValidationFailed(c, apierrors.NewFieldError("task", fmt.Sprintf(constants.MsgInvalidPK, req.Task)))
		return
	}
	respondTaskError(c, err)
}

// GetUserTasks returns the tasks assigned to the user given in ?user=,
// each annotated with that user's own assignment. ?status= narrows the
// result to assignments in that status.
func (h *TaskHandler) GetUserTasks(c *gin.Context) {
	rawUserID := c.Query("user")
	if rawUserID == "" {
		apierrors.BadRequest(c, constants.MsgUserIDRequired)
		return
	}

	userID, err := strconv.ParseUint(rawUserID, 10, 64)
	if err != nil || userID == 0 {
		apierrors.BadRequest(c, constants.MsgInvalidUserID)
		return
	}

	var status *models.AssignmentStatus
	if raw := c.Query("status"); raw != "" {
		parsed, ok := models.ParseAssignmentStatus(raw)
		if !ok {
			apierrors.ValidationFailed(c, apierrors.NewFieldError("status", constants.MsgInvalidStatus))
			return
		}
		status = &parsed
	}

	tasks, err := h.taskService.GetUserTasks(c.Request.Context(), userID, status)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	apierrors.Success(c, http.StatusOK, dto.ToUserTaskDTOs(tasks, userID))
}

// UpdateAssignmentStatus moves one user's assignment to a new status
func (h *TaskHandler) UpdateAssignmentStatus(c *gin.Context) {
	type UpdateAssignmentStatusRequest struct {
		Task   uint64 `json:"task" binding:"required"`
		User   uint64 `json:"user" binding:"required"`
		Status string `json:"status" binding:"required"`
	}

	var req UpdateAssignmentStatusRequest
	if !bindJSON(c, &req, taskMessages) {
		return
	}

	status, ok := models.ParseAssignmentStatus(req.Status)
	if !ok {
		apierrors.ValidationFailed(c, apierrors.NewFieldError("status", constants.MsgInvalidStatus))
		return
	}

	assignment, err := h.taskService.UpdateAssignmentStatus(c.Request.Context(), services.UpdateAssignmentStatusInput{
		TaskID: req.Task,
		UserID: req.User,
		Status: status,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	apierrors.Success(c, http.StatusOK, dto.ToAssignmentDTO(*assignment))
}

// SuggestTasks proposes tasks extracted from free text
func (h *TaskHandler) SuggestTasks(c *gin.Context) {
	type SuggestTasksRequest struct {
		Text string `json:"text" binding:"required"`
	}

	var req SuggestTasksRequest
	if !bindJSON(c, &req, taskMessages) {
		return
	}

	suggestions, err := h.suggestionService.SuggestTasks(c.Request.Context(), req.Text)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	apierrors.Success(c, http.StatusOK, gin.H{
		"tasks": suggestions,
	})
}

func respondTaskError(c *gin.Context, err error) {
	var assignErr *services.AssignmentError
	if errors.As(err, &assignErr) {
		respondAssignmentError(c, assignErr)
		return
	}

	switch {
	case errors.Is(err, services.ErrTaskNameRequired):
		apierrors.ValidationFailed(c, apierrors.NewFieldError("name", constants.MsgNameRequired))
	case errors.Is(err, services.ErrTaskNameTooLong):
		apierrors.ValidationFailed(c, apierrors.NewFieldError("name", constants.MsgMaxLength))
	case errors.Is(err, services.ErrInvalidPriority):
		apierrors.ValidationFailed(c, apierrors.NewFieldError("priority", constants.MsgInvalidPriority))
	case errors.Is(err, services.ErrPrimaryNotInBatch):
		apierrors.ValidationFailed(c, apierrors.NewFieldError("primary_user", constants.MsgPrimaryNotInBatch))
	case errors.Is(err, services.ErrAssignerNotFound):
		apierrors.Unauthorized(c, constants.MsgUserNotFound)
	case errors.Is(err, services.ErrInvalidStatus):
		apierrors.ValidationFailed(c, apierrors.NewFieldError("status", constants.MsgInvalidStatus))
	case errors.Is(err, services.ErrInvalidStatusTransition):
		apierrors.ValidationFailed(c, apierrors.NewFieldError("status", constants.MsgInvalidTransition))
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, constants.MsgTaskNotFound)
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, constants.MsgUserNotFound)
	case errors.Is(err, services.ErrAssignmentNotFound):
		apierrors.NotFound(c, constants.MsgAssignmentMissing)
	case errors.Is(err, services.ErrSuggestionsNotConfigured):
		apierrors.ServiceUnavailable(c, constants.MsgSuggestDisabled)
	case errors.Is(err, services.ErrSuggestionTextRequired):
		apierrors.ValidationFailed(c, apierrors.NewFieldError("text", constants.MsgBlankField))
	case errors.Is(err, services.ErrNoSuggestions):
		apierrors.BadRequest(c, constants.MsgNoSuggestions)
	default:
		apierrors.InternalError(c, err)
	}
}

// respondAssignmentError reports the offending users of a rejected batch
// under assigned_users.
func respondAssignmentError(c *gin.Context, err *services.AssignmentError) {
	var format string
	switch {
	case errors.Is(err, services.ErrAlreadyAssigned):
		format = constants.MsgAlreadyAssigned
	case errors.Is(err, services.ErrDuplicateAssignee):
		format = constants.MsgDuplicateAssignee
	case errors.Is(err, services.ErrAssigneeNotFound):
		format = constants.MsgInvalidPK
	default:
		apierrors.InternalError(c, err)
		return
	}

	fields := apierrors.FieldErrors{}
	for _, userID := range err.UserIDs {
		fields.Add("assigned_users", fmt.Sprintf(format, userID))
	}
	apierrors.ValidationFailed(c, fields)
}

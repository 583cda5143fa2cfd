package errors

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-tracker-api/internal/constants"
)

// Envelope status values
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Envelope is the wrapper around every API response body.
type Envelope struct {
	Status     string `json:"status"`
	StatusCode int    `json:"status_code"`
	Message    string `json:"message,omitempty"`
	Data       any    `json:"data,omitempty"`
}

// FieldErrors maps a request field to its validation messages.
type FieldErrors map[string][]string

// Add appends a message for field.
func (f FieldErrors) Add(field, message string) {
	f[field] = append(f[field], message)
}

// NewFieldError creates FieldErrors holding a single message.
func NewFieldError(field, message string) FieldErrors {
	return FieldErrors{field: {message}}
}

// Success sends a success envelope
func Success(c *gin.Context, statusCode int, data any) {
	c.JSON(statusCode, Envelope{
		Status:     StatusSuccess,
		StatusCode: statusCode,
		Data:       data,
	})
}

// SuccessWithMessage sends a success envelope carrying a message
func SuccessWithMessage(c *gin.Context, statusCode int, message string, data any) {
	c.JSON(statusCode, Envelope{
		Status:     StatusSuccess,
		StatusCode: statusCode,
		Message:    message,
		Data:       data,
	})
}

// RespondWithError sends a failure envelope and aborts the handler chain
func RespondWithError(c *gin.Context, statusCode int, message string, data any) {
	c.AbortWithStatusJSON(statusCode, Envelope{
		Status:     StatusFailure,
		StatusCode: statusCode,
		Message:    message,
		Data:       data,
	})
}

// Helper functions for common error responses

// Unauthorized sends a 401 response
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = constants.MsgNotAuthenticated
	}
	RespondWithError(c, http.StatusUnauthorized, message, nil)
}

// NotFound sends a 404 response
func NotFound(c *gin.Context, message string) {
	if message == "" {
		message = "Resource not found"
	}
	RespondWithError(c, http.StatusNotFound, message, nil)
}

// BadRequest sends a 400 response
func BadRequest(c *gin.Context, message string) {
	if message == "" {
		message = "Invalid request"
	}
	RespondWithError(c, http.StatusBadRequest, message, nil)
}

// BadRequestWithDetails sends a 400 response with details
func BadRequestWithDetails(c *gin.Context, message string, details any) {
	RespondWithError(c, http.StatusBadRequest, message, details)
}

// ValidationFailed sends a 400 response listing the rejected fields
func ValidationFailed(c *gin.Context, fields FieldErrors) {
	RespondWithError(c, http.StatusBadRequest, "", fields)
}

// ServiceUnavailable sends a 503 response
func ServiceUnavailable(c *gin.Context, message string) {
	if message == "" {
		message = "Service temporarily unavailable"
	}
	RespondWithError(c, http.StatusServiceUnavailable, message, nil)
}

// InternalError logs err and sends a generic 500 response.
func InternalError(c *gin.Context, err error) {
	log.Printf("[%s] %s %s: %v", c.GetString(constants.ContextKeyRequest), c.Request.Method, c.Request.URL.Path, err)
	RespondWithError(c, http.StatusInternalServerError, constants.MsgSomethingWentWrong, nil)
}

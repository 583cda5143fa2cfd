package middleware

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-tracker-api/internal/constants"
	apierrors "github.com/yukikurage/task-tracker-api/internal/errors"
)

// LoadSessionUser copies the session user ID, if any, into the context.
// Anonymous requests pass through.
func LoadSessionUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		if userID := session.Get(constants.ContextKeyUserID); userID != nil {
			c.Set(constants.ContextKeyUserID, userID)
		}
		c.Next()
	}
}

// RequireAuth checks if the user is authenticated via session
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID := session.Get(constants.ContextKeyUserID)

		if userID == nil {
			apierrors.Unauthorized(c, "")
			return
		}

		// Store user ID in context for easy access in handlers
		c.Set(constants.ContextKeyUserID, userID)
		c.Next()
	}
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}

	switch v := userID.(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}

// GetOptionalUserID returns the current user ID, or nil for anonymous requests.
func GetOptionalUserID(c *gin.Context) *uint64 {
	userID, ok := GetUserID(c)
	if !ok {
		return nil
	}
	return &userID
}

package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yukikurage/task-tracker-api/internal/constants"
)

// maxRequestIDLength bounds client supplied request IDs.
const maxRequestIDLength = 64

// RequestID tags each request with an ID, reusing the client's X-Request-ID
// when it sends a usable one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(constants.HeaderRequestID)
		if requestID == "" || len(requestID) > maxRequestIDLength {
			requestID = uuid.NewString()
		}

		c.Set(constants.ContextKeyRequest, requestID)
		c.Header(constants.HeaderRequestID, requestID)
		c.Next()
	}
}

package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const healthCheckTimeout = 2 * time.Second

type HealthHandler struct {
	db    *gorm.DB
	redis *redis.Client
}

// NewHealthHandler creates a HealthHandler. redisClient may be nil when
// sessions are not stored in Redis.
func NewHealthHandler(db *gorm.DB, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{
		db:    db,
		redis: redisClient,
	}
}

// Check reports whether the database and Redis are reachable
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	checks := gin.H{
		"database": "ok",
	}
	healthy := true

	if err := h.pingDB(ctx); err != nil {
		log.Printf("Health check: database unreachable: %v", err)
		checks["database"] = "unavailable"
		healthy = false
	}

	if h.redis != nil {
		checks["redis"] = "ok"
		if err := h.redis.Ping(ctx).Err(); err != nil {
			log.Printf("Health check: redis unreachable: %v", err)
			checks["redis"] = "unavailable"
			healthy = false
		}
	}

	status, code := "healthy", http.StatusOK
	if !healthy {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status": status,
		"checks": checks,
	})
}

func (h *HealthHandler) pingDB(ctx context.Context) error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

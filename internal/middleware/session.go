package middleware

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-tracker-api/internal/config"
	"github.com/yukikurage/task-tracker-api/internal/constants"
)

const (
	sessionPoolSize = 10
	sessionMaxAge   = 86400 * 7
)

// NewSessionStore creates the Redis backed session store.
func NewSessionStore(cfg *config.Config) (sessions.Store, error) {
	store, err := redisStore.NewStore(
		sessionPoolSize,
		"tcp",
		cfg.RedisAddr(),
		"",
		cfg.RedisPassword,
		[]byte(cfg.SessionSecret),
	)
	if err != nil {
		return nil, err
	}

	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	return store, nil
}

// Sessions attaches store under the application's session cookie.
func Sessions(store sessions.Store) gin.HandlerFunc {
	return sessions.Sessions(constants.SessionCookieName, store)
}

package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/task-tracker-api/internal/database"
	"github.com/yukikurage/task-tracker-api/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// envelope mirrors the response wrapper with the payload left raw.
type envelope struct {
	Status     string          `json:"status"`
	StatusCode int             `json:"status_code"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Open(sqlite.Open(":memory:?_foreign_keys=on"), logger.Silent)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, database.Migrate(db))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email, name string) *models.User {
	t.Helper()
	user := &models.User{Email: email, Name: name, PasswordHash: "hashedpassword"}
	require.NoError(t, db.Create(user).Error)
	return user
}

// performRequest sends body as JSON unless it is nil.
func performRequest(t *testing.T, r http.Handler, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		req = httptest.NewRequest(method, path, bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// decodeEnvelope checks the wrapper fields and unmarshals data into out
// when out is not nil.
func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder, wantCode int, out any) envelope {
	t.Helper()

	require.Equal(t, wantCode, w.Code, w.Body.String())

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.Equal(t, wantCode, env.StatusCode)
	if wantCode < http.StatusBadRequest {
		require.Equal(t, "success", env.Status)
	} else {
		require.Equal(t, "failure", env.Status)
	}

	if out != nil {
		require.NoError(t, json.Unmarshal(env.Data, out))
	}
	return env
}

package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/task-tracker-api/internal/constants"
	"github.com/yukikurage/task-tracker-api/internal/database"
	"github.com/yukikurage/task-tracker-api/internal/handlers"
	"github.com/yukikurage/task-tracker-api/internal/middleware"
	"github.com/yukikurage/task-tracker-api/internal/repository"
	"github.com/yukikurage/task-tracker-api/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm/logger"
)

type response struct {
	Status     string          `json:"status"`
	StatusCode int             `json:"status_code"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
}

type testApp struct {
	router *gin.Engine
}

func newTestApp(t *testing.T) testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Open(sqlite.Open(":memory:?_foreign_keys=on"), logger.Silent)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})
	require.NoError(t, database.Migrate(db))

	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	authService := services.NewAuthService(userRepo)
	taskService := services.NewTaskService(taskRepo, userRepo)

	reg := prometheus.NewRegistry()
	router := gin.New()
	Setup(router, Dependencies{
		SessionStore:  cookie.NewStore([]byte("secret")),
		TaskService:   taskService,
		AuthHandler:   handlers.NewAuthHandler(authService),
		TaskHandler:   handlers.NewTaskHandler(taskService, nil),
		HealthHandler: handlers.NewHealthHandler(db, nil),
		Metrics:       middleware.NewMetrics(reg),
		Gatherer:      reg,
	})

	return testApp{router: router}
}

func (app testApp) do(t *testing.T, method, path string, body any, cookies ...*http.Cookie) (*httptest.ResponseRecorder, response) {
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
	app.router.ServeHTTP(w, req)

	var resp response
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func (app testApp) signup(t *testing.T, email, name string) uint64 {
	t.Helper()
	w, resp := app.do(t, http.MethodPost, "/api/v1/auth/signup/", map[string]string{
		"email":    email,
		"name":     name,
		"password": "supersecret",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var user struct {
		ID uint64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &user))
	return user.ID
}

func TestSignupScenario(t *testing.T) {
	app := newTestApp(t)

	w, resp := app.do(t, http.MethodPost, "/api/v1/auth/signup/", map[string]string{
		"email":    "a@x.com",
		"name":     "Alice",
		"password": "supersecret",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotContains(t, string(resp.Data), "password")

	var user map[string]any
	require.NoError(t, json.Unmarshal(resp.Data, &user))
	assert.ElementsMatch(t, []string{"id", "email", "name", "mobile"}, keys(user))

	w, resp = app.do(t, http.MethodPost, "/api/v1/auth/signup/", map[string]string{
		"email":    "a@x.com",
		"name":     "Alice",
		"password": "supersecret",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "failure", resp.Status)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, constants.MsgEmailExists, resp.Message)
}

func TestTaskAssignmentScenario(t *testing.T) {
	app := newTestApp(t)
	alice := app.signup(t, "a@x.com", "Alice")
	bob := app.signup(t, "b@x.com", "Bob")

	// Alice creates the task while logged in
	w, _ := app.do(t, http.MethodPost, "/api/v1/auth/login/", map[string]string{
		"email":    "a@x.com",
		"password": "supersecret",
	})
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()

	w, resp := app.do(t, http.MethodPost, "/api/v1/task/", map[string]any{
		"name":           "Write report",
		"assigned_users": []uint64{alice, bob},
	}, cookies...)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var task struct {
		ID          uint64 `json:"id"`
		Assignments []struct {
			User              uint64 `json:"user"`
			IsPrimaryAssignee bool   `json:"is_primary_assignee"`
			Status            string `json:"status"`
		} `json:"assignments"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &task))
	require.Len(t, task.Assignments, 2)
	assert.Equal(t, alice, task.Assignments[0].User)
	assert.True(t, task.Assignments[0].IsPrimaryAssignee)
	assert.Equal(t, bob, task.Assignments[1].User)
	assert.False(t, task.Assignments[1].IsPrimaryAssignee)
	assert.Equal(t, "pending", task.Assignments[1].Status)

	// Assigning Bob again is rejected
	w, resp = app.do(t, http.MethodPost, "/api/v1/task/assign-task/", map[string]any{
		"task":           task.ID,
		"assigned_users": []uint64{bob},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "failure", resp.Status)

	// Bob still has exactly one assignment on the task
	w, resp = app.do(t, http.MethodGet, fmt.Sprintf("/api/v1/task/user-task/?user=%d", bob), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var userTasks []struct {
		ID          uint64 `json:"id"`
		UserDetails struct {
			ID uint64 `json:"id"`
		} `json:"user_details"`
		TaskDetails []struct {
			IsPrimaryAssignee bool   `json:"is_primary_assignee"`
			Status            string `json:"status"`
		} `json:"task_details"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &userTasks))
	require.Len(t, userTasks, 1)
	assert.Equal(t, task.ID, userTasks[0].ID)
	assert.Equal(t, bob, userTasks[0].UserDetails.ID)
	require.Len(t, userTasks[0].TaskDetails, 1)
	assert.False(t, userTasks[0].TaskDetails[0].IsPrimaryAssignee)

	// user query parameter is required
	w, resp = app.do(t, http.MethodGet, "/api/v1/task/user-task/", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, constants.MsgUserIDRequired, resp.Message)
}

func TestOperationalEndpoints(t *testing.T) {
	app := newTestApp(t)

	w, _ := app.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(constants.HeaderRequestID))

	w, _ = app.do(t, http.MethodGet, "/api/v1/auth/me/", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = app.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `task_tracker_http_requests_total{method="GET",route="/health",status="200"} 1`)
	assert.Contains(t, w.Body.String(), `task_tracker_http_requests_total{method="GET",route="/api/v1/auth/me/",status="401"} 1`)
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/task-tracker-api/internal/config"
	"github.com/yukikurage/task-tracker-api/internal/constants"
	"github.com/yukikurage/task-tracker-api/internal/models"
	"github.com/yukikurage/task-tracker-api/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newSessionRouter returns a router with a cookie session store and a
// /login route that stores userID in the session.
func newSessionRouter(userID uint64) *gin.Engine {
	r := gin.New()
	r.Use(Sessions(cookie.NewStore([]byte("secret"))))
	r.POST("/login", func(c *gin.Context) {
		session := sessions.Default(c)
		session.Set(constants.ContextKeyUserID, userID)
		if err := session.Save(); err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusOK)
	})
	return r
}

func login(t *testing.T, r *gin.Engine) []*http.Cookie {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies
}

func TestRequireAuth(t *testing.T) {
	r := newSessionRouter(42)
	r.GET("/me", RequireAuth(), func(c *gin.Context) {
		userID, ok := GetUserID(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"user_id": userID})
	})

	// Anonymous
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "failure", body["status"])
	assert.Equal(t, constants.MsgNotAuthenticated, body["message"])

	// Logged in
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	for _, c := range login(t, r) {
		req.AddCookie(c)
	}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id": 42}`, w.Body.String())
}

func TestLoadSessionUser(t *testing.T) {
	r := newSessionRouter(7)
	r.GET("/whoami", LoadSessionUser(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetOptionalUserID(c)})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id": null}`, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	for _, c := range login(t, r) {
		req.AddCookie(c)
	}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.JSONEq(t, `{"user_id": 7}`, w.Body.String())
}

func TestGetUserID(t *testing.T) {
	tests := []struct {
		name   string
		value  any
		want   uint64
		wantOK bool
	}{
		{name: "uint64", value: uint64(5), want: 5, wantOK: true},
		{name: "uint", value: uint(6), want: 6, wantOK: true},
		{name: "int", value: 7, want: 7, wantOK: true},
		{name: "negative int", value: -1, wantOK: false},
		{name: "string", value: "8", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Set(constants.ContextKeyUserID, tt.value)

			got, ok := GetUserID(c)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, ok := GetUserID(c)
	assert.False(t, ok)
	assert.Nil(t, GetOptionalUserID(c))
}

type fakeTaskFinder struct {
	task *models.Task
	err  error
}

func (f fakeTaskFinder) GetTask(ctx context.Context, taskID uint64) (*models.Task, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.task, nil
}

func TestLoadTask(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		finder   fakeTaskFinder
		wantCode int
	}{
		{name: "found", path: "/task/3/", finder: fakeTaskFinder{task: &models.Task{ID: 3, Name: "Write report"}}, wantCode: http.StatusOK},
		{name: "not a number", path: "/task/abc/", wantCode: http.StatusBadRequest},
		{name: "zero", path: "/task/0/", wantCode: http.StatusBadRequest},
		{name: "missing", path: "/task/9/", finder: fakeTaskFinder{err: services.ErrTaskNotFound}, wantCode: http.StatusNotFound},
		{name: "store failure", path: "/task/9/", finder: fakeTaskFinder{err: errors.New("db down")}, wantCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/task/:id/", LoadTask(tt.finder), func(c *gin.Context) {
				task, ok := GetTask(c)
				require.True(t, ok)
				c.JSON(http.StatusOK, gin.H{"name": task.Name})
			})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(constants.ContextKeyRequest))
	})

	// Generated
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get(constants.HeaderRequestID)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, w.Body.String())

	// Propagated
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(constants.HeaderRequestID, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(constants.HeaderRequestID))
	assert.Equal(t, "abc-123", w.Body.String())
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)

	r := gin.New()
	r.Use(metrics.Handler())
	r.GET("/task/:id/", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for _, path := range []string{"/task/1/", "/task/2/", "/nope"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	families, err := reg.Gather()
	require.NoError(t, err)

	counts := map[string]float64{}
	for _, family := range families {
		if family.GetName() != "task_tracker_http_requests_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			labels := map[string]string{}
			for _, label := range metric.GetLabel() {
				labels[label.GetName()] = label.GetValue()
			}
			counts[labels["route"]+" "+labels["status"]] = metric.GetCounter().GetValue()
		}
	}

	assert.Equal(t, map[string]float64{
		"/task/:id/ 200": 2,
		"unmatched 404":  1,
	}, counts)
}

func TestNewSessionStore_Redis(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := &config.Config{
		RedisHost:     mr.Host(),
		RedisPort:     mr.Port(),
		SessionSecret: "secret",
	}
	store, err := NewSessionStore(cfg)
	require.NoError(t, err)

	r := gin.New()
	r.Use(Sessions(store))
	r.POST("/login", func(c *gin.Context) {
		session := sessions.Default(c)
		session.Set(constants.ContextKeyUserID, uint64(1))
		require.NoError(t, session.Save())
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, w.Result().Cookies())
	assert.Equal(t, constants.SessionCookieName, w.Result().Cookies()[0].Name)
	assert.Len(t, mr.Keys(), 1)
}

// Package routes defines the HTTP routes of the task tracker API.
package routes

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yukikurage/task-tracker-api/internal/handlers"
	"github.com/yukikurage/task-tracker-api/internal/middleware"
	"github.com/yukikurage/task-tracker-api/internal/services"
)

// Dependencies holds everything the routes are wired to.
type Dependencies struct {
	SessionStore  sessions.Store
	TaskService   *services.TaskService
	AuthHandler   *handlers.AuthHandler
	TaskHandler   *handlers.TaskHandler
	HealthHandler *handlers.HealthHandler
	Metrics       *middleware.Metrics
	Gatherer      prometheus.Gatherer
}

// Setup configures all HTTP routes for the application.
func Setup(router *gin.Engine, deps Dependencies) {
	router.Use(middleware.RequestID())
	if deps.Metrics != nil {
		router.Use(deps.Metrics.Handler())
	}

	// Health check
	router.GET("/health", deps.HealthHandler.Check)
	// Metrics
	if deps.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	api := router.Group("/api/v1")
	api.Use(middleware.Sessions(deps.SessionStore))
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup/", deps.AuthHandler.Signup)
			auth.POST("/login/", deps.AuthHandler.Login)
			auth.POST("/logout/", deps.AuthHandler.Logout)
			auth.GET("/me/", middleware.RequireAuth(), deps.AuthHandler.GetCurrentUser)
		}

		// Task routes. A session, when present, records who assigned.
		tasks := api.Group("/task")
		tasks.Use(middleware.LoadSessionUser())
		{
			tasks.POST("/", deps.TaskHandler.CreateTask)
			tasks.GET("/", deps.TaskHandler.ListTasks)
			tasks.POST("/assign-task/", deps.TaskHandler.AssignTask)
			tasks.GET("/user-task/", deps.TaskHandler.GetUserTasks)
			tasks.PATCH("/assignment-status/", deps.TaskHandler.UpdateAssignmentStatus)
			tasks.POST("/suggest/", deps.TaskHandler.SuggestTasks)
			tasks.GET("/:id/", middleware.LoadTask(deps.TaskService), deps.TaskHandler.GetTask)
		}
	}
}

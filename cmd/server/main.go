package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/yukikurage/task-tracker-api/internal/config"
	"github.com/yukikurage/task-tracker-api/internal/database"
	"github.com/yukikurage/task-tracker-api/internal/handlers"
	"github.com/yukikurage/task-tracker-api/internal/middleware"
	"github.com/yukikurage/task-tracker-api/internal/repository"
	"github.com/yukikurage/task-tracker-api/internal/routes"
	"github.com/yukikurage/task-tracker-api/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Redis holds sessions; the client is only used for health checks
	redisClient, err := database.NewRedisClient(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	store, err := middleware.NewSessionStore(cfg)
	if err != nil {
		log.Fatalf("Failed to create Redis store: %v", err)
	}

	// Initialize repositories and services
	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	authService := services.NewAuthService(userRepo)
	taskService := services.NewTaskService(taskRepo, userRepo)
	suggestionService := services.NewSuggestionService(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	if suggestionService == nil {
		log.Println("OPENAI_API_KEY not set, task suggestions disabled")
	}

	// Initialize Gin router
	r := gin.Default()

	routes.Setup(r, routes.Dependencies{
		SessionStore:  store,
		TaskService:   taskService,
		AuthHandler:   handlers.NewAuthHandler(authService),
		TaskHandler:   handlers.NewTaskHandler(taskService, suggestionService),
		HealthHandler: handlers.NewHealthHandler(db, redisClient),
		Metrics:       middleware.NewMetrics(prometheus.DefaultRegisterer),
		Gatherer:      prometheus.DefaultGatherer,
	})

	// Start server
	log.Printf("Server starting on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

package http

import (
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"task_tracker/internal/config"
	"task_tracker/internal/http/handlers"
	"task_tracker/internal/http/middleware"
	"task_tracker/internal/repository"
	"task_tracker/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter builds the engine with the standard middleware chain and all routes
func NewRouter(store repository.Store, tasks *service.TaskService, cfg *config.Config, version string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger(), middleware.Metrics())
	RegisterRoutes(r, store, tasks, cfg, version)
	return r
}

func RegisterRoutes(r *gin.Engine, store repository.Store, tasks *service.TaskService, cfg *config.Config, version string) {
	h := handlers.NewHandler(tasks)
	healthHandler := handlers.NewHealthHandler(store, cfg.StorageDriver, version)

	apiRateLimit := cfg.APIRateLimit
	apiRateWindow := cfg.APIRateWindow
	if apiRateWindow <= 0 {
		apiRateWindow = time.Minute
	}

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes
	v1 := r.Group("/api/v1")
	v1.Use(middleware.RateLimit(apiRateLimit, apiRateWindow))
	registerAPIRoutes(v1, h)

	// Legacy routes used by the existing frontend
	legacy := r.Group("/")
	legacy.Use(middleware.RateLimit(apiRateLimit, apiRateWindow))
	registerAPIRoutes(legacy, h)

	if cfg.StaticDir != "" {
		registerStatic(r, cfg.StaticDir)
	}
}

func registerAPIRoutes(api *gin.RouterGroup, h *handlers.Handler) {
	// Active tasks and single task
	api.GET("/get_tasks", h.ListTasks)
	api.GET("/task/:id", h.GetTask)

	// Create / edit
	api.POST("/add_task", h.CreateTask)
	api.POST("/update_task/:id", h.UpdateTask)

	// Lifecycle
	api.POST("/start_task/:id", h.StartTask)
	api.POST("/pause_task/:id", h.PauseTask)
	api.POST("/end_task/:id", h.EndTask)
	api.POST("/delete_task/:id", h.DeleteTask)
	api.POST("/restore_task/:id", h.RestoreTask)

	// Manual ordering
	api.POST("/update_task_order", h.UpdateTaskOrder)

	// History views
	api.GET("/get_completed_tasks", h.ListCompletedTasks)
	api.GET("/get_deleted_tasks", h.ListDeletedTasks)
}

// registerStatic serves the frontend: /static for assets, index.html for any other GET
func registerStatic(r *gin.Engine, dir string) {
	r.Static("/static", dir)
	index := filepath.Join(dir, "index.html")
	r.GET("/", func(c *gin.Context) {
		c.File(index)
	})
	r.NoRoute(func(c *gin.Context) {
		if c.Request.Method != http.MethodGet || strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.File(index)
	})
}

package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/todo-planner/internal/services"
)

type Handler interface {
	HandleCreateTodo(c *gin.Context)
	HandleGetTodos(c *gin.Context)
	HandleUpdateTodo(c *gin.Context)
	HandleDeleteTodo(c *gin.Context)

	HandleHealth(c *gin.Context)

	HandleRequestID(c *gin.Context)
	HandleAccessLog(c *gin.Context)
	HandleMetrics(c *gin.Context)
}

type handlerImpl struct {
	logger        zerolog.Logger
	tasks         services.TaskService
	healthTimeout time.Duration
}

func New(
	logger zerolog.Logger,
	taskService services.TaskService,
	healthTimeout time.Duration,
) Handler {
	if healthTimeout <= 0 {
		healthTimeout = 2 * time.Second
	}
	return &handlerImpl{
		logger:        logger,
		tasks:         taskService,
		healthTimeout: healthTimeout,
	}
}

type RouterOptions struct {
	AllowedOrigins []string
	HealthTimeout  time.Duration
}

// NewRouter builds the engine serving the todo API under /api together with
// /healthz and /metrics.
func NewRouter(
	logger zerolog.Logger,
	taskService services.TaskService,
	opts RouterOptions,
) *gin.Engine {
	h := New(logger, taskService, opts.HealthTimeout)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(h.HandleRequestID)
	router.Use(h.HandleAccessLog)
	router.Use(h.HandleMetrics)
	if len(opts.AllowedOrigins) > 0 {
		router.Use(newCORSMiddleware(opts.AllowedOrigins))
	}

	router.GET("/healthz", h.HandleHealth)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	RegisterRoutes(router, h)
	return router
}

func RegisterRoutes(router gin.IRouter, h Handler) {
	apiRouter := router.Group("/api")
	apiRouter.POST("/todos", h.HandleCreateTodo)
	apiRouter.GET("/todos", h.HandleGetTodos)
	apiRouter.PUT("/todos/:id", h.HandleUpdateTodo)
	apiRouter.DELETE("/todos/:id", h.HandleDeleteTodo)
}

func newCORSMiddleware(origins []string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", requestIDHeader},
		ExposeHeaders: []string{requestIDHeader},
		MaxAge:        12 * time.Hour,
	})
}

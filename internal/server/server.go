package server

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"todoapi/internal/models"
)

// APIPrefix is the path every task endpoint lives under.
const APIPrefix = "/todo/api/v1"

// TaskStore is the persistence the handlers need.
type TaskStore interface {
	Insert(ctx context.Context, t models.Task) (models.Task, error)
	FindAll(ctx context.Context) ([]models.Task, error)
	FindByID(ctx context.Context, id int64) (models.Task, error)
	Update(ctx context.Context, t models.Task) (models.Task, error)
	Ping(ctx context.Context) error
}

// Server provides HTTP handlers for the to-do API.
type Server struct {
	engine  *gin.Engine
	store   TaskStore
	logger  *slog.Logger
	metrics *metrics
}

// New constructs the HTTP server with routes and middleware configured.
func New(store TaskStore, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	registerValidations()

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.RedirectTrailingSlash = false
	router.HandleMethodNotAllowed = true

	srv := &Server{
		engine:  router,
		store:   store,
		logger:  logger,
		metrics: newMetrics(),
	}

	router.Use(requestID())
	router.Use(srv.logRequests())
	router.Use(srv.metrics.middleware())
	router.Use(cors())
	router.Use(gin.Recovery())

	srv.registerRoutes()
	return srv
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// registerRoutes wires the API, health and metrics handlers together.
func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", s.handleHealth)
	s.engine.GET("/metrics", gin.WrapH(s.metrics.handler()))

	api := s.engine.Group(APIPrefix)
	{
		api.GET("", s.handleLanding)
		api.GET("/", s.handleLanding)
		api.POST("/create-task", s.handleCreateTask)
		api.GET("/get-all-task", s.handleListTasks)
		api.PUT("/mark-as-done/:id", s.handleMarkAsDone)
		api.PUT("/update-task/:id", s.handleUpdateTask)
	}

	s.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "endpoint not found"})
	})
	s.engine.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
	})
}

func (s *Server) handleLanding(c *gin.Context) {
	c.String(http.StatusOK, "API is working!")
}

// handleHealth reports whether the database answers.
func (s *Server) handleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		s.respondError(c, http.StatusServiceUnavailable, "database unavailable", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// parseID converts a path parameter to int64 with error handling.
func parseID(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid identifier"})
		return 0, false
	}
	return id, true
}

// respondError logs the cause and returns a JSON error payload with a short message.
func (s *Server) respondError(c *gin.Context, status int, message string, cause error) {
	if cause != nil {
		level := slog.LevelWarn
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		s.logger.LogAttrs(c.Request.Context(), level, "request failed",
			slog.String("path", c.FullPath()),
			slog.Int("status", status),
			slog.String("request_id", requestIDFrom(c)),
			slog.String("error", cause.Error()),
		)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// respondSuccess writes the payload as JSON.
func respondSuccess(c *gin.Context, status int, payload any) {
	if payload == nil {
		c.Status(status)
		return
	}
	c.JSON(status, payload)
}

package server

import (
	"errors"
	"io"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"todoapi/internal/models"
	"todoapi/internal/storage"
)

type createTaskRequest struct {
	Task string `json:"task" binding:"required,notblank"`
}

type updateTaskRequest struct {
	Task *string `json:"task"`
}

var registerOnce sync.Once

// registerValidations teaches gin's validator the notblank tag.
func registerValidations() {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			_ = v.RegisterValidation("notblank", validators.NotBlank)
		}
	})
}

// handleCreateTask inserts a new pending task.
func (s *Server) handleCreateTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			s.respondError(c, http.StatusBadRequest, "task is required", err)
			return
		}
		s.respondError(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	task, err := s.store.Insert(c.Request.Context(), models.Task{Task: req.Task})
	if err != nil {
		s.respondStoreError(c, "failed to create task", err)
		return
	}
	respondSuccess(c, http.StatusOK, task)
}

// handleListTasks returns every stored task.
func (s *Server) handleListTasks(c *gin.Context) {
	tasks, err := s.store.FindAll(c.Request.Context())
	if err != nil {
		s.respondStoreError(c, "failed to list tasks", err)
		return
	}
	respondSuccess(c, http.StatusOK, tasks)
}

// handleMarkAsDone flags a task as done. Repeating the call is harmless.
func (s *Server) handleMarkAsDone(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	task, err := s.store.FindByID(ctx, id)
	if err != nil {
		s.respondStoreError(c, "failed to load task", err)
		return
	}

	task.MarkDone()
	task, err = s.store.Update(ctx, task)
	if err != nil {
		s.respondStoreError(c, "failed to update task", err)
		return
	}
	respondSuccess(c, http.StatusOK, task)
}

// handleUpdateTask replaces the task text. A missing or blank text leaves
// the task as it is.
func (s *Server) handleUpdateTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		s.respondError(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	ctx := c.Request.Context()
	task, err := s.store.FindByID(ctx, id)
	if err != nil {
		s.respondStoreError(c, "failed to load task", err)
		return
	}

	if req.Task != nil && task.Rename(*req.Task) {
		task, err = s.store.Update(ctx, task)
		if err != nil {
			s.respondStoreError(c, "failed to update task", err)
			return
		}
	}
	respondSuccess(c, http.StatusOK, task)
}

// respondStoreError maps store failures to HTTP statuses.
func (s *Server) respondStoreError(c *gin.Context, message string, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		s.respondError(c, http.StatusNotFound, "task not found", err)
	case errors.Is(err, models.ErrEmptyTask):
		s.respondError(c, http.StatusBadRequest, "task is required", err)
	default:
		s.respondError(c, http.StatusInternalServerError, message, err)
	}
}

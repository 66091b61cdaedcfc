package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"task_tracker/internal/domain"
	"task_tracker/internal/logger"
	"task_tracker/internal/service"

	"github.com/gin-gonic/gin"
)

const msgTaskNotFound = "Task not found"

type Handler struct {
	Tasks *service.TaskService
}

func NewHandler(tasks *service.TaskService) *Handler {
	return &Handler{Tasks: tasks}
}

// taskID reads the :id path parameter, answering 404 itself when it is not a positive integer
func taskID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": msgTaskNotFound})
		return 0, false
	}
	return id, true
}

// writeError maps service errors to status codes. op names the failed operation
// in the generic 500 message, e.g. "start task".
func writeError(c *gin.Context, err error, op string) {
	var ve *service.ValidationError
	var te *domain.TransitionError

	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Message})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": msgTaskNotFound})
	case errors.As(err, &te):
		c.JSON(http.StatusBadRequest, gin.H{"error": transitionMessage(te)})
	default:
		logger.WithContext(c.Request.Context()).Error("request failed", "op", op, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to %s", op)})
	}
}

func transitionMessage(te *domain.TransitionError) string {
	switch te.Action {
	case domain.TaskActionPause:
		return `Task is not in a "doing" state and cannot be paused.`
	case domain.TaskActionRestore:
		return "Task is not in a restorable state (must be completed or deleted)."
	default:
		return fmt.Sprintf("Task cannot be %s from status %s.", pastTense(te.Action), te.From)
	}
}

func pastTense(a domain.TaskAction) string {
	switch a {
	case domain.TaskActionStart:
		return "started"
	case domain.TaskActionEnd:
		return "ended"
	case domain.TaskActionDelete:
		return "deleted"
	default:
		return string(a) + "d"
	}
}

package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"task_tracker/internal/domain"
	"task_tracker/internal/service"

	"github.com/gin-gonic/gin"
)

const msgInvalidOrder = `Invalid payload. "ordered_ids" must be a list.`

type taskRequest struct {
	Name               *string `json:"name"`
	Detail             *string `json:"detail"`
	LimitDate          *string `json:"limit_date"`
	ScheduledStartDate *string `json:"scheduled_start_date"`
	ScheduledEndDate   *string `json:"scheduled_end_date"`
	IsNotMain          *bool   `json:"is_not_main"`
}

func (r taskRequest) input() service.TaskInput {
	return service.TaskInput{
		Name:               r.Name,
		Detail:             r.Detail,
		LimitDate:          r.LimitDate,
		ScheduledStartDate: r.ScheduledStartDate,
		ScheduledEndDate:   r.ScheduledEndDate,
		IsNotMain:          r.IsNotMain,
	}
}

// bindOptionalJSON decodes the body into dst. An empty body leaves dst untouched.
func bindOptionalJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ListTasks returns active tasks. ?sort_by=limit_date sorts by deadline, anything else by display order.
func (h *Handler) ListTasks(c *gin.Context) {
	tasks, err := h.Tasks.ListActive(c.Request.Context(), domain.ParseActiveSort(c.Query("sort_by")))
	if err != nil {
		writeError(c, err, "retrieve tasks")
		return
	}
	c.JSON(http.StatusOK, summaries(tasks))
}

func (h *Handler) GetTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	task, err := h.Tasks.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err, "retrieve task details")
		return
	}
	c.JSON(http.StatusOK, newTaskDetail(task))
}

func (h *Handler) CreateTask(c *gin.Context) {
	var req taskRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON payload"})
		return
	}

	id, err := h.Tasks.Create(c.Request.Context(), req.input())
	if err != nil {
		writeError(c, err, "create task")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Task created successfully", "task_id": id})
}

func (h *Handler) UpdateTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	var req taskRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		// an unknown task is reported before a bad body
		if _, getErr := h.Tasks.Get(ctx, id); getErr != nil {
			writeError(c, getErr, "update task")
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON payload"})
		return
	}

	if _, err := h.Tasks.Update(ctx, id, req.input()); err != nil {
		writeError(c, err, "update task")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task updated successfully"})
}

// DeleteTask soft deletes. The body {"delete_reason": "..."} is optional.
func (h *Handler) DeleteTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	var req struct {
		DeleteReason *string `json:"delete_reason"`
	}
	if err := bindOptionalJSON(c, &req); err != nil {
		req.DeleteReason = nil
	}

	res, err := h.Tasks.Delete(c.Request.Context(), id, req.DeleteReason)
	if err != nil {
		writeError(c, err, "delete task")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
		"task_id": res.Task.ID,
		"status":  res.Task.Status,
	})
}

func (h *Handler) StartTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	res, err := h.Tasks.Start(c.Request.Context(), id)
	if err != nil {
		writeError(c, err, "start task")
		return
	}
	if !res.Changed {
		c.JSON(http.StatusOK, gin.H{
			"message":           "Task is already completed",
			"status":            res.Task.Status,
			"actual_start_date": res.Task.ActualStartDate,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":           "Task started",
		"actual_start_date": res.Task.ActualStartDate,
		"status":            res.Task.Status,
	})
}

func (h *Handler) PauseTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	res, err := h.Tasks.Pause(c.Request.Context(), id)
	if err != nil {
		writeError(c, err, "pause task")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    "Task paused (returned to todo)",
		"task_id":    res.Task.ID,
		"new_status": res.Task.Status,
	})
}

func (h *Handler) EndTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	res, err := h.Tasks.End(c.Request.Context(), id)
	if err != nil {
		writeError(c, err, "end task")
		return
	}
	if !res.Changed {
		c.JSON(http.StatusOK, gin.H{
			"message":         "Task is already completed",
			"status":          res.Task.Status,
			"actual_end_date": res.Task.ActualEndDate,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":           "Task completed",
		"actual_start_date": res.Task.ActualStartDate,
		"actual_end_date":   res.Task.ActualEndDate,
		"status":            res.Task.Status,
	})
}

func (h *Handler) RestoreTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	res, err := h.Tasks.Restore(c.Request.Context(), id)
	if err != nil {
		writeError(c, err, "restore task")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    "Task restored successfully",
		"task_id":    res.Task.ID,
		"new_status": res.Task.Status,
	})
}

// UpdateTaskOrder expects {"ordered_ids": [3, 1, 2]}; position becomes display_order
func (h *Handler) UpdateTaskOrder(c *gin.Context) {
	var req struct {
		OrderedIDs []int64 `json:"ordered_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidOrder})
		return
	}

	err := h.Tasks.Reorder(c.Request.Context(), req.OrderedIDs)
	var nf *service.NotFoundError
	if errors.As(err, &nf) {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Task with ID %d not found during reorder.", nf.ID)})
		return
	}
	if err != nil {
		writeError(c, err, "update task order")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task order updated successfully"})
}

// ListCompletedTasks returns completed tasks, most recently finished first
func (h *Handler) ListCompletedTasks(c *gin.Context) {
	tasks, err := h.Tasks.ListCompleted(c.Request.Context())
	if err != nil {
		writeError(c, err, "retrieve completed tasks")
		return
	}
	c.JSON(http.StatusOK, details(tasks))
}

// ListDeletedTasks returns deleted tasks, most recently updated first
func (h *Handler) ListDeletedTasks(c *gin.Context) {
	tasks, err := h.Tasks.ListDeleted(c.Request.Context())
	if err != nil {
		writeError(c, err, "retrieve deleted tasks")
		return
	}
	c.JSON(http.StatusOK, details(tasks))
}

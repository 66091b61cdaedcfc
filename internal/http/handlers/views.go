package handlers

import (
	"time"

	"task_tracker/internal/domain"
)

// TaskSummary is a row of the active listing
type TaskSummary struct {
	ID                 int64             `json:"id"`
	Name               string            `json:"name"`
	Detail             *string           `json:"detail"`
	LimitDate          time.Time         `json:"limit_date"`
	ScheduledStartDate *time.Time        `json:"scheduled_start_date"`
	ScheduledEndDate   *time.Time        `json:"scheduled_end_date"`
	ActualStartDate    *time.Time        `json:"actual_start_date"`
	ActualEndDate      *time.Time        `json:"actual_end_date"`
	IsNotMain          bool              `json:"is_not_main"`
	Status             domain.TaskStatus `json:"status"`
	DisplayOrder       int               `json:"display_order"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

// TaskDetail adds the delete reason; used for single tasks and the history views
type TaskDetail struct {
	TaskSummary
	DeleteReason *string `json:"delete_reason"`
}

func newTaskSummary(t *domain.Task) TaskSummary {
	return TaskSummary{
		ID:                 t.ID,
		Name:               t.Name,
		Detail:             t.Detail,
		LimitDate:          t.LimitDate,
		ScheduledStartDate: t.ScheduledStartDate,
		ScheduledEndDate:   t.ScheduledEndDate,
		ActualStartDate:    t.ActualStartDate,
		ActualEndDate:      t.ActualEndDate,
		IsNotMain:          t.IsNotMain,
		Status:             t.Status,
		DisplayOrder:       t.DisplayOrder,
		CreatedAt:          t.CreatedAt,
		UpdatedAt:          t.UpdatedAt,
	}
}

func newTaskDetail(t *domain.Task) TaskDetail {
	return TaskDetail{TaskSummary: newTaskSummary(t), DeleteReason: t.DeleteReason}
}

func summaries(tasks []*domain.Task) []TaskSummary {
	out := make([]TaskSummary, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, newTaskSummary(t))
	}
	return out
}

func details(tasks []*domain.Task) []TaskDetail {
	out := make([]TaskDetail, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, newTaskDetail(t))
	}
	return out
}

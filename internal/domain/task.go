package domain

import "time"

// TaskStatus is the lifecycle state of a task
type TaskStatus string

const (
	TaskStatusTodo      TaskStatus = "todo"
	TaskStatusDoing     TaskStatus = "doing"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusDeleted   TaskStatus = "deleted"
)

// AllTaskStatuses lists every status in lifecycle order
var AllTaskStatuses = []TaskStatus{
	TaskStatusTodo,
	TaskStatusDoing,
	TaskStatusCompleted,
	TaskStatusDeleted,
}

// Valid reports whether s is one of the known statuses
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusDoing, TaskStatusCompleted, TaskStatusDeleted:
		return true
	}
	return false
}

// IsActive reports whether a task in this status shows up in the main list
func (s TaskStatus) IsActive() bool {
	return s == TaskStatusTodo || s == TaskStatusDoing
}

// Task is the only persisted entity. Rows are never removed; deletion is a status.
type Task struct {
	ID                 int64      `db:"id" json:"id"`
	Name               string     `db:"name" json:"name"`
	Detail             *string    `db:"detail" json:"detail"`
	LimitDate          time.Time  `db:"limit_date" json:"limit_date"`
	ScheduledStartDate *time.Time `db:"scheduled_start_date" json:"scheduled_start_date"`
	ScheduledEndDate   *time.Time `db:"scheduled_end_date" json:"scheduled_end_date"`
	ActualStartDate    *time.Time `db:"actual_start_date" json:"actual_start_date"`
	ActualEndDate      *time.Time `db:"actual_end_date" json:"actual_end_date"`
	DisplayOrder       int        `db:"display_order" json:"display_order"`
	IsNotMain          bool       `db:"is_not_main" json:"is_not_main"`
	Status             TaskStatus `db:"status" json:"status"`
	DeleteReason       *string    `db:"delete_reason" json:"delete_reason"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`
}

// NewTask returns a task in its initial state: todo, display order 0
func NewTask(name string, limit time.Time, now time.Time) *Task {
	return &Task{
		Name:      name,
		LimitDate: limit,
		Status:    TaskStatusTodo,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy so callers can mutate without aliasing stored values
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	c := *t
	c.Detail = cloneString(t.Detail)
	c.ScheduledStartDate = cloneTime(t.ScheduledStartDate)
	c.ScheduledEndDate = cloneTime(t.ScheduledEndDate)
	c.ActualStartDate = cloneTime(t.ActualStartDate)
	c.ActualEndDate = cloneTime(t.ActualEndDate)
	c.DeleteReason = cloneString(t.DeleteReason)
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

package repository

import (
	"strings"

	"task_tracker/internal/domain"
)

// Queries use ? placeholders; the Postgres store rebinds them to $n.

const taskColumns = `id, name, detail, limit_date, scheduled_start_date, scheduled_end_date,
	actual_start_date, actual_end_date, display_order, is_not_main, status, delete_reason,
	created_at, updated_at`

const (
	getTaskSQL = `SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`

	insertTaskSQL = `
		INSERT INTO tasks (name, detail, limit_date, scheduled_start_date, scheduled_end_date,
			actual_start_date, actual_end_date, display_order, is_not_main, status, delete_reason,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`

	updateTaskSQL = `
		UPDATE tasks SET name = ?, detail = ?, limit_date = ?, scheduled_start_date = ?,
			scheduled_end_date = ?, actual_start_date = ?, actual_end_date = ?, display_order = ?,
			is_not_main = ?, status = ?, delete_reason = ?, updated_at = ?
		WHERE id = ?`

	setDisplayOrderSQL = `UPDATE tasks SET display_order = ?, updated_at = ? WHERE id = ?`
)

func insertArgs(t *domain.Task) []any {
	return []any{
		t.Name, t.Detail, t.LimitDate, t.ScheduledStartDate, t.ScheduledEndDate,
		t.ActualStartDate, t.ActualEndDate, t.DisplayOrder, t.IsNotMain, string(t.Status), t.DeleteReason,
		t.CreatedAt, t.UpdatedAt,
	}
}

func updateArgs(t *domain.Task) []any {
	return []any{
		t.Name, t.Detail, t.LimitDate, t.ScheduledStartDate,
		t.ScheduledEndDate, t.ActualStartDate, t.ActualEndDate, t.DisplayOrder,
		t.IsNotMain, string(t.Status), t.DeleteReason, t.UpdatedAt,
		t.ID,
	}
}

var orderClauses = map[domain.TaskOrder]string{
	domain.OrderDisplay:         "display_order ASC, limit_date ASC, id ASC",
	domain.OrderLimitDate:       "limit_date ASC, display_order ASC, id ASC",
	domain.OrderRecentlyEnded:   "actual_end_date DESC NULLS LAST, id DESC",
	domain.OrderRecentlyUpdated: "updated_at DESC, id DESC",
}

func listTasksSQL(q domain.TaskQuery) (string, []any) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + taskColumns + ` FROM tasks`)

	args := make([]any, 0, len(q.Statuses))
	if len(q.Statuses) > 0 {
		marks := make([]string, len(q.Statuses))
		for i, s := range q.Statuses {
			marks[i] = "?"
			args = append(args, string(s))
		}
		sb.WriteString(` WHERE status IN (` + strings.Join(marks, ", ") + `)`)
	}

	order, ok := orderClauses[q.Order]
	if !ok {
		order = orderClauses[domain.OrderDisplay]
	}
	sb.WriteString(` ORDER BY ` + order)
	return sb.String(), args
}

package domain

import (
	"sort"
	"time"
)

// TaskOrder selects how a listing is sorted
type TaskOrder string

const (
	// display_order, then limit_date
	OrderDisplay TaskOrder = "display_order"
	// limit_date, then display_order
	OrderLimitDate TaskOrder = "limit_date"
	// most recently ended first
	OrderRecentlyEnded TaskOrder = "recently_ended"
	// most recently updated first
	OrderRecentlyUpdated TaskOrder = "recently_updated"
)

// ParseActiveSort maps the sort_by query value of the active listing.
// Anything other than limit_date falls back to display order.
func ParseActiveSort(sortBy string) TaskOrder {
	if sortBy == string(OrderLimitDate) {
		return OrderLimitDate
	}
	return OrderDisplay
}

// TaskQuery filters tasks by status and sorts them
type TaskQuery struct {
	Statuses []TaskStatus
	Order    TaskOrder
}

// Matches reports whether t passes the status filter. No statuses means all.
func (q TaskQuery) Matches(t *Task) bool {
	if len(q.Statuses) == 0 {
		return true
	}
	for _, s := range q.Statuses {
		if t.Status == s {
			return true
		}
	}
	return false
}

// SortTasks orders tasks in place the way the SQL stores order them.
// Ties are broken by id so listings are deterministic.
func SortTasks(tasks []*Task, order TaskOrder) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		switch order {
		case OrderLimitDate:
			if !a.LimitDate.Equal(b.LimitDate) {
				return a.LimitDate.Before(b.LimitDate)
			}
			if a.DisplayOrder != b.DisplayOrder {
				return a.DisplayOrder < b.DisplayOrder
			}
			return a.ID < b.ID
		case OrderRecentlyEnded:
			if c := compareDescNullsLast(a.ActualEndDate, b.ActualEndDate); c != 0 {
				return c < 0
			}
			return a.ID > b.ID
		case OrderRecentlyUpdated:
			if !a.UpdatedAt.Equal(b.UpdatedAt) {
				return a.UpdatedAt.After(b.UpdatedAt)
			}
			return a.ID > b.ID
		default:
			if a.DisplayOrder != b.DisplayOrder {
				return a.DisplayOrder < b.DisplayOrder
			}
			if !a.LimitDate.Equal(b.LimitDate) {
				return a.LimitDate.Before(b.LimitDate)
			}
			return a.ID < b.ID
		}
	})
}

// compareDescNullsLast returns -1 when a sorts first
func compareDescNullsLast(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case a.After(*b):
		return -1
	case b.After(*a):
		return 1
	}
	return 0
}

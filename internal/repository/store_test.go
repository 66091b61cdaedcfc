package repository

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"task_tracker/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func newTask(name string, limit time.Time, now time.Time) *domain.Task {
	return domain.NewTask(name, limit, now)
}

// runStoreContract checks the behaviour every Store implementation must share
func runStoreContract(t *testing.T, store Store) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	t.Run("insert and get", func(t *testing.T) {
		detail := "quarterly numbers"
		start := now.Add(24 * time.Hour)
		end := now.Add(48 * time.Hour)
		task := newTask("report", now.Add(72*time.Hour), now)
		task.Detail = &detail
		task.ScheduledStartDate = &start
		task.ScheduledEndDate = &end
		task.IsNotMain = true

		require.NoError(t, store.Tasks().Insert(ctx, task))
		require.NotZero(t, task.ID)

		got, err := store.Tasks().Get(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, "report", got.Name)
		require.NotNil(t, got.Detail)
		assert.Equal(t, detail, *got.Detail)
		assert.True(t, got.LimitDate.Equal(now.Add(72*time.Hour)))
		require.NotNil(t, got.ScheduledStartDate)
		assert.True(t, got.ScheduledStartDate.Equal(start))
		assert.Nil(t, got.ActualStartDate)
		assert.Nil(t, got.DeleteReason)
		assert.True(t, got.IsNotMain)
		assert.Equal(t, domain.TaskStatusTodo, got.Status)
		assert.Equal(t, 0, got.DisplayOrder)
	})

	t.Run("get unknown", func(t *testing.T) {
		_, err := store.Tasks().Get(ctx, 999999)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("update writes all columns", func(t *testing.T) {
		task := newTask("draft", now, now)
		require.NoError(t, store.Tasks().Insert(ctx, task))

		later := now.Add(time.Hour)
		reason := "obsolete"
		task.Name = "final"
		task.Status = domain.TaskStatusDeleted
		task.DeleteReason = &reason
		task.ActualEndDate = &later
		task.UpdatedAt = later
		require.NoError(t, store.Tasks().Update(ctx, task))

		got, err := store.Tasks().Get(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, "final", got.Name)
		assert.Equal(t, domain.TaskStatusDeleted, got.Status)
		require.NotNil(t, got.DeleteReason)
		assert.Equal(t, reason, *got.DeleteReason)
		require.NotNil(t, got.ActualEndDate)
		assert.True(t, got.ActualEndDate.Equal(later))
		assert.True(t, got.UpdatedAt.Equal(later))

		missing := task.Clone()
		missing.ID = 999999
		assert.ErrorIs(t, store.Tasks().Update(ctx, missing), ErrNotFound)
	})

	t.Run("list filters by status", func(t *testing.T) {
		done := newTask("done", now, now)
		require.NoError(t, store.Tasks().Insert(ctx, done))
		end := now.Add(time.Minute)
		done.Status = domain.TaskStatusCompleted
		done.ActualStartDate = &end
		done.ActualEndDate = &end
		require.NoError(t, store.Tasks().Update(ctx, done))

		active, err := store.Tasks().List(ctx, domain.TaskQuery{
			Statuses: []domain.TaskStatus{domain.TaskStatusTodo, domain.TaskStatusDoing},
			Order:    domain.OrderDisplay,
		})
		require.NoError(t, err)
		for _, task := range active {
			assert.True(t, task.Status.IsActive(), "task %d has status %s", task.ID, task.Status)
		}

		completed, err := store.Tasks().List(ctx, domain.TaskQuery{
			Statuses: []domain.TaskStatus{domain.TaskStatusCompleted},
			Order:    domain.OrderRecentlyEnded,
		})
		require.NoError(t, err)
		require.NotEmpty(t, completed)
		for _, task := range completed {
			assert.Equal(t, domain.TaskStatusCompleted, task.Status)
		}
	})

	t.Run("list orders active tasks", func(t *testing.T) {
		insert := func(name string, display int, limit time.Time) int64 {
			task := newTask(name, limit, now)
			task.DisplayOrder = display
			require.NoError(t, store.Tasks().Insert(ctx, task))
			return task.ID
		}
		late := insert("late", 5, now.Add(2*time.Hour))
		early := insert("early", 5, now.Add(time.Hour))
		first := insert("first", 3, now.Add(3*time.Hour))
		twin := insert("twin", 3, now.Add(3*time.Hour))
		mine := []int64{late, early, first, twin}

		byDisplay, err := store.Tasks().List(ctx, domain.TaskQuery{
			Statuses: []domain.TaskStatus{domain.TaskStatusTodo},
			Order:    domain.OrderDisplay,
		})
		require.NoError(t, err)
		assert.Equal(t, []int64{first, twin, early, late}, keepIDs(byDisplay, mine))

		byLimit, err := store.Tasks().List(ctx, domain.TaskQuery{
			Statuses: []domain.TaskStatus{domain.TaskStatusTodo},
			Order:    domain.OrderLimitDate,
		})
		require.NoError(t, err)
		assert.Equal(t, []int64{early, late, first, twin}, keepIDs(byLimit, mine))
	})

	t.Run("list orders ended tasks latest first with nulls last", func(t *testing.T) {
		base := time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)
		complete := func(name string, end *time.Time) int64 {
			task := newTask(name, now, now)
			require.NoError(t, store.Tasks().Insert(ctx, task))
			task.Status = domain.TaskStatusCompleted
			task.ActualEndDate = end
			require.NoError(t, store.Tasks().Update(ctx, task))
			return task.ID
		}
		at := func(d time.Duration) *time.Time {
			v := base.Add(d)
			return &v
		}
		whole := complete("whole second", at(0))
		half := complete("half second", at(500*time.Millisecond))
		tick := complete("123ms", at(123*time.Millisecond))
		open := complete("no end date", nil)

		got, err := store.Tasks().List(ctx, domain.TaskQuery{
			Statuses: []domain.TaskStatus{domain.TaskStatusCompleted},
			Order:    domain.OrderRecentlyEnded,
		})
		require.NoError(t, err)
		assert.Equal(t, []int64{half, tick, whole, open}, keepIDs(got, []int64{whole, half, tick, open}))
	})

	t.Run("names longer than 255 characters", func(t *testing.T) {
		name := strings.Repeat("x", 300)
		task := newTask(name, now, now)
		require.NoError(t, store.Tasks().Insert(ctx, task))

		got, err := store.Tasks().Get(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, name, got.Name)
	})

	t.Run("tx rollback leaves nothing behind", func(t *testing.T) {
		a := newTask("a", now, now)
		require.NoError(t, store.Tasks().Insert(ctx, a))

		err := store.InTx(ctx, func(repo TaskRepository) error {
			if err := repo.SetDisplayOrder(ctx, a.ID, 7, now.Add(time.Hour)); err != nil {
				return err
			}
			return repo.SetDisplayOrder(ctx, 999999, 8, now.Add(time.Hour))
		})
		assert.ErrorIs(t, err, ErrNotFound)

		got, err := store.Tasks().Get(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, got.DisplayOrder)
		assert.True(t, got.UpdatedAt.Equal(now))
	})

	t.Run("tx commit", func(t *testing.T) {
		var id int64
		err := store.InTx(ctx, func(repo TaskRepository) error {
			task := newTask("in tx", now, now)
			if err := repo.Insert(ctx, task); err != nil {
				return err
			}
			id = task.ID
			return repo.SetDisplayOrder(ctx, id, 3, now)
		})
		require.NoError(t, err)

		got, err := store.Tasks().Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 3, got.DisplayOrder)
	})

	t.Run("tx callback error is returned as is", func(t *testing.T) {
		err := store.InTx(ctx, func(TaskRepository) error { return errBoom })
		assert.ErrorIs(t, err, errBoom)
	})
}

// keepIDs returns the ids of tasks that are in want, in listing order
func keepIDs(tasks []*domain.Task, want []int64) []int64 {
	res := make([]int64, 0, len(want))
	for _, task := range tasks {
		for _, id := range want {
			if task.ID == id {
				res = append(res, task.ID)
			}
		}
	}
	return res
}

func TestMemoryStore(t *testing.T) {
	runStoreContract(t, NewMemoryStore())
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	store := NewMemoryStore()

	task := newTask("x", now, now)
	require.NoError(t, store.Tasks().Insert(ctx, task))

	got, err := store.Tasks().Get(ctx, task.ID)
	require.NoError(t, err)
	got.Name = "changed"

	again, err := store.Tasks().Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "x", again.Name)
}

func TestSQLiteStore(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	defer store.Close()

	require.NoError(t, store.Migrate(context.Background()))
	// idempotent
	require.NoError(t, store.Migrate(context.Background()))

	runStoreContract(t, store)
}

func TestSQLiteStore_CorruptStatus(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Migrate(ctx))

	task := newTask("x", time.Now(), time.Now())
	require.NoError(t, store.Tasks().Insert(ctx, task))

	// single connection, so the pragma holds for the reads below
	_, err = store.db.ExecContext(ctx, `PRAGMA ignore_check_constraints = ON`)
	require.NoError(t, err)
	_, err = store.db.ExecContext(ctx, `UPDATE tasks SET status = 'archived' WHERE id = ?`, task.ID)
	require.NoError(t, err)

	_, err = store.Tasks().Get(ctx, task.ID)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)

	_, err = store.Tasks().List(ctx, domain.TaskQuery{Order: domain.OrderDisplay})
	assert.Error(t, err)
}

// Integration-style test: runs only if DATABASE_URL is set.
func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	ctx := context.Background()
	store, err := NewPostgresStore(ctx, dsn)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Migrate(ctx))
	_, err = store.db.Exec(ctx, `TRUNCATE tasks RESTART IDENTITY`)
	require.NoError(t, err)

	runStoreContract(t, store)
}

func TestListTasksSQL(t *testing.T) {
	query, args := listTasksSQL(domain.TaskQuery{
		Statuses: []domain.TaskStatus{domain.TaskStatusTodo, domain.TaskStatusDoing},
		Order:    domain.OrderLimitDate,
	})
	assert.Contains(t, query, "WHERE status IN (?, ?)")
	assert.Contains(t, query, "ORDER BY limit_date ASC, display_order ASC, id ASC")
	assert.Equal(t, []any{"todo", "doing"}, args)

	query, args = listTasksSQL(domain.TaskQuery{Order: "bogus"})
	assert.NotContains(t, query, "WHERE")
	assert.Contains(t, query, "ORDER BY display_order ASC")
	assert.Empty(t, args)

	assert.Contains(t, pg(setDisplayOrderSQL), "display_order = $1, updated_at = $2 WHERE id = $3")
}

func TestReadRow_RejectsUnknownStatus(t *testing.T) {
	task := newTask("x", time.Now(), time.Now())
	task.ID = 7
	task.Status = "archived"

	err := readRow(task)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), `unknown status "archived"`)

	task.Status = domain.TaskStatusDoing
	assert.NoError(t, readRow(task))
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "mongo", "")
	assert.Error(t, err)
}

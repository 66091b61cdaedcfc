package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"task_tracker/internal/domain"
)

var ErrNotFound = errors.New("task not found")

// TaskRepository reads and writes task rows. Implementations are bound either
// to the store itself or to an open transaction.
type TaskRepository interface {
	Get(ctx context.Context, id int64) (*domain.Task, error)
	List(ctx context.Context, q domain.TaskQuery) ([]*domain.Task, error)
	// Insert stores t and sets t.ID
	Insert(ctx context.Context, t *domain.Task) error
	// Update writes every column of t
	Update(ctx context.Context, t *domain.Task) error
	SetDisplayOrder(ctx context.Context, id int64, order int, now time.Time) error
}

// Store is the storage context handed to the service layer
type Store interface {
	Tasks() TaskRepository
	// InTx runs fn in one transaction. Any error returned by fn rolls everything back.
	InTx(ctx context.Context, fn func(TaskRepository) error) error
	// Migrate creates the schema if it does not exist
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

// Open builds the store selected by driver
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case DriverPostgres:
		return NewPostgresStore(ctx, dsn)
	case DriverSQLite:
		return NewSQLiteStore(dsn)
	case DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// readRow finishes a task scanned from a driver: timestamps become UTC and
// a status outside the known set is reported as a corrupt row.
func readRow(t *domain.Task) error {
	if !t.Status.Valid() {
		return fmt.Errorf("task %d has unknown status %q", t.ID, t.Status)
	}
	utc(t)
	return nil
}

// utc normalises every timestamp read back from a driver
func utc(t *domain.Task) {
	t.LimitDate = t.LimitDate.UTC()
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	for _, p := range []**time.Time{&t.ScheduledStartDate, &t.ScheduledEndDate, &t.ActualStartDate, &t.ActualEndDate} {
		if *p != nil {
			v := (*p).UTC()
			*p = &v
		}
	}
}

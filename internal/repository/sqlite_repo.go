package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"task_tracker/internal/domain"
	"task_tracker/internal/logger"
	"task_tracker/internal/migrations"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore keeps tasks in a SQLite file
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens path. ":memory:" gives a private in-memory database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one connection: sqlite serialises writers anyway and :memory: is per connection
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	logger.Info("database connected", "driver", DriverSQLite, "path", path)
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Tasks() TaskRepository {
	return &TaskRepositorySQLite{q: s.db}
}

func (s *SQLiteStore) InTx(ctx context.Context, fn func(TaskRepository) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(&TaskRepositorySQLite{q: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	files, err := migrations.Load(DriverSQLite)
	if err != nil {
		return err
	}
	for _, f := range files {
		if _, err := s.db.ExecContext(ctx, f.SQL); err != nil {
			return fmt.Errorf("apply %s: %w", f.Name, err)
		}
		logger.Debug("migration applied", "file", f.Name)
	}
	return nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// TaskRepositorySQLite runs task queries against the database or a transaction
type TaskRepositorySQLite struct {
	q sqlx.ExtContext
}

func (r *TaskRepositorySQLite) Get(ctx context.Context, id int64) (*domain.Task, error) {
	var t domain.Task
	if err := sqlx.GetContext(ctx, r.q, &t, getTaskSQL, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := readRow(&t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TaskRepositorySQLite) List(ctx context.Context, q domain.TaskQuery) ([]*domain.Task, error) {
	query, args := listTasksSQL(q)
	res := make([]*domain.Task, 0)
	if err := sqlx.SelectContext(ctx, r.q, &res, query, args...); err != nil {
		return nil, err
	}
	for _, t := range res {
		if err := readRow(t); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (r *TaskRepositorySQLite) Insert(ctx context.Context, t *domain.Task) error {
	return r.q.QueryRowxContext(ctx, insertTaskSQL, insertArgs(t)...).Scan(&t.ID)
}

func (r *TaskRepositorySQLite) Update(ctx context.Context, t *domain.Task) error {
	res, err := r.q.ExecContext(ctx, updateTaskSQL, updateArgs(t)...)
	if err != nil {
		return err
	}
	return requireOneRow(res)
}

func (r *TaskRepositorySQLite) SetDisplayOrder(ctx context.Context, id int64, order int, now time.Time) error {
	res, err := r.q.ExecContext(ctx, setDisplayOrderSQL, order, now, id)
	if err != nil {
		return err
	}
	return requireOneRow(res)
}

func requireOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"task_tracker/internal/domain"
	"task_tracker/internal/logger"
	"task_tracker/internal/migrations"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
)

// pgxQuerier is satisfied by both *pgxpool.Pool and pgx.Tx
type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore keeps tasks in Postgres through a pgx pool
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore connects and pings the database
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create database pool: %w", err)
	}

	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger.Info("database connected", "driver", DriverPostgres)
	return &PostgresStore{db: db}, nil
}

// NewPostgresStoreFromPool wraps an existing pool
func NewPostgresStoreFromPool(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Tasks() TaskRepository {
	return &TaskRepositoryPG{q: s.db}
}

func (s *PostgresStore) InTx(ctx context.Context, fn func(TaskRepository) error) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&TaskRepositoryPG{q: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	files, err := migrations.Load(DriverPostgres)
	if err != nil {
		return err
	}
	for _, f := range files {
		if _, err := s.db.Exec(ctx, f.SQL); err != nil {
			return fmt.Errorf("apply %s: %w", f.Name, err)
		}
		logger.Debug("migration applied", "file", f.Name)
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}

// TaskRepositoryPG runs task queries against a pool or a transaction
type TaskRepositoryPG struct {
	q pgxQuerier
}

func pg(query string) string {
	return sqlx.Rebind(sqlx.DOLLAR, query)
}

func (r *TaskRepositoryPG) Get(ctx context.Context, id int64) (*domain.Task, error) {
	t, err := scanTaskPG(r.q.QueryRow(ctx, pg(getTaskSQL), id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *TaskRepositoryPG) List(ctx context.Context, q domain.TaskQuery) ([]*domain.Task, error) {
	query, args := listTasksSQL(q)
	rows, err := r.q.Query(ctx, pg(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := make([]*domain.Task, 0)
	for rows.Next() {
		t, err := scanTaskPG(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, t)
	}
	return res, rows.Err()
}

func (r *TaskRepositoryPG) Insert(ctx context.Context, t *domain.Task) error {
	return r.q.QueryRow(ctx, pg(insertTaskSQL), insertArgs(t)...).Scan(&t.ID)
}

func (r *TaskRepositoryPG) Update(ctx context.Context, t *domain.Task) error {
	tag, err := r.q.Exec(ctx, pg(updateTaskSQL), updateArgs(t)...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *TaskRepositoryPG) SetDisplayOrder(ctx context.Context, id int64, order int, now time.Time) error {
	tag, err := r.q.Exec(ctx, pg(setDisplayOrderSQL), order, now, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanTaskPG(row pgx.Row) (*domain.Task, error) {
	var t domain.Task
	var status string

	if err := row.Scan(
		&t.ID, &t.Name, &t.Detail, &t.LimitDate, &t.ScheduledStartDate, &t.ScheduledEndDate,
		&t.ActualStartDate, &t.ActualEndDate, &t.DisplayOrder, &t.IsNotMain, &status, &t.DeleteReason,
		&t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return nil, err
	}

	t.Status = domain.TaskStatus(status)
	if err := readRow(&t); err != nil {
		return nil, err
	}
	return &t, nil
}

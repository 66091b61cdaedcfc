package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"task_tracker/internal/domain"
	"task_tracker/internal/logger"
	"task_tracker/internal/repository"
)

var activeStatuses = []domain.TaskStatus{domain.TaskStatusTodo, domain.TaskStatusDoing}

// TaskService owns the task lifecycle: validation, status transitions and ordering.
// Every write runs in a single store transaction.
type TaskService struct {
	store repository.Store
	now   func() time.Time
	log   *slog.Logger
}

type Option func(*TaskService)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *TaskService) { s.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *TaskService) { s.log = l }
}

func NewTaskService(store repository.Store, opts ...Option) *TaskService {
	s := &TaskService{
		store: store,
		now:   time.Now,
		log:   logger.Get(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TransitionResult is the task after a lifecycle action. Changed is false for no-ops.
type TransitionResult struct {
	Task    *domain.Task
	Changed bool
}

func (s *TaskService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// logFor prefers the request-scoped logger set by the HTTP middleware
func (s *TaskService) logFor(ctx context.Context) *slog.Logger {
	if l, ok := logger.FromContext(ctx); ok {
		return l
	}
	return s.log
}

// ListActive returns todo and doing tasks. Orders other than limit_date fall back to display order.
func (s *TaskService) ListActive(ctx context.Context, order domain.TaskOrder) ([]*domain.Task, error) {
	if order != domain.OrderLimitDate {
		order = domain.OrderDisplay
	}
	return s.list(ctx, domain.TaskQuery{Statuses: activeStatuses, Order: order})
}

// ListCompleted returns completed tasks, most recently finished first
func (s *TaskService) ListCompleted(ctx context.Context) ([]*domain.Task, error) {
	return s.list(ctx, domain.TaskQuery{
		Statuses: []domain.TaskStatus{domain.TaskStatusCompleted},
		Order:    domain.OrderRecentlyEnded,
	})
}

// ListDeleted returns deleted tasks, most recently updated first
func (s *TaskService) ListDeleted(ctx context.Context) ([]*domain.Task, error) {
	return s.list(ctx, domain.TaskQuery{
		Statuses: []domain.TaskStatus{domain.TaskStatusDeleted},
		Order:    domain.OrderRecentlyUpdated,
	})
}

func (s *TaskService) list(ctx context.Context, q domain.TaskQuery) ([]*domain.Task, error) {
	tasks, err := s.store.Tasks().List(ctx, q)
	if err != nil {
		s.logFor(ctx).Error("list tasks failed", "order", q.Order, "error", err)
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (s *TaskService) Get(ctx context.Context, id int64) (*domain.Task, error) {
	task, err := s.store.Tasks().Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound(err, id)
		}
		s.logFor(ctx).Error("get task failed", "task_id", id, "error", err)
		return nil, fmt.Errorf("get task %d: %w", id, err)
	}
	return task, nil
}

// Create validates in and stores a new todo task, returning its id
func (s *TaskService) Create(ctx context.Context, in TaskInput) (int64, error) {
	v, err := in.Validate()
	if err != nil {
		return 0, err
	}

	task := domain.NewTask(v.name, v.limitDate, s.timestamp())
	v.applyTo(task)

	err = s.store.InTx(ctx, func(repo repository.TaskRepository) error {
		return repo.Insert(ctx, task)
	})
	if err != nil {
		s.logFor(ctx).Error("create task failed", "error", err)
		return 0, fmt.Errorf("create task: %w", err)
	}

	s.logFor(ctx).Info("task created", "task_id", task.ID)
	return task.ID, nil
}

// Update replaces the user editable fields of an existing task.
// Status, display order, delete reason and actual dates are left alone.
func (s *TaskService) Update(ctx context.Context, id int64, in TaskInput) (*domain.Task, error) {
	var updated *domain.Task
	err := s.store.InTx(ctx, func(repo repository.TaskRepository) error {
		task, err := repo.Get(ctx, id)
		if err != nil {
			return notFound(err, id)
		}

		v, err := in.Validate()
		if err != nil {
			return err
		}

		v.applyTo(task)
		task.UpdatedAt = s.timestamp()
		if err := repo.Update(ctx, task); err != nil {
			return notFound(err, id)
		}
		updated = task
		return nil
	})
	if err != nil {
		if isUnexpected(err) {
			s.logFor(ctx).Error("update task failed", "task_id", id, "error", err)
			return nil, fmt.Errorf("update task %d: %w", id, err)
		}
		return nil, err
	}

	s.logFor(ctx).Info("task updated", "task_id", id)
	return updated, nil
}

// Start moves a task to doing. The first start time is kept. No-op on completed tasks.
func (s *TaskService) Start(ctx context.Context, id int64) (*TransitionResult, error) {
	return s.transition(ctx, id, domain.TaskActionStart, nil)
}

// Pause moves a doing task back to todo
func (s *TaskService) Pause(ctx context.Context, id int64) (*TransitionResult, error) {
	return s.transition(ctx, id, domain.TaskActionPause, nil)
}

// End completes a task, recording a start time too if it never started. No-op on completed tasks.
func (s *TaskService) End(ctx context.Context, id int64) (*TransitionResult, error) {
	return s.transition(ctx, id, domain.TaskActionEnd, nil)
}

// Delete soft deletes a task from any status
func (s *TaskService) Delete(ctx context.Context, id int64, reason *string) (*TransitionResult, error) {
	return s.transition(ctx, id, domain.TaskActionDelete, reason)
}

// Restore moves a completed or deleted task back to todo
func (s *TaskService) Restore(ctx context.Context, id int64) (*TransitionResult, error) {
	return s.transition(ctx, id, domain.TaskActionRestore, nil)
}

func (s *TaskService) transition(ctx context.Context, id int64, action domain.TaskAction, reason *string) (*TransitionResult, error) {
	var res *TransitionResult
	var from domain.TaskStatus

	err := s.store.InTx(ctx, func(repo repository.TaskRepository) error {
		task, err := repo.Get(ctx, id)
		if err != nil {
			return notFound(err, id)
		}

		from = task.Status
		changed, err := task.Apply(action, s.timestamp(), reason)
		if err != nil {
			return err
		}
		if changed {
			if err := repo.Update(ctx, task); err != nil {
				return notFound(err, id)
			}
		}
		res = &TransitionResult{Task: task, Changed: changed}
		return nil
	})

	log := s.logFor(ctx).With("task_id", id, "action", action)
	switch {
	case err == nil && res.Changed:
		TaskTransitions.WithLabelValues(string(action), resultApplied).Inc()
		log.Info("task transitioned", "from", from, "to", res.Task.Status)
	case err == nil:
		TaskTransitions.WithLabelValues(string(action), resultNoop).Inc()
		log.Debug("task transition skipped", "status", from)
	case errors.Is(err, domain.ErrInvalidTransition):
		TaskTransitions.WithLabelValues(string(action), resultRejected).Inc()
		log.Warn("task transition rejected", "status", from)
	case errors.Is(err, ErrNotFound):
		TaskTransitions.WithLabelValues(string(action), resultNotFound).Inc()
	default:
		TaskTransitions.WithLabelValues(string(action), resultError).Inc()
		log.Error("task transition failed", "error", err)
		return nil, fmt.Errorf("%s task %d: %w", action, id, err)
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Reorder sets display_order to each id's position in ids. Unknown ids reject the whole batch.
func (s *TaskService) Reorder(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return invalid("ordered_ids", `Invalid payload. "ordered_ids" must be a list.`)
	}

	now := s.timestamp()
	err := s.store.InTx(ctx, func(repo repository.TaskRepository) error {
		for i, id := range ids {
			if err := repo.SetDisplayOrder(ctx, id, i, now); err != nil {
				return notFound(err, id)
			}
		}
		return nil
	})
	if err != nil {
		if isUnexpected(err) {
			s.logFor(ctx).Error("reorder tasks failed", "count", len(ids), "error", err)
			return fmt.Errorf("reorder tasks: %w", err)
		}
		return err
	}

	s.logFor(ctx).Info("tasks reordered", "count", len(ids))
	return nil
}

func isUnexpected(err error) bool {
	return !errors.Is(err, ErrValidation) &&
		!errors.Is(err, ErrNotFound) &&
		!errors.Is(err, domain.ErrInvalidTransition)
}

package repository

import (
	"context"
	"sync"
	"time"

	"task_tracker/internal/domain"
)

type memoryState struct {
	tasks  map[int64]*domain.Task
	nextID int64
}

func (s *memoryState) clone() *memoryState {
	c := &memoryState{tasks: make(map[int64]*domain.Task, len(s.tasks)), nextID: s.nextID}
	for id, t := range s.tasks {
		c.tasks[id] = t.Clone()
	}
	return c
}

// MemoryStore keeps tasks in process memory. Transactions work on a copy
// that replaces the live state only when the callback succeeds.
type MemoryStore struct {
	mu    sync.Mutex
	state *memoryState
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: &memoryState{tasks: make(map[int64]*domain.Task)}}
}

func (s *MemoryStore) Tasks() TaskRepository {
	return &memoryRepo{store: s}
}

func (s *MemoryStore) InTx(ctx context.Context, fn func(TaskRepository) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.state.clone()
	if err := fn(&memoryRepo{state: work}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.state = work
	return nil
}

func (s *MemoryStore) Migrate(context.Context) error { return nil }

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }

// memoryRepo is bound to the live store (store set) or to a transaction copy (state set)
type memoryRepo struct {
	store *MemoryStore
	state *memoryState
}

func (r *memoryRepo) with(fn func(*memoryState) error) error {
	if r.state != nil {
		return fn(r.state)
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return fn(r.store.state)
}

func (r *memoryRepo) Get(_ context.Context, id int64) (*domain.Task, error) {
	var out *domain.Task
	err := r.with(func(st *memoryState) error {
		t, ok := st.tasks[id]
		if !ok {
			return ErrNotFound
		}
		out = t.Clone()
		return nil
	})
	return out, err
}

func (r *memoryRepo) List(_ context.Context, q domain.TaskQuery) ([]*domain.Task, error) {
	out := make([]*domain.Task, 0)
	_ = r.with(func(st *memoryState) error {
		for _, t := range st.tasks {
			if q.Matches(t) {
				out = append(out, t.Clone())
			}
		}
		return nil
	})
	domain.SortTasks(out, q.Order)
	return out, nil
}

func (r *memoryRepo) Insert(_ context.Context, t *domain.Task) error {
	return r.with(func(st *memoryState) error {
		st.nextID++
		t.ID = st.nextID
		st.tasks[t.ID] = t.Clone()
		return nil
	})
}

func (r *memoryRepo) Update(_ context.Context, t *domain.Task) error {
	return r.with(func(st *memoryState) error {
		cur, ok := st.tasks[t.ID]
		if !ok {
			return ErrNotFound
		}
		next := t.Clone()
		next.CreatedAt = cur.CreatedAt
		st.tasks[t.ID] = next
		return nil
	})
}

func (r *memoryRepo) SetDisplayOrder(_ context.Context, id int64, order int, now time.Time) error {
	return r.with(func(st *memoryState) error {
		t, ok := st.tasks[id]
		if !ok {
			return ErrNotFound
		}
		t.DisplayOrder = order
		t.UpdatedAt = now
		return nil
	})
}

package task

import (
	"context"
	"sync"
)

// Store tracks task state across the upload/processing lifecycle.
type Store interface {
	Put(ctx context.Context, t Task) error
	SetStatus(ctx context.Context, id string, status Status, detail string) error
	Get(ctx context.Context, id string) (Task, bool, error)
}

// MemoryStore is the default single-process store.
type MemoryStore struct {
	mu    sync.RWMutex
	tasks map[string]Task
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tasks: make(map[string]Task)}
}

// Put registers a task.
func (s *MemoryStore) Put(ctx context.Context, t Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[t.ID] = t
	return nil
}

// SetStatus updates status and error detail for a known task. Unknown IDs are
// a no-op so status writes after a store restart never fail the pipeline.
func (s *MemoryStore) SetStatus(ctx context.Context, id string, status Status, detail string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil
	}
	t.Status = status
	t.Error = detail
	s.tasks[id] = t
	return nil
}

// Get looks up a task by ID.
func (s *MemoryStore) Get(ctx context.Context, id string) (Task, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[id]
	return t, ok, nil
}

package repository

import (
	"context"
	"sync"

	"go-city/entities"
)

// MemoryStore 进程内存储，进程退出即丢失
type MemoryStore struct {
	mu    sync.RWMutex
	state entities.GameState
	ready bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Reset(ctx context.Context, state entities.GameState) error {
	return s.Save(ctx, state)
}

func (s *MemoryStore) Load(_ context.Context) (entities.GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.ready {
		return entities.GameState{}, ErrNotInitialized
	}
	return s.state, nil
}

func (s *MemoryStore) Save(_ context.Context, state entities.GameState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.ready = true
	return nil
}

func (s *MemoryStore) Close() error { return nil }

package store

import (
	"context"
	"sync"
	"time"
)

// MemoryRepository - in-process хранилище с TTL
type MemoryRepository struct {
	mu    sync.RWMutex
	ttl   time.Duration
	now   func() time.Time
	items map[string]memoryItem
}

type memoryItem struct {
	state     State
	expiresAt time.Time
}

func NewMemoryRepository(ttl time.Duration) *MemoryRepository {
	return &MemoryRepository{ttl: ttl, now: time.Now, items: make(map[string]memoryItem)}
}

func (r *MemoryRepository) Load(_ context.Context, key string) (State, bool, error) {
	r.mu.RLock()
	item, ok := r.items[key]
	r.mu.RUnlock()
	if !ok {
		return State{}, false, nil
	}
	if r.ttl > 0 && r.now().After(item.expiresAt) {
		r.mu.Lock()
		delete(r.items, key)
		r.mu.Unlock()
		return State{}, false, nil
	}
	return item.state, true, nil
}

func (r *MemoryRepository) Save(_ context.Context, key string, s State) error {
	r.mu.Lock()
	r.items[key] = memoryItem{state: s, expiresAt: r.now().Add(r.ttl)}
	r.mu.Unlock()
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	delete(r.items, key)
	r.mu.Unlock()
	return nil
}

// Len - число сохраненных сессий
func (r *MemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// Sweep удаляет просроченные состояния, возвращает число удаленных
func (r *MemoryRepository) Sweep() int {
	if r.ttl <= 0 {
		return 0
	}
	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for key, item := range r.items {
		if now.After(item.expiresAt) {
			delete(r.items, key)
			removed++
		}
	}
	return removed
}

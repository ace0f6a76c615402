package queue

import (
	"context"
	"sync"
)

// MemoryStore is an in-process store. Payloads are kept by reference and
// are not durable across restarts.
type MemoryStore struct {
	mu     sync.RWMutex
	queues map[string]*orderedQueue
}

type orderedQueue struct {
	keys  []any
	items map[any][]any
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{queues: map[string]*orderedQueue{}}
}

func (s *MemoryStore) Put(_ context.Context, queue string, key any, payload []any) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.queues[queue]
	if !ok {
		q = &orderedQueue{items: map[any][]any{}}
		s.queues[queue] = q
	}
	if _, exists := q.items[key]; !exists {
		q.keys = append(q.keys, key)
	}
	q.items[key] = payload
	return nil
}

func (s *MemoryStore) Entries(_ context.Context, queue string) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q, ok := s.queues[queue]
	if !ok {
		return nil, nil
	}
	out := make([]Entry, 0, len(q.keys))
	for _, k := range q.keys {
		out = append(out, Entry{Key: k, Payload: q.items[k]})
	}
	return out, nil
}

func (s *MemoryStore) Forget(_ context.Context, queue string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.queues, queue)
	return nil
}

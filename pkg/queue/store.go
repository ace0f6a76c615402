// Package queue provides the stores backing the dispatcher's deferred queues.
//
// A store maps (queue name, item key) to a payload. Re-queuing a key
// overwrites its payload without moving it; Entries returns entries in the
// order their keys were first queued.
//
//	s := queue.NewMemoryStore()
//	s.Put(ctx, "mail", 42, []any{"welcome"})
//	entries, _ := s.Entries(ctx, "mail")
package queue

import (
	"context"
	"errors"
	"fmt"
	"reflect"
)

// ErrInvalidKey is returned for item keys that can't be used as map keys.
var ErrInvalidKey = errors.New("queue: invalid item key")

// Entry is one queued payload.
type Entry struct {
	Key     any
	Payload []any
}

// Store is the queue storage backend.
type Store interface {
	// Put stores payload under (queue, key), replacing any previous payload.
	Put(ctx context.Context, queue string, key any, payload []any) error
	// Entries returns a snapshot of the entries of queue in key-insertion order.
	// An unknown queue yields no entries and no error.
	Entries(ctx context.Context, queue string) ([]Entry, error)
	// Forget drops every entry of queue.
	Forget(ctx context.Context, queue string) error
}

// ValidateKey reports whether key can be stored.
func ValidateKey(key any) error {
	if key == nil {
		return fmt.Errorf("%w: nil", ErrInvalidKey)
	}
	// Value.Comparable also inspects interface fields holding slices or maps.
	if !reflect.ValueOf(key).Comparable() {
		return fmt.Errorf("%w: %T is not comparable", ErrInvalidKey, key)
	}
	return nil
}

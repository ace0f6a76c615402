package event

import (
	"context"
	"time"

	"github.com/shashiranjanraj/kashvi-events/pkg/queue"
)

// ErrInvalidQueueKey is returned by Queue for keys that are nil or not comparable.
var ErrInvalidQueueKey = queue.ErrInvalidKey

// Queue defers payload under (queueName, key) until Flush. Queuing an
// existing key replaces its payload and keeps its position.
func (d *Dispatcher) Queue(queueName string, key any, payload ...any) error {
	return d.store.Put(context.Background(), queueName, key, payload)
}

// Flush calls every flusher of queueName, in registration order, once per
// queued entry with (key, payload...). Entries stay queued; use ForgetQueue
// to drop them. A queue with no entries or no flushers is a no-op.
func (d *Dispatcher) Flush(queueName string) (err error) {
	d.mu.RLock()
	flushers := snapshot(d.flushers[queueName])
	d.mu.RUnlock()

	if len(flushers) == 0 {
		return nil
	}

	entries, err := d.store.Entries(context.Background(), queueName)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}

	calls := 0
	if d.observer != nil {
		start := time.Now()
		defer func() {
			d.observer.Flushed(queueName, calls, time.Since(start), err)
		}()
	}

	for _, f := range flushers {
		for _, e := range entries {
			args := make([]any, 0, len(e.Payload)+1)
			args = append(args, e.Key)
			args = append(args, e.Payload...)

			calls++
			if _, err := f(args...); err != nil {
				return err
			}
		}
	}
	return nil
}

// ForgetQueue drops every entry queued under queueName.
func (d *Dispatcher) ForgetQueue(queueName string) error {
	return d.store.Forget(context.Background(), queueName)
}

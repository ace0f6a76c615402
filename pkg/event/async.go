package event

import (
	"github.com/google/uuid"

	"github.com/shashiranjanraj/kashvi-events/pkg/workerpool"
)

// Async fires event on the dispatcher's worker pool and returns without
// waiting. Listener errors are logged. It returns workerpool.ErrPoolFull
// when every worker is busy and the backlog is full.
func (d *Dispatcher) Async(event string, payload ...any) error {
	d.poolOnce.Do(func() {
		d.pool = workerpool.New(d.poolSize, workerpool.WithPanicHandler(func(v any) {
			d.log.Error("event: async listener panicked", "panic", v)
		}))
	})
	if d.pool == nil {
		return workerpool.ErrPoolClosed
	}

	id := uuid.NewString()
	err := d.pool.Submit(func() {
		if _, err := d.Fire(event, payload...); err != nil {
			d.log.Error("event: async listener failed", "event", event, "dispatch_id", id, "error", err)
			return
		}
		d.log.Debug("event: async dispatch done", "event", event, "dispatch_id", id)
	})
	if err != nil {
		d.log.Warn("event: async dispatch rejected", "event", event, "error", err)
	}
	return err
}

// Close waits for pending Async dispatches and stops the worker pool.
// Async returns workerpool.ErrPoolClosed afterwards.
func (d *Dispatcher) Close() {
	d.poolOnce.Do(func() {})
	if d.pool != nil {
		d.pool.Shutdown()
	}
}

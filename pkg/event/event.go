// Package event provides a synchronous event dispatcher with global
// listeners, halting dispatch and deferred queues.
//
// Usage:
//
//	d := event.New()
//	d.Listen("user.registered", func(args ...any) (any, error) {
//	    return sendWelcome(args[0].(*User))
//	})
//	responses, err := d.Fire("user.registered", user)
//
// Listeners registered under "*" observe every fired event and receive
// (eventName, payload) instead of the spread payload.
package event

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/shashiranjanraj/kashvi-events/pkg/logger"
	"github.com/shashiranjanraj/kashvi-events/pkg/queue"
	"github.com/shashiranjanraj/kashvi-events/pkg/workerpool"
)

// Wildcard is the event name global listeners are registered under.
const Wildcard = "*"

// Observer is notified after every Fire and Flush.
type Observer interface {
	Fired(event string, listeners int, d time.Duration, err error)
	Flushed(queue string, invocations int, d time.Duration, err error)
}

// Dispatcher owns the listener registry and the deferred queues.
// All methods are safe for concurrent use; listeners are always invoked
// outside the registry lock.
type Dispatcher struct {
	mu       sync.RWMutex
	events   map[string][]Listener
	flushers map[string][]Listener
	resolver Resolver

	store    queue.Store
	log      *slog.Logger
	observer Observer

	poolSize int
	poolOnce sync.Once
	pool     *workerpool.Pool
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithResolver sets the resolver used for string listeners.
func WithResolver(r Resolver) Option {
	return func(d *Dispatcher) { d.resolver = r }
}

// WithStore replaces the default in-memory queue store.
func WithStore(s queue.Store) Option {
	return func(d *Dispatcher) { d.store = s }
}

// WithLogger sets the logger used for async failures and debug output.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) { d.log = l }
}

// WithObserver installs an Observer (e.g. metrics.Collector).
func WithObserver(o Observer) Option {
	return func(d *Dispatcher) { d.observer = o }
}

// WithAsyncWorkers sets the size of the pool backing Async. Default 4.
func WithAsyncWorkers(n int) Option {
	return func(d *Dispatcher) { d.poolSize = n }
}

// New creates an empty Dispatcher.
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		events:   map[string][]Listener{},
		flushers: map[string][]Listener{},
		log:      logger.L,
		poolSize: 4,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.store == nil {
		d.store = queue.NewMemoryStore()
	}
	return d
}

// SetResolver replaces the resolver used for string listeners. Listeners
// registered earlier resolve through the new resolver on their next call.
func (d *Dispatcher) SetResolver(r Resolver) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.resolver = r
}

// ─── Registration ─────────────────────────────────────────────────────────────

// Listen appends listener to the listeners of event.
func (d *Dispatcher) Listen(event string, listener any) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	l, err := d.makeListener(listener)
	if err != nil {
		return err
	}
	d.events[event] = append(d.events[event], l)
	return nil
}

// All registers a global listener. It is called with (eventName, payload)
// for every fired event.
func (d *Dispatcher) All(listener any) error {
	return d.Listen(Wildcard, listener)
}

// Override discards every listener of event and registers listener as
// its only one.
func (d *Dispatcher) Override(event string, listener any) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	l, err := d.makeListener(listener)
	if err != nil {
		return err
	}
	d.events[event] = []Listener{l}
	return nil
}

// Flusher appends listener to the flushers of queueName. Flushers are
// called with (key, payload...) for every queued entry on Flush.
func (d *Dispatcher) Flusher(queueName string, listener any) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	l, err := d.makeListener(listener)
	if err != nil {
		return err
	}
	d.flushers[queueName] = append(d.flushers[queueName], l)
	return nil
}

// Forget removes every listener registered for event.
func (d *Dispatcher) Forget(event string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.events, event)
}

// HasListeners reports whether event has direct listeners.
func (d *Dispatcher) HasListeners(event string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.events[event]) > 0
}

// Listeners returns a copy of the listeners registered for event.
func (d *Dispatcher) Listeners(event string) []Listener {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return snapshot(d.events[event])
}

// Events returns the sorted names of every event with at least one listener.
func (d *Dispatcher) Events() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	names := make([]string, 0, len(d.events))
	for name, ls := range d.events {
		if len(ls) > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// ─── Firing ───────────────────────────────────────────────────────────────────

// Fire calls every listener of event in registration order and returns
// their results, nils included. The first listener error aborts the call.
func (d *Dispatcher) Fire(event string, payload ...any) ([]any, error) {
	responses, _, err := d.fire(event, payload, false)
	return responses, err
}

// First calls the listeners of event until one returns a non-nil result
// and returns it. Remaining listeners are not called.
func (d *Dispatcher) First(event string, payload ...any) (any, error) {
	_, first, err := d.fire(event, payload, true)
	return first, err
}

func (d *Dispatcher) fire(event string, payload []any, halt bool) (responses []any, first any, err error) {
	d.mu.RLock()
	globals := snapshot(d.events[Wildcard])
	var listeners []Listener
	if event != Wildcard {
		listeners = snapshot(d.events[event])
	}
	d.mu.RUnlock()

	if d.observer != nil {
		start := time.Now()
		defer func() {
			d.observer.Fired(event, len(listeners), time.Since(start), err)
		}()
	}

	for _, g := range globals {
		if _, err := g(event, payload); err != nil {
			return nil, nil, err
		}
	}

	responses = make([]any, 0, len(listeners))
	for _, l := range listeners {
		res, err := l(payload...)
		if err != nil {
			return nil, nil, err
		}
		if halt && res != nil {
			return nil, res, nil
		}
		responses = append(responses, res)
	}

	if halt {
		return nil, nil, nil
	}
	return responses, nil, nil
}

func snapshot(ls []Listener) []Listener {
	if len(ls) == 0 {
		return nil
	}
	out := make([]Listener, len(ls))
	copy(out, ls)
	return out
}

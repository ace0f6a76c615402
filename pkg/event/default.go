package event

import "sync"

var (
	defaultMu  sync.RWMutex
	defaultDsp = New()
)

// Default returns the process-wide dispatcher used by the package functions.
func Default() *Dispatcher {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultDsp
}

// SetDefault replaces the process-wide dispatcher.
func SetDefault(d *Dispatcher) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultDsp = d
}

// Reset replaces the process-wide dispatcher with an empty one (useful in tests).
func Reset() {
	SetDefault(New())
}

// Listen registers a listener on the default dispatcher.
func Listen(event string, listener any) error { return Default().Listen(event, listener) }

// All registers a global listener on the default dispatcher.
func All(listener any) error { return Default().All(listener) }

// Override replaces the listeners of event on the default dispatcher.
func Override(event string, listener any) error { return Default().Override(event, listener) }

// Fire fires event on the default dispatcher.
func Fire(event string, payload ...any) ([]any, error) { return Default().Fire(event, payload...) }

// First fires event on the default dispatcher, halting on the first result.
func First(event string, payload ...any) (any, error) { return Default().First(event, payload...) }

// FireAsync fires event on the default dispatcher's worker pool.
func FireAsync(event string, payload ...any) error { return Default().Async(event, payload...) }

// Queue defers a payload on the default dispatcher.
func Queue(queueName string, key any, payload ...any) error {
	return Default().Queue(queueName, key, payload...)
}

// Flusher registers a flusher on the default dispatcher.
func Flusher(queueName string, listener any) error { return Default().Flusher(queueName, listener) }

// Flush flushes queueName on the default dispatcher.
func Flush(queueName string) error { return Default().Flush(queueName) }

// SetResolver sets the resolver of the default dispatcher.
func SetResolver(r Resolver) { Default().SetResolver(r) }

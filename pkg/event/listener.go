package event

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrInvalidListener is returned when a registered value can't be invoked.
	ErrInvalidListener = errors.New("event: invalid listener")

	// ErrNotHandler is returned when a resolved listener has no Handle method.
	ErrNotHandler = errors.New("event: resolved listener does not implement Handler")
)

// Listener is the normalised form of every registered listener.
type Listener func(args ...any) (any, error)

// Handler is the entry point of listeners resolved by identifier.
type Handler interface {
	Handle(args ...any) (any, error)
}

// Resolver turns a listener identifier into an instance implementing Handler.
// *container.Container satisfies it.
type Resolver interface {
	Resolve(id string) (any, error)
}

// Binder is optionally implemented by a Resolver so unknown identifiers are
// rejected at registration instead of on first call.
type Binder interface {
	Has(id string) bool
}

// makeListener normalises v. d.mu must be held.
func (d *Dispatcher) makeListener(v any) (Listener, error) {
	switch fn := v.(type) {
	case nil:
		return nil, fmt.Errorf("%w: nil", ErrInvalidListener)
	case Listener:
		if fn == nil {
			return nil, fmt.Errorf("%w: nil func", ErrInvalidListener)
		}
		return fn, nil
	case func(...any) (any, error):
		if fn == nil {
			return nil, fmt.Errorf("%w: nil func", ErrInvalidListener)
		}
		return fn, nil
	case func(...any) any:
		if fn == nil {
			return nil, fmt.Errorf("%w: nil func", ErrInvalidListener)
		}
		return func(args ...any) (any, error) { return fn(args...), nil }, nil
	case func(...any) error:
		if fn == nil {
			return nil, fmt.Errorf("%w: nil func", ErrInvalidListener)
		}
		return func(args ...any) (any, error) { return nil, fn(args...) }, nil
	case func(...any):
		if fn == nil {
			return nil, fmt.Errorf("%w: nil func", ErrInvalidListener)
		}
		return func(args ...any) (any, error) { fn(args...); return nil, nil }, nil
	case Handler:
		if isNil(fn) {
			return nil, fmt.Errorf("%w: nil %T", ErrInvalidListener, fn)
		}
		return fn.Handle, nil
	case string:
		return d.makeResolvable(fn)
	default:
		return nil, fmt.Errorf("%w: %T is not callable", ErrInvalidListener, v)
	}
}

// makeResolvable wraps id into a Listener that resolves it on every call.
func (d *Dispatcher) makeResolvable(id string) (Listener, error) {
	if isNil(d.resolver) {
		return nil, fmt.Errorf("%w: %q given but no resolver configured", ErrInvalidListener, id)
	}
	if b, ok := d.resolver.(Binder); ok && !b.Has(id) {
		return nil, fmt.Errorf("%w: %q is not bound", ErrInvalidListener, id)
	}

	return func(args ...any) (any, error) {
		d.mu.RLock()
		r := d.resolver
		d.mu.RUnlock()
		if isNil(r) {
			return nil, fmt.Errorf("event: resolve %q: no resolver configured", id)
		}

		instance, err := r.Resolve(id)
		if err != nil {
			return nil, fmt.Errorf("event: resolve %q: %w", id, err)
		}
		h, ok := instance.(Handler)
		if !ok {
			return nil, fmt.Errorf("%w: %q resolved to %T", ErrNotHandler, id, instance)
		}
		return h.Handle(args...)
	}, nil
}

// isNil reports whether v is nil or an interface holding a nil pointer.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Func, reflect.Chan, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

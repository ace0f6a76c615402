// Package container provides the string-keyed service container that
// resolves listener identifiers for the event dispatcher.
//
//	c := container.New()
//	c.Singleton("listeners.audit", func() interface{} { return &AuditListener{} })
//	dispatcher.SetResolver(c)
//	dispatcher.Listen("user.login", "listeners.audit")
package container

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnbound is returned by Resolve for keys that were never bound.
var ErrUnbound = errors.New("container: unknown binding")

// Factory is a function that produces a service instance.
type Factory func() interface{}

// Container holds factories and singleton instances.
type Container struct {
	mu         sync.Mutex
	bindings   map[string]Factory
	singletons map[string]interface{}
	shared     map[string]bool
}

// New creates an empty container.
func New() *Container {
	return &Container{
		bindings:   map[string]Factory{},
		singletons: map[string]interface{}{},
		shared:     map[string]bool{},
	}
}

// Bind registers a factory under key. Each Resolve invokes it anew.
func (c *Container) Bind(key string, factory Factory) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bindings[key] = factory
	delete(c.shared, key)
	delete(c.singletons, key)
}

// Singleton registers a factory that runs on first Resolve only.
func (c *Container) Singleton(key string, factory Factory) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bindings[key] = factory
	c.shared[key] = true
	delete(c.singletons, key)
}

// Instance binds an already built value as a singleton.
func (c *Container) Instance(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bindings[key] = func() interface{} { return value }
	c.shared[key] = true
	c.singletons[key] = value
}

// Resolve returns the service bound under key.
// The factory runs outside the lock so it may resolve other services.
func (c *Container) Resolve(key string) (interface{}, error) {
	c.mu.Lock()
	if inst, ok := c.singletons[key]; ok {
		c.mu.Unlock()
		return inst, nil
	}
	factory, ok := c.bindings[key]
	shared := c.shared[key]
	c.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnbound, key)
	}

	instance := factory()
	if !shared {
		return instance, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// Another goroutine may have won the race; keep the first instance.
	if inst, ok := c.singletons[key]; ok {
		return inst, nil
	}
	c.singletons[key] = instance
	return instance, nil
}

// Make is Resolve that panics on unknown keys.
func (c *Container) Make(key string) interface{} {
	inst, err := c.Resolve(key)
	if err != nil {
		panic("kashvi/" + err.Error())
	}
	return inst
}

// Has reports whether a key has been bound.
func (c *Container) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.bindings[key]
	return ok
}

// Keys returns every bound key, sorted.
func (c *Container) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]string, 0, len(c.bindings))
	for k := range c.bindings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Package app boots the container and the event dispatcher.
//
//	a := app.New().Register(app.LogServiceProvider{}, app.EventServiceProvider{})
//	if err := a.Boot(); err != nil {
//	    log.Fatal(err)
//	}
//	defer a.Shutdown()
//
//	a.Events().Listen("user.registered", sendWelcome)
//
// Listener types are bound on a.Container so they can be registered by
// identifier:
//
//	a.Container.Bind("listeners.audit", func() interface{} { return &AuditListener{} })
//	a.Events().Listen("user.login", "listeners.audit")
package app

import (
	"fmt"

	"github.com/shashiranjanraj/kashvi-events/config"
	"github.com/shashiranjanraj/kashvi-events/pkg/container"
	"github.com/shashiranjanraj/kashvi-events/pkg/event"
	"github.com/shashiranjanraj/kashvi-events/pkg/logger"
)

// EventsKey is the container key of the dispatcher singleton.
const EventsKey = "events"

// Provider registers services on an Application during Boot.
type Provider interface {
	Register(a *Application) error
}

// Application holds the container and the providers that fill it.
type Application struct {
	Container *container.Container

	providers []Provider
	closers   []func()
	booted    bool
}

// New creates an Application with an empty container.
func New() *Application {
	return &Application{Container: container.New()}
}

// Register queues providers; they run in order on Boot.
func (a *Application) Register(providers ...Provider) *Application {
	a.providers = append(a.providers, providers...)
	return a
}

// Boot loads configuration and runs every provider once.
func (a *Application) Boot() error {
	if a.booted {
		return nil
	}
	if err := config.Load(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	for _, p := range a.providers {
		if err := p.Register(a); err != nil {
			return fmt.Errorf("app: register %T: %w", p, err)
		}
	}
	a.booted = true
	logger.Debug("app: booted", "providers", len(a.providers))
	return nil
}

// OnShutdown adds fn to the functions run by Shutdown, last added first.
func (a *Application) OnShutdown(fn func()) {
	a.closers = append(a.closers, fn)
}

// Shutdown runs the OnShutdown functions.
func (a *Application) Shutdown() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// Events returns the dispatcher bound by EventServiceProvider.
// It panics if the provider was not registered.
func (a *Application) Events() *event.Dispatcher {
	return a.Container.Make(EventsKey).(*event.Dispatcher)
}

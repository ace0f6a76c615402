package app_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/kashvi-events/pkg/app"
	"github.com/shashiranjanraj/kashvi-events/pkg/event"
)

type nopObserver struct{ fired []string }

func (o *nopObserver) Fired(name string, _ int, _ time.Duration, _ error) {
	o.fired = append(o.fired, name)
}
func (o *nopObserver) Flushed(string, int, time.Duration, error) {}

type welcomeListener struct{}

func (welcomeListener) Handle(args ...any) (any, error) {
	return "welcome " + args[0].(string), nil
}

type failingProvider struct{}

func (failingProvider) Register(*app.Application) error { return errors.New("nope") }

func TestEventServiceProvider_BindsDispatcher(t *testing.T) {
	t.Setenv("QUEUE_DRIVER", "memory")
	obs := &nopObserver{}
	a := app.New().Register(app.LogServiceProvider{}, app.EventServiceProvider{Observer: obs})
	require.NoError(t, a.Boot())
	t.Cleanup(func() {
		a.Shutdown()
		event.Reset()
	})

	d := a.Events()
	assert.Same(t, d, a.Events())
	assert.Same(t, d, event.Default())

	a.Container.Bind("listeners.welcome", func() interface{} { return welcomeListener{} })
	require.NoError(t, d.Listen("user.registered", "listeners.welcome"))

	first, err := d.First("user.registered", "ann")
	require.NoError(t, err)
	assert.Equal(t, "welcome ann", first)
	assert.Equal(t, []string{"user.registered"}, obs.fired)
}

func TestBoot_ProviderError(t *testing.T) {
	a := app.New().Register(failingProvider{})

	err := a.Boot()
	assert.ErrorContains(t, err, "nope")
}

func TestShutdown_RunsInReverse(t *testing.T) {
	a := app.New()
	var order []int
	a.OnShutdown(func() { order = append(order, 1) })
	a.OnShutdown(func() { order = append(order, 2) })

	a.Shutdown()
	a.Shutdown()
	assert.Equal(t, []int{2, 1}, order)
}

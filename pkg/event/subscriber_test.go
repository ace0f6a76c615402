package event_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/kashvi-events/pkg/event"
)

type userEvents struct{ log *[]string }

func (u userEvents) Subscribes() map[string][]any {
	return map[string][]any{
		"user.login": {
			func(args ...any) { *u.log = append(*u.log, "login:"+args[0].(string)) },
			func(...any) any { return "second" },
		},
		"user.logout": {
			func(args ...any) { *u.log = append(*u.log, "logout:"+args[0].(string)) },
		},
	}
}

type brokenSubscriber struct{}

func (brokenSubscriber) Subscribes() map[string][]any {
	return map[string][]any{"user.login": {"unresolvable"}}
}

func TestSubscribe_RegistersEveryListener(t *testing.T) {
	d := event.New()
	var log []string
	require.NoError(t, d.Subscribe(userEvents{log: &log}))

	responses, err := d.Fire("user.login", "ann")
	require.NoError(t, err)
	_, err = d.Fire("user.logout", "ann")
	require.NoError(t, err)

	assert.Equal(t, []any{nil, "second"}, responses)
	assert.Equal(t, []string{"login:ann", "logout:ann"}, log)
}

func TestSubscribe_InvalidListener(t *testing.T) {
	d := event.New()

	err := d.Subscribe(brokenSubscriber{})
	assert.ErrorIs(t, err, event.ErrInvalidListener)
	assert.False(t, d.HasListeners("user.login"))
}

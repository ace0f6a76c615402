package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/kashvi-events/pkg/event"
)

func TestParseValue(t *testing.T) {
	assert.Equal(t, 42.0, parseValue("42"))
	assert.Equal(t, map[string]any{"id": 1.0}, parseValue(`{"id":1}`))
	assert.Equal(t, "plain text", parseValue("plain text"))
}

func TestBoot_EchoListener(t *testing.T) {
	a, err := boot()
	require.NoError(t, err)
	t.Cleanup(func() {
		a.Shutdown()
		event.Reset()
	})

	d := a.Events()
	require.NoError(t, listenAll(d, "ping", []string{"listeners.echo"}))

	responses, err := d.Fire("ping", parseValues([]string{"1", "two"})...)
	require.NoError(t, err)
	assert.Equal(t, []any{[]any{1.0, "two"}}, responses)

	first, err := d.First("ping", "pong")
	require.NoError(t, err)
	assert.Equal(t, "pong", first)
}

func TestListenAll_UnknownIdentifier(t *testing.T) {
	a, err := boot()
	require.NoError(t, err)
	t.Cleanup(func() {
		a.Shutdown()
		event.Reset()
	})

	err = listenAll(a.Events(), "ping", []string{"listeners.missing"})
	assert.ErrorIs(t, err, event.ErrInvalidListener)
}

package event_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/kashvi-events/pkg/event"
)

func returning(v any) func(...any) any {
	return func(...any) any { return v }
}

func TestFire_CollectsResponsesInOrder(t *testing.T) {
	d := event.New()
	require.NoError(t, d.Listen("foo", returning("bar")))
	require.NoError(t, d.Listen("foo", returning("baz")))

	responses, err := d.Fire("foo")
	require.NoError(t, err)
	assert.Equal(t, []any{"bar", "baz"}, responses)
}

func TestFire_KeepsNilResponses(t *testing.T) {
	d := event.New()
	require.NoError(t, d.Listen("foo", returning(nil)))
	require.NoError(t, d.Listen("foo", returning(1)))
	require.NoError(t, d.Listen("foo", func(...any) {}))

	responses, err := d.Fire("foo")
	require.NoError(t, err)
	assert.Equal(t, []any{nil, 1, nil}, responses)
}

func TestFire_SpreadsPayload(t *testing.T) {
	d := event.New()
	var got []any
	require.NoError(t, d.Listen("order.placed", func(args ...any) (any, error) {
		got = args
		return nil, nil
	}))

	_, err := d.Fire("order.placed", 42, "EUR")
	require.NoError(t, err)
	assert.Equal(t, []any{42, "EUR"}, got)
}

func TestFire_NoListeners(t *testing.T) {
	d := event.New()

	responses, err := d.Fire("nobody.listens")
	require.NoError(t, err)
	assert.Empty(t, responses)

	first, err := d.First("nobody.listens")
	require.NoError(t, err)
	assert.Nil(t, first)
}

func TestFirst_HaltsOnFirstNonNil(t *testing.T) {
	d := event.New()
	secondCalled := false
	require.NoError(t, d.Listen("foo", returning(nil)))
	require.NoError(t, d.Listen("foo", returning("baz")))
	require.NoError(t, d.Listen("foo", func(...any) any {
		secondCalled = true
		return "bar"
	}))

	first, err := d.First("foo")
	require.NoError(t, err)
	assert.Equal(t, "baz", first)
	assert.False(t, secondCalled)
}

func TestFirst_AllNil(t *testing.T) {
	d := event.New()
	calls := 0
	for i := 0; i < 3; i++ {
		require.NoError(t, d.Listen("foo", func(...any) any { calls++; return nil }))
	}

	first, err := d.First("foo")
	require.NoError(t, err)
	assert.Nil(t, first)
	assert.Equal(t, 3, calls)
}

func TestFire_ErrorAbortsRemainingListeners(t *testing.T) {
	d := event.New()
	boom := errors.New("boom")
	laterCalled := false
	require.NoError(t, d.Listen("foo", returning("ok")))
	require.NoError(t, d.Listen("foo", func(...any) error { return boom }))
	require.NoError(t, d.Listen("foo", func(...any) { laterCalled = true }))

	responses, err := d.Fire("foo")
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, responses)
	assert.False(t, laterCalled)
}

func TestFire_PanicPropagates(t *testing.T) {
	d := event.New()
	require.NoError(t, d.Listen("foo", func(...any) { panic("listener bug") }))

	assert.PanicsWithValue(t, "listener bug", func() { _, _ = d.Fire("foo") })
}

func TestOverride_ReplacesListeners(t *testing.T) {
	d := event.New()
	firstCalled := false
	require.NoError(t, d.Listen("foo", func(...any) any { firstCalled = true; return "L1" }))
	require.NoError(t, d.Override("foo", returning("L2")))

	responses, err := d.Fire("foo")
	require.NoError(t, err)
	assert.Equal(t, []any{"L2"}, responses)
	assert.False(t, firstCalled)
}

func TestOverride_InvalidListenerKeepsRegistry(t *testing.T) {
	d := event.New()
	require.NoError(t, d.Listen("foo", returning("L1")))

	err := d.Override("foo", 42)
	assert.ErrorIs(t, err, event.ErrInvalidListener)

	responses, err := d.Fire("foo")
	require.NoError(t, err)
	assert.Equal(t, []any{"L1"}, responses)
}

func TestGlobalListeners_ObserveEveryEvent(t *testing.T) {
	d := event.New()
	type seen struct {
		name    any
		payload any
	}
	var observed []seen
	require.NoError(t, d.Listen("*", func(args ...any) any {
		observed = append(observed, seen{args[0], args[1]})
		return "ignored"
	}))
	require.NoError(t, d.Listen("foo", returning("foo-result")))

	responses, err := d.Fire("foo", "bar")
	require.NoError(t, err)
	_, err = d.Fire("unlistened")
	require.NoError(t, err)

	assert.Equal(t, []any{"foo-result"}, responses)
	assert.Equal(t, []seen{
		{"foo", []any{"bar"}},
		{"unlistened", []any(nil)},
	}, observed)
}

func TestGlobalListeners_RunBeforeDirectAndNeverHalt(t *testing.T) {
	d := event.New()
	var order []string
	require.NoError(t, d.Listen("foo", func(...any) any { order = append(order, "direct"); return nil }))
	require.NoError(t, d.All(func(...any) any { order = append(order, "global"); return "not a result" }))

	first, err := d.First("foo")
	require.NoError(t, err)
	assert.Nil(t, first)
	assert.Equal(t, []string{"global", "direct"}, order)
}

func TestGlobalListeners_ErrorPropagates(t *testing.T) {
	d := event.New()
	boom := errors.New("audit sink down")
	directCalled := false
	require.NoError(t, d.All(func(...any) error { return boom }))
	require.NoError(t, d.Listen("foo", func(...any) { directCalled = true }))

	_, err := d.Fire("foo")
	assert.ErrorIs(t, err, boom)
	assert.False(t, directCalled)
}

func TestFire_WildcardRunsGlobalsOnce(t *testing.T) {
	d := event.New()
	calls := 0
	require.NoError(t, d.All(func(...any) { calls++ }))

	responses, err := d.Fire("*", "x")
	require.NoError(t, err)
	assert.Empty(t, responses)
	assert.Equal(t, 1, calls)
}

func TestListen_AcceptedListenerForms(t *testing.T) {
	d := event.New()
	forms := []any{
		event.Listener(func(...any) (any, error) { return "listener", nil }),
		func(...any) (any, error) { return "func-result-error", nil },
		func(...any) any { return "func-result" },
		func(...any) error { return nil },
		func(...any) {},
		greeter{},
	}
	for _, f := range forms {
		require.NoError(t, d.Listen("foo", f))
	}

	responses, err := d.Fire("foo", "ann")
	require.NoError(t, err)
	assert.Equal(t, []any{"listener", "func-result-error", "func-result", nil, nil, "hello ann"}, responses)
}

func TestListen_RejectsNonCallables(t *testing.T) {
	d := event.New()
	var nilFunc func(...any) any

	for _, v := range []any{nil, 42, struct{}{}, nilFunc, func(string) {}} {
		err := d.Listen("foo", v)
		assert.ErrorIs(t, err, event.ErrInvalidListener, "%T", v)
	}
	assert.False(t, d.HasListeners("foo"))
}

func TestListen_StringWithoutResolver(t *testing.T) {
	d := event.New()

	err := d.Listen("foo", "not-callable-and-not-resolvable")
	assert.ErrorIs(t, err, event.ErrInvalidListener)
	assert.False(t, d.HasListeners("foo"))
	assert.Empty(t, d.Listeners("foo"))

	assert.ErrorIs(t, d.Flusher("q", "nope"), event.ErrInvalidListener)
}

func TestListenerCanRegisterDuringFire(t *testing.T) {
	d := event.New()
	require.NoError(t, d.Listen("foo", func(...any) error {
		return d.Listen("foo", returning("late"))
	}))

	responses, err := d.Fire("foo")
	require.NoError(t, err)
	assert.Equal(t, []any{nil}, responses)

	responses, err = d.Fire("foo")
	require.NoError(t, err)
	assert.Equal(t, []any{nil, "late"}, responses)
}

func TestIntrospection(t *testing.T) {
	d := event.New()
	require.NoError(t, d.Listen("b", returning(1)))
	require.NoError(t, d.Listen("a", returning(1)))
	require.NoError(t, d.Listen("a", returning(2)))

	assert.Equal(t, []string{"a", "b"}, d.Events())
	assert.Len(t, d.Listeners("a"), 2)
	assert.True(t, d.HasListeners("b"))

	d.Forget("b")
	assert.False(t, d.HasListeners("b"))
	assert.Equal(t, []string{"a"}, d.Events())
}

type greeter struct{}

func (greeter) Handle(args ...any) (any, error) {
	return "hello " + args[0].(string), nil
}

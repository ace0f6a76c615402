package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/kashvi-events/pkg/event"
)

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func get(t *testing.T, h http.Handler, path string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var env envelope
	if rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func newDispatcher(t *testing.T) *event.Dispatcher {
	t.Helper()
	d := event.New()
	require.NoError(t, d.Listen("user.login", func(...any) {}))
	require.NoError(t, d.Listen("user.login", func(...any) {}))
	require.NoError(t, d.Listen("order.placed", func(...any) {}))
	return d
}

func TestEvents_ListsRegisteredEvents(t *testing.T) {
	h := NewHandler(newDispatcher(t))

	rec, env := get(t, h, "/events")
	require.Equal(t, http.StatusOK, rec.Code)

	var infos []EventInfo
	require.NoError(t, json.Unmarshal(env.Data, &infos))
	assert.Equal(t, []EventInfo{
		{Name: "order.placed", Listeners: 1},
		{Name: "user.login", Listeners: 2},
	}, infos)
}

func TestEvent_Single(t *testing.T) {
	h := NewHandler(newDispatcher(t))

	rec, env := get(t, h, "/events/user.login")
	require.Equal(t, http.StatusOK, rec.Code)

	var info EventInfo
	require.NoError(t, json.Unmarshal(env.Data, &info))
	assert.Equal(t, EventInfo{Name: "user.login", Listeners: 2}, info)
}

func TestEvent_Unknown(t *testing.T) {
	h := NewHandler(newDispatcher(t))

	rec, env := get(t, h, "/events/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, env.Message, "missing")
}

func TestHealthzAndMetrics(t *testing.T) {
	h := NewHandler(event.New())

	rec, _ := get(t, h, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = get(t, h, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "kashvi_http_requests_total")
}

func TestRecovery(t *testing.T) {
	h := recovery(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("bad") }))

	rec, env := get(t, h, "/")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal Server Error", env.Message)
}

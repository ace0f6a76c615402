// Package server exposes read-only introspection of a dispatcher over HTTP:
// registered events, listener counts and Prometheus metrics. Events can't
// be fired through it.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/kashvi-events/pkg/event"
	"github.com/shashiranjanraj/kashvi-events/pkg/logger"
	"github.com/shashiranjanraj/kashvi-events/pkg/metrics"
	"github.com/shashiranjanraj/kashvi-events/pkg/response"
)

// EventInfo describes one registered event.
type EventInfo struct {
	Name      string `json:"name"`
	Listeners int    `json:"listeners"`
}

// NewHandler builds the router for d.
func NewHandler(d *event.Dispatcher) http.Handler {
	r := chi.NewRouter()
	r.Use(metrics.Middleware(routePattern))
	r.Use(recovery)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		response.Success(w, map[string]string{"status": "ok"})
	})
	r.Get("/metrics", metrics.Handler())

	r.Get("/events", func(w http.ResponseWriter, _ *http.Request) {
		names := d.Events()
		infos := make([]EventInfo, 0, len(names))
		for _, name := range names {
			infos = append(infos, EventInfo{Name: name, Listeners: len(d.Listeners(name))})
		}
		response.Success(w, infos)
	})

	r.Get("/events/{name}", func(w http.ResponseWriter, req *http.Request) {
		name := chi.URLParam(req, "name")
		n := len(d.Listeners(name))
		if n == 0 {
			response.NotFound(w, fmt.Sprintf("no listeners for %q", name))
			return
		}
		response.Success(w, EventInfo{Name: name, Listeners: n})
	})

	return r
}

// Start serves NewHandler(d) on addr until ctx is cancelled.
func Start(ctx context.Context, addr string, d *event.Dispatcher) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           NewHandler(d),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server: listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// recovery turns a handler panic into a logged 500.
func recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				logger.Error("server: panic recovered",
					"error", fmt.Sprintf("%v", v),
					"stack", string(debug.Stack()),
					"method", r.Method,
					"path", r.URL.Path,
				)
				response.Error(w, http.StatusInternalServerError, "Internal Server Error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

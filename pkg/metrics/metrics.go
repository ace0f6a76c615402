// Package metrics provides Prometheus instrumentation for the event dispatcher.
//
// Wire the collector into a dispatcher and expose the registry:
//
//	d := event.New(event.WithObserver(metrics.Events))
//	r.Get("/metrics", metrics.Handler())
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ─────────────────────────────────────────────
// Dispatcher collector
// ─────────────────────────────────────────────

// Collector records Fire and Flush activity. It implements event.Observer.
//
// Event and queue names become label values as given, so every distinct
// name is a new series. Use WithLabeler when names are built from request
// data or IDs.
type Collector struct {
	EventsFired      *prometheus.CounterVec
	Listeners        *prometheus.CounterVec
	FireDuration     *prometheus.HistogramVec
	Flushes          *prometheus.CounterVec
	FlushInvocations *prometheus.CounterVec
	FlushDuration    *prometheus.HistogramVec

	label func(string) string
}

// CollectorOption configures a Collector.
type CollectorOption func(*Collector)

// WithLabeler maps event and queue names to their label value, e.g. to
// collapse "order.42.paid" into "order.paid" or to fold unknown names
// into "other".
func WithLabeler(fn func(name string) string) CollectorOption {
	return func(c *Collector) {
		if fn != nil {
			c.label = fn
		}
	}
}

// NewCollector creates a Collector and registers it on reg.
func NewCollector(reg prometheus.Registerer, opts ...CollectorOption) *Collector {
	c := &Collector{
		label: func(name string) string { return name },

		EventsFired: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kashvi",
			Subsystem: "events",
			Name:      "fired_total",
			Help:      "Total events fired, by outcome.",
		}, []string{"event", "status"}), // "ok" | "error"

		Listeners: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kashvi",
			Subsystem: "events",
			Name:      "listeners_total",
			Help:      "Direct listeners registered for fired events, summed per fire.",
		}, []string{"event"}),

		FireDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "kashvi",
			Subsystem: "events",
			Name:      "fire_duration_seconds",
			Help:      "Time spent running the listeners of a fired event.",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		}, []string{"event"}),

		Flushes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kashvi",
			Subsystem: "queue",
			Name:      "flushes_total",
			Help:      "Total queue flushes that had work to do, by outcome.",
		}, []string{"queue", "status"}),

		FlushInvocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kashvi",
			Subsystem: "queue",
			Name:      "flusher_invocations_total",
			Help:      "Total flusher calls made while flushing.",
		}, []string{"queue"}),

		FlushDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "kashvi",
			Subsystem: "queue",
			Name:      "flush_duration_seconds",
			Help:      "Duration of queue flushes in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"queue"}),
	}

	for _, opt := range opts {
		opt(c)
	}

	reg.MustRegister(
		c.EventsFired,
		c.Listeners,
		c.FireDuration,
		c.Flushes,
		c.FlushInvocations,
		c.FlushDuration,
	)
	return c
}

// Fired records one Fire or First call.
func (c *Collector) Fired(event string, listeners int, d time.Duration, err error) {
	event = c.label(event)
	c.EventsFired.WithLabelValues(event, status(err)).Inc()
	c.Listeners.WithLabelValues(event).Add(float64(listeners))
	c.FireDuration.WithLabelValues(event).Observe(d.Seconds())
}

// Flushed records one Flush call.
func (c *Collector) Flushed(queue string, invocations int, d time.Duration, err error) {
	queue = c.label(queue)
	c.Flushes.WithLabelValues(queue, status(err)).Inc()
	c.FlushInvocations.WithLabelValues(queue).Add(float64(invocations))
	c.FlushDuration.WithLabelValues(queue).Observe(d.Seconds())
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ─────────────────────────────────────────────
// Registry
// ─────────────────────────────────────────────

// DefaultRegistry is the Prometheus registry served by Handler.
var DefaultRegistry = prometheus.NewRegistry()

// Events is the Collector registered on DefaultRegistry.
var Events *Collector

// HTTP introspection server metrics.
var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "kashvi",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kashvi",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
)

func init() {
	DefaultRegistry.MustRegister(collectors.NewGoCollector())
	DefaultRegistry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	DefaultRegistry.MustRegister(RequestDuration, RequestTotal)

	Events = NewCollector(DefaultRegistry)
}

// ─────────────────────────────────────────────
// HTTP
// ─────────────────────────────────────────────

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware records request duration and count. pathOf maps a request to
// its label (e.g. the chi route pattern) to keep cardinality bounded.
func Middleware(pathOf func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rr, r)

			path := pathOf(r)
			status := strconv.Itoa(rr.status)
			RequestDuration.WithLabelValues(r.Method, path, status).Observe(time.Since(start).Seconds())
			RequestTotal.WithLabelValues(r.Method, path, status).Inc()
		})
	}
}

// Handler returns an http.HandlerFunc that exposes DefaultRegistry.
func Handler() http.HandlerFunc {
	h := promhttp.HandlerFor(DefaultRegistry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
	return h.ServeHTTP
}

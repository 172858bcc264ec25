// Package metrics provides Prometheus instrumentation for ordersync: client
// gateway request metrics, realtime event counters, and HTTP server metrics
// for the reference backend.
//
// Server wiring:
//
//	r.Use(metrics.Middleware())
//	r.HandleFunc("/metrics", metrics.Handler())
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// APIRequests counts outgoing gateway calls by method and status.
	// Status "0" means no response was received.
	APIRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ordersync",
			Subsystem: "client",
			Name:      "api_requests_total",
			Help:      "Total outgoing API requests.",
		},
		[]string{"method", "status"},
	)

	// APIRequestDuration tracks outgoing request latency by method.
	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ordersync",
			Subsystem: "client",
			Name:      "api_request_duration_seconds",
			Help:      "Duration of outgoing API requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// RealtimeEvents counts received realtime frames by event name.
	RealtimeEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ordersync",
			Subsystem: "realtime",
			Name:      "events_total",
			Help:      "Total realtime events received.",
		},
		[]string{"event"},
	)

	// RequestDuration tracks backend HTTP request latency.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ordersync",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// RequestTotal counts backend HTTP requests.
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ordersync",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests served.",
		},
		[]string{"method", "path", "status"},
	)

	// RequestInFlight tracks concurrently served backend requests.
	RequestInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "ordersync",
		Subsystem: "http",
		Name:      "requests_in_flight",
		Help:      "Number of HTTP requests currently being served.",
	})
)

// DefaultRegistry is the registry all ordersync metrics live in.
var DefaultRegistry = prometheus.NewRegistry()

func init() {
	DefaultRegistry.MustRegister(collectors.NewGoCollector())
	DefaultRegistry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	DefaultRegistry.MustRegister(
		APIRequests,
		APIRequestDuration,
		RealtimeEvents,
		RequestDuration,
		RequestTotal,
		RequestInFlight,
	)
}

// MustRegister adds custom collectors to the ordersync registry.
func MustRegister(c ...prometheus.Collector) {
	DefaultRegistry.MustRegister(c...)
}

// ObserveAPIRequest records one outgoing gateway call.
func ObserveAPIRequest(method string, status int, start time.Time) {
	APIRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
}

// ── HTTP middleware (reference backend) ──────────────────────────────────────

// responseRecorder captures the status code and body size of a response.
type responseRecorder struct {
	http.ResponseWriter
	status int
}

func (r *responseRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware records duration, totals, and in-flight gauge per request.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			RequestInFlight.Inc()
			defer RequestInFlight.Dec()

			rr := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rr, r)

			status := strconv.Itoa(rr.status)
			RequestDuration.WithLabelValues(r.Method, r.URL.Path, status).Observe(time.Since(start).Seconds())
			RequestTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
		})
	}
}

// Handler exposes the metrics page; mount on GET /metrics.
func Handler() http.HandlerFunc {
	h := promhttp.HandlerFor(DefaultRegistry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
	return h.ServeHTTP
}

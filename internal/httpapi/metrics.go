package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"modelview/pkg/types"
)

// eventsRoute is excluded from the latency histogram: a status stream lives
// as long as its client.
const eventsRoute = "/events"

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "modelview",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Status API requests by route pattern, method and status",
		},
		[]string{"path", "method", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "modelview",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Status API latency in seconds, /events excluded",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"path", "method", "status"},
	)

	httpInflight = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "modelview",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Status API requests being served, by route pattern",
		},
		[]string{"path"},
	)

	eventStreams = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "modelview",
			Subsystem: "http",
			Name:      "event_streams",
			Help:      "Open /events status streams",
		},
	)

	selectRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "modelview",
			Subsystem: "http",
			Name:      "select_requests_total",
			Help:      "POST /select outcomes by requested selection kind",
		},
		[]string{"kind", "result"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal, httpRequestDuration, httpInflight, eventStreams, selectRequests)
}

// statusRecorder keeps the response code for metrics and the access log.
// It forwards Flush so /events can stream through it.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Flush() {
	if f, ok := sr.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// MetricsMiddleware counts every status API request by chi route pattern
// and records latency for all routes but the /events stream.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(sr, r)
		// The route pattern is only known after routing.
		path := routePatternOrPath(r)
		code := strconv.Itoa(sr.status)
		httpRequestsTotal.WithLabelValues(path, r.Method, code).Inc()
		if path != eventsRoute {
			httpRequestDuration.WithLabelValues(path, r.Method, code).Observe(time.Since(start).Seconds())
		}
	})
}

// inflight gauges concurrent requests on the data routes (/models, /status,
// /scene, /select, /events). It runs inside the router so the pattern is set.
func inflight(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := routePatternOrPath(r)
		httpInflight.WithLabelValues(path).Inc()
		defer httpInflight.WithLabelValues(path).Dec()
		next.ServeHTTP(w, r)
	})
}

// selectResult buckets a /select response code for selectRequests.
func selectResult(code int) string {
	switch {
	case code == http.StatusAccepted:
		return "accepted"
	case code == http.StatusServiceUnavailable:
		return "unavailable"
	case code >= 400 && code < 500:
		return "rejected"
	default:
		return "error"
	}
}

// requestedKind names the selection a decoded /select body asks for.
func requestedKind(req types.SelectRequest) string {
	switch {
	case req.ID != nil:
		return types.SelectionSingle
	case req.All:
		return types.SelectionAll
	case req.None:
		return types.SelectionNone
	default:
		return "empty"
	}
}

// routePatternOrPath prefers the chi route pattern to keep label
// cardinality bounded.
func routePatternOrPath(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}

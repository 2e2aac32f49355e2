// Package metricsx holds the Prometheus collectors for the HTTP edge and the
// token and document flows.
package metricsx

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fastkep"

// Metrics owns a registry and every collector registered on it. Create one per
// process and pass it to the components that record into it.
type Metrics struct {
	registry *prometheus.Registry

	httpInFlight        prometheus.Gauge
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	tokensIssued       *prometheus.CounterVec
	tokenVerifications *prometheus.CounterVec
	revocations        prometheus.Counter
	revocationsPurged  prometheus.Counter
	documentsRendered  *prometheus.CounterVec
}

// New registers all collectors on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_in_flight_requests",
			Help: "In-flight HTTP requests.",
		}),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),

		tokensIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_issued_total",
			Help:      "Tokens minted, by kind.",
		}, []string{"kind"}),
		tokenVerifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_verifications_total",
			Help:      "Token verification outcomes.",
		}, []string{"result"}),
		revocations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_revocations_total",
			Help:      "Tokens revoked on logout.",
		}),
		revocationsPurged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "revocations_purged_total",
			Help:      "Expired revocation records removed by housekeeping.",
		}),
		documentsRendered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_rendered_total",
			Help:      "Document render attempts, by type and result.",
		}, []string{"doc_type", "result"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpInFlight,
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.tokensIssued,
		m.tokenVerifications,
		m.revocations,
		m.revocationsPurged,
		m.documentsRendered,
	)
	return m
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Instrument records in-flight, count and latency for every request.
func (m *Metrics) Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := CanonicalPath(r.URL.Path)
		method := r.Method

		m.httpInFlight.Inc()
		defer m.httpInFlight.Dec()
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sw, r)

		status := strconv.Itoa(sw.code)
		m.httpRequestDuration.WithLabelValues(method, path, status).Observe(time.Since(start).Seconds())
		m.httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	})
}

// CanonicalPath collapses path parameters so label cardinality stays bounded.
func CanonicalPath(p string) string {
	if i := strings.IndexByte(p, '?'); i >= 0 {
		p = p[:i]
	}
	if p == "" {
		return "/"
	}
	if rest, ok := strings.CutPrefix(p, "/documents/generate/"); ok && rest != "" {
		return "/documents/generate/:doc_type"
	}
	if strings.HasPrefix(p, "/swagger/") {
		return "/swagger/"
	}
	return p
}

// Nil receivers are allowed on the recording helpers so components can run
// without metrics in tests.

func (m *Metrics) TokenIssued(kind string) {
	if m == nil {
		return
	}
	m.tokensIssued.WithLabelValues(kind).Inc()
}

// TokenVerified records a verification outcome: "ok" or a short failure name.
func (m *Metrics) TokenVerified(result string) {
	if m == nil {
		return
	}
	m.tokenVerifications.WithLabelValues(result).Inc()
}

func (m *Metrics) TokenRevoked() {
	if m == nil {
		return
	}
	m.revocations.Inc()
}

func (m *Metrics) RevocationsPurged(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.revocationsPurged.Add(float64(n))
}

func (m *Metrics) DocumentRendered(docType, result string) {
	if m == nil {
		return
	}
	m.documentsRendered.WithLabelValues(docType, result).Inc()
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

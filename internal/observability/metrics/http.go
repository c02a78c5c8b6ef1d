package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	chatRequestsTotal  *prometheus.CounterVec
	chatHitTotal       *prometheus.CounterVec
	chatNoContextTotal *prometheus.CounterVec
	chatReferences     *prometheus.HistogramVec
	chatDuration       *prometheus.HistogramVec
	embedCacheTotal    *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docqa",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docqa",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "docqa",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	chatRequestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docqa",
			Subsystem: "chat",
			Name:      "requests_total",
			Help:      "Total successful chat requests.",
		},
		[]string{"service"},
	)
	chatHitTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docqa",
			Subsystem: "chat",
			Name:      "retrieval_hit_total",
			Help:      "Total chat requests with at least one referenced document.",
		},
		[]string{"service"},
	)
	chatNoContextTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docqa",
			Subsystem: "chat",
			Name:      "no_context_total",
			Help:      "Total chat requests without referenced documents.",
		},
		[]string{"service"},
	)
	chatReferences := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docqa",
			Subsystem: "chat",
			Name:      "references",
			Help:      "Distribution of referenced documents per successful chat request.",
			Buckets:   []float64{0, 1, 2, 3},
		},
		[]string{"service"},
	)
	chatDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docqa",
			Subsystem: "chat",
			Name:      "duration_seconds",
			Help:      "Chat pipeline duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service"},
	)
	embedCacheTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docqa",
			Subsystem: "embed",
			Name:      "cache_total",
			Help:      "Embedding cache lookups by result.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
		[]string{"result"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		chatRequestsTotal,
		chatHitTotal,
		chatNoContextTotal,
		chatReferences,
		chatDuration,
		embedCacheTotal,
	)

	return &HTTPServerMetrics{
		registry:           registry,
		requestTotal:       requestTotal,
		requestDuration:    requestDuration,
		requestInFlight:    requestInFlight,
		chatRequestsTotal:  chatRequestsTotal,
		chatHitTotal:       chatHitTotal,
		chatNoContextTotal: chatNoContextTotal,
		chatReferences:     chatReferences,
		chatDuration:       chatDuration,
		embedCacheTotal:    embedCacheTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/documents/"):
		return "/v1/documents/{document_id}"
	case strings.HasPrefix(path, "/v1/companies/"):
		return "/v1/companies/{company_id}/documents"
	default:
		return path
	}
}

func (m *HTTPServerMetrics) RecordChatObservation(service string, referenceCount int, duration time.Duration) {
	m.chatRequestsTotal.WithLabelValues(service).Inc()
	m.chatReferences.WithLabelValues(service).Observe(float64(referenceCount))
	m.chatDuration.WithLabelValues(service).Observe(duration.Seconds())

	if referenceCount > 0 {
		m.chatHitTotal.WithLabelValues(service).Inc()
		return
	}
	m.chatNoContextTotal.WithLabelValues(service).Inc()
}

// EmbedCacheCounter exposes the counter vec the embedding cache decorator
// increments with result="hit"/"miss".
func (m *HTTPServerMetrics) EmbedCacheCounter() *prometheus.CounterVec {
	return m.embedCacheTotal
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}

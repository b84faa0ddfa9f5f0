// Package metrics exposes Prometheus instrumentation for frame resolution.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skybox_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"path", "method", "code"},
	)

	httpDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "skybox_http_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	elementFetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skybox_element_fetches_total",
			Help: "Element-set cache fetches by outcome (fresh_hit, revalidated, fetched, stale, error).",
		},
		[]string{"outcome"},
	)

	imageProbesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skybox_image_probes_total",
			Help: "Image source probe attempts by satellite and outcome (hit, miss).",
		},
		[]string{"satellite", "outcome"},
	)

	resolveDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "skybox_resolve_duration_seconds",
			Help:    "Duration of a full frame-resolution pass in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		},
	)

	framesResolved = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "skybox_frames_resolved",
			Help: "Number of satellite frames resolved in the last pass.",
		},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpDurationSeconds)
	prometheus.MustRegister(elementFetchesTotal)
	prometheus.MustRegister(imageProbesTotal)
	prometheus.MustRegister(resolveDurationSeconds)
	prometheus.MustRegister(framesResolved)
}

// RecordElementFetch counts one element-cache fetch by outcome.
func RecordElementFetch(outcome string) {
	elementFetchesTotal.WithLabelValues(outcome).Inc()
}

// RecordImageProbe counts one image source probe for a satellite.
func RecordImageProbe(satellite, outcome string) {
	imageProbesTotal.WithLabelValues(satellite, outcome).Inc()
}

// RecordResolvePass records the duration and yield of one resolution pass.
func RecordResolvePass(d time.Duration, frames int) {
	resolveDurationSeconds.Observe(d.Seconds())
	framesResolved.Set(float64(frames))
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware records request count and duration for each request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		code := strconv.Itoa(rw.statusCode)

		httpRequestsTotal.WithLabelValues(r.URL.Path, r.Method, code).Inc()
		httpDurationSeconds.WithLabelValues(r.URL.Path, r.Method).Observe(duration)
	})
}

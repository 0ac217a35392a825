package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector exposes Prometheus metrics for inbound HTTP requests and for the
// recommendation pipeline.
type Collector struct {
	registry             *prometheus.Registry
	requestDuration      *prometheus.HistogramVec
	requestTotal         *prometheus.CounterVec
	recommendationsTotal *prometheus.CounterVec
	aiFailuresTotal      *prometheus.CounterVec
	sourceFetchDuration  *prometheus.HistogramVec
	preprocessTotal      *prometheus.CounterVec
}

// NewCollector constructs a collector with default histograms/counters.
func NewCollector() (*Collector, error) {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "yofin",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Latency distribution for inbound HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "yofin",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of inbound HTTP requests.",
	}, []string{"method", "path", "status"})

	recommendationsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "yofin",
		Name:      "recommendations_total",
		Help:      "Portfolio recommendations generated, by strategy and provider.",
	}, []string{"strategy", "provider"})

	aiFailuresTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "yofin",
		Name:      "ai_generation_failures_total",
		Help:      "AI recommendation attempts that fell back to the deterministic strategy.",
	}, []string{"provider"})

	sourceFetchDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "yofin",
		Name:      "source_fetch_duration_seconds",
		Help:      "Latency distribution for upstream source fetches.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"source", "mode"})

	preprocessTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "yofin",
		Name:      "preprocess_records_total",
		Help:      "Seed records handled by the preprocess pipeline, by outcome.",
	}, []string{"kind"})

	collectors := []prometheus.Collector{
		requestDuration,
		requestTotal,
		recommendationsTotal,
		aiFailuresTotal,
		sourceFetchDuration,
		preprocessTotal,
	}
	for _, c := range collectors {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}

	collector := &Collector{
		registry:             registry,
		requestDuration:      requestDuration,
		requestTotal:         requestTotal,
		recommendationsTotal: recommendationsTotal,
		aiFailuresTotal:      aiFailuresTotal,
		sourceFetchDuration:  sourceFetchDuration,
		preprocessTotal:      preprocessTotal,
	}

	return collector, nil
}

// Handler returns an HTTP handler for exposing Prometheus metrics.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps the provided handler to record HTTP metrics.
func (c *Collector) InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.status)
		path := r.URL.Path

		c.requestTotal.WithLabelValues(r.Method, path, status).Inc()
		c.requestDuration.WithLabelValues(r.Method, path, status).Observe(duration)
	})
}

// RecordRecommendation counts one generated recommendation. Collector may be
// nil in tests that do not care about metrics.
func (c *Collector) RecordRecommendation(strategy, provider string) {
	if c == nil {
		return
	}
	if provider == "" {
		provider = "none"
	}
	c.recommendationsTotal.WithLabelValues(strategy, provider).Inc()
}

// RecordAIFailure counts one AI attempt that was recovered by the fallback.
func (c *Collector) RecordAIFailure(provider string) {
	if c == nil {
		return
	}
	c.aiFailuresTotal.WithLabelValues(provider).Inc()
}

// ObserveSourceFetch records the latency of one upstream fetch.
func (c *Collector) ObserveSourceFetch(source, mode string, duration time.Duration) {
	if c == nil {
		return
	}
	c.sourceFetchDuration.WithLabelValues(source, mode).Observe(duration.Seconds())
}

// AddPreprocessed counts seed records by outcome (loaded, normalized,
// upserted, skipped).
func (c *Collector) AddPreprocessed(kind string, count int) {
	if c == nil || count <= 0 {
		return
	}
	c.preprocessTotal.WithLabelValues(kind).Add(float64(count))
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (w *responseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

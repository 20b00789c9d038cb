// Package metrics publishes Prometheus counters/histograms for dispatched
// requests.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is the surface the dispatcher needs to record an observation. It
// exists as an interface so tests and a nil-safe no-op can stand in without
// importing Prometheus.
type Recorder interface {
	ObserveDispatch(verb, path string, status int, duration time.Duration)
}

// PromRecorder publishes Prometheus metrics for dispatcher activity.
type PromRecorder struct {
	gatherer prometheus.Gatherer
	handler  http.Handler

	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewRecorder constructs a Prometheus-backed Recorder. When reg is nil a
// dedicated registry is created so multiple recorders can coexist without
// conflicting with the global default registerer.
func NewRecorder(reg *prometheus.Registry) *PromRecorder {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	reg.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "doppelganger",
		Subsystem: "dispatch",
		Name:      "requests_total",
		Help:      "Total requests dispatched to a mapping or the no-match handler.",
	}, []string{"verb", "path", "status"})

	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "doppelganger",
		Subsystem: "dispatch",
		Name:      "request_duration_seconds",
		Help:      "Latency distribution for dispatched requests.",
		Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"verb", "path"})

	reg.MustRegister(requests, latency)

	return &PromRecorder{
		gatherer: reg,
		handler:  promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		requests: requests,
		latency:  latency,
	}
}

// Handler exposes the Prometheus HTTP handler for the recorder's registry.
func (r *PromRecorder) Handler() http.Handler {
	if r == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "metrics unavailable", http.StatusServiceUnavailable)
		})
	}
	return r.handler
}

// Gatherer returns the underlying Prometheus gatherer for tests and advanced
// integrations.
func (r *PromRecorder) Gatherer() prometheus.Gatherer {
	if r == nil {
		return prometheus.NewRegistry()
	}
	return r.gatherer
}

// ObserveDispatch records the outcome and latency of a completed dispatch.
func (r *PromRecorder) ObserveDispatch(verb, path string, status int, duration time.Duration) {
	if r == nil {
		return
	}
	verbLabel := normalizeLabel(verb)
	pathLabel := normalizeLabel(path)
	statusLabel := strconv.Itoa(status)
	if status <= 0 {
		statusLabel = "unknown"
	}
	r.requests.WithLabelValues(verbLabel, pathLabel, statusLabel).Inc()
	r.latency.WithLabelValues(verbLabel, pathLabel).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "unknown"
	}
	return trimmed
}

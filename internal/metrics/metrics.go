package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome is the terminal state of one pipeline run.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeFallback Outcome = "fallback"
	OutcomeError    Outcome = "error"
)

// Recorder holds the service collectors on its own registry so tests and
// multiple servers in one process never collide.
type Recorder struct {
	registry         *prometheus.Registry
	requests         *prometheus.CounterVec
	schemaMismatches *prometheus.CounterVec
	providerLatency  *prometheus.HistogramVec
	tokens           *prometheus.CounterVec
}

// NewRecorder creates and registers all collectors.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portfolioai_requests_total",
				Help: "Pipeline runs by use case and terminal outcome",
			},
			[]string{"use_case", "outcome"},
		),
		schemaMismatches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portfolioai_schema_mismatches_total",
				Help: "Completions that parsed as JSON but failed schema validation",
			},
			[]string{"kind"},
		),
		providerLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "portfolioai_provider_latency_seconds",
				Help:    "Completion provider round-trip latency",
				Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
			},
			[]string{"provider", "status"},
		),
		tokens: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portfolioai_tokens_total",
				Help: "Tokens consumed by direction",
			},
			[]string{"use_case", "direction"},
		),
	}
	r.registry.MustRegister(
		r.requests,
		r.schemaMismatches,
		r.providerLatency,
		r.tokens,
		collectors.NewGoCollector(),
	)
	return r
}

// ObserveRequest counts one finished pipeline run.
func (r *Recorder) ObserveRequest(useCase string, outcome Outcome) {
	r.requests.WithLabelValues(useCase, string(outcome)).Inc()
}

// ObserveSchemaMismatch counts a completion rejected by schema validation.
func (r *Recorder) ObserveSchemaMismatch(kind string) {
	r.schemaMismatches.WithLabelValues(kind).Inc()
}

// ObserveProvider records provider latency. status is "ok" or "error".
func (r *Recorder) ObserveProvider(provider, status string, d time.Duration) {
	r.providerLatency.WithLabelValues(provider, status).Observe(d.Seconds())
}

// ObserveTokens adds token usage for a use case.
func (r *Recorder) ObserveTokens(useCase string, input, output int) {
	r.tokens.WithLabelValues(useCase, "input").Add(float64(input))
	r.tokens.WithLabelValues(useCase, "output").Add(float64(output))
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

package observability

import (
	"context"
	"net/http"

	"github.com/aibee/wizard/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the wizard's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	StepVisits      *prometheus.CounterVec
	Completions     prometheus.Counter
	PromptDuration  *prometheus.HistogramVec
	PromptFailures  *prometheus.CounterVec
	DocumentRenders *prometheus.CounterVec
}

// NewMetrics creates and registers the collectors, plus the Go and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		StepVisits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wizard_step_visits_total",
				Help: "Total number of step visits",
			},
			[]string{"step"},
		),
		Completions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wizard_sessions_completed_total",
			Help: "Sessions that reached a terminal step",
		}),
		PromptDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wizard_prompt_duration_seconds",
				Help:    "Duration of LLM prompt calls",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
			},
			[]string{"field"},
		),
		PromptFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wizard_prompt_failures_total",
				Help: "LLM prompt calls that returned an error",
			},
			[]string{"field"},
		),
		DocumentRenders: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wizard_document_renders_total",
				Help: "Rendered documents by output format",
			},
			[]string{"format"},
		),
	}
	m.registry.MustRegister(
		m.StepVisits,
		m.Completions,
		m.PromptDuration,
		m.PromptFailures,
		m.DocumentRenders,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Hooks records engine events into the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepEnter: func(ctx context.Context, e *domain.StepEvent) {
			m.StepVisits.WithLabelValues(e.Step).Inc()
		},
		OnStepLeave: func(ctx context.Context, e *domain.StepEvent) {
			if e.NextStep == "" {
				m.Completions.Inc()
			}
		},
		OnPromptReturn: func(ctx context.Context, e *domain.PromptEvent) {
			m.PromptDuration.WithLabelValues(e.Field).Observe(e.Duration.Seconds())
			if e.IsError {
				m.PromptFailures.WithLabelValues(e.Field).Inc()
			}
		},
	}
}

// ObserveRender counts one rendered document.
func (m *Metrics) ObserveRender(format string) {
	m.DocumentRenders.WithLabelValues(format).Inc()
}

// Package metrics exposes Prometheus metrics of hunts, playbooks and completions.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/myrjola/huntdesk/internal/ai"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "huntdesk"

// Operation labels.
const (
	OperationHunt     = "hunt"
	OperationPlaybook = "playbook"
)

// Metrics owns a dedicated registry so that tests can create as many instances as they like.
type Metrics struct {
	registry           *prometheus.Registry
	HuntsCreated       prometheus.Counter
	PlaybooksGenerated prometheus.Counter
	completionDuration *prometheus.HistogramVec
	completionFailures *prometheus.CounterVec
}

// New creates and registers the metrics, including the Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HuntsCreated: prometheus.NewCounter(prometheus.CounterOpts{ //nolint:exhaustruct // optional fields
			Namespace: namespace,
			Name:      "hunts_created_total",
			Help:      "Number of hunts run and stored.",
		}),
		PlaybooksGenerated: prometheus.NewCounter(prometheus.CounterOpts{ //nolint:exhaustruct // optional fields
			Namespace: namespace,
			Name:      "playbooks_generated_total",
			Help:      "Number of playbooks generated and stored.",
		}),
		completionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{ //nolint:exhaustruct // optional fields
			Namespace: namespace,
			Name:      "completion_duration_seconds",
			Help:      "Duration of text completions.",
			Buckets:   []float64{1, 2, 5, 10, 20, 30, 60, 120, 180},
		}, []string{"operation"}),
		completionFailures: prometheus.NewCounterVec(prometheus.CounterOpts{ //nolint:exhaustruct // optional fields
			Namespace: namespace,
			Name:      "completion_failures_total",
			Help:      "Number of failed text completions.",
		}, []string{"operation"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}), //nolint:exhaustruct // defaults
		m.HuntsCreated,
		m.PlaybooksGenerated,
		m.completionDuration,
		m.completionFailures,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}) //nolint:exhaustruct // defaults
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// CompletionFailures returns the failure counter of operation.
func (m *Metrics) CompletionFailures(operation string) prometheus.Counter {
	return m.completionFailures.WithLabelValues(operation)
}

// Completer wraps next so that every completion is timed and failures are counted under operation.
func (m *Metrics) Completer(next ai.Completer, operation string) ai.Completer {
	return &instrumentedCompleter{
		next:     next,
		duration: m.completionDuration.WithLabelValues(operation),
		failures: m.completionFailures.WithLabelValues(operation),
	}
}

type instrumentedCompleter struct {
	next     ai.Completer
	duration prometheus.Observer
	failures prometheus.Counter
}

func (c *instrumentedCompleter) Complete(
	ctx context.Context,
	systemInstruction string,
	userInstruction string,
	maxOutputTokens int,
) (string, error) {
	start := time.Now()
	text, err := c.next.Complete(ctx, systemInstruction, userInstruction, maxOutputTokens)
	c.duration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.failures.Inc()
	}
	return text, err //nolint:wrapcheck // transparent wrapper
}

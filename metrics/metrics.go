// Package metrics exposes Prometheus collectors for the request executor
// and task dispatch. All reporting methods are nil-receiver safe so
// instrumentation remains fire-and-forget: an agent constructed without a
// Metrics simply drops observations.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	registry *prometheus.Registry

	// Request executor metrics
	RequestAttemptsTotal *prometheus.CounterVec
	RequestRetriesTotal  *prometheus.CounterVec
	RequestFailuresTotal *prometheus.CounterVec
	RequestDuration      *prometheus.HistogramVec

	// Task dispatch metrics
	TasksTotal *prometheus.CounterVec
}

// New creates and registers all metrics on a private registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,

		RequestAttemptsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ascend_request_attempts_total",
				Help: "Total number of backend request attempts",
			},
			[]string{"agent"},
		),
		RequestRetriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ascend_request_retries_total",
				Help: "Total number of retried backend requests",
			},
			[]string{"agent"},
		),
		RequestFailuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ascend_request_failures_total",
				Help: "Total number of backend requests that exhausted all attempts",
			},
			[]string{"agent"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ascend_request_duration_seconds",
				Help:    "Duration of complete backend requests including retries",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"agent"},
		),
		TasksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ascend_tasks_total",
				Help: "Total number of processed tasks",
			},
			[]string{"agent", "task_type", "status"},
		),
	}

	registry.MustRegister(
		m.RequestAttemptsTotal,
		m.RequestRetriesTotal,
		m.RequestFailuresTotal,
		m.RequestDuration,
		m.TasksTotal,
	)

	return m
}

// Handler returns an HTTP handler serving the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveAttempt counts one backend attempt for an agent.
func (m *Metrics) ObserveAttempt(agent string) {
	if m == nil {
		return
	}
	m.RequestAttemptsTotal.WithLabelValues(agent).Inc()
}

// ObserveRetry counts one retried attempt for an agent.
func (m *Metrics) ObserveRetry(agent string) {
	if m == nil {
		return
	}
	m.RequestRetriesTotal.WithLabelValues(agent).Inc()
}

// ObserveFailure counts one terminal request failure for an agent.
func (m *Metrics) ObserveFailure(agent string) {
	if m == nil {
		return
	}
	m.RequestFailuresTotal.WithLabelValues(agent).Inc()
}

// ObserveDuration records the wall-clock duration of a complete request.
func (m *Metrics) ObserveDuration(agent string, dur time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(agent).Observe(dur.Seconds())
}

// ObserveTask counts one processed task by outcome.
func (m *Metrics) ObserveTask(agent, taskType string, success bool) {
	if m == nil {
		return
	}
	status := "success"
	if !success {
		status = "failure"
	}
	m.TasksTotal.WithLabelValues(agent, taskType, status).Inc()
}

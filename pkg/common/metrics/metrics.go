// Package metrics exposes the sign-up counters on a private prometheus registry.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "signup"

// Submission outcomes.
const (
	OutcomeCreated   = "created"
	OutcomeRejected  = "rejected"
	OutcomeTransport = "transport_error"
	OutcomeSkipped   = "skipped"
)

type Metrics struct {
	registry *prometheus.Registry

	validations    *prometheus.CounterVec
	submissions    *prometheus.CounterVec
	inFlight       prometheus.Gauge
	referenceFetch *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		validations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validations_total",
			Help:      "Form validations by result.",
		}, []string{"result"}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Forwarded sign-ups by outcome.",
		}, []string{"outcome"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "submissions_in_flight",
			Help:      "Sign-up posts currently waiting on the remote endpoint.",
		}),
		referenceFetch: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reference_fetch_seconds",
			Help:      "Reference data fetch latency by result.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"result"}),
	}
	m.registry.MustRegister(
		m.validations,
		m.submissions,
		m.inFlight,
		m.referenceFetch,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) ObserveValidation(passed bool) {
	if m == nil {
		return
	}
	m.validations.WithLabelValues(result(passed)).Inc()
}

func (m *Metrics) ObserveSubmission(outcome string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(outcome).Inc()
}

// TrackInFlight increments the in-flight gauge; call the returned func when done.
func (m *Metrics) TrackInFlight() func() {
	if m == nil {
		return func() {}
	}
	m.inFlight.Inc()
	return m.inFlight.Dec
}

func (m *Metrics) ObserveReferenceFetch(d time.Duration, err error) {
	if m == nil {
		return
	}
	m.referenceFetch.WithLabelValues(result(err == nil)).Observe(d.Seconds())
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func result(ok bool) string {
	if ok {
		return "ok"
	}
	return "failed"
}

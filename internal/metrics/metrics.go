package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the collectors the service exposes on /metrics.
type Metrics struct {
	Registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	RequestsCreated   prometheus.Counter
	RequestsConfirmed prometheus.Counter
	RequestsRejected  prometheus.Counter
	RequestsCanceled  prometheus.Counter
	ModerationBatches prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		Registry: reg,
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		RequestsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "participation_requests_created_total",
			Help: "Participation requests created.",
		}),
		RequestsConfirmed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "participation_requests_confirmed_total",
			Help: "Participation requests confirmed (auto or by moderation).",
		}),
		RequestsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "participation_requests_rejected_total",
			Help: "Participation requests rejected by moderation.",
		}),
		RequestsCanceled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "participation_requests_canceled_total",
			Help: "Participation requests canceled by their requester.",
		}),
		ModerationBatches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "moderation_batches_total",
			Help: "Batch moderation calls that reached a decision.",
		}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.RequestsCreated,
		m.RequestsConfirmed,
		m.RequestsRejected,
		m.RequestsCanceled,
		m.ModerationBatches,
	)
	return m
}

// Package metrics collects and exposes Prometheus metrics for the auth
// endpoints.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector aggregates the auth counters. Handlers record through it; the
// /metrics endpoint exposes the backing registry.
type Collector struct {
	registrations   prometheus.Counter
	logins          *prometheus.CounterVec
	tokensIssued    *prometheus.CounterVec
	refreshRejected prometheus.Counter
}

// NewCollector registers the auth metrics on reg and returns the collector.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "auth_registrations_total",
			Help: "Total successful user registrations.",
		}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_logins_total",
			Help: "Login attempts by result.",
		}, []string{"result"}),
		tokensIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_tokens_issued_total",
			Help: "Tokens issued by kind (access or refresh).",
		}, []string{"kind"}),
		refreshRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "auth_refresh_rejected_total",
			Help: "Refresh attempts rejected as malformed or revoked.",
		}),
	}
	reg.MustRegister(c.registrations, c.logins, c.tokensIssued, c.refreshRejected)
	return c
}

func (c *Collector) RecordRegistration() { c.registrations.Inc() }

func (c *Collector) RecordLogin(success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	c.logins.WithLabelValues(result).Inc()
}

func (c *Collector) RecordTokenIssued(kind string) { c.tokensIssued.WithLabelValues(kind).Inc() }

func (c *Collector) RecordRefreshRejected() { c.refreshRejected.Inc() }

// Handler serves the registry in the Prometheus text format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

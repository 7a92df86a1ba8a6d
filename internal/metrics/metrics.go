// Package metrics exposes the service's Prometheus counters.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the counters recorded by the services. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	pagesCreated    *prometheus.CounterVec
	viewsLogged     prometheus.Counter
	viewLogFailures prometheus.Counter
	responsesSaved  prometheus.Counter
	inboxReloads    *prometheus.CounterVec
}

// New creates the counters on a private registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		pagesCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "emopages",
			Name:      "pages_created_total",
			Help:      "Pages created, by page type.",
		}, []string{"type"}),
		viewsLogged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "emopages",
			Name:      "views_logged_total",
			Help:      "Page impressions written to the store.",
		}),
		viewLogFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "emopages",
			Name:      "view_log_failures_total",
			Help:      "Page impressions that could not be written.",
		}),
		responsesSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "emopages",
			Name:      "responses_saved_total",
			Help:      "Anonymous replies saved.",
		}),
		inboxReloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "emopages",
			Name:      "inbox_reloads_total",
			Help:      "Inbox reloads, by outcome (ok, error, skipped).",
		}, []string{"outcome"}),
	}

	m.registry.MustRegister(
		m.pagesCreated,
		m.viewsLogged,
		m.viewLogFailures,
		m.responsesSaved,
		m.inboxReloads,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// PageCreated counts a stored page by type
func (m *Metrics) PageCreated(pageType string) {
	if m == nil {
		return
	}
	m.pagesCreated.WithLabelValues(pageType).Inc()
}

// ViewLogged counts a recorded impression
func (m *Metrics) ViewLogged() {
	if m == nil {
		return
	}
	m.viewsLogged.Inc()
}

// ViewLogFailed counts an impression the store refused
func (m *Metrics) ViewLogFailed() {
	if m == nil {
		return
	}
	m.viewLogFailures.Inc()
}

// ResponseSaved counts an anonymous reply
func (m *Metrics) ResponseSaved() {
	if m == nil {
		return
	}
	m.responsesSaved.Inc()
}

// InboxReload counts an inbox reload by outcome (ok, error, skipped)
func (m *Metrics) InboxReload(outcome string) {
	if m == nil {
		return
	}
	m.inboxReloads.WithLabelValues(outcome).Inc()
}

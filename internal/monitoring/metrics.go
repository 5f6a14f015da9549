package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service counters. Each instance carries its own
// registry so tests can build as many as they need without collisions.
type Metrics struct {
	registry *prometheus.Registry

	OpensRecorded    prometheus.Counter
	ProxyOpens       prometheus.Counter
	BotRequests      prometheus.Counter
	InvalidIDs       prometheus.Counter
	LogWriteFailures prometheus.Counter
	LogRotations     prometheus.Counter
}

func NewMetrics() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.OpensRecorded = newCounter("opens_recorded_total", "Open events appended to the log")
	m.ProxyOpens = newCounter("proxy_opens_total", "Opens observed through a mail provider image proxy")
	m.BotRequests = newCounter("bot_requests_total", "Tracking requests skipped as bot traffic")
	m.InvalidIDs = newCounter("invalid_ids_total", "Tracking requests rejected for a malformed identifier")
	m.LogWriteFailures = newCounter("log_write_failures_total", "Failed appends to the open log")
	m.LogRotations = newCounter("log_rotations_total", "Size-triggered rotations of the open log")

	m.registry.MustRegister(
		m.OpensRecorded,
		m.ProxyOpens,
		m.BotRequests,
		m.InvalidIDs,
		m.LogWriteFailures,
		m.LogRotations,
	)
	return m
}

func newCounter(name, help string) prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "mailtracker",
		Name:      name,
		Help:      help,
	})
}

// Handler serves the Prometheus exposition format for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

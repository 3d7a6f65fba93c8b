package report

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	rdapclient "github.com/datum-labs/rdapexpiry"
	"github.com/datum-labs/rdapexpiry/batch"
)

// Metrics mirrors outcomes into a private Prometheus registry that can be
// written as a node_exporter textfile after the batch.
type Metrics struct {
	path     string
	registry *prometheus.Registry

	lookups   *prometheus.CounterVec
	attempts  *prometheus.CounterVec
	remaining *prometheus.GaugeVec
	lastRun   prometheus.Gauge
}

func NewMetrics(path string) *Metrics {
	m := &Metrics{
		path:     path,
		registry: prometheus.NewRegistry(),
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rdapexpiry_lookups_total",
			Help: "Domains checked, by terminal status.",
		}, []string{"status"}),
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rdapexpiry_attempts_total",
			Help: "Lookup attempts, by result kind (ok for a successful attempt).",
		}, []string{"kind"}),
		remaining: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "rdapexpiry_seconds_until_expiry",
			Help: "Seconds until registration expiry; negative once expired.",
		}, []string{"domain", "tier"}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rdapexpiry_last_check_timestamp_seconds",
			Help: "Unix time of the most recent reported outcome.",
		}),
	}
	m.registry.MustRegister(m.lookups, m.attempts, m.remaining, m.lastRun)
	return m
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) Begin(string) {}

func (m *Metrics) Report(o batch.Outcome) {
	m.lookups.WithLabelValues(o.Status.String()).Inc()
	for _, err := range o.Errors {
		kind := "unclassified"
		if k := rdapclient.KindOf(err); k != 0 {
			kind = k.String()
		}
		m.attempts.WithLabelValues(kind).Inc()
	}
	if o.Attempts > len(o.Errors) {
		m.attempts.WithLabelValues("ok").Inc()
	}
	if o.Status == batch.Registered {
		m.remaining.WithLabelValues(o.Domain, o.Tier.String()).Set(float64(o.Remaining / time.Second))
	}
	if !o.CheckedAt.IsZero() {
		m.lastRun.Set(float64(o.CheckedAt.Unix()))
	}
}

// Flush writes the textfile; it is a no-op without a path.
func (m *Metrics) Flush() error {
	if m.path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(m.path, m.registry)
}

// Package telemetry exposes the daemon's counters as Prometheus metrics on
// the local control socket.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// EngineReadout is the read-only view of the enforcement engine the
// metrics are built from.
type EngineReadout interface {
	Enabled() bool
	InterventionCount() int64
}

// Metrics holds the daemon's Prometheus registry and collectors.
type Metrics struct {
	registry *prometheus.Registry
	probeRTT *prometheus.GaugeVec
}

// New builds a registry wired to the given engine.
func New(engine EngineReadout) *Metrics {
	reg := prometheus.NewRegistry()

	reg.MustRegister(prometheus.NewCounterFunc(prometheus.CounterOpts{
		Name: "warden_interventions_total",
		Help: "Number of times the target interface was forced back down.",
	}, func() float64 {
		return float64(engine.InterventionCount())
	}))

	reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "warden_blocking_active",
		Help: "1 when the engine is holding the target interface down.",
	}, func() float64 {
		if engine.Enabled() {
			return 0
		}
		return 1
	}))

	probeRTT := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "warden_probe_rtt_seconds",
		Help: "Most recent round-trip time per latency probe target.",
	}, []string{"target"})
	reg.MustRegister(probeRTT)

	return &Metrics{registry: reg, probeRTT: probeRTT}
}

// ObserveRTT records a successful latency measurement. Shaped to plug
// directly into the latency monitor's observer hook.
func (m *Metrics) ObserveRTT(target string, rtt time.Duration) {
	m.probeRTT.WithLabelValues(target).Set(rtt.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

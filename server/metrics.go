package server

import "github.com/prometheus/client_golang/prometheus"

// metrics groups the counters/gauges this server exposes. Observability
// only — nothing here feeds back into protocol or durability behavior.
// Grounded on the pack's server examples (ChuLiYu-raft-recovery,
// cuemby-warren, dreamsxin-wal) instrumenting with client_golang.
type metrics struct {
	connectionsActive prometheus.Gauge
	connectionsTotal  prometheus.Counter
	commandsTotal     *prometheus.CounterVec
	parseErrorsTotal  prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		connectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "vaultd_connections_active",
			Help: "Number of currently open client connections.",
		}),
		connectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vaultd_connections_total",
			Help: "Total connections accepted since start.",
		}),
		commandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vaultd_commands_total",
			Help: "Commands executed, labeled by verb.",
		}, []string{"verb"}),
		parseErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vaultd_parse_errors_total",
			Help: "Requests that failed to parse.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.connectionsActive, m.connectionsTotal, m.commandsTotal, m.parseErrorsTotal)
	}
	return m
}

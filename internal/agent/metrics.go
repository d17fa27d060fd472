package agent

import (
	"github.com/prometheus/client_golang/prometheus"

	sysdash "github.com/jondoveston/sysdash/internal"
)

// Metrics exposes the last collected snapshot for Prometheus scraping
type Metrics struct {
	registry    *prometheus.Registry
	cpuPercent  prometheus.Gauge
	memPercent  prometheus.Gauge
	diskPercent prometheus.Gauge
	network     *prometheus.GaugeVec
	collections *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		cpuPercent: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "sysdash",
			Name:      "cpu_usage_percent",
			Help:      "CPU usage at the last collection.",
		}),
		memPercent: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "sysdash",
			Name:      "memory_used_percent",
			Help:      "Memory used at the last collection.",
		}),
		diskPercent: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "sysdash",
			Name:      "disk_used_percent",
			Help:      "Disk used at the last collection.",
		}),
		network: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "sysdash",
			Name:      "network_bytes",
			Help:      "Cumulative network bytes at the last collection.",
		}, []string{"direction"}),
		collections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sysdash",
			Name:      "collections_total",
			Help:      "Snapshot collections by result.",
		}, []string{"result"}),
	}
	m.registry.MustRegister(m.cpuPercent, m.memPercent, m.diskPercent, m.network, m.collections)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Observe records a successful collection
func (m *Metrics) Observe(snap *sysdash.Snapshot) {
	m.collections.WithLabelValues("ok").Inc()
	if snap.CPU != nil {
		m.cpuPercent.Set(snap.CPU.Percent)
	}
	if snap.Memory != nil {
		m.memPercent.Set(snap.Memory.Percent)
	}
	if snap.Disk != nil {
		m.diskPercent.Set(snap.Disk.Percent)
	}
	if snap.Network != nil {
		m.network.WithLabelValues("sent").Set(float64(snap.Network.BytesSent))
		m.network.WithLabelValues("received").Set(float64(snap.Network.BytesRecv))
	}
}

// Failed records a collection that produced an error payload
func (m *Metrics) Failed() {
	m.collections.WithLabelValues("error").Inc()
}

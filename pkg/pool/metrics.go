package pool

import (
	"github.com/prometheus/client_golang/prometheus"
)

// StatsProvider reports pool stats by pool name. *Registry satisfies it.
type StatsProvider interface {
	Stats() map[string]Stats
}

// Collector exports pool stats as Prometheus metrics labelled by pool key.
// Values are read at scrape time.
type Collector struct {
	source StatsProvider

	capacity  *prometheus.Desc
	open      *prometheus.Desc
	idle      *prometheus.Desc
	inUse     *prometheus.Desc
	created   *prometheus.Desc
	discarded *prometheus.Desc
	timeouts  *prometheus.Desc
}

// NewCollector creates a collector for the pools of source. Register it
// with prometheus.MustRegister or a custom registry.
func NewCollector(namespace string, source StatsProvider) *Collector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "pool", name),
			help,
			[]string{"pool"},
			nil,
		)
	}

	return &Collector{
		source:    source,
		capacity:  desc("connections_max", "Maximum number of live connections."),
		open:      desc("connections_open", "Live connections, idle or borrowed."),
		idle:      desc("connections_idle", "Connections waiting to be borrowed."),
		inUse:     desc("connections_in_use", "Connections currently borrowed."),
		created:   desc("connections_created_total", "Connections opened."),
		discarded: desc("connections_discarded_total", "Connections dropped after a failed operation."),
		timeouts:  desc("borrow_timeouts_total", "Borrows that timed out waiting for a connection."),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.capacity
	ch <- c.open
	ch <- c.idle
	ch <- c.inUse
	ch <- c.created
	ch <- c.discarded
	ch <- c.timeouts
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for key, s := range c.source.Stats() {
		ch <- prometheus.MustNewConstMetric(c.capacity, prometheus.GaugeValue, float64(s.Capacity), key)
		ch <- prometheus.MustNewConstMetric(c.open, prometheus.GaugeValue, float64(s.Open), key)
		ch <- prometheus.MustNewConstMetric(c.idle, prometheus.GaugeValue, float64(s.Idle), key)
		ch <- prometheus.MustNewConstMetric(c.inUse, prometheus.GaugeValue, float64(s.InUse), key)
		ch <- prometheus.MustNewConstMetric(c.created, prometheus.CounterValue, float64(s.Created), key)
		ch <- prometheus.MustNewConstMetric(c.discarded, prometheus.CounterValue, float64(s.Discarded), key)
		ch <- prometheus.MustNewConstMetric(c.timeouts, prometheus.CounterValue, float64(s.Timeouts), key)
	}
}

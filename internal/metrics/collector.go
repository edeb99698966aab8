// Package metrics exposes the proxy's host table in the Prometheus text
// exposition format consumed by the aggregating server.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rewol/rewol/internal/hosts"
)

var (
	uptimeDesc = prometheus.NewDesc(
		"rewol_service_uptime",
		"Service uptime in milliseconds",
		nil, nil,
	)
	hostUpDesc = prometheus.NewDesc(
		"rewol_host_up",
		"Host status (1=up, 0=down)",
		[]string{"host"}, nil,
	)
	hostWOLDesc = prometheus.NewDesc(
		"rewol_host_wol",
		"Number of WOL signals sent",
		[]string{"host"}, nil,
	)
)

// Collector reads the host table on every scrape. It holds no metric state
// of its own; the table is the single source of truth.
type Collector struct {
	table *hosts.Table
	start time.Time
}

// NewCollector creates a collector over table. Uptime counts from now.
func NewCollector(table *hosts.Table) *Collector {
	return &Collector{table: table, start: time.Now()}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- uptimeDesc
	ch <- hostUpDesc
	ch <- hostWOLDesc
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(
		uptimeDesc,
		prometheus.GaugeValue,
		float64(time.Since(c.start).Milliseconds()),
	)

	for _, s := range c.table.Snapshot() {
		up := 0.0
		if s.Up {
			up = 1.0
		}
		ch <- prometheus.MustNewConstMetric(hostUpDesc, prometheus.GaugeValue, up, s.Host.Name)
		ch <- prometheus.MustNewConstMetric(hostWOLDesc, prometheus.CounterValue, float64(s.WOLCount), s.Host.Name)
	}
}

// Handler returns an HTTP handler serving the exposition text for table
// on a private registry.
func Handler(table *hosts.Table) http.Handler {
	reg := prometheus.NewRegistry()
	reg.MustRegister(NewCollector(table))
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

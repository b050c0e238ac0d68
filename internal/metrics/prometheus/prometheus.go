package prometheus

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/cleared-dev/settle/internal/metrics"
)

// Collector implements metrics.Collector on a private Prometheus registry.
type Collector struct {
	registry *prometheus.Registry

	transactions *prometheus.CounterVec
	malformed    prometheus.Counter
	accounts     *prometheus.GaugeVec
}

var _ metrics.Collector = (*Collector)(nil)

// NewCollector creates a Collector whose metric names start with namespace.
func NewCollector(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		transactions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transactions_total",
				Help:      "Transactions processed, by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		malformed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "malformed_rows_total",
				Help:      "Feed rows that could not be decoded",
			},
		),
		accounts: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "accounts",
				Help:      "Client accounts at the end of the run, by state",
			},
			[]string{"state"},
		),
	}
	c.registry.MustRegister(c.transactions, c.malformed, c.accounts)
	return c
}

// RecordTransaction increments the transaction counter.
func (c *Collector) RecordTransaction(kind string, outcome string) {
	c.transactions.WithLabelValues(kind, outcome).Inc()
}

// RecordMalformed increments the malformed row counter.
func (c *Collector) RecordMalformed() {
	c.malformed.Inc()
}

// RecordAccounts sets the account gauges.
func (c *Collector) RecordAccounts(active, locked int) {
	c.accounts.WithLabelValues("active").Set(float64(active))
	c.accounts.WithLabelValues("locked").Set(float64(locked))
}

// Registry exposes the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// WriteTextfile writes all metrics in the text exposition format for the
// node exporter textfile collector. The file is replaced atomically.
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}

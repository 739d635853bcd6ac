package collectors

import (
	"github.com/prometheus/client_golang/prometheus"
)

// TotalTransactionCountCollector collects the number of transactions committed to the chain
type TotalTransactionCountCollector struct {
	src          ChainSource
	totalTxCount *prometheus.Desc
}

func NewTotalTransactionCountCollector(src ChainSource) *TotalTransactionCountCollector {
	return &TotalTransactionCountCollector{
		src: src,
		totalTxCount: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "transactions", "total_count"),
			"Total transaction count",
			nil,
			nil,
		),
	}
}

func (c *TotalTransactionCountCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.totalTxCount
}

func (c *TotalTransactionCountCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.totalTxCount, prometheus.CounterValue, float64(c.src.TransactionCount()))
}

func init() {
	RegisterCollectorFactory(func(src ChainSource) (prometheus.Collector, error) {
		return NewTotalTransactionCountCollector(src), nil
	})
}

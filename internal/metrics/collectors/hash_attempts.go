package collectors

import (
	"github.com/prometheus/client_golang/prometheus"
)

type HashAttemptsCollector struct {
	src      ChainSource
	attempts *prometheus.Desc
}

func NewHashAttemptsCollector(src ChainSource) *HashAttemptsCollector {
	return &HashAttemptsCollector{
		src: src,
		attempts: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "mining", "hash_attempts_total"),
			"Hashes computed while searching for nonces",
			nil,
			nil,
		),
	}
}

func (c *HashAttemptsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.attempts
}

func (c *HashAttemptsCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.attempts, prometheus.CounterValue, float64(c.src.HashAttempts()))
}

func init() {
	RegisterCollectorFactory(func(src ChainSource) (prometheus.Collector, error) {
		return NewHashAttemptsCollector(src), nil
	})
}

package collectors

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ChainCollector reports the chain height, its configured difficulty and
// whether it currently verifies. Validity is recomputed on every scrape.
type ChainCollector struct {
	src        ChainSource
	height     *prometheus.Desc
	difficulty *prometheus.Desc
	valid      *prometheus.Desc
}

func NewChainCollector(src ChainSource) *ChainCollector {
	return &ChainCollector{
		src: src,
		height: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "chain", "height"),
			"Number of blocks in the chain, genesis included",
			nil,
			nil,
		),
		difficulty: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "chain", "difficulty"),
			"Required leading zero hex characters per mined block",
			nil,
			nil,
		),
		valid: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "chain", "valid"),
			"1 if every block hash and link verifies, 0 otherwise",
			nil,
			nil,
		),
	}
}

func (c *ChainCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.height
	ch <- c.difficulty
	ch <- c.valid
}

func (c *ChainCollector) Collect(ch chan<- prometheus.Metric) {
	valid := 1.0
	if c.src.Verify() != nil {
		valid = 0
	}

	ch <- prometheus.MustNewConstMetric(c.height, prometheus.GaugeValue, float64(c.src.Len()))
	ch <- prometheus.MustNewConstMetric(c.difficulty, prometheus.GaugeValue, float64(c.src.Difficulty()))
	ch <- prometheus.MustNewConstMetric(c.valid, prometheus.GaugeValue, valid)
}

func init() {
	RegisterCollectorFactory(func(src ChainSource) (prometheus.Collector, error) {
		return NewChainCollector(src), nil
	})
}

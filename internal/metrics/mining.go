package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/liftedinit/powchain/internal/ledger"
)

// MiningRecorder tracks how long blocks take to mine. Observe matches
// ledger.MineHook.
type MiningRecorder struct {
	duration     prometheus.Histogram
	blocksMined  prometheus.Counter
	transactions prometheus.Counter
}

var _ ledger.MineHook = (&MiningRecorder{}).Observe

func NewMiningRecorder() *MiningRecorder {
	return &MiningRecorder{
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "powchain",
			Subsystem: "mining",
			Name:      "block_duration_seconds",
			Help:      "Time spent searching for a block's nonce",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		blocksMined: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "powchain",
			Subsystem: "mining",
			Name:      "blocks_total",
			Help:      "Blocks mined by this process",
		}),
		transactions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "powchain",
			Subsystem: "mining",
			Name:      "transactions_total",
			Help:      "Transactions included in blocks mined by this process",
		}),
	}
}

func (r *MiningRecorder) Observe(block ledger.Block, elapsed time.Duration) {
	r.duration.Observe(elapsed.Seconds())
	r.blocksMined.Inc()
	r.transactions.Add(float64(len(block.Transactions)))
}

func (r *MiningRecorder) Describe(ch chan<- *prometheus.Desc) {
	r.duration.Describe(ch)
	r.blocksMined.Describe(ch)
	r.transactions.Describe(ch)
}

func (r *MiningRecorder) Collect(ch chan<- prometheus.Metric) {
	r.duration.Collect(ch)
	r.blocksMined.Collect(ch)
	r.transactions.Collect(ch)
}

package collectors

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "powchain"

// ChainSource is the read-only view of a chain the collectors scrape.
type ChainSource interface {
	Len() int
	Verify() error
	Difficulty() int
	TransactionCount() int
	HashAttempts() uint64
}

// CollectorFactory is a function type that creates a collector for a chain
type CollectorFactory func(src ChainSource) (prometheus.Collector, error)

type Registry struct {
	factories []CollectorFactory
}

func NewRegistry() *Registry {
	return &Registry{
		factories: make([]CollectorFactory, 0),
	}
}

func (r *Registry) Register(factory CollectorFactory) {
	r.factories = append(r.factories, factory)
}

// CreateCollectors instantiates all collectors for src
func (r *Registry) CreateCollectors(src ChainSource) ([]prometheus.Collector, error) {
	if src == nil {
		return nil, errors.New("chain source is nil")
	}

	collectors := make([]prometheus.Collector, 0, len(r.factories))
	for _, factory := range r.factories {
		collector, err := factory(src)
		if err != nil {
			return nil, err
		}
		collectors = append(collectors, collector)
	}
	return collectors, nil
}

var DefaultRegistry = NewRegistry()

func RegisterCollectorFactory(factory CollectorFactory) {
	DefaultRegistry.Register(factory)
}

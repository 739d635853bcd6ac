package metrics

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/liftedinit/powchain/internal/metrics/collectors"
)

// CreateMetricsServer serves the chain collectors, plus any extra collectors,
// on addr under /metrics. The returned server's Addr is the bound address.
func CreateMetricsServer(src collectors.ChainSource, addr string, extra ...prometheus.Collector) (*http.Server, error) {
	chainCollectors, err := collectors.DefaultRegistry.CreateCollectors(src)
	if err != nil {
		return nil, fmt.Errorf("failed to create collectors: %w", err)
	}

	registry := prometheus.NewRegistry()
	for _, c := range append(chainCollectors, extra...) {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register collector: %w", err)
		}
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	server := &http.Server{Addr: ln.Addr().String(), Handler: mux}
	go func() {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Failed to start metrics server", "error", err)
		}
	}()

	slog.Info("Serving Prometheus metrics", "addr", server.Addr)
	return server, nil
}

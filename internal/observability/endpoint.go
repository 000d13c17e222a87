package observability

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/tphakala/wildlife-analytics/internal/logger"
)

// ShutdownTimeout bounds the graceful shutdown of the metrics server.
const ShutdownTimeout = 5 * time.Second

// readHeaderTimeout guards the metrics endpoint against slowloris clients.
const readHeaderTimeout = 10 * time.Second

// Endpoint serves the Prometheus scrape endpoint while a long-running command is active.
type Endpoint struct {
	server        *http.Server
	listenAddress string
	metrics       *Metrics
}

// NewEndpoint creates a new metrics Endpoint listening on listenAddress.
// An empty address means the endpoint is disabled and an error is returned.
func NewEndpoint(listenAddress string, metrics *Metrics) (*Endpoint, error) {
	if listenAddress == "" {
		return nil, fmt.Errorf("metrics endpoint not enabled in settings")
	}
	if metrics == nil {
		return nil, fmt.Errorf("metrics endpoint requires a metrics instance")
	}

	return &Endpoint{
		listenAddress: listenAddress,
		metrics:       metrics,
	}, nil
}

// Start binds the listener and serves until ctx is cancelled. The returned
// address is the bound address, useful when listening on port 0.
func (e *Endpoint) Start(ctx context.Context, wg *sync.WaitGroup) (string, error) {
	mux := http.NewServeMux()
	e.metrics.RegisterHandlers(mux)

	ln, err := net.Listen("tcp", e.listenAddress)
	if err != nil {
		return "", fmt.Errorf("failed to listen on %s: %w", e.listenAddress, err)
	}

	e.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	addr := ln.Addr().String()
	wg.Go(func() {
		getLog().Info("Metrics endpoint starting", logger.String("address", addr))
		if err := e.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			getLog().Error("Metrics HTTP server error", logger.Error(err))
		}
	})

	wg.Go(func() {
		e.gracefulShutdown(ctx)
	})

	return addr, nil
}

// gracefulShutdown waits for ctx to end and shuts down the server.
func (e *Endpoint) gracefulShutdown(ctx context.Context) {
	<-ctx.Done()
	getLog().Info("Stopping metrics server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := e.server.Shutdown(shutdownCtx); err != nil {
		getLog().Error("Metrics server shutdown error", logger.Error(err))
	}
}

// GetMetrics returns the Metrics instance associated with this Endpoint.
func (e *Endpoint) GetMetrics() *Metrics {
	return e.metrics
}

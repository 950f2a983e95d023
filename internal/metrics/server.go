package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	metricsReadHeaderTimeout = 5 * time.Second
	metricsShutdownTimeout   = 5 * time.Second
)

// Enabled reports whether addr names a listener rather than an "off" switch.
func Enabled(addr string) bool {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return false
	}
	switch strings.ToLower(addr) {
	case "off", "disabled", "false":
		return false
	}
	return true
}

// Handler serves the default Prometheus registry.
func Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// Serve runs the metrics listener until ctx is done. A disabled address returns nil immediately.
func Serve(ctx context.Context, addr string, logger *slog.Logger) error {
	if !Enabled(addr) {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}

	srv := &http.Server{
		Addr:              strings.TrimSpace(addr),
		Handler:           Handler(),
		ReadHeaderTimeout: metricsReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("metrics listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/open-sspm/userdesk/internal/config"
	"github.com/open-sspm/userdesk/internal/directory"
	httpapp "github.com/open-sspm/userdesk/internal/http"
	"github.com/open-sspm/userdesk/internal/listing"
	"github.com/open-sspm/userdesk/internal/metrics"
	"github.com/open-sspm/userdesk/internal/secrets"
	"github.com/open-sspm/userdesk/internal/session"
	"github.com/open-sspm/userdesk/internal/tracing"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const (
	serveReadHeaderTimeout = 5 * time.Second
	serveShutdownTimeout   = 10 * time.Second
)

var serveCmd = &cobra.Command{
	Use:         "serve",
	Short:       "Run the web application.",
	Args:        cobra.NoArgs,
	Annotations: structuredLogging(),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func runServe() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := slog.Default()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(ctx, cfg.OTelEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), serveShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("tracing shutdown failed", "error", err)
		}
	}()

	client, err := newDirectoryClient(ctx, cfg)
	if err != nil {
		return err
	}

	store, closeStore, err := session.NewStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()
	sessions := session.New(session.Options{
		Lifetime:     cfg.SessionLifetime,
		CookieSecure: cfg.AuthCookieSecure,
		Store:        store,
	})

	es, err := httpapp.NewEchoServer(cfg, httpapp.Deps{
		Auth:     client,
		Sessions: sessions,
		Listings: listing.NewRegistry(client, cfg.SessionLifetime, logger),
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           es.Handler(),
		ReadHeaderTimeout: serveReadHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", "addr", cfg.HTTPAddr, "session_store", cfg.SessionStore)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), serveShutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return metrics.Serve(gctx, cfg.MetricsAddr, logger)
	})
	return g.Wait()
}

// newDirectoryClient builds the directory client, reading the API key from
// Vault when a secret path is configured.
func newDirectoryClient(ctx context.Context, cfg config.Config) (*directory.Client, error) {
	apiKey, err := secrets.DirectoryAPIKey(ctx, secrets.VaultOptions{
		Address:   cfg.VaultAddr,
		Token:     cfg.VaultToken,
		Namespace: cfg.VaultNamespace,
		Mount:     cfg.VaultKVMount,
		Path:      cfg.DirectoryAPIKeyVaultPath,
	}, cfg.DirectoryAPIKey)
	if err != nil {
		return nil, err
	}
	return directory.New(cfg.DirectoryBaseURL, apiKey, cfg.DirectoryTimeout)
}

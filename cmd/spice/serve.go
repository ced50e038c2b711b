package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/Veraticus/spice-ledger/internal/api"
	"github.com/Veraticus/spice-ledger/internal/certs"
	"github.com/Veraticus/spice-ledger/internal/config"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the ledger over HTTP",
		Long: `Start the JSON API on the configured address. The server shuts down
gracefully on SIGINT or SIGTERM.

Routes:
  GET    /health
  GET    /api/categories          POST /api/categories
  GET    /api/categories/{id}     PUT  /api/categories/{id}     DELETE /api/categories/{id} (archive)
  GET    /api/transactions        POST /api/transactions
  GET    /api/transactions/{id}   PUT  /api/transactions/{id}   DELETE /api/transactions/{id}
  GET    /api/summary/{YYYY-MM}`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, func(s *session) error {
				return runServer(cmd.Context(), s)
			})
		},
	}

	cmd.Flags().String("address", "", "listen address (default 127.0.0.1:8080)")
	cmd.Flags().StringSlice("allowed-origins", nil, "CORS origins allowed to call the API")
	cmd.Flags().Bool("tls", false, "serve HTTPS with a self-signed localhost certificate")
	_ = viper.BindPFlag(config.KeyServerAddress, cmd.Flags().Lookup("address"))
	_ = viper.BindPFlag(config.KeyServerAllowedOrigins, cmd.Flags().Lookup("allowed-origins"))
	_ = viper.BindPFlag(config.KeyServerTLS, cmd.Flags().Lookup("tls"))

	return cmd
}

func newHTTPServer(s *session) (*http.Server, error) {
	logger := slog.Default().With("component", "api")
	handler := api.NewHandler(s.ledger.Categories, s.ledger.Transactions, s.ledger.Summaries, logger)
	router := api.NewRouter(handler, api.Options{
		AllowedOrigins: s.cfg.Server.AllowedOrigins,
		RequestTimeout: s.cfg.Server.RequestTimeout,
	})

	srv := &http.Server{
		Addr:              s.cfg.Server.Address,
		Handler:           router,
		ReadTimeout:       s.cfg.Server.ReadTimeout,
		ReadHeaderTimeout: s.cfg.Server.ReadTimeout,
		WriteTimeout:      s.cfg.Server.WriteTimeout,
	}

	if s.cfg.Server.TLS {
		tlsConfig, err := certs.NewStore(s.cfg.Server.CertDir).TLSConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to load TLS certificate: %w", err)
		}
		srv.TLSConfig = tlsConfig
	}

	return srv, nil
}

func runServer(ctx context.Context, s *session) error {
	srv, err := newHTTPServer(s)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("🌶️  Ledger API listening",
			"address", srv.Addr,
			"tls", srv.TLSConfig != nil,
			"database", s.store.Path())

		var err error
		if srv.TLSConfig != nil {
			err = srv.ListenAndServeTLS("", "")
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
		defer cancel()

		slog.Info("Shutting down API server", "timeout", s.cfg.Server.ShutdownTimeout)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down server: %w", err)
		}
		return nil
	})

	return g.Wait()
}

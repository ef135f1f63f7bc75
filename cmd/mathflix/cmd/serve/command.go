// Package serve provides the command that runs the HTTP API server.
package serve

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ashkam58/mathflix/cmd/application"
	"github.com/ashkam58/mathflix/internal/server"
	"github.com/ashkam58/mathflix/pkg/constants"
)

// NewCommand creates the serve command.
func NewCommand(app application.Application) *cobra.Command {
	defaults := server.DefaultConfig()

	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"server"},
		GroupID: "core",
		Short:   "Start the REST API server with WebSocket updates",
		Long: `Start the REST API server for the MathFlix catalog.

Features:
  - Game listing with category, premium and text filters
  - Game creation, deletion and view counting
  - On-demand reconciliation (/api/v1/reconcile)
  - WebSocket catalog updates (/api/v1/updates/ws)
  - Response caching, invalidated on every catalog change
  - Rate limiting (requests per minute per IP)
  - API key authentication for writes (optional)
  - Prometheus metrics (/metrics)
  - Graceful shutdown`,
		Example: `  # Start on default port 8080
  mathflix serve

  # Require an API key for writes
  MATHFLIX_API_KEY=secret mathflix serve --auth

  # Reconcile every night at 3am
  MATHFLIX_RECONCILE_CRON="0 3 * * *" mathflix serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := parseConfig(cmd)
			if err != nil {
				return err
			}
			autoReconcile, _ := cmd.Flags().GetBool("auto-reconcile")
			return runServer(cmd.Context(), cmd.OutOrStdout(), app, cfg, autoReconcile)
		},
	}

	cmd.Flags().Int("port", defaults.Port, "Server port")
	cmd.Flags().String("host", defaults.Host, "Bind address")

	cmd.Flags().Bool("cors", false, "Enable CORS for all origins")
	cmd.Flags().StringSlice("cors-origins", []string{}, "Allowed CORS origins (comma-separated)")

	cmd.Flags().Bool("auth", false, "Require an API key for writes (key from MATHFLIX_API_KEY)")
	cmd.Flags().String("auth-header", defaults.AuthHeader, "Authentication header name")
	cmd.Flags().Bool("protect-reads", false, "Require the API key for reads too")

	cmd.Flags().Int("rate-limit", defaults.RateLimit, "Requests per minute per IP (0 to disable)")
	cmd.Flags().Duration("cache-ttl", defaults.CacheTTL, "Response cache TTL")
	cmd.Flags().Int64("max-body-bytes", defaults.MaxBodyBytes, "Maximum request body size")

	cmd.Flags().Duration("read-timeout", defaults.ReadTimeout, "HTTP read timeout")
	cmd.Flags().Duration("write-timeout", defaults.WriteTimeout, "HTTP write timeout")
	cmd.Flags().Duration("idle-timeout", defaults.IdleTimeout, "HTTP idle timeout")

	cmd.Flags().Bool("metrics", defaults.MetricsEnabled, "Enable metrics endpoint")
	cmd.Flags().String("prefix", defaults.PathPrefix, "API path prefix")
	cmd.Flags().Bool("auto-reconcile", true, "Reconcile on the configured schedule while serving")

	return cmd
}

// runServer starts the API server and blocks until ctx is cancelled.
func runServer(ctx context.Context, out io.Writer, app application.Application, cfg server.Config, autoReconcile bool) error {
	logger := app.Logger()

	logger.Info().
		Int("port", cfg.Port).
		Str("host", cfg.Host).
		Str("prefix", cfg.PathPrefix).
		Bool("cors", cfg.CORSEnabled).
		Bool("auth", cfg.AuthEnabled).
		Int("rate_limit", cfg.RateLimit).
		Dur("cache_ttl", cfg.CacheTTL).
		Msg("Starting API server")

	srv, err := server.New(app, cfg)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	mf, err := app.Client()
	if err != nil {
		return err
	}

	// warm the catalog so a broken definition list shows up in the logs
	// at startup; the server still runs and reports it per request
	if result, err := mf.Reconcile(ctx); err != nil {
		logger.Error().Err(err).Msg("Initial reconcile failed")
	} else {
		logger.Info().Str("summary", result.Summary()).Msg("Catalog reconciled")
	}

	if autoReconcile {
		if err := mf.AutoReconcileOn(); err != nil {
			return fmt.Errorf("starting scheduled reconcile: %w", err)
		}
		defer func() {
			if err := mf.AutoReconcileOff(); err != nil {
				logger.Warn().Err(err).Msg("Stopping scheduled reconcile failed")
			}
		}()
	}

	srv.Start()

	return startWithGracefulShutdown(ctx, out, srv.HTTPServer(), srv, logger)
}

// parseConfig parses command flags into server configuration.
func parseConfig(cmd *cobra.Command) (server.Config, error) {
	cfg := server.Config{
		Host:           mustGetString(cmd, "host"),
		Port:           mustGetInt(cmd, "port"),
		PathPrefix:     mustGetString(cmd, "prefix"),
		CORSEnabled:    mustGetBool(cmd, "cors"),
		CORSOrigins:    mustGetStringSlice(cmd, "cors-origins"),
		AuthEnabled:    mustGetBool(cmd, "auth"),
		AuthHeader:     mustGetString(cmd, "auth-header"),
		ProtectReads:   mustGetBool(cmd, "protect-reads"),
		APIKey:         os.Getenv("MATHFLIX_API_KEY"),
		RateLimit:      mustGetInt(cmd, "rate-limit"),
		CacheTTL:       mustGetDuration(cmd, "cache-ttl"),
		MaxBodyBytes:   mustGetInt64(cmd, "max-body-bytes"),
		ReadTimeout:    mustGetDuration(cmd, "read-timeout"),
		WriteTimeout:   mustGetDuration(cmd, "write-timeout"),
		IdleTimeout:    mustGetDuration(cmd, "idle-timeout"),
		MetricsEnabled: mustGetBool(cmd, "metrics"),
	}

	// environment overrides for container deployments
	if envPort := os.Getenv("HTTP_PORT"); envPort != "" && !cmd.Flags().Changed("port") {
		port, err := parsePort(envPort)
		if err != nil {
			return cfg, err
		}
		cfg.Port = port
	}
	if envHost := os.Getenv("HTTP_HOST"); envHost != "" && !cmd.Flags().Changed("host") {
		cfg.Host = envHost
	}

	if cfg.AuthEnabled && cfg.APIKey == "" {
		return cfg, fmt.Errorf("--auth requires MATHFLIX_API_KEY to be set")
	}
	return cfg, nil
}

// parsePort safely parses a port string to integer.
func parsePort(portStr string) (int, error) {
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return 0, fmt.Errorf("invalid port number: %s", portStr)
	}
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("port out of range: %d", port)
	}
	return port, nil
}

// startWithGracefulShutdown serves until ctx is cancelled, then drains
// connections and stops background services.
func startWithGracefulShutdown(ctx context.Context, out io.Writer, httpServer *http.Server, srv *server.Server, logger *zerolog.Logger) error {
	serverErr := make(chan error, 1)

	logger.Info().Str("addr", httpServer.Addr).Msg("HTTP server listening")
	fmt.Fprintf(out, "API server listening on %s\n", httpServer.Addr)
	fmt.Fprintln(out, "   Press Ctrl+C to stop")

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- fmt.Errorf("server failed: %w", err)
		}
	}()

	select {
	case err := <-serverErr:
		_ = srv.Shutdown(context.Background())
		return err
	case <-ctx.Done():
		logger.Info().Msg("Shutdown signal received")
		fmt.Fprintln(out, "\nShutting down API server...")

		// the parent context is already cancelled
		shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("Background services shutdown had issues")
		}

		logger.Info().Msg("Server stopped gracefully")
		fmt.Fprintln(out, "API server stopped gracefully")
		return nil
	}
}

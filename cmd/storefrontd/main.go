// storefrontd serves the signed-in buyer's storefront over HTTP: REST
// routes for catalog, cart, and checkout, plus an MCP endpoint for
// agent clients. It trades the per-command process of the CLI for a
// long-lived process holding warm catalog and cart snapshots.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/config"
	"storefront/internal/handler"
	"storefront/internal/middleware"
	"storefront/internal/order"
	"storefront/internal/remote"
	"storefront/internal/storefront"
	"storefront/internal/token"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Initialize structured logger
	logger := initLogger()

	// Load configuration
	ctx := context.Background()
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger.Info("configuration loaded",
		slog.String("environment", cfg.Environment),
		slog.String("catalog_url", cfg.Store.CatalogURL),
		slog.String("cart_url", cfg.Store.CartURL),
		slog.String("order_url", cfg.Store.OrderURL),
	)

	// Resolve the identity up front: the daemon serves exactly one
	// signed-in buyer, and without a decodable token there is nothing
	// it can do.
	tokenStore := token.NewStore(cfg.Store.TokenDir)
	tok, err := tokenStore.Load()
	if err != nil {
		return fmt.Errorf("reading token: %w", err)
	}
	identity, err := token.DecodeIdentity(tok)
	if err != nil {
		return fmt.Errorf("not signed in (run 'storefront login' first): %w", err)
	}
	logger.Info("identity resolved",
		slog.String("user_id", identity.UserID),
		slog.String("user_name", identity.UserName),
	)

	// Wire the client stack
	rc := remote.New(cfg.RequestTimeout(), logger)
	sf := storefront.New(
		catalog.NewClient(rc, cfg.Store.CatalogURL, cfg.EffectiveDefaultStock()),
		cart.NewClient(rc, cfg.Store.CartURL),
		order.NewClient(rc, cfg.Store.OrderURL),
		identity,
		logger,
	)

	// Warm the snapshots so the first request serves reconciled views.
	// A failed warmup is not fatal: operations refetch on demand.
	warmCtx, cancelWarm := context.WithTimeout(ctx, cfg.RequestTimeout())
	if err := sf.Refresh(warmCtx); err != nil {
		logger.Warn("initial refresh failed", slog.String("error", err.Error()))
	}
	cancelWarm()

	// Setup routes
	h := handler.New(sf, logger)
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	// Apply middleware chain: recovery wraps everything so panics in
	// logging are caught too.
	httpHandler := middleware.Chain(
		middleware.Recovery(logger),
		middleware.Logging(logger),
		middleware.NoStore,
	)(mux)

	// Create HTTP server with timeouts
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      httpHandler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Channel for shutdown signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Channel for server errors
	serverErr := make(chan error, 1)

	go func() {
		logger.Info("server starting",
			slog.String("port", cfg.Port),
			slog.String("addr", server.Addr),
		)
		serverErr <- server.ListenAndServe()
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-serverErr:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-shutdown:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		// Give outstanding requests time to complete
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			// Force close if graceful shutdown fails
			server.Close()
			return fmt.Errorf("shutdown error: %w", err)
		}
	}

	logger.Info("server stopped")
	return nil
}

// initLogger creates a structured logger configured for the
// environment. Production uses JSON format for GCP Cloud Logging
// compatibility. Development uses text format for readability.
func initLogger() *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
		// Add source location in debug mode
		AddSource: level == slog.LevelDebug,
	}

	if os.Getenv("ENVIRONMENT") == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mwhitworth/stagehand/internal/api"
	"github.com/mwhitworth/stagehand/internal/api/admin"
	"github.com/mwhitworth/stagehand/internal/api/operations"
	"github.com/mwhitworth/stagehand/internal/api/resources"
	"github.com/mwhitworth/stagehand/internal/atomic"
	"github.com/mwhitworth/stagehand/internal/catalog"
	"github.com/mwhitworth/stagehand/internal/config"
	"github.com/mwhitworth/stagehand/internal/database"
	"github.com/mwhitworth/stagehand/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the stagehand API server",
	Run: func(_ *cobra.Command, _ []string) {
		if err := runServe(); err != nil {
			slog.Error("fatal error", "error", err)
			os.Exit(1)
		}
	},
}

func runServe() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := database.Migrate(ctx, db); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	if err := catalog.Seed(ctx, db); err != nil {
		return fmt.Errorf("seed data: %w", err)
	}

	reg, err := catalog.NewRegistry()
	if err != nil {
		return fmt.Errorf("build schema registry: %w", err)
	}

	s := store.New(db)

	capabilities := atomic.NewCapabilities()
	for _, name := range reg.Names() {
		if rt, ok := reg.ResolveByName(name); ok {
			capabilities.Register(name, store.NewResourceHandler(rt))
		}
	}
	engine := atomic.NewEngine(reg, capabilities, s)

	mux := http.NewServeMux()

	// JSON:API routes
	operations.RegisterRoutes(mux, engine)
	resources.RegisterRoutes(mux, reg, s)

	// Admin API
	admin.RegisterRoutes(mux, db)

	// Catch-all: unknown routes get a JSON:API error document.
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		api.WriteError(w, api.NewEndpointNotFoundError(r.URL.Path))
	})

	handler := api.Chain(mux,
		api.Recovery(),
		api.RequestID(),
		api.Auth(cfg.AuthToken),
		api.Logging(),
	)

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: handler,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		slog.Info("shutting down server")
		if err := srv.Shutdown(context.Background()); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("starting stagehand server", "addr", cfg.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen: %w", err)
	}

	return nil
}

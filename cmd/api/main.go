// Copyright (c) 2026 StreamAdvisor. All rights reserved.

// Command api is the entry point for the StreamAdvisor HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Open the durable record-store medium (embedded Badger, or memory).
//  4. Load the record store and seed the content catalog.
//  5. Wire domain services and HTTP handlers.
//  6. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
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

	"github.com/streamadvisor/streamadvisor/internal/api"
	"github.com/streamadvisor/streamadvisor/internal/auth"
	"github.com/streamadvisor/streamadvisor/internal/cache"
	"github.com/streamadvisor/streamadvisor/internal/catalog"
	"github.com/streamadvisor/streamadvisor/internal/library"
	"github.com/streamadvisor/streamadvisor/internal/platform/clock"
	"github.com/streamadvisor/streamadvisor/internal/platform/config"
	"github.com/streamadvisor/streamadvisor/internal/platform/constants"
	"github.com/streamadvisor/streamadvisor/internal/recommend"
	"github.com/streamadvisor/streamadvisor/internal/store"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.Bool("ephemeral_storage", cfg.EphemeralStorage),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	systemClock := clock.System()

	// ── 3. Durable Medium ─────────────────────────────────────────────────
	var medium store.Medium
	if cfg.EphemeralStorage {
		log.Info("using ephemeral in-memory storage")
		medium = store.NewMemoryMedium()
	} else {
		badgerMedium, err := store.OpenBadgerMedium(cfg.DataDir, log)
		must(log, err, "open badger medium")
		defer func() {
			log.Info("closing badger medium")
			if cerr := badgerMedium.Close(); cerr != nil {
				log.Error("badger close error", slog.Any("error", cerr))
			}
		}()
		medium = badgerMedium
	}

	// ── 4. Record Store & Catalog ─────────────────────────────────────────
	appCache := cache.New(systemClock)

	recordStore, err := store.New(startupCtx, medium, appCache, systemClock, log, store.Tables()...)
	must(log, err, "load record store")

	contentCatalog := catalog.Seed()

	// ── 5. Domain Wiring ──────────────────────────────────────────────────
	authService := auth.NewService(recordStore, appCache, systemClock, log, cfg.SessionTTL)
	if cfg.SeedDemoData {
		must(log, authService.SeedDemoAccount(startupCtx, cfg.DemoEmail, cfg.DemoPassword), "seed demo account")
	}

	libraryService := library.NewService(recordStore, contentCatalog, log)
	recommendService := recommend.NewService(contentCatalog, libraryService, log)

	// ── 6. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckMedium: func() error {
			return medium.Ping(context.Background())
		},
		CheckCache: func() error {
			probe := time.Now().UnixNano()
			if err := appCache.Set("health:probe", probe, time.Minute); err != nil {
				return err
			}
			var got int64
			if !appCache.Get("health:probe", &got) || got != probe {
				return errors.New("cache probe round-trip failed")
			}
			return nil
		},
	}, log)

	// ── 7. HTTP Server ────────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      auth.NewHandler(authService),
		Catalog:   catalog.NewHandler(contentCatalog),
		Library:   library.NewHandler(libraryService),
		Recommend: recommend.NewHandler(recommendService),
	}

	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	server := api.NewServer(serverCtx, cfg, log, authService, handlers)

	// ── 8. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}

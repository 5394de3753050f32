// main is the entry point of the student management server.
//
// STARTUP SEQUENCE:
//  1. Load configuration (YAML file, .env, environment)
//  2. Initialise the logger
//  3. Open the record store (SQL database or JSON file)
//  4. Start the worker pool and build the services
//  5. Make sure an admin account exists
//  6. Start the HTTP server in a separate goroutine
//  7. Block the main goroutine until an OS signal (Ctrl+C / kill) arrives
//  8. Gracefully shut down: server, then workers, then the store
//
// RUNNING THE SERVER:
//
//	go run ./cmd/student-management --config=config/local.yaml
//
// or (with the environment variable):
//
//	CONFIG_PATH=config/local.yaml go run ./cmd/student-management
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/Gun2717/StudentManagement/internal/config"
	"github.com/Gun2717/StudentManagement/internal/http/router"
	"github.com/Gun2717/StudentManagement/internal/service"
	"github.com/Gun2717/StudentManagement/internal/storage"
	"github.com/Gun2717/StudentManagement/internal/storage/filestore"
	"github.com/Gun2717/StudentManagement/internal/storage/sqlstore"
	"github.com/Gun2717/StudentManagement/internal/workerpool"
)

func main() {
	// ── 1. Load Config ────────────────────────────────────────────────────
	cfg := config.MustLoad()

	// ── 2. Initialise Logger ──────────────────────────────────────────────
	// Handlers log through the package-level slog functions, so the
	// configured logger also becomes the default one.
	log := setupLogger(cfg.Env)
	slog.SetDefault(log)

	log.Info("starting student-management",
		slog.String("env", cfg.Env),
		slog.String("version", "1.0.0"),
	)

	// ── 3. Initialise Storage ─────────────────────────────────────────────
	// The rest of the program only sees the storage.Store interface.
	store, err := openStore(context.Background(), cfg, log)
	if err != nil {
		log.Error("failed to initialise storage", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// ── 4. Worker Pool and Services ───────────────────────────────────────
	pool := workerpool.New(cfg.Workers.Size, log)
	students := service.NewStudentService(store, pool, log,
		service.WithShutdownGrace(cfg.Workers.ShutdownGrace))
	grades := service.NewGradeService(store, store, log)
	auth := service.NewAuthService(store, log)

	// ── 5. Default Admin ──────────────────────────────────────────────────
	if cfg.Auth.AdminPassword != "" {
		if _, err := auth.EnsureAdmin(context.Background(), cfg.Auth.AdminUsername, cfg.Auth.AdminPassword); err != nil {
			log.Error("failed to create admin account", slog.String("error", err.Error()))
			os.Exit(1)
		}
	} else if cfg.Auth.Required {
		log.Warn("auth is required but no admin password is configured")
	}

	// ── 6. Create and Start the HTTP Server ───────────────────────────────
	server := &http.Server{
		Addr: cfg.HTTPServer.Addr,
		Handler: router.New(router.Deps{
			Students:    students,
			Grades:      grades,
			Auth:        auth,
			Log:         log,
			RequireAuth: cfg.Auth.Required,
		}),
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("server started", slog.String("address", cfg.HTTPServer.Addr))

		// ListenAndServe returns http.ErrServerClosed when Shutdown() is
		// called. That's expected, not an error.
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server encountered an error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// ── 7. Wait for Shutdown Signal ───────────────────────────────────────
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	<-done

	log.Info("shutdown signal received, stopping server...")

	// ── 8. Graceful Shutdown ──────────────────────────────────────────────
	// Stop taking requests first so nothing new reaches the worker pool,
	// then drain the pool, then close the store the workers were using.
	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTPServer.ShutdownTimeout)
	defer cancel()

	exitCode := 0
	if err := server.Shutdown(ctx); err != nil {
		log.Error("failed to shutdown server gracefully", slog.String("error", err.Error()))
		exitCode = 1
	}
	if err := students.Shutdown(); err != nil {
		log.Error("worker pool did not drain in time", slog.String("error", err.Error()))
		exitCode = 1
	}
	if err := store.Close(); err != nil {
		log.Error("failed to close storage", slog.String("error", err.Error()))
		exitCode = 1
	}

	log.Info("server stopped")
	os.Exit(exitCode)
}

// openStore returns the configured backend. When the sql backend cannot
// be opened the JSON file backend takes over so the tool stays usable.
func openStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (storage.Store, error) {
	if cfg.Storage.Backend == config.BackendSQL {
		if cfg.Storage.Driver == sqlstore.DriverSQLite {
			if err := os.MkdirAll(filepath.Dir(cfg.Storage.DSN), 0o755); err != nil {
				return nil, fmt.Errorf("create database dir: %w", err)
			}
		}

		store, err := sqlstore.New(ctx, sqlstore.Options{
			Driver: cfg.Storage.Driver,
			DSN:    cfg.Storage.DSN,
		})
		if err == nil {
			log.Info("storage initialised", slog.String("backend", "sql"), slog.String("driver", cfg.Storage.Driver))
			return store, nil
		}

		log.Warn("database unavailable, falling back to file storage",
			slog.String("error", err.Error()),
			slog.String("path", cfg.Storage.FilePath),
		)
	}

	store, err := filestore.New(cfg.Storage.FilePath)
	if err != nil {
		return nil, err
	}
	log.Info("storage initialised", slog.String("backend", "file"), slog.String("path", store.Path()))
	return store, nil
}

// setupLogger returns a *slog.Logger configured for the given environment.
//
// Development (dev): human-readable text output at DEBUG level.
// Production (prod): machine-readable JSON output at INFO level.
func setupLogger(env string) *slog.Logger {
	switch env {
	case "prod":
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	case "staging":
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}

// Package cli holds the bootstrap steps shared by cmd/livrocaixa and
// cmd/activity-relay.
package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"livrocaixa/internal/config"
	applog "livrocaixa/internal/log"
	"livrocaixa/internal/storage"
)

// SetupLogger installs a text logger on stdout as the slog default. The
// level comes from LOG_LEVEL.
func SetupLogger(component string) *slog.Logger {
	cfg := applog.DefaultConfig()
	cfg.Level = applog.ParseLevel(os.Getenv("LOG_LEVEL"))
	cfg.Component = component

	logger := applog.New(cfg)
	applog.SetDefault(logger)
	return logger.Logger
}

// LoadEnvFile loads .env for local development. A missing file is fine.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadConfig loads configuration and exits when validate rejects it.
func LoadConfig(logger *slog.Logger, validate func(*config.Config) error) *config.Config {
	cfg := config.Load()
	if err := validate(cfg); err != nil {
		logger.Error("Configuration validation failed", "error", err, "error_type", applog.ErrorTypeConfiguration)
		os.Exit(1)
	}
	return cfg
}

// InitJournal opens the SQLite activity journal or exits.
func InitJournal(logger *slog.Logger, dbPath string) *storage.Journal {
	journal, err := storage.OpenJournal(dbPath)
	if err != nil {
		logger.Error("Failed to open activity journal", "error", err, "path", dbPath)
		os.Exit(1)
	}
	logger.Info("Activity journal ready", "path", dbPath)
	return journal
}

// GracefulShutdown cancels the returned context on SIGINT or SIGTERM, runs
// cleanup with the given timeout, then closes done.
func GracefulShutdown(logger *slog.Logger, timeout time.Duration, cleanup func(context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		finished := make(chan struct{})
		go func() {
			if cleanup != nil {
				cleanup(shutdownCtx)
			}
			close(finished)
		}()

		select {
		case <-finished:
			logger.Info("Shutdown complete")
		case <-shutdownCtx.Done():
			logger.Warn("Shutdown timeout reached")
		}
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until shutdown has finished.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}

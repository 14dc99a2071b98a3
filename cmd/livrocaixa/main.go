package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"livrocaixa/internal/api"
	"livrocaixa/internal/backend"
	"livrocaixa/internal/cli"
	"livrocaixa/internal/config"
	apphttp "livrocaixa/internal/http"
	applog "livrocaixa/internal/log"
	"livrocaixa/internal/middleware/ratelimit"
	"livrocaixa/internal/session"
	"livrocaixa/internal/sheets"
	"livrocaixa/internal/storage"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentApp)
	cfg := cli.LoadConfig(logger, (*config.Config).Validate)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	client, err := api.New(cfg.APIBaseURL, cfg.APITimeout, api.WithMetrics(api.NewMetrics(registry)))
	if err != nil {
		logger.Error("Failed to create API client", "error", err, "base_url", cfg.APIBaseURL)
		os.Exit(1)
	}

	var journal *storage.Journal
	if cfg.ActivityEnabled {
		journal = cli.InitJournal(logger, cfg.SQLiteDBPath)
		defer journal.Close()
	} else {
		logger.Info("Activity journal disabled")
	}

	exporter := newExporter(logger, cfg)

	sessions := session.NewStore(session.StoreConfig{
		MaxSessions:  cfg.SessionMax,
		TTL:          cfg.SessionTTL,
		SecureCookie: cfg.SecureCookie,
	}, applog.ForComponent(applog.ComponentSession))

	deps := apphttp.Deps{
		API:         client,
		UpstreamURL: client.BaseURL(),
		Exporter:    exporter,
		Sessions:    sessions,
		Registry:    registry,
	}
	// A nil *storage.Journal must not become a non-nil interface.
	if journal != nil {
		deps.Journal = journal
	}

	srv, err := apphttp.NewServer(deps, apphttp.Options{
		Addr:            ":" + cfg.Port,
		RefreshInterval: cfg.RefreshInterval,
		DashboardLimit:  cfg.DashboardLimit,
		RateLimit: ratelimit.Config{
			RequestsPerSecond: cfg.RateLimitRPS,
			Burst:             cfg.RateLimitBurst,
		},
		TrustedProxies: cfg.TrustedProxies,
	})
	if err != nil {
		logger.Error("Failed to create server", "error", err)
		os.Exit(1)
	}

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	})

	logger.Info("Starting livrocaixa server",
		"port", cfg.Port,
		"api", cfg.APIBaseURL,
		"sheets_backend", cfg.SheetsBackend,
		"activity", cfg.ActivityEnabled)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}

// newExporter picks the spreadsheet backend for report exports.
func newExporter(logger *slog.Logger, cfg *config.Config) sheets.ReportExporter {
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid sheets backend configuration", "error", err)
		os.Exit(1)
	}
	exporter, err := backend.NewFactory(applog.ForComponent(applog.ComponentSheets)).
		CreateExporter(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize report export", "error", err, "backend", backendCfg.Type)
		os.Exit(1)
	}
	return exporter
}

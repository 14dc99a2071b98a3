package http

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"livrocaixa/internal/api"
	"livrocaixa/internal/cache"
	"livrocaixa/internal/core"
	applog "livrocaixa/internal/log"
	"livrocaixa/internal/middleware/ratelimit"
	"livrocaixa/internal/middleware/security"
	"livrocaixa/internal/middleware/trace"
	"livrocaixa/internal/notify"
	"livrocaixa/internal/session"
	"livrocaixa/internal/sheets"
	appweb "livrocaixa/web"
)

// Upstream is the finance API as seen by the handlers.
type Upstream interface {
	ListTransactions(ctx context.Context, limit int) ([]core.Transaction, error)
	Balance(ctx context.Context) (core.Balance, error)
	Monthly(ctx context.Context) ([]core.MonthlyPoint, error)
	Categories(ctx context.Context) (core.CategoryBreakdown, error)
	Detailed(ctx context.Context, f core.ReportFilter) (core.ReportResult, error)
	CategoryCatalogue(ctx context.Context) (core.Catalogue, error)
	RealtimeStats(ctx context.Context) (core.RealtimeStats, error)
	CreateTransaction(ctx context.Context, t core.NewTransaction, file *api.Upload) (int64, error)
	DeleteTransaction(ctx context.Context, id int64) error
	ExtractAmount(ctx context.Context, file api.Upload) (decimal.Decimal, error)
	Ping(ctx context.Context) error
}

// ActivityStore is the local journal of confirmed changes.
type ActivityStore interface {
	Record(ctx context.Context, a core.Activity) (core.Activity, error)
	Recent(ctx context.Context, limit int) ([]core.Activity, error)
	Ping(ctx context.Context) error
}

// Deps are the collaborators of the server. Journal may be nil.
type Deps struct {
	API         Upstream
	UpstreamURL *url.URL
	Journal     ActivityStore
	Exporter    sheets.ReportExporter
	Sessions    *session.Store
	Registry    *prometheus.Registry
}

// Options tune the server.
type Options struct {
	Addr            string
	RefreshInterval time.Duration
	DashboardLimit  int
	RateLimit       ratelimit.Config
	TrustedProxies  []string
	CatalogueTTL    time.Duration
	// Now is the clock used for form defaults and the print view.
	Now func() time.Time
}

type Server struct {
	http.Server

	api       Upstream
	journal   ActivityStore
	exporter  sheets.ReportExporter
	sessions  *session.Store
	templates *templates
	opts      Options
	logger    *slog.Logger
	metrics   *appMetrics
	startedAt time.Time

	catalogue    *cache.LRUCache[core.Catalogue]
	cacheManager *cache.Manager
	rateLimiter  *ratelimit.Limiter
	detector     *security.Detector

	shutdownOnce sync.Once
}

const catalogueKey = "catalogue"

// NewServer configures routes, middleware and templates.
func NewServer(deps Deps, opts Options) (*Server, error) {
	if deps.API == nil {
		return nil, errors.New("upstream API is required")
	}
	if deps.Sessions == nil {
		return nil, errors.New("session store is required")
	}
	if deps.Registry == nil {
		deps.Registry = prometheus.NewRegistry()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = 30 * time.Second
	}
	if opts.DashboardLimit <= 0 {
		opts.DashboardLimit = 10
	}
	if opts.CatalogueTTL <= 0 {
		opts.CatalogueTTL = 5 * time.Minute
	}

	tmpl, err := parseTemplates(appweb.TemplatesFS)
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	detector, err := security.NewDetector(opts.TrustedProxies, deps.Registry)
	if err != nil {
		return nil, fmt.Errorf("security detector: %w", err)
	}

	logger := applog.ForComponent(applog.ComponentHTTP)
	s := &Server{
		api:          deps.API,
		journal:      deps.Journal,
		exporter:     deps.Exporter,
		sessions:     deps.Sessions,
		templates:    tmpl,
		opts:         opts,
		logger:       logger,
		metrics:      newAppMetrics(deps.Registry),
		startedAt:    opts.Now(),
		catalogue:    cache.NewLRUCache[core.Catalogue](1, opts.CatalogueTTL),
		cacheManager: cache.NewManager(applog.ForComponent(applog.ComponentCache)),
		rateLimiter:  ratelimit.NewLimiter(opts.RateLimit, deps.Registry),
		detector:     detector,
	}

	s.cacheManager.Register("sessions", deps.Sessions.Cache())
	s.cacheManager.Register("catalogue", s.catalogue)
	s.cacheManager.Register("rate_limit", s.rateLimiter.Buckets())
	s.cacheManager.StartCleanup(5 * time.Minute)

	mux := http.NewServeMux()
	s.routes(mux, deps)

	traceMW := trace.NewMiddleware(detector.ExtractClientIP, deps.Registry)
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	limit := s.rateLimiter.Middleware(detector.ExtractClientIP, s.handleRateLimited)

	s.Server = http.Server{
		Addr:    opts.Addr,
		Handler: traceMW.Middleware(headers.Middleware(detector.Middleware(limit(mux)))),
	}
	return s, nil
}

func (s *Server) routes(mux *http.ServeMux, deps Deps) {
	withSession := s.sessions.Middleware
	handle := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, withSession(h))
	}

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	// Pages
	handle("GET /{$}", s.handleDashboard)
	handle("GET /transacoes", s.handleLedger)
	handle("GET /relatorios", s.handleReports)

	// Fragments
	handle("GET /ui/balance", s.handleBalance)
	handle("GET /ui/transactions", s.handleTransactions)
	handle("POST /ui/transactions", s.handleCreateTransaction)
	handle("DELETE /ui/transactions/{id}", s.handleDeleteTransaction)
	handle("GET /ui/attachments/preview", s.handleAttachmentPreview)
	handle("POST /ui/ocr", s.handleOCR)
	handle("GET /ui/charts", s.handleCharts)
	handle("GET /ui/categories", s.handleCategoryOptions)
	handle("GET /ui/stats", s.handleStats)
	handle("GET /ui/activity", s.handleActivity)
	handle("POST /ui/report", s.handleGenerateReport)
	handle("POST /ui/report/export", s.handleExportReport)
	handle("GET /ui/report/print", s.handlePrintReport)
	handle("POST /ui/report/sheets", s.handleSheetsExport)

	// Same-origin pass-through to the API
	if deps.UpstreamURL != nil {
		proxy := newUpstreamProxy(deps.UpstreamURL, s.logger)
		mux.Handle("GET "+api.UploadsPrefix, proxy)
		mux.Handle("GET "+api.PDFPath, proxy)
		mux.Handle("GET "+api.CSVExportPath, proxy)
	}

	// Ops
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
}

// handleRateLimited answers with a notice so HTMX shows it instead of
// failing silently.
func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldClientIP, s.detector.ExtractClientIP(r),
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path)
	NewHTMXResponse().
		Status(http.StatusTooManyRequests).
		Warning(notify.MsgRateLimited).
		NoSwap().
		Write(w)
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// upstreamTimeout bounds handler-side waits on top of the client timeout.
const upstreamTimeout = 20 * time.Second

func withUpstreamTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, upstreamTimeout)
}

// templatesLoaded is used by readiness checks.
func (s *Server) templatesLoaded() bool {
	return s.templates != nil && s.templates.base != nil
}

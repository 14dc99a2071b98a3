package http

import (
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"

	applog "livrocaixa/internal/log"
)

// newUpstreamProxy forwards attachment downloads and report exports to the
// API so the browser only ever talks to this origin.
func newUpstreamProxy(target *url.URL, logger *slog.Logger) http.Handler {
	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.SetXForwarded()
			pr.Out.Header.Del("Cookie")
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			logger.ErrorContext(r.Context(), "Upstream proxy request failed",
				applog.FieldError, err,
				applog.FieldErrorType, applog.ErrorTypeUpstream,
				applog.FieldPath, r.URL.Path)
			http.Error(w, "upstream unavailable", http.StatusBadGateway)
		},
	}
}

package security

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newDetector(t *testing.T, trusted ...string) *Detector {
	t.Helper()
	d, err := NewDetector(trusted, prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("NewDetector() error = %v", err)
	}
	return d
}

func TestNewDetectorRejectsBadCIDR(t *testing.T) {
	if _, err := NewDetector([]string{"10.0.0.0/33"}, prometheus.NewRegistry()); err == nil {
		t.Fatal("expected error for invalid CIDR")
	}
}

func TestExtractClientIP(t *testing.T) {
	tests := []struct {
		name       string
		trusted    []string
		remoteAddr string
		xff        string
		xri        string
		want       string
	}{
		{"direct connection", nil, "203.0.113.5:4000", "", "", "203.0.113.5"},
		{"untrusted peer ignores XFF", nil, "203.0.113.5:4000", "198.51.100.1", "", "203.0.113.5"},
		{"trusted proxy uses first XFF", nil, "10.0.0.2:4000", "198.51.100.1, 10.0.0.9", "", "198.51.100.1"},
		{"trusted proxy falls back to X-Real-IP", nil, "127.0.0.1:4000", "garbage", "198.51.100.2", "198.51.100.2"},
		{"configured proxy list", []string{"203.0.113.0/24"}, "203.0.113.5:4000", "198.51.100.3", "", "198.51.100.3"},
		{"configured list replaces defaults", []string{"203.0.113.0/24"}, "10.0.0.2:4000", "198.51.100.3", "", "10.0.0.2"},
		{"unparseable remote addr", nil, "pipe", "", "", "pipe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDetector(t, tt.trusted...)
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				r.Header.Set("X-Real-IP", tt.xri)
			}
			if got := d.ExtractClientIP(r); got != tt.want {
				t.Errorf("ExtractClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetectSuspiciousRequest(t *testing.T) {
	tests := []struct {
		name   string
		method string
		target string
		agent  string
		want   bool
	}{
		{"dashboard", http.MethodGet, "/", "Mozilla/5.0", false},
		{"report query", http.MethodGet, "/ui/report?data_inicio=2024-01-01&data_fim=2024-01-31", "Mozilla/5.0", false},
		{"path traversal", http.MethodGet, "/uploads/../../etc/passwd", "Mozilla/5.0", true},
		{"dotenv scan", http.MethodGet, "/.env", "Mozilla/5.0", true},
		{"sql injection in query", http.MethodGet, "/ui/report?categoria=x%27%20union%20select%201", "Mozilla/5.0", true},
		{"scanner agent", http.MethodGet, "/", "sqlmap/1.7", true},
		{"trace method", "TRACE", "/", "Mozilla/5.0", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDetector(t)
			r := httptest.NewRequest(tt.method, "/", nil)
			r.URL.Path, r.URL.RawQuery, _ = strings.Cut(tt.target, "?")
			r.Header.Set("User-Agent", tt.agent)
			if got := d.DetectSuspiciousRequest(r); got != tt.want {
				t.Errorf("DetectSuspiciousRequest() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetectorMiddlewareBlocks(t *testing.T) {
	d := newDetector(t)
	called := false
	h := d.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))

	r := httptest.NewRequest(http.MethodGet, "/wp-admin/", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, r)

	if rr.Code != http.StatusBadRequest || called {
		t.Errorf("status = %d, handler called = %v", rr.Code, called)
	}
	if got := testutil.ToFloat64(d.suspicious); got != 1 {
		t.Errorf("suspicious counter = %v, want 1", got)
	}
}

func TestHeadersMiddleware(t *testing.T) {
	h := NewHeadersMiddleware(DefaultHeadersConfig()).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing nosniff")
	}
	if !strings.Contains(rr.Header().Get("Content-Security-Policy"), "https://cdn.plot.ly") {
		t.Error("CSP must allow the chart library")
	}
	if rr.Header().Get("Strict-Transport-Security") != "" {
		t.Error("HSTS must not be sent over plain HTTP")
	}

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.TLS = &tls.ConnectionState{}
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, r)
	if got := rr.Header().Get("Strict-Transport-Security"); got != "max-age=31536000; includeSubDomains" {
		t.Errorf("HSTS = %q", got)
	}
}

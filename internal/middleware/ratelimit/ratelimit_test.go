package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestAllowPerClientBurst(t *testing.T) {
	rl := NewLimiter(Config{RequestsPerSecond: 0.001, Burst: 2}, prometheus.NewRegistry())

	if !rl.Allow("a") || !rl.Allow("a") {
		t.Fatal("burst of 2 should be allowed")
	}
	if rl.Allow("a") {
		t.Error("third request should be limited")
	}
	if !rl.Allow("b") {
		t.Error("other clients have their own bucket")
	}
	if got := rl.ActiveClients(); got != 2 {
		t.Errorf("ActiveClients() = %d, want 2", got)
	}
	if got := testutil.ToFloat64(rl.rejected); got != 1 {
		t.Errorf("rejected = %v, want 1", got)
	}
}

func TestMiddleware(t *testing.T) {
	rl := NewLimiter(Config{RequestsPerSecond: 0.001, Burst: 1}, prometheus.NewRegistry())
	ip := func(*http.Request) string { return "198.51.100.1" }
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	tests := []struct {
		name    string
		onLimit func(http.ResponseWriter, *http.Request)
		method  string
		want    int
	}{
		{"first post", nil, http.MethodPost, http.StatusOK},
		{"second post limited", nil, http.MethodPost, http.StatusTooManyRequests},
		{"reads bypass", nil, http.MethodGet, http.StatusOK},
		{"delete limited with custom handler", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}, http.MethodDelete, http.StatusTeapot},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := rl.Middleware(ip, tt.onLimit)(next)
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(tt.method, "/ui/transactions", nil))
			if rr.Code != tt.want {
				t.Errorf("status = %d, want %d", rr.Code, tt.want)
			}
			if tt.want != http.StatusOK && rr.Header().Get("Retry-After") == "" {
				t.Error("limited responses carry Retry-After")
			}
		})
	}
}

func TestNewLimiterDefaults(t *testing.T) {
	rl := NewLimiter(Config{}, prometheus.NewRegistry())
	def := DefaultConfig()
	if rl.burst != def.Burst || float64(rl.limit) != def.RequestsPerSecond {
		t.Errorf("burst=%d limit=%v, want defaults", rl.burst, rl.limit)
	}
}

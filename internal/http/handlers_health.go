package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.startedAt).String(),
	})
}

// handleReady checks the dependencies in parallel. The journal is optional
// and only reported when configured.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var mu sync.Mutex
	checks := make(map[string]any)
	set := func(name string, err error) error {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			checks[name] = "failed: " + err.Error()
			return err
		}
		checks[name] = "ok"
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if !s.templatesLoaded() {
			return set("templates", errors.New("templates not loaded"))
		}
		return set("templates", nil)
	})
	g.Go(func() error {
		return set("upstream", s.api.Ping(gctx))
	})
	if s.journal != nil {
		g.Go(func() error {
			return set("journal", s.journal.Ping(gctx))
		})
	}
	err := g.Wait()

	checks["sessions"] = map[string]any{"active": s.sessions.Len()}
	checks["rate_limiter"] = map[string]any{"active_clients": s.rateLimiter.ActiveClients()}

	status, code := "ready", http.StatusOK
	if err != nil {
		status, code = "not_ready", http.StatusServiceUnavailable
		s.logger.WarnContext(r.Context(), "Readiness check failed", "error", err)
	}
	writeJSON(w, code, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

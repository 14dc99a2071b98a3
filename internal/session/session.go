// Package session keeps render state between requests: one Session per
// browser cookie, one Page per rendered page (browser tab) inside it.
package session

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"livrocaixa/internal/cache"
	"livrocaixa/internal/core"
	"livrocaixa/internal/report"
)

const (
	CookieName = "livrocaixa_session"

	// PageHeader carries the ID of the page that issued a fragment request.
	PageHeader = "X-Page-ID"

	defaultMaxPages = 16
	defaultTTL      = time.Hour
)

// Page is the render state of one rendered page. Two tabs of the same
// browser never share a report or a list.
type Page struct {
	Transactions Latest[[]core.Transaction]
	Balance      Latest[core.Balance]
	Stats        Latest[core.RealtimeStats]
	Charts       Sequencer
	Report       *report.Machine
}

func newPage() *Page {
	return &Page{Report: report.NewMachine()}
}

// Session is the render state of one browser.
type Session struct {
	ID        string
	CreatedAt time.Time

	pages *cache.LRUCache[*Page]
}

func newSession(maxPages int, ttl time.Duration) *Session {
	return &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		pages:     cache.NewLRUCache[*Page](maxPages, ttl, cache.WithSlidingExpiry[*Page]()),
	}
}

// Page returns the state of the page with the given ID, creating it on first
// use. Requests without a page ID share the "" page.
func (s *Session) Page(id string) *Page {
	p, _ := s.pages.GetOrCreate(id, newPage)
	return p
}

// Pages reports how many page states the session holds.
func (s *Session) Pages() int { return s.pages.Size() }

// NewPageID returns a fresh ID for a page about to be rendered.
func NewPageID() string { return uuid.NewString() }

// PageID returns the page ID sent with r, or "" when it is absent or not a
// UUID.
func PageID(r *http.Request) string {
	id := r.Header.Get(PageHeader)
	if _, err := uuid.Parse(id); err != nil || len(id) != 36 {
		return ""
	}
	return id
}

// PageFrom returns the state of the page that issued r.
func PageFrom(r *http.Request) *Page {
	return FromContext(r.Context()).Page(PageID(r))
}

// Store holds sessions in an LRU cache with sliding expiry.
type Store struct {
	sessions *cache.LRUCache[*Session]
	ttl      time.Duration
	maxPages int
	secure   bool
	logger   *slog.Logger
}

// StoreConfig sizes the store. MaxPages bounds the pages tracked per session
// and defaults to 16.
type StoreConfig struct {
	MaxSessions  int
	TTL          time.Duration
	MaxPages     int
	SecureCookie bool
}

func NewStore(cfg StoreConfig, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.TTL <= 0 {
		cfg.TTL = defaultTTL
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = defaultMaxPages
	}
	s := &Store{ttl: cfg.TTL, maxPages: cfg.MaxPages, secure: cfg.SecureCookie, logger: logger}
	s.sessions = cache.NewLRUCache[*Session](cfg.MaxSessions, cfg.TTL,
		cache.WithSlidingExpiry[*Session](),
		cache.WithEvictCallback(func(id string, _ *Session) {
			logger.Debug("Session evicted", "session_id", id)
		}),
	)
	return s
}

// Cache exposes the backing cache for periodic cleanup.
func (s *Store) Cache() *cache.LRUCache[*Session] { return s.sessions }

func (s *Store) Len() int { return s.sessions.Size() }

// Load returns the session for r, creating one when the cookie is missing,
// unknown or expired. created reports whether a new session was made.
func (s *Store) Load(r *http.Request) (sess *Session, created bool) {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		if sess, ok := s.sessions.Get(c.Value); ok {
			return sess, false
		}
	}
	sess = newSession(s.maxPages, s.ttl)
	s.sessions.Set(sess.ID, sess)
	return sess, true
}

// Middleware attaches the session to the request context and refreshes the
// cookie so it lives as long as the cache entry.
func (s *Store) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, created := s.Load(r)
		if created {
			s.logger.DebugContext(r.Context(), "Session created", "session_id", sess.ID)
		}
		http.SetCookie(w, &http.Cookie{
			Name:     CookieName,
			Value:    sess.ID,
			Path:     "/",
			MaxAge:   int(s.ttl / time.Second),
			HttpOnly: true,
			Secure:   s.secure,
			SameSite: http.SameSiteLaxMode,
		})
		next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), sess)))
	})
}

type contextKey struct{}

func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the request's session. Requests that bypassed the
// middleware get a throwaway session so handlers never see nil.
func FromContext(ctx context.Context) *Session {
	if s, ok := ctx.Value(contextKey{}).(*Session); ok {
		return s
	}
	return newSession(1, defaultTTL)
}

package session

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

func TestLatest_LastRequestedWins(t *testing.T) {
	var slot Latest[string]

	slow := slot.Begin()
	fast := slot.Begin()

	if !slot.Commit(fast, "fresh") {
		t.Fatal("latest commit rejected")
	}
	if slot.Commit(slow, "stale") {
		t.Fatal("stale commit accepted")
	}
	if v, ok := slot.Value(); !ok || v != "fresh" {
		t.Errorf("Value = %q, %v; want fresh", v, ok)
	}
}

func TestLatest_ConcurrentBegins(t *testing.T) {
	var slot Latest[int]
	var wg sync.WaitGroup
	seqs := make(chan uint64, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seqs <- slot.Begin()
		}()
	}
	wg.Wait()
	close(seqs)

	seen := map[uint64]bool{}
	current := 0
	for s := range seqs {
		if seen[s] {
			t.Fatalf("duplicate sequence %d", s)
		}
		seen[s] = true
		if slot.IsCurrent(s) {
			current++
		}
	}
	if current != 1 {
		t.Errorf("%d sequences current, want 1", current)
	}
}

func TestSequencer(t *testing.T) {
	var s Sequencer
	a := s.Begin()
	b := s.Begin()
	if s.IsCurrent(a) || !s.IsCurrent(b) {
		t.Errorf("IsCurrent(a)=%v IsCurrent(b)=%v", s.IsCurrent(a), s.IsCurrent(b))
	}
}

func TestStore_MiddlewareReusesSession(t *testing.T) {
	store := NewStore(StoreConfig{MaxSessions: 10, TTL: time.Hour}, nil)

	var seen []*Session
	h := store.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, FromContext(r.Context()))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != CookieName || !cookies[0].HttpOnly {
		t.Fatalf("cookies = %+v", cookies)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	h.ServeHTTP(httptest.NewRecorder(), req)

	if len(seen) != 2 || seen[0] != seen[1] {
		t.Fatal("second request did not reuse the session")
	}
	if store.Len() != 1 {
		t.Errorf("Len = %d, want 1", store.Len())
	}
}

func TestStore_UnknownCookieGetsNewSession(t *testing.T) {
	store := NewStore(StoreConfig{MaxSessions: 10, TTL: time.Hour}, nil)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "forged"})

	sess, created := store.Load(req)
	if !created || sess.ID == "forged" {
		t.Errorf("Load = %s, created=%v", sess.ID, created)
	}
}

func TestFromContext_WithoutMiddleware(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if s := FromContext(req.Context()); s == nil || s.Page("").Report == nil {
		t.Fatal("FromContext returned an unusable session")
	}
}

func TestPageID(t *testing.T) {
	id := NewPageID()
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"valid", id, id},
		{"missing", "", ""},
		{"not a uuid", "tab-1", ""},
		{"braced", "{" + id + "}", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ui/balance", nil)
			if tt.header != "" {
				req.Header.Set(PageHeader, tt.header)
			}
			if got := PageID(req); got != tt.want {
				t.Errorf("PageID = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSession_PagesAreIsolated(t *testing.T) {
	store := NewStore(StoreConfig{MaxSessions: 10, TTL: time.Hour, MaxPages: 2}, nil)
	sess, _ := store.Load(httptest.NewRequest(http.MethodGet, "/", nil))

	a, b := NewPageID(), NewPageID()
	if sess.Page(a) == sess.Page(b) {
		t.Fatal("two pages share state")
	}
	if sess.Page(a) != sess.Page(a) {
		t.Fatal("same page returned different state")
	}

	seq := sess.Page(a).Transactions.Begin()
	sess.Page(b).Transactions.Begin()
	if !sess.Page(a).Transactions.Commit(seq, nil) {
		t.Error("a fetch on one page was superseded by another page")
	}

	sess.Page(NewPageID())
	if sess.Pages() != 2 {
		t.Errorf("Pages = %d, want 2 (bounded)", sess.Pages())
	}
}

func TestPageFrom_UsesSessionAndHeader(t *testing.T) {
	store := NewStore(StoreConfig{MaxSessions: 10, TTL: time.Hour}, nil)
	id := NewPageID()

	var pages []*Page
	h := store.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pages = append(pages, PageFrom(r))
	}))

	rec := httptest.NewRecorder()
	first := httptest.NewRequest(http.MethodGet, "/", nil)
	first.Header.Set(PageHeader, id)
	h.ServeHTTP(rec, first)
	cookie := rec.Result().Cookies()[0]

	second := httptest.NewRequest(http.MethodGet, "/", nil)
	second.Header.Set(PageHeader, id)
	second.AddCookie(cookie)
	h.ServeHTTP(httptest.NewRecorder(), second)

	other := httptest.NewRequest(http.MethodGet, "/", nil)
	other.AddCookie(cookie)
	h.ServeHTTP(httptest.NewRecorder(), other)

	if pages[0] != pages[1] {
		t.Error("same page ID should resolve to the same state")
	}
	if pages[2] == pages[0] {
		t.Error("request without page ID should not see the tab's state")
	}
}

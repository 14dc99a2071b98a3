package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"livrocaixa/internal/core"
	applog "livrocaixa/internal/log"
	"livrocaixa/internal/session"
	"livrocaixa/internal/view"
)

// Transaction list scopes. The dashboard shows a short recent list, the
// ledger page the whole collection.
const (
	ScopeRecent = "recent"
	ScopeAll    = "all"
)

type pageData struct {
	PageID       string
	Title        string
	Active       string
	RefreshEvery string
	RefreshMs    int64
	Today        string
	Form         *transactionForm
	Report       *reportForm
	ListScope    string
	Activity     bool
	Sheets       bool
}

// transactionForm is the entry form. It opens on the expense kind; the
// income options are fetched when the kind changes. ListScope names the list
// on the same page that must re-fetch after a create; empty means reload.
type transactionForm struct {
	Today          string
	ExpenseOptions []view.CategoryOption
	ListScope      string
}

type reportForm struct {
	Start      string
	End        string
	Categories []string
	AutoDelay  string
}

func (s *Server) basePage(title, active string) pageData {
	return pageData{
		PageID:       session.NewPageID(),
		Title:        title,
		Active:       active,
		RefreshEvery: fmt.Sprintf("%ds", int(s.opts.RefreshInterval/time.Second)),
		RefreshMs:    s.opts.RefreshInterval.Milliseconds(),
		Today:        s.opts.Now().Format(core.DateLayout),
		Activity:     s.journal != nil,
		Sheets:       s.exporter != nil,
	}
}

func (s *Server) newTransactionForm(ctx context.Context, scope string) *transactionForm {
	cat := s.loadCatalogue(ctx)
	return &transactionForm{
		Today:          s.opts.Now().Format(core.DateLayout),
		ExpenseOptions: view.CategoryOptions(cat, core.KindExpense),
		ListScope:      scope,
	}
}

// handleDashboard renders the main dashboard page
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	data := s.basePage("Controle Financeiro", pageDashboard)
	data.ListScope = ScopeRecent
	data.Form = s.newTransactionForm(r.Context(), ScopeRecent)
	s.renderPage(w, r, pageDashboard, data)
}

// handleLedger renders the full transaction list.
func (s *Server) handleLedger(w http.ResponseWriter, r *http.Request) {
	data := s.basePage("Transações", pageLedger)
	data.ListScope = ScopeAll
	data.Form = s.newTransactionForm(r.Context(), ScopeAll)
	s.renderPage(w, r, pageLedger, data)
}

// handleReports renders the report page with the range defaulted to the
// current month. The form generates the first report shortly after load.
func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	data := s.basePage("Relatórios", pageReports)
	start, end := MonthStart(s.opts.Now())
	cat := s.loadCatalogue(r.Context())
	data.Report = &reportForm{
		Start:      start,
		End:        end,
		Categories: categoryNames(cat),
		AutoDelay:  "500ms",
	}
	s.renderPage(w, r, pageReports, data)
}

// loadCatalogue returns the category catalogue, cached for a few minutes.
// Upstream failures fall back to the built-in defaults without caching them.
func (s *Server) loadCatalogue(ctx context.Context) core.Catalogue {
	if cat, ok := s.catalogue.Get(catalogueKey); ok {
		return cat
	}
	ctx, cancel := withUpstreamTimeout(ctx)
	defer cancel()

	cat, err := s.api.CategoryCatalogue(ctx)
	if err != nil || (len(cat.Income) == 0 && len(cat.Expense) == 0) {
		if err != nil {
			s.logger.WarnContext(ctx, "Category catalogue unavailable, using defaults",
				applog.FieldError, err,
				applog.FieldErrorType, errorType(err))
		}
		return core.DefaultCatalogue()
	}
	s.catalogue.Set(catalogueKey, cat)
	return cat
}

// categoryNames lists every category once, income first.
func categoryNames(cat core.Catalogue) []string {
	seen := make(map[string]bool)
	var names []string
	for _, group := range [][]core.Category{cat.Income, cat.Expense} {
		for _, c := range group {
			if !seen[c.Name] {
				seen[c.Name] = true
				names = append(names, c.Name)
			}
		}
	}
	return names
}

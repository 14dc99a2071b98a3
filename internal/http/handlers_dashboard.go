package http

import (
	"encoding/json"
	"net/http"

	"livrocaixa/internal/chart"
	"livrocaixa/internal/core"
	applog "livrocaixa/internal/log"
	"livrocaixa/internal/session"
	"livrocaixa/internal/view"
)

type activityData struct {
	Rows []view.ActivityRow
}

// handleBalance renders the summary card. A failed fetch zeroes the card
// instead of leaving stale figures on screen.
func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	page := session.PageFrom(r)
	seq := page.Balance.Begin()

	ctx, cancel := withUpstreamTimeout(r.Context())
	defer cancel()

	card := view.ZeroBalanceCard()
	b, err := s.api.Balance(ctx)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to load balance",
			applog.FieldError, err,
			applog.FieldErrorType, errorType(err))
		if !page.Balance.IsCurrent(seq) {
			s.stale(w, "balance")
			return
		}
	} else {
		if !page.Balance.Commit(seq, b) {
			s.stale(w, "balance")
			return
		}
		card = view.NewBalanceCard(b)
	}

	s.renderFragment(w, r, NewHTMXResponse(), "balance", card)
}

// handleCharts returns the figure bundle as JSON. One chart failing leaves
// its slot null and the other still renders.
func (s *Server) handleCharts(w http.ResponseWriter, r *http.Request) {
	page := session.PageFrom(r)
	seq := page.Charts.Begin()

	ctx, cancel := withUpstreamTimeout(r.Context())
	defer cancel()

	// One chart after the other: the client renders them in the same order.
	var bundle chart.Bundle
	if points, err := s.api.Monthly(ctx); err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to load monthly chart",
			applog.FieldError, err,
			applog.FieldErrorType, errorType(err))
	} else {
		fig := chart.Monthly(points)
		bundle.Monthly = &fig
	}
	if breakdown, err := s.api.Categories(ctx); err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to load category chart",
			applog.FieldError, err,
			applog.FieldErrorType, errorType(err))
	} else {
		fig := chart.Categories(breakdown)
		bundle.Categories = &fig
	}

	if !page.Charts.IsCurrent(seq) {
		s.stale(w, "charts")
		return
	}

	body, err := json.Marshal(bundle)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to encode charts",
			applog.FieldError, err,
			applog.FieldErrorType, applog.ErrorTypeInternal)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(body)
}

// handleCategoryOptions renders the <option> list for the selected kind so
// the entry form can switch categories when the kind changes.
func (s *Server) handleCategoryOptions(w http.ResponseWriter, r *http.Request) {
	kind, err := core.ParseKind(r.URL.Query().Get("tipo"))
	if err != nil {
		kind = core.KindExpense
	}
	cat := s.loadCatalogue(r.Context())
	s.renderFragment(w, r, NewHTMXResponse(), "category_options", view.CategoryOptions(cat, kind))
}

// handleStats renders today's figures. Failures keep the previous card.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	page := session.PageFrom(r)
	seq := page.Stats.Begin()

	ctx, cancel := withUpstreamTimeout(r.Context())
	defer cancel()

	stats, err := s.api.RealtimeStats(ctx)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to load realtime stats",
			applog.FieldError, err,
			applog.FieldErrorType, errorType(err))
		if !page.Stats.IsCurrent(seq) {
			s.stale(w, "stats")
			return
		}
		NewHTMXResponse().NoSwap().Write(w)
		return
	}
	if !page.Stats.Commit(seq, stats) {
		s.stale(w, "stats")
		return
	}
	s.renderFragment(w, r, NewHTMXResponse(), "stats", view.NewStatsCard(stats))
}

// handleActivity lists the latest journaled changes.
func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		s.renderFragment(w, r, NewHTMXResponse(), "activity", activityData{})
		return
	}
	limit := ParseLimit(r.URL.Query(), "limit", 10)
	entries, err := s.journal.Recent(r.Context(), limit)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to read activity journal",
			applog.FieldError, err,
			applog.FieldErrorType, applog.ErrorTypeDatabase)
		NewHTMXResponse().NoSwap().Write(w)
		return
	}
	s.renderFragment(w, r, NewHTMXResponse(), "activity", activityData{Rows: view.NewActivityRows(entries)})
}

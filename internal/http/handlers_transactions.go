package http

import (
	"context"
	"errors"
	"net/http"

	"livrocaixa/internal/api"
	"livrocaixa/internal/core"
	"livrocaixa/internal/format"
	applog "livrocaixa/internal/log"
	"livrocaixa/internal/notify"
	"livrocaixa/internal/session"
	"livrocaixa/internal/view"
)

type attachmentPreview struct {
	Attachment *view.AttachmentRef
}

// handleTransactions renders the transaction list. scope=all lists every
// transaction, anything else the dashboard's recent subset.
func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	page := session.PageFrom(r)
	scope, limit := ScopeRecent, s.opts.DashboardLimit
	if r.URL.Query().Get("scope") == ScopeAll {
		scope, limit = ScopeAll, 0
	}
	limit = ParseLimit(r.URL.Query(), "limit", limit)

	seq := page.Transactions.Begin()
	ctx, cancel := withUpstreamTimeout(r.Context())
	defer cancel()

	txs, err := s.api.ListTransactions(ctx, limit)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to load transactions",
			applog.FieldError, err,
			applog.FieldErrorType, errorType(err),
			applog.FieldOperation, applog.OpList)
		if !page.Transactions.IsCurrent(seq) {
			s.stale(w, "transactions")
			return
		}
		// The previous list stays on screen.
		NewHTMXResponse().NoSwap().Write(w)
		return
	}
	if !page.Transactions.Commit(seq, txs) {
		s.stale(w, "transactions")
		return
	}

	s.renderFragment(w, r, NewHTMXResponse(), "transactions", view.NewTransactionList(scope, txs))
}

// handleCreateTransaction submits the entry form, attachment included.
func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	in, upload, closeUpload, err := ParseTransactionForm(w, r)
	defer closeUpload()
	if err != nil {
		s.logger.WarnContext(r.Context(), "Failed to parse transaction form",
			applog.FieldError, err,
			applog.FieldErrorType, applog.ErrorTypeValidation)
		s.metrics.transactions.WithLabelValues(applog.OpCreate, "invalid").Inc()
		NewHTMXResponse().Danger(notify.MsgTransactionAddFailed).NoSwap().Write(w)
		return
	}

	tx, err := in.Validate()
	if err != nil {
		msg := notify.MsgTransactionAddFailed
		var verr *core.ValidationError
		if errors.As(err, &verr) {
			msg = verr.Message()
		}
		s.metrics.transactions.WithLabelValues(applog.OpCreate, "invalid").Inc()
		NewHTMXResponse().Warning(msg).NoSwap().Write(w)
		return
	}

	ctx, cancel := withUpstreamTimeout(r.Context())
	defer cancel()

	id, err := s.api.CreateTransaction(ctx, tx, upload)
	s.metrics.transactions.WithLabelValues(applog.OpCreate, outcome(err)).Inc()
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to create transaction",
			applog.FieldError, err,
			applog.FieldErrorType, errorType(err),
			applog.FieldKind, string(tx.Kind))
		NewHTMXResponse().
			Danger(api.UserMessage(err, notify.MsgTransactionAddFailed)).
			NoSwap().
			Write(w)
		return
	}

	s.logger.InfoContext(r.Context(), "Transaction created",
		applog.FieldTransactionID, id,
		applog.FieldKind, string(tx.Kind),
		applog.FieldAmountCents, format.Cents(tx.Amount))

	s.record(r.Context(), core.Activity{
		Action:        core.ActionCreated,
		TransactionID: id,
		Description:   tx.Description,
		Kind:          tx.Kind,
		AmountCents:   format.Cents(tx.Amount),
	})

	b := NewHTMXResponse().
		TriggerFormReset().
		Success(notify.MsgTransactionAdded).
		NoSwap()
	if r.FormValue("scope") == "" {
		b.Refresh()
	} else {
		b.TriggerTransactionsChanged()
	}
	b.Write(w)
}

// handleDeleteTransaction removes one transaction. The browser asks for
// confirmation before the request is sent.
func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := ParseTransactionID(r)
	if err != nil {
		BadRequestError(notify.MsgTransactionDeleteFailed).Write(w)
		return
	}

	ctx, cancel := withUpstreamTimeout(r.Context())
	defer cancel()

	err = s.api.DeleteTransaction(ctx, id)
	s.metrics.transactions.WithLabelValues(applog.OpDelete, outcome(err)).Inc()
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to delete transaction",
			applog.FieldError, err,
			applog.FieldErrorType, errorType(err),
			applog.FieldTransactionID, id)
		NewHTMXResponse().
			Danger(api.UserMessage(err, notify.MsgTransactionDeleteFailed)).
			NoSwap().
			Write(w)
		return
	}

	s.logger.InfoContext(r.Context(), "Transaction deleted", applog.FieldTransactionID, id)

	entry := core.Activity{Action: core.ActionDeleted, TransactionID: id}
	if txs, ok := session.PageFrom(r).Transactions.Value(); ok {
		for _, t := range txs {
			if t.ID == id {
				entry.Description = t.Description
				entry.Kind = t.Kind
				entry.AmountCents = format.Cents(t.Amount)
				break
			}
		}
	}
	s.record(r.Context(), entry)

	NewHTMXResponse().
		Success(notify.MsgTransactionDeleted).
		TriggerTransactionsChanged().
		NoSwap().
		Write(w)
}

// handleAttachmentPreview renders the modal body for one attachment.
func (s *Server) handleAttachmentPreview(w http.ResponseWriter, r *http.Request) {
	name, ok := SafeFilename(r.URL.Query().Get("file"))
	if !ok {
		BadRequestError("Anexo inválido").Write(w)
		return
	}
	s.renderFragment(w, r, NewHTMXResponse(), "attachment_preview",
		attachmentPreview{Attachment: view.NewAttachmentRef(name)})
}

// handleOCR extracts an amount from an uploaded receipt and hands it to the
// entry form. It never swaps content.
func (s *Server) handleOCR(w http.ResponseWriter, r *http.Request) {
	upload, closeUpload, err := ParseUpload(w, r, "anexo")
	defer closeUpload()
	if err != nil {
		if !errors.Is(err, ErrNoFile) {
			s.logger.WarnContext(r.Context(), "Failed to read OCR upload",
				applog.FieldError, err,
				applog.FieldErrorType, applog.ErrorTypeValidation)
		}
		NewHTMXResponse().Danger(notify.MsgOCRFailed).NoSwap().Write(w)
		return
	}

	ctx, cancel := withUpstreamTimeout(r.Context())
	defer cancel()

	amount, err := s.api.ExtractAmount(ctx, upload)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "OCR extraction failed",
			applog.FieldError, err,
			applog.FieldErrorType, errorType(err))
		NewHTMXResponse().Danger(api.UserMessage(err, notify.MsgOCRFailed)).NoSwap().Write(w)
		return
	}
	if !amount.IsPositive() {
		NewHTMXResponse().Warning(notify.MsgOCRNothing).NoSwap().Write(w)
		return
	}

	NewHTMXResponse().
		TriggerOCRAmount(amount.StringFixed(2)).
		Success(notify.MsgOCRFound).
		NoSwap().
		Write(w)
}

// record writes a journal entry. Failures are logged and never reach the
// user since the upstream change already succeeded.
func (s *Server) record(ctx context.Context, a core.Activity) {
	if s.journal == nil {
		return
	}
	a.RequestID = applog.RequestID(ctx)
	_, err := s.journal.Record(context.WithoutCancel(ctx), a)
	s.metrics.journal.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to journal activity",
			applog.FieldError, err,
			applog.FieldErrorType, applog.ErrorTypeDatabase,
			applog.FieldTransactionID, a.TransactionID)
	}
}

func (s *Server) stale(w http.ResponseWriter, fragment string) {
	s.metrics.stale.WithLabelValues(fragment).Inc()
	Stale(w)
}

// errorType classifies upstream failures for logging.
func errorType(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return applog.ErrorTypeTimeout
	case api.IsKind(err, api.KindTransport):
		return applog.ErrorTypeNetwork
	}
	return applog.ErrorTypeUpstream
}

package http

import (
	"errors"
	"net/http"

	"livrocaixa/internal/api"
	"livrocaixa/internal/core"
	applog "livrocaixa/internal/log"
	"livrocaixa/internal/notify"
	"livrocaixa/internal/report"
	"livrocaixa/internal/session"
	"livrocaixa/internal/view"
)

// Export formats accepted by handleExportReport.
const (
	exportPDF = "pdf"
	exportCSV = "csv"
)

type reportErrorData struct {
	Message string
}

// handleGenerateReport loads the detailed report for the submitted range.
// Only the most recent submission from a page may replace what it shows.
func (s *Server) handleGenerateReport(w http.ResponseWriter, r *http.Request) {
	in, err := ParseReportForm(r)
	if err != nil {
		BadRequestError(notify.MsgReportFailed).Write(w)
		return
	}

	f, err := in.Filter()
	if err != nil {
		NewHTMXResponse().Warning(filterMessage(err)).NoSwap().Write(w)
		return
	}

	page := session.PageFrom(r)
	ticket, err := page.Report.Begin(f)
	if err != nil {
		NewHTMXResponse().Warning(filterMessage(err)).NoSwap().Write(w)
		return
	}

	logger := s.logger.With(
		applog.FieldSequence, ticket.Seq,
		applog.FieldPeriodStart, f.Start,
		applog.FieldPeriodEnd, f.End)

	ctx, cancel := withUpstreamTimeout(r.Context())
	defer cancel()

	result, err := s.api.Detailed(ctx, f)
	if err != nil {
		if !page.Report.Fail(ticket, err) {
			logger.DebugContext(r.Context(), "Discarding superseded report failure",
				applog.FieldErrorType, applog.ErrorTypeStale)
			s.stale(w, "report")
			return
		}
		attrs := []any{applog.FieldError, err, applog.FieldErrorType, errorType(err)}
		if prev, ok := page.Report.Retained(); ok {
			attrs = append(attrs, "hidden_period", prev.Filter.Start+".."+prev.Filter.End)
		}
		logger.ErrorContext(r.Context(), "Failed to generate report", attrs...)
		s.metrics.reports.WithLabelValues(report.StateError.String()).Inc()

		msg := api.UserMessage(err, notify.MsgReportFailed)
		s.renderFragment(w, r, NewHTMXResponse().Danger(msg), "report_error", reportErrorData{Message: msg})
		return
	}

	result.Filter = f
	if !page.Report.Succeed(ticket, result) {
		logger.DebugContext(r.Context(), "Discarding superseded report",
			applog.FieldErrorType, applog.ErrorTypeStale)
		s.stale(w, "report")
		return
	}
	s.metrics.reports.WithLabelValues(report.StateLoaded.String()).Inc()
	logger.InfoContext(r.Context(), "Report generated", "transactions", len(result.Transactions))

	s.renderFragment(w, r, NewHTMXResponse(), "report", view.NewReportView(result))
}

// handleExportReport opens the PDF or CSV download of the displayed report
// in a new window. The displayed filter wins over unsaved form edits.
func (s *Server) handleExportReport(w http.ResponseWriter, r *http.Request) {
	live := LiveReportFilter(r)
	format := r.FormValue("format")
	if format != exportPDF && format != exportCSV {
		BadRequestError("Formato de exportação inválido").Write(w)
		return
	}

	page := session.PageFrom(r)
	f, diverged, err := page.Report.ExportFilter(live)
	if err != nil {
		s.metrics.exports.WithLabelValues(format, "not_loaded").Inc()
		NewHTMXResponse().Warning(notify.MsgReportFirst).NoSwap().Write(w)
		return
	}

	target := api.ReportPDFURL(f)
	if format == exportCSV {
		target = api.ReportCSVURL(f)
	}
	s.metrics.exports.WithLabelValues(format, "ok").Inc()

	b := NewHTMXResponse().TriggerOpenWindow(target).NoSwap()
	if diverged {
		b.Warning(notify.MsgExportDisplayed)
	}
	b.Write(w)
}

// handlePrintReport renders the printable view of the displayed report and
// asks the browser to print once it is in place.
func (s *Server) handlePrintReport(w http.ResponseWriter, r *http.Request) {
	page := session.PageFrom(r)
	result, err := page.Report.Displayed()
	if err != nil {
		NewHTMXResponse().Warning(notify.MsgReportFirst).NoSwap().Write(w)
		return
	}
	s.metrics.exports.WithLabelValues("print", "ok").Inc()
	s.renderFragment(w, r, NewHTMXResponse().TriggerPrint(), "report_print",
		view.NewPrintView(result, s.opts.Now()))
}

// handleSheetsExport writes the displayed report to a spreadsheet tab.
func (s *Server) handleSheetsExport(w http.ResponseWriter, r *http.Request) {
	if s.exporter == nil {
		NewHTMXResponse().Danger(notify.MsgSheetExportFailed).NoSwap().Write(w)
		return
	}
	live := LiveReportFilter(r)

	page := session.PageFrom(r)
	_, diverged, err := page.Report.ExportFilter(live)
	if err != nil {
		s.metrics.exports.WithLabelValues("sheets", "not_loaded").Inc()
		NewHTMXResponse().Warning(notify.MsgReportFirst).NoSwap().Write(w)
		return
	}
	result, err := page.Report.Displayed()
	if err != nil {
		NewHTMXResponse().Warning(notify.MsgReportFirst).NoSwap().Write(w)
		return
	}

	ctx, cancel := withUpstreamTimeout(r.Context())
	defer cancel()

	ref, err := s.exporter.ExportReport(ctx, result)
	s.metrics.exports.WithLabelValues("sheets", outcome(err)).Inc()
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Sheets export failed",
			applog.FieldError, err,
			applog.FieldErrorType, applog.ErrorTypeUpstream,
			applog.FieldOperation, applog.OpExport)
		NewHTMXResponse().Danger(notify.MsgSheetExportFailed).NoSwap().Write(w)
		return
	}

	s.logger.InfoContext(r.Context(), "Report exported to sheets",
		applog.FieldSheetsRef, ref,
		applog.FieldPeriodStart, result.Filter.Start,
		applog.FieldPeriodEnd, result.Filter.End)

	b := NewHTMXResponse().Success(notify.MsgSheetExported).NoSwap()
	if diverged {
		b.Warning(notify.MsgExportDisplayed)
	}
	b.Write(w)
}

// filterMessage maps a report form error to its notice text.
func filterMessage(err error) string {
	var verr *core.ValidationError
	switch {
	case errors.Is(err, core.ErrMissingDates):
		return notify.MsgSelectDates
	case errors.Is(err, core.ErrInvalidRange):
		return notify.MsgInvalidRange
	case errors.As(err, &verr):
		return verr.Message()
	}
	return notify.MsgReportFailed
}

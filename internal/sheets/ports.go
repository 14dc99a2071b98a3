package sheets

import (
	"context"
	"fmt"

	"livrocaixa/internal/core"
	"livrocaixa/internal/format"
)

// Ports for outbound adapters.
type (
	// ReportExporter writes a loaded report to a spreadsheet and returns a
	// reference to where it landed.
	ReportExporter interface {
		ExportReport(ctx context.Context, r core.ReportResult) (ref string, err error)
	}
)

// Header is the first row of every exported sheet.
var Header = []any{"Data", "Descrição", "Categoria", "Tipo", "Valor"}

// Title names the sheet after the report period.
func Title(r core.ReportResult) string {
	start, end := r.Period.Start, r.Period.End
	if start == "" {
		start = r.Filter.Start
	}
	if end == "" {
		end = r.Filter.End
	}
	return fmt.Sprintf("Relatório %s a %s", start, end)
}

// Rows lays out header, one row per transaction and the server-declared
// totals. Amounts are plain two-decimal strings so the sheet parses them
// as numbers.
func Rows(r core.ReportResult) [][]any {
	out := make([][]any, 0, len(r.Transactions)+5)
	out = append(out, Header)
	for _, tx := range r.Transactions {
		amount := format.Plain(tx.Amount)
		if !tx.Kind.IsIncome() {
			amount = "-" + amount
		}
		out = append(out, []any{tx.Date, tx.Description, tx.Category, tx.Kind.Label(), amount})
	}
	out = append(out,
		[]any{},
		[]any{"", "", "", "Total receitas", format.Plain(r.Income())},
		[]any{"", "", "", "Total despesas", format.Plain(r.Expense())},
		[]any{"", "", "", "Saldo", format.Plain(r.Net())},
	)
	return out
}

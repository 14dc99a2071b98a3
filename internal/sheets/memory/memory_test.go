package memory

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"livrocaixa/internal/core"
)

func sampleReport() core.ReportResult {
	return core.ReportResult{
		Transactions: []core.Transaction{
			{ID: 1, Description: "Salário", Amount: decimal.RequireFromString("3000"), Kind: core.KindIncome, Category: "Salário", Date: "2024-01-05"},
			{ID: 2, Description: "Mercado", Amount: decimal.RequireFromString("150.5"), Kind: core.KindExpense, Category: "Alimentação", Date: "2024-01-10"},
		},
		Totals: map[core.Kind]core.KindTotal{
			core.KindIncome:  {Count: 1, Total: decimal.RequireFromString("3000")},
			core.KindExpense: {Count: 1, Total: decimal.RequireFromString("150.5")},
		},
		Period: core.Period{Start: "2024-01-01", End: "2024-01-31"},
		Filter: core.ReportFilter{Start: "2024-01-01", End: "2024-01-31", Kind: core.FilterAll, Category: core.AllCategories},
	}
}

func TestExportReport(t *testing.T) {
	s := New()
	ref, err := s.ExportReport(context.Background(), sampleReport())
	if err != nil {
		t.Fatalf("ExportReport() error = %v", err)
	}
	if ref != "mem:1" {
		t.Errorf("ref = %q, want mem:1", ref)
	}
	ref, _ = s.ExportReport(context.Background(), sampleReport())
	if ref != "mem:2" {
		t.Errorf("second ref = %q, want mem:2", ref)
	}

	sheets := s.Sheets()
	if len(sheets) != 2 {
		t.Fatalf("len(Sheets()) = %d, want 2", len(sheets))
	}
	if sheets[0].Title != "Relatório 2024-01-01 a 2024-01-31" {
		t.Errorf("Title = %q", sheets[0].Title)
	}
	// header + 2 rows + blank + 3 totals
	if got := len(sheets[0].Rows); got != 7 {
		t.Errorf("len(Rows) = %d, want 7", got)
	}
}

func TestExportReportRejectsMissingPeriod(t *testing.T) {
	s := New()
	if _, err := s.ExportReport(context.Background(), core.ReportResult{}); err == nil {
		t.Fatal("expected error for report without period")
	}
	if len(s.Sheets()) != 0 {
		t.Error("nothing should be stored on failure")
	}
}

func TestExportReportCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New().ExportReport(ctx, sampleReport()); err == nil {
		t.Fatal("expected context error")
	}
}

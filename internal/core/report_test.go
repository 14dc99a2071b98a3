package core

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestReportResult_TotalsFromServer(t *testing.T) {
	body := `{
		"transacoes": [{"id": 1, "descricao": "a", "valor": 999, "tipo": "receita", "categoria": "x", "data": "2024-01-02"}],
		"totais": {"receita": {"quantidade": 1, "total": 500}, "despesa": {"quantidade": 2, "total": 200}},
		"periodo": {"inicio": "2024-01-01", "fim": "2024-01-31"}
	}`

	var r ReportResult
	if err := json.Unmarshal([]byte(body), &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if !r.Net().Equal(decimal.NewFromInt(300)) {
		t.Errorf("Net() = %s, want 300", r.Net())
	}
	if !r.Income().Equal(decimal.NewFromInt(500)) {
		t.Errorf("Income() = %s, want 500 (server total, not line items)", r.Income())
	}
}

func TestReportResult_MissingKindIsZero(t *testing.T) {
	r := ReportResult{Totals: map[Kind]KindTotal{KindExpense: {Total: decimal.NewFromInt(40)}}}
	if !r.Income().IsZero() {
		t.Errorf("Income() = %s, want 0", r.Income())
	}
	if !r.Net().Equal(decimal.NewFromInt(-40)) {
		t.Errorf("Net() = %s, want -40", r.Net())
	}
}

func TestReportFilter_QueryAndEqual(t *testing.T) {
	f := ReportFilter{Start: "2024-01-01", End: "2024-01-31"}
	q := f.Query()
	if q.Get("tipo") != "todos" {
		t.Errorf("tipo = %q, want todos", q.Get("tipo"))
	}
	if q.Has("categoria") {
		t.Errorf("categoria should be omitted for all categories")
	}
	if !f.Equal(ReportFilter{Start: "2024-01-01", End: "2024-01-31", Kind: FilterAll, Category: AllCategories}) {
		t.Errorf("normalized filters should be equal")
	}
	if f.Equal(ReportFilter{Start: "2024-01-01", End: "2024-02-01"}) {
		t.Errorf("different ranges should not be equal")
	}
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{"receita": KindIncome, "Income": KindIncome, "despesa": KindExpense, "expense": KindExpense} {
		got, err := ParseKind(in)
		if err != nil || got != want {
			t.Errorf("ParseKind(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseKind("other"); err == nil {
		t.Error("expected error for unknown kind")
	}
}

package view

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"livrocaixa/internal/core"
	"livrocaixa/internal/notify"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestNewBalanceCard(t *testing.T) {
	tests := []struct {
		name      string
		balance   core.Balance
		wantNet   string
		wantClass string
	}{
		{
			name:      "positive",
			balance:   core.Balance{Overall: core.Totals{Income: dec("100"), Expense: dec("40")}},
			wantNet:   "R$ 60,00",
			wantClass: "card bg-info text-white",
		},
		{
			name:      "negative",
			balance:   core.Balance{Overall: core.Totals{Income: dec("10"), Expense: dec("50.5")}},
			wantNet:   "-R$ 40,50",
			wantClass: "card bg-warning text-white",
		},
		{
			name:      "zero is positive",
			balance:   core.Balance{},
			wantNet:   "R$ 0,00",
			wantClass: "card bg-info text-white",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card := NewBalanceCard(tt.balance)
			if card.Net != tt.wantNet {
				t.Errorf("Net = %q, want %q", card.Net, tt.wantNet)
			}
			if card.CardClass() != tt.wantClass {
				t.Errorf("CardClass = %q, want %q", card.CardClass(), tt.wantClass)
			}
		})
	}
}

func TestBalanceCard_Geral100_40(t *testing.T) {
	card := NewBalanceCard(core.Balance{Overall: core.Totals{Income: dec("100"), Expense: dec("40")}})
	if card.Income != "R$ 100,00" || card.Expense != "R$ 40,00" || card.Net != "R$ 60,00" || !card.Positive {
		t.Errorf("card = %+v", card)
	}
}

func TestZeroBalanceCard(t *testing.T) {
	card := ZeroBalanceCard()
	for _, got := range []string{card.Income, card.Expense, card.Net} {
		if got != "R$ 0,00" {
			t.Errorf("figure = %q, want R$ 0,00", got)
		}
	}
	if !card.Unavailable || card.Last30Days != nil {
		t.Errorf("card = %+v", card)
	}
}

func TestNewTransactionList(t *testing.T) {
	list := NewTransactionList("recent", nil)
	if !list.Empty() || list.EmptyMessage != notify.MsgNoTransactions {
		t.Errorf("empty list = %+v", list)
	}

	list = NewTransactionList("all", []core.Transaction{
		{ID: 1, Description: "<b>Salário</b>", Amount: dec("3000"), Kind: core.KindIncome, Date: "2024-03-05"},
		{ID: 2, Description: "Mercado", Amount: dec("40.5"), Kind: core.KindExpense, Date: "2024-03-06", Attachment: "nota.PDF"},
	})
	if list.Empty() || len(list.Rows) != 2 {
		t.Fatalf("rows = %d", len(list.Rows))
	}

	income, expense := list.Rows[0], list.Rows[1]
	if income.Amount != "+ R$ 3.000,00" || income.AmountClass() != "text-success" {
		t.Errorf("income row = %+v", income)
	}
	if expense.Amount != "- R$ 40,50" || expense.AmountClass() != "text-danger" || expense.Date != "06/03/2024" {
		t.Errorf("expense row = %+v", expense)
	}
	if income.Description != "<b>Salário</b>" {
		t.Error("description must stay raw; escaping belongs to the template")
	}
	if income.Attachment != nil {
		t.Error("unexpected attachment")
	}
	if a := expense.Attachment; a == nil || !a.IsPDF || a.URL != "/uploads/nota.PDF" {
		t.Errorf("attachment = %+v", a)
	}
	if income.Color != "#6c757d" {
		t.Errorf("default color = %q", income.Color)
	}
}

func TestAttachmentRef_Image(t *testing.T) {
	a := NewAttachmentRef("recibo.jpg")
	if a == nil || a.IsPDF {
		t.Errorf("attachment = %+v", a)
	}
	if NewAttachmentRef("  ") != nil {
		t.Error("blank name should have no attachment")
	}
}

func TestAttachmentRef_PreviewURLEscapesName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"recibo.pdf", "/ui/attachments/preview?file=recibo.pdf"},
		{"a&b.png", "/ui/attachments/preview?file=a%26b.png"},
		{"nota #1+2.jpg", "/ui/attachments/preview?file=nota+%231%2B2.jpg"},
	}
	for _, tt := range tests {
		a := NewAttachmentRef(tt.name)
		if a == nil || a.PreviewURL != tt.want {
			t.Fatalf("PreviewURL(%q) = %+v, want %q", tt.name, a, tt.want)
		}
		q, err := url.ParseQuery(strings.TrimPrefix(a.PreviewURL, PreviewPath+"?"))
		if err != nil || q.Get("file") != tt.name {
			t.Errorf("%q does not round-trip: %v %v", tt.name, q, err)
		}
	}
}

func TestNewReportView_EmptyResult(t *testing.T) {
	v := NewReportView(core.ReportResult{
		Totals: map[core.Kind]core.KindTotal{},
		Period: core.Period{Start: "2024-01-01", End: "2024-01-31"},
	})

	if !v.Empty() {
		t.Fatal("expected empty report")
	}
	if v.Summary.Count != "0" {
		t.Errorf("Count = %q, want 0", v.Summary.Count)
	}
	if v.EmptyMessage != notify.MsgNoReportTransactions {
		t.Errorf("EmptyMessage = %q", v.EmptyMessage)
	}
	if v.Period != "01/01/2024 a 31/01/2024" {
		t.Errorf("Period = %q", v.Period)
	}
}

func TestNewReportView_TotalsFromServer(t *testing.T) {
	r := core.ReportResult{
		Transactions: []core.Transaction{
			{Description: "a", Amount: dec("1"), Kind: core.KindIncome, Date: "2024-01-02"},
			{Description: "b", Amount: dec("999"), Kind: core.KindExpense, Date: "2024-01-01"},
		},
		Totals: map[core.Kind]core.KindTotal{
			core.KindIncome:  {Total: dec("500")},
			core.KindExpense: {Total: dec("200")},
		},
	}
	v := NewReportView(r)

	if v.Summary.Net != "R$ 300,00" || !v.Summary.Positive {
		t.Errorf("summary = %+v", v.Summary)
	}
	if v.Summary.NetCardClass() != "bg-info bg-opacity-10" || v.Summary.NetTextClass() != "text-info" {
		t.Errorf("net classes = %s %s", v.Summary.NetCardClass(), v.Summary.NetTextClass())
	}
	if v.Footer.Net != v.Summary.Net {
		t.Errorf("footer net %q differs from summary %q", v.Footer.Net, v.Summary.Net)
	}
	if v.Footer.Income != "+ "+v.Summary.Income || v.Footer.Expense != "- "+v.Summary.Expense {
		t.Errorf("footer = %+v, summary = %+v", v.Footer, v.Summary)
	}
	if v.Rows[0].Description != "a" || v.Rows[1].Description != "b" {
		t.Error("rows were reordered")
	}
	if v.Rows[1].Kind != "Despesa" || v.Rows[1].BadgeClass() != "badge badge-despesa" {
		t.Errorf("row = %+v", v.Rows[1])
	}
}

func TestNewReportView_NegativeNet(t *testing.T) {
	v := NewReportView(core.ReportResult{
		Totals: map[core.Kind]core.KindTotal{core.KindExpense: {Total: dec("20")}},
	})
	if v.Summary.Positive || v.Footer.NetClass() != "text-danger" || v.Summary.NetTextClass() != "text-warning" {
		t.Errorf("summary = %+v footer = %+v", v.Summary, v.Footer)
	}
}

func TestNewPrintView(t *testing.T) {
	r := core.ReportResult{
		Transactions: []core.Transaction{{Description: "x", Amount: dec("12.5"), Kind: core.KindExpense, Date: "2024-01-03"}},
		Totals:       map[core.Kind]core.KindTotal{core.KindExpense: {Total: dec("12.5")}},
		Period:       core.Period{Start: "2024-01-01", End: "2024-01-31"},
	}
	p := NewPrintView(r, time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC))

	if p.IssuedAt != "01/02/2024" || p.Period != "01/01/2024 a 31/01/2024" {
		t.Errorf("header = %q %q", p.IssuedAt, p.Period)
	}
	if p.Rows[0].Amount != "12.50" || p.Net != "-12.50" || p.Income != "0.00" {
		t.Errorf("print view = %+v", p)
	}
}

func TestNewStatsCard_NoTopCategory(t *testing.T) {
	card := NewStatsCard(core.RealtimeStats{})
	if card.TopCategory != "Nenhuma" || card.TodayCount != "0" {
		t.Errorf("card = %+v", card)
	}
}

func TestCategoryOptions(t *testing.T) {
	opts := CategoryOptions(core.DefaultCatalogue(), core.KindIncome)
	if len(opts) != 5 || opts[0].Name != "Salário" {
		t.Errorf("options = %+v", opts)
	}
}

func TestNewActivityRows(t *testing.T) {
	now := time.Now()
	rows := NewActivityRows([]core.Activity{
		{Action: core.ActionDeleted, Kind: core.KindExpense, AmountCents: 4050, CreatedAt: now},
		{Action: core.ActionCreated, Kind: core.KindIncome, AmountCents: 100, CreatedAt: now, PublishedAt: &now},
	})
	if rows[0].Action != "Excluída" || rows[0].Amount != "- R$ 40,50" || rows[0].Published {
		t.Errorf("row 0 = %+v", rows[0])
	}
	if rows[1].Action != "Adicionada" || rows[1].Amount != "+ R$ 1,00" || !rows[1].Published {
		t.Errorf("row 1 = %+v", rows[1])
	}
}

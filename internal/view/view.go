// Package view maps domain records to the values the templates render.
// Nothing here performs I/O; every function is deterministic for its input
// except where a clock is passed in.
package view

import (
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"livrocaixa/internal/api"
	"livrocaixa/internal/core"
	"livrocaixa/internal/format"
	"livrocaixa/internal/notify"
)

// Figures is an income/expense/net triple ready for display.
type Figures struct {
	Income   string
	Expense  string
	Net      string
	Positive bool
}

// NewFigures formats t. Positive is true for a zero net.
func NewFigures(t core.Totals) Figures {
	net := t.Net()
	return Figures{
		Income:   format.Currency(t.Income),
		Expense:  format.Currency(t.Expense),
		Net:      format.Currency(net),
		Positive: !net.IsNegative(),
	}
}

type BalanceCard struct {
	Figures
	Last30Days *Figures
	// Unavailable marks a zeroed card shown after a failed fetch.
	Unavailable bool
}

func NewBalanceCard(b core.Balance) BalanceCard {
	card := BalanceCard{Figures: NewFigures(b.Overall)}
	if b.Last30Days != nil {
		f := NewFigures(*b.Last30Days)
		card.Last30Days = &f
	}
	return card
}

// ZeroBalanceCard replaces whatever was shown before with zero figures.
func ZeroBalanceCard() BalanceCard {
	card := NewBalanceCard(core.Balance{})
	card.Unavailable = true
	return card
}

// CardClass toggles the summary card between its two visual states.
func (c BalanceCard) CardClass() string {
	if c.Positive {
		return "card bg-info text-white"
	}
	return "card bg-warning text-white"
}

// PreviewPath serves the attachment modal body.
const PreviewPath = "/ui/attachments/preview"

type AttachmentRef struct {
	Name       string
	URL        string
	PreviewURL string
	IsPDF      bool
}

func NewAttachmentRef(name string) *AttachmentRef {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	return &AttachmentRef{
		Name:       name,
		URL:        api.UploadURL(name),
		PreviewURL: PreviewPath + "?file=" + url.QueryEscape(name),
		IsPDF:      strings.EqualFold(path.Ext(name), ".pdf"),
	}
}

type TransactionRow struct {
	ID          int64
	Description string
	Category    string
	Color       string
	Date        string
	Amount      string
	Income      bool
	Attachment  *AttachmentRef
}

func (r TransactionRow) ItemClass() string {
	if r.Income {
		return "transacao-item transacao-receita"
	}
	return "transacao-item transacao-despesa"
}

func (r TransactionRow) AmountClass() string {
	if r.Income {
		return "text-success"
	}
	return "text-danger"
}

func NewTransactionRow(t core.Transaction) TransactionRow {
	color := t.Color
	if color == "" {
		color = "#6c757d"
	}
	return TransactionRow{
		ID:          t.ID,
		Description: t.Description,
		Category:    t.Category,
		Color:       color,
		Date:        format.Date(t.Date),
		Amount:      format.Signed(t.Amount, t.Kind.IsIncome()),
		Income:      t.Kind.IsIncome(),
		Attachment:  NewAttachmentRef(t.Attachment),
	}
}

// TransactionList is the list fragment. An empty list renders the
// placeholder instead of rows.
type TransactionList struct {
	Scope          string
	Rows           []TransactionRow
	EmptyMessage   string
	ConfirmMessage string
}

func (l TransactionList) Empty() bool { return len(l.Rows) == 0 }

func NewTransactionList(scope string, txs []core.Transaction) TransactionList {
	rows := make([]TransactionRow, 0, len(txs))
	for _, t := range txs {
		rows = append(rows, NewTransactionRow(t))
	}
	return TransactionList{
		Scope:          scope,
		Rows:           rows,
		EmptyMessage:   notify.MsgNoTransactions,
		ConfirmMessage: notify.MsgConfirmDelete,
	}
}

// ReportSummary is the row of cards above the report table.
type ReportSummary struct {
	Count   string
	Income  string
	Expense string
	Net     string
	// Positive selects the net styling. Zero counts as positive.
	Positive bool
}

func (s ReportSummary) NetCardClass() string {
	if s.Positive {
		return "bg-info bg-opacity-10"
	}
	return "bg-warning bg-opacity-10"
}

func (s ReportSummary) NetTextClass() string {
	if s.Positive {
		return "text-info"
	}
	return "text-warning"
}

// ReportFooter repeats the summary totals under the table.
type ReportFooter struct {
	Income   string
	Expense  string
	Net      string
	Positive bool
}

func (f ReportFooter) NetClass() string {
	if f.Positive {
		return "text-success"
	}
	return "text-danger"
}

type ReportRow struct {
	Date        string
	Description string
	Category    string
	Color       string
	Kind        string
	Income      bool
	Amount      string
}

func (r ReportRow) BadgeClass() string {
	if r.Income {
		return "badge badge-receita"
	}
	return "badge badge-despesa"
}

func (r ReportRow) AmountClass() string {
	if r.Income {
		return "text-end text-success"
	}
	return "text-end text-danger"
}

type ReportStats struct {
	Total          string
	LargestIncome  string
	LargestExpense string
}

type ReportView struct {
	Period       string
	Summary      ReportSummary
	Rows         []ReportRow
	EmptyMessage string
	Footer       ReportFooter
	Stats        *ReportStats
	Filter       core.ReportFilter
}

// Empty reports whether the table shows the single informational row.
func (v ReportView) Empty() bool { return len(v.Rows) == 0 }

// NewReportView renders r in server order. Summary and footer are both
// derived from the server totals and share the same formatted strings.
func NewReportView(r core.ReportResult) ReportView {
	totals := core.Totals{Income: r.Income(), Expense: r.Expense()}
	figures := NewFigures(totals)

	v := ReportView{
		Period: period(r),
		Summary: ReportSummary{
			Count:    format.Count(len(r.Transactions)),
			Income:   figures.Income,
			Expense:  figures.Expense,
			Net:      figures.Net,
			Positive: figures.Positive,
		},
		Rows:         make([]ReportRow, 0, len(r.Transactions)),
		EmptyMessage: notify.MsgNoReportTransactions,
		Footer: ReportFooter{
			Income:   "+ " + figures.Income,
			Expense:  "- " + figures.Expense,
			Net:      figures.Net,
			Positive: figures.Positive,
		},
		Filter: r.Filter,
	}

	for _, t := range r.Transactions {
		v.Rows = append(v.Rows, ReportRow{
			Date:        format.Date(t.Date),
			Description: t.Description,
			Category:    t.Category,
			Color:       t.Color,
			Kind:        t.Kind.Label(),
			Income:      t.Kind.IsIncome(),
			Amount:      format.Signed(t.Amount, t.Kind.IsIncome()),
		})
	}

	if r.Stats != nil {
		v.Stats = &ReportStats{
			Total:          format.Count(r.Stats.TotalTransactions),
			LargestIncome:  format.Currency(r.Stats.LargestIncome),
			LargestExpense: format.Currency(r.Stats.LargestExpense),
		}
	}
	return v
}

func period(r core.ReportResult) string {
	start, end := r.Period.Start, r.Period.End
	if start == "" {
		start = r.Filter.Start
	}
	if end == "" {
		end = r.Filter.End
	}
	return format.Date(start) + " a " + format.Date(end)
}

type PrintRow struct {
	Date        string
	Description string
	Category    string
	Kind        string
	Amount      string
}

// PrintView is the printable rendition of the displayed report.
type PrintView struct {
	Period   string
	IssuedAt string
	Rows     []PrintRow
	Income   string
	Expense  string
	Net      string
}

func NewPrintView(r core.ReportResult, now time.Time) PrintView {
	p := PrintView{
		Period:   period(r),
		IssuedAt: format.DateOf(now),
		Rows:     make([]PrintRow, 0, len(r.Transactions)),
		Income:   format.Plain(r.Income()),
		Expense:  format.Plain(r.Expense()),
		Net:      format.Plain(r.Net()),
	}
	for _, t := range r.Transactions {
		p.Rows = append(p.Rows, PrintRow{
			Date:        format.Date(t.Date),
			Description: t.Description,
			Category:    t.Category,
			Kind:        t.Kind.Label(),
			Amount:      format.Plain(t.Amount),
		})
	}
	return p
}

type UpcomingRow struct {
	Description string
	Date        string
	Amount      string
}

// StatsCard shows today's figures, the next expenses and the top category.
type StatsCard struct {
	TodayCount    string
	TodayIncome   string
	TodayExpense  string
	Upcoming      []UpcomingRow
	TopCategory   string
	TopCategoryAt string
}

func NewStatsCard(s core.RealtimeStats) StatsCard {
	card := StatsCard{
		TodayCount:    format.Count(s.Today.Count),
		TodayIncome:   format.Currency(s.Today.Income),
		TodayExpense:  format.Currency(s.Today.Expense),
		TopCategory:   s.TopCategory.Category,
		TopCategoryAt: format.Currency(s.TopCategory.Total),
	}
	if card.TopCategory == "" {
		card.TopCategory = "Nenhuma"
	}
	for _, u := range s.Upcoming {
		card.Upcoming = append(card.Upcoming, UpcomingRow{
			Description: u.Description,
			Date:        format.Date(u.Date),
			Amount:      format.Currency(u.Amount),
		})
	}
	return card
}

type CategoryOption struct {
	Name  string
	Color string
}

// CategoryOptions lists the catalogue entries for kind.
func CategoryOptions(c core.Catalogue, kind core.Kind) []CategoryOption {
	cats := c.For(kind)
	opts := make([]CategoryOption, 0, len(cats))
	for _, cat := range cats {
		opts = append(opts, CategoryOption{Name: cat.Name, Color: cat.Color})
	}
	return opts
}

type ActivityRow struct {
	When        string
	Action      string
	Description string
	Amount      string
	Published   bool
}

func NewActivityRows(entries []core.Activity) []ActivityRow {
	rows := make([]ActivityRow, 0, len(entries))
	for _, e := range entries {
		action := "Adicionada"
		if e.Action == core.ActionDeleted {
			action = "Excluída"
		}
		rows = append(rows, ActivityRow{
			When:        e.CreatedAt.Local().Format("02/01/2006 15:04"),
			Action:      action,
			Description: e.Description,
			Amount:      format.Signed(decimal.New(e.AmountCents, -2), e.Kind.IsIncome()),
			Published:   e.PublishedAt != nil,
		})
	}
	return rows
}

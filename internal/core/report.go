package core

import (
	"errors"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

// KindFilter selects which transactions a report includes.
type KindFilter string

const (
	FilterAll     KindFilter = "todos"
	FilterIncome  KindFilter = "receita"
	FilterExpense KindFilter = "despesa"

	// AllCategories disables the category filter.
	AllCategories = "todas"
)

var (
	ErrMissingDates      = errors.New("start and end dates are required")
	ErrInvalidRange      = errors.New("end date is before start date")
	ErrInvalidKindFilter = errors.New("invalid kind filter")
)

// ParseKindFilter accepts wire values and English aliases; empty means all.
func ParseKindFilter(s string) (KindFilter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "todos", "all":
		return FilterAll, nil
	case "receita", "income":
		return FilterIncome, nil
	case "despesa", "expense":
		return FilterExpense, nil
	}
	return "", ErrInvalidKindFilter
}

// ReportFilter is an inclusive date range plus kind and category selectors.
type ReportFilter struct {
	Start    string
	End      string
	Kind     KindFilter
	Category string
}

// Query encodes the filter with the parameter names of the report endpoints.
func (f ReportFilter) Query() url.Values {
	q := url.Values{}
	q.Set("data_inicio", f.Start)
	q.Set("data_fim", f.End)
	kind := f.Kind
	if kind == "" {
		kind = FilterAll
	}
	q.Set("tipo", string(kind))
	if f.Category != "" && f.Category != AllCategories {
		q.Set("categoria", f.Category)
	}
	return q
}

// Equal reports whether two filters select the same report.
func (f ReportFilter) Equal(o ReportFilter) bool {
	return f.normalized() == o.normalized()
}

func (f ReportFilter) normalized() ReportFilter {
	if f.Kind == "" {
		f.Kind = FilterAll
	}
	if f.Category == "" {
		f.Category = AllCategories
	}
	return f
}

type (
	KindTotal struct {
		Count int             `json:"quantidade"`
		Total decimal.Decimal `json:"total"`
	}

	Period struct {
		Start string `json:"inicio"`
		End   string `json:"fim"`
	}

	ReportStats struct {
		TotalTransactions int             `json:"total_transacoes"`
		LargestIncome     decimal.Decimal `json:"maior_receita"`
		LargestExpense    decimal.Decimal `json:"maior_despesa"`
	}

	// ReportResult is the detailed breakdown for one filter. Totals are
	// server-declared and are never re-summed from the line items.
	ReportResult struct {
		Transactions []Transaction      `json:"transacoes"`
		Totals       map[Kind]KindTotal `json:"totais"`
		Period       Period             `json:"periodo"`
		Stats        *ReportStats       `json:"estatisticas,omitempty"`

		// Filter is the request that produced this result.
		Filter ReportFilter `json:"-"`
	}
)

func (r ReportResult) Income() decimal.Decimal  { return r.Totals[KindIncome].Total }
func (r ReportResult) Expense() decimal.Decimal { return r.Totals[KindExpense].Total }
func (r ReportResult) Net() decimal.Decimal     { return r.Income().Sub(r.Expense()) }

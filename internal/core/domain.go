package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date format used on the wire.
const DateLayout = "2006-01-02"

const (
	KindIncome  Kind = "receita"
	KindExpense Kind = "despesa"
)

type (
	// Kind classifies a transaction as income or expense.
	Kind string

	Transaction struct {
		ID            int64           `json:"id"`
		Description   string          `json:"descricao"`
		Amount        decimal.Decimal `json:"valor"`
		Kind          Kind            `json:"tipo"`
		Category      string          `json:"categoria"`
		Color         string          `json:"cor,omitempty"`
		Date          string          `json:"data"`
		PaymentMethod string          `json:"metodo_pagamento,omitempty"`
		Notes         string          `json:"observacoes,omitempty"`
		Attachment    string          `json:"anexo,omitempty"`
	}

	// Totals is an income/expense pair. Net is always derived.
	Totals struct {
		Income  decimal.Decimal
		Expense decimal.Decimal
	}

	Balance struct {
		Overall Totals
		// Last30Days is nil when the server does not report it.
		Last30Days *Totals
	}

	MonthlyPoint struct {
		Month   string          `json:"mes"`
		Income  decimal.Decimal `json:"receitas"`
		Expense decimal.Decimal `json:"despesas"`
		Count   int             `json:"quantidade_transacoes"`
	}

	CategoryAggregate struct {
		Category string          `json:"categoria"`
		Total    decimal.Decimal `json:"total"`
		Count    int             `json:"quantidade"`
		Color    string          `json:"cor,omitempty"`
	}

	CategoryBreakdown struct {
		Income  []CategoryAggregate `json:"receitas"`
		Expense []CategoryAggregate `json:"despesas"`
	}

	Category struct {
		ID    int64  `json:"id"`
		Name  string `json:"nome"`
		Color string `json:"cor"`
	}

	// Catalogue lists the known categories per kind.
	Catalogue struct {
		Income  []Category `json:"receita"`
		Expense []Category `json:"despesa"`
	}

	RealtimeStats struct {
		Today       DayFigures        `json:"hoje"`
		Upcoming    []UpcomingExpense `json:"proximas_despesas"`
		TopCategory CategoryTotal     `json:"categoria_maior_gasto"`
	}

	DayFigures struct {
		Count   int             `json:"transacoes"`
		Income  decimal.Decimal `json:"receitas"`
		Expense decimal.Decimal `json:"despesas"`
	}

	UpcomingExpense struct {
		Description string          `json:"descricao"`
		Amount      decimal.Decimal `json:"valor"`
		Date        string          `json:"data"`
	}

	CategoryTotal struct {
		Category string          `json:"categoria"`
		Total    decimal.Decimal `json:"total"`
	}

	// Activity is a journal entry for a mutation confirmed by the server.
	Activity struct {
		ID            int64
		Action        string
		TransactionID int64
		Description   string
		Kind          Kind
		AmountCents   int64
		RequestID     string
		CreatedAt     time.Time
		PublishedAt   *time.Time
		Attempts      int
		LastError     string
	}
)

const (
	ActionCreated = "created"
	ActionDeleted = "deleted"
)

var (
	ErrInvalidKind   = errors.New("invalid kind")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidDate   = errors.New("invalid date")
)

// ParseKind accepts the wire values and their English aliases.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "receita", "income":
		return KindIncome, nil
	case "despesa", "expense":
		return KindExpense, nil
	}
	return "", ErrInvalidKind
}

func (k Kind) Label() string {
	if k == KindIncome {
		return "Receita"
	}
	return "Despesa"
}

func (k Kind) IsIncome() bool { return k == KindIncome }

func (t Totals) Net() decimal.Decimal { return t.Income.Sub(t.Expense) }

func (p MonthlyPoint) Net() decimal.Decimal { return p.Income.Sub(p.Expense) }

// DefaultCatalogue is used when the category endpoint is unavailable.
func DefaultCatalogue() Catalogue {
	income := []string{"Salário", "Freelance", "Investimentos", "Vendas", "Outros"}
	expense := []string{"Alimentação", "Moradia", "Transporte", "Saúde", "Educação", "Lazer", "Outros"}

	var c Catalogue
	for i, n := range income {
		c.Income = append(c.Income, Category{ID: int64(i + 1), Name: n, Color: "#27ae60"})
	}
	for i, n := range expense {
		c.Expense = append(c.Expense, Category{ID: int64(len(income) + i + 1), Name: n, Color: "#e74c3c"})
	}
	return c
}

// For returns the categories of the given kind.
func (c Catalogue) For(k Kind) []Category {
	if k == KindIncome {
		return c.Income
	}
	return c.Expense
}

// ParseDate validates a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

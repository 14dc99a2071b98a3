package api

import (
	"context"

	"github.com/shopspring/decimal"

	"livrocaixa/internal/core"
)

type totalsWire struct {
	Income  *decimal.Decimal `json:"receitas"`
	Expense *decimal.Decimal `json:"despesas"`
}

// balanceWire accepts both the nested and the flat response shapes.
type balanceWire struct {
	Overall    *totalsWire `json:"geral"`
	Last30Days *totalsWire `json:"ultimos_30_dias"`
	totalsWire
}

// Balance fetches the overall totals. Each figure is taken from the nested
// "geral" object first, then from the top-level fields, and is zero when
// neither carries it.
func (c *Client) Balance(ctx context.Context) (core.Balance, error) {
	var w balanceWire
	if err := c.get(ctx, "balance", "/api/relatorios/saldo", nil, &w); err != nil {
		return core.Balance{}, err
	}
	return w.balance(), nil
}

func (w balanceWire) balance() core.Balance {
	var nested totalsWire
	if w.Overall != nil {
		nested = *w.Overall
	}

	b := core.Balance{
		Overall: core.Totals{
			Income:  firstOf(nested.Income, w.Income),
			Expense: firstOf(nested.Expense, w.Expense),
		},
	}
	if w.Last30Days != nil {
		b.Last30Days = &core.Totals{
			Income:  firstOf(w.Last30Days.Income),
			Expense: firstOf(w.Last30Days.Expense),
		}
	}
	return b
}

func firstOf(values ...*decimal.Decimal) decimal.Decimal {
	for _, v := range values {
		if v != nil {
			return *v
		}
	}
	return decimal.Zero
}

package chart

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"livrocaixa/internal/core"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestMonthly(t *testing.T) {
	fig := Monthly([]core.MonthlyPoint{
		{Month: "2024-01", Income: dec("100"), Expense: dec("40")},
		{Month: "2024-02", Income: dec("10"), Expense: dec("30.5")},
	})

	if len(fig.Data) != 3 {
		t.Fatalf("traces = %d, want 3", len(fig.Data))
	}
	bars, net := fig.Data[0], fig.Data[2]
	if bars.Type != "bar" || fig.Data[1].Type != "bar" || fig.Layout.BarMode != "group" {
		t.Errorf("expected grouped bars, got %s/%s %s", bars.Type, fig.Data[1].Type, fig.Layout.BarMode)
	}
	if got := strings.Join(bars.X, ","); got != "Jan/2024,Fev/2024" {
		t.Errorf("x = %s", got)
	}
	if net.Y[0] != 60 || net.Y[1] != -20.5 {
		t.Errorf("net = %v, want [60 -20.5]", net.Y)
	}
	if fig.Layout.Legend.Orientation != "h" || fig.Config.DisplayModeBar {
		t.Errorf("layout/config = %+v %+v", fig.Layout, fig.Config)
	}
	if fig.Layout.PaperBGColor != transparent || fig.Layout.PlotBGColor != transparent {
		t.Error("background is not transparent")
	}
}

func TestMonthly_Empty(t *testing.T) {
	fig := Monthly(nil)
	for _, tr := range fig.Data {
		if len(tr.X) != 0 {
			t.Errorf("trace %s has %d points", tr.Name, len(tr.X))
		}
	}
}

func TestCategories(t *testing.T) {
	fig := Categories(core.CategoryBreakdown{
		Income:  []core.CategoryAggregate{{Category: "Salário", Total: dec("3000")}},
		Expense: []core.CategoryAggregate{{Category: "Moradia", Total: dec("1200")}, {Category: "Lazer", Total: dec("80.456")}},
	})

	if len(fig.Data) != 2 || fig.Layout.Grid.Columns != 2 {
		t.Fatalf("unexpected figure %+v", fig)
	}
	inc, exp := fig.Data[0], fig.Data[1]
	if inc.Hole != 0.4 || inc.Domain.Column != 0 || exp.Domain.Column != 1 {
		t.Errorf("donuts not side by side: %+v %+v", inc.Domain, exp.Domain)
	}
	if exp.Values[1] != 80.46 {
		t.Errorf("rounded value = %v, want 80.46", exp.Values[1])
	}
	if !fig.Layout.ShowLegend {
		t.Error("legend hidden")
	}
}

func TestFigureJSON(t *testing.T) {
	fig := Categories(core.CategoryBreakdown{})
	raw, err := json.Marshal(fig)
	if err != nil {
		t.Fatal(err)
	}
	s := string(raw)
	for _, want := range []string{`"domain":{"row":0,"column":0}`, `"displayModeBar":false`, `"hole":0.4`} {
		if !strings.Contains(s, want) {
			t.Errorf("json missing %s: %s", want, s)
		}
	}
}

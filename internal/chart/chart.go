// Package chart builds Plotly figures for the dashboard charts.
package chart

import (
	"livrocaixa/internal/core"
	"livrocaixa/internal/format"
)

const (
	ColorIncome  = "#27ae60"
	ColorExpense = "#e74c3c"
	ColorNet     = "#3498db"

	transparent = "rgba(0,0,0,0)"
)

var (
	incomePalette  = []string{"#27ae60", "#2ecc71", "#1abc9c", "#16a085"}
	expensePalette = []string{"#e74c3c", "#c0392b", "#d35400", "#e67e22"}
)

// Figure is the argument set of Plotly.react.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
	Config Config  `json:"config"`
}

type Trace struct {
	Type   string    `json:"type"`
	Name   string    `json:"name,omitempty"`
	Mode   string    `json:"mode,omitempty"`
	X      []string  `json:"x,omitempty"`
	Y      []float64 `json:"y,omitempty"`
	Labels []string  `json:"labels,omitempty"`
	Values []float64 `json:"values,omitempty"`
	Hole   float64   `json:"hole,omitempty"`
	Marker *Marker   `json:"marker,omitempty"`
	Line   *Line     `json:"line,omitempty"`
	Domain *Domain   `json:"domain,omitempty"`
}

type Marker struct {
	Color  string   `json:"color,omitempty"`
	Colors []string `json:"colors,omitempty"`
}

type Line struct {
	Width int `json:"width"`
}

type Domain struct {
	Row    int `json:"row"`
	Column int `json:"column"`
}

type Layout struct {
	BarMode      string  `json:"barmode,omitempty"`
	ShowLegend   bool    `json:"showlegend"`
	Legend       *Legend `json:"legend,omitempty"`
	Margin       *Margin `json:"margin,omitempty"`
	Grid         *Grid   `json:"grid,omitempty"`
	PaperBGColor string  `json:"paper_bgcolor"`
	PlotBGColor  string  `json:"plot_bgcolor"`
}

type Legend struct {
	Orientation string `json:"orientation"`
}

type Margin struct {
	T int `json:"t"`
	R int `json:"r"`
	B int `json:"b"`
	L int `json:"l"`
}

type Grid struct {
	Rows    int `json:"rows"`
	Columns int `json:"columns"`
}

type Config struct {
	Responsive     bool `json:"responsive"`
	DisplayModeBar bool `json:"displayModeBar"`
}

// Bundle is the payload of one chart refresh. A nil figure means that chart
// failed to load and the client keeps what it already draws.
type Bundle struct {
	Monthly    *Figure `json:"monthly"`
	Categories *Figure `json:"categories"`
}

func defaultConfig() Config {
	return Config{Responsive: true, DisplayModeBar: false}
}

// Monthly renders income and expense as grouped bars with the net as an
// overlaid line, in the order the points were given.
func Monthly(points []core.MonthlyPoint) Figure {
	months := make([]string, len(points))
	income := make([]float64, len(points))
	expense := make([]float64, len(points))
	net := make([]float64, len(points))
	for i, p := range points {
		months[i] = format.MonthLabel(p.Month)
		income[i] = p.Income.InexactFloat64()
		expense[i] = p.Expense.InexactFloat64()
		net[i] = p.Net().InexactFloat64()
	}

	return Figure{
		Data: []Trace{
			{Type: "bar", Name: "Receitas", X: months, Y: income, Marker: &Marker{Color: ColorIncome}},
			{Type: "bar", Name: "Despesas", X: months, Y: expense, Marker: &Marker{Color: ColorExpense}},
			{Type: "scatter", Mode: "lines+markers", Name: "Saldo", X: months, Y: net,
				Marker: &Marker{Color: ColorNet}, Line: &Line{Width: 4}},
		},
		Layout: Layout{
			BarMode:      "group",
			ShowLegend:   true,
			Legend:       &Legend{Orientation: "h"},
			Margin:       &Margin{T: 0, R: 0, B: 30, L: 40},
			PaperBGColor: transparent,
			PlotBGColor:  transparent,
		},
		Config: defaultConfig(),
	}
}

// Categories renders the income and expense aggregates as two donuts side
// by side sharing one legend.
func Categories(b core.CategoryBreakdown) Figure {
	return Figure{
		Data: []Trace{
			donut("Receitas", b.Income, 0, incomePalette),
			donut("Despesas", b.Expense, 1, expensePalette),
		},
		Layout: Layout{
			ShowLegend:   true,
			Grid:         &Grid{Rows: 1, Columns: 2},
			PaperBGColor: transparent,
			PlotBGColor:  transparent,
		},
		Config: defaultConfig(),
	}
}

func donut(name string, aggs []core.CategoryAggregate, column int, palette []string) Trace {
	labels := make([]string, len(aggs))
	values := make([]float64, len(aggs))
	for i, a := range aggs {
		labels[i] = a.Category
		values[i] = a.Total.Round(2).InexactFloat64()
	}
	return Trace{
		Type:   "pie",
		Name:   name,
		Labels: labels,
		Values: values,
		Hole:   0.4,
		Domain: &Domain{Row: 0, Column: column},
		Marker: &Marker{Colors: palette},
	}
}

// Package format renders raw values as pt-BR display strings.
package format

import (
	"strconv"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const isoDate = "2006-01-02"

var (
	brl     = money.NewFormatter(2, ",", ".", "R$", "$ 1")
	printer = message.NewPrinter(language.BrazilianPortuguese)

	monthAbbrev = [12]string{"Jan", "Fev", "Mar", "Abr", "Mai", "Jun", "Jul", "Ago", "Set", "Out", "Nov", "Dez"}
)

// Currency renders an amount as Brazilian reais, e.g. "R$ 1.234,56".
// Amounts are rounded half away from zero to cents.
func Currency(amount decimal.Decimal) string {
	return brl.Format(Cents(amount))
}

// CurrencyOf treats a nil amount as zero.
func CurrencyOf(amount *decimal.Decimal) string {
	if amount == nil {
		return Currency(decimal.Zero)
	}
	return Currency(*amount)
}

// Signed prefixes the absolute amount with "+" or "-".
func Signed(amount decimal.Decimal, positive bool) string {
	sign := "-"
	if positive {
		sign = "+"
	}
	return sign + " " + Currency(amount.Abs())
}

// Plain renders an amount with two fixed decimals and no currency symbol.
func Plain(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

func Cents(amount decimal.Decimal) int64 {
	return amount.Round(2).Shift(2).IntPart()
}

// Date renders YYYY-MM-DD as DD/MM/YYYY. The value is treated as a civil
// date, so the local time zone cannot shift the day. Unparseable input is
// returned unchanged.
func Date(iso string) string {
	iso = strings.TrimSpace(iso)
	if iso == "" {
		return ""
	}
	t, err := time.Parse(isoDate, iso)
	if err != nil {
		return iso
	}
	return t.Format("02/01/2006")
}

// DateOf renders a time using its own calendar day.
func DateOf(t time.Time) string {
	return t.Format("02/01/2006")
}

// MonthLabel renders a YYYY-MM key as "Mon/YYYY".
func MonthLabel(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}
	year, month, ok := strings.Cut(key, "-")
	if !ok {
		return key
	}
	m, err := strconv.Atoi(month)
	if err != nil || m < 1 || m > 12 {
		return key
	}
	return monthAbbrev[m-1] + "/" + year
}

// Count renders an integer with pt-BR digit grouping.
func Count(n int) string {
	return printer.Sprintf("%d", n)
}

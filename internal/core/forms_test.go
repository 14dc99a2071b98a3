package core

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "12.34", want: "12.34"},
		{in: "12,34", want: "12.34"},
		{in: "1.234,56", want: "1234.56"},
		{in: "R$ 10", want: "10"},
		{in: "0.5", want: "0.5"},
		{in: "", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "0", wantErr: true},
		{in: "-3", wantErr: true},
		{in: "1.234", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidAmount) {
					t.Fatalf("ParseAmount(%q) err = %v, want ErrInvalidAmount", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAmount(%q) unexpected error: %v", tt.in, err)
			}
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("ParseAmount(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestTransactionInput_Validate(t *testing.T) {
	valid := TransactionInput{
		Description: "Mercado",
		Amount:      "150,90",
		Kind:        "despesa",
		Category:    "Alimentação",
		Date:        "2024-03-10",
	}

	tx, err := valid.Validate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tx.Kind != KindExpense {
		t.Errorf("Kind = %q, want %q", tx.Kind, KindExpense)
	}
	if !tx.Amount.Equal(decimal.RequireFromString("150.90")) {
		t.Errorf("Amount = %s, want 150.90", tx.Amount)
	}

	invalid := valid
	invalid.Description = ""
	invalid.Amount = "x"
	invalid.Kind = "transfer"
	invalid.Date = "10/03/2024"

	_, err = invalid.Validate()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, field := range []string{"descricao", "valor", "tipo", "data"} {
		if _, ok := verr.Fields[field]; !ok {
			t.Errorf("missing field %q in %v", field, verr.Fields)
		}
	}
	if !strings.Contains(verr.Message(), "Descrição: campo obrigatório") {
		t.Errorf("Message() = %q", verr.Message())
	}
}

func TestReportInput_Filter(t *testing.T) {
	t.Run("missing dates", func(t *testing.T) {
		for _, in := range []ReportInput{{Start: "2024-01-01"}, {End: "2024-01-31"}, {}} {
			if _, err := in.Filter(); !errors.Is(err, ErrMissingDates) {
				t.Errorf("Filter(%+v) err = %v, want ErrMissingDates", in, err)
			}
		}
	})

	t.Run("defaults and aliases", func(t *testing.T) {
		f, err := ReportInput{Start: "2024-01-01", End: "2024-01-31", Kind: "all"}.Filter()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if f.Kind != FilterAll || f.Category != AllCategories {
			t.Errorf("got %+v", f)
		}
	})

	t.Run("inverted range", func(t *testing.T) {
		_, err := ReportInput{Start: "2024-02-01", End: "2024-01-31"}.Filter()
		if !errors.Is(err, ErrInvalidRange) {
			t.Errorf("err = %v, want ErrInvalidRange", err)
		}
	})

	t.Run("bad kind", func(t *testing.T) {
		_, err := ReportInput{Start: "2024-01-01", End: "2024-01-31", Kind: "x"}.Filter()
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("err = %v, want ValidationError", err)
		}
	})
}

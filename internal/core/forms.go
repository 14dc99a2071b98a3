package core

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	_ = v.RegisterValidation("amount", func(fl validator.FieldLevel) bool {
		_, err := ParseAmount(fl.Field().String())
		return err == nil
	})

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return v
}

// TransactionInput is the entry form as submitted by the browser.
type TransactionInput struct {
	Description   string `form:"descricao" validate:"required,max=200"`
	Amount        string `form:"valor" validate:"required,amount"`
	Kind          string `form:"tipo" validate:"required,oneof=receita despesa"`
	Category      string `form:"categoria" validate:"required,max=60"`
	Date          string `form:"data" validate:"required,datetime=2006-01-02"`
	PaymentMethod string `form:"metodo_pagamento" validate:"omitempty,max=40"`
	Notes         string `form:"observacoes" validate:"omitempty,max=500"`
}

// NewTransaction is a validated entry ready to be sent upstream.
type NewTransaction struct {
	Description   string
	Amount        decimal.Decimal
	Kind          Kind
	Category      string
	Date          string
	PaymentMethod string
	Notes         string
}

func (in TransactionInput) Validate() (NewTransaction, error) {
	if err := validateStruct(in); err != nil {
		return NewTransaction{}, err
	}
	amount, _ := ParseAmount(in.Amount)
	return NewTransaction{
		Description:   in.Description,
		Amount:        amount,
		Kind:          Kind(in.Kind),
		Category:      in.Category,
		Date:          in.Date,
		PaymentMethod: in.PaymentMethod,
		Notes:         in.Notes,
	}, nil
}

// ReportInput is the report form as submitted by the browser.
type ReportInput struct {
	Start    string `form:"data_inicio" validate:"required,datetime=2006-01-02"`
	End      string `form:"data_fim" validate:"required,datetime=2006-01-02"`
	Kind     string `form:"tipo"`
	Category string `form:"categoria" validate:"omitempty,max=60"`
}

// Filter validates the form. Missing dates yield ErrMissingDates so the
// caller can warn without treating it as a malformed request.
func (in ReportInput) Filter() (ReportFilter, error) {
	if strings.TrimSpace(in.Start) == "" || strings.TrimSpace(in.End) == "" {
		return ReportFilter{}, ErrMissingDates
	}
	if err := validateStruct(in); err != nil {
		return ReportFilter{}, err
	}
	kind, err := ParseKindFilter(in.Kind)
	if err != nil {
		return ReportFilter{}, &ValidationError{Fields: map[string]string{"tipo": "valor inválido"}}
	}
	if in.End < in.Start {
		return ReportFilter{}, ErrInvalidRange
	}
	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = AllCategories
	}
	return ReportFilter{Start: in.Start, End: in.End, Kind: kind, Category: category}, nil
}

// ValidationError maps form field names to user-facing messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "invalid fields: " + strings.Join(e.names(), ", ")
}

// Message renders the problems for a notice.
func (e *ValidationError) Message() string {
	parts := make([]string, 0, len(e.Fields))
	for _, name := range e.names() {
		parts = append(parts, fmt.Sprintf("%s: %s", fieldLabel(name), e.Fields[name]))
	}
	return strings.Join(parts, "; ")
}

func (e *ValidationError) names() []string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		out.Fields[fe.Field()] = tagMessage(fe.Tag())
	}
	return out
}

func tagMessage(tag string) string {
	switch tag {
	case "required":
		return "campo obrigatório"
	case "max":
		return "texto muito longo"
	case "datetime":
		return "data inválida"
	case "amount":
		return "valor inválido"
	default:
		return "valor inválido"
	}
}

var fieldLabels = map[string]string{
	"descricao":        "Descrição",
	"valor":            "Valor",
	"tipo":             "Tipo",
	"categoria":        "Categoria",
	"data":             "Data",
	"metodo_pagamento": "Forma de pagamento",
	"observacoes":      "Observações",
	"data_inicio":      "Data inicial",
	"data_fim":         "Data final",
}

func fieldLabel(name string) string {
	if l, ok := fieldLabels[name]; ok {
		return l
	}
	return name
}

// ParseAmount reads a positive amount with at most two decimal places.
// Both "1234.56" and "1.234,56" are accepted.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "R$"))
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if !d.IsPositive() || !d.Round(2).Equal(d) {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

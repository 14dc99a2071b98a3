// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data.
// Forms are read into the explicit contracts of package core so handlers
// never look fields up ad hoc.

package http

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"livrocaixa/internal/api"
	"livrocaixa/internal/core"
)

const (
	// maxUploadBytes bounds multipart bodies (attachment plus fields).
	maxUploadBytes = 16 << 20
	// maxMemoryBytes is kept in memory before multipart spills to disk.
	maxMemoryBytes = 4 << 20
)

// ErrNoFile is returned when an upload field is empty.
var ErrNoFile = errors.New("no file uploaded")

// ParseTransactionForm reads the entry form. The attachment is optional; a
// non-nil Upload must be closed by the caller through the returned closer.
func ParseTransactionForm(w http.ResponseWriter, r *http.Request) (core.TransactionInput, *api.Upload, func(), error) {
	noop := func() {}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := parseAnyForm(r); err != nil {
		return core.TransactionInput{}, nil, noop, err
	}

	form := r.Form
	in := core.TransactionInput{
		Description:   sanitizeInput(form.Get("descricao")),
		Amount:        strings.TrimSpace(form.Get("valor")),
		Kind:          strings.TrimSpace(form.Get("tipo")),
		Category:      sanitizeInput(form.Get("categoria")),
		Date:          strings.TrimSpace(form.Get("data")),
		PaymentMethod: sanitizeInput(form.Get("metodo_pagamento")),
		Notes:         sanitizeInput(form.Get("observacoes")),
	}

	upload, closer, err := formFile(r, "anexo")
	if errors.Is(err, ErrNoFile) {
		return in, nil, noop, nil
	}
	if err != nil {
		return core.TransactionInput{}, nil, noop, err
	}
	return in, upload, closer, nil
}

// ParseUpload reads a single required file field.
func ParseUpload(w http.ResponseWriter, r *http.Request, field string) (api.Upload, func(), error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxMemoryBytes); err != nil {
		return api.Upload{}, func() {}, fmt.Errorf("parse multipart form: %w", err)
	}
	upload, closer, err := formFile(r, field)
	if err != nil {
		return api.Upload{}, func() {}, err
	}
	return *upload, closer, nil
}

// ParseReportForm reads the report form from the body or, for GET, the query.
func ParseReportForm(r *http.Request) (core.ReportInput, error) {
	if err := r.ParseForm(); err != nil {
		return core.ReportInput{}, fmt.Errorf("parse form: %w", err)
	}
	return reportInput(r.Form), nil
}

func reportInput(form url.Values) core.ReportInput {
	return core.ReportInput{
		Start:    strings.TrimSpace(form.Get("data_inicio")),
		End:      strings.TrimSpace(form.Get("data_fim")),
		Kind:     strings.TrimSpace(form.Get("tipo")),
		Category: sanitizeInput(form.Get("categoria")),
	}
}

// LiveReportFilter returns the filter currently in the report form, or nil
// when the request does not carry a complete, valid one.
func LiveReportFilter(r *http.Request) *core.ReportFilter {
	in, err := ParseReportForm(r)
	if err != nil {
		return nil
	}
	f, err := in.Filter()
	if err != nil {
		return nil
	}
	return &f
}

// ParseTransactionID reads the {id} path value.
func ParseTransactionID(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.PathValue("id"))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid transaction id %q", raw)
	}
	return id, nil
}

// ParseLimit reads a positive integer query parameter, falling back to def.
func ParseLimit(query url.Values, key string, def int) int {
	if v := strings.TrimSpace(query.Get(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

// MonthStart returns the first day of now's month and now itself as
// calendar dates, the default report range.
func MonthStart(now time.Time) (start, end string) {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return first.Format(core.DateLayout), now.Format(core.DateLayout)
}

// SafeFilename keeps only the base name so a query value can never walk
// out of the uploads directory.
func SafeFilename(name string) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return "", false
	}
	base := filepath.Base(name)
	if base != name || base == "." {
		return "", false
	}
	return base, true
}

// parseAnyForm accepts both multipart and urlencoded bodies.
func parseAnyForm(r *http.Request) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxMemoryBytes); err != nil {
			return fmt.Errorf("parse multipart form: %w", err)
		}
		return nil
	}
	if err := r.ParseForm(); err != nil {
		return fmt.Errorf("parse form: %w", err)
	}
	return nil
}

func formFile(r *http.Request, field string) (*api.Upload, func(), error) {
	if r.MultipartForm == nil {
		return nil, func() {}, ErrNoFile
	}
	f, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, func() {}, ErrNoFile
	}
	if err != nil {
		return nil, func() {}, fmt.Errorf("read %s: %w", field, err)
	}
	if header.Size == 0 || header.Filename == "" {
		_ = f.Close()
		return nil, func() {}, ErrNoFile
	}
	return &api.Upload{
		Filename:    filepath.Base(header.Filename),
		ContentType: contentType(header),
		Body:        f,
	}, func() { _ = f.Close() }, nil
}

func contentType(h *multipart.FileHeader) string {
	if ct := h.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// sanitizeInput removes control characters except tab, newline and
// carriage return, then trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// Package api is the typed client of the finance API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"livrocaixa/internal/core"
)

// DefaultTimeout bounds every upstream call.
const DefaultTimeout = 15 * time.Second

const maxResponseBytes = 4 << 20

// Client talks to the finance API. Safe for concurrent use.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	metrics *Metrics
}

type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Its timeout is kept.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// New returns a client for the API rooted at baseURL.
func New(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("api base url %q must be absolute", baseURL)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns a copy of the API root.
func (c *Client) BaseURL() *url.URL {
	u := *c.baseURL
	return &u
}

// Upload is a file forwarded to the API.
type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// ListTransactions returns the newest transactions first. limit <= 0 means all.
func (c *Client) ListTransactions(ctx context.Context, limit int) ([]core.Transaction, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out []core.Transaction
	if err := c.get(ctx, "list_transactions", "/api/transacoes", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Monthly(ctx context.Context) ([]core.MonthlyPoint, error) {
	var out []core.MonthlyPoint
	if err := c.get(ctx, "monthly", "/api/relatorios/mensal", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Categories(ctx context.Context) (core.CategoryBreakdown, error) {
	var out core.CategoryBreakdown
	err := c.get(ctx, "categories", "/api/relatorios/categorias", nil, &out)
	return out, err
}

// Detailed fetches the report for f. The returned result remembers f.
func (c *Client) Detailed(ctx context.Context, f core.ReportFilter) (core.ReportResult, error) {
	var out core.ReportResult
	if err := c.get(ctx, "detailed_report", "/api/relatorios/detalhado", f.Query(), &out); err != nil {
		return core.ReportResult{}, err
	}
	if out.Totals == nil {
		out.Totals = map[core.Kind]core.KindTotal{}
	}
	out.Filter = f
	return out, nil
}

// CategoryCatalogue lists the configured categories per kind.
func (c *Client) CategoryCatalogue(ctx context.Context) (core.Catalogue, error) {
	var out core.Catalogue
	err := c.get(ctx, "category_catalogue", "/api/categorias", nil, &out)
	return out, err
}

func (c *Client) RealtimeStats(ctx context.Context) (core.RealtimeStats, error) {
	var out core.RealtimeStats
	err := c.get(ctx, "realtime_stats", "/api/estatisticas/tempo-real", nil, &out)
	return out, err
}

// CreateTransaction submits t and an optional attachment as one multipart
// request. It returns the new ID when the API reports one.
func (c *Client) CreateTransaction(ctx context.Context, t core.NewTransaction, file *Upload) (int64, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fields := []struct{ name, value string }{
		{"descricao", t.Description},
		{"valor", t.Amount.StringFixed(2)},
		{"tipo", string(t.Kind)},
		{"categoria", t.Category},
		{"data", t.Date},
		{"metodo_pagamento", t.PaymentMethod},
		{"observacoes", t.Notes},
	}
	for _, f := range fields {
		if err := mw.WriteField(f.name, f.value); err != nil {
			return 0, fmt.Errorf("write field %s: %w", f.name, err)
		}
	}
	if file != nil {
		if err := writeFile(mw, "anexo", file); err != nil {
			return 0, err
		}
	}
	if err := mw.Close(); err != nil {
		return 0, fmt.Errorf("close multipart body: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/transacoes", nil, &body)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var env envelope
	if err := c.call("create_transaction", req, &env); err != nil {
		return 0, err
	}
	return env.ID, nil
}

func (c *Client) DeleteTransaction(ctx context.Context, id int64) error {
	path := "/api/transacoes/" + strconv.FormatInt(id, 10)
	req, err := c.newRequest(ctx, http.MethodDelete, path, nil, nil)
	if err != nil {
		return err
	}
	var env envelope
	return c.call("delete_transaction", req, &env)
}

// ExtractAmount asks the OCR service for a monetary value in file. A zero
// amount with a nil error means nothing was found.
func (c *Client) ExtractAmount(ctx context.Context, file Upload) (decimal.Decimal, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := writeFile(mw, "arquivo", &file); err != nil {
		return decimal.Zero, err
	}
	if err := mw.Close(); err != nil {
		return decimal.Zero, fmt.Errorf("close multipart body: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/ocr/processar", nil, &body)
	if err != nil {
		return decimal.Zero, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out ocrResponse
	if err := c.call("ocr", req, &out); err != nil {
		return decimal.Zero, err
	}
	if out.Amount == nil {
		return decimal.Zero, nil
	}
	return *out.Amount, nil
}

// Ping checks that the API answers.
func (c *Client) Ping(ctx context.Context) error {
	return c.get(ctx, "ping", "/api/categorias", nil, nil)
}

type envelope struct {
	Success *bool  `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
	ID      int64  `json:"id"`
}

func (e *envelope) failure(op string, status int) error {
	if e.Success != nil && !*e.Success {
		return &Error{Op: op, Kind: KindLogical, Status: status, Message: e.Error}
	}
	return nil
}

type ocrResponse struct {
	envelope
	Amount *decimal.Decimal `json:"valor"`
}

type failureReporter interface {
	failure(op string, status int) error
}

func (c *Client) get(ctx context.Context, op, path string, q url.Values, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, q, nil)
	if err != nil {
		return err
	}
	return c.call(op, req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, q url.Values, body io.Reader) (*http.Request, error) {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// call executes req and decodes a JSON body into out when out is non-nil.
func (c *Client) call(op string, req *http.Request, out any) (err error) {
	start := time.Now()
	defer func() { c.metrics.observe(op, start, err) }()

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Op: op, Kind: KindTransport, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &Error{Op: op, Kind: KindTransport, Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var env envelope
		if json.Unmarshal(body, &env) == nil && env.Error != "" {
			return &Error{Op: op, Kind: KindLogical, Status: resp.StatusCode, Message: env.Error}
		}
		return &Error{Op: op, Kind: KindStatus, Status: resp.StatusCode}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &Error{Op: op, Kind: KindMalformed, Status: resp.StatusCode, Err: err}
	}
	if fr, ok := out.(failureReporter); ok {
		return fr.failure(op, resp.StatusCode)
	}
	return nil
}

func writeFile(mw *multipart.Writer, field string, file *Upload) error {
	name := file.Filename
	if name == "" {
		name = "upload"
	}
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, field, escapeQuotes(name)))
	h.Set("Content-Type", contentType)

	part, err := mw.CreatePart(h)
	if err != nil {
		return fmt.Errorf("create %s part: %w", field, err)
	}
	if _, err := io.Copy(part, file.Body); err != nil {
		return fmt.Errorf("copy %s: %w", field, err)
	}
	return nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string { return quoteEscaper.Replace(s) }

package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"livrocaixa/internal/core"
	applog "livrocaixa/internal/log"
	ports "livrocaixa/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Client exports reports into one spreadsheet, one tab per export.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	logger        *slog.Logger
}

var _ ports.ReportExporter = (*Client)(nil)

// Credentials holds the service account material. JSON wins over File.
type Credentials struct {
	JSON string
	File string
}

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, spreadsheetID string, creds Credentials) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	svc, err := newSheetsService(ctx, creds)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		logger:        applog.ForComponent(applog.ComponentSheets),
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
// Falls back to GOOGLE_APPLICATION_CREDENTIALS when neither value is set.
func newSheetsService(ctx context.Context, creds Credentials) (*gsheet.Service, error) {
	credentialsJSON, err := loadCredentials(creds)
	if err != nil {
		return nil, err
	}

	service, err := gsheet.NewService(ctx,
		goption.WithHTTPClient(newHTTPClientWithPooling()),
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets service created successfully")
	return service, nil
}

func loadCredentials(creds Credentials) ([]byte, error) {
	if js := strings.TrimSpace(creds.JSON); js != "" {
		return []byte(js), nil
	}
	path := strings.TrimSpace(creds.File)
	if path == "" {
		path = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if path == "" {
		return nil, errors.New("no service account credentials configured")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read service account file %s: %w", path, err)
	}
	return data, nil
}

// newHTTPClientWithPooling creates an HTTP client for the Sheets API
// with connection pooling and bounded timeouts.
func newHTTPClientWithPooling() *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   5,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ForceAttemptHTTP2:     true,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   60 * time.Second,
	}
}

// ExportReport adds a tab named after the report period and writes the
// laid-out rows into it. An existing tab with the same name is cleared
// and reused.
func (c *Client) ExportReport(ctx context.Context, r core.ReportResult) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	title := ports.Title(r)

	if err := c.ensureSheet(ctx, title); err != nil {
		return "", err
	}

	rows := ports.Rows(r)
	rng := writeRange(title, len(rows))
	vr := &gsheet.ValueRange{Values: rows}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to write %s: %w", rng, err)
	}

	c.logger.InfoContext(ctx, "Report exported to spreadsheet",
		applog.FieldSheetsRef, rng,
		applog.FieldPeriodStart, r.Filter.Start,
		applog.FieldPeriodEnd, r.Filter.End)
	return rng, nil
}

func (c *Client) ensureSheet(ctx context.Context, title string) error {
	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			AddSheet: &gsheet.AddSheetRequest{
				Properties: &gsheet.SheetProperties{Title: title},
			},
		}},
	}
	_, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do()
	if err == nil {
		return nil
	}
	if !isDuplicateSheet(err) {
		return fmt.Errorf("failed to add sheet %q: %w", title, err)
	}

	_, err = c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, quoteSheet(title), &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to clear sheet %q: %w", title, err)
	}
	return nil
}

func isDuplicateSheet(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "already exists")
}

// quoteSheet wraps a sheet title for A1 notation.
func quoteSheet(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

func writeRange(title string, rows int) string {
	if rows < 1 {
		rows = 1
	}
	return fmt.Sprintf("%s!A1:E%d", quoteSheet(title), rows)
}

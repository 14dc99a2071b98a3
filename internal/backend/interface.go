// Package backend selects the spreadsheet backend used for report exports.
package backend

import (
	"context"

	"livrocaixa/internal/sheets"
)

// BackendType names a report export backend.
type BackendType string

const (
	MemoryBackend BackendType = "memory"
	SheetsBackend BackendType = "sheets"
)

func (t BackendType) String() string { return string(t) }

func (t BackendType) IsValid() bool {
	return t == MemoryBackend || t == SheetsBackend
}

// Factory creates exporters based on configuration
type Factory interface {
	CreateExporter(ctx context.Context, config Config) (sheets.ReportExporter, error)
}

// Config holds configuration for exporter creation
type Config struct {
	Type BackendType

	// Google Sheets specific
	GoogleSpreadsheetID      string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
}

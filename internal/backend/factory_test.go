package backend

import (
	"context"
	"strings"
	"testing"

	"livrocaixa/internal/config"
	"livrocaixa/internal/sheets/memory"
)

func TestFromAppConfig(t *testing.T) {
	cfg := &config.Config{
		SheetsBackend:       "sheets",
		GoogleSpreadsheetID: "abc123",
	}
	got, err := FromAppConfig(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Type != SheetsBackend || got.GoogleSpreadsheetID != "abc123" {
		t.Errorf("config = %+v", got)
	}

	if _, err := FromAppConfig(&config.Config{SheetsBackend: "excel"}); err == nil {
		t.Error("expected error for unknown backend")
	}
	if _, err := FromAppConfig(nil); err == nil {
		t.Error("expected error for nil config")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"memory", Config{Type: MemoryBackend}, ""},
		{"sheets", Config{Type: SheetsBackend, GoogleSpreadsheetID: "id"}, ""},
		{"sheets without id", Config{Type: SheetsBackend}, "Spreadsheet ID"},
		{"unknown", Config{Type: "csv"}, "invalid backend type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestCreateMemoryExporter(t *testing.T) {
	exp, err := NewFactory(nil).CreateExporter(context.Background(), Config{Type: MemoryBackend})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := exp.(*memory.Store); !ok {
		t.Errorf("exporter = %T, want *memory.Store", exp)
	}
}

func TestCreateExporterRejectsInvalidConfig(t *testing.T) {
	if _, err := NewFactory(nil).CreateExporter(context.Background(), Config{Type: SheetsBackend}); err == nil {
		t.Error("expected validation error")
	}
}

func TestGetBackendTypeStrings(t *testing.T) {
	got := GetBackendTypeStrings()
	if len(got) != 2 || got[0] != "memory" || got[1] != "sheets" {
		t.Errorf("types = %v", got)
	}
}

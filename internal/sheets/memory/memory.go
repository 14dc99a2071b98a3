package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"livrocaixa/internal/core"
	ports "livrocaixa/internal/sheets"
)

var _ ports.ReportExporter = (*Store)(nil)

// Sheet is one exported report kept in memory.
type Sheet struct {
	Title string
	Rows  [][]any
}

type Store struct {
	mu     sync.Mutex
	sheets []Sheet
}

func New() *Store { return &Store{} }

// ExportReport stores the laid-out rows and returns a synthetic reference.
func (s *Store) ExportReport(ctx context.Context, r core.ReportResult) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if r.Filter.Start == "" && r.Period.Start == "" {
		return "", errors.New("report has no period")
	}
	sheet := Sheet{Title: ports.Title(r), Rows: ports.Rows(r)}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sheets = append(s.sheets, sheet)
	return fmt.Sprintf("mem:%d", len(s.sheets)), nil
}

// Sheets returns a copy of everything exported so far.
func (s *Store) Sheets() []Sheet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Sheet(nil), s.sheets...)
}

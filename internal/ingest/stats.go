package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gulbok-dev/gulbok/internal/model"
)

// Stats summarizes a freshly ingested table.
type Stats struct {
	Rows         int
	ExpenseRows  int
	RevenueRows  int
	ExpenseTotal int64
	RevenueTotal int64
}

// minPlausibleRows guards against truncated exports. A real Gul bok has
// thousands of rows.
const minPlausibleRows = 100

// Summarize computes basic dataset statistics and advisory warnings.
// Warnings never block the run.
func Summarize(rows []model.Row) (Stats, []string) {
	var s Stats
	s.Rows = len(rows)
	for _, r := range rows {
		switch r.Side {
		case model.SideExpense:
			s.ExpenseRows++
			s.ExpenseTotal += r.Amount
		case model.SideRevenue:
			s.RevenueRows++
			s.RevenueTotal += r.Amount
		}
	}

	var warnings []string
	if s.Rows < minPlausibleRows {
		warnings = append(warnings, fmt.Sprintf("unusually few rows: %d", s.Rows))
	}
	if s.ExpenseRows == 0 {
		warnings = append(warnings, "no expense rows found")
	}
	if s.RevenueRows == 0 {
		warnings = append(warnings, "no revenue rows found")
	}
	return s, warnings
}

// ReadFile parses a source file, picking the parser from the extension.
func ReadFile(path string) ([]model.Row, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	parser := DefaultRegistry().Get(ext)
	if parser == nil {
		return nil, fmt.Errorf("no parser for format %q", ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening source file: %w", err)
	}
	defer f.Close()

	rows, err := parser.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return rows, nil
}

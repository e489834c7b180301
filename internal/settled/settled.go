// Package settled reads the previously settled budget used as the
// reconciliation baseline. The source lists posts with and without
// sub-posts; only main posts (empty sub-post number) are kept, matching
// the granularity the Gul bok table is aggregated to before joining.
package settled

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/gulbok-dev/gulbok/internal/model"
)

// Expected column headers in the settled budget export.
const (
	headerChapter = "Kap. nr"
	headerPost    = "Postnr."
	headerSubPost = "Underpostnr."
	headerAmount  = "Postsum"
)

// Read parses a settled-budget table from records whose first row is the
// header. Column order is located by header name; extra columns are ignored.
func Read(records [][]string) ([]model.SettledLine, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("empty settled table")
	}

	cols := map[string]int{}
	for i, name := range records[0] {
		cols[strings.TrimSpace(name)] = i
	}
	for _, want := range []string{headerChapter, headerPost, headerSubPost, headerAmount} {
		if _, ok := cols[want]; !ok {
			return nil, fmt.Errorf("settled table missing column %q", want)
		}
	}

	cell := func(rec []string, col int) string {
		if col >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[col])
	}

	var lines []model.SettledLine
	for i, rec := range records[1:] {
		// Sub-post rows are excluded; the main post carries the full sum.
		if cell(rec, cols[headerSubPost]) != "" {
			continue
		}

		chapter, err := strconv.Atoi(cell(rec, cols[headerChapter]))
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing chapter: %w", i+2, err)
		}
		post, err := strconv.Atoi(cell(rec, cols[headerPost]))
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing post: %w", i+2, err)
		}
		amount, err := strconv.ParseInt(cell(rec, cols[headerAmount]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing amount: %w", i+2, err)
		}

		lines = append(lines, model.SettledLine{Chapter: chapter, Post: post, Amount: amount})
	}
	return lines, nil
}

// ReadCSV reads a settled budget from CSV.
func ReadCSV(r io.Reader) ([]model.SettledLine, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // settled exports vary in trailing columns

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading settled CSV: %w", err)
	}
	return Read(records)
}

// ReadXLSX reads a settled budget from a spreadsheet.
func ReadXLSX(r io.Reader) ([]model.SettledLine, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening settled spreadsheet: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("settled spreadsheet has no sheets")
	}
	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}
	return Read(records)
}

// ReadFile reads a settled budget, picking the reader from the extension.
func ReadFile(path string) ([]model.SettledLine, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening settled budget: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return ReadXLSX(f)
	case ".csv":
		return ReadCSV(f)
	default:
		return nil, fmt.Errorf("no settled-budget reader for %q", filepath.Ext(path))
	}
}

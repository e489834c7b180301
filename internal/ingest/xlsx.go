package ingest

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/gulbok-dev/gulbok/internal/model"
)

// XLSXParser reads the Gul bok spreadsheet as published by the ministry.
type XLSXParser struct{}

// Format returns the file extension this parser handles.
func (p *XLSXParser) Format() string { return "xlsx" }

// Parse reads the first sheet and converts it to canonical rows.
func (p *XLSXParser) Parse(r io.Reader) ([]model.Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening spreadsheet: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("spreadsheet has no sheets")
	}
	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}

	// excelize drops trailing empty cells; pad so the contract check sees
	// the full width.
	for i, rec := range records {
		for len(rec) < numFields {
			rec = append(rec, "")
		}
		records[i] = rec
	}
	return parseTable(records)
}

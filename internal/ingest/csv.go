package ingest

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/gulbok-dev/gulbok/internal/model"
)

// CSVParser reads a Gul bok table exported as CSV.
type CSVParser struct{}

// Format returns the file extension this parser handles.
func (p *CSVParser) Format() string { return "csv" }

// Parse reads all records and converts them to canonical rows.
func (p *CSVParser) Parse(r io.Reader) ([]model.Row, error) {
	cr := csv.NewReader(r)
	// Width is checked by the column contract, which gives better errors
	// than the csv package's field count.
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading source CSV: %w", err)
	}
	return parseTable(records)
}

// Package ingest reads a Gul bok source file into the canonical row table.
// The column contract is fixed; any deviation is a fatal contract violation
// reported before the aggregation stages run.
package ingest

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gulbok-dev/gulbok/internal/model"
)

// Header is the exact expected column header of a Gul bok table.
const Header = "fdep_nr,fdep_navn,omr_nr,kat_nr,omr_navn,kat_navn,kap_nr,post_nr,upost_nr,kap_navn,post_navn,stikkord,GB"

const (
	numFields      = 13
	colMinistryID  = 0
	colMinistry    = 1
	colAreaID      = 2
	colCategoryID  = 3
	colAreaName    = 4
	colCatName     = 5
	colChapterID   = 6
	colPostID      = 7
	colSubPostID   = 8
	colChapterName = 9
	colPostName    = 10
	colKeywords    = 11
	colAmount      = 12
)

// Parser converts one source format into canonical rows.
type Parser interface {
	Parse(r io.Reader) ([]model.Row, error)
	Format() string
}

// Registry holds named parsers.
type Registry struct {
	parsers map[string]Parser
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Register adds a parser. Panics on duplicate format.
func (r *Registry) Register(p Parser) {
	key := strings.ToLower(p.Format())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + key)
	}
	r.parsers[key] = p
}

// Get returns the parser for format (file extension without dot), or nil.
func (r *Registry) Get(format string) Parser {
	return r.parsers[strings.ToLower(format)]
}

// DefaultRegistry returns a registry with all built-in parsers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&CSVParser{})
	r.Register(&XLSXParser{})
	return r
}

// checkHeader validates the column contract against the expected header.
func checkHeader(got []string) error {
	want := strings.Split(Header, ",")
	if len(got) != len(want) {
		return fmt.Errorf("expected %d columns, got %d", len(want), len(got))
	}
	for i := range want {
		if strings.TrimSpace(got[i]) != want[i] {
			return fmt.Errorf("column %d: expected %q, got %q", i+1, want[i], got[i])
		}
	}
	return nil
}

// parseRecord normalizes and converts one data record to a Row.
// Text fields are trimmed; key fields must be non-empty integers.
func parseRecord(rec []string) (model.Row, error) {
	if len(rec) != numFields {
		return model.Row{}, fmt.Errorf("expected %d fields, got %d", numFields, len(rec))
	}

	keyCols := map[string]int{
		"fdep_nr":  colMinistryID,
		"omr_nr":   colAreaID,
		"kat_nr":   colCategoryID,
		"kap_nr":   colChapterID,
		"post_nr":  colPostID,
		"upost_nr": colSubPostID,
	}
	keys := make(map[string]int, len(keyCols))
	for name, col := range keyCols {
		raw := strings.TrimSpace(rec[col])
		if raw == "" {
			return model.Row{}, fmt.Errorf("null value in key column %q", name)
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return model.Row{}, fmt.Errorf("parsing %s %q: %w", name, raw, err)
		}
		keys[name] = n
	}

	amountRaw := strings.TrimSpace(rec[colAmount])
	if amountRaw == "" {
		return model.Row{}, fmt.Errorf("null value in column %q", "GB")
	}
	amount, err := strconv.ParseInt(amountRaw, 10, 64)
	if err != nil {
		return model.Row{}, fmt.Errorf("parsing GB %q: %w", amountRaw, err)
	}

	chapter := keys["kap_nr"]
	return model.Row{
		MinistryID:   keys["fdep_nr"],
		MinistryName: strings.TrimSpace(rec[colMinistry]),
		AreaID:       keys["omr_nr"],
		AreaName:     strings.TrimSpace(rec[colAreaName]),
		CategoryID:   keys["kat_nr"],
		CategoryName: strings.TrimSpace(rec[colCatName]),
		ChapterID:    chapter,
		ChapterName:  strings.TrimSpace(rec[colChapterName]),
		PostID:       keys["post_nr"],
		SubPostID:    keys["upost_nr"],
		PostName:     strings.TrimSpace(rec[colPostName]),
		Keywords:     strings.TrimSpace(rec[colKeywords]),
		Amount:       amount,
		Side:         model.SideForChapter(chapter),
	}, nil
}

// parseTable validates the header and converts all data records.
func parseTable(records [][]string) ([]model.Row, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("empty source table")
	}
	if err := checkHeader(records[0]); err != nil {
		return nil, fmt.Errorf("column contract: %w", err)
	}

	rows := make([]model.Row, 0, len(records)-1)
	for i, rec := range records[1:] {
		row, err := parseRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

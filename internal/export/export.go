// Package export writes the four JSON documents consumed by the front
// end. Field names are the Norwegian data contract; files are UTF-8 with
// 2-space indentation so diffs between publications stay readable.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gulbok-dev/gulbok/internal/enrich"
	"github.com/gulbok-dev/gulbok/internal/hierarchy"
)

// Exported file names, one directory per budget year.
const (
	FullFile       = "gul_bok_full.json"
	AggregatedFile = "gul_bok_aggregert.json"
	ChangesFile    = "gul_bok_endringer.json"
	MetadataFile   = "metadata.json"
)

// RequiredFiles lists every document a complete run produces.
var RequiredFiles = []string{FullFile, AggregatedFile, ChangesFile, MetadataFile}

// SourceMetadata names the source document and reconciliation baseline.
type SourceMetadata struct {
	Kilde                  string `json:"kilde"`
	SaldertBudsjettForrige string `json:"saldert_budsjett_forrige"`
}

// FullDocument is the complete hierarchy export.
type FullDocument struct {
	Budsjettaar   int                       `json:"budsjettaar"`
	Publisert     string                    `json:"publisert"` // ISO date
	Valuta        string                    `json:"valuta"`
	Utgifter      hierarchy.Side            `json:"utgifter"`
	Inntekter     hierarchy.Side            `json:"inntekter"`
	SPU           enrich.FundSnapshot       `json:"spu"`
	Oljekorrigert enrich.OilCorrectedTotals `json:"oljekorrigert"`
	Metadata      SourceMetadata            `json:"metadata"`
}

// AggregatedDocument is the compact landing-page dataset. TotalInntekter
// equals TotalUtgifter: with the fund withdrawal included as a revenue-side
// bar the budget balances by construction.
type AggregatedDocument struct {
	Budsjettaar        int                 `json:"budsjettaar"`
	TotalUtgifter      int64               `json:"total_utgifter"`
	TotalInntekter     int64               `json:"total_inntekter"`
	UtgifterAggregert  []enrich.Category   `json:"utgifter_aggregert"`
	InntekterAggregert []enrich.Category   `json:"inntekter_aggregert"`
	SPU                enrich.FundSnapshot `json:"spu"`
}

// ChangeStats is the reconciliation statistics block.
type ChangeStats struct {
	AntallPoster     int     `json:"antall_poster"`
	AntallMedMatch   int     `json:"antall_med_match"`
	AntallNyePoster  int     `json:"antall_nye_poster"`
	MatchrateProsent float64 `json:"matchrate_prosent"`
	SaldertTotal     int64   `json:"saldert_total"`
	GBTotal          int64   `json:"gb_total"`
	EndringTotal     int64   `json:"endring_total"`
}

// ChangesDocument describes the reconciliation performed for a year.
// SaldertKilde and Statistikk are null when no settled budget was joined.
type ChangesDocument struct {
	Budsjettaar     int          `json:"budsjettaar"`
	SaldertKilde    *string      `json:"saldert_kilde"`
	SaldertAar      *int         `json:"saldert_aar"`
	HarEndringsdata bool         `json:"har_endringsdata"`
	EndringsEtikett string       `json:"endrings_etikett"`
	Statistikk      *ChangeStats `json:"statistikk"`
}

// Totals holds the grand totals per side.
type Totals struct {
	Utgifter  int64 `json:"utgifter"`
	Inntekter int64 `json:"inntekter"`
}

// Counts holds line-item counts per side.
type Counts struct {
	Utgifter  int `json:"utgifter"`
	Inntekter int `json:"inntekter"`
}

// MetadataDocument summarizes a run.
type MetadataDocument struct {
	Budsjettaar            int                       `json:"budsjettaar"`
	Publisert              string                    `json:"publisert"`
	Kilde                  string                    `json:"kilde"`
	SaldertBudsjettForrige string                    `json:"saldert_budsjett_forrige"`
	Totaler                Totals                    `json:"totaler"`
	Oljekorrigert          enrich.OilCorrectedTotals `json:"oljekorrigert"`
	SPU                    enrich.FundSnapshot       `json:"spu"`
	AntallPoster           Counts                    `json:"antall_poster"`
}

// WriteFull writes gul_bok_full.json and returns its path.
func WriteFull(dir string, doc FullDocument) (string, error) {
	return writeJSON(filepath.Join(dir, FullFile), doc)
}

// WriteAggregated writes gul_bok_aggregert.json and returns its path.
func WriteAggregated(dir string, doc AggregatedDocument) (string, error) {
	return writeJSON(filepath.Join(dir, AggregatedFile), doc)
}

// WriteChanges writes gul_bok_endringer.json and returns its path.
func WriteChanges(dir string, doc ChangesDocument) (string, error) {
	return writeJSON(filepath.Join(dir, ChangesFile), doc)
}

// WriteMetadata writes metadata.json and returns its path.
func WriteMetadata(dir string, doc MetadataDocument) (string, error) {
	return writeJSON(filepath.Join(dir, MetadataFile), doc)
}

func writeJSON(path string, v any) (string, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	return path, nil
}

// Package validate is the integrity gate: it re-derives every published
// total from the exported JSON documents themselves and checks the domain
// identities. It deliberately decodes the files with its own types rather
// than reusing the export structs, so a serialization bug cannot hide
// behind the code that produced it.
package validate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gulbok-dev/gulbok/internal/config"
	"github.com/gulbok-dev/gulbok/internal/export"
)

// balanceTolerance absorbs category-bucket rounding in the balancing
// identities. Tree sums get no tolerance at all.
const balanceTolerance = 1000

// maxAggregatedBytes is the size contract for the landing-page dataset;
// the front end loads it on first paint.
const maxAggregatedBytes = 50 * 1024

type post struct {
	Belop int64 `json:"belop"`
}

type chapter struct {
	KapNr  int    `json:"kap_nr"`
	Total  int64  `json:"total"`
	Poster []post `json:"poster"`
}

type category struct {
	KatNr    int       `json:"kat_nr"`
	Total    int64     `json:"total"`
	Kapitler []chapter `json:"kapitler"`
}

type area struct {
	OmrNr      int        `json:"omr_nr"`
	Total      int64      `json:"total"`
	Kategorier []category `json:"kategorier"`
}

type side struct {
	Total    int64  `json:"total"`
	Omraader []area `json:"omraader"`
}

type oilCorrected struct {
	UtgifterTotal  int64 `json:"utgifter_total"`
	InntekterTotal int64 `json:"inntekter_total"`
}

type fullDocument struct {
	Budsjettaar   int           `json:"budsjettaar"`
	Utgifter      side          `json:"utgifter"`
	Inntekter     side          `json:"inntekter"`
	Oljekorrigert *oilCorrected `json:"oljekorrigert"`
}

type aggCategory struct {
	ID    string `json:"id"`
	Belop int64  `json:"belop"`
}

type fund struct {
	Fondsuttak             int64  `json:"fondsuttak"`
	NettoKontantstrom      int64  `json:"netto_kontantstrom"`
	NettoOverfoeringTilSPU *int64 `json:"netto_overfoering_til_spu"`
}

type aggregatedDocument struct {
	Budsjettaar        int           `json:"budsjettaar"`
	TotalUtgifter      *int64        `json:"total_utgifter"`
	UtgifterAggregert  []aggCategory `json:"utgifter_aggregert"`
	InntekterAggregert []aggCategory `json:"inntekter_aggregert"`
	SPU                *fund         `json:"spu"`
}

// Check runs every validation against the exported documents for a year
// and returns the full violation list; it never stops at the first
// failure. refs may be nil when no reference totals exist for the year.
func Check(dir string, year int, refs *config.ReferenceTotals) []string {
	var violations []string

	// Check 1: every required document exists. Without them nothing else
	// can be verified.
	for _, name := range export.RequiredFiles {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			violations = append(violations, fmt.Sprintf("missing file: %s", filepath.Join(dir, name)))
		}
	}
	if len(violations) > 0 {
		return violations
	}

	var full fullDocument
	if err := load(dir, export.FullFile, &full); err != nil {
		violations = append(violations, err.Error())
	}
	var agg aggregatedDocument
	if err := load(dir, export.AggregatedFile, &agg); err != nil {
		violations = append(violations, err.Error())
	}
	if len(violations) > 0 {
		return violations
	}

	// Check 2: declared year matches the requested one.
	if full.Budsjettaar != year {
		violations = append(violations, fmt.Sprintf(
			"wrong budget year in %s: expected %d, got %d", export.FullFile, year, full.Budsjettaar))
	}

	// Check 3: grand totals against externally known values, when we have
	// them for this year.
	if refs != nil {
		if d := abs(full.Utgifter.Total - refs.Utgifter); d > refs.Margin {
			violations = append(violations, fmt.Sprintf(
				"expense total deviates from reference: got %d, expected %d (margin %d)",
				full.Utgifter.Total, refs.Utgifter, refs.Margin))
		}
		if d := abs(full.Inntekter.Total - refs.Inntekter); d > refs.Margin {
			violations = append(violations, fmt.Sprintf(
				"revenue total deviates from reference: got %d, expected %d (margin %d)",
				full.Inntekter.Total, refs.Inntekter, refs.Margin))
		}
	}

	// Check 4: every node's total equals the exact sum of its children.
	violations = append(violations, checkTree("utgifter", full.Utgifter)...)
	violations = append(violations, checkTree("inntekter", full.Inntekter)...)

	sumExpenses := sumCategories(agg.UtgifterAggregert)
	sumRevenues := sumCategories(agg.InntekterAggregert)

	// Check 5: the aggregated bars are positive and balance against the
	// fund withdrawal.
	if sumExpenses <= 0 {
		violations = append(violations, fmt.Sprintf("aggregated expense total is zero or negative: %d", sumExpenses))
	}
	if sumRevenues <= 0 {
		violations = append(violations, fmt.Sprintf("aggregated revenue total is zero or negative: %d", sumRevenues))
	}
	var withdrawal int64
	if agg.SPU == nil {
		violations = append(violations, fmt.Sprintf("missing spu block in %s", export.AggregatedFile))
	} else {
		withdrawal = agg.SPU.Fondsuttak
		if withdrawal <= 0 {
			violations = append(violations, fmt.Sprintf("fund withdrawal is zero or negative: %d", withdrawal))
		}
		if d := sumExpenses - sumRevenues - withdrawal; abs(d) > balanceTolerance {
			violations = append(violations, fmt.Sprintf(
				"bars do not balance: expenses=%d, revenues=%d, withdrawal=%d, diff=%d",
				sumExpenses, sumRevenues, withdrawal, d))
		}
	}

	// Check 6: the declared aggregated total matches its own list.
	if agg.TotalUtgifter != nil {
		if d := abs(*agg.TotalUtgifter - sumExpenses); d > balanceTolerance {
			violations = append(violations, fmt.Sprintf(
				"total_utgifter != sum(utgifter_aggregert): %d != %d", *agg.TotalUtgifter, sumExpenses))
		}
	}

	// Check 7: oil-corrected totals in the detailed document equal the
	// aggregated category sums, exactly.
	if full.Oljekorrigert == nil {
		violations = append(violations, fmt.Sprintf("missing oljekorrigert section in %s", export.FullFile))
	} else {
		if full.Oljekorrigert.UtgifterTotal != sumExpenses {
			violations = append(violations, fmt.Sprintf(
				"oljekorrigert.utgifter_total != sum(utgifter_aggregert): %d != %d",
				full.Oljekorrigert.UtgifterTotal, sumExpenses))
		}
		if full.Oljekorrigert.InntekterTotal != sumRevenues {
			violations = append(violations, fmt.Sprintf(
				"oljekorrigert.inntekter_total != sum(inntekter_aggregert): %d != %d",
				full.Oljekorrigert.InntekterTotal, sumRevenues))
		}
		if refs != nil && refs.OljekorrigertUtgifter != 0 {
			if d := abs(full.Oljekorrigert.UtgifterTotal - refs.OljekorrigertUtgifter); d > refs.Margin {
				violations = append(violations, fmt.Sprintf(
					"oil-corrected expense total deviates from reference: got %d, expected %d (margin %d)",
					full.Oljekorrigert.UtgifterTotal, refs.OljekorrigertUtgifter, refs.Margin))
			}
		}
	}

	// Check 8: the fund net-transfer identity.
	if agg.SPU != nil {
		if agg.SPU.NettoOverfoeringTilSPU == nil {
			violations = append(violations, "missing netto_overfoering_til_spu in spu block")
		} else {
			want := agg.SPU.NettoKontantstrom - withdrawal
			if d := abs(*agg.SPU.NettoOverfoeringTilSPU - want); d > balanceTolerance {
				violations = append(violations, fmt.Sprintf(
					"netto_overfoering_til_spu wrong: %d != kontantstrom(%d) - fondsuttak(%d)",
					*agg.SPU.NettoOverfoeringTilSPU, agg.SPU.NettoKontantstrom, withdrawal))
			}
		}
	}

	// Check 9: the aggregated dataset stays within its byte budget.
	if info, err := os.Stat(filepath.Join(dir, export.AggregatedFile)); err == nil {
		if info.Size() > maxAggregatedBytes {
			violations = append(violations, fmt.Sprintf(
				"%s too large: %d bytes (max %d)", export.AggregatedFile, info.Size(), maxAggregatedBytes))
		}
	}

	return violations
}

// checkTree walks one side tree and verifies the sum invariant at every
// level, with zero tolerance.
func checkTree(sideName string, s side) []string {
	var violations []string

	var sumAreas int64
	for _, a := range s.Omraader {
		sumAreas += a.Total
	}
	if sumAreas != s.Total {
		violations = append(violations, fmt.Sprintf(
			"inconsistent total for %s: sum areas=%d, total=%d", sideName, sumAreas, s.Total))
	}

	for _, a := range s.Omraader {
		var sumCats int64
		for _, c := range a.Kategorier {
			sumCats += c.Total
		}
		if sumCats != a.Total {
			violations = append(violations, fmt.Sprintf(
				"inconsistent total for %s area %d: sum categories=%d, total=%d",
				sideName, a.OmrNr, sumCats, a.Total))
		}

		for _, c := range a.Kategorier {
			var sumChapters int64
			for _, k := range c.Kapitler {
				sumChapters += k.Total
			}
			if sumChapters != c.Total {
				violations = append(violations, fmt.Sprintf(
					"inconsistent total for category %d: sum chapters=%d, total=%d",
					c.KatNr, sumChapters, c.Total))
			}

			for _, k := range c.Kapitler {
				var sumPosts int64
				for _, p := range k.Poster {
					sumPosts += p.Belop
				}
				if sumPosts != k.Total {
					violations = append(violations, fmt.Sprintf(
						"inconsistent total for chapter %d: sum posts=%d, total=%d",
						k.KapNr, sumPosts, k.Total))
				}
			}
		}
	}
	return violations
}

func sumCategories(categories []aggCategory) int64 {
	var total int64
	for _, c := range categories {
		total += c.Belop
	}
	return total
}

func load(dir, name string, v any) error {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return fmt.Errorf("reading %s: %v", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("malformed %s: %v", name, err)
	}
	return nil
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}

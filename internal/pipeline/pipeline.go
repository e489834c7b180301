// Package pipeline sequences one budget year through the full run:
// ingest, optional reconciliation, hierarchy, enrichment, export and the
// validation gate. A run is a pure function from the source files to the
// exported documents plus a validation result; nothing is shared between
// years.
package pipeline

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/gulbok-dev/gulbok/internal/config"
	"github.com/gulbok-dev/gulbok/internal/enrich"
	"github.com/gulbok-dev/gulbok/internal/export"
	"github.com/gulbok-dev/gulbok/internal/hierarchy"
	"github.com/gulbok-dev/gulbok/internal/ingest"
	"github.com/gulbok-dev/gulbok/internal/model"
	"github.com/gulbok-dev/gulbok/internal/reconcile"
	"github.com/gulbok-dev/gulbok/internal/runlog"
	"github.com/gulbok-dev/gulbok/internal/settled"
	"github.com/gulbok-dev/gulbok/internal/validate"
)

// Options configures one year's run.
type Options struct {
	Year        int
	SourcePath  string
	SettledPath string // empty = skip reconciliation
	OutDir      string // per-year output directory
	Config      *config.Config
	Now         func() time.Time // nil = time.Now
	Out         io.Writer        // progress output, nil = discard
}

// Result reports what a run produced. A fatal error aborts the run and
// yields no Result; validation violations do not.
type Result struct {
	Stats      ingest.Stats
	ReconStats *reconcile.Stats
	Warnings   []string // advisory, never block export
	Violations []string // non-empty means the run failed validation
	Files      []string
	Log        []runlog.Entry
}

// Run executes the pipeline for one budget year.
func Run(opts Options) (*Result, error) {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	out := opts.Out
	if out == nil {
		out = io.Discard
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default("statsbudsjettet")
	}

	res := &Result{}
	logStep := func(step, details string) {
		res.Log = append(res.Log, runlog.Entry{
			Timestamp: now(),
			Year:      opts.Year,
			Step:      step,
			Details:   details,
			Status:    "ok",
		})
	}

	fmt.Fprintf(out, "=== Budget data pipeline for %d ===\n", opts.Year)

	// Step 1: ingest and basic validation.
	rows, err := ingest.ReadFile(opts.SourcePath)
	if err != nil {
		return nil, fmt.Errorf("ingesting %d: %w", opts.Year, err)
	}
	stats, warnings := ingest.Summarize(rows)
	res.Stats = stats
	res.Warnings = append(res.Warnings, warnings...)
	fmt.Fprintf(out, "step 1: read %d rows (%d expense, %d revenue)\n",
		stats.Rows, stats.ExpenseRows, stats.RevenueRows)
	logStep("ingest", fmt.Sprintf("%d rows", stats.Rows))

	// Step 2: settled-budget reconciliation, when a baseline exists.
	var changes model.ChangeSet
	if opts.SettledPath != "" {
		lines, err := settled.ReadFile(opts.SettledPath)
		if err != nil {
			return nil, fmt.Errorf("reading settled budget for %d: %w", opts.Year, err)
		}
		cs, rstats := reconcile.Join(rows, lines)
		changes = cs
		res.ReconStats = &rstats
		res.Warnings = append(res.Warnings,
			reconcile.Warnings(rstats, cfg.Reconciliation.NewLineWarnFraction)...)
		fmt.Fprintf(out, "step 2: reconciled %d of %d posts (%.1f%%)\n",
			rstats.Matched, rstats.Keys, rstats.MatchRatePercent)
		logStep("reconcile", fmt.Sprintf("match rate %.1f%%", rstats.MatchRatePercent))
	} else {
		fmt.Fprintln(out, "step 2: no settled budget, skipping reconciliation")
	}

	// Step 3: hierarchical aggregation.
	tree := hierarchy.Build(rows, changes)
	fmt.Fprintf(out, "step 3: built hierarchy (%d expense areas, %d revenue areas)\n",
		len(tree.Utgifter.Omraader), len(tree.Inntekter.Omraader))
	logStep("hierarchy", fmt.Sprintf("%d+%d areas",
		len(tree.Utgifter.Omraader), len(tree.Inntekter.Omraader)))

	// Step 4: fund figures, oil-corrected totals and aggregated categories.
	fundSnapshot := enrich.BuildFundSnapshot(rows)
	oil := enrich.OilCorrected(rows)
	if figures, ok := cfg.ManualFigures[opts.Year]; ok {
		structural := figures.StruktureltUnderskudd
		rate := figures.Uttaksprosent
		oil.StruktureltUnderskudd = &structural
		oil.Uttaksprosent = &rate
	}
	expenseCategories := enrich.ExpenseCategories(rows)
	revenueCategories := enrich.RevenueCategories(rows)
	enrich.ApplyWithdrawal(&fundSnapshot, oil.Underskudd)
	fmt.Fprintf(out, "step 4: net fund transfer %d, withdrawal %d\n",
		fundSnapshot.NettoOverfoering, fundSnapshot.Fondsuttak)
	logStep("enrich", fmt.Sprintf("withdrawal %d", fundSnapshot.Fondsuttak))

	// Step 5: export the four documents.
	published := now().Format("2006-01-02")
	source := fmt.Sprintf("Gul bok %d", opts.Year)
	settledLabel := strconv.Itoa(opts.Year - 1)

	fullPath, err := export.WriteFull(opts.OutDir, export.FullDocument{
		Budsjettaar:   opts.Year,
		Publisert:     published,
		Valuta:        cfg.Project.Currency,
		Utgifter:      tree.Utgifter,
		Inntekter:     tree.Inntekter,
		SPU:           fundSnapshot,
		Oljekorrigert: oil,
		Metadata: export.SourceMetadata{
			Kilde:                  source,
			SaldertBudsjettForrige: settledLabel,
		},
	})
	if err != nil {
		return nil, err
	}
	res.Files = append(res.Files, fullPath)

	aggregatedTotal := enrich.Sum(expenseCategories)
	aggPath, err := export.WriteAggregated(opts.OutDir, export.AggregatedDocument{
		Budsjettaar:        opts.Year,
		TotalUtgifter:      aggregatedTotal,
		TotalInntekter:     aggregatedTotal, // balanced by the fund withdrawal
		UtgifterAggregert:  expenseCategories,
		InntekterAggregert: revenueCategories,
		SPU:                fundSnapshot,
	})
	if err != nil {
		return nil, err
	}
	res.Files = append(res.Files, aggPath)

	changesDoc := export.ChangesDocument{Budsjettaar: opts.Year}
	if res.ReconStats != nil {
		settledSource := fmt.Sprintf("Saldert budsjett %d", opts.Year-1)
		settledYear := opts.Year - 1
		changesDoc.SaldertKilde = &settledSource
		changesDoc.SaldertAar = &settledYear
		changesDoc.HarEndringsdata = true
		changesDoc.EndringsEtikett = fmt.Sprintf("Endring fra saldert budsjett %d", opts.Year-1)
		changesDoc.Statistikk = &export.ChangeStats{
			AntallPoster:     res.ReconStats.Keys,
			AntallMedMatch:   res.ReconStats.Matched,
			AntallNyePoster:  res.ReconStats.NewKeys,
			MatchrateProsent: res.ReconStats.MatchRatePercent,
			SaldertTotal:     res.ReconStats.SettledTotal,
			GBTotal:          res.ReconStats.CurrentTotal,
			EndringTotal:     res.ReconStats.NetChange,
		}
	}
	changesPath, err := export.WriteChanges(opts.OutDir, changesDoc)
	if err != nil {
		return nil, err
	}
	res.Files = append(res.Files, changesPath)

	metaPath, err := export.WriteMetadata(opts.OutDir, export.MetadataDocument{
		Budsjettaar:            opts.Year,
		Publisert:              published,
		Kilde:                  source,
		SaldertBudsjettForrige: settledLabel,
		Totaler: export.Totals{
			Utgifter:  tree.Utgifter.Total,
			Inntekter: tree.Inntekter.Total,
		},
		Oljekorrigert: oil,
		SPU:           fundSnapshot,
		AntallPoster: export.Counts{
			Utgifter:  stats.ExpenseRows,
			Inntekter: stats.RevenueRows,
		},
	})
	if err != nil {
		return nil, err
	}
	res.Files = append(res.Files, metaPath)
	fmt.Fprintf(out, "step 5: wrote %d documents to %s\n", len(res.Files), opts.OutDir)
	logStep("export", fmt.Sprintf("%d files", len(res.Files)))

	// Step 6: the integrity gate runs against the files on disk, never the
	// in-memory structures, so serialization bugs are caught too.
	var refs *config.ReferenceTotals
	if r, ok := cfg.ReferenceTotals[opts.Year]; ok {
		refs = &r
	}
	res.Violations = validate.Check(opts.OutDir, opts.Year, refs)
	if len(res.Violations) > 0 {
		fmt.Fprintln(out, "step 6: VALIDATION FAILED:")
		for _, v := range res.Violations {
			fmt.Fprintf(out, "  ✗ %s\n", v)
		}
		res.Log = append(res.Log, runlog.Entry{
			Timestamp: now(),
			Year:      opts.Year,
			Step:      "validate",
			Details:   fmt.Sprintf("%d violations", len(res.Violations)),
			Status:    "error",
		})
	} else {
		fmt.Fprintln(out, "step 6: ✓ all validations passed")
		logStep("validate", "ok")
	}

	for _, w := range res.Warnings {
		fmt.Fprintf(out, "  ⚠ %s\n", w)
	}

	return res, nil
}

package pipeline

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gulbok-dev/gulbok/internal/config"
	"github.com/gulbok-dev/gulbok/internal/export"
	"github.com/gulbok-dev/gulbok/internal/ingest"
)

// Year chosen without reference totals or manual figures in the default
// config, so the run is judged purely on its internal identities.
const testYear = 2031

var fixedNow = func() time.Time {
	return time.Date(2025, 10, 7, 12, 0, 0, 0, time.UTC)
}

func writeSource(t *testing.T, dir string) string {
	t.Helper()
	lines := []string{
		ingest.Header,
		"1,Helse- og omsorgsdepartementet,10,1030,Helse og omsorg,Spesialisthelsetjenester,700,1,0,Helse- og omsorgsdepartementet,Driftsutgifter,,150000",
		"1,Helse- og omsorgsdepartementet,10,1030,Helse og omsorg,Spesialisthelsetjenester,700,21,0,Helse- og omsorgsdepartementet,Spesielle driftsutgifter,kan overføres,50000",
		"2,Finansdepartementet,25,2501,Skatter og avgifter,Skatter,5501,70,0,Skatter på formue og inntekt,Trinnskatt mv.,,80000",
		"2,Finansdepartementet,25,2501,Skatter og avgifter,Skatter,5521,70,0,Merverdiavgift,Merverdiavgift,,27000",
	}
	path := filepath.Join(dir, "gul_bok.csv")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

func writeSettled(t *testing.T, dir string) string {
	t.Helper()
	lines := []string{
		"Kap. nr,Postnr.,Underpostnr.,Postsum",
		"700,1,,140000",
		"700,1,1,99999",
		"700,21,,50000",
		"5501,70,,80000",
	}
	path := filepath.Join(dir, "saldert.csv")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

func TestRun_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "data")
	var progress bytes.Buffer

	res, err := Run(Options{
		Year:       testYear,
		SourcePath: writeSource(t, dir),
		OutDir:     outDir,
		Now:        fixedNow,
		Out:        &progress,
	})
	require.NoError(t, err)

	assert.Equal(t, 4, res.Stats.Rows)
	assert.Equal(t, 2, res.Stats.ExpenseRows)
	assert.Equal(t, 2, res.Stats.RevenueRows)
	assert.Empty(t, res.Violations, "violations: %v", res.Violations)
	assert.Nil(t, res.ReconStats)

	require.Len(t, res.Files, 4)
	for _, f := range res.Files {
		_, err := os.Stat(f)
		assert.NoError(t, err, f)
	}

	steps := []string{}
	for _, e := range res.Log {
		steps = append(steps, e.Step)
		assert.Equal(t, "ok", e.Status)
		assert.Equal(t, testYear, e.Year)
		assert.Equal(t, fixedNow(), e.Timestamp)
	}
	assert.Equal(t, []string{"ingest", "hierarchy", "enrich", "export", "validate"}, steps)

	assert.Contains(t, progress.String(), "all validations passed")

	var changes export.ChangesDocument
	readDoc(t, outDir, export.ChangesFile, &changes)
	assert.False(t, changes.HarEndringsdata)
	assert.Nil(t, changes.SaldertKilde)
	assert.Nil(t, changes.Statistikk)

	var meta export.MetadataDocument
	readDoc(t, outDir, export.MetadataFile, &meta)
	assert.Equal(t, testYear, meta.Budsjettaar)
	assert.Equal(t, "2025-10-07", meta.Publisert)
	assert.Equal(t, int64(200000), meta.Totaler.Utgifter)
	assert.Equal(t, int64(107000), meta.Totaler.Inntekter)
}

func TestRun_WithSettledBaseline(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "data")

	res, err := Run(Options{
		Year:        testYear,
		SourcePath:  writeSource(t, dir),
		SettledPath: writeSettled(t, dir),
		OutDir:      outDir,
		Now:         fixedNow,
	})
	require.NoError(t, err)
	require.NotNil(t, res.ReconStats)

	assert.Equal(t, 4, res.ReconStats.Keys)
	assert.Equal(t, 3, res.ReconStats.Matched)
	assert.Equal(t, 1, res.ReconStats.NewKeys)
	assert.Equal(t, 75.0, res.ReconStats.MatchRatePercent)
	assert.Equal(t, int64(270000), res.ReconStats.SettledTotal)
	assert.Equal(t, int64(307000), res.ReconStats.CurrentTotal)
	assert.Equal(t, int64(37000), res.ReconStats.NetChange)

	assert.Empty(t, res.Violations, "violations: %v", res.Violations)

	var changes export.ChangesDocument
	readDoc(t, outDir, export.ChangesFile, &changes)
	assert.True(t, changes.HarEndringsdata)
	require.NotNil(t, changes.SaldertKilde)
	assert.Equal(t, "Saldert budsjett 2030", *changes.SaldertKilde)
	require.NotNil(t, changes.SaldertAar)
	assert.Equal(t, 2030, *changes.SaldertAar)
	require.NotNil(t, changes.Statistikk)
	assert.Equal(t, 4, changes.Statistikk.AntallPoster)
	assert.Equal(t, 75.0, changes.Statistikk.MatchrateProsent)
	assert.Equal(t, int64(37000), changes.Statistikk.EndringTotal)

	// One of four keys is new, above the default warn fraction.
	joined := strings.Join(res.Warnings, "\n")
	assert.Contains(t, joined, "without settled match")
}

func TestRun_Idempotent(t *testing.T) {
	dir := t.TempDir()
	source := writeSource(t, dir)
	settledPath := writeSettled(t, dir)

	run := func(outDir string) {
		_, err := Run(Options{
			Year:        testYear,
			SourcePath:  source,
			SettledPath: settledPath,
			OutDir:      outDir,
			Now:         fixedNow,
		})
		require.NoError(t, err)
	}
	run(filepath.Join(dir, "a"))
	run(filepath.Join(dir, "b"))

	for _, name := range export.RequiredFiles {
		first, err := os.ReadFile(filepath.Join(dir, "a", name))
		require.NoError(t, err)
		second, err := os.ReadFile(filepath.Join(dir, "b", name))
		require.NoError(t, err)
		assert.Equal(t, string(first), string(second), name)
	}
}

func TestRun_MissingSource(t *testing.T) {
	dir := t.TempDir()
	_, err := Run(Options{
		Year:       testYear,
		SourcePath: filepath.Join(dir, "nope.csv"),
		OutDir:     filepath.Join(dir, "data"),
		Now:        fixedNow,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ingesting")
}

func TestRun_ManualFiguresAppearInExport(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "data")

	cfg := config.Default("statsbudsjettet")
	cfg.ManualFigures[testYear] = config.ManualFigures{
		StruktureltUnderskudd: 579_400_000_000,
		Uttaksprosent:         3.1,
	}

	_, err := Run(Options{
		Year:       testYear,
		SourcePath: writeSource(t, dir),
		OutDir:     outDir,
		Config:     cfg,
		Now:        fixedNow,
	})
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(outDir, export.FullFile))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"strukturelt_underskudd": 579400000000`)
	assert.Contains(t, string(raw), `"uttaksprosent": 3.1`)
}

func TestRun_LowRowCountWarning(t *testing.T) {
	dir := t.TempDir()
	res, err := Run(Options{
		Year:       testYear,
		SourcePath: writeSource(t, dir),
		OutDir:     filepath.Join(dir, "data"),
		Now:        fixedNow,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Warnings)
}

func readDoc(t *testing.T, dir, name string, v any) {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, v))
}

package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gulbok-dev/gulbok/internal/model"
)

func sourceCSV(rows ...string) string {
	return Header + "\n" + strings.Join(rows, "\n") + "\n"
}

func TestCSVParse(t *testing.T) {
	src := sourceCSV(
		`6,Helse- og omsorgsdepartementet,10,1010,Helse og omsorg,Helseforvaltning,700,1,0,Helsedirektoratet,Driftsutgifter,"kan overføres, kan nyttes under post 21",1500000`,
		`6,Helse- og omsorgsdepartementet,10,1010,Helse og omsorg,Helseforvaltning,3700,2,0,Helsedirektoratet,Diverse inntekter,,250000`,
	)

	rows, err := (&CSVParser{}).Parse(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	r := rows[0]
	assert.Equal(t, 6, r.MinistryID)
	assert.Equal(t, "Helse- og omsorgsdepartementet", r.MinistryName)
	assert.Equal(t, 10, r.AreaID)
	assert.Equal(t, 1010, r.CategoryID)
	assert.Equal(t, 700, r.ChapterID)
	assert.Equal(t, 1, r.PostID)
	assert.Equal(t, 0, r.SubPostID)
	assert.Equal(t, int64(1500000), r.Amount)
	assert.Equal(t, model.SideExpense, r.Side)
	assert.Equal(t, "kan overføres, kan nyttes under post 21", r.Keywords)

	assert.Equal(t, model.SideRevenue, rows[1].Side)
	assert.Equal(t, "", rows[1].Keywords)
}

func TestCSVParse_WrongColumns(t *testing.T) {
	src := "fdep_nr,fdep_navn,bogus\n1,X,2\n"
	_, err := (&CSVParser{}).Parse(strings.NewReader(src))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "column contract")
}

func TestCSVParse_NullKey(t *testing.T) {
	src := sourceCSV(`6,Dep,10,1010,Omr,Kat,700,,0,Kap,Post,,100`)
	_, err := (&CSVParser{}).Parse(strings.NewReader(src))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "null value in key column")
}

func TestCSVParse_BadAmount(t *testing.T) {
	src := sourceCSV(`6,Dep,10,1010,Omr,Kat,700,1,0,Kap,Post,,1.5e9`)
	_, err := (&CSVParser{}).Parse(strings.NewReader(src))
	require.Error(t, err)
}

func TestCSVParse_TrimsText(t *testing.T) {
	src := sourceCSV(`6, Dep ,10,1010, Omr ,Kat,700,1,0,Kap, Post ,,100`)
	rows, err := (&CSVParser{}).Parse(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, "Dep", rows[0].MinistryName)
	assert.Equal(t, "Omr", rows[0].AreaName)
	assert.Equal(t, "Post", rows[0].PostName)
}

func TestSummarize(t *testing.T) {
	rows := []model.Row{
		{Side: model.SideExpense, Amount: 100},
		{Side: model.SideExpense, Amount: 200},
		{Side: model.SideRevenue, Amount: 50},
	}
	stats, warnings := Summarize(rows)
	assert.Equal(t, 3, stats.Rows)
	assert.Equal(t, 2, stats.ExpenseRows)
	assert.Equal(t, 1, stats.RevenueRows)
	assert.Equal(t, int64(300), stats.ExpenseTotal)
	assert.Equal(t, int64(50), stats.RevenueTotal)
	// A 3-row dataset is suspiciously small.
	assert.NotEmpty(t, warnings)
}

func TestSummarize_MissingSides(t *testing.T) {
	_, warnings := Summarize([]model.Row{{Side: model.SideExpense, Amount: 1}})
	assert.Contains(t, strings.Join(warnings, "; "), "no revenue rows")
}

func TestRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.NotNil(t, r.Get("csv"))
	assert.NotNil(t, r.Get("XLSX"))
	assert.Nil(t, r.Get("parquet"))
}

package hierarchy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gulbok-dev/gulbok/internal/model"
)

func expenseRow(area, category, chapter, post, subPost int, amount int64) model.Row {
	return model.Row{
		AreaID:       area,
		AreaName:     "Område",
		CategoryID:   category,
		CategoryName: "Kategori",
		ChapterID:    chapter,
		ChapterName:  "Kapittel",
		PostID:       post,
		SubPostID:    subPost,
		PostName:     "Post",
		Amount:       amount,
		Side:         model.SideForChapter(chapter),
	}
}

func sumAreas(s Side) int64 {
	var total int64
	for _, a := range s.Omraader {
		total += a.Total
	}
	return total
}

func TestBuildSide_TotalsSumBottomUp(t *testing.T) {
	rows := []model.Row{
		expenseRow(10, 1010, 700, 1, 0, 100),
		expenseRow(10, 1010, 700, 21, 0, 50),
		expenseRow(10, 1010, 701, 70, 0, 200),
		expenseRow(10, 1020, 710, 1, 0, 25),
		expenseRow(13, 1310, 571, 60, 0, 400),
	}

	side := BuildSide(rows, nil)
	assert.Equal(t, int64(775), side.Total)
	assert.Equal(t, side.Total, sumAreas(side))

	require.Len(t, side.Omraader, 2)
	area := side.Omraader[0]
	assert.Equal(t, 10, area.OmrNr)
	assert.Equal(t, int64(375), area.Total)

	var sumCategories int64
	for _, c := range area.Kategorier {
		sumCategories += c.Total
	}
	assert.Equal(t, area.Total, sumCategories)

	chapter := area.Kategorier[0].Kapitler[0]
	assert.Equal(t, 700, chapter.KapNr)
	assert.Equal(t, int64(150), chapter.Total)
	var sumPosts int64
	for _, p := range chapter.Poster {
		sumPosts += p.Belop
	}
	assert.Equal(t, chapter.Total, sumPosts)
}

func TestBuildSide_Deterministic(t *testing.T) {
	rows := []model.Row{
		expenseRow(13, 1310, 571, 60, 0, 400),
		expenseRow(10, 1020, 710, 1, 0, 25),
		expenseRow(10, 1010, 701, 70, 0, 200),
		expenseRow(10, 1010, 700, 21, 0, 50),
		expenseRow(10, 1010, 700, 1, 0, 100),
	}
	shuffled := []model.Row{rows[2], rows[4], rows[0], rows[3], rows[1]}

	a := BuildSide(rows, nil)
	b := BuildSide(shuffled, nil)
	assert.Equal(t, a, b, "tree shape must not depend on input row order")
}

func TestBuildSide_PostFields(t *testing.T) {
	r := expenseRow(10, 1010, 700, 45, 2, 100)
	r.Keywords = "kan overføres, kan nyttes under post 1"
	side := BuildSide([]model.Row{r}, nil)

	post := side.Omraader[0].Kategorier[0].Kapitler[0].Poster[0]
	assert.Equal(t, 45, post.PostNr)
	assert.Equal(t, 2, post.UpostNr)
	assert.Equal(t, model.GroupInvestment, post.Postgruppe)
	assert.Equal(t, []string{"kan overføres", "kan nyttes under post 1"}, post.Stikkord)
	assert.Nil(t, post.Endring)
}

func TestBuild_SplitsSides(t *testing.T) {
	rows := []model.Row{
		expenseRow(10, 1010, 700, 1, 0, 100),
		expenseRow(25, 2510, 5501, 70, 0, 900), // chapter >= 3000: revenue
	}
	h := Build(rows, nil)
	assert.Equal(t, int64(100), h.Utgifter.Total)
	assert.Equal(t, int64(900), h.Inntekter.Total)
}

func TestBuildSide_ChangeAnnotationOnPosts(t *testing.T) {
	rows := []model.Row{
		expenseRow(10, 1010, 700, 1, 1, 600),
		expenseRow(10, 1010, 700, 1, 2, 400),
		expenseRow(10, 1010, 700, 21, 0, 300), // new post, no settled match
	}
	abs := int64(200)
	pct := 25.0
	changes := model.ChangeSet{
		{Chapter: 700, Post: 1}:  {Amount: 1000, SettledAmount: 800, Absolute: abs, Percent: &pct},
		{Chapter: 700, Post: 21}: {Amount: 300, IsNewLine: true},
	}

	side := BuildSide(rows, changes)
	posts := side.Omraader[0].Kategorier[0].Kapitler[0].Poster
	require.Len(t, posts, 3)

	// Both sub-posts carry the main-post comparison.
	for _, p := range posts[:2] {
		require.NotNil(t, p.Endring)
		assert.Equal(t, p.Belop, p.Endring.Belop)
		assert.Equal(t, int64(800), p.Endring.SaldertForrige)
		assert.Equal(t, abs, *p.Endring.EndringAbsolut)
		assert.Equal(t, pct, *p.Endring.EndringProsent)
	}
	assert.Nil(t, posts[2].Endring, "new posts carry no annotation")
}

func TestRollUp_PercentFromSums_NotAverage(t *testing.T) {
	// Two children of very different size: +100% on a small base and 0%
	// on a large one. The correct aggregate is 500/10500 = 4.8%, nowhere
	// near the 50% a percentage average would give.
	small := &ChangeData{Belop: 1000, SaldertForrige: 500}
	large := &ChangeData{Belop: 10000, SaldertForrige: 10000}

	total, change := rollUp([]int64{1000, 10000}, []*ChangeData{small, large})
	assert.Equal(t, int64(11000), total)
	require.NotNil(t, change)
	assert.Equal(t, int64(500), *change.EndringAbsolut)
	require.NotNil(t, change.EndringProsent)
	assert.Equal(t, 4.8, *change.EndringProsent)
}

func TestRollUp_NullPercentOnZeroSettledSum(t *testing.T) {
	child := &ChangeData{Belop: 100, SaldertForrige: 0}
	_, change := rollUp([]int64{100}, []*ChangeData{child})
	require.NotNil(t, change)
	assert.Nil(t, change.EndringProsent)
	assert.Equal(t, int64(100), *change.EndringAbsolut)
}

func TestRollUp_SkipsChildrenWithoutAnnotation(t *testing.T) {
	annotated := &ChangeData{Belop: 100, SaldertForrige: 80}
	total, change := rollUp([]int64{100, 300}, []*ChangeData{annotated, nil})

	// The unannotated child still counts toward the total and thus the
	// absolute change, but contributes no settled amount.
	assert.Equal(t, int64(400), total)
	require.NotNil(t, change)
	assert.Equal(t, int64(80), change.SaldertForrige)
	assert.Equal(t, int64(320), *change.EndringAbsolut)
}

func TestRollUp_NoAnnotationsAtAll(t *testing.T) {
	total, change := rollUp([]int64{100, 200}, []*ChangeData{nil, nil})
	assert.Equal(t, int64(300), total)
	assert.Nil(t, change)
}

func TestBuildSide_RollupReachesEveryLevel(t *testing.T) {
	rows := []model.Row{
		expenseRow(10, 1010, 700, 1, 0, 1000),
		expenseRow(10, 1020, 710, 1, 0, 10000),
	}
	abs1, pct1 := int64(500), 100.0
	abs2, pct2 := int64(0), 0.0
	changes := model.ChangeSet{
		{Chapter: 700, Post: 1}: {Amount: 1000, SettledAmount: 500, Absolute: abs1, Percent: &pct1},
		{Chapter: 710, Post: 1}: {Amount: 10000, SettledAmount: 10000, Absolute: abs2, Percent: &pct2},
	}

	side := BuildSide(rows, changes)
	require.NotNil(t, side.Endring)
	assert.Equal(t, int64(10500), side.Endring.SaldertForrige)
	assert.Equal(t, 4.8, *side.Endring.EndringProsent)

	area := side.Omraader[0]
	require.NotNil(t, area.Endring)
	assert.Equal(t, area.Total, area.Endring.Belop)
}

// Package hierarchy rolls the canonical row table up into the four-level
// tree served to the front end: programområde → programkategori → kapittel
// → post. Totals are computed bottom-up from children only; no level ever
// reads its total from a separate source.
package hierarchy

import (
	"sort"

	"github.com/gulbok-dev/gulbok/internal/model"
)

// ChangeData is the reconciliation annotation attached at every level.
// At aggregated levels the percent is recomputed from the rolled-up
// amounts; averaging child percentages would weight small and large posts
// equally and is numerically wrong.
type ChangeData struct {
	Belop          int64    `json:"belop"`
	SaldertForrige int64    `json:"saldert_forrige"`
	EndringAbsolut *int64   `json:"endring_absolut"`
	EndringProsent *float64 `json:"endring_prosent"`
}

// Post is a leaf node, one per source row (sub-post granularity).
type Post struct {
	PostNr     int             `json:"post_nr"`
	UpostNr    int             `json:"upost_nr"`
	Navn       string          `json:"navn"`
	Belop      int64           `json:"belop"`
	Postgruppe model.PostGroup `json:"postgruppe"`
	Stikkord   []string        `json:"stikkord"`
	Endring    *ChangeData     `json:"endring_fra_saldert"`
}

// Chapter groups posts under one kapittel.
type Chapter struct {
	KapNr   int         `json:"kap_nr"`
	Navn    string      `json:"navn"`
	Total   int64       `json:"total"`
	Poster  []Post      `json:"poster"`
	Endring *ChangeData `json:"endring_fra_saldert"`
}

// Category groups chapters under one programkategori.
type Category struct {
	KatNr    int         `json:"kat_nr"`
	Navn     string      `json:"navn"`
	Total    int64       `json:"total"`
	Kapitler []Chapter   `json:"kapitler"`
	Endring  *ChangeData `json:"endring_fra_saldert"`
}

// Area groups categories under one programområde.
type Area struct {
	OmrNr      int         `json:"omr_nr"`
	Navn       string      `json:"navn"`
	Total      int64       `json:"total"`
	Kategorier []Category  `json:"kategorier"`
	Endring    *ChangeData `json:"endring_fra_saldert"`
}

// Side is one half of the budget (expenses or revenues).
type Side struct {
	Total    int64       `json:"total"`
	Omraader []Area      `json:"omraader"`
	Endring  *ChangeData `json:"endring_fra_saldert"`
}

// Hierarchy holds both side trees.
type Hierarchy struct {
	Utgifter  Side
	Inntekter Side
}

// Build constructs both side trees from the canonical table. changes may
// be nil, in which case no level carries an annotation.
func Build(rows []model.Row, changes model.ChangeSet) Hierarchy {
	var expense, revenue []model.Row
	for _, r := range rows {
		if r.Side == model.SideRevenue {
			revenue = append(revenue, r)
		} else {
			expense = append(expense, r)
		}
	}
	return Hierarchy{
		Utgifter:  BuildSide(expense, changes),
		Inntekter: BuildSide(revenue, changes),
	}
}

// BuildSide constructs the tree for one side. Rows are ordered by their
// numeric keys so identical inputs always produce an identical tree.
func BuildSide(rows []model.Row, changes model.ChangeSet) Side {
	sorted := make([]model.Row, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		switch {
		case a.AreaID != b.AreaID:
			return a.AreaID < b.AreaID
		case a.CategoryID != b.CategoryID:
			return a.CategoryID < b.CategoryID
		case a.ChapterID != b.ChapterID:
			return a.ChapterID < b.ChapterID
		case a.PostID != b.PostID:
			return a.PostID < b.PostID
		default:
			return a.SubPostID < b.SubPostID
		}
	})

	var areas []Area
	for _, areaRows := range groupBy(sorted, func(r model.Row) int { return r.AreaID }) {
		var categories []Category
		for _, catRows := range groupBy(areaRows, func(r model.Row) int { return r.CategoryID }) {
			var chapters []Chapter
			for _, chapRows := range groupBy(catRows, func(r model.Row) int { return r.ChapterID }) {
				chapters = append(chapters, buildChapter(chapRows, changes))
			}
			cat := Category{
				KatNr:    catRows[0].CategoryID,
				Navn:     catRows[0].CategoryName,
				Kapitler: chapters,
			}
			cat.Total, cat.Endring = rollUpChapters(chapters)
			categories = append(categories, cat)
		}
		area := Area{
			OmrNr:      areaRows[0].AreaID,
			Navn:       areaRows[0].AreaName,
			Kategorier: categories,
		}
		area.Total, area.Endring = rollUpCategories(categories)
		areas = append(areas, area)
	}

	side := Side{Omraader: areas}
	side.Total, side.Endring = rollUpAreas(areas)
	return side
}

// groupBy splits pre-sorted rows into runs sharing a key.
func groupBy(rows []model.Row, key func(model.Row) int) [][]model.Row {
	var groups [][]model.Row
	start := 0
	for i := 1; i <= len(rows); i++ {
		if i == len(rows) || key(rows[i]) != key(rows[start]) {
			groups = append(groups, rows[start:i])
			start = i
		}
	}
	return groups
}

func buildChapter(rows []model.Row, changes model.ChangeSet) Chapter {
	posts := make([]Post, 0, len(rows))
	for _, r := range rows {
		p := Post{
			PostNr:     r.PostID,
			UpostNr:    r.SubPostID,
			Navn:       r.PostName,
			Belop:      r.Amount,
			Postgruppe: model.PostGroupFor(r.PostID),
			Stikkord:   model.ParseKeywords(r.Keywords),
		}
		if c, ok := changes.Lookup(r.Key()); ok {
			p.Endring = &ChangeData{
				Belop:          r.Amount,
				SaldertForrige: c.SettledAmount,
				EndringAbsolut: &c.Absolute,
				EndringProsent: c.Percent,
			}
		}
		posts = append(posts, p)
	}

	chapter := Chapter{
		KapNr:  rows[0].ChapterID,
		Navn:   rows[0].ChapterName,
		Poster: posts,
	}
	totals := make([]int64, len(posts))
	annotations := make([]*ChangeData, len(posts))
	for i, p := range posts {
		totals[i] = p.Belop
		annotations[i] = p.Endring
	}
	chapter.Total, chapter.Endring = rollUp(totals, annotations)
	return chapter
}

func rollUpChapters(chapters []Chapter) (int64, *ChangeData) {
	totals := make([]int64, len(chapters))
	annotations := make([]*ChangeData, len(chapters))
	for i, c := range chapters {
		totals[i] = c.Total
		annotations[i] = c.Endring
	}
	return rollUp(totals, annotations)
}

func rollUpCategories(categories []Category) (int64, *ChangeData) {
	totals := make([]int64, len(categories))
	annotations := make([]*ChangeData, len(categories))
	for i, c := range categories {
		totals[i] = c.Total
		annotations[i] = c.Endring
	}
	return rollUp(totals, annotations)
}

func rollUpAreas(areas []Area) (int64, *ChangeData) {
	totals := make([]int64, len(areas))
	annotations := make([]*ChangeData, len(areas))
	for i, a := range areas {
		totals[i] = a.Total
		annotations[i] = a.Endring
	}
	return rollUp(totals, annotations)
}

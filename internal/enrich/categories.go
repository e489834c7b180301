package enrich

import (
	"sort"

	"github.com/gulbok-dev/gulbok/internal/model"
)

// Category is one bar segment of the aggregated dataset. OmrNr/OmrGruppe
// document which program areas the bucket covers; they are traceability
// metadata, never used for computation.
type Category struct {
	ID        string `json:"id"`
	Navn      string `json:"navn"`
	Belop     int64  `json:"belop"`
	OmrNr     *int   `json:"omr_nr,omitempty"`
	OmrGruppe []int  `json:"omr_gruppe,omitempty"`
	Farge     string `json:"farge"`
}

// ExpenseCategories buckets the oil-corrected expense rows into the fixed
// partition shown on the landing page, sorted descending with palette
// colors assigned by rank.
func ExpenseCategories(rows []model.Row) []Category {
	var filtered []model.Row
	for _, r := range rows {
		if inOilCorrectedExpenses(r) {
			filtered = append(filtered, r)
		}
	}

	byArea := make(map[int]int64)
	for _, r := range filtered {
		byArea[r.AreaID] += r.Amount
	}

	var folketrygd int64
	for area := range folketrygdAreas {
		folketrygd += byArea[area]
	}

	// Everything not claimed by a named bucket lands in "øvrige". Area 34
	// is listed as known even though it is empty after the chapter 2800
	// exclusion.
	known := map[int]bool{fundAreaID: true}
	for area := range folketrygdAreas {
		known[area] = true
	}
	for _, b := range expenseBuckets {
		known[b.areaID] = true
	}

	var otherTotal int64
	var otherAreas []int
	for area, amount := range byArea {
		if !known[area] {
			otherTotal += amount
			otherAreas = append(otherAreas, area)
		}
	}
	sort.Ints(otherAreas)

	categories := []Category{
		{ID: "folketrygden", Navn: "Folketrygden", Belop: folketrygd, OmrGruppe: []int{28, 29, 30, 33}},
	}
	for _, b := range expenseBuckets {
		area := b.areaID
		categories = append(categories, Category{
			ID: b.id, Navn: b.name, Belop: byArea[area], OmrNr: &area,
		})
	}
	categories = append(categories, Category{
		ID: "ovrige_utgifter", Navn: "Øvrige utgifter", Belop: otherTotal, OmrGruppe: otherAreas,
	})

	return colorize(categories, expensePalette)
}

// RevenueCategories buckets the oil-corrected revenue rows: the major tax
// streams by chapter (and post for the Folketrygd contributions), with the
// remainder derived as grand total minus the named buckets.
func RevenueCategories(rows []model.Row) []Category {
	var filtered []model.Row
	for _, r := range rows {
		if inOilCorrectedRevenues(r) {
			filtered = append(filtered, r)
		}
	}

	var total, incomeTax, vat, employee, employer int64
	areaSet := make(map[int]bool)
	for _, r := range filtered {
		total += r.Amount
		if r.AreaID != taxAreaID && r.AreaID != fundAreaID {
			areaSet[r.AreaID] = true
		}
		switch {
		case r.AreaID == taxAreaID && r.ChapterID == chapterIncomeTax:
			incomeTax += r.Amount
		case r.AreaID == taxAreaID && r.ChapterID == chapterVAT:
			vat += r.Amount
		case r.ChapterID == chapterNatInsur && r.PostID == postEmployeeContribution:
			employee += r.Amount
		case r.ChapterID == chapterNatInsur && r.PostID == postEmployerContribution:
			employer += r.Amount
		}
	}

	other := total - incomeTax - vat - employee - employer
	otherAreas := make([]int, 0, len(areaSet))
	for area := range areaSet {
		otherAreas = append(otherAreas, area)
	}
	sort.Ints(otherAreas)

	taxArea := taxAreaID
	categories := []Category{
		{ID: "skatt_person", Navn: "Skatt på inntekt og formue", Belop: incomeTax, OmrNr: &taxArea},
		{ID: "mva", Navn: "Merverdiavgift", Belop: vat, OmrNr: &taxArea},
		{ID: "arbeidsgiveravgift", Navn: "Arbeidsgiveravgift", Belop: employer, OmrNr: &taxArea},
		{ID: "trygdeavgift", Navn: "Trygdeavgift", Belop: employee, OmrNr: &taxArea},
		{ID: "ovrige_inntekter", Navn: "Øvrige inntekter", Belop: other, OmrGruppe: otherAreas},
	}

	return colorize(categories, revenuePalette)
}

// colorize sorts descending by amount (stable, so equal amounts keep their
// declaration order) and assigns palette colors by rank. When categories
// outnumber the palette the last color repeats.
func colorize(categories []Category, palette []string) []Category {
	sort.SliceStable(categories, func(i, j int) bool {
		return categories[i].Belop > categories[j].Belop
	})
	for i := range categories {
		if i < len(palette) {
			categories[i].Farge = palette[i]
		} else {
			categories[i].Farge = palette[len(palette)-1]
		}
	}
	return categories
}

// Sum adds up the category amounts.
func Sum(categories []Category) int64 {
	var total int64
	for _, c := range categories {
		total += c.Belop
	}
	return total
}

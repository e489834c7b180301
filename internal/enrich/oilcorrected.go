package enrich

import "github.com/gulbok-dev/gulbok/internal/model"

// OilCorrectedTotals is the budget with petroleum flows stripped out.
// The deficit is definitionally expenses minus revenues, never summed
// independently. The manual figures are published in Nasjonalbudsjettet,
// not derivable from Gul bok, and injected from configuration.
type OilCorrectedTotals struct {
	UtgifterTotal         int64    `json:"utgifter_total"`
	InntekterTotal        int64    `json:"inntekter_total"`
	Underskudd            int64    `json:"underskudd"`
	StruktureltUnderskudd *int64   `json:"strukturelt_underskudd,omitempty"`
	Uttaksprosent         *float64 `json:"uttaksprosent,omitempty"`
}

// inOilCorrectedExpenses reports whether a row counts toward the
// oil-corrected expense total: financial transactions (post >= 90) and the
// fund/SDØE chapters are excluded.
func inOilCorrectedExpenses(r model.Row) bool {
	return r.Side == model.SideExpense &&
		r.PostID < financialPostFloor &&
		!petroExpenseChapters[r.ChapterID]
}

// inOilCorrectedRevenues is the revenue-side counterpart; the fund chapter
// and the petroleum revenue chapters are excluded.
func inOilCorrectedRevenues(r model.Row) bool {
	return r.Side == model.SideRevenue &&
		r.PostID < financialPostFloor &&
		!petroRevenueChapters[r.ChapterID]
}

// OilCorrected computes the oil-corrected totals and the resulting
// deficit, which equals the fund withdrawal.
func OilCorrected(rows []model.Row) OilCorrectedTotals {
	var t OilCorrectedTotals
	for _, r := range rows {
		switch {
		case inOilCorrectedExpenses(r):
			t.UtgifterTotal += r.Amount
		case inOilCorrectedRevenues(r):
			t.InntekterTotal += r.Amount
		}
	}
	t.Underskudd = t.UtgifterTotal - t.InntekterTotal
	return t
}

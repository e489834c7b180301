// Package enrich isolates the sovereign-fund flows of the budget and
// derives the oil-corrected picture: totals excluding petroleum-related
// chapters, the fund withdrawal that balances them, and the aggregated
// category datasets for the landing page.
package enrich

// Classification tables. These are business rules fixed by how the state
// budget is chartered, not configuration.

// Chapter/post combinations for the sovereign-fund transfers.
const (
	chapterToFund   = 2800 // Statens pensjonsfond utland
	chapterFromFund = 5800
	postTransfer    = 50
	postFinancial   = 96
)

// financialPostFloor is the first post number of the loan/debt group;
// posts at or above it are financial transactions and excluded from the
// oil-corrected totals.
const financialPostFloor = 90

// folketrygdAreas are the program areas that make up Folketrygden.
var folketrygdAreas = map[int]bool{28: true, 29: true, 30: true, 33: true}

// Petroleum chapters excluded from the oil-corrected budget.
var (
	petroExpenseChapters = map[int]bool{2800: true, 2440: true}
	petroRevenueChapters = map[int]bool{
		5800: true, 5507: true, 5508: true, 5509: true, 5440: true, 5685: true,
	}
)

// Cash-flow source chapters.
var petroleumTaxChapters = map[int]bool{5507: true, 5508: true, 5509: true}

const (
	chapterSDFI            = 5440 // state direct financial interest
	chapterEquinorDividend = 5685
)

// Revenue-side bucket identifiers.
const (
	chapterIncomeTax = 5501
	chapterVAT       = 5521
	chapterNatInsur  = 5700 // Folketrygdens inntekter
	postEmployeeContribution = 71
	postEmployerContribution = 72
	taxAreaID        = 25
	fundAreaID       = 34 // empty after the chapter 2800 exclusion
)

// Single-area expense buckets, in declaration order.
var expenseBuckets = []struct {
	id, name string
	areaID   int
}{
	{"kommuner", "Kommuner og distrikter", 13},
	{"helse", "Helse og omsorg", 10},
	{"kunnskap", "Kunnskapsformål", 7},
	{"naering", "Næring og fiskeri", 17},
	{"forsvar", "Forsvar", 4},
	{"transport", "Innenlands transport", 21},
}

// Monochrome marine scale for expenses, darkest first; assigned by rank.
var expensePalette = []string{
	"#0C1045", "#181C62", "#263080", "#354A9E",
	"#4A65B5", "#6580C5", "#839DD5", "#A8BAE2",
}

// Monochrome teal scale for revenues.
var revenuePalette = []string{
	"#004D52", "#006B73", "#008286", "#2A9D8F", "#5AB8AD",
}

package hierarchy

import "github.com/gulbok-dev/gulbok/internal/reconcile"

// rollUp computes a level's total and its aggregated change annotation.
//
// The total is the exact sum of the children's totals. The annotation sums
// settled amounts over the children that carry one (new posts carry none)
// and recomputes the absolute and percentage change from those sums. The
// percentage is nil exactly when the summed settled amount is zero. When no
// child carries an annotation the level carries none either.
func rollUp(totals []int64, annotations []*ChangeData) (int64, *ChangeData) {
	var total int64
	for _, t := range totals {
		total += t
	}

	var settledSum int64
	seen := false
	for _, a := range annotations {
		if a != nil {
			settledSum += a.SaldertForrige
			seen = true
		}
	}
	if !seen {
		return total, nil
	}

	absolute := total - settledSum
	change := &ChangeData{
		Belop:          total,
		SaldertForrige: settledSum,
		EndringAbsolut: &absolute,
	}
	if settledSum != 0 {
		p := reconcile.Percent(absolute, settledSum)
		change.EndringProsent = &p
	}
	return total, change
}

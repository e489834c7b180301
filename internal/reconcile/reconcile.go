// Package reconcile joins the budget proposal against the previously
// settled budget and computes per-post change figures.
package reconcile

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/gulbok-dev/gulbok/internal/model"
)

// Stats describes the quality of the settled join.
type Stats struct {
	Keys             int     // distinct chapter+post keys in the proposal
	Matched          int     // keys with a settled counterpart
	NewKeys          int     // keys without one
	MatchRatePercent float64 // 1 decimal
	SettledTotal     int64   // sum of settled amounts over matched keys
	CurrentTotal     int64   // sum of proposal amounts over all keys
	NetChange        int64   // CurrentTotal - SettledTotal
}

// Percent computes round(delta / |settled| * 100, 1). The caller guards
// settled != 0. Decimal arithmetic keeps the rounding exact.
func Percent(delta, settled int64) float64 {
	if settled < 0 {
		settled = -settled
	}
	p := decimal.NewFromInt(delta).
		Div(decimal.NewFromInt(settled)).
		Mul(decimal.NewFromInt(100)).
		Round(1)
	f, _ := p.Float64()
	return f
}

// Join aggregates the proposal to chapter+post granularity (summing
// sub-posts), left-joins the settled budget, and computes change figures
// per key. Every proposal key appears in the result; settled lines with no
// proposal counterpart are dropped.
func Join(rows []model.Row, prior []model.SettledLine) (model.ChangeSet, Stats) {
	currentByKey := make(map[model.LineKey]int64)
	for _, r := range rows {
		currentByKey[r.Key()] += r.Amount
	}

	settledByKey := make(map[model.LineKey]int64, len(prior))
	for _, l := range prior {
		settledByKey[model.LineKey{Chapter: l.Chapter, Post: l.Post}] += l.Amount
	}

	changes := make(model.ChangeSet, len(currentByKey))
	var stats Stats
	for key, amount := range currentByKey {
		stats.Keys++
		stats.CurrentTotal += amount

		settledAmount, ok := settledByKey[key]
		if !ok {
			stats.NewKeys++
			changes[key] = model.Change{Amount: amount, IsNewLine: true}
			continue
		}

		stats.Matched++
		stats.SettledTotal += settledAmount
		c := model.Change{
			Amount:        amount,
			SettledAmount: settledAmount,
			Absolute:      amount - settledAmount,
		}
		if settledAmount != 0 {
			p := Percent(c.Absolute, settledAmount)
			c.Percent = &p
		}
		changes[key] = c
	}

	stats.NetChange = stats.CurrentTotal - stats.SettledTotal
	if stats.Keys > 0 {
		stats.MatchRatePercent = Percent(int64(stats.Matched), int64(stats.Keys))
	}
	return changes, stats
}

// defaultNewKeyWarnFraction flags joins where too many proposal keys lack
// a settled counterpart.
const defaultNewKeyWarnFraction = 0.10

// Warnings reports data-quality concerns about a join. Advisory only;
// a non-empty list never blocks the run. warnFraction <= 0 selects the
// default threshold.
func Warnings(stats Stats, warnFraction float64) []string {
	if warnFraction <= 0 {
		warnFraction = defaultNewKeyWarnFraction
	}

	var warnings []string
	if stats.Keys > 0 {
		frac := float64(stats.NewKeys) / float64(stats.Keys)
		if frac > warnFraction {
			warnings = append(warnings, fmt.Sprintf(
				"too many posts without settled match: %.1f%% (%d of %d)",
				frac*100, stats.NewKeys, stats.Keys))
		}
	}
	if stats.SettledTotal <= 0 {
		warnings = append(warnings, fmt.Sprintf(
			"settled total is zero or negative: %d", stats.SettledTotal))
	}
	return warnings
}

// NewLineKeys returns the proposal keys flagged as new, in stable order.
// Used for diagnostics output.
func NewLineKeys(changes model.ChangeSet) []model.LineKey {
	var keys []model.LineKey
	for key, c := range changes {
		if c.IsNewLine {
			keys = append(keys, key)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Chapter != keys[j].Chapter {
			return keys[i].Chapter < keys[j].Chapter
		}
		return keys[i].Post < keys[j].Post
	})
	return keys
}

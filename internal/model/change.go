package model

// SettledLine is one main post of the previously settled budget.
type SettledLine struct {
	Chapter int
	Post    int
	Amount  int64 // kroner
}

// Change is the reconciliation result for one chapter+post key: the current
// proposal compared against the settled budget. Percent is nil when the
// settled amount is absent or zero (division by zero is a defined null).
type Change struct {
	Amount        int64    // current proposal, main-post level
	SettledAmount int64    // zero and meaningless when IsNewLine
	Absolute      int64    // Amount - SettledAmount, meaningless when IsNewLine
	Percent       *float64 // 1 decimal, nil when settled absent or zero
	IsNewLine     bool     // no settled counterpart
}

// ChangeSet maps chapter+post keys to their reconciliation result.
// A nil ChangeSet means no reconciliation was performed this run.
type ChangeSet map[LineKey]Change

// Lookup returns the change for a key, if reconciliation ran and the key
// has a settled counterpart. New lines yield ok == false: they carry no
// comparable prior amount, so hierarchy roll-ups skip them.
func (cs ChangeSet) Lookup(key LineKey) (Change, bool) {
	if cs == nil {
		return Change{}, false
	}
	c, ok := cs[key]
	if !ok || c.IsNewLine {
		return Change{}, false
	}
	return c, true
}

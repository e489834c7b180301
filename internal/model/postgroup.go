package model

// PostGroup classifies a post by the standard post-number ranges of the
// state budget.
type PostGroup string

const (
	GroupOperating          PostGroup = "driftsutgifter"
	GroupInvestment         PostGroup = "investeringer"
	GroupTransfersState     PostGroup = "overforinger_statsregnskaper"
	GroupTransfersPrivate   PostGroup = "overforinger_private"
	GroupLoansAndDebt       PostGroup = "utlaan_statsgjeld"
)

// postGroupRange maps an inclusive post-number range to its group.
type postGroupRange struct {
	lo, hi int
	group  PostGroup
}

// Post-number ranges per the budget regulation. Kept as one table so the
// classification rule is auditable in a single place.
var postGroupRanges = []postGroupRange{
	{1, 29, GroupOperating},
	{30, 49, GroupInvestment},
	{50, 69, GroupTransfersState},
	{70, 89, GroupTransfersPrivate},
	{90, 99, GroupLoansAndDebt},
}

// PostGroupFor classifies a post number. Numbers outside every range fall
// back to operating expenses.
func PostGroupFor(postNr int) PostGroup {
	for _, r := range postGroupRanges {
		if postNr >= r.lo && postNr <= r.hi {
			return r.group
		}
	}
	return GroupOperating
}

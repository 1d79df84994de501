package services

import (
	"sort"

	"reading-club/internal/models"
)

// DecisionReason records how a week's winner was (or was not) chosen.
type DecisionReason string

const (
	ReasonTopVoted      DecisionReason = "TOP_VOTED"
	ReasonNoProposals   DecisionReason = "NO_PROPOSALS"
	ReasonNoVotesRandom DecisionReason = "NO_VOTES_RANDOM"
	ReasonTieAdminPick  DecisionReason = "TIE_ADMIN_PICK"
	ReasonTieRandom     DecisionReason = "TIE_RANDOM"
	ReasonTieEarliest   DecisionReason = "TIE_EARLIEST"
)

// Decision is the outcome of tallying a ballot. Winner is nil when there
// is nothing to resolve (no proposals) or when an admin has to break the
// tie by hand.
type Decision struct {
	Winner     *models.ProposalTally
	Reason     DecisionReason
	NeedsAdmin bool
}

// CalculateWinner tallies a ballot under the group's tie policy. Ordering
// does not depend on the order tallies arrive in: proposals are re-sorted
// by votes descending, then creation time ascending. randFn supplies a
// [0,1) sample for the random branches.
func CalculateWinner(tallies []models.ProposalTally, policy models.TiePolicy, randFn func() float64) Decision {
	if len(tallies) == 0 {
		return Decision{Reason: ReasonNoProposals}
	}

	sorted := make([]models.ProposalTally, len(tallies))
	copy(sorted, tallies)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].VoteCount != sorted[j].VoteCount {
			return sorted[i].VoteCount > sorted[j].VoteCount
		}
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	if sorted[0].VoteCount == 0 {
		winner := sorted[pickIndex(randFn, len(sorted))]
		return Decision{Winner: &winner, Reason: ReasonNoVotesRandom}
	}

	lead := 1
	for lead < len(sorted) && sorted[lead].VoteCount == sorted[0].VoteCount {
		lead++
	}
	leaders := sorted[:lead]

	if len(leaders) == 1 {
		winner := leaders[0]
		return Decision{Winner: &winner, Reason: ReasonTopVoted}
	}

	switch policy {
	case models.TiePolicyRandom:
		winner := leaders[pickIndex(randFn, len(leaders))]
		return Decision{Winner: &winner, Reason: ReasonTieRandom}
	case models.TiePolicyEarliest:
		winner := leaders[0]
		return Decision{Winner: &winner, Reason: ReasonTieEarliest}
	default:
		return Decision{Reason: ReasonTieAdminPick, NeedsAdmin: true}
	}
}

// pickIndex maps a [0,1) sample onto an index, tolerating sources that
// can return exactly 1.
func pickIndex(randFn func() float64, n int) int {
	r := randFn()
	if r < 0 {
		r = 0
	}
	if r > 0.999999 {
		r = 0.999999
	}
	return int(r * float64(n))
}

package services

import (
	"testing"
	"time"

	"reading-club/internal/models"

	"github.com/google/uuid"
)

func tally(votes int64, createdOffset time.Duration) models.ProposalTally {
	base := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	return models.ProposalTally{
		ProposalID: uuid.New(),
		Reference:  "Psalm 23",
		CreatedAt:  base.Add(createdOffset),
		VoteCount:  votes,
	}
}

func fixedRand(v float64) func() float64 {
	return func() float64 { return v }
}

func TestCalculateWinnerNoProposals(t *testing.T) {
	d := CalculateWinner(nil, models.TiePolicyAdminPick, fixedRand(0.5))
	if d.Winner != nil || d.Reason != ReasonNoProposals || d.NeedsAdmin {
		t.Fatalf("unexpected decision: %+v", d)
	}
}

func TestCalculateWinnerNoVotesPicksRandom(t *testing.T) {
	tallies := []models.ProposalTally{tally(0, 0), tally(0, time.Minute), tally(0, 2*time.Minute)}
	// 0.75 over 3 candidates lands on index 2
	d := CalculateWinner(tallies, models.TiePolicyAdminPick, fixedRand(0.75))
	if d.Reason != ReasonNoVotesRandom {
		t.Fatalf("expected NO_VOTES_RANDOM, got %s", d.Reason)
	}
	if d.Winner == nil || d.Winner.ProposalID != tallies[2].ProposalID {
		t.Error("expected the third proposal to win")
	}
}

func TestCalculateWinnerClearLeader(t *testing.T) {
	tallies := []models.ProposalTally{tally(1, 0), tally(3, time.Minute), tally(2, 2*time.Minute)}
	d := CalculateWinner(tallies, models.TiePolicyAdminPick, fixedRand(0.5))
	if d.Reason != ReasonTopVoted {
		t.Fatalf("expected TOP_VOTED, got %s", d.Reason)
	}
	if d.Winner.ProposalID != tallies[1].ProposalID {
		t.Error("expected the three-vote proposal to win")
	}
}

func TestCalculateWinnerTieAdminPick(t *testing.T) {
	tallies := []models.ProposalTally{tally(2, 0), tally(2, time.Minute), tally(1, 2*time.Minute)}
	d := CalculateWinner(tallies, models.TiePolicyAdminPick, fixedRand(0.5))
	if !d.NeedsAdmin || d.Winner != nil || d.Reason != ReasonTieAdminPick {
		t.Fatalf("expected an admin-pick decision, got %+v", d)
	}
}

func TestCalculateWinnerTieRandom(t *testing.T) {
	tallies := []models.ProposalTally{tally(2, 0), tally(2, time.Minute), tally(1, 2*time.Minute)}
	// 0.75 over 2 leaders lands on index 1, the later-created leader
	d := CalculateWinner(tallies, models.TiePolicyRandom, fixedRand(0.75))
	if d.Reason != ReasonTieRandom {
		t.Fatalf("expected TIE_RANDOM, got %s", d.Reason)
	}
	if d.Winner.ProposalID != tallies[1].ProposalID {
		t.Error("expected the second leader to win")
	}
}

func TestCalculateWinnerTieEarliest(t *testing.T) {
	tallies := []models.ProposalTally{tally(2, time.Minute), tally(2, 0), tally(1, 2*time.Minute)}
	d := CalculateWinner(tallies, models.TiePolicyEarliest, fixedRand(0.9))
	if d.Reason != ReasonTieEarliest {
		t.Fatalf("expected TIE_EARLIEST, got %s", d.Reason)
	}
	if d.Winner.ProposalID != tallies[1].ProposalID {
		t.Error("expected the earliest-created leader to win")
	}
}

func TestCalculateWinnerIgnoresInputOrder(t *testing.T) {
	a := tally(3, 0)
	b := tally(1, time.Minute)
	c := tally(2, 2*time.Minute)

	forward := CalculateWinner([]models.ProposalTally{a, b, c}, models.TiePolicyAdminPick, fixedRand(0.5))
	backward := CalculateWinner([]models.ProposalTally{c, b, a}, models.TiePolicyAdminPick, fixedRand(0.5))
	if forward.Winner.ProposalID != backward.Winner.ProposalID {
		t.Error("winner depends on input order")
	}
}

func TestCalculateWinnerDoesNotMutateInput(t *testing.T) {
	tallies := []models.ProposalTally{tally(1, 0), tally(3, time.Minute)}
	first := tallies[0].ProposalID
	CalculateWinner(tallies, models.TiePolicyAdminPick, fixedRand(0.5))
	if tallies[0].ProposalID != first {
		t.Error("input slice was reordered")
	}
}

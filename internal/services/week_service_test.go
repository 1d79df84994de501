package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"reading-club/internal/models"

	"github.com/google/uuid"
)

func TestEnsureCurrentWeekCreatesSeededWeek(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newTestWeekService(db)
	group, _ := seedGroup(t, db, 2, models.TiePolicyAdminPick)
	ctx := context.Background()

	week, err := svc.EnsureCurrentWeek(ctx, group.ID)
	if err != nil {
		t.Fatalf("EnsureCurrentWeek failed: %v", err)
	}
	if week.Status != models.WeekStatusVotingOpen {
		t.Errorf("expected VOTING_OPEN, got %s", week.Status)
	}
	wantClose := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC).Add(68 * time.Hour)
	if !week.VotingCloseAt.Equal(wantClose) {
		t.Errorf("expected close at %v, got %v", wantClose, week.VotingCloseAt)
	}

	proposals := weekProposals(t, db, week.ID)
	if len(proposals) != 3 {
		t.Fatalf("expected 3 seed proposals, got %d", len(proposals))
	}
	for _, p := range proposals {
		if !p.IsSeed {
			t.Errorf("proposal %s is not a seed", p.Reference)
		}
	}

	// Every member was told voting opened
	if got := countNotifications(t, db, models.NotificationVotingOpened); got != 2 {
		t.Errorf("expected 2 VOTING_OPENED notifications, got %d", got)
	}

	// A second call returns the same week and does not reseed
	again, err := svc.EnsureCurrentWeek(ctx, group.ID)
	if err != nil {
		t.Fatalf("second EnsureCurrentWeek failed: %v", err)
	}
	if again.ID != week.ID {
		t.Error("expected the same week on repeat calls")
	}
	if got := len(weekProposals(t, db, week.ID)); got != 3 {
		t.Errorf("expected ballot unchanged, got %d proposals", got)
	}
}

func TestCastVoteMovesExistingVote(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newTestWeekService(db)
	group, users := seedGroup(t, db, 2, models.TiePolicyAdminPick)
	ctx := context.Background()

	week, err := svc.EnsureCurrentWeek(ctx, group.ID)
	if err != nil {
		t.Fatalf("EnsureCurrentWeek failed: %v", err)
	}
	proposals := weekProposals(t, db, week.ID)

	if _, err := svc.CastVote(ctx, group.ID, users[0].ID, models.CastVoteRequest{ProposalID: proposals[0].ID}); err != nil {
		t.Fatalf("first vote failed: %v", err)
	}
	result, err := svc.CastVote(ctx, group.ID, users[0].ID, models.CastVoteRequest{ProposalID: proposals[1].ID})
	if err != nil {
		t.Fatalf("re-vote failed: %v", err)
	}
	if result.AutoResolved {
		t.Error("half turnout should not auto-resolve")
	}

	var votes []models.Vote
	if err := db.Where("week_id = ?", week.ID).Find(&votes).Error; err != nil {
		t.Fatalf("failed to load votes: %v", err)
	}
	if len(votes) != 1 {
		t.Fatalf("expected a single vote row, got %d", len(votes))
	}
	if votes[0].ProposalID != proposals[1].ID {
		t.Error("expected the vote to move to the second proposal")
	}

	// The reading item tracks the unique leader while voting is open
	var item models.ReadingItem
	if err := db.Where("week_id = ?", week.ID).First(&item).Error; err != nil {
		t.Fatalf("expected a synced reading item: %v", err)
	}
	if item.Reference != proposals[1].Reference {
		t.Errorf("reading item tracks %q, want %q", item.Reference, proposals[1].Reference)
	}
}

func TestFullTurnoutAutoResolves(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newTestWeekService(db)
	group, users := seedGroup(t, db, 2, models.TiePolicyAdminPick)
	ctx := context.Background()

	week, err := svc.EnsureCurrentWeek(ctx, group.ID)
	if err != nil {
		t.Fatalf("EnsureCurrentWeek failed: %v", err)
	}
	proposals := weekProposals(t, db, week.ID)

	if _, err := svc.CastVote(ctx, group.ID, users[0].ID, models.CastVoteRequest{ProposalID: proposals[0].ID}); err != nil {
		t.Fatalf("first vote failed: %v", err)
	}
	result, err := svc.CastVote(ctx, group.ID, users[1].ID, models.CastVoteRequest{ProposalID: proposals[0].ID})
	if err != nil {
		t.Fatalf("second vote failed: %v", err)
	}
	if !result.AutoResolved {
		t.Fatal("expected full turnout to auto-resolve")
	}

	week, err = svc.repo.GetWeekByID(ctx, week.ID)
	if err != nil {
		t.Fatalf("failed to reload week: %v", err)
	}
	if week.Status != models.WeekStatusResolved {
		t.Errorf("expected RESOLVED, got %s", week.Status)
	}
	if week.ResolvedReadingID == nil {
		t.Fatal("expected a resolved reading id")
	}

	var item models.ReadingItem
	if err := db.Where("week_id = ?", week.ID).First(&item).Error; err != nil {
		t.Fatalf("failed to load reading item: %v", err)
	}
	if item.Reference != proposals[0].Reference {
		t.Errorf("winner is %q, want %q", item.Reference, proposals[0].Reference)
	}
	if got := countNotifications(t, db, models.NotificationWinnerSelected); got != 2 {
		t.Errorf("expected 2 WINNER_SELECTED notifications, got %d", got)
	}
}

func TestFullTurnoutTieStaysOpenUnderAdminPick(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newTestWeekService(db)
	group, users := seedGroup(t, db, 2, models.TiePolicyAdminPick)
	ctx := context.Background()

	week, err := svc.EnsureCurrentWeek(ctx, group.ID)
	if err != nil {
		t.Fatalf("EnsureCurrentWeek failed: %v", err)
	}
	proposals := weekProposals(t, db, week.ID)

	if _, err := svc.CastVote(ctx, group.ID, users[0].ID, models.CastVoteRequest{ProposalID: proposals[0].ID}); err != nil {
		t.Fatalf("first vote failed: %v", err)
	}
	result, err := svc.CastVote(ctx, group.ID, users[1].ID, models.CastVoteRequest{ProposalID: proposals[1].ID})
	if err != nil {
		t.Fatalf("second vote failed: %v", err)
	}
	if result.AutoResolved {
		t.Fatal("a tie under ADMIN_PICK must not auto-resolve")
	}

	week, _ = svc.repo.GetWeekByID(ctx, week.ID)
	if week.Status != models.WeekStatusVotingOpen {
		t.Errorf("expected VOTING_OPEN, got %s", week.Status)
	}
}

func TestDeadlineResolvesUnvotedWeekRandomly(t *testing.T) {
	db := setupTestDB(t)
	svc, clock := newTestWeekService(db)
	group, _ := seedGroup(t, db, 1, models.TiePolicyAdminPick)
	ctx := context.Background()

	week, err := svc.EnsureCurrentWeek(ctx, group.ID)
	if err != nil {
		t.Fatalf("EnsureCurrentWeek failed: %v", err)
	}
	proposals := weekProposals(t, db, week.ID)

	*clock = week.VotingCloseAt.Add(time.Hour)
	week, err = svc.EnsureCurrentWeek(ctx, group.ID)
	if err != nil {
		t.Fatalf("deadline pass failed: %v", err)
	}
	if week.Status != models.WeekStatusResolved {
		t.Fatalf("expected RESOLVED after the deadline, got %s", week.Status)
	}

	var item models.ReadingItem
	if err := db.Where("week_id = ?", week.ID).First(&item).Error; err != nil {
		t.Fatalf("failed to load reading item: %v", err)
	}
	found := false
	for _, p := range proposals {
		if p.Reference == item.Reference {
			found = true
		}
	}
	if !found {
		t.Errorf("random winner %q is not on the ballot", item.Reference)
	}
}

func TestDeadlineTieParksForAdminPick(t *testing.T) {
	db := setupTestDB(t)
	svc, clock := newTestWeekService(db)
	group, users := seedGroup(t, db, 3, models.TiePolicyAdminPick)
	ctx := context.Background()

	week, err := svc.EnsureCurrentWeek(ctx, group.ID)
	if err != nil {
		t.Fatalf("EnsureCurrentWeek failed: %v", err)
	}
	proposals := weekProposals(t, db, week.ID)

	// 1-1 split among 3 members: no full turnout, tied at the deadline
	if _, err := svc.CastVote(ctx, group.ID, users[0].ID, models.CastVoteRequest{ProposalID: proposals[0].ID}); err != nil {
		t.Fatalf("vote failed: %v", err)
	}
	if _, err := svc.CastVote(ctx, group.ID, users[1].ID, models.CastVoteRequest{ProposalID: proposals[1].ID}); err != nil {
		t.Fatalf("vote failed: %v", err)
	}

	*clock = week.VotingCloseAt.Add(time.Hour)
	week, err = svc.EnsureCurrentWeek(ctx, group.ID)
	if err != nil {
		t.Fatalf("deadline pass failed: %v", err)
	}
	if week.Status != models.WeekStatusPendingManual {
		t.Fatalf("expected PENDING_MANUAL, got %s", week.Status)
	}

	// The owner breaks the tie by hand
	resolved, err := svc.ResolveCurrentWeek(ctx, group.ID, users[0].ID, models.ResolveWeekRequest{ProposalID: &proposals[1].ID})
	if err != nil {
		t.Fatalf("manual resolve failed: %v", err)
	}
	if resolved.Status != models.WeekStatusResolved {
		t.Errorf("expected RESOLVED, got %s", resolved.Status)
	}

	var item models.ReadingItem
	if err := db.Where("week_id = ?", week.ID).First(&item).Error; err != nil {
		t.Fatalf("failed to load reading item: %v", err)
	}
	if item.Reference != proposals[1].Reference {
		t.Errorf("winner is %q, want %q", item.Reference, proposals[1].Reference)
	}
}

func TestManualResolveFallsBackToRandomOnTie(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newTestWeekService(db)
	group, users := seedGroup(t, db, 3, models.TiePolicyAdminPick)
	ctx := context.Background()

	week, err := svc.EnsureCurrentWeek(ctx, group.ID)
	if err != nil {
		t.Fatalf("EnsureCurrentWeek failed: %v", err)
	}
	proposals := weekProposals(t, db, week.ID)
	if _, err := svc.CastVote(ctx, group.ID, users[0].ID, models.CastVoteRequest{ProposalID: proposals[0].ID}); err != nil {
		t.Fatalf("vote failed: %v", err)
	}
	if _, err := svc.CastVote(ctx, group.ID, users[1].ID, models.CastVoteRequest{ProposalID: proposals[1].ID}); err != nil {
		t.Fatalf("vote failed: %v", err)
	}

	// A plain member cannot resolve
	_, err = svc.ResolveCurrentWeek(ctx, group.ID, users[2].ID, models.ResolveWeekRequest{})
	assertStatus(t, err, http.StatusForbidden)

	// The owner without a proposal id still resolves: the tie falls back
	// to a random draw among the tied leaders
	resolved, err := svc.ResolveCurrentWeek(ctx, group.ID, users[0].ID, models.ResolveWeekRequest{})
	if err != nil {
		t.Fatalf("manual resolve failed: %v", err)
	}
	if resolved.Status != models.WeekStatusResolved {
		t.Fatalf("expected RESOLVED, got %s", resolved.Status)
	}

	var item models.ReadingItem
	if err := db.Where("week_id = ?", week.ID).First(&item).Error; err != nil {
		t.Fatalf("failed to load reading item: %v", err)
	}
	if item.ProposalID == nil ||
		(*item.ProposalID != proposals[0].ID && *item.ProposalID != proposals[1].ID) {
		t.Errorf("winner %q is not one of the tied leaders", item.Reference)
	}
}

func TestManualResolveIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newTestWeekService(db)
	group, users := seedGroup(t, db, 2, models.TiePolicyAdminPick)
	ctx := context.Background()

	week, err := svc.EnsureCurrentWeek(ctx, group.ID)
	if err != nil {
		t.Fatalf("EnsureCurrentWeek failed: %v", err)
	}
	proposals := weekProposals(t, db, week.ID)

	first, err := svc.ResolveCurrentWeek(ctx, group.ID, users[0].ID, models.ResolveWeekRequest{ProposalID: &proposals[0].ID})
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	// Resolving again, even pointing at a different proposal via the
	// tally, returns the already resolved week untouched
	again, err := svc.ResolveCurrentWeek(ctx, group.ID, users[0].ID, models.ResolveWeekRequest{})
	if err != nil {
		t.Fatalf("repeat resolve failed: %v", err)
	}
	if again.ID != first.ID || again.Status != models.WeekStatusResolved {
		t.Error("expected the resolved week back on repeat resolve")
	}
	if again.ResolvedReadingID == nil || *again.ResolvedReadingID != *first.ResolvedReadingID {
		t.Error("expected the reading item to stay put on repeat resolve")
	}

	var item models.ReadingItem
	if err := db.Where("week_id = ?", week.ID).First(&item).Error; err != nil {
		t.Fatalf("failed to load reading item: %v", err)
	}
	if item.Reference != proposals[0].Reference {
		t.Errorf("winner moved to %q on repeat resolve", item.Reference)
	}
}

func TestReminderGoesOutOnceToNonVoters(t *testing.T) {
	db := setupTestDB(t)
	svc, clock := newTestWeekService(db)
	group, users := seedGroup(t, db, 2, models.TiePolicyAdminPick)
	ctx := context.Background()

	week, err := svc.EnsureCurrentWeek(ctx, group.ID)
	if err != nil {
		t.Fatalf("EnsureCurrentWeek failed: %v", err)
	}
	proposals := weekProposals(t, db, week.ID)
	if _, err := svc.CastVote(ctx, group.ID, users[0].ID, models.CastVoteRequest{ProposalID: proposals[0].ID}); err != nil {
		t.Fatalf("vote failed: %v", err)
	}

	*clock = week.VotingCloseAt.Add(-2 * time.Hour)
	if _, err := svc.EnsureCurrentWeek(ctx, group.ID); err != nil {
		t.Fatalf("reminder pass failed: %v", err)
	}
	if got := countNotifications(t, db, models.NotificationVotingReminder); got != 1 {
		t.Fatalf("expected 1 reminder for the non-voter, got %d", got)
	}

	var reminded models.Notification
	if err := db.Where("type = ?", models.NotificationVotingReminder).First(&reminded).Error; err != nil {
		t.Fatalf("failed to load reminder: %v", err)
	}
	if reminded.UserID != users[1].ID {
		t.Error("reminder went to a member who already voted")
	}

	// Repeat calls do not send again
	if _, err := svc.EnsureCurrentWeek(ctx, group.ID); err != nil {
		t.Fatalf("second reminder pass failed: %v", err)
	}
	if got := countNotifications(t, db, models.NotificationVotingReminder); got != 1 {
		t.Errorf("expected the reminder to stay at 1, got %d", got)
	}
}

func TestAddProposalValidation(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newTestWeekService(db)
	group, users := seedGroup(t, db, 2, models.TiePolicyAdminPick)
	ctx := context.Background()

	_, err := svc.AddProposal(ctx, group.ID, users[0].ID, models.AddProposalRequest{Reference: "not a reference!"})
	assertStatus(t, err, http.StatusUnprocessableEntity)

	proposal, err := svc.AddProposal(ctx, group.ID, users[0].ID, models.AddProposalRequest{
		Reference: "  Romans   8:18-39 ",
		Note:      "Nothing can separate us",
	})
	if err != nil {
		t.Fatalf("AddProposal failed: %v", err)
	}
	if proposal.Reference != "Romans 8:18-39" {
		t.Errorf("reference not normalized: %q", proposal.Reference)
	}
	if proposal.IsSeed {
		t.Error("member proposal marked as seed")
	}

	// The same passage cannot appear twice
	_, err = svc.AddProposal(ctx, group.ID, users[1].ID, models.AddProposalRequest{Reference: "romans 8:18-39"})
	assertStatus(t, err, http.StatusConflict)

	// Outsiders cannot propose
	outsider := uuid.New()
	_, err = svc.AddProposal(ctx, group.ID, outsider, models.AddProposalRequest{Reference: "John 1:1-18"})
	assertStatus(t, err, http.StatusForbidden)
}

func TestRemoveProposalPermissions(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newTestWeekService(db)
	group, users := seedGroup(t, db, 3, models.TiePolicyAdminPick)
	ctx := context.Background()

	proposal, err := svc.AddProposal(ctx, group.ID, users[1].ID, models.AddProposalRequest{Reference: "John 15:1-17"})
	if err != nil {
		t.Fatalf("AddProposal failed: %v", err)
	}

	// Another plain member cannot withdraw it
	err = svc.RemoveProposal(ctx, group.ID, users[2].ID, proposal.ID)
	assertStatus(t, err, http.StatusForbidden)

	// The proposer can
	if err := svc.RemoveProposal(ctx, group.ID, users[1].ID, proposal.ID); err != nil {
		t.Fatalf("RemoveProposal failed: %v", err)
	}

	week, _ := svc.EnsureCurrentWeek(ctx, group.ID)
	for _, p := range weekProposals(t, db, week.ID) {
		if p.ID == proposal.ID {
			t.Error("withdrawn proposal still on the ballot")
		}
	}
}

func TestRerollSwapsSeedOnly(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newTestWeekService(db)
	group, users := seedGroup(t, db, 2, models.TiePolicyAdminPick)
	ctx := context.Background()

	week, err := svc.EnsureCurrentWeek(ctx, group.ID)
	if err != nil {
		t.Fatalf("EnsureCurrentWeek failed: %v", err)
	}
	seeds := weekProposals(t, db, week.ID)

	// Plain members cannot reroll
	_, err = svc.RerollSeedProposal(ctx, group.ID, users[1].ID, models.RerollSeedRequest{ProposalID: seeds[0].ID})
	assertStatus(t, err, http.StatusForbidden)

	replacement, err := svc.RerollSeedProposal(ctx, group.ID, users[0].ID, models.RerollSeedRequest{ProposalID: seeds[0].ID})
	if err != nil {
		t.Fatalf("RerollSeedProposal failed: %v", err)
	}
	if !replacement.IsSeed {
		t.Error("replacement is not a seed")
	}
	for _, s := range seeds {
		if replacement.Reference == s.Reference {
			t.Error("replacement repeats a passage already on the ballot")
		}
	}

	ballot := weekProposals(t, db, week.ID)
	if len(ballot) != 3 {
		t.Errorf("expected ballot size 3 after reroll, got %d", len(ballot))
	}

	// Member proposals cannot be rerolled
	member, err := svc.AddProposal(ctx, group.ID, users[1].ID, models.AddProposalRequest{Reference: "Luke 15:11-32"})
	if err != nil {
		t.Fatalf("AddProposal failed: %v", err)
	}
	_, err = svc.RerollSeedProposal(ctx, group.ID, users[0].ID, models.RerollSeedRequest{ProposalID: member.ID})
	assertStatus(t, err, http.StatusUnprocessableEntity)
}

func TestStartNewVoteRequiresResolvedWeek(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newTestWeekService(db)
	group, users := seedGroup(t, db, 1, models.TiePolicyAdminPick)
	ctx := context.Background()

	week, err := svc.EnsureCurrentWeek(ctx, group.ID)
	if err != nil {
		t.Fatalf("EnsureCurrentWeek failed: %v", err)
	}

	_, err = svc.StartNewVote(ctx, group.ID, users[0].ID)
	assertStatus(t, err, http.StatusConflict)

	proposals := weekProposals(t, db, week.ID)
	if _, err := svc.ResolveCurrentWeek(ctx, group.ID, users[0].ID, models.ResolveWeekRequest{ProposalID: &proposals[0].ID}); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	// The resolved week stays current for the rest of the calendar week
	current, err := svc.EnsureCurrentWeek(ctx, group.ID)
	if err != nil {
		t.Fatalf("EnsureCurrentWeek failed: %v", err)
	}
	if current.ID != week.ID {
		t.Error("expected the resolved week to remain current until Monday")
	}

	next, err := svc.StartNewVote(ctx, group.ID, users[0].ID)
	if err != nil {
		t.Fatalf("StartNewVote failed: %v", err)
	}
	if next.ID == week.ID || next.Status != models.WeekStatusVotingOpen {
		t.Error("expected a fresh open week")
	}
	if got := len(weekProposals(t, db, next.ID)); got != 3 {
		t.Errorf("expected 3 seeds on the new ballot, got %d", got)
	}
}

func TestRolloverOpensNextCalendarWeek(t *testing.T) {
	db := setupTestDB(t)
	svc, clock := newTestWeekService(db)
	group, _ := seedGroup(t, db, 1, models.TiePolicyAdminPick)
	ctx := context.Background()

	week, err := svc.EnsureCurrentWeek(ctx, group.ID)
	if err != nil {
		t.Fatalf("EnsureCurrentWeek failed: %v", err)
	}

	// Next Monday: the sweep resolves the overdue week and opens a new one
	*clock = testMonday.AddDate(0, 0, 7)
	result, err := svc.RunWeeklyRollover(ctx, nil)
	if err != nil {
		t.Fatalf("RunWeeklyRollover failed: %v", err)
	}
	if result.Processed != 1 || len(result.Failures) != 0 {
		t.Fatalf("expected 1 processed and no failures, got %+v", result)
	}

	old, _ := svc.repo.GetWeekByID(ctx, week.ID)
	if old.Status != models.WeekStatusResolved {
		t.Errorf("expected the old week to resolve, got %s", old.Status)
	}

	current, err := svc.EnsureCurrentWeek(ctx, group.ID)
	if err != nil {
		t.Fatalf("EnsureCurrentWeek failed: %v", err)
	}
	if current.ID == week.ID {
		t.Error("expected a new week after the Monday boundary")
	}
	if current.Status != models.WeekStatusVotingOpen {
		t.Errorf("expected the new week open, got %s", current.Status)
	}
}

func TestFreshWeekGetsReadingItemImmediately(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newTestWeekService(db)
	group, users := seedGroup(t, db, 2, models.TiePolicyAdminPick)
	ctx := context.Background()

	week, err := svc.EnsureCurrentWeek(ctx, group.ID)
	if err != nil {
		t.Fatalf("EnsureCurrentWeek failed: %v", err)
	}
	proposals := weekProposals(t, db, week.ID)

	// The week carries a reading item before anyone has voted
	var item models.ReadingItem
	if err := db.Where("week_id = ?", week.ID).First(&item).Error; err != nil {
		t.Fatalf("expected a reading item on a fresh week: %v", err)
	}
	if item.ProposalID == nil {
		t.Fatal("expected the reading item to point at a proposal")
	}
	onBallot := false
	for _, p := range proposals {
		if *item.ProposalID == p.ID {
			onBallot = true
		}
	}
	if !onBallot {
		t.Fatalf("reading item %q is not on the ballot", item.Reference)
	}

	// Withdrawing the item's proposal re-points it at a live one
	withdrawn := *item.ProposalID
	if err := svc.RemoveProposal(ctx, group.ID, users[0].ID, withdrawn); err != nil {
		t.Fatalf("RemoveProposal failed: %v", err)
	}
	if err := db.Where("week_id = ?", week.ID).First(&item).Error; err != nil {
		t.Fatalf("failed to reload reading item: %v", err)
	}
	if item.ProposalID == nil || *item.ProposalID == withdrawn {
		t.Fatal("expected the reading item to move off the withdrawn proposal")
	}

	// Rerolling the item's proposal moves the item with it
	rerolled := *item.ProposalID
	if _, err := svc.RerollSeedProposal(ctx, group.ID, users[0].ID, models.RerollSeedRequest{ProposalID: rerolled}); err != nil {
		t.Fatalf("RerollSeedProposal failed: %v", err)
	}
	if err := db.Where("week_id = ?", week.ID).First(&item).Error; err != nil {
		t.Fatalf("failed to reload reading item: %v", err)
	}
	if item.ProposalID == nil || *item.ProposalID == rerolled {
		t.Fatal("expected the reading item to move off the rerolled proposal")
	}
}

func TestEmptyBallotDeadlineParksForAdmin(t *testing.T) {
	db := setupTestDB(t)
	svc, clock := newTestWeekService(db)
	group, users := seedGroup(t, db, 1, models.TiePolicyAdminPick)
	ctx := context.Background()

	week, err := svc.EnsureCurrentWeek(ctx, group.ID)
	if err != nil {
		t.Fatalf("EnsureCurrentWeek failed: %v", err)
	}
	// Withdraw the whole ballot behind the service's back
	if err := db.Where("week_id = ?", week.ID).Delete(&models.Proposal{}).Error; err != nil {
		t.Fatalf("failed to clear ballot: %v", err)
	}

	*clock = week.VotingCloseAt.Add(time.Hour)
	week, err = svc.EnsureCurrentWeek(ctx, group.ID)
	if err != nil {
		t.Fatalf("deadline pass failed: %v", err)
	}
	if week.Status != models.WeekStatusPendingManual {
		t.Fatalf("expected PENDING_MANUAL, got %s", week.Status)
	}
	// No reseed, no deadline extension
	if got := len(weekProposals(t, db, week.ID)); got != 0 {
		t.Errorf("expected the ballot to stay empty, got %d proposals", got)
	}

	// Resolving by tally with nothing on the ballot keeps it parked
	parked, err := svc.ResolveCurrentWeek(ctx, group.ID, users[0].ID, models.ResolveWeekRequest{})
	if err != nil {
		t.Fatalf("resolve on empty ballot failed: %v", err)
	}
	if parked.Status != models.WeekStatusPendingManual {
		t.Errorf("expected PENDING_MANUAL, got %s", parked.Status)
	}
}

func TestAnyMemberCanStartNewVote(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newTestWeekService(db)
	group, users := seedGroup(t, db, 2, models.TiePolicyAdminPick)
	ctx := context.Background()

	week, err := svc.EnsureCurrentWeek(ctx, group.ID)
	if err != nil {
		t.Fatalf("EnsureCurrentWeek failed: %v", err)
	}
	proposals := weekProposals(t, db, week.ID)
	if _, err := svc.ResolveCurrentWeek(ctx, group.ID, users[0].ID, models.ResolveWeekRequest{ProposalID: &proposals[0].ID}); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	// A plain member opens the next round
	next, err := svc.StartNewVote(ctx, group.ID, users[1].ID)
	if err != nil {
		t.Fatalf("member StartNewVote failed: %v", err)
	}
	if next.Status != models.WeekStatusVotingOpen {
		t.Errorf("expected VOTING_OPEN, got %s", next.Status)
	}
	var item models.ReadingItem
	if err := db.Where("week_id = ?", next.ID).First(&item).Error; err != nil {
		t.Errorf("expected a reading item on the new week: %v", err)
	}

	// Outsiders still cannot
	_, err = svc.StartNewVote(ctx, group.ID, uuid.New())
	assertStatus(t, err, http.StatusForbidden)
}

func TestRolloverScopedToOneGroup(t *testing.T) {
	db := setupTestDB(t)
	svc, clock := newTestWeekService(db)
	group, _ := seedGroup(t, db, 1, models.TiePolicyAdminPick)
	ctx := context.Background()

	week, err := svc.EnsureCurrentWeek(ctx, group.ID)
	if err != nil {
		t.Fatalf("EnsureCurrentWeek failed: %v", err)
	}

	*clock = testMonday.AddDate(0, 0, 7)
	result, err := svc.RunWeeklyRollover(ctx, &group.ID)
	if err != nil {
		t.Fatalf("scoped rollover failed: %v", err)
	}
	if result.Processed != 1 || len(result.Failures) != 0 {
		t.Fatalf("expected 1 processed and no failures, got %+v", result)
	}
	old, _ := svc.repo.GetWeekByID(ctx, week.ID)
	if old.Status != models.WeekStatusResolved {
		t.Errorf("expected the overdue week to resolve, got %s", old.Status)
	}

	unknown := uuid.New()
	_, err = svc.RunWeeklyRollover(ctx, &unknown)
	assertStatus(t, err, http.StatusNotFound)
}

func TestSeedingExcludesReadingsAcrossGroups(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newTestWeekService(db)
	group, users := seedGroup(t, db, 1, models.TiePolicyAdminPick)
	ctx := context.Background()

	week, err := svc.EnsureCurrentWeek(ctx, group.ID)
	if err != nil {
		t.Fatalf("EnsureCurrentWeek failed: %v", err)
	}
	proposals := weekProposals(t, db, week.ID)
	if _, err := svc.ResolveCurrentWeek(ctx, group.ID, users[0].ID, models.ResolveWeekRequest{ProposalID: &proposals[0].ID}); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	// A second group opening the same calendar week is not offered a
	// passage any group has already had on a reading item
	other := &models.Group{
		ID:                  uuid.New(),
		Name:                "Second Circle",
		Timezone:            "UTC",
		OwnerID:             users[0].ID,
		TiePolicy:           models.TiePolicyAdminPick,
		LiveTally:           true,
		VotingDurationHours: 68,
	}
	if err := db.Create(other).Error; err != nil {
		t.Fatalf("failed to create group: %v", err)
	}
	member := &models.GroupMember{
		ID:      uuid.New(),
		GroupID: other.ID,
		UserID:  users[0].ID,
		Role:    models.GroupRoleOwner,
	}
	if err := db.Create(member).Error; err != nil {
		t.Fatalf("failed to create member: %v", err)
	}

	otherWeek, err := svc.EnsureCurrentWeek(ctx, other.ID)
	if err != nil {
		t.Fatalf("EnsureCurrentWeek failed: %v", err)
	}
	for _, p := range weekProposals(t, db, otherWeek.ID) {
		if p.Reference == proposals[0].Reference {
			t.Errorf("seed %q repeats another group's reading", p.Reference)
		}
	}
}

func TestVotesOnWithdrawnProposalStillCountTurnout(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newTestWeekService(db)
	group, users := seedGroup(t, db, 3, models.TiePolicyAdminPick)
	ctx := context.Background()

	week, err := svc.EnsureCurrentWeek(ctx, group.ID)
	if err != nil {
		t.Fatalf("EnsureCurrentWeek failed: %v", err)
	}
	proposals := weekProposals(t, db, week.ID)

	if _, err := svc.CastVote(ctx, group.ID, users[1].ID, models.CastVoteRequest{ProposalID: proposals[0].ID}); err != nil {
		t.Fatalf("vote failed: %v", err)
	}
	if _, err := svc.CastVote(ctx, group.ID, users[2].ID, models.CastVoteRequest{ProposalID: proposals[1].ID}); err != nil {
		t.Fatalf("vote failed: %v", err)
	}

	// The owner withdraws the first proposal; its vote stays on record
	if err := svc.RemoveProposal(ctx, group.ID, users[0].ID, proposals[0].ID); err != nil {
		t.Fatalf("RemoveProposal failed: %v", err)
	}
	var votes []models.Vote
	if err := db.Where("week_id = ?", week.ID).Find(&votes).Error; err != nil {
		t.Fatalf("failed to load votes: %v", err)
	}
	if len(votes) != 2 {
		t.Fatalf("expected both votes to survive the withdrawal, got %d", len(votes))
	}

	// ...but the withdrawn proposal no longer shows in the tally
	tallies, err := svc.repo.GetWeekTallies(ctx, week.ID)
	if err != nil {
		t.Fatalf("failed to load tallies: %v", err)
	}
	for _, tl := range tallies {
		if tl.ProposalID == proposals[0].ID {
			t.Error("withdrawn proposal still tallied")
		}
	}

	// The last ballot completes turnout, withdrawn-proposal vote included
	result, err := svc.CastVote(ctx, group.ID, users[0].ID, models.CastVoteRequest{ProposalID: proposals[1].ID})
	if err != nil {
		t.Fatalf("vote failed: %v", err)
	}
	if !result.AutoResolved {
		t.Fatal("expected full turnout to auto-resolve")
	}
}

func TestRepeatedFinalizeKeepsFirstWinner(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newTestWeekService(db)
	group, _ := seedGroup(t, db, 2, models.TiePolicyAdminPick)
	ctx := context.Background()

	week, err := svc.EnsureCurrentWeek(ctx, group.ID)
	if err != nil {
		t.Fatalf("EnsureCurrentWeek failed: %v", err)
	}
	proposals := weekProposals(t, db, week.ID)
	tallies, err := svc.repo.GetWeekTallies(ctx, week.ID)
	if err != nil {
		t.Fatalf("failed to load tallies: %v", err)
	}
	var first, second *models.ProposalTally
	for i := range tallies {
		switch tallies[i].ProposalID {
		case proposals[0].ID:
			first = &tallies[i]
		case proposals[1].ID:
			second = &tallies[i]
		}
	}

	won, err := svc.finalizeWeek(ctx, group, week.ID, first)
	if err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if !won {
		t.Fatal("expected the first resolver to win")
	}

	// Late resolvers pushing a different winner find the week settled
	for i := 0; i < 3; i++ {
		won, err := svc.finalizeWeek(ctx, group, week.ID, second)
		if err != nil {
			t.Fatalf("late resolver errored: %v", err)
		}
		if won {
			t.Fatal("a late resolver must not re-resolve the week")
		}
	}

	var item models.ReadingItem
	if err := db.Where("week_id = ?", week.ID).First(&item).Error; err != nil {
		t.Fatalf("failed to load reading item: %v", err)
	}
	if item.Reference != proposals[0].Reference {
		t.Errorf("winner moved to %q, want %q", item.Reference, proposals[0].Reference)
	}
	if got := countNotifications(t, db, models.NotificationWinnerSelected); got != 2 {
		t.Errorf("expected a single WINNER_SELECTED batch of 2, got %d", got)
	}
}

func assertStatus(t *testing.T, err error, want int) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected an error with status %d, got nil", want)
	}
	var svcErr *Error
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected a service error, got %v", err)
	}
	if svcErr.Status != want {
		t.Fatalf("expected status %d, got %d (%s)", want, svcErr.Status, svcErr.Message)
	}
}

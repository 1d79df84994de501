package services

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"reading-club/internal/models"
	"reading-club/internal/reference"
	"reading-club/internal/repository"
	"reading-club/internal/seeds"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	seedBallotSize = 3
	maxNoteLength  = 240
	reminderLead   = 24 * time.Hour
)

// WeekService owns the voting week lifecycle: opening weeks, ballots,
// votes, resolution, and the notifications those emit. The clock and the
// randomness source are injectable for tests.
type WeekService struct {
	repo   *repository.Repository
	picker *seeds.Picker
	rand   func() float64
	now    func() time.Time
}

func NewWeekService(repo *repository.Repository) *WeekService {
	return &WeekService{
		repo:   repo,
		picker: seeds.NewPicker(nil),
		rand:   rand.Float64,
		now:    time.Now,
	}
}

// WithClock overrides the service clock, for tests
func (s *WeekService) WithClock(now func() time.Time) *WeekService {
	s.now = now
	return s
}

// WithRand overrides the randomness source, for tests
func (s *WeekService) WithRand(randFn func() float64) *WeekService {
	s.rand = randFn
	s.picker = seeds.NewPicker(randFn)
	return s
}

// EnsureCurrentWeek guarantees the group has an active week and runs the
// time-driven transitions that may be due: the closing-soon reminder and
// deadline resolution. It returns the week as it stands after those
// transitions.
func (s *WeekService) EnsureCurrentWeek(ctx context.Context, groupID uuid.UUID) (*models.Week, error) {
	group, err := s.repo.GetGroupByID(ctx, groupID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, notFound("group not found")
		}
		return nil, fmt.Errorf("load group: %w", err)
	}

	week, err := s.ensureWeekExists(ctx, group)
	if err != nil {
		return nil, err
	}

	if err := s.ensureReadingItem(ctx, week); err != nil {
		return nil, err
	}
	if err := s.maybeSendReminder(ctx, group, week); err != nil {
		return nil, err
	}
	if err := s.maybeAutoResolve(ctx, group, week); err != nil {
		return nil, err
	}

	week, err = s.repo.GetWeekByID(ctx, week.ID)
	if err != nil {
		return nil, fmt.Errorf("refresh week: %w", err)
	}
	return week, nil
}

// ensureWeekExists returns the group's active week, creating and seeding
// one if none exists. A week resolved earlier in the same calendar week
// stays current until the next Monday. A creation race is settled by the
// one-active-week index: the loser reads back the surviving row.
func (s *WeekService) ensureWeekExists(ctx context.Context, group *models.Group) (*models.Week, error) {
	week, err := s.repo.GetActiveWeek(ctx, group.ID)
	if err != nil {
		return nil, fmt.Errorf("load active week: %w", err)
	}
	if week != nil {
		return week, nil
	}

	startDate := weekStart(s.now(), group.Timezone)
	latest, err := s.repo.GetLatestWeek(ctx, group.ID)
	if err != nil {
		return nil, fmt.Errorf("load latest week: %w", err)
	}
	if latest != nil && sameDate(latest.StartDate, startDate, group.Timezone) {
		return latest, nil
	}

	week = &models.Week{
		ID:            uuid.New(),
		GroupID:       group.ID,
		StartDate:     startDate,
		VotingCloseAt: startDate.Add(time.Duration(group.VotingDurationHours) * time.Hour),
		Status:        models.WeekStatusVotingOpen,
	}
	if err := s.repo.CreateWeek(ctx, week); err != nil {
		if err == gorm.ErrDuplicatedKey {
			return s.repo.GetActiveWeek(ctx, group.ID)
		}
		return nil, fmt.Errorf("create week: %w", err)
	}

	if err := s.seedBallot(ctx, group, week, true); err != nil {
		return nil, err
	}
	if err := s.notifyGroup(ctx, group.ID, nil, models.NotificationVotingOpened,
		"Voting is open for this week's reading", weekMetadata(week)); err != nil {
		log.Printf("notify voting opened for group %s: %v", group.ID, err)
	}
	return week, nil
}

// seedBallot fills a fresh week's ballot with seed proposals, skipping
// passages any group has already had on a reading item. Deterministic
// mode derives the picks from the week's start date so concurrent
// creators agree.
func (s *WeekService) seedBallot(ctx context.Context, group *models.Group, week *models.Week, deterministic bool) error {
	excluded, err := s.repo.GetAllReadReferences(ctx)
	if err != nil {
		return fmt.Errorf("load read history: %w", err)
	}

	var picks []seeds.Passage
	if deterministic {
		picks = seeds.PickForDate(week.StartDate.Format("2006-01-02"), seedBallotSize, excluded)
	} else {
		picks = s.picker.Pick(seedBallotSize, excluded)
	}

	for _, p := range picks {
		proposal := &models.Proposal{
			ID:         uuid.New(),
			WeekID:     week.ID,
			ProposerID: group.OwnerID,
			Reference:  p.Reference,
			Note:       p.Note,
			IsSeed:     true,
		}
		if err := s.repo.CreateProposal(ctx, proposal); err != nil {
			return fmt.Errorf("create seed proposal: %w", err)
		}
	}
	return nil
}

// AddProposal puts a member's passage on the current ballot.
func (s *WeekService) AddProposal(ctx context.Context, groupID, userID uuid.UUID, req models.AddProposalRequest) (*models.Proposal, error) {
	if _, err := s.requireMember(ctx, groupID, userID); err != nil {
		return nil, err
	}
	week, err := s.EnsureCurrentWeek(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if week.Status != models.WeekStatusVotingOpen {
		return nil, conflict("voting is closed for this week")
	}

	ref := reference.Normalize(req.Reference)
	if !reference.IsValid(ref) {
		return nil, unprocessable("not a recognizable passage reference")
	}
	if len(req.Note) > maxNoteLength {
		return nil, unprocessable(fmt.Sprintf("note exceeds %d characters", maxNoteLength))
	}

	existing, err := s.repo.GetWeekProposals(ctx, week.ID)
	if err != nil {
		return nil, fmt.Errorf("load proposals: %w", err)
	}
	for _, p := range existing {
		if strings.EqualFold(reference.Normalize(p.Reference), ref) {
			return nil, conflict("this passage is already on the ballot")
		}
	}

	proposal := &models.Proposal{
		ID:         uuid.New(),
		WeekID:     week.ID,
		ProposerID: userID,
		Reference:  ref,
		Note:       req.Note,
	}
	if err := s.repo.CreateProposal(ctx, proposal); err != nil {
		return nil, fmt.Errorf("create proposal: %w", err)
	}
	return proposal, nil
}

// RemoveProposal withdraws a proposal from the current ballot. The
// proposer can withdraw their own; admins can withdraw any. Votes on the
// withdrawn proposal stay on record so turnout still counts them, and a
// seed tops the ballot back up if it would go empty.
func (s *WeekService) RemoveProposal(ctx context.Context, groupID, userID, proposalID uuid.UUID) error {
	member, err := s.requireMember(ctx, groupID, userID)
	if err != nil {
		return err
	}
	week, err := s.EnsureCurrentWeek(ctx, groupID)
	if err != nil {
		return err
	}
	if week.Status != models.WeekStatusVotingOpen {
		return conflict("voting is closed for this week")
	}

	proposal, err := s.repo.GetProposalByID(ctx, proposalID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return notFound("proposal not found")
		}
		return fmt.Errorf("load proposal: %w", err)
	}
	if proposal.WeekID != week.ID {
		return notFound("proposal is not on the current ballot")
	}
	if proposal.ProposerID != userID && member.Role.Weight() < models.GroupRoleAdmin.Weight() {
		return forbidden("only the proposer or an admin can withdraw a proposal")
	}

	if err := s.repo.DeleteProposal(ctx, proposalID); err != nil {
		return fmt.Errorf("delete proposal: %w", err)
	}

	remaining, err := s.repo.GetWeekProposals(ctx, week.ID)
	if err != nil {
		return fmt.Errorf("load proposals: %w", err)
	}
	if len(remaining) == 0 {
		group, err := s.repo.GetGroupByID(ctx, groupID)
		if err != nil {
			return fmt.Errorf("load group: %w", err)
		}
		if err := s.topUpSeed(ctx, group, week, remaining); err != nil {
			return err
		}
	}
	return s.ensureReadingItem(ctx, week)
}

// topUpSeed adds one seed proposal avoiding both prior reading items and
// the current ballot.
func (s *WeekService) topUpSeed(ctx context.Context, group *models.Group, week *models.Week, ballot []*models.Proposal) error {
	excluded, err := s.repo.GetAllReadReferences(ctx)
	if err != nil {
		return fmt.Errorf("load read history: %w", err)
	}
	for _, p := range ballot {
		excluded = append(excluded, p.Reference)
	}

	picks := s.picker.Pick(1, excluded)
	if len(picks) == 0 {
		return nil
	}
	proposal := &models.Proposal{
		ID:         uuid.New(),
		WeekID:     week.ID,
		ProposerID: group.OwnerID,
		Reference:  picks[0].Reference,
		Note:       picks[0].Note,
		IsSeed:     true,
	}
	if err := s.repo.CreateProposal(ctx, proposal); err != nil {
		return fmt.Errorf("create seed proposal: %w", err)
	}
	return nil
}

// VoteResult reports a cast vote along with whether the vote completed
// the turnout and resolved the week on the spot.
type VoteResult struct {
	Vote         *models.Vote `json:"vote"`
	AutoResolved bool         `json:"auto_resolved"`
}

// CastVote records or replaces the caller's ballot. A member has one vote
// per week; re-voting moves it. When every member has voted the week
// resolves immediately, unless the tally is tied under ADMIN_PICK.
func (s *WeekService) CastVote(ctx context.Context, groupID, userID uuid.UUID, req models.CastVoteRequest) (*VoteResult, error) {
	if _, err := s.requireMember(ctx, groupID, userID); err != nil {
		return nil, err
	}
	week, err := s.EnsureCurrentWeek(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if week.Status != models.WeekStatusVotingOpen {
		return nil, conflict("voting is closed for this week")
	}

	proposal, err := s.repo.GetProposalByID(ctx, req.ProposalID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, notFound("proposal not found")
		}
		return nil, fmt.Errorf("load proposal: %w", err)
	}
	if proposal.WeekID != week.ID {
		return nil, notFound("proposal is not on the current ballot")
	}

	vote := &models.Vote{
		ID:         uuid.New(),
		WeekID:     week.ID,
		UserID:     userID,
		ProposalID: proposal.ID,
	}
	if err := s.repo.UpsertVote(ctx, vote); err != nil {
		return nil, fmt.Errorf("record vote: %w", err)
	}

	if err := s.ensureReadingItem(ctx, week); err != nil {
		return nil, err
	}

	autoResolved, err := s.maybeResolveOnFullTurnout(ctx, groupID, week)
	if err != nil {
		return nil, err
	}

	vote, err = s.repo.GetUserVote(ctx, week.ID, userID)
	if err != nil {
		return nil, fmt.Errorf("reload vote: %w", err)
	}
	return &VoteResult{Vote: vote, AutoResolved: autoResolved}, nil
}

// ensureReadingItem keeps the week's reading item pointing at a live
// proposal while voting is open: the unique vote leader when there is
// one, otherwise a random live proposal when the item is missing or its
// proposal has been withdrawn. A fresh week gets an item right away; a
// resolved week's item is frozen.
func (s *WeekService) ensureReadingItem(ctx context.Context, week *models.Week) error {
	if week.Status != models.WeekStatusVotingOpen {
		return nil
	}
	tallies, err := s.repo.GetWeekTallies(ctx, week.ID)
	if err != nil {
		return fmt.Errorf("load tallies: %w", err)
	}
	if len(tallies) == 0 {
		return nil
	}

	target := uniqueLeader(tallies)
	if target == nil {
		item, err := s.repo.GetReadingItemByWeek(ctx, week.ID)
		if err != nil {
			return fmt.Errorf("load reading item: %w", err)
		}
		if item != nil && item.ProposalID != nil {
			for i := range tallies {
				if tallies[i].ProposalID == *item.ProposalID {
					return nil
				}
			}
		}
		target = &tallies[pickIndex(s.rand, len(tallies))]
	}

	pid := target.ProposalID
	item := &models.ReadingItem{
		ID:         uuid.New(),
		WeekID:     week.ID,
		ProposalID: &pid,
		Reference:  target.Reference,
	}
	if err := s.repo.UpsertReadingItem(ctx, item); err != nil {
		return fmt.Errorf("sync reading item: %w", err)
	}
	return nil
}

// uniqueLeader returns the strict vote leader, or nil on a tie or an
// unvoted ballot.
func uniqueLeader(tallies []models.ProposalTally) *models.ProposalTally {
	var top *models.ProposalTally
	tied := false
	for i := range tallies {
		t := &tallies[i]
		if t.VoteCount == 0 {
			continue
		}
		if top == nil || t.VoteCount > top.VoteCount {
			top = t
			tied = false
		} else if t.VoteCount == top.VoteCount {
			tied = true
		}
	}
	if top == nil || tied {
		return nil
	}
	return top
}

// maybeSendReminder emits VOTING_REMINDER to members who have not voted
// once the deadline is within the reminder window. The reminder_sent_at
// stamp makes this exactly-once under concurrent callers.
func (s *WeekService) maybeSendReminder(ctx context.Context, group *models.Group, week *models.Week) error {
	if week.Status != models.WeekStatusVotingOpen || week.ReminderSentAt != nil {
		return nil
	}
	now := s.now()
	if now.Before(week.VotingCloseAt.Add(-reminderLead)) || !now.Before(week.VotingCloseAt) {
		return nil
	}

	won, err := s.repo.MarkReminderSent(ctx, week.ID, now)
	if err != nil {
		return fmt.Errorf("stamp reminder: %w", err)
	}
	if !won {
		return nil
	}

	voters, err := s.repo.GetWeekVoters(ctx, week.ID)
	if err != nil {
		return fmt.Errorf("load voters: %w", err)
	}
	voted := make(map[uuid.UUID]struct{}, len(voters))
	for _, v := range voters {
		voted[v.UserID] = struct{}{}
	}

	members, err := s.repo.GetGroupMembers(ctx, group.ID)
	if err != nil {
		return fmt.Errorf("load members: %w", err)
	}
	var notifications []*models.Notification
	for _, m := range members {
		if _, ok := voted[m.UserID]; ok {
			continue
		}
		notifications = append(notifications, &models.Notification{
			ID:       uuid.New(),
			UserID:   m.UserID,
			Type:     models.NotificationVotingReminder,
			Text:     "Voting closes soon, cast your vote",
			Metadata: weekMetadata(week),
		})
	}
	if err := s.repo.CreateNotifications(ctx, notifications); err != nil {
		log.Printf("notify voting reminder for group %s: %v", group.ID, err)
	}
	return nil
}

// maybeAutoResolve resolves the week once its deadline has passed. A tie
// under ADMIN_PICK cannot self-resolve, and neither can an empty ballot;
// either way the week parks in PENDING_MANUAL until an admin steps in.
func (s *WeekService) maybeAutoResolve(ctx context.Context, group *models.Group, week *models.Week) error {
	if week.Status != models.WeekStatusVotingOpen || s.now().Before(week.VotingCloseAt) {
		return nil
	}

	tallies, err := s.repo.GetWeekTallies(ctx, week.ID)
	if err != nil {
		return fmt.Errorf("load tallies: %w", err)
	}
	decision := CalculateWinner(tallies, group.TiePolicy, s.rand)
	if decision.NeedsAdmin || decision.Winner == nil {
		if err := s.repo.UpdateWeekStatus(ctx, week.ID, models.WeekStatusPendingManual); err != nil {
			return fmt.Errorf("park week for admin pick: %w", err)
		}
		return nil
	}
	_, err = s.finalizeWeek(ctx, group, week.ID, decision.Winner)
	return err
}

// maybeResolveOnFullTurnout resolves early when every member has voted.
// An ADMIN_PICK tie keeps voting open so members can still shuffle votes.
func (s *WeekService) maybeResolveOnFullTurnout(ctx context.Context, groupID uuid.UUID, week *models.Week) (bool, error) {
	voters, err := s.repo.CountDistinctVoters(ctx, week.ID)
	if err != nil {
		return false, fmt.Errorf("count voters: %w", err)
	}
	members, err := s.repo.CountGroupMembers(ctx, groupID)
	if err != nil {
		return false, fmt.Errorf("count members: %w", err)
	}
	if members == 0 || voters < members {
		return false, nil
	}

	group, err := s.repo.GetGroupByID(ctx, groupID)
	if err != nil {
		return false, fmt.Errorf("load group: %w", err)
	}
	tallies, err := s.repo.GetWeekTallies(ctx, week.ID)
	if err != nil {
		return false, fmt.Errorf("load tallies: %w", err)
	}
	decision := CalculateWinner(tallies, group.TiePolicy, s.rand)
	if decision.Winner == nil {
		return false, nil
	}
	won, err := s.finalizeWeek(ctx, group, week.ID, decision.Winner)
	if err != nil {
		return false, err
	}
	return won, nil
}

// requireMember loads the caller's membership or fails with 403.
func (s *WeekService) requireMember(ctx context.Context, groupID, userID uuid.UUID) (*models.GroupMember, error) {
	member, err := s.repo.GetGroupMember(ctx, groupID, userID)
	if err != nil {
		return nil, fmt.Errorf("load membership: %w", err)
	}
	if member == nil {
		return nil, forbidden("not a member of this group")
	}
	return member, nil
}

// requireRole loads the caller's membership and checks it against a
// minimum role.
func (s *WeekService) requireRole(ctx context.Context, groupID, userID uuid.UUID, min models.GroupRole) (*models.GroupMember, error) {
	member, err := s.requireMember(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	if member.Role.Weight() < min.Weight() {
		return nil, forbidden("insufficient role for this action")
	}
	return member, nil
}

// notifyGroup inserts one notification per group member, optionally
// skipping the acting user.
func (s *WeekService) notifyGroup(ctx context.Context, groupID uuid.UUID, exclude *uuid.UUID, typ models.NotificationType, text, metadata string) error {
	members, err := s.repo.GetGroupMembers(ctx, groupID)
	if err != nil {
		return fmt.Errorf("load members: %w", err)
	}
	var notifications []*models.Notification
	for _, m := range members {
		if exclude != nil && m.UserID == *exclude {
			continue
		}
		notifications = append(notifications, &models.Notification{
			ID:       uuid.New(),
			UserID:   m.UserID,
			Type:     typ,
			Text:     text,
			Metadata: metadata,
		})
	}
	return s.repo.CreateNotifications(ctx, notifications)
}

func weekMetadata(week *models.Week) string {
	return fmt.Sprintf(`{"week_id":%q,"group_id":%q}`, week.ID, week.GroupID)
}

// sameDate compares two instants as calendar dates in a timezone.
func sameDate(a, b time.Time, timezone string) bool {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.UTC
	}
	return a.In(loc).Format("2006-01-02") == b.In(loc).Format("2006-01-02")
}

// weekStart is midnight Monday of the current week in the group's
// timezone. An unknown timezone falls back to UTC.
func weekStart(now time.Time, timezone string) time.Time {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.UTC
	}
	local := now.In(loc)
	back := (int(local.Weekday()) + 6) % 7
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc).
		AddDate(0, 0, -back)
}

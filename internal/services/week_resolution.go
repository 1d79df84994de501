package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"reading-club/internal/models"
	"reading-club/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// finalizeWeek freezes the winner into the week's reading item and flips
// the week to RESOLVED, inside a transaction with the week row locked.
// Exactly one concurrent caller wins; the rest see the week already
// resolved and return quietly. Returns whether this call did the resolving.
func (s *WeekService) finalizeWeek(ctx context.Context, group *models.Group, weekID uuid.UUID, winner *models.ProposalTally) (bool, error) {
	var resolved bool
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		week, err := tx.GetWeekForUpdate(ctx, weekID)
		if err != nil {
			return fmt.Errorf("lock week: %w", err)
		}
		if week.ResolvedReadingID != nil {
			return nil
		}

		pid := winner.ProposalID
		item := &models.ReadingItem{
			ID:         uuid.New(),
			WeekID:     weekID,
			ProposalID: &pid,
			Reference:  winner.Reference,
		}
		if err := tx.UpsertReadingItem(ctx, item); err != nil {
			return fmt.Errorf("freeze reading item: %w", err)
		}
		item, err = tx.GetReadingItemByWeek(ctx, weekID)
		if err != nil {
			return fmt.Errorf("reload reading item: %w", err)
		}

		resolved, err = tx.MarkWeekResolved(ctx, weekID, item.ID)
		if err != nil {
			return fmt.Errorf("mark week resolved: %w", err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	if resolved {
		week, err := s.repo.GetWeekByID(ctx, weekID)
		if err != nil {
			return true, fmt.Errorf("reload week: %w", err)
		}
		text := fmt.Sprintf("This week's reading is %s", winner.Reference)
		if err := s.notifyGroup(ctx, group.ID, nil, models.NotificationWinnerSelected, text, weekMetadata(week)); err != nil {
			log.Printf("notify winner for group %s: %v", group.ID, err)
		}
	}
	return resolved, nil
}

// ResolveCurrentWeek closes voting by admin hand. With a proposal ID the
// admin overrides the tally outright; without one the tally decides, a
// tie falling back to a random pick so the call always lands somewhere.
// Resolving an already resolved week returns it as it stands.
func (s *WeekService) ResolveCurrentWeek(ctx context.Context, groupID, userID uuid.UUID, req models.ResolveWeekRequest) (*models.Week, error) {
	if _, err := s.requireRole(ctx, groupID, userID, models.GroupRoleAdmin); err != nil {
		return nil, err
	}
	week, err := s.EnsureCurrentWeek(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if week.Status == models.WeekStatusResolved {
		return week, nil
	}
	group, err := s.repo.GetGroupByID(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("load group: %w", err)
	}

	tallies, err := s.repo.GetWeekTallies(ctx, week.ID)
	if err != nil {
		return nil, fmt.Errorf("load tallies: %w", err)
	}

	var winner *models.ProposalTally
	if req.ProposalID != nil {
		for i := range tallies {
			if tallies[i].ProposalID == *req.ProposalID {
				winner = &tallies[i]
				break
			}
		}
		if winner == nil {
			return nil, notFound("proposal is not on the current ballot")
		}
	} else {
		decision := CalculateWinner(tallies, group.TiePolicy, s.rand)
		winner = decision.Winner
		if winner == nil && len(tallies) > 0 {
			// ADMIN_PICK tie with no pick given: fall back to a random
			// draw among the tied leaders
			decision = CalculateWinner(tallies, models.TiePolicyRandom, s.rand)
			winner = decision.Winner
		}
		if winner == nil {
			// Empty ballot. Park the week so the admin can reseed or
			// pick by hand.
			if err := s.repo.UpdateWeekStatus(ctx, week.ID, models.WeekStatusPendingManual); err != nil {
				return nil, fmt.Errorf("park week for admin pick: %w", err)
			}
			return s.repo.GetWeekByID(ctx, week.ID)
		}
	}

	if _, err := s.finalizeWeek(ctx, group, week.ID, winner); err != nil {
		return nil, err
	}
	return s.repo.GetWeekByID(ctx, week.ID)
}

// RerollSeedProposal swaps one system seed for a fresh pick that avoids
// both the group's read history and everything already on the ballot.
// Member proposals cannot be rerolled.
func (s *WeekService) RerollSeedProposal(ctx context.Context, groupID, userID uuid.UUID, req models.RerollSeedRequest) (*models.Proposal, error) {
	if _, err := s.requireRole(ctx, groupID, userID, models.GroupRoleAdmin); err != nil {
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
	if !proposal.IsSeed {
		return nil, unprocessable("only seed proposals can be rerolled")
	}

	group, err := s.repo.GetGroupByID(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("load group: %w", err)
	}
	excluded, err := s.repo.GetGroupReadReferences(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("load read history: %w", err)
	}
	ballot, err := s.repo.GetWeekProposals(ctx, week.ID)
	if err != nil {
		return nil, fmt.Errorf("load proposals: %w", err)
	}
	for _, p := range ballot {
		excluded = append(excluded, p.Reference)
	}

	picks := s.picker.Pick(1, excluded)
	if len(picks) == 0 {
		return nil, unprocessable("no unread passages left to pick from")
	}

	if err := s.repo.DeleteProposal(ctx, proposal.ID); err != nil {
		return nil, fmt.Errorf("delete seed: %w", err)
	}

	replacement := &models.Proposal{
		ID:         uuid.New(),
		WeekID:     week.ID,
		ProposerID: group.OwnerID,
		Reference:  picks[0].Reference,
		Note:       picks[0].Note,
		IsSeed:     true,
	}
	if err := s.repo.CreateProposal(ctx, replacement); err != nil {
		return nil, fmt.Errorf("create seed proposal: %w", err)
	}
	if err := s.ensureReadingItem(ctx, week); err != nil {
		return nil, err
	}
	return replacement, nil
}

// StartNewVote opens the next voting round after the current week is
// resolved. Any member can open it. The new deadline runs from now
// rather than from the week boundary, so a mid-week restart still gets a
// full voting window.
func (s *WeekService) StartNewVote(ctx context.Context, groupID, userID uuid.UUID) (*models.Week, error) {
	if _, err := s.requireMember(ctx, groupID, userID); err != nil {
		return nil, err
	}
	group, err := s.repo.GetGroupByID(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("load group: %w", err)
	}

	active, err := s.repo.GetActiveWeek(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("load active week: %w", err)
	}
	if active != nil {
		return nil, conflict("current week is not resolved yet")
	}

	now := s.now()
	week := &models.Week{
		ID:            uuid.New(),
		GroupID:       groupID,
		StartDate:     weekStart(now, group.Timezone),
		VotingCloseAt: now.Add(time.Duration(group.VotingDurationHours) * time.Hour),
		Status:        models.WeekStatusVotingOpen,
	}
	if err := s.repo.CreateWeek(ctx, week); err != nil {
		if err == gorm.ErrDuplicatedKey {
			return nil, conflict("a new week was just opened")
		}
		return nil, fmt.Errorf("create week: %w", err)
	}
	if err := s.seedBallot(ctx, group, week, false); err != nil {
		return nil, err
	}
	if err := s.ensureReadingItem(ctx, week); err != nil {
		return nil, err
	}
	if err := s.notifyGroup(ctx, groupID, nil, models.NotificationVotingOpened,
		"A new voting round is open", weekMetadata(week)); err != nil {
		log.Printf("notify voting opened for group %s: %v", groupID, err)
	}
	return week, nil
}

// RolloverFailure records one group the sweep could not advance.
type RolloverFailure struct {
	GroupID uuid.UUID `json:"group_id"`
	Error   string    `json:"error"`
}

// RolloverResult reports how a rollover sweep went.
type RolloverResult struct {
	Processed int               `json:"processed"`
	Failures  []RolloverFailure `json:"failures"`
}

// RunWeeklyRollover sweeps groups through their due transitions. With a
// group ID only that group is swept; otherwise every group is. One group
// failing does not stop the sweep; failures land in the result.
func (s *WeekService) RunWeeklyRollover(ctx context.Context, groupID *uuid.UUID) (*RolloverResult, error) {
	var groups []*models.Group
	if groupID != nil {
		group, err := s.repo.GetGroupByID(ctx, *groupID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, notFound("group not found")
			}
			return nil, fmt.Errorf("load group: %w", err)
		}
		groups = []*models.Group{group}
	} else {
		var err error
		groups, err = s.repo.ListAllGroups(ctx)
		if err != nil {
			return nil, fmt.Errorf("list groups: %w", err)
		}
	}

	result := &RolloverResult{Failures: []RolloverFailure{}}
	for _, group := range groups {
		if _, err := s.EnsureCurrentWeek(ctx, group.ID); err != nil {
			result.Failures = append(result.Failures, RolloverFailure{
				GroupID: group.ID,
				Error:   err.Error(),
			})
			continue
		}
		result.Processed++
	}
	return result, nil
}

package repository

import (
	"context"

	"reading-club/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateProposal creates a new proposal
func (r *Repository) CreateProposal(ctx context.Context, proposal *models.Proposal) error {
	return r.db.WithContext(ctx).Create(proposal).Error
}

// GetProposalByID retrieves a live proposal by ID
func (r *Repository) GetProposalByID(ctx context.Context, proposalID uuid.UUID) (*models.Proposal, error) {
	var proposal models.Proposal
	err := r.db.WithContext(ctx).Where("id = ?", proposalID).First(&proposal).Error
	if err != nil {
		return nil, err
	}
	return &proposal, nil
}

// GetWeekProposals retrieves a week's live proposals, oldest first
func (r *Repository) GetWeekProposals(ctx context.Context, weekID uuid.UUID) ([]*models.Proposal, error) {
	var proposals []*models.Proposal
	err := r.db.WithContext(ctx).
		Where("week_id = ?", weekID).
		Order("created_at ASC").
		Find(&proposals).Error
	if err != nil {
		return nil, err
	}
	return proposals, nil
}

// DeleteProposal soft-deletes a proposal
func (r *Repository) DeleteProposal(ctx context.Context, proposalID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Proposal{}, "id = ?", proposalID).Error
}

// GetWeekTallies retrieves each live proposal with its vote count, ordered
// votes descending then creation time ascending. Votes pointing at a
// soft-deleted proposal drop out of the tally with it.
func (r *Repository) GetWeekTallies(ctx context.Context, weekID uuid.UUID) ([]models.ProposalTally, error) {
	var tallies []models.ProposalTally
	err := r.db.WithContext(ctx).Model(&models.Proposal{}).
		Select(`proposals.id AS proposal_id,
			proposals.reference,
			proposals.note,
			proposals.proposer_id,
			users.name AS proposer_name,
			proposals.is_seed,
			proposals.created_at,
			COUNT(votes.id) AS vote_count`).
		Joins("JOIN users ON users.id = proposals.proposer_id").
		Joins("LEFT JOIN votes ON votes.proposal_id = proposals.id").
		Where("proposals.week_id = ?", weekID).
		Group("proposals.id, proposals.reference, proposals.note, proposals.proposer_id, users.name, proposals.is_seed, proposals.created_at").
		Order("vote_count DESC, proposals.created_at ASC").
		Scan(&tallies).Error
	if err != nil {
		return nil, err
	}
	return tallies, nil
}

// GetWeekVoters retrieves every vote of a week joined with the voter name
func (r *Repository) GetWeekVoters(ctx context.Context, weekID uuid.UUID) ([]models.VoterRow, error) {
	var voters []models.VoterRow
	err := r.db.WithContext(ctx).Model(&models.Vote{}).
		Select("votes.proposal_id, votes.user_id, users.name AS user_name").
		Joins("JOIN users ON users.id = votes.user_id").
		Where("votes.week_id = ?", weekID).
		Order("votes.created_at ASC").
		Scan(&voters).Error
	if err != nil {
		return nil, err
	}
	return voters, nil
}

// UpsertVote records a member's ballot; re-voting overwrites the choice
func (r *Repository) UpsertVote(ctx context.Context, vote *models.Vote) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "week_id"}, {Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"proposal_id": vote.ProposalID,
			"created_at":  gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(vote).Error
}

// GetUserVote retrieves a member's vote for a week, or nil
func (r *Repository) GetUserVote(ctx context.Context, weekID, userID uuid.UUID) (*models.Vote, error) {
	var vote models.Vote
	err := r.db.WithContext(ctx).
		Where("week_id = ? AND user_id = ?", weekID, userID).
		First(&vote).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &vote, nil
}

// CountDistinctVoters counts how many members have voted in a week.
// Votes on withdrawn proposals still count toward turnout.
func (r *Repository) CountDistinctVoters(ctx context.Context, weekID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Vote{}).
		Where("week_id = ?", weekID).
		Distinct("user_id").
		Count(&count).Error
	return count, err
}

// GetWeekVoteCount counts all votes cast in a week
func (r *Repository) GetWeekVoteCount(ctx context.Context, weekID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Vote{}).
		Where("week_id = ?", weekID).
		Count(&count).Error
	return count, err
}

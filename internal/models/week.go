package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WeekStatus string

const (
	WeekStatusVotingOpen    WeekStatus = "VOTING_OPEN"
	WeekStatusResolved      WeekStatus = "RESOLVED"
	WeekStatusPendingManual WeekStatus = "PENDING_MANUAL"
)

// Week is one voting round for a group. The partial unique index on group_id
// enforces at most one non-RESOLVED week per group; a creation race loses
// with a duplicate-key error and reads back the surviving row.
type Week struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	GroupID           uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:ux_weeks_one_active,where:status <> 'RESOLVED'" json:"group_id"`
	StartDate         time.Time  `gorm:"type:date;not null" json:"start_date"`
	VotingCloseAt     time.Time  `gorm:"not null" json:"voting_close_at"`
	ResolvedReadingID *uuid.UUID `gorm:"type:uuid" json:"resolved_reading_id"`
	Status            WeekStatus `gorm:"size:20;not null;default:VOTING_OPEN;index" json:"status"`
	ReminderSentAt    *time.Time `json:"reminder_sent_at"`
	CreatedAt         time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Week) TableName() string {
	return "weeks"
}

// Proposal is a candidate passage on a week's ballot. Seed proposals are
// system-inserted fillers; rerolling a seed soft-deletes it, so deleted
// rows stay queryable for history while dropping out of every tally.
type Proposal struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	WeekID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"week_id"`
	ProposerID uuid.UUID      `gorm:"type:uuid;not null;index" json:"proposer_id"`
	Reference  string         `gorm:"size:120;not null" json:"reference"`
	Note       string         `gorm:"size:240" json:"note"`
	IsSeed     bool           `gorm:"not null;default:false" json:"is_seed"`
	CreatedAt  time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Proposal) TableName() string {
	return "proposals"
}

// Vote is a member's single ballot for a week. The unique index makes
// re-voting an upsert: the proposal choice is overwritten in place.
type Vote struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	WeekID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_votes_week_user" json:"week_id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_votes_week_user" json:"user_id"`
	ProposalID uuid.UUID `gorm:"type:uuid;not null;index" json:"proposal_id"`
	CreatedAt  time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Vote) TableName() string {
	return "votes"
}

// ReadingItem is the single passage assigned to a week: synced to the vote
// leader while voting is open, frozen once the week resolves. ProposalID
// goes nil if the source proposal is deleted after resolution.
type ReadingItem struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	WeekID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"week_id"`
	ProposalID *uuid.UUID `gorm:"type:uuid" json:"proposal_id"`
	Reference  string     `gorm:"size:120;not null" json:"reference"`
	CreatedAt  time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (ReadingItem) TableName() string {
	return "reading_items"
}

type ReadStatus string

const (
	ReadStatusNotMarked ReadStatus = "NOT_MARKED"
	ReadStatusPlanned   ReadStatus = "PLANNED"
	ReadStatusRead      ReadStatus = "READ"
)

// ReadMark tracks one user's progress on one reading item.
type ReadMark struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:ux_read_marks_user_item" json:"user_id"`
	ReadingItemID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:ux_read_marks_user_item" json:"reading_item_id"`
	Status        ReadStatus `gorm:"size:20;not null;default:NOT_MARKED" json:"status"`
	UpdatedAt     time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (ReadMark) TableName() string {
	return "read_marks"
}

// ProposalTally is a live (non-deleted) proposal with its vote count,
// ordered by the tally query: votes descending, creation time ascending.
type ProposalTally struct {
	ProposalID   uuid.UUID `json:"proposal_id"`
	Reference    string    `json:"reference"`
	Note         string    `json:"note"`
	ProposerID   uuid.UUID `json:"proposer_id"`
	ProposerName string    `json:"proposer_name"`
	IsSeed       bool      `json:"is_seed"`
	CreatedAt    time.Time `json:"created_at"`
	VoteCount    int64     `json:"vote_count"`
}

// VoterRow is one vote joined with the voter's name, fetched once per week
// and filtered per proposal in memory.
type VoterRow struct {
	ProposalID uuid.UUID `json:"proposal_id"`
	UserID     uuid.UUID `json:"user_id"`
	UserName   string    `json:"user_name"`
}

// WeekHistoryRow summarizes one resolved past week.
type WeekHistoryRow struct {
	WeekID        uuid.UUID `json:"week_id"`
	StartDate     time.Time `json:"start_date"`
	Reference     string    `json:"reference"`
	CommentsCount int64     `json:"comments_count"`
	ReadCount     int64     `json:"read_count"`
}

// AddProposalRequest submits a new passage for the current week.
type AddProposalRequest struct {
	Reference string `json:"reference" binding:"required"`
	Note      string `json:"note"`
}

// CastVoteRequest casts or re-casts the caller's vote.
type CastVoteRequest struct {
	ProposalID uuid.UUID `json:"proposal_id" binding:"required"`
}

// ResolveWeekRequest optionally names the winning proposal (admin tie-break
// or forced early resolution).
type ResolveWeekRequest struct {
	ProposalID *uuid.UUID `json:"proposal_id"`
}

// RerollSeedRequest replaces one seed proposal with a fresh pick.
type RerollSeedRequest struct {
	ProposalID uuid.UUID `json:"proposal_id" binding:"required"`
}

// SetReadMarkRequest upserts the caller's read status.
type SetReadMarkRequest struct {
	Status ReadStatus `json:"status" binding:"required"`
}

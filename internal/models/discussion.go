package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment is threaded discussion on a reading item. Depth is capped at two
// levels: a reply's parent must itself be top-level.
type Comment struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ReadingItemID uuid.UUID      `gorm:"type:uuid;not null;index" json:"reading_item_id"`
	ParentID      *uuid.UUID     `gorm:"type:uuid;index" json:"parent_id"`
	AuthorID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"author_id"`
	Text          string         `gorm:"size:500;not null" json:"text"`
	CreatedAt     time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Comment) TableName() string {
	return "comments"
}

// ProposalComment is flat discussion attached to a ballot proposal.
type ProposalComment struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ProposalID uuid.UUID      `gorm:"type:uuid;not null;index" json:"proposal_id"`
	AuthorID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"author_id"`
	Text       string         `gorm:"size:500;not null" json:"text"`
	CreatedAt  time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (ProposalComment) TableName() string {
	return "proposal_comments"
}

// ProposalCommentRead is a per-user read cursor for a proposal's comments.
type ProposalCommentRead struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_proposal_comment_reads" json:"user_id"`
	ProposalID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_proposal_comment_reads" json:"proposal_id"`
	LastReadAt time.Time `gorm:"not null" json:"last_read_at"`
}

func (ProposalCommentRead) TableName() string {
	return "proposal_comment_reads"
}

// Annotation is a note pinned to a verse range of a reading item.
type Annotation struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ReadingItemID uuid.UUID      `gorm:"type:uuid;not null;index" json:"reading_item_id"`
	AuthorID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"author_id"`
	StartVerse    int            `gorm:"not null" json:"start_verse"`
	EndVerse      int            `gorm:"not null" json:"end_verse"`
	Text          string         `gorm:"size:500;not null" json:"text"`
	CreatedAt     time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Annotation) TableName() string {
	return "annotations"
}

// AnnotationReply is a flat reply under an annotation.
type AnnotationReply struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	AnnotationID uuid.UUID      `gorm:"type:uuid;not null;index" json:"annotation_id"`
	AuthorID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"author_id"`
	Text         string         `gorm:"size:500;not null" json:"text"`
	CreatedAt    time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (AnnotationReply) TableName() string {
	return "annotation_replies"
}

type NotificationType string

const (
	NotificationVotingOpened   NotificationType = "VOTING_OPENED"
	NotificationVotingReminder NotificationType = "VOTING_REMINDER"
	NotificationWinnerSelected NotificationType = "WINNER_SELECTED"
	NotificationCommentReply   NotificationType = "COMMENT_REPLY"
	NotificationMention        NotificationType = "MENTION"
)

// Notification is a fire-and-forget record for one user; delivery beyond
// the insert is out of scope.
type Notification struct {
	ID        uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID        `gorm:"type:uuid;not null;index" json:"user_id"`
	Type      NotificationType `gorm:"size:30;not null" json:"type"`
	Text      string           `gorm:"size:255;not null" json:"text"`
	Metadata  string           `gorm:"type:jsonb" json:"metadata"`
	ReadAt    *time.Time       `json:"read_at"`
	CreatedAt time.Time        `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

// CreateCommentRequest posts a comment or a reply (ParentID set).
type CreateCommentRequest struct {
	Text     string     `json:"text" binding:"required"`
	ParentID *uuid.UUID `json:"parent_id"`
}

// EditCommentRequest rewrites a comment within its edit window.
type EditCommentRequest struct {
	Text string `json:"text" binding:"required"`
}

// CreateAnnotationRequest pins a note to a verse range.
type CreateAnnotationRequest struct {
	StartVerse int    `json:"start_verse" binding:"required"`
	EndVerse   int    `json:"end_verse" binding:"required"`
	Text       string `json:"text" binding:"required"`
}

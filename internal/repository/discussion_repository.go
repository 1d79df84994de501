package repository

import (
	"context"
	"time"

	"reading-club/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"
)

// CreateComment creates a new comment
func (r *Repository) CreateComment(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

// GetCommentByID retrieves a live comment by ID
func (r *Repository) GetCommentByID(ctx context.Context, commentID uuid.UUID) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.WithContext(ctx).Where("id = ?", commentID).First(&comment).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// UpdateComment updates a comment
func (r *Repository) UpdateComment(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Save(comment).Error
}

// DeleteComment soft-deletes a comment
func (r *Repository) DeleteComment(ctx context.Context, commentID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Comment{}, "id = ?", commentID).Error
}

// GetReadingItemComments retrieves a reading item's live comments, oldest
// first; threading is reassembled in memory
func (r *Repository) GetReadingItemComments(ctx context.Context, itemID uuid.UUID) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.db.WithContext(ctx).
		Where("reading_item_id = ?", itemID).
		Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// CountReadingItemComments counts a reading item's live comments
func (r *Repository) CountReadingItemComments(ctx context.Context, itemID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("reading_item_id = ?", itemID).
		Count(&count).Error
	return count, err
}

// GetUserComments retrieves a user's live comments, newest first
func (r *Repository) GetUserComments(ctx context.Context, userID uuid.UUID, limit int) ([]*models.Comment, error) {
	var comments []*models.Comment
	q := r.db.WithContext(ctx).
		Where("author_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// CreateProposalComment creates a comment on a ballot proposal
func (r *Repository) CreateProposalComment(ctx context.Context, comment *models.ProposalComment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

// GetProposalComments retrieves a proposal's live comments, oldest first
func (r *Repository) GetProposalComments(ctx context.Context, proposalID uuid.UUID) ([]*models.ProposalComment, error) {
	var comments []*models.ProposalComment
	err := r.db.WithContext(ctx).
		Where("proposal_id = ?", proposalID).
		Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// GetWeekProposalComments retrieves every live comment across a week's
// proposals, including comments on rerolled (soft-deleted) proposals
func (r *Repository) GetWeekProposalComments(ctx context.Context, weekID uuid.UUID) ([]*models.ProposalComment, error) {
	var comments []*models.ProposalComment
	err := r.db.WithContext(ctx).
		Joins("JOIN proposals ON proposals.id = proposal_comments.proposal_id").
		Where("proposals.week_id = ?", weekID).
		Order("proposal_comments.created_at ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// UpsertProposalCommentRead advances a user's read cursor on a proposal
func (r *Repository) UpsertProposalCommentRead(ctx context.Context, read *models.ProposalCommentRead) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "proposal_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"last_read_at": read.LastReadAt,
		}),
	}).Create(read).Error
}

// GetProposalCommentReads retrieves a user's read cursors for a set of proposals
func (r *Repository) GetProposalCommentReads(ctx context.Context, userID uuid.UUID, proposalIDs []uuid.UUID) (map[uuid.UUID]time.Time, error) {
	result := make(map[uuid.UUID]time.Time, len(proposalIDs))
	if len(proposalIDs) == 0 {
		return result, nil
	}
	var reads []*models.ProposalCommentRead
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND proposal_id IN ?", userID, proposalIDs).
		Find(&reads).Error
	if err != nil {
		return nil, err
	}
	for _, read := range reads {
		result[read.ProposalID] = read.LastReadAt
	}
	return result, nil
}

// CreateAnnotation creates a verse annotation
func (r *Repository) CreateAnnotation(ctx context.Context, annotation *models.Annotation) error {
	return r.db.WithContext(ctx).Create(annotation).Error
}

// GetAnnotationByID retrieves a live annotation by ID
func (r *Repository) GetAnnotationByID(ctx context.Context, annotationID uuid.UUID) (*models.Annotation, error) {
	var annotation models.Annotation
	err := r.db.WithContext(ctx).Where("id = ?", annotationID).First(&annotation).Error
	if err != nil {
		return nil, err
	}
	return &annotation, nil
}

// DeleteAnnotation soft-deletes an annotation
func (r *Repository) DeleteAnnotation(ctx context.Context, annotationID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Annotation{}, "id = ?", annotationID).Error
}

// GetReadingItemAnnotations retrieves a reading item's live annotations,
// ordered by verse range then creation time
func (r *Repository) GetReadingItemAnnotations(ctx context.Context, itemID uuid.UUID) ([]*models.Annotation, error) {
	var annotations []*models.Annotation
	err := r.db.WithContext(ctx).
		Where("reading_item_id = ?", itemID).
		Order("start_verse ASC, created_at ASC").
		Find(&annotations).Error
	if err != nil {
		return nil, err
	}
	return annotations, nil
}

// CreateAnnotationReply creates a reply under an annotation
func (r *Repository) CreateAnnotationReply(ctx context.Context, reply *models.AnnotationReply) error {
	return r.db.WithContext(ctx).Create(reply).Error
}

// GetAnnotationReplies retrieves the live replies of a set of annotations
func (r *Repository) GetAnnotationReplies(ctx context.Context, annotationIDs []uuid.UUID) ([]*models.AnnotationReply, error) {
	if len(annotationIDs) == 0 {
		return []*models.AnnotationReply{}, nil
	}
	var replies []*models.AnnotationReply
	err := r.db.WithContext(ctx).
		Where("annotation_id IN ?", annotationIDs).
		Order("created_at ASC").
		Find(&replies).Error
	if err != nil {
		return nil, err
	}
	return replies, nil
}

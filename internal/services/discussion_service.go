package services

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"reading-club/internal/models"
	"reading-club/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	maxCommentLength = 500
	editWindow       = 5 * time.Minute
)

var mentionPattern = regexp.MustCompile(`@([a-zA-Z0-9_]+)`)

// DiscussionService handles comments, annotations, proposal discussion,
// and read marks on reading items.
type DiscussionService struct {
	repo *repository.Repository
	now  func() time.Time
}

func NewDiscussionService(repo *repository.Repository) *DiscussionService {
	return &DiscussionService{repo: repo, now: time.Now}
}

// CommentView is a comment with its author resolved and replies nested.
type CommentView struct {
	*models.Comment
	Author  models.UserInfo `json:"author"`
	Replies []CommentView   `json:"replies,omitempty"`
}

// CreateComment posts a comment on a reading item, or a reply when
// ParentID is set. Threads are two levels deep: replying to a reply
// attaches to the reply's parent instead.
func (s *DiscussionService) CreateComment(ctx context.Context, userID, itemID uuid.UUID, req models.CreateCommentRequest) (*models.Comment, error) {
	member, err := s.requireItemMember(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, unprocessable("comment text is required")
	}
	if len(text) > maxCommentLength {
		return nil, unprocessable(fmt.Sprintf("comment exceeds %d characters", maxCommentLength))
	}

	var parentAuthor *uuid.UUID
	parentID := req.ParentID
	if parentID != nil {
		parent, err := s.repo.GetCommentByID(ctx, *parentID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, notFound("parent comment not found")
			}
			return nil, fmt.Errorf("load parent: %w", err)
		}
		if parent.ReadingItemID != itemID {
			return nil, unprocessable("parent comment belongs to another reading")
		}
		if parent.ParentID != nil {
			parentID = parent.ParentID
		}
		parentAuthor = &parent.AuthorID
	}

	comment := &models.Comment{
		ID:            uuid.New(),
		ReadingItemID: itemID,
		ParentID:      parentID,
		AuthorID:      userID,
		Text:          text,
	}
	if err := s.repo.CreateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	if err := s.emitCommentNotifications(ctx, member.GroupID, comment, parentAuthor); err != nil {
		log.Printf("notify comment %s: %v", comment.ID, err)
	}
	return comment, nil
}

// emitCommentNotifications sends COMMENT_REPLY to the parent author and
// MENTION to any @-mentioned member. A user mentioned in a reply to their
// own comment gets the reply notification only.
func (s *DiscussionService) emitCommentNotifications(ctx context.Context, groupID uuid.UUID, comment *models.Comment, parentAuthor *uuid.UUID) error {
	notified := map[uuid.UUID]struct{}{comment.AuthorID: {}}
	var notifications []*models.Notification

	meta := fmt.Sprintf(`{"comment_id":%q,"reading_item_id":%q}`, comment.ID, comment.ReadingItemID)
	if parentAuthor != nil && *parentAuthor != comment.AuthorID {
		notifications = append(notifications, &models.Notification{
			ID:       uuid.New(),
			UserID:   *parentAuthor,
			Type:     models.NotificationCommentReply,
			Text:     "Someone replied to your comment",
			Metadata: meta,
		})
		notified[*parentAuthor] = struct{}{}
	}

	handles := mentionPattern.FindAllStringSubmatch(comment.Text, -1)
	if len(handles) > 0 {
		members, err := s.repo.GetGroupMembers(ctx, groupID)
		if err != nil {
			return fmt.Errorf("load members: %w", err)
		}
		ids := make([]uuid.UUID, 0, len(members))
		for _, m := range members {
			ids = append(ids, m.UserID)
		}
		users, err := s.repo.GetUsersByIDs(ctx, ids)
		if err != nil {
			return fmt.Errorf("load users: %w", err)
		}
		byHandle := make(map[string]uuid.UUID, len(users))
		for id, u := range users {
			byHandle[mentionHandle(u.Name)] = id
		}
		for _, h := range handles {
			id, ok := byHandle[strings.ToLower(h[1])]
			if !ok {
				continue
			}
			if _, seen := notified[id]; seen {
				continue
			}
			notifications = append(notifications, &models.Notification{
				ID:       uuid.New(),
				UserID:   id,
				Type:     models.NotificationMention,
				Text:     "You were mentioned in a comment",
				Metadata: meta,
			})
			notified[id] = struct{}{}
		}
	}
	return s.repo.CreateNotifications(ctx, notifications)
}

// mentionHandle is a user's name lowercased with spaces removed, the form
// @-mentions are matched against.
func mentionHandle(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, " ", ""))
}

// EditComment rewrites the caller's own comment within the edit window.
func (s *DiscussionService) EditComment(ctx context.Context, userID, commentID uuid.UUID, req models.EditCommentRequest) (*models.Comment, error) {
	comment, err := s.repo.GetCommentByID(ctx, commentID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, notFound("comment not found")
		}
		return nil, fmt.Errorf("load comment: %w", err)
	}
	if comment.AuthorID != userID {
		return nil, forbidden("only the author can edit a comment")
	}
	if s.now().After(comment.CreatedAt.Add(editWindow)) {
		return nil, conflict("the edit window has closed")
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, unprocessable("comment text is required")
	}
	if len(text) > maxCommentLength {
		return nil, unprocessable(fmt.Sprintf("comment exceeds %d characters", maxCommentLength))
	}

	comment.Text = text
	comment.UpdatedAt = s.now()
	if err := s.repo.UpdateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}
	return comment, nil
}

// DeleteComment removes the caller's own comment, or any comment for a
// group admin.
func (s *DiscussionService) DeleteComment(ctx context.Context, userID, commentID uuid.UUID) error {
	comment, err := s.repo.GetCommentByID(ctx, commentID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return notFound("comment not found")
		}
		return fmt.Errorf("load comment: %w", err)
	}
	if comment.AuthorID != userID {
		member, err := s.requireItemMember(ctx, userID, comment.ReadingItemID)
		if err != nil {
			return err
		}
		if member.Role.Weight() < models.GroupRoleAdmin.Weight() {
			return forbidden("only the author or an admin can delete a comment")
		}
	}
	return s.repo.DeleteComment(ctx, commentID)
}

// GetComments returns a reading item's thread: top-level comments in
// posting order with replies nested under them.
func (s *DiscussionService) GetComments(ctx context.Context, userID, itemID uuid.UUID) ([]CommentView, error) {
	if _, err := s.requireItemMember(ctx, userID, itemID); err != nil {
		return nil, err
	}
	comments, err := s.repo.GetReadingItemComments(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("load comments: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.AuthorID)
	}
	users, err := s.repo.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	author := func(id uuid.UUID) models.UserInfo {
		if u, ok := users[id]; ok {
			return models.UserInfo{ID: id, Name: u.Name}
		}
		return models.UserInfo{ID: id}
	}

	thread := make([]CommentView, 0)
	index := make(map[uuid.UUID]int)
	for _, c := range comments {
		if c.ParentID != nil {
			continue
		}
		index[c.ID] = len(thread)
		thread = append(thread, CommentView{Comment: c, Author: author(c.AuthorID)})
	}
	for _, c := range comments {
		if c.ParentID == nil {
			continue
		}
		if i, ok := index[*c.ParentID]; ok {
			thread[i].Replies = append(thread[i].Replies, CommentView{Comment: c, Author: author(c.AuthorID)})
		}
	}
	return thread, nil
}

// CommentOnProposal posts to a ballot proposal's flat discussion.
func (s *DiscussionService) CommentOnProposal(ctx context.Context, userID, proposalID uuid.UUID, text string) (*models.ProposalComment, error) {
	proposal, err := s.repo.GetProposalByID(ctx, proposalID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, notFound("proposal not found")
		}
		return nil, fmt.Errorf("load proposal: %w", err)
	}
	week, err := s.repo.GetWeekByID(ctx, proposal.WeekID)
	if err != nil {
		return nil, fmt.Errorf("load week: %w", err)
	}
	if _, err := s.requireGroupMember(ctx, week.GroupID, userID); err != nil {
		return nil, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, unprocessable("comment text is required")
	}
	if len(text) > maxCommentLength {
		return nil, unprocessable(fmt.Sprintf("comment exceeds %d characters", maxCommentLength))
	}

	comment := &models.ProposalComment{
		ID:         uuid.New(),
		ProposalID: proposalID,
		AuthorID:   userID,
		Text:       text,
	}
	if err := s.repo.CreateProposalComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("create proposal comment: %w", err)
	}
	return comment, nil
}

// GetProposalComments returns a proposal's discussion and advances the
// caller's read cursor past it.
func (s *DiscussionService) GetProposalComments(ctx context.Context, userID, proposalID uuid.UUID) ([]*models.ProposalComment, error) {
	proposal, err := s.repo.GetProposalByID(ctx, proposalID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, notFound("proposal not found")
		}
		return nil, fmt.Errorf("load proposal: %w", err)
	}
	week, err := s.repo.GetWeekByID(ctx, proposal.WeekID)
	if err != nil {
		return nil, fmt.Errorf("load week: %w", err)
	}
	if _, err := s.requireGroupMember(ctx, week.GroupID, userID); err != nil {
		return nil, err
	}

	comments, err := s.repo.GetProposalComments(ctx, proposalID)
	if err != nil {
		return nil, fmt.Errorf("load proposal comments: %w", err)
	}
	read := &models.ProposalCommentRead{
		ID:         uuid.New(),
		UserID:     userID,
		ProposalID: proposalID,
		LastReadAt: s.now(),
	}
	if err := s.repo.UpsertProposalCommentRead(ctx, read); err != nil {
		return nil, fmt.Errorf("advance read cursor: %w", err)
	}
	return comments, nil
}

// AnnotationView is an annotation with its author and replies resolved.
type AnnotationView struct {
	*models.Annotation
	Author  models.UserInfo           `json:"author"`
	Replies []*models.AnnotationReply `json:"replies"`
}

// CreateAnnotation pins a note to a verse range of a reading item.
func (s *DiscussionService) CreateAnnotation(ctx context.Context, userID, itemID uuid.UUID, req models.CreateAnnotationRequest) (*models.Annotation, error) {
	if _, err := s.requireItemMember(ctx, userID, itemID); err != nil {
		return nil, err
	}
	if req.StartVerse < 1 || req.EndVerse < req.StartVerse {
		return nil, unprocessable("verse range is invalid")
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, unprocessable("annotation text is required")
	}
	if len(text) > maxCommentLength {
		return nil, unprocessable(fmt.Sprintf("annotation exceeds %d characters", maxCommentLength))
	}

	annotation := &models.Annotation{
		ID:            uuid.New(),
		ReadingItemID: itemID,
		AuthorID:      userID,
		StartVerse:    req.StartVerse,
		EndVerse:      req.EndVerse,
		Text:          text,
	}
	if err := s.repo.CreateAnnotation(ctx, annotation); err != nil {
		return nil, fmt.Errorf("create annotation: %w", err)
	}
	return annotation, nil
}

// ReplyToAnnotation posts a flat reply under an annotation.
func (s *DiscussionService) ReplyToAnnotation(ctx context.Context, userID, annotationID uuid.UUID, text string) (*models.AnnotationReply, error) {
	annotation, err := s.repo.GetAnnotationByID(ctx, annotationID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, notFound("annotation not found")
		}
		return nil, fmt.Errorf("load annotation: %w", err)
	}
	if _, err := s.requireItemMember(ctx, userID, annotation.ReadingItemID); err != nil {
		return nil, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, unprocessable("reply text is required")
	}
	if len(text) > maxCommentLength {
		return nil, unprocessable(fmt.Sprintf("reply exceeds %d characters", maxCommentLength))
	}

	reply := &models.AnnotationReply{
		ID:           uuid.New(),
		AnnotationID: annotationID,
		AuthorID:     userID,
		Text:         text,
	}
	if err := s.repo.CreateAnnotationReply(ctx, reply); err != nil {
		return nil, fmt.Errorf("create reply: %w", err)
	}
	return reply, nil
}

// GetAnnotations returns a reading item's annotations with replies.
func (s *DiscussionService) GetAnnotations(ctx context.Context, userID, itemID uuid.UUID) ([]AnnotationView, error) {
	if _, err := s.requireItemMember(ctx, userID, itemID); err != nil {
		return nil, err
	}
	annotations, err := s.repo.GetReadingItemAnnotations(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("load annotations: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(annotations))
	authorIDs := make([]uuid.UUID, 0, len(annotations))
	for _, a := range annotations {
		ids = append(ids, a.ID)
		authorIDs = append(authorIDs, a.AuthorID)
	}
	replies, err := s.repo.GetAnnotationReplies(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load replies: %w", err)
	}
	users, err := s.repo.GetUsersByIDs(ctx, authorIDs)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}

	byAnnotation := make(map[uuid.UUID][]*models.AnnotationReply)
	for _, r := range replies {
		byAnnotation[r.AnnotationID] = append(byAnnotation[r.AnnotationID], r)
	}

	views := make([]AnnotationView, 0, len(annotations))
	for _, a := range annotations {
		author := models.UserInfo{ID: a.AuthorID}
		if u, ok := users[a.AuthorID]; ok {
			author.Name = u.Name
		}
		rs := byAnnotation[a.ID]
		if rs == nil {
			rs = []*models.AnnotationReply{}
		}
		views = append(views, AnnotationView{Annotation: a, Author: author, Replies: rs})
	}
	return views, nil
}

// SetReadMark upserts the caller's read status on a reading item.
func (s *DiscussionService) SetReadMark(ctx context.Context, userID, itemID uuid.UUID, req models.SetReadMarkRequest) (*models.ReadMark, error) {
	if _, err := s.requireItemMember(ctx, userID, itemID); err != nil {
		return nil, err
	}
	switch req.Status {
	case models.ReadStatusNotMarked, models.ReadStatusPlanned, models.ReadStatusRead:
	default:
		return nil, unprocessable("unknown read status")
	}

	mark := &models.ReadMark{
		ID:            uuid.New(),
		UserID:        userID,
		ReadingItemID: itemID,
		Status:        req.Status,
	}
	if err := s.repo.UpsertReadMark(ctx, mark); err != nil {
		return nil, fmt.Errorf("set read mark: %w", err)
	}
	return s.repo.GetUserReadMark(ctx, userID, itemID)
}

// requireItemMember resolves a reading item back to its group and checks
// the caller's membership there.
func (s *DiscussionService) requireItemMember(ctx context.Context, userID, itemID uuid.UUID) (*models.GroupMember, error) {
	item, err := s.repo.GetReadingItemByID(ctx, itemID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, notFound("reading not found")
		}
		return nil, fmt.Errorf("load reading item: %w", err)
	}
	week, err := s.repo.GetWeekByID(ctx, item.WeekID)
	if err != nil {
		return nil, fmt.Errorf("load week: %w", err)
	}
	return s.requireGroupMember(ctx, week.GroupID, userID)
}

func (s *DiscussionService) requireGroupMember(ctx context.Context, groupID, userID uuid.UUID) (*models.GroupMember, error) {
	member, err := s.repo.GetGroupMember(ctx, groupID, userID)
	if err != nil {
		return nil, fmt.Errorf("load membership: %w", err)
	}
	if member == nil {
		return nil, forbidden("not a member of this group")
	}
	return member, nil
}

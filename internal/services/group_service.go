package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"reading-club/internal/models"
	"reading-club/internal/repository"

	"github.com/google/uuid"
)

const (
	maxGroupNameLength = 80
	minVotingHours     = 1
	maxVotingHours     = 168
	defaultTimezone    = "America/New_York"
)

// GroupService manages groups, membership, and invites.
type GroupService struct {
	repo *repository.Repository
	now  func() time.Time
}

func NewGroupService(repo *repository.Repository) *GroupService {
	return &GroupService{repo: repo, now: time.Now}
}

// CreateGroup creates a group with the caller as OWNER.
func (s *GroupService) CreateGroup(ctx context.Context, userID uuid.UUID, req models.CreateGroupRequest) (*models.Group, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, unprocessable("group name is required")
	}
	if len(name) > maxGroupNameLength {
		return nil, unprocessable(fmt.Sprintf("group name exceeds %d characters", maxGroupNameLength))
	}

	timezone := defaultTimezone
	if req.Timezone != "" {
		if _, err := time.LoadLocation(req.Timezone); err != nil {
			return nil, unprocessable("unknown timezone")
		}
		timezone = req.Timezone
	}

	group := &models.Group{
		ID:                  uuid.New(),
		Name:                name,
		Timezone:            timezone,
		OwnerID:             userID,
		TiePolicy:           models.TiePolicyAdminPick,
		LiveTally:           true,
		VotingDurationHours: clampVotingHours(req.VotingDurationHours),
	}
	if req.TiePolicy != nil {
		if !validTiePolicy(*req.TiePolicy) {
			return nil, unprocessable("unknown tie policy")
		}
		group.TiePolicy = *req.TiePolicy
	}
	if req.LiveTally != nil {
		group.LiveTally = *req.LiveTally
	}

	if err := s.repo.CreateGroup(ctx, group); err != nil {
		return nil, fmt.Errorf("create group: %w", err)
	}
	owner := &models.GroupMember{
		ID:      uuid.New(),
		GroupID: group.ID,
		UserID:  userID,
		Role:    models.GroupRoleOwner,
	}
	if err := s.repo.UpsertGroupMember(ctx, owner); err != nil {
		return nil, fmt.Errorf("add owner: %w", err)
	}
	return group, nil
}

// UpdateGroupSettings applies admin edits. Voting hours are clamped to
// the allowed window rather than rejected; the new duration applies to
// future weeks only.
func (s *GroupService) UpdateGroupSettings(ctx context.Context, groupID, userID uuid.UUID, req models.UpdateGroupSettingsRequest) (*models.Group, error) {
	if _, err := s.requireRole(ctx, groupID, userID, models.GroupRoleAdmin); err != nil {
		return nil, err
	}
	group, err := s.repo.GetGroupByID(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("load group: %w", err)
	}

	if req.VotingDurationHours != nil {
		group.VotingDurationHours = clampVotingHours(req.VotingDurationHours)
	}
	if req.TiePolicy != nil {
		if !validTiePolicy(*req.TiePolicy) {
			return nil, unprocessable("unknown tie policy")
		}
		group.TiePolicy = *req.TiePolicy
	}
	if req.LiveTally != nil {
		group.LiveTally = *req.LiveTally
	}

	if err := s.repo.UpdateGroup(ctx, group); err != nil {
		return nil, fmt.Errorf("update group: %w", err)
	}
	return group, nil
}

// CreateInvite mints an invite token. With a recipient name it is a
// personal invite tracking acceptance; without, a shareable link.
func (s *GroupService) CreateInvite(ctx context.Context, groupID, userID uuid.UUID, req models.CreateInviteRequest) (*models.Invite, error) {
	if _, err := s.requireRole(ctx, groupID, userID, models.GroupRoleAdmin); err != nil {
		return nil, err
	}

	token, err := inviteToken()
	if err != nil {
		return nil, fmt.Errorf("mint token: %w", err)
	}
	invite := &models.Invite{
		ID:               uuid.New(),
		GroupID:          groupID,
		Token:            token,
		CreatedBy:        userID,
		RecipientName:    req.RecipientName,
		RecipientContact: req.RecipientContact,
		Status:           models.InviteStatusPending,
	}
	if req.ExpiresInDays != nil && *req.ExpiresInDays > 0 {
		expires := s.now().AddDate(0, 0, *req.ExpiresInDays)
		invite.ExpiresAt = &expires
	}

	if err := s.repo.CreateInvite(ctx, invite); err != nil {
		return nil, fmt.Errorf("create invite: %w", err)
	}
	return invite, nil
}

// GetGroupInvites lists a group's invites for admins.
func (s *GroupService) GetGroupInvites(ctx context.Context, groupID, userID uuid.UUID) ([]*models.Invite, error) {
	if _, err := s.requireRole(ctx, groupID, userID, models.GroupRoleAdmin); err != nil {
		return nil, err
	}
	return s.repo.GetGroupInvites(ctx, groupID)
}

// CancelInvite voids a pending invite.
func (s *GroupService) CancelInvite(ctx context.Context, groupID, userID uuid.UUID, inviteID uuid.UUID) error {
	if _, err := s.requireRole(ctx, groupID, userID, models.GroupRoleAdmin); err != nil {
		return err
	}
	invites, err := s.repo.GetGroupInvites(ctx, groupID)
	if err != nil {
		return fmt.Errorf("load invites: %w", err)
	}
	for _, invite := range invites {
		if invite.ID != inviteID {
			continue
		}
		if invite.Status != models.InviteStatusPending {
			return conflict("invite is no longer pending")
		}
		invite.Status = models.InviteStatusCancelled
		if err := s.repo.UpdateInvite(ctx, invite); err != nil {
			return fmt.Errorf("cancel invite: %w", err)
		}
		return nil
	}
	return notFound("invite not found")
}

// JoinGroupByInvite redeems a token and adds the caller as MEMBER.
// Joining a group the caller already belongs to is a no-op.
func (s *GroupService) JoinGroupByInvite(ctx context.Context, userID uuid.UUID, token string) (*models.Group, error) {
	invite, err := s.repo.GetInviteByToken(ctx, strings.TrimSpace(token))
	if err != nil {
		return nil, fmt.Errorf("load invite: %w", err)
	}
	if invite == nil || invite.Status == models.InviteStatusCancelled {
		return nil, notFound("invite not found")
	}
	if invite.ExpiresAt != nil && s.now().After(*invite.ExpiresAt) {
		return nil, conflict("invite has expired")
	}

	group, err := s.repo.GetGroupByID(ctx, invite.GroupID)
	if err != nil {
		return nil, fmt.Errorf("load group: %w", err)
	}
	member := &models.GroupMember{
		ID:      uuid.New(),
		GroupID: group.ID,
		UserID:  userID,
		Role:    models.GroupRoleMember,
	}
	if err := s.repo.UpsertGroupMember(ctx, member); err != nil {
		return nil, fmt.Errorf("add member: %w", err)
	}

	// Personal invites are single-use; shareable links stay pending.
	if invite.RecipientName != nil && invite.Status == models.InviteStatusPending {
		invite.Status = models.InviteStatusAccepted
		invite.AcceptedBy = &userID
		if err := s.repo.UpdateInvite(ctx, invite); err != nil {
			return nil, fmt.Errorf("accept invite: %w", err)
		}
	}
	return group, nil
}

// SetMemberRole promotes or demotes a member. Only the owner can grant
// or revoke ADMIN; the OWNER role itself never moves.
func (s *GroupService) SetMemberRole(ctx context.Context, groupID, userID, targetID uuid.UUID, role models.GroupRole) error {
	if _, err := s.requireRole(ctx, groupID, userID, models.GroupRoleOwner); err != nil {
		return err
	}
	if role != models.GroupRoleAdmin && role != models.GroupRoleMember {
		return unprocessable("role must be ADMIN or MEMBER")
	}
	target, err := s.repo.GetGroupMember(ctx, groupID, targetID)
	if err != nil {
		return fmt.Errorf("load membership: %w", err)
	}
	if target == nil {
		return notFound("member not found")
	}
	if target.Role == models.GroupRoleOwner {
		return conflict("the owner role cannot be changed")
	}
	target.Role = role
	return s.repo.UpdateGroupMember(ctx, target)
}

// GetUserGroups lists the caller's groups.
func (s *GroupService) GetUserGroups(ctx context.Context, userID uuid.UUID) ([]*models.Group, error) {
	return s.repo.GetUserGroups(ctx, userID)
}

// InvitePreview is what an invite link shows before the viewer logs in.
type InvitePreview struct {
	GroupName     string  `json:"group_name"`
	MemberCount   int64   `json:"member_count"`
	RecipientName *string `json:"recipient_name"`
}

// PreviewInvite resolves an invite token to its group without joining.
func (s *GroupService) PreviewInvite(ctx context.Context, token string) (*InvitePreview, error) {
	invite, err := s.repo.GetInviteByToken(ctx, strings.TrimSpace(token))
	if err != nil {
		return nil, fmt.Errorf("load invite: %w", err)
	}
	if invite == nil || invite.Status == models.InviteStatusCancelled {
		return nil, notFound("invite not found")
	}
	if invite.ExpiresAt != nil && s.now().After(*invite.ExpiresAt) {
		return nil, conflict("invite has expired")
	}

	group, err := s.repo.GetGroupByID(ctx, invite.GroupID)
	if err != nil {
		return nil, fmt.Errorf("load group: %w", err)
	}
	count, err := s.repo.CountGroupMembers(ctx, group.ID)
	if err != nil {
		return nil, fmt.Errorf("count members: %w", err)
	}
	return &InvitePreview{
		GroupName:     group.Name,
		MemberCount:   count,
		RecipientName: invite.RecipientName,
	}, nil
}

func (s *GroupService) requireRole(ctx context.Context, groupID, userID uuid.UUID, min models.GroupRole) (*models.GroupMember, error) {
	member, err := s.repo.GetGroupMember(ctx, groupID, userID)
	if err != nil {
		return nil, fmt.Errorf("load membership: %w", err)
	}
	if member == nil {
		return nil, forbidden("not a member of this group")
	}
	if member.Role.Weight() < min.Weight() {
		return nil, forbidden("insufficient role for this action")
	}
	return member, nil
}

func clampVotingHours(hours *int) int {
	if hours == nil {
		return 68
	}
	h := *hours
	if h < minVotingHours {
		return minVotingHours
	}
	if h > maxVotingHours {
		return maxVotingHours
	}
	return h
}

func validTiePolicy(p models.TiePolicy) bool {
	switch p {
	case models.TiePolicyAdminPick, models.TiePolicyRandom, models.TiePolicyEarliest:
		return true
	}
	return false
}

func inviteToken() (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

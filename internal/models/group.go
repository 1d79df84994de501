package models

import (
	"time"

	"github.com/google/uuid"
)

type TiePolicy string

const (
	TiePolicyAdminPick TiePolicy = "ADMIN_PICK"
	TiePolicyRandom    TiePolicy = "RANDOM"
	TiePolicyEarliest  TiePolicy = "EARLIEST"
)

type GroupRole string

const (
	GroupRoleOwner  GroupRole = "OWNER"
	GroupRoleAdmin  GroupRole = "ADMIN"
	GroupRoleMember GroupRole = "MEMBER"
)

// Weight orders roles for permission checks (OWNER > ADMIN > MEMBER).
func (r GroupRole) Weight() int {
	switch r {
	case GroupRoleOwner:
		return 3
	case GroupRoleAdmin:
		return 2
	default:
		return 1
	}
}

type InviteStatus string

const (
	InviteStatusPending   InviteStatus = "pending"
	InviteStatusAccepted  InviteStatus = "accepted"
	InviteStatusCancelled InviteStatus = "cancelled"
)

// Group is a reading circle. Groups are never deleted.
type Group struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name                string    `gorm:"size:80;not null" json:"name"`
	Timezone            string    `gorm:"size:64;not null;default:America/New_York" json:"timezone"`
	OwnerID             uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`
	TiePolicy           TiePolicy `gorm:"size:20;not null;default:ADMIN_PICK" json:"tie_policy"`
	LiveTally           bool      `gorm:"not null;default:true" json:"live_tally"`
	VotingDurationHours int       `gorm:"not null;default:68" json:"voting_duration_hours"`
	CreatedAt           time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Group) TableName() string {
	return "groups"
}

// GroupMember links a user to a group with a role. One row per (group, user).
type GroupMember struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	GroupID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_group_members_group_user" json:"group_id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_group_members_group_user;index" json:"user_id"`
	Role     GroupRole `gorm:"size:20;not null;default:MEMBER" json:"role"`
	JoinedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"joined_at"`
}

func (GroupMember) TableName() string {
	return "group_members"
}

// Invite lets a user join a group by token. Plain invites are shareable
// links; personal invites carry a recipient name and a pending/accepted
// lifecycle.
type Invite struct {
	ID               uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	GroupID          uuid.UUID    `gorm:"type:uuid;not null;index" json:"group_id"`
	Token            string       `gorm:"size:64;not null;uniqueIndex" json:"token"`
	CreatedBy        uuid.UUID    `gorm:"type:uuid;not null" json:"created_by"`
	RecipientName    *string      `gorm:"size:80" json:"recipient_name"`
	RecipientContact *string      `gorm:"size:255" json:"recipient_contact"`
	Status           InviteStatus `gorm:"size:20;not null;default:pending" json:"status"`
	AcceptedBy       *uuid.UUID   `gorm:"type:uuid" json:"accepted_by"`
	ExpiresAt        *time.Time   `json:"expires_at"`
	CreatedAt        time.Time    `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Invite) TableName() string {
	return "invites"
}

// CreateGroupRequest creates a group with the caller as OWNER.
type CreateGroupRequest struct {
	Name                string     `json:"name" binding:"required"`
	Timezone            string     `json:"timezone"`
	TiePolicy           *TiePolicy `json:"tie_policy"`
	LiveTally           *bool      `json:"live_tally"`
	VotingDurationHours *int      `json:"voting_duration_hours"`
}

// UpdateGroupSettingsRequest carries the admin-editable group settings.
// Nil fields are left untouched.
type UpdateGroupSettingsRequest struct {
	VotingDurationHours *int       `json:"voting_duration_hours"`
	TiePolicy           *TiePolicy `json:"tie_policy"`
	LiveTally           *bool      `json:"live_tally"`
}

// CreateInviteRequest creates a shareable or personal invite.
type CreateInviteRequest struct {
	ExpiresInDays    *int    `json:"expires_in_days"`
	RecipientName    *string `json:"recipient_name"`
	RecipientContact *string `json:"recipient_contact"`
}

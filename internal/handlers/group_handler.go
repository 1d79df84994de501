package handlers

import (
	"net/http"

	"reading-club/internal/auth"
	"reading-club/internal/models"
	"reading-club/internal/services"

	"github.com/gin-gonic/gin"
)

type GroupHandler struct {
	groupService *services.GroupService
	weekService  *services.WeekService
}

func NewGroupHandler(groupService *services.GroupService, weekService *services.WeekService) *GroupHandler {
	return &GroupHandler{
		groupService: groupService,
		weekService:  weekService,
	}
}

// CreateGroup creates a group with the caller as owner
// POST /api/groups
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req models.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	group, err := h.groupService.CreateGroup(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, group)
}

// ListGroups lists the caller's groups
// GET /api/groups
func (h *GroupHandler) ListGroups(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	groups, err := h.groupService.GetUserGroups(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"groups": groups})
}

// GetSnapshot returns the full group view, running any due week
// transitions first
// GET /api/groups/:groupId/snapshot
func (h *GroupHandler) GetSnapshot(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	groupID, ok := pathUUID(c, "groupId")
	if !ok {
		return
	}

	snapshot, err := h.weekService.GetGroupSnapshot(c.Request.Context(), groupID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// UpdateSettings applies admin edits to group settings
// PATCH /api/groups/:groupId/settings
func (h *GroupHandler) UpdateSettings(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	groupID, ok := pathUUID(c, "groupId")
	if !ok {
		return
	}

	var req models.UpdateGroupSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	group, err := h.groupService.UpdateGroupSettings(c.Request.Context(), groupID, userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, group)
}

// CreateInvite mints an invite token
// POST /api/groups/:groupId/invites
func (h *GroupHandler) CreateInvite(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	groupID, ok := pathUUID(c, "groupId")
	if !ok {
		return
	}

	var req models.CreateInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	invite, err := h.groupService.CreateInvite(c.Request.Context(), groupID, userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, invite)
}

// ListInvites lists a group's invites for admins
// GET /api/groups/:groupId/invites
func (h *GroupHandler) ListInvites(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	groupID, ok := pathUUID(c, "groupId")
	if !ok {
		return
	}

	invites, err := h.groupService.GetGroupInvites(c.Request.Context(), groupID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invites": invites})
}

// CancelInvite voids a pending invite
// DELETE /api/groups/:groupId/invites/:inviteId
func (h *GroupHandler) CancelInvite(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	groupID, ok := pathUUID(c, "groupId")
	if !ok {
		return
	}
	inviteID, ok := pathUUID(c, "inviteId")
	if !ok {
		return
	}

	if err := h.groupService.CancelInvite(c.Request.Context(), groupID, userID, inviteID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

// PreviewInvite shows what an invite link points at, pre-login
// GET /api/invites/:token
func (h *GroupHandler) PreviewInvite(c *gin.Context) {
	preview, err := h.groupService.PreviewInvite(c.Request.Context(), c.Param("token"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, preview)
}

// JoinGroup redeems an invite token
// POST /api/invites/:token/join
func (h *GroupHandler) JoinGroup(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	group, err := h.groupService.JoinGroupByInvite(c.Request.Context(), userID, c.Param("token"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, group)
}

// SetMemberRole promotes or demotes a member
// PUT /api/groups/:groupId/members/:userId/role
func (h *GroupHandler) SetMemberRole(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	groupID, ok := pathUUID(c, "groupId")
	if !ok {
		return
	}
	targetID, ok := pathUUID(c, "userId")
	if !ok {
		return
	}

	var req struct {
		Role models.GroupRole `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.groupService.SetMemberRole(c.Request.Context(), groupID, userID, targetID, req.Role); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

package handlers

import (
	"errors"
	"io"
	"net/http"

	"reading-club/internal/auth"
	"reading-club/internal/models"
	"reading-club/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type WeekHandler struct {
	weekService *services.WeekService
}

func NewWeekHandler(weekService *services.WeekService) *WeekHandler {
	return &WeekHandler{weekService: weekService}
}

// AddProposal puts a passage on the current ballot
// POST /api/groups/:groupId/proposals
func (h *WeekHandler) AddProposal(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	groupID, ok := pathUUID(c, "groupId")
	if !ok {
		return
	}

	var req models.AddProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	proposal, err := h.weekService.AddProposal(c.Request.Context(), groupID, userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, proposal)
}

// RemoveProposal withdraws a proposal from the ballot
// DELETE /api/groups/:groupId/proposals/:proposalId
func (h *WeekHandler) RemoveProposal(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	groupID, ok := pathUUID(c, "groupId")
	if !ok {
		return
	}
	proposalID, ok := pathUUID(c, "proposalId")
	if !ok {
		return
	}

	if err := h.weekService.RemoveProposal(c.Request.Context(), groupID, userID, proposalID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "removed"})
}

// CastVote records or moves the caller's vote
// POST /api/groups/:groupId/votes
func (h *WeekHandler) CastVote(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	groupID, ok := pathUUID(c, "groupId")
	if !ok {
		return
	}

	var req models.CastVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.weekService.CastVote(c.Request.Context(), groupID, userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ResolveWeek closes voting by admin hand
// POST /api/groups/:groupId/resolve
func (h *WeekHandler) ResolveWeek(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	groupID, ok := pathUUID(c, "groupId")
	if !ok {
		return
	}

	// The body is optional; an empty one resolves by tally
	var req models.ResolveWeekRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	week, err := h.weekService.ResolveCurrentWeek(c.Request.Context(), groupID, userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, week)
}

// RerollSeed swaps a seed proposal for a fresh pick
// POST /api/groups/:groupId/reroll
func (h *WeekHandler) RerollSeed(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	groupID, ok := pathUUID(c, "groupId")
	if !ok {
		return
	}

	var req models.RerollSeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	proposal, err := h.weekService.RerollSeedProposal(c.Request.Context(), groupID, userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, proposal)
}

// StartNewVote opens the next round after resolution
// POST /api/groups/:groupId/start-new-vote
func (h *WeekHandler) StartNewVote(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	groupID, ok := pathUUID(c, "groupId")
	if !ok {
		return
	}

	week, err := h.weekService.StartNewVote(c.Request.Context(), groupID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, week)
}

// TriggerRollover runs the overdue-week sweep, across all groups or
// scoped to one with ?group_id=
// POST /api/cron/rollover
func (h *WeekHandler) TriggerRollover(c *gin.Context) {
	var groupID *uuid.UUID
	if raw := c.Query("group_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group_id"})
			return
		}
		groupID = &id
	}

	result, err := h.weekService.RunWeeklyRollover(c.Request.Context(), groupID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

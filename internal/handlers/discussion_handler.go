package handlers

import (
	"net/http"

	"reading-club/internal/auth"
	"reading-club/internal/models"
	"reading-club/internal/services"

	"github.com/gin-gonic/gin"
)

type DiscussionHandler struct {
	discussionService *services.DiscussionService
}

func NewDiscussionHandler(discussionService *services.DiscussionService) *DiscussionHandler {
	return &DiscussionHandler{discussionService: discussionService}
}

// CreateComment posts a comment or reply on a reading item
// POST /api/readings/:itemId/comments
func (h *DiscussionHandler) CreateComment(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	itemID, ok := pathUUID(c, "itemId")
	if !ok {
		return
	}

	var req models.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := h.discussionService.CreateComment(c.Request.Context(), userID, itemID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// GetComments returns a reading item's thread
// GET /api/readings/:itemId/comments
func (h *DiscussionHandler) GetComments(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	itemID, ok := pathUUID(c, "itemId")
	if !ok {
		return
	}

	thread, err := h.discussionService.GetComments(c.Request.Context(), userID, itemID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": thread})
}

// EditComment rewrites a comment within its edit window
// PATCH /api/comments/:commentId
func (h *DiscussionHandler) EditComment(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	commentID, ok := pathUUID(c, "commentId")
	if !ok {
		return
	}

	var req models.EditCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := h.discussionService.EditComment(c.Request.Context(), userID, commentID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

// DeleteComment removes a comment
// DELETE /api/comments/:commentId
func (h *DiscussionHandler) DeleteComment(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	commentID, ok := pathUUID(c, "commentId")
	if !ok {
		return
	}

	if err := h.discussionService.DeleteComment(c.Request.Context(), userID, commentID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// CommentOnProposal posts to a proposal's flat discussion
// POST /api/proposals/:proposalId/comments
func (h *DiscussionHandler) CommentOnProposal(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	proposalID, ok := pathUUID(c, "proposalId")
	if !ok {
		return
	}

	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := h.discussionService.CommentOnProposal(c.Request.Context(), userID, proposalID, req.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// GetProposalComments returns a proposal's discussion and marks it read
// GET /api/proposals/:proposalId/comments
func (h *DiscussionHandler) GetProposalComments(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	proposalID, ok := pathUUID(c, "proposalId")
	if !ok {
		return
	}

	comments, err := h.discussionService.GetProposalComments(c.Request.Context(), userID, proposalID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

// CreateAnnotation pins a note to a verse range
// POST /api/readings/:itemId/annotations
func (h *DiscussionHandler) CreateAnnotation(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	itemID, ok := pathUUID(c, "itemId")
	if !ok {
		return
	}

	var req models.CreateAnnotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	annotation, err := h.discussionService.CreateAnnotation(c.Request.Context(), userID, itemID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, annotation)
}

// GetAnnotations returns a reading item's annotations with replies
// GET /api/readings/:itemId/annotations
func (h *DiscussionHandler) GetAnnotations(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	itemID, ok := pathUUID(c, "itemId")
	if !ok {
		return
	}

	annotations, err := h.discussionService.GetAnnotations(c.Request.Context(), userID, itemID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"annotations": annotations})
}

// ReplyToAnnotation posts a reply under an annotation
// POST /api/annotations/:annotationId/replies
func (h *DiscussionHandler) ReplyToAnnotation(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	annotationID, ok := pathUUID(c, "annotationId")
	if !ok {
		return
	}

	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reply, err := h.discussionService.ReplyToAnnotation(c.Request.Context(), userID, annotationID, req.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, reply)
}

// SetReadMark upserts the caller's read status
// PUT /api/readings/:itemId/read-mark
func (h *DiscussionHandler) SetReadMark(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	itemID, ok := pathUUID(c, "itemId")
	if !ok {
		return
	}

	var req models.SetReadMarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	mark, err := h.discussionService.SetReadMark(c.Request.Context(), userID, itemID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mark)
}

package handler

import (
	"net/http"

	"flatgripe/backend/internal/complaint"
	"flatgripe/backend/internal/models"
	"flatgripe/backend/internal/utils"

	"github.com/gin-gonic/gin"
)

type createComplaintRequest struct {
	Title       string               `json:"title" binding:"required"`
	Description string               `json:"description" binding:"required"`
	Type        models.ComplaintType `json:"type" binding:"required"`
	Severity    models.Severity      `json:"severity" binding:"required"`
}

type voteRequest struct {
	VoteType models.VoteType `json:"voteType" binding:"required"`
}

func (h *Handler) ListComplaints(c *gin.Context) {
	_, flatID := caller(c)
	complaints, err := h.Complaints.ListComplaints(c.Request.Context(), flatID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, complaints)
}

func (h *Handler) CreateComplaint(c *gin.Context) {
	var req createComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, utils.NewValidationError("title, description, type and severity are required"))
		return
	}

	userID, flatID := caller(c)
	created, err := h.Complaints.FileComplaint(c.Request.Context(), complaint.NewComplaint{
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
		Severity:    req.Severity,
		UserID:      userID,
		FlatID:      flatID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) ResolveComplaint(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	userID, _ := caller(c)
	resolved, err := h.Complaints.Resolve(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resolved)
}

func (h *Handler) VoteComplaint(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	var req voteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, utils.NewValidationError("voteType is required"))
		return
	}

	userID, _ := caller(c)
	updated, err := h.Complaints.CastVote(c.Request.Context(), id, userID, req.VoteType)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// ArchiveComplaints runs the archival sweep on demand.
func (h *Handler) ArchiveComplaints(c *gin.Context) {
	archived, err := h.Complaints.ArchiveStale(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"archived": archived})
}

func (h *Handler) Leaderboard(c *gin.Context) {
	_, flatID := caller(c)
	users, err := h.Complaints.GetLeaderboard(c.Request.Context(), flatID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *Handler) Stats(c *gin.Context) {
	_, flatID := caller(c)
	stats, err := h.Complaints.GetStats(c.Request.Context(), flatID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) Health(c *gin.Context) {
	if err := h.Store.Ping(c.Request.Context()); err != nil {
		h.Log.Error().Err(err).Msg("health check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

package handlers

import (
	"net/http"
	"strconv"

	"github.com/ArowuTest/giveaway-draw-backend/internal/models"
	"github.com/ArowuTest/giveaway-draw-backend/internal/services"
	"github.com/ArowuTest/giveaway-draw-backend/internal/utils"
	"github.com/gin-gonic/gin"
)

// GiveawayHandler handles giveaway administration and the public giveaway listing
type GiveawayHandler struct {
	giveaways services.GiveawayManager
}

// NewGiveawayHandler creates a new GiveawayHandler
func NewGiveawayHandler(giveaways services.GiveawayManager) *GiveawayHandler {
	return &GiveawayHandler{giveaways: giveaways}
}

// UpdateStatusRequest is the body of PATCH /giveaways/:id/status
type UpdateStatusRequest struct {
	Status models.GiveawayStatus `json:"status" binding:"required"`
}

// CreateGiveaway handles POST /giveaways
func (h *GiveawayHandler) CreateGiveaway(c *gin.Context) {
	var giveaway models.Giveaway
	if err := c.ShouldBindJSON(&giveaway); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.giveaways.CreateGiveaway(c.Request.Context(), &giveaway, adminID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// ListGiveaways handles GET /giveaways?status=&page=&limit=
func (h *GiveawayHandler) ListGiveaways(c *gin.Context) {
	page, limit := utils.ParsePagination(c.Query("page"), c.Query("limit"))
	result, err := h.giveaways.ListGiveaways(c.Request.Context(), models.GiveawayListFilter{
		Status: models.GiveawayStatus(c.Query("status")),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListActiveGiveaways handles GET /giveaways/active
func (h *GiveawayHandler) ListActiveGiveaways(c *gin.Context) {
	giveaways, err := h.giveaways.ListActiveGiveaways(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"giveaways": giveaways})
}

// GetGiveaway handles GET /giveaways/:id
func (h *GiveawayHandler) GetGiveaway(c *gin.Context) {
	id, ok := parseObjectID(c, "id")
	if !ok {
		return
	}
	giveaway, err := h.giveaways.GetGiveaway(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, giveaway)
}

// UpdateStatus handles PATCH /giveaways/:id/status
func (h *GiveawayHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseObjectID(c, "id")
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	giveaway, err := h.giveaways.UpdateStatus(c.Request.Context(), id, req.Status, adminID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, giveaway)
}

// DeleteGiveaway handles DELETE /giveaways/:id
func (h *GiveawayHandler) DeleteGiveaway(c *gin.Context) {
	id, ok := parseObjectID(c, "id")
	if !ok {
		return
	}
	if err := h.giveaways.DeleteGiveaway(c.Request.Context(), id, adminID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Giveaway deleted successfully"})
}

// GetEligibleParticipants handles GET /giveaways/:id/eligible
func (h *GiveawayHandler) GetEligibleParticipants(c *gin.Context) {
	id, ok := parseObjectID(c, "id")
	if !ok {
		return
	}
	participants, err := h.giveaways.EligibleParticipants(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"participants": participants, "count": len(participants)})
}

// GetEvents handles GET /giveaways/:id/events?limit=
func (h *GiveawayHandler) GetEvents(c *gin.Context) {
	id, ok := parseObjectID(c, "id")
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	events, err := h.giveaways.ListEvents(c.Request.Context(), id, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

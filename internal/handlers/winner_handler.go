package handlers

import (
	"net/http"

	"github.com/ArowuTest/giveaway-draw-backend/internal/models"
	"github.com/ArowuTest/giveaway-draw-backend/internal/services"
	"github.com/ArowuTest/giveaway-draw-backend/internal/utils"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WinnerHandler handles winner administration and manual selection
type WinnerHandler struct {
	winners   services.WinnerManager
	overrides services.OverrideManager
}

// NewWinnerHandler creates a new WinnerHandler
func NewWinnerHandler(winners services.WinnerManager, overrides services.OverrideManager) *WinnerHandler {
	return &WinnerHandler{winners: winners, overrides: overrides}
}

// ManualSelectBody is the body of POST /giveaways/:id/winners/manual
type ManualSelectBody struct {
	UserID               string `json:"userId" binding:"required"`
	PrizeIndex           *int   `json:"prizeIndex" binding:"required"`
	SkipEligibilityCheck bool   `json:"skipEligibilityCheck"`
}

// UpdatePrizeBody is the body of PATCH /winners/:id/prize
type UpdatePrizeBody struct {
	PrizeIndex *int `json:"prizeIndex" binding:"required"`
}

// ListWinners handles GET /giveaways/:id/winners?deliveryStatus=&page=&limit=
func (h *WinnerHandler) ListWinners(c *gin.Context) {
	id, ok := parseObjectID(c, "id")
	if !ok {
		return
	}
	page, limit := utils.ParsePagination(c.Query("page"), c.Query("limit"))
	result, err := h.winners.ListWinners(c.Request.Context(), models.WinnerListFilter{
		GiveawayID:     id,
		DeliveryStatus: models.DeliveryStatus(c.Query("deliveryStatus")),
		Page:           page,
		Limit:          limit,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetCapacity handles GET /giveaways/:id/capacity
func (h *WinnerHandler) GetCapacity(c *gin.Context) {
	id, ok := parseObjectID(c, "id")
	if !ok {
		return
	}
	capacity, err := h.winners.RemainingCapacity(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"prizes": capacity})
}

// ManualSelect handles POST /giveaways/:id/winners/manual
func (h *WinnerHandler) ManualSelect(c *gin.Context) {
	giveawayID, ok := parseObjectID(c, "id")
	if !ok {
		return
	}
	var body ManualSelectBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID, err := primitive.ObjectIDFromHex(body.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid userId format"})
		return
	}

	winner, err := h.overrides.ManualSelect(c.Request.Context(), models.ManualSelectRequest{
		GiveawayID:           giveawayID,
		UserID:               userID,
		PrizeIndex:           *body.PrizeIndex,
		SkipEligibilityCheck: body.SkipEligibilityCheck,
		AdminID:              adminID(c),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, winner)
}

// GetWinner handles GET /winners/:id
func (h *WinnerHandler) GetWinner(c *gin.Context) {
	id, ok := parseObjectID(c, "id")
	if !ok {
		return
	}
	winner, err := h.winners.GetWinner(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, winner)
}

// UpdateWinner handles PATCH /winners/:id
func (h *WinnerHandler) UpdateWinner(c *gin.Context) {
	id, ok := parseObjectID(c, "id")
	if !ok {
		return
	}
	var update models.WinnerUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	winner, err := h.winners.UpdateMetadata(c.Request.Context(), id, update, adminID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, winner)
}

// UpdatePrize handles PATCH /winners/:id/prize
func (h *WinnerHandler) UpdatePrize(c *gin.Context) {
	id, ok := parseObjectID(c, "id")
	if !ok {
		return
	}
	var body UpdatePrizeBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	winner, err := h.winners.UpdatePrize(c.Request.Context(), id, *body.PrizeIndex, adminID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, winner)
}

// ReplaceWinner handles POST /winners/:id/replace
func (h *WinnerHandler) ReplaceWinner(c *gin.Context) {
	id, ok := parseObjectID(c, "id")
	if !ok {
		return
	}
	result, err := h.winners.Replace(c.Request.Context(), id, adminID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// RemoveWinner handles DELETE /winners/:id
func (h *WinnerHandler) RemoveWinner(c *gin.Context) {
	id, ok := parseObjectID(c, "id")
	if !ok {
		return
	}
	if err := h.winners.Remove(c.Request.Context(), id, adminID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Winner removed successfully"})
}

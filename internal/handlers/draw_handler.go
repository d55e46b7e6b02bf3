package handlers

import (
	"net/http"

	"github.com/ArowuTest/giveaway-draw-backend/internal/apperror"
	"github.com/ArowuTest/giveaway-draw-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// DrawHandler handles draw-related HTTP requests
type DrawHandler struct {
	drawRunner services.DrawRunner
}

// NewDrawHandler creates a new DrawHandler
func NewDrawHandler(drawRunner services.DrawRunner) *DrawHandler {
	return &DrawHandler{drawRunner: drawRunner}
}

// ExecuteDraw handles POST /giveaways/:id/draw
func (h *DrawHandler) ExecuteDraw(c *gin.Context) {
	id, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	result, err := h.drawRunner.Draw(c.Request.Context(), id, adminID(c))
	if err != nil {
		if result != nil {
			// The draw committed but stopped early; return what was allocated.
			_ = c.Error(err)
			c.JSON(statusFor(err), gin.H{"error": "Draw stopped before all prizes were allocated: " + apperror.Message(err), "draw_details": result})
			return
		}
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Draw executed successfully", "draw_details": result})
}

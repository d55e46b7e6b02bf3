package handlers

import (
	"net/http"

	"github.com/ArowuTest/giveaway-draw-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// DashboardHandler serves the public dashboard
type DashboardHandler struct {
	dashboard services.DashboardBuilder
}

func NewDashboardHandler(dashboard services.DashboardBuilder) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// GetDashboard handles GET /dashboard
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	dash, err := h.dashboard.Build(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dash)
}

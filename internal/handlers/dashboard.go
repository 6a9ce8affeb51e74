package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Mathew1327/Construction-tracker/internal/services"
	"github.com/Mathew1327/Construction-tracker/pkg/response"
)

type DashboardHandler struct {
	dashboard *services.DashboardService
}

func NewDashboardHandler(dashboard *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// GET /api/dashboard/stats
func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, err := h.dashboard.Stats(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, stats)
}

// GET /api/dashboard/activities
func (h *DashboardHandler) Activities(c *gin.Context) {
	activities, err := h.dashboard.RecentActivities(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, activities)
}

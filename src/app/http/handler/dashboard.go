package handler

import (
	"github.com/gin-gonic/gin"

	"malayalees/src/app/http/response"
	"malayalees/src/app/middleware"
	"malayalees/src/core/usecase"
)

// DashboardHandler serves the admin dashboard counters.
type DashboardHandler struct {
	dashboardService *usecase.DashboardService
}

func NewDashboardHandler(dashboardService *usecase.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// Stats returns event, attendee and media counts for the tenant.
// GET /v1/admin/dashboard
func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, err := h.dashboardService.Stats(c.Request.Context(), middleware.GetTenantID(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, stats)
}

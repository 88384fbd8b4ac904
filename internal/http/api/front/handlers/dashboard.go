package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/syariahos/syariahos-api/internal/dashboard"
	"github.com/syariahos/syariahos-api/internal/http/api/middleware"
	"github.com/syariahos/syariahos-api/internal/http/api/present"
	"github.com/syariahos/syariahos-api/internal/http/api/respond"
)

// DashboardHandler serves the caller's dashboard.
type DashboardHandler struct {
	dashboard *dashboard.Service
}

// NewDashboardHandler constructs a DashboardHandler.
func NewDashboardHandler(svc *dashboard.Service) *DashboardHandler {
	return &DashboardHandler{dashboard: svc}
}

// Summary returns KPIs, goals, categories and the weekly trend.
func (h *DashboardHandler) Summary(c *gin.Context) {
	summary, errSummary := h.dashboard.Summary(c.Request.Context(), middleware.CurrentUserID(c))
	if errSummary != nil {
		respond.Error(c, errSummary)
		return
	}
	c.JSON(http.StatusOK, present.Summary(summary))
}

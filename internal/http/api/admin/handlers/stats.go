package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/syariahos/syariahos-api/internal/http/api/present"
	"github.com/syariahos/syariahos-api/internal/http/api/respond"
	"github.com/syariahos/syariahos-api/internal/stats"
)

// StatsHandler serves platform statistics.
type StatsHandler struct {
	stats *stats.Service
}

// NewStatsHandler constructs a StatsHandler.
func NewStatsHandler(svc *stats.Service) *StatsHandler {
	return &StatsHandler{stats: svc}
}

// Platform returns the platform-wide counters.
func (h *StatsHandler) Platform(c *gin.Context) {
	platform, errStats := h.stats.Platform(c.Request.Context())
	if errStats != nil {
		respond.Error(c, errStats)
		return
	}
	c.JSON(http.StatusOK, present.Platform(platform))
}

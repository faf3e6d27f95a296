package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// dashboardStats handles GET /api/dashboard/stats. Read-only; every request
// recomputes the aggregates from scratch.
func (h *Handler) dashboardStats(c *gin.Context) {
	d, err := h.reports.Dashboard(c.Request.Context())
	if err != nil {
		respondInternal(c, err)
		return
	}
	respond(c, http.StatusOK, "Dashboard stats fetched successfully", d)
}

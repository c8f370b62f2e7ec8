package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/fetan/fetan_admin/internal/flash"
	"github.com/fetan/fetan_admin/internal/service"
	"github.com/fetan/fetan_admin/pkg/fetanapi"
)

// DashboardHandler serves the landing page.
type DashboardHandler struct {
	shell     *Shell
	dashboard *service.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(shell *Shell, dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{shell: shell, dashboard: dashboard}
}

// Show renders the statistics. A failed fetch shows zeroes and a toast.
func (h *DashboardHandler) Show(c *gin.Context) {
	stats, err := h.dashboard.Stats(c.Request.Context(), sessionOf(c).Client())
	if err != nil {
		if fetanapi.IsUnauthorized(err) {
			h.shell.Expire(c)
			return
		}
		log.Error().Err(err).Msg("Failed to fetch dashboard data")
		h.shell.Notify(c, flash.Error, fetanapi.Message(err, "Failed to load dashboard"))
	}
	h.shell.Render(c, http.StatusOK, "dashboard.html", "Dashboard", "dashboard", stats)
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/fetan/fetan_admin/internal/flash"
	"github.com/fetan/fetan_admin/internal/models"
	"github.com/fetan/fetan_admin/internal/service"
)

// ActivityView is the data of the activity page.
type ActivityView struct {
	Enabled bool
	Entries []models.Activity
}

// ActivityHandler lists recent console mutations.
type ActivityHandler struct {
	shell    *Shell
	activity *service.ActivityService
}

// NewActivityHandler creates a new ActivityHandler.
func NewActivityHandler(shell *Shell, activity *service.ActivityService) *ActivityHandler {
	return &ActivityHandler{shell: shell, activity: activity}
}

// List renders the most recent entries.
func (h *ActivityHandler) List(c *gin.Context) {
	entries, err := h.activity.Recent(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list activity")
		h.shell.Notify(c, flash.Error, "Failed to load activity")
		entries = nil
	}
	h.shell.Render(c, http.StatusOK, "activity.html", "Activity", "activity", ActivityView{
		Enabled: h.activity.Enabled(),
		Entries: entries,
	})
}

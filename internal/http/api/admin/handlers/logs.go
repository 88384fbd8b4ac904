package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/syariahos/syariahos-api/internal/activity"
	"github.com/syariahos/syariahos-api/internal/http/api/present"
	"github.com/syariahos/syariahos-api/internal/http/api/respond"
	"github.com/syariahos/syariahos-api/internal/validation"
)

// LogsHandler serves the activity log viewer.
type LogsHandler struct {
	recorder *activity.Recorder
}

// NewLogsHandler constructs a LogsHandler.
func NewLogsHandler(recorder *activity.Recorder) *LogsHandler {
	return &LogsHandler{recorder: recorder}
}

// List returns a page of activity logs.
func (h *LogsHandler) List(c *gin.Context) {
	filter := activity.Filter{Action: c.Query("action")}
	filter.Page, _ = strconv.Atoi(c.Query("page"))
	filter.PerPage, _ = strconv.Atoi(c.Query("per_page"))
	if raw := strings.TrimSpace(c.Query("user_id")); raw != "" {
		userID, errParse := strconv.ParseUint(raw, 10, 64)
		if errParse != nil {
			respond.Invalid(c, validation.Field("user_id", "The user id field must be an integer."))
			return
		}
		filter.UserID = &userID
	}
	page, errList := h.recorder.List(c.Request.Context(), filter)
	if errList != nil {
		respond.Error(c, errList)
		return
	}
	c.JSON(http.StatusOK, present.ActivityPage(page))
}

// Actions returns the distinct logged actions.
func (h *LogsHandler) Actions(c *gin.Context) {
	actions, errActions := h.recorder.Actions(c.Request.Context())
	if errActions != nil {
		respond.Error(c, errActions)
		return
	}
	if actions == nil {
		actions = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"actions": actions})
}

package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"sagesilk/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	errFromInvalid = "invalid 'from' time; use RFC3339 or YYYY-MM-DD"
	errToInvalid   = "invalid 'to' time; use RFC3339 or YYYY-MM-DD"

	layoutDateTime = "2006-01-02 15:04:05"
	layoutDate     = "2006-01-02"
)

func isDateOnly(s string) bool {
	return !strings.ContainsAny(s, "T ")
}

// @Summary      List the caller's auth audit events
// @Description  Only events recorded for the logged-in username are returned. Filter by date (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD'). A date-only 'to' is end-of-day inclusive.
// @Tags         audit
// @Produce      json
// @Param        from  query   string  false  "Start of range"  example(2025-08-01)
// @Param        to    query   string  false  "End of range. Date-only treated as end of day."  example(2025-08-31)
// @Param        type  query   string  false  "Event type"  Enums(SIGNUP,LOGIN,LOGIN_FAILED,LOGOUT)
// @Success      200   {object}  map[string]interface{}  "count, events"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/audit [get]
func (h *Handler) getAudit(c *gin.Context) {
	var (
		from, to  time.Time
		eventType = strings.ToUpper(strings.TrimSpace(c.Query("type")))
		err       error
	)
	if qs := c.Query("from"); qs != "" {
		if from, err = parseQueryTime(qs); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errFromInvalid})
			return
		}
	}
	if qs := c.Query("to"); qs != "" {
		if to, err = parseQueryTime(qs); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errToInvalid})
			return
		}
		if isDateOnly(qs) {
			to = to.Add(24*time.Hour - time.Nanosecond).UTC()
		}
	}

	owner := identityFrom(c).Username
	events, err := h.services.AuditLog.List(c.Request.Context(), service.LogFilter{
		From: from, To: to, Type: eventType, Username: owner,
	})
	if err != nil {
		switch service.KindOf(err) {
		case service.KindValidation:
			c.JSON(http.StatusBadRequest, gin.H{"error": "'from' must be <= 'to'"})
			return
		case service.KindAuthentication:
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to load audit log", "audit_list_failed", err,
			"from", from, "to", to, "type", eventType, "user", owner)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":  len(events),
		"events": events,
	})
}

func parseQueryTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, layoutDateTime, layoutDate} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time format %q", s)
}

package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"sais/internal/alert"
	"sais/internal/auth"
)

func (h *Handler) listAlerts(c *gin.Context) {
	unreadOnly := c.Query("unread_only") == "true"
	alerts, err := h.alerts.List(c.Request.Context(), auth.UserID(c), unreadOnly)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}

// refreshAlerts runs the classifier synchronously instead of queueing,
// so the caller gets the fresh list back in one round trip.
func (h *Handler) refreshAlerts(c *gin.Context) {
	alerts, err := h.alerts.Refresh(c.Request.Context(), auth.UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}

func (h *Handler) markAlertRead(c *gin.Context) {
	err := h.alerts.MarkRead(c.Request.Context(), auth.UserID(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, alert.ErrAlertNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "alert not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"read": true})
}

package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"sais/internal/attendance"
	"sais/internal/auth"
	"sais/internal/queue"
)

func (h *Handler) createSubject(c *gin.Context) {
	var req struct {
		Name string  `json:"name" binding:"required"`
		Code *string `json:"code"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sub, err := h.att.CreateSubject(c.Request.Context(), auth.UserID(c), req.Name, req.Code)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, sub)
}

func (h *Handler) listSubjects(c *gin.Context) {
	subjects, err := h.att.ListSubjects(c.Request.Context(), auth.UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"subjects": subjects})
}

func (h *Handler) updateSubject(c *gin.Context) {
	var req struct {
		Name string  `json:"name" binding:"required"`
		Code *string `json:"code"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	err := h.att.UpdateSubject(c.Request.Context(), auth.UserID(c), c.Param("id"), req.Name, req.Code)
	if h.respondSubjectErr(c, err) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true})
}

func (h *Handler) deleteSubject(c *gin.Context) {
	err := h.att.DeleteSubject(c.Request.Context(), auth.UserID(c), c.Param("id"))
	if h.respondSubjectErr(c, err) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) markAttendance(c *gin.Context) {
	var req struct {
		SubjectID string  `json:"subject_id" binding:"required"`
		ClassDate string  `json:"class_date" binding:"required"`
		Status    string  `json:"status" binding:"required"`
		Notes     *string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	classDate, err := parseDate(req.ClassDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "class_date must be YYYY-MM-DD"})
		return
	}

	userID := auth.UserID(c)
	rec, err := h.att.Mark(c.Request.Context(), userID, req.SubjectID, classDate, attendance.Status(req.Status), req.Notes)
	if h.respondSubjectErr(c, err) {
		return
	}

	// A mark can change the risk picture; let the worker re-derive alerts.
	h.enqueue(c, queue.TypeAlertRefresh, userID)
	c.JSON(http.StatusCreated, rec)
}

func (h *Handler) attendanceSummary(c *gin.Context) {
	summaries, err := h.att.Summaries(c.Request.Context(), auth.UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"summaries": summaries})
}

func (h *Handler) attendanceHistory(c *gin.Context) {
	limit := 100
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	records, err := h.att.History(c.Request.Context(), auth.UserID(c), c.Param("subjectID"), limit)
	if h.respondSubjectErr(c, err) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}

func (h *Handler) recoveryPlan(c *gin.Context) {
	plan, err := h.att.RecoveryPlan(c.Request.Context(), auth.UserID(c), c.Param("subjectID"))
	if err != nil {
		if errors.Is(err, attendance.ErrNoData) {
			c.JSON(http.StatusOK, gin.H{"insufficient_data": true, "message": "no attendance records yet"})
			return
		}
		if h.respondSubjectErr(c, err) {
			return
		}
	}
	c.JSON(http.StatusOK, plan)
}

func (h *Handler) projection(c *gin.Context) {
	remaining := h.cfg.RemainingClasses
	if v := c.Query("remaining"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			remaining = parsed
		}
	}
	proj, err := h.att.Projection(c.Request.Context(), auth.UserID(c), c.Param("subjectID"), remaining)
	if err != nil {
		if errors.Is(err, attendance.ErrNoData) {
			c.JSON(http.StatusOK, gin.H{"insufficient_data": true, "message": "no attendance records yet"})
			return
		}
		if h.respondSubjectErr(c, err) {
			return
		}
	}
	c.JSON(http.StatusOK, proj)
}

// respondSubjectErr writes the response for subject-scoped failures and
// reports whether it handled one.
func (h *Handler) respondSubjectErr(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, attendance.ErrSubjectNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "subject not found"})
		return true
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	return true
}

package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"sais/internal/auth"
	"sais/internal/planner"
	"sais/internal/queue"
)

func (h *Handler) createAssignment(c *gin.Context) {
	var req struct {
		Title       string  `json:"title" binding:"required"`
		Subject     *string `json:"subject"`
		TaskType    string  `json:"task_type"`
		Description *string `json:"description"`
		Deadline    *string `json:"deadline"`
		Priority    string  `json:"priority"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var deadline *time.Time
	if req.Deadline != nil && *req.Deadline != "" {
		t, err := time.Parse(time.RFC3339, *req.Deadline)
		if err != nil {
			t, err = parseDate(*req.Deadline)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "deadline must be RFC3339 or YYYY-MM-DD"})
				return
			}
		}
		deadline = &t
	}

	userID := auth.UserID(c)
	a, err := h.plans.CreateAssignment(c.Request.Context(), planner.Assignment{
		UserID:      userID,
		Title:       req.Title,
		Subject:     req.Subject,
		TaskType:    req.TaskType,
		Description: req.Description,
		Deadline:    deadline,
		Priority:    req.Priority,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.enqueue(c, queue.TypeAlertRefresh, userID)
	c.JSON(http.StatusCreated, a)
}

func (h *Handler) listAssignments(c *gin.Context) {
	assignments, err := h.plans.ListAssignments(c.Request.Context(), auth.UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"assignments": assignments})
}

func (h *Handler) updateAssignmentStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := auth.UserID(c)
	err := h.plans.UpdateAssignmentStatus(c.Request.Context(), userID, c.Param("id"), planner.AssignmentStatus(req.Status))
	if err != nil {
		if errors.Is(err, planner.ErrAssignmentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "assignment not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.enqueue(c, queue.TypeAlertRefresh, userID)
	c.JSON(http.StatusOK, gin.H{"updated": true})
}

func (h *Handler) deleteAssignment(c *gin.Context) {
	err := h.plans.DeleteAssignment(c.Request.Context(), auth.UserID(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, planner.ErrAssignmentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "assignment not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) createActivity(c *gin.Context) {
	var req struct {
		Title        string  `json:"title" binding:"required"`
		Category     *string `json:"category"`
		ActivityDate string  `json:"activity_date" binding:"required"`
		StartTime    *string `json:"start_time"`
		EndTime      *string `json:"end_time"`
		Location     *string `json:"location"`
		Description  *string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	activityDate, err := parseDate(req.ActivityDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "activity_date must be YYYY-MM-DD"})
		return
	}

	userID := auth.UserID(c)
	a, err := h.plans.CreateActivity(c.Request.Context(), planner.Activity{
		UserID:       userID,
		Title:        req.Title,
		Category:     req.Category,
		ActivityDate: activityDate,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Location:     req.Location,
		Description:  req.Description,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.enqueue(c, queue.TypeAlertRefresh, userID)
	c.JSON(http.StatusCreated, a)
}

func (h *Handler) listActivities(c *gin.Context) {
	activities, err := h.plans.ListActivities(c.Request.Context(), auth.UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"activities": activities})
}

func (h *Handler) deleteActivity(c *gin.Context) {
	err := h.plans.DeleteActivity(c.Request.Context(), auth.UserID(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, planner.ErrActivityNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "activity not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) refreshConflicts(c *gin.Context) {
	changed, err := h.plans.RefreshConflicts(c.Request.Context(), auth.UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"changed": changed})
}

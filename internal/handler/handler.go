package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"sais/internal/alert"
	"sais/internal/attendance"
	"sais/internal/auth"
	"sais/internal/config"
	"sais/internal/planner"
	"sais/internal/queue"
	"sais/internal/store"
	"sais/internal/user"
)

// Handler wires the engine services to the HTTP surface. Every route is a
// thin adapter: parse, call a service with the authenticated user id,
// marshal.
type Handler struct {
	cfg    config.App
	log    *logrus.Logger
	users  *user.Repository
	att    *attendance.Service
	plans  *planner.Service
	alerts *alert.Service
	q      queue.Queue
	db     *store.DB
	redis  *store.Redis
}

// New creates a handler.
func New(cfg config.App, log *logrus.Logger, users *user.Repository, att *attendance.Service,
	plans *planner.Service, alerts *alert.Service, q queue.Queue, db *store.DB, redis *store.Redis) *Handler {
	return &Handler{cfg: cfg, log: log, users: users, att: att, plans: plans, alerts: alerts, q: q, db: db, redis: redis}
}

// Register mounts all routes on the engine.
func (h *Handler) Register(r *gin.Engine) {
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", h.healthz)

	r.POST("/v1/auth/register", h.register)
	r.POST("/v1/auth/login", h.login)
	r.POST("/v1/auth/refresh", h.refresh)

	v1 := r.Group("/v1", auth.UserAuth(h.cfg.JWTSigningKey, h.cfg.JWTIssuer))

	v1.POST("/subjects", h.createSubject)
	v1.GET("/subjects", h.listSubjects)
	v1.PUT("/subjects/:id", h.updateSubject)
	v1.DELETE("/subjects/:id", h.deleteSubject)

	v1.POST("/attendance/mark", h.markAttendance)
	v1.GET("/attendance/summary", h.attendanceSummary)
	v1.GET("/attendance/history/:subjectID", h.attendanceHistory)
	v1.GET("/attendance/recovery/:subjectID", h.recoveryPlan)
	v1.GET("/attendance/projection/:subjectID", h.projection)

	v1.POST("/assignments", h.createAssignment)
	v1.GET("/assignments", h.listAssignments)
	v1.PATCH("/assignments/:id/status", h.updateAssignmentStatus)
	v1.DELETE("/assignments/:id", h.deleteAssignment)

	v1.POST("/activities", h.createActivity)
	v1.GET("/activities", h.listActivities)
	v1.DELETE("/activities/:id", h.deleteActivity)
	v1.POST("/activities/refresh-conflicts", h.refreshConflicts)

	v1.GET("/alerts", h.listAlerts)
	v1.POST("/alerts/refresh", h.refreshAlerts)
	v1.POST("/alerts/:id/read", h.markAlertRead)
}

func (h *Handler) healthz(c *gin.Context) {
	redisHealthy := h.redis.Healthy(c.Request.Context())
	dbHealthy := h.db != nil && h.db.Client != nil && h.db.Client.PingContext(c.Request.Context()) == nil
	status := http.StatusOK
	if !redisHealthy || !dbHealthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"status": "ok", "redis": redisHealthy, "db": dbHealthy})
}

// enqueue publishes a refresh message; the API never blocks user writes on
// downstream recomputation.
func (h *Handler) enqueue(c *gin.Context, msgType, userID string) {
	if h.q == nil {
		return
	}
	if err := h.q.Publish(c.Request.Context(), queue.Message{Type: msgType, Body: userID}); err != nil {
		h.log.WithError(err).Warn("queue publish failed")
	}
}

func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

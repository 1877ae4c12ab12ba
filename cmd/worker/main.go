package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"sais/internal/alert"
	"sais/internal/attendance"
	"sais/internal/config"
	"sais/internal/logger"
	"sais/internal/planner"
	"sais/internal/queue"
	"sais/internal/store"
	"sais/internal/user"
)

// The worker owns everything the API defers: queue-driven refreshes for
// single users plus the cron sweeps that keep all users current.
func main() {
	cfg := config.Load()
	log := logger.New(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("shutdown signal received")
		cancel()
	}()

	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("db connect failed")
	}
	defer db.Close()

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "sais:refresh")
	}

	cache := store.NewSummaryCache(redisClient, cfg.SummaryCacheTTL, log)
	users := user.NewRepository(db.Client)
	att := attendance.NewService(attendance.NewRepository(db.Client), cache)
	plans := planner.NewService(planner.NewRepository(db.Client), cfg.ConflictWindowDays, log)
	alerts := alert.NewService(alert.NewRepository(db.Client), att, plans, cfg.ConflictWindowDays, log)

	w := &worker{log: log, users: users, plans: plans, alerts: alerts}

	c := cron.New()
	mustSchedule(c, log, cfg.CronAlertRefresh, "alert refresh", func() { w.refreshAll(ctx) })
	mustSchedule(c, log, cfg.CronOverdueSweep, "overdue sweep", func() { w.sweepOverdue(ctx) })
	mustSchedule(c, log, cfg.CronConflictRecheck, "conflict recheck", func() { w.recheckConflicts(ctx) })
	c.Start()
	defer c.Stop()

	messages, err := q.Consume(ctx)
	if err != nil {
		log.WithError(err).Fatal("queue consume init failed")
	}

	log.Info("worker started, waiting for messages")
	for msg := range messages {
		userID := msg.Body
		switch msg.Type {
		case queue.TypeAlertRefresh:
			if _, err := alerts.Refresh(ctx, userID); err != nil {
				log.WithError(err).WithField("user_id", userID).Error("alert refresh failed")
			}
		case queue.TypeConflictRefresh:
			if _, err := plans.RefreshConflicts(ctx, userID); err != nil {
				log.WithError(err).WithField("user_id", userID).Error("conflict refresh failed")
				continue
			}
			if _, err := alerts.Refresh(ctx, userID); err != nil {
				log.WithError(err).WithField("user_id", userID).Error("alert refresh failed")
			}
		default:
			log.WithField("type", msg.Type).Warn("unknown message type")
		}
	}

	log.Info("worker stopped")
}

type worker struct {
	log    *logrus.Logger
	users  *user.Repository
	plans  *planner.Service
	alerts *alert.Service
}

// refreshAll re-derives alerts for every active user. Per-user failures
// are logged and skipped so one bad row never stalls the sweep.
func (w *worker) refreshAll(ctx context.Context) {
	ids, err := w.users.ListActiveIDs(ctx)
	if err != nil {
		w.log.WithError(err).Error("list active users failed")
		return
	}
	for _, id := range ids {
		if _, err := w.alerts.Refresh(ctx, id); err != nil {
			w.log.WithError(err).WithField("user_id", id).Error("alert refresh failed")
		}
	}
	w.log.WithField("users", len(ids)).Info("alert refresh sweep done")
}

func (w *worker) sweepOverdue(ctx context.Context) {
	n, err := w.plans.SweepOverdue(ctx, time.Now().UTC())
	if err != nil {
		w.log.WithError(err).Error("overdue sweep failed")
		return
	}
	w.log.WithField("marked", n).Info("overdue sweep done")
	if n > 0 {
		w.refreshAll(ctx)
	}
}

func (w *worker) recheckConflicts(ctx context.Context) {
	ids, err := w.users.ListActiveIDs(ctx)
	if err != nil {
		w.log.WithError(err).Error("list active users failed")
		return
	}
	changed := 0
	for _, id := range ids {
		n, err := w.plans.RefreshConflicts(ctx, id)
		if err != nil {
			w.log.WithError(err).WithField("user_id", id).Error("conflict refresh failed")
			continue
		}
		changed += n
		if n > 0 {
			if _, err := w.alerts.Refresh(ctx, id); err != nil {
				w.log.WithError(err).WithField("user_id", id).Error("alert refresh failed")
			}
		}
	}
	w.log.WithFields(logrus.Fields{"users": len(ids), "changed": changed}).Info("conflict recheck done")
}

func mustSchedule(c *cron.Cron, log *logrus.Logger, spec, name string, fn func()) {
	if _, err := c.AddFunc(spec, fn); err != nil {
		log.WithError(err).WithField("job", name).Fatal("invalid cron spec")
	}
}

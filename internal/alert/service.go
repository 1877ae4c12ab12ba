package alert

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"sais/internal/attendance"
	"sais/internal/planner"
)

// SummarySource yields a user's current attendance summaries.
type SummarySource interface {
	Summaries(ctx context.Context, userID string) ([]attendance.Summary, error)
}

// PlannerSource yields a user's current assignments and activities.
type PlannerSource interface {
	ListAssignments(ctx context.Context, userID string) ([]planner.Assignment, error)
	ListActivities(ctx context.Context, userID string) ([]planner.Activity, error)
}

// Service assembles a snapshot for one user, runs the classifier, and
// persists the resulting intents through the store. Safe to call repeatedly
// and concurrently for different users; repeated calls for the same user
// converge on the same set of unread alerts.
type Service struct {
	store      Store
	summaries  SummarySource
	plans      PlannerSource
	windowDays int
	log        *logrus.Logger
}

// NewService creates a service. windowDays follows the planner's
// convention: 0 is a same-day-only window, negative falls back to the
// default.
func NewService(store Store, summaries SummarySource, plans PlannerSource, windowDays int, log *logrus.Logger) *Service {
	if windowDays < 0 {
		windowDays = planner.DefaultConflictWindowDays
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{store: store, summaries: summaries, plans: plans, windowDays: windowDays, log: log}
}

// Refresh re-derives alerts for one user. Snapshot fetch failures degrade
// to partial evaluation instead of aborting: the rules that still have data
// run and their alerts are persisted.
func (s *Service) Refresh(ctx context.Context, userID string) ([]Alert, error) {
	refreshRuns.Inc()

	snap := Snapshot{Now: time.Now().UTC(), WindowDays: s.windowDays}
	var err error
	if snap.Summaries, err = s.summaries.Summaries(ctx, userID); err != nil {
		s.log.WithError(err).WithField("user_id", userID).Warn("alert refresh: summaries unavailable")
	}
	if snap.Assignments, err = s.plans.ListAssignments(ctx, userID); err != nil {
		s.log.WithError(err).WithField("user_id", userID).Warn("alert refresh: assignments unavailable")
	}
	if snap.Activities, err = s.plans.ListActivities(ctx, userID); err != nil {
		s.log.WithError(err).WithField("user_id", userID).Warn("alert refresh: activities unavailable")
	}

	intents, ruleErrs := Evaluate(snap)
	for _, rerr := range ruleErrs {
		s.log.WithError(rerr).WithField("user_id", userID).Error("alert rule failed")
	}

	var out []Alert
	for _, intent := range intents {
		stored, created, err := s.store.Upsert(ctx, userID, intent)
		if err != nil {
			s.log.WithError(err).WithField("key", intent.Key()).Error("alert upsert failed")
			continue
		}
		alertsUpserted.WithLabelValues(string(intent.Type)).Inc()
		if created {
			s.log.WithFields(logrus.Fields{
				"user_id": userID,
				"type":    intent.Type,
			}).Info("alert created")
		}
		out = append(out, stored)
	}
	return out, nil
}

// List returns the user's alerts, optionally unread only.
func (s *Service) List(ctx context.Context, userID string, unreadOnly bool) ([]Alert, error) {
	return s.store.List(ctx, userID, unreadOnly)
}

// MarkRead flips one alert to read.
func (s *Service) MarkRead(ctx context.Context, userID, alertID string) error {
	return s.store.MarkRead(ctx, userID, alertID)
}

package planner

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Service coordinates assignments, activities and the conflict rescan.
type Service struct {
	repo       *Repository
	windowDays int
	log        *logrus.Logger
}

// NewService creates a service. windowDays is the conflict window tolerance;
// values below zero fall back to the default of ±1 day.
func NewService(repo *Repository, windowDays int, log *logrus.Logger) *Service {
	if windowDays < 0 {
		windowDays = DefaultConflictWindowDays
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{repo: repo, windowDays: windowDays, log: log}
}

// CreateAssignment validates and persists a new assignment.
func (s *Service) CreateAssignment(ctx context.Context, a Assignment) (Assignment, error) {
	a.Title = strings.TrimSpace(a.Title)
	if a.Title == "" {
		return Assignment{}, errors.New("assignment title required")
	}
	if a.Status != "" && !a.Status.Valid() {
		return Assignment{}, errors.New("invalid assignment status")
	}
	return s.repo.InsertAssignment(ctx, a)
}

// ListAssignments returns the user's assignments.
func (s *Service) ListAssignments(ctx context.Context, userID string) ([]Assignment, error) {
	return s.repo.ListAssignments(ctx, userID)
}

// UpdateAssignmentStatus moves an assignment through its lifecycle.
func (s *Service) UpdateAssignmentStatus(ctx context.Context, userID, id string, status AssignmentStatus) error {
	if !status.Valid() {
		return errors.New("invalid assignment status")
	}
	return s.repo.UpdateAssignmentStatus(ctx, userID, id, status)
}

// DeleteAssignment removes an assignment.
func (s *Service) DeleteAssignment(ctx context.Context, userID, id string) error {
	return s.repo.DeleteAssignment(ctx, userID, id)
}

// SweepOverdue flips past-deadline pending assignments to overdue.
func (s *Service) SweepOverdue(ctx context.Context, now time.Time) (int64, error) {
	n, err := s.repo.MarkOverdue(ctx, now)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.WithField("count", n).Info("assignments marked overdue")
	}
	return n, nil
}

// CreateActivity persists a new activity and runs an immediate conflict
// check. A failed check must not abort creation; the activity is stored
// unflagged and the next rescan picks it up.
func (s *Service) CreateActivity(ctx context.Context, a Activity) (Activity, error) {
	a.Title = strings.TrimSpace(a.Title)
	if a.Title == "" {
		return Activity{}, errors.New("activity title required")
	}
	if a.ActivityDate.IsZero() {
		return Activity{}, errors.New("activity date required")
	}
	a.HasConflict = false
	a.ConflictDetail = nil

	assignments, err := s.repo.ListAssignments(ctx, a.UserID)
	if err != nil {
		s.log.WithError(err).Warn("conflict check skipped on activity create")
	} else {
		results := FindConflicts([]Activity{a}, assignments, s.windowDays)
		if len(results) == 1 {
			a.HasConflict = results[0].HasConflict
			a.ConflictDetail = results[0].Detail
		}
	}
	return s.repo.InsertActivity(ctx, a)
}

// ListActivities returns the user's activities.
func (s *Service) ListActivities(ctx context.Context, userID string) ([]Activity, error) {
	return s.repo.ListActivities(ctx, userID)
}

// DeleteActivity removes an activity.
func (s *Service) DeleteActivity(ctx context.Context, userID, id string) error {
	return s.repo.DeleteActivity(ctx, userID, id)
}

// RefreshConflicts reruns conflict detection for every activity the user
// has and persists flag changes, clearing flags whose conflicts went away.
// Returns how many activities changed state.
func (s *Service) RefreshConflicts(ctx context.Context, userID string) (int, error) {
	activities, err := s.repo.ListActivities(ctx, userID)
	if err != nil {
		return 0, err
	}
	assignments, err := s.repo.ListAssignments(ctx, userID)
	if err != nil {
		return 0, err
	}

	byID := make(map[string]Activity, len(activities))
	for _, a := range activities {
		byID[a.ID] = a
	}

	changed := 0
	for _, res := range FindConflicts(activities, assignments, s.windowDays) {
		prev := byID[res.ActivityID]
		if err := s.repo.SetConflict(ctx, userID, res.ActivityID, res.HasConflict, res.Detail); err != nil {
			return changed, err
		}
		if prev.HasConflict != res.HasConflict {
			changed++
		}
	}
	return changed, nil
}

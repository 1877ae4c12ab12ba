package planner

import (
	"fmt"
	"strings"
	"time"
)

// DefaultConflictWindowDays is the date tolerance within which an activity
// and an assignment deadline are considered colliding.
const DefaultConflictWindowDays = 1

// ConflictResult is the outcome of rescanning one activity.
type ConflictResult struct {
	ActivityID  string
	HasConflict bool
	Detail      *string
}

// FindConflicts runs a full rescan: every activity is checked against every
// open assignment deadline within windowDays of its date. Activities whose
// conflicts have gone away come back with HasConflict false so stale flags
// clear. O(activities * assignments), fine at per-user scale.
func FindConflicts(activities []Activity, assignments []Assignment, windowDays int) []ConflictResult {
	if windowDays < 0 {
		windowDays = DefaultConflictWindowDays
	}
	window := time.Duration(windowDays) * 24 * time.Hour

	results := make([]ConflictResult, 0, len(activities))
	for _, act := range activities {
		day := truncateDay(act.ActivityDate)
		var clashes []string
		for _, a := range assignments {
			if a.Deadline == nil || a.Status.Done() {
				continue
			}
			due := truncateDay(*a.Deadline)
			diff := day.Sub(due)
			if diff < 0 {
				diff = -diff
			}
			if diff <= window {
				clashes = append(clashes, fmt.Sprintf("'%s' due %s", a.Title, due.Format("2006-01-02")))
			}
		}
		res := ConflictResult{ActivityID: act.ID}
		if len(clashes) > 0 {
			res.HasConflict = true
			detail := "Conflicts with: " + strings.Join(clashes, ", ")
			res.Detail = &detail
		}
		results = append(results, res)
	}
	return results
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

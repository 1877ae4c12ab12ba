package alert

import (
	"fmt"
	"strings"
	"time"

	"sais/internal/attendance"
	"sais/internal/planner"
)

// Classifier rule constants.
const (
	// OverloadMinAssignments is how many open deadlines within the overload
	// horizon trigger the overload rule.
	OverloadMinAssignments = 3
	// OverloadHorizonDays is the overload look-ahead window.
	OverloadHorizonDays = 7
)

// Snapshot is everything the classifier reads: one user's current data,
// fetched by the caller. The classifier itself holds no state and does no
// I/O. WindowDays follows the rescan's convention: 0 means same-day
// clashes only, negative falls back to the default.
type Snapshot struct {
	Now         time.Time
	Summaries   []attendance.Summary
	Assignments []planner.Assignment
	Activities  []planner.Activity
	WindowDays  int
}

type rule struct {
	name string
	run  func(Snapshot) []Intent
}

var rules = []rule{
	{"overload", checkOverload},
	{"attendance_low", checkAttendance},
	{"deadline_soon", checkDeadlineSoon},
	{"activity_conflict", checkActivityConflict},
}

// Evaluate runs every rule against the snapshot. Rules are independent and
// not mutually exclusive; a panicking rule is reported in the error slice
// and the remaining rules still run, so partial results are always
// returned.
func Evaluate(snap Snapshot) ([]Intent, []error) {
	if snap.Now.IsZero() {
		snap.Now = time.Now().UTC()
	}
	if snap.WindowDays < 0 {
		snap.WindowDays = planner.DefaultConflictWindowDays
	}

	var intents []Intent
	var errs []error
	for _, r := range rules {
		out, err := runRule(r, snap)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		intents = append(intents, out...)
	}
	return intents, errs
}

func runRule(r rule, snap Snapshot) (out []Intent, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("alert rule %s: %v", r.name, rec)
		}
	}()
	return r.run(snap), nil
}

// checkOverload fires one critical alert when three or more open
// assignments are due within the next seven days.
func checkOverload(snap Snapshot) []Intent {
	today := truncateDay(snap.Now)
	cutoff := today.AddDate(0, 0, OverloadHorizonDays)

	var upcoming []planner.Assignment
	for _, a := range snap.Assignments {
		if a.Deadline == nil || a.Status == planner.StatusCompleted {
			continue
		}
		due := truncateDay(*a.Deadline)
		if !due.Before(today) && !due.After(cutoff) {
			upcoming = append(upcoming, a)
		}
	}
	if len(upcoming) < OverloadMinAssignments {
		return nil
	}

	titles := make([]string, 0, 5)
	for i, a := range upcoming {
		if i == 5 {
			break
		}
		titles = append(titles, a.Title)
	}
	msg := fmt.Sprintf("You have %d deadlines in the next %d days: %s",
		len(upcoming), OverloadHorizonDays, strings.Join(titles, ", "))
	if extra := len(upcoming) - len(titles); extra > 0 {
		msg += fmt.Sprintf(" (+%d more)", extra)
	}
	msg += ". Consider prioritizing your tasks."

	return []Intent{{
		Type:      TypeOverload,
		Severity:  SeverityCritical,
		Title:     "Academic Overload Warning",
		Message:   msg,
		ExpiresAt: &cutoff,
	}}
}

// checkAttendance fires one critical alert per subject sitting below the
// threshold, with the recovery count worked into the message.
func checkAttendance(snap Snapshot) []Intent {
	var intents []Intent
	for _, s := range snap.Summaries {
		if !s.BelowThreshold || s.Percentage == nil {
			continue
		}
		msg := fmt.Sprintf("Your attendance in %s is %.2f%%, which is below the required %.0f%%.",
			s.SubjectName, *s.Percentage, attendance.Threshold)
		if needed, err := attendance.ClassesToRecover(s.PresentCount, s.TotalClasses, attendance.Threshold); err == nil && needed > 0 {
			msg += fmt.Sprintf(" You need to attend %d consecutive classes to recover.", needed)
		}
		subjectID := s.SubjectID
		intents = append(intents, Intent{
			Type:             TypeAttendanceLow,
			Severity:         SeverityCritical,
			Title:            "Low Attendance: " + s.SubjectName,
			Message:          msg,
			RelatedSubjectID: &subjectID,
		})
	}
	return intents
}

// checkDeadlineSoon fires a warning per open assignment due within 24 hours
// (deadlines are dates, so that means due today or tomorrow).
func checkDeadlineSoon(snap Snapshot) []Intent {
	today := truncateDay(snap.Now)
	tomorrow := today.AddDate(0, 0, 1)

	var intents []Intent
	for _, a := range snap.Assignments {
		if a.Deadline == nil || a.Status == planner.StatusCompleted {
			continue
		}
		due := truncateDay(*a.Deadline)
		if due.Before(today) || due.After(tomorrow) {
			continue
		}
		when, whenTitle := "today", "Today"
		if due.Equal(tomorrow) {
			when, whenTitle = "tomorrow", "Tomorrow"
		}
		subject := "No subject"
		if a.Subject != nil && *a.Subject != "" {
			subject = *a.Subject
		}
		assignmentID := a.ID
		expiry := due
		intents = append(intents, Intent{
			Type:                TypeDeadlineSoon,
			Severity:            SeverityWarning,
			Title:               fmt.Sprintf("Due %s: %s", whenTitle, a.Title),
			Message:             fmt.Sprintf("'%s' (%s) is due %s. Mark it complete once done.", a.Title, subject, when),
			RelatedAssignmentID: &assignmentID,
			ExpiresAt:           &expiry,
		})
	}
	return intents
}

// checkActivityConflict fires per activity whose date collides with an open
// assignment deadline inside the conflict window. Same-day collisions are
// critical, adjacent days a warning.
func checkActivityConflict(snap Snapshot) []Intent {
	var intents []Intent
	for _, res := range planner.FindConflicts(snap.Activities, snap.Assignments, snap.WindowDays) {
		if !res.HasConflict {
			continue
		}
		act := findActivity(snap.Activities, res.ActivityID)
		if act == nil {
			continue
		}
		severity := SeverityWarning
		if sameDayClash(*act, snap.Assignments) {
			severity = SeverityCritical
		}
		activityID := act.ID
		detail := ""
		if res.Detail != nil {
			detail = " " + *res.Detail + "."
		}
		intents = append(intents, Intent{
			Type:              TypeActivityConflict,
			Severity:          severity,
			Title:             "Schedule Conflict: " + act.Title,
			Message:           fmt.Sprintf("'%s' on %s clashes with assignment deadlines.%s", act.Title, truncateDay(act.ActivityDate).Format("2006-01-02"), detail),
			RelatedActivityID: &activityID,
		})
	}
	return intents
}

func findActivity(activities []planner.Activity, id string) *planner.Activity {
	for i := range activities {
		if activities[i].ID == id {
			return &activities[i]
		}
	}
	return nil
}

func sameDayClash(act planner.Activity, assignments []planner.Assignment) bool {
	day := truncateDay(act.ActivityDate)
	for _, a := range assignments {
		if a.Deadline == nil || a.Status.Done() {
			continue
		}
		if truncateDay(*a.Deadline).Equal(day) {
			return true
		}
	}
	return false
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

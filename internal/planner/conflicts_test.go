package planner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(t time.Time) *time.Time { return &t }

func TestFindConflicts_SameDay(t *testing.T) {
	due := day(2026, time.March, 10)
	activities := []Activity{{ID: "act-1", ActivityDate: due}}
	assignments := []Assignment{{ID: "asg-1", Title: "Wave Optics HW", Deadline: datePtr(due), Status: StatusPending}}

	results := FindConflicts(activities, assignments, 1)
	require.Len(t, results, 1)
	assert.True(t, results[0].HasConflict)
	require.NotNil(t, results[0].Detail)
	assert.Contains(t, *results[0].Detail, "Wave Optics HW")
	assert.Contains(t, *results[0].Detail, "2026-03-10")
}

func TestFindConflicts_WithinWindow(t *testing.T) {
	activities := []Activity{{ID: "act-1", ActivityDate: day(2026, time.March, 11)}}
	assignments := []Assignment{{ID: "asg-1", Title: "Lab report", Deadline: datePtr(day(2026, time.March, 10)), Status: StatusInProgress}}

	results := FindConflicts(activities, assignments, 1)
	assert.True(t, results[0].HasConflict, "one day apart is inside the ±1-day window")
}

func TestFindConflicts_OutsideWindowClears(t *testing.T) {
	due := day(2026, time.March, 10)
	assignments := []Assignment{{ID: "asg-1", Title: "Essay", Deadline: datePtr(due), Status: StatusPending}}

	// Previously flagged activity moved three days out: the rescan must
	// report no conflict so the stale flag clears.
	moved := Activity{ID: "act-1", ActivityDate: day(2026, time.March, 13), HasConflict: true}
	results := FindConflicts([]Activity{moved}, assignments, 1)
	require.Len(t, results, 1)
	assert.False(t, results[0].HasConflict)
	assert.Nil(t, results[0].Detail)
}

func TestFindConflicts_IgnoresFinishedAssignments(t *testing.T) {
	due := day(2026, time.March, 10)
	activities := []Activity{{ID: "act-1", ActivityDate: due}}

	for _, st := range []AssignmentStatus{StatusCompleted, StatusOverdue} {
		assignments := []Assignment{{ID: "asg-1", Title: "Done thing", Deadline: datePtr(due), Status: st}}
		results := FindConflicts(activities, assignments, 1)
		assert.False(t, results[0].HasConflict, "status %s must not conflict", st)
	}
}

func TestFindConflicts_NilDeadlineSkipped(t *testing.T) {
	activities := []Activity{{ID: "act-1", ActivityDate: day(2026, time.March, 10)}}
	assignments := []Assignment{{ID: "asg-1", Title: "Undated", Deadline: nil, Status: StatusPending}}

	results := FindConflicts(activities, assignments, 1)
	assert.False(t, results[0].HasConflict)
}

func TestFindConflicts_MultipleClashesJoined(t *testing.T) {
	due := day(2026, time.March, 10)
	activities := []Activity{{ID: "act-1", ActivityDate: due}}
	assignments := []Assignment{
		{ID: "a1", Title: "First", Deadline: datePtr(due), Status: StatusPending},
		{ID: "a2", Title: "Second", Deadline: datePtr(day(2026, time.March, 11)), Status: StatusPending},
	}

	results := FindConflicts(activities, assignments, 1)
	require.True(t, results[0].HasConflict)
	assert.Contains(t, *results[0].Detail, "First")
	assert.Contains(t, *results[0].Detail, "Second")
}

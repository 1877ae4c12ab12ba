package planner

import "time"

// AssignmentStatus lifecycle: pending → in_progress → completed, with
// overdue set by the daily sweep when a pending deadline passes.
type AssignmentStatus string

const (
	StatusPending    AssignmentStatus = "pending"
	StatusInProgress AssignmentStatus = "in_progress"
	StatusCompleted  AssignmentStatus = "completed"
	StatusOverdue    AssignmentStatus = "overdue"
)

// Valid reports whether s is a known status.
func (s AssignmentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusOverdue:
		return true
	}
	return false
}

// Done reports whether the assignment no longer competes for the student's
// time. Completed and overdue work is excluded from conflict and deadline
// rules.
func (s AssignmentStatus) Done() bool {
	return s == StatusCompleted || s == StatusOverdue
}

// Assignment is a deadline-bearing task. Read-mostly from the engine's
// perspective; only the status field changes after creation.
type Assignment struct {
	ID          string           `json:"id"`
	UserID      string           `json:"user_id"`
	Title       string           `json:"title"`
	Subject     *string          `json:"subject,omitempty"`
	TaskType    string           `json:"task_type"`
	Description *string          `json:"description,omitempty"`
	Deadline    *time.Time       `json:"deadline,omitempty"`
	Priority    string           `json:"priority"`
	Status      AssignmentStatus `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
}

// Activity is a scheduled extracurricular. HasConflict and ConflictDetail
// are owned by the conflict rescan, never set by the user directly.
type Activity struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	Title          string    `json:"title"`
	Category       *string   `json:"category,omitempty"`
	ActivityDate   time.Time `json:"activity_date"`
	StartTime      *string   `json:"start_time,omitempty"`
	EndTime        *string   `json:"end_time,omitempty"`
	Location       *string   `json:"location,omitempty"`
	Description    *string   `json:"description,omitempty"`
	HasConflict    bool      `json:"has_conflict"`
	ConflictDetail *string   `json:"conflict_detail,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

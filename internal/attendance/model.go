package attendance

import "time"

// Threshold is the minimum attendance percentage below which a subject is
// flagged at risk. Fixed institution-wide; see DESIGN.md before making this
// configurable.
const Threshold = 75.0

// Status of a single class attendance mark.
type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusLate    Status = "late"
	StatusExcused Status = "excused"
)

// Valid reports whether s is one of the four known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLate, StatusExcused:
		return true
	}
	return false
}

// Subject is a course a user tracks attendance for.
type Subject struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Code      *string   `json:"code,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Record is one attendance mark. At most one record exists per
// (user, subject, class date); re-marking a date overwrites the status.
type Record struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	SubjectID string    `json:"subject_id"`
	ClassDate time.Time `json:"class_date"`
	Status    Status    `json:"status"`
	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Summary is the derived per-subject attendance view. It is recomputed from
// records on demand and never stored. Percentage is nil when the subject has
// no records: a subject with zero classes has no percentage, not 0%.
type Summary struct {
	SubjectID      string   `json:"subject_id"`
	SubjectName    string   `json:"subject_name"`
	SubjectCode    *string  `json:"subject_code,omitempty"`
	TotalClasses   int      `json:"total_classes"`
	PresentCount   int      `json:"present_count"`
	LateCount      int      `json:"late_count"`
	AbsentCount    int      `json:"absent_count"`
	ExcusedCount   int      `json:"excused_count"`
	Percentage     *float64 `json:"attendance_percentage"`
	BelowThreshold bool     `json:"below_threshold"`
}

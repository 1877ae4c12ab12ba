package alert

import (
	"strings"
	"time"
)

// Type of a generated alert.
type Type string

const (
	TypeOverload         Type = "overload"
	TypeAttendanceLow    Type = "attendance_low"
	TypeActivityConflict Type = "activity_conflict"
	TypeDeadlineSoon     Type = "deadline_soon"
	TypeCustom           Type = "custom"
)

// Severity of a generated alert.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Alert is a persisted risk notification. Created unread by the classifier;
// the user-facing layer flips IsRead, after which the classifier never
// touches it again.
type Alert struct {
	ID                  string     `json:"id"`
	UserID              string     `json:"user_id"`
	Type                Type       `json:"alert_type"`
	Severity            Severity   `json:"severity"`
	Title               string     `json:"title"`
	Message             string     `json:"message"`
	IsRead              bool       `json:"is_read"`
	RelatedAssignmentID *string    `json:"related_assignment_id,omitempty"`
	RelatedActivityID   *string    `json:"related_activity_id,omitempty"`
	RelatedSubjectID    *string    `json:"related_subject_id,omitempty"`
	ExpiresAt           *time.Time `json:"expires_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
}

// Intent is an alert the classifier wants to exist. The store turns intents
// into rows via upsert-by-key so re-running the classifier on unchanged data
// never duplicates unread alerts.
type Intent struct {
	Type                Type
	Severity            Severity
	Title               string
	Message             string
	RelatedAssignmentID *string
	RelatedActivityID   *string
	RelatedSubjectID    *string
	ExpiresAt           *time.Time
}

// Key is the dedup identity of an intent: type plus related entity. Two
// intents with the same key address the same underlying condition.
func (i Intent) Key() string {
	parts := []string{string(i.Type), deref(i.RelatedAssignmentID), deref(i.RelatedActivityID), deref(i.RelatedSubjectID)}
	return strings.Join(parts, "|")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

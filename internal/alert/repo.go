package alert

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrAlertNotFound is returned when an alert does not exist for the user.
var ErrAlertNotFound = errors.New("alert: not found")

// Store persists alerts. The write policy is upsert-by-key: a matching
// unread alert for the same (user, type, related entity) is updated in
// place, never duplicated; read alerts are left alone.
type Store interface {
	Upsert(ctx context.Context, userID string, intent Intent) (Alert, bool, error)
	List(ctx context.Context, userID string, unreadOnly bool) ([]Alert, error)
	MarkRead(ctx context.Context, userID, alertID string) error
}

// Repository is the Postgres alert store.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Upsert inserts the intent as an unread alert, or refreshes the existing
// unread alert with the same key. The conflict target matches the partial
// unique index uq_alerts_unread_key, which only covers unread rows, so read
// alerts never collide. Returns the stored alert and whether a new row was
// created.
func (r *Repository) Upsert(ctx context.Context, userID string, intent Intent) (Alert, bool, error) {
	newID := uuid.NewString()
	a := Alert{
		UserID:              userID,
		Type:                intent.Type,
		Severity:            intent.Severity,
		Title:               intent.Title,
		Message:             intent.Message,
		RelatedAssignmentID: intent.RelatedAssignmentID,
		RelatedActivityID:   intent.RelatedActivityID,
		RelatedSubjectID:    intent.RelatedSubjectID,
		ExpiresAt:           intent.ExpiresAt,
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO alerts (id, user_id, alert_type, severity, title, message, related_assignment_id, related_activity_id, related_subject_id, expires_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (user_id, alert_type, COALESCE(related_assignment_id, ''), COALESCE(related_activity_id, ''), COALESCE(related_subject_id, ''))
			WHERE NOT is_read
		DO UPDATE SET
			severity   = EXCLUDED.severity,
			title      = EXCLUDED.title,
			message    = EXCLUDED.message,
			expires_at = EXCLUDED.expires_at
		RETURNING id, is_read, created_at
	`, newID, a.UserID, a.Type, a.Severity, a.Title, a.Message,
		a.RelatedAssignmentID, a.RelatedActivityID, a.RelatedSubjectID, a.ExpiresAt)
	if err := row.Scan(&a.ID, &a.IsRead, &a.CreatedAt); err != nil {
		return Alert{}, false, fmt.Errorf("upsert alert: %w", err)
	}
	return a, a.ID == newID, nil
}

// List returns the user's alerts newest first.
func (r *Repository) List(ctx context.Context, userID string, unreadOnly bool) ([]Alert, error) {
	query := `
		SELECT id, user_id, alert_type, severity, title, message, is_read,
		       related_assignment_id, related_activity_id, related_subject_id, expires_at, created_at
		FROM alerts WHERE user_id = $1`
	if unreadOnly {
		query += ` AND NOT is_read`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Alert
	for rows.Next() {
		var a Alert
		if err := rows.Scan(&a.ID, &a.UserID, &a.Type, &a.Severity, &a.Title, &a.Message, &a.IsRead,
			&a.RelatedAssignmentID, &a.RelatedActivityID, &a.RelatedSubjectID, &a.ExpiresAt, &a.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, a)
	}
	return res, rows.Err()
}

// MarkRead flips an alert to read. Terminal from the classifier's point of
// view.
func (r *Repository) MarkRead(ctx context.Context, userID, alertID string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE alerts SET is_read = TRUE WHERE id = $1 AND user_id = $2
	`, alertID, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAlertNotFound
	}
	return nil
}

package planner

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrAssignmentNotFound is returned when an assignment does not exist
	// for the user.
	ErrAssignmentNotFound = errors.New("planner: assignment not found")
	// ErrActivityNotFound is returned when an activity does not exist for
	// the user.
	ErrActivityNotFound = errors.New("planner: activity not found")
)

// Repository persists assignments and activities in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// InsertAssignment writes a new assignment.
func (r *Repository) InsertAssignment(ctx context.Context, a Assignment) (Assignment, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.TaskType == "" {
		a.TaskType = "assignment"
	}
	if a.Priority == "" {
		a.Priority = "medium"
	}
	if a.Status == "" {
		a.Status = StatusPending
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO assignments (id, user_id, title, subject, task_type, description, deadline, priority, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING created_at
	`, a.ID, a.UserID, a.Title, a.Subject, a.TaskType, a.Description, a.Deadline, a.Priority, a.Status)
	if err := row.Scan(&a.CreatedAt); err != nil {
		return Assignment{}, fmt.Errorf("insert assignment: %w", err)
	}
	return a, nil
}

// ListAssignments returns all assignments for a user, soonest deadline first
// with undated ones last.
func (r *Repository) ListAssignments(ctx context.Context, userID string) ([]Assignment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, title, subject, task_type, description, deadline, priority, status, created_at
		FROM assignments WHERE user_id = $1
		ORDER BY deadline ASC NULLS LAST, created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAssignments(rows)
}

// UpdateAssignmentStatus moves an assignment through its lifecycle.
func (r *Repository) UpdateAssignmentStatus(ctx context.Context, userID, id string, status AssignmentStatus) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE assignments SET status = $3 WHERE id = $1 AND user_id = $2
	`, id, userID, status)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAssignmentNotFound
	}
	return nil
}

// DeleteAssignment removes an assignment.
func (r *Repository) DeleteAssignment(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM assignments WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAssignmentNotFound
	}
	return nil
}

// MarkOverdue flips pending assignments with a past deadline to overdue.
// Returns the number swept.
func (r *Repository) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE assignments
		SET status = $1
		WHERE status = $2 AND deadline IS NOT NULL AND deadline < $3
	`, StatusOverdue, StatusPending, truncateDay(now))
	if err != nil {
		return 0, fmt.Errorf("mark overdue: %w", err)
	}
	return res.RowsAffected()
}

// InsertActivity writes a new activity.
func (r *Repository) InsertActivity(ctx context.Context, a Activity) (Activity, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.ActivityDate = truncateDay(a.ActivityDate)
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO activities (id, user_id, title, category, activity_date, start_time, end_time, location, description, has_conflict, conflict_detail)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING created_at
	`, a.ID, a.UserID, a.Title, a.Category, a.ActivityDate, a.StartTime, a.EndTime, a.Location, a.Description, a.HasConflict, a.ConflictDetail)
	if err := row.Scan(&a.CreatedAt); err != nil {
		return Activity{}, fmt.Errorf("insert activity: %w", err)
	}
	return a, nil
}

// ListActivities returns all activities for a user in date order.
func (r *Repository) ListActivities(ctx context.Context, userID string) ([]Activity, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, title, category, activity_date, start_time, end_time, location, description, has_conflict, conflict_detail, created_at
		FROM activities WHERE user_id = $1 ORDER BY activity_date ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Activity
	for rows.Next() {
		var a Activity
		if err := rows.Scan(&a.ID, &a.UserID, &a.Title, &a.Category, &a.ActivityDate, &a.StartTime, &a.EndTime, &a.Location, &a.Description, &a.HasConflict, &a.ConflictDetail, &a.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, a)
	}
	return res, rows.Err()
}

// DeleteActivity removes an activity.
func (r *Repository) DeleteActivity(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM activities WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrActivityNotFound
	}
	return nil
}

// SetConflict writes the rescan outcome for one activity.
func (r *Repository) SetConflict(ctx context.Context, userID, activityID string, hasConflict bool, detail *string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE activities SET has_conflict = $3, conflict_detail = $4
		WHERE id = $1 AND user_id = $2
	`, activityID, userID, hasConflict, detail)
	return err
}

func scanAssignments(rows *sql.Rows) ([]Assignment, error) {
	var res []Assignment
	for rows.Next() {
		var a Assignment
		if err := rows.Scan(&a.ID, &a.UserID, &a.Title, &a.Subject, &a.TaskType, &a.Description, &a.Deadline, &a.Priority, &a.Status, &a.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, a)
	}
	return res, rows.Err()
}

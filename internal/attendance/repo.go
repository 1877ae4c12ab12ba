package attendance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrSubjectNotFound is returned when a subject does not exist or belongs to
// a different user.
var ErrSubjectNotFound = errors.New("attendance: subject not found")

// Repository persists subjects and attendance records in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateSubject inserts a subject for a user.
func (r *Repository) CreateSubject(ctx context.Context, userID, name string, code *string) (Subject, error) {
	s := Subject{ID: uuid.NewString(), UserID: userID, Name: name, Code: code}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO subjects (id, user_id, name, code)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, s.ID, s.UserID, s.Name, s.Code)
	if err := row.Scan(&s.CreatedAt); err != nil {
		return Subject{}, fmt.Errorf("create subject: %w", err)
	}
	return s, nil
}

// GetSubject returns one subject scoped to the owning user.
func (r *Repository) GetSubject(ctx context.Context, userID, subjectID string) (Subject, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, code, created_at
		FROM subjects WHERE id = $1 AND user_id = $2
	`, subjectID, userID)
	var s Subject
	if err := row.Scan(&s.ID, &s.UserID, &s.Name, &s.Code, &s.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Subject{}, ErrSubjectNotFound
		}
		return Subject{}, err
	}
	return s, nil
}

// ListSubjects returns all subjects for a user ordered by name.
func (r *Repository) ListSubjects(ctx context.Context, userID string) ([]Subject, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, name, code, created_at
		FROM subjects WHERE user_id = $1 ORDER BY name
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Subject
	for rows.Next() {
		var s Subject
		if err := rows.Scan(&s.ID, &s.UserID, &s.Name, &s.Code, &s.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, s)
	}
	return res, rows.Err()
}

// UpdateSubject renames a subject.
func (r *Repository) UpdateSubject(ctx context.Context, userID, subjectID, name string, code *string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE subjects SET name = $3, code = $4 WHERE id = $1 AND user_id = $2
	`, subjectID, userID, name, code)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSubjectNotFound
	}
	return nil
}

// DeleteSubject removes a subject and, via FK cascade, its records.
func (r *Repository) DeleteSubject(ctx context.Context, userID, subjectID string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM subjects WHERE id = $1 AND user_id = $2
	`, subjectID, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSubjectNotFound
	}
	return nil
}

// MarkAttendance upserts the record for (user, subject, date). Re-marking an
// already marked date overwrites status and notes; the unique constraint is
// the enforcement boundary against double submits.
func (r *Repository) MarkAttendance(ctx context.Context, rec Record) (Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	rec.ClassDate = dateOnly(rec.ClassDate)
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO attendance_records (id, user_id, subject_id, class_date, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, subject_id, class_date) DO UPDATE SET
			status = EXCLUDED.status,
			notes  = EXCLUDED.notes
		RETURNING id, created_at
	`, rec.ID, rec.UserID, rec.SubjectID, rec.ClassDate, rec.Status, rec.Notes)
	if err := row.Scan(&rec.ID, &rec.CreatedAt); err != nil {
		return Record{}, fmt.Errorf("mark attendance: %w", err)
	}
	return rec, nil
}

// ListRecords returns all records for one subject; the calculator does not
// care about order.
func (r *Repository) ListRecords(ctx context.Context, userID, subjectID string) ([]Record, error) {
	return r.queryRecords(ctx, `
		SELECT id, user_id, subject_id, class_date, status, notes, created_at
		FROM attendance_records WHERE user_id = $1 AND subject_id = $2
	`, userID, subjectID)
}

// ListHistory returns records for one subject newest first.
func (r *Repository) ListHistory(ctx context.Context, userID, subjectID string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 100
	}
	return r.queryRecords(ctx, `
		SELECT id, user_id, subject_id, class_date, status, notes, created_at
		FROM attendance_records WHERE user_id = $1 AND subject_id = $2
		ORDER BY class_date DESC LIMIT $3
	`, userID, subjectID, limit)
}

func (r *Repository) queryRecords(ctx context.Context, query string, args ...any) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.SubjectID, &rec.ClassDate, &rec.Status, &rec.Notes, &rec.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, rec)
	}
	return res, rows.Err()
}

func dateOnly(t time.Time) time.Time {
	if t.IsZero() {
		t = time.Now().UTC()
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

package attendance

import (
	"context"
	"errors"
	"strings"
	"time"
)

// SummaryCache holds computed per-user summary lists between reads. Misses
// and backend errors are both reported as a miss; the service recomputes.
type SummaryCache interface {
	Get(ctx context.Context, userID string) ([]Summary, bool)
	Set(ctx context.Context, userID string, summaries []Summary)
	Invalidate(ctx context.Context, userID string)
}

// Projection reports where a subject ends up if every remaining class is
// attended.
type Projection struct {
	CurrentPercentage   *float64 `json:"current_percentage"`
	ProjectedPercentage float64  `json:"projected_percentage"`
	RemainingClasses    int      `json:"remaining_classes"`
	SafeAbsences        int      `json:"safe_absences"`
	Safe                bool     `json:"safe"`
}

// Service coordinates the attendance ledger and the derived calculations.
type Service struct {
	repo  *Repository
	cache SummaryCache
}

// NewService creates a service backed by a repository. cache may be nil.
func NewService(repo *Repository, cache SummaryCache) *Service {
	return &Service{repo: repo, cache: cache}
}

// CreateSubject validates and persists a new subject.
func (s *Service) CreateSubject(ctx context.Context, userID, name string, code *string) (Subject, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Subject{}, errors.New("subject name required")
	}
	sub, err := s.repo.CreateSubject(ctx, userID, name, code)
	if err != nil {
		return Subject{}, err
	}
	s.invalidate(ctx, userID)
	return sub, nil
}

// ListSubjects returns the user's subjects.
func (s *Service) ListSubjects(ctx context.Context, userID string) ([]Subject, error) {
	return s.repo.ListSubjects(ctx, userID)
}

// UpdateSubject renames a subject.
func (s *Service) UpdateSubject(ctx context.Context, userID, subjectID, name string, code *string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("subject name required")
	}
	if err := s.repo.UpdateSubject(ctx, userID, subjectID, name, code); err != nil {
		return err
	}
	s.invalidate(ctx, userID)
	return nil
}

// DeleteSubject removes a subject and its records.
func (s *Service) DeleteSubject(ctx context.Context, userID, subjectID string) error {
	if err := s.repo.DeleteSubject(ctx, userID, subjectID); err != nil {
		return err
	}
	s.invalidate(ctx, userID)
	return nil
}

// Mark records attendance for one class date, overwriting any earlier mark
// for the same date.
func (s *Service) Mark(ctx context.Context, userID, subjectID string, classDate time.Time, status Status, notes *string) (Record, error) {
	if !status.Valid() {
		return Record{}, errors.New("invalid attendance status")
	}
	if _, err := s.repo.GetSubject(ctx, userID, subjectID); err != nil {
		return Record{}, err
	}
	rec, err := s.repo.MarkAttendance(ctx, Record{
		UserID:    userID,
		SubjectID: subjectID,
		ClassDate: classDate,
		Status:    status,
		Notes:     notes,
	})
	if err != nil {
		return Record{}, err
	}
	s.invalidate(ctx, userID)
	return rec, nil
}

// Summaries recomputes (or serves from cache) the summary for every subject
// the user tracks.
func (s *Service) Summaries(ctx context.Context, userID string) ([]Summary, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, userID); ok {
			return cached, nil
		}
	}
	subjects, err := s.repo.ListSubjects(ctx, userID)
	if err != nil {
		return nil, err
	}
	summaries := make([]Summary, 0, len(subjects))
	for _, sub := range subjects {
		records, err := s.repo.ListRecords(ctx, userID, sub.ID)
		if err != nil {
			return nil, err
		}
		sum := Summarize(records)
		sum.SubjectID = sub.ID
		sum.SubjectName = sub.Name
		sum.SubjectCode = sub.Code
		summaries = append(summaries, sum)
	}
	if s.cache != nil {
		s.cache.Set(ctx, userID, summaries)
	}
	return summaries, nil
}

// SummaryFor returns the summary of a single subject.
func (s *Service) SummaryFor(ctx context.Context, userID, subjectID string) (Summary, error) {
	sub, err := s.repo.GetSubject(ctx, userID, subjectID)
	if err != nil {
		return Summary{}, err
	}
	records, err := s.repo.ListRecords(ctx, userID, subjectID)
	if err != nil {
		return Summary{}, err
	}
	sum := Summarize(records)
	sum.SubjectID = sub.ID
	sum.SubjectName = sub.Name
	sum.SubjectCode = sub.Code
	return sum, nil
}

// History lists a subject's records newest first.
func (s *Service) History(ctx context.Context, userID, subjectID string, limit int) ([]Record, error) {
	if _, err := s.repo.GetSubject(ctx, userID, subjectID); err != nil {
		return nil, err
	}
	return s.repo.ListHistory(ctx, userID, subjectID, limit)
}

// RecoveryPlan builds the named recovery scenarios for one subject.
func (s *Service) RecoveryPlan(ctx context.Context, userID, subjectID string) (Plan, error) {
	sum, err := s.SummaryFor(ctx, userID, subjectID)
	if err != nil {
		return Plan{}, err
	}
	return BuildRecoveryPlan(sum.SubjectName, sum.PresentCount, sum.TotalClasses)
}

// Projection projects a subject to semester end assuming perfect attendance
// over the remaining classes.
func (s *Service) Projection(ctx context.Context, userID, subjectID string, remaining int) (Projection, error) {
	if remaining <= 0 {
		remaining = 10
	}
	sum, err := s.SummaryFor(ctx, userID, subjectID)
	if err != nil {
		return Projection{}, err
	}
	projected, err := Project(sum.PresentCount, sum.TotalClasses, remaining)
	if err != nil {
		return Projection{}, err
	}
	spare, err := SafeAbsences(sum.PresentCount, sum.TotalClasses, remaining)
	if err != nil {
		return Projection{}, err
	}
	return Projection{
		CurrentPercentage:   sum.Percentage,
		ProjectedPercentage: projected,
		RemainingClasses:    remaining,
		SafeAbsences:        spare,
		Safe:                projected >= Threshold,
	}, nil
}

func (s *Service) invalidate(ctx context.Context, userID string) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, userID)
	}
}

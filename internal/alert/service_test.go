package alert

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sais/internal/attendance"
	"sais/internal/planner"
)

// memStore is an in-memory Store with the same upsert-by-key policy as the
// Postgres repository.
type memStore struct {
	mu     sync.Mutex
	alerts map[string]Alert // key -> unread alert
	read   []Alert
	nextID int
}

func newMemStore() *memStore {
	return &memStore{alerts: make(map[string]Alert)}
}

func (m *memStore) Upsert(_ context.Context, userID string, intent Intent) (Alert, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := userID + "|" + intent.Key()
	if existing, ok := m.alerts[key]; ok {
		existing.Severity = intent.Severity
		existing.Title = intent.Title
		existing.Message = intent.Message
		m.alerts[key] = existing
		return existing, false, nil
	}
	m.nextID++
	a := Alert{
		ID:        string(rune('A' + m.nextID)),
		UserID:    userID,
		Type:      intent.Type,
		Severity:  intent.Severity,
		Title:     intent.Title,
		Message:   intent.Message,
		CreatedAt: time.Now(),
	}
	m.alerts[key] = a
	return a, true, nil
}

func (m *memStore) List(_ context.Context, userID string, unreadOnly bool) ([]Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Alert
	for _, a := range m.alerts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	if !unreadOnly {
		for _, a := range m.read {
			if a.UserID == userID {
				out = append(out, a)
			}
		}
	}
	return out, nil
}

func (m *memStore) MarkRead(_ context.Context, userID, alertID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, a := range m.alerts {
		if a.UserID == userID && a.ID == alertID {
			a.IsRead = true
			m.read = append(m.read, a)
			delete(m.alerts, key)
			return nil
		}
	}
	return ErrAlertNotFound
}

type fakeSummaries struct {
	summaries []attendance.Summary
	err       error
}

func (f fakeSummaries) Summaries(context.Context, string) ([]attendance.Summary, error) {
	return f.summaries, f.err
}

type fakePlanner struct {
	assignments []planner.Assignment
	activities  []planner.Activity
}

func (f fakePlanner) ListAssignments(context.Context, string) ([]planner.Assignment, error) {
	return f.assignments, nil
}

func (f fakePlanner) ListActivities(context.Context, string) ([]planner.Activity, error) {
	return f.activities, nil
}

func lowSummary() []attendance.Summary {
	pct := 40.0
	return []attendance.Summary{
		{SubjectID: "sub-1", SubjectName: "Physics", TotalClasses: 10, PresentCount: 4, Percentage: &pct, BelowThreshold: true},
	}
}

func TestRefresh_IdempotentAcrossRuns(t *testing.T) {
	store := newMemStore()
	due := time.Now().UTC().AddDate(0, 0, 1)
	svc := NewService(store, fakeSummaries{summaries: lowSummary()}, fakePlanner{
		assignments: []planner.Assignment{
			{ID: "a1", Title: "One", Deadline: &due, Status: planner.StatusPending},
			{ID: "a2", Title: "Two", Deadline: &due, Status: planner.StatusPending},
			{ID: "a3", Title: "Three", Deadline: &due, Status: planner.StatusPending},
		},
	}, 1, nil)

	ctx := context.Background()
	first, err := svc.Refresh(ctx, "user-1")
	require.NoError(t, err)
	require.NotEmpty(t, first)

	unreadAfterFirst, err := svc.List(ctx, "user-1", true)
	require.NoError(t, err)

	// Second run on unchanged data: same unread set, no duplicates.
	_, err = svc.Refresh(ctx, "user-1")
	require.NoError(t, err)
	unreadAfterSecond, err := svc.List(ctx, "user-1", true)
	require.NoError(t, err)

	assert.Equal(t, len(unreadAfterFirst), len(unreadAfterSecond),
		"re-running the classifier must not duplicate unread alerts")
}

func TestRefresh_ReadAlertsNotResurrected(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, fakeSummaries{summaries: lowSummary()}, fakePlanner{}, 1, nil)
	ctx := context.Background()

	alerts, err := svc.Refresh(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, alerts, 1)

	require.NoError(t, svc.MarkRead(ctx, "user-1", alerts[0].ID))

	// The condition still holds, so the classifier files a fresh unread
	// alert; the read one stays read and untouched.
	_, err = svc.Refresh(ctx, "user-1")
	require.NoError(t, err)

	all, err := svc.List(ctx, "user-1", false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	unread, err := svc.List(ctx, "user-1", true)
	require.NoError(t, err)
	assert.Len(t, unread, 1)
}

func TestRefresh_UpdatesSeverityInPlace(t *testing.T) {
	store := newMemStore()
	pct := 40.0
	summaries := []attendance.Summary{
		{SubjectID: "sub-1", SubjectName: "Physics", TotalClasses: 10, PresentCount: 4, Percentage: &pct, BelowThreshold: true},
	}
	src := &fakeSummaries{summaries: summaries}
	svc := NewService(store, src, fakePlanner{}, 1, nil)
	ctx := context.Background()

	_, err := svc.Refresh(ctx, "user-1")
	require.NoError(t, err)

	// Attendance moved but stayed below threshold: the unread alert is
	// refreshed, not duplicated.
	worse := 30.0
	src.summaries[0].Percentage = &worse
	src.summaries[0].PresentCount = 3
	_, err = svc.Refresh(ctx, "user-1")
	require.NoError(t, err)

	unread, err := svc.List(ctx, "user-1", true)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Contains(t, unread[0].Message, "30.00%")
}

func TestRefresh_PartialSnapshotStillProducesAlerts(t *testing.T) {
	store := newMemStore()
	due := time.Now().UTC().AddDate(0, 0, 1)
	svc := NewService(store,
		fakeSummaries{err: errors.New("summary backend down")},
		fakePlanner{assignments: []planner.Assignment{
			{ID: "a1", Title: "Due soon", Deadline: &due, Status: planner.StatusPending},
		}}, 1, nil)

	alerts, err := svc.Refresh(context.Background(), "user-1")
	require.NoError(t, err, "a failed source degrades, it does not abort")
	require.Len(t, alerts, 1)
	assert.Equal(t, TypeDeadlineSoon, alerts[0].Type)
}

func TestRefresh_DifferentUsersIsolated(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, fakeSummaries{summaries: lowSummary()}, fakePlanner{}, 1, nil)
	ctx := context.Background()

	_, err := svc.Refresh(ctx, "user-1")
	require.NoError(t, err)
	_, err = svc.Refresh(ctx, "user-2")
	require.NoError(t, err)

	u1, _ := svc.List(ctx, "user-1", true)
	u2, _ := svc.List(ctx, "user-2", true)
	assert.Len(t, u1, 1)
	assert.Len(t, u2, 1)
	assert.NotEqual(t, u1[0].ID, u2[0].ID)
}

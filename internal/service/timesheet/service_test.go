package timesheet

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workpulse/timecore-backend-go/internal/domain/audit"
	"github.com/workpulse/timecore-backend-go/internal/domain/timesheet"
	"github.com/workpulse/timecore-backend-go/internal/domain/user"
)

// ========================================
// TEST FAKES
// ========================================

type fakeTimesheetRepository struct {
	mu      sync.Mutex
	nextID  int
	records map[string]*timesheet.TaskTimerRecord
}

func newFakeTimesheetRepository() *fakeTimesheetRepository {
	return &fakeTimesheetRepository{records: make(map[string]*timesheet.TaskTimerRecord)}
}

func (f *fakeTimesheetRepository) Create(ctx context.Context, record timesheet.TaskTimerRecord) (timesheet.TaskTimerRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	record.ID = fmt.Sprintf("ts-%d", f.nextID)
	record.CreatedAt = time.Now()
	record.UpdatedAt = record.CreatedAt
	stored := record
	f.records[record.ID] = &stored
	return record, nil
}

func (f *fakeTimesheetRepository) GetByID(ctx context.Context, id string, organizationID string) (timesheet.TaskTimerRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[id]
	if !ok || rec.OrganizationID != organizationID {
		return timesheet.TaskTimerRecord{}, timesheet.ErrTimesheetNotFound
	}
	return copyRecord(rec), nil
}

func (f *fakeTimesheetRepository) Update(ctx context.Context, record timesheet.TaskTimerRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.records[record.ID]
	if !ok {
		return timesheet.ErrTimesheetNotFound
	}
	stored.CollaboratorIDs = record.CollaboratorIDs
	stored.Status = record.Status
	stored.IsRunning = record.IsRunning
	stored.StartTime = record.StartTime
	stored.TotalMilliseconds = record.TotalMilliseconds
	stored.UpdatedAt = time.Now()
	return nil
}

func (f *fakeTimesheetRepository) AppendEvent(ctx context.Context, recordID string, event timesheet.TimerEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.records[recordID]
	if !ok {
		return timesheet.ErrTimesheetNotFound
	}
	stored.Events = append(stored.Events, event)
	return nil
}

func (f *fakeTimesheetRepository) ListRunningByActor(ctx context.Context, actorID string) ([]timesheet.TaskTimerRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []timesheet.TaskTimerRecord
	for _, rec := range f.records {
		if rec.IsRunning && rec.IsMember(actorID) {
			out = append(out, copyRecord(rec))
		}
	}
	return out, nil
}

func (f *fakeTimesheetRepository) ListByActorAndDateRange(ctx context.Context, actorID string, from, to string) ([]timesheet.TaskTimerRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []timesheet.TaskTimerRecord
	for _, rec := range f.records {
		if rec.IsMember(actorID) && rec.Date >= from && rec.Date <= to {
			out = append(out, copyRecord(rec))
		}
	}
	return out, nil
}

func (f *fakeTimesheetRepository) ListByActor(ctx context.Context, actorID string, filter timesheet.ListFilter, organizationID string) ([]timesheet.TaskTimerRecord, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []timesheet.TaskTimerRecord
	for _, rec := range f.records {
		if rec.OrganizationID == organizationID && rec.IsMember(actorID) {
			out = append(out, copyRecord(rec))
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeTimesheetRepository) ListRunningLongerThan(ctx context.Context, cutoff int64) ([]timesheet.TaskTimerRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []timesheet.TaskTimerRecord
	for _, rec := range f.records {
		if rec.IsRunning && rec.StartTime != nil && rec.StartTime.Unix() < cutoff {
			out = append(out, copyRecord(rec))
		}
	}
	return out, nil
}

func (f *fakeTimesheetRepository) Delete(ctx context.Context, id string, organizationID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[id]
	if !ok || rec.OrganizationID != organizationID {
		return timesheet.ErrTimesheetNotFound
	}
	delete(f.records, id)
	return nil
}

func copyRecord(rec *timesheet.TaskTimerRecord) timesheet.TaskTimerRecord {
	out := *rec
	out.CollaboratorIDs = append([]string(nil), rec.CollaboratorIDs...)
	out.Events = append([]timesheet.TimerEvent(nil), rec.Events...)
	return out
}

// fakeTxManager runs the function directly; the fake repository is its own
// source of truth, so there is nothing to commit or roll back.
type fakeTxManager struct{}

func (fakeTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeRecorder struct {
	mu     sync.Mutex
	events []audit.Event
}

func (f *fakeRecorder) Record(event audit.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *fakeRecorder) Stop() {}

func (f *fakeRecorder) actions() []audit.Action {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]audit.Action, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.Action)
	}
	return out
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	repo     *fakeTimesheetRepository
	recorder *fakeRecorder
	clock    *fakeClock
	service  timesheet.TimesheetService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := newFakeTimesheetRepository()
	recorder := &fakeRecorder{}
	clock := newFakeClock(time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC))
	svc := NewTimesheetService(repo, fakeTxManager{}, recorder, clock.Now)
	return &fixture{repo: repo, recorder: recorder, clock: clock, service: svc}
}

func (f *fixture) mustCreate(t *testing.T, actor user.Actor, date, label string, collaborators ...string) timesheet.TimesheetResponse {
	t.Helper()
	resp, err := f.service.Create(context.Background(), actor, timesheet.CreateTimesheetRequest{
		TaskLabel:       label,
		Date:            date,
		CollaboratorIDs: collaborators,
	})
	require.NoError(t, err)
	return resp
}

var (
	alice = user.Actor{ID: "actor-alice", OrganizationID: "org-1", Role: user.RoleMember}
	bob   = user.Actor{ID: "actor-bob", OrganizationID: "org-1", Role: user.RoleMember}
	admin = user.Actor{ID: "actor-admin", OrganizationID: "org-1", Role: user.RoleAdmin}
)

// ========================================
// TESTS
// ========================================

func TestCreateAppendsCreatedEvent(t *testing.T) {
	f := newFixture(t)

	resp := f.mustCreate(t, alice, "2024-03-15", "API integration")

	assert.Equal(t, timesheet.StatusDraft, resp.Status)
	assert.False(t, resp.IsRunning)
	require.Len(t, resp.Events, 1)
	assert.Equal(t, string(timesheet.ActionCreated), resp.Events[0].Action)
}

func TestStartAutoStopsOtherRunningTimer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.mustCreate(t, alice, "2024-03-15", "task one")
	second := f.mustCreate(t, alice, "2024-03-15", "task two")

	_, err := f.service.Start(ctx, alice, first.ID)
	require.NoError(t, err)

	f.clock.Advance(5 * time.Minute)

	resp, err := f.service.Start(ctx, alice, second.ID)
	require.NoError(t, err)
	assert.True(t, resp.IsRunning)

	stopped, err := f.repo.GetByID(ctx, first.ID, alice.OrganizationID)
	require.NoError(t, err)
	assert.False(t, stopped.IsRunning)
	assert.Nil(t, stopped.StartTime)
	assert.Equal(t, (5 * time.Minute).Milliseconds(), stopped.TotalMilliseconds)

	last := stopped.Events[len(stopped.Events)-1]
	assert.Equal(t, timesheet.ActionAutoStopped, last.Action)
	assert.Contains(t, last.Note, second.ID)

	assert.Contains(t, f.recorder.actions(), audit.ActionTimerAutoStopped)
}

func TestStartAlreadyRunning(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created := f.mustCreate(t, alice, "2024-03-15", "task")
	_, err := f.service.Start(ctx, alice, created.ID)
	require.NoError(t, err)

	_, err = f.service.Start(ctx, alice, created.ID)
	assert.ErrorIs(t, err, timesheet.ErrTimerAlreadyRunning)
}

func TestStartNotOwnerOrCollaborator(t *testing.T) {
	f := newFixture(t)

	created := f.mustCreate(t, alice, "2024-03-15", "task")

	_, err := f.service.Start(context.Background(), bob, created.ID)
	assert.ErrorIs(t, err, timesheet.ErrNotOwnerOrCollaborator)
}

func TestStartAsCollaboratorStopsOwnTimer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	own := f.mustCreate(t, bob, "2024-03-15", "bob's task")
	shared := f.mustCreate(t, alice, "2024-03-15", "shared task", bob.ID)

	_, err := f.service.Start(ctx, bob, own.ID)
	require.NoError(t, err)

	f.clock.Advance(2 * time.Minute)

	resp, err := f.service.Start(ctx, bob, shared.ID)
	require.NoError(t, err)
	assert.True(t, resp.IsRunning)

	stopped, err := f.repo.GetByID(ctx, own.ID, bob.OrganizationID)
	require.NoError(t, err)
	assert.False(t, stopped.IsRunning)
	assert.Equal(t, (2 * time.Minute).Milliseconds(), stopped.TotalMilliseconds)

	// The record's own log names who triggered the auto-stop.
	last := stopped.Events[len(stopped.Events)-1]
	require.Equal(t, timesheet.ActionAutoStopped, last.Action)
	assert.Contains(t, last.Note, bob.ID)
	assert.Contains(t, last.Note, shared.ID)
}

func TestStopAccruesElapsedTime(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created := f.mustCreate(t, alice, "2024-03-15", "task")
	_, err := f.service.Start(ctx, alice, created.ID)
	require.NoError(t, err)

	f.clock.Advance(10 * time.Minute)

	resp, err := f.service.Stop(ctx, alice, created.ID)
	require.NoError(t, err)
	assert.False(t, resp.IsRunning)
	assert.Nil(t, resp.StartTime)
	assert.Equal(t, (10 * time.Minute).Milliseconds(), resp.TotalMilliseconds)

	last := resp.Events[len(resp.Events)-1]
	assert.Equal(t, string(timesheet.ActionStopped), last.Action)
}

func TestStopNotRunning(t *testing.T) {
	f := newFixture(t)

	created := f.mustCreate(t, alice, "2024-03-15", "task")

	_, err := f.service.Stop(context.Background(), alice, created.ID)
	assert.ErrorIs(t, err, timesheet.ErrTimerNotRunning)
}

func TestTimeConservationAcrossSwitches(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.mustCreate(t, alice, "2024-03-15", "task one")
	second := f.mustCreate(t, alice, "2024-03-15", "task two")

	// 5 minutes on the first task, then switch. The switch itself freezes the
	// first timer, so no time is lost or double counted.
	_, err := f.service.Start(ctx, alice, first.ID)
	require.NoError(t, err)
	f.clock.Advance(5 * time.Minute)

	_, err = f.service.Start(ctx, alice, second.ID)
	require.NoError(t, err)
	f.clock.Advance(10 * time.Minute)

	_, err = f.service.Stop(ctx, alice, second.ID)
	require.NoError(t, err)

	total, err := f.service.GetDailyTotal(ctx, alice, "2024-03-15")
	require.NoError(t, err)
	assert.Equal(t, (15 * time.Minute).Milliseconds(), total.Milliseconds)
}

func TestDailyTotalIncludesLiveRunningDelta(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created := f.mustCreate(t, alice, "2024-03-15", "task")
	_, err := f.service.Start(ctx, alice, created.ID)
	require.NoError(t, err)

	f.clock.Advance(7 * time.Minute)

	total, err := f.service.GetDailyTotal(ctx, alice, "2024-03-15")
	require.NoError(t, err)
	assert.Equal(t, (7 * time.Minute).Milliseconds(), total.Milliseconds)

	// Reading the total does not persist the running delta.
	stored, err := f.repo.GetByID(ctx, created.ID, alice.OrganizationID)
	require.NoError(t, err)
	assert.True(t, stored.IsRunning)
	assert.Zero(t, stored.TotalMilliseconds)
}

func TestMonthlyTotalSpansMonthOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inMonth := f.mustCreate(t, alice, "2024-03-01", "early")
	alsoIn := f.mustCreate(t, alice, "2024-03-31", "late")
	outOfMonth := f.mustCreate(t, alice, "2024-04-01", "next month")

	for _, id := range []string{inMonth.ID, alsoIn.ID, outOfMonth.ID} {
		_, err := f.service.Start(ctx, alice, id)
		require.NoError(t, err)
		f.clock.Advance(time.Hour)
		_, err = f.service.Stop(ctx, alice, id)
		require.NoError(t, err)
	}

	total, err := f.service.GetMonthlyTotal(ctx, alice, "2024-03")
	require.NoError(t, err)
	assert.Equal(t, (2 * time.Hour).Milliseconds(), total.Milliseconds)
}

func TestSubmitWhileRunning(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created := f.mustCreate(t, alice, "2024-03-15", "task")
	_, err := f.service.Start(ctx, alice, created.ID)
	require.NoError(t, err)

	_, err = f.service.Submit(ctx, alice, created.ID)
	assert.ErrorIs(t, err, timesheet.ErrTimerRunning)
}

func TestSubmitOwnerOnly(t *testing.T) {
	f := newFixture(t)

	created := f.mustCreate(t, alice, "2024-03-15", "shared task", bob.ID)

	_, err := f.service.Submit(context.Background(), bob, created.ID)
	assert.ErrorIs(t, err, timesheet.ErrNotOwner)
}

func TestSubmitThenReview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created := f.mustCreate(t, alice, "2024-03-15", "task")

	submitted, err := f.service.Submit(ctx, alice, created.ID)
	require.NoError(t, err)
	assert.Equal(t, timesheet.StatusSubmitted, submitted.Status)

	// A second submit is no longer allowed.
	_, err = f.service.Submit(ctx, alice, created.ID)
	assert.ErrorIs(t, err, timesheet.ErrNotSubmittable)

	reviewed, err := f.service.Review(ctx, admin, created.ID)
	require.NoError(t, err)
	assert.Equal(t, timesheet.StatusReviewed, reviewed.Status)
}

func TestReviewRequiresAdmin(t *testing.T) {
	f := newFixture(t)

	created := f.mustCreate(t, alice, "2024-03-15", "task")

	_, err := f.service.Review(context.Background(), alice, created.ID)
	assert.ErrorIs(t, err, user.ErrAdminPrivilegeRequired)
}

func TestReviewNonSubmitted(t *testing.T) {
	f := newFixture(t)

	created := f.mustCreate(t, alice, "2024-03-15", "task")

	_, err := f.service.Review(context.Background(), admin, created.ID)
	assert.ErrorIs(t, err, timesheet.ErrNotReviewable)
}

func TestDeleteDraftOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created := f.mustCreate(t, alice, "2024-03-15", "task")
	_, err := f.service.Start(ctx, alice, created.ID)
	require.NoError(t, err)
	_, err = f.service.Stop(ctx, alice, created.ID)
	require.NoError(t, err)

	err = f.service.Delete(ctx, alice, created.ID)
	assert.ErrorIs(t, err, timesheet.ErrNotDraft)
}

func TestDeleteDraft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created := f.mustCreate(t, alice, "2024-03-15", "task")

	err := f.service.Delete(ctx, alice, created.ID)
	require.NoError(t, err)

	_, err = f.repo.GetByID(ctx, created.ID, alice.OrganizationID)
	assert.ErrorIs(t, err, timesheet.ErrTimesheetNotFound)
}

func TestConcurrentStartsKeepSingleRunningTimer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ids := make([]string, 8)
	for i := range ids {
		ids[i] = f.mustCreate(t, alice, "2024-03-15", fmt.Sprintf("task %d", i)).ID
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := f.service.Start(ctx, alice, id)
			assert.NoError(t, err)
		}(id)
	}
	wg.Wait()

	running, err := f.repo.ListRunningByActor(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, running, 1, "exactly one timer may run per actor")
}

package audit

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workpulse/timecore-backend-go/internal/domain/audit"
	"github.com/workpulse/timecore-backend-go/internal/domain/user"
	"github.com/workpulse/timecore-backend-go/internal/pkg/validator"
)

type fakeAuditRepository struct {
	mu     sync.Mutex
	events []*audit.Event
}

func (f *fakeAuditRepository) CreateBatch(ctx context.Context, events []*audit.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, events...)
	return nil
}

func (f *fakeAuditRepository) ListByEntity(ctx context.Context, organizationID, entityType, entityID string, limit int) ([]*audit.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*audit.Event
	for _, e := range f.events {
		if e.OrganizationID == organizationID && e.EntityType == entityType && e.EntityID == entityID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeAuditRepository) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

var (
	admin  = user.Actor{ID: "actor-admin", OrganizationID: "org-1", Role: user.RoleAdmin}
	member = user.Actor{ID: "actor-member", OrganizationID: "org-1", Role: user.RoleMember}
)

func TestStopPersistsQueuedEvents(t *testing.T) {
	repo := &fakeAuditRepository{}
	// Long flush interval and large batch: nothing flushes before Stop, so
	// everything recorded is still queued when shutdown begins.
	svc := NewAuditService(repo, nil, Config{
		BatchSize:     1000,
		FlushInterval: time.Hour,
		WorkerCount:   2,
		QueueSize:     100,
	})

	const n = 50
	for i := 0; i < n; i++ {
		svc.Record(audit.Event{
			OrganizationID: "org-1",
			ActorID:        "actor-alice",
			Action:         audit.ActionClockIn,
			EntityType:     "attendance",
			EntityID:       fmt.Sprintf("att-%d", i),
		})
	}

	svc.Stop()

	assert.Equal(t, n, repo.count(), "events queued at shutdown must be persisted")
}

func TestRecordAssignsIDAndTimestamp(t *testing.T) {
	repo := &fakeAuditRepository{}
	svc := NewAuditService(repo, nil, Config{BatchSize: 1, FlushInterval: time.Hour})

	svc.Record(audit.Event{
		OrganizationID: "org-1",
		ActorID:        "actor-alice",
		Action:         audit.ActionTimerStarted,
		EntityType:     "timesheet",
		EntityID:       "ts-1",
	})
	svc.Stop()

	require.Equal(t, 1, repo.count())
	stored := repo.events[0]
	assert.NotEmpty(t, stored.ID)
	assert.False(t, stored.CreatedAt.IsZero())
}

func TestListByEntityRequiresAdmin(t *testing.T) {
	svc := NewAuditService(&fakeAuditRepository{}, nil, Config{})
	defer svc.Stop()

	_, err := svc.ListByEntity(context.Background(), member, "timesheet", "ts-1", 0)
	assert.ErrorIs(t, err, user.ErrAdminPrivilegeRequired)
}

func TestListByEntityValidatesInput(t *testing.T) {
	svc := NewAuditService(&fakeAuditRepository{}, nil, Config{})
	defer svc.Stop()

	_, err := svc.ListByEntity(context.Background(), admin, "payroll", "x", 0)
	var errs validator.ValidationErrors
	assert.ErrorAs(t, err, &errs)

	_, err = svc.ListByEntity(context.Background(), admin, "timesheet", "", 0)
	assert.ErrorAs(t, err, &errs)
}

func TestListByEntityReturnsTrail(t *testing.T) {
	repo := &fakeAuditRepository{}
	svc := NewAuditService(repo, nil, Config{BatchSize: 1, FlushInterval: time.Hour})

	svc.Record(audit.Event{
		OrganizationID: "org-1",
		ActorID:        "actor-alice",
		Action:         audit.ActionTimerStarted,
		EntityType:     "timesheet",
		EntityID:       "ts-1",
		Metadata:       map[string]interface{}{"note": "x"},
	})
	svc.Record(audit.Event{
		OrganizationID: "org-1",
		ActorID:        "actor-alice",
		Action:         audit.ActionClockIn,
		EntityType:     "attendance",
		EntityID:       "att-1",
	})
	require.Eventually(t, func() bool { return repo.count() == 2 }, 2*time.Second, 10*time.Millisecond)

	trail, err := svc.ListByEntity(context.Background(), admin, "timesheet", "ts-1", 0)
	require.NoError(t, err)
	require.Len(t, trail, 1)
	assert.Equal(t, string(audit.ActionTimerStarted), trail[0].Action)
	assert.Equal(t, "ts-1", trail[0].EntityID)

	svc.Stop()
}

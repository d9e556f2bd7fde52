package timesheet

import (
	"context"
)

// TimesheetRepository defines data access methods for task timer records and
// their transition logs. The write methods participate in the transaction
// injected by database.WithTx, so a stop-others-then-start sequence commits
// or rolls back as one unit.
type TimesheetRepository interface {
	Create(ctx context.Context, record TaskTimerRecord) (TaskTimerRecord, error)

	// GetByID loads the record including its event log.
	GetByID(ctx context.Context, id string, organizationID string) (TaskTimerRecord, error)

	// Update persists status, running state, start time and accumulated total.
	Update(ctx context.Context, record TaskTimerRecord) error

	// AppendEvent adds one entry to the record's append-only transition log.
	AppendEvent(ctx context.Context, recordID string, event TimerEvent) error

	// ListRunningByActor returns every record with a running timer where the
	// actor is owner or collaborator. By the mutual-exclusion invariant the
	// result has at most one element, but the engine re-checks rather than
	// assumes.
	ListRunningByActor(ctx context.Context, actorID string) ([]TaskTimerRecord, error)

	// ListByActorAndDateRange returns records (owner or collaborator) whose
	// date falls in [from, to]; feeds the aggregator.
	ListByActorAndDateRange(ctx context.Context, actorID string, from, to string) ([]TaskTimerRecord, error)

	ListByActor(ctx context.Context, actorID string, filter ListFilter, organizationID string) ([]TaskTimerRecord, int64, error)

	// ListRunningLongerThan returns records running since before the given
	// instant; advisory cron input.
	ListRunningLongerThan(ctx context.Context, cutoff int64) ([]TaskTimerRecord, error)

	Delete(ctx context.Context, id string, organizationID string) error
}

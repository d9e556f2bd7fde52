package attendance

import (
	"context"
)

// AttendanceRepository defines data access methods for attendance day
// records. All methods carry organizationID to prevent cross-tenant access.
// Uniqueness of (actor_id, date, organization_id) is a store-level
// constraint; Create surfaces its violation as ErrAlreadyClockedIn.
type AttendanceRepository interface {
	// Create inserts the day record produced by a clock-in.
	Create(ctx context.Context, record AttendanceDayRecord) (AttendanceDayRecord, error)

	GetByID(ctx context.Context, id string, organizationID string) (AttendanceDayRecord, error)

	// GetByActorAndDate returns nil when no record exists for the pair.
	GetByActorAndDate(ctx context.Context, actorID string, date string, organizationID string) (*AttendanceDayRecord, error)

	// Update persists the clock-out capture or an approval transition.
	Update(ctx context.Context, record AttendanceDayRecord) error

	// ListByDate retrieves every record of one organization day; feeds the
	// overview counts and the IP conflict detector.
	ListByDate(ctx context.Context, organizationID string, date string) ([]AttendanceDayRecord, error)

	// ListByActor retrieves an actor's own records with filters and pagination.
	ListByActor(ctx context.Context, actorID string, filter MyAttendanceFilter, organizationID string) ([]AttendanceDayRecord, int64, error)

	// ListOpenSessionsBefore returns records still missing a clock-out whose
	// date is strictly before the given date; advisory cron input.
	ListOpenSessionsBefore(ctx context.Context, date string) ([]AttendanceDayRecord, error)
}

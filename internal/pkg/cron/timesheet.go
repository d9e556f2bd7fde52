package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/workpulse/timecore-backend-go/internal/domain/audit"
	"github.com/workpulse/timecore-backend-go/internal/domain/timesheet"
)

// staleTimerThreshold is how long a timer may run before it gets flagged.
const staleTimerThreshold = 12 * time.Hour

// TimesheetJobs holds the advisory timer jobs. Flagging is the whole job:
// stopping a forgotten timer remains a deliberate user action.
type TimesheetJobs struct {
	timesheetRepo timesheet.TimesheetRepository
	recorder      audit.Recorder
}

func NewTimesheetJobs(timesheetRepo timesheet.TimesheetRepository, recorder audit.Recorder) *TimesheetJobs {
	return &TimesheetJobs{
		timesheetRepo: timesheetRepo,
		recorder:      recorder,
	}
}

func (j *TimesheetJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("flag_stale_running_timers", 1*time.Hour, j.FlagStaleTimers)
}

// FlagStaleTimers records an audit event for every timer running longer than
// the threshold.
func (j *TimesheetJobs) FlagStaleTimers(ctx context.Context) error {
	cutoff := time.Now().Add(-staleTimerThreshold).Unix()

	stale, err := j.timesheetRepo.ListRunningLongerThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to list stale running timers: %w", err)
	}

	if len(stale) == 0 {
		slog.Debug("Cron: no stale running timers found")
		return nil
	}

	for _, record := range stale {
		slog.Warn("Timer running past threshold",
			"timesheet_id", record.ID,
			"owner_id", record.OwnerID,
			"organization_id", record.OrganizationID,
			"start_time", record.StartTime,
		)
		j.recorder.Record(audit.Event{
			OrganizationID: record.OrganizationID,
			ActorID:        record.OwnerID,
			Action:         audit.ActionTimerFlaggedStale,
			EntityType:     "timesheet",
			EntityID:       record.ID,
			Metadata: map[string]interface{}{
				"threshold_hours": staleTimerThreshold.Hours(),
			},
		})
	}

	slog.Info("Cron: flagged stale running timers", "count", len(stale))
	return nil
}

package audit

import (
	"time"
)

// Action is the tag of an audit event. One event is emitted per attendance
// and timer transition.
type Action string

const (
	ActionClockIn            Action = "attendance_clock_in"
	ActionClockOut           Action = "attendance_clock_out"
	ActionAttendanceApproved Action = "attendance_approved"
	ActionTimesheetCreated   Action = "timesheet_created"
	ActionTimerStarted       Action = "timer_started"
	ActionTimerStopped       Action = "timer_stopped"
	ActionTimerAutoStopped   Action = "timer_auto_stopped"
	ActionTimesheetSubmitted Action = "timesheet_submitted"
	ActionTimesheetReviewed  Action = "timesheet_reviewed"
	ActionTimesheetDeleted   Action = "timesheet_deleted"
	ActionTimerFlaggedStale  Action = "timer_flagged_stale"
)

// Event is one append-only audit record.
type Event struct {
	ID             string
	OrganizationID string
	ActorID        string
	Action         Action
	EntityType     string
	EntityID       string
	Metadata       map[string]interface{}
	CreatedAt      time.Time
}

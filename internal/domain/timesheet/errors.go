package timesheet

import "errors"

// Timesheet domain errors
var (
	// Guard violations
	ErrTimerAlreadyRunning = errors.New("timer is already running")
	ErrTimerNotRunning     = errors.New("timer is not running")
	ErrTimerRunning        = errors.New("stop the running timer first")

	// Status transitions
	ErrNotSubmittable = errors.New("timesheet cannot be submitted from its current status")
	ErrNotReviewable  = errors.New("only submitted timesheets can be reviewed")
	ErrNotDraft       = errors.New("only draft timesheets can be deleted")

	// Access errors, distinct from guard violations so clients can tell
	// "you can't do this" from "you did this twice"
	ErrTimesheetNotFound      = errors.New("timesheet not found")
	ErrNotOwnerOrCollaborator = errors.New("you are not the owner or a collaborator of this timesheet")
	ErrNotOwner               = errors.New("only the owner may do this")
)

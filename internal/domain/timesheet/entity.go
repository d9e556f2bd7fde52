package timesheet

import (
	"time"
)

// Timesheet status lifecycle: draft/pending -> in_progress (on first start)
// -> submitted -> reviewed.
const (
	StatusDraft      = "draft"
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusSubmitted  = "submitted"
	StatusReviewed   = "reviewed"
)

// TimerAction is the closed enumeration of transition log tags. Keeping it
// closed keeps downstream reporting exhaustive-safe.
type TimerAction string

const (
	ActionCreated     TimerAction = "CREATED"
	ActionStarted     TimerAction = "STARTED"
	ActionStopped     TimerAction = "STOPPED"
	ActionAutoStopped TimerAction = "AUTO_STOPPED"
	ActionSubmitted   TimerAction = "SUBMITTED"
	ActionReviewed    TimerAction = "REVIEWED"
)

// TimerEvent is one entry of a record's append-only transition log.
type TimerEvent struct {
	Action TimerAction
	Note   string
	At     time.Time
}

// TaskTimerRecord is one timesheet entry. Mutation rights belong to the
// owning actor, but the running-timer invariant spans every record an actor
// owns or collaborates on: across that whole set at most one record may have
// IsRunning true at any instant.
//
// Invariant: IsRunning implies StartTime != nil. TotalMilliseconds is
// monotonically non-decreasing while running and frozen while stopped.
type TaskTimerRecord struct {
	ID                string
	OwnerID           string
	OrganizationID    string
	CollaboratorIDs   []string
	Date              string // YYYY-MM-DD
	TaskLabel         string
	Status            string
	IsRunning         bool
	StartTime         *time.Time
	TotalMilliseconds int64
	Events            []TimerEvent
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsMember reports whether the actor owns or collaborates on the record.
func (r *TaskTimerRecord) IsMember(actorID string) bool {
	if r.OwnerID == actorID {
		return true
	}
	for _, id := range r.CollaboratorIDs {
		if id == actorID {
			return true
		}
	}
	return false
}

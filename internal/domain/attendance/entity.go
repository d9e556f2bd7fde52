package attendance

import (
	"time"
)

// Day record status. "pending" marks a capture that clocked in outside the
// geofence and awaits admin adjudication; it is never a rejection.
const (
	StatusPending = "pending"
	StatusPresent = "present"
	StatusLate    = "late"
)

// Capture is an immutable point-in-time snapshot of verification evidence.
// It is created once by the capture builder and never mutated afterward.
type Capture struct {
	Timestamp      time.Time
	PhotoURL       *string
	Latitude       *float64
	Longitude      *float64
	IP             string
	Device         string
	UserAgent      string
	WithinGeofence *bool // nil when no boundary configured or no coordinates supplied
	FaceDetected   bool
}

// AttendanceDayRecord is the per-(actor, calendar day, organization) record.
// Created lazily on first clock-in; clock-out mutates the same record; never
// deleted. TotalHours is derived exactly once, at clock-out, and is not
// recomputed afterward even if captures are later amended.
type AttendanceDayRecord struct {
	ID             string
	ActorID        string
	OrganizationID string
	Date           string // YYYY-MM-DD in the organization's local time
	ClockIn        *Capture
	ClockOut       *Capture
	Status         string
	TotalHours     *float64
	ApprovedBy     *string
	ApprovedAt     *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// DTO
	ActorName *string
}

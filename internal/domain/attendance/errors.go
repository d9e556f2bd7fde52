package attendance

import "errors"

// Attendance domain errors
var (
	// Guard violations
	ErrAlreadyClockedIn  = errors.New("you have already clocked in today")
	ErrNotClockedIn      = errors.New("you have not clocked in yet")
	ErrAlreadyClockedOut = errors.New("you have already clocked out")

	// General errors
	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrNotPendingStatus   = errors.New("only pending attendance records can be approved")
	ErrUnauthorized       = errors.New("unauthorized to access this attendance record")
)

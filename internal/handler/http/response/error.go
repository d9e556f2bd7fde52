package response

import (
	"errors"
	"net/http"

	"github.com/workpulse/timecore-backend-go/internal/domain/attendance"
	"github.com/workpulse/timecore-backend-go/internal/domain/auth"
	"github.com/workpulse/timecore-backend-go/internal/domain/organization"
	"github.com/workpulse/timecore-backend-go/internal/domain/timesheet"
	"github.com/workpulse/timecore-backend-go/internal/domain/user"
	"github.com/workpulse/timecore-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrRefreshTokenRevoked):
		Unauthorized(w, "Refresh token revoked")

	// User domain errors
	case errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, user.ErrInvalidActorClaims):
		Unauthorized(w, "Invalid session claims")
	case errors.Is(err, user.ErrAdminPrivilegeRequired):
		Forbidden(w, "Admin privilege required")

	// Organization domain errors
	case errors.Is(err, organization.ErrOrganizationNotFound):
		NotFound(w, "Organization not found")
	case errors.Is(err, organization.ErrInvalidTimezone):
		BadRequest(w, "Unknown timezone name", nil)

	// Attendance domain errors
	case errors.Is(err, attendance.ErrAlreadyClockedIn):
		Conflict(w, "Already clocked in today")
	case errors.Is(err, attendance.ErrNotClockedIn):
		Conflict(w, "No clock-in recorded today")
	case errors.Is(err, attendance.ErrAlreadyClockedOut):
		Conflict(w, "Already clocked out today")
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, attendance.ErrNotPendingStatus):
		Conflict(w, "Only pending records can be approved")
	case errors.Is(err, attendance.ErrUnauthorized):
		Forbidden(w, "Admin privilege required")

	// Timesheet domain errors
	case errors.Is(err, timesheet.ErrTimesheetNotFound):
		NotFound(w, "Timesheet not found")
	case errors.Is(err, timesheet.ErrTimerAlreadyRunning):
		Conflict(w, "Timer is already running")
	case errors.Is(err, timesheet.ErrTimerNotRunning):
		Conflict(w, "Timer is not running")
	case errors.Is(err, timesheet.ErrTimerRunning):
		Conflict(w, "Stop the running timer first")
	case errors.Is(err, timesheet.ErrNotSubmittable):
		Conflict(w, "Timesheet cannot be submitted from its current status")
	case errors.Is(err, timesheet.ErrNotReviewable):
		Conflict(w, "Only submitted timesheets can be reviewed")
	case errors.Is(err, timesheet.ErrNotDraft):
		Conflict(w, "Only draft timesheets can be deleted")
	case errors.Is(err, timesheet.ErrNotOwnerOrCollaborator):
		Forbidden(w, "You are not the owner or a collaborator of this timesheet")
	case errors.Is(err, timesheet.ErrNotOwner):
		Forbidden(w, "Only the owner may do this")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}

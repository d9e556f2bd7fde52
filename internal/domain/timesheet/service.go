package timesheet

import (
	"context"

	"github.com/workpulse/timecore-backend-go/internal/domain/user"
)

type TimesheetService interface {
	Create(ctx context.Context, actor user.Actor, req CreateTimesheetRequest) (TimesheetResponse, error)

	// Start begins the timer on a record the actor owns or collaborates on,
	// auto-stopping any other running timer of that actor first. The whole
	// sequence is atomic per actor.
	Start(ctx context.Context, actor user.Actor, recordID string) (TimesheetResponse, error)

	// Stop freezes the running timer and accrues its elapsed time.
	Stop(ctx context.Context, actor user.Actor, recordID string) (TimesheetResponse, error)

	Submit(ctx context.Context, actor user.Actor, recordID string) (TimesheetResponse, error)

	// Review marks a submitted timesheet reviewed. Admin only.
	Review(ctx context.Context, actor user.Actor, recordID string) (TimesheetResponse, error)

	// Delete removes a draft record; owner only.
	Delete(ctx context.Context, actor user.Actor, recordID string) error

	GetMyTimesheets(ctx context.Context, actor user.Actor, filter ListFilter) (ListTimesheetResponse, error)

	// GetDailyTotal returns the actor's accumulated milliseconds for one day,
	// including the live elapsed time of a currently running timer.
	GetDailyTotal(ctx context.Context, actor user.Actor, date string) (TotalResponse, error)

	// GetMonthlyTotal does the same for a whole YYYY-MM month.
	GetMonthlyTotal(ctx context.Context, actor user.Actor, yearMonth string) (TotalResponse, error)
}

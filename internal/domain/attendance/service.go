package attendance

import (
	"context"

	"github.com/workpulse/timecore-backend-go/internal/domain/user"
)

type AttendanceService interface {
	ClockIn(ctx context.Context, actor user.Actor, req ClockInRequest) (AttendanceResponse, error)
	ClockOut(ctx context.Context, actor user.Actor, req ClockOutRequest) (AttendanceResponse, error)

	// Approve forces a pending record to present. Admin only.
	Approve(ctx context.Context, actor user.Actor, recordID string) (AttendanceResponse, error)

	// GetOverview returns one day's records, status counts, and IP conflict
	// groups. Admin only.
	GetOverview(ctx context.Context, actor user.Actor, date string) (OverviewResponse, error)

	GetMyAttendance(ctx context.Context, actor user.Actor, filter MyAttendanceFilter) (ListAttendanceResponse, error)
}

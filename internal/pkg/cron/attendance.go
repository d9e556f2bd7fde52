package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/workpulse/timecore-backend-go/internal/domain/attendance"
)

// AttendanceJobs holds the advisory attendance jobs. They only observe and
// flag; a missing clock-out is never closed automatically and no status is
// rewritten.
type AttendanceJobs struct {
	attendanceRepo attendance.AttendanceRepository
}

func NewAttendanceJobs(attendanceRepo attendance.AttendanceRepository) *AttendanceJobs {
	return &AttendanceJobs{
		attendanceRepo: attendanceRepo,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("flag_open_attendance_sessions", 1*time.Hour, j.FlagOpenSessions)
}

// FlagOpenSessions logs every record from a previous day that never clocked
// out, so admins can chase them up.
func (j *AttendanceJobs) FlagOpenSessions(ctx context.Context) error {
	today := time.Now().UTC().Format("2006-01-02")

	open, err := j.attendanceRepo.ListOpenSessionsBefore(ctx, today)
	if err != nil {
		return fmt.Errorf("failed to list open attendance sessions: %w", err)
	}

	if len(open) == 0 {
		slog.Debug("Cron: no open attendance sessions found")
		return nil
	}

	for _, record := range open {
		slog.Warn("Attendance session never clocked out",
			"attendance_id", record.ID,
			"actor_id", record.ActorID,
			"organization_id", record.OrganizationID,
			"date", record.Date,
		)
	}

	slog.Info("Cron: flagged open attendance sessions", "count", len(open))
	return nil
}

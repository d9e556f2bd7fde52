package postgresql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/workpulse/timecore-backend-go/internal/domain/attendance"
	"github.com/workpulse/timecore-backend-go/internal/pkg/database"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

const attendanceColumns = `
	a.id, a.actor_id, a.organization_id, a.date,
	a.clock_in_at, a.clock_in_photo_url, a.clock_in_latitude, a.clock_in_longitude,
	a.clock_in_ip, a.clock_in_device, a.clock_in_user_agent,
	a.clock_in_within_geofence, a.clock_in_face_detected,
	a.clock_out_at, a.clock_out_photo_url, a.clock_out_latitude, a.clock_out_longitude,
	a.clock_out_ip, a.clock_out_device, a.clock_out_user_agent,
	a.clock_out_within_geofence, a.clock_out_face_detected,
	a.status, a.total_hours, a.approved_by, a.approved_at,
	a.created_at, a.updated_at`

// scanAttendance maps one row onto the domain record, folding the flattened
// capture columns back into Capture values.
func scanAttendance(row pgx.Row, withActorName bool) (attendance.AttendanceDayRecord, error) {
	var rec attendance.AttendanceDayRecord

	var (
		inAt, outAt          *time.Time
		inPhoto, outPhoto    *string
		inLat, inLng         *float64
		outLat, outLng       *float64
		inIP, inDev, inUA    *string
		outIP, outDev, outUA *string
		inGeo, outGeo        *bool
		inFace, outFace      *bool
	)

	dest := []interface{}{
		&rec.ID, &rec.ActorID, &rec.OrganizationID, &rec.Date,
		&inAt, &inPhoto, &inLat, &inLng,
		&inIP, &inDev, &inUA,
		&inGeo, &inFace,
		&outAt, &outPhoto, &outLat, &outLng,
		&outIP, &outDev, &outUA,
		&outGeo, &outFace,
		&rec.Status, &rec.TotalHours, &rec.ApprovedBy, &rec.ApprovedAt,
		&rec.CreatedAt, &rec.UpdatedAt,
	}
	if withActorName {
		dest = append(dest, &rec.ActorName)
	}

	if err := row.Scan(dest...); err != nil {
		return attendance.AttendanceDayRecord{}, err
	}

	if inAt != nil {
		rec.ClockIn = &attendance.Capture{
			Timestamp:      *inAt,
			PhotoURL:       inPhoto,
			Latitude:       inLat,
			Longitude:      inLng,
			WithinGeofence: inGeo,
		}
		if inIP != nil {
			rec.ClockIn.IP = *inIP
		}
		if inDev != nil {
			rec.ClockIn.Device = *inDev
		}
		if inUA != nil {
			rec.ClockIn.UserAgent = *inUA
		}
		if inFace != nil {
			rec.ClockIn.FaceDetected = *inFace
		}
	}
	if outAt != nil {
		rec.ClockOut = &attendance.Capture{
			Timestamp:      *outAt,
			PhotoURL:       outPhoto,
			Latitude:       outLat,
			Longitude:      outLng,
			WithinGeofence: outGeo,
		}
		if outIP != nil {
			rec.ClockOut.IP = *outIP
		}
		if outDev != nil {
			rec.ClockOut.Device = *outDev
		}
		if outUA != nil {
			rec.ClockOut.UserAgent = *outUA
		}
		if outFace != nil {
			rec.ClockOut.FaceDetected = *outFace
		}
	}

	return rec, nil
}

// Create implements attendance.AttendanceRepository. The unique index on
// (actor_id, date, organization_id) closes the duplicate clock-in race at
// the store level; its violation surfaces as ErrAlreadyClockedIn.
func (a *attendanceRepository) Create(ctx context.Context, rec attendance.AttendanceDayRecord) (attendance.AttendanceDayRecord, error) {
	q := GetQuerier(ctx, a.db)

	if rec.ClockIn == nil {
		return attendance.AttendanceDayRecord{}, fmt.Errorf("attendance record requires a clock-in capture")
	}

	query := `
		INSERT INTO attendance_days (
			actor_id, organization_id, date,
			clock_in_at, clock_in_photo_url, clock_in_latitude, clock_in_longitude,
			clock_in_ip, clock_in_device, clock_in_user_agent,
			clock_in_within_geofence, clock_in_face_detected,
			status
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		) RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		rec.ActorID,
		rec.OrganizationID,
		rec.Date,
		rec.ClockIn.Timestamp,
		rec.ClockIn.PhotoURL,
		rec.ClockIn.Latitude,
		rec.ClockIn.Longitude,
		rec.ClockIn.IP,
		rec.ClockIn.Device,
		rec.ClockIn.UserAgent,
		rec.ClockIn.WithinGeofence,
		rec.ClockIn.FaceDetected,
		rec.Status,
	).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)

	if err != nil {
		if IsUniqueViolation(err) {
			return attendance.AttendanceDayRecord{}, attendance.ErrAlreadyClockedIn
		}
		return attendance.AttendanceDayRecord{}, fmt.Errorf("failed to create attendance record: %w", err)
	}

	return rec, nil
}

// GetByID implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByID(ctx context.Context, id string, organizationID string) (attendance.AttendanceDayRecord, error) {
	q := GetQuerier(ctx, a.db)

	query := fmt.Sprintf(`
		SELECT %s, u.full_name AS actor_name
		FROM attendance_days a
		LEFT JOIN users u ON u.id = a.actor_id
		WHERE a.id = $1 AND a.organization_id = $2
	`, attendanceColumns)

	rec, err := scanAttendance(q.QueryRow(ctx, query, id, organizationID), true)
	if err != nil {
		if err == pgx.ErrNoRows {
			return attendance.AttendanceDayRecord{}, attendance.ErrAttendanceNotFound
		}
		return attendance.AttendanceDayRecord{}, fmt.Errorf("failed to get attendance by ID: %w", err)
	}

	return rec, nil
}

// GetByActorAndDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByActorAndDate(ctx context.Context, actorID string, date string, organizationID string) (*attendance.AttendanceDayRecord, error) {
	q := GetQuerier(ctx, a.db)

	query := fmt.Sprintf(`
		SELECT %s
		FROM attendance_days a
		WHERE a.actor_id = $1 AND a.date = $2 AND a.organization_id = $3
		LIMIT 1
	`, attendanceColumns)

	rec, err := scanAttendance(q.QueryRow(ctx, query, actorID, date, organizationID), false)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil // No record for this (actor, day) yet
		}
		return nil, fmt.Errorf("failed to get attendance by actor and date: %w", err)
	}

	return &rec, nil
}

// Update implements attendance.AttendanceRepository. Clock-in capture fields
// are immutable after creation; only the clock-out capture, status, total
// and approval fields are written.
func (a *attendanceRepository) Update(ctx context.Context, rec attendance.AttendanceDayRecord) error {
	q := GetQuerier(ctx, a.db)

	var (
		outAt          *time.Time
		outPhoto       *string
		outLat, outLng *float64
		outIP, outDev  *string
		outUA          *string
		outGeo         *bool
		outFace        *bool
	)
	if rec.ClockOut != nil {
		outAt = &rec.ClockOut.Timestamp
		outPhoto = rec.ClockOut.PhotoURL
		outLat = rec.ClockOut.Latitude
		outLng = rec.ClockOut.Longitude
		outIP = &rec.ClockOut.IP
		outDev = &rec.ClockOut.Device
		outUA = &rec.ClockOut.UserAgent
		outGeo = rec.ClockOut.WithinGeofence
		outFace = &rec.ClockOut.FaceDetected
	}

	query := `
		UPDATE attendance_days SET
			clock_out_at = $1, clock_out_photo_url = $2,
			clock_out_latitude = $3, clock_out_longitude = $4,
			clock_out_ip = $5, clock_out_device = $6, clock_out_user_agent = $7,
			clock_out_within_geofence = $8, clock_out_face_detected = $9,
			status = $10, total_hours = $11,
			approved_by = $12, approved_at = $13,
			updated_at = NOW()
		WHERE id = $14 AND organization_id = $15
		RETURNING id
	`

	var updatedID string
	err := q.QueryRow(ctx, query,
		outAt, outPhoto, outLat, outLng, outIP, outDev, outUA, outGeo, outFace,
		rec.Status, rec.TotalHours, rec.ApprovedBy, rec.ApprovedAt,
		rec.ID, rec.OrganizationID,
	).Scan(&updatedID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return attendance.ErrAttendanceNotFound
		}
		return fmt.Errorf("failed to update attendance record: %w", err)
	}

	return nil
}

// ListByDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByDate(ctx context.Context, organizationID string, date string) ([]attendance.AttendanceDayRecord, error) {
	q := GetQuerier(ctx, a.db)

	query := fmt.Sprintf(`
		SELECT %s, u.full_name AS actor_name
		FROM attendance_days a
		LEFT JOIN users u ON u.id = a.actor_id
		WHERE a.organization_id = $1 AND a.date = $2
		ORDER BY a.clock_in_at ASC
	`, attendanceColumns)

	rows, err := q.Query(ctx, query, organizationID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance records: %w", err)
	}
	defer rows.Close()

	var records []attendance.AttendanceDayRecord
	for rows.Next() {
		rec, err := scanAttendance(rows, true)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, rec)
	}

	return records, nil
}

// ListByActor implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByActor(ctx context.Context, actorID string, filter attendance.MyAttendanceFilter, organizationID string) ([]attendance.AttendanceDayRecord, int64, error) {
	q := GetQuerier(ctx, a.db)

	baseWhere := "a.actor_id = $1 AND a.organization_id = $2"
	args := []interface{}{actorID, organizationID}
	argIdx := 3

	if filter.StartDate != nil && *filter.StartDate != "" {
		baseWhere += fmt.Sprintf(" AND a.date >= $%d", argIdx)
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		baseWhere += fmt.Sprintf(" AND a.date <= $%d", argIdx)
		args = append(args, *filter.EndDate)
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		baseWhere += fmt.Sprintf(" AND a.status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}

	countQuery := "SELECT COUNT(*) FROM attendance_days a WHERE " + baseWhere
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendance records: %w", err)
	}

	sortOrder := "DESC"
	if strings.ToLower(filter.SortOrder) == "asc" {
		sortOrder = "ASC"
	}

	selectQuery := fmt.Sprintf(`
		SELECT %s
		FROM attendance_days a
		WHERE %s
		ORDER BY a.date %s
		LIMIT $%d OFFSET $%d
	`, attendanceColumns, baseWhere, sortOrder, argIdx, argIdx+1)

	limit := filter.Limit
	if limit == 0 {
		limit = 20
	}
	offset := (filter.Page - 1) * limit
	args = append(args, limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query attendance records: %w", err)
	}
	defer rows.Close()

	var records []attendance.AttendanceDayRecord
	for rows.Next() {
		rec, err := scanAttendance(rows, false)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, rec)
	}

	return records, total, nil
}

// ListOpenSessionsBefore implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListOpenSessionsBefore(ctx context.Context, date string) ([]attendance.AttendanceDayRecord, error) {
	q := GetQuerier(ctx, a.db)

	query := fmt.Sprintf(`
		SELECT %s
		FROM attendance_days a
		WHERE a.clock_out_at IS NULL AND a.date < $1
		ORDER BY a.date ASC
	`, attendanceColumns)

	rows, err := q.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query open sessions: %w", err)
	}
	defer rows.Close()

	var records []attendance.AttendanceDayRecord
	for rows.Next() {
		rec, err := scanAttendance(rows, false)
		if err != nil {
			return nil, fmt.Errorf("failed to scan open session: %w", err)
		}
		records = append(records, rec)
	}

	return records, nil
}

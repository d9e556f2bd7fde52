package attendance

import (
	"context"
	"log/slog"
	"math"
	"mime/multipart"
	"sort"
	"time"

	"github.com/workpulse/timecore-backend-go/internal/domain/attendance"
	"github.com/workpulse/timecore-backend-go/internal/domain/audit"
	"github.com/workpulse/timecore-backend-go/internal/domain/organization"
	"github.com/workpulse/timecore-backend-go/internal/domain/user"
	"github.com/workpulse/timecore-backend-go/internal/pkg/email"
	"github.com/workpulse/timecore-backend-go/internal/pkg/geofence"
	"github.com/workpulse/timecore-backend-go/internal/pkg/keylock"
	"github.com/workpulse/timecore-backend-go/internal/pkg/validator"
	"github.com/workpulse/timecore-backend-go/internal/service/file"
)

type attendanceService struct {
	attendanceRepo attendance.AttendanceRepository
	orgRepo        organization.OrganizationRepository
	userRepo       user.UserRepository
	fileService    file.FileService
	emailService   email.EmailService
	recorder       audit.Recorder
	locks          *keylock.KeyedMutex

	// now is injectable for tests; production wiring passes time.Now.
	now func() time.Time
}

func NewAttendanceService(
	attendanceRepo attendance.AttendanceRepository,
	orgRepo organization.OrganizationRepository,
	userRepo user.UserRepository,
	fileService file.FileService,
	emailService email.EmailService,
	recorder audit.Recorder,
	now func() time.Time,
) attendance.AttendanceService {
	if now == nil {
		now = time.Now
	}
	return &attendanceService{
		attendanceRepo: attendanceRepo,
		orgRepo:        orgRepo,
		userRepo:       userRepo,
		fileService:    fileService,
		emailService:   emailService,
		recorder:       recorder,
		locks:          keylock.NewKeyedMutex(),
		now:            now,
	}
}

// ClockIn implements attendance.AttendanceService.
func (s *attendanceService) ClockIn(ctx context.Context, actor user.Actor, req attendance.ClockInRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	s.locks.Lock(actor.ID)
	defer s.locks.Unlock(actor.ID)

	org, err := s.orgRepo.GetByID(ctx, actor.OrganizationID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	localNow := s.now().In(org.Location())
	date := localNow.Format("2006-01-02")

	existing, err := s.attendanceRepo.GetByActorAndDate(ctx, actor.ID, date, actor.OrganizationID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if existing != nil {
		return attendance.AttendanceResponse{}, attendance.ErrAlreadyClockedIn
	}

	capture, err := s.buildCapture(ctx, actor, org, date, "clock_in", captureInput{
		latitude:     req.Latitude,
		longitude:    req.Longitude,
		device:       req.Device,
		faceDetected: req.FaceDetected,
		ip:           req.IP,
		userAgent:    req.UserAgent,
		file:         req.File,
		fileHeader:   req.FileHeader,
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	status := s.classifyClockIn(org, localNow, capture.WithinGeofence)

	record := attendance.AttendanceDayRecord{
		ActorID:        actor.ID,
		OrganizationID: actor.OrganizationID,
		Date:           date,
		ClockIn:        &capture,
		Status:         status,
	}

	// The unique (actor, date, organization) constraint is the authoritative
	// duplicate guard; the lookup above only gives a friendlier fast path.
	created, err := s.attendanceRepo.Create(ctx, record)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	s.recorder.Record(audit.Event{
		OrganizationID: actor.OrganizationID,
		ActorID:        actor.ID,
		Action:         audit.ActionClockIn,
		EntityType:     "attendance",
		EntityID:       created.ID,
		Metadata: map[string]interface{}{
			"date":            created.Date,
			"status":          created.Status,
			"ip":              capture.IP,
			"within_geofence": capture.WithinGeofence,
		},
	})

	if status == attendance.StatusPending {
		go s.notifyAdminsPending(actor, org, created.Date)
	}

	return toAttendanceResponse(created), nil
}

// ClockOut implements attendance.AttendanceService.
func (s *attendanceService) ClockOut(ctx context.Context, actor user.Actor, req attendance.ClockOutRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	s.locks.Lock(actor.ID)
	defer s.locks.Unlock(actor.ID)

	org, err := s.orgRepo.GetByID(ctx, actor.OrganizationID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	localNow := s.now().In(org.Location())
	date := localNow.Format("2006-01-02")

	record, err := s.attendanceRepo.GetByActorAndDate(ctx, actor.ID, date, actor.OrganizationID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if record == nil || record.ClockIn == nil {
		return attendance.AttendanceResponse{}, attendance.ErrNotClockedIn
	}
	if record.ClockOut != nil {
		return attendance.AttendanceResponse{}, attendance.ErrAlreadyClockedOut
	}

	capture, err := s.buildCapture(ctx, actor, org, date, "clock_out", captureInput{
		latitude:     req.Latitude,
		longitude:    req.Longitude,
		device:       req.Device,
		faceDetected: req.FaceDetected,
		ip:           req.IP,
		userAgent:    req.UserAgent,
		file:         req.File,
		fileHeader:   req.FileHeader,
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	// Total hours are derived exactly once here. Status is not re-evaluated:
	// late stays late, pending stays pending until approved.
	total := roundHours(capture.Timestamp.Sub(record.ClockIn.Timestamp).Hours())
	record.ClockOut = &capture
	record.TotalHours = &total

	if err := s.attendanceRepo.Update(ctx, *record); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	s.recorder.Record(audit.Event{
		OrganizationID: actor.OrganizationID,
		ActorID:        actor.ID,
		Action:         audit.ActionClockOut,
		EntityType:     "attendance",
		EntityID:       record.ID,
		Metadata: map[string]interface{}{
			"date":        record.Date,
			"total_hours": total,
		},
	})

	return toAttendanceResponse(*record), nil
}

// Approve implements attendance.AttendanceService.
func (s *attendanceService) Approve(ctx context.Context, actor user.Actor, recordID string) (attendance.AttendanceResponse, error) {
	if !actor.IsAdmin() {
		return attendance.AttendanceResponse{}, attendance.ErrUnauthorized
	}

	record, err := s.attendanceRepo.GetByID(ctx, recordID, actor.OrganizationID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	if record.Status != attendance.StatusPending {
		return attendance.AttendanceResponse{}, attendance.ErrNotPendingStatus
	}

	approvedAt := s.now()
	record.Status = attendance.StatusPresent
	record.ApprovedBy = &actor.ID
	record.ApprovedAt = &approvedAt

	if err := s.attendanceRepo.Update(ctx, record); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	s.recorder.Record(audit.Event{
		OrganizationID: actor.OrganizationID,
		ActorID:        actor.ID,
		Action:         audit.ActionAttendanceApproved,
		EntityType:     "attendance",
		EntityID:       record.ID,
		Metadata: map[string]interface{}{
			"date":     record.Date,
			"actor_id": record.ActorID,
		},
	})

	return toAttendanceResponse(record), nil
}

// GetOverview implements attendance.AttendanceService.
func (s *attendanceService) GetOverview(ctx context.Context, actor user.Actor, date string) (attendance.OverviewResponse, error) {
	if !actor.IsAdmin() {
		return attendance.OverviewResponse{}, attendance.ErrUnauthorized
	}

	if _, valid := validator.IsValidDate(date); !valid {
		return attendance.OverviewResponse{}, validator.ValidationErrors{
			{Field: "date", Message: "date must be in YYYY-MM-DD format"},
		}
	}

	records, err := s.attendanceRepo.ListByDate(ctx, actor.OrganizationID, date)
	if err != nil {
		return attendance.OverviewResponse{}, err
	}

	overview := attendance.OverviewResponse{
		Date:        date,
		Records:     make([]attendance.AttendanceResponse, 0, len(records)),
		IPConflicts: detectIPConflicts(records),
	}

	for _, record := range records {
		overview.Records = append(overview.Records, toAttendanceResponse(record))
		switch record.Status {
		case attendance.StatusPresent:
			overview.PresentCount++
		case attendance.StatusLate:
			overview.LateCount++
		case attendance.StatusPending:
			overview.PendingCount++
		}
	}

	return overview, nil
}

// GetMyAttendance implements attendance.AttendanceService.
func (s *attendanceService) GetMyAttendance(ctx context.Context, actor user.Actor, filter attendance.MyAttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	records, total, err := s.attendanceRepo.ListByActor(ctx, actor.ID, filter, actor.OrganizationID)
	if err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	resp := attendance.ListAttendanceResponse{
		TotalCount:  total,
		Page:        filter.Page,
		Limit:       filter.Limit,
		TotalPages:  int(math.Ceil(float64(total) / float64(filter.Limit))),
		Attendances: make([]attendance.AttendanceResponse, 0, len(records)),
	}
	for _, record := range records {
		resp.Attendances = append(resp.Attendances, toAttendanceResponse(record))
	}

	return resp, nil
}

// ========================================
// CAPTURE BUILDER
// ========================================

type captureInput struct {
	latitude     *float64
	longitude    *float64
	device       string
	faceDetected *bool
	ip           string
	userAgent    string
	file         multipart.File
	fileHeader   *multipart.FileHeader
}

// buildCapture assembles the immutable verification snapshot for one clock
// action. A missing photo is fine; a photo that fails to upload aborts the
// action so the record never points at evidence that was not stored.
func (s *attendanceService) buildCapture(ctx context.Context, actor user.Actor, org organization.Organization, date, clockType string, in captureInput) (attendance.Capture, error) {
	capture := attendance.Capture{
		Timestamp:      s.now(),
		Latitude:       in.latitude,
		Longitude:      in.longitude,
		IP:             in.ip,
		Device:         in.device,
		UserAgent:      in.userAgent,
		WithinGeofence: geofence.Evaluate(org.Geofence, in.latitude, in.longitude),
	}
	// A photo-bearing capture counts as detected unless the client says
	// otherwise; without a photo there is nothing to detect.
	if in.faceDetected != nil {
		capture.FaceDetected = *in.faceDetected
	} else if in.file != nil && in.fileHeader != nil {
		capture.FaceDetected = true
	}

	if in.file != nil && in.fileHeader != nil {
		photoURL, err := s.fileService.UploadCapturePhoto(ctx, actor.ID, date, in.file, in.fileHeader.Filename, clockType)
		if err != nil {
			return attendance.Capture{}, err
		}
		capture.PhotoURL = &photoURL
	}

	return capture, nil
}

// classifyClockIn resolves the day status of a fresh clock-in. Outside the
// geofence wins over the late cutoff; at or after the cutoff is late.
func (s *attendanceService) classifyClockIn(org organization.Organization, localNow time.Time, within *bool) string {
	if within != nil && !*within {
		return attendance.StatusPending
	}
	if !localNow.Before(org.LateCutoffAt(localNow)) {
		return attendance.StatusLate
	}
	return attendance.StatusPresent
}

func (s *attendanceService) notifyAdminsPending(actor user.Actor, org organization.Organization, date string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	actorUser, err := s.userRepo.GetByID(ctx, actor.ID, actor.OrganizationID)
	if err != nil {
		slog.Error("Failed to load actor for pending alert", "actor_id", actor.ID, "error", err)
		return
	}

	admins, err := s.userRepo.GetAdminsByOrganization(ctx, actor.OrganizationID)
	if err != nil {
		slog.Error("Failed to load admins for pending alert", "organization_id", actor.OrganizationID, "error", err)
		return
	}

	reason := "The clock-in location was outside the configured geofence."
	for _, admin := range admins {
		if err := s.emailService.SendPendingAttendanceAlert(admin.Email, admin.FullName, actorUser.FullName, org.Name, date, reason); err != nil {
			slog.Error("Failed to send pending attendance alert", "to", admin.Email, "error", err)
		}
	}
}

func roundHours(h float64) float64 {
	return math.Round(h*100) / 100
}

// detectIPConflicts groups one day's records by clock-in IP and reports every
// IP used by more than one distinct actor. Advisory only; it never changes a
// record's status.
func detectIPConflicts(records []attendance.AttendanceDayRecord) []attendance.IPConflict {
	actorsByIP := make(map[string]map[string]struct{})
	for _, record := range records {
		if record.ClockIn == nil || record.ClockIn.IP == "" {
			continue
		}
		if actorsByIP[record.ClockIn.IP] == nil {
			actorsByIP[record.ClockIn.IP] = make(map[string]struct{})
		}
		actorsByIP[record.ClockIn.IP][record.ActorID] = struct{}{}
	}

	conflicts := make([]attendance.IPConflict, 0)
	for ip, actors := range actorsByIP {
		if len(actors) < 2 {
			continue
		}
		actorIDs := make([]string, 0, len(actors))
		for id := range actors {
			actorIDs = append(actorIDs, id)
		}
		sort.Strings(actorIDs)
		conflicts = append(conflicts, attendance.IPConflict{IP: ip, ActorIDs: actorIDs})
	}

	sort.Slice(conflicts, func(i, j int) bool { return conflicts[i].IP < conflicts[j].IP })
	return conflicts
}

// ========================================
// MAPPERS
// ========================================

func toCaptureResponse(c *attendance.Capture) *attendance.CaptureResponse {
	if c == nil {
		return nil
	}
	return &attendance.CaptureResponse{
		Timestamp:      c.Timestamp.UTC().Format(time.RFC3339),
		PhotoURL:       c.PhotoURL,
		Latitude:       c.Latitude,
		Longitude:      c.Longitude,
		IP:             c.IP,
		Device:         c.Device,
		UserAgent:      c.UserAgent,
		WithinGeofence: c.WithinGeofence,
		FaceDetected:   c.FaceDetected,
	}
}

func toAttendanceResponse(record attendance.AttendanceDayRecord) attendance.AttendanceResponse {
	return attendance.AttendanceResponse{
		ID:         record.ID,
		ActorID:    record.ActorID,
		ActorName:  record.ActorName,
		Date:       record.Date,
		ClockIn:    toCaptureResponse(record.ClockIn),
		ClockOut:   toCaptureResponse(record.ClockOut),
		Status:     record.Status,
		TotalHours: record.TotalHours,
		ApprovedBy: record.ApprovedBy,
		CreatedAt:  record.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:  record.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

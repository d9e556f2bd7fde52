package attendance

import (
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/workpulse/timecore-backend-go/internal/pkg/validator"
)

// ========================================
// CLOCK ACTION DTOs
// ========================================

// ClockInRequest carries the raw submission plus transport metadata the
// handler extracts from the inbound request. Coordinates and photo are
// optional; a missing photo is allowed, a failed photo upload is not.
type ClockInRequest struct {
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	Device       string   `json:"device"`
	FaceDetected *bool    `json:"face_detected,omitempty"`

	IP         string                `json:"-"`
	UserAgent  string                `json:"-"`
	File       multipart.File        `json:"-"`
	FileHeader *multipart.FileHeader `json:"-"`
}

func (r *ClockInRequest) Validate() error {
	return validateClockRequest(r.Latitude, r.Longitude, r.FileHeader)
}

type ClockOutRequest struct {
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	Device       string   `json:"device"`
	FaceDetected *bool    `json:"face_detected,omitempty"`

	IP         string                `json:"-"`
	UserAgent  string                `json:"-"`
	File       multipart.File        `json:"-"`
	FileHeader *multipart.FileHeader `json:"-"`
}

func (r *ClockOutRequest) Validate() error {
	return validateClockRequest(r.Latitude, r.Longitude, r.FileHeader)
}

func validateClockRequest(lat, lng *float64, fileHeader *multipart.FileHeader) error {
	var errs validator.ValidationErrors

	if (lat == nil) != (lng == nil) {
		errs = append(errs, validator.ValidationError{
			Field:   "coordinates",
			Message: "latitude and longitude must be supplied together",
		})
	}

	if lat != nil && (*lat < -90 || *lat > 90) {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude must be between -90 and 90",
		})
	}

	if lng != nil && (*lng < -180 || *lng > 180) {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude must be between -180 and 180",
		})
	}

	if fileHeader != nil {
		ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
		if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
			errs = append(errs, validator.ValidationError{
				Field:   "photo",
				Message: "invalid file type: only jpg, jpeg, png allowed",
			})
		} else if fileHeader.Size > 10<<20 { // 10MB
			errs = append(errs, validator.ValidationError{
				Field:   "photo",
				Message: "capture photo size must not exceed 10MB",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ========================================
// RESPONSE DTOs
// ========================================

type CaptureResponse struct {
	Timestamp      string   `json:"timestamp"`
	PhotoURL       *string  `json:"photo_url,omitempty"`
	Latitude       *float64 `json:"latitude,omitempty"`
	Longitude      *float64 `json:"longitude,omitempty"`
	IP             string   `json:"ip"`
	Device         string   `json:"device"`
	UserAgent      string   `json:"user_agent"`
	WithinGeofence *bool    `json:"within_geofence"`
	FaceDetected   bool     `json:"face_detected"`
}

type AttendanceResponse struct {
	ID         string           `json:"id"`
	ActorID    string           `json:"actor_id"`
	ActorName  *string          `json:"actor_name,omitempty"`
	Date       string           `json:"date"`
	ClockIn    *CaptureResponse `json:"clock_in,omitempty"`
	ClockOut   *CaptureResponse `json:"clock_out,omitempty"`
	Status     string           `json:"status"`
	TotalHours *float64         `json:"total_hours,omitempty"`
	ApprovedBy *string          `json:"approved_by,omitempty"`
	CreatedAt  string           `json:"created_at"`
	UpdatedAt  string           `json:"updated_at"`
}

// IPConflict is one advisory conflict group: a clock-in IP shared by more
// than one distinct actor on the same day.
type IPConflict struct {
	IP       string   `json:"ip"`
	ActorIDs []string `json:"actor_ids"`
}

type OverviewResponse struct {
	Date         string               `json:"date"`
	Records      []AttendanceResponse `json:"records"`
	PresentCount int                  `json:"present_count"`
	LateCount    int                  `json:"late_count"`
	PendingCount int                  `json:"pending_count"`
	IPConflicts  []IPConflict         `json:"ip_conflicts"`
}

// ========================================
// LIST DTOs
// ========================================

type MyAttendanceFilter struct {
	StartDate *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate   *string `json:"end_date,omitempty"`   // YYYY-MM-DD
	Status    *string `json:"status,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`

	// Sorting
	SortOrder string `json:"sort_order"` // asc, desc
}

func (f *MyAttendanceFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if f.Page == 0 {
		f.Page = 1 // Default page
	}

	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if f.Limit == 0 {
		f.Limit = 20 // Default limit
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}

	if f.Status != nil {
		validStatuses := []string{StatusPending, StatusPresent, StatusLate}
		if !validator.IsInSlice(*f.Status, validStatuses) {
			errs = append(errs, validator.ValidationError{
				Field:   "status",
				Message: "status must be one of: pending, present, late",
			})
		}
	}

	if f.StartDate != nil && *f.StartDate != "" {
		if _, valid := validator.IsValidDate(*f.StartDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be in YYYY-MM-DD format",
			})
		}
	}

	if f.EndDate != nil && *f.EndDate != "" {
		if _, valid := validator.IsValidDate(*f.EndDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be in YYYY-MM-DD format",
			})
		}
	}

	if f.SortOrder != "" {
		if !validator.IsInSlice(strings.ToLower(f.SortOrder), []string{"asc", "desc"}) {
			errs = append(errs, validator.ValidationError{
				Field:   "sort_order",
				Message: "sort_order must be one of: asc, desc",
			})
		}
	} else {
		f.SortOrder = "desc" // Default descending (newest first)
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ListAttendanceResponse struct {
	TotalCount  int64                `json:"total_count"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
	TotalPages  int                  `json:"total_pages"`
	Attendances []AttendanceResponse `json:"attendances"`
}

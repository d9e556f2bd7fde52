package timesheet

import (
	"strings"

	"github.com/workpulse/timecore-backend-go/internal/pkg/validator"
)

// ========================================
// TIMESHEET DTOs
// ========================================

type CreateTimesheetRequest struct {
	TaskLabel       string   `json:"task_label"`
	Date            string   `json:"date"` // YYYY-MM-DD
	CollaboratorIDs []string `json:"collaborator_ids,omitempty"`
	Status          string   `json:"status,omitempty"` // draft (default) or pending
}

func (r *CreateTimesheetRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.TaskLabel) {
		errs = append(errs, validator.ValidationError{
			Field:   "task_label",
			Message: "task_label is required",
		})
	}

	if _, valid := validator.IsValidDate(r.Date); !valid {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}

	if r.Status == "" {
		r.Status = StatusDraft // Default status
	}
	if !validator.IsInSlice(r.Status, []string{StatusDraft, StatusPending}) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: draft, pending",
		})
	}

	for _, id := range r.CollaboratorIDs {
		if validator.IsEmpty(id) {
			errs = append(errs, validator.ValidationError{
				Field:   "collaborator_ids",
				Message: "collaborator_ids must not contain empty values",
			})
			break
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type TimerEventResponse struct {
	Action string `json:"action"`
	Note   string `json:"note,omitempty"`
	At     string `json:"at"`
}

type TimesheetResponse struct {
	ID                string               `json:"id"`
	OwnerID           string               `json:"owner_id"`
	CollaboratorIDs   []string             `json:"collaborator_ids,omitempty"`
	Date              string               `json:"date"`
	TaskLabel         string               `json:"task_label"`
	Status            string               `json:"status"`
	IsRunning         bool                 `json:"is_running"`
	StartTime         *string              `json:"start_time,omitempty"`
	TotalMilliseconds int64                `json:"total_milliseconds"`
	Events            []TimerEventResponse `json:"events,omitempty"`
	CreatedAt         string               `json:"created_at"`
	UpdatedAt         string               `json:"updated_at"`
}

// TotalResponse is the aggregator output: committed durations plus the live
// elapsed time of a running timer, computed at query time.
type TotalResponse struct {
	Milliseconds int64 `json:"milliseconds"`
}

// ========================================
// LIST DTOs
// ========================================

type ListFilter struct {
	StartDate *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate   *string `json:"end_date,omitempty"`   // YYYY-MM-DD
	Status    *string `json:"status,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`

	// Sorting
	SortOrder string `json:"sort_order"` // asc, desc
}

func (f *ListFilter) Validate() error {
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
		validStatuses := []string{StatusDraft, StatusPending, StatusInProgress, StatusSubmitted, StatusReviewed}
		if !validator.IsInSlice(*f.Status, validStatuses) {
			errs = append(errs, validator.ValidationError{
				Field:   "status",
				Message: "status must be one of: draft, pending, in_progress, submitted, reviewed",
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

type ListTimesheetResponse struct {
	TotalCount int64               `json:"total_count"`
	Page       int                 `json:"page"`
	Limit      int                 `json:"limit"`
	TotalPages int                 `json:"total_pages"`
	Timesheets []TimesheetResponse `json:"timesheets"`
}

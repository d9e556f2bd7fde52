package organization

import (
	"github.com/workpulse/timecore-backend-go/internal/pkg/validator"
)

type UpdateSettingsRequest struct {
	Timezone        *string  `json:"timezone,omitempty"`
	LateCutoff      *string  `json:"late_cutoff,omitempty"` // HH:MM
	GeofenceLat     *float64 `json:"geofence_latitude,omitempty"`
	GeofenceLng     *float64 `json:"geofence_longitude,omitempty"`
	GeofenceRadiusM *float64 `json:"geofence_radius_meters,omitempty"`
	GeofenceActive  *bool    `json:"geofence_active,omitempty"`
}

func (r *UpdateSettingsRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.LateCutoff != nil && !validator.IsValidClockTime(*r.LateCutoff) {
		errs = append(errs, validator.ValidationError{
			Field:   "late_cutoff",
			Message: "late_cutoff must be in HH:MM 24-hour format",
		})
	}

	if r.GeofenceLat != nil && (*r.GeofenceLat < -90 || *r.GeofenceLat > 90) {
		errs = append(errs, validator.ValidationError{
			Field:   "geofence_latitude",
			Message: "geofence_latitude must be between -90 and 90",
		})
	}

	if r.GeofenceLng != nil && (*r.GeofenceLng < -180 || *r.GeofenceLng > 180) {
		errs = append(errs, validator.ValidationError{
			Field:   "geofence_longitude",
			Message: "geofence_longitude must be between -180 and 180",
		})
	}

	if r.GeofenceRadiusM != nil && *r.GeofenceRadiusM <= 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "geofence_radius_meters",
			Message: "geofence_radius_meters must be a positive number",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type OrganizationResponse struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Timezone        string   `json:"timezone"`
	LateCutoff      string   `json:"late_cutoff"`
	GeofenceLat     *float64 `json:"geofence_latitude,omitempty"`
	GeofenceLng     *float64 `json:"geofence_longitude,omitempty"`
	GeofenceRadiusM *float64 `json:"geofence_radius_meters,omitempty"`
	GeofenceActive  bool     `json:"geofence_active"`
}

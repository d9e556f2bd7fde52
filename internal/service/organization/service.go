package organization

import (
	"context"
	"time"

	"github.com/workpulse/timecore-backend-go/internal/domain/organization"
	"github.com/workpulse/timecore-backend-go/internal/domain/user"
	"github.com/workpulse/timecore-backend-go/internal/pkg/geofence"
)

type organizationService struct {
	orgRepo organization.OrganizationRepository
}

func NewOrganizationService(orgRepo organization.OrganizationRepository) organization.OrganizationService {
	return &organizationService{orgRepo: orgRepo}
}

// Get implements organization.OrganizationService.
func (s *organizationService) Get(ctx context.Context, actor user.Actor) (organization.OrganizationResponse, error) {
	org, err := s.orgRepo.GetByID(ctx, actor.OrganizationID)
	if err != nil {
		return organization.OrganizationResponse{}, err
	}
	return toOrganizationResponse(org), nil
}

// UpdateSettings implements organization.OrganizationService.
func (s *organizationService) UpdateSettings(ctx context.Context, actor user.Actor, req organization.UpdateSettingsRequest) (organization.OrganizationResponse, error) {
	if !actor.IsAdmin() {
		return organization.OrganizationResponse{}, user.ErrAdminPrivilegeRequired
	}
	if err := req.Validate(); err != nil {
		return organization.OrganizationResponse{}, err
	}

	org, err := s.orgRepo.GetByID(ctx, actor.OrganizationID)
	if err != nil {
		return organization.OrganizationResponse{}, err
	}

	if req.Timezone != nil {
		if _, err := time.LoadLocation(*req.Timezone); err != nil {
			return organization.OrganizationResponse{}, organization.ErrInvalidTimezone
		}
		org.Timezone = *req.Timezone
	}
	if req.LateCutoff != nil {
		org.LateCutoff = *req.LateCutoff
	}

	if req.GeofenceLat != nil || req.GeofenceLng != nil || req.GeofenceRadiusM != nil || req.GeofenceActive != nil {
		if org.Geofence == nil {
			org.Geofence = &geofence.Boundary{}
		}
		if req.GeofenceLat != nil {
			org.Geofence.Latitude = *req.GeofenceLat
		}
		if req.GeofenceLng != nil {
			org.Geofence.Longitude = *req.GeofenceLng
		}
		if req.GeofenceRadiusM != nil {
			org.Geofence.RadiusMeters = *req.GeofenceRadiusM
		}
		if req.GeofenceActive != nil {
			org.Geofence.Active = *req.GeofenceActive
		}
	}

	if err := s.orgRepo.UpdateSettings(ctx, org); err != nil {
		return organization.OrganizationResponse{}, err
	}

	return toOrganizationResponse(org), nil
}

func toOrganizationResponse(org organization.Organization) organization.OrganizationResponse {
	resp := organization.OrganizationResponse{
		ID:         org.ID,
		Name:       org.Name,
		Timezone:   org.Timezone,
		LateCutoff: org.LateCutoff,
	}
	if resp.LateCutoff == "" {
		resp.LateCutoff = organization.DefaultLateCutoff
	}
	if org.Geofence != nil {
		resp.GeofenceLat = &org.Geofence.Latitude
		resp.GeofenceLng = &org.Geofence.Longitude
		resp.GeofenceRadiusM = &org.Geofence.RadiusMeters
		resp.GeofenceActive = org.Geofence.Active
	}
	return resp
}

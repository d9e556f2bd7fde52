package postgresql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/workpulse/timecore-backend-go/internal/domain/organization"
	"github.com/workpulse/timecore-backend-go/internal/pkg/database"
	"github.com/workpulse/timecore-backend-go/internal/pkg/geofence"
)

type organizationRepository struct {
	db *database.DB
}

func NewOrganizationRepository(db *database.DB) organization.OrganizationRepository {
	return &organizationRepository{db: db}
}

// GetByID implements organization.OrganizationRepository.
func (o *organizationRepository) GetByID(ctx context.Context, id string) (organization.Organization, error) {
	q := GetQuerier(ctx, o.db)

	query := `
		SELECT id, name, timezone, late_cutoff,
		       geofence_latitude, geofence_longitude, geofence_radius_meters, geofence_active,
		       created_at, updated_at
		FROM organizations
		WHERE id = $1
	`

	var org organization.Organization
	var lat, lng, radius *float64
	var active *bool

	err := q.QueryRow(ctx, query, id).Scan(
		&org.ID, &org.Name, &org.Timezone, &org.LateCutoff,
		&lat, &lng, &radius, &active,
		&org.CreatedAt, &org.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return organization.Organization{}, organization.ErrOrganizationNotFound
		}
		return organization.Organization{}, fmt.Errorf("failed to get organization by ID: %w", err)
	}

	if lat != nil && lng != nil && radius != nil {
		org.Geofence = &geofence.Boundary{
			Latitude:     *lat,
			Longitude:    *lng,
			RadiusMeters: *radius,
			Active:       active != nil && *active,
		}
	}

	return org, nil
}

// UpdateSettings implements organization.OrganizationRepository.
func (o *organizationRepository) UpdateSettings(ctx context.Context, org organization.Organization) error {
	q := GetQuerier(ctx, o.db)

	var lat, lng, radius *float64
	var active *bool
	if org.Geofence != nil {
		lat = &org.Geofence.Latitude
		lng = &org.Geofence.Longitude
		radius = &org.Geofence.RadiusMeters
		active = &org.Geofence.Active
	}

	query := `
		UPDATE organizations SET
			timezone = $1, late_cutoff = $2,
			geofence_latitude = $3, geofence_longitude = $4,
			geofence_radius_meters = $5, geofence_active = $6,
			updated_at = NOW()
		WHERE id = $7
		RETURNING id
	`

	var updatedID string
	err := q.QueryRow(ctx, query,
		org.Timezone, org.LateCutoff,
		lat, lng, radius, active,
		org.ID,
	).Scan(&updatedID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return organization.ErrOrganizationNotFound
		}
		return fmt.Errorf("failed to update organization settings: %w", err)
	}

	return nil
}

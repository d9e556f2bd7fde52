package organization

import "context"

type OrganizationRepository interface {
	GetByID(ctx context.Context, id string) (Organization, error)

	// UpdateSettings persists timezone, late cutoff and geofence boundary.
	// It has no retroactive effect on captures already recorded.
	UpdateSettings(ctx context.Context, org Organization) error
}

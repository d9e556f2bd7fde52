package organization

import (
	"context"

	"github.com/workpulse/timecore-backend-go/internal/domain/user"
)

type OrganizationService interface {
	Get(ctx context.Context, actor user.Actor) (OrganizationResponse, error)

	// UpdateSettings changes timezone, late cutoff and geofence boundary.
	// Admin only; no retroactive effect on existing records.
	UpdateSettings(ctx context.Context, actor user.Actor, req UpdateSettingsRequest) (OrganizationResponse, error)
}

package user

import "context"

// UserRepository defines data access methods for users. All lookups are
// scoped to an organization to prevent cross-tenant access.
type UserRepository interface {
	GetByID(ctx context.Context, id string, organizationID string) (User, error)

	// GetByEmail retrieves a user by email across organizations; used by the
	// login flow before an organization context exists.
	GetByEmail(ctx context.Context, email string) (User, error)

	GetByGoogleID(ctx context.Context, googleID string) (User, error)

	// GetAdminsByOrganization lists users with the admin role; used to route
	// pending-attendance alerts.
	GetAdminsByOrganization(ctx context.Context, organizationID string) ([]User, error)
}

package user

import (
	"time"
)

type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

type User struct {
	ID             string
	OrganizationID string
	Email          string
	PasswordHash   string
	FullName       string
	Role           Role
	GoogleID       *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Actor is the authenticated identity attached to every call, resolved from
// the session token by the HTTP layer and passed explicitly into services.
type Actor struct {
	ID             string
	OrganizationID string
	Role           Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// ActorFromClaims builds an Actor from JWT claims.
func ActorFromClaims(claims map[string]interface{}) (Actor, error) {
	actorID, ok := claims["actor_id"].(string)
	if !ok || actorID == "" {
		return Actor{}, ErrInvalidActorClaims
	}

	orgID, ok := claims["org_id"].(string)
	if !ok || orgID == "" {
		return Actor{}, ErrInvalidActorClaims
	}

	roleStr, ok := claims["role"].(string)
	if !ok || roleStr == "" {
		return Actor{}, ErrInvalidActorClaims
	}

	return Actor{
		ID:             actorID,
		OrganizationID: orgID,
		Role:           Role(roleStr),
	}, nil
}

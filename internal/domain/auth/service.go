package auth

import (
	"context"
)

type AuthService interface {
	Login(ctx context.Context, req LoginRequest, session SessionTrackingRequest) (TokenResponse, error)

	// LoginWithGoogle signs in an existing user matched by Google account ID
	// or verified email. Unknown accounts are rejected; there is no
	// self-service signup.
	LoginWithGoogle(ctx context.Context, email string, googleID string, session SessionTrackingRequest) (TokenResponse, error)

	RefreshToken(ctx context.Context, refreshToken string, session SessionTrackingRequest) (AccessTokenResponse, error)

	Logout(ctx context.Context, accessToken string, refreshToken string) error
}

package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/workpulse/timecore-backend-go/internal/domain/auth"
	"github.com/workpulse/timecore-backend-go/internal/domain/user"
	"github.com/workpulse/timecore-backend-go/internal/pkg/database"
	jwtpkg "github.com/workpulse/timecore-backend-go/internal/pkg/jwt"
	"github.com/workpulse/timecore-backend-go/internal/repository/postgresql"
	"golang.org/x/crypto/bcrypt"
)

type AuthServiceImpl struct {
	txManager database.TxManager
	userRepo  user.UserRepository
	jwtSvc    jwtpkg.Service
	jwtRepo   postgresql.JWTRepository
}

func NewAuthService(txManager database.TxManager, userRepo user.UserRepository, jwtSvc jwtpkg.Service, jwtRepo postgresql.JWTRepository) auth.AuthService {
	return &AuthServiceImpl{
		txManager: txManager,
		userRepo:  userRepo,
		jwtSvc:    jwtSvc,
		jwtRepo:   jwtRepo,
	}
}

// Login implements auth.AuthService.
func (a *AuthServiceImpl) Login(ctx context.Context, req auth.LoginRequest, session auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	userData, err := a.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.TokenResponse{}, auth.ErrInvalidCredentials
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	if userData.PasswordHash == "" {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(userData.PasswordHash), []byte(req.Password)); err != nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}

	return a.issueTokens(ctx, userData, session)
}

// LoginWithGoogle implements auth.AuthService.
func (a *AuthServiceImpl) LoginWithGoogle(ctx context.Context, email string, googleID string, session auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	userData, err := a.userRepo.GetByGoogleID(ctx, googleID)
	if err != nil {
		if !errors.Is(err, user.ErrUserNotFound) {
			return auth.TokenResponse{}, fmt.Errorf("failed to get user by google ID: %w", err)
		}
		// Fall back to the verified email for accounts that have not linked
		// Google yet.
		userData, err = a.userRepo.GetByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, user.ErrUserNotFound) {
				return auth.TokenResponse{}, auth.ErrInvalidCredentials
			}
			return auth.TokenResponse{}, fmt.Errorf("failed to get user by email: %w", err)
		}
	}

	return a.issueTokens(ctx, userData, session)
}

func (a *AuthServiceImpl) issueTokens(ctx context.Context, userData user.User, session auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	var tokenResponse auth.TokenResponse

	err := a.txManager.WithTx(ctx, func(ctx context.Context) error {
		var err error

		tokenResponse.AccessToken, tokenResponse.AccessTokenExpiresIn, err = a.jwtSvc.GenerateAccessToken(userData.ID, userData.Email, userData.OrganizationID, userData.Role)
		if err != nil {
			return fmt.Errorf("failed to create access token: %w", err)
		}
		tokenResponse.RefreshToken, tokenResponse.RefreshTokenExpiresIn, err = a.jwtSvc.GenerateRefreshToken(userData.ID, userData.OrganizationID)
		if err != nil {
			return fmt.Errorf("failed to create refresh token: %w", err)
		}

		if err := a.jwtRepo.CreateRefreshToken(ctx, userData.ID, tokenResponse.RefreshToken, tokenResponse.RefreshTokenExpiresIn, session); err != nil {
			return fmt.Errorf("failed to save refresh token to database: %w", err)
		}
		return nil
	})
	if err != nil {
		return auth.TokenResponse{}, err
	}

	return tokenResponse, nil
}

// RefreshToken implements auth.AuthService.
func (a *AuthServiceImpl) RefreshToken(ctx context.Context, refreshToken string, session auth.SessionTrackingRequest) (auth.AccessTokenResponse, error) {
	actorID, organizationID, err := a.parseRefreshToken(refreshToken)
	if err != nil {
		return auth.AccessTokenResponse{}, err
	}

	revoked, err := a.jwtRepo.IsRefreshTokenRevoked(ctx, refreshToken)
	if err != nil {
		return auth.AccessTokenResponse{}, fmt.Errorf("failed to check refresh token: %w", err)
	}
	if revoked {
		return auth.AccessTokenResponse{}, auth.ErrRefreshTokenRevoked
	}

	// The token only identifies the actor; role and email are reloaded so a
	// role change takes effect on the next refresh.
	userData, err := a.userRepo.GetByID(ctx, actorID, organizationID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.AccessTokenResponse{}, auth.ErrInvalidToken
		}
		return auth.AccessTokenResponse{}, fmt.Errorf("failed to get user by ID: %w", err)
	}

	accessToken, expiresAt, err := a.jwtSvc.GenerateAccessToken(userData.ID, userData.Email, userData.OrganizationID, userData.Role)
	if err != nil {
		return auth.AccessTokenResponse{}, fmt.Errorf("failed to create access token: %w", err)
	}

	return auth.AccessTokenResponse{
		AccessToken:          accessToken,
		AccessTokenExpiresIn: expiresAt,
	}, nil
}

func (a *AuthServiceImpl) parseRefreshToken(refreshToken string) (string, string, error) {
	token, err := a.jwtSvc.JWTAuth().Decode(refreshToken)
	if err != nil {
		return "", "", auth.ErrInvalidToken
	}

	tokenType, ok := token.Get("type")
	if !ok || tokenType != "refresh" {
		return "", "", auth.ErrInvalidToken
	}

	actorIDVal, ok := token.Get("actor_id")
	if !ok {
		return "", "", auth.ErrInvalidToken
	}
	actorID, ok := actorIDVal.(string)
	if !ok || actorID == "" {
		return "", "", auth.ErrInvalidToken
	}

	orgIDVal, ok := token.Get("org_id")
	if !ok {
		return "", "", auth.ErrInvalidToken
	}
	organizationID, ok := orgIDVal.(string)
	if !ok || organizationID == "" {
		return "", "", auth.ErrInvalidToken
	}

	if err := jwt.Validate(token); err != nil {
		return "", "", auth.ErrInvalidToken
	}

	return actorID, organizationID, nil
}

// Logout implements auth.AuthService.
func (a *AuthServiceImpl) Logout(ctx context.Context, accessToken string, refreshToken string) error {
	if accessToken != "" {
		a.jwtSvc.RevokeToken(accessToken)
	}
	if refreshToken != "" {
		if err := a.jwtRepo.RevokeRefreshToken(ctx, refreshToken); err != nil {
			return fmt.Errorf("failed to revoke refresh token: %w", err)
		}
	}
	return nil
}

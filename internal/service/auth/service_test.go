package auth

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/workpulse/timecore-backend-go/internal/domain/auth"
	"github.com/workpulse/timecore-backend-go/internal/domain/user"
	jwtpkg "github.com/workpulse/timecore-backend-go/internal/pkg/jwt"
)

const testSecret = "test-secret-key-for-jwt"

// ========================================
// TEST FAKES
// ========================================

type fakeUserRepository struct {
	users []user.User
}

func (f *fakeUserRepository) GetByID(ctx context.Context, id string, organizationID string) (user.User, error) {
	for _, u := range f.users {
		if u.ID == id && u.OrganizationID == organizationID {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (f *fakeUserRepository) GetByEmail(ctx context.Context, email string) (user.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (f *fakeUserRepository) GetByGoogleID(ctx context.Context, googleID string) (user.User, error) {
	for _, u := range f.users {
		if u.GoogleID != nil && *u.GoogleID == googleID {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (f *fakeUserRepository) GetAdminsByOrganization(ctx context.Context, organizationID string) ([]user.User, error) {
	var out []user.User
	for _, u := range f.users {
		if u.OrganizationID == organizationID && u.Role == user.RoleAdmin {
			out = append(out, u)
		}
	}
	return out, nil
}

type fakeJWTRepository struct {
	mu      sync.Mutex
	stored  map[string]string // token -> actorID
	revoked map[string]bool
}

func newFakeJWTRepository() *fakeJWTRepository {
	return &fakeJWTRepository{stored: make(map[string]string), revoked: make(map[string]bool)}
}

func (f *fakeJWTRepository) CreateRefreshToken(ctx context.Context, actorID string, token string, expiresAt int64, sessionReq auth.SessionTrackingRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stored[token] = actorID
	return nil
}

func (f *fakeJWTRepository) IsRefreshTokenRevoked(ctx context.Context, token string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.revoked[token], nil
}

func (f *fakeJWTRepository) RevokeRefreshToken(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revoked[token] = true
	return nil
}

type fakeTxManager struct{}

func (fakeTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

type fixture struct {
	userRepo *fakeUserRepository
	jwtRepo  *fakeJWTRepository
	jwtSvc   jwtpkg.Service
	service  auth.AuthService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	googleID := "google-123"
	userRepo := &fakeUserRepository{users: []user.User{
		{
			ID:             "actor-alice",
			OrganizationID: "org-1",
			Email:          "alice@acme.test",
			PasswordHash:   hashPassword(t, "correct-horse"),
			FullName:       "Alice",
			Role:           user.RoleMember,
		},
		{
			ID:             "actor-gary",
			OrganizationID: "org-1",
			Email:          "gary@acme.test",
			FullName:       "Gary",
			Role:           user.RoleMember,
			GoogleID:       &googleID,
		},
	}}
	jwtRepo := newFakeJWTRepository()
	jwtSvc := jwtpkg.NewJWTService(testSecret, "1h", "24h")
	svc := NewAuthService(fakeTxManager{}, userRepo, jwtSvc, jwtRepo)
	return &fixture{userRepo: userRepo, jwtRepo: jwtRepo, jwtSvc: jwtSvc, service: svc}
}

var session = auth.SessionTrackingRequest{UserAgent: "go-test", IPAddress: "127.0.0.1"}

// ========================================
// TESTS
// ========================================

func TestLoginSuccess(t *testing.T) {
	f := newFixture(t)

	tokens, err := f.service.Login(context.Background(), auth.LoginRequest{
		Email:    "alice@acme.test",
		Password: "correct-horse",
	}, session)
	require.NoError(t, err)

	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	assert.Equal(t, "actor-alice", f.jwtRepo.stored[tokens.RefreshToken])
}

func TestLoginWrongPassword(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Login(context.Background(), auth.LoginRequest{
		Email:    "alice@acme.test",
		Password: "wrong",
	}, session)
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Login(context.Background(), auth.LoginRequest{
		Email:    "nobody@acme.test",
		Password: "whatever",
	}, session)
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestLoginGoogleOnlyAccountHasNoPassword(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Login(context.Background(), auth.LoginRequest{
		Email:    "gary@acme.test",
		Password: "anything",
	}, session)
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestLoginWithGoogleByGoogleID(t *testing.T) {
	f := newFixture(t)

	tokens, err := f.service.LoginWithGoogle(context.Background(), "gary@acme.test", "google-123", session)
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
}

func TestLoginWithGoogleFallsBackToEmail(t *testing.T) {
	f := newFixture(t)

	// Alice has no linked Google account; the verified email matches.
	tokens, err := f.service.LoginWithGoogle(context.Background(), "alice@acme.test", "google-999", session)
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
}

func TestLoginWithGoogleUnknownAccount(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.LoginWithGoogle(context.Background(), "stranger@acme.test", "google-000", session)
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tokens, err := f.service.Login(ctx, auth.LoginRequest{
		Email:    "alice@acme.test",
		Password: "correct-horse",
	}, session)
	require.NoError(t, err)

	refreshed, err := f.service.RefreshToken(ctx, tokens.RefreshToken, session)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
}

func TestRefreshTokenGarbage(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.RefreshToken(context.Background(), "not-a-token", session)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestRefreshTokenAccessTokenRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tokens, err := f.service.Login(ctx, auth.LoginRequest{
		Email:    "alice@acme.test",
		Password: "correct-horse",
	}, session)
	require.NoError(t, err)

	// An access token is not a refresh token.
	_, err = f.service.RefreshToken(ctx, tokens.AccessToken, session)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tokens, err := f.service.Login(ctx, auth.LoginRequest{
		Email:    "alice@acme.test",
		Password: "correct-horse",
	}, session)
	require.NoError(t, err)

	err = f.service.Logout(ctx, tokens.AccessToken, tokens.RefreshToken)
	require.NoError(t, err)

	_, err = f.service.RefreshToken(ctx, tokens.RefreshToken, session)
	assert.ErrorIs(t, err, auth.ErrRefreshTokenRevoked)

	assert.True(t, f.jwtSvc.IsTokenRevoked(tokens.AccessToken))
}

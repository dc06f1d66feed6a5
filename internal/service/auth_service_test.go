package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/educrm-api/internal/models"
	appErrors "github.com/noah-isme/educrm-api/pkg/errors"
)

func newAuthFixture(t *testing.T) (*AuthService, *mockUserRepo) {
	t.Helper()
	hash, err := HashPassword("correct-horse")
	require.NoError(t, err)
	repo := &mockUserRepo{users: map[string]*models.User{
		"u1": {ID: "u1", Email: "jane@example.com", PasswordHash: hash, FullName: "Jane", Role: models.RoleCounselor, Active: true},
		"u2": {ID: "u2", Email: "off@example.com", PasswordHash: hash, FullName: "Off", Role: models.RoleCounselor, Active: false},
	}}
	svc := NewAuthService(repo, nil, zap.NewNop(), AuthConfig{
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "educrm-api",
	})
	return svc, repo
}

func TestAuthLoginIssuesTokens(t *testing.T) {
	svc, repo := newAuthFixture(t)
	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "jane@example.com", Password: "correct-horse", IP: "127.0.0.1"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.RefreshToken)
	assert.Equal(t, int64(3600), res.ExpiresIn)
	assert.Equal(t, "u1", res.User.ID)
	assert.Contains(t, repo.lastLogin, "u1")

	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, models.RoleCounselor, claims.Role)
	assert.Equal(t, "Jane", claims.Scope().UserName)
}

func TestAuthLoginGenericFailure(t *testing.T) {
	svc, _ := newAuthFixture(t)

	cases := []models.LoginRequest{
		{Email: "jane@example.com", Password: "wrong-password"},
		{Email: "nobody@example.com", Password: "correct-horse"},
	}
	for _, req := range cases {
		_, err := svc.Login(context.Background(), req)
		var appErr *appErrors.Error
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, 401, appErr.Status)
		assert.Equal(t, "Invalid email or password", appErr.Message)
	}
}

func TestAuthLoginInactiveAccount(t *testing.T) {
	svc, _ := newAuthFixture(t)
	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "off@example.com", Password: "correct-horse"})
	assert.True(t, errors.Is(err, appErrors.ErrInactiveAccount))
}

func TestAuthRegisterCreatesCounselor(t *testing.T) {
	svc, repo := newAuthFixture(t)
	res, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:    "New@Example.com",
		Password: "long-enough",
		FullName: "New Person",
		Branch:   "Chittagong",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleCounselor, res.User.Role)
	assert.Equal(t, "new@example.com", res.User.Email)
	assert.Len(t, repo.users, 3)

	_, err = svc.Register(context.Background(), models.RegisterRequest{Email: "jane@example.com", Password: "long-enough", FullName: "Dup"})
	assert.True(t, errors.Is(err, appErrors.ErrConflict))
}

func TestAuthRefreshRotatesToken(t *testing.T) {
	svc, repo := newAuthFixture(t)
	login, err := svc.Login(context.Background(), models.LoginRequest{Email: "jane@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)
	assert.True(t, repo.refreshTokens[login.RefreshToken].Revoked)

	_, err = svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))
}

func TestAuthLogoutChecksOwner(t *testing.T) {
	svc, repo := newAuthFixture(t)
	login, err := svc.Login(context.Background(), models.LoginRequest{Email: "jane@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	err = svc.Logout(context.Background(), models.LogoutRequest{RefreshToken: login.RefreshToken}, "someone-else")
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	require.NoError(t, svc.Logout(context.Background(), models.LogoutRequest{RefreshToken: login.RefreshToken}, "u1"))
	assert.True(t, repo.refreshTokens[login.RefreshToken].Revoked)
}

func TestAuthValidateTokenRejectsForeignSecret(t *testing.T) {
	svc, _ := newAuthFixture(t)
	login, err := svc.Login(context.Background(), models.LoginRequest{Email: "jane@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	other := NewAuthService(&mockUserRepo{}, nil, nil, AuthConfig{AccessTokenSecret: "other", AccessTokenExpiry: time.Hour, Issuer: "educrm-api"})
	_, err = other.ValidateToken(login.AccessToken)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))
}

package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/tutorhub/selection-api/internal/models"
	"github.com/tutorhub/selection-api/pkg/config"
	appErrors "github.com/tutorhub/selection-api/pkg/errors"
)

type fakeAuthUsers struct {
	byEmail map[string]models.User
	byID    map[string]models.User
}

func (f *fakeAuthUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	user, ok := f.byEmail[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &user, nil
}

func (f *fakeAuthUsers) FindByID(_ context.Context, id string) (*models.User, error) {
	user, ok := f.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &user, nil
}

func authFixture(t *testing.T, blocked bool) (*AuthService, models.User) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("Sup3rSecret"), bcrypt.MinCost)
	require.NoError(t, err)

	user := models.User{
		ID:           "user-1",
		Email:        "lecturer@example.com",
		PasswordHash: string(hash),
		Role:         models.RoleLecturer,
		IsBlocked:    blocked,
	}
	repo := &fakeAuthUsers{
		byEmail: map[string]models.User{user.Email: user},
		byID:    map[string]models.User{user.ID: user},
	}
	cfg := config.JWTConfig{Secret: "test-secret", Expiration: time.Hour, Issuer: "selection-api"}
	return NewAuthService(repo, cfg, zap.NewNop()), user
}

func TestLoginSuccessIssuesValidToken(t *testing.T) {
	svc, user := authFixture(t, false)

	result, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    user.Email,
		Password: "Sup3rSecret",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.Equal(t, user.ID, result.User.ID)
	assert.Equal(t, int64(3600), result.ExpiresIn)

	claims, err := svc.ValidateToken(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, models.RoleLecturer, claims.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, user := authFixture(t, false)

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    user.Email,
		Password: "wrong",
	})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _ := authFixture(t, false)

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "nobody@example.com",
		Password: "Sup3rSecret",
	})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
}

func TestLoginBlockedAccount(t *testing.T) {
	svc, user := authFixture(t, true)

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    user.Email,
		Password: "Sup3rSecret",
	})
	assert.ErrorIs(t, err, appErrors.ErrBlockedAccount)
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	svc, user := authFixture(t, false)

	result, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    user.Email,
		Password: "Sup3rSecret",
	})
	require.NoError(t, err)

	_, err = svc.ValidateToken(result.AccessToken + "x")
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

func TestCurrentUserRejectsLateBlock(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("Sup3rSecret"), bcrypt.MinCost)
	require.NoError(t, err)
	user := models.User{ID: "user-1", Email: "a@example.com", PasswordHash: string(hash), IsBlocked: true}
	repo := &fakeAuthUsers{byID: map[string]models.User{user.ID: user}}
	svc := NewAuthService(repo, config.JWTConfig{Secret: "s", Expiration: time.Hour}, zap.NewNop())

	_, err = svc.CurrentUser(context.Background(), &models.JWTClaims{UserID: "user-1"})
	assert.ErrorIs(t, err, appErrors.ErrBlockedAccount)
}

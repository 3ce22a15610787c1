package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tutorhub/selection-api/internal/dto"
	"github.com/tutorhub/selection-api/internal/models"
	appErrors "github.com/tutorhub/selection-api/pkg/errors"
)

type fakeUserStore struct {
	byEmail map[string]models.User
	byID    map[string]models.User
	created []models.User
}

func (f *fakeUserStore) List(context.Context, models.UserFilter) ([]models.User, error) {
	return nil, nil
}

func (f *fakeUserStore) FindByID(_ context.Context, id string) (*models.User, error) {
	user, ok := f.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &user, nil
}

func (f *fakeUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	user, ok := f.byEmail[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &user, nil
}

func (f *fakeUserStore) Create(_ context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = "user-new"
	}
	f.created = append(f.created, *user)
	return nil
}

func (f *fakeUserStore) Update(context.Context, *models.User) error { return nil }

func (f *fakeUserStore) SetBlocked(context.Context, string, bool) error { return nil }

func (f *fakeUserStore) Delete(context.Context, string) error { return nil }

type fakeProfileStore struct {
	profiles map[string]models.Profile
	created  []models.Profile
	updated  []models.Profile
}

func (f *fakeProfileStore) GetByUser(_ context.Context, userID string) (*models.Profile, error) {
	profile, ok := f.profiles[userID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &profile, nil
}

func (f *fakeProfileStore) ListByUserIDs(context.Context, []string) ([]models.Profile, error) {
	return nil, nil
}

func (f *fakeProfileStore) Create(_ context.Context, profile *models.Profile) error {
	f.created = append(f.created, *profile)
	return nil
}

func (f *fakeProfileStore) Update(_ context.Context, profile *models.Profile) error {
	f.updated = append(f.updated, *profile)
	return nil
}

type fakeApplicationUpserter struct {
	upserts []models.CourseApplication
}

func (f *fakeApplicationUpserter) Upsert(_ context.Context, application *models.CourseApplication) error {
	f.upserts = append(f.upserts, *application)
	return nil
}

func userFixture() (*UserService, *fakeUserStore, *fakeProfileStore, *fakeApplicationUpserter) {
	users := &fakeUserStore{byEmail: map[string]models.User{}, byID: map[string]models.User{}}
	profiles := &fakeProfileStore{profiles: map[string]models.Profile{}}
	apps := &fakeApplicationUpserter{}
	return NewUserService(users, profiles, apps, zap.NewNop()), users, profiles, apps
}

func validRegistration() dto.RegisterRequest {
	return dto.RegisterRequest{
		Email:     "New.Tutor@Example.com",
		Password:  "Str0ngPass",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Role:      "tutor",
	}
}

func TestRegisterCreatesUserProfileAndApplication(t *testing.T) {
	svc, users, profiles, apps := userFixture()

	user, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	assert.Equal(t, "new.tutor@example.com", user.Email)
	assert.Equal(t, models.RoleTutor, user.Role)
	assert.NotEqual(t, "Str0ngPass", user.PasswordHash)

	require.Len(t, users.created, 1)
	require.Len(t, profiles.created, 1)
	assert.Equal(t, user.ID, profiles.created[0].UserID)
	require.Len(t, apps.upserts, 1)
	assert.Empty(t, apps.upserts[0].CourseIDs)
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	svc, _, _, _ := userFixture()

	cases := []string{"short1A", "alllowercase1", "ALLUPPERCASE1", "NoDigitsHere"}
	for _, password := range cases {
		req := validRegistration()
		req.Password = password
		_, err := svc.Register(context.Background(), req)
		require.Error(t, err, password)
		var appErr *appErrors.Error
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	}
}

func TestRegisterRejectsNonLetterNames(t *testing.T) {
	svc, _, _, _ := userFixture()

	req := validRegistration()
	req.FirstName = "Ada123"
	_, err := svc.Register(context.Background(), req)
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestRegisterRejectsAdminRole(t *testing.T) {
	svc, _, _, _ := userFixture()

	req := validRegistration()
	req.Role = "ADMIN"
	_, err := svc.Register(context.Background(), req)
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, users, _, _ := userFixture()
	users.byEmail["new.tutor@example.com"] = models.User{ID: "existing"}

	_, err := svc.Register(context.Background(), validRegistration())
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestUpdateProfileAppliesPartialChanges(t *testing.T) {
	svc, users, profiles, _ := userFixture()
	users.byID["user-1"] = models.User{ID: "user-1", Role: models.RoleTutor}
	profiles.profiles["user-1"] = models.Profile{UserID: "user-1", About: "old", Availability: "weekends"}

	about := "new about"
	profile, err := svc.UpdateProfile(context.Background(), "user-1", dto.UpdateProfileRequest{
		About:  &about,
		Skills: []string{"go", "sql"},
	})
	require.NoError(t, err)
	assert.Equal(t, "new about", profile.About)
	assert.Equal(t, "weekends", profile.Availability)
	assert.Equal(t, []string{"go", "sql"}, []string(profile.Skills))
	require.Len(t, profiles.updated, 1)
}

func TestUpdateProfileUnknownUser(t *testing.T) {
	svc, _, _, _ := userFixture()

	_, err := svc.UpdateProfile(context.Background(), "missing", dto.UpdateProfileRequest{})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

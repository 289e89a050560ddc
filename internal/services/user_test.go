package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"inkwell/internal/apperr"
	"inkwell/internal/auth"
	"inkwell/internal/models"
)

type MockLoginRecorder struct {
	mock.Mock
}

func (m *MockLoginRecorder) RecordLogin(ctx context.Context, userID uint, ip, ua string) (*models.LoginHistory, error) {
	args := m.Called(ctx, userID, ip, ua)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LoginHistory), args.Error(1)
}

func newUserService() (*UserService, *MockUserRepository, *MockLoginRecorder) {
	users := new(MockUserRepository)
	history := new(MockLoginRecorder)
	svc := NewUserService(users, auth.NewTokenManager("test-secret", time.Hour), history, NewImageUploader(&memStorage{}, 1<<20))
	svc.now = func() time.Time { return testNow }
	return svc, users, history
}

func TestRegister(t *testing.T) {
	svc, users, _ := newUserService()
	ctx := context.Background()

	users.On("Create", ctx, mock.MatchedBy(func(u *models.User) bool {
		return u.Username == "carol" && u.Email == "carol@example.com" && u.Role == models.RoleUser && u.Password != "secret1"
	})).Return(nil).Once()

	u, err := svc.Register(ctx, RegisterInput{Email: " Carol@Example.com ", Password: "secret1", Username: "carol"})
	require.NoError(t, err)
	assert.True(t, auth.CheckPasswordHash("secret1", u.Password))

	users.On("Create", ctx, mock.Anything).Return(apperr.Conflict("record already exists")).Once()
	_, err = svc.Register(ctx, RegisterInput{Email: "carol@example.com", Password: "secret1"})
	assert.True(t, apperr.HasCode(err, apperr.CodeConflict))
}

func TestRegister_Validation(t *testing.T) {
	svc, _, _ := newUserService()
	ctx := context.Background()

	tests := []RegisterInput{
		{Username: "a", Email: "a@example.com", Password: "secret1"},
		{Username: "bad name", Email: "a@example.com", Password: "secret1"},
		{Username: "carol", Email: "not-an-email", Password: "secret1"},
		{Username: "carol", Email: "carol@example.com", Password: "123"},
	}
	for _, in := range tests {
		_, err := svc.Register(ctx, in)
		assert.True(t, apperr.HasCode(err, apperr.CodeValidation), "%+v", in)
	}
}

func TestLogin(t *testing.T) {
	svc, users, history := newUserService()
	ctx := context.Background()

	hash, err := auth.HashPassword("secret1")
	require.NoError(t, err)
	user := &models.User{ID: 2, Username: "alice", Email: "alice@example.com", Password: hash, Role: models.RoleUser}

	users.On("GetByEmail", ctx, "alice@example.com").Return(user, nil)
	users.On("GetByEmail", ctx, "ghost@example.com").Return(nil, apperr.NotFound("record not found"))
	history.On("RecordLogin", ctx, uint(2), "1.2.3.4", "curl/8").Return(&models.LoginHistory{}, nil).Once()

	res, err := svc.Login(ctx, "Alice@example.com", "secret1", "1.2.3.4", "curl/8")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), res.ExpiresAt, time.Minute)
	history.AssertExpectations(t)

	_, err = svc.Login(ctx, "alice@example.com", "wrong", "1.2.3.4", "curl/8")
	assert.True(t, apperr.HasCode(err, apperr.CodeUnauthenticated))

	_, err = svc.Login(ctx, "ghost@example.com", "secret1", "", "")
	assert.True(t, apperr.HasCode(err, apperr.CodeUnauthenticated))
}

func TestLogin_BannedRefused(t *testing.T) {
	svc, users, history := newUserService()
	ctx := context.Background()

	hash, _ := auth.HashPassword("secret1")
	users.On("GetByEmail", ctx, "bad@example.com").
		Return(&models.User{ID: 4, Email: "bad@example.com", Password: hash, Status: models.UserStatusBanned}, nil)

	_, err := svc.Login(ctx, "bad@example.com", "secret1", "", "")
	assert.True(t, apperr.HasCode(err, apperr.CodePermissionDenied))
	history.AssertNotCalled(t, "RecordLogin", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPunish(t *testing.T) {
	svc, users, _ := newUserService()
	ctx := context.Background()

	expires := testNow.AddDate(0, 0, 3)
	users.On("UpdateFields", ctx, uint(2), map[string]interface{}{"status": models.UserStatusMuted, "punish_expires": &expires}).Return(nil)
	require.NoError(t, svc.Punish(ctx, adminSess, 2, models.UserStatusMuted, 3))

	users.On("UpdateFields", ctx, uint(3), map[string]interface{}{"status": models.UserStatusNormal, "punish_expires": nil}).Return(nil)
	require.NoError(t, svc.Punish(ctx, adminSess, 3, models.UserStatusNormal, 5))

	assert.True(t, apperr.HasCode(svc.Punish(ctx, aliceSess, 3, models.UserStatusBanned, 0), apperr.CodePermissionDenied))
	assert.True(t, apperr.HasCode(svc.Punish(ctx, adminSess, 3, 9, 0), apperr.CodeValidation))
	assert.True(t, apperr.HasCode(svc.Punish(ctx, adminSess, adminSess.UserID, models.UserStatusBanned, 0), apperr.CodeValidation))
}

func TestSetRole(t *testing.T) {
	svc, users, _ := newUserService()
	ctx := context.Background()

	users.On("UpdateFields", ctx, uint(2), map[string]interface{}{"role": models.RoleAdmin}).Return(nil)
	require.NoError(t, svc.SetRole(ctx, adminSess, 2, models.RoleAdmin))
	assert.True(t, apperr.HasCode(svc.SetRole(ctx, adminSess, 2, "owner"), apperr.CodeValidation))
	assert.True(t, apperr.HasCode(svc.SetRole(ctx, adminSess, adminSess.UserID, models.RoleUser), apperr.CodeValidation))
}

func TestSessionFor(t *testing.T) {
	svc, users, _ := newUserService()
	ctx := context.Background()

	users.On("GetByID", ctx, uint(2)).Return(&models.User{ID: 2, Username: "alice", Role: models.RoleUser}, nil)
	users.On("GetByID", ctx, uint(50)).Return(nil, apperr.NotFound("record not found"))

	s, err := svc.SessionFor(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "alice", s.Username)

	s, err = svc.SessionFor(ctx, 50)
	require.NoError(t, err)
	assert.False(t, s.IsAuthenticated())
}

func TestUpdateProfile(t *testing.T) {
	svc, users, _ := newUserService()
	ctx := context.Background()

	_, err := svc.UpdateProfile(ctx, aliceSess, ProfileInput{Website: "ftp://x"})
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	users.On("UpdateFields", ctx, aliceSess.UserID, map[string]interface{}{"bio": "hi", "website": "https://alice.dev"}).Return(nil)
	users.On("GetByID", ctx, aliceSess.UserID).Return(&models.User{ID: 2, Bio: "hi"}, nil)
	u, err := svc.UpdateProfile(ctx, aliceSess, ProfileInput{Bio: " hi ", Website: "https://alice.dev"})
	require.NoError(t, err)
	assert.Equal(t, "hi", u.Bio)
}

package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guhospital/hospital-api/internal/model"
	"github.com/guhospital/hospital-api/internal/repository"
	"github.com/guhospital/hospital-api/pkg/auth"
	apperror "github.com/guhospital/hospital-api/pkg/errors"
)

type fakeUserRepo struct {
	users          map[string]*model.User
	lastLoginErr   error
	lastLoginCalls int
}

func (f *fakeUserRepo) Create(context.Context, *model.User) error { return nil }

func (f *fakeUserRepo) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) GetByNationalID(_ context.Context, nationalID string) (*model.User, error) {
	u, ok := f.users[nationalID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetByEmail(context.Context, string) (*model.User, error) {
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) Update(context.Context, *model.User) error { return nil }

func (f *fakeUserRepo) UpdatePassword(context.Context, uuid.UUID, string, bool) error {
	return nil
}

func (f *fakeUserRepo) UpdateProfilePhoto(context.Context, uuid.UUID, string) error { return nil }

func (f *fakeUserRepo) UpdateLastLogin(context.Context, uuid.UUID, time.Time) error {
	f.lastLoginCalls++
	return f.lastLoginErr
}

type fakeTokenRepo struct{}

func (fakeTokenRepo) CreateResetToken(context.Context, *model.ResetToken) error { return nil }

func (fakeTokenRepo) GetResetToken(context.Context, string) (*model.ResetToken, error) {
	return nil, repository.ErrNotFound
}

func (fakeTokenRepo) DeleteResetToken(context.Context, uuid.UUID) error { return nil }

type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (fakeHasher) Compare(hashedPassword, password string) error {
	if hashedPassword != "hashed:"+password {
		return errors.New("mismatch")
	}
	return nil
}

type fakeEmail struct{}

func (fakeEmail) SendWelcome(context.Context, string, string, string) error      { return nil }
func (fakeEmail) SendPasswordReset(context.Context, string, string) error        { return nil }
func (fakeEmail) SendAnnouncement(context.Context, string, string, string) error { return nil }

const testNationalID = "29001011234567"

func newLoginEnv() (*Service, *fakeUserRepo) {
	user := &model.User{
		NationalID:   testNationalID,
		FirstName:    "Omar",
		LastName:     "Adel",
		Role:         model.RolePatient,
		PasswordHash: "hashed:secret123",
	}
	user.ID = uuid.New()

	userRepo := &fakeUserRepo{users: map[string]*model.User{testNationalID: user}}
	jwtSvc := auth.NewJWTService(auth.JWTConfig{Secret: "access-secret", RefreshSecret: "refresh-secret"})
	svc := NewService(userRepo, fakeTokenRepo{}, fakeHasher{}, jwtSvc, fakeEmail{}, zerolog.Nop())
	return svc, userRepo
}

func TestLogin(t *testing.T) {
	svc, userRepo := newLoginEnv()

	resp, err := svc.Login(context.Background(), &model.LoginRequest{
		NationalID: testNationalID,
		Password:   "secret123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, model.RolePatient, resp.Role)
	assert.Equal(t, 1, userRepo.lastLoginCalls)
}

func TestLoginSucceedsWhenLastLoginUpdateFails(t *testing.T) {
	svc, userRepo := newLoginEnv()
	userRepo.lastLoginErr = errors.New("connection reset")

	resp, err := svc.Login(context.Background(), &model.LoginRequest{
		NationalID: testNationalID,
		Password:   "secret123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, 1, userRepo.lastLoginCalls)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newLoginEnv()

	_, err := svc.Login(context.Background(), &model.LoginRequest{
		NationalID: testNationalID,
		Password:   "nope",
	})
	require.Error(t, err)
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, 401, appErr.StatusCode())
}

func TestLoginUnknownNationalID(t *testing.T) {
	svc, _ := newLoginEnv()

	_, err := svc.Login(context.Background(), &model.LoginRequest{
		NationalID: "29512251234567",
		Password:   "secret123",
	})
	require.Error(t, err)
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, 401, appErr.StatusCode())
}

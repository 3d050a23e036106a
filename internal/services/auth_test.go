package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/sbilibin2017/fluxio-api/internal/models"
	"github.com/sbilibin2017/fluxio-api/internal/password"
	"github.com/sbilibin2017/fluxio-api/internal/repositories"
	"github.com/sbilibin2017/fluxio-api/internal/validators"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestHasher(t *testing.T) *password.Hasher {
	t.Helper()
	h, err := password.New(password.AlgorithmBcrypt, bcrypt.MinCost)
	require.NoError(t, err)
	return h
}

func registerRequest() models.RegisterRequest {
	return models.RegisterRequest{
		Username:  "alice",
		Email:     "alice@example.com",
		Password:  "pass123",
		FirstName: "Alice",
		LastName:  "Smith",
	}
}

func storedUser(id int64, email, username, digest string) *models.UserDB {
	now := time.Now().UTC()
	return &models.UserDB{
		ID:                   id,
		Username:             username,
		Email:                email,
		PasswordHash:         digest,
		FirstName:            "Alice",
		LastName:             "Smith",
		PreferredCurrency:    models.DefaultPreferredCurrency,
		LanguagePreference:   models.DefaultLanguagePreference,
		Timezone:             models.DefaultTimezone,
		NotificationsEnabled: true,
		IsActive:             true,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}

func TestAuthService_Register(t *testing.T) {
	hasher := newTestHasher(t)

	tests := []struct {
		name    string
		req     func() models.RegisterRequest
		setup   func(r *MockUserReader, w *MockUserWriter, e *MockEventPublisher)
		wantErr error
		check   func(t *testing.T, u *models.User, err error)
	}{
		{
			name: "successful registration",
			req:  registerRequest,
			setup: func(r *MockUserReader, w *MockUserWriter, e *MockEventPublisher) {
				r.EXPECT().FindByEmail(gomock.Any(), "alice@example.com").Return(nil, nil)
				r.EXPECT().FindByUsername(gomock.Any(), "alice").Return(nil, nil)
				w.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, nu models.NewUser) (*models.UserDB, error) {
						assert.NotEqual(t, "pass123", nu.PasswordHash)
						ok, err := hasher.Verify("pass123", nu.PasswordHash)
						assert.NoError(t, err)
						assert.True(t, ok)
						assert.Nil(t, nu.Phone)
						assert.Equal(t, "USD", nu.PreferredCurrency)
						assert.Equal(t, "es", nu.LanguagePreference)
						assert.Equal(t, "America/Mexico_City", nu.Timezone)
						assert.False(t, nu.BiometricEnabled)
						assert.True(t, nu.NotificationsEnabled)
						assert.True(t, nu.IsActive)
						assert.False(t, nu.EmailVerified)
						return storedUser(1, nu.Email, nu.Username, nu.PasswordHash), nil
					})
				e.EXPECT().Publish(gomock.Any(), gomock.Any()).Do(func(_ context.Context, ev models.UserEvent) {
					assert.Equal(t, models.EventUserRegistered, ev.Type)
					assert.Equal(t, int64(1), ev.UserID)
					assert.NotEmpty(t, ev.EventID)
				})
			},
			check: func(t *testing.T, u *models.User, err error) {
				require.NoError(t, err)
				assert.Equal(t, int64(1), u.ID)
				assert.Equal(t, "alice", u.Username)
			},
		},
		{
			name: "phone is stored when given",
			req: func() models.RegisterRequest {
				r := registerRequest()
				r.Phone = "+525512345678"
				return r
			},
			setup: func(r *MockUserReader, w *MockUserWriter, e *MockEventPublisher) {
				r.EXPECT().FindByEmail(gomock.Any(), gomock.Any()).Return(nil, nil)
				r.EXPECT().FindByUsername(gomock.Any(), gomock.Any()).Return(nil, nil)
				w.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, nu models.NewUser) (*models.UserDB, error) {
						require.NotNil(t, nu.Phone)
						assert.Equal(t, "+525512345678", *nu.Phone)
						u := storedUser(2, nu.Email, nu.Username, nu.PasswordHash)
						u.Phone = nu.Phone
						return u, nil
					})
				e.EXPECT().Publish(gomock.Any(), gomock.Any())
			},
			check: func(t *testing.T, u *models.User, err error) {
				require.NoError(t, err)
				require.NotNil(t, u.Phone)
			},
		},
		{
			name: "email already exists",
			req:  registerRequest,
			setup: func(r *MockUserReader, w *MockUserWriter, e *MockEventPublisher) {
				r.EXPECT().FindByEmail(gomock.Any(), "alice@example.com").Return(storedUser(9, "alice@example.com", "other", "x"), nil)
			},
			wantErr: ErrEmailAlreadyExists,
		},
		{
			name: "username already exists",
			req:  registerRequest,
			setup: func(r *MockUserReader, w *MockUserWriter, e *MockEventPublisher) {
				r.EXPECT().FindByEmail(gomock.Any(), gomock.Any()).Return(nil, nil)
				r.EXPECT().FindByUsername(gomock.Any(), "alice").Return(storedUser(9, "x@example.com", "alice", "x"), nil)
			},
			wantErr: ErrUsernameAlreadyExists,
		},
		{
			name: "email race lost on insert",
			req:  registerRequest,
			setup: func(r *MockUserReader, w *MockUserWriter, e *MockEventPublisher) {
				r.EXPECT().FindByEmail(gomock.Any(), gomock.Any()).Return(nil, nil)
				r.EXPECT().FindByUsername(gomock.Any(), gomock.Any()).Return(nil, nil)
				w.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil, repositories.ErrDuplicateEmail)
			},
			wantErr: ErrEmailAlreadyExists,
		},
		{
			name: "username race lost on insert",
			req:  registerRequest,
			setup: func(r *MockUserReader, w *MockUserWriter, e *MockEventPublisher) {
				r.EXPECT().FindByEmail(gomock.Any(), gomock.Any()).Return(nil, nil)
				r.EXPECT().FindByUsername(gomock.Any(), gomock.Any()).Return(nil, nil)
				w.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil, repositories.ErrDuplicateUsername)
			},
			wantErr: ErrUsernameAlreadyExists,
		},
		{
			name: "unique violation on unrecognised constraint",
			req:  registerRequest,
			setup: func(r *MockUserReader, w *MockUserWriter, e *MockEventPublisher) {
				r.EXPECT().FindByEmail(gomock.Any(), gomock.Any()).Return(nil, nil)
				r.EXPECT().FindByUsername(gomock.Any(), gomock.Any()).Return(nil, nil)
				w.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil, repositories.ErrDuplicateUser)
			},
			wantErr: ErrUserAlreadyExists,
		},
		{
			name: "reader error",
			req:  registerRequest,
			setup: func(r *MockUserReader, w *MockUserWriter, e *MockEventPublisher) {
				r.EXPECT().FindByEmail(gomock.Any(), gomock.Any()).Return(nil, errors.New("db error"))
			},
			check: func(t *testing.T, u *models.User, err error) {
				assert.EqualError(t, err, "db error")
				assert.Nil(t, u)
			},
		},
		{
			name: "writer error",
			req:  registerRequest,
			setup: func(r *MockUserReader, w *MockUserWriter, e *MockEventPublisher) {
				r.EXPECT().FindByEmail(gomock.Any(), gomock.Any()).Return(nil, nil)
				r.EXPECT().FindByUsername(gomock.Any(), gomock.Any()).Return(nil, nil)
				w.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil, errors.New("save error"))
			},
			check: func(t *testing.T, u *models.User, err error) {
				assert.EqualError(t, err, "save error")
				assert.Nil(t, u)
			},
		},
		{
			name: "password longer than bcrypt accepts",
			req: func() models.RegisterRequest {
				r := registerRequest()
				r.Password = strings.Repeat("p", 80)
				return r
			},
			setup: func(r *MockUserReader, w *MockUserWriter, e *MockEventPublisher) {
				r.EXPECT().FindByEmail(gomock.Any(), gomock.Any()).Return(nil, nil)
				r.EXPECT().FindByUsername(gomock.Any(), gomock.Any()).Return(nil, nil)
			},
			check: func(t *testing.T, u *models.User, err error) {
				assert.True(t, validators.IsValidationError(err))
				assert.EqualError(t, err, validators.MsgPasswordTooLong)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			reader := NewMockUserReader(ctrl)
			writer := NewMockUserWriter(ctrl)
			events := NewMockEventPublisher(ctrl)
			tt.setup(reader, writer, events)

			svc := NewAuthService(reader, writer, hasher, events)
			u, err := svc.Register(context.Background(), tt.req())

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, u)
			}
			if tt.check != nil {
				tt.check(t, u, err)
			}
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	hasher := newTestHasher(t)
	digest, err := hasher.Hash("secret")
	require.NoError(t, err)

	fixed := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	inactive := storedUser(4, "carol@example.com", "carol", digest)
	inactive.IsActive = false

	tests := []struct {
		name    string
		email   string
		pass    string
		setup   func(r *MockUserReader, w *MockUserWriter, e *MockEventPublisher)
		wantErr error
		anyErr  bool
	}{
		{
			name:  "successful login",
			email: "alice@example.com",
			pass:  "secret",
			setup: func(r *MockUserReader, w *MockUserWriter, e *MockEventPublisher) {
				r.EXPECT().FindByEmail(gomock.Any(), "alice@example.com").Return(storedUser(1, "alice@example.com", "alice", digest), nil)
				w.EXPECT().UpdateLastLogin(gomock.Any(), int64(1), fixed).Return(nil)
				e.EXPECT().Publish(gomock.Any(), gomock.Any()).Do(func(_ context.Context, ev models.UserEvent) {
					assert.Equal(t, models.EventUserLoggedIn, ev.Type)
				})
			},
		},
		{
			name:  "user does not exist",
			email: "bob@example.com",
			pass:  "secret",
			setup: func(r *MockUserReader, w *MockUserWriter, e *MockEventPublisher) {
				r.EXPECT().FindByEmail(gomock.Any(), "bob@example.com").Return(nil, nil)
			},
			wantErr: ErrInvalidCredentials,
		},
		{
			name:  "inactive user",
			email: "carol@example.com",
			pass:  "secret",
			setup: func(r *MockUserReader, w *MockUserWriter, e *MockEventPublisher) {
				r.EXPECT().FindByEmail(gomock.Any(), gomock.Any()).Return(inactive, nil)
			},
			wantErr: ErrInvalidCredentials,
		},
		{
			name:  "invalid password",
			email: "alice@example.com",
			pass:  "wrongpass",
			setup: func(r *MockUserReader, w *MockUserWriter, e *MockEventPublisher) {
				r.EXPECT().FindByEmail(gomock.Any(), gomock.Any()).Return(storedUser(1, "alice@example.com", "alice", digest), nil)
			},
			wantErr: ErrInvalidCredentials,
		},
		{
			name:  "corrupt stored digest",
			email: "alice@example.com",
			pass:  "secret",
			setup: func(r *MockUserReader, w *MockUserWriter, e *MockEventPublisher) {
				r.EXPECT().FindByEmail(gomock.Any(), gomock.Any()).Return(storedUser(1, "alice@example.com", "alice", "garbage"), nil)
			},
			anyErr: true,
		},
		{
			name:  "reader error",
			email: "eve@example.com",
			pass:  "secret",
			setup: func(r *MockUserReader, w *MockUserWriter, e *MockEventPublisher) {
				r.EXPECT().FindByEmail(gomock.Any(), gomock.Any()).Return(nil, errors.New("db error"))
			},
			anyErr: true,
		},
		{
			name:  "update last login error",
			email: "alice@example.com",
			pass:  "secret",
			setup: func(r *MockUserReader, w *MockUserWriter, e *MockEventPublisher) {
				r.EXPECT().FindByEmail(gomock.Any(), gomock.Any()).Return(storedUser(1, "alice@example.com", "alice", digest), nil)
				w.EXPECT().UpdateLastLogin(gomock.Any(), int64(1), fixed).Return(errors.New("update error"))
			},
			anyErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			reader := NewMockUserReader(ctrl)
			writer := NewMockUserWriter(ctrl)
			events := NewMockEventPublisher(ctrl)
			tt.setup(reader, writer, events)

			svc := NewAuthService(reader, writer, hasher, events)
			svc.now = func() time.Time { return fixed }

			u, err := svc.Login(context.Background(), tt.email, tt.pass)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, u)
			case tt.anyErr:
				assert.Error(t, err)
				assert.NotErrorIs(t, err, ErrInvalidCredentials)
				assert.Nil(t, u)
			default:
				require.NoError(t, err)
				require.NotNil(t, u.LastLoginAt)
				assert.Equal(t, fixed, *u.LastLoginAt)
				assert.Equal(t, "alice", u.Username)
			}
		})
	}
}

func TestAuthService_Login_UnknownUserRunsVerify(t *testing.T) {
	ctrl := gomock.NewController(t)
	reader := NewMockUserReader(ctrl)
	reader.EXPECT().FindByEmail(gomock.Any(), gomock.Any()).Return(nil, nil).Times(2)

	svc := NewAuthService(reader, NewMockUserWriter(ctrl), newTestHasher(t), nil)

	_, err := svc.Login(context.Background(), "ghost@example.com", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.NotEmpty(t, svc.dummyHash)

	first := svc.dummyHash
	_, err = svc.Login(context.Background(), "ghost@example.com", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, first, svc.dummyHash, "dummy digest is computed once")
}

func TestAuthService_CheckEmail(t *testing.T) {
	tests := []struct {
		name      string
		user      *models.UserDB
		readerErr error
		want      bool
		wantErr   bool
	}{
		{name: "exists", user: storedUser(1, "a@b.co", "a", "x"), want: true},
		{name: "does not exist", user: nil, want: false},
		{name: "reader error", readerErr: errors.New("db error"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			reader := NewMockUserReader(ctrl)
			reader.EXPECT().FindByEmail(gomock.Any(), "a@b.co").Return(tt.user, tt.readerErr)

			// No writer or publisher calls are expected: checking never mutates.
			svc := NewAuthService(reader, NewMockUserWriter(ctrl), newTestHasher(t), NewMockEventPublisher(ctrl))
			got, err := svc.CheckEmail(context.Background(), "a@b.co")

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

package services

//go:generate mockgen -destination=auth_mock.go -package=services . UserReader,UserWriter,EventPublisher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sbilibin2017/fluxio-api/internal/logger"
	"github.com/sbilibin2017/fluxio-api/internal/models"
	"github.com/sbilibin2017/fluxio-api/internal/password"
	"github.com/sbilibin2017/fluxio-api/internal/repositories"
	"github.com/sbilibin2017/fluxio-api/internal/validators"
)

// Error variables
var (
	ErrEmailAlreadyExists    = errors.New("email is already registered")
	ErrUsernameAlreadyExists = errors.New("username is already in use")
	ErrUserAlreadyExists     = errors.New("email or username is already in use")
	ErrInvalidCredentials    = errors.New("invalid credentials")
)

// dummyPassword is hashed once and verified against when a login names an
// unknown or inactive account, so both failures cost one verify.
const dummyPassword = "fluxio-timing-equalizer"

// UserReader defines read-only operations for users.
type UserReader interface {
	FindByEmail(ctx context.Context, email string) (*models.UserDB, error)
	FindByUsername(ctx context.Context, username string) (*models.UserDB, error)
}

// UserWriter defines write operations for users.
type UserWriter interface {
	Insert(ctx context.Context, u models.NewUser) (*models.UserDB, error)
	UpdateLastLogin(ctx context.Context, id int64, at time.Time) error
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, digest string) (bool, error)
}

// EventPublisher emits account events. Publishing is best effort.
type EventPublisher interface {
	Publish(ctx context.Context, event models.UserEvent)
}

// AuthService handles registration, login and email checks.
type AuthService struct {
	reader UserReader
	writer UserWriter
	hasher PasswordHasher
	events EventPublisher
	now    func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService creates a new AuthService instance.
func NewAuthService(reader UserReader, writer UserWriter, hasher PasswordHasher, events EventPublisher) *AuthService {
	return &AuthService{
		reader: reader,
		writer: writer,
		hasher: hasher,
		events: events,
		now:    time.Now,
	}
}

// Register creates a new account. Input must already be validated.
func (svc *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	existing, err := svc.reader.FindByEmail(ctx, req.Email)
	if err != nil {
		logger.Log.Errorw("failed to check email", "err", err)
		return nil, err
	}
	if existing != nil {
		logger.Log.Infow("email already registered", "email", req.Email)
		return nil, ErrEmailAlreadyExists
	}

	existing, err = svc.reader.FindByUsername(ctx, req.Username)
	if err != nil {
		logger.Log.Errorw("failed to check username", "err", err)
		return nil, err
	}
	if existing != nil {
		logger.Log.Infow("username already in use", "username", req.Username)
		return nil, ErrUsernameAlreadyExists
	}

	digest, err := svc.hasher.Hash(req.Password)
	if err != nil {
		if errors.Is(err, password.ErrPasswordTooLong) {
			return nil, validators.NewValidationError(validators.MsgPasswordTooLong)
		}
		logger.Log.Errorw("failed to hash password", "err", err)
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var phone *string
	if req.Phone != "" {
		phone = &req.Phone
	}

	created, err := svc.writer.Insert(ctx, models.NewUser{
		Username:             req.Username,
		Email:                req.Email,
		PasswordHash:         digest,
		FirstName:            req.FirstName,
		LastName:             req.LastName,
		Phone:                phone,
		PreferredCurrency:    models.DefaultPreferredCurrency,
		LanguagePreference:   models.DefaultLanguagePreference,
		Timezone:             models.DefaultTimezone,
		BiometricEnabled:     false,
		NotificationsEnabled: true,
		IsActive:             true,
		EmailVerified:        false,
	})
	if err != nil {
		// A concurrent registration won the race on the unique constraint.
		switch {
		case errors.Is(err, repositories.ErrDuplicateEmail):
			return nil, ErrEmailAlreadyExists
		case errors.Is(err, repositories.ErrDuplicateUsername):
			return nil, ErrUsernameAlreadyExists
		case errors.Is(err, repositories.ErrDuplicateUser):
			return nil, ErrUserAlreadyExists
		}
		logger.Log.Errorw("failed to save user", "err", err)
		return nil, err
	}

	svc.publish(ctx, models.EventUserRegistered, created)
	return created.Public(), nil
}

// Login verifies credentials and records the login time. Unknown email,
// inactive account and wrong password all return ErrInvalidCredentials.
func (svc *AuthService) Login(ctx context.Context, email, pass string) (*models.User, error) {
	user, err := svc.reader.FindByEmail(ctx, email)
	if err != nil {
		logger.Log.Errorw("failed to get user", "err", err)
		return nil, err
	}
	if user == nil || !user.IsActive {
		svc.equalizeTiming(pass)
		logger.Log.Infow("login for unknown or inactive account", "email", email)
		return nil, ErrInvalidCredentials
	}

	ok, err := svc.hasher.Verify(pass, user.PasswordHash)
	if err != nil {
		logger.Log.Errorw("failed to verify password", "user_id", user.ID, "err", err)
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		logger.Log.Infow("invalid credentials", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	now := svc.now().UTC()
	if err := svc.writer.UpdateLastLogin(ctx, user.ID, now); err != nil {
		logger.Log.Errorw("failed to update last login", "user_id", user.ID, "err", err)
		return nil, err
	}
	user.LastLoginAt = &now

	svc.publish(ctx, models.EventUserLoggedIn, user)
	return user.Public(), nil
}

// CheckEmail reports whether an account with the email exists.
func (svc *AuthService) CheckEmail(ctx context.Context, email string) (bool, error) {
	user, err := svc.reader.FindByEmail(ctx, email)
	if err != nil {
		logger.Log.Errorw("failed to check email", "err", err)
		return false, err
	}
	return user != nil, nil
}

func (svc *AuthService) equalizeTiming(pass string) {
	svc.dummyOnce.Do(func() {
		digest, err := svc.hasher.Hash(dummyPassword)
		if err != nil {
			logger.Log.Warnw("failed to prepare dummy digest", "err", err)
			return
		}
		svc.dummyHash = digest
	})
	if svc.dummyHash != "" {
		_, _ = svc.hasher.Verify(pass, svc.dummyHash)
	}
}

func (svc *AuthService) publish(ctx context.Context, eventType string, user *models.UserDB) {
	if svc.events == nil {
		return
	}
	svc.events.Publish(ctx, models.UserEvent{
		EventID:    uuid.NewString(),
		Type:       eventType,
		UserID:     user.ID,
		Email:      user.Email,
		OccurredAt: svc.now().UTC(),
	})
}

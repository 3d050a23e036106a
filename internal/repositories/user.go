package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/fluxio-api/internal/models"
)

// Constraint names backing the uniqueness rules on users.
const (
	UsernameUniqueConstraint = "users_username_key"
	EmailUniqueConstraint    = "users_email_key"

	uniqueViolationCode = "23505"
)

var (
	// ErrDuplicateEmail is returned by Insert when the email is already stored.
	ErrDuplicateEmail = errors.New("duplicate email")
	// ErrDuplicateUsername is returned by Insert when the username is already stored.
	ErrDuplicateUsername = errors.New("duplicate username")
	// ErrDuplicateUser is returned by Insert for a unique violation on a
	// constraint that names neither column.
	ErrDuplicateUser = errors.New("duplicate user")
)

const userColumns = `id, username, email, password_hash, first_name, last_name, phone,
	preferred_currency, language_preference, timezone,
	biometric_enabled, notifications_enabled, is_active, email_verified,
	created_at, updated_at, last_login_at`

// UserReadRepository looks up users.
type UserReadRepository struct {
	connector
}

// NewUserReadRepository creates a read repository. connGetter may be nil.
func NewUserReadRepository(db *sqlx.DB, connGetter ConnGetter) *UserReadRepository {
	return &UserReadRepository{connector{db: db, connGetter: connGetter}}
}

// FindByEmail returns the user with the given email, or nil if none exists.
func (r *UserReadRepository) FindByEmail(ctx context.Context, email string) (*models.UserDB, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.findOne(ctx, query, email)
}

// FindByUsername returns the user with the given username, or nil if none exists.
func (r *UserReadRepository) FindByUsername(ctx context.Context, username string) (*models.UserDB, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return r.findOne(ctx, query, username)
}

func (r *UserReadRepository) findOne(ctx context.Context, query string, arg string) (*models.UserDB, error) {
	conn, release, err := r.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	var user models.UserDB
	err = conn.GetContext(ctx, &user, query, arg)

	var found int
	if err == nil {
		found = 1
	}
	logQuery(query, []any{arg}, found, err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select user: %w", err)
	}

	return &user, nil
}

// UserWriteRepository creates users and records logins.
type UserWriteRepository struct {
	connector
}

// NewUserWriteRepository creates a write repository. connGetter may be nil.
func NewUserWriteRepository(db *sqlx.DB, connGetter ConnGetter) *UserWriteRepository {
	return &UserWriteRepository{connector{db: db, connGetter: connGetter}}
}

// Insert stores a new user and returns the stored row, including the id and
// timestamps assigned by the database. Unique violations are reported as
// ErrDuplicateEmail, ErrDuplicateUsername or ErrDuplicateUser.
func (r *UserWriteRepository) Insert(ctx context.Context, u models.NewUser) (*models.UserDB, error) {
	const query = `
		INSERT INTO users (
			username, email, password_hash, first_name, last_name, phone,
			preferred_currency, language_preference, timezone,
			biometric_enabled, notifications_enabled, is_active, email_verified,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
		RETURNING ` + userColumns

	conn, release, err := r.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	args := []any{
		u.Username, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.Phone,
		u.PreferredCurrency, u.LanguagePreference, u.Timezone,
		u.BiometricEnabled, u.NotificationsEnabled, u.IsActive, u.EmailVerified,
	}

	var user models.UserDB
	err = conn.GetContext(ctx, &user, query, args...)

	logged := append([]any{}, args...)
	logged[2] = "[REDACTED]"
	logQuery(query, logged, user.ID, err)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return nil, duplicateError(pgErr)
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	return &user, nil
}

// duplicateError picks the sentinel for a unique violation. Known constraint
// names win; otherwise the constraint name and the key in the detail
// ("Key (email)=(...) already exists.") are searched for a column name.
func duplicateError(pgErr *pgconn.PgError) error {
	switch pgErr.ConstraintName {
	case EmailUniqueConstraint:
		return ErrDuplicateEmail
	case UsernameUniqueConstraint:
		return ErrDuplicateUsername
	}

	key, _, _ := strings.Cut(pgErr.Detail, "=")
	for _, s := range []string{strings.ToLower(pgErr.ConstraintName), strings.ToLower(key)} {
		switch {
		case strings.Contains(s, "email"):
			return ErrDuplicateEmail
		case strings.Contains(s, "username"):
			return ErrDuplicateUsername
		}
	}
	return ErrDuplicateUser
}

// UpdateLastLogin sets last_login_at for the user.
func (r *UserWriteRepository) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	const query = `UPDATE users SET last_login_at = $2 WHERE id = $1`

	conn, release, err := r.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	res, err := conn.ExecContext(ctx, query, id, at)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}
	logQuery(query, []any{id, at}, rowsAffected, err)

	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

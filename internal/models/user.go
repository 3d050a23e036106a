package models

import "time"

// Defaults applied to every newly registered account.
const (
	DefaultPreferredCurrency  = "USD"
	DefaultLanguagePreference = "es"
	DefaultTimezone           = "America/Mexico_City"
)

// UserDB represents a user record in the database
type UserDB struct {
	ID                   int64      `db:"id"`                     // Primary key, assigned by the store
	Username             string     `db:"username"`               // Unique username
	Email                string     `db:"email"`                  // Unique email
	PasswordHash         string     `db:"password_hash" json:"-"` // bcrypt or argon2id digest
	FirstName            string     `db:"first_name"`
	LastName             string     `db:"last_name"`
	Phone                *string    `db:"phone"` // NULL when not provided
	PreferredCurrency    string     `db:"preferred_currency"`
	LanguagePreference   string     `db:"language_preference"`
	Timezone             string     `db:"timezone"`
	BiometricEnabled     bool       `db:"biometric_enabled"`
	NotificationsEnabled bool       `db:"notifications_enabled"`
	IsActive             bool       `db:"is_active"` // Inactive users cannot log in
	EmailVerified        bool       `db:"email_verified"`
	CreatedAt            time.Time  `db:"created_at"`
	UpdatedAt            time.Time  `db:"updated_at"`
	LastLoginAt          *time.Time `db:"last_login_at"` // NULL until the first successful login
}

// Public returns the caller-facing view of the row.
func (u *UserDB) Public() *User {
	return &User{
		ID:                   u.ID,
		Username:             u.Username,
		Email:                u.Email,
		FirstName:            u.FirstName,
		LastName:             u.LastName,
		Phone:                u.Phone,
		PreferredCurrency:    u.PreferredCurrency,
		LanguagePreference:   u.LanguagePreference,
		Timezone:             u.Timezone,
		BiometricEnabled:     u.BiometricEnabled,
		NotificationsEnabled: u.NotificationsEnabled,
		IsActive:             u.IsActive,
		EmailVerified:        u.EmailVerified,
		CreatedAt:            u.CreatedAt,
		UpdatedAt:            u.UpdatedAt,
		LastLoginAt:          u.LastLoginAt,
	}
}

// User is the account record returned by the API. It has no password field.
// swagger:model User
type User struct {
	ID                   int64      `json:"id" example:"42"`
	Username             string     `json:"username" example:"john_doe"`
	Email                string     `json:"email" example:"john@example.com"`
	FirstName            string     `json:"first_name" example:"John"`
	LastName             string     `json:"last_name" example:"Doe"`
	Phone                *string    `json:"phone" example:"+525512345678"`
	PreferredCurrency    string     `json:"preferred_currency" example:"USD"`
	LanguagePreference   string     `json:"language_preference" example:"es"`
	Timezone             string     `json:"timezone" example:"America/Mexico_City"`
	BiometricEnabled     bool       `json:"biometric_enabled" example:"false"`
	NotificationsEnabled bool       `json:"notifications_enabled" example:"true"`
	IsActive             bool       `json:"is_active" example:"true"`
	EmailVerified        bool       `json:"email_verified" example:"false"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
	LastLoginAt          *time.Time `json:"last_login_at"`
}

// NewUser holds the columns written on registration.
type NewUser struct {
	Username             string
	Email                string
	PasswordHash         string
	FirstName            string
	LastName             string
	Phone                *string
	PreferredCurrency    string
	LanguagePreference   string
	Timezone             string
	BiometricEnabled     bool
	NotificationsEnabled bool
	IsActive             bool
	EmailVerified        bool
}

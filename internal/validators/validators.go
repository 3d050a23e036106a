// Package validators checks request bodies before they reach the store.
package validators

import (
	"errors"
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/sbilibin2017/fluxio-api/internal/models"
)

// Messages returned to callers for rejected input.
const (
	MsgRegisterMissingFields = "all required fields must be present"
	MsgLoginMissingFields    = "email and password are required"
	MsgEmailMissing          = "email is required"
	MsgInvalidEmail          = "invalid email"
	MsgPasswordTooShort      = "password must be at least 6 characters"
	MsgPasswordTooLong       = "password must be at most 72 bytes"
	MsgInvalidBody           = "invalid request body"
)

// ValidationError reports malformed or missing input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError returns a ValidationError with the given message.
func NewValidationError(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

// IsValidationError reports whether err wraps a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Only the local@domain.tld shape is checked; the built-in "email" rule is stricter.
	_ = v.RegisterValidation("simple_email", func(fl validator.FieldLevel) bool {
		return emailRegex.MatchString(fl.Field().String())
	})
	return v
}

// ValidateRegister checks presence of all required fields, then email shape, then password length.
func ValidateRegister(req models.RegisterRequest) error {
	return check(req, MsgRegisterMissingFields)
}

// ValidateLogin checks presence of email and password, then email shape.
func ValidateLogin(req models.LoginRequest) error {
	return check(req, MsgLoginMissingFields)
}

// ValidateCheckEmail checks presence and shape of the email.
func ValidateCheckEmail(req models.CheckEmailRequest) error {
	return check(req, MsgEmailMissing)
}

// check runs the struct rules and reduces the failures to one message.
// Missing fields win over every other failure.
func check(req any, missingMsg string) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	for _, fe := range fieldErrs {
		if fe.Tag() == "required" {
			return NewValidationError(missingMsg)
		}
	}
	for _, fe := range fieldErrs {
		if fe.Tag() == "simple_email" {
			return NewValidationError(MsgInvalidEmail)
		}
	}
	for _, fe := range fieldErrs {
		if fe.Field() == "Password" && fe.Tag() == "min" {
			return NewValidationError(MsgPasswordTooShort)
		}
	}
	return NewValidationError(fieldErrs[0].Error())
}

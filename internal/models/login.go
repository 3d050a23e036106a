package models

// LoginRequest represents the JSON body for user login
// swagger:model LoginRequest
type LoginRequest struct {
	// Email
	// required: true
	// example: john@example.com
	Email string `json:"email" validate:"required,simple_email" example:"john@example.com"`

	// Password
	// required: true
	// example: secret123
	Password string `json:"password" validate:"required" example:"secret123"`
}

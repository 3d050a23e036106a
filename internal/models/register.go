package models

// RegisterRequest represents the JSON body for user registration
// swagger:model RegisterRequest
type RegisterRequest struct {
	// Username
	// required: true
	// example: john_doe
	Username string `json:"username" validate:"required" example:"john_doe"`

	// Email
	// required: true
	// example: john@example.com
	Email string `json:"email" validate:"required,simple_email" example:"john@example.com"`

	// Password
	// required: true
	// example: secret123
	Password string `json:"password" validate:"required,min=6" example:"secret123"`

	// First name
	// required: true
	// example: John
	FirstName string `json:"first_name" validate:"required" example:"John"`

	// Last name
	// required: true
	// example: Doe
	LastName string `json:"last_name" validate:"required" example:"Doe"`

	// Phone, optional
	// example: +525512345678
	Phone string `json:"phone,omitempty" example:"+525512345678"`
}

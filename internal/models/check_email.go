package models

// CheckEmailRequest represents the JSON body for the email existence check
// swagger:model CheckEmailRequest
type CheckEmailRequest struct {
	// Email
	// required: true
	// example: john@example.com
	Email string `json:"email" validate:"required,simple_email" example:"john@example.com"`
}

// CheckEmailResult is the data payload of a check-email response
// swagger:model CheckEmailResult
type CheckEmailResult struct {
	Exists bool `json:"exists" example:"true"`
}

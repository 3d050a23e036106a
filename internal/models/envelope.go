package models

// Envelope wraps every API response
// swagger:model Envelope
type Envelope struct {
	// Whether the request succeeded
	Success bool `json:"success" example:"true"`

	// Payload, null on failure
	Data any `json:"data" swaggertype:"object"`

	// Error message, null on success
	Error *string `json:"error" example:"invalid credentials"`

	// ISO-8601 UTC time the response was built
	Timestamp string `json:"timestamp" example:"2025-01-01T12:00:00.000Z"`
}

// MessageResult is the data payload of informational endpoints
// swagger:model MessageResult
type MessageResult struct {
	Message string `json:"message" example:"FluxIO API is running"`
}

package models

import "time"

// Account event types published to the user events topic.
const (
	EventUserRegistered = "user.registered"
	EventUserLoggedIn   = "user.logged_in"
)

// UserEvent is a notification about an account lifecycle change.
type UserEvent struct {
	EventID    string    `json:"event_id"`    // Unique event identifier
	Type       string    `json:"type"`        // user.registered or user.logged_in
	UserID     int64     `json:"user_id"`     // Account the event refers to
	Email      string    `json:"email"`       // Account email at the time of the event
	OccurredAt time.Time `json:"occurred_at"` // When the change happened
}

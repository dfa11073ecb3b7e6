package events

import "time"

// EventType enumerates auth events published inside the process.
type EventType string

const (
	EventTypeLoginSucceeded  EventType = "auth.login_succeeded"
	EventTypeLoginFailed     EventType = "auth.login_failed"
	EventTypeUserRegistered  EventType = "auth.user_registered"
	EventTypePasswordChanged EventType = "auth.password_changed"
)

// Event carries what happened and to whom. UserID is empty for failed
// logins so the event stream cannot be used to probe which usernames exist.
type Event struct {
	Type       EventType
	UserID     string
	Username   string
	OccurredAt time.Time
}

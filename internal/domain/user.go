package domain

import "time"

// User is the domain model for accounts that authenticate against the service.
// PasswordHash is nil for accounts provisioned without a password; such
// accounts never authenticate until one is set.
type User struct {
	ID           string
	Username     string
	PasswordHash *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

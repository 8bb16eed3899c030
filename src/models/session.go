package models

import "time"

type Session struct {
	ID     string `db:"id"`
	UserID string `db:"user_id"`

	// Profile fields captured from the login provider.
	FirstName   string    `db:"first_name"`
	FullName    string    `db:"full_name"`
	Email       string    `db:"email"`
	Birthday    time.Time `db:"birthday"`
	ProfileLink string    `db:"profile_link"`

	ExpiresAt time.Time `db:"expires_at"`
}

// The validated profile of a logged-in writer, as resolved from the login
// provider.
type SessionInfo struct {
	UserID      string
	FirstName   string
	FullName    string
	Email       string
	Birthday    time.Time
	ProfileLink string
}

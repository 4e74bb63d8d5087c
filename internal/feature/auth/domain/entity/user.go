// Package entity defines the domain entities for the auth feature.
package entity

import "time"

// User represents a registered user in the system.
// A user is created either through local registration or on the first
// successful Google login, and is never deleted by this application.
type User struct {
	// ID is the unique identifier for the user.
	ID uint `gorm:"primaryKey"`

	// Username is the unique login identifier (a username or email address).
	// Both auth strategies look users up by this column.
	Username string `gorm:"uniqueIndex;size:255;not null"`

	// Password holds the bcrypt hash of the user's password.
	// For accounts created through Google OAuth it holds a sentinel marker
	// instead; such accounts have no usable password.
	Password string `gorm:"size:255;not null"`

	// Secret is the user's single private secret.
	// nil means the user has never submitted one; an empty string is a
	// submitted (empty) secret and the two are distinct states.
	Secret *string `gorm:"size:1024"`

	// CreatedAt is the timestamp when the user was created.
	CreatedAt time.Time

	// UpdatedAt is the timestamp when the user was last updated.
	UpdatedAt time.Time
}

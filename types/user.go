package types

import "time"

// User represents an account in the system.
type User struct {
	// ID is the unique identifier of the user, assigned at creation
	// and immutable thereafter.
	ID string `json:"user_id" db:"user_id"`

	// Username is the unique login name chosen by the user.
	// 3-20 characters from [A-Za-z0-9_], case-sensitive.
	Username string `json:"username" db:"username"`

	// PasswordHash stores the salted PBKDF2 hash of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

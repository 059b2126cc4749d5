package model

import "time"

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// User is the public account projection. Credential material never appears
// here and is never returned to callers.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
}

// Account is a registry entry: the public projection plus the bcrypt hash.
// It only exists inside the account registry namespace.
type Account struct {
	User
	PasswordHash string `json:"passwordHash"`
}

// Session is the single active authenticated context. Expiry is checked
// lazily on every read; there is no background sweep.
type Session struct {
	User   User      `json:"user"`
	Expiry time.Time `json:"expiry"`
}

// Valid reports whether the session has the expected shape and has not
// expired. A zero user id or zero expiry means the stored blob is malformed.
func (s Session) Valid(now time.Time) bool {
	return s.User.ID != "" && !s.Expiry.IsZero() && now.Before(s.Expiry)
}

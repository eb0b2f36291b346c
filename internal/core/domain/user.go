package domain

import "time"

// Role classifies what a principal is allowed to do.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User models an account in the system. PasswordHash and the reset challenge
// fields never leave the service layer; Sanitized strips them before a user
// is handed to any caller.
type User struct {
	ID               string     `json:"id"`
	Username         string     `json:"username"`
	Email            string     `json:"email"`
	PasswordHash     string     `json:"-"`
	Role             Role       `json:"role"`
	IsActive         bool       `json:"is_active"`
	ResetTokenDigest string     `json:"-"`
	ResetTokenExpiry *time.Time `json:"-"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// Sanitized returns a copy safe to expose outside the service layer.
func (u *User) Sanitized() *User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.PasswordHash = ""
	clone.ResetTokenDigest = ""
	clone.ResetTokenExpiry = nil
	return &clone
}

// HasLiveResetChallenge reports whether an unexpired reset challenge is
// attached to the account at the given instant.
func (u *User) HasLiveResetChallenge(now time.Time) bool {
	return u.ResetTokenDigest != "" && u.ResetTokenExpiry != nil && u.ResetTokenExpiry.After(now)
}

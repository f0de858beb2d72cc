package auth

import (
	"time"

	"github.com/google/uuid"
)

// User represents an administrator account. Accounts are provisioned
// out-of-band (see cmd/seedadmin); the API only reads them.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

// PublicUser is the subset of User safe to serialize in responses.
type PublicUser struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Public strips the identifier and password hash for response payloads.
func (u User) Public() PublicUser {
	return PublicUser{Email: u.Email, Role: u.Role}
}

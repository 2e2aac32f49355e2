package domain

import (
	"strings"
	"time"
)

type User struct {
	ID           string
	Email        string // stored lower-cased
	PasswordHash string // argon2 encoded
	FirstName    string
	LastName     string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FullName joins first and last name, trimmed. Either may be empty.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// NormalizeEmail is the canonical form used for storage and lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

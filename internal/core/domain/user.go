package domain

import (
	"strings"
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User models an account holder. PasswordHash and Credential never leave the
// service layer; handlers render ports.UserProfile instead.
type User struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Email        string          `json:"email"`
	PasswordHash string          `json:"-"`
	Credential   CredentialState `json:"-"`
	Role         string          `json:"role"`
	CV           *CV             `json:"cv,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// IsTemporaryPassword reports whether the current password was issued by the
// forgot-password flow.
func (u *User) IsTemporaryPassword() bool {
	return u.Credential == CredentialTemporary
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// NormalizeEmail lowercases and trims an address the same way the store does,
// so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

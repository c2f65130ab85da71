package ports

import (
	"context"
	"time"

	"github.com/jobportal/jobboard-api/internal/core/domain"
)

// RegisterInput carries a new account's details.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// LoginInput carries login credentials.
type LoginInput struct {
	Email    string
	Password string
}

// UserSummary is the identity block returned alongside a token.
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AuthResult is returned by every operation that mints a session token.
type AuthResult struct {
	Token                  string
	User                   UserSummary
	RequiresPasswordChange bool
}

// UserProfile is the client-facing view of an account. It has no password or
// credential-state fields, so it cannot leak them.
type UserProfile struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	CV        *domain.CV `json:"cv,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// AuthService is the credential lifecycle: register, login, current user,
// forgot-password and change-password.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, in LoginInput) (*AuthResult, error)
	CurrentUser(ctx context.Context, token string) (*UserProfile, error)
	// ForgotPassword returns nil both when the email is unknown and when a
	// temporary password was sent.
	ForgotPassword(ctx context.Context, email string) error
	ChangePassword(ctx context.Context, token, newPassword string) (*AuthResult, error)
}

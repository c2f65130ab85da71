package ports

import (
	"context"
	"time"

	"github.com/jobportal/jobboard-api/internal/core/domain"
)

// PasswordHasher is a salted, slow one-way hash.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	// Verify reports whether plain matches digest. A malformed digest yields
	// false with a nil error.
	Verify(plain, digest string) (bool, error)
}

// TokenIssuer mints and checks session tokens.
type TokenIssuer interface {
	Issue(userID string, temporaryPassword bool) (string, error)
	// Verify returns domain.ErrUnauthenticated for any malformed, forged or
	// expired token.
	Verify(token string) (*domain.Session, error)
}

// Mailer delivers transactional email.
type Mailer interface {
	Send(ctx context.Context, msg domain.Message) error
}

// Clock is the time source used by services.
type Clock interface {
	Now() time.Time
}

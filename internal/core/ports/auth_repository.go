package ports

import (
	"context"
	"time"

	"github.com/jobportal/jobboard-api/internal/core/domain"
)

// UserRepository is the credential store. Emails are matched
// case-insensitively; Create returns domain.ErrUserExists on a duplicate email
// and the lookups return domain.ErrUserNotFound when nothing matches.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// UpdateCredential replaces the password hash and credential state.
	UpdateCredential(ctx context.Context, id, passwordHash string, state domain.CredentialState) error
	// SetCV replaces the CV metadata; a nil cv clears it.
	SetCV(ctx context.Context, id string, cv *domain.CV) error
}

// ResetLedger records forgot-password requests.
type ResetLedger interface {
	// HasRecentRequest reports whether userID has a reset recorded after since.
	HasRecentRequest(ctx context.Context, userID string, since time.Time) (bool, error)
	Record(ctx context.Context, userID string, at time.Time) error
}

// ResetLocker serialises forgot-password requests for a single account.
// Acquire returns an empty token when another request already holds the lock.
// Release frees the lock only while token still owns it.
type ResetLocker interface {
	Acquire(ctx context.Context, userID string) (token string, err error)
	Release(ctx context.Context, userID, token string) error
}

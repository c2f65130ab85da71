package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jobportal/jobboard-api/internal/core/domain"
	"github.com/jobportal/jobboard-api/internal/core/ports"
)

const defaultTokenTTL = 24 * time.Hour

// sessionClaims is the JWT payload: subject, temporary-password flag, expiry.
type sessionClaims struct {
	jwt.RegisteredClaims
	TemporaryPassword bool `json:"isTemporaryPassword"`
}

// TokenService issues and verifies HS256 session tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	clock  ports.Clock
}

func NewTokenService(secret string, ttl time.Duration, clock ports.Clock) *TokenService {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	if clock == nil {
		clock = SystemClock()
	}
	return &TokenService{secret: []byte(secret), ttl: ttl, clock: clock}
}

func (s *TokenService) Issue(userID string, temporaryPassword bool) (string, error) {
	now := s.clock.Now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		TemporaryPassword: temporaryPassword,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify rejects malformed, forged, unsigned and expired tokens with
// domain.ErrUnauthenticated.
func (s *TokenService) Verify(token string) (*domain.Session, error) {
	if token == "" {
		return nil, domain.ErrUnauthenticated
	}

	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.clock.Now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUnauthenticated, err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, domain.ErrUnauthenticated
	}

	return &domain.Session{
		UserID:            claims.Subject,
		TemporaryPassword: claims.TemporaryPassword,
		ExpiresAt:         claims.ExpiresAt.Time,
	}, nil
}

package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobportal/jobboard-api/internal/core/domain"
)

func TestTokenService_IssueVerify(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	svc := NewTokenService("secret", time.Hour, clock)

	token, err := svc.Issue("user-1", true)
	require.NoError(t, err)

	session, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", session.UserID)
	assert.True(t, session.TemporaryPassword)
	assert.True(t, session.ExpiresAt.Equal(clock.now.Add(time.Hour)))
}

func TestTokenService_RejectsExpired(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	svc := NewTokenService("secret", time.Minute, clock)

	token, err := svc.Issue("user-1", false)
	require.NoError(t, err)

	clock.Advance(2 * time.Minute)
	_, err = svc.Verify(token)
	require.ErrorIs(t, err, domain.ErrUnauthenticated)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestTokenService_RejectsForeignSecret(t *testing.T) {
	other := NewTokenService("other-secret", time.Hour, nil)
	token, err := other.Issue("user-1", false)
	require.NoError(t, err)

	_, err = NewTokenService("secret", time.Hour, nil).Verify(token)
	require.ErrorIs(t, err, domain.ErrUnauthenticated)
	assert.NotErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestTokenService_RejectsUnsignedAndMalformed(t *testing.T) {
	svc := NewTokenService("secret", time.Hour, nil)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for _, token := range []string{"", "abc", "a.b.c", unsigned} {
		_, err := svc.Verify(token)
		assert.Truef(t, errors.Is(err, domain.ErrUnauthenticated), "token %q: got %v", token, err)
	}
}

func TestTokenService_RequiresSubjectAndExpiry(t *testing.T) {
	svc := NewTokenService("secret", time.Hour, nil)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = svc.Verify(noSubject)
	require.ErrorIs(t, err, domain.ErrUnauthenticated)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: "user-1",
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = svc.Verify(noExpiry)
	require.ErrorIs(t, err, domain.ErrUnauthenticated)
}

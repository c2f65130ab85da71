package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jobportal/jobboard-api/internal/core/domain"
	"github.com/jobportal/jobboard-api/internal/core/ports"
)

const (
	defaultResetWindow             = 24 * time.Hour
	defaultMinPasswordLength       = 6
	defaultMinNewPasswordLength    = 8
	defaultTemporaryPasswordLength = 12
)

// AuthConfig holds the tunables of the credential lifecycle. Zero values fall
// back to the defaults above.
type AuthConfig struct {
	ResetWindow             time.Duration
	MinPasswordLength       int
	MinNewPasswordLength    int
	TemporaryPasswordLength int
}

func (c AuthConfig) withDefaults() AuthConfig {
	if c.ResetWindow <= 0 {
		c.ResetWindow = defaultResetWindow
	}
	if c.MinPasswordLength <= 0 {
		c.MinPasswordLength = defaultMinPasswordLength
	}
	if c.MinNewPasswordLength <= 0 {
		c.MinNewPasswordLength = defaultMinNewPasswordLength
	}
	if c.TemporaryPasswordLength <= 0 {
		c.TemporaryPasswordLength = defaultTemporaryPasswordLength
	}
	return c
}

// AuthDeps are the collaborators of AuthService. Locker and Clock are
// optional.
type AuthDeps struct {
	Users  ports.UserRepository
	Ledger ports.ResetLedger
	Locker ports.ResetLocker
	Hasher ports.PasswordHasher
	Tokens ports.TokenIssuer
	Mailer ports.Mailer
	Clock  ports.Clock
	Logger zerolog.Logger
}

// AuthService implements ports.AuthService.
type AuthService struct {
	users  ports.UserRepository
	ledger ports.ResetLedger
	locker ports.ResetLocker
	hasher ports.PasswordHasher
	tokens ports.TokenIssuer
	mailer ports.Mailer
	clock  ports.Clock
	cfg    AuthConfig
	log    zerolog.Logger

	// dummyHash is compared against on unknown emails so login takes the same
	// time whether or not the account exists.
	dummyHash string
}

func NewAuthService(deps AuthDeps, cfg AuthConfig) (*AuthService, error) {
	clock := deps.Clock
	if clock == nil {
		clock = SystemClock()
	}

	dummy, err := deps.Hasher.Hash("timing-equaliser")
	if err != nil {
		return nil, fmt.Errorf("new auth service: %w", err)
	}

	return &AuthService{
		users:     deps.Users,
		ledger:    deps.Ledger,
		locker:    deps.Locker,
		hasher:    deps.Hasher,
		tokens:    deps.Tokens,
		mailer:    deps.Mailer,
		clock:     clock,
		cfg:       cfg.withDefaults(),
		log:       deps.Logger,
		dummyHash: dummy,
	}, nil
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	name := strings.TrimSpace(in.Name)
	email := domain.NormalizeEmail(in.Email)
	if name == "" || email == "" {
		return nil, fmt.Errorf("%w: name and email are required", domain.ErrInvalidInput)
	}
	if len(in.Password) < s.cfg.MinPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, s.cfg.MinPasswordLength)
	}

	_, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, domain.ErrUserExists
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, fmt.Errorf("register: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	now := s.clock.Now()
	created, err := s.users.Create(ctx, &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Credential:   domain.CredentialNormal,
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		// The unique index can still fire when two registrations race.
		if errors.Is(err, domain.ErrUserExists) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	s.log.Info().Str("user_id", created.ID).Msg("user registered")
	return s.authenticate(created)
}

func (s *AuthService) Login(ctx context.Context, in ports.LoginInput) (*ports.AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, domain.NormalizeEmail(in.Email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			_, _ = s.hasher.Verify(in.Password, s.dummyHash)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	ok, err := s.hasher.Verify(in.Password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}

	return s.authenticate(user)
}

func (s *AuthService) CurrentUser(ctx context.Context, token string) (*ports.UserProfile, error) {
	session, err := s.tokens.Verify(token)
	if err != nil {
		return nil, domain.ErrUnauthenticated
	}

	user, err := s.users.FindByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("current user: %w", err)
	}

	return toProfile(user), nil
}

// ForgotPassword mails a freshly generated temporary password and only then
// rotates the stored credential, so a failed delivery never locks the user
// out.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.log.Info().Msg("password reset requested for unknown email")
			return nil
		}
		return fmt.Errorf("forgot password: %w", err)
	}

	if s.locker != nil {
		lockToken, err := s.locker.Acquire(ctx, user.ID)
		switch {
		case err != nil:
			s.log.Warn().Err(err).Str("user_id", user.ID).Msg("reset lock unavailable, continuing without it")
		case lockToken == "":
			return domain.ErrRateLimited
		default:
			defer func() {
				if err := s.locker.Release(context.WithoutCancel(ctx), user.ID, lockToken); err != nil {
					s.log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to release reset lock")
				}
			}()
		}
	}

	now := s.clock.Now()
	recent, err := s.ledger.HasRecentRequest(ctx, user.ID, now.Add(-s.cfg.ResetWindow))
	if err != nil {
		return fmt.Errorf("forgot password: check ledger: %w", err)
	}
	if recent {
		return domain.ErrRateLimited
	}

	temporary, err := GenerateTemporaryPassword(s.cfg.TemporaryPasswordLength)
	if err != nil {
		return fmt.Errorf("forgot password: %w", err)
	}
	hash, err := s.hasher.Hash(temporary)
	if err != nil {
		return fmt.Errorf("forgot password: %w", err)
	}

	msg, err := resetMessage(user, temporary)
	if err != nil {
		return fmt.Errorf("forgot password: %w", err)
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("failed to send reset mail")
		return fmt.Errorf("%w: %w", domain.ErrMailDelivery, err)
	}

	// The mail is out; a client disconnect must not stop the rotation.
	ctx = context.WithoutCancel(ctx)
	state := user.Credential.Apply(domain.EventForcedReset)
	if err := s.users.UpdateCredential(ctx, user.ID, hash, state); err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("temporary password mailed but not stored")
		if errors.Is(err, domain.ErrUserNotFound) {
			// Account removed mid-request: answer like any unknown email.
			return nil
		}
		return fmt.Errorf("forgot password: rotate credential: %w", err)
	}

	// The credential is already rotated and mailed; a missing ledger entry only
	// allows one extra reset inside the window.
	if err := s.ledger.Record(ctx, user.ID, now); err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to record password reset")
	}

	s.log.Info().Str("user_id", user.ID).Msg("temporary password issued")
	return nil
}

func (s *AuthService) ChangePassword(ctx context.Context, token, newPassword string) (*ports.AuthResult, error) {
	session, err := s.tokens.Verify(token)
	if err != nil {
		return nil, domain.ErrUnauthenticated
	}
	if len(newPassword) < s.cfg.MinNewPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, s.cfg.MinNewPasswordLength)
	}

	user, err := s.users.FindByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("change password: %w", err)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return nil, fmt.Errorf("change password: %w", err)
	}

	state := user.Credential.Apply(domain.EventVoluntaryChange)
	if err := s.users.UpdateCredential(ctx, user.ID, hash, state); err != nil {
		return nil, fmt.Errorf("change password: %w", err)
	}
	user.PasswordHash = hash
	user.Credential = state

	s.log.Info().Str("user_id", user.ID).Msg("password changed")
	return s.authenticate(user)
}

func (s *AuthService) authenticate(user *domain.User) (*ports.AuthResult, error) {
	token, err := s.tokens.Issue(user.ID, user.IsTemporaryPassword())
	if err != nil {
		return nil, err
	}
	return &ports.AuthResult{
		Token: token,
		User: ports.UserSummary{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
		},
		RequiresPasswordChange: user.IsTemporaryPassword(),
	}, nil
}

func toProfile(u *domain.User) *ports.UserProfile {
	return &ports.UserProfile{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CV:        u.CV,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

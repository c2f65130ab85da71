package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/jobportal/jobboard-api/internal/core/domain"
	"github.com/jobportal/jobboard-api/internal/core/ports"
)

type stubUserRepo struct {
	mu        sync.Mutex
	users     map[string]*domain.User
	seq       int
	updateErr error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	if u.CV != nil {
		cv := *u.CV
		clone.CV = &cv
	}
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	r.seq++
	stored := cloneUser(user)
	stored.ID = fmt.Sprintf("user-%d", r.seq)
	r.users[stored.ID] = stored
	return cloneUser(stored), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) UpdateCredential(_ context.Context, id, passwordHash string, state domain.CredentialState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	u.Credential = state
	return nil
}

func (r *stubUserRepo) SetCV(_ context.Context, id string, cv *domain.CV) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.CV = cv
	return nil
}

func (r *stubUserRepo) put(u *domain.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = cloneUser(u)
}

type stubLedger struct {
	mu        sync.Mutex
	entries   map[string][]time.Time
	recordErr error
}

func newStubLedger() *stubLedger {
	return &stubLedger{entries: make(map[string][]time.Time)}
}

func (l *stubLedger) HasRecentRequest(_ context.Context, userID string, since time.Time) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, at := range l.entries[userID] {
		if at.After(since) {
			return true, nil
		}
	}
	return false, nil
}

func (l *stubLedger) Record(_ context.Context, userID string, at time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.recordErr != nil {
		return l.recordErr
	}
	l.entries[userID] = append(l.entries[userID], at)
	return nil
}

func (l *stubLedger) count(userID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries[userID])
}

type stubMailer struct {
	mu   sync.Mutex
	sent []domain.Message
	err  error
}

func (m *stubMailer) Send(_ context.Context, msg domain.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *stubMailer) last() (domain.Message, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return domain.Message{}, false
	}
	return m.sent[len(m.sent)-1], true
}

type stubLocker struct {
	held       map[string]string
	acquireErr error
	released   int
	seq        int
}

func (l *stubLocker) Acquire(_ context.Context, userID string) (string, error) {
	if l.acquireErr != nil {
		return "", l.acquireErr
	}
	if _, taken := l.held[userID]; taken {
		return "", nil
	}
	l.seq++
	token := fmt.Sprintf("lock-%d", l.seq)
	l.held[userID] = token
	return token, nil
}

func (l *stubLocker) Release(_ context.Context, userID, token string) error {
	if l.held[userID] == token {
		delete(l.held, userID)
	}
	l.released++
	return nil
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type authFixture struct {
	svc    *AuthService
	users  *stubUserRepo
	ledger *stubLedger
	mailer *stubMailer
	clock  *fakeClock
	tokens *TokenService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	f := &authFixture{
		users:  newStubUserRepo(),
		ledger: newStubLedger(),
		mailer: &stubMailer{},
		clock:  &fakeClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)},
	}
	f.tokens = NewTokenService("test-secret", time.Hour, f.clock)

	svc, err := NewAuthService(AuthDeps{
		Users:  f.users,
		Ledger: f.ledger,
		Hasher: NewBcryptHasher(bcrypt.MinCost),
		Tokens: f.tokens,
		Mailer: f.mailer,
		Clock:  f.clock,
		Logger: zerolog.Nop(),
	}, AuthConfig{})
	if err != nil {
		t.Fatalf("NewAuthService returned error: %v", err)
	}
	f.svc = svc
	return f
}

func (f *authFixture) register(t *testing.T, email, password string) *ports.AuthResult {
	t.Helper()
	res, err := f.svc.Register(context.Background(), ports.RegisterInput{Name: "Alice", Email: email, Password: password})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	return res
}

var tempPasswordPattern = regexp.MustCompile(`<h2>([^<]+)</h2>`)

func (f *authFixture) mailedPassword(t *testing.T) string {
	t.Helper()
	msg, ok := f.mailer.last()
	if !ok {
		t.Fatalf("expected a reset mail to be sent")
	}
	m := tempPasswordPattern.FindStringSubmatch(msg.HTMLBody)
	if m == nil {
		t.Fatalf("reset mail does not contain a temporary password: %s", msg.HTMLBody)
	}
	return m[1]
}

func TestAuthService_Register_Success(t *testing.T) {
	f := newAuthFixture(t)

	res := f.register(t, "  Alice@Example.com ", "pass123")

	if res.Token == "" {
		t.Fatal("expected token")
	}
	if res.User.Email != "alice@example.com" {
		t.Fatalf("expected normalized email, got %q", res.User.Email)
	}
	if res.RequiresPasswordChange {
		t.Fatal("fresh account must not require a password change")
	}

	stored, err := f.users.FindByID(context.Background(), res.User.ID)
	if err != nil {
		t.Fatalf("FindByID returned error: %v", err)
	}
	if stored.PasswordHash == "pass123" {
		t.Fatal("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("pass123")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if stored.Role != domain.RoleUser {
		t.Fatalf("unexpected role: %s", stored.Role)
	}
	if stored.IsTemporaryPassword() {
		t.Fatal("fresh account must not carry a temporary password")
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	f := newAuthFixture(t)

	cases := []ports.RegisterInput{
		{Name: "", Email: "a@example.com", Password: "pass123"},
		{Name: "Alice", Email: "  ", Password: "pass123"},
		{Name: "Alice", Email: "a@example.com", Password: "short"},
	}
	for _, in := range cases {
		if _, err := f.svc.Register(context.Background(), in); !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("%+v: expected ErrInvalidInput, got %v", in, err)
		}
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "alice@example.com", "pass123")

	_, err := f.svc.Register(context.Background(), ports.RegisterInput{Name: "Other", Email: "ALICE@example.com", Password: "another1"})
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_Login(t *testing.T) {
	f := newAuthFixture(t)
	registered := f.register(t, "alice@example.com", "pass123")

	res, err := f.svc.Login(context.Background(), ports.LoginInput{Email: "Alice@example.com", Password: "pass123"})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if res.User.ID != registered.User.ID {
		t.Fatalf("expected user %s, got %s", registered.User.ID, res.User.ID)
	}

	session, err := f.tokens.Verify(res.Token)
	if err != nil {
		t.Fatalf("token does not verify: %v", err)
	}
	if session.UserID != registered.User.ID || session.TemporaryPassword {
		t.Fatalf("unexpected session %+v", session)
	}
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "alice@example.com", "pass123")

	if _, err := f.svc.Login(context.Background(), ports.LoginInput{Email: "alice@example.com", Password: "wrong"}); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, err := f.svc.Login(context.Background(), ports.LoginInput{Email: "nobody@example.com", Password: "pass123"}); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestAuthService_CurrentUser(t *testing.T) {
	f := newAuthFixture(t)
	res := f.register(t, "alice@example.com", "pass123")

	profile, err := f.svc.CurrentUser(context.Background(), res.Token)
	if err != nil {
		t.Fatalf("CurrentUser returned error: %v", err)
	}
	if profile.ID != res.User.ID || profile.Email != "alice@example.com" || profile.Role != domain.RoleUser {
		t.Fatalf("unexpected profile %+v", profile)
	}

	if _, err := f.svc.CurrentUser(context.Background(), "garbage"); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestAuthService_CurrentUser_DeletedAccount(t *testing.T) {
	f := newAuthFixture(t)
	token, err := f.tokens.Issue("ghost", false)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	if _, err := f.svc.CurrentUser(context.Background(), token); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAuthService_CurrentUser_ExpiredToken(t *testing.T) {
	f := newAuthFixture(t)
	res := f.register(t, "alice@example.com", "pass123")

	f.clock.Advance(2 * time.Hour)

	if _, err := f.svc.CurrentUser(context.Background(), res.Token); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestAuthService_ForgotPassword_RotatesToTemporary(t *testing.T) {
	f := newAuthFixture(t)
	res := f.register(t, "alice@example.com", "pass123")

	if err := f.svc.ForgotPassword(context.Background(), "ALICE@example.com"); err != nil {
		t.Fatalf("ForgotPassword returned error: %v", err)
	}

	msg, _ := f.mailer.last()
	if msg.To != "alice@example.com" {
		t.Fatalf("mail sent to %q", msg.To)
	}
	if !strings.Contains(msg.HTMLBody, "Password Reset") {
		t.Fatalf("unexpected mail body: %s", msg.HTMLBody)
	}
	temp := f.mailedPassword(t)
	if len(temp) < 8 {
		t.Fatalf("temporary password too short: %q", temp)
	}

	if _, err := f.svc.Login(context.Background(), ports.LoginInput{Email: "alice@example.com", Password: "pass123"}); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("old password must stop working, got %v", err)
	}

	login, err := f.svc.Login(context.Background(), ports.LoginInput{Email: "alice@example.com", Password: temp})
	if err != nil {
		t.Fatalf("login with temporary password failed: %v", err)
	}
	if !login.RequiresPasswordChange {
		t.Fatal("expected requiresPasswordChange after reset")
	}
	session, err := f.tokens.Verify(login.Token)
	if err != nil {
		t.Fatalf("token does not verify: %v", err)
	}
	if !session.TemporaryPassword {
		t.Fatal("token must carry the temporary-password flag")
	}
	if f.ledger.count(res.User.ID) != 1 {
		t.Fatalf("expected one ledger entry, got %d", f.ledger.count(res.User.ID))
	}
}

func TestAuthService_ForgotPassword_UnknownEmail(t *testing.T) {
	f := newAuthFixture(t)

	if err := f.svc.ForgotPassword(context.Background(), "nobody@example.com"); err != nil {
		t.Fatalf("expected silent success, got %v", err)
	}
	if _, ok := f.mailer.last(); ok {
		t.Fatal("no mail must be sent for unknown email")
	}
}

func TestAuthService_ForgotPassword_RateLimitedWithinWindow(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "alice@example.com", "pass123")

	if err := f.svc.ForgotPassword(context.Background(), "alice@example.com"); err != nil {
		t.Fatalf("first reset failed: %v", err)
	}
	first := f.mailedPassword(t)

	f.clock.Advance(23 * time.Hour)
	if err := f.svc.ForgotPassword(context.Background(), "alice@example.com"); !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if len(f.mailer.sent) != 1 {
		t.Fatalf("rate-limited request must not send mail, sent %d", len(f.mailer.sent))
	}
	if _, err := f.svc.Login(context.Background(), ports.LoginInput{Email: "alice@example.com", Password: first}); err != nil {
		t.Fatalf("first temporary password must still work: %v", err)
	}

	f.clock.Advance(2 * time.Hour)
	if err := f.svc.ForgotPassword(context.Background(), "alice@example.com"); err != nil {
		t.Fatalf("reset after the window failed: %v", err)
	}
	if second := f.mailedPassword(t); second == first {
		t.Fatal("expected a fresh temporary password")
	}
}

func TestAuthService_ForgotPassword_MailFailureKeepsCredential(t *testing.T) {
	f := newAuthFixture(t)
	res := f.register(t, "alice@example.com", "pass123")
	f.mailer.err = errors.New("smtp down")

	err := f.svc.ForgotPassword(context.Background(), "alice@example.com")
	if !errors.Is(err, domain.ErrMailDelivery) {
		t.Fatalf("expected ErrMailDelivery, got %v", err)
	}

	if _, err := f.svc.Login(context.Background(), ports.LoginInput{Email: "alice@example.com", Password: "pass123"}); err != nil {
		t.Fatalf("original password must survive a failed delivery: %v", err)
	}
	if f.ledger.count(res.User.ID) != 0 {
		t.Fatal("failed delivery must not be recorded")
	}

	f.mailer.err = nil
	if err := f.svc.ForgotPassword(context.Background(), "alice@example.com"); err != nil {
		t.Fatalf("retry after failed delivery must be allowed: %v", err)
	}
}

func TestAuthService_ForgotPassword_RotationFailure(t *testing.T) {
	f := newAuthFixture(t)
	res := f.register(t, "alice@example.com", "pass123")
	f.users.updateErr = errors.New("write conflict")

	err := f.svc.ForgotPassword(context.Background(), "alice@example.com")
	if err == nil || errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected a rotation error, got %v", err)
	}
	if f.ledger.count(res.User.ID) != 0 {
		t.Fatal("an unrotated credential must not be recorded")
	}
	if _, err := f.svc.Login(context.Background(), ports.LoginInput{Email: "alice@example.com", Password: "pass123"}); err != nil {
		t.Fatalf("original password must survive a failed rotation: %v", err)
	}
}

func TestAuthService_ForgotPassword_AccountRemovedMidRequest(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "alice@example.com", "pass123")
	f.users.updateErr = domain.ErrUserNotFound

	if err := f.svc.ForgotPassword(context.Background(), "alice@example.com"); err != nil {
		t.Fatalf("expected the generic acknowledgement, got %v", err)
	}
}

func TestAuthService_ForgotPassword_LedgerWriteFailureIsNotFatal(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "alice@example.com", "pass123")
	f.ledger.recordErr = errors.New("mongo down")

	if err := f.svc.ForgotPassword(context.Background(), "alice@example.com"); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	temp := f.mailedPassword(t)
	if _, err := f.svc.Login(context.Background(), ports.LoginInput{Email: "alice@example.com", Password: temp}); err != nil {
		t.Fatalf("temporary password must work: %v", err)
	}
}

func TestAuthService_ForgotPassword_Locker(t *testing.T) {
	f := newAuthFixture(t)
	res := f.register(t, "alice@example.com", "pass123")
	locker := &stubLocker{held: map[string]string{res.User.ID: "other-request"}}
	f.svc.locker = locker

	if err := f.svc.ForgotPassword(context.Background(), "alice@example.com"); !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited while lock is held, got %v", err)
	}

	delete(locker.held, res.User.ID)
	if err := f.svc.ForgotPassword(context.Background(), "alice@example.com"); err != nil {
		t.Fatalf("expected success once lock is free, got %v", err)
	}
	if _, stillHeld := locker.held[res.User.ID]; locker.released != 1 || stillHeld {
		t.Fatalf("lock must be released after the request, released=%d", locker.released)
	}
}

func TestAuthService_ForgotPassword_LockerErrorFallsThrough(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "alice@example.com", "pass123")
	f.svc.locker = &stubLocker{held: map[string]string{}, acquireErr: errors.New("redis down")}

	if err := f.svc.ForgotPassword(context.Background(), "alice@example.com"); err != nil {
		t.Fatalf("expected ledger-only path to succeed, got %v", err)
	}
}

func TestAuthService_ChangePassword_ClearsTemporaryFlag(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "alice@example.com", "pass123")
	if err := f.svc.ForgotPassword(context.Background(), "alice@example.com"); err != nil {
		t.Fatalf("ForgotPassword returned error: %v", err)
	}
	temp := f.mailedPassword(t)
	login, err := f.svc.Login(context.Background(), ports.LoginInput{Email: "alice@example.com", Password: temp})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	changed, err := f.svc.ChangePassword(context.Background(), login.Token, "brand-new-pass")
	if err != nil {
		t.Fatalf("ChangePassword returned error: %v", err)
	}
	if changed.RequiresPasswordChange {
		t.Fatal("flag must be cleared after a voluntary change")
	}
	session, err := f.tokens.Verify(changed.Token)
	if err != nil {
		t.Fatalf("new token does not verify: %v", err)
	}
	if session.TemporaryPassword {
		t.Fatal("new token must not carry the temporary-password flag")
	}

	relogin, err := f.svc.Login(context.Background(), ports.LoginInput{Email: "alice@example.com", Password: "brand-new-pass"})
	if err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}
	if relogin.RequiresPasswordChange {
		t.Fatal("login after change must not require a password change")
	}

	if _, err := f.svc.Login(context.Background(), ports.LoginInput{Email: "alice@example.com", Password: temp}); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("temporary password must stop working after a change, got %v", err)
	}
}

func TestAuthService_ChangePassword_Validation(t *testing.T) {
	f := newAuthFixture(t)
	res := f.register(t, "alice@example.com", "pass123")

	if _, err := f.svc.ChangePassword(context.Background(), res.Token, "short"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := f.svc.ChangePassword(context.Background(), "not-a-token", "long-enough"); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}

	ghost, _ := f.tokens.Issue("ghost", true)
	if _, err := f.svc.ChangePassword(context.Background(), ghost, "long-enough"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAuthService_ChangePassword_RepositoryFailure(t *testing.T) {
	f := newAuthFixture(t)
	res := f.register(t, "alice@example.com", "pass123")
	f.users.updateErr = errors.New("write conflict")

	if _, err := f.svc.ChangePassword(context.Background(), res.Token, "long-enough"); err == nil {
		t.Fatal("expected error")
	}
}

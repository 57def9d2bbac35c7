package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/kopiteras/cafe/internal/account"
	"github.com/kopiteras/cafe/internal/metrics"
)

// MinPasswordLength is the shortest password accepted on signup.
const MinPasswordLength = 6

var (
	// ErrInvalidCredentials is returned for any failed password login. Unknown
	// emails, federated-only accounts and wrong passwords are indistinguishable.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthorized is returned when a session token is missing, malformed,
	// tampered with or expired, or when the account behind it no longer exists.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrConflict is returned when signing up with an email that is already taken.
	ErrConflict = errors.New("account already exists")

	// ErrNotFound is returned when a referenced account does not exist.
	ErrNotFound = errors.New("account not found")

	ErrEmailRequired    = errors.New("email is required")
	ErrInvalidEmail     = errors.New("invalid email format")
	ErrPasswordTooShort = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	ErrInvalidRole      = errors.New("role must be user or admin")
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateEmail checks that email is present and has a plausible shape.
func ValidateEmail(email string) error {
	if email == "" {
		return ErrEmailRequired
	}
	if !emailRegex.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

// ValidatePassword checks the signup password policy.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

// Option configures a Service.
type Option func(*Service)

// WithSuperOperator forces the admin role for email on every token issuance,
// regardless of the stored role. An empty email disables the override.
func WithSuperOperator(email string) Option {
	return func(s *Service) {
		s.superOperatorEmail = email
	}
}

// WithMetrics records issued sessions and overrides.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// Service resolves identities and roles for password and federated logins and
// issues the stateless session tokens that carry them between requests.
type Service struct {
	accounts           account.Repository
	tokens             *TokenManager
	bcryptCost         int
	superOperatorEmail string
	metrics            *metrics.Metrics

	dummyOnce sync.Once
	dummyHash []byte
}

// NewService creates a new auth Service.
func NewService(accounts account.Repository, tokens *TokenManager, bcryptCost int, opts ...Option) *Service {
	s := &Service{
		accounts:   accounts,
		tokens:     tokens,
		bcryptCost: bcryptCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AuthenticateWithCredentials checks an email/password pair against the stored bcrypt hash.
func (s *Service) AuthenticateWithCredentials(ctx context.Context, email, password string) (*Snapshot, error) {
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	a, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			s.burnCompare(password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("looking up account: %w", err)
	}

	if !a.HasPassword() {
		s.burnCompare(password)
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*a.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return snapshotOf(a), nil
}

// AuthenticateWithFederatedProvider maps a provider profile to an account,
// creating a password-less user account on first sign-in.
func (s *Service) AuthenticateWithFederatedProvider(ctx context.Context, p Profile) (*Snapshot, error) {
	if err := ValidateEmail(p.Email); err != nil {
		return nil, ErrInvalidCredentials
	}

	a, err := s.accounts.GetByEmail(ctx, p.Email)
	if err == nil {
		return snapshotOf(a), nil
	}
	if !errors.Is(err, account.ErrNotFound) {
		return nil, fmt.Errorf("looking up account: %w", err)
	}

	now := time.Now().UTC()
	a = &account.Account{
		Email:         p.Email,
		Role:          account.RoleUser,
		EmailVerified: &now,
	}
	if p.Name != "" {
		a.Name = &p.Name
	}
	if p.Picture != "" {
		a.Image = &p.Picture
	}

	if err := s.accounts.Create(ctx, a); err != nil {
		if !errors.Is(err, account.ErrDuplicateEmail) {
			return nil, fmt.Errorf("creating federated account: %w", err)
		}
		// Lost a race with a concurrent first sign-in for the same email.
		a, err = s.accounts.GetByEmail(ctx, p.Email)
		if err != nil {
			return nil, fmt.Errorf("re-reading federated account: %w", err)
		}
		return snapshotOf(a), nil
	}

	slog.Info("federated account created", "accountId", a.ID, "provider", p.Provider)
	return snapshotOf(a), nil
}

// IssueSessionToken re-reads the account from the store and signs a token
// carrying its current name and role. The snapshot only identifies the account;
// its name and role are never trusted.
func (s *Service) IssueSessionToken(ctx context.Context, snap Snapshot) (*Session, error) {
	a, err := s.lookup(ctx, snap)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("refreshing account for session: %w", err)
	}

	id := &Identity{
		AccountID:   a.ID,
		Email:       a.Email,
		Name:        a.DisplayName(),
		Role:        a.Role,
		ImageMarker: a.ImageUpdatedAt.UnixMilli(),
	}

	if s.superOperatorEmail != "" && a.Email == s.superOperatorEmail && id.Role != account.RoleAdmin {
		slog.Warn("super-operator override applied", "accountId", a.ID, "storedRole", a.Role)
		id.Role = account.RoleAdmin
		s.metrics.RecordOverride()
	}

	token, exp, err := s.tokens.Sign(id)
	if err != nil {
		return nil, err
	}
	id.ExpiresAt = exp
	s.metrics.RecordSession(string(id.Role))

	return &Session{Token: token, ExpiresAt: exp, Identity: id}, nil
}

// ResolveRequest turns a session token into an authorization decision. It does
// not consult the account store; the role is the one cached at issuance.
func (s *Service) ResolveRequest(token string) (*Identity, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}

	id, err := s.tokens.Parse(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	return id, nil
}

// SignUp creates a password account with the user role.
func (s *Service) SignUp(ctx context.Context, req SignUpRequest) (*account.Account, error) {
	return s.CreateAccount(ctx, req, account.RoleUser)
}

// CreateAccount creates a password account with the given role.
func (s *Service) CreateAccount(ctx context.Context, req SignUpRequest, role account.Role) (*account.Account, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	email := strings.TrimSpace(req.Email)
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := ValidatePassword(req.Password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}
	hashStr := string(hash)

	a := &account.Account{
		Email:        email,
		PasswordHash: &hashStr,
		Role:         role,
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		a.Name = &name
	}

	if err := s.accounts.Create(ctx, a); err != nil {
		if errors.Is(err, account.ErrDuplicateEmail) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("creating account: %w", err)
	}

	return a, nil
}

// SetRole changes the stored role of an account. Sessions already issued keep
// their cached role until they are refreshed.
func (s *Service) SetRole(ctx context.Context, id int64, role account.Role) (*account.Account, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	a, err := s.accounts.UpdateRole(ctx, id, role)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("updating role: %w", err)
	}

	slog.Info("account role changed", "accountId", id, "role", role)
	return a, nil
}

// SetRoleByEmail is SetRole addressed by email.
func (s *Service) SetRoleByEmail(ctx context.Context, email string, role account.Role) (*account.Account, error) {
	a, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("looking up account: %w", err)
	}
	return s.SetRole(ctx, a.ID, role)
}

// BootstrapAdmin guarantees an administrator exists. When no admin account is
// present it promotes the account with the given email, creating it with the
// given password if needed. Returns true when it changed anything.
func (s *Service) BootstrapAdmin(ctx context.Context, email, password string) (bool, error) {
	if email == "" {
		return false, nil
	}

	count, err := s.accounts.CountByRole(ctx, account.RoleAdmin)
	if err != nil {
		return false, fmt.Errorf("counting admins: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	existing, err := s.accounts.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if _, err := s.SetRole(ctx, existing.ID, account.RoleAdmin); err != nil {
			return false, err
		}
	case errors.Is(err, account.ErrNotFound):
		if _, err := s.CreateAccount(ctx, SignUpRequest{Email: email, Password: password, Name: "admin"}, account.RoleAdmin); err != nil {
			return false, fmt.Errorf("creating bootstrap admin: %w", err)
		}
	default:
		return false, fmt.Errorf("looking up bootstrap admin: %w", err)
	}

	slog.Info("bootstrap admin ensured", "email", email)
	return true, nil
}

func (s *Service) lookup(ctx context.Context, snap Snapshot) (*account.Account, error) {
	if snap.Email != "" {
		a, err := s.accounts.GetByEmail(ctx, snap.Email)
		if err == nil || !errors.Is(err, account.ErrNotFound) || snap.ID == 0 {
			return a, err
		}
	}
	if snap.ID == 0 {
		return nil, account.ErrNotFound
	}
	return s.accounts.GetByID(ctx, snap.ID)
}

// burnCompare spends roughly one bcrypt comparison so that unknown emails and
// password-less accounts take as long to reject as a wrong password.
func (s *Service) burnCompare(password string) {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("cafe-dummy-password"), s.bcryptCost)
	})
	if s.dummyHash != nil {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
	}
}

func snapshotOf(a *account.Account) *Snapshot {
	return &Snapshot{
		ID:    a.ID,
		Email: a.Email,
		Name:  a.DisplayName(),
		Role:  a.Role,
	}
}

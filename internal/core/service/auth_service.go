package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/storefront/commerce-api/internal/core/domain"
	"github.com/storefront/commerce-api/internal/core/ports"
)

const (
	resetTokenTTL        = time.Hour
	verificationTokenTTL = 24 * time.Hour
	accountTokenBytes    = 32
)

// tokenClaims is the JWT payload. Subject carries the account ID.
type tokenClaims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// AuthServiceDeps bundles the collaborators of AuthService.
type AuthServiceDeps struct {
	Accounts   ports.AccountRepository
	Mailer     ports.Mailer
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int
	Clock      func() time.Time
	Logger     zerolog.Logger
}

// AuthService implements accounts, credentials and bearer tokens.
type AuthService struct {
	repo       ports.AccountRepository
	mailer     ports.Mailer
	jwtSecret  []byte
	tokenTTL   time.Duration
	bcryptCost int
	clock      func() time.Time
	logger     zerolog.Logger
}

func NewAuthService(deps AuthServiceDeps) *AuthService {
	if deps.TokenTTL <= 0 {
		deps.TokenTTL = 24 * time.Hour
	}
	if deps.BcryptCost == 0 {
		deps.BcryptCost = bcrypt.DefaultCost
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &AuthService{
		repo:       deps.Accounts,
		mailer:     deps.Mailer,
		jwtSecret:  []byte(deps.JWTSecret),
		tokenTTL:   deps.TokenTTL,
		bcryptCost: deps.BcryptCost,
		clock:      func() time.Time { return clock().UTC() },
		logger:     deps.Logger,
	}
}

// ---------------------------------------------------------------------------
// Tokens
// ---------------------------------------------------------------------------

// IssueToken signs a token for identity that expires after ttl.
func (s *AuthService) IssueToken(identity domain.Identity, ttl time.Duration) (string, time.Time, error) {
	if len(s.jwtSecret) == 0 {
		return "", time.Time{}, fmt.Errorf("%w: signing secret is not set", domain.ErrConfiguration)
	}
	if ttl <= 0 {
		ttl = s.tokenTTL
	}

	now := s.clock()
	expiresAt := now.Add(ttl)
	claims := tokenClaims{
		Email: identity.Email,
		Role:  string(identity.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   identity.AccountID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// VerifyToken checks signature and expiry, then re-reads the account so a
// deactivated account or a changed role takes effect immediately.
func (s *AuthService) VerifyToken(ctx context.Context, token string) (domain.Identity, error) {
	if len(s.jwtSecret) == 0 {
		return domain.Identity{}, fmt.Errorf("%w: signing secret is not set", domain.ErrConfiguration)
	}
	if strings.TrimSpace(token) == "" {
		return domain.Identity{}, domain.ErrTokenMissing
	}

	claims := &tokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return s.jwtSecret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.clock),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Identity{}, domain.ErrTokenExpired
		}
		return domain.Identity{}, domain.ErrTokenInvalid
	}
	if !parsed.Valid || claims.Subject == "" {
		return domain.Identity{}, domain.ErrTokenInvalid
	}

	account, err := s.repo.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return domain.Identity{}, domain.ErrTokenInvalid
		}
		return domain.Identity{}, fmt.Errorf("verify token: %w", err)
	}
	if !account.Active {
		return domain.Identity{}, domain.ErrAccountInactive
	}
	return account.Identity(), nil
}

// ---------------------------------------------------------------------------
// Credentials
// ---------------------------------------------------------------------------

// HashPassword returns a salted bcrypt hash of password.
func (s *AuthService) HashPassword(password string) (string, error) {
	if len(password) < domain.MinPasswordLength {
		return "", domain.ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches hash.
func (s *AuthService) VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ---------------------------------------------------------------------------
// Self-service
// ---------------------------------------------------------------------------

// Register creates a user-role account and signs it in. The role is never
// taken from the request.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	email := normalizeEmail(in.Email)
	if email == "" {
		return nil, domain.Invalid("email is required")
	}
	hash, err := s.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	account := &domain.Account{
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Phone:        strings.TrimSpace(in.Phone),
		Role:         domain.RoleUser,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, account); err != nil {
		return nil, err
	}

	s.logger.Info().Str("account_id", account.ID).Msg("account registered")
	return s.signIn(account)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if !s.VerifyPassword(password, account.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	if !account.Active {
		return nil, domain.ErrAccountInactive
	}

	// The stamp is conditional on the state just checked, so a deactivation
	// or password change landing in between fails the login.
	recorded, err := s.repo.RecordLogin(ctx, account.ID, account.PasswordHash, s.clock())
	if err != nil {
		if !errors.Is(err, domain.ErrAccountNotFound) {
			return nil, err
		}
		if current, ferr := s.repo.FindByID(ctx, account.ID); ferr == nil && !current.Active {
			return nil, domain.ErrAccountInactive
		}
		return nil, domain.ErrInvalidCredentials
	}

	return s.signIn(recorded)
}

func (s *AuthService) Me(ctx context.Context, accountID string) (*domain.Account, error) {
	return s.repo.FindByID(ctx, accountID)
}

func (s *AuthService) UpdateProfile(ctx context.Context, accountID string, in ports.ProfileUpdate) (*domain.Account, error) {
	return s.repo.UpdateProfile(ctx, accountID, ports.ProfileUpdate{
		FirstName: trimmed(in.FirstName),
		LastName:  trimmed(in.LastName),
		Phone:     trimmed(in.Phone),
	}, s.clock())
}

func (s *AuthService) ChangePassword(ctx context.Context, accountID, current, next string) error {
	account, err := s.repo.FindByID(ctx, accountID)
	if err != nil {
		return err
	}
	if !s.VerifyPassword(current, account.PasswordHash) {
		return domain.ErrInvalidCredentials
	}
	hash, err := s.HashPassword(next)
	if err != nil {
		return err
	}

	if err := s.repo.ReplacePasswordHash(ctx, account.ID, account.PasswordHash, hash, s.clock()); err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			// The password changed after it was checked.
			return domain.ErrInvalidCredentials
		}
		return err
	}
	s.logger.Info().Str("account_id", account.ID).Msg("password changed")
	return nil
}

// RequestPasswordReset mails a single-use reset token. Unknown emails are
// accepted silently so callers cannot probe for accounts.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	account, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil
		}
		return err
	}

	raw, hash, err := newAccountToken()
	if err != nil {
		return err
	}
	now := s.clock()
	if err := s.repo.SetResetToken(ctx, account.ID, hash, now.Add(resetTokenTTL), now); err != nil {
		return err
	}

	if err := s.mailer.SendPasswordReset(ctx, account.Email, raw); err != nil {
		return fmt.Errorf("send password reset: %w", err)
	}
	s.logger.Info().Str("account_id", account.ID).Msg("password reset requested")
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, token, password string) error {
	if strings.TrimSpace(token) == "" {
		return domain.ErrTokenUnusable
	}
	hash, err := s.HashPassword(password)
	if err != nil {
		return err
	}

	account, err := s.repo.ConsumeResetToken(ctx, hashAccountToken(token), s.clock(), hash)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return domain.ErrTokenUnusable
		}
		return err
	}
	s.logger.Info().Str("account_id", account.ID).Msg("password reset")
	return nil
}

// RequestVerification mails an email verification token to the account.
func (s *AuthService) RequestVerification(ctx context.Context, accountID string) error {
	account, err := s.repo.FindByID(ctx, accountID)
	if err != nil {
		return err
	}
	if account.Verified {
		return nil
	}

	raw, hash, err := newAccountToken()
	if err != nil {
		return err
	}
	now := s.clock()
	if err := s.repo.SetVerificationToken(ctx, account.ID, hash, now.Add(verificationTokenTTL), now); err != nil {
		return err
	}

	if err := s.mailer.SendVerification(ctx, account.Email, raw); err != nil {
		return fmt.Errorf("send verification: %w", err)
	}
	return nil
}

func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return domain.ErrTokenUnusable
	}
	account, err := s.repo.ConsumeVerificationToken(ctx, hashAccountToken(token), s.clock())
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return domain.ErrTokenUnusable
		}
		return err
	}
	s.logger.Info().Str("account_id", account.ID).Msg("email verified")
	return nil
}

// ---------------------------------------------------------------------------
// Administration
// ---------------------------------------------------------------------------

func (s *AuthService) ListAccounts(ctx context.Context, page ports.Page) ([]*domain.Account, int64, error) {
	return s.repo.List(ctx, page.Normalize())
}

func (s *AuthService) ChangeRole(ctx context.Context, accountID, role string) (*domain.Account, error) {
	r, err := domain.ParseRole(role)
	if err != nil {
		return nil, err
	}
	account, err := s.repo.SetRole(ctx, accountID, r, s.clock())
	if err != nil {
		return nil, err
	}
	s.logger.Info().
		Str("account_id", account.ID).
		Str("role", string(r)).
		Msg("role changed")
	return account, nil
}

// SetActive toggles an account. Tokens of a deactivated account stop
// verifying on their next use.
func (s *AuthService) SetActive(ctx context.Context, accountID string, active bool) (*domain.Account, error) {
	account, err := s.repo.SetActive(ctx, accountID, active, s.clock())
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("account_id", account.ID).Bool("active", active).Msg("account activation changed")
	return account, nil
}

// EnsureAdmin provisions an active admin account for email. An existing
// account is promoted and reactivated; its password is left untouched.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) (*domain.Account, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, domain.Invalid("admin email is required")
	}

	account, err := s.repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if account.Role == domain.RoleAdmin && account.Active {
			return account, nil
		}
		account, err = s.repo.GrantAdmin(ctx, account.ID, s.clock())
		if err != nil {
			return nil, err
		}
		s.logger.Info().Str("account_id", account.ID).Msg("existing account promoted to admin")
		return account, nil
	case !errors.Is(err, domain.ErrAccountNotFound):
		return nil, err
	}

	hash, err := s.HashPassword(password)
	if err != nil {
		return nil, err
	}
	now := s.clock()
	account = &domain.Account{
		Email:        email,
		PasswordHash: hash,
		FirstName:    "Admin",
		Role:         domain.RoleAdmin,
		Active:       true,
		Verified:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, account); err != nil {
		return nil, err
	}
	s.logger.Info().Str("account_id", account.ID).Msg("admin account provisioned")
	return account, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (s *AuthService) signIn(account *domain.Account) (*ports.AuthResult, error) {
	token, expiresAt, err := s.IssueToken(account.Identity(), s.tokenTTL)
	if err != nil {
		return nil, err
	}
	return &ports.AuthResult{Token: token, ExpiresAt: expiresAt, Account: account}, nil
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	return &t
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// newAccountToken returns a random token for the user and the hash to store.
func newAccountToken() (raw, hash string, err error) {
	b := make([]byte, accountTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", "", fmt.Errorf("generate token: %w", err)
	}
	raw = hex.EncodeToString(b)
	return raw, hashAccountToken(raw), nil
}

func hashAccountToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

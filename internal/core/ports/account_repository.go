package ports

import (
	"context"
	"time"

	"github.com/storefront/commerce-api/internal/core/domain"
)

// AccountRepository defines persistence operations for accounts.
type AccountRepository interface {
	// Create stores a new account and assigns its ID. A taken email yields
	// domain.ErrAccountExists.
	Create(ctx context.Context, account *domain.Account) error
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	List(ctx context.Context, page Page) ([]*domain.Account, int64, error)

	// Every mutation below writes only the fields it names, in one step.
	// A missing account yields domain.ErrAccountNotFound.

	// RecordLogin stamps the login time only while the account is active and
	// still holds passwordHash; otherwise it reports domain.ErrAccountNotFound.
	RecordLogin(ctx context.Context, id, passwordHash string, at time.Time) (*domain.Account, error)
	SetResetToken(ctx context.Context, id, tokenHash string, expiresAt, at time.Time) error
	SetVerificationToken(ctx context.Context, id, tokenHash string, expiresAt, at time.Time) error
	UpdateProfile(ctx context.Context, id string, in ProfileUpdate, at time.Time) (*domain.Account, error)
	// ReplacePasswordHash succeeds only while the stored hash equals oldHash.
	ReplacePasswordHash(ctx context.Context, id, oldHash, newHash string, at time.Time) error
	SetRole(ctx context.Context, id string, role domain.Role, at time.Time) (*domain.Account, error)
	SetActive(ctx context.Context, id string, active bool, at time.Time) (*domain.Account, error)
	// GrantAdmin makes the account an active admin.
	GrantAdmin(ctx context.Context, id string, at time.Time) (*domain.Account, error)

	// ConsumeResetToken atomically swaps the password of the account holding
	// an unexpired reset token and clears the token.
	ConsumeResetToken(ctx context.Context, tokenHash string, now time.Time, passwordHash string) (*domain.Account, error)
	// ConsumeVerificationToken atomically marks the holder of an unexpired
	// verification token as verified and clears the token.
	ConsumeVerificationToken(ctx context.Context, tokenHash string, now time.Time) (*domain.Account, error)
}

// Page selects a window of a listing. Zero values mean the first page with
// the default size.
type Page struct {
	Page  int // 1-based
	Limit int
}

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// Normalize clamps page and limit into their accepted ranges.
func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}

// Skip is the number of rows preceding the page.
func (p Page) Skip() int {
	p = p.Normalize()
	return (p.Page - 1) * p.Limit
}

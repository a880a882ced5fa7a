package ports

import (
	"context"
	"time"

	"github.com/storefront/commerce-api/internal/core/domain"
)

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

// ProfileUpdate carries the self-service fields; nil leaves a field untouched.
type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	Phone     *string
}

// AuthResult is returned by operations that sign the caller in.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	Account   *domain.Account
}

// TokenVerifier resolves a bearer token into the identity it was issued to.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (domain.Identity, error)
}

type AuthService interface {
	TokenVerifier

	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Me(ctx context.Context, accountID string) (*domain.Account, error)
	UpdateProfile(ctx context.Context, accountID string, in ProfileUpdate) (*domain.Account, error)
	ChangePassword(ctx context.Context, accountID, current, next string) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error
	RequestVerification(ctx context.Context, accountID string) error
	VerifyEmail(ctx context.Context, token string) error

	ListAccounts(ctx context.Context, page Page) ([]*domain.Account, int64, error)
	ChangeRole(ctx context.Context, accountID, role string) (*domain.Account, error)
	SetActive(ctx context.Context, accountID string, active bool) (*domain.Account, error)
}

package ports

import (
	"context"

	"github.com/storefront/commerce-api/internal/core/domain"
)

// Counter hands out monotonically increasing values per key.
type Counter interface {
	Increment(ctx context.Context, key string) (int64, error)
}

// Transactor runs fn so that every repository write made with the context it
// receives is committed together or not at all.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// CatalogReader resolves product references against the live catalog.
// Unknown and inactive products are absent from the result.
type CatalogReader interface {
	FindProducts(ctx context.Context, ids []string) (map[string]domain.ProductSnapshot, error)
}

// Mailer delivers account tokens to their owner.
type Mailer interface {
	SendPasswordReset(ctx context.Context, email, token string) error
	SendVerification(ctx context.Context, email, token string) error
}

// IdempotencyStore remembers which order a client-supplied key produced.
// Keys live in a per-account scope; equal keys in two scopes never collide.
type IdempotencyStore interface {
	// Reserve claims key within scope. When the key is already taken it
	// returns the order ID recorded for it, or "" while the first request is
	// in flight.
	Reserve(ctx context.Context, scope, key string) (orderID string, reserved bool, err error)
	Complete(ctx context.Context, scope, key, orderID string) error
	Release(ctx context.Context, scope, key string) error
}

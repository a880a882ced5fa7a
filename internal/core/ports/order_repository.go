package ports

import (
	"context"
	"time"

	"github.com/storefront/commerce-api/internal/core/domain"
)

// ListOrdersFilter carries the query parameters for listing orders.
type ListOrdersFilter struct {
	PlacedBy string // empty = every order
	Status   string
	Page
}

// OrderRepository defines persistence operations for orders.
type OrderRepository interface {
	// Create stores the order and assigns its ID.
	Create(ctx context.Context, o *domain.Order) error
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context, filter ListOrdersFilter) ([]*domain.Order, int64, error)
	LinkInvoice(ctx context.Context, orderID, invoiceID string, at time.Time) error
	// UpdateStatus moves the order from one status to another only if it is
	// still in from; otherwise domain.ErrStaleStatus.
	UpdateStatus(ctx context.Context, id string, from, to domain.OrderStatus, at time.Time) error
}

package ports

import (
	"context"

	"github.com/storefront/commerce-api/internal/core/domain"
)

type OrderLineInput struct {
	ProductID string
	Quantity  int
}

// PlaceOrderInput carries a checkout request.
type PlaceOrderInput struct {
	Customer       domain.Customer
	Items          []OrderLineInput
	PaymentMethod  string
	ShippingMethod string
	Notes          string
	PlacedBy       string
	IdempotencyKey string
}

// PlacedOrder is the outcome of a checkout.
type PlacedOrder struct {
	Order   *domain.Order
	Invoice *domain.Invoice
	// Replayed is set when an earlier request with the same idempotency key
	// already produced this order.
	Replayed bool
}

// OrderTransition is the outcome of an order status change.
type OrderTransition struct {
	Order   *domain.Order
	From    domain.OrderStatus
	Cascade InvoiceCascade
}

// InvoiceCascade describes what an order cancellation did to the invoice.
type InvoiceCascade string

const (
	CascadeNone             InvoiceCascade = ""
	CascadeInvoiceCancelled InvoiceCascade = "invoice_cancelled"
	CascadeInvoicePaidKept  InvoiceCascade = "invoice_paid_kept"
)

type OrderService interface {
	PlaceOrder(ctx context.Context, in PlaceOrderInput) (*PlacedOrder, error)
	GetOrder(ctx context.Context, actor domain.Identity, id string) (*domain.Order, error)
	ListOrders(ctx context.Context, actor domain.Identity, filter ListOrdersFilter) ([]*domain.Order, int64, error)
	TransitionOrder(ctx context.Context, id, status string) (*OrderTransition, error)
}

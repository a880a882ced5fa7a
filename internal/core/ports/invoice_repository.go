package ports

import (
	"context"
	"time"

	"github.com/storefront/commerce-api/internal/core/domain"
)

type ListInvoicesFilter struct {
	Status  string
	OrderID string
	Page
}

// InvoiceRepository defines persistence operations for invoices.
type InvoiceRepository interface {
	// Create stores the invoice and assigns its ID. A reused number yields
	// domain.ErrDuplicateNumber.
	Create(ctx context.Context, inv *domain.Invoice) error
	FindByID(ctx context.Context, id string) (*domain.Invoice, error)
	FindByOrderID(ctx context.Context, orderID string) (*domain.Invoice, error)
	List(ctx context.Context, filter ListInvoicesFilter) ([]*domain.Invoice, int64, error)
	// Update rewrites the mutable content, provided the stored status still
	// equals inv.Status.
	Update(ctx context.Context, inv *domain.Invoice) error
	UpdateStatus(ctx context.Context, id string, from, to domain.InvoiceStatus, paidAt *time.Time, at time.Time) error
	Delete(ctx context.Context, id string, expected domain.InvoiceStatus) error
}

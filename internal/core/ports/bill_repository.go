package ports

import (
	"context"
	"time"

	"github.com/storefront/commerce-api/internal/core/domain"
)

type ListBillsFilter struct {
	CreatedBy string // empty = every bill
	OrderID   string
	Status    string
	Page
}

// BillRepository defines persistence operations for bills.
type BillRepository interface {
	Create(ctx context.Context, b *domain.Bill) error
	FindByID(ctx context.Context, id string) (*domain.Bill, error)
	List(ctx context.Context, filter ListBillsFilter) ([]*domain.Bill, int64, error)
	// Update rewrites the mutable content, provided the stored status still
	// equals b.Status.
	Update(ctx context.Context, b *domain.Bill) error
	// UpdateStatus moves the bill from one status to another only if it is
	// still in from. A non-nil payment replaces the stored payment details.
	UpdateStatus(ctx context.Context, id string, from, to domain.BillStatus, payment *domain.PaymentDetails, at time.Time) error
	Delete(ctx context.Context, id string, expected domain.BillStatus) error
}

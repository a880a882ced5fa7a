package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/storefront/commerce-api/internal/core/domain"
)

type InvoiceItemInput struct {
	ProductID string
	Title     string
	Quantity  int
	Price     decimal.Decimal
}

// CreateInvoiceInput describes a manually issued invoice. A nil Tax is
// derived from the subtotal.
type CreateInvoiceInput struct {
	Customer      domain.InvoiceCustomer
	Items         []InvoiceItemInput
	Tax           *decimal.Decimal
	PaymentMethod string
	DueDate       *time.Time
	Notes         string
}

// UpdateInvoiceInput lists the editable fields; nil leaves a field untouched.
type UpdateInvoiceInput struct {
	Customer      *domain.InvoiceCustomer
	Items         []InvoiceItemInput
	Tax           *decimal.Decimal
	PaymentMethod *string
	DueDate       *time.Time
	Notes         *string
}

type InvoiceService interface {
	CreateInvoice(ctx context.Context, in CreateInvoiceInput) (*domain.Invoice, error)
	GetInvoice(ctx context.Context, id string) (*domain.Invoice, error)
	GetInvoiceByOrder(ctx context.Context, orderID string) (*domain.Invoice, error)
	ListInvoices(ctx context.Context, filter ListInvoicesFilter) ([]*domain.Invoice, int64, error)
	UpdateInvoice(ctx context.Context, id string, in UpdateInvoiceInput) (*domain.Invoice, error)
	DeleteInvoice(ctx context.Context, id string) error
	TransitionInvoice(ctx context.Context, id, status string) (*domain.Invoice, error)
}

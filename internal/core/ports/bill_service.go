package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/storefront/commerce-api/internal/core/domain"
)

type BillItemInput struct {
	ProductID string
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
}

// CreateBillInput describes a new bill. When OrderID is set and Items is
// empty the lines are copied from the order.
type CreateBillInput struct {
	OrderID         string
	Buyer           string
	Items           []BillItemInput
	PaymentMethod   string
	ShippingAddress domain.ShippingAddress
	Notes           string
}

// UpdateBillInput lists the editable fields; nil leaves a field untouched.
type UpdateBillInput struct {
	Buyer           *string
	Items           []BillItemInput
	PaymentMethod   *string
	ShippingAddress *domain.ShippingAddress
	Notes           *string
}

// BillTransition is the outcome of a bill status change.
type BillTransition struct {
	Bill *domain.Bill
	From domain.BillStatus
	// OrderAdvanced is set when paying the bill moved its order to processing.
	OrderAdvanced bool
}

type BillService interface {
	CreateBill(ctx context.Context, actor domain.Identity, in CreateBillInput) (*domain.Bill, error)
	GetBill(ctx context.Context, actor domain.Identity, id string) (*domain.Bill, error)
	ListBills(ctx context.Context, actor domain.Identity, filter ListBillsFilter) ([]*domain.Bill, int64, error)
	UpdateBill(ctx context.Context, actor domain.Identity, id string, in UpdateBillInput) (*domain.Bill, error)
	DeleteBill(ctx context.Context, actor domain.Identity, id string) error
	TransitionBill(ctx context.Context, id, status, transactionID string) (*BillTransition, error)
}

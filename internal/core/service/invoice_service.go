package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/storefront/commerce-api/internal/core/domain"
	"github.com/storefront/commerce-api/internal/core/ports"
)

type InvoiceServiceDeps struct {
	Invoices  ports.InvoiceRepository
	Numbering *NumberingService
	Lifecycle *Lifecycle
	Clock     func() time.Time
	Logger    zerolog.Logger
}

// InvoiceService manages invoices outside of checkout: manual issuing,
// edits while still open, and status changes.
type InvoiceService struct {
	invoices  ports.InvoiceRepository
	numbering *NumberingService
	lifecycle *Lifecycle
	clock     func() time.Time
	logger    zerolog.Logger
}

func NewInvoiceService(deps InvoiceServiceDeps) *InvoiceService {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &InvoiceService{
		invoices:  deps.Invoices,
		numbering: deps.Numbering,
		lifecycle: deps.Lifecycle,
		clock:     func() time.Time { return clock().UTC() },
		logger:    deps.Logger,
	}
}

// CreateInvoice issues a standalone draft invoice with a fresh number.
func (s *InvoiceService) CreateInvoice(ctx context.Context, in ports.CreateInvoiceInput) (*domain.Invoice, error) {
	items, err := invoiceItems(in.Items)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Customer.Name) == "" {
		return nil, domain.Invalid("customer name is required")
	}
	payment, err := domain.ParseInvoicePaymentMethod(in.PaymentMethod)
	if err != nil {
		return nil, err
	}
	if in.Tax != nil && in.Tax.IsNegative() {
		return nil, domain.Invalid("tax must not be negative")
	}

	now := s.clock()
	number, err := s.numbering.Next(ctx, InvoicePrefix, now)
	if err != nil {
		return nil, err
	}

	inv := &domain.Invoice{
		Number:        number,
		Customer:      in.Customer,
		Items:         items,
		Status:        domain.InvoiceDraft,
		PaymentMethod: payment,
		DueDate:       in.DueDate,
		Notes:         strings.TrimSpace(in.Notes),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	inv.Recalculate()
	if in.Tax != nil {
		inv.Tax = *in.Tax
	} else {
		inv.Tax = domain.TaxOn(inv.Subtotal)
	}
	inv.Recalculate()

	if err := s.invoices.Create(ctx, inv); err != nil {
		return nil, err
	}
	s.logger.Info().Str("invoice_id", inv.ID).Str("number", inv.Number).Msg("invoice issued")
	return inv, nil
}

func (s *InvoiceService) GetInvoice(ctx context.Context, id string) (*domain.Invoice, error) {
	return s.invoices.FindByID(ctx, id)
}

func (s *InvoiceService) GetInvoiceByOrder(ctx context.Context, orderID string) (*domain.Invoice, error) {
	return s.invoices.FindByOrderID(ctx, orderID)
}

func (s *InvoiceService) ListInvoices(ctx context.Context, filter ports.ListInvoicesFilter) ([]*domain.Invoice, int64, error) {
	if filter.Status != "" {
		if _, err := domain.ParseInvoiceStatus(filter.Status); err != nil {
			return nil, 0, err
		}
	}
	filter.Page = filter.Page.Normalize()
	return s.invoices.List(ctx, filter)
}

// UpdateInvoice edits an invoice that is neither paid nor cancelled. Totals
// are re-derived; when items change without an explicit tax, tax follows
// the new subtotal. Amounts of an order's invoice mirror the order and
// cannot be edited.
func (s *InvoiceService) UpdateInvoice(ctx context.Context, id string, in ports.UpdateInvoiceInput) (*domain.Invoice, error) {
	inv, err := s.invoices.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.Locked() {
		return nil, domain.ErrInvoiceLocked
	}
	if inv.OrderID != "" && (in.Items != nil || in.Tax != nil) {
		return nil, domain.ErrInvoiceLinked
	}

	if in.Customer != nil {
		if strings.TrimSpace(in.Customer.Name) == "" {
			return nil, domain.Invalid("customer name is required")
		}
		inv.Customer = *in.Customer
	}
	if in.Items != nil {
		items, err := invoiceItems(in.Items)
		if err != nil {
			return nil, err
		}
		inv.Items = items
	}
	if in.PaymentMethod != nil {
		payment, err := domain.ParseInvoicePaymentMethod(*in.PaymentMethod)
		if err != nil {
			return nil, err
		}
		inv.PaymentMethod = payment
	}
	if in.DueDate != nil {
		inv.DueDate = in.DueDate
	}
	if in.Notes != nil {
		inv.Notes = strings.TrimSpace(*in.Notes)
	}

	inv.Recalculate()
	switch {
	case in.Tax != nil:
		if in.Tax.IsNegative() {
			return nil, domain.Invalid("tax must not be negative")
		}
		inv.Tax = *in.Tax
	case in.Items != nil:
		inv.Tax = domain.TaxOn(inv.Subtotal)
	}
	inv.Recalculate()
	inv.UpdatedAt = s.clock()

	if err := s.invoices.Update(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// DeleteInvoice removes a standalone invoice that was never paid. Invoices
// created by checkout stay with their order.
func (s *InvoiceService) DeleteInvoice(ctx context.Context, id string) error {
	inv, err := s.invoices.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if inv.Status == domain.InvoicePaid {
		return domain.ErrInvoiceLocked
	}
	if inv.OrderID != "" {
		return domain.ErrInvoiceLinked
	}
	if err := s.invoices.Delete(ctx, inv.ID, inv.Status); err != nil {
		return err
	}
	s.logger.Info().Str("invoice_id", inv.ID).Str("number", inv.Number).Msg("invoice deleted")
	return nil
}

func (s *InvoiceService) TransitionInvoice(ctx context.Context, id, status string) (*domain.Invoice, error) {
	target, err := domain.ParseInvoiceStatus(status)
	if err != nil {
		return nil, err
	}
	return s.lifecycle.TransitionInvoice(ctx, id, target)
}

func invoiceItems(in []ports.InvoiceItemInput) ([]domain.InvoiceItem, error) {
	if len(in) == 0 {
		return nil, domain.Invalid("at least one item is required")
	}
	for i, it := range in {
		if strings.TrimSpace(it.Title) == "" {
			return nil, domain.Invalid("items[%d]: title is required", i)
		}
		if it.Quantity < 1 {
			return nil, domain.Invalid("items[%d]: quantity must be at least 1", i)
		}
		if it.Price.IsNegative() {
			return nil, domain.Invalid("items[%d]: price must not be negative", i)
		}
	}
	return lo.Map(in, func(it ports.InvoiceItemInput, _ int) domain.InvoiceItem {
		return domain.InvoiceItem{
			ProductID: it.ProductID,
			Title:     strings.TrimSpace(it.Title),
			Quantity:  it.Quantity,
			Price:     it.Price,
		}
	}), nil
}

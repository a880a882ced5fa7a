package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/storefront/commerce-api/internal/core/domain"
	"github.com/storefront/commerce-api/internal/core/ports"
)

// LifecycleDeps bundles the collaborators of Lifecycle.
type LifecycleDeps struct {
	Orders   ports.OrderRepository
	Invoices ports.InvoiceRepository
	Bills    ports.BillRepository
	Tx       ports.Transactor
	Clock    func() time.Time
	Logger   zerolog.Logger
}

// Lifecycle is the only writer of order, invoice and bill status fields.
// Every transition and its cascade run in one transaction; each status write
// is conditional on the status that was read, so a concurrent change fails
// with domain.ErrStaleStatus instead of being overwritten.
type Lifecycle struct {
	orders   ports.OrderRepository
	invoices ports.InvoiceRepository
	bills    ports.BillRepository
	tx       ports.Transactor
	clock    func() time.Time
	logger   zerolog.Logger
}

func NewLifecycle(deps LifecycleDeps) *Lifecycle {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Lifecycle{
		orders:   deps.Orders,
		invoices: deps.Invoices,
		bills:    deps.Bills,
		tx:       deps.Tx,
		clock:    func() time.Time { return clock().UTC() },
		logger:   deps.Logger,
	}
}

// TransitionOrder moves an order to target. Cancelling cascades to the
// linked invoice unless that invoice is already paid.
func (l *Lifecycle) TransitionOrder(ctx context.Context, id string, target domain.OrderStatus) (*ports.OrderTransition, error) {
	var result *ports.OrderTransition
	err := l.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		order, err := l.orders.FindByID(ctx, id)
		if err != nil {
			return err
		}
		from := order.Status
		if !from.CanTransitionTo(target) {
			return domain.TransitionError("order", from, target)
		}

		now := l.clock()
		if err := l.orders.UpdateStatus(ctx, order.ID, from, target, now); err != nil {
			return err
		}
		order.Status = target
		order.UpdatedAt = now
		result = &ports.OrderTransition{Order: order, From: from}

		if target == domain.OrderCancelled {
			cascade, err := l.cancelInvoiceOf(ctx, order, now)
			if err != nil {
				return err
			}
			result.Cascade = cascade
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.logger.Info().
		Str("order_id", id).
		Str("from", string(result.From)).
		Str("to", string(target)).
		Str("cascade", string(result.Cascade)).
		Msg("order status changed")
	return result, nil
}

func (l *Lifecycle) cancelInvoiceOf(ctx context.Context, order *domain.Order, now time.Time) (ports.InvoiceCascade, error) {
	inv, err := l.invoices.FindByOrderID(ctx, order.ID)
	if err != nil {
		if errors.Is(err, domain.ErrInvoiceNotFound) {
			l.logger.Warn().Str("order_id", order.ID).Msg("cancelled order has no invoice")
			return ports.CascadeNone, nil
		}
		return ports.CascadeNone, err
	}

	switch inv.Status {
	case domain.InvoicePaid:
		l.logger.Warn().
			Str("order_id", order.ID).
			Str("invoice_id", inv.ID).
			Msg("order cancelled after its invoice was paid; invoice left for review")
		return ports.CascadeInvoicePaidKept, nil
	case domain.InvoiceCancelled:
		return ports.CascadeNone, nil
	}

	if err := l.invoices.UpdateStatus(ctx, inv.ID, inv.Status, domain.InvoiceCancelled, nil, now); err != nil {
		return ports.CascadeNone, err
	}
	return ports.CascadeInvoiceCancelled, nil
}

// TransitionInvoice moves an invoice to target, stamping the paid date when
// it becomes paid.
func (l *Lifecycle) TransitionInvoice(ctx context.Context, id string, target domain.InvoiceStatus) (*domain.Invoice, error) {
	var (
		inv  *domain.Invoice
		from domain.InvoiceStatus
	)
	err := l.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		inv, err = l.invoices.FindByID(ctx, id)
		if err != nil {
			return err
		}
		from = inv.Status
		if !from.CanTransitionTo(target) {
			return domain.TransitionError("invoice", from, target)
		}

		now := l.clock()
		var paidAt *time.Time
		if target == domain.InvoicePaid {
			paidAt = &now
		}
		if err := l.invoices.UpdateStatus(ctx, inv.ID, from, target, paidAt, now); err != nil {
			return err
		}
		inv.Status = target
		inv.UpdatedAt = now
		if paidAt != nil {
			inv.PaidAt = paidAt
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.logger.Info().
		Str("invoice_id", inv.ID).
		Str("number", inv.Number).
		Str("from", string(from)).
		Str("to", string(target)).
		Msg("invoice status changed")
	return inv, nil
}

// TransitionBill moves a bill to target. Paying a bill tied to a pending
// order moves that order to processing.
func (l *Lifecycle) TransitionBill(ctx context.Context, id string, target domain.BillStatus, transactionID string) (*ports.BillTransition, error) {
	var result *ports.BillTransition
	err := l.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		bill, err := l.bills.FindByID(ctx, id)
		if err != nil {
			return err
		}
		from := bill.Status
		if !from.CanTransitionTo(target) {
			return domain.TransitionError("bill", from, target)
		}

		now := l.clock()
		var payment *domain.PaymentDetails
		if target == domain.BillPaid {
			payment = &domain.PaymentDetails{TransactionID: bill.PaymentDetails.TransactionID, PaidAt: &now}
			if transactionID != "" {
				payment.TransactionID = transactionID
			}
		}
		if err := l.bills.UpdateStatus(ctx, bill.ID, from, target, payment, now); err != nil {
			return err
		}
		bill.Status = target
		bill.UpdatedAt = now
		if payment != nil {
			bill.PaymentDetails = *payment
		}
		result = &ports.BillTransition{Bill: bill, From: from}

		if target == domain.BillPaid && bill.OrderID != "" {
			advanced, err := l.advanceOrderOf(ctx, bill, now)
			if err != nil {
				return err
			}
			result.OrderAdvanced = advanced
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.logger.Info().
		Str("bill_id", id).
		Str("from", string(result.From)).
		Str("to", string(target)).
		Bool("order_advanced", result.OrderAdvanced).
		Msg("bill status changed")
	return result, nil
}

func (l *Lifecycle) advanceOrderOf(ctx context.Context, bill *domain.Bill, now time.Time) (bool, error) {
	order, err := l.orders.FindByID(ctx, bill.OrderID)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			l.logger.Warn().Str("bill_id", bill.ID).Str("order_id", bill.OrderID).Msg("paid bill references a missing order")
			return false, nil
		}
		return false, err
	}
	if order.Status != domain.OrderPending {
		l.logger.Info().
			Str("bill_id", bill.ID).
			Str("order_id", order.ID).
			Str("order_status", string(order.Status)).
			Msg("order already past pending; bill payment does not move it")
		return false, nil
	}
	if err := l.orders.UpdateStatus(ctx, order.ID, domain.OrderPending, domain.OrderProcessing, now); err != nil {
		return false, err
	}
	return true, nil
}

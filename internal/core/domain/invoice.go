package domain

import (
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

type InvoiceStatus string

const (
	InvoiceDraft     InvoiceStatus = "draft"
	InvoicePending   InvoiceStatus = "pending"
	InvoicePaid      InvoiceStatus = "paid"
	InvoiceCancelled InvoiceStatus = "cancelled"
)

var invoiceTransitions = transitions[InvoiceStatus]{
	InvoiceDraft:   {InvoicePending, InvoiceCancelled},
	InvoicePending: {InvoicePaid, InvoiceCancelled},
}

func ParseInvoiceStatus(s string) (InvoiceStatus, error) {
	switch st := InvoiceStatus(strings.ToLower(s)); st {
	case InvoiceDraft, InvoicePending, InvoicePaid, InvoiceCancelled:
		return st, nil
	}
	return "", Invalid("unknown invoice status %q", s)
}

func (s InvoiceStatus) CanTransitionTo(next InvoiceStatus) bool {
	return invoiceTransitions.allows(s, next)
}

// IsTerminal also marks the statuses in which the invoice content is frozen.
func (s InvoiceStatus) IsTerminal() bool {
	return invoiceTransitions.terminal(s)
}

type InvoicePaymentMethod string

const (
	InvoicePaymentCash         InvoicePaymentMethod = "cash"
	InvoicePaymentCreditCard   InvoicePaymentMethod = "credit_card"
	InvoicePaymentBankTransfer InvoicePaymentMethod = "bank_transfer"
	InvoicePaymentOther        InvoicePaymentMethod = "other"
)

func ParseInvoicePaymentMethod(s string) (InvoicePaymentMethod, error) {
	switch m := InvoicePaymentMethod(s); m {
	case InvoicePaymentCash, InvoicePaymentCreditCard, InvoicePaymentBankTransfer, InvoicePaymentOther:
		return m, nil
	case "":
		return InvoicePaymentOther, nil
	}
	return "", Invalid("unknown invoice payment method %q", s)
}

// invoicePaymentFor maps the checkout payment method onto the invoice vocabulary.
func invoicePaymentFor(m PaymentMethod) InvoicePaymentMethod {
	switch m {
	case PaymentCreditCard:
		return InvoicePaymentCreditCard
	case PaymentBankTransfer:
		return InvoicePaymentBankTransfer
	case PaymentCashOnDelivery:
		return InvoicePaymentCash
	}
	return InvoicePaymentOther
}

type InvoiceCustomer struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

type InvoiceItem struct {
	ProductID string          `json:"product_id,omitempty"`
	Title     string          `json:"title"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Total     decimal.Decimal `json:"total"`
}

// Invoice is the financial snapshot of an order, or a manually issued one.
type Invoice struct {
	ID            string               `json:"id"`
	Number        string               `json:"number"`
	OrderID       string               `json:"order_id,omitempty"`
	Customer      InvoiceCustomer      `json:"customer"`
	Items         []InvoiceItem        `json:"items"`
	Subtotal      decimal.Decimal      `json:"subtotal"`
	Tax           decimal.Decimal      `json:"tax"`
	Total         decimal.Decimal      `json:"total"`
	Status        InvoiceStatus        `json:"status"`
	PaymentMethod InvoicePaymentMethod `json:"payment_method"`
	DueDate       *time.Time           `json:"due_date,omitempty"`
	PaidAt        *time.Time           `json:"paid_at,omitempty"`
	Notes         string               `json:"notes,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

// Recalculate recomputes each line total, the subtotal and the total.
// Tax is kept as set.
func (inv *Invoice) Recalculate() {
	for i := range inv.Items {
		it := &inv.Items[i]
		it.Total = it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
	}
	inv.Subtotal = sumBy(inv.Items, func(it InvoiceItem) decimal.Decimal { return it.Total })
	inv.Total = inv.Subtotal.Add(inv.Tax)
}

// Locked reports whether items and totals may no longer change.
func (inv *Invoice) Locked() bool {
	return inv.Status.IsTerminal()
}

// NewInvoiceForOrder mirrors a freshly placed order. A non-zero shipping fee
// becomes its own line so the invoice total equals the order grand total.
func NewInvoiceForOrder(o *Order, number string, now time.Time, dueIn time.Duration) *Invoice {
	items := lo.Map(o.Items, func(it OrderItem, _ int) InvoiceItem {
		return InvoiceItem{ProductID: it.ProductID, Title: it.Title, Quantity: it.Quantity, Price: it.Price}
	})
	if o.Shipping.IsPositive() {
		items = append(items, InvoiceItem{
			Title:    "Shipping (" + string(o.ShippingMethod) + ")",
			Quantity: 1,
			Price:    o.Shipping,
		})
	}

	inv := &Invoice{
		Number:  number,
		OrderID: o.ID,
		Customer: InvoiceCustomer{
			Name:    o.Customer.FullName(),
			Email:   o.Customer.Email,
			Phone:   o.Customer.Phone,
			Address: o.Customer.FormattedAddress(),
		},
		Items:         items,
		Tax:           o.Tax,
		Status:        InvoicePending,
		PaymentMethod: invoicePaymentFor(o.PaymentMethod),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if dueIn > 0 {
		due := now.Add(dueIn)
		inv.DueDate = &due
	}
	inv.Recalculate()
	return inv
}

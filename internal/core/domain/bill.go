package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type BillStatus string

const (
	BillPending   BillStatus = "pending"
	BillPaid      BillStatus = "paid"
	BillShipped   BillStatus = "shipped"
	BillDelivered BillStatus = "delivered"
	BillCancelled BillStatus = "cancelled"
)

var billTransitions = transitions[BillStatus]{
	BillPending: {BillPaid, BillCancelled},
	BillPaid:    {BillShipped, BillCancelled},
	BillShipped: {BillDelivered, BillCancelled},
}

func ParseBillStatus(s string) (BillStatus, error) {
	switch st := BillStatus(strings.ToLower(s)); st {
	case BillPending, BillPaid, BillShipped, BillDelivered, BillCancelled:
		return st, nil
	}
	return "", Invalid("unknown bill status %q", s)
}

func (s BillStatus) CanTransitionTo(next BillStatus) bool {
	return billTransitions.allows(s, next)
}

func (s BillStatus) IsTerminal() bool {
	return billTransitions.terminal(s)
}

type BillPaymentMethod string

const (
	BillPaymentCash         BillPaymentMethod = "cash"
	BillPaymentCreditCard   BillPaymentMethod = "credit_card"
	BillPaymentBankTransfer BillPaymentMethod = "bank_transfer"
)

func ParseBillPaymentMethod(s string) (BillPaymentMethod, error) {
	switch m := BillPaymentMethod(s); m {
	case BillPaymentCash, BillPaymentCreditCard, BillPaymentBankTransfer:
		return m, nil
	}
	return "", Invalid("unknown bill payment method %q", s)
}

type BillItem struct {
	ProductID string          `json:"product_id,omitempty"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Total     decimal.Decimal `json:"total"`
}

type ShippingAddress struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state,omitempty"`
	ZipCode string `json:"zip_code,omitempty"`
	Country string `json:"country,omitempty"`
}

type PaymentDetails struct {
	TransactionID string     `json:"transaction_id,omitempty"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
}

// Bill is a cashier-issued sales document, standalone or tied to an order.
type Bill struct {
	ID              string            `json:"id"`
	Number          string            `json:"number"`
	OrderID         string            `json:"order_id,omitempty"`
	CreatedBy       string            `json:"created_by"`
	Buyer           string            `json:"buyer"`
	Items           []BillItem        `json:"items"`
	TotalAmount     decimal.Decimal   `json:"total_amount"`
	PaymentMethod   BillPaymentMethod `json:"payment_method"`
	ShippingAddress ShippingAddress   `json:"shipping_address"`
	PaymentDetails  PaymentDetails    `json:"payment_details"`
	Status          BillStatus        `json:"status"`
	Notes           string            `json:"notes,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// Recalculate recomputes each line total and the bill total from quantity
// and unit price.
func (b *Bill) Recalculate() {
	for i := range b.Items {
		it := &b.Items[i]
		it.Total = it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
	}
	b.TotalAmount = sumBy(b.Items, func(it BillItem) decimal.Decimal { return it.Total })
}

// Editable reports whether content changes are still accepted.
func (b *Bill) Editable() bool {
	return b.Status == BillPending
}

// Deletable reports whether the bill may be removed. A bill that was ever
// settled stays on record.
func (b *Bill) Deletable() bool {
	switch b.Status {
	case BillPending:
		return true
	case BillCancelled:
		return b.PaymentDetails.PaidAt == nil
	}
	return false
}

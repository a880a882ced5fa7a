package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus represents the fulfilment state of an order.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

var orderTransitions = transitions[OrderStatus]{
	OrderPending:    {OrderProcessing, OrderCancelled},
	OrderProcessing: {OrderShipped, OrderCancelled},
	OrderShipped:    {OrderDelivered, OrderCancelled},
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	switch st := OrderStatus(strings.ToLower(s)); st {
	case OrderPending, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled:
		return st, nil
	}
	return "", Invalid("unknown order status %q", s)
}

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	return orderTransitions.allows(s, next)
}

func (s OrderStatus) IsTerminal() bool {
	return orderTransitions.terminal(s)
}

// PaymentMethod is how the customer intends to settle an order.
type PaymentMethod string

const (
	PaymentCreditCard     PaymentMethod = "credit_card"
	PaymentCashOnDelivery PaymentMethod = "cash_on_delivery"
	PaymentBankTransfer   PaymentMethod = "bank_transfer"
)

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch m := PaymentMethod(s); m {
	case PaymentCreditCard, PaymentCashOnDelivery, PaymentBankTransfer:
		return m, nil
	}
	return "", Invalid("unknown payment method %q", s)
}

// Customer is the contact and billing block captured at checkout.
type Customer struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	District   string `json:"district,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
	Company    string `json:"company,omitempty"`
	TaxNumber  string `json:"tax_number,omitempty"`
	TaxOffice  string `json:"tax_office,omitempty"`
}

// FullName joins first and last name.
func (c Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// FormattedAddress renders the postal address on a single line.
func (c Customer) FormattedAddress() string {
	parts := make([]string, 0, 5)
	for _, p := range []string{c.Address, c.District, c.City, c.PostalCode, c.Country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// OrderItem is a product line frozen at the catalog price of the moment.
type OrderItem struct {
	ProductID string          `json:"product_id"`
	Title     string          `json:"title"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// LineTotal is quantity times price.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order is a customer purchase placed through checkout.
type Order struct {
	ID             string          `json:"id"`
	Customer       Customer        `json:"customer"`
	Items          []OrderItem     `json:"items"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Tax            decimal.Decimal `json:"tax"`
	Shipping       decimal.Decimal `json:"shipping"`
	GrandTotal     decimal.Decimal `json:"grand_total"`
	PaymentMethod  PaymentMethod   `json:"payment_method"`
	ShippingMethod ShippingMethod  `json:"shipping_method"`
	Status         OrderStatus     `json:"status"`
	InvoiceID      string          `json:"invoice_id,omitempty"`
	PlacedBy       string          `json:"placed_by,omitempty"`
	Notes          string          `json:"notes,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Recalculate derives subtotal, tax, shipping and grand total from the items
// and shipping method.
func (o *Order) Recalculate() {
	o.Subtotal = sumBy(o.Items, OrderItem.LineTotal)
	o.Tax = TaxOn(o.Subtotal)
	o.Shipping = o.ShippingMethod.Fee()
	o.GrandTotal = o.Subtotal.Add(o.Tax).Add(o.Shipping)
}

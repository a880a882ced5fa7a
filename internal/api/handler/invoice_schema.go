package handler

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/storefront/commerce-api/internal/core/domain"
	"github.com/storefront/commerce-api/internal/core/ports"
)

type invoiceCustomerRequest struct {
	Name    string `json:"name"    validate:"required"`
	Email   string `json:"email"   validate:"required,email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type invoiceItemRequest struct {
	ProductID string          `json:"product_id"`
	Title     string          `json:"title"    validate:"required"`
	Quantity  int             `json:"quantity" validate:"required,min=1"`
	Price     decimal.Decimal `json:"price"    validate:"gte=0" swaggertype:"number"`
}

// createInvoiceRequest carries a manual invoice. Totals are always derived;
// tax defaults to the standard rate when omitted.
type createInvoiceRequest struct {
	Customer      invoiceCustomerRequest `json:"customer"       validate:"required"`
	Items         []invoiceItemRequest   `json:"items"          validate:"required,min=1,dive"`
	Tax           *decimal.Decimal       `json:"tax"            swaggertype:"number"`
	PaymentMethod string                 `json:"payment_method" validate:"omitempty,oneof=cash credit_card bank_transfer other"`
	DueDate       *time.Time             `json:"due_date"`
	Notes         string                 `json:"notes"          validate:"max=1000"`
}

// updateInvoiceRequest lists the only fields an open invoice may change.
type updateInvoiceRequest struct {
	Customer      *invoiceCustomerRequest `json:"customer"`
	Items         []invoiceItemRequest    `json:"items"          validate:"omitempty,min=1,dive"`
	Tax           *decimal.Decimal        `json:"tax"            swaggertype:"number"`
	PaymentMethod *string                 `json:"payment_method" validate:"omitempty,oneof=cash credit_card bank_transfer other"`
	DueDate       *time.Time              `json:"due_date"`
	Notes         *string                 `json:"notes"          validate:"omitempty,max=1000"`
}

func toInvoiceItems(in []invoiceItemRequest) []ports.InvoiceItemInput {
	if in == nil {
		return nil
	}
	out := make([]ports.InvoiceItemInput, 0, len(in))
	for _, it := range in {
		out = append(out, ports.InvoiceItemInput{
			ProductID: it.ProductID,
			Title:     it.Title,
			Quantity:  it.Quantity,
			Price:     it.Price,
		})
	}
	return out
}

func toCreateInvoiceInput(req createInvoiceRequest) ports.CreateInvoiceInput {
	return ports.CreateInvoiceInput{
		Customer:      domain.InvoiceCustomer(req.Customer),
		Items:         toInvoiceItems(req.Items),
		Tax:           req.Tax,
		PaymentMethod: req.PaymentMethod,
		DueDate:       req.DueDate,
		Notes:         req.Notes,
	}
}

func toUpdateInvoiceInput(req updateInvoiceRequest) ports.UpdateInvoiceInput {
	in := ports.UpdateInvoiceInput{
		Items:         toInvoiceItems(req.Items),
		Tax:           req.Tax,
		PaymentMethod: req.PaymentMethod,
		DueDate:       req.DueDate,
		Notes:         req.Notes,
	}
	if req.Customer != nil {
		customer := domain.InvoiceCustomer(*req.Customer)
		in.Customer = &customer
	}
	return in
}

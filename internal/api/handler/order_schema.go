package handler

import (
	"github.com/storefront/commerce-api/internal/core/domain"
	"github.com/storefront/commerce-api/internal/core/ports"
)

// --- Request / Response types ---

type customerRequest struct {
	FirstName  string `json:"first_name"  validate:"required"`
	LastName   string `json:"last_name"   validate:"required"`
	Email      string `json:"email"       validate:"required,email"`
	Phone      string `json:"phone"       validate:"required"`
	Address    string `json:"address"     validate:"required"`
	City       string `json:"city"        validate:"required"`
	District   string `json:"district"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Company    string `json:"company"`
	TaxNumber  string `json:"tax_number"`
	TaxOffice  string `json:"tax_office"`
}

type orderItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity"   validate:"required,min=1"`
}

type placeOrderRequest struct {
	Customer       customerRequest    `json:"customer"        validate:"required"`
	Items          []orderItemRequest `json:"items"           validate:"required,min=1,dive"`
	PaymentMethod  string             `json:"payment_method"  validate:"required,oneof=credit_card cash_on_delivery bank_transfer"`
	ShippingMethod string             `json:"shipping_method" validate:"omitempty,oneof=standard express"`
	Notes          string             `json:"notes"           validate:"max=1000"`
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

type placeOrderResponse struct {
	Order    *domain.Order   `json:"order"`
	Invoice  *domain.Invoice `json:"invoice"`
	Replayed bool            `json:"replayed,omitempty"`
}

type orderTransitionResponse struct {
	Order          *domain.Order `json:"order"`
	PreviousStatus string        `json:"previous_status"`
	Cascade        string        `json:"cascade,omitempty"`
}

// --- Request → Service input ---

func toPlaceOrderInput(req placeOrderRequest, placedBy, idempotencyKey string) ports.PlaceOrderInput {
	items := make([]ports.OrderLineInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, ports.OrderLineInput{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return ports.PlaceOrderInput{
		Customer:       domain.Customer(req.Customer),
		Items:          items,
		PaymentMethod:  req.PaymentMethod,
		ShippingMethod: req.ShippingMethod,
		Notes:          req.Notes,
		PlacedBy:       placedBy,
		IdempotencyKey: idempotencyKey,
	}
}

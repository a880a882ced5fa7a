package handler

import (
	"github.com/shopspring/decimal"

	"github.com/storefront/commerce-api/internal/core/domain"
	"github.com/storefront/commerce-api/internal/core/ports"
)

type billItemRequest struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"       validate:"required"`
	Quantity  int             `json:"quantity"   validate:"required,min=1"`
	UnitPrice decimal.Decimal `json:"unit_price" validate:"gte=0" swaggertype:"number"`
}

type shippingAddressRequest struct {
	Street  string `json:"street"   validate:"required"`
	City    string `json:"city"     validate:"required"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`
	Country string `json:"country"`
}

// createBillRequest carries a new bill. Items may be omitted when order_id
// is set; the order lines are copied then. Client totals are never read.
type createBillRequest struct {
	OrderID         string                 `json:"order_id"`
	Buyer           string                 `json:"buyer"            validate:"required"`
	Items           []billItemRequest      `json:"items"            validate:"omitempty,dive"`
	PaymentMethod   string                 `json:"payment_method"   validate:"required,oneof=cash credit_card bank_transfer"`
	ShippingAddress shippingAddressRequest `json:"shipping_address" validate:"required"`
	Notes           string                 `json:"notes"            validate:"max=1000"`
}

// updateBillRequest lists the only fields a pending bill may change.
type updateBillRequest struct {
	Buyer           *string                 `json:"buyer"            validate:"omitempty,min=1"`
	Items           []billItemRequest       `json:"items"            validate:"omitempty,min=1,dive"`
	PaymentMethod   *string                 `json:"payment_method"   validate:"omitempty,oneof=cash credit_card bank_transfer"`
	ShippingAddress *shippingAddressRequest `json:"shipping_address"`
	Notes           *string                 `json:"notes"            validate:"omitempty,max=1000"`
}

type billStatusRequest struct {
	Status        string `json:"status"         validate:"required"`
	TransactionID string `json:"transaction_id"`
}

type billTransitionResponse struct {
	Bill           *domain.Bill `json:"bill"`
	PreviousStatus string       `json:"previous_status"`
	OrderAdvanced  bool         `json:"order_advanced"`
}

func toBillItems(in []billItemRequest) []ports.BillItemInput {
	if in == nil {
		return nil
	}
	out := make([]ports.BillItemInput, 0, len(in))
	for _, it := range in {
		out = append(out, ports.BillItemInput{
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}
	return out
}

func toCreateBillInput(req createBillRequest) ports.CreateBillInput {
	return ports.CreateBillInput{
		OrderID:         req.OrderID,
		Buyer:           req.Buyer,
		Items:           toBillItems(req.Items),
		PaymentMethod:   req.PaymentMethod,
		ShippingAddress: domain.ShippingAddress(req.ShippingAddress),
		Notes:           req.Notes,
	}
}

func toUpdateBillInput(req updateBillRequest) ports.UpdateBillInput {
	in := ports.UpdateBillInput{
		Buyer:         req.Buyer,
		Items:         toBillItems(req.Items),
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
	}
	if req.ShippingAddress != nil {
		addr := domain.ShippingAddress(*req.ShippingAddress)
		in.ShippingAddress = &addr
	}
	return in
}

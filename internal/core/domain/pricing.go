package domain

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// TaxRate is the flat VAT applied to order subtotals.
var TaxRate = decimal.RequireFromString("0.08")

// ExpressShippingFee is charged for ShippingExpress orders.
var ExpressShippingFee = decimal.RequireFromString("24.99")

// ShippingMethod selects the delivery speed of an order.
type ShippingMethod string

const (
	ShippingStandard ShippingMethod = "standard"
	ShippingExpress  ShippingMethod = "express"
)

func ParseShippingMethod(s string) (ShippingMethod, error) {
	switch m := ShippingMethod(s); m {
	case ShippingStandard, ShippingExpress:
		return m, nil
	case "":
		return ShippingStandard, nil
	}
	return "", Invalid("unknown shipping method %q", s)
}

// Fee returns the shipping charge for the method.
func (m ShippingMethod) Fee() decimal.Decimal {
	if m == ShippingExpress {
		return ExpressShippingFee
	}
	return decimal.Zero
}

// TaxOn returns the VAT owed on subtotal, rounded to cents.
func TaxOn(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(TaxRate).Round(2)
}

// sumBy adds up f over items.
func sumBy[T any](items []T, f func(T) decimal.Decimal) decimal.Decimal {
	return lo.Reduce(items, func(acc decimal.Decimal, item T, _ int) decimal.Decimal {
		return acc.Add(f(item))
	}, decimal.Zero)
}

// ProductSnapshot is a catalog product as seen at the moment it was read.
type ProductSnapshot struct {
	ID       string
	Title    string
	Price    decimal.Decimal
	Category string
}

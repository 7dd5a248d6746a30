package orders

import "math"

const (
	// FreeShippingThreshold is the subtotal at which shipping becomes free.
	FreeShippingThreshold = 999

	// FlatShippingFee applies below the free-shipping threshold.
	FlatShippingFee = 50

	// TaxRate is applied to the subtotal, before any discount.
	TaxRate = 0.18
)

// LineItem is the minimal shape needed to price an order line.
type LineItem struct {
	UnitPrice float64
	Quantity  int
}

// Totals holds the computed money fields of an order.
type Totals struct {
	Subtotal    float64
	ShippingFee float64
	Tax         float64
	Discount    float64
	Total       float64
}

// ComputeTotals prices a set of line items. Tax is charged on the subtotal
// before the discount is subtracted; the grand total never goes below zero.
func ComputeTotals(items []LineItem, discount float64) Totals {
	var subtotal float64
	for _, item := range items {
		subtotal += item.UnitPrice * float64(item.Quantity)
	}

	shipping := float64(FlatShippingFee)
	if subtotal >= FreeShippingThreshold {
		shipping = 0
	}

	tax := math.Round(subtotal * TaxRate)

	total := subtotal + shipping + tax - discount
	if total < 0 {
		total = 0
	}

	return Totals{
		Subtotal:    subtotal,
		ShippingFee: shipping,
		Tax:         tax,
		Discount:    discount,
		Total:       total,
	}
}

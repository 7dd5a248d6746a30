package orders

import (
	"errors"
	"time"

	"github.com/example/bloom/internal/models"
)

// Order status values. The happy path moves strictly forward; Cancelled and
// Returned are side branches.
const (
	StatusProcessing     = "Processing"
	StatusConfirmed      = "Confirmed"
	StatusShipped        = "Shipped"
	StatusOutForDelivery = "Out for Delivery"
	StatusDelivered      = "Delivered"
	StatusCancelled      = "Cancelled"
	StatusReturned       = "Returned"
)

// ReturnWindow is how long after delivery an order may be returned.
const ReturnWindow = 30 * 24 * time.Hour

var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrReturnWindowOver  = errors.New("return window has closed")
)

var transitions = map[string][]string{
	StatusProcessing:     {StatusConfirmed, StatusCancelled},
	StatusConfirmed:      {StatusShipped, StatusCancelled},
	StatusShipped:        {StatusOutForDelivery},
	StatusOutForDelivery: {StatusDelivered},
	StatusDelivered:      {StatusReturned},
}

// CanTransition reports whether moving from one status to another is allowed.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CanCancel reports whether an order in the given status may still be cancelled.
func CanCancel(status string) bool {
	return status == StatusProcessing || status == StatusConfirmed
}

// Advance moves an order to the next status, stamping delivery fields exactly
// once on the Delivered transition and checking the return window on Returned.
func Advance(order *models.Order, next string, now time.Time) error {
	if !CanTransition(order.Status, next) {
		return ErrInvalidTransition
	}

	if next == StatusReturned {
		if order.ReturnWindowEndsAt == nil || now.After(*order.ReturnWindowEndsAt) {
			return ErrReturnWindowOver
		}
	}

	order.Status = next

	if next == StatusDelivered && order.DeliveredAt == nil {
		delivered := now
		windowEnd := now.Add(ReturnWindow)
		order.DeliveredAt = &delivered
		order.ReturnWindowEndsAt = &windowEnd
	}

	return nil
}

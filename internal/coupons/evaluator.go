package coupons

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/example/bloom/internal/models"
)

const (
	DiscountPercentage = "percentage"
	DiscountFlat       = "flat"

	StatusActive   = "active"
	StatusInactive = "inactive"
)

var (
	// ErrNotFound covers both a missing code and an inactive coupon; shoppers
	// cannot tell the two apart.
	ErrNotFound = errors.New("coupon not found")

	// ErrExpired means the coupon exists but the current time is outside its
	// validity window.
	ErrExpired = errors.New("coupon expired")

	// ErrNotEligible means the coupon is restricted to first orders.
	ErrNotEligible = errors.New("coupon valid for first order only")
)

// MinimumNotMetError reports the purchase minimum the order failed to reach.
type MinimumNotMetError struct {
	Minimum float64
}

func (e *MinimumNotMetError) Error() string {
	return fmt.Sprintf("minimum purchase of %.0f required", e.Minimum)
}

// Normalize uppercases a coupon code for lookup and storage.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Evaluate computes the discount a coupon grants for the given order amount.
// It is pure: the caller loads the coupon and supplies the clock.
//
// The returned discount is rounded to whole currency units and never exceeds
// the order amount.
func Evaluate(c models.Coupon, orderAmount float64, isFirstOrder bool, now time.Time) (float64, error) {
	if c.Status != StatusActive {
		return 0, ErrNotFound
	}

	if now.Before(c.StartDate) || now.After(c.EndDate) {
		return 0, ErrExpired
	}

	if c.FirstOrderOnly && !isFirstOrder {
		return 0, ErrNotEligible
	}

	if orderAmount < c.MinPurchase {
		return 0, &MinimumNotMetError{Minimum: c.MinPurchase}
	}

	var discount float64
	switch c.DiscountType {
	case DiscountPercentage:
		discount = orderAmount * c.DiscountValue / 100
		if c.MaxDiscount > 0 && discount > c.MaxDiscount {
			discount = c.MaxDiscount
		}
	case DiscountFlat:
		discount = c.DiscountValue
	default:
		return 0, ErrNotFound
	}

	if discount > orderAmount {
		discount = orderAmount
	}

	return math.Round(discount), nil
}

package coupons

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/bloom/internal/models"
)

func activeCoupon(discountType string, value float64) models.Coupon {
	now := time.Now()
	return models.Coupon{
		Code:          "TEST",
		DiscountType:  discountType,
		DiscountValue: value,
		StartDate:     now.Add(-24 * time.Hour),
		EndDate:       now.Add(24 * time.Hour),
		Status:        StatusActive,
	}
}

func TestEvaluatePercentageUnderCap(t *testing.T) {
	c := activeCoupon(DiscountPercentage, 40)
	c.Code = "FLASH40"
	c.MaxDiscount = 2000

	discount, err := Evaluate(c, 2000, false, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 800.0, discount)
}

func TestEvaluatePercentageCapApplies(t *testing.T) {
	c := activeCoupon(DiscountPercentage, 50)
	c.MaxDiscount = 2000

	discount, err := Evaluate(c, 10000, false, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 2000.0, discount)
}

func TestEvaluateFlatAtMinimum(t *testing.T) {
	c := activeCoupon(DiscountFlat, 100)
	c.Code = "WEEKEND100"
	c.MinPurchase = 800

	discount, err := Evaluate(c, 800, false, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 100.0, discount)
}

func TestEvaluateMinimumNotMet(t *testing.T) {
	c := activeCoupon(DiscountFlat, 50)
	c.MinPurchase = 500

	_, err := Evaluate(c, 400, false, time.Now())

	var minErr *MinimumNotMetError
	require.ErrorAs(t, err, &minErr)
	assert.Equal(t, 500.0, minErr.Minimum)
	assert.Contains(t, minErr.Error(), "500")
}

func TestEvaluateNeverExceedsOrderAmount(t *testing.T) {
	c := activeCoupon(DiscountFlat, 500)

	discount, err := Evaluate(c, 300, false, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 300.0, discount)

	c = activeCoupon(DiscountPercentage, 100)
	discount, err = Evaluate(c, 250, false, time.Now())
	require.NoError(t, err)
	assert.LessOrEqual(t, discount, 250.0)
}

func TestEvaluateInactiveLooksLikeNotFound(t *testing.T) {
	c := activeCoupon(DiscountFlat, 100)
	c.Status = StatusInactive

	_, err := Evaluate(c, 1000, false, time.Now())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEvaluateOutsideWindowIsExpired(t *testing.T) {
	c := activeCoupon(DiscountFlat, 100)

	_, err := Evaluate(c, 1000, false, c.EndDate.Add(time.Hour))
	assert.ErrorIs(t, err, ErrExpired)

	_, err = Evaluate(c, 1000, false, c.StartDate.Add(-time.Hour))
	assert.ErrorIs(t, err, ErrExpired)
}

func TestEvaluateFirstOrderOnly(t *testing.T) {
	c := activeCoupon(DiscountFlat, 100)
	c.FirstOrderOnly = true

	_, err := Evaluate(c, 1000, false, time.Now())
	assert.ErrorIs(t, err, ErrNotEligible)

	discount, err := Evaluate(c, 1000, true, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 100.0, discount)
}

func TestEvaluateRoundsToWholeUnits(t *testing.T) {
	c := activeCoupon(DiscountPercentage, 15)

	// 15% of 333 = 49.95, rounds to 50
	discount, err := Evaluate(c, 333, false, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 50.0, discount)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "FLASH40", Normalize("  flash40 "))
}

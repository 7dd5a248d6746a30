package orders

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeTotalsFreeShippingAtThreshold(t *testing.T) {
	totals := ComputeTotals([]LineItem{{UnitPrice: 999, Quantity: 1}}, 0)

	assert.Equal(t, 999.0, totals.Subtotal)
	assert.Equal(t, 0.0, totals.ShippingFee)
	assert.Equal(t, 180.0, totals.Tax)
	assert.Equal(t, 1179.0, totals.Total)
}

func TestComputeTotalsFlatShippingBelowThreshold(t *testing.T) {
	totals := ComputeTotals([]LineItem{{UnitPrice: 500, Quantity: 1}}, 0)

	assert.Equal(t, 500.0, totals.Subtotal)
	assert.Equal(t, 50.0, totals.ShippingFee)
	assert.Equal(t, 90.0, totals.Tax)
	assert.Equal(t, 640.0, totals.Total)
}

func TestComputeTotalsDiscountSubtractedAfterTax(t *testing.T) {
	// tax is charged on the subtotal, not the discounted amount
	totals := ComputeTotals([]LineItem{{UnitPrice: 1000, Quantity: 1}}, 200)

	assert.Equal(t, 180.0, totals.Tax)
	assert.Equal(t, 980.0, totals.Total)
}

func TestComputeTotalsNeverNegative(t *testing.T) {
	totals := ComputeTotals([]LineItem{{UnitPrice: 100, Quantity: 1}}, 10000)
	assert.Equal(t, 0.0, totals.Total)
}

func TestComputeTotalsMultipleLines(t *testing.T) {
	totals := ComputeTotals([]LineItem{
		{UnitPrice: 250, Quantity: 2},
		{UnitPrice: 499, Quantity: 1},
	}, 0)

	assert.Equal(t, 999.0, totals.Subtotal)
	assert.Equal(t, 0.0, totals.ShippingFee)
}

func TestGenerateOrderNumberShape(t *testing.T) {
	number := GenerateOrderNumber(time.Now())

	require.Regexp(t, regexp.MustCompile(`^BLM\d+$`), number)
	// prefix + time digits + 3 random digits
	assert.GreaterOrEqual(t, len(number), 3+1+3)
}

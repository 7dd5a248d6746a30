package orders

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/bloom/internal/models"
)

func TestCancelFromProcessingSucceeds(t *testing.T) {
	order := &models.Order{Status: StatusProcessing}

	err := Advance(order, StatusCancelled, time.Now())
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, order.Status)
}

func TestCancelFromShippedFails(t *testing.T) {
	order := &models.Order{Status: StatusShipped}

	err := Advance(order, StatusCancelled, time.Now())
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, StatusShipped, order.Status)
}

func TestHappyPathForward(t *testing.T) {
	order := &models.Order{Status: StatusProcessing}
	now := time.Now()

	for _, next := range []string{StatusConfirmed, StatusShipped, StatusOutForDelivery, StatusDelivered} {
		require.NoError(t, Advance(order, next, now))
	}
	assert.Equal(t, StatusDelivered, order.Status)
}

func TestNoSkippingStatuses(t *testing.T) {
	order := &models.Order{Status: StatusProcessing}
	err := Advance(order, StatusDelivered, time.Now())
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestDeliveredStampsDatesOnce(t *testing.T) {
	order := &models.Order{Status: StatusOutForDelivery}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, Advance(order, StatusDelivered, now))

	require.NotNil(t, order.DeliveredAt)
	require.NotNil(t, order.ReturnWindowEndsAt)
	assert.Equal(t, now, *order.DeliveredAt)
	assert.Equal(t, now.Add(ReturnWindow), *order.ReturnWindowEndsAt)
}

func TestReturnInsideWindow(t *testing.T) {
	order := &models.Order{Status: StatusOutForDelivery}
	delivered := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, Advance(order, StatusDelivered, delivered))

	err := Advance(order, StatusReturned, delivered.Add(10*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, StatusReturned, order.Status)
}

func TestReturnAfterWindowRejected(t *testing.T) {
	order := &models.Order{Status: StatusOutForDelivery}
	delivered := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, Advance(order, StatusDelivered, delivered))

	err := Advance(order, StatusReturned, delivered.Add(31*24*time.Hour))
	assert.ErrorIs(t, err, ErrReturnWindowOver)
}

func TestCanCancel(t *testing.T) {
	assert.True(t, CanCancel(StatusProcessing))
	assert.True(t, CanCancel(StatusConfirmed))
	assert.False(t, CanCancel(StatusShipped))
	assert.False(t, CanCancel(StatusDelivered))
}

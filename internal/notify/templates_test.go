package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "999 INR", FormatPrice(999, ""))
	assert.Equal(t, "1,179 INR", FormatPrice(1179, "INR"))
	assert.Equal(t, "1,250,000 INR", FormatPrice(1250000, "INR"))
}

func TestOTPMessageChannels(t *testing.T) {
	sms := OTPMessage("+919876543210", "123456", "phone")
	assert.Equal(t, KindSMS, sms.Kind)
	assert.Contains(t, sms.Body, "123456")

	email := OTPMessage("a@example.com", "654321", "email")
	assert.Equal(t, KindEmail, email.Kind)
	assert.NotEmpty(t, email.Subject)
	assert.Contains(t, email.Body, "654321")
}

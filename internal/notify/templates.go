package notify

import (
	"fmt"
	"strings"

	"github.com/example/bloom/internal/models"
)

// FormatPrice formats an amount with thousand separators and a currency code.
func FormatPrice(amount float64, currency string) string {
	if currency == "" {
		currency = "INR"
	}
	intAmount := int64(amount)
	str := fmt.Sprintf("%d", intAmount)

	var result strings.Builder
	length := len(str)
	for i, digit := range str {
		if i > 0 && (length-i)%3 == 0 {
			result.WriteString(",")
		}
		result.WriteRune(digit)
	}

	return result.String() + " " + currency
}

// OTPMessage builds the email/SMS body carrying a login code.
func OTPMessage(identifier, code, kind string) Message {
	if kind == "phone" {
		return Message{
			To:   identifier,
			Kind: KindSMS,
			Body: fmt.Sprintf("Your Bloom login code is %s. It expires in 10 minutes.", code),
		}
	}

	var b strings.Builder
	b.WriteString("<h2>Your Bloom login code</h2>")
	b.WriteString(fmt.Sprintf("<p style=\"font-size:24px;letter-spacing:4px\"><b>%s</b></p>", code))
	b.WriteString("<p>The code expires in 10 minutes. If you didn't request it, ignore this email.</p>")

	return Message{
		To:      identifier,
		Kind:    KindEmail,
		Subject: "Your Bloom login code",
		Body:    b.String(),
	}
}

// WelcomeMessage builds the email sent after a first successful verification.
func WelcomeMessage(email, name string) Message {
	if name == "" {
		name = "there"
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("<h2>Welcome to Bloom, %s!</h2>", name))
	b.WriteString("<p>Your account is ready. Browse the catalog, save your addresses and enjoy free shipping on orders over ")
	b.WriteString(FormatPrice(999, "INR"))
	b.WriteString(".</p>")

	return Message{
		To:      email,
		Kind:    KindEmail,
		Subject: "Welcome to Bloom",
		Body:    b.String(),
	}
}

// OrderConfirmationMessage builds the order-confirmation email.
func OrderConfirmationMessage(email string, order models.Order) Message {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("<h2>Order %s confirmed</h2>", order.OrderNumber))
	b.WriteString("<table>")
	for _, item := range order.Items {
		b.WriteString(fmt.Sprintf(
			"<tr><td>%s</td><td>x%d</td><td>%s</td></tr>",
			item.ProductName, item.Quantity, FormatPrice(item.LineTotal, order.Currency),
		))
	}
	b.WriteString("</table>")
	b.WriteString(fmt.Sprintf("<p>Subtotal: %s</p>", FormatPrice(order.Subtotal, order.Currency)))
	b.WriteString(fmt.Sprintf("<p>Shipping: %s</p>", FormatPrice(order.ShippingFee, order.Currency)))
	b.WriteString(fmt.Sprintf("<p>Tax: %s</p>", FormatPrice(order.Tax, order.Currency)))
	if order.Discount > 0 {
		b.WriteString(fmt.Sprintf("<p>Discount: -%s</p>", FormatPrice(order.Discount, order.Currency)))
	}
	b.WriteString(fmt.Sprintf("<p><b>Total: %s</b></p>", FormatPrice(order.TotalAmount, order.Currency)))

	return Message{
		To:      email,
		Kind:    KindEmail,
		Subject: fmt.Sprintf("Bloom order %s confirmed", order.OrderNumber),
		Body:    b.String(),
	}
}

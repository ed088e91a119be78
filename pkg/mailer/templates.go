package mailer

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const appName = "Kidora"

// Message is a rendered subject/body pair ready for a Mailer.
type Message struct {
	Subject string
	Body    string
}

func WelcomeEmail(name string) Message {
	if strings.TrimSpace(name) == "" {
		name = "there"
	}
	return Message{
		Subject: fmt.Sprintf("Welcome to %s!", appName),
		Body: fmt.Sprintf(
			"Hi %s,\n\nThanks for creating your %s account. We're excited to have you on board.\n"+
				"You can start browsing products and placing orders right away.\n\n"+
				"Happy shopping!\n-- The %s Team",
			name, appName, appName,
		),
	}
}

func OrderConfirmation(orderID uuid.UUID, total decimal.Decimal, itemCount int) Message {
	return Message{
		Subject: fmt.Sprintf("Order #%s Confirmation", shortOrderRef(orderID)),
		Body: fmt.Sprintf(
			"Thank you for your order!\n\nOrder ID: %s\nItems: %d\nTotal: %s BDT\n\n"+
				"We'll notify you when the status changes.",
			orderID, itemCount, total.StringFixed(2),
		),
	}
}

func OrderStatusUpdate(orderID uuid.UUID, newStatus string) Message {
	return Message{
		Subject: fmt.Sprintf("Order #%s Status Updated", shortOrderRef(orderID)),
		Body: fmt.Sprintf(
			"Your order #%s status is now: %s.\nThank you for shopping with us.",
			shortOrderRef(orderID), newStatus,
		),
	}
}

func PaymentStatusUpdate(orderID uuid.UUID, newStatus string) Message {
	return Message{
		Subject: fmt.Sprintf("Order #%s Payment %s", shortOrderRef(orderID), capitalize(newStatus)),
		Body: fmt.Sprintf(
			"Payment status for order #%s is now: %s.\nIf you have any questions, reply to this email.",
			shortOrderRef(orderID), newStatus,
		),
	}
}

func PasswordResetCode(code string) Message {
	return Message{
		Subject: "Your Password Reset Code",
		Body: fmt.Sprintf(
			"We received a request to reset your password.\n\nUse this code: %s\n"+
				"This code will expire in 10 minutes. If you did not request a reset, you can ignore this email.\n\n"+
				"-- The %s Team",
			code, appName,
		),
	}
}

func PasswordResetSuccess() Message {
	return Message{
		Subject: "Your Password Has Been Reset",
		Body: "This is a confirmation that your password was successfully reset.\n" +
			"If you did not perform this action, contact support immediately.",
	}
}

// shortOrderRef keeps email subjects readable by using the first uuid
// block as the customer-facing reference.
func shortOrderRef(id uuid.UUID) string {
	s := id.String()
	if i := strings.IndexByte(s, '-'); i > 0 {
		return strings.ToUpper(s[:i])
	}
	return strings.ToUpper(s)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	lower := strings.ToLower(s)
	return strings.ToUpper(lower[:1]) + lower[1:]
}

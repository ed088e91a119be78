package mailer

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestWelcomeEmailFallsBackToGenericGreeting(t *testing.T) {
	msg := WelcomeEmail("  ")
	if !strings.Contains(msg.Body, "Hi there,") {
		t.Fatalf("expected generic greeting, got %q", msg.Body)
	}

	msg = WelcomeEmail("Amina")
	if !strings.Contains(msg.Body, "Hi Amina,") {
		t.Fatalf("expected personalized greeting, got %q", msg.Body)
	}
}

func TestOrderConfirmationFormatsTotal(t *testing.T) {
	orderID := uuid.New()
	msg := OrderConfirmation(orderID, decimal.RequireFromString("1249.5"), 3)

	if !strings.Contains(msg.Body, "Total: 1249.50 BDT") {
		t.Fatalf("expected two decimal total, got %q", msg.Body)
	}
	if !strings.Contains(msg.Body, "Items: 3") {
		t.Fatalf("expected item count, got %q", msg.Body)
	}
	if !strings.Contains(msg.Body, orderID.String()) {
		t.Fatalf("expected full order id in body, got %q", msg.Body)
	}
}

func TestPaymentStatusUpdateCapitalizesSubject(t *testing.T) {
	msg := PaymentStatusUpdate(uuid.New(), "PAID")
	if !strings.Contains(msg.Subject, "Payment Paid") {
		t.Fatalf("unexpected subject %q", msg.Subject)
	}
}

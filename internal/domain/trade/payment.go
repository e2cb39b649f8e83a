package trade

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentRequest asks the gateway to collect an order total
type PaymentRequest struct {
	OrderID       uuid.UUID
	OrderNumber   string
	Amount        decimal.Decimal
	Currency      string
	CustomerEmail string
}

// PaymentIntent is the gateway's handle on a pending payment. The client
// secret lets the shopper's browser confirm it.
type PaymentIntent struct {
	Reference    string
	ClientSecret string
	Status       string
}

// PaymentOutcome is what a gateway notification reports
type PaymentOutcome string

const (
	PaymentOutcomeSucceeded PaymentOutcome = "succeeded"
	PaymentOutcomeFailed    PaymentOutcome = "failed"
	PaymentOutcomeIgnored   PaymentOutcome = "ignored"
)

// PaymentNotification is a verified asynchronous gateway callback
type PaymentNotification struct {
	EventID   string
	EventType string
	Reference string
	OrderID   uuid.UUID
	Outcome   PaymentOutcome
}

// PaymentGateway collects card payments
type PaymentGateway interface {
	CreatePayment(ctx context.Context, req PaymentRequest) (*PaymentIntent, error)
	CancelPayment(ctx context.Context, reference string) error
	// ParseNotification verifies signature over payload and decodes it
	ParseNotification(payload []byte, signature string) (*PaymentNotification, error)
}

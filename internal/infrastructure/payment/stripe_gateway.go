// Package payment implements trade.PaymentGateway on Stripe.
package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
	"github.com/stripe/stripe-go/v81/webhook"
	"go.uber.org/zap"

	"github.com/shopfront/backend/internal/domain/trade"
	"github.com/shopfront/backend/internal/infrastructure/config"
)

const metadataOrderID = "order_id"

var (
	// ErrInvalidSignature means a webhook could not be verified
	ErrInvalidSignature = errors.New("payment: invalid webhook signature")
	// ErrSecretKeyRequired is returned for an enabled gateway without a key
	ErrSecretKeyRequired = errors.New("payment: secret key is required")
)

// StripeGateway creates PaymentIntents and verifies Stripe webhooks
type StripeGateway struct {
	api           *client.API
	webhookSecret string
	currency      string
	logger        *zap.Logger
}

// StripeOption customizes NewStripeGateway
type StripeOption func(*stripe.BackendConfig)

// WithAPIURL points the client at another API host, e.g. stripe-mock
func WithAPIURL(url string) StripeOption {
	return func(c *stripe.BackendConfig) {
		c.URL = stripe.String(strings.TrimRight(url, "/"))
	}
}

// NewStripeGateway creates a gateway for the configured account
func NewStripeGateway(cfg config.PaymentConfig, logger *zap.Logger, opts ...StripeOption) (*StripeGateway, error) {
	if cfg.SecretKey == "" {
		return nil, ErrSecretKeyRequired
	}
	backendCfg := &stripe.BackendConfig{
		LeveledLogger:     logger.Sugar(),
		MaxNetworkRetries: stripe.Int64(2),
	}
	for _, opt := range opts {
		opt(backendCfg)
	}
	currency := strings.ToLower(cfg.Currency)
	if currency == "" {
		currency = "usd"
	}
	return &StripeGateway{
		api:           client.New(cfg.SecretKey, stripe.NewBackendsWithConfig(backendCfg)),
		webhookSecret: cfg.WebhookSecret,
		currency:      currency,
		logger:        logger,
	}, nil
}

// CreatePayment opens a PaymentIntent for the order total. The order ID is
// the idempotency key so a retried checkout reuses the same intent.
func (g *StripeGateway) CreatePayment(ctx context.Context, req trade.PaymentRequest) (*trade.PaymentIntent, error) {
	currency := strings.ToLower(req.Currency)
	if currency == "" {
		currency = g.currency
	}
	params := &stripe.PaymentIntentParams{
		Params:      stripe.Params{Context: ctx},
		Amount:      stripe.Int64(req.Amount.Shift(2).Round(0).IntPart()),
		Currency:    stripe.String(currency),
		Description: stripe.String("Order " + req.OrderNumber),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if req.CustomerEmail != "" {
		params.ReceiptEmail = stripe.String(req.CustomerEmail)
	}
	params.AddMetadata(metadataOrderID, req.OrderID.String())
	params.AddMetadata("order_number", req.OrderNumber)
	params.SetIdempotencyKey("order-" + req.OrderID.String())

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		g.logger.Error("Failed to create payment intent",
			zap.String("order_number", req.OrderNumber),
			zap.Error(err))
		return nil, fmt.Errorf("stripe: failed to create payment intent: %w", err)
	}

	g.logger.Info("Created payment intent",
		zap.String("order_number", req.OrderNumber),
		zap.String("payment_intent", pi.ID))
	return &trade.PaymentIntent{
		Reference:    pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
	}, nil
}

// CancelPayment cancels an unpaid intent
func (g *StripeGateway) CancelPayment(ctx context.Context, reference string) error {
	if reference == "" {
		return nil
	}
	_, err := g.api.PaymentIntents.Cancel(reference, &stripe.PaymentIntentCancelParams{
		Params: stripe.Params{Context: ctx},
	})
	if err != nil {
		return fmt.Errorf("stripe: failed to cancel payment intent: %w", err)
	}
	return nil
}

// ParseNotification verifies the Stripe-Signature header and maps
// payment_intent events to an outcome. Other event types are ignored.
func (g *StripeGateway) ParseNotification(payload []byte, signature string) (*trade.PaymentNotification, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		g.logger.Warn("Failed to verify webhook signature", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	n := &trade.PaymentNotification{
		EventID:   event.ID,
		EventType: string(event.Type),
		Outcome:   trade.PaymentOutcomeIgnored,
	}
	switch event.Type {
	case "payment_intent.succeeded":
		n.Outcome = trade.PaymentOutcomeSucceeded
	case "payment_intent.payment_failed", "payment_intent.canceled":
		n.Outcome = trade.PaymentOutcomeFailed
	default:
		return n, nil
	}

	if event.Data == nil {
		return nil, fmt.Errorf("stripe: event %s has no data", event.ID)
	}
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return nil, fmt.Errorf("stripe: failed to unmarshal payment intent: %w", err)
	}
	n.Reference = pi.ID
	if id, err := uuid.Parse(pi.Metadata[metadataOrderID]); err == nil {
		n.OrderID = id
	}
	return n, nil
}

var _ trade.PaymentGateway = (*StripeGateway)(nil)

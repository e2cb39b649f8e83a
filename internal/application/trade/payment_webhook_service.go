package trade

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/application/event"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/domain/trade"
	"go.uber.org/zap"
)

// webhookDedupTTL covers the gateway's redelivery window
const webhookDedupTTL = 72 * time.Hour

// PaymentWebhookService applies verified gateway notifications to orders.
// Each gateway event is applied at most once.
type PaymentWebhookService struct {
	orderRepo trade.OrderRepository
	gateway   trade.PaymentGateway
	dedup     shared.IdempotencyStore
	events    *event.Dispatcher
	payments  PaymentRecorder
	logger    *zap.Logger
}

// NewPaymentWebhookService creates a new PaymentWebhookService
func NewPaymentWebhookService(
	orderRepo trade.OrderRepository,
	gateway trade.PaymentGateway,
	dedup shared.IdempotencyStore,
	events *event.Dispatcher,
	payments PaymentRecorder,
	logger *zap.Logger,
) *PaymentWebhookService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentWebhookService{
		orderRepo: orderRepo,
		gateway:   gateway,
		dedup:     dedup,
		events:    events,
		payments:  payments,
		logger:    logger,
	}
}

// Handle verifies payload and marks the referenced order paid or failed.
// Duplicates and event types without a payment outcome are acknowledged
// without effect.
func (s *PaymentWebhookService) Handle(ctx context.Context, payload []byte, signature string) error {
	if s.gateway == nil {
		return errPaymentUnavailable
	}
	n, err := s.gateway.ParseNotification(payload, signature)
	if err != nil {
		return shared.NewDomainError("INVALID_SIGNATURE", "Webhook could not be verified")
	}
	if n.Outcome == trade.PaymentOutcomeIgnored {
		return nil
	}

	key := "payment:" + n.EventID
	isNew, err := s.dedup.MarkProcessed(ctx, key, webhookDedupTTL)
	if err != nil {
		s.logger.Warn("Webhook dedup check failed, processing anyway", zap.String("event_id", n.EventID), zap.Error(err))
	} else if !isNew {
		s.logger.Debug("Duplicate webhook skipped", zap.String("event_id", n.EventID))
		return nil
	}

	if err := s.apply(ctx, n); err != nil {
		if ferr := s.dedup.Forget(ctx, key); ferr != nil {
			s.logger.Warn("Failed to release webhook key", zap.String("event_id", n.EventID), zap.Error(ferr))
		}
		return err
	}
	return nil
}

func (s *PaymentWebhookService) apply(ctx context.Context, n *trade.PaymentNotification) error {
	var (
		order *trade.Order
		err   error
	)
	if n.OrderID != uuid.Nil {
		order, err = s.orderRepo.FindByID(ctx, n.OrderID)
	} else {
		order, err = s.orderRepo.FindByPaymentReference(ctx, n.Reference)
	}
	if err != nil {
		return err
	}

	outcome := PaymentPaid
	switch n.Outcome {
	case trade.PaymentOutcomeSucceeded:
		if err := order.MarkPaid(n.Reference); err != nil {
			return err
		}
	case trade.PaymentOutcomeFailed:
		order.MarkPaymentFailed()
		outcome = PaymentFailed
	}

	if err := s.orderRepo.Save(ctx, order); err != nil {
		return err
	}
	if s.payments != nil {
		s.payments.RecordPaymentAttempt(ctx, order.PaymentMethod, outcome)
	}
	s.logger.Info("Applied payment notification",
		zap.String("order_number", order.OrderNumber),
		zap.String("event_type", n.EventType),
		zap.String("payment_status", string(order.PaymentStatus)))
	s.events.Dispatch(ctx, order)
	return nil
}

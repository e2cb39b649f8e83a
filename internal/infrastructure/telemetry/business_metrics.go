package telemetry

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/shopfront/backend/internal/domain/review"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/domain/trade"
)

// ErrMeterNil is returned when no meter is supplied
var ErrMeterNil = errors.New("NewBusinessMetrics: meter cannot be nil")

// OrderStatsProvider reports current order counts for the status gauge
type OrderStatsProvider interface {
	CountByStatus(ctx context.Context) (map[trade.OrderStatus]int64, error)
}

// BusinessMetrics counts storefront activity. It listens to order and
// review events on the bus; cart and payment activity is recorded by the
// services directly.
type BusinessMetrics struct {
	logger *zap.Logger

	ordersPlaced     *Counter
	orderRevenue     *Counter
	ordersCancelled  *Counter
	ordersPaid       *Counter
	reviewsSubmitted *Counter
	reviewsModerated *Counter
	cartMutations    *Counter
	paymentAttempts  *Counter
	ordersByStatus   *Gauge

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewBusinessMetrics creates the instruments on meter
func NewBusinessMetrics(meter metric.Meter, logger *zap.Logger) (*BusinessMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	bm := &BusinessMetrics{logger: logger, stopCh: make(chan struct{})}

	counters := []struct {
		dst              **Counter
		name, desc, unit string
	}{
		{&bm.ordersPlaced, "shop_orders_placed_total", "Orders placed at checkout", "{order}"},
		{&bm.orderRevenue, "shop_order_revenue_cents_total", "Order totals in minor currency units", "{cent}"},
		{&bm.ordersCancelled, "shop_orders_cancelled_total", "Orders cancelled", "{order}"},
		{&bm.ordersPaid, "shop_orders_paid_total", "Orders confirmed paid", "{order}"},
		{&bm.reviewsSubmitted, "shop_reviews_submitted_total", "Reviews submitted by rating", "{review}"},
		{&bm.reviewsModerated, "shop_reviews_moderated_total", "Review moderation decisions", "{review}"},
		{&bm.cartMutations, "shop_cart_mutations_total", "Cart changes by operation", "{mutation}"},
		{&bm.paymentAttempts, "shop_payment_attempts_total", "Payment intents by outcome", "{attempt}"},
	}
	for _, c := range counters {
		counter, err := NewCounter(meter, c.name, c.desc, c.unit)
		if err != nil {
			return nil, err
		}
		*c.dst = counter
	}

	gauge, err := NewGauge(meter, "shop_orders_by_status", "Orders currently in each status", "{order}")
	if err != nil {
		return nil, err
	}
	bm.ordersByStatus = gauge
	return bm, nil
}

// EventTypes lists the bus events that feed the counters
func (bm *BusinessMetrics) EventTypes() []string {
	return []string{
		trade.EventTypeOrderPlaced,
		trade.EventTypeOrderCancelled,
		trade.EventTypeOrderPaid,
		review.EventTypeReviewSubmitted,
		review.EventTypeReviewModerated,
	}
}

// Handle records one event. Unknown events are ignored.
func (bm *BusinessMetrics) Handle(ctx context.Context, ev shared.DomainEvent) error {
	switch e := ev.(type) {
	case *trade.OrderPlacedEvent:
		bm.ordersPlaced.Inc(ctx)
		bm.orderRevenue.Add(ctx, e.Total.Shift(2).Round(0).IntPart())
	case *trade.OrderCancelledEvent:
		bm.ordersCancelled.Inc(ctx)
	case *trade.OrderPaidEvent:
		bm.ordersPaid.Inc(ctx)
	case *review.ReviewSubmittedEvent:
		bm.reviewsSubmitted.Inc(ctx, AttrReviewStatus.String("pending"), ratingAttr(e.Rating))
	case *review.ReviewModeratedEvent:
		bm.reviewsModerated.Inc(ctx, AttrReviewStatus.String(string(e.NewStatus)))
	}
	return nil
}

func ratingAttr(rating int) attribute.KeyValue {
	return AttrRating.String(strconv.Itoa(rating))
}

// RecordCartMutation counts one cart change such as "add" or "remove"
func (bm *BusinessMetrics) RecordCartMutation(ctx context.Context, operation string) {
	bm.cartMutations.Inc(ctx, AttrCartOperation.String(operation))
}

// RecordPaymentAttempt counts one payment intent outcome
func (bm *BusinessMetrics) RecordPaymentAttempt(ctx context.Context, method trade.PaymentMethod, outcome string) {
	bm.paymentAttempts.Inc(ctx, AttrPaymentMethod.String(string(method)), AttrOutcome.String(outcome))
}

// StartPeriodicCollection samples order counts every interval until ctx
// ends or Stop is called
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, provider OrderStatsProvider, interval time.Duration) {
	if provider == nil || interval <= 0 {
		return
	}
	bm.wg.Add(1)
	go func() {
		defer bm.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			bm.collectOrderStats(ctx, provider)
			select {
			case <-ticker.C:
			case <-bm.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (bm *BusinessMetrics) collectOrderStats(ctx context.Context, provider OrderStatsProvider) {
	counts, err := provider.CountByStatus(ctx)
	if err != nil {
		bm.logger.Warn("Failed to collect order metrics", zap.Error(err))
		return
	}
	for status, n := range counts {
		bm.ordersByStatus.Record(ctx, n, AttrOrderStatus.String(string(status)))
	}
}

// Stop ends periodic collection. Safe to call more than once.
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopCh)
		bm.wg.Wait()
	})
}

var _ shared.EventHandler = (*BusinessMetrics)(nil)

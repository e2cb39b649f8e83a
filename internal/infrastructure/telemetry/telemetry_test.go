package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/shopfront/backend/internal/domain/review"
	"github.com/shopfront/backend/internal/domain/trade"
	"github.com/shopfront/backend/internal/infrastructure/config"
)

func newTestMeter(t *testing.T) (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	return reader, mp
}

// sumOf returns the summed value of an int64 counter across attribute sets
// that contain every attr given
func sumOf(t *testing.T, reader *sdkmetric.ManualReader, name string, attrs ...attribute.KeyValue) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					if hasAll(dp.Attributes, attrs) {
						total += dp.Value
					}
				}
			case metricdata.Gauge[int64]:
				for _, dp := range data.DataPoints {
					if hasAll(dp.Attributes, attrs) {
						total += dp.Value
					}
				}
			}
		}
	}
	return total
}

func hasAll(set attribute.Set, attrs []attribute.KeyValue) bool {
	for _, kv := range attrs {
		v, ok := set.Value(kv.Key)
		if !ok || v != kv.Value {
			return false
		}
	}
	return true
}

func TestProviders_DisabledAreNoops(t *testing.T) {
	ctx := context.Background()
	cfg := config.TelemetryConfig{Enabled: false, ServiceName: "shop"}

	tp, err := NewTracerProvider(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, tp.IsEnabled())
	assert.NotNil(t, tp.Tracer("x"))
	assert.NoError(t, tp.Shutdown(ctx))

	mp, err := NewMeterProvider(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter("x"))
	assert.NoError(t, mp.Shutdown(ctx))

	lp, err := NewLoggerProvider(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	base := zap.NewNop()
	assert.Same(t, base, lp.Bridge(base))
	assert.NoError(t, lp.Shutdown(ctx))
}

func TestSampler(t *testing.T) {
	assert.Contains(t, sampler(1).Description(), "AlwaysOnSampler")
	assert.Equal(t, "AlwaysOffSampler", sampler(0).Description())
	assert.Contains(t, sampler(0.25).Description(), "TraceIDRatioBased{0.25}")
}

func TestNewBusinessMetrics_NilMeter(t *testing.T) {
	bm, err := NewBusinessMetrics(nil, zap.NewNop())
	assert.ErrorIs(t, err, ErrMeterNil)
	assert.Nil(t, bm)
}

func TestBusinessMetrics_CountsEvents(t *testing.T) {
	reader, mp := newTestMeter(t)
	bm, err := NewBusinessMetrics(mp.Meter("test"), zap.NewNop())
	require.NoError(t, err)
	ctx := context.Background()

	order := &trade.Order{Total: decimal.RequireFromString("19.99")}
	order.ID = uuid.New()
	rv := &review.Review{Rating: 5, Status: review.StatusApproved}
	rv.ID = uuid.New()

	require.NoError(t, bm.Handle(ctx, trade.NewOrderPlacedEvent(order)))
	require.NoError(t, bm.Handle(ctx, trade.NewOrderPlacedEvent(order)))
	require.NoError(t, bm.Handle(ctx, trade.NewOrderCancelledEvent(order, trade.OrderStatusPending)))
	require.NoError(t, bm.Handle(ctx, review.NewReviewSubmittedEvent(rv)))
	require.NoError(t, bm.Handle(ctx, review.NewReviewModeratedEvent(rv, review.StatusPending)))
	bm.RecordCartMutation(ctx, "add")
	bm.RecordCartMutation(ctx, "add")
	bm.RecordCartMutation(ctx, "remove")
	bm.RecordPaymentAttempt(ctx, trade.PaymentMethodCard, "succeeded")

	assert.Equal(t, int64(2), sumOf(t, reader, "shop_orders_placed_total"))
	assert.Equal(t, int64(3998), sumOf(t, reader, "shop_order_revenue_cents_total"))
	assert.Equal(t, int64(1), sumOf(t, reader, "shop_orders_cancelled_total"))
	assert.Equal(t, int64(1), sumOf(t, reader, "shop_reviews_submitted_total", AttrRating.String("5")))
	assert.Equal(t, int64(1), sumOf(t, reader, "shop_reviews_moderated_total", AttrReviewStatus.String("approved")))
	assert.Equal(t, int64(2), sumOf(t, reader, "shop_cart_mutations_total", AttrCartOperation.String("add")))
	assert.Equal(t, int64(1), sumOf(t, reader, "shop_payment_attempts_total", AttrPaymentMethod.String("card")))
}

type stubOrderStats struct {
	counts map[trade.OrderStatus]int64
	err    error
}

func (s stubOrderStats) CountByStatus(ctx context.Context) (map[trade.OrderStatus]int64, error) {
	return s.counts, s.err
}

func TestBusinessMetrics_PeriodicCollection(t *testing.T) {
	reader, mp := newTestMeter(t)
	bm, err := NewBusinessMetrics(mp.Meter("test"), zap.NewNop())
	require.NoError(t, err)

	provider := stubOrderStats{counts: map[trade.OrderStatus]int64{
		trade.OrderStatusPending: 4,
		trade.OrderStatusShipped: 2,
	}}
	bm.StartPeriodicCollection(context.Background(), provider, time.Hour)
	bm.Stop()
	bm.Stop()

	assert.Equal(t, int64(4), sumOf(t, reader, "shop_orders_by_status", AttrOrderStatus.String("pending")))
	assert.Equal(t, int64(2), sumOf(t, reader, "shop_orders_by_status", AttrOrderStatus.String("shipped")))
}

func TestBusinessMetrics_CollectionErrorIsLogged(t *testing.T) {
	_, mp := newTestMeter(t)
	bm, err := NewBusinessMetrics(mp.Meter("test"), zap.NewNop())
	require.NoError(t, err)

	bm.collectOrderStats(context.Background(), stubOrderStats{err: errors.New("db down")})
}

type row struct {
	ID   uint
	Name string
}

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&row{}))
	return db
}

func TestDBMetrics_RecordsQueries(t *testing.T) {
	reader, mp := newTestMeter(t)
	db := openSQLite(t)

	m, err := NewDBMetrics(mp.Meter("test"), time.Nanosecond, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, m.Register(db))

	ctx := context.Background()
	require.NoError(t, db.WithContext(ctx).Create(&row{Name: "a"}).Error)
	var rows []row
	require.NoError(t, db.WithContext(ctx).Find(&rows).Error)
	require.NoError(t, db.WithContext(ctx).Exec("UPDATE rows SET name = ?", "b").Error)

	assert.Equal(t, int64(1), sumOf(t, reader, "db_query_total", AttrDBOperation.String("INSERT")))
	assert.Equal(t, int64(1), sumOf(t, reader, "db_query_total", AttrDBOperation.String("SELECT")))
	assert.Equal(t, int64(1), sumOf(t, reader, "db_query_total", AttrDBOperation.String("UPDATE")))
	assert.Positive(t, sumOf(t, reader, "db_slow_query_total"))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	m.CollectPoolStats(ctx, sqlDB, time.Hour)
	m.Stop()
	m.Stop()
}

func TestDetectOperation(t *testing.T) {
	assert.Equal(t, "SELECT", detectOperation("  select 1"))
	assert.Equal(t, "DELETE", detectOperation("DELETE FROM x"))
	assert.Equal(t, "OTHER", detectOperation("PRAGMA foreign_keys"))
}

func withSpanRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return rec
}

func TestRegisterDBTracing(t *testing.T) {
	rec := withSpanRecorder(t)
	db := openSQLite(t)

	cfg := config.TelemetryConfig{Enabled: true, DBTraceEnabled: true, DBSlowQueryThresh: time.Nanosecond}
	require.NoError(t, RegisterDBTracing(db, cfg, zap.NewNop()))

	require.NoError(t, db.WithContext(context.Background()).Create(&row{Name: "a"}).Error)

	spans := rec.Ended()
	require.NotEmpty(t, spans)
	var found bool
	for _, s := range spans {
		for _, kv := range s.Attributes() {
			if kv.Key == "db.slow_query" && kv.Value.AsBool() {
				found = true
			}
		}
	}
	assert.True(t, found, "slow query flag set on a db span")
}

func TestRegisterDBTracing_Disabled(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, RegisterDBTracing(db, config.TelemetryConfig{Enabled: true}, zap.NewNop()))
	assert.Nil(t, db.Callback().Create().Get("otel_slow_query:after_create"))
}

func TestStartServiceSpan(t *testing.T) {
	rec := withSpanRecorder(t)

	ctx, span := StartServiceSpan(context.Background(), "checkout", "place_order", "items", 3, "guest", false)
	assert.NotEmpty(t, TraceID(ctx))
	SetAttributes(span, "order_number", "SO-20260101-000001")
	RecordError(span, errors.New("out of stock"))
	RecordError(span, nil)
	span.End()

	require.Len(t, rec.Ended(), 1)
	s := rec.Ended()[0]
	assert.Equal(t, "checkout.place_order", s.Name())
	assert.Equal(t, codes.Error, s.Status().Code)
	assert.Contains(t, s.Attributes(), attribute.Int("items", 3))
	assert.Contains(t, s.Attributes(), attribute.String("order_number", "SO-20260101-000001"))

	assert.Empty(t, TraceID(context.Background()))
}

func TestNewProfiler_Disabled(t *testing.T) {
	p, err := NewProfiler(config.TelemetryConfig{}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, p.IsEnabled())
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestNewProfiler_RequiresAddress(t *testing.T) {
	_, err := NewProfiler(config.TelemetryConfig{ProfilingEnabled: true, ServiceName: "shop"}, zap.NewNop())
	assert.Error(t, err)
}

func TestWithRouteLabel_RunsFn(t *testing.T) {
	called := false
	WithRouteLabel(context.Background(), "/products/:id", func(ctx context.Context) {
		called = ctx != nil
	})
	assert.True(t, called)
}

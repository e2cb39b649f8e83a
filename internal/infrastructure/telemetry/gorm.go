package telemetry

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/shopfront/backend/internal/infrastructure/config"
)

type queryStartKey struct{}

// RegisterDBTracing installs otelgorm and a callback that flags slow
// queries on the active span. It is a no-op when tracing of the database
// is disabled.
func RegisterDBTracing(db *gorm.DB, cfg config.TelemetryConfig, logger *zap.Logger) error {
	if !cfg.Enabled || !cfg.DBTraceEnabled {
		return nil
	}
	opts := []otelgorm.Option{otelgorm.WithDBName("shopfront")}
	if !cfg.DBLogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	thresh := cfg.DBSlowQueryThresh
	err := registerAround(db, "otel_slow_query", markStart, func(tx *gorm.DB, _ string) {
		annotateSpan(tx, thresh)
	})
	if err != nil {
		return err
	}
	logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", cfg.DBLogFullSQL),
		zap.Duration("slow_query_threshold", thresh),
	)
	return nil
}

func annotateSpan(tx *gorm.DB, thresh time.Duration) {
	ctx := tx.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.SetAttributes(attribute.Int64("db.rows_affected", tx.Statement.RowsAffected))
	if tx.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", tx.Statement.Table))
	}
	if tx.Error != nil && !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		span.SetStatus(codes.Error, tx.Error.Error())
		span.RecordError(tx.Error)
	}
	if elapsed, ok := sinceStart(ctx); ok && thresh > 0 && elapsed > thresh {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
	}
}

// DBMetrics records query counts, latencies and pool usage
type DBMetrics struct {
	queryTotal      *Counter
	queryDuration   *Histogram
	slowQueryTotal  *Counter
	poolConnections *Gauge

	slowThresh time.Duration
	logger     *zap.Logger
	stopCh     chan struct{}
	stopOnce   sync.Once
	wg         sync.WaitGroup
}

// NewDBMetrics creates the instruments on meter
func NewDBMetrics(meter metric.Meter, slowThresh time.Duration, logger *zap.Logger) (*DBMetrics, error) {
	queryTotal, err := NewCounter(meter, "db_query_total", "Database queries by operation", "{query}")
	if err != nil {
		return nil, err
	}
	queryDuration, err := NewHistogram(meter, HistogramOpts{
		Name:        "db_query_duration_seconds",
		Description: "Database query latency",
		Unit:        "s",
		Boundaries:  DBDurationBuckets,
	})
	if err != nil {
		return nil, err
	}
	slowQueryTotal, err := NewCounter(meter, "db_slow_query_total", "Queries slower than the configured threshold", "{query}")
	if err != nil {
		return nil, err
	}
	poolConnections, err := NewGauge(meter, "db_pool_connections", "Pool connections by state", "{connection}")
	if err != nil {
		return nil, err
	}
	return &DBMetrics{
		queryTotal:      queryTotal,
		queryDuration:   queryDuration,
		slowQueryTotal:  slowQueryTotal,
		poolConnections: poolConnections,
		slowThresh:      slowThresh,
		logger:          logger,
		stopCh:          make(chan struct{}),
	}, nil
}

// Register installs the query callbacks on db
func (m *DBMetrics) Register(db *gorm.DB) error {
	return registerAround(db, "db_metrics", markStart, func(tx *gorm.DB, operation string) {
		if operation == "" {
			operation = detectOperation(tx.Statement.SQL.String())
		}
		elapsed, _ := sinceStart(tx.Statement.Context)
		m.RecordQuery(tx.Statement.Context, operation, tx.Statement.Table, elapsed)
	})
}

// RecordQuery records one finished query
func (m *DBMetrics) RecordQuery(ctx context.Context, operation, table string, elapsed time.Duration) {
	if ctx == nil {
		ctx = context.Background()
	}
	m.queryTotal.Inc(ctx, AttrDBOperation.String(operation))
	m.queryDuration.RecordDuration(ctx, elapsed, AttrDBOperation.String(operation))
	if m.slowThresh > 0 && elapsed > m.slowThresh {
		if table == "" {
			table = "unknown"
		}
		m.slowQueryTotal.Inc(ctx, AttrDBTable.String(table))
	}
}

// CollectPoolStats samples sqlDB every interval until ctx ends or Stop
func (m *DBMetrics) CollectPoolStats(ctx context.Context, sqlDB *sql.DB, interval time.Duration) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			stats := sqlDB.Stats()
			m.poolConnections.Record(ctx, int64(stats.Idle), AttrDBState.String("idle"))
			m.poolConnections.Record(ctx, int64(stats.InUse), AttrDBState.String("in_use"))
			select {
			case <-ticker.C:
			case <-m.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop ends pool collection. Safe to call more than once.
func (m *DBMetrics) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopCh)
		m.wg.Wait()
	})
}

func markStart(tx *gorm.DB) {
	ctx := tx.Statement.Context
	if ctx == nil {
		ctx = context.Background()
	}
	tx.Statement.Context = context.WithValue(ctx, queryStartKey{}, time.Now())
}

func sinceStart(ctx context.Context) (time.Duration, bool) {
	if ctx == nil {
		return 0, false
	}
	start, ok := ctx.Value(queryStartKey{}).(time.Time)
	if !ok {
		return 0, false
	}
	return time.Since(start), true
}

// registerAround hooks before and after every gorm operation. The after
// callback receives the SQL verb, or "" for row and raw statements.
func registerAround(db *gorm.DB, prefix string, before func(*gorm.DB), after func(*gorm.DB, string)) error {
	cb := db.Callback()
	verb := func(v string) func(*gorm.DB) {
		return func(tx *gorm.DB) { after(tx, v) }
	}
	return errors.Join(
		cb.Create().Before("gorm:create").Register(prefix+":before_create", before),
		cb.Create().After("gorm:create").Register(prefix+":after_create", verb("INSERT")),
		cb.Query().Before("gorm:query").Register(prefix+":before_query", before),
		cb.Query().After("gorm:query").Register(prefix+":after_query", verb("SELECT")),
		cb.Update().Before("gorm:update").Register(prefix+":before_update", before),
		cb.Update().After("gorm:update").Register(prefix+":after_update", verb("UPDATE")),
		cb.Delete().Before("gorm:delete").Register(prefix+":before_delete", before),
		cb.Delete().After("gorm:delete").Register(prefix+":after_delete", verb("DELETE")),
		cb.Row().Before("gorm:row").Register(prefix+":before_row", before),
		cb.Row().After("gorm:row").Register(prefix+":after_row", verb("")),
		cb.Raw().Before("gorm:raw").Register(prefix+":before_raw", before),
		cb.Raw().After("gorm:raw").Register(prefix+":after_raw", verb("")),
	)
}

func detectOperation(query string) string {
	query = strings.ToUpper(strings.TrimSpace(query))
	for _, v := range []string{"SELECT", "INSERT", "UPDATE", "DELETE"} {
		if strings.HasPrefix(query, v) {
			return v
		}
	}
	return "OTHER"
}

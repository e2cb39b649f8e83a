//go:build integration

package persistence

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopfront/backend/internal/domain/promotion"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/infrastructure/migration"
)

// setupPostgres starts a disposable PostgreSQL container and applies the
// embedded migrations to it
func setupPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("shopfront_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "failed to start PostgreSQL container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)

	m, err := migration.New(sqlDB, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, m.Up(ctx))
	return db
}

func TestPostgres_MigrationsMatchEntities(t *testing.T) {
	db := setupPostgres(t)
	ctx := context.Background()

	for _, model := range Models() {
		stmt := &gorm.Statement{DB: db}
		require.NoError(t, stmt.Parse(model))
		assert.True(t, db.Migrator().HasTable(model), stmt.Table)
		for _, field := range stmt.Schema.Fields {
			if field.DBName == "" {
				continue
			}
			assert.True(t, db.Migrator().HasColumn(model, field.DBName), "%s.%s", stmt.Table, field.DBName)
		}
	}

	p, err := catalog.NewProduct("Linen Shirt", decimal.NewFromInt(50), 1)
	require.NoError(t, err)
	require.NoError(t, NewGormProductRepository(db).Save(ctx, p))
}

func TestPostgres_ConcurrentStockAndUsage(t *testing.T) {
	db := setupPostgres(t)
	products := NewGormProductRepository(db)
	promotions := NewGormPromotionRepository(db)
	orders := NewGormOrderRepository(db)
	ctx := context.Background()

	p, err := catalog.NewProduct("Last Few", decimal.NewFromInt(10), 3)
	require.NoError(t, err)
	require.NoError(t, products.Save(ctx, p))

	promo, err := promotion.New("LIMITED", promotion.Rule{
		Name: "Limited", Type: promotion.TypeFixedAmount, Value: decimal.NewFromInt(5),
		UsageLimit: 2, Active: true,
	})
	require.NoError(t, err)
	require.NoError(t, promotions.Save(ctx, promo))

	var (
		wg                 sync.WaitGroup
		mu                 sync.Mutex
		sold, used         int
		numbers            = map[string]bool{}
		stockErrs, useErrs int
	)
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, stockErr := products.AdjustStock(ctx, p.ID, -1)
			useErr := promotions.IncrementUsage(ctx, promo.ID)
			n, numErr := orders.NextOrderNumber(ctx, time.Now())

			mu.Lock()
			defer mu.Unlock()
			if stockErr == nil {
				sold++
			} else if assert.ErrorIs(t, stockErr, shared.ErrInsufficientStock) {
				stockErrs++
			}
			if useErr == nil {
				used++
			} else if assert.ErrorIs(t, useErr, promotion.ErrUsageLimitReached) {
				useErrs++
			}
			if assert.NoError(t, numErr) {
				numbers[n] = true
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, sold)
	assert.Equal(t, 9, stockErrs)
	assert.Equal(t, 2, used)
	assert.Equal(t, 10, useErrs)
	assert.Len(t, numbers, 12)

	_, err = promotions.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

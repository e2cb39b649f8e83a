package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopfront/backend/internal/domain/shared"
)

// CachedProductRepository fronts a ProductRepository with a Redis
// read-through cache for single-product lookups. Concurrent misses for the
// same product collapse into one repository call.
type CachedProductRepository struct {
	catalog.ProductRepository
	client redis.UniversalClient
	ttl    time.Duration
	logger *zap.Logger
	group  singleflight.Group
}

// NewCachedProductRepository wraps repo
func NewCachedProductRepository(repo catalog.ProductRepository, client redis.UniversalClient, ttl time.Duration, logger *zap.Logger) *CachedProductRepository {
	return &CachedProductRepository{
		ProductRepository: repo,
		client:            client,
		ttl:               ttl,
		logger:            logger.Named("product_cache"),
	}
}

func productKey(id uuid.UUID) string {
	return keyPrefix + "product:" + id.String()
}

// FindByID returns the cached product or loads and caches it.
// Cache failures degrade to a direct repository read.
func (r *CachedProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	if p, err := r.get(ctx, id); err == nil {
		return p, nil
	} else if !errors.Is(err, ErrCacheMiss) {
		r.logger.Warn("product cache read failed", zap.String("product_id", id.String()), zap.Error(err))
	}

	v, err, _ := r.group.Do(id.String(), func() (any, error) {
		p, err := r.ProductRepository.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := r.set(ctx, p); err != nil {
			r.logger.Warn("product cache write failed", zap.String("product_id", id.String()), zap.Error(err))
		}
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	// Each caller gets its own copy; callers mutate products before saving.
	p := *v.(*catalog.Product)
	return &p, nil
}

// Save persists the product and evicts its cache entry
func (r *CachedProductRepository) Save(ctx context.Context, p *catalog.Product) error {
	if err := r.ProductRepository.Save(ctx, p); err != nil {
		return err
	}
	r.evict(ctx, p.ID)
	return nil
}

// AdjustStock changes the stock level and evicts the cache entry
func (r *CachedProductRepository) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (int, error) {
	stock, err := r.ProductRepository.AdjustStock(ctx, id, delta)
	if err != nil {
		return 0, err
	}
	r.evict(ctx, id)
	return stock, nil
}

// Delete removes the product and evicts its cache entry
func (r *CachedProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.ProductRepository.Delete(ctx, id); err != nil {
		return err
	}
	r.evict(ctx, id)
	return nil
}

// evict drops the entry now and again once the surrounding transaction
// commits, so a read racing the transaction cannot leave the old row cached
func (r *CachedProductRepository) evict(ctx context.Context, id uuid.UUID) {
	r.Invalidate(ctx, id)
	shared.AfterCommit(ctx, func() {
		r.Invalidate(context.WithoutCancel(ctx), id)
	})
}

// Invalidate evicts the cache entry for id
func (r *CachedProductRepository) Invalidate(ctx context.Context, id uuid.UUID) {
	if err := r.client.Del(ctx, productKey(id)).Err(); err != nil {
		r.logger.Warn("product cache evict failed", zap.String("product_id", id.String()), zap.Error(err))
	}
}

func (r *CachedProductRepository) get(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	data, err := r.client.Get(ctx, productKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get product: %w", err)
	}
	var p catalog.Product
	if err := json.Unmarshal(data, &p); err != nil {
		_ = r.client.Del(ctx, productKey(id))
		return nil, fmt.Errorf("unmarshal product: %w", err)
	}
	return &p, nil
}

func (r *CachedProductRepository) set(ctx context.Context, p *catalog.Product) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal product: %w", err)
	}
	// Jitter spreads expiry of products cached together.
	ttl := r.ttl + time.Duration(rand.Int64N(int64(r.ttl)/10+1))
	return r.client.Set(ctx, productKey(p.ID), data, ttl).Err()
}

var _ catalog.ProductRepository = (*CachedProductRepository)(nil)

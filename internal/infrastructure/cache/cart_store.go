package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/shopfront/backend/internal/domain/cart"
)

// CartStore keeps each shopper's cart as a JSON blob. The TTL slides on
// every save so an active cart never expires.
type CartStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewCartStore creates a Redis-backed cart repository
func NewCartStore(client redis.UniversalClient, ttl time.Duration) *CartStore {
	return &CartStore{client: client, ttl: ttl}
}

func cartKey(ownerID uuid.UUID) string {
	return keyPrefix + "cart:" + ownerID.String()
}

// Get implements cart.Repository
func (s *CartStore) Get(ctx context.Context, ownerID uuid.UUID) (*cart.Cart, error) {
	data, err := s.client.Get(ctx, cartKey(ownerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return cart.New(ownerID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get cart: %w", err)
	}

	var c cart.Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("unmarshal cart: %w", err)
	}
	if c.Items == nil {
		c.Items = []cart.LineItem{}
	}
	return &c, nil
}

// Save implements cart.Repository
func (s *CartStore) Save(ctx context.Context, c *cart.Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}
	if err := s.client.Set(ctx, cartKey(c.OwnerID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set cart: %w", err)
	}
	return nil
}

// Delete implements cart.Repository
func (s *CartStore) Delete(ctx context.Context, ownerID uuid.UUID) error {
	if err := s.client.Del(ctx, cartKey(ownerID)).Err(); err != nil {
		return fmt.Errorf("redis delete cart: %w", err)
	}
	return nil
}

var _ cart.Repository = (*CartStore)(nil)

package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/shopfront/backend/internal/domain/storefront"
)

// RecentlyViewedStore keeps a most-recent-first list of product IDs per user
type RecentlyViewedStore struct {
	client redis.UniversalClient
	ttl    time.Duration
	limit  int
}

// NewRecentlyViewedStore creates a store capped at storefront.MaxRecentlyViewed
func NewRecentlyViewedStore(client redis.UniversalClient, ttl time.Duration) *RecentlyViewedStore {
	return &RecentlyViewedStore{client: client, ttl: ttl, limit: storefront.MaxRecentlyViewed}
}

func recentKey(userID uuid.UUID) string {
	return keyPrefix + "recent:" + userID.String()
}

// Push moves productID to the front of the user's list, dropping any older
// occurrence and trimming the list to the cap, in one MULTI block.
func (s *RecentlyViewedStore) Push(ctx context.Context, userID, productID uuid.UUID) error {
	key := recentKey(userID)
	id := productID.String()

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LRem(ctx, key, 0, id)
		pipe.LPush(ctx, key, id)
		pipe.LTrim(ctx, key, 0, int64(s.limit-1))
		if s.ttl > 0 {
			pipe.Expire(ctx, key, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis push recently viewed: %w", err)
	}
	return nil
}

// List returns the user's recently viewed product IDs, newest first.
// Entries that are not valid UUIDs are skipped.
func (s *RecentlyViewedStore) List(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	raw, err := s.client.LRange(ctx, recentKey(userID), 0, int64(s.limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list recently viewed: %w", err)
	}
	ids := make([]uuid.UUID, 0, len(raw))
	for _, r := range raw {
		if id, err := uuid.Parse(r); err == nil {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Clear forgets the user's list
func (s *RecentlyViewedStore) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := s.client.Del(ctx, recentKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis clear recently viewed: %w", err)
	}
	return nil
}

package shopclient

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return OpenStore(filepath.Join(t.TempDir(), "state", "shop.json"))
}

func TestStore_GetMissingKey(t *testing.T) {
	s := newTestStore(t)

	var v []string
	found, err := s.Get(KeyCart, &v)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_SetGetDelete(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Set(KeyComparisonProducts, []string{"a", "b"}))

	var v []string
	found, err := s.Get(KeyComparisonProducts, &v)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"a", "b"}, v)

	require.NoError(t, s.Delete(KeyComparisonProducts))
	found, err = s.Get(KeyComparisonProducts, &v)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_NoTempFilesLeftBehind(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Set(KeyCart, map[string]int{"x": 1}))

	entries, err := os.ReadDir(filepath.Dir(s.Path()))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "shop.json", entries[0].Name())
}

func TestStore_CorruptFile(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), 0o700))
	require.NoError(t, os.WriteFile(s.Path(), []byte("{not json"), 0o600))

	var v any
	_, err := s.Get(KeyCart, &v)
	assert.Error(t, err)
}

func TestStore_PushRecentlyViewed(t *testing.T) {
	s := newTestStore(t)

	ids := make([]uuid.UUID, RecentlyViewedLimit)
	for i := range ids {
		ids[i] = uuid.New()
		require.NoError(t, s.PushRecentlyViewed(ids[i]))
	}

	got, err := s.RecentlyViewed()
	require.NoError(t, err)
	require.Len(t, got, RecentlyViewedLimit)
	assert.Equal(t, ids[len(ids)-1], got[0])
	assert.Equal(t, ids[0], got[len(got)-1])

	t.Run("revisit moves to front without duplicating", func(t *testing.T) {
		require.NoError(t, s.PushRecentlyViewed(ids[3]))
		got, err := s.RecentlyViewed()
		require.NoError(t, err)
		assert.Len(t, got, RecentlyViewedLimit)
		assert.Equal(t, ids[3], got[0])
		count := 0
		for _, id := range got {
			if id == ids[3] {
				count++
			}
		}
		assert.Equal(t, 1, count)
	})

	t.Run("new id evicts the oldest", func(t *testing.T) {
		before, err := s.RecentlyViewed()
		require.NoError(t, err)
		oldest := before[len(before)-1]

		fresh := uuid.New()
		require.NoError(t, s.PushRecentlyViewed(fresh))
		got, err := s.RecentlyViewed()
		require.NoError(t, err)
		assert.Len(t, got, RecentlyViewedLimit)
		assert.Equal(t, fresh, got[0])
		assert.NotContains(t, got, oldest)
	})
}

func TestStore_QueueReview(t *testing.T) {
	s := newTestStore(t)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	first := PendingReview{ProductID: uuid.New(), Rating: 4, Comment: "Lovely fabric, runs small"}
	second := PendingReview{ProductID: uuid.New(), Rating: 2, Comment: "Colour faded after one wash"}
	require.NoError(t, s.QueueReview(first))
	require.NoError(t, s.QueueReview(second))

	pending, err := s.PendingReviews()
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, first.ProductID, pending[0].ProductID)
	assert.Equal(t, fixed, pending[0].QueuedAt)
	assert.Equal(t, second.Comment, pending[1].Comment)

	raw, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"productId"`)
}

func TestStoreSession(t *testing.T) {
	s := newTestStore(t)
	session := NewStoreSession(s)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	session.now = func() time.Time { return now }

	_, err := session.AccessToken(context.Background())
	assert.ErrorIs(t, err, ErrNoSession)

	require.NoError(t, session.Save(&TokenPair{AccessToken: "a", RefreshToken: "r", AccessTokenExpiresAt: now.Add(time.Minute)}))
	token, err := session.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a", token)

	now = now.Add(2 * time.Minute)
	_, err = session.AccessToken(context.Background())
	assert.ErrorIs(t, err, ErrNoSession)

	tokens, err := session.Tokens()
	require.NoError(t, err)
	assert.Equal(t, "r", tokens.RefreshToken)

	require.NoError(t, session.Clear())
	_, err = session.Tokens()
	assert.ErrorIs(t, err, ErrNoSession)
}

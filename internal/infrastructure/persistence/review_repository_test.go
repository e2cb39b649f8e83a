package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopfront/backend/internal/domain/review"
	"github.com/shopfront/backend/internal/domain/shared"
)

func TestGormReviewRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormReviewRepository(db)
	ctx := context.Background()

	productID := uuid.New()
	authorID := uuid.New()
	ratings := []int{5, 5, 4, 2}
	for i, rating := range ratings {
		rv, err := review.NewReview(productID, authorID, "Dana", rating, "A perfectly fine product overall")
		require.NoError(t, err)
		if i < 3 {
			require.NoError(t, rv.Approve())
		}
		require.NoError(t, repo.Save(ctx, rv))
	}
	other, err := review.NewReview(uuid.New(), authorID, "Dana", 1, "Not for me, sorry about that")
	require.NoError(t, err)
	require.NoError(t, other.Approve())
	require.NoError(t, repo.Save(ctx, other))

	t.Run("rating counts cover approved reviews of one product", func(t *testing.T) {
		counts, err := repo.RatingCounts(ctx, productID)
		require.NoError(t, err)
		assert.Equal(t, map[int]int{5: 2, 4: 1}, counts)
	})

	t.Run("filters by status and product", func(t *testing.T) {
		filter := shared.Filter{Filters: map[string]any{
			"status":     review.StatusPending,
			"product_id": productID,
		}}
		reviews, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		require.Len(t, reviews, 1)
		assert.Equal(t, 2, reviews[0].Rating)

		count, err := repo.Count(ctx, shared.Filter{Filters: map[string]any{"author_id": authorID}})
		require.NoError(t, err)
		assert.Equal(t, int64(5), count)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, other.ID))
		_, err := repo.FindByID(ctx, other.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

package review

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReview(t *testing.T) {
	productID, authorID := uuid.New(), uuid.New()

	t.Run("starts pending", func(t *testing.T) {
		r, err := NewReview(productID, authorID, "", 4, "  Fits well, good fabric  ")
		require.NoError(t, err)
		assert.Equal(t, StatusPending, r.Status)
		assert.Equal(t, "Fits well, good fabric", r.Comment)
		assert.Equal(t, "Anonymous", r.AuthorName)
		assert.False(t, r.IsVisible())

		events := r.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeReviewSubmitted, events[0].EventType())
	})

	t.Run("validates rating range", func(t *testing.T) {
		for _, rating := range []int{0, 6, -1} {
			_, err := NewReview(productID, authorID, "Ada", rating, "long enough comment")
			assert.Error(t, err, "rating %d", rating)
		}
	})

	t.Run("validates comment length", func(t *testing.T) {
		_, err := NewReview(productID, authorID, "Ada", 5, "   too short  ")
		assert.Error(t, err)
		_, err = NewReview(productID, authorID, "Ada", 5, strings.Repeat("x", MaxCommentLength+1))
		assert.Error(t, err)
	})

	t.Run("requires product and author", func(t *testing.T) {
		_, err := NewReview(uuid.Nil, authorID, "Ada", 5, "long enough comment")
		assert.Error(t, err)
		_, err = NewReview(productID, uuid.Nil, "Ada", 5, "long enough comment")
		assert.Error(t, err)
	})
}

func TestReview_Moderation(t *testing.T) {
	r, err := NewReview(uuid.New(), uuid.New(), "Ada", 5, "long enough comment")
	require.NoError(t, err)
	r.ClearDomainEvents()

	require.NoError(t, r.Approve())
	assert.True(t, r.IsVisible())
	assert.Error(t, r.Approve())

	require.NoError(t, r.Reject(" spam "))
	assert.Equal(t, StatusRejected, r.Status)
	assert.Equal(t, "spam", r.ModerationNote)
	assert.Error(t, r.Reject("again"))

	events := r.GetDomainEvents()
	require.Len(t, events, 2)
	ev := events[1].(*ReviewModeratedEvent)
	assert.Equal(t, StatusApproved, ev.OldStatus)
	assert.Equal(t, StatusRejected, ev.NewStatus)
}

func TestSummarize(t *testing.T) {
	mk := func(rating int, status Status) Review {
		return Review{Rating: rating, Status: status}
	}
	s := Summarize([]Review{
		mk(5, StatusApproved),
		mk(4, StatusApproved),
		mk(4, StatusApproved),
		mk(1, StatusPending),
		mk(1, StatusRejected),
	})
	assert.Equal(t, 3, s.Count)
	assert.Equal(t, 4.3, s.Average)
	assert.Equal(t, 2, s.Histogram[4])
	assert.Equal(t, 0, s.Histogram[1])

	empty := Summarize(nil)
	assert.Equal(t, 0, empty.Count)
	assert.Equal(t, 0.0, empty.Average)
	assert.Len(t, empty.Histogram, 5)
}

func TestSummaryFromCounts(t *testing.T) {
	s := SummaryFromCounts(map[int]int{5: 2, 3: 1, 9: 4})
	assert.Equal(t, 3, s.Count)
	assert.Equal(t, 4.3, s.Average)
	assert.Equal(t, 0, s.Histogram[1])
}

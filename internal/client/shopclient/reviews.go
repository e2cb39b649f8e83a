package shopclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MinCommentLength is the shortest comment accepted before posting
const MinCommentLength = 10

// Review submission failures
var (
	ErrInvalidRating          = errors.New("rating must be between 1 and 5")
	ErrCommentTooShort        = fmt.Errorf("comment must be at least %d characters", MinCommentLength)
	ErrAuthenticationRequired = errors.New("please sign in to leave a review")
	ErrSubmissionFailed       = errors.New("your review could not be submitted, please try again")
)

// ReviewPoster posts a review to the API
type ReviewPoster interface {
	PostReview(ctx context.Context, productID uuid.UUID, rating int, comment string) (*Review, error)
}

// ReviewQueue keeps reviews the API could not take
type ReviewQueue interface {
	QueueReview(r PendingReview) error
}

// ReviewResult is what the shopper is told after submitting
type ReviewResult struct {
	Review *Review
	// Queued is set when the review was stored locally instead of posted
	Queued  bool
	Message string
}

// ReviewForm submits reviews. A 404 from the reviews endpoint is taken as
// the endpoint being unavailable: the review is queued locally and the
// submission reported as successful. Nothing is retried.
type ReviewForm struct {
	api    ReviewPoster
	queue  ReviewQueue
	logger *zap.Logger
}

// NewReviewForm builds a review form
func NewReviewForm(api ReviewPoster, queue ReviewQueue, logger *zap.Logger) *ReviewForm {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReviewForm{api: api, queue: queue, logger: logger}
}

// Submit validates and posts a review
func (f *ReviewForm) Submit(ctx context.Context, productID uuid.UUID, rating int, comment string) (*ReviewResult, error) {
	comment = strings.TrimSpace(comment)
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}
	if utf8.RuneCountInString(comment) < MinCommentLength {
		return nil, ErrCommentTooShort
	}

	review, err := f.api.PostReview(ctx, productID, rating, comment)
	if err == nil {
		return &ReviewResult{Review: review, Message: "Thanks! Your review will appear once approved."}, nil
	}

	switch StatusOf(err) {
	case http.StatusNotFound:
		pending := PendingReview{ProductID: productID, Rating: rating, Comment: comment}
		if qerr := f.queue.QueueReview(pending); qerr != nil {
			f.logger.Error("Failed to queue review", zap.Error(qerr))
			return nil, ErrSubmissionFailed
		}
		f.logger.Info("Review endpoint unavailable, review queued", zap.Stringer("product_id", productID))
		return &ReviewResult{Queued: true, Message: "Thanks! Your review has been saved."}, nil
	case http.StatusUnauthorized:
		return nil, ErrAuthenticationRequired
	default:
		f.logger.Warn("Review submission failed", zap.Stringer("product_id", productID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrSubmissionFailed, err)
	}
}

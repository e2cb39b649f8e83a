package review

import (
	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shared"
)

const AggregateTypeReview = "Review"

const (
	EventTypeReviewSubmitted = "ReviewSubmitted"
	EventTypeReviewModerated = "ReviewModerated"
)

// ReviewSubmittedEvent is published when a shopper posts a review
type ReviewSubmittedEvent struct {
	shared.BaseDomainEvent
	ReviewID  uuid.UUID `json:"review_id"`
	ProductID uuid.UUID `json:"product_id"`
	AuthorID  uuid.UUID `json:"author_id"`
	Rating    int       `json:"rating"`
}

func NewReviewSubmittedEvent(r *Review) *ReviewSubmittedEvent {
	return &ReviewSubmittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReviewSubmitted, AggregateTypeReview, r.ID),
		ReviewID:        r.ID,
		ProductID:       r.ProductID,
		AuthorID:        r.AuthorID,
		Rating:          r.Rating,
	}
}

// ReviewModeratedEvent is published on approval or rejection
type ReviewModeratedEvent struct {
	shared.BaseDomainEvent
	ReviewID  uuid.UUID `json:"review_id"`
	ProductID uuid.UUID `json:"product_id"`
	OldStatus Status    `json:"old_status"`
	NewStatus Status    `json:"new_status"`
}

func NewReviewModeratedEvent(r *Review, old Status) *ReviewModeratedEvent {
	return &ReviewModeratedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReviewModerated, AggregateTypeReview, r.ID),
		ReviewID:        r.ID,
		ProductID:       r.ProductID,
		OldStatus:       old,
		NewStatus:       r.Status,
	}
}

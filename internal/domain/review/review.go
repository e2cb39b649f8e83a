package review

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shared"
)

// Status is the moderation state of a review
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// IsValid reports whether s is a known moderation state
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

const (
	MinRating        = 1
	MaxRating        = 5
	MinCommentLength = 10
	MaxCommentLength = 2000
)

// Review is a shopper's rating and comment on a product
type Review struct {
	shared.BaseAggregateRoot
	ProductID      uuid.UUID `gorm:"type:uuid;not null;index"`
	AuthorID       uuid.UUID `gorm:"type:uuid;not null;index"`
	AuthorName     string    `gorm:"type:varchar(100);not null"`
	Rating         int       `gorm:"not null"`
	Comment        string    `gorm:"type:text;not null"`
	Status         Status    `gorm:"type:varchar(20);not null;default:'pending';index"`
	ModerationNote string    `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (Review) TableName() string {
	return "reviews"
}

// NewReview creates a review awaiting moderation
func NewReview(productID, authorID uuid.UUID, authorName string, rating int, comment string) (*Review, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product is required")
	}
	if authorID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_AUTHOR", "Author is required")
	}
	if err := ValidateRating(rating); err != nil {
		return nil, err
	}
	comment = strings.TrimSpace(comment)
	if err := ValidateComment(comment); err != nil {
		return nil, err
	}
	authorName = strings.TrimSpace(authorName)
	if authorName == "" {
		authorName = "Anonymous"
	}

	r := &Review{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProductID:         productID,
		AuthorID:          authorID,
		AuthorName:        authorName,
		Rating:            rating,
		Comment:           comment,
		Status:            StatusPending,
	}
	r.AddDomainEvent(NewReviewSubmittedEvent(r))
	return r, nil
}

// Approve publishes the review on the product page
func (r *Review) Approve() error {
	if r.Status == StatusApproved {
		return shared.NewDomainError("ALREADY_APPROVED", "Review is already approved")
	}
	r.moderate(StatusApproved, "")
	return nil
}

// Reject hides the review, recording why
func (r *Review) Reject(note string) error {
	if r.Status == StatusRejected {
		return shared.NewDomainError("ALREADY_REJECTED", "Review is already rejected")
	}
	r.moderate(StatusRejected, strings.TrimSpace(note))
	return nil
}

func (r *Review) moderate(status Status, note string) {
	old := r.Status
	r.Status = status
	r.ModerationNote = note
	r.IncrementVersion()
	r.AddDomainEvent(NewReviewModeratedEvent(r, old))
}

// IsVisible reports whether shoppers see the review
func (r *Review) IsVisible() bool {
	return r.Status == StatusApproved
}

// ValidateRating checks the 1..5 star range
func ValidateRating(rating int) error {
	if rating < MinRating || rating > MaxRating {
		return shared.NewDomainError("INVALID_RATING", "Rating must be between 1 and 5")
	}
	return nil
}

// ValidateComment checks comment length on the trimmed text
func ValidateComment(comment string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(comment))
	if n < MinCommentLength {
		return shared.NewDomainError("INVALID_COMMENT", "Comment must be at least 10 characters")
	}
	if n > MaxCommentLength {
		return shared.NewDomainError("INVALID_COMMENT", "Comment cannot exceed 2000 characters")
	}
	return nil
}

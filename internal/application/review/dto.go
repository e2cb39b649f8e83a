package review

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/review"
)

// SubmitReviewRequest is the body of a review submission
type SubmitReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"required,max=2000"`
}

// RejectReviewRequest carries the moderation note shown to the author
type RejectReviewRequest struct {
	Note string `json:"note" binding:"max=500"`
}

// ReviewListFilter are the admin listing parameters
type ReviewListFilter struct {
	Status    string `form:"status" binding:"omitempty,oneof=pending approved rejected"`
	ProductID string `form:"product_id" binding:"omitempty,uuid"`
	Page      int    `form:"page" binding:"min=0"`
	PageSize  int    `form:"page_size" binding:"min=0,max=100"`
	OrderBy   string `form:"order_by"`
	OrderDir  string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// PublicListFilter are the storefront listing parameters
type PublicListFilter struct {
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=100"`
	OrderBy  string `form:"order_by" binding:"omitempty,oneof=created_at rating"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ReviewResponse represents a review in API responses
type ReviewResponse struct {
	ID             uuid.UUID `json:"id"`
	ProductID      uuid.UUID `json:"product_id"`
	AuthorID       uuid.UUID `json:"author_id"`
	AuthorName     string    `json:"author_name"`
	Rating         int       `json:"rating"`
	Comment        string    `json:"comment"`
	Status         string    `json:"status"`
	ModerationNote string    `json:"moderation_note,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ProductReviewsResponse is a page of approved reviews plus the rating summary
type ProductReviewsResponse struct {
	Reviews []ReviewResponse `json:"reviews"`
	Summary review.Summary   `json:"summary"`
}

// ToReviewResponse converts a domain review to a response
func ToReviewResponse(r *review.Review) ReviewResponse {
	return ReviewResponse{
		ID:             r.ID,
		ProductID:      r.ProductID,
		AuthorID:       r.AuthorID,
		AuthorName:     r.AuthorName,
		Rating:         r.Rating,
		Comment:        r.Comment,
		Status:         string(r.Status),
		ModerationNote: r.ModerationNote,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

// ToReviewResponses converts a slice of reviews
func ToReviewResponses(reviews []review.Review) []ReviewResponse {
	out := make([]ReviewResponse, len(reviews))
	for i := range reviews {
		out[i] = ToReviewResponse(&reviews[i])
	}
	return out
}

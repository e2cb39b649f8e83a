// Package review handles review submission, the public review listing and
// moderation.
package review

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/application/event"
	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopfront/backend/internal/domain/identity"
	"github.com/shopfront/backend/internal/domain/review"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/infrastructure/telemetry"
)

// Filter keys understood by review.Repository
const (
	filterStatus    = "status"
	filterProductID = "product_id"
)

// Service handles review operations
type Service struct {
	reviewRepo  review.Repository
	productRepo catalog.ProductRepository
	userRepo    identity.UserRepository
	events      *event.Dispatcher
}

// NewService creates a new review Service
func NewService(
	reviewRepo review.Repository,
	productRepo catalog.ProductRepository,
	userRepo identity.UserRepository,
	events *event.Dispatcher,
) *Service {
	return &Service{
		reviewRepo:  reviewRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		events:      events,
	}
}

// Submit stores a pending review of an active product by authorID
func (s *Service) Submit(ctx context.Context, productID, authorID uuid.UUID, req SubmitReviewRequest) (*ReviewResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "review", "submit", "product.id", productID.String(), "review.rating", req.Rating)
	defer span.End()

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if !product.IsActive() {
		return nil, shared.ErrNotFound
	}

	author, err := s.userRepo.FindByID(ctx, authorID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrUnauthorized
		}
		telemetry.RecordError(span, err)
		return nil, err
	}

	rv, err := review.NewReview(productID, authorID, author.NameOrEmail(), req.Rating, req.Comment)
	if err != nil {
		return nil, err
	}
	if err := s.reviewRepo.Save(ctx, rv); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.events.Dispatch(ctx, rv)

	response := ToReviewResponse(rv)
	return &response, nil
}

// ListForProduct returns approved reviews of a product with its summary
func (s *Service) ListForProduct(ctx context.Context, productID uuid.UUID, f PublicListFilter) (*ProductReviewsResponse, int64, error) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, 0, err
	}
	filter := shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		OrderBy:  f.OrderBy,
		OrderDir: f.OrderDir,
	}.Normalized()
	filter.Filters[filterStatus] = review.StatusApproved
	filter.Filters[filterProductID] = productID

	reviews, err := s.reviewRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.reviewRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	counts, err := s.reviewRepo.RatingCounts(ctx, productID)
	if err != nil {
		return nil, 0, err
	}
	return &ProductReviewsResponse{
		Reviews: ToReviewResponses(reviews),
		Summary: review.SummaryFromCounts(counts),
	}, total, nil
}

// List is the admin listing, optionally filtered by status and product
func (s *Service) List(ctx context.Context, f ReviewListFilter) ([]ReviewResponse, int64, error) {
	filter := shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		OrderBy:  f.OrderBy,
		OrderDir: f.OrderDir,
	}.Normalized()
	if f.Status != "" {
		status := review.Status(f.Status)
		if !status.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_STATUS", "Unknown review status: "+f.Status)
		}
		filter.Filters[filterStatus] = status
	}
	if f.ProductID != "" {
		id, err := uuid.Parse(f.ProductID)
		if err != nil {
			return nil, 0, shared.NewDomainError("INVALID_INPUT", "Invalid product_id")
		}
		filter.Filters[filterProductID] = id
	}

	reviews, err := s.reviewRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.reviewRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return ToReviewResponses(reviews), total, nil
}

// GetByID retrieves any review by ID
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*ReviewResponse, error) {
	rv, err := s.reviewRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToReviewResponse(rv)
	return &response, nil
}

// Approve publishes a review
func (s *Service) Approve(ctx context.Context, id uuid.UUID) (*ReviewResponse, error) {
	return s.moderate(ctx, id, func(rv *review.Review) error { return rv.Approve() })
}

// Reject hides a review with a note
func (s *Service) Reject(ctx context.Context, id uuid.UUID, req RejectReviewRequest) (*ReviewResponse, error) {
	return s.moderate(ctx, id, func(rv *review.Review) error { return rv.Reject(req.Note) })
}

// Delete removes a review
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.reviewRepo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.reviewRepo.Delete(ctx, id)
}

func (s *Service) moderate(ctx context.Context, id uuid.UUID, apply func(*review.Review) error) (*ReviewResponse, error) {
	rv, err := s.reviewRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(rv); err != nil {
		return nil, err
	}
	if err := s.reviewRepo.Save(ctx, rv); err != nil {
		return nil, err
	}
	s.events.Dispatch(ctx, rv)
	response := ToReviewResponse(rv)
	return &response, nil
}

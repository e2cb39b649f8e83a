// Package storefront serves the shopper-facing product queries: the product
// detail page, recommendation lists and the recently viewed list.
package storefront

import (
	"context"
	"errors"

	"github.com/google/uuid"
	catalogapp "github.com/shopfront/backend/internal/application/catalog"
	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopfront/backend/internal/domain/review"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/domain/storefront"
	"github.com/shopfront/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

const (
	defaultListLimit = 4
	maxListLimit     = 20
)

// RecentlyViewedStore keeps the per-user recently viewed product IDs
type RecentlyViewedStore interface {
	Push(ctx context.Context, userID, productID uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

// Service answers storefront product queries. Only active products are
// ever returned.
type Service struct {
	productRepo catalog.ProductRepository
	reviewRepo  review.Repository
	recent      RecentlyViewedStore
	logger      *zap.Logger
}

// NewService creates a new storefront Service
func NewService(
	productRepo catalog.ProductRepository,
	reviewRepo review.Repository,
	recent RecentlyViewedStore,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		productRepo: productRepo,
		reviewRepo:  reviewRepo,
		recent:      recent,
		logger:      logger,
	}
}

// GetProductDetail returns the detail view of an active product. When
// viewer is set the product is pushed onto the viewer's recently viewed
// list; a failure there is logged and does not fail the request.
func (s *Service) GetProductDetail(ctx context.Context, id uuid.UUID, viewer *uuid.UUID) (*ProductDetailResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "storefront", "product_detail", "product.id", id.String())
	defer span.End()

	product, err := s.activeProduct(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	related, err := s.activeByIDs(ctx, product.RelatedProductIDs, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	counts, err := s.reviewRepo.RatingCounts(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if viewer != nil && s.recent != nil {
		if err := s.recent.Push(ctx, *viewer, id); err != nil {
			s.logger.Warn("Failed to record recently viewed product",
				zap.String("user_id", viewer.String()),
				zap.String("product_id", id.String()),
				zap.Error(err))
		}
	}

	view := storefront.NewDetailView(*product, related)
	bought := make([]catalogapp.ProductResponse, 0, len(related)+1)
	bought = append(bought, catalogapp.ToProductResponse(product))
	bought = append(bought, catalogapp.ToProductResponses(view.BoughtTogether)...)

	return &ProductDetailResponse{
		Product:             catalogapp.ToProductResponse(product),
		BoughtTogether:      bought,
		BoughtTogetherTotal: view.BundleTotalPrice(),
		SelectedColor:       view.SelectedColor,
		SelectedImage:       view.SelectedImage,
		Gallery:             view.Gallery,
		Reviews:             review.SummaryFromCounts(counts),
	}, nil
}

// ListProducts is the public product query; the status filter is forced to
// active
func (s *Service) ListProducts(ctx context.Context, filter catalogapp.ProductListFilter) ([]catalogapp.ProductResponse, int64, error) {
	filter.Status = string(catalog.ProductStatusActive)
	domainFilter, err := filter.ToFilter()
	if err != nil {
		return nil, 0, err
	}
	products, err := s.productRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.productRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return catalogapp.ToProductResponses(products), total, nil
}

// RandomProducts samples active products
func (s *Service) RandomProducts(ctx context.Context, q RandomQuery) ([]catalogapp.ProductResponse, error) {
	exclude, err := catalogapp.ParseIDList(q.Exclude)
	if err != nil {
		return nil, err
	}
	products, err := s.productRepo.FindRandom(ctx, clampLimit(q.Limit), exclude)
	if err != nil {
		return nil, err
	}
	return catalogapp.ToProductResponses(products), nil
}

// RelatedProducts returns the active products linked to id
func (s *Service) RelatedProducts(ctx context.Context, id uuid.UUID) ([]catalogapp.ProductResponse, error) {
	product, err := s.activeProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	related, err := s.activeByIDs(ctx, product.RelatedProductIDs, id)
	if err != nil {
		return nil, err
	}
	return catalogapp.ToProductResponses(related), nil
}

// Recommended tries the products related to q.RelatedTo, falls back to a
// random sample, and finally returns an empty list with a message. The
// related-to product itself is never recommended.
func (s *Service) Recommended(ctx context.Context, q RecommendedQuery) (*RecommendationResponse, error) {
	limit := clampLimit(q.Limit)
	var exclude []uuid.UUID

	if q.RelatedTo != "" {
		id, err := uuid.Parse(q.RelatedTo)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_INPUT", "Invalid related_to")
		}
		exclude = []uuid.UUID{id}

		related, err := s.RelatedProducts(ctx, id)
		switch {
		case err == nil && len(related) > 0:
			if len(related) > limit {
				related = related[:limit]
			}
			return &RecommendationResponse{Products: related, Source: SourceRelated}, nil
		case err != nil && !errors.Is(err, shared.ErrNotFound):
			s.logger.Warn("Related products query failed, falling back to random", zap.Error(err))
		}
	}

	random, err := s.productRepo.FindRandom(ctx, limit, exclude)
	if err != nil {
		s.logger.Warn("Random products query failed", zap.Error(err))
	} else if len(random) > 0 {
		return &RecommendationResponse{Products: catalogapp.ToProductResponses(random), Source: SourceRandom}, nil
	}

	return &RecommendationResponse{
		Products: []catalogapp.ProductResponse{},
		Source:   SourceNone,
		Message:  NoRecommendationsMessage,
	}, nil
}

// RecentlyViewed returns the user's recently viewed active products, newest
// first
func (s *Service) RecentlyViewed(ctx context.Context, userID uuid.UUID) ([]catalogapp.ProductResponse, error) {
	if s.recent == nil {
		return []catalogapp.ProductResponse{}, nil
	}
	ids, err := s.recent.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	products, err := s.activeByIDs(ctx, ids, uuid.Nil)
	if err != nil {
		return nil, err
	}
	return catalogapp.ToProductResponses(products), nil
}

func (s *Service) activeProduct(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !product.IsActive() {
		return nil, shared.ErrNotFound
	}
	return product, nil
}

// activeByIDs loads ids in the given order, dropping inactive products,
// missing ones and exclude
func (s *Service) activeByIDs(ctx context.Context, ids []uuid.UUID, exclude uuid.UUID) ([]catalog.Product, error) {
	if len(ids) == 0 {
		return []catalog.Product{}, nil
	}
	found, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]catalog.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	out := make([]catalog.Product, 0, len(ids))
	for _, id := range ids {
		p, ok := byID[id]
		if !ok || !p.IsActive() {
			continue
		}
		out = append(out, p)
	}
	return storefront.Without(out, func(p catalog.Product) uuid.UUID { return p.ID }, exclude), nil
}

func clampLimit(limit int) int {
	if limit < 1 {
		return defaultListLimit
	}
	return min(limit, maxListLimit)
}

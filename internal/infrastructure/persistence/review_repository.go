package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopfront/backend/internal/domain/review"
	"github.com/shopfront/backend/internal/domain/shared"
)

var reviewSortFields = commonSortFields.with("rating", "status")

// GormReviewRepository implements review.Repository using GORM
type GormReviewRepository struct {
	db *gorm.DB
}

// NewGormReviewRepository creates a new GormReviewRepository
func NewGormReviewRepository(db *gorm.DB) *GormReviewRepository {
	return &GormReviewRepository{db: db}
}

// FindByID finds a review by ID
func (r *GormReviewRepository) FindByID(ctx context.Context, id uuid.UUID) (*review.Review, error) {
	var rv review.Review
	if err := conn(ctx, r.db).First(&rv, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &rv, nil
}

// FindAll finds reviews matching the filter
func (r *GormReviewRepository) FindAll(ctx context.Context, filter shared.Filter) ([]review.Review, error) {
	var reviews []review.Review
	query := r.applyFilter(conn(ctx, r.db).Model(&review.Review{}), filter)
	query = paginate(query, filter, reviewSortFields, "created_at")
	if err := query.Find(&reviews).Error; err != nil {
		return nil, err
	}
	return reviews, nil
}

// Count counts reviews matching the filter
func (r *GormReviewRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.applyFilter(conn(ctx, r.db).Model(&review.Review{}), filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// RatingCounts returns approved review counts per star for a product
func (r *GormReviewRepository) RatingCounts(ctx context.Context, productID uuid.UUID) (map[int]int, error) {
	var rows []struct {
		Rating int
		Total  int
	}
	if err := conn(ctx, r.db).Model(&review.Review{}).
		Select("rating, COUNT(*) AS total").
		Where("product_id = ? AND status = ?", productID, review.StatusApproved).
		Group("rating").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[int]int, len(rows))
	for _, row := range rows {
		counts[row.Rating] = row.Total
	}
	return counts, nil
}

// Save creates or updates a review
func (r *GormReviewRepository) Save(ctx context.Context, rv *review.Review) error {
	return conn(ctx, r.db).Save(rv).Error
}

// Delete deletes a review
func (r *GormReviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(conn(ctx, r.db), &review.Review{}, id)
}

func (r *GormReviewRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = search(query, filter.Search, "comment", "author_name")
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "product_id":
			query = query.Where("product_id = ?", value)
		case "author_id":
			query = query.Where("author_id = ?", value)
		}
	}
	return query
}

var _ review.Repository = (*GormReviewRepository)(nil)

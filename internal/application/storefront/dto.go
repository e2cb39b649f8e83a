package storefront

import (
	catalogapp "github.com/shopfront/backend/internal/application/catalog"
	"github.com/shopfront/backend/internal/domain/review"
)

// Recommendation sources
const (
	SourceRelated = "related"
	SourceRandom  = "random"
	SourceNone    = "none"
)

// NoRecommendationsMessage is shown when neither query yields products
const NoRecommendationsMessage = "No recommendations available right now"

// ProductDetailResponse is everything the product page needs in one call
type ProductDetailResponse struct {
	Product        catalogapp.ProductResponse   `json:"product"`
	BoughtTogether []catalogapp.ProductResponse `json:"bought_together"`
	// BoughtTogetherTotal is the price of the default selection, which is
	// the main product alone
	BoughtTogetherTotal string         `json:"bought_together_total"`
	SelectedColor       string         `json:"selected_color,omitempty"`
	SelectedImage       string         `json:"selected_image"`
	Gallery             []string       `json:"gallery"`
	Reviews             review.Summary `json:"reviews"`
}

// RecommendationResponse is a product list tagged with the query that
// produced it
type RecommendationResponse struct {
	Products []catalogapp.ProductResponse `json:"products"`
	Source   string                       `json:"source"`
	Message  string                       `json:"message,omitempty"`
}

// RandomQuery are the parameters of the random product endpoint
type RandomQuery struct {
	Limit   int    `form:"limit" binding:"min=0,max=20"`
	Exclude string `form:"exclude"`
}

// RecommendedQuery are the parameters of the recommendation endpoint
type RecommendedQuery struct {
	RelatedTo string `form:"related_to" binding:"omitempty,uuid"`
	Limit     int    `form:"limit" binding:"min=0,max=20"`
}

package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	catalogapp "github.com/shopfront/backend/internal/application/catalog"
	"github.com/shopfront/backend/internal/application/storefront"
	"github.com/shopfront/backend/internal/interfaces/http/middleware"
)

// StorefrontHandler serves the public product pages and the
// recommendation queries behind them.
type StorefrontHandler struct {
	BaseHandler
	storefront *storefront.Service
}

// NewStorefrontHandler creates a new StorefrontHandler
func NewStorefrontHandler(svc *storefront.Service) *StorefrontHandler {
	return &StorefrontHandler{storefront: svc}
}

// ListProducts godoc
// @ID           listStorefrontProducts
// @Summary      List active products
// @Description  With category_id and exclude it is the "similar products" query.
// @Tags         storefront
// @Produce      json
// @Param        search query string false "Search in name and description"
// @Param        category_id query string false "Category filter" format(uuid)
// @Param        shop_id query string false "Shop filter" format(uuid)
// @Param        on_sale query bool false "Only discounted products"
// @Param        in_stock query bool false "Only products in stock"
// @Param        min_price query string false "Minimum price"
// @Param        max_price query string false "Maximum price"
// @Param        exclude query string false "Comma separated product IDs to leave out"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20) maximum(100)
// @Param        order_by query string false "Sort field"
// @Param        order_dir query string false "Sort direction" Enums(asc, desc)
// @Success      200 {object} dto.Response{data=[]catalogapp.ProductResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /products [get]
func (h *StorefrontHandler) ListProducts(c *gin.Context) {
	var filter catalogapp.ProductListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	products, total, err := h.storefront.ListProducts(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, size := pageOf(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, products, total, page, size)
}

// RandomProducts godoc
// @ID           listRandomProducts
// @Summary      List random products
// @Description  List random products
// @Tags         storefront
// @Produce      json
// @Param        limit query int false "Number of products" default(4) maximum(20)
// @Param        exclude query string false "Comma separated product IDs to leave out"
// @Success      200 {object} dto.Response{data=[]catalogapp.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /products/random [get]
func (h *StorefrontHandler) RandomProducts(c *gin.Context) {
	var q storefront.RandomQuery
	if !h.bindQuery(c, &q) {
		return
	}

	products, err := h.storefront.RandomProducts(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, products)
}

// Recommended godoc
// @ID           listRecommendedProducts
// @Summary      List recommended products
// @Description  An empty result is still a success carrying a message.
// @Tags         storefront
// @Produce      json
// @Param        related_to query string false "Product the recommendations relate to" format(uuid)
// @Param        limit query int false "Number of products" maximum(20)
// @Success      200 {object} dto.Response{data=storefront.RecommendationResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /products/recommended [get]
func (h *StorefrontHandler) Recommended(c *gin.Context) {
	var q storefront.RecommendedQuery
	if !h.bindQuery(c, &q) {
		return
	}

	rec, err := h.storefront.Recommended(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rec)
}

// GetProduct godoc
// @ID           getStorefrontProduct
// @Summary      Get a product page
// @Description  Signed-in viewers get the product recorded in their recently viewed list.
// @Tags         storefront
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} dto.Response{data=storefront.ProductDetailResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /products/{id} [get]
func (h *StorefrontHandler) GetProduct(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	var viewer *uuid.UUID
	if s, ok := middleware.CurrentUser(c); ok {
		viewer = &s.UserID
	}

	detail, err := h.storefront.GetProductDetail(c.Request.Context(), id, viewer)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, detail)
}

// RelatedProducts godoc
// @ID           listRelatedProducts
// @Summary      List related products
// @Description  List related products
// @Tags         storefront
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]catalogapp.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /products/{id}/related [get]
func (h *StorefrontHandler) RelatedProducts(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	products, err := h.storefront.RelatedProducts(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, products)
}

// RecentlyViewed godoc
// @ID           listRecentlyViewed
// @Summary      List the caller's recently viewed products
// @Description  List the caller's recently viewed products
// @Tags         storefront
// @Produce      json
// @Success      200 {object} dto.Response{data=[]catalogapp.ProductResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /me/recently-viewed [get]
func (h *StorefrontHandler) RecentlyViewed(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	products, err := h.storefront.RecentlyViewed(c.Request.Context(), s.UserID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, products)
}

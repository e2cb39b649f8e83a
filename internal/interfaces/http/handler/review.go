package handler

import (
	"github.com/gin-gonic/gin"
	reviewapp "github.com/shopfront/backend/internal/application/review"
)

// ReviewHandler serves review submission, the public review list of a
// product and review moderation.
type ReviewHandler struct {
	BaseHandler
	reviews *reviewapp.Service
}

// NewReviewHandler creates a new ReviewHandler
func NewReviewHandler(svc *reviewapp.Service) *ReviewHandler {
	return &ReviewHandler{reviews: svc}
}

// Submit godoc
// @ID           submitReview
// @Summary      Review a product
// @Description  The review starts pending; an unknown product answers 404.
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Param        request body reviewapp.SubmitReviewRequest true "Submit review request"
// @Success      201 {object} dto.Response{data=reviewapp.ReviewResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /products/{id}/reviews [post]
func (h *ReviewHandler) Submit(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	productID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req reviewapp.SubmitReviewRequest
	if !h.bindJSON(c, &req) {
		return
	}

	review, err := h.reviews.Submit(c.Request.Context(), productID, s.UserID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, review)
}

// ListForProduct godoc
// @ID           listProductReviews
// @Summary      List the approved reviews of a product
// @Description  Approved reviews only
// @Tags         reviews
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20) maximum(100)
// @Param        order_by query string false "Sort field" Enums(created_at, rating)
// @Param        order_dir query string false "Sort direction" Enums(asc, desc)
// @Success      200 {object} dto.Response{data=reviewapp.ProductReviewsResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /products/{id}/reviews [get]
func (h *ReviewHandler) ListForProduct(c *gin.Context) {
	productID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var filter reviewapp.PublicListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	result, total, err := h.reviews.ListForProduct(c.Request.Context(), productID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, size := pageOf(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, result, total, page, size)
}

// List godoc
// @ID           listReviews
// @Summary      List reviews for moderation
// @Description  List reviews for moderation
// @Tags         reviews
// @Produce      json
// @Param        status query string false "Review status" Enums(pending, approved, rejected)
// @Param        product_id query string false "Product filter" format(uuid)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20) maximum(100)
// @Param        order_by query string false "Sort field"
// @Param        order_dir query string false "Sort direction" Enums(asc, desc)
// @Success      200 {object} dto.Response{data=[]reviewapp.ReviewResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/reviews [get]
func (h *ReviewHandler) List(c *gin.Context) {
	var filter reviewapp.ReviewListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	reviews, total, err := h.reviews.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, size := pageOf(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, reviews, total, page, size)
}

// Get godoc
// @ID           getReview
// @Summary      Get a review
// @Description  Get a review
// @Tags         reviews
// @Produce      json
// @Param        id path string true "Review ID" format(uuid)
// @Success      200 {object} dto.Response{data=reviewapp.ReviewResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/reviews/{id} [get]
func (h *ReviewHandler) Get(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	review, err := h.reviews.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, review)
}

// Approve godoc
// @ID           approveReview
// @Summary      Approve a review
// @Description  Approve a review
// @Tags         reviews
// @Produce      json
// @Param        id path string true "Review ID" format(uuid)
// @Success      200 {object} dto.Response{data=reviewapp.ReviewResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/reviews/{id}/approve [post]
func (h *ReviewHandler) Approve(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	review, err := h.reviews.Approve(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, review)
}

// Reject godoc
// @ID           rejectReview
// @Summary      Reject a review
// @Description  Reject a review
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Param        id path string true "Review ID" format(uuid)
// @Param        request body reviewapp.RejectReviewRequest true "Reject review request"
// @Success      200 {object} dto.Response{data=reviewapp.ReviewResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/reviews/{id}/reject [post]
func (h *ReviewHandler) Reject(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req reviewapp.RejectReviewRequest
	if !h.bindJSON(c, &req) {
		return
	}
	review, err := h.reviews.Reject(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, review)
}

// Delete godoc
// @ID           deleteReview
// @Summary      Delete a review
// @Description  Delete a review
// @Tags         reviews
// @Produce      json
// @Param        id path string true "Review ID" format(uuid)
// @Success      204 "No Content"
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/reviews/{id} [delete]
func (h *ReviewHandler) Delete(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.reviews.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

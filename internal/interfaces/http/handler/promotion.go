package handler

import (
	"github.com/gin-gonic/gin"
	promotionapp "github.com/shopfront/backend/internal/application/promotion"
)

// PromotionHandler serves the admin promotion panel and the shopper's
// code preview.
type PromotionHandler struct {
	BaseHandler
	promotions *promotionapp.Service
}

// NewPromotionHandler creates a new PromotionHandler
func NewPromotionHandler(svc *promotionapp.Service) *PromotionHandler {
	return &PromotionHandler{promotions: svc}
}

// Preview godoc
// @ID           previewPromotion
// @Summary      Price the cart with a promotion code
// @Description  Prices the caller's cart with the code without redeeming it.
// @Tags         promotions
// @Accept       json
// @Produce      json
// @Param        request body promotionapp.PreviewRequest true "Preview request"
// @Success      200 {object} dto.Response{data=promotionapp.PreviewResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /promotions/preview [post]
func (h *PromotionHandler) Preview(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req promotionapp.PreviewRequest
	if !h.bindJSON(c, &req) {
		return
	}
	preview, err := h.promotions.Preview(c.Request.Context(), s.UserID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, preview)
}

// List godoc
// @ID           listPromotions
// @Summary      List promotions
// @Description  List promotions
// @Tags         promotions
// @Produce      json
// @Param        search query string false "Search by code or name"
// @Param        status query string false "Promotion status" Enums(active, scheduled, expired, inactive, exhausted)
// @Param        type query string false "Promotion type" Enums(percentage, fixed_amount, free_shipping, buy_x_get_y)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20) maximum(100)
// @Param        order_by query string false "Sort field"
// @Param        order_dir query string false "Sort direction" Enums(asc, desc)
// @Success      200 {object} dto.Response{data=[]promotionapp.PromotionResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/promotions [get]
func (h *PromotionHandler) List(c *gin.Context) {
	var filter promotionapp.PromotionListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	promotions, total, err := h.promotions.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, size := pageOf(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, promotions, total, page, size)
}

// Get godoc
// @ID           getPromotion
// @Summary      Get a promotion
// @Description  Get a promotion
// @Tags         promotions
// @Produce      json
// @Param        id path string true "Promotion ID" format(uuid)
// @Success      200 {object} dto.Response{data=promotionapp.PromotionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/promotions/{id} [get]
func (h *PromotionHandler) Get(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	promotion, err := h.promotions.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, promotion)
}

// Create godoc
// @ID           createPromotion
// @Summary      Create a promotion
// @Description  Create a promotion
// @Tags         promotions
// @Accept       json
// @Produce      json
// @Param        request body promotionapp.CreatePromotionRequest true "Create promotion request"
// @Success      201 {object} dto.Response{data=promotionapp.PromotionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/promotions [post]
func (h *PromotionHandler) Create(c *gin.Context) {
	var req promotionapp.CreatePromotionRequest
	if !h.bindJSON(c, &req) {
		return
	}
	promotion, err := h.promotions.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, promotion)
}

// Update godoc
// @ID           updatePromotion
// @Summary      Update a promotion
// @Description  Update a promotion
// @Tags         promotions
// @Accept       json
// @Produce      json
// @Param        id path string true "Promotion ID" format(uuid)
// @Param        request body promotionapp.UpdatePromotionRequest true "Update promotion request"
// @Success      200 {object} dto.Response{data=promotionapp.PromotionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/promotions/{id} [put]
func (h *PromotionHandler) Update(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req promotionapp.UpdatePromotionRequest
	if !h.bindJSON(c, &req) {
		return
	}
	promotion, err := h.promotions.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, promotion)
}

// SetActive godoc
// @ID           setPromotionActive
// @Summary      Switch a promotion on or off
// @Description  Switch a promotion on or off
// @Tags         promotions
// @Accept       json
// @Produce      json
// @Param        id path string true "Promotion ID" format(uuid)
// @Param        request body promotionapp.SetActiveRequest true "Set active request"
// @Success      200 {object} dto.Response{data=promotionapp.PromotionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/promotions/{id}/active [put]
func (h *PromotionHandler) SetActive(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req promotionapp.SetActiveRequest
	if !h.bindJSON(c, &req) {
		return
	}
	promotion, err := h.promotions.SetActive(c.Request.Context(), id, req.Active)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, promotion)
}

// Delete godoc
// @ID           deletePromotion
// @Summary      Delete a promotion
// @Description  Delete a promotion
// @Tags         promotions
// @Produce      json
// @Param        id path string true "Promotion ID" format(uuid)
// @Success      204 "No Content"
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/promotions/{id} [delete]
func (h *PromotionHandler) Delete(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.promotions.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

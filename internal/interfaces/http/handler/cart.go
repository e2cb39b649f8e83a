package handler

import (
	"github.com/gin-gonic/gin"
	cartapp "github.com/shopfront/backend/internal/application/cart"
)

// CartHandler serves the caller's shopping cart
type CartHandler struct {
	BaseHandler
	carts *cartapp.Service
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(svc *cartapp.Service) *CartHandler {
	return &CartHandler{carts: svc}
}

// Get godoc
// @ID           getCart
// @Summary      Get the caller's cart
// @Description  Get the caller's cart
// @Tags         cart
// @Produce      json
// @Success      200 {object} dto.Response{data=cartapp.CartResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /cart [get]
func (h *CartHandler) Get(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	cart, err := h.carts.Get(c.Request.Context(), s.UserID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// AddItem godoc
// @ID           addCartItem
// @Summary      Add a product to the cart
// @Description  Adding a product already in the cart with the same options increases that line.
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        request body cartapp.AddItemRequest true "Add item request"
// @Success      200 {object} dto.Response{data=cartapp.CartResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /cart/items [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req cartapp.AddItemRequest
	if !h.bindJSON(c, &req) {
		return
	}
	cart, err := h.carts.AddItem(c.Request.Context(), s.UserID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// UpdateItem godoc
// @ID           updateCartItem
// @Summary      Change a cart line
// @Description  Change a cart line
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        lineId path string true "Cart line ID" format(uuid)
// @Param        request body cartapp.UpdateItemRequest true "Update item request"
// @Success      200 {object} dto.Response{data=cartapp.CartResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /cart/items/{lineId} [put]
func (h *CartHandler) UpdateItem(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	lineID, ok := h.uuidParam(c, "lineId")
	if !ok {
		return
	}
	var req cartapp.UpdateItemRequest
	if !h.bindJSON(c, &req) {
		return
	}
	cart, err := h.carts.UpdateItem(c.Request.Context(), s.UserID, lineID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// RemoveItem godoc
// @ID           removeCartItem
// @Summary      Remove a cart line
// @Description  Remove a cart line
// @Tags         cart
// @Produce      json
// @Param        lineId path string true "Cart line ID" format(uuid)
// @Success      200 {object} dto.Response{data=cartapp.CartResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /cart/items/{lineId} [delete]
func (h *CartHandler) RemoveItem(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	lineID, ok := h.uuidParam(c, "lineId")
	if !ok {
		return
	}
	cart, err := h.carts.RemoveItem(c.Request.Context(), s.UserID, lineID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// Clear godoc
// @ID           clearCart
// @Summary      Empty the cart
// @Description  Empty the cart
// @Tags         cart
// @Produce      json
// @Success      204 "No Content"
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /cart [delete]
func (h *CartHandler) Clear(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := h.carts.Clear(c.Request.Context(), s.UserID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

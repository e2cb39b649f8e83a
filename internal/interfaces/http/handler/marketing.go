package handler

import (
	"github.com/gin-gonic/gin"
	marketingapp "github.com/shopfront/backend/internal/application/marketing"
)

// MarketingHandler serves the newsletter and the store's about page
type MarketingHandler struct {
	BaseHandler
	marketing *marketingapp.Service
}

// NewMarketingHandler creates a new MarketingHandler
func NewMarketingHandler(svc *marketingapp.Service) *MarketingHandler {
	return &MarketingHandler{marketing: svc}
}

// Subscribe godoc
// @ID           subscribeNewsletter
// @Summary      Subscribe to the newsletter
// @Description  Subscribing twice is not an error.
// @Tags         marketing
// @Accept       json
// @Produce      json
// @Param        request body marketingapp.SubscribeRequest true "Subscribe request"
// @Success      200 {object} dto.Response{data=marketingapp.SubscriptionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /newsletter/subscribe [post]
func (h *MarketingHandler) Subscribe(c *gin.Context) {
	var req marketingapp.SubscribeRequest
	if !h.bindJSON(c, &req) {
		return
	}
	sub, err := h.marketing.Subscribe(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sub)
}

// Unsubscribe godoc
// @ID           unsubscribeNewsletter
// @Summary      Unsubscribe from the newsletter
// @Description  Unsubscribe from the newsletter
// @Tags         marketing
// @Accept       json
// @Produce      json
// @Param        request body marketingapp.UnsubscribeRequest true "Unsubscribe request"
// @Success      200 {object} dto.Response{data=marketingapp.SubscriptionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /newsletter/unsubscribe [post]
func (h *MarketingHandler) Unsubscribe(c *gin.Context) {
	var req marketingapp.UnsubscribeRequest
	if !h.bindJSON(c, &req) {
		return
	}
	sub, err := h.marketing.Unsubscribe(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sub)
}

// About godoc
// @ID           getAbout
// @Summary      Get the store profile
// @Description  Get the store profile
// @Tags         marketing
// @Produce      json
// @Success      200 {object} dto.Response{data=marketingapp.AboutResponse}
// @Router       /about [get]
func (h *MarketingHandler) About(c *gin.Context) {
	h.Success(c, h.marketing.About(c.Request.Context()))
}

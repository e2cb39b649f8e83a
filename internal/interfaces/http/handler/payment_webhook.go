package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	tradeapp "github.com/shopfront/backend/internal/application/trade"
	"github.com/shopfront/backend/internal/interfaces/http/dto"
)

// Stripe payloads are small; the raw body is needed for the signature.
const maxWebhookPayloadSize = 65536

// PaymentWebhookHandler receives payment gateway notifications. The route is
// unauthenticated; the signature header is what authenticates the caller.
type PaymentWebhookHandler struct {
	BaseHandler
	webhooks *tradeapp.PaymentWebhookService
}

// NewPaymentWebhookHandler creates a new PaymentWebhookHandler
func NewPaymentWebhookHandler(webhooks *tradeapp.PaymentWebhookService) *PaymentWebhookHandler {
	return &PaymentWebhookHandler{webhooks: webhooks}
}

// WebhookAck is the body returned to the gateway
type WebhookAck struct {
	Received bool `json:"received"`
}

// HandleStripe godoc
// @ID           handleStripeWebhook
// @Summary      Receive a Stripe event
// @Description  Non-2xx answers make Stripe redeliver, so only transient failures surface as 5xx.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        Stripe-Signature header string true "Stripe signature header"
// @Param        payload body object true "Stripe event payload"
// @Success      200 {object} dto.Response{data=WebhookAck}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      413 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /webhooks/stripe [post]
func (h *PaymentWebhookHandler) HandleStripe(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookPayloadSize+1))
	if err != nil {
		h.BadRequest(c, "Failed to read request body")
		return
	}
	if len(payload) > maxWebhookPayloadSize {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeTooLarge, "Payload too large")
		return
	}

	signature := c.GetHeader("Stripe-Signature")
	if signature == "" {
		h.Error(c, http.StatusBadRequest, "INVALID_SIGNATURE", "Missing Stripe-Signature header")
		return
	}

	if err := h.webhooks.Handle(c.Request.Context(), payload, signature); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, WebhookAck{Received: true})
}

package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/application/payment"
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/shared"
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/interfaces/http/dto"
)

// signatureHeaders maps provider names to the header carrying the
// webhook signature.
var signatureHeaders = map[string]string{
	"stripe":   "Stripe-Signature",
	"paystack": "x-paystack-signature",
}

// PaymentWebhookHandler receives payment provider webhooks and hands
// them to the event guard. Status codes matter to providers: 401 tells
// them the delivery was rejected, 200 stops redelivery.
type PaymentWebhookHandler struct {
	BaseHandler
	guard  *payment.EventGuard
	logger *zap.Logger
}

// NewPaymentWebhookHandler creates a new payment webhook handler
func NewPaymentWebhookHandler(guard *payment.EventGuard, logger *zap.Logger) *PaymentWebhookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentWebhookHandler{
		guard:  guard,
		logger: logger,
	}
}

// RegisterRoutes registers payment webhook routes
func (h *PaymentWebhookHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/webhooks/payment/:provider", h.Receive)
}

// PaymentWebhookResponse reports what admitting the event did
type PaymentWebhookResponse struct {
	Outcome   string `json:"outcome"`
	Duplicate bool   `json:"duplicate"`
}

// Receive verifies and processes one webhook delivery
func (h *PaymentWebhookHandler) Receive(c *gin.Context) {
	providerName := c.Param("provider")

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.BadRequest(c, "Failed to read request body")
		return
	}

	signature := c.GetHeader(signatureHeader(providerName))

	result, err := h.guard.Admit(c.Request.Context(), providerName, body, signature)
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrProviderNotRegistered):
			h.NotFound(c, "Unknown payment provider")
		case errors.Is(err, shared.ErrSignatureInvalid):
			// Rejected without touching state; the provider should
			// treat this as a failed delivery.
			h.Error(c, http.StatusUnauthorized, dto.ErrCodeSignatureInvalid, "Webhook signature verification failed")
		default:
			h.logger.Error("Payment webhook processing failed",
				zap.String("provider", providerName),
				zap.Error(err))
			h.InternalError(c, "Failed to process webhook")
		}
		return
	}

	h.Success(c, PaymentWebhookResponse{
		Outcome:   string(result.Outcome),
		Duplicate: result.Duplicate,
	})
}

// signatureHeader returns the signature header for a provider,
// defaulting to X-Signature for providers added later.
func signatureHeader(provider string) string {
	if header, ok := signatureHeaders[provider]; ok {
		return header
	}
	return "X-Signature"
}

package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"malayalees/src/app/http/dto"
	"malayalees/src/app/http/response"
	"malayalees/src/app/middleware"
	"malayalees/src/core/domain"
	"malayalees/src/core/usecase"
)

// maxWebhookBody caps payment webhook payloads.
const maxWebhookBody = 65536

// CheckoutHandler handles ticket purchase, free registration and payment webhooks.
type CheckoutHandler struct {
	checkoutService *usecase.CheckoutService
}

func NewCheckoutHandler(checkoutService *usecase.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService}
}

// Checkout starts a hosted checkout for tickets.
// POST /v1/events/:id/checkout
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	eventID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}

	session, err := h.checkoutService.Checkout(c.Request.Context(), middleware.GetTenantID(c), eventID, req.ToInput())
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, dto.CheckoutResponse{SessionID: session.ID, URL: session.URL})
}

// Register signs an attendee up for a free event.
// POST /v1/events/:id/register
func (h *CheckoutHandler) Register(c *gin.Context) {
	eventID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}

	attendee, err := h.checkoutService.Register(c.Request.Context(), middleware.GetTenantID(c), eventID, req.ToInput())
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, attendee)
}

// StripeWebhook records completed checkouts.
// POST /v1/webhooks/stripe
func (h *CheckoutHandler) StripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		c.Error(err)
		response.BadRequest(c, "unreadable payload", middleware.GetRequestID(c))
		return
	}

	result, err := h.checkoutService.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		if domain.IsUnauthorized(err) {
			c.Error(err)
			response.BadRequest(c, "invalid signature", middleware.GetRequestID(c))
			return
		}
		fail(c, err)
		return
	}
	response.OK(c, result)
}

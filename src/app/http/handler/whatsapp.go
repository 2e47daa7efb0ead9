package handler

import (
	"github.com/gin-gonic/gin"

	"malayalees/src/app/http/dto"
	"malayalees/src/app/http/response"
	"malayalees/src/app/middleware"
	"malayalees/src/core/domain"
	"malayalees/src/core/usecase"
)

// WhatsAppHandler handles WhatsApp settings and messaging endpoints.
type WhatsAppHandler struct {
	whatsAppService *usecase.WhatsAppService
}

func NewWhatsAppHandler(whatsAppService *usecase.WhatsAppService) *WhatsAppHandler {
	return &WhatsAppHandler{whatsAppService: whatsAppService}
}

// Settings returns the WhatsApp settings with the auth token masked.
// GET /v1/admin/whatsapp/settings
func (h *WhatsAppHandler) Settings(c *gin.Context) {
	settings, err := h.whatsAppService.Settings(c.Request.Context(), middleware.GetTenantID(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, settings)
}

// UpdateSettings stores WhatsApp settings.
// PUT /v1/admin/whatsapp/settings
func (h *WhatsAppHandler) UpdateSettings(c *gin.Context) {
	var in domain.WhatsAppSettings
	if err := c.ShouldBindJSON(&in); err != nil {
		badPayload(c, err)
		return
	}
	settings, err := h.whatsAppService.UpdateSettings(c.Request.Context(), middleware.GetTenantID(c), in)
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, settings)
}

// SendTest sends a test message to one number.
// POST /v1/admin/whatsapp/test
func (h *WhatsAppHandler) SendTest(c *gin.Context) {
	var req dto.WhatsAppTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	result, err := h.whatsAppService.SendTest(c.Request.Context(), middleware.GetTenantID(c), middleware.GetPrincipal(c), req.To, req.Body)
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, result)
}

// Send delivers a message to a list of recipients.
// POST /v1/admin/whatsapp/messages
func (h *WhatsAppHandler) Send(c *gin.Context) {
	var req dto.WhatsAppSendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	results, err := h.whatsAppService.Send(c.Request.Context(), middleware.GetTenantID(c), middleware.GetPrincipal(c), req.Recipients, req.Body)
	if err != nil {
		fail(c, err)
		return
	}

	sent := 0
	for _, r := range results {
		if r.Status == domain.MessageSent {
			sent++
		}
	}
	response.OK(c, gin.H{
		"sent":    sent,
		"failed":  len(results) - sent,
		"results": results,
	})
}

// Messages returns a page of the message log.
// GET /v1/admin/whatsapp/messages
func (h *WhatsAppHandler) Messages(c *gin.Context) {
	var q dto.PaginationQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badPayload(c, err)
		return
	}
	q.SetDefaults()

	page, err := h.whatsAppService.Messages(c.Request.Context(), middleware.GetTenantID(c), q.Page, q.PerPage)
	if err != nil {
		fail(c, err)
		return
	}
	response.Page(c, page)
}

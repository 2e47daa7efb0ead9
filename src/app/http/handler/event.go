package handler

import (
	"github.com/gin-gonic/gin"

	"malayalees/src/app/http/dto"
	"malayalees/src/app/http/response"
	"malayalees/src/app/middleware"
	"malayalees/src/core/domain"
	"malayalees/src/core/usecase"
)

// EventHandler handles event endpoints.
type EventHandler struct {
	eventService *usecase.EventService
}

func NewEventHandler(eventService *usecase.EventService) *EventHandler {
	return &EventHandler{eventService: eventService}
}

// List returns a page of events.
// GET /v1/events
func (h *EventHandler) List(c *gin.Context) {
	var q dto.EventListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badPayload(c, err)
		return
	}

	page, err := h.eventService.List(c.Request.Context(), middleware.GetTenantID(c), q.ToFilter(), middleware.IsAdmin(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Page(c, page)
}

// Get returns one event.
// GET /v1/events/:id
func (h *EventHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	event, err := h.eventService.Get(c.Request.Context(), middleware.GetTenantID(c), id, middleware.IsAdmin(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, event)
}

// TicketTypes lists the ticket types on sale for an event.
// GET /v1/events/:id/ticket-types
func (h *EventHandler) TicketTypes(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	types, err := h.eventService.TicketTypes(c.Request.Context(), middleware.GetTenantID(c), id, middleware.IsAdmin(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, types)
}

// Create adds an event.
// POST /v1/admin/events
func (h *EventHandler) Create(c *gin.Context) {
	var event domain.EventDetails
	if err := c.ShouldBindJSON(&event); err != nil {
		badPayload(c, err)
		return
	}
	created, err := h.eventService.Create(c.Request.Context(), middleware.GetTenantID(c), &event)
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, created)
}

// Update replaces an event.
// PUT /v1/admin/events/:id
func (h *EventHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var event domain.EventDetails
	if err := c.ShouldBindJSON(&event); err != nil {
		badPayload(c, err)
		return
	}
	updated, err := h.eventService.Update(c.Request.Context(), middleware.GetTenantID(c), id, &event)
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, updated)
}

// Patch applies a partial update.
// PATCH /v1/admin/events/:id
func (h *EventHandler) Patch(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		badPayload(c, err)
		return
	}
	patched, err := h.eventService.Patch(c.Request.Context(), middleware.GetTenantID(c), id, fields)
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, patched)
}

// Delete removes an event.
// DELETE /v1/admin/events/:id
func (h *EventHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.eventService.Delete(c.Request.Context(), middleware.GetTenantID(c), id); err != nil {
		fail(c, err)
		return
	}
	response.NoContent(c)
}

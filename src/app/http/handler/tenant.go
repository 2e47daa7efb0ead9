package handler

import (
	"github.com/gin-gonic/gin"

	"malayalees/src/app/http/dto"
	"malayalees/src/app/http/response"
	"malayalees/src/app/middleware"
	"malayalees/src/core/domain"
	"malayalees/src/core/usecase"
)

// TenantHandler handles tenant organization and settings endpoints.
type TenantHandler struct {
	tenantService *usecase.TenantService
}

func NewTenantHandler(tenantService *usecase.TenantService) *TenantHandler {
	return &TenantHandler{tenantService: tenantService}
}

// ListOrganizations returns a page of tenant organizations.
// GET /v1/admin/tenants
func (h *TenantHandler) ListOrganizations(c *gin.Context) {
	var q dto.OrganizationListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badPayload(c, err)
		return
	}
	q.SetDefaults()

	page, err := h.tenantService.ListOrganizations(c.Request.Context(), q.Page, q.PerPage, q.Q)
	if err != nil {
		fail(c, err)
		return
	}
	response.Page(c, page)
}

// GetOrganization returns one tenant organization.
// GET /v1/admin/tenants/:id
func (h *TenantHandler) GetOrganization(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	org, err := h.tenantService.GetOrganization(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, org)
}

// CreateOrganization adds a tenant organization.
// POST /v1/admin/tenants
func (h *TenantHandler) CreateOrganization(c *gin.Context) {
	var org domain.TenantOrganization
	if err := c.ShouldBindJSON(&org); err != nil {
		badPayload(c, err)
		return
	}
	created, err := h.tenantService.CreateOrganization(c.Request.Context(), &org)
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, created)
}

// UpdateOrganization replaces a tenant organization.
// PUT /v1/admin/tenants/:id
func (h *TenantHandler) UpdateOrganization(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var org domain.TenantOrganization
	if err := c.ShouldBindJSON(&org); err != nil {
		badPayload(c, err)
		return
	}
	updated, err := h.tenantService.UpdateOrganization(c.Request.Context(), id, &org)
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, updated)
}

// DeleteOrganization removes a tenant organization.
// DELETE /v1/admin/tenants/:id
func (h *TenantHandler) DeleteOrganization(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.tenantService.DeleteOrganization(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	response.NoContent(c)
}

// Settings returns the current tenant's settings with secrets masked.
// GET /v1/admin/tenant-settings
func (h *TenantHandler) Settings(c *gin.Context) {
	settings, err := h.tenantService.Settings(c.Request.Context(), middleware.GetTenantID(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, settings)
}

// SaveSettings creates or replaces the current tenant's settings.
// PUT /v1/admin/tenant-settings
func (h *TenantHandler) SaveSettings(c *gin.Context) {
	var in domain.TenantSettings
	if err := c.ShouldBindJSON(&in); err != nil {
		badPayload(c, err)
		return
	}
	saved, err := h.tenantService.SaveSettings(c.Request.Context(), middleware.GetTenantID(c), &in)
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, saved)
}

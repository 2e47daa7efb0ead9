package middleware

import (
	"regexp"

	"github.com/gin-gonic/gin"

	"malayalees/src/app/http/response"
	"malayalees/src/core/requestinfo"
	"malayalees/src/infra/config"
)

// TenantHeader selects another tenant when overrides are enabled.
const TenantHeader = "X-Tenant-ID"

// ContextKeyTenantID is the gin context key for the request's tenant.
const ContextKeyTenantID = "tenant_id"

var tenantIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,63}$`)

// Tenant scopes the request to a tenant. Every request uses the configured
// tenant unless header overrides are enabled and an admin sends X-Tenant-ID.
// Must run after Authenticate.
func Tenant(cfg config.TenantConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID := cfg.DefaultID

		if override := c.GetHeader(TenantHeader); override != "" && override != tenantID && cfg.AllowHeaderOverride && IsAdmin(c) {
			if !tenantIDPattern.MatchString(override) {
				response.ValidationError(c, TenantHeader, "invalid tenant id", GetRequestID(c))
				c.Abort()
				return
			}
			tenantID = override
		}

		c.Set(ContextKeyTenantID, tenantID)
		c.Request = c.Request.WithContext(requestinfo.WithTenant(c.Request.Context(), tenantID))
		c.Next()
	}
}

// GetTenantID returns the request's tenant or "".
func GetTenantID(c *gin.Context) string {
	return c.GetString(ContextKeyTenantID)
}

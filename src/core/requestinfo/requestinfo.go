// Package requestinfo carries per-request values (request id, tenant, caller)
// through context.Context so that adapters deep in the call chain can read them
// without depending on the HTTP layer.
package requestinfo

import (
	"context"

	"malayalees/src/core/domain"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	tenantKey
	principalKey
)

// WithRequestID returns a context carrying the request id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestID returns the request id or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithTenant returns a context carrying the tenant id.
func WithTenant(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, tenantKey, tenantID)
}

// Tenant returns the tenant id or "".
func Tenant(ctx context.Context) string {
	id, _ := ctx.Value(tenantKey).(string)
	return id
}

// WithPrincipal returns a context carrying the authenticated caller.
func WithPrincipal(ctx context.Context, p *domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// Principal returns the authenticated caller or nil.
func Principal(ctx context.Context) *domain.Principal {
	p, _ := ctx.Value(principalKey).(*domain.Principal)
	return p
}

package backend

import (
	"context"

	"malayalees/src/core/domain"
	"malayalees/src/core/ports"
)

const (
	organizationsPath = "/tenant-organizations"
	settingsPath      = "/tenant-settings"
)

// Tenant organizations are managed across tenants, so no tenant scope is applied.

func (c *Client) ListOrganizations(ctx context.Context, q ports.ListQuery) (*ports.PageResult[domain.TenantOrganization], error) {
	return list[domain.TenantOrganization](ctx, c, organizationsPath, "", q)
}

func (c *Client) GetOrganization(ctx context.Context, id int64) (*domain.TenantOrganization, error) {
	return get[domain.TenantOrganization](ctx, c, organizationsPath, "", id)
}

func (c *Client) CreateOrganization(ctx context.Context, org *domain.TenantOrganization) (*domain.TenantOrganization, error) {
	return create(ctx, c, organizationsPath, "", org)
}

func (c *Client) UpdateOrganization(ctx context.Context, org *domain.TenantOrganization) (*domain.TenantOrganization, error) {
	return update(ctx, c, organizationsPath, "", org.ID, org)
}

func (c *Client) DeleteOrganization(ctx context.Context, id int64) error {
	return remove(ctx, c, organizationsPath, "", id)
}

func (c *Client) GetSettings(ctx context.Context, tenantID string) (*domain.TenantSettings, error) {
	res, err := list[domain.TenantSettings](ctx, c, settingsPath, tenantID, ports.ListQuery{Page: 1, PerPage: 1})
	if err != nil {
		return nil, err
	}
	if len(res.Items) == 0 {
		return nil, domain.NewNotFoundError("tenant settings")
	}
	return &res.Items[0], nil
}

func (c *Client) SaveSettings(ctx context.Context, settings *domain.TenantSettings) (*domain.TenantSettings, error) {
	if settings.ID == 0 {
		return create(ctx, c, settingsPath, settings.TenantID, settings)
	}
	return update(ctx, c, settingsPath, settings.TenantID, settings.ID, settings)
}

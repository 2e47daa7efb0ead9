package backend

import (
	"context"

	"malayalees/src/core/domain"
	"malayalees/src/core/ports"
)

const eventsPath = "/event-details"

func (c *Client) ListEvents(ctx context.Context, tenantID string, q ports.ListQuery) (*ports.PageResult[domain.EventDetails], error) {
	return list[domain.EventDetails](ctx, c, eventsPath, tenantID, q)
}

func (c *Client) GetEvent(ctx context.Context, tenantID string, id int64) (*domain.EventDetails, error) {
	return get[domain.EventDetails](ctx, c, eventsPath, tenantID, id)
}

func (c *Client) CountEvents(ctx context.Context, tenantID string, criteria []ports.Criterion) (int64, error) {
	return count(ctx, c, eventsPath, tenantID, criteria)
}

func (c *Client) CreateEvent(ctx context.Context, tenantID string, event *domain.EventDetails) (*domain.EventDetails, error) {
	payload := *event
	payload.TenantID = tenantID
	return create(ctx, c, eventsPath, tenantID, &payload)
}

func (c *Client) UpdateEvent(ctx context.Context, tenantID string, event *domain.EventDetails) (*domain.EventDetails, error) {
	payload := *event
	payload.TenantID = tenantID
	return update(ctx, c, eventsPath, tenantID, event.ID, &payload)
}

func (c *Client) PatchEvent(ctx context.Context, tenantID string, id int64, fields map[string]any) (*domain.EventDetails, error) {
	return patch[domain.EventDetails](ctx, c, eventsPath, tenantID, id, fields)
}

func (c *Client) DeleteEvent(ctx context.Context, tenantID string, id int64) error {
	return remove(ctx, c, eventsPath, tenantID, id)
}

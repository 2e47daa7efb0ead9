package backend

import (
	"context"
	"strconv"

	"malayalees/src/core/domain"
	"malayalees/src/core/ports"
)

const (
	ticketTypesPath  = "/event-ticket-types"
	attendeesPath    = "/event-attendees"
	transactionsPath = "/event-ticket-transactions"

	// maxTicketTypes bounds the ticket types read for one event.
	maxTicketTypes = 100
)

func (c *Client) ListTicketTypes(ctx context.Context, tenantID string, eventID int64) ([]domain.EventTicketType, error) {
	q := ports.ListQuery{Page: 1, PerPage: maxTicketTypes, Sort: []string{"price,asc"}}.
		Where("eventId", ports.OpEquals, strconv.FormatInt(eventID, 10))
	res, err := list[domain.EventTicketType](ctx, c, ticketTypesPath, tenantID, q)
	if err != nil {
		return nil, err
	}
	return res.Items, nil
}

func (c *Client) CreateAttendee(ctx context.Context, tenantID string, attendee *domain.EventAttendee) (*domain.EventAttendee, error) {
	payload := *attendee
	payload.TenantID = tenantID
	return create(ctx, c, attendeesPath, tenantID, &payload)
}

func (c *Client) CountAttendees(ctx context.Context, tenantID string, criteria []ports.Criterion) (int64, error) {
	return count(ctx, c, attendeesPath, tenantID, criteria)
}

func (c *Client) CreateTransaction(ctx context.Context, tenantID string, tx *domain.EventTicketTransaction) (*domain.EventTicketTransaction, error) {
	payload := *tx
	payload.TenantID = tenantID
	return create(ctx, c, transactionsPath, tenantID, &payload)
}

func (c *Client) FindTransactionsBySession(ctx context.Context, tenantID, sessionID string) ([]domain.EventTicketTransaction, error) {
	q := ports.ListQuery{Page: 1, PerPage: maxTicketTypes}.
		Where("stripeCheckoutSessionId", ports.OpEquals, sessionID)
	res, err := list[domain.EventTicketTransaction](ctx, c, transactionsPath, tenantID, q)
	if err != nil {
		return nil, err
	}
	return res.Items, nil
}

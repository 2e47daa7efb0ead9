package ports

import (
	"context"
	"time"

	"malayalees/src/core/domain"
)

// ExternalService is the base interface for external service adapters.
type ExternalService interface {
	// Health checks if the external service is reachable.
	Health(ctx context.Context) error
}

// Cache is a best-effort key/value cache for backend reads.
// A miss is reported with found=false and a nil error.
type Cache interface {
	ExternalService
	Get(ctx context.Context, key string, dst any) (found bool, err error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeletePrefix(ctx context.Context, prefix string) error
}

// WhatsAppSender delivers WhatsApp messages through the tenant's provider account.
type WhatsAppSender interface {
	// Send delivers body to an E.164 number and returns the provider message id.
	Send(ctx context.Context, creds domain.WhatsAppSettings, to, body string) (string, error)
}

// CheckoutLineItem is one priced line of a checkout session.
type CheckoutLineItem struct {
	TicketTypeID int64
	Name         string
	UnitAmount   int64 // minor units
	Quantity     int64
}

// CheckoutSessionRequest is what the payment provider needs to start a checkout.
type CheckoutSessionRequest struct {
	TenantID      string
	EventID       int64
	EventTitle    string
	CustomerEmail string
	FirstName     string
	LastName      string
	Currency      string
	Items         []CheckoutLineItem
	SuccessURL    string
	CancelURL     string
}

// CheckoutSession is the provider's answer.
type CheckoutSession struct {
	ID  string
	URL string
}

// CompletedCheckout is a paid checkout reported by the provider webhook.
type CompletedCheckout struct {
	SessionID     string
	TenantID      string
	EventID       int64
	CustomerEmail string
	FirstName     string
	LastName      string
	Currency      string
	AmountTotal   int64
	Items         []CheckoutLineItem
}

// PaymentGateway creates checkout sessions and verifies webhook payloads.
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutSessionRequest) (*CheckoutSession, error)
	// ParseCompletedCheckout verifies the webhook signature. It returns nil, nil
	// for verified events that are not completed checkouts.
	ParseCompletedCheckout(payload []byte, signature string) (*CompletedCheckout, error)
}

// TokenProvider hands out backend credentials.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
	// Invalidate forgets the cached token after the backend rejected it.
	Invalidate()
}

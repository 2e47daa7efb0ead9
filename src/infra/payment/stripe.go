// Package payment implements ticket checkout on Stripe.
package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"malayalees/src/core/domain"
	"malayalees/src/core/ports"
	"malayalees/src/infra/config"
)

// Metadata keys stored on the checkout session. The webhook payload does not
// carry line items, so they are encoded in metadata as well.
const (
	metaTenantID  = "tenant_id"
	metaEventID   = "event_id"
	metaFirstName = "first_name"
	metaLastName  = "last_name"
	metaItems     = "items"
)

var _ ports.PaymentGateway = (*StripeGateway)(nil)

// StripeGateway implements ports.PaymentGateway with Stripe Checkout.
type StripeGateway struct {
	client        *stripe.Client
	webhookSecret string
	log           *slog.Logger
}

// NewStripeGateway creates a gateway for the configured Stripe account.
func NewStripeGateway(cfg config.StripeConfig, log *slog.Logger) *StripeGateway {
	return &StripeGateway{
		client:        stripe.NewClient(cfg.SecretKey),
		webhookSecret: cfg.WebhookSecret,
		log:           log,
	}
}

// Name identifies the payment provider in logs.
func (g *StripeGateway) Name() string {
	return "stripe"
}

// CreateCheckoutSession starts a hosted checkout for the requested tickets.
func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, req ports.CheckoutSessionRequest) (*ports.CheckoutSession, error) {
	if len(req.Items) == 0 {
		return nil, domain.NewValidationError("items", "at least one ticket is required")
	}

	params := &stripe.CheckoutSessionCreateParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:    stripe.String(req.SuccessURL),
		CancelURL:     stripe.String(req.CancelURL),
		CustomerEmail: stripe.String(req.CustomerEmail),
		Metadata: map[string]string{
			metaTenantID:  req.TenantID,
			metaEventID:   strconv.FormatInt(req.EventID, 10),
			metaFirstName: req.FirstName,
			metaLastName:  req.LastName,
			metaItems:     EncodeItems(req.Items),
		},
	}
	for _, item := range req.Items {
		name := item.Name
		if req.EventTitle != "" {
			name = req.EventTitle + " - " + item.Name
		}
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionCreateLineItemParams{
			Quantity: stripe.Int64(item.Quantity),
			PriceData: &stripe.CheckoutSessionCreateLineItemPriceDataParams{
				Currency:   stripe.String(req.Currency),
				UnitAmount: stripe.Int64(item.UnitAmount),
				ProductData: &stripe.CheckoutSessionCreateLineItemPriceDataProductDataParams{
					Name: stripe.String(name),
				},
			},
		})
	}

	sess, err := g.client.V1CheckoutSessions.Create(ctx, params)
	if err != nil {
		g.log.Error("stripe checkout session failed", "error", err, "event_id", req.EventID)
		var serr *stripe.Error
		if errors.As(err, &serr) && serr.HTTPStatusCode == 400 {
			return nil, domain.NewValidationError("items", serr.Msg)
		}
		return nil, domain.NewUpstreamError("payment provider rejected the checkout")
	}

	return &ports.CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

// ParseCompletedCheckout verifies a webhook payload and extracts a paid checkout.
func (g *StripeGateway) ParseCompletedCheckout(payload []byte, signature string) (*ports.CompletedCheckout, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, domain.NewUnauthorizedError("invalid webhook signature")
	}

	if event.Type != stripe.EventTypeCheckoutSessionCompleted {
		return nil, nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return nil, domain.NewValidationError("payload", "malformed checkout session")
	}
	if sess.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid &&
		sess.PaymentStatus != stripe.CheckoutSessionPaymentStatusNoPaymentRequired {
		return nil, nil
	}

	return completedFromSession(&sess)
}

func completedFromSession(sess *stripe.CheckoutSession) (*ports.CompletedCheckout, error) {
	eventID, err := strconv.ParseInt(sess.Metadata[metaEventID], 10, 64)
	if err != nil {
		return nil, domain.NewValidationError(metaEventID, "checkout session has no event id")
	}
	items, err := DecodeItems(sess.Metadata[metaItems])
	if err != nil {
		return nil, err
	}

	email := sess.CustomerEmail
	if email == "" && sess.CustomerDetails != nil {
		email = sess.CustomerDetails.Email
	}

	return &ports.CompletedCheckout{
		SessionID:     sess.ID,
		TenantID:      sess.Metadata[metaTenantID],
		EventID:       eventID,
		CustomerEmail: email,
		FirstName:     sess.Metadata[metaFirstName],
		LastName:      sess.Metadata[metaLastName],
		Currency:      string(sess.Currency),
		AmountTotal:   sess.AmountTotal,
		Items:         items,
	}, nil
}

// EncodeItems renders line items as "ticketTypeID:quantity:unitAmount" joined by commas.
func EncodeItems(items []ports.CheckoutLineItem) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, fmt.Sprintf("%d:%d:%d", it.TicketTypeID, it.Quantity, it.UnitAmount))
	}
	return strings.Join(parts, ",")
}

// DecodeItems parses the output of EncodeItems.
func DecodeItems(s string) ([]ports.CheckoutLineItem, error) {
	if s == "" {
		return nil, domain.NewValidationError(metaItems, "checkout session has no items")
	}
	var items []ports.CheckoutLineItem
	for _, part := range strings.Split(s, ",") {
		fields := strings.Split(part, ":")
		if len(fields) != 3 {
			return nil, domain.NewValidationError(metaItems, fmt.Sprintf("malformed item %q", part))
		}
		var nums [3]int64
		for i, f := range fields {
			n, err := strconv.ParseInt(f, 10, 64)
			if err != nil || n < 0 {
				return nil, domain.NewValidationError(metaItems, fmt.Sprintf("malformed item %q", part))
			}
			nums[i] = n
		}
		items = append(items, ports.CheckoutLineItem{TicketTypeID: nums[0], Quantity: nums[1], UnitAmount: nums[2]})
	}
	return items, nil
}

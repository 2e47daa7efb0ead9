package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"malayalees/src/core/domain"
	"malayalees/src/core/ports"
)

// CheckoutItem asks for a quantity of one ticket type.
type CheckoutItem struct {
	TicketTypeID int64 `json:"ticket_type_id" validate:"gt=0"`
	Quantity     int64 `json:"quantity" validate:"gt=0,lte=50"`
}

// CheckoutInput is a ticket purchase request.
type CheckoutInput struct {
	Email     string         `json:"email" validate:"required,email"`
	FirstName string         `json:"first_name" validate:"required,max=100"`
	LastName  string         `json:"last_name" validate:"required,max=100"`
	Items     []CheckoutItem `json:"items" validate:"min=1,max=20,dive"`
}

// RegisterInput is a free event registration.
type RegisterInput struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Phone     string `json:"phone" validate:"omitempty,e164"`
	Guests    int    `json:"guests" validate:"gte=0,lte=20"`
}

// WebhookResult reports what a payment webhook did.
type WebhookResult struct {
	Handled      bool   `json:"handled"`
	Duplicate    bool   `json:"duplicate"`
	SessionID    string `json:"session_id,omitempty"`
	Transactions int    `json:"transactions"`
}

// CheckoutService sells tickets and registers attendees.
type CheckoutService struct {
	events    *EventService
	tickets   ports.TicketRepository
	gateway   ports.PaymentGateway
	currency  string
	publicURL string
	log       *slog.Logger
	now       func() time.Time
}

// NewCheckoutService creates the service. gateway may be nil when payments are
// not configured; free registration still works.
func NewCheckoutService(events *EventService, tickets ports.TicketRepository, gateway ports.PaymentGateway, currency, publicURL string, log *slog.Logger) *CheckoutService {
	if currency == "" {
		currency = domain.DefaultCurrency
	}
	return &CheckoutService{
		events:    events,
		tickets:   tickets,
		gateway:   gateway,
		currency:  strings.ToLower(currency),
		publicURL: strings.TrimRight(publicURL, "/"),
		log:       log,
		now:       time.Now,
	}
}

func (s *CheckoutService) openEvent(ctx context.Context, tenantID string, eventID int64) (*domain.EventDetails, error) {
	event, err := s.events.Get(ctx, tenantID, eventID, false)
	if err != nil {
		return nil, err
	}
	if event.EndsBefore(s.now()) {
		return nil, domain.NewConflictError("event has already ended")
	}
	return event, nil
}

// Checkout validates the order and starts a hosted checkout session.
func (s *CheckoutService) Checkout(ctx context.Context, tenantID string, eventID int64, in CheckoutInput) (*ports.CheckoutSession, error) {
	if s.gateway == nil {
		return nil, domain.NewUnavailableError("payments are not configured")
	}
	in.Email = strings.TrimSpace(in.Email)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	event, err := s.openEvent(ctx, tenantID, eventID)
	if err != nil {
		return nil, err
	}
	if !event.IsTicketed() {
		return nil, domain.NewValidationError("items", "event does not sell tickets, register instead")
	}

	types, err := s.tickets.ListTicketTypes(ctx, tenantID, eventID)
	if err != nil {
		return nil, err
	}
	items, err := lineItems(types, in.Items)
	if err != nil {
		return nil, err
	}

	base := fmt.Sprintf("%s/events/%d", s.publicURL, eventID)
	sess, err := s.gateway.CreateCheckoutSession(ctx, ports.CheckoutSessionRequest{
		TenantID:      tenantID,
		EventID:       eventID,
		EventTitle:    event.Title,
		CustomerEmail: in.Email,
		FirstName:     in.FirstName,
		LastName:      in.LastName,
		Currency:      s.currency,
		Items:         items,
		SuccessURL:    base + "/checkout/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     base + "?checkout=cancelled",
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("checkout session created", "tenant_id", tenantID, "event_id", eventID, "session_id", sess.ID)
	return sess, nil
}

// lineItems prices the requested tickets. Repeated ticket types are merged.
func lineItems(types []domain.EventTicketType, requested []CheckoutItem) ([]ports.CheckoutLineItem, error) {
	byID := make(map[int64]domain.EventTicketType, len(types))
	for _, t := range types {
		byID[t.ID] = t
	}

	qty := map[int64]int64{}
	var order []int64
	for _, it := range requested {
		if _, ok := qty[it.TicketTypeID]; !ok {
			order = append(order, it.TicketTypeID)
		}
		qty[it.TicketTypeID] += it.Quantity
	}

	items := make([]ports.CheckoutLineItem, 0, len(order))
	for _, id := range order {
		t, ok := byID[id]
		if !ok || !t.IsActive {
			return nil, domain.NewValidationError("ticket_type_id", fmt.Sprintf("ticket type %d is not on sale for this event", id))
		}
		if left := t.Remaining(); left >= 0 && qty[id] > int64(left) {
			return nil, domain.NewConflictError(fmt.Sprintf("only %d %s tickets left", left, t.Name))
		}
		items = append(items, ports.CheckoutLineItem{
			TicketTypeID: id,
			Name:         t.Name,
			UnitAmount:   int64(math.Round(t.Price * 100)),
			Quantity:     qty[id],
		})
	}
	return items, nil
}

// HandleWebhook records a completed checkout. Each ticket type is written at
// most once per session, so a redelivery after a partial failure fills in
// what is missing and a full repeat writes nothing.
func (s *CheckoutService) HandleWebhook(ctx context.Context, payload []byte, signature string) (*WebhookResult, error) {
	if s.gateway == nil {
		return nil, domain.NewUnavailableError("payments are not configured")
	}
	done, err := s.gateway.ParseCompletedCheckout(payload, signature)
	if err != nil {
		return nil, err
	}
	if done == nil {
		return &WebhookResult{}, nil
	}
	if done.TenantID == "" {
		return nil, domain.NewValidationError("tenant_id", "checkout session has no tenant")
	}

	existing, err := s.tickets.FindTransactionsBySession(ctx, done.TenantID, done.SessionID)
	if err != nil {
		return nil, err
	}
	recorded := make(map[int64]bool, len(existing))
	for _, tx := range existing {
		recorded[tx.TicketTypeID] = true
	}

	now := s.now().UTC()
	var tickets int64
	written := 0
	for _, it := range done.Items {
		tickets += it.Quantity
		if recorded[it.TicketTypeID] {
			continue
		}
		unit := float64(it.UnitAmount) / 100
		_, err := s.tickets.CreateTransaction(ctx, done.TenantID, &domain.EventTicketTransaction{
			EventID:                 done.EventID,
			Email:                   done.CustomerEmail,
			FirstName:               done.FirstName,
			LastName:                done.LastName,
			TicketTypeID:            it.TicketTypeID,
			Quantity:                int(it.Quantity),
			PricePerUnit:            unit,
			TotalAmount:             unit * float64(it.Quantity),
			Status:                  domain.TransactionCompleted,
			StripeCheckoutSessionID: done.SessionID,
			PurchaseDate:            &now,
		})
		if err != nil {
			return nil, err
		}
		recorded[it.TicketTypeID] = true
		written++
	}

	registered, err := s.tickets.CountAttendees(ctx, done.TenantID, []ports.Criterion{
		{Field: "eventId", Op: ports.OpEquals, Value: strconv.FormatInt(done.EventID, 10)},
		{Field: "email", Op: ports.OpEquals, Value: done.CustomerEmail},
	})
	if err != nil {
		return nil, err
	}
	if registered == 0 {
		_, err = s.tickets.CreateAttendee(ctx, done.TenantID, &domain.EventAttendee{
			EventID:             done.EventID,
			FirstName:           done.FirstName,
			LastName:            done.LastName,
			Email:               done.CustomerEmail,
			RegistrationStatus:  domain.RegistrationConfirmed,
			RegistrationDate:    &now,
			TotalNumberOfGuests: int(max(tickets-1, 0)),
		})
		if err != nil {
			return nil, err
		}
		written++
	}

	if written == 0 {
		s.log.Info("duplicate checkout webhook ignored", "tenant_id", done.TenantID, "session_id", done.SessionID)
		return &WebhookResult{Handled: true, Duplicate: true, SessionID: done.SessionID, Transactions: len(recorded)}, nil
	}
	s.log.Info("checkout completed",
		"tenant_id", done.TenantID,
		"event_id", done.EventID,
		"session_id", done.SessionID,
		"tickets", tickets,
	)
	return &WebhookResult{Handled: true, SessionID: done.SessionID, Transactions: len(recorded)}, nil
}

// Register signs an attendee up for a free event, honoring its capacity.
func (s *CheckoutService) Register(ctx context.Context, tenantID string, eventID int64, in RegisterInput) (*domain.EventAttendee, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	event, err := s.openEvent(ctx, tenantID, eventID)
	if err != nil {
		return nil, err
	}
	if event.IsTicketed() {
		return nil, domain.NewValidationError("event", "event requires a ticket purchase")
	}
	if in.Guests > 0 && !event.AllowGuests {
		return nil, domain.NewValidationError("guests", "event does not allow guests")
	}

	if event.Capacity != nil {
		registered, err := s.tickets.CountAttendees(ctx, tenantID, []ports.Criterion{
			{Field: "eventId", Op: ports.OpEquals, Value: strconv.FormatInt(eventID, 10)},
		})
		if err != nil {
			return nil, err
		}
		if registered >= int64(*event.Capacity) {
			return nil, domain.NewConflictError("event is full")
		}
	}

	status := domain.RegistrationConfirmed
	if in.Guests > 0 && event.RequireGuestApproval {
		status = domain.RegistrationPending
	}
	now := s.now().UTC()
	attendee, err := s.tickets.CreateAttendee(ctx, tenantID, &domain.EventAttendee{
		EventID:             eventID,
		FirstName:           strings.TrimSpace(in.FirstName),
		LastName:            strings.TrimSpace(in.LastName),
		Email:               in.Email,
		Phone:               in.Phone,
		RegistrationStatus:  status,
		RegistrationDate:    &now,
		TotalNumberOfGuests: in.Guests,
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("attendee registered", "tenant_id", tenantID, "event_id", eventID, "attendee_id", attendee.ID)
	return attendee, nil
}

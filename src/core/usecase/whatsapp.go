package usecase

import (
	"context"
	"log/slog"
	"strings"

	"malayalees/src/core/domain"
	"malayalees/src/core/ports"
)

type whatsAppSettingsRules struct {
	TwilioAccountSID   string `json:"twilio_account_sid" validate:"required_if=Enabled true,omitempty,startswith=AC"`
	TwilioWhatsappFrom string `json:"twilio_whatsapp_from" validate:"required_if=Enabled true,omitempty,e164"`
	WebhookURL         string `json:"webhook_url" validate:"omitempty,url"`
	Enabled            bool   `json:"enabled"`
}

// broadcastRules caps recipients at domain.MaxWhatsAppRecipients and the body
// at the longest WhatsApp message Twilio accepts.
type broadcastRules struct {
	Recipients []string `json:"recipients" validate:"min=1,max=100,dive,e164"`
	Body       string   `json:"body" validate:"required,max=1600"`
}

// MessageResult is the outcome of sending to one recipient.
type MessageResult struct {
	Recipient   string               `json:"recipient"`
	Status      domain.MessageStatus `json:"status"`
	ProviderSID string               `json:"provider_sid,omitempty"`
	Error       string               `json:"error,omitempty"`
}

// WhatsAppService manages a tenant's WhatsApp integration and outbound messages.
type WhatsAppService struct {
	tenants  *TenantService
	sender   ports.WhatsAppSender
	messages ports.MessageLogRepository
	log      *slog.Logger
}

func NewWhatsAppService(tenants *TenantService, sender ports.WhatsAppSender, messages ports.MessageLogRepository, log *slog.Logger) *WhatsAppService {
	return &WhatsAppService{tenants: tenants, sender: sender, messages: messages, log: log}
}

// Settings returns the WhatsApp settings with secrets masked.
func (s *WhatsAppService) Settings(ctx context.Context, tenantID string) (*domain.WhatsAppSettings, error) {
	stored, err := s.tenants.storedSettings(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	masked := stored.WhatsApp().Masked()
	return &masked, nil
}

// UpdateSettings stores new WhatsApp settings. A masked or empty token keeps
// the stored token.
func (s *WhatsAppService) UpdateSettings(ctx context.Context, tenantID string, in domain.WhatsAppSettings) (*domain.WhatsAppSettings, error) {
	in.TwilioAccountSID = strings.TrimSpace(in.TwilioAccountSID)
	in.TwilioWhatsappFrom = strings.TrimPrefix(strings.TrimSpace(in.TwilioWhatsappFrom), "whatsapp:")
	if err := validateStruct(whatsAppSettingsRules{
		TwilioAccountSID:   in.TwilioAccountSID,
		TwilioWhatsappFrom: in.TwilioWhatsappFrom,
		WebhookURL:         in.WebhookURL,
		Enabled:            in.Enabled,
	}); err != nil {
		return nil, err
	}

	stored, err := s.tenants.storedSettings(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	next := *stored
	next.TenantID = tenantID
	next.ApplyWhatsApp(in)
	if next.EnableWhatsappIntegration && next.TwilioAuthToken == "" {
		return nil, domain.NewValidationError("twilio_auth_token", "twilio_auth_token is required")
	}

	saved, err := s.tenants.save(ctx, &next)
	if err != nil {
		return nil, err
	}
	s.log.Info("whatsapp settings updated", "tenant_id", tenantID, "enabled", saved.EnableWhatsappIntegration)
	out := saved.WhatsApp().Masked()
	return &out, nil
}

// SendTest sends a single test message.
func (s *WhatsAppService) SendTest(ctx context.Context, tenantID string, caller *domain.Principal, to, body string) (*MessageResult, error) {
	if strings.TrimSpace(body) == "" {
		body = "This is a test message from your event platform."
	}
	results, err := s.Send(ctx, tenantID, caller, []string{to}, body)
	if err != nil {
		return nil, err
	}
	return &results[0], nil
}

// Send delivers body to each recipient in turn and logs every attempt.
// A failed recipient does not stop the remaining sends.
func (s *WhatsAppService) Send(ctx context.Context, tenantID string, caller *domain.Principal, recipients []string, body string) ([]MessageResult, error) {
	recipients = dedupe(recipients)
	body = strings.TrimSpace(body)
	if err := validateStruct(broadcastRules{Recipients: recipients, Body: body}); err != nil {
		return nil, err
	}

	stored, err := s.tenants.storedSettings(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	creds := stored.WhatsApp()
	if !creds.Configured() {
		return nil, domain.NewConflictError("whatsapp integration is not enabled for this tenant")
	}

	sentBy := ""
	if caller != nil {
		sentBy = caller.UserID
	}

	results := make([]MessageResult, 0, len(recipients))
	for _, to := range recipients {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		res := MessageResult{Recipient: to, Status: domain.MessageSent}
		sid, err := s.sender.Send(ctx, creds, to, body)
		res.ProviderSID = sid
		if err != nil {
			res.Status = domain.MessageFailed
			res.Error = err.Error()
			s.log.Warn("whatsapp send failed", "tenant_id", tenantID, "recipient", to, "error", err)
		}
		results = append(results, res)

		_, lerr := s.messages.LogMessage(ctx, &domain.WhatsAppMessageLog{
			TenantID:    tenantID,
			Recipient:   to,
			Body:        body,
			Status:      res.Status,
			ProviderSID: res.ProviderSID,
			Error:       res.Error,
			SentBy:      sentBy,
		})
		if lerr != nil {
			s.log.Error("failed to log whatsapp message", "tenant_id", tenantID, "recipient", to, "error", lerr)
		}
	}

	s.log.Info("whatsapp messages sent", "tenant_id", tenantID, "recipients", len(recipients))
	return results, nil
}

// Messages returns the message log, newest first.
func (s *WhatsAppService) Messages(ctx context.Context, tenantID string, page, perPage int) (*ports.PageResult[domain.WhatsAppMessageLog], error) {
	page, perPage = normalizePage(page, perPage)
	return s.messages.ListMessages(ctx, tenantID, page, perPage)
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimPrefix(strings.TrimSpace(v), "whatsapp:")
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

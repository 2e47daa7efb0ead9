// Package whatsapp sends WhatsApp messages through the Twilio REST API.
//
// Credentials are per tenant (stored in tenant settings), so they are passed
// with every call instead of being fixed at construction.
package whatsapp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"malayalees/src/core/domain"
	"malayalees/src/core/ports"
	"malayalees/src/infra/config"
)

var _ ports.WhatsAppSender = (*TwilioClient)(nil)

// TwilioClient implements ports.WhatsAppSender.
type TwilioClient struct {
	apiURL string
	http   *http.Client
	log    *slog.Logger
}

// NewTwilioClient creates a client for the configured Twilio API endpoint.
func NewTwilioClient(cfg config.TwilioConfig, log *slog.Logger) *TwilioClient {
	return &TwilioClient{
		apiURL: strings.TrimRight(cfg.APIURL, "/"),
		http:   &http.Client{Timeout: cfg.Timeout},
		log:    log,
	}
}

type messageResponse struct {
	SID          string `json:"sid"`
	Status       string `json:"status"`
	ErrorCode    *int   `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// Send posts one message and returns the Twilio message SID.
func (c *TwilioClient) Send(ctx context.Context, creds domain.WhatsAppSettings, to, body string) (string, error) {
	if !creds.Configured() {
		return "", domain.NewUnavailableError("whatsapp integration is not configured")
	}

	form := url.Values{}
	form.Set("To", whatsappAddress(to))
	form.Set("From", whatsappAddress(creds.TwilioWhatsappFrom))
	form.Set("Body", body)
	if creds.WebhookURL != "" {
		form.Set("StatusCallback", creds.WebhookURL)
	}

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", c.apiURL, url.PathEscape(creds.TwilioAccountSID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(creds.TwilioAccountSID, creds.TwilioAuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error("twilio call failed", "error", err)
		return "", domain.NewUnavailableError("whatsapp provider unreachable")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return "", fmt.Errorf("failed to read twilio response: %w", err)
	}

	if resp.StatusCode >= 300 {
		var e errorResponse
		_ = json.Unmarshal(raw, &e)
		msg := e.Message
		if msg == "" {
			msg = fmt.Sprintf("twilio returned status %d", resp.StatusCode)
		}
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return "", domain.NewUnauthorizedError("whatsapp credentials rejected: " + msg)
		case http.StatusBadRequest, http.StatusNotFound:
			return "", domain.NewValidationError("to", msg)
		default:
			return "", domain.NewUpstreamError(msg)
		}
	}

	var out messageResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("failed to decode twilio response: %w", err)
	}
	if out.ErrorCode != nil {
		return out.SID, domain.NewUpstreamError(fmt.Sprintf("twilio error %d: %s", *out.ErrorCode, out.ErrorMessage))
	}
	return out.SID, nil
}

func whatsappAddress(number string) string {
	if strings.HasPrefix(number, "whatsapp:") {
		return number
	}
	return "whatsapp:" + number
}

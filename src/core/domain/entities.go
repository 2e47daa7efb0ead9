package domain

import (
	"strings"
	"time"
)

// DateLayout is the calendar date format used by the backend for LocalDate fields.
const DateLayout = "2006-01-02"

// AdmissionType tells whether an event sells tickets.
type AdmissionType string

const (
	AdmissionFree     AdmissionType = "free"
	AdmissionTicketed AdmissionType = "ticketed"
)

// Role is the platform role carried in the session token.
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
)

// RegistrationStatus is the lifecycle of an attendee registration.
type RegistrationStatus string

const (
	RegistrationPending   RegistrationStatus = "PENDING"
	RegistrationConfirmed RegistrationStatus = "CONFIRMED"
	RegistrationCancelled RegistrationStatus = "CANCELLED"
)

// TransactionStatus is the lifecycle of a ticket purchase.
type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "PENDING"
	TransactionCompleted TransactionStatus = "COMPLETED"
	TransactionRefunded  TransactionStatus = "REFUNDED"
)

// MessageStatus is the delivery status reported for an outbound WhatsApp message.
type MessageStatus string

const (
	MessageQueued MessageStatus = "QUEUED"
	MessageSent   MessageStatus = "SENT"
	MessageFailed MessageStatus = "FAILED"
)

// EventDetails mirrors the backend EventDetailsDTO.
type EventDetails struct {
	ID                     int64         `json:"id,omitempty"`
	TenantID               string        `json:"tenantId,omitempty"`
	Title                  string        `json:"title"`
	Caption                string        `json:"caption,omitempty"`
	Description            string        `json:"description,omitempty"`
	StartDate              string        `json:"startDate"`
	EndDate                string        `json:"endDate"`
	StartTime              string        `json:"startTime,omitempty"`
	EndTime                string        `json:"endTime,omitempty"`
	Location               string        `json:"location,omitempty"`
	DirectionsToVenue      string        `json:"directionsToVenue,omitempty"`
	Capacity               *int          `json:"capacity,omitempty"`
	AdmissionType          AdmissionType `json:"admissionType,omitempty"`
	IsActive               bool          `json:"isActive"`
	IsRegistrationRequired bool          `json:"isRegistrationRequired"`
	IsSportsEvent          bool          `json:"isSportsEvent"`
	IsLive                 bool          `json:"isLive"`
	AllowGuests            bool          `json:"allowGuests"`
	RequireGuestApproval   bool          `json:"requireGuestApproval"`
	EnableGuestPricing     bool          `json:"enableGuestPricing"`
	CreatedAt              *time.Time    `json:"createdAt,omitempty"`
	UpdatedAt              *time.Time    `json:"updatedAt,omitempty"`
}

// Validate checks the fields the backend requires on create and update.
func (e *EventDetails) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return NewValidationError("title", "title is required")
	}
	start, err := time.Parse(DateLayout, e.StartDate)
	if err != nil {
		return NewValidationError("startDate", "startDate must be YYYY-MM-DD")
	}
	end, err := time.Parse(DateLayout, e.EndDate)
	if err != nil {
		return NewValidationError("endDate", "endDate must be YYYY-MM-DD")
	}
	if end.Before(start) {
		return NewValidationError("endDate", "endDate must not be before startDate")
	}
	if e.Capacity != nil && *e.Capacity < 0 {
		return NewValidationError("capacity", "capacity must not be negative")
	}
	switch e.AdmissionType {
	case "", AdmissionFree, AdmissionTicketed:
	default:
		return NewValidationError("admissionType", "admissionType must be free or ticketed")
	}
	return nil
}

// IsTicketed reports whether attendees must buy tickets.
func (e *EventDetails) IsTicketed() bool {
	return e.AdmissionType == AdmissionTicketed
}

// EndsBefore reports whether the event ended before the given day.
func (e *EventDetails) EndsBefore(day time.Time) bool {
	end, err := time.Parse(DateLayout, e.EndDate)
	if err != nil {
		return false
	}
	today := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	return end.Before(today)
}

// EventMedia mirrors the backend EventMediaDTO.
type EventMedia struct {
	ID                                int64      `json:"id,omitempty"`
	TenantID                          string     `json:"tenantId,omitempty"`
	EventID                           int64      `json:"eventId,omitempty"`
	Title                             string     `json:"title"`
	Description                       string     `json:"description,omitempty"`
	EventMediaType                    string     `json:"eventMediaType,omitempty"`
	StorageType                       string     `json:"storageType,omitempty"`
	FileURL                           string     `json:"fileUrl,omitempty"`
	ContentType                       string     `json:"contentType,omitempty"`
	FileSize                          int64      `json:"fileSize,omitempty"`
	IsPublic                          bool       `json:"isPublic"`
	EventFlyer                        bool       `json:"eventFlyer"`
	IsEventManagementOfficialDocument bool       `json:"isEventManagementOfficialDocument"`
	IsFeaturedImage                   bool       `json:"isFeaturedImage"`
	IsHeroImage                       bool       `json:"isHeroImage"`
	IsActiveHeroImage                 bool       `json:"isActiveHeroImage"`
	DisplayOrder                      *int       `json:"displayOrder,omitempty"`
	UploadedByID                      *int64     `json:"uploadedById,omitempty"`
	CreatedAt                         *time.Time `json:"createdAt,omitempty"`
	UpdatedAt                         *time.Time `json:"updatedAt,omitempty"`
}

// EventTicketType mirrors the backend EventTicketTypeDTO.
type EventTicketType struct {
	ID                int64   `json:"id,omitempty"`
	TenantID          string  `json:"tenantId,omitempty"`
	EventID           int64   `json:"eventId"`
	Name              string  `json:"name"`
	Description       string  `json:"description,omitempty"`
	Price             float64 `json:"price"`
	Code              string  `json:"code,omitempty"`
	AvailableQuantity *int    `json:"availableQuantity,omitempty"`
	SoldQuantity      int     `json:"soldQuantity"`
	IsActive          bool    `json:"isActive"`
}

// Remaining returns how many tickets can still be sold, or -1 when unlimited.
func (t *EventTicketType) Remaining() int {
	if t.AvailableQuantity == nil {
		return -1
	}
	left := *t.AvailableQuantity - t.SoldQuantity
	if left < 0 {
		return 0
	}
	return left
}

// EventAttendee mirrors the backend EventAttendeeDTO.
type EventAttendee struct {
	ID                  int64              `json:"id,omitempty"`
	TenantID            string             `json:"tenantId,omitempty"`
	EventID             int64              `json:"eventId"`
	FirstName           string             `json:"firstName"`
	LastName            string             `json:"lastName"`
	Email               string             `json:"email"`
	Phone               string             `json:"phone,omitempty"`
	RegistrationStatus  RegistrationStatus `json:"registrationStatus"`
	RegistrationDate    *time.Time         `json:"registrationDate,omitempty"`
	TotalNumberOfGuests int                `json:"totalNumberOfGuests"`
}

// EventTicketTransaction mirrors the backend EventTicketTransactionDTO.
type EventTicketTransaction struct {
	ID                      int64             `json:"id,omitempty"`
	TenantID                string            `json:"tenantId,omitempty"`
	EventID                 int64             `json:"eventId"`
	Email                   string            `json:"email"`
	FirstName               string            `json:"firstName,omitempty"`
	LastName                string            `json:"lastName,omitempty"`
	TicketTypeID            int64             `json:"ticketTypeId"`
	Quantity                int               `json:"quantity"`
	PricePerUnit            float64           `json:"pricePerUnit"`
	TotalAmount             float64           `json:"totalAmount"`
	Status                  TransactionStatus `json:"status"`
	StripeCheckoutSessionID string            `json:"stripeCheckoutSessionId,omitempty"`
	PurchaseDate            *time.Time        `json:"purchaseDate,omitempty"`
}

// TenantOrganization mirrors the backend TenantOrganizationDTO.
type TenantOrganization struct {
	ID                 int64  `json:"id,omitempty"`
	TenantID           string `json:"tenantId"`
	OrganizationName   string `json:"organizationName"`
	Domain             string `json:"domain,omitempty"`
	PrimaryColor       string `json:"primaryColor,omitempty"`
	SecondaryColor     string `json:"secondaryColor,omitempty"`
	LogoURL            string `json:"logoUrl,omitempty"`
	ContactEmail       string `json:"contactEmail,omitempty"`
	ContactPhone       string `json:"contactPhone,omitempty"`
	SubscriptionPlan   string `json:"subscriptionPlan,omitempty"`
	SubscriptionStatus string `json:"subscriptionStatus,omitempty"`
	IsActive           bool   `json:"isActive"`
}

// TenantSettings mirrors the backend TenantSettingsDTO.
type TenantSettings struct {
	ID                        int64    `json:"id,omitempty"`
	TenantID                  string   `json:"tenantId"`
	AllowUserRegistration     bool     `json:"allowUserRegistration"`
	RequireAdminApproval      bool     `json:"requireAdminApproval"`
	EnableWhatsappIntegration bool     `json:"enableWhatsappIntegration"`
	EnableEmailMarketing      bool     `json:"enableEmailMarketing"`
	WhatsappAPIKey            string   `json:"whatsappApiKey,omitempty"`
	EmailProviderConfig       string   `json:"emailProviderConfig,omitempty"`
	MaxEventsPerMonth         *int     `json:"maxEventsPerMonth,omitempty"`
	MaxAttendeesPerEvent      *int     `json:"maxAttendeesPerEvent,omitempty"`
	EnableGuestRegistration   bool     `json:"enableGuestRegistration"`
	MaxGuestsPerAttendee      *int     `json:"maxGuestsPerAttendee,omitempty"`
	DefaultEventCapacity      *int     `json:"defaultEventCapacity,omitempty"`
	PlatformFeePercentage     *float64 `json:"platformFeePercentage,omitempty"`
	CustomCSS                 string   `json:"customCss,omitempty"`
	CustomJS                  string   `json:"customJs,omitempty"`
	TwilioAccountSID          string   `json:"twilioAccountSid,omitempty"`
	TwilioAuthToken           string   `json:"twilioAuthToken,omitempty"`
	TwilioWhatsappFrom        string   `json:"twilioWhatsappFrom,omitempty"`
	WhatsappWebhookURL        string   `json:"whatsappWebhookUrl,omitempty"`
	WhatsappWebhookToken      string   `json:"whatsappWebhookToken,omitempty"`
}

// WhatsAppSettings is the WhatsApp slice of TenantSettings.
type WhatsAppSettings struct {
	TenantID           string `json:"tenant_id"`
	Enabled            bool   `json:"enabled"`
	TwilioAccountSID   string `json:"twilio_account_sid"`
	TwilioAuthToken    string `json:"twilio_auth_token"`
	TwilioWhatsappFrom string `json:"twilio_whatsapp_from"`
	WebhookURL         string `json:"webhook_url"`
	WebhookToken       string `json:"webhook_token"`
}

// Configured reports whether enough is set to send messages.
func (w WhatsAppSettings) Configured() bool {
	return w.Enabled && w.TwilioAccountSID != "" && w.TwilioAuthToken != "" && w.TwilioWhatsappFrom != ""
}

// WhatsApp extracts the WhatsApp settings from tenant settings.
func (s *TenantSettings) WhatsApp() WhatsAppSettings {
	return WhatsAppSettings{
		TenantID:           s.TenantID,
		Enabled:            s.EnableWhatsappIntegration,
		TwilioAccountSID:   s.TwilioAccountSID,
		TwilioAuthToken:    s.TwilioAuthToken,
		TwilioWhatsappFrom: s.TwilioWhatsappFrom,
		WebhookURL:         s.WhatsappWebhookURL,
		WebhookToken:       s.WhatsappWebhookToken,
	}
}

// ApplyWhatsApp copies WhatsApp settings back onto tenant settings.
// A masked or empty token keeps the stored one.
func (s *TenantSettings) ApplyWhatsApp(w WhatsAppSettings) {
	s.EnableWhatsappIntegration = w.Enabled
	s.TwilioAccountSID = w.TwilioAccountSID
	s.TwilioWhatsappFrom = w.TwilioWhatsappFrom
	s.WhatsappWebhookURL = w.WebhookURL
	if w.TwilioAuthToken != "" && w.TwilioAuthToken != MaskedSecret {
		s.TwilioAuthToken = w.TwilioAuthToken
	}
	if w.WebhookToken != "" && w.WebhookToken != MaskedSecret {
		s.WhatsappWebhookToken = w.WebhookToken
	}
}

// Masked returns a copy safe to send to the browser.
func (w WhatsAppSettings) Masked() WhatsAppSettings {
	if w.TwilioAuthToken != "" {
		w.TwilioAuthToken = MaskedSecret
	}
	if w.WebhookToken != "" {
		w.WebhookToken = MaskedSecret
	}
	return w
}

// Comment is a visitor comment on an event page. Owned by this service.
type Comment struct {
	ID         int64     `json:"id"`
	TenantID   string    `json:"tenant_id"`
	EventID    int64     `json:"event_id"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}

// WhatsAppMessageLog records one outbound WhatsApp message. Owned by this service.
type WhatsAppMessageLog struct {
	ID          int64         `json:"id"`
	TenantID    string        `json:"tenant_id"`
	Recipient   string        `json:"recipient"`
	Body        string        `json:"body"`
	Status      MessageStatus `json:"status"`
	ProviderSID string        `json:"provider_sid,omitempty"`
	Error       string        `json:"error,omitempty"`
	SentBy      string        `json:"sent_by"`
	CreatedAt   time.Time     `json:"created_at"`
}

// Principal is the authenticated caller.
type Principal struct {
	UserID string
	Email  string
	Name   string
	Role   Role
}

// IsAdmin reports whether the caller may use admin endpoints.
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

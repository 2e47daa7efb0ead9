package dto

import (
	"time"

	"malayalees/src/core/domain"
	"malayalees/src/core/usecase"
)

// PaginationQuery holds page parameters shared by list endpoints.
type PaginationQuery struct {
	Page    int `form:"page" binding:"omitempty,min=1"`
	PerPage int `form:"per_page" binding:"omitempty,min=1,max=100"`
}

// SetDefaults fills missing page parameters.
func (p *PaginationQuery) SetDefaults() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 {
		p.PerPage = domain.DefaultPerPage
	}
}

// EventListQuery is the query string of GET /v1/events.
type EventListQuery struct {
	PaginationQuery
	Q               string `form:"q" binding:"max=200"`
	When            string `form:"when" binding:"omitempty,oneof=upcoming past all"`
	AdmissionType   string `form:"admission_type" binding:"omitempty,oneof=free ticketed"`
	IncludeInactive bool   `form:"include_inactive"`
}

func (q *EventListQuery) ToFilter() usecase.EventFilter {
	q.SetDefaults()
	when := q.When
	if when == "" {
		when = usecase.WhenUpcoming
	}
	return usecase.EventFilter{
		Page:            q.Page,
		PerPage:         q.PerPage,
		Query:           q.Q,
		When:            when,
		AdmissionType:   q.AdmissionType,
		IncludeInactive: q.IncludeInactive,
	}
}

// MediaListQuery is the query string of GET /v1/events/:id/media.
type MediaListQuery struct {
	PaginationQuery
	Type     string `form:"type" binding:"max=50"`
	Featured *bool  `form:"featured"`
	Hero     *bool  `form:"hero"`
}

func (q *MediaListQuery) ToFilter() usecase.MediaFilter {
	q.SetDefaults()
	return usecase.MediaFilter{
		Page:      q.Page,
		PerPage:   q.PerPage,
		MediaType: q.Type,
		Featured:  q.Featured,
		Hero:      q.Hero,
	}
}

// MediaUploadForm holds the non-file fields of a media upload.
type MediaUploadForm struct {
	Title       string `form:"title" binding:"max=255"`
	Description string `form:"description" binding:"max=2000"`
	IsPublic    bool   `form:"is_public"`
	EventFlyer  bool   `form:"event_flyer"`
	Featured    bool   `form:"is_featured_image"`
	Hero        bool   `form:"is_hero_image"`
}

// OrganizationListQuery is the query string of GET /v1/admin/tenants.
type OrganizationListQuery struct {
	PaginationQuery
	Q string `form:"q" binding:"max=200"`
}

// CommentListQuery is the query string of the polled comment list.
type CommentListQuery struct {
	Since *time.Time `form:"since" time_format:"2006-01-02T15:04:05Z07:00"`
	Limit int        `form:"limit" binding:"omitempty,min=1,max=100"`
}

// CreateCommentRequest is the payload for posting a comment.
type CreateCommentRequest struct {
	Body string `json:"body" binding:"required"`
}

// WhatsAppTestRequest is the payload for POST /v1/admin/whatsapp/test.
type WhatsAppTestRequest struct {
	To   string `json:"to" binding:"required"`
	Body string `json:"body"`
}

// WhatsAppSendRequest is the payload for POST /v1/admin/whatsapp/messages.
type WhatsAppSendRequest struct {
	Recipients []string `json:"recipients" binding:"required,min=1"`
	Body       string   `json:"body" binding:"required"`
}

// CheckoutItemRequest is one ticket line of a checkout.
type CheckoutItemRequest struct {
	TicketTypeID int64 `json:"ticket_type_id" binding:"required"`
	Quantity     int64 `json:"quantity" binding:"required"`
}

// CheckoutRequest is the payload for POST /v1/events/:id/checkout.
type CheckoutRequest struct {
	Email     string                `json:"email" binding:"required"`
	FirstName string                `json:"first_name" binding:"required"`
	LastName  string                `json:"last_name" binding:"required"`
	Items     []CheckoutItemRequest `json:"items" binding:"required,min=1,dive"`
}

func (r *CheckoutRequest) ToInput() usecase.CheckoutInput {
	items := make([]usecase.CheckoutItem, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, usecase.CheckoutItem{TicketTypeID: it.TicketTypeID, Quantity: it.Quantity})
	}
	return usecase.CheckoutInput{
		Email:     r.Email,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Items:     items,
	}
}

// CheckoutResponse points the browser at the hosted checkout page.
type CheckoutResponse struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

// RegisterRequest is the payload for POST /v1/events/:id/register.
type RegisterRequest struct {
	Email     string `json:"email" binding:"required"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Phone     string `json:"phone"`
	Guests    int    `json:"guests"`
}

func (r *RegisterRequest) ToInput() usecase.RegisterInput {
	return usecase.RegisterInput{
		Email:     r.Email,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Phone:     r.Phone,
		Guests:    r.Guests,
	}
}

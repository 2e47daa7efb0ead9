// Package ports defines interfaces (ports) that connect core domain to infrastructure.
// These interfaces follow the ports and adapters (hexagonal) architecture pattern.
//
// Ports are defined here in the core layer, while implementations (adapters)
// live in src/infra. This ensures the core has no dependency on infrastructure.
package ports

import (
	"context"
	"io"
	"time"

	"malayalees/src/core/domain"
)

// Repository is the base interface for all repositories.
type Repository interface {
	// Health checks if the underlying storage is reachable.
	Health(ctx context.Context) error
}

// Operator is a criteria operator understood by the backend.
type Operator string

const (
	OpEquals             Operator = "equals"
	OpNotEquals          Operator = "notEquals"
	OpContains           Operator = "contains"
	OpIn                 Operator = "in"
	OpGreaterThan        Operator = "greaterThan"
	OpGreaterThanOrEqual Operator = "greaterThanOrEqual"
	OpLessThan           Operator = "lessThan"
	OpLessThanOrEqual    Operator = "lessThanOrEqual"
)

// Criterion is a single field filter, rendered upstream as field.op=value.
type Criterion struct {
	Field string
	Op    Operator
	Value string
}

// ListQuery describes a paginated, filtered list request.
// Page is 1-based; adapters translate it to whatever the backend expects.
type ListQuery struct {
	Page     int
	PerPage  int
	Sort     []string
	Criteria []Criterion
}

// Where appends a criterion and returns the query for chaining.
func (q ListQuery) Where(field string, op Operator, value string) ListQuery {
	q.Criteria = append(append([]Criterion(nil), q.Criteria...), Criterion{Field: field, Op: op, Value: value})
	return q
}

// PageResult is one page of a list plus the total count across pages.
type PageResult[T any] struct {
	Items   []T
	Total   int64
	Page    int
	PerPage int
}

// TotalPages returns the number of pages for the result's page size.
func (p PageResult[T]) TotalPages() int {
	if p.PerPage <= 0 {
		return 0
	}
	return int((p.Total + int64(p.PerPage) - 1) / int64(p.PerPage))
}

// MediaUpload is a file forwarded to the backend upload endpoint.
type MediaUpload struct {
	EventID     int64
	Title       string
	Description string
	FileName    string
	ContentType string
	Size        int64
	IsPublic    bool
	EventFlyer  bool
	Featured    bool
	Hero        bool
	UploadedBy  string
	Content     io.Reader
}

// EventRepository covers /api/event-details.
type EventRepository interface {
	ListEvents(ctx context.Context, tenantID string, q ListQuery) (*PageResult[domain.EventDetails], error)
	GetEvent(ctx context.Context, tenantID string, id int64) (*domain.EventDetails, error)
	CountEvents(ctx context.Context, tenantID string, criteria []Criterion) (int64, error)
	CreateEvent(ctx context.Context, tenantID string, event *domain.EventDetails) (*domain.EventDetails, error)
	UpdateEvent(ctx context.Context, tenantID string, event *domain.EventDetails) (*domain.EventDetails, error)
	PatchEvent(ctx context.Context, tenantID string, id int64, fields map[string]any) (*domain.EventDetails, error)
	DeleteEvent(ctx context.Context, tenantID string, id int64) error
}

// MediaRepository covers /api/event-medias.
type MediaRepository interface {
	ListMedia(ctx context.Context, tenantID string, q ListQuery) (*PageResult[domain.EventMedia], error)
	CountMedia(ctx context.Context, tenantID string, criteria []Criterion) (int64, error)
	UploadMedia(ctx context.Context, tenantID string, upload MediaUpload) (*domain.EventMedia, error)
	PatchMedia(ctx context.Context, tenantID string, id int64, fields map[string]any) (*domain.EventMedia, error)
	DeleteMedia(ctx context.Context, tenantID string, id int64) error
}

// TicketRepository covers ticket types, attendees and ticket transactions.
type TicketRepository interface {
	ListTicketTypes(ctx context.Context, tenantID string, eventID int64) ([]domain.EventTicketType, error)
	CreateAttendee(ctx context.Context, tenantID string, attendee *domain.EventAttendee) (*domain.EventAttendee, error)
	CountAttendees(ctx context.Context, tenantID string, criteria []Criterion) (int64, error)
	CreateTransaction(ctx context.Context, tenantID string, tx *domain.EventTicketTransaction) (*domain.EventTicketTransaction, error)
	FindTransactionsBySession(ctx context.Context, tenantID, sessionID string) ([]domain.EventTicketTransaction, error)
}

// TenantRepository covers tenant organizations and tenant settings.
type TenantRepository interface {
	ListOrganizations(ctx context.Context, q ListQuery) (*PageResult[domain.TenantOrganization], error)
	GetOrganization(ctx context.Context, id int64) (*domain.TenantOrganization, error)
	CreateOrganization(ctx context.Context, org *domain.TenantOrganization) (*domain.TenantOrganization, error)
	UpdateOrganization(ctx context.Context, org *domain.TenantOrganization) (*domain.TenantOrganization, error)
	DeleteOrganization(ctx context.Context, id int64) error

	// GetSettings returns the settings row for a tenant or a not found error.
	GetSettings(ctx context.Context, tenantID string) (*domain.TenantSettings, error)
	// SaveSettings creates the row when ID is zero and updates it otherwise.
	SaveSettings(ctx context.Context, settings *domain.TenantSettings) (*domain.TenantSettings, error)
}

// Backend is the full surface of the external backend API.
type Backend interface {
	Repository
	EventRepository
	MediaRepository
	TicketRepository
	TenantRepository
}

// CommentRepository stores event comments in our own database.
type CommentRepository interface {
	Repository

	// ListComments returns comments newer than since (when set), newest first.
	ListComments(ctx context.Context, tenantID string, eventID int64, since *time.Time, limit int) ([]domain.Comment, error)
	CreateComment(ctx context.Context, comment *domain.Comment) (*domain.Comment, error)
	DeleteComment(ctx context.Context, tenantID string, id int64) error
}

// MessageLogRepository stores the outbound WhatsApp message log.
type MessageLogRepository interface {
	LogMessage(ctx context.Context, msg *domain.WhatsAppMessageLog) (*domain.WhatsAppMessageLog, error)
	ListMessages(ctx context.Context, tenantID string, page, perPage int) (*PageResult[domain.WhatsAppMessageLog], error)
}

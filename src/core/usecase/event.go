package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"malayalees/src/core/domain"
	"malayalees/src/core/ports"
)

// Event list time windows.
const (
	WhenUpcoming = "upcoming"
	WhenPast     = "past"
	WhenAll      = "all"
)

// EventFilter narrows an event listing.
type EventFilter struct {
	Page          int
	PerPage       int
	Query         string
	When          string
	AdmissionType string
	// IncludeInactive is honored for admins only.
	IncludeInactive bool
}

// EventService serves events from the backend with a read-through cache.
type EventService struct {
	events   ports.EventRepository
	tickets  ports.TicketRepository
	cache    ports.Cache
	cacheTTL time.Duration
	log      *slog.Logger
	now      func() time.Time
}

func NewEventService(events ports.EventRepository, tickets ports.TicketRepository, cache ports.Cache, cacheTTL time.Duration, log *slog.Logger) *EventService {
	return &EventService{
		events:   events,
		tickets:  tickets,
		cache:    cache,
		cacheTTL: cacheTTL,
		log:      log,
		now:      time.Now,
	}
}

func eventKeyPrefix(tenantID string) string {
	return tenantID + ":events:"
}

// List returns one page of events. Non-admin callers only see active events.
func (s *EventService) List(ctx context.Context, tenantID string, f EventFilter, admin bool) (*ports.PageResult[domain.EventDetails], error) {
	q, err := s.listQuery(f, admin)
	if err != nil {
		return nil, err
	}
	key := eventKeyPrefix(tenantID) + "list:" + queryKey(q)
	return readThrough(ctx, s.cache, s.log, key, s.cacheTTL, func() (*ports.PageResult[domain.EventDetails], error) {
		return s.events.ListEvents(ctx, tenantID, q)
	})
}

func (s *EventService) listQuery(f EventFilter, admin bool) (ports.ListQuery, error) {
	page, perPage := normalizePage(f.Page, f.PerPage)
	q := ports.ListQuery{Page: page, PerPage: perPage, Sort: []string{"startDate,asc", "id,asc"}}

	today := s.now().UTC().Format(domain.DateLayout)
	switch f.When {
	case "", WhenAll:
	case WhenUpcoming:
		q = q.Where("endDate", ports.OpGreaterThanOrEqual, today)
	case WhenPast:
		q = q.Where("endDate", ports.OpLessThan, today)
		q.Sort = []string{"startDate,desc", "id,desc"}
	default:
		return q, domain.NewValidationError("when", "when must be upcoming, past or all")
	}

	switch domain.AdmissionType(f.AdmissionType) {
	case "":
	case domain.AdmissionFree, domain.AdmissionTicketed:
		q = q.Where("admissionType", ports.OpEquals, f.AdmissionType)
	default:
		return q, domain.NewValidationError("admission_type", "admission_type must be free or ticketed")
	}

	if term := strings.TrimSpace(f.Query); term != "" {
		q = q.Where("title", ports.OpContains, term)
	}
	if !admin || !f.IncludeInactive {
		q = q.Where("isActive", ports.OpEquals, "true")
	}
	return q, nil
}

// Get returns one event. When the direct lookup fails with not found or an
// upstream error, one fallback list fetch filtered by id is attempted.
func (s *EventService) Get(ctx context.Context, tenantID string, id int64, admin bool) (*domain.EventDetails, error) {
	if id <= 0 {
		return nil, domain.NewValidationError("id", "invalid event id")
	}

	key := fmt.Sprintf("%sdetail:%d", eventKeyPrefix(tenantID), id)
	event, err := readThrough(ctx, s.cache, s.log, key, s.cacheTTL, func() (*domain.EventDetails, error) {
		return s.fetch(ctx, tenantID, id)
	})
	if err != nil {
		return nil, err
	}
	if !admin && !event.IsActive {
		return nil, domain.NewNotFoundError(fmt.Sprintf("event %d", id))
	}
	return event, nil
}

func (s *EventService) fetch(ctx context.Context, tenantID string, id int64) (*domain.EventDetails, error) {
	event, err := s.events.GetEvent(ctx, tenantID, id)
	if err == nil {
		return event, nil
	}
	if !domain.IsNotFound(err) && !domain.IsUpstream(err) {
		return nil, err
	}

	s.log.Warn("event lookup failed, trying list fallback", "event_id", id, "error", err)
	q := ports.ListQuery{Page: 1, PerPage: 1}.Where("id", ports.OpEquals, strconv.FormatInt(id, 10))
	page, ferr := s.events.ListEvents(ctx, tenantID, q)
	if ferr != nil {
		s.log.Error("event list fallback failed", "event_id", id, "error", ferr)
		return nil, err
	}
	if len(page.Items) == 0 {
		return nil, domain.NewNotFoundError(fmt.Sprintf("event %d", id))
	}
	return &page.Items[0], nil
}

// TicketTypes returns the active ticket types of an event, cheapest first.
func (s *EventService) TicketTypes(ctx context.Context, tenantID string, eventID int64, admin bool) ([]domain.EventTicketType, error) {
	if _, err := s.Get(ctx, tenantID, eventID, admin); err != nil {
		return nil, err
	}
	key := fmt.Sprintf("%stickets:%d", eventKeyPrefix(tenantID), eventID)
	types, err := readThrough(ctx, s.cache, s.log, key, s.cacheTTL, func() ([]domain.EventTicketType, error) {
		return s.tickets.ListTicketTypes(ctx, tenantID, eventID)
	})
	if err != nil {
		return nil, err
	}
	if admin {
		return types, nil
	}
	active := make([]domain.EventTicketType, 0, len(types))
	for _, t := range types {
		if t.IsActive {
			active = append(active, t)
		}
	}
	return active, nil
}

// Create validates and stores a new event.
func (s *EventService) Create(ctx context.Context, tenantID string, event *domain.EventDetails) (*domain.EventDetails, error) {
	event.ID = 0
	if event.AdmissionType == "" {
		event.AdmissionType = domain.AdmissionFree
	}
	if err := event.Validate(); err != nil {
		return nil, err
	}
	created, err := s.events.CreateEvent(ctx, tenantID, event)
	if err != nil {
		return nil, err
	}
	invalidate(ctx, s.cache, s.log, eventKeyPrefix(tenantID))
	s.log.Info("event created", "tenant_id", tenantID, "event_id", created.ID)
	return created, nil
}

// Update replaces an event.
func (s *EventService) Update(ctx context.Context, tenantID string, id int64, event *domain.EventDetails) (*domain.EventDetails, error) {
	if err := event.Validate(); err != nil {
		return nil, err
	}
	event.ID = id
	updated, err := s.events.UpdateEvent(ctx, tenantID, event)
	if err != nil {
		return nil, err
	}
	invalidate(ctx, s.cache, s.log, eventKeyPrefix(tenantID))
	s.log.Info("event updated", "tenant_id", tenantID, "event_id", id)
	return updated, nil
}

// patchableDates are the event fields holding calendar dates.
var patchableDates = []string{"startDate", "endDate"}

// Patch applies a partial update. Identity fields cannot be patched.
func (s *EventService) Patch(ctx context.Context, tenantID string, id int64, fields map[string]any) (*domain.EventDetails, error) {
	if len(fields) == 0 {
		return nil, domain.NewValidationError("", "no fields to update")
	}
	for _, k := range []string{"id", "tenantId", "createdAt", "updatedAt"} {
		if _, ok := fields[k]; ok {
			return nil, domain.NewValidationError(k, k+" cannot be changed")
		}
	}
	if v, ok := fields["title"]; ok {
		if title, _ := v.(string); strings.TrimSpace(title) == "" {
			return nil, domain.NewValidationError("title", "title is required")
		}
	}
	dates := map[string]string{}
	for _, k := range patchableDates {
		if v, ok := fields[k]; ok {
			str, _ := v.(string)
			if _, err := time.Parse(domain.DateLayout, str); err != nil {
				return nil, domain.NewValidationError(k, k+" must be YYYY-MM-DD")
			}
			dates[k] = str
		}
	}
	if len(dates) > 0 {
		if err := s.checkDateOrder(ctx, tenantID, id, dates); err != nil {
			return nil, err
		}
	}

	patched, err := s.events.PatchEvent(ctx, tenantID, id, fields)
	if err != nil {
		return nil, err
	}
	invalidate(ctx, s.cache, s.log, eventKeyPrefix(tenantID))
	return patched, nil
}

// checkDateOrder merges patched dates over the stored event and rejects an
// end before the start.
func (s *EventService) checkDateOrder(ctx context.Context, tenantID string, id int64, dates map[string]string) error {
	current, err := s.events.GetEvent(ctx, tenantID, id)
	if err != nil {
		return err
	}
	start, end := current.StartDate, current.EndDate
	if v, ok := dates["startDate"]; ok {
		start = v
	}
	if v, ok := dates["endDate"]; ok {
		end = v
	}
	// DateLayout sorts lexically.
	if end < start {
		return domain.NewValidationError("endDate", "endDate must not be before startDate")
	}
	return nil
}

// Delete removes an event.
func (s *EventService) Delete(ctx context.Context, tenantID string, id int64) error {
	if err := s.events.DeleteEvent(ctx, tenantID, id); err != nil {
		return err
	}
	invalidate(ctx, s.cache, s.log, eventKeyPrefix(tenantID))
	s.log.Info("event deleted", "tenant_id", tenantID, "event_id", id)
	return nil
}

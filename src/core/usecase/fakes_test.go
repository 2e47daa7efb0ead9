package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"malayalees/src/core/domain"
	"malayalees/src/core/ports"
)

// fakeBackend is an in-memory stand-in for the backend API.
type fakeBackend struct {
	mu sync.Mutex

	events       map[int64]domain.EventDetails
	media        map[int64]domain.EventMedia
	ticketTypes  []domain.EventTicketType
	attendees    []domain.EventAttendee
	transactions []domain.EventTicketTransaction
	orgs         map[int64]domain.TenantOrganization
	settings     map[string]domain.TenantSettings
	uploads      []ports.MediaUpload
	uploadBodies [][]byte
	nextID       int64

	getEventErr error
	txFailures  int
	listQueries []ports.ListQuery
	counts      map[string]int64
	calls       map[string]int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		events:   map[int64]domain.EventDetails{},
		media:    map[int64]domain.EventMedia{},
		orgs:     map[int64]domain.TenantOrganization{},
		settings: map[string]domain.TenantSettings{},
		counts:   map[string]int64{},
		calls:    map[string]int{},
		nextID:   100,
	}
}

func (f *fakeBackend) called(name string) {
	f.calls[name]++
}

func (f *fakeBackend) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeBackend) Health(context.Context) error { return nil }

func (f *fakeBackend) ListEvents(_ context.Context, _ string, q ports.ListQuery) (*ports.PageResult[domain.EventDetails], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.called("ListEvents")
	f.listQueries = append(f.listQueries, q)

	var items []domain.EventDetails
	for _, e := range f.events {
		if matchesEvent(e, q.Criteria) {
			items = append(items, e)
		}
	}
	slices.SortFunc(items, func(a, b domain.EventDetails) int { return int(a.ID - b.ID) })
	return &ports.PageResult[domain.EventDetails]{Items: items, Total: int64(len(items)), Page: q.Page, PerPage: q.PerPage}, nil
}

func matchesEvent(e domain.EventDetails, criteria []ports.Criterion) bool {
	for _, c := range criteria {
		if c.Field == "id" && c.Op == ports.OpEquals && strconv.FormatInt(e.ID, 10) != c.Value {
			return false
		}
		if c.Field == "isActive" && strconv.FormatBool(e.IsActive) != c.Value {
			return false
		}
	}
	return true
}

func (f *fakeBackend) GetEvent(_ context.Context, _ string, id int64) (*domain.EventDetails, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.called("GetEvent")
	if f.getEventErr != nil {
		return nil, f.getEventErr
	}
	e, ok := f.events[id]
	if !ok {
		return nil, domain.NewNotFoundError("event")
	}
	return &e, nil
}

func (f *fakeBackend) CountEvents(_ context.Context, _ string, criteria []ports.Criterion) (int64, error) {
	return f.count("events", criteria), nil
}

func (f *fakeBackend) count(resource string, criteria []ports.Criterion) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := resource
	for _, c := range criteria {
		key += fmt.Sprintf(":%s.%s", c.Field, c.Op)
	}
	f.called("Count:" + key)
	return f.counts[key]
}

func (f *fakeBackend) CreateEvent(_ context.Context, tenantID string, event *domain.EventDetails) (*domain.EventDetails, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e := *event
	e.ID = f.id()
	e.TenantID = tenantID
	f.events[e.ID] = e
	return &e, nil
}

func (f *fakeBackend) UpdateEvent(_ context.Context, tenantID string, event *domain.EventDetails) (*domain.EventDetails, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.events[event.ID]; !ok {
		return nil, domain.NewNotFoundError("event")
	}
	e := *event
	e.TenantID = tenantID
	f.events[e.ID] = e
	return &e, nil
}

func (f *fakeBackend) PatchEvent(_ context.Context, _ string, id int64, fields map[string]any) (*domain.EventDetails, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events[id]
	if !ok {
		return nil, domain.NewNotFoundError("event")
	}
	if err := mergeJSON(&e, fields); err != nil {
		return nil, err
	}
	f.events[id] = e
	return &e, nil
}

func mergeJSON(dst any, fields map[string]any) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}

func (f *fakeBackend) DeleteEvent(_ context.Context, _ string, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.events[id]; !ok {
		return domain.NewNotFoundError("event")
	}
	delete(f.events, id)
	return nil
}

func (f *fakeBackend) ListMedia(_ context.Context, _ string, q ports.ListQuery) (*ports.PageResult[domain.EventMedia], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listQueries = append(f.listQueries, q)
	var items []domain.EventMedia
	for _, m := range f.media {
		items = append(items, m)
	}
	return &ports.PageResult[domain.EventMedia]{Items: items, Total: int64(len(items)), Page: q.Page, PerPage: q.PerPage}, nil
}

func (f *fakeBackend) CountMedia(_ context.Context, _ string, criteria []ports.Criterion) (int64, error) {
	return f.count("media", criteria), nil
}

func (f *fakeBackend) UploadMedia(_ context.Context, tenantID string, upload ports.MediaUpload) (*domain.EventMedia, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var body strings.Builder
	if upload.Content != nil {
		buf := make([]byte, 1024)
		for {
			n, err := upload.Content.Read(buf)
			body.Write(buf[:n])
			if err != nil {
				break
			}
		}
	}
	f.uploads = append(f.uploads, upload)
	f.uploadBodies = append(f.uploadBodies, []byte(body.String()))
	m := domain.EventMedia{
		ID:          f.id(),
		TenantID:    tenantID,
		EventID:     upload.EventID,
		Title:       upload.Title,
		ContentType: upload.ContentType,
		FileSize:    upload.Size,
		IsPublic:    upload.IsPublic,
	}
	f.media[m.ID] = m
	return &m, nil
}

func (f *fakeBackend) PatchMedia(_ context.Context, _ string, id int64, fields map[string]any) (*domain.EventMedia, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.media[id]
	if !ok {
		return nil, domain.NewNotFoundError("media")
	}
	if err := mergeJSON(&m, fields); err != nil {
		return nil, err
	}
	f.media[id] = m
	return &m, nil
}

func (f *fakeBackend) DeleteMedia(_ context.Context, _ string, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.media[id]; !ok {
		return domain.NewNotFoundError("media")
	}
	delete(f.media, id)
	return nil
}

func (f *fakeBackend) ListTicketTypes(_ context.Context, _ string, eventID int64) ([]domain.EventTicketType, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.called("ListTicketTypes")
	var out []domain.EventTicketType
	for _, t := range f.ticketTypes {
		if t.EventID == eventID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeBackend) CreateAttendee(_ context.Context, tenantID string, a *domain.EventAttendee) (*domain.EventAttendee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := *a
	out.ID = f.id()
	out.TenantID = tenantID
	f.attendees = append(f.attendees, out)
	return &out, nil
}

func (f *fakeBackend) CountAttendees(_ context.Context, _ string, criteria []ports.Criterion) (int64, error) {
	n := f.count("attendees", criteria)
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.attendees {
		if matchesAttendee(a, criteria) {
			n++
		}
	}
	return n, nil
}

// matchesAttendee only applies to lookups by email; plain counts come from
// the canned counts map.
func matchesAttendee(a domain.EventAttendee, criteria []ports.Criterion) bool {
	byEmail := false
	for _, c := range criteria {
		switch c.Field {
		case "email":
			byEmail = true
			if a.Email != c.Value {
				return false
			}
		case "eventId":
			if strconv.FormatInt(a.EventID, 10) != c.Value {
				return false
			}
		}
	}
	return byEmail
}

func (f *fakeBackend) CreateTransaction(_ context.Context, tenantID string, tx *domain.EventTicketTransaction) (*domain.EventTicketTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.transactions) > 0 && f.txFailures > 0 {
		f.txFailures--
		return nil, domain.NewUpstreamError("backend timed out")
	}
	out := *tx
	out.ID = f.id()
	out.TenantID = tenantID
	f.transactions = append(f.transactions, out)
	return &out, nil
}

func (f *fakeBackend) FindTransactionsBySession(_ context.Context, _ string, sessionID string) ([]domain.EventTicketTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.EventTicketTransaction
	for _, tx := range f.transactions {
		if tx.StripeCheckoutSessionID == sessionID {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (f *fakeBackend) ListOrganizations(_ context.Context, q ports.ListQuery) (*ports.PageResult[domain.TenantOrganization], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listQueries = append(f.listQueries, q)
	var items []domain.TenantOrganization
	for _, o := range f.orgs {
		keep := true
		for _, c := range q.Criteria {
			if c.Field == "tenantId" && o.TenantID != c.Value {
				keep = false
			}
		}
		if keep {
			items = append(items, o)
		}
	}
	return &ports.PageResult[domain.TenantOrganization]{Items: items, Total: int64(len(items)), Page: q.Page, PerPage: q.PerPage}, nil
}

func (f *fakeBackend) GetOrganization(_ context.Context, id int64) (*domain.TenantOrganization, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orgs[id]
	if !ok {
		return nil, domain.NewNotFoundError("organization")
	}
	return &o, nil
}

func (f *fakeBackend) CreateOrganization(_ context.Context, org *domain.TenantOrganization) (*domain.TenantOrganization, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o := *org
	o.ID = f.id()
	f.orgs[o.ID] = o
	return &o, nil
}

func (f *fakeBackend) UpdateOrganization(_ context.Context, org *domain.TenantOrganization) (*domain.TenantOrganization, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orgs[org.ID] = *org
	o := *org
	return &o, nil
}

func (f *fakeBackend) DeleteOrganization(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.orgs, id)
	return nil
}

func (f *fakeBackend) GetSettings(_ context.Context, tenantID string) (*domain.TenantSettings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.called("GetSettings")
	s, ok := f.settings[tenantID]
	if !ok {
		return nil, domain.NewNotFoundError("tenant settings")
	}
	return &s, nil
}

func (f *fakeBackend) SaveSettings(_ context.Context, settings *domain.TenantSettings) (*domain.TenantSettings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.called("SaveSettings")
	s := *settings
	if s.ID == 0 {
		s.ID = f.id()
	}
	f.settings[s.TenantID] = s
	return &s, nil
}

// mapCache is a ports.Cache over a plain map storing JSON.
type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMapCache() *mapCache {
	return &mapCache{data: map[string][]byte{}}
}

func (c *mapCache) Health(context.Context) error { return nil }

func (c *mapCache) Get(_ context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (c *mapCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = raw
	return nil
}

func (c *mapCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func (c *mapCache) DeletePrefix(_ context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			delete(c.data, k)
		}
	}
	return nil
}

func (c *mapCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}

type fakeComments struct {
	items  []domain.Comment
	nextID int64
}

func (f *fakeComments) Health(context.Context) error { return nil }

func (f *fakeComments) ListComments(_ context.Context, tenantID string, eventID int64, since *time.Time, limit int) ([]domain.Comment, error) {
	var out []domain.Comment
	for _, c := range f.items {
		if c.TenantID != tenantID || c.EventID != eventID {
			continue
		}
		if since != nil && !c.CreatedAt.After(*since) {
			continue
		}
		out = append(out, c)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeComments) CreateComment(_ context.Context, c *domain.Comment) (*domain.Comment, error) {
	f.nextID++
	out := *c
	out.ID = f.nextID
	out.CreatedAt = time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	f.items = append(f.items, out)
	return &out, nil
}

func (f *fakeComments) DeleteComment(_ context.Context, tenantID string, id int64) error {
	for i, c := range f.items {
		if c.ID == id && c.TenantID == tenantID {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return domain.NewNotFoundError("comment")
}

type fakeMessageLog struct {
	logged []domain.WhatsAppMessageLog
}

func (f *fakeMessageLog) LogMessage(_ context.Context, msg *domain.WhatsAppMessageLog) (*domain.WhatsAppMessageLog, error) {
	out := *msg
	out.ID = int64(len(f.logged) + 1)
	f.logged = append(f.logged, out)
	return &out, nil
}

func (f *fakeMessageLog) ListMessages(_ context.Context, tenantID string, page, perPage int) (*ports.PageResult[domain.WhatsAppMessageLog], error) {
	var items []domain.WhatsAppMessageLog
	for _, m := range f.logged {
		if m.TenantID == tenantID {
			items = append(items, m)
		}
	}
	return &ports.PageResult[domain.WhatsAppMessageLog]{Items: items, Total: int64(len(items)), Page: page, PerPage: perPage}, nil
}

type fakeSender struct {
	sent    []string
	failFor map[string]error
}

func (f *fakeSender) Send(_ context.Context, _ domain.WhatsAppSettings, to, _ string) (string, error) {
	if err := f.failFor[to]; err != nil {
		return "", err
	}
	f.sent = append(f.sent, to)
	return "SM" + strings.TrimPrefix(to, "+"), nil
}

type fakeGateway struct {
	requests  []ports.CheckoutSessionRequest
	completed *ports.CompletedCheckout
	parseErr  error
}

func (f *fakeGateway) CreateCheckoutSession(_ context.Context, req ports.CheckoutSessionRequest) (*ports.CheckoutSession, error) {
	f.requests = append(f.requests, req)
	return &ports.CheckoutSession{ID: "cs_test_1", URL: "https://checkout.stripe.test/cs_test_1"}, nil
}

func (f *fakeGateway) ParseCompletedCheckout([]byte, string) (*ports.CompletedCheckout, error) {
	return f.completed, f.parseErr
}

func intPtr(v int) *int { return &v }

package usecase

import (
	"context"
	"log/slog"
	"time"

	"malayalees/src/core/domain"
	"malayalees/src/core/ports"
)

// DashboardStats are the headline counts on the admin dashboard.
type DashboardStats struct {
	TotalEvents    int64 `json:"total_events"`
	UpcomingEvents int64 `json:"upcoming_events"`
	ActiveEvents   int64 `json:"active_events"`
	Attendees      int64 `json:"attendees"`
	MediaItems     int64 `json:"media_items"`
}

// DashboardService aggregates backend counts.
type DashboardService struct {
	events   ports.EventRepository
	media    ports.MediaRepository
	tickets  ports.TicketRepository
	cache    ports.Cache
	cacheTTL time.Duration
	log      *slog.Logger
	now      func() time.Time
}

func NewDashboardService(events ports.EventRepository, media ports.MediaRepository, tickets ports.TicketRepository, cache ports.Cache, cacheTTL time.Duration, log *slog.Logger) *DashboardService {
	return &DashboardService{
		events:   events,
		media:    media,
		tickets:  tickets,
		cache:    cache,
		cacheTTL: cacheTTL,
		log:      log,
		now:      time.Now,
	}
}

// Stats returns the tenant's dashboard counts.
func (s *DashboardService) Stats(ctx context.Context, tenantID string) (*DashboardStats, error) {
	return readThrough(ctx, s.cache, s.log, eventKeyPrefix(tenantID)+"dashboard", s.cacheTTL, func() (*DashboardStats, error) {
		return s.load(ctx, tenantID)
	})
}

func (s *DashboardService) load(ctx context.Context, tenantID string) (*DashboardStats, error) {
	today := s.now().UTC().Format(domain.DateLayout)
	var (
		stats DashboardStats
		err   error
	)

	if stats.TotalEvents, err = s.events.CountEvents(ctx, tenantID, nil); err != nil {
		return nil, err
	}
	if stats.UpcomingEvents, err = s.events.CountEvents(ctx, tenantID, []ports.Criterion{
		{Field: "endDate", Op: ports.OpGreaterThanOrEqual, Value: today},
	}); err != nil {
		return nil, err
	}
	if stats.ActiveEvents, err = s.events.CountEvents(ctx, tenantID, []ports.Criterion{
		{Field: "isActive", Op: ports.OpEquals, Value: "true"},
	}); err != nil {
		return nil, err
	}
	if stats.Attendees, err = s.tickets.CountAttendees(ctx, tenantID, nil); err != nil {
		return nil, err
	}
	if stats.MediaItems, err = s.media.CountMedia(ctx, tenantID, nil); err != nil {
		return nil, err
	}
	return &stats, nil
}

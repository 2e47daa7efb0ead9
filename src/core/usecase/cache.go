package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"malayalees/src/core/domain"
	"malayalees/src/core/ports"
)

// readThrough returns the cached value for key or loads and caches it.
// Cache failures are logged and never fail the request.
func readThrough[T any](ctx context.Context, c ports.Cache, log *slog.Logger, key string, ttl time.Duration, load func() (T, error)) (T, error) {
	var v T
	if c != nil && ttl > 0 {
		found, err := c.Get(ctx, key, &v)
		if err != nil {
			log.Warn("cache read failed", "key", key, "error", err)
		} else if found {
			return v, nil
		}
	}

	v, err := load()
	if err != nil {
		return v, err
	}

	if c != nil && ttl > 0 {
		if err := c.Set(ctx, key, v, ttl); err != nil {
			log.Warn("cache write failed", "key", key, "error", err)
		}
	}
	return v, nil
}

func invalidate(ctx context.Context, c ports.Cache, log *slog.Logger, prefix string) {
	if c == nil {
		return
	}
	if err := c.DeletePrefix(ctx, prefix); err != nil {
		log.Warn("cache invalidation failed", "prefix", prefix, "error", err)
	}
}

// queryKey renders a list query as a stable cache key suffix.
func queryKey(q ports.ListQuery) string {
	var b strings.Builder
	fmt.Fprintf(&b, "p%d:n%d:s%s", q.Page, q.PerPage, strings.Join(q.Sort, "|"))
	for _, c := range q.Criteria {
		fmt.Fprintf(&b, ":%s.%s=%s", c.Field, c.Op, c.Value)
	}
	return b.String()
}

// normalizePage clamps page and page size to the accepted range.
func normalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = domain.DefaultPerPage
	}
	if perPage > domain.MaxPerPage {
		perPage = domain.MaxPerPage
	}
	return page, perPage
}

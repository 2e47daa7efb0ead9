package backend

import (
	"net/http"
	"net/url"
	"strconv"

	"malayalees/src/core/domain"
	"malayalees/src/core/ports"
)

// listValues renders a ListQuery as backend query parameters.
// The backend pages from zero; our API pages from one.
func listValues(tenantID string, q ports.ListQuery) url.Values {
	v := url.Values{}
	page := q.Page
	if page < 1 {
		page = 1
	}
	size := q.PerPage
	if size <= 0 {
		size = domain.DefaultPerPage
	}
	v.Set("page", strconv.Itoa(page-1))
	v.Set("size", strconv.Itoa(size))
	for _, s := range q.Sort {
		v.Add("sort", s)
	}
	addCriteria(v, tenantID, q.Criteria)
	return v
}

// criteriaValues renders filters only, for count endpoints.
func criteriaValues(tenantID string, criteria []ports.Criterion) url.Values {
	v := url.Values{}
	addCriteria(v, tenantID, criteria)
	return v
}

func addCriteria(v url.Values, tenantID string, criteria []ports.Criterion) {
	if tenantID != "" {
		v.Set("tenantId.equals", tenantID)
	}
	for _, c := range criteria {
		v.Add(c.Field+"."+string(c.Op), c.Value)
	}
}

// totalCount reads X-Total-Count, falling back to the number of items seen.
func totalCount(h http.Header, seen int) int64 {
	if raw := h.Get("X-Total-Count"); raw != "" {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return n
		}
	}
	return int64(seen)
}

func pageResult[T any](items []T, h http.Header, q ports.ListQuery) *ports.PageResult[T] {
	page := q.Page
	if page < 1 {
		page = 1
	}
	perPage := q.PerPage
	if perPage <= 0 {
		perPage = domain.DefaultPerPage
	}
	if items == nil {
		items = []T{}
	}
	return &ports.PageResult[T]{
		Items:   items,
		Total:   totalCount(h, len(items)),
		Page:    page,
		PerPage: perPage,
	}
}

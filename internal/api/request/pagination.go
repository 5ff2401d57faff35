package request

import (
	"net/http"
	"strconv"
)

// Pagination holds parsed page and limit parameters.
type Pagination struct {
	Page  int
	Limit int
}

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// Offset returns the row offset for the current page.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

// ParsePagination extracts page and limit from query parameters.
func ParsePagination(r *http.Request) Pagination {
	p := Pagination{Page: 1, Limit: DefaultLimit}

	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		if page, err := strconv.Atoi(pageStr); err == nil && page > 0 {
			p.Page = page
		}
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			p.Limit = limit
		}
	}

	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}

	return p
}

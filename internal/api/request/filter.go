package request

import (
	"fmt"
	"net/http"
	"time"

	"github.com/SudityaSenaNimmala/Access-Requests/internal/model"
)

// ListParams holds pagination, filter, and sort parameters for request
// listings.
type ListParams struct {
	Page         int
	Limit        int
	Status       string
	Category     string
	QueryType    string
	DBInstanceID string
	Collection   string
	From         *time.Time
	To           *time.Time
	Sort         string
	Order        string // "asc" or "desc"

	// Scope fields come from the auth context, never from query params.
	DeveloperID string
	TeamLeadID  string
}

// Offset returns the row offset for the current page.
func (p ListParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// ParseListParams extracts list parameters from the query string.
// defaultSort specifies which field to sort by when none is provided.
func ParseListParams(r *http.Request, defaultSort string) (ListParams, error) {
	pg := ParsePagination(r)
	q := r.URL.Query()

	order := stringOr(q.Get("order"), "desc")
	if order != "asc" && order != "desc" {
		order = "desc"
	}

	status := q.Get("status")
	if status != "" && !model.Status(status).Valid() {
		return ListParams{}, fmt.Errorf("unknown status %q", status)
	}

	return ListParams{
		Page:         pg.Page,
		Limit:        pg.Limit,
		Status:       status,
		Category:     q.Get("category"),
		QueryType:    q.Get("query_type"),
		DBInstanceID: q.Get("db_instance_id"),
		Collection:   q.Get("collection"),
		From:         parseTime(q.Get("from")),
		To:           parseTime(q.Get("to")),
		Sort:         stringOr(q.Get("sort"), defaultSort),
		Order:        order,
	}, nil
}

func parseTime(val string) *time.Time {
	if val == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil
	}
	return &t
}

func stringOr(val, fallback string) string {
	if val != "" {
		return val
	}
	return fallback
}

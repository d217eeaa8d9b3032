package resource

import (
	"strconv"
	"strings"
)

const (
	DefaultLimit     = 10
	MinLimit         = 1
	MaxLimit         = 100
	DefaultSortField = "name"
)

// ListParams are the raw list-query parameters as received at the
// boundary. Empty strings mean "not supplied".
type ListParams struct {
	Name    string
	AfterID string
	Limit   string
	SortBy  string
	Order   string
}

// ListQuery is a validated query plan ready for a store to execute.
type ListQuery struct {
	Name       string // case-insensitive substring filter on "name"
	AfterID    string // canonical cursor id, empty for the first page
	Limit      int
	SortBy     string
	Descending bool
}

// BuildListQuery validates raw parameters against the resource's sort
// allow-list and produces a query plan.
//
// limit must parse as an integer (default 10) and is clamped silently
// into [1,100]; sort_by defaults to "name" and must be allow-listed;
// order is asc/desc case-insensitive; after_id must be a well-formed
// cursor.
func BuildListQuery(p ListParams, allowedSortFields []string) (*ListQuery, error) {
	limit := DefaultLimit
	if p.Limit != "" {
		n, err := strconv.Atoi(p.Limit)
		if err != nil {
			return nil, Validationf("limit must be an integer, got %q", p.Limit)
		}
		limit = n
	}
	if limit < MinLimit {
		limit = MinLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	sortBy := p.SortBy
	if sortBy == "" {
		sortBy = DefaultSortField
	}
	if !sortFieldAllowed(sortBy, allowedSortFields) {
		return nil, Validationf("invalid sort field: %s", sortBy)
	}

	var descending bool
	switch strings.ToLower(p.Order) {
	case "", "asc":
		descending = false
	case "desc":
		descending = true
	default:
		return nil, Validationf("order must be 'asc' or 'desc', got %q", p.Order)
	}

	q := &ListQuery{
		Name:       p.Name,
		Limit:      limit,
		SortBy:     sortBy,
		Descending: descending,
	}
	if p.AfterID != "" {
		id, err := DecodeCursor(p.AfterID)
		if err != nil {
			return nil, err
		}
		q.AfterID = id
	}
	return q, nil
}

func sortFieldAllowed(field string, allowed []string) bool {
	for _, f := range allowed {
		if f == field {
			return true
		}
	}
	return false
}

// Page is one batch of an infinite-scroll query.
type Page struct {
	Items      []Document `json:"items"`
	Limit      int        `json:"limit"`
	HasMore    bool       `json:"has_more"`
	NextCursor *string    `json:"next_cursor"`
}

// NewPage applies the limit+1 overfetch convention: docs holds up to
// limit+1 documents in query order; the extra one only signals that
// another page exists and is discarded.
func NewPage(docs []Document, limit int) *Page {
	page := &Page{Items: docs, Limit: limit}
	if len(docs) > limit {
		page.Items = docs[:limit]
		page.HasMore = true
		if id, ok := page.Items[limit-1]["_id"].(string); ok {
			cur := EncodeCursor(id)
			page.NextCursor = &cur
		}
	}
	if page.Items == nil {
		page.Items = []Document{}
	}
	return page
}

// internal/core/query_params.go
package core

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ReservedParams are query parameters consumed by pagination, search and
// ordering. They are never treated as field filters.
var ReservedParams = map[string]bool{
	"page":     true,
	"search":   true,
	"ordering": true,
}

// ErrInvalidPage is returned for a page number that is not a positive integer.
var ErrInvalidPage = errors.New("invalid page")

// ListQueryOptions holds parsed query parameters for list endpoints.
type ListQueryOptions struct {
	Page     int
	PageSize int

	Search string

	// OrderBy is a column name; Descending is set by a leading "-".
	OrderBy    string
	Descending bool

	// Filters are exact-match column filters.
	Filters map[string]string
}

// Offset is the row offset of the requested page.
func (o *ListQueryOptions) Offset() int {
	return (o.Page - 1) * o.PageSize
}

// ParseListQueryOptions extracts page, search, ordering and the allowed
// filters from query parameters. Unknown filters and ordering fields are
// ignored; only a malformed page is an error.
func ParseListQueryOptions(queryParams url.Values, pageSize int, orderingFields, filterFields []string) (*ListQueryOptions, error) {
	opts := &ListQueryOptions{
		Page:     1,
		PageSize: pageSize,
		Filters:  map[string]string{},
	}

	if pageStr := queryParams.Get("page"); pageStr != "" {
		page, err := strconv.Atoi(pageStr)
		if err != nil || page < 1 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPage, pageStr)
		}
		opts.Page = page
	}

	opts.Search = strings.TrimSpace(queryParams.Get("search"))

	if ordering := strings.TrimSpace(queryParams.Get("ordering")); ordering != "" {
		field := strings.TrimPrefix(ordering, "-")
		if IsValidIdentifier(field) && contains(orderingFields, field) {
			opts.OrderBy = field
			opts.Descending = strings.HasPrefix(ordering, "-")
		}
	}

	for _, field := range filterFields {
		if IsReservedParam(field) {
			continue
		}
		if value := queryParams.Get(field); value != "" {
			opts.Filters[field] = value
		}
	}

	return opts, nil
}

// IsReservedParam checks if a query parameter name is reserved.
func IsReservedParam(key string) bool {
	return ReservedParams[strings.ToLower(key)]
}

func contains(items []string, s string) bool {
	for _, item := range items {
		if item == s {
			return true
		}
	}
	return false
}

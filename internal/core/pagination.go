// internal/core/pagination.go
package core

import (
	"net/url"
	"strconv"
)

// Page is the page-number pagination envelope returned by list endpoints.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// PageOutOfRange reports whether the requested page lies past the last one.
// The first page always exists, even when empty.
func PageOutOfRange(opts *ListQueryOptions, count int) bool {
	return opts.Page > 1 && opts.Offset() >= count
}

// NewPage builds the envelope; next and previous links are derived from
// requestURL, which should be absolute.
func NewPage[T any](requestURL *url.URL, opts *ListQueryOptions, count int, results []T) Page[T] {
	if results == nil {
		results = []T{}
	}
	page := Page[T]{Count: count, Results: results}

	if opts.Offset()+len(results) < count {
		next := pageLink(requestURL, opts.Page+1)
		page.Next = &next
	}
	if opts.Page > 1 {
		prev := pageLink(requestURL, opts.Page-1)
		page.Previous = &prev
	}
	return page
}

func pageLink(requestURL *url.URL, page int) string {
	u := *requestURL
	q := u.Query()
	if page <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()
	return u.String()
}

package pagination

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

var ErrInvalidPage = errors.New("invalid page")

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Page is page-number pagination state: 1-based page number plus the
// client-chosen page size.
type Page struct {
	Number int
	Size   int
}

// Parse reads the page and page_size query parameters. Page defaults to 1,
// page size to DefaultPageSize and is capped at MaxPageSize.
func Parse(values url.Values) (Page, error) {
	page := Page{Number: 1, Size: DefaultPageSize}

	if raw := strings.TrimSpace(values.Get("page")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return Page{}, ErrInvalidPage
		}
		page.Number = parsed
	}

	if raw := strings.TrimSpace(values.Get("page_size")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return Page{}, ErrInvalidPage
		}
		if parsed > MaxPageSize {
			parsed = MaxPageSize
		}
		page.Size = parsed
	}

	return page, nil
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// TotalPages is ceil(count/size); zero items still occupy one (empty) page,
// matching the framework behavior the API contract was built on.
func TotalPages(count int64, size int) int {
	if size <= 0 {
		return 1
	}
	pages := int((count + int64(size) - 1) / int64(size))
	if pages < 1 {
		return 1
	}
	return pages
}

// Links builds absolute next/previous URLs for the current page, preserving
// every other query parameter. A nil value means there is no such page.
func Links(r *http.Request, page Page, totalPages int) (next *string, previous *string) {
	if r == nil || r.URL == nil {
		return nil, nil
	}

	// Absolute URLs, addressed the way the client reached us.
	base := *r.URL
	base.Host = r.Host
	base.Scheme = "http"
	if r.TLS != nil {
		base.Scheme = "https"
	}

	if page.Number < totalPages {
		link := withPage(&base, page.Number+1)
		next = &link
	}
	if page.Number > 1 {
		link := withPage(&base, page.Number-1)
		previous = &link
	}
	return next, previous
}

func withPage(requestURL *url.URL, number int) string {
	clone := *requestURL
	query := clone.Query()
	if number <= 1 {
		query.Del("page")
	} else {
		query.Set("page", strconv.Itoa(number))
	}
	clone.RawQuery = query.Encode()
	return clone.String()
}

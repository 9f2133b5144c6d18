package types

import (
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Request tags.
const (
	TagListing = "listing"
	TagDetail  = "detail"
)

// Request represents a page to be fetched from a portal.
type Request struct {
	// URL is the target URL to fetch.
	URL *url.URL

	// Method is the HTTP method. Defaults to GET.
	Method string

	// Headers are extra HTTP headers to send with the request.
	Headers http.Header

	// Tag is either "listing" or "detail".
	Tag string

	// Portal is the ID of the portal the page belongs to.
	Portal string

	// Page is the listing page number; zero for detail pages.
	Page int

	// CreatedAt is when this request was created.
	CreatedAt time.Time
}

// NewRequest creates a GET Request.
func NewRequest(rawURL string) (*Request, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}

	return &Request{
		URL:       u,
		Method:    http.MethodGet,
		Headers:   make(http.Header),
		CreatedAt: time.Now(),
	}, nil
}

// URLString returns the string representation of the request URL.
func (r *Request) URLString() string {
	if r.URL == nil {
		return ""
	}
	return r.URL.String()
}

// Domain returns the hostname of the request URL.
func (r *Request) Domain() string {
	if r.URL == nil {
		return ""
	}
	return r.URL.Hostname()
}

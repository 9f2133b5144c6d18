package types

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

// Response represents the result of fetching a request.
type Response struct {
	StatusCode    int
	Headers       http.Header
	Body          []byte
	Request       *Request
	ContentType   string
	FinalURL      string
	FetchDuration time.Duration
	FetchedAt     time.Time

	// Doc is the parsed document, populated on first Document call.
	Doc *goquery.Document
}

// NewResponse creates a Response from an http.Response.
func NewResponse(req *Request, httpResp *http.Response, body []byte, duration time.Duration) *Response {
	finalURL := req.URLString()
	if httpResp.Request != nil && httpResp.Request.URL != nil {
		finalURL = httpResp.Request.URL.String()
	}
	return &Response{
		StatusCode:    httpResp.StatusCode,
		Headers:       httpResp.Header,
		Body:          body,
		Request:       req,
		ContentType:   httpResp.Header.Get("Content-Type"),
		FinalURL:      finalURL,
		FetchDuration: duration,
		FetchedAt:     time.Now(),
	}
}

// NewBrowserResponse creates a Response from headless browser output.
func NewBrowserResponse(req *Request, statusCode int, body []byte, finalURL string, duration time.Duration) *Response {
	return &Response{
		StatusCode:    statusCode,
		Headers:       make(http.Header),
		Body:          body,
		Request:       req,
		ContentType:   "text/html; charset=utf-8",
		FinalURL:      finalURL,
		FetchDuration: duration,
		FetchedAt:     time.Now(),
	}
}

// Document returns the body parsed as HTML. The body is decoded to UTF-8
// from whatever charset the Content-Type header or <meta> tag declares.
func (r *Response) Document() (*goquery.Document, error) {
	if r.Doc != nil {
		return r.Doc, nil
	}
	if len(r.Body) == 0 {
		return nil, ErrEmptyResponse
	}
	reader, err := charset.NewReader(bytes.NewReader(r.Body), r.ContentType)
	if err != nil {
		return nil, fmt.Errorf("decode charset: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return nil, err
	}
	r.Doc = doc
	return doc, nil
}

// IsSuccess returns true if the response status is 2xx.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Package fetch retrieves pages over HTTP and parses them into queryable
// documents. It raises typed errors for transport failures and non-2xx
// statuses; retry policy, if any, belongs to the caller.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	// DefaultTimeout bounds a single fetch, including body read.
	DefaultTimeout = 25 * time.Second

	// maxResponseBodyBytes limits the size of fetched page responses.
	maxResponseBodyBytes = 10 * 1024 * 1024 // 10 MB

	defaultUserAgent = "newsclip/1.0 (+https://example.local)"
	acceptHeader     = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
)

// Document is a parsed HTML page plus the URL it was fetched from, kept for
// resolving relative links found in the page.
type Document struct {
	*goquery.Document
	URL *url.URL
}

// TransportError wraps a network-level failure (DNS, connect, timeout).
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// StatusError reports a non-2xx HTTP response.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: HTTP %d", e.URL, e.Code)
}

// Client issues HTTP GETs with a fixed identifying header set.
type Client struct {
	httpClient *http.Client
	userAgent  string
	timeout    time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.timeout = timeout }
}

// WithUserAgent overrides the identifying User-Agent header.
func WithUserAgent(agent string) Option {
	return func(c *Client) { c.userAgent = agent }
}

// NewClient creates a fetch client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{},
		userAgent:  defaultUserAgent,
		timeout:    DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch GETs the URL and parses the body into a Document.
// Transport failures return *TransportError, non-2xx statuses *StatusError.
func (c *Client) Fetch(ctx context.Context, rawURL string) (*Document, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, &TransportError{URL: rawURL, Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", acceptHeader)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBodyBytes))
		return nil, &StatusError{URL: rawURL, Code: resp.StatusCode}
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxResponseBodyBytes))
	if err != nil {
		return nil, &TransportError{URL: rawURL, Err: fmt.Errorf("parse html: %w", err)}
	}

	pageURL := resp.Request.URL
	if pageURL == nil {
		pageURL, _ = url.Parse(rawURL)
	}

	return &Document{Document: doc, URL: pageURL}, nil
}

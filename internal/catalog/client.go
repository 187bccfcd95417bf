// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog is the HTTP client for the remote book search endpoint.
//
// Requests have the form
//
//	GET {base_url}books?search=...&limit=10&page=1&sortBy=name&order=asc
//
// and a successful response is HTTP 200 with a JSON array of books.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/book-search/internal/httputil"
	"github.com/pdiddy/book-search/pkg/types"
)

// booksPath is appended to the configured base URL.
const booksPath = "books"

// maxErrorBody bounds how much of a failed response is kept for diagnostics.
const maxErrorBody = 512

var (
	// ErrUnexpectedStatus is wrapped by StatusError for any non-200 response.
	ErrUnexpectedStatus = errors.New("unexpected status")

	// ErrDecode is wrapped when the response body is not a JSON array of books.
	ErrDecode = errors.New("decoding search response")
)

// StatusError reports a non-200 response from the search endpoint.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("search endpoint returned HTTP %d", e.Code)
	}
	return fmt.Sprintf("search endpoint returned HTTP %d: %s", e.Code, e.Body)
}

// Unwrap lets errors.Is match ErrUnexpectedStatus.
func (e *StatusError) Unwrap() error { return ErrUnexpectedStatus }

// Client queries the search endpoint.
type Client struct {
	httpClient httputil.Doer
	baseURL    string
	userAgent  string
	maxRetries int
	limiter    *rate.Limiter
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default *http.Client.
func WithHTTPClient(d httputil.Doer) Option {
	return func(c *Client) { c.httpClient = d }
}

// NewClient builds a Client from cfg. The base URL is normalized to end in
// a slash so that "books" can be appended.
func NewClient(cfg types.HTTPConfig, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = types.DefaultTimeout
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = types.DefaultUserAgent
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    normalizeBaseURL(cfg.BaseURL),
		userAgent:  userAgent,
		maxRetries: cfg.MaxRetries,
		limiter:    rate.NewLimiter(limit, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func normalizeBaseURL(base string) string {
	if base == "" {
		base = types.DefaultBaseURL
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base
}

// Endpoint returns the full request URL for p.
func (c *Client) Endpoint(p types.SearchParams) string {
	return c.baseURL + booksPath + "?" + EncodeParams(p)
}

// EncodeParams renders p as a query string with the parameter order the
// endpoint documents: search, limit, page, sortBy, order.
func EncodeParams(p types.SearchParams) string {
	sortBy := p.SortBy
	if sortBy == "" {
		sortBy = types.SortField
	}
	order := p.Order
	if !order.Valid() {
		order = types.SortAsc
	}

	pairs := [][2]string{
		{"search", p.Query},
		{"limit", strconv.Itoa(p.Limit)},
		{"page", strconv.Itoa(p.Page)},
		{"sortBy", sortBy},
		{"order", string(order)},
	}
	var b strings.Builder
	for i, kv := range pairs {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(kv[0])
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(kv[1]))
	}
	return b.String()
}

// Search fetches one page of books. A non-200 response yields a
// *StatusError; a body that is not a JSON array of books yields an error
// wrapping ErrDecode.
func (c *Client) Search(ctx context.Context, p types.SearchParams) ([]types.Book, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for rate limiter: %w", err)
	}

	endpoint := c.Endpoint(p)
	slog.DebugContext(ctx, "searching books", slog.String("endpoint", endpoint))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := httputil.DoWithRetry(ctx, c.httpClient, req, c.maxRetries)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var books []types.Book
	if err := json.NewDecoder(resp.Body).Decode(&books); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if books == nil {
		books = []types.Book{}
	}

	slog.DebugContext(ctx, "search complete",
		slog.Int("results", len(books)),
		slog.Duration("elapsed", time.Since(start)))
	return books, nil
}
